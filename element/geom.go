package element

import (
	"fmt"
	"log"
	"math"
	"sync"
	"sync/atomic"

	"github.com/notargets/gohp/utils"
)

// Geom holds the geometric factors of an element at its quadrature points.
// A constant Geom stores one value per factor.
type Geom struct {
	ID       int
	Constant bool
	Singular bool
	Curved   bool
	// Jac is |J|, Dx[d][j] = dx_d/dxi_j, Rx[j][d] = dxi_j/dx_d
	Jac []float64
	Dx  [3][3][]float64
	Rx  [3][3][]float64
	// MinJ is the smallest signed jacobian found
	MinJ float64
	key  familyKey
	disp [][3]float64
	refs int
}

// J returns |J| at point ind
func (g *Geom) J(ind int) float64 {
	if g.Constant {
		return g.Jac[0]
	}
	return g.Jac[ind]
}

// R returns dxi_j/dx_d at point ind
func (g *Geom) R(j, d, ind int) float64 {
	if g.Constant {
		return g.Rx[j][d][0]
	}
	return g.Rx[j][d][ind]
}

type familyKey struct {
	Type utils.ElementType
	L    int
	Q    [3]int
}

// GeomCache shares the Geom of straight sided elements among the family of
// elements with the same vertex displacements and orders.
type GeomCache struct {
	mu       sync.Mutex
	families map[familyKey][]*Geom
	count    atomic.Int64
	nextID   atomic.Int64
}

func NewGeomCache() *GeomCache {
	return &GeomCache{families: make(map[familyKey][]*Geom)}
}

// Families is the number of live straight element families
func (gc *GeomCache) Families() int { return int(gc.count.Load()) }

func (gc *GeomCache) lookup(key familyKey, disp [][3]float64) *Geom {
	for _, g := range gc.families[key] {
		if sameDisplacement(g.disp, disp) {
			return g
		}
	}
	return nil
}

func sameDisplacement(a, b [][3]float64) bool {
	for i := range a {
		for d := 0; d < 3; d++ {
			if math.Abs(a[i][d]-b[i][d]) > utils.GEOMTOL*(1+math.Abs(a[i][d])) {
				return false
			}
		}
	}
	return true
}

func (gc *GeomCache) release(g *Geom) {
	if g == nil || g.Curved {
		return
	}
	gc.mu.Lock()
	defer gc.mu.Unlock()
	g.refs--
	if g.refs > 0 {
		return
	}
	fam := gc.families[g.key]
	for i, gg := range fam {
		if gg == g {
			gc.families[g.key] = append(fam[:i], fam[i+1:]...)
			gc.count.Add(-1)
			break
		}
	}
	if len(gc.families[g.key]) == 0 {
		delete(gc.families, g.key)
	}
}

// SetGeofac computes (or finds in the family cache) the geometric factors of e.
// A non-positive jacobian marks the Geom singular, prints a diagnostic and
// returns an error wrapping utils.ErrSingularElement; the factors are still
// usable with |J|.
func SetGeofac(ctx *TransformContext, e *Element) (err error) {
	gc := ctx.Geoms
	gc.release(e.Geom)
	e.Geom = nil
	for f := range e.Surf {
		e.Surf[f] = nil
	}
	if e.IsCurved() {
		e.Geom = computeGeom(e)
		e.Geom.Curved = true
		e.Geom.ID = int(gc.nextID.Add(1))
	} else {
		var (
			key  = familyKey{e.Type, e.L, e.Q}
			disp = make([][3]float64, len(e.Vert))
		)
		for v := range e.Vert {
			for d := 0; d < 3; d++ {
				disp[v][d] = e.Vert[v].X[d] - e.Vert[0].X[d]
			}
		}
		gc.mu.Lock()
		if g := gc.lookup(key, disp); g != nil {
			g.refs++
			e.Geom = g
		} else {
			g = computeGeom(e)
			g.key, g.disp, g.refs = key, disp, 1
			g.ID = int(gc.nextID.Add(1))
			gc.families[key] = append(gc.families[key], g)
			gc.count.Add(1)
			e.Geom = g
		}
		gc.mu.Unlock()
	}
	if e.Geom.Singular {
		log.Printf("element %d (%v) is singular, min jacobian %8.5g\n", e.ID, e.Type, e.Geom.MinJ)
		err = fmt.Errorf("element %d: %w", e.ID, utils.ErrSingularElement)
	}
	return
}

func computeGeom(e *Element) (g *Geom) {
	var (
		tab  = e.tab
		dim  = e.Dim()
		npts = tab.Npts
	)
	g = &Geom{MinJ: math.MaxFloat64}
	for d := 0; d < dim; d++ {
		for j := 0; j < dim; j++ {
			g.Dx[d][j] = tab.D[j].MulTransVec(e.X[d])
		}
	}
	g.Constant = true
	for d := 0; d < dim && g.Constant; d++ {
		for j := 0; j < dim && g.Constant; j++ {
			g.Constant = isUniform(g.Dx[d][j])
		}
	}
	n := npts
	if g.Constant {
		n = 1
		for d := 0; d < dim; d++ {
			for j := 0; j < dim; j++ {
				g.Dx[d][j] = g.Dx[d][j][:1]
			}
		}
	}
	g.Jac = make([]float64, n)
	for j := 0; j < dim; j++ {
		for d := 0; d < dim; d++ {
			g.Rx[j][d] = make([]float64, n)
		}
	}
	var G, R [3][3]float64
	for ind := 0; ind < n; ind++ {
		for d := 0; d < dim; d++ {
			for j := 0; j < dim; j++ {
				G[d][j] = g.Dx[d][j][ind]
			}
		}
		J := invert(dim, G, &R)
		g.MinJ = math.Min(g.MinJ, J)
		if J <= 0 {
			g.Singular = true
		}
		g.Jac[ind] = math.Abs(J)
		for j := 0; j < dim; j++ {
			for d := 0; d < dim; d++ {
				g.Rx[j][d][ind] = R[j][d]
			}
		}
	}
	return
}

func isUniform(v []float64) bool {
	var scale float64
	for _, val := range v {
		scale = math.Max(scale, math.Abs(val))
	}
	for _, val := range v {
		if math.Abs(val-v[0]) > utils.GEOMTOL*math.Max(1, scale) {
			return false
		}
	}
	return true
}

// invert returns det(G) and the inverse of G in R. A zero determinant leaves R zero.
func invert(dim int, G [3][3]float64, R *[3][3]float64) (det float64) {
	*R = [3][3]float64{}
	switch dim {
	case 2:
		det = G[0][0]*G[1][1] - G[0][1]*G[1][0]
		if det == 0 {
			return
		}
		R[0][0], R[0][1] = G[1][1]/det, -G[0][1]/det
		R[1][0], R[1][1] = -G[1][0]/det, G[0][0]/det
	case 3:
		det = G[0][0]*(G[1][1]*G[2][2]-G[1][2]*G[2][1]) -
			G[0][1]*(G[1][0]*G[2][2]-G[1][2]*G[2][0]) +
			G[0][2]*(G[1][0]*G[2][1]-G[1][1]*G[2][0])
		if det == 0 {
			return
		}
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				R[i][j] = (G[(j+1)%3][(i+1)%3]*G[(j+2)%3][(i+2)%3] -
					G[(j+1)%3][(i+2)%3]*G[(j+2)%3][(i+1)%3]) / det
			}
		}
	}
	return
}

// Coord returns the physical coordinates of the quadrature points
func Coord(ctx *TransformContext, e *Element) (x [3][]float64) {
	for d := 0; d < e.Dim(); d++ {
		x[d] = make([]float64, e.tab.Npts)
		bwd(ctx, e.tab, e.X[d], x[d])
	}
	return
}
