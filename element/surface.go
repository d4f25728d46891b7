package element

import (
	"fmt"
	"log"
	"math"

	"github.com/notargets/gohp/basis"
	"github.com/notargets/gohp/utils"
)

// Surface holds the geometric factors of one face on the face quadrature grid
type Surface struct {
	Face int
	Type utils.ElementType
	// Normal is the outward unit normal, SJ the surface jacobian
	Normal [][3]float64
	SJ     []float64
	// Kappa is the curvature of a 2D edge, positive when the edge bulges outward
	Kappa []float64
	W     []float64
	Tab   *basis.Table
}

func (s *Surface) Npts() int { return len(s.SJ) }

// SurfaceGeofac returns the surface factors of face f of e, computed on first use
func SurfaceGeofac(ctx *TransformContext, e *Element, f int) *Surface {
	if s := e.Surf[f]; s != nil {
		return s
	}
	var (
		ft   = e.FaceType(f)
		tab  = ctx.FaceTable(ft, e.L, e.FaceQ())
		tr   = e.Trace(f)
		dim  = e.Dim()
		sign = e.ref.Faces[f].Sign
		tu   [3][]float64
		tv   [3][]float64
	)
	s := &Surface{Face: f, Type: ft, W: tab.W, Tab: tab,
		Normal: make([][3]float64, tab.Npts), SJ: make([]float64, tab.Npts)}
	for d := 0; d < dim; d++ {
		xf := tr.Gather(e.X[d])
		tu[d] = tab.D[0].MulTransVec(xf)
		if dim == 3 {
			tv[d] = tab.D[1].MulTransVec(xf)
		}
	}
	for ind := range s.SJ {
		var a, b [3]float64
		for d := 0; d < dim; d++ {
			a[d] = tu[d][ind]
			if dim == 3 {
				b[d] = tv[d][ind]
			}
		}
		n := basis.FaceNormal(dim, a, b)
		sj := math.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])
		if sj < utils.GEOMTOL {
			log.Printf("element %d face %d: degenerate surface jacobian %8.5g\n", e.ID, f, sj)
			sj = utils.GEOMTOL
		}
		s.SJ[ind] = sj
		for d := 0; d < 3; d++ {
			s.Normal[ind][d] = sign * n[d] / sj
		}
	}
	if dim == 2 {
		// (x'y'' - y'x'') / |x'|^3 along the edge
		var (
			xpp = tab.Dmat[0].MulVec(tu[0])
			ypp = tab.Dmat[0].MulVec(tu[1])
		)
		s.Kappa = make([]float64, tab.Npts)
		for ind := range s.Kappa {
			sj := s.SJ[ind]
			s.Kappa[ind] = sign * (tu[0][ind]*ypp[ind] - tu[1][ind]*xpp[ind]) / (sj * sj * sj)
		}
	}
	e.Surf[f] = s
	return s
}

// SetEdgeGeofac computes the surface factors of every edge of a 2D element
func SetEdgeGeofac(ctx *TransformContext, e *Element) (err error) {
	if e.Dim() != 2 {
		return fmt.Errorf("%w: edge factors of a %v element", utils.ErrUnsupported, e.Type)
	}
	for f := 0; f < e.NumFaces(); f++ {
		SurfaceGeofac(ctx, e, f)
	}
	return
}

// GetFaceCoord returns the physical coordinates of the quadrature points of face f
func GetFaceCoord(ctx *TransformContext, e *Element, f int) (x [3][]float64) {
	var (
		tab = ctx.FaceTable(e.FaceType(f), e.L, e.FaceQ())
		tr  = e.Trace(f)
	)
	for d := 0; d < 3; d++ {
		x[d] = tab.B.MulTransVec(tr.Gather(e.X[d]))
	}
	return
}

// FaceIntegrate integrates values given on the grid of face f over the physical face
func FaceIntegrate(ctx *TransformContext, e *Element, f int, u []float64) (sum float64) {
	s := SurfaceGeofac(ctx, e, f)
	for ind, val := range u {
		sum += s.W[ind] * s.SJ[ind] * val
	}
	return
}

// AddSurfaceContrib adds the weak surface integral of flux, given on the grid
// of face f, to the modal residual out: out_m += int_f phi_m flux dS.
func AddSurfaceContrib(ctx *TransformContext, e *Element, f int, flux, out []float64) {
	var (
		s  = SurfaceGeofac(ctx, e, f)
		tr = e.Trace(f)
		g  = make([]float64, s.Npts())
	)
	for ind := range g {
		g[ind] = s.W[ind] * s.SJ[ind] * flux[ind]
	}
	tr.T.AddMulVec(out, s.Tab.B.MulVec(g), true)
}
