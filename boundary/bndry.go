package boundary

import (
	"fmt"

	"github.com/notargets/gohp/element"
	"github.com/notargets/gohp/utils"
)

// DefaultDepth is the number of previous time levels kept by a boundary
const DefaultDepth = 3

// Spec describes the data of one boundary condition
type Spec struct {
	Type utils.BCType
	// Value is the prescribed value or flux of the constant conditions
	Value float64
	// Expr is "u = f(x,y,z,t)" for the function conditions
	Expr   string
	Params map[string]float64
	// Alpha is the value coefficient of Robin conditions, du/dn + Alpha u = g
	Alpha float64
	Depth int
}

// Bndry is the boundary condition applied on face f of one element
type Bndry struct {
	Type  utils.BCType
	Elmt  *element.Element
	Face  int
	Value float64
	Alpha float64
	Expr  *Expression
	Time  float64
	// Phys is the prescribed data on the face quadrature grid
	Phys []float64
	// Coeff is the face expansion of an essential condition
	Coeff []float64
	// Flux holds int phi_f g dS for each face mode of a flux or Robin condition
	Flux []float64
	Surf *element.Surface
	hist *History
}

// List is the boundary list of a mesh partition
type List []*Bndry

// GenBndry builds the boundary condition s on face f of e at time t.
// A malformed expression is fatal.
func GenBndry(ctx *element.TransformContext, e *element.Element, f int, s Spec, t float64) (b *Bndry) {
	if f < 0 || f >= e.NumFaces() {
		panic(fmt.Errorf("element %d has no face %d", e.ID, f))
	}
	if s.Type.String() == "Unknown" || s.Type == utils.BCNone {
		panic(fmt.Errorf("%w: boundary type %q", utils.ErrUnsupported, byte(s.Type)))
	}
	b = &Bndry{Type: s.Type, Elmt: e, Face: f, Value: s.Value, Alpha: s.Alpha, Time: t}
	if s.Type.IsFunction() {
		var err error
		if b.Expr, err = NewExpression(s.Expr, s.Params); err != nil {
			panic(err)
		}
	}
	depth := s.Depth
	if depth <= 0 {
		depth = DefaultDepth
	}
	b.hist = NewHistory(depth)
	if s.Type.IsFlux() {
		b.Surf = element.SurfaceGeofac(ctx, e, f)
	}
	if err := b.evaluate(ctx); err != nil {
		panic(err)
	}
	return
}

func (b *Bndry) evaluate(ctx *element.TransformContext) (err error) {
	var (
		e   = b.Elmt
		ft  = e.FaceType(b.Face)
		q   = e.FaceQ()
		tab = ctx.FaceTable(ft, e.L, q)
	)
	if b.Phys == nil {
		b.Phys = make([]float64, tab.Npts)
	}
	switch {
	case b.Type == utils.BCWall || b.Type == utils.BCOutflow:
		for i := range b.Phys {
			b.Phys[i] = 0
		}
	case b.Type.IsFunction():
		x := element.GetFaceCoord(ctx, e, b.Face)
		if err = b.Expr.Sample(x, b.Time, b.Phys); err != nil {
			return
		}
	default:
		for i := range b.Phys {
			b.Phys[i] = b.Value
		}
	}
	if b.Type.IsEssential() {
		b.Coeff = element.JtransFace(ctx, ft, e.L, q, b.Phys)
	} else {
		MakeFlux(ctx, b)
	}
	return
}

// Data is the current modal data of the boundary: the face expansion of an
// essential condition, the weak flux integrals otherwise.
func (b *Bndry) Data() []float64 {
	if b.Type.IsEssential() {
		return b.Coeff
	}
	return b.Flux
}

// History returns the saved time levels of the boundary data
func (b *Bndry) History() *History { return b.hist }

// UpdateBndry moves the boundary to time t. With save set the current data
// is pushed onto the history ring first. Function conditions are evaluated
// again, constant ones keep their data.
func UpdateBndry(ctx *element.TransformContext, b *Bndry, t float64, save bool) (err error) {
	if save {
		b.hist.Push(b.Data())
	}
	b.Time = t
	if b.Type.IsFunction() {
		err = b.evaluate(ctx)
	}
	return
}

// MakeFlux computes the weak flux integrals of b from its face samples
func MakeFlux(ctx *element.TransformContext, b *Bndry) {
	if b.Surf == nil {
		b.Surf = element.SurfaceGeofac(ctx, b.Elmt, b.Face)
	}
	var (
		s = b.Surf
		g = make([]float64, s.Npts())
	)
	for ind := range g {
		g[ind] = s.W[ind] * s.SJ[ind] * b.Phys[ind]
	}
	b.Flux = s.Tab.B.MulVec(g)
}

// SetBCs writes the essential boundary data of e into its modal buffer
func SetBCs(e *element.Element, list List) {
	for _, b := range list {
		if b.Elmt != e || !b.Type.IsEssential() {
			continue
		}
		e.Trace(b.Face).Scatter(b.Coeff, e.Modal)
	}
}

// AddFluxTerms adds the weak flux integrals of the flux and Robin conditions
// of e to the modal residual out.
func AddFluxTerms(e *element.Element, list List, out []float64) {
	for _, b := range list {
		if b.Elmt != e || !b.Type.IsFlux() {
			continue
		}
		e.Trace(b.Face).T.AddMulVec(out, b.Flux, true)
	}
}
