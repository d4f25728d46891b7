package element

import (
	"fmt"

	"github.com/notargets/gohp/basis"
	"github.com/notargets/gohp/utils"
)

// State records which of the element buffers holds the current field
type State uint8

const (
	Physical State = iota
	Modal
)

func (s State) String() string {
	if s == Modal {
		return "Modal"
	}
	return "Physical"
}

// Vert, Edge and Face coefficient slices are views into Element.Modal
type Vert struct {
	ID    int
	X     [3]float64
	Coeff []float64
}

type Edge struct {
	ID int
	L  int
	// Con is set when the neighbour traverses the edge in the opposite direction
	Con   int
	Link  *Edge
	Coeff []float64
}

type Face struct {
	ID   int
	Type utils.ElementType
	L    int
	// Con bit 0 reverses the first face direction, bit 1 the second
	Con   int
	Link  *Face
	Coeff []float64
}

// Element is one spectral/hp element of any of the six shapes
type Element struct {
	ID      int
	Type    utils.ElementType
	L       int
	Q       [3]int
	Nmodes  int
	Nbmodes int
	State   State
	Phys    []float64
	Modal   []float64
	Vert    []Vert
	Edge    []Edge
	Face    []Face
	// X holds the modal coefficients of the physical coordinates
	X      [3][]float64
	Geom   *Geom
	Curve  []*Curve
	Cmodes [][3][]float64
	Surf   []*Surface
	tab    *basis.Table
	ref    *basis.RefShape
}

// New builds an element of type et with L modes per edge on the given
// vertices. The geometric factors are computed; a singular element is
// returned together with an error wrapping utils.ErrSingularElement.
func New(ctx *TransformContext, id int, et utils.ElementType, L int, verts [][3]float64,
	Qo ...[3]int) (e *Element, err error) {
	var (
		ref *basis.RefShape
		Q   = basis.DefaultQ(et, L)
	)
	if ref, err = basis.Reference(et); err != nil {
		return
	}
	if et.GetDimension() < 2 {
		err = fmt.Errorf("%w: %v elements", utils.ErrUnsupported, et)
		return
	}
	if len(verts) != len(ref.Verts) {
		err = fmt.Errorf("%v element needs %d vertices, have %d", et, len(ref.Verts), len(verts))
		return
	}
	if len(Qo) != 0 {
		Q = Qo[0]
	}
	e = &Element{ID: id, Type: et, L: L, ref: ref}
	if e.tab, err = ctx.Table(et, L, Q); err != nil {
		return nil, err
	}
	e.Q = e.tab.Q
	e.Nmodes, e.Nbmodes = e.tab.Nmodes(), e.tab.Nbmodes
	e.Phys = make([]float64, e.tab.Npts)
	e.Modal = make([]float64, e.Nmodes)
	e.setViews()
	for v := range e.Vert {
		e.Vert[v].X = verts[v]
	}
	nf := len(ref.Faces)
	e.Curve = make([]*Curve, nf)
	e.Cmodes = make([][3][]float64, nf)
	e.Surf = make([]*Surface, nf)
	e.straightCoords()
	err = SetGeofac(ctx, e)
	return
}

func (e *Element) setViews() {
	var (
		b    = e.tab.Basis
		view = func(kind basis.EntityKind, ent int) []float64 {
			idx := b.EntityModes(kind, ent)
			if len(idx) == 0 {
				return e.Modal[0:0:0]
			}
			lo, hi := idx[0], idx[len(idx)-1]+1
			return e.Modal[lo:hi:hi]
		}
	)
	e.Vert = make([]Vert, len(e.ref.Verts))
	for v := range e.Vert {
		e.Vert[v] = Vert{ID: v, Coeff: view(basis.Vertex, v)}
	}
	e.Edge = make([]Edge, len(e.ref.Edges))
	for i := range e.Edge {
		e.Edge[i] = Edge{ID: i, L: e.L, Coeff: view(basis.Edge, i)}
	}
	if e.Dim() == 3 {
		e.Face = make([]Face, len(e.ref.Faces))
		for f := range e.Face {
			e.Face[f] = Face{ID: f, Type: e.ref.Faces[f].Type, L: e.L, Coeff: view(basis.Face, f)}
		}
	}
}

func (e *Element) Dim() int { return e.Type.GetDimension() }

func (e *Element) Table() *basis.Table { return e.tab }

func (e *Element) Ref() *basis.RefShape { return e.ref }

// NumFaces is the number of boundary entities: edges in 2D, faces in 3D
func (e *Element) NumFaces() int { return len(e.ref.Faces) }

func (e *Element) FaceType(f int) utils.ElementType { return e.ref.Faces[f].Type }

// Interior is the view of the interior mode coefficients
func (e *Element) Interior() []float64 { return e.Modal[e.Nbmodes:e.Nmodes:e.Nmodes] }

// Trace returns the trace map of boundary entity f
func (e *Element) Trace(f int) *basis.Trace { return &e.tab.Traces()[f] }

// FaceQ is the number of quadrature points per direction on the faces
func (e *Element) FaceQ() int { return e.Q[0] }

func (e *Element) IsCurved() bool {
	for _, c := range e.Curve {
		if c != nil && c.Type != Straight {
			return true
		}
	}
	return false
}

// straightCoords sets the coordinate expansion to the vertex interpolant
func (e *Element) straightCoords() {
	for d := 0; d < 3; d++ {
		e.X[d] = make([]float64, e.Nmodes)
		for v := range e.Vert {
			e.X[d][v] = e.Vert[v].X[d]
		}
	}
}

// Zero clears both buffers
func (e *Element) Zero() {
	for i := range e.Modal {
		e.Modal[i] = 0
	}
	for i := range e.Phys {
		e.Phys[i] = 0
	}
}

// Link connects two edges shared by neighbouring elements
func LinkEdges(e1, e2 *Edge, con int) {
	e1.Link, e2.Link = e2, e1
	e1.Con, e2.Con = con, con
}

// LinkFaces connects two faces shared by neighbouring elements
func LinkFaces(f1, f2 *Face, con int) {
	f1.Link, f2.Link = f2, f1
	f1.Con, f2.Con = con, con
}

func (e *Element) String() string {
	return fmt.Sprintf("%v[%d] L=%d Q=%v Nmodes=%d Nbmodes=%d state=%v",
		e.Type, e.ID, e.L, e.Q, e.Nmodes, e.Nbmodes, e.State)
}
