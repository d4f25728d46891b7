package basis

import (
	"fmt"
	"sort"
	"sync"

	"github.com/notargets/gohp/polylib"
	"github.com/notargets/gohp/utils"
)

// EntityKind is the topological entity a mode belongs to
type EntityKind uint8

const (
	Vertex EntityKind = iota
	Edge
	Face
	Interior
)

func (ek EntityKind) String() string {
	return [...]string{"Vertex", "Edge", "Face", "Interior"}[ek]
}

// ModeFunc evaluates a mode at collapsed coordinates (a,b,c)
type ModeFunc func(a, b, c float64) float64

// Mode is one C0 hierarchical expansion mode.
// Idx holds the polynomial indices: k for edge modes, (m,n) or (p,q) for face
// modes in face coordinates, the 1D factor indices for tensor products.
type Mode struct {
	Kind   EntityKind
	Entity int
	Idx    [3]int
	Eval   ModeFunc
}

// Basis is the modal expansion of one element type with L modes per direction
// (polynomial degree L-1). Modes are ordered vertices, edges, faces, interior.
type Basis struct {
	Type    utils.ElementType
	L       int
	Modes   []Mode
	Nbmodes int
	// Ortho is the orthogonal (Dubiner) expansion spanning the same space
	Ortho     []ModeFunc
	OrthoIdx  [][3]int
	traceOnce sync.Once
	traces    []Trace
}

// New builds the expansion of element type et with L modes per edge, L >= 2
func New(et utils.ElementType, L int) (b *Basis, err error) {
	if L < 2 {
		err = fmt.Errorf("%w: expansion order L = %d, need L >= 2", utils.ErrUnsupported, L)
		return
	}
	b = &Basis{Type: et, L: L}
	switch et {
	case utils.Line:
		b.Modes = lineModes(L)
	case utils.Triangle:
		b.Modes = triModes(L)
	case utils.Quad:
		b.Modes = quadModes(L)
	case utils.Tet:
		b.Modes = tetModes(L)
	case utils.Pyramid:
		b.Modes = pyrModes(L)
	case utils.Prism:
		b.Modes = prismModes(L)
	case utils.Hex:
		b.Modes = hexModes(L)
	default:
		return nil, fmt.Errorf("%w: element type %v", utils.ErrUnsupported, et)
	}
	sort.SliceStable(b.Modes, func(i, j int) bool {
		mi, mj := b.Modes[i], b.Modes[j]
		if mi.Kind != mj.Kind {
			return mi.Kind < mj.Kind
		}
		return mi.Entity < mj.Entity
	})
	for _, m := range b.Modes {
		if m.Kind != Interior {
			b.Nbmodes++
		}
	}
	b.Ortho, b.OrthoIdx = orthoModes(et, L)
	if len(b.Ortho) != len(b.Modes) {
		panic(fmt.Errorf("%v expansion: %d orthogonal modes for %d C0 modes",
			et, len(b.Ortho), len(b.Modes)))
	}
	return
}

func (b *Basis) Nmodes() int { return len(b.Modes) }

// EntityModes returns the indices of the modes that belong to an entity
func (b *Basis) EntityModes(kind EntityKind, entity int) (idx []int) {
	for i, m := range b.Modes {
		if m.Kind == kind && m.Entity == entity {
			idx = append(idx, i)
		}
	}
	return
}

// Eval evaluates every mode at reference coordinates xi
func (b *Basis) Eval(xi [3]float64, out ...[]float64) (v []float64) {
	if len(out) != 0 {
		v = out[0]
	} else {
		v = make([]float64, len(b.Modes))
	}
	abc := Collapse(b.Type, xi)
	for i, m := range b.Modes {
		v[i] = m.Eval(abc[0], abc[1], abc[2])
	}
	return
}

func edgeFn(li, lj float64, k int) float64 {
	return li * lj * polylib.ScaledJacobi(k-2, 1, 1, lj-li, li+lj)
}

func faceFn(li, lj, lk float64, m, n int) float64 {
	return li * lj * lk * polylib.Jacobi(m, 0, 0, lj-li) * polylib.Jacobi(n, 0, 0, 2*lk-1)
}

func lineModes(L int) (modes []Mode) {
	for k := 0; k < L; k++ {
		m := Mode{Kind: Interior, Idx: [3]int{k}, Eval: func(a, _, _ float64) float64 {
			return polylib.Bubble(k, a)
		}}
		if k < 2 {
			m.Kind, m.Entity = Vertex, k
		}
		modes = append(modes, m)
	}
	return
}

func triLambda(a, b float64) [3]float64 {
	xi := Uncollapse(utils.Triangle, [3]float64{a, b, 0})
	return [3]float64{-0.5 * (xi[0] + xi[1]), 0.5 * (1 + xi[0]), 0.5 * (1 + xi[1])}
}

func triModes(L int) (modes []Mode) {
	edges := refShapes[utils.Triangle].Edges
	for v := 0; v < 3; v++ {
		modes = append(modes, Mode{Kind: Vertex, Entity: v, Eval: func(a, b, _ float64) float64 {
			return triLambda(a, b)[v]
		}})
	}
	for e, ev := range edges {
		for k := 2; k < L; k++ {
			modes = append(modes, Mode{Kind: Edge, Entity: e, Idx: [3]int{k},
				Eval: func(a, b, _ float64) float64 {
					l := triLambda(a, b)
					return edgeFn(l[ev[0]], l[ev[1]], k)
				}})
		}
	}
	for m := 0; m <= L-4; m++ {
		for n := 0; m+n <= L-4; n++ {
			modes = append(modes, Mode{Kind: Interior, Idx: [3]int{m, n},
				Eval: func(a, b, _ float64) float64 {
					l := triLambda(a, b)
					return faceFn(l[0], l[1], l[2], m, n)
				}})
		}
	}
	return
}

func tetLambda(a, b, c float64) [4]float64 {
	xi := Uncollapse(utils.Tet, [3]float64{a, b, c})
	return [4]float64{-0.5 * (1 + xi[0] + xi[1] + xi[2]),
		0.5 * (1 + xi[0]), 0.5 * (1 + xi[1]), 0.5 * (1 + xi[2])}
}

func tetModes(L int) (modes []Mode) {
	rs := refShapes[utils.Tet]
	for v := 0; v < 4; v++ {
		modes = append(modes, Mode{Kind: Vertex, Entity: v, Eval: func(a, b, c float64) float64 {
			return tetLambda(a, b, c)[v]
		}})
	}
	for e, ev := range rs.Edges {
		for k := 2; k < L; k++ {
			modes = append(modes, Mode{Kind: Edge, Entity: e, Idx: [3]int{k},
				Eval: func(a, b, c float64) float64 {
					l := tetLambda(a, b, c)
					return edgeFn(l[ev[0]], l[ev[1]], k)
				}})
		}
	}
	for f, face := range rs.Faces {
		fv := face.Verts
		for m := 0; m <= L-4; m++ {
			for n := 0; m+n <= L-4; n++ {
				modes = append(modes, Mode{Kind: Face, Entity: f, Idx: [3]int{m, n},
					Eval: func(a, b, c float64) float64 {
						l := tetLambda(a, b, c)
						return faceFn(l[fv[0]], l[fv[1]], l[fv[2]], m, n)
					}})
			}
		}
	}
	for i := 0; i <= L-5; i++ {
		for j := 0; i+j <= L-5; j++ {
			for k := 0; i+j+k <= L-5; k++ {
				modes = append(modes, Mode{Kind: Interior, Idx: [3]int{i, j, k},
					Eval: func(a, b, c float64) float64 {
						l := tetLambda(a, b, c)
						xi := Uncollapse(utils.Tet, [3]float64{a, b, c})
						return l[0] * l[1] * l[2] * l[3] * polylib.Jacobi(i, 0, 0, xi[0]) *
							polylib.Jacobi(j, 0, 0, xi[1]) * polylib.Jacobi(k, 0, 0, xi[2])
					}})
			}
		}
	}
	return
}

// pyrPhi are the pyramid vertex functions, bilinear on the base and
// blended with (1-c)/2 toward the apex.
func pyrPhi(a, b, c float64) [5]float64 {
	var (
		t      = 0.5 * (1 - c)
		a0, a1 = 0.5 * (1 - a), 0.5 * (1 + a)
		b0, b1 = 0.5 * (1 - b), 0.5 * (1 + b)
	)
	return [5]float64{a0 * b0 * t, a1 * b0 * t, a1 * b1 * t, a0 * b1 * t, 0.5 * (1 + c)}
}

func pyrModes(L int) (modes []Mode) {
	var (
		rs = refShapes[utils.Pyramid]
		P  = L - 1
		// base edges in tensor form: (a index, b index) of the 1D factors, the
		// bubble sits in the direction marked -1
		baseEdges = [4][2]int{{-1, 0}, {1, -1}, {-1, 1}, {0, -1}}
	)
	for v := 0; v < 5; v++ {
		modes = append(modes, Mode{Kind: Vertex, Entity: v, Eval: func(a, b, c float64) float64 {
			return pyrPhi(a, b, c)[v]
		}})
	}
	for e := 0; e < 8; e++ {
		for k := 2; k < L; k++ {
			var f ModeFunc
			if e < 4 {
				pa, pb := baseEdges[e][0], baseEdges[e][1]
				if pa < 0 {
					pa = k
				}
				if pb < 0 {
					pb = k
				}
				f = func(a, b, c float64) float64 {
					return polylib.Bubble(pa, a) * polylib.Bubble(pb, b) * utils.POW(0.5*(1-c), k)
				}
			} else {
				ev := rs.Edges[e]
				f = func(a, b, c float64) float64 {
					phi := pyrPhi(a, b, c)
					return edgeFn(phi[ev[0]], phi[ev[1]], k)
				}
			}
			modes = append(modes, Mode{Kind: Edge, Entity: e, Idx: [3]int{k}, Eval: f})
		}
	}
	for p := 2; p <= P; p++ {
		for q := 2; q <= P; q++ {
			modes = append(modes, Mode{Kind: Face, Entity: 0, Idx: [3]int{p, q},
				Eval: func(a, b, c float64) float64 {
					return polylib.Bubble(p, a) * polylib.Bubble(q, b) * utils.POW(0.5*(1-c), max(p, q))
				}})
		}
	}
	for f := 1; f < 5; f++ {
		fv := rs.Faces[f].Verts
		for m := 0; m <= L-4; m++ {
			for n := 0; m+n <= L-4; n++ {
				modes = append(modes, Mode{Kind: Face, Entity: f, Idx: [3]int{m, n},
					Eval: func(a, b, c float64) float64 {
						phi := pyrPhi(a, b, c)
						return faceFn(phi[fv[0]], phi[fv[1]], phi[fv[2]], m, n)
					}})
			}
		}
	}
	for p := 2; p <= P; p++ {
		for q := 2; q <= P; q++ {
			mpq := max(p, q)
			for r := 1; mpq+r <= P; r++ {
				modes = append(modes, Mode{Kind: Interior, Idx: [3]int{p, q, r},
					Eval: func(a, b, c float64) float64 {
						return polylib.Bubble(p, a) * polylib.Bubble(q, b) *
							utils.POW(0.5*(1-c), mpq) * 0.5 * (1 + c) *
							polylib.Jacobi(r-1, float64(2*mpq+1), 1, c)
					}})
			}
		}
	}
	return
}

// product builds a tensor product expansion from two factor expansions, the
// first of which carries nA polynomial indices.
// classify maps the factor modes onto the entities of the product element.
func product(A, B []Mode, nA int, eval func(fa, fb ModeFunc) ModeFunc,
	classify func(ma, mb Mode) (EntityKind, int)) (modes []Mode) {
	for _, ma := range A {
		for _, mb := range B {
			kind, ent := classify(ma, mb)
			m := Mode{Kind: kind, Entity: ent, Idx: ma.Idx, Eval: eval(ma.Eval, mb.Eval)}
			m.Idx[nA] = mb.Idx[0]
			modes = append(modes, m)
		}
	}
	return
}

func quadModes(L int) []Mode {
	var (
		line = lineModes(L)
		// edge numbers: bubble in a with b vertex j, bubble in b with a vertex i
		aEdge = [2]int{0, 2}
		bEdge = [2]int{3, 1}
		vert  = [2][2]int{{0, 3}, {1, 2}}
	)
	return product(line, line, 1,
		func(fa, fb ModeFunc) ModeFunc {
			return func(a, b, _ float64) float64 { return fa(a, 0, 0) * fb(b, 0, 0) }
		},
		func(ma, mb Mode) (EntityKind, int) {
			switch {
			case ma.Kind == Vertex && mb.Kind == Vertex:
				return Vertex, vert[ma.Entity][mb.Entity]
			case mb.Kind == Vertex:
				return Edge, aEdge[mb.Entity]
			case ma.Kind == Vertex:
				return Edge, bEdge[ma.Entity]
			}
			return Interior, 0
		})
}

func hexModes(L int) []Mode {
	var (
		quad = quadModes(L)
		line = lineModes(L)
		// quad edge -> hex face for the vertical bubble
		edgeFace = [4]int{1, 2, 3, 4}
	)
	return product(quad, line, 2,
		func(fa, fb ModeFunc) ModeFunc {
			return func(a, b, c float64) float64 { return fa(a, b, 0) * fb(c, 0, 0) }
		},
		func(ma, mb Mode) (EntityKind, int) {
			switch ma.Kind {
			case Vertex:
				if mb.Kind == Vertex {
					return Vertex, ma.Entity + 4*mb.Entity
				}
				return Edge, 4 + ma.Entity
			case Edge:
				if mb.Kind == Vertex {
					return Edge, ma.Entity + 8*mb.Entity
				}
				return Face, edgeFace[ma.Entity]
			}
			if mb.Kind == Vertex {
				return Face, 5 * mb.Entity
			}
			return Interior, 0
		})
}

func prismModes(L int) []Mode {
	var (
		tri  = triModes(L)
		line = lineModes(L)
		// triangle vertex (A,B,C) x line vertex -> prism vertex
		vert = [3][2]int{{0, 3}, {1, 2}, {4, 5}}
		// triangle vertex x line bubble -> prism edge along b
		vEdge = [3]int{3, 1, 8}
		// triangle edge x line vertex -> prism edge
		tEdge = [3][2]int{{0, 2}, {5, 6}, {4, 7}}
		// triangle edge x line bubble -> prism quad face
		qFace = [3]int{0, 2, 4}
	)
	return product(tri, line, 2,
		func(fa, fb ModeFunc) ModeFunc {
			return func(a, b, c float64) float64 { return fa(a, c, 0) * fb(b, 0, 0) }
		},
		func(ma, mb Mode) (EntityKind, int) {
			switch ma.Kind {
			case Vertex:
				if mb.Kind == Vertex {
					return Vertex, vert[ma.Entity][mb.Entity]
				}
				return Edge, vEdge[ma.Entity]
			case Edge:
				if mb.Kind == Vertex {
					return Edge, tEdge[ma.Entity][mb.Entity]
				}
				return Face, qFace[ma.Entity]
			}
			if mb.Kind == Vertex {
				return Face, 1 + 2*mb.Entity
			}
			return Interior, 0
		})
}
