package basis

import (
	"fmt"
	"math"

	"github.com/notargets/gohp/utils"
)

// RefFace is one boundary entity of a reference element: the edges of a 2D
// element, the faces of a 3D element. Verts are listed in the face's own
// vertex order, which fixes the face coordinates (u,v).
type RefFace struct {
	Type  utils.ElementType
	Verts []int
	// Sign orients the face tangent cross product to the outward normal
	Sign float64
}

// RefShape holds the reference geometry of an element type on [-1,1]^d
type RefShape struct {
	Type  utils.ElementType
	Dim   int
	Verts [][3]float64
	Edges [][2]int
	Faces []RefFace
}

var refShapes = map[utils.ElementType]*RefShape{}

func init() {
	for _, et := range []utils.ElementType{utils.Line, utils.Triangle, utils.Quad,
		utils.Tet, utils.Pyramid, utils.Prism, utils.Hex} {
		refShapes[et] = newRefShape(et)
	}
}

// Reference returns the reference geometry of an element type
func Reference(et utils.ElementType) (rs *RefShape, err error) {
	var ok bool
	if rs, ok = refShapes[et]; !ok {
		err = fmt.Errorf("%w: element type %v", utils.ErrUnsupported, et)
	}
	return
}

func newRefShape(et utils.ElementType) (rs *RefShape) {
	rs = &RefShape{Type: et, Dim: et.GetDimension()}
	switch et {
	case utils.Line:
		rs.Verts = [][3]float64{{-1, 0, 0}, {1, 0, 0}}
		rs.Edges = [][2]int{{0, 1}}
	case utils.Triangle:
		rs.Verts = [][3]float64{{-1, -1, 0}, {1, -1, 0}, {-1, 1, 0}}
		rs.Edges = [][2]int{{0, 1}, {1, 2}, {0, 2}}
	case utils.Quad:
		rs.Verts = [][3]float64{{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0}}
		rs.Edges = [][2]int{{0, 1}, {1, 2}, {3, 2}, {0, 3}}
	case utils.Tet:
		rs.Verts = [][3]float64{{-1, -1, -1}, {1, -1, -1}, {-1, 1, -1}, {-1, -1, 1}}
		rs.Edges = [][2]int{{0, 1}, {1, 2}, {0, 2}, {0, 3}, {1, 3}, {2, 3}}
		rs.Faces = []RefFace{
			{Type: utils.Triangle, Verts: []int{0, 1, 2}},
			{Type: utils.Triangle, Verts: []int{0, 1, 3}},
			{Type: utils.Triangle, Verts: []int{1, 2, 3}},
			{Type: utils.Triangle, Verts: []int{0, 2, 3}},
		}
	case utils.Pyramid:
		rs.Verts = [][3]float64{{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1}, {-1, -1, 1}}
		rs.Edges = [][2]int{{0, 1}, {1, 2}, {3, 2}, {0, 3}, {0, 4}, {1, 4}, {2, 4}, {3, 4}}
		rs.Faces = []RefFace{
			{Type: utils.Quad, Verts: []int{0, 1, 2, 3}},
			{Type: utils.Triangle, Verts: []int{0, 1, 4}},
			{Type: utils.Triangle, Verts: []int{1, 2, 4}},
			{Type: utils.Triangle, Verts: []int{3, 2, 4}},
			{Type: utils.Triangle, Verts: []int{0, 3, 4}},
		}
	case utils.Prism:
		rs.Verts = [][3]float64{{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
			{-1, -1, 1}, {-1, 1, 1}}
		rs.Edges = [][2]int{{0, 1}, {1, 2}, {3, 2}, {0, 3}, {0, 4}, {1, 4}, {2, 5}, {3, 5}, {4, 5}}
		rs.Faces = []RefFace{
			{Type: utils.Quad, Verts: []int{0, 1, 2, 3}},
			{Type: utils.Triangle, Verts: []int{0, 1, 4}},
			{Type: utils.Quad, Verts: []int{1, 2, 5, 4}},
			{Type: utils.Triangle, Verts: []int{3, 2, 5}},
			{Type: utils.Quad, Verts: []int{0, 3, 5, 4}},
		}
	case utils.Hex:
		rs.Verts = [][3]float64{{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
			{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1}}
		rs.Edges = [][2]int{{0, 1}, {1, 2}, {3, 2}, {0, 3}, {0, 4}, {1, 5}, {2, 6}, {3, 7},
			{4, 5}, {5, 6}, {7, 6}, {4, 7}}
		rs.Faces = []RefFace{
			{Type: utils.Quad, Verts: []int{0, 1, 2, 3}},
			{Type: utils.Quad, Verts: []int{0, 1, 5, 4}},
			{Type: utils.Quad, Verts: []int{1, 2, 6, 5}},
			{Type: utils.Quad, Verts: []int{3, 2, 6, 7}},
			{Type: utils.Quad, Verts: []int{0, 3, 7, 4}},
			{Type: utils.Quad, Verts: []int{4, 5, 6, 7}},
		}
	}
	if rs.Dim == 2 {
		for _, e := range rs.Edges {
			rs.Faces = append(rs.Faces, RefFace{Type: utils.Line, Verts: []int{e[0], e[1]}})
		}
	}
	// Outward orientation of each face, measured against the element centroid
	var cent [3]float64
	for _, v := range rs.Verts {
		for d := 0; d < 3; d++ {
			cent[d] += v[d] / float64(len(rs.Verts))
		}
	}
	for f := range rs.Faces {
		if rs.Dim < 2 {
			break
		}
		var (
			fc     = rs.FaceToElement(f, 0, 0)
			tu, tv = rs.faceTangents(f)
			n      = FaceNormal(rs.Dim, tu, tv)
			dot    float64
		)
		// the centroid of the face parameter domain is used for tri faces
		if rs.Faces[f].Type == utils.Triangle {
			fc = rs.FaceToElement(f, -1./3., -1./3.)
		}
		for d := 0; d < 3; d++ {
			dot += n[d] * (fc[d] - cent[d])
		}
		rs.Faces[f].Sign = 1
		if dot < 0 {
			rs.Faces[f].Sign = -1
		}
	}
	return
}

// FaceNormal is the un-normalized normal built from face tangents: the cross
// product in 3D, the clockwise rotation of tu in 2D.
func FaceNormal(dim int, tu, tv [3]float64) (n [3]float64) {
	if dim == 2 {
		return [3]float64{tu[1], -tu[0], 0}
	}
	return [3]float64{
		tu[1]*tv[2] - tu[2]*tv[1],
		tu[2]*tv[0] - tu[0]*tv[2],
		tu[0]*tv[1] - tu[1]*tv[0],
	}
}

func (rs *RefShape) faceTangents(f int) (tu, tv [3]float64) {
	var (
		fv = rs.Faces[f].Verts
		V  = func(i int) [3]float64 { return rs.Verts[fv[i]] }
	)
	for d := 0; d < 3; d++ {
		switch rs.Faces[f].Type {
		case utils.Line:
			tu[d] = 0.5 * (V(1)[d] - V(0)[d])
		case utils.Triangle:
			tu[d] = 0.5 * (V(1)[d] - V(0)[d])
			tv[d] = 0.5 * (V(2)[d] - V(0)[d])
		case utils.Quad:
			tu[d] = 0.25 * (V(1)[d] - V(0)[d] + V(2)[d] - V(3)[d])
			tv[d] = 0.25 * (V(3)[d] - V(0)[d] + V(2)[d] - V(1)[d])
		}
	}
	return
}

// FaceVertexWeights are the vertex interpolation weights of face coordinates (u,v)
func FaceVertexWeights(ft utils.ElementType, u, v float64) (w []float64) {
	switch ft {
	case utils.Line:
		w = []float64{0.5 * (1 - u), 0.5 * (1 + u)}
	case utils.Triangle:
		w = []float64{-0.5 * (u + v), 0.5 * (1 + u), 0.5 * (1 + v)}
	case utils.Quad:
		w = []float64{
			0.25 * (1 - u) * (1 - v), 0.25 * (1 + u) * (1 - v),
			0.25 * (1 + u) * (1 + v), 0.25 * (1 - u) * (1 + v),
		}
	default:
		panic(fmt.Errorf("%w: face type %v", utils.ErrUnsupported, ft))
	}
	return
}

// FaceToElement maps face coordinates (u,v) of face f to reference coordinates
func (rs *RefShape) FaceToElement(f int, u, v float64) (xi [3]float64) {
	fc := rs.Faces[f]
	for i, w := range FaceVertexWeights(fc.Type, u, v) {
		for d := 0; d < 3; d++ {
			xi[d] += w * rs.Verts[fc.Verts[i]][d]
		}
	}
	return
}

// Collapse maps reference coordinates to the collapsed tensor coordinates (a,b,c).
// Points on a collapsed edge or vertex map to a = -1 (and b = -1).
func Collapse(et utils.ElementType, xi [3]float64) (abc [3]float64) {
	var (
		r, s, t = xi[0], xi[1], xi[2]
		ratio   = func(num, den float64) float64 {
			if math.Abs(den) < utils.NODETOL {
				return -1
			}
			return 2*num/den - 1
		}
	)
	switch et {
	case utils.Line, utils.Quad, utils.Hex:
		return xi
	case utils.Triangle:
		abc = [3]float64{ratio(1+r, 1-s), s, 0}
	case utils.Tet:
		abc = [3]float64{ratio(1+r, -s-t), ratio(1+s, 1-t), t}
	case utils.Pyramid:
		abc = [3]float64{ratio(1+r, 1-t), ratio(1+s, 1-t), t}
	case utils.Prism:
		abc = [3]float64{ratio(1+r, 1-t), s, t}
	default:
		panic(fmt.Errorf("%w: element type %v", utils.ErrUnsupported, et))
	}
	return
}

// Uncollapse is the inverse of Collapse
func Uncollapse(et utils.ElementType, abc [3]float64) (xi [3]float64) {
	var a, b, c = abc[0], abc[1], abc[2]
	switch et {
	case utils.Line, utils.Quad, utils.Hex:
		return abc
	case utils.Triangle:
		xi = [3]float64{0.5*(1+a)*(1-b) - 1, b, 0}
	case utils.Tet:
		xi = [3]float64{0.25*(1+a)*(1-b)*(1-c) - 1, 0.5*(1+b)*(1-c) - 1, c}
	case utils.Pyramid:
		xi = [3]float64{0.5*(1+a)*(1-c) - 1, 0.5*(1+b)*(1-c) - 1, c}
	case utils.Prism:
		xi = [3]float64{0.5*(1+a)*(1-c) - 1, b, c}
	default:
		panic(fmt.Errorf("%w: element type %v", utils.ErrUnsupported, et))
	}
	return
}

// chainRule converts derivatives in collapsed coordinates to reference
// coordinates at the collapsed point abc. Collapsed singular points are never
// quadrature points.
func chainRule(et utils.ElementType, abc, dabc [3]float64) (dxi [3]float64) {
	var (
		a, b, c    = abc[0], abc[1], abc[2]
		da, db, dc = dabc[0], dabc[1], dabc[2]
	)
	switch et {
	case utils.Line, utils.Quad, utils.Hex:
		return dabc
	case utils.Triangle:
		dxi[0] = 2 / (1 - b) * da
		dxi[1] = (1+a)/(1-b)*da + db
	case utils.Tet:
		fac := 2 / ((1 - b) * (1 - c))
		dxi[0] = 2 * fac * da
		dxi[1] = fac*(1+a)*da + 2/(1-c)*db
		dxi[2] = fac*(1+a)*da + (1+b)/(1-c)*db + dc
	case utils.Pyramid:
		dxi[0] = 2 / (1 - c) * da
		dxi[1] = 2 / (1 - c) * db
		dxi[2] = (1+a)/(1-c)*da + (1+b)/(1-c)*db + dc
	case utils.Prism:
		dxi[0] = 2 / (1 - c) * da
		dxi[1] = db
		dxi[2] = (1+a)/(1-c)*da + dc
	}
	return
}

// Contains reports whether reference coordinates lie inside the element, within tol
func Contains(et utils.ElementType, xi [3]float64, tol float64) bool {
	var r, s, t = xi[0], xi[1], xi[2]
	in := func(x float64) bool { return x >= -1-tol && x <= 1+tol }
	switch et {
	case utils.Line:
		return in(r)
	case utils.Quad:
		return in(r) && in(s)
	case utils.Hex:
		return in(r) && in(s) && in(t)
	case utils.Triangle:
		return r >= -1-tol && s >= -1-tol && r+s <= tol
	case utils.Tet:
		return r >= -1-tol && s >= -1-tol && t >= -1-tol && r+s+t <= -1+tol
	case utils.Pyramid:
		return t >= -1-tol && r >= -1-tol && s >= -1-tol && r+t <= tol && s+t <= tol
	case utils.Prism:
		return in(s) && r >= -1-tol && t >= -1-tol && r+t <= tol
	}
	return false
}
