package element

import (
	"fmt"
	"math"

	"github.com/notargets/gohp/basis"
	"github.com/notargets/gohp/utils"
)

type CurveType uint8

const (
	Straight CurveType = iota
	// Arc places a 2D edge on the circle Center, Radius
	Arc
	// Sphere places a face on the sphere Center, Radius
	Sphere
	// Map moves boundary points with a user function
	Map
)

func (ct CurveType) String() string {
	return [...]string{"Straight", "Arc", "Sphere", "Map"}[ct]
}

// Curve describes the true shape of one boundary entity of an element.
// The element vertices are expected to lie on the curve.
type Curve struct {
	Type   CurveType
	Center [3]float64
	Radius float64
	Fn     func(x [3]float64) [3]float64
}

// Project moves a point of the straight sided face onto the curve
func (c *Curve) Project(x [3]float64) (y [3]float64) {
	switch c.Type {
	case Straight:
		return x
	case Arc, Sphere:
		var (
			r  float64
			nd = 3
		)
		if c.Type == Arc {
			nd = 2
		}
		for d := 0; d < nd; d++ {
			r += (x[d] - c.Center[d]) * (x[d] - c.Center[d])
		}
		r = math.Sqrt(r)
		y = x
		if r < utils.NODETOL {
			return
		}
		for d := 0; d < nd; d++ {
			y[d] = c.Center[d] + c.Radius*(x[d]-c.Center[d])/r
		}
	case Map:
		return c.Fn(x)
	default:
		panic(fmt.Errorf("%w: curve type %v", utils.ErrUnsupported, c.Type))
	}
	return
}

// edgePoint places the point t in [-1,1] of the straight edge x0 -> x1 on the
// curve. Arcs are sampled uniformly in angle.
func (c *Curve) edgePoint(x0, x1 [3]float64, t float64) (y [3]float64) {
	if c.Type == Arc {
		var (
			a0 = math.Atan2(x0[1]-c.Center[1], x0[0]-c.Center[0])
			a1 = math.Atan2(x1[1]-c.Center[1], x1[0]-c.Center[0])
		)
		// the short way round
		if a1-a0 > math.Pi {
			a1 -= 2 * math.Pi
		} else if a0-a1 > math.Pi {
			a1 += 2 * math.Pi
		}
		a := a0 + 0.5*(1+t)*(a1-a0)
		y = x0
		y[0] = c.Center[0] + c.Radius*math.Cos(a)
		y[1] = c.Center[1] + c.Radius*math.Sin(a)
		return
	}
	for d := 0; d < 3; d++ {
		y[d] = 0.5*(1-t)*x0[d] + 0.5*(1+t)*x1[d]
	}
	return c.Project(y)
}

// StraightElmt removes every curve from e and resets the coordinate expansion
// to the vertex interpolant.
func StraightElmt(ctx *TransformContext, e *Element) error {
	for f := range e.Curve {
		e.Curve[f] = nil
		e.Cmodes[f] = [3][]float64{}
	}
	e.straightCoords()
	return SetGeofac(ctx, e)
}

// CurvedElmt attaches curve c to face f of e (an edge in 2D) and rebuilds the
// coordinate expansion and geometric factors. The displacement of the face
// from its straight position is kept in e.Cmodes[f].
func CurvedElmt(ctx *TransformContext, e *Element, f int, c *Curve) error {
	if c.Type == Map && c.Fn == nil {
		return fmt.Errorf("element %d face %d: map curve without a function", e.ID, f)
	}
	if c.Type == Arc && e.Dim() != 2 {
		return fmt.Errorf("%w: arc curve on a %v face", utils.ErrUnsupported, e.FaceType(f))
	}
	e.Curve[f] = c
	e.straightCoords()
	for ff, cc := range e.Curve {
		e.Cmodes[ff] = [3][]float64{}
		if cc == nil || cc.Type == Straight {
			continue
		}
		curveFace(ctx, e, ff, cc)
	}
	return SetGeofac(ctx, e)
}

// curveFace projects the curved positions of face f onto the face expansion
// and assigns them to the boundary modes of the coordinate expansion.
func curveFace(ctx *TransformContext, e *Element, f int, c *Curve) {
	var (
		ft  = e.FaceType(f)
		q   = e.FaceQ()
		tab = ctx.FaceTable(ft, e.L, q)
		tr  = e.Trace(f)
		fv  = e.ref.Faces[f].Verts
		// straight position of face coordinates (u,v)
		lerp = func(u, v float64) (x [3]float64) {
			for i, w := range basis.FaceVertexWeights(ft, u, v) {
				for d := 0; d < 3; d++ {
					x[d] += w * e.Vert[fv[i]].X[d]
				}
			}
			return
		}
		target [3][]float64
		edges  [3][][]float64
	)
	for d := 0; d < 3; d++ {
		target[d] = make([]float64, tab.Npts)
	}
	for ind, xi := range tab.Xi {
		var y [3]float64
		if ft == utils.Line {
			y = c.edgePoint(e.Vert[fv[0]].X, e.Vert[fv[1]].X, xi[0])
		} else {
			y = c.Project(lerp(xi[0], xi[1]))
		}
		for d := 0; d < 3; d++ {
			target[d][ind] = y[d]
		}
	}
	if ft != utils.Line {
		// edges are sampled along their own straight line so that faces
		// sharing an edge produce the same edge modes
		var (
			rf, _ = basis.Reference(ft)
			zgll  = tab.Z[0]
		)
		for d := 0; d < 3; d++ {
			edges[d] = make([][]float64, len(rf.Edges))
		}
		for ie, ev := range rf.Edges {
			for d := 0; d < 3; d++ {
				edges[d][ie] = make([]float64, len(zgll))
			}
			for i, t := range zgll {
				y := c.edgePoint(e.Vert[fv[ev[0]]].X, e.Vert[fv[ev[1]]].X, t)
				for d := 0; d < 3; d++ {
					edges[d][ie][i] = y[d]
				}
			}
		}
	}
	for d := 0; d < e.Dim(); d++ {
		var (
			fc = JtransFace(ctx, ft, e.L, q, target[d], edges[d])
			cm = make([]float64, len(fc))
		)
		copy(cm, fc)
		for i, m := range tr.Elem {
			if m < len(e.Vert) {
				cm[tr.FMode[i]] -= tr.Sign[i] * e.Vert[m].X[d]
			}
		}
		e.Cmodes[f][d] = cm
		tr.Scatter(fc, e.X[d])
	}
}
