package element

import (
	"fmt"

	"github.com/notargets/gohp/basis"
	"github.com/notargets/gohp/polylib"
	"github.com/notargets/gohp/utils"
)

// JtransEdge projects values at the q Gauss-Lobatto points of an edge onto
// the 1D expansion with L modes: the end point values become the vertex
// coefficients and the remainder is projected onto the bubble modes.
// The result is ordered (v0, v1, k = 2..L-1).
func JtransEdge(ctx *TransformContext, L int, u []float64, out ...[]float64) (c []float64) {
	var (
		q   = len(u)
		tab = ctx.FaceTable(utils.Line, L, q)
		mm  = GetMMat1D(ctx, L, q)
	)
	if len(out) != 0 {
		c = out[0][:L]
	} else {
		c = make([]float64, L)
	}
	c[0], c[1] = u[0], u[q-1]
	if L == 2 {
		return
	}
	var (
		b0, b1 = tab.B.Row(0), tab.B.Row(1)
		rhs    = c[2:]
	)
	for n := range rhs {
		bn := tab.B.Row(mm.Modes[n])
		var sum float64
		for i, w := range tab.W {
			sum += bn[i] * w * (u[i] - c[0]*b0[i] - c[1]*b1[i])
		}
		rhs[n] = sum
	}
	mm.Solve(rhs)
	return
}

// faceEdgeSamples extracts the values along each edge of a face from values
// on the face grid, at the q Gauss-Lobatto points of the edge. Triangle edges
// running along the Gauss-Radau direction are interpolated.
func faceEdgeSamples(ft utils.ElementType, tab *basis.Table, u []float64) (edges [][]float64) {
	var (
		q      = tab.Q[0]
		qb     = tab.Q[1]
		zgll   = tab.Z[0]
		column = func(i int) (v []float64) {
			v = make([]float64, qb)
			for j := range v {
				v[j] = u[i+q*j]
			}
			return
		}
		row = func(j int) (v []float64) {
			v = make([]float64, q)
			copy(v, u[q*j:q*(j+1)])
			return
		}
	)
	switch ft {
	case utils.Quad:
		edges = [][]float64{row(0), column(q - 1), row(qb - 1), column(0)}
	case utils.Triangle:
		I := polylib.Imat(tab.Z[1], zgll)
		edges = [][]float64{row(0), I.MulVec(column(q - 1)), I.MulVec(column(0))}
	default:
		panic(fmt.Errorf("%w: face type %v", utils.ErrUnsupported, ft))
	}
	return
}

// JtransFace projects values on the grid of a face (Line, Triangle or Quad
// with q points per direction) onto the face expansion. Each face edge is
// projected with JtransEdge, then the remainder is projected onto the face
// interior modes. Edge samples at the Gauss-Lobatto points may be given to
// pin the edges exactly.
func JtransFace(ctx *TransformContext, ft utils.ElementType, L, q int, u []float64,
	edgeSamples ...[][]float64) (c []float64) {
	if ft == utils.Line {
		return JtransEdge(ctx, L, u)
	}
	var (
		tab   = ctx.FaceTable(ft, L, q)
		rs, _ = basis.Reference(ft)
		edges [][]float64
	)
	if len(edgeSamples) != 0 && edgeSamples[0] != nil {
		edges = edgeSamples[0]
	} else {
		edges = faceEdgeSamples(ft, tab, u)
	}
	c = make([]float64, tab.Nmodes())
	for e, ev := range rs.Edges {
		ce := JtransEdge(ctx, L, edges[e])
		c[ev[0]], c[ev[1]] = ce[0], ce[1]
		for i, m := range tab.EntityModes(basis.Edge, e) {
			c[m] = ce[2+i]
		}
	}
	mm := GetMMatFace(ctx, ft, L, q)
	if mm.N == 0 {
		return
	}
	var (
		r   = make([]float64, tab.Npts)
		rhs = make([]float64, mm.N)
	)
	copy(r, u)
	for m := 0; m < tab.Nbmodes; m++ {
		bm := tab.B.Row(m)
		for ind := range r {
			r[ind] -= c[m] * bm[ind]
		}
	}
	for n, m := range mm.Modes {
		bm := tab.B.Row(m)
		var sum float64
		for ind, w := range tab.W {
			sum += bm[ind] * w * r[ind]
		}
		rhs[n] = sum
	}
	mm.Solve(rhs)
	for n, m := range mm.Modes {
		c[m] = rhs[n]
	}
	return
}

// FaceBwd evaluates a face expansion on the face grid
func FaceBwd(ctx *TransformContext, ft utils.ElementType, L, q int, c []float64) []float64 {
	return ctx.FaceTable(ft, L, q).B.MulTransVec(c)
}
