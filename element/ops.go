package element

import (
	"fmt"
	"math"

	"github.com/notargets/gohp/basis"
	"github.com/notargets/gohp/utils"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// SignChange negates the odd modes of every edge and face whose neighbour
// traverses it in the opposite direction. Applying it twice restores e.Modal.
func SignChange(ctx *TransformContext, e *Element) {
	for i := range e.Edge {
		if e.Edge[i].Con == 0 {
			continue
		}
		// edge mode j is the bubble of index k = j+2
		for j := range e.Edge[i].Coeff {
			if k := j + 2; k%2 == 1 {
				e.Edge[i].Coeff[j] = -e.Edge[i].Coeff[j]
			}
		}
	}
	for f := range e.Face {
		fc := &e.Face[f]
		if fc.Con == 0 {
			continue
		}
		var (
			tr = e.Trace(f)
			fb = ctx.FaceTable(fc.Type, e.L, e.FaceQ())
		)
		for _, m := range e.tab.EntityModes(basis.Face, f) {
			var (
				idx  = fb.Modes[tr.FMode[tr.FaceOf[m]]].Idx
				flip bool
			)
			switch fc.Type {
			case utils.Triangle:
				flip = fc.Con&1 != 0 && idx[0]%2 == 1
			case utils.Quad:
				flip = (fc.Con&1 != 0 && idx[0]%2 == 1) != (fc.Con&2 != 0 && idx[1]%2 == 1)
			}
			if flip {
				e.Modal[m] = -e.Modal[m]
			}
		}
	}
}

// Integrate returns the integral over the physical element of point values u
func Integrate(e *Element, u []float64) (sum float64) {
	for ind, val := range u {
		sum += e.tab.W[ind] * e.jac(ind) * val
	}
	return
}

// Grad returns the physical derivatives of point values u
func Grad(e *Element, u []float64) (du [3][]float64) {
	var (
		dim = e.Dim()
		dxi [3][]float64
	)
	for d := 0; d < dim; d++ {
		dxi[d] = make([]float64, len(u))
		du[d] = make([]float64, len(u))
	}
	e.tab.Deriv(u, dxi)
	for ind := range u {
		for d := 0; d < dim; d++ {
			var sum float64
			for j := 0; j < dim; j++ {
				sum += dxi[j][ind] * e.Geom.R(j, d, ind)
			}
			du[d][ind] = sum
		}
	}
	return
}

// EvalAt evaluates the expansion c at reference coordinates xi
func EvalAt(e *Element, c []float64, xi [3]float64) float64 {
	return floats.Dot(e.tab.Basis.Eval(xi), c)
}

// Locate finds the reference coordinates of the physical point x. The inverse
// map is found by Nelder-Mead minimization of the distance and refined with
// Newton iterations.
func Locate(e *Element, x [3]float64) (xi [3]float64, err error) {
	var (
		dim  = e.Dim()
		phi  = make([]float64, e.Nmodes)
		mapf = func(r [3]float64) (y [3]float64) {
			e.tab.Basis.Eval(r, phi)
			for d := 0; d < dim; d++ {
				y[d] = floats.Dot(phi, e.X[d])
			}
			return
		}
		toXi = func(p []float64) (r [3]float64) {
			copy(r[:dim], p)
			return
		}
		dist2 = func(r [3]float64) (s float64) {
			y := mapf(r)
			for d := 0; d < dim; d++ {
				s += (y[d] - x[d]) * (y[d] - x[d])
			}
			return
		}
		start = make([]float64, dim)
	)
	for _, v := range e.ref.Verts {
		for d := 0; d < dim; d++ {
			start[d] += v[d] / float64(len(e.ref.Verts))
		}
	}
	problem := optimize.Problem{
		Func: func(p []float64) float64 { return dist2(toXi(p)) },
	}
	settings := &optimize.Settings{
		MajorIterations: 500,
		FuncEvaluations: 2000,
	}
	res, err := optimize.Minimize(problem, start, settings, &optimize.NelderMead{})
	if err != nil {
		return xi, fmt.Errorf("locate %v in element %d: %w", x, e.ID, err)
	}
	xi = toXi(res.X)
	// Newton with a finite difference jacobian
	const h = 1.e-7
	for iter := 0; iter < 10; iter++ {
		var (
			y    = mapf(xi)
			G, R [3][3]float64
			dx   [3]float64
			rn   float64
		)
		for d := 0; d < dim; d++ {
			dx[d] = x[d] - y[d]
			rn = math.Max(rn, math.Abs(dx[d]))
		}
		if rn < 1.e-13 {
			break
		}
		for j := 0; j < dim; j++ {
			xp, xm := xi, xi
			xp[j] += h
			xm[j] -= h
			yp, ym := mapf(xp), mapf(xm)
			for d := 0; d < dim; d++ {
				G[d][j] = (yp[d] - ym[d]) / (2 * h)
			}
		}
		if invert(dim, G, &R) == 0 {
			break
		}
		for j := 0; j < dim; j++ {
			for d := 0; d < dim; d++ {
				xi[j] += R[j][d] * dx[d]
			}
		}
	}
	if !basis.Contains(e.Type, xi, 1.e-8) {
		err = fmt.Errorf("point %v is outside element %d (xi = %v)", x, e.ID, xi)
	}
	return
}
