package basis

import (
	"fmt"

	"github.com/notargets/gohp/polylib"
	"github.com/notargets/gohp/utils"
)

type rule struct {
	pt    polylib.PointType
	alpha float64
	// scale folds the (1/2)^alpha of the collapse jacobian into the weights
	scale float64
}

var gll = rule{polylib.GaussLobattoJacobi, 0, 1}

func directionRules(et utils.ElementType) (rules []rule) {
	var (
		grj1 = rule{polylib.GaussRadauJacobi, 1, 0.5}
		grj2 = rule{polylib.GaussRadauJacobi, 2, 0.25}
	)
	switch et {
	case utils.Line:
		rules = []rule{gll}
	case utils.Triangle:
		rules = []rule{gll, grj1}
	case utils.Quad:
		rules = []rule{gll, gll}
	case utils.Tet:
		rules = []rule{gll, grj1, grj2}
	case utils.Pyramid:
		rules = []rule{gll, gll, grj2}
	case utils.Prism:
		rules = []rule{gll, gll, grj1}
	case utils.Hex:
		rules = []rule{gll, gll, gll}
	}
	return
}

// Table tabulates an expansion on the collapsed tensor quadrature grid.
// Point index is i + Q[0]*(j + Q[1]*k), 'a' fastest. Unused directions have
// one point at 0 with unit weight.
type Table struct {
	*Basis
	Q      [3]int
	Z, W1  [3][]float64
	Npts   int
	W      []float64
	Abc    [][3]float64
	Xi     [][3]float64
	B      utils.Matrix    // Nmodes x Npts
	D      [3]utils.Matrix // derivatives in reference coordinates, Nmodes x Npts
	O      utils.Matrix    // orthogonal modes, Nmodes x Npts
	ONorm  []float64
	Dmat   [3]utils.Matrix // 1D collocation derivatives per direction
	B1D    [3]utils.Matrix // quad and hex: L x Q[d] 1D mode values
	Tensor [][3]int        // quad and hex: 1D mode indices of each mode
}

// DefaultQ is the quadrature size used for an expansion with L modes
func DefaultQ(et utils.ElementType, L int) (Q [3]int) {
	Q = [3]int{1, 1, 1}
	for d := 0; d < et.GetDimension(); d++ {
		Q[d] = L + 1
	}
	return
}

// NewTable tabulates the expansion of et with L modes on Q points per direction
func NewTable(et utils.ElementType, L int, Q [3]int) (tb *Table, err error) {
	var b *Basis
	if b, err = New(et, L); err != nil {
		return
	}
	rules := directionRules(et)
	for d := range rules {
		if Q[d] < L+1 {
			err = fmt.Errorf("%w: %v quadrature Q[%d] = %d below L+1 = %d",
				utils.ErrUnsupported, et, d, Q[d], L+1)
			return
		}
	}
	tb = &Table{Basis: b, Q: [3]int{1, 1, 1}}
	for d := 0; d < 3; d++ {
		if d < len(rules) {
			tb.Q[d] = Q[d]
			r := rules[d]
			tb.Z[d], tb.W1[d] = polylib.ZW(r.pt, Q[d], r.alpha, 0)
			for i := range tb.W1[d] {
				tb.W1[d][i] *= r.scale
			}
		} else {
			tb.Z[d], tb.W1[d] = []float64{0}, []float64{1}
		}
		tb.Dmat[d] = polylib.Dmat(tb.Z[d])
	}
	tb.Npts = tb.Q[0] * tb.Q[1] * tb.Q[2]
	tb.W = make([]float64, tb.Npts)
	tb.Abc = make([][3]float64, tb.Npts)
	tb.Xi = make([][3]float64, tb.Npts)
	for k := 0; k < tb.Q[2]; k++ {
		for j := 0; j < tb.Q[1]; j++ {
			for i := 0; i < tb.Q[0]; i++ {
				ind := i + tb.Q[0]*(j+tb.Q[1]*k)
				tb.Abc[ind] = [3]float64{tb.Z[0][i], tb.Z[1][j], tb.Z[2][k]}
				tb.Xi[ind] = Uncollapse(et, tb.Abc[ind])
				tb.W[ind] = tb.W1[0][i] * tb.W1[1][j] * tb.W1[2][k]
			}
		}
	}
	var (
		Nm  = b.Nmodes()
		dim = et.GetDimension()
	)
	tb.B, tb.O = utils.NewMatrix(Nm, tb.Npts), utils.NewMatrix(Nm, tb.Npts)
	tb.ONorm = make([]float64, Nm)
	for m := 0; m < Nm; m++ {
		row, orow := tb.B.Row(m), tb.O.Row(m)
		for ind, abc := range tb.Abc {
			row[ind] = b.Modes[m].Eval(abc[0], abc[1], abc[2])
			orow[ind] = b.Ortho[m](abc[0], abc[1], abc[2])
			tb.ONorm[m] += tb.W[ind] * orow[ind] * orow[ind]
		}
	}
	for d := 0; d < dim; d++ {
		tb.D[d] = utils.NewMatrix(Nm, tb.Npts)
	}
	dc := make([][]float64, 3)
	for d := range dc {
		dc[d] = make([]float64, tb.Npts)
	}
	for m := 0; m < Nm; m++ {
		row := tb.B.Row(m)
		for d := 0; d < dim; d++ {
			tb.collapsedDeriv(d, row, dc[d])
		}
		for ind, abc := range tb.Abc {
			dxi := chainRule(et, abc, [3]float64{dc[0][ind], dc[1][ind], dc[2][ind]})
			for d := 0; d < dim; d++ {
				tb.D[d].Set(m, ind, dxi[d])
			}
		}
	}
	if et.IsTensor() || et == utils.Line {
		tb.Tensor = make([][3]int, Nm)
		for m, mode := range b.Modes {
			tb.Tensor[m] = mode.Idx
		}
		for d := 0; d < dim; d++ {
			tb.B1D[d] = utils.NewMatrix(L, tb.Q[d])
			for k := 0; k < L; k++ {
				for i, z := range tb.Z[d] {
					tb.B1D[d].Set(k, i, polylib.Bubble(k, z))
				}
			}
		}
	}
	tb.B.SetReadOnly("B")
	tb.O.SetReadOnly("O")
	return
}

// collapsedDeriv differentiates point values along collapsed direction d
func (tb *Table) collapsedDeriv(d int, u, du []float64) {
	var (
		D      = tb.Dmat[d]
		qa, qb = tb.Q[0], tb.Q[1]
	)
	for ind := range du {
		var (
			i, j, k = ind % qa, (ind / qa) % qb, ind / (qa * qb)
			sum     float64
		)
		switch d {
		case 0:
			for ii, dv := range D.Row(i) {
				sum += dv * u[ii+qa*(j+qb*k)]
			}
		case 1:
			for jj, dv := range D.Row(j) {
				sum += dv * u[i+qa*(jj+qb*k)]
			}
		case 2:
			for kk, dv := range D.Row(k) {
				sum += dv * u[i+qa*(j+qb*kk)]
			}
		}
		du[ind] = sum
	}
}

// Deriv differentiates point values along reference direction d using the
// collapsed grid and the chain rule.
func (tb *Table) Deriv(u []float64, dxi [3][]float64) {
	var (
		dim = tb.Type.GetDimension()
		dc  [3][]float64
	)
	for d := 0; d < dim; d++ {
		dc[d] = make([]float64, tb.Npts)
		tb.collapsedDeriv(d, u, dc[d])
	}
	for ind, abc := range tb.Abc {
		var g [3]float64
		for d := 0; d < dim; d++ {
			g[d] = dc[d][ind]
		}
		g = chainRule(tb.Type, abc, g)
		for d := 0; d < dim; d++ {
			dxi[d][ind] = g[d]
		}
	}
}
