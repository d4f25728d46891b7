package element

import (
	"fmt"

	"github.com/notargets/gohp/basis"
	"github.com/notargets/gohp/utils"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
)

// Jbwd evaluates the C0 expansion in e.Modal at the quadrature points into e.Phys
func Jbwd(ctx *TransformContext, e *Element) {
	bwd(ctx, e.tab, e.Modal, e.Phys)
	e.State = Physical
}

// Jfwd projects e.Phys onto the C0 expansion in e.Modal by solving M c = B W J u
func Jfwd(ctx *TransformContext, e *Element) {
	fwd(ctx, e, e.Phys, e.Modal)
	e.State = Modal
}

// Obwd evaluates the orthogonal expansion in e.Modal into e.Phys
func Obwd(ctx *TransformContext, e *Element) {
	e.tab.O.MulTransVec(e.Modal, e.Phys)
	e.State = Physical
}

// Ofwd projects e.Phys onto the orthogonal expansion. With a constant
// jacobian the mass matrix is diagonal.
func Ofwd(ctx *TransformContext, e *Element) {
	var (
		tab = e.tab
		r   = ctx.Arena.Region(e.Type, workspaceSize(e.Nmodes, e.L, e.Q))
		wu  = r.Alloc(tab.Npts)
	)
	for ind, u := range e.Phys {
		wu[ind] = tab.W[ind] * u
	}
	if e.Geom == nil || e.Geom.Constant {
		tab.O.MulVec(wu, e.Modal)
		for m := range e.Modal {
			e.Modal[m] /= tab.ONorm[m]
		}
	} else {
		for ind := range wu {
			wu[ind] *= e.Geom.Jac[ind]
		}
		tab.O.MulVec(wu, e.Modal)
		M := orthoMass(tab, e.Geom)
		cf, err := utils.NewCholeskyFactor(M, false)
		if err != nil {
			panic(fmt.Errorf("element %d orthogonal mass matrix: %w", e.ID, err))
		}
		cf.Solve(e.Modal)
	}
	e.State = Modal
}

func orthoMass(tab *basis.Table, g *Geom) (M utils.Matrix) {
	n := tab.Nmodes()
	M = utils.NewMatrix(n, n)
	for i := 0; i < n; i++ {
		oi := tab.O.Row(i)
		for j := i; j < n; j++ {
			oj := tab.O.Row(j)
			var sum float64
			for ind, w := range tab.W {
				sum += oi[ind] * w * g.J(ind) * oj[ind]
			}
			M.Set(i, j, sum)
			M.Set(j, i, sum)
		}
	}
	return
}

func fwd(ctx *TransformContext, e *Element, u, c []float64) {
	var (
		tab = e.tab
		r   = ctx.Arena.Region(e.Type, workspaceSize(e.Nmodes, e.L, e.Q))
		wu  = r.Alloc(tab.Npts)
	)
	for ind, val := range u {
		wu[ind] = tab.W[ind] * val
	}
	if e.Geom == nil || e.Geom.Constant {
		// M = J M_ref and b = J B W u, the jacobian cancels
		mm := ctx.MM.Get(MMKey{Type: e.Type, Kind: Volume, L: e.L, Q: e.Q}, tab)
		tab.B.MulVec(wu, c)
		mm.Solve(c)
		return
	}
	for ind := range wu {
		wu[ind] *= e.Geom.Jac[ind]
	}
	tab.B.MulVec(wu, c)
	M := MassMatrix(tab, allModes(tab.Nmodes()), e.Geom.J)
	cf, err := utils.NewCholeskyFactor(M, e.L > 3)
	if err != nil {
		panic(fmt.Errorf("element %d mass matrix: %w", e.ID, err))
	}
	cf.Solve(c)
}

func allModes(n int) (modes []int) {
	modes = make([]int, n)
	for i := range modes {
		modes[i] = i
	}
	return
}

// bwd evaluates u = B^T c, by sum factorization for tensor product shapes
func bwd(ctx *TransformContext, tab *basis.Table, c, u []float64) {
	switch tab.Type {
	case utils.Quad:
		bwdQuad(ctx, tab, c, u)
	case utils.Hex:
		bwdHex(ctx, tab, c, u)
	default:
		tab.B.MulTransVec(c, u)
	}
}

func gemm(tA, tB blas.Transpose, m, n, k int, a []float64, lda int,
	b []float64, ldb int, c []float64, ldc int) {
	ar, ac := m, k
	if tA == blas.Trans {
		ar, ac = k, m
	}
	br, bc := k, n
	if tB == blas.Trans {
		br, bc = n, k
	}
	blas64.Gemm(tA, tB, 1,
		blas64.General{Rows: ar, Cols: ac, Stride: lda, Data: a},
		blas64.General{Rows: br, Cols: bc, Stride: ldb, Data: b},
		0,
		blas64.General{Rows: m, Cols: n, Stride: ldc, Data: c})
}

func bwdQuad(ctx *TransformContext, tab *basis.Table, c, u []float64) {
	var (
		L      = tab.L
		qa, qb = tab.Q[0], tab.Q[1]
		r      = ctx.Arena.Region(utils.Quad, workspaceSize(tab.Nmodes(), L, tab.Q))
		C      = r.Alloc(L * L)
		T      = r.Alloc(L * qb)
		Ba, Bb = tab.B1D[0].Data(), tab.B1D[1].Data()
	)
	for m, ix := range tab.Tensor {
		C[ix[0]*L+ix[1]] = c[m]
	}
	// T(ka,j) = sum_kb C(ka,kb) Bb(kb,j)
	gemm(blas.NoTrans, blas.NoTrans, L, qb, L, C, L, Bb, qb, T, qb)
	// u(j,i) = sum_ka T(ka,j) Ba(ka,i)
	gemm(blas.Trans, blas.NoTrans, qb, qa, L, T, qb, Ba, qa, u, qa)
}

func bwdHex(ctx *TransformContext, tab *basis.Table, c, u []float64) {
	var (
		L          = tab.L
		qa, qb, qc = tab.Q[0], tab.Q[1], tab.Q[2]
		r          = ctx.Arena.Region(utils.Hex, workspaceSize(tab.Nmodes(), L, tab.Q))
		C          = r.Alloc(L * L * L)
		T1         = r.Alloc(L * L * qc)
		T2         = r.Alloc(L * qb * qc)
		R          = r.Alloc(qa * qb * qc)
		Ba, Bb, Bc = tab.B1D[0].Data(), tab.B1D[1].Data(), tab.B1D[2].Data()
	)
	for m, ix := range tab.Tensor {
		C[(ix[0]*L+ix[1])*L+ix[2]] = c[m]
	}
	// T1((ka,kb),k) = sum_kc C((ka,kb),kc) Bc(kc,k)
	gemm(blas.NoTrans, blas.NoTrans, L*L, qc, L, C, L, Bc, qc, T1, qc)
	// T2(ka,(j,k)) = sum_kb Bb(kb,j) T1((ka,kb),k)
	for ka := 0; ka < L; ka++ {
		gemm(blas.Trans, blas.NoTrans, qb, qc, L, Bb, qb, T1[ka*L*qc:], qc, T2[ka*qb*qc:], qc)
	}
	// R(i,(j,k)) = sum_ka Ba(ka,i) T2(ka,(j,k))
	gemm(blas.Trans, blas.NoTrans, qa, qb*qc, L, Ba, qa, T2, qb*qc, R, qb*qc)
	for i := 0; i < qa; i++ {
		for j := 0; j < qb; j++ {
			for k := 0; k < qc; k++ {
				u[i+qa*(j+qb*k)] = R[i*qb*qc+j*qc+k]
			}
		}
	}
}

// IProduct returns the inner products of the C0 modes with u, sum_p B W J u
func IProduct(e *Element, u []float64, out ...[]float64) (b []float64) {
	wu := make([]float64, len(u))
	for ind, val := range u {
		wu[ind] = e.tab.W[ind] * val * e.jac(ind)
	}
	return e.tab.B.MulVec(wu, out...)
}

func (e *Element) jac(ind int) float64 {
	if e.Geom == nil {
		return 1
	}
	return e.Geom.J(ind)
}
