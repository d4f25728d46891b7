package utils

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/lapack/lapack64"
)

// CholeskyFactor holds the upper Cholesky factor of a symmetric positive
// definite matrix, either in full triangular storage (LAPACK potrf) or in
// band storage (LAPACK pbtrf).
type CholeskyFactor struct {
	N, KD  int
	Banded bool
	full   blas64.Triangular
	band   blas64.TriangularBand
}

// Bandwidth returns the largest |i-j| for which |A(i,j)| exceeds tol*max|A|.
func Bandwidth(A Matrix, tol float64) (kd int) {
	var (
		nr, nc = A.Dims()
		data   = A.Data()
		amax   float64
	)
	for _, val := range data {
		amax = math.Max(amax, math.Abs(val))
	}
	for i := 0; i < nr; i++ {
		for j := i + 1; j < nc; j++ {
			if math.Abs(data[i*nc+j]) > tol*amax && j-i > kd {
				kd = j - i
			}
		}
	}
	return
}

// NewCholeskyFactor factors the symmetric matrix A. When banded is set the
// bandwidth is measured and the band is factored with pbtrf, otherwise the
// upper triangle is factored with potrf. A is not modified.
func NewCholeskyFactor(A Matrix, banded bool) (cf *CholeskyFactor, err error) {
	var (
		n, nc = A.Dims()
		data  = A.Data()
		ok    bool
	)
	if n != nc {
		err = fmt.Errorf("cholesky factorization needs a square matrix, have %d x %d", n, nc)
		return
	}
	cf = &CholeskyFactor{N: n, Banded: banded}
	if n == 0 {
		return
	}
	if banded {
		cf.KD = Bandwidth(A, 1.e-14)
		ldab := cf.KD + 1
		ab := make([]float64, n*ldab)
		for i := 0; i < n; i++ {
			for j := i; j <= i+cf.KD && j < n; j++ {
				ab[i*ldab+j-i] = data[i*n+j]
			}
		}
		cf.band, ok = lapack64.Pbtrf(blas64.SymmetricBand{
			Uplo:   blas.Upper,
			N:      n,
			K:      cf.KD,
			Data:   ab,
			Stride: ldab,
		})
	} else {
		cf.KD = n - 1
		a := make([]float64, n*n)
		copy(a, data)
		cf.full, ok = lapack64.Potrf(blas64.Symmetric{
			Uplo:   blas.Upper,
			N:      n,
			Data:   a,
			Stride: n,
		})
	}
	if !ok {
		err = fmt.Errorf("cholesky factorization failed, matrix of order %d is not positive definite", n)
		cf = nil
	}
	return
}

// Solve overwrites b with the solution of A x = b.
func (cf *CholeskyFactor) Solve(b []float64) {
	if len(b) != cf.N {
		panic(fmt.Errorf("cholesky solve: rhs length %d does not match order %d", len(b), cf.N))
	}
	if cf.N == 0 {
		return
	}
	B := blas64.General{Rows: cf.N, Cols: 1, Stride: 1, Data: b}
	if cf.Banded {
		lapack64.Pbtrs(cf.band, B)
	} else {
		lapack64.Potrs(cf.full, B)
	}
}
