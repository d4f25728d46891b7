package utils

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pentadiagonal SPD test matrix, diagonally dominant
func bandedSPD(n int) (A Matrix) {
	A = NewMatrix(n, n)
	for i := 0; i < n; i++ {
		A.Set(i, i, 6+float64(i))
		if i+1 < n {
			A.Set(i, i+1, -1)
			A.Set(i+1, i, -1)
		}
		if i+2 < n {
			A.Set(i, i+2, 0.5)
			A.Set(i+2, i, 0.5)
		}
	}
	return
}

func TestCholesky(t *testing.T) {
	for _, n := range []int{1, 2, 5, 9} {
		t.Run(fmt.Sprintf("N=%d", n), func(t *testing.T) {
			A := bandedSPD(n)
			x := make([]float64, n)
			for i := range x {
				x[i] = float64(i+1) * 0.25
			}
			b := A.MulVec(x)
			if n > 2 {
				assert.Equal(t, 2, Bandwidth(A, 1.e-14))
			}
			full, err := NewCholeskyFactor(A, false)
			require.NoError(t, err)
			band, err := NewCholeskyFactor(A, true)
			require.NoError(t, err)
			assert.True(t, band.Banded)
			assert.False(t, full.Banded)
			bf := append([]float64{}, b...)
			bb := append([]float64{}, b...)
			full.Solve(bf)
			band.Solve(bb)
			for i := range x {
				assert.InDelta(t, x[i], bf[i], 1.e-12)
				assert.InDelta(t, x[i], bb[i], 1.e-12)
			}
		})
	}
	// Not positive definite
	{
		A := NewMatrix(2, 2, []float64{1, 2, 2, 1})
		_, err := NewCholeskyFactor(A, false)
		assert.Error(t, err)
		_, err = NewCholeskyFactor(A, true)
		assert.Error(t, err)
	}
	// Empty systems are legal, edges of order 2 have no interior modes
	{
		cf, err := NewCholeskyFactor(NewMatrix(0, 0), true)
		require.NoError(t, err)
		cf.Solve([]float64{})
	}
}
