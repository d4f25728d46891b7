package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignedScatter(t *testing.T) {
	// A 4x3 signed permutation: rows are destinations, columns sources
	S := NewDOK(4, 3)
	S.Set(0, 1, 1)
	S.Set(2, 0, -1)
	S.Set(3, 2, 1)
	C := S.ToCSR()
	assert.Equal(t, 3, C.NNZ())
	x := []float64{1, 2, 3}
	assert.Equal(t, []float64{2, 0, -1, 3}, C.MulVec(x, false))
	y := []float64{10, 20, 30, 40}
	assert.Equal(t, []float64{-30, 10, 40}, C.MulVec(y, true))
	dst := []float64{1, 1, 1, 1}
	C.AddMulVec(dst, x, false)
	assert.Equal(t, []float64{3, 1, 0, 4}, dst)
	S.SetReadOnly("S")
	assert.Panics(t, func() { S.Set(0, 0, 1) })
}
