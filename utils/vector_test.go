package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVector(t *testing.T) {
	N := 3
	v1 := NewVector(N).Set(1)
	require.Equal(t, 1., v1.Data()[N-1])
	v1.Set(2).Scale(2).AddScalar(1)
	require.Equal(t, 5., v1.Data()[N-1])
	v1.POW(2)
	assert.Equal(t, 25., v1.AtVec(0))
	{
		v2 := v1.Copy().Set(-1)
		assert.Equal(t, 25., v1.Min())
		assert.Equal(t, -1., v2.Max())
	}
	// Linspace
	{
		req := NewVector(2).Linspace(-1, 1)
		assert.Equal(t, -1., req.AtVec(0))
		assert.Equal(t, 1., req.AtVec(1))
		req = NewVector(3).Linspace(-1, 1)
		assert.Equal(t, -1., req.AtVec(0))
		assert.Equal(t, 0., req.AtVec(1))
		assert.Equal(t, 1., req.AtVec(2))
	}
	assert.Panics(t, func() { NewVector(2, []float64{1, 2, 3}) })
}
