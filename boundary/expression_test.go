package boundary

import (
	"math"
	"testing"

	"github.com/notargets/gohp/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpression(t *testing.T) {
	{
		ex, err := NewExpression("u = a*sin(pi*x) + y*z - t", map[string]float64{"a": 2})
		require.NoError(t, err)
		assert.Equal(t, "u", ex.Name)
		assert.Equal(t, "a*sin(pi*x) + y*z - t", ex.Rhs)
		val, err := ex.Eval([3]float64{0.25, 2, 3}, 1)
		require.NoError(t, err)
		assert.InDelta(t, 2*math.Sin(math.Pi/4)+6-1, val, 1.e-14)
	}
	{ // Integer results are converted
		ex, err := NewExpression("u = 5", nil)
		require.NoError(t, err)
		val, err := ex.Eval([3]float64{}, 0)
		require.NoError(t, err)
		assert.Equal(t, 5., val)
	}
	{
		ex, err := NewExpression(" rho=exp(-x*x) ", nil)
		require.NoError(t, err)
		var (
			x   = [3][]float64{{0, 1}, {0, 0}, {0, 0}}
			out = make([]float64, 2)
		)
		require.NoError(t, ex.Sample(x, 0, out))
		assert.InDeltaSlice(t, []float64{1, math.Exp(-1)}, out, 1.e-15)
	}
	for _, src := range []string{
		"sin(x)",      // no '='
		"3 = x",       // not a name
		"u = ",        // empty
		"u = x +* 2",  // syntax
		"u = w * 2",   // unknown variable
		"u = \"abc\"", // not a number
	} {
		_, err := NewExpression(src, nil)
		assert.ErrorIs(t, err, utils.ErrBadExpression, src)
	}
}

func TestHistory(t *testing.T) {
	h := NewHistory(2)
	assert.Nil(t, h.At(0))
	h.Push([]float64{1})
	h.Push([]float64{2, 2})
	h.Push([]float64{3})
	assert.Equal(t, 2, h.Len())
	assert.Equal(t, []float64{3}, h.At(0))
	assert.Equal(t, []float64{2, 2}, h.At(1))
}
