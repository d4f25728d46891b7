package cmd

import (
	"math"
	"testing"

	"github.com/notargets/gohp/InputParameters"
	"github.com/notargets/gohp/element"
	"github.com/notargets/gohp/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var annulusInput = []byte(`
Title: Quarter annulus
Shape: Quad
Order: 8
Vertices: [[0.5, 0], [1, 0], [0, 1], [0, 0.5]]
Curves:
  1: {Type: Arc, Center: [0, 0], Radius: 1}
Field: "u = x*x + a*y"
BCs:
  0: {Type: V, Value: 5}
  2: {Type: Value, Expr: "u = a*x*t"}
  3: {Type: Flux, Value: 1}
Parameters:
  a: 2
FinalTime: 1
Steps: 2
`)

func TestNewElement(t *testing.T) {
	var ip InputParameters.InputParameters
	require.NoError(t, ip.Parse(annulusInput))
	ctx := element.NewContext()
	e, err := NewElement(ctx, &ip)
	require.NoError(t, err)
	assert.True(t, e.IsCurved())
	area := element.Integrate(e, utils.ConstArray(len(e.Phys), 1))
	assert.InDelta(t, math.Pi/4-0.125, area, 1.e-6)

	list, err := NewBoundaries(ctx, e, &ip, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, utils.BCValue, list[0].Type)
	assert.Equal(t, utils.BCValueFunc, list[1].Type)
	assert.Equal(t, utils.BCFlux, list[2].Type)
	assert.Equal(t, 5., faceSummary(list[0]))

	require.NoError(t, RunTransform(&ip))

	{ // default vertices are the reference element
		ip := InputParameters.InputParameters{Shape: "Prism", Order: 3}
		e, err := NewElement(element.NewContext(), &ip)
		require.NoError(t, err)
		assert.InDelta(t, 4., element.Integrate(e, utils.ConstArray(len(e.Phys), 1)), 1.e-12)
	}
	{ // a singular element is reported, not fatal
		ip := InputParameters.InputParameters{Shape: "Tri", Order: 3,
			Vertices: [][]float64{{0, 0}, {0, 1}, {1, 0}}}
		e, err := NewElement(element.NewContext(), &ip)
		require.NoError(t, err)
		assert.True(t, e.Geom.Singular)
	}
}

func TestInputErrors(t *testing.T) {
	ctx := element.NewContext()
	for _, ip := range []InputParameters.InputParameters{
		{Shape: "Blob", Order: 3},
		{Shape: "Quad", Order: 3, Curves: map[int]InputParameters.CurveParameters{0: {Type: "Spline"}}},
		{Shape: "Quad", Order: 3, Curves: map[int]InputParameters.CurveParameters{0: {Type: "Arc"}}},
	} {
		_, err := NewElement(ctx, &ip)
		assert.Error(t, err, ip.Shape)
	}
	e, err := NewElement(ctx, &InputParameters.InputParameters{Shape: "Quad", Order: 3})
	require.NoError(t, err)
	for _, bcs := range []map[int]InputParameters.BCParameters{
		{0: {Type: "Bogus"}},
		{9: {Type: "V"}},
		{0: {Type: "v", Expr: "u = q"}},
		{0: {Type: "Wall", Expr: "u = x"}},
	} {
		_, err := NewBoundaries(ctx, e, &InputParameters.InputParameters{BCs: bcs}, 0)
		assert.Error(t, err)
	}
}

func TestBench(t *testing.T) {
	b := &Bench{Shape: utils.Tet, L: 3, Repeats: 2, Workers: 2, K: 5}
	require.NoError(t, b.Run())
	cost, unit, err := wallTime(func() error { return nil })
	require.NoError(t, err)
	assert.Equal(t, "ns", unit)
	assert.GreaterOrEqual(t, cost, 0.)
}
