package utils

import (
	"fmt"

	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"
)

type Vector struct {
	V *mat.VecDense
}

func NewVector(n int, dataO ...[]float64) Vector {
	if len(dataO) != 0 {
		if len(dataO[0]) != n {
			panic(fmt.Errorf("mismatch in allocation: NewVector n = %v, len(data[0]) = %v", n, len(dataO[0])))
		}
		return Vector{mat.NewVecDense(n, dataO[0])}
	}
	return Vector{mat.NewVecDense(n, make([]float64, n))}
}

func (v Vector) Dims() (r, c int)         { return v.V.Dims() }
func (v Vector) At(i, j int) float64      { return v.V.At(i, j) }
func (v Vector) T() mat.Matrix            { return v.V.T() }
func (v Vector) AtVec(i int) float64      { return v.V.AtVec(i) }
func (v Vector) RawVector() blas64.Vector { return v.V.RawVector() }
func (v Vector) Len() int                 { return v.V.Len() }
func (v Vector) Data() []float64          { return v.V.RawVector().Data }

func (v Vector) Copy() Vector { // Does not change receiver
	data := make([]float64, v.Len())
	copy(data, v.Data())
	return NewVector(len(data), data)
}

func (v Vector) Set(val float64) Vector { // Changes receiver
	data := v.Data()
	for i := range data {
		data[i] = val
	}
	return v
}

func (v Vector) Scale(a float64) Vector { // Changes receiver
	data := v.Data()
	for i := range data {
		data[i] *= a
	}
	return v
}

func (v Vector) AddScalar(a float64) Vector { // Changes receiver
	data := v.Data()
	for i := range data {
		data[i] += a
	}
	return v
}

func (v Vector) POW(p int) Vector { // Changes receiver
	data := v.Data()
	for i, val := range data {
		data[i] = POW(val, p)
	}
	return v
}

func (v Vector) Apply(f func(float64) float64) Vector { // Changes receiver
	data := v.Data()
	for i, val := range data {
		data[i] = f(val)
	}
	return v
}

func (v Vector) Min() (min float64) {
	data := v.Data()
	min = data[0]
	for _, val := range data {
		if val < min {
			min = val
		}
	}
	return
}

func (v Vector) Max() (max float64) {
	data := v.Data()
	max = data[0]
	for _, val := range data {
		if val > max {
			max = val
		}
	}
	return
}

func (v Vector) Linspace(begin, end float64) Vector { // Changes receiver
	var (
		data = v.Data()
		n    = len(data)
	)
	if n == 1 {
		data[0] = begin
		return v
	}
	rge := end - begin
	for i := range data {
		data[i] = begin + rge*float64(i)/float64(n-1)
	}
	return v
}
