package utils

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"
)

// Matrix wraps a row-major gonum Dense with a read-only guard so that cached
// tables can be shared without being mutated by accident.
type Matrix struct {
	M        *mat.Dense
	readOnly bool
	name     string
}

func NewMatrix(nr, nc int, dataO ...[]float64) (R Matrix) {
	var m *mat.Dense
	if len(dataO) != 0 {
		if len(dataO[0]) != nr*nc {
			err := fmt.Errorf("mismatch in allocation: NewMatrix nr,nc = %v,%v, len(data[0]) = %v", nr, nc, len(dataO[0]))
			panic(err)
		}
		m = mat.NewDense(nr, nc, dataO[0])
	} else {
		m = mat.NewDense(nr, nc, make([]float64, nr*nc))
	}
	R = Matrix{
		m,
		false,
		"unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m Matrix) Dims() (r, c int)          { return m.M.Dims() }
func (m Matrix) At(i, j int) float64       { return m.M.At(i, j) }
func (m Matrix) T() mat.Matrix             { return m.M.T() }
func (m Matrix) RawMatrix() blas64.General { return m.M.RawMatrix() }
func (m Matrix) Data() []float64           { return m.M.RawMatrix().Data }
func (m Matrix) IsReadOnly() bool          { return m.readOnly }

func (m *Matrix) SetReadOnly(name ...string) Matrix {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
	return *m
}

func (m Matrix) Copy() (R Matrix) { // Does not change receiver
	var (
		nr, nc = m.Dims()
		dataR  = make([]float64, nr*nc)
	)
	copy(dataR, m.Data())
	R = NewMatrix(nr, nc, dataR)
	return
}

func (m Matrix) Transpose() (R Matrix) { // Does not change receiver
	var (
		nr, nc = m.Dims()
		data   = m.Data()
	)
	R = NewMatrix(nc, nr)
	dataR := R.Data()
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			dataR[j*nr+i] = data[i*nc+j]
		}
	}
	return
}

func (m Matrix) Mul(A Matrix) (R Matrix) { // Does not change receiver
	var (
		nrM, _ = m.Dims()
		_, ncA = A.Dims()
	)
	R = NewMatrix(nrM, ncA)
	R.M.Mul(m.M, A.M)
	return
}

// MulVec returns m * v for a plain slice, writing into out when it is given.
func (m Matrix) MulVec(v []float64, outO ...[]float64) (out []float64) { // Does not change receiver
	var (
		nr, nc = m.Dims()
	)
	if len(v) != nc {
		panic(fmt.Errorf("dimension mismatch: matrix has %d columns, vector has %d entries", nc, len(v)))
	}
	if len(outO) != 0 {
		out = outO[0][:nr]
	} else {
		out = make([]float64, nr)
	}
	blas64.Gemv(blas.NoTrans, 1, m.RawMatrix(), blas64.Vector{N: nc, Inc: 1, Data: v},
		0, blas64.Vector{N: nr, Inc: 1, Data: out})
	return
}

// MulTransVec returns m^T * v.
func (m Matrix) MulTransVec(v []float64, outO ...[]float64) (out []float64) { // Does not change receiver
	var (
		nr, nc = m.Dims()
	)
	if len(v) != nr {
		panic(fmt.Errorf("dimension mismatch: matrix has %d rows, vector has %d entries", nr, len(v)))
	}
	if len(outO) != 0 {
		out = outO[0][:nc]
	} else {
		out = make([]float64, nc)
	}
	blas64.Gemv(blas.Trans, 1, m.RawMatrix(), blas64.Vector{N: nr, Inc: 1, Data: v},
		0, blas64.Vector{N: nc, Inc: 1, Data: out})
	return
}

func (m Matrix) Row(i int) []float64 { return m.M.RawRowView(i) }

func (m Matrix) Col(j int) (c []float64) {
	var (
		nr, _ = m.Dims()
	)
	c = make([]float64, nr)
	for i := 0; i < nr; i++ {
		c[i] = m.M.At(i, j)
	}
	return
}

func (m Matrix) Set(i, j int, val float64) Matrix { // Changes receiver
	m.checkWritable()
	m.M.Set(i, j, val)
	return m
}

func (m Matrix) SetCol(j int, data []float64) Matrix { // Changes receiver
	m.checkWritable()
	m.M.SetCol(j, data)
	return m
}

func (m Matrix) SetRow(i int, data []float64) Matrix { // Changes receiver
	m.checkWritable()
	m.M.SetRow(i, data)
	return m
}

func (m Matrix) Scale(a float64) Matrix { // Changes receiver
	m.checkWritable()
	data := m.Data()
	for i := range data {
		data[i] *= a
	}
	return m
}

func (m Matrix) Add(A Matrix) Matrix { // Changes receiver
	m.checkWritable()
	data, dataA := m.Data(), A.Data()
	for i := range data {
		data[i] += dataA[i]
	}
	return m
}

func (m Matrix) Max() (max float64) {
	data := m.Data()
	max = data[0]
	for _, val := range data {
		if val > max {
			max = val
		}
	}
	return
}

func (m Matrix) Min() (min float64) {
	data := m.Data()
	min = data[0]
	for _, val := range data {
		if val < min {
			min = val
		}
	}
	return
}

func (m Matrix) Print(msgI ...string) (o string) {
	var (
		name = ""
	)
	if len(msgI) != 0 {
		name = msgI[0]
	}
	formatString := "%s = \n%8.5f\n"
	o = fmt.Sprintf(formatString, name, mat.Formatted(m.M, mat.Squeeze()))
	return
}

func (m Matrix) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}
