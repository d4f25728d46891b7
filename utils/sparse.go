package utils

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

type DOK struct {
	M        *sparse.DOK
	readOnly bool
	name     string
}

func NewDOK(nr, nc int) (R DOK) {
	R = DOK{
		sparse.NewDOK(nr, nc),
		false,
		"unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

// Dims and At minimally satisfy the mat.Matrix interface.
func (m DOK) Dims() (r, c int)    { return m.M.Dims() }
func (m DOK) At(i, j int) float64 { return m.M.At(i, j) }
func (m DOK) T() mat.Matrix       { return m.M.T() }

func (m *DOK) SetReadOnly(name ...string) DOK {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
	return *m
}

func (m DOK) Set(i, j int, val float64) DOK { // Changes receiver
	m.checkWritable()
	m.M.Set(i, j, val)
	return m
}

func (m DOK) ToCSR() CSR {
	return CSR{M: m.M.ToCSR()}
}

func (m DOK) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}

// CSR is the compressed form used for repeated products.
type CSR struct {
	M *sparse.CSR
}

func (m CSR) Dims() (r, c int)    { return m.M.Dims() }
func (m CSR) At(i, j int) float64 { return m.M.At(i, j) }
func (m CSR) NNZ() int            { return m.M.NNZ() }

// MulVec returns A x (trans false) or A^T x (trans true) in a new slice.
func (m CSR) MulVec(x []float64, trans bool) (y []float64) {
	var (
		nr, nc = m.Dims()
	)
	if trans {
		y = make([]float64, nc)
	} else {
		y = make([]float64, nr)
	}
	m.M.MulVecTo(y, trans, x)
	return
}

// AddMulVec accumulates A x (or A^T x) into dst.
func (m CSR) AddMulVec(dst, x []float64, trans bool) {
	y := m.MulVec(x, trans)
	for i, val := range y {
		dst[i] += val
	}
}
