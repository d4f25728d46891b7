package polylib

import (
	"math"

	"github.com/notargets/gohp/utils"
)

func baryWeights(x []float64) (bw []float64) {
	bw = make([]float64, len(x))
	for j := range x {
		bw[j] = 1
		for k := range x {
			if k != j {
				bw[j] *= x[j] - x[k]
			}
		}
		bw[j] = 1 / bw[j]
	}
	return
}

// Dmat is the collocation derivative matrix on the points x: (D f)_i = f'(x_i)
// for any polynomial f of degree < len(x).
func Dmat(x []float64) (D utils.Matrix) {
	var (
		n  = len(x)
		bw = baryWeights(x)
	)
	D = utils.NewMatrix(n, n)
	for i := 0; i < n; i++ {
		var diag float64
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			val := (bw[j] / bw[i]) / (x[i] - x[j])
			D.Set(i, j, val)
			diag -= val
		}
		D.Set(i, i, diag)
	}
	return
}

// Imat interpolates values given on the points x to the points y: f(y) = I f(x).
func Imat(x, y []float64) (I utils.Matrix) {
	var (
		nx = len(x)
		bw = baryWeights(x)
	)
	I = utils.NewMatrix(len(y), nx)
	row := make([]float64, nx)
	for i, yy := range y {
		hit := -1
		for j, xx := range x {
			if math.Abs(yy-xx) < utils.NODETOL {
				hit = j
				break
			}
		}
		if hit >= 0 {
			for j := range row {
				row[j] = 0
			}
			row[hit] = 1
		} else {
			var sum float64
			for j, xx := range x {
				row[j] = bw[j] / (yy - xx)
				sum += row[j]
			}
			for j := range row {
				row[j] /= sum
			}
		}
		I.SetRow(i, row)
	}
	return
}
