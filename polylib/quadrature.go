package polylib

import (
	"fmt"
	"math"

	"github.com/notargets/gohp/utils"
	"gonum.org/v1/gonum/mat"
)

// PointType selects a family of 1D quadrature points
type PointType uint8

const (
	// GaussJacobi points exclude both end points
	GaussJacobi PointType = iota
	// GaussRadauJacobi points include x = -1 only
	GaussRadauJacobi
	// GaussLobattoJacobi points include both end points
	GaussLobattoJacobi
)

func (pt PointType) String() string {
	switch pt {
	case GaussJacobi:
		return "GaussJacobi"
	case GaussRadauJacobi:
		return "GaussRadauJacobi"
	case GaussLobattoJacobi:
		return "GaussLobattoJacobi"
	}
	return "Unknown"
}

// JacobiGQ computes the N+1 Gauss-Jacobi points and weights for the weight
// (1-x)^alpha (1+x)^beta from the symmetric tridiagonal Jacobi matrix (Golub-Welsch).
func JacobiGQ(alpha, beta float64, N int) (X, W utils.Vector) {
	var (
		x, w       []float64
		fac        float64
		h1, d0, d1 []float64
		VVr        *mat.Dense
	)
	if N == 0 {
		x = []float64{-(alpha - beta) / (alpha + beta + 2.)}
		w = []float64{gamma0(alpha, beta)}
		return utils.NewVector(len(x), x), utils.NewVector(len(w), w)
	}

	h1 = make([]float64, N+1)
	for i := 0; i < N+1; i++ {
		h1[i] = 2*float64(i) + alpha + beta
	}

	// main diagonal: diag(-1/2*(alpha^2-beta^2)./(h1+2)./h1)
	d0 = make([]float64, N+1)
	fac = -.5 * (alpha*alpha - beta*beta)
	for i := 0; i < N+1; i++ {
		val := h1[i]
		d0[i] = fac / (val * (val + 2.))
	}
	// Handle division by zero
	eps := 1.e-16
	if alpha+beta < 10*eps {
		d0[0] = 0.
	}

	// 1st upper diagonal
	var ip1 float64
	d1 = make([]float64, N)
	for i := 0; i < N; i++ {
		ip1 = float64(i + 1)
		val := h1[i]
		d1[i] = 2. / (val + 2.)
		d1[i] *= math.Sqrt(ip1 * (ip1 + alpha + beta) * (ip1 + alpha) * (ip1 + beta) / ((val + 1.) * (val + 3.)))
	}

	JJ := mat.NewSymDense(N+1, nil)
	for i := 0; i < N+1; i++ {
		JJ.SetSym(i, i, d0[i])
		if i < N {
			JJ.SetSym(i, i+1, d1[i])
		}
	}

	var eig mat.EigenSym
	ok := eig.Factorize(JJ, true)
	if !ok {
		panic("eigenvalue decomposition failed")
	}
	x = eig.Values(nil)
	X = utils.NewVector(N+1, x)

	VVr = mat.NewDense(len(x), len(x), nil)
	eig.VectorsTo(VVr)
	w = make([]float64, len(x))
	copy(w, VVr.RawRowView(0))
	W = utils.NewVector(len(x), w).POW(2).Scale(gamma0(alpha, beta))
	return X, W
}

// JacobiGL returns the N+1 Gauss-Lobatto-Jacobi points for (alpha, beta).
func JacobiGL(alpha, beta float64, N int) (X utils.Vector) {
	var (
		x = make([]float64, N+1)
	)
	if N == 0 {
		return utils.NewVector(1, x)
	}
	x[0] = -1
	x[N] = 1
	if N > 1 {
		xint, _ := JacobiGQ(alpha+1, beta+1, N-2)
		copy(x[1:N], xint.Data())
	}
	X = utils.NewVector(len(x), x)
	return
}

// JacobiGR returns the N+1 Gauss-Radau-Jacobi points for (alpha, beta) including x = -1.
func JacobiGR(alpha, beta float64, N int) (X utils.Vector) {
	var (
		x = make([]float64, N+1)
	)
	x[0] = -1
	if N > 0 {
		xint, _ := JacobiGQ(alpha, beta+1, N-1)
		copy(x[1:], xint.Data())
	}
	X = utils.NewVector(len(x), x)
	return
}

// ZW returns q points of the requested family and the interpolatory weights
// for the weight function (1-x)^alpha (1+x)^beta.
func ZW(pt PointType, q int, alpha, beta float64) (z, w []float64) {
	if q < 1 {
		panic(fmt.Errorf("quadrature needs at least one point, have %d", q))
	}
	switch pt {
	case GaussJacobi:
		X, W := JacobiGQ(alpha, beta, q-1)
		return X.Data(), W.Data()
	case GaussRadauJacobi:
		z = JacobiGR(alpha, beta, q-1).Data()
	case GaussLobattoJacobi:
		if q < 2 {
			panic(fmt.Errorf("Gauss-Lobatto quadrature needs two points, have %d", q))
		}
		z = JacobiGL(alpha, beta, q-1).Data()
	default:
		panic(fmt.Errorf("unknown point type %v", pt))
	}
	w = interpolatoryWeights(z, alpha, beta)
	return
}

// interpolatoryWeights integrates each Lagrange polynomial on z exactly, using a
// Gauss-Jacobi rule of the same size, which is exact to degree 2q-1.
func interpolatoryWeights(z []float64, alpha, beta float64) (w []float64) {
	var (
		q    = len(z)
		G, W = JacobiGQ(alpha, beta, q-1)
		I    = Imat(z, G.Data())
	)
	w = I.MulTransVec(W.Data())
	return
}
