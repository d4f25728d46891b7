package polylib

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

func gamma0(alpha, beta float64) float64 {
	ab1 := alpha + beta + 1.
	a1 := alpha + 1.
	b1 := beta + 1.
	return math.Gamma(a1) * math.Gamma(b1) * math.Pow(2, ab1) / ab1 / math.Gamma(ab1)
}

func gamma1(alpha, beta float64) float64 {
	ab := alpha + beta
	a1 := alpha + 1.
	b1 := beta + 1.
	return a1 * b1 * gamma0(alpha, beta) / (ab + 3.0)
}

// JacobiP evaluates the orthonormal Jacobi polynomial of order N at r.
func JacobiP(r []float64, alpha, beta float64, N int) (p []float64) {
	var (
		Nc = len(r)
	)
	rg := 1. / math.Sqrt(gamma0(alpha, beta))
	p = make([]float64, Nc)
	if N == 0 {
		for i := range p {
			p[i] = rg
		}
		return
	}
	Np1 := N + 1
	PL := mat.NewDense(Np1, Nc, nil)
	ab := alpha + beta
	rg1 := 1. / math.Sqrt(gamma1(alpha, beta))
	for i := 0; i < Nc; i++ {
		PL.Set(0, i, rg)
		PL.Set(1, i, rg1*((ab+2.0)*r[i]/2.0+(alpha-beta)/2.0))
	}
	a1 := alpha + 1.
	b1 := beta + 1.
	ab1 := ab + 1.
	aold := 2.0 * math.Sqrt(a1*b1/(ab+3.0)) / (ab + 2.0)
	for i := 0; i < N-1; i++ {
		ip1 := float64(i + 1)
		ip2 := ip1 + 1
		h1 := 2.0*ip1 + ab
		anew := 2.0 / (h1 + 2.0) * math.Sqrt(ip2*(ip1+ab1)*(ip1+a1)*(ip1+b1)/(h1+1.0)/(h1+3.0))
		bnew := -(alpha*alpha - beta*beta) / h1 / (h1 + 2.0)
		xi := PL.RawRowView(i)
		xip1 := PL.RawRowView(i + 1)
		xip2 := PL.RawRowView(i + 2)
		for j := range xi {
			xip2[j] = (-aold*xi[j] + (r[j]-bnew)*xip1[j]) / anew
		}
		aold = anew
	}
	copy(p, PL.RawRowView(N))
	return
}

// GradJacobiP is the derivative of the orthonormal JacobiP.
func GradJacobiP(r []float64, alpha, beta float64, N int) (p []float64) {
	if N == 0 {
		p = make([]float64, len(r))
		return
	}
	p = JacobiP(r, alpha+1, beta+1, N-1)
	fN := float64(N)
	fac := math.Sqrt(fN * (fN + alpha + beta + 1))
	for i, val := range p {
		p[i] = val * fac
	}
	return
}

// Jacobi evaluates the classically normalized P_n^(alpha,beta)(x), P_n(1) = binom(n+alpha, n).
func Jacobi(n int, alpha, beta, x float64) float64 {
	return ScaledJacobi(n, alpha, beta, x, 1)
}

// ScaledJacobi evaluates t^n P_n^(alpha,beta)(x/t) with the three term recurrence
// written in homogeneous form, so it stays polynomial in (x, t) and is finite at t = 0.
func ScaledJacobi(n int, alpha, beta, x, t float64) float64 {
	if n == 0 {
		return 1
	}
	ab := alpha + beta
	pm1 := 1.
	p := ((ab+2)*x + (alpha-beta)*t) / 2
	for k := 2; k <= n; k++ {
		fk := float64(k)
		c := 2*fk + ab
		a1 := 2 * fk * (fk + ab) * (c - 2)
		a2 := (c - 1) * (c*(c-2)*x + (alpha*alpha-beta*beta)*t)
		a3 := 2 * (fk + alpha - 1) * (fk + beta - 1) * c * t * t
		p, pm1 = (a2*p-a3*pm1)/a1, p
	}
	return p
}

// Bubble is the 1D hierarchical edge function of index k >= 2,
// (1-x)(1+x)/4 P^{1,1}_{k-2}(x). Indices 0 and 1 are the linear vertex functions.
func Bubble(k int, x float64) float64 {
	switch k {
	case 0:
		return 0.5 * (1 - x)
	case 1:
		return 0.5 * (1 + x)
	}
	return 0.25 * (1 - x) * (1 + x) * Jacobi(k-2, 1, 1, x)
}
