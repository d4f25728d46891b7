//go:build cgo && netlib
// +build cgo,netlib

package utils

import (
	"log"

	"gonum.org/v1/gonum/blas/blas64"
	netblas "gonum.org/v1/netlib/blas/netlib"
)

// Building with -tags netlib routes the gonum BLAS calls made by the sum
// factorized transforms and the Cholesky solves through the system BLAS.
func init() {
	blas64.Use(netblas.Implementation{})
	log.Println("Using netlib to accelerate BLAS")
}
