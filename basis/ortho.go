package basis

import (
	"github.com/notargets/gohp/polylib"
	"github.com/notargets/gohp/utils"
)

// orthoModes builds the orthogonal expansion as products of Jacobi polynomials
// in collapsed coordinates, orthogonal in the L2 inner product of the element.
func orthoModes(et utils.ElementType, L int) (modes []ModeFunc, idx [][3]int) {
	var (
		P   = L - 1
		leg = func(n int, x float64) float64 { return polylib.Jacobi(n, 0, 0, x) }
		add = func(p, q, r int, f ModeFunc) {
			modes = append(modes, f)
			idx = append(idx, [3]int{p, q, r})
		}
	)
	switch et {
	case utils.Line:
		for p := 0; p <= P; p++ {
			add(p, 0, 0, func(a, _, _ float64) float64 { return leg(p, a) })
		}
	case utils.Quad:
		for p := 0; p <= P; p++ {
			for q := 0; q <= P; q++ {
				add(p, q, 0, func(a, b, _ float64) float64 { return leg(p, a) * leg(q, b) })
			}
		}
	case utils.Hex:
		for p := 0; p <= P; p++ {
			for q := 0; q <= P; q++ {
				for r := 0; r <= P; r++ {
					add(p, q, r, func(a, b, c float64) float64 { return leg(p, a) * leg(q, b) * leg(r, c) })
				}
			}
		}
	case utils.Triangle:
		for p := 0; p <= P; p++ {
			for q := 0; p+q <= P; q++ {
				add(p, q, 0, func(a, b, _ float64) float64 {
					return leg(p, a) * utils.POW(0.5*(1-b), p) * polylib.Jacobi(q, float64(2*p+1), 0, b)
				})
			}
		}
	case utils.Tet:
		for p := 0; p <= P; p++ {
			for q := 0; p+q <= P; q++ {
				for r := 0; p+q+r <= P; r++ {
					add(p, q, r, func(a, b, c float64) float64 {
						return leg(p, a) *
							utils.POW(0.5*(1-b), p) * polylib.Jacobi(q, float64(2*p+1), 0, b) *
							utils.POW(0.5*(1-c), p+q) * polylib.Jacobi(r, float64(2*p+2*q+2), 0, c)
					})
				}
			}
		}
	case utils.Pyramid:
		for p := 0; p <= P; p++ {
			for q := 0; q <= P; q++ {
				m := max(p, q)
				for r := 0; m+r <= P; r++ {
					add(p, q, r, func(a, b, c float64) float64 {
						return leg(p, a) * leg(q, b) *
							utils.POW(0.5*(1-c), m) * polylib.Jacobi(r, float64(2*m+2), 0, c)
					})
				}
			}
		}
	case utils.Prism:
		for p := 0; p <= P; p++ {
			for q := 0; q <= P; q++ {
				for r := 0; p+r <= P; r++ {
					add(p, q, r, func(a, b, c float64) float64 {
						return leg(p, a) * leg(q, b) *
							utils.POW(0.5*(1-c), p) * polylib.Jacobi(r, float64(2*p+1), 0, c)
					})
				}
			}
		}
	}
	return
}
