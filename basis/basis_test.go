package basis

import (
	"fmt"
	"math"
	"testing"

	"github.com/notargets/gohp/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allShapes = []utils.ElementType{utils.Triangle, utils.Quad, utils.Tet,
	utils.Pyramid, utils.Prism, utils.Hex}

func near(a, b float64, tolI ...float64) bool {
	tol := 1.e-10
	if len(tolI) != 0 {
		tol = tolI[0]
	}
	return math.Abs(a-b) <= tol*math.Max(1, math.Abs(a))
}

func expectedModes(et utils.ElementType, L int) (n int) {
	P := L - 1
	switch et {
	case utils.Line:
		return L
	case utils.Triangle:
		return (P + 1) * (P + 2) / 2
	case utils.Quad:
		return L * L
	case utils.Tet:
		return (P + 1) * (P + 2) * (P + 3) / 6
	case utils.Prism:
		return L * (P + 1) * (P + 2) / 2
	case utils.Hex:
		return L * L * L
	case utils.Pyramid:
		for p := 0; p <= P; p++ {
			for q := 0; q <= P; q++ {
				n += P + 1 - max(p, q)
			}
		}
	}
	return
}

func refVolume(et utils.ElementType) float64 {
	return map[utils.ElementType]float64{
		utils.Line: 2, utils.Triangle: 2, utils.Quad: 4, utils.Tet: 4. / 3.,
		utils.Pyramid: 8. / 3., utils.Prism: 4, utils.Hex: 8,
	}[et]
}

func TestModeCounts(t *testing.T) {
	for _, et := range append([]utils.ElementType{utils.Line}, allShapes...) {
		for L := 2; L <= 7; L++ {
			b, err := New(et, L)
			require.NoError(t, err)
			assert.Equal(t, expectedModes(et, L), b.Nmodes(), "%v L=%d", et, L)
			var nInt int
			for _, m := range b.Modes {
				if m.Kind == Interior {
					nInt++
				}
			}
			assert.Equal(t, b.Nmodes(), b.Nbmodes+nInt)
			// ordering vertices, edges, faces, interior
			for i := 1; i < b.Nmodes(); i++ {
				assert.True(t, b.Modes[i].Kind >= b.Modes[i-1].Kind)
			}
			rs, _ := Reference(et)
			for v := range rs.Verts {
				assert.Equal(t, 1, len(b.EntityModes(Vertex, v)))
			}
			if et.GetDimension() > 1 {
				for e := range rs.Edges {
					assert.Equal(t, L-2, len(b.EntityModes(Edge, e)))
				}
			}
		}
	}
	_, err := New(utils.Unknown, 3)
	assert.ErrorIs(t, err, utils.ErrUnsupported)
	_, err = New(utils.Tet, 1)
	assert.ErrorIs(t, err, utils.ErrUnsupported)
}

func TestVertexModes(t *testing.T) {
	for _, et := range allShapes {
		rs, _ := Reference(et)
		b, _ := New(et, 4)
		tb, err := NewTable(et, 4, DefaultQ(et, 4))
		require.NoError(t, err)
		nv := len(rs.Verts)
		// Kronecker property at the vertices
		for j, vert := range rs.Verts {
			v := b.Eval(vert)
			for i := 0; i < nv; i++ {
				expected := 0.
				if i == j {
					expected = 1
				}
				assert.True(t, near(v[i], expected), "%v mode %d at vertex %d = %v", et, i, j, v[i])
			}
			// every other mode vanishes at the vertices
			for i := nv; i < b.Nmodes(); i++ {
				assert.True(t, math.Abs(v[i]) < 1.e-12, "%v mode %d at vertex %d", et, i, j)
			}
		}
		// partition of unity and reproduction of the reference coordinates
		for ind, xi := range tb.Xi {
			var sum float64
			var x [3]float64
			for i := 0; i < nv; i++ {
				phi := tb.B.At(i, ind)
				sum += phi
				for d := 0; d < 3; d++ {
					x[d] += phi * rs.Verts[i][d]
				}
			}
			require.True(t, near(sum, 1), "%v point %d", et, ind)
			for d := 0; d < et.GetDimension(); d++ {
				require.True(t, near(x[d], xi[d]), "%v point %d dir %d", et, ind, d)
			}
		}
	}
}

func TestQuadratureAndDerivatives(t *testing.T) {
	for _, et := range allShapes {
		for L := 2; L <= 5; L++ {
			t.Run(fmt.Sprintf("%v_L%d", et, L), func(t *testing.T) {
				tb, err := NewTable(et, L, DefaultQ(et, L))
				require.NoError(t, err)
				var vol float64
				for _, w := range tb.W {
					vol += w
				}
				assert.True(t, near(vol, refVolume(et)))
				rs, _ := Reference(et)
				dim := et.GetDimension()
				// derivative tables applied to the vertex expansion of xi_d give delta
				for d := 0; d < dim; d++ {
					c := make([]float64, tb.Nmodes())
					for v := range rs.Verts {
						c[v] = rs.Verts[v][d]
					}
					for j := 0; j < dim; j++ {
						g := tb.D[j].MulTransVec(c)
						expected := 0.
						if j == d {
							expected = 1
						}
						for _, val := range g {
							require.True(t, near(val, expected, 1.e-9))
						}
					}
				}
				// orthogonal modes are orthogonal in the discrete inner product
				for m := 0; m < tb.Nmodes(); m++ {
					om := tb.O.Row(m)
					assert.True(t, tb.ONorm[m] > 0)
					for n := m + 1; n < tb.Nmodes(); n++ {
						on := tb.O.Row(n)
						var ip float64
						for ind := range om {
							ip += tb.W[ind] * om[ind] * on[ind]
						}
						require.True(t, math.Abs(ip) < 1.e-10*math.Sqrt(tb.ONorm[m]*tb.ONorm[n]), "modes %d, %d: %v", m, n, ip)
					}
				}
				// the C0 mass matrix is positive definite
				M := utils.NewMatrix(tb.Nmodes(), tb.Nmodes())
				for m := 0; m < tb.Nmodes(); m++ {
					for n := 0; n < tb.Nmodes(); n++ {
						var ip float64
						for ind, w := range tb.W {
							ip += w * tb.B.At(m, ind) * tb.B.At(n, ind)
						}
						M.Set(m, n, ip)
					}
				}
				_, err = utils.NewCholeskyFactor(M, false)
				assert.NoError(t, err)
			})
		}
	}
	_, err := NewTable(utils.Quad, 4, [3]int{4, 5, 1})
	assert.ErrorIs(t, err, utils.ErrUnsupported)
}

func TestTraces(t *testing.T) {
	for _, et := range allShapes {
		for L := 2; L <= 6; L++ {
			t.Run(fmt.Sprintf("%v_L%d", et, L), func(t *testing.T) {
				b, _ := New(et, L)
				rs, _ := Reference(et)
				var tr []Trace
				require.NotPanics(t, func() { tr = b.Traces() })
				require.Equal(t, len(rs.Faces), len(tr))
				for f, face := range rs.Faces {
					fb, _ := New(face.Type, L)
					assert.Equal(t, fb.Nmodes(), len(tr[f].Elem))
					// the vertex modes of the face are the element vertex modes, unsigned
					for i, m := range tr[f].Elem {
						if b.Modes[m].Kind == Vertex {
							assert.Equal(t, 1., tr[f].Sign[i])
							assert.Equal(t, face.Verts[tr[f].FMode[i]], b.Modes[m].Entity)
						}
					}
					// gather through the CSR map matches the direct gather
					c := make([]float64, b.Nmodes())
					for i := range c {
						c[i] = float64(i + 1)
					}
					g1 := tr[f].Gather(c)
					g2 := tr[f].T.MulVec(c, false)
					assert.Equal(t, g1, g2)
					c2 := make([]float64, b.Nmodes())
					tr[f].Scatter(g1, c2)
					for _, m := range tr[f].Elem {
						assert.Equal(t, c[m], c2[m])
					}
				}
			})
		}
	}
}

func TestFaceSigns(t *testing.T) {
	for _, et := range allShapes {
		rs, _ := Reference(et)
		var cent [3]float64
		for _, v := range rs.Verts {
			for d := range cent {
				cent[d] += v[d] / float64(len(rs.Verts))
			}
		}
		for f := range rs.Faces {
			tu, tv := rs.faceTangents(f)
			n := FaceNormal(rs.Dim, tu, tv)
			// every face vertex lies on the outward side
			fc := rs.Verts[rs.Faces[f].Verts[0]]
			var dot float64
			for d := range n {
				dot += rs.Faces[f].Sign * n[d] * (fc[d] - cent[d])
			}
			assert.True(t, dot > 0, "%v face %d", et, f)
		}
	}
}

func TestCollapse(t *testing.T) {
	for _, et := range allShapes {
		tb, _ := NewTable(et, 3, DefaultQ(et, 3))
		for ind, xi := range tb.Xi {
			abc := Collapse(et, xi)
			for d := 0; d < et.GetDimension(); d++ {
				assert.True(t, near(abc[d], tb.Abc[ind][d], 1.e-10))
			}
			assert.True(t, Contains(et, xi, 1.e-12))
		}
	}
	// collapsed vertex of the triangle
	abc := Collapse(utils.Triangle, [3]float64{-1, 1, 0})
	assert.Equal(t, -1., abc[0])
	assert.False(t, Contains(utils.Tet, [3]float64{0.5, 0.5, -1}, 1.e-12))
}
