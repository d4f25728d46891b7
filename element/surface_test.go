package element

import (
	"math"
	"math/rand"
	"testing"

	"github.com/notargets/gohp/basis"
	"github.com/notargets/gohp/polylib"
	"github.com/notargets/gohp/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestSurfaceFactors(t *testing.T) {
	ctx := NewContext()
	for _, et := range allShapes {
		for i, verts := range [][][3]float64{affineVerts(et), distortedVerts(et)} {
			e, err := New(ctx, i, et, 4, verts)
			require.NoError(t, err)
			var (
				dim    = e.Dim()
				volume = Integrate(e, utils.ConstArray(e.Table().Npts, 1))
				sumN   [3]float64
				flux   [3]float64
			)
			if dim == 2 {
				require.NoError(t, SetEdgeGeofac(ctx, e))
			} else {
				assert.ErrorIs(t, SetEdgeGeofac(ctx, e), utils.ErrUnsupported)
			}
			for f := 0; f < e.NumFaces(); f++ {
				var (
					s = SurfaceGeofac(ctx, e, f)
					x = GetFaceCoord(ctx, e, f)
				)
				assert.Same(t, s, SurfaceGeofac(ctx, e, f))
				for ind := range s.SJ {
					assert.InDelta(t, 1., floats.Norm(s.Normal[ind][:], 2), 1.e-12)
					for d := 0; d < dim; d++ {
						sumN[d] += s.W[ind] * s.SJ[ind] * s.Normal[ind][d]
						// divergence of (x, y, z) is dim
						flux[d] += s.W[ind] * s.SJ[ind] * s.Normal[ind][d] * x[d][ind]
					}
				}
			}
			// closed surface: int n dS = 0, int x_d n_d dS = volume
			for d := 0; d < dim; d++ {
				assert.InDelta(t, 0., sumN[d], 1.e-11, "%v d=%d", et, d)
				assert.InDelta(t, volume, flux[d], 1.e-11, "%v d=%d", et, d)
			}
		}
	}
}

func TestFaceCoordinates(t *testing.T) {
	ctx := NewContext()
	for _, et := range allShapes {
		e := newAffine(t, ctx, et, 3)
		for f := 0; f < e.NumFaces(); f++ {
			var (
				x   = GetFaceCoord(ctx, e, f)
				tab = ctx.FaceTable(e.FaceType(f), e.L, e.FaceQ())
			)
			for ind, uv := range tab.Xi {
				want := affineMap(e.Dim(), e.Ref().FaceToElement(f, uv[0], uv[1]))
				for d := 0; d < e.Dim(); d++ {
					assert.InDelta(t, want[d], x[d][ind], 1.e-12, "%v face %d", et, f)
				}
			}
		}
	}
}

func TestAddSurfaceContrib(t *testing.T) {
	ctx := NewContext()
	for _, et := range allShapes {
		e := newAffine(t, ctx, et, 4)
		for f := 0; f < e.NumFaces(); f++ {
			var (
				out  = make([]float64, e.Nmodes)
				s    = SurfaceGeofac(ctx, e, f)
				flux = utils.ConstArray(s.Npts(), 1)
				tr   = e.Trace(f)
				area = FaceIntegrate(ctx, e, f, flux)
				sum  float64
			)
			AddSurfaceContrib(ctx, e, f, flux, out)
			for m, val := range out {
				if tr.FaceOf[m] < 0 {
					assert.Equal(t, 0., val)
				}
			}
			// the vertex modes are a partition of unity
			for v := range e.Vert {
				sum += out[v]
			}
			assert.InDelta(t, area, sum, 1.e-12, "%v face %d", et, f)
			// contributions accumulate
			AddSurfaceContrib(ctx, e, f, flux, out)
			sum = 0
			for v := range e.Vert {
				sum += out[v]
			}
			assert.InDelta(t, 2*area, sum, 1.e-12)
		}
	}
}

func TestJtrans(t *testing.T) {
	var (
		ctx = NewContext()
		L   = 5
		q   = L + 1
	)
	{ // Edge: polynomials of degree L-1 are reproduced
		var (
			tab = ctx.FaceTable(utils.Line, L, q)
			u   = make([]float64, q)
		)
		for i, z := range tab.Z[0] {
			u[i] = 1 + 2*z - z*z*z + 0.5*z*z*z*z
		}
		c := JtransEdge(ctx, L, u)
		assert.Equal(t, u[0], c[0])
		assert.Equal(t, u[q-1], c[1])
		assert.InDeltaSlice(t, u, FaceBwd(ctx, utils.Line, L, q, c), 1.e-12)
		assert.InDeltaSlice(t, c, JtransFace(ctx, utils.Line, L, q, u), 1.e-14)
	}
	for _, ft := range []utils.ElementType{utils.Triangle, utils.Quad} {
		var (
			tab = ctx.FaceTable(ft, L, q)
			u   = make([]float64, tab.Npts)
		)
		for ind, xi := range tab.Xi {
			x, y := xi[0], xi[1]
			u[ind] = 2 - x + 3*y*y - x*y + 0.25*x*x*x*y
		}
		c := JtransFace(ctx, ft, L, q, u)
		assert.InDeltaSlice(t, u, FaceBwd(ctx, ft, L, q, c), 1.e-11, "%v", ft)
	}
	{ // Pinned edges take priority over the face samples
		var (
			tab = ctx.FaceTable(utils.Quad, L, q)
			u   = utils.ConstArray(tab.Npts, 1)
		)
		edges := make([][]float64, 4)
		for i := range edges {
			edges[i] = utils.ConstArray(q, 1)
		}
		edges[0] = make([]float64, q)
		for i, z := range tab.Z[0] {
			edges[0][i] = 1 + polylib.Bubble(2, z)
		}
		c := JtransFace(ctx, utils.Quad, L, q, u, edges)
		em := tab.EntityModes(basis.Edge, 0)
		assert.InDelta(t, 1., c[em[0]], 1.e-12)
		for _, m := range em[1:] {
			assert.InDelta(t, 0., c[m], 1.e-12)
		}
	}
}

func TestCurvedArc(t *testing.T) {
	var (
		ctx = NewContext()
		rng = rand.New(rand.NewSource(11))
		// quarter annulus between a chord and the unit circle
		verts = [][3]float64{{0.5, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0.5, 0}}
		arc   = &Curve{Type: Arc, Radius: 1}
		L     = 8
	)
	e, err := New(ctx, 0, utils.Quad, L, verts)
	require.NoError(t, err)
	ones := utils.ConstArray(e.Table().Npts, 1)
	assert.InDelta(t, 0.375, Integrate(e, ones), 1.e-13)
	require.NoError(t, CurvedElmt(ctx, e, 1, arc))
	assert.True(t, e.IsCurved())
	assert.True(t, e.Geom.Curved)
	assert.False(t, e.Geom.Constant)
	assert.False(t, e.Geom.Singular)
	assert.Equal(t, 0, ctx.Geoms.Families())
	assert.NotNil(t, e.Cmodes[1][0])
	assert.Nil(t, e.Cmodes[0][0])
	// the curve moves edge modes only, the vertices stay
	for v := range e.Vert {
		assert.InDelta(t, verts[v][0], e.X[0][v], 1.e-14)
		assert.InDelta(t, verts[v][1], e.X[1][v], 1.e-14)
	}
	assert.InDelta(t, math.Pi/4-0.125, Integrate(e, ones), 1.e-6)
	s := SurfaceGeofac(ctx, e, 1)
	x := GetFaceCoord(ctx, e, 1)
	assert.InDelta(t, math.Pi/2, FaceIntegrate(ctx, e, 1, utils.ConstArray(s.Npts(), 1)), 1.e-6)
	for ind := range s.SJ {
		r := math.Hypot(x[0][ind], x[1][ind])
		assert.InDelta(t, 1., r, 1.e-6)
		assert.InDelta(t, x[0][ind]/r, s.Normal[ind][0], 1.e-5)
		assert.InDelta(t, x[1][ind]/r, s.Normal[ind][1], 1.e-5)
		assert.InDelta(t, 1., s.Kappa[ind], 1.e-3)
	}
	// straight edges have no curvature
	for _, k := range SurfaceGeofac(ctx, e, 3).Kappa {
		assert.InDelta(t, 0., k, 1.e-8)
	}
	// transforms on the curved element use the pointwise jacobian
	c := randomModes(rng, e.Nmodes)
	copy(e.Modal, c)
	Jbwd(ctx, e)
	Jfwd(ctx, e)
	assert.InDeltaSlice(t, c, e.Modal, 1.e-9)
	copy(e.Modal, c)
	Obwd(ctx, e)
	Ofwd(ctx, e)
	assert.InDeltaSlice(t, c, e.Modal, 1.e-9)

	require.NoError(t, StraightElmt(ctx, e))
	assert.False(t, e.IsCurved())
	assert.Equal(t, 1, ctx.Geoms.Families())
	assert.InDelta(t, 0.375, Integrate(e, ones), 1.e-13)
}

func TestCurvedMap(t *testing.T) {
	var (
		ctx = NewContext()
		// lift the bottom face of the reference hex by a quadratic bubble
		bump = &Curve{Type: Map, Fn: func(x [3]float64) [3]float64 {
			return [3]float64{x[0], x[1], x[2] + 0.1*(1-x[0]*x[0])*(1-x[1]*x[1])}
		}}
	)
	rs, _ := basis.Reference(utils.Hex)
	e, err := New(ctx, 0, utils.Hex, 3, rs.Verts)
	require.NoError(t, err)
	require.NoError(t, CurvedElmt(ctx, e, 0, bump))
	assert.False(t, e.Geom.Constant)
	assert.InDelta(t, 8-0.1*16./9., Integrate(e, utils.ConstArray(e.Table().Npts, 1)), 1.e-12)
	x := GetFaceCoord(ctx, e, 0)
	for ind := range x[2] {
		want := bump.Fn([3]float64{x[0][ind], x[1][ind], -1})
		assert.InDelta(t, want[2], x[2][ind], 1.e-12)
	}
	// the other faces keep their straight position
	x = GetFaceCoord(ctx, e, 5)
	for _, z := range x[2] {
		assert.InDelta(t, 1., z, 1.e-13)
	}
	assert.Error(t, CurvedElmt(ctx, e, 1, &Curve{Type: Map}))
	assert.ErrorIs(t, CurvedElmt(ctx, e, 1, &Curve{Type: Arc, Radius: 1}), utils.ErrUnsupported)
}

func TestCurveProject(t *testing.T) {
	sphere := &Curve{Type: Sphere, Center: [3]float64{1, 0, 0}, Radius: 2}
	y := sphere.Project([3]float64{2, 1, 1})
	assert.InDelta(t, 2., floats.Distance(y[:], sphere.Center[:], 2), 1.e-14)
	arc := &Curve{Type: Arc, Radius: 3}
	y = arc.Project([3]float64{1, 1, 5})
	assert.InDelta(t, 3., math.Hypot(y[0], y[1]), 1.e-14)
	assert.Equal(t, 5., y[2])
	straight := &Curve{}
	assert.Equal(t, [3]float64{1, 2, 3}, straight.Project([3]float64{1, 2, 3}))
}

func TestSignChange(t *testing.T) {
	var (
		ctx = NewContext()
		rng = rand.New(rand.NewSource(5))
	)
	for _, et := range allShapes {
		e := newAffine(t, ctx, et, 6)
		c := randomModes(rng, e.Nmodes)
		copy(e.Modal, c)
		e.Edge[0].Con = 1
		if e.Dim() == 3 {
			e.Face[0].Con = 3
		}
		SignChange(ctx, e)
		var flipped int
		for m := range c {
			switch e.Modal[m] {
			case c[m]:
			case -c[m]:
				flipped++
			default:
				t.Errorf("%v mode %d changed magnitude", et, m)
			}
		}
		assert.True(t, flipped > 0)
		// vertex and interior modes never change
		for v := range e.Vert {
			assert.Equal(t, c[v], e.Modal[v])
		}
		assert.Equal(t, c[e.Nbmodes:], e.Modal[e.Nbmodes:])
		SignChange(ctx, e)
		assert.Equal(t, c, e.Modal, "%v", et)
	}
	{ // Reversing an edge changes the sign of the odd bubbles
		var (
			L   = 6
			q   = L + 1
			tab = ctx.FaceTable(utils.Line, L, q)
			u   = make([]float64, q)
			rev = make([]float64, q)
		)
		for i, z := range tab.Z[0] {
			u[i] = math.Exp(z) * math.Sin(2*z)
		}
		for i := range rev {
			rev[i] = u[q-1-i]
		}
		var (
			c  = JtransEdge(ctx, L, u)
			cr = JtransEdge(ctx, L, rev)
		)
		assert.InDelta(t, c[0], cr[1], 1.e-14)
		for k := 2; k < L; k++ {
			sign := 1.
			if k%2 == 1 {
				sign = -1
			}
			assert.InDelta(t, sign*c[k], cr[k], 1.e-12)
		}
	}
}
