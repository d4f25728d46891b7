package element

import (
	"math/rand"
	"testing"

	"github.com/notargets/gohp/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomModes(rng *rand.Rand, n int) (c []float64) {
	c = make([]float64, n)
	for i := range c {
		c[i] = 2*rng.Float64() - 1
	}
	return
}

func TestRoundTrip(t *testing.T) {
	var (
		ctx = NewContext()
		rng = rand.New(rand.NewSource(42))
	)
	for _, et := range allShapes {
		for L := 2; L <= 6; L++ {
			for i, verts := range [][][3]float64{affineVerts(et), distortedVerts(et)} {
				e, err := New(ctx, i, et, L, verts)
				require.NoError(t, err)
				c := randomModes(rng, e.Nmodes)
				copy(e.Modal, c)
				Jbwd(ctx, e)
				assert.Equal(t, Physical, e.State)
				Jfwd(ctx, e)
				assert.Equal(t, Modal, e.State)
				assert.InDeltaSlice(t, c, e.Modal, 1.e-9, "J %v", e)

				copy(e.Modal, c)
				Obwd(ctx, e)
				Ofwd(ctx, e)
				assert.InDeltaSlice(t, c, e.Modal, 1.e-9, "O %v", e)
			}
		}
	}
}

func TestSumFactorization(t *testing.T) {
	var (
		ctx = NewContext()
		rng = rand.New(rand.NewSource(7))
	)
	for _, tc := range []struct {
		et utils.ElementType
		L  int
		Q  [3]int
	}{
		{utils.Quad, 2, [3]int{3, 3, 1}},
		{utils.Quad, 5, [3]int{6, 8, 1}},
		{utils.Hex, 3, [3]int{4, 4, 4}},
		{utils.Hex, 4, [3]int{5, 7, 6}},
	} {
		tab, err := ctx.Table(tc.et, tc.L, tc.Q)
		require.NoError(t, err)
		var (
			c     = randomModes(rng, tab.Nmodes())
			u     = make([]float64, tab.Npts)
			dense = tab.B.MulTransVec(c)
		)
		bwd(ctx, tab, c, u)
		assert.InDeltaSlice(t, dense, u, 1.e-12, "%v L=%d Q=%v", tc.et, tc.L, tc.Q)
	}
}

func TestMMCache(t *testing.T) {
	ctx := NewContext()
	for _, et := range allShapes {
		for L := 2; L <= 5; L++ {
			var (
				tab, _ = ctx.Table(et, L, [3]int{L + 1, L + 1, L + 1})
				key    = MMKey{Type: et, Kind: Volume, L: L, Q: tab.Q}
				mm     = ctx.MM.Get(key, tab)
			)
			assert.Same(t, mm, ctx.MM.Get(key, tab))
			assert.Equal(t, L > 3, mm.Banded)
			assert.Equal(t, tab.Nmodes(), mm.N)
			// the banded and full factorizations solve the same system
			var (
				M       = MassMatrix(tab, allModes(mm.N), func(ind int) float64 { return tab.W[ind] })
				full, _ = utils.NewCholeskyFactor(M, false)
				b       = M.MulVec(utils.ConstArray(mm.N, 1))
				x1      = append([]float64{}, b...)
				x2      = append([]float64{}, b...)
			)
			mm.Solve(x1)
			full.Solve(x2)
			assert.InDeltaSlice(t, utils.ConstArray(mm.N, 1), x1, 1.e-9)
			assert.InDeltaSlice(t, x2, x1, 1.e-9)
		}
	}
	assert.Equal(t, 4*len(allShapes), ctx.MM.Builds)
	assert.Equal(t, ctx.MM.Builds, ctx.MM.Len())
	{ // 1D edge matrix spans the bubbles only
		mm := GetMMat1D(ctx, 5, 6)
		assert.Equal(t, 3, mm.N)
		assert.Equal(t, []int{2, 3, 4}, mm.Modes)
		assert.Same(t, mm, GetMMatFace(ctx, utils.Line, 5, 6))
	}
	{
		mm := GetMMatFace(ctx, utils.Triangle, 5, 6)
		assert.Equal(t, 3, mm.N) // (L-3)(L-2)/2
		mm = GetMMatFace(ctx, utils.Quad, 5, 6)
		assert.Equal(t, 9, mm.N)
		mm = GetMMatFace(ctx, utils.Triangle, 3, 4)
		assert.Equal(t, 0, mm.N)
	}
}

func TestIProduct(t *testing.T) {
	var (
		ctx = NewContext()
		rng = rand.New(rand.NewSource(3))
	)
	for _, et := range allShapes {
		e, err := New(ctx, 0, et, 4, distortedVerts(et))
		require.NoError(t, err)
		c := randomModes(rng, e.Nmodes)
		copy(e.Modal, c)
		Jbwd(ctx, e)
		// the inner products are the rows of the jacobian weighted mass matrix
		var (
			b = IProduct(e, e.Phys)
			M = MassMatrix(e.Table(), allModes(e.Nmodes), e.jac)
		)
		assert.InDeltaSlice(t, M.MulVec(c), b, 1.e-10, "%v", et)
	}
}
