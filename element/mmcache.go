package element

import (
	"fmt"
	"sync"

	"github.com/notargets/gohp/basis"
	"github.com/notargets/gohp/utils"
)

// MMKind selects which mass matrix of an expansion is cached
type MMKind uint8

const (
	// Edge1D is the 1D mass matrix of the edge bubble modes k = 2..L-1
	Edge1D MMKind = iota
	// FaceInterior is the mass matrix of the interior modes of a face expansion
	FaceInterior
	// Volume is the reference element mass matrix of all modes
	Volume
)

func (k MMKind) String() string {
	return [...]string{"Edge1D", "FaceInterior", "Volume"}[k]
}

type MMKey struct {
	Type utils.ElementType
	Kind MMKind
	L    int
	Q    [3]int
}

// MMInfo is an immutable Cholesky factored mass matrix
type MMInfo struct {
	Key   MMKey
	N     int
	Modes []int // expansion modes spanned by the matrix
	*utils.CholeskyFactor
}

// MMCache builds mass matrix factorizations on first request and keeps
// them for the life of the cache.
type MMCache struct {
	mu     sync.RWMutex
	m      map[MMKey]*MMInfo
	Builds int
}

func NewMMCache() *MMCache {
	return &MMCache{m: make(map[MMKey]*MMInfo)}
}

// Get returns the factorization for key, building it from the table on a miss.
// Matrices of order L > 3 are factored in band storage.
func (mc *MMCache) Get(key MMKey, tb *basis.Table) (mm *MMInfo) {
	mc.mu.RLock()
	mm, ok := mc.m[key]
	mc.mu.RUnlock()
	if ok {
		return
	}
	mm = buildMM(key, tb)
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if existing, ok := mc.m[key]; ok {
		return existing
	}
	mc.m[key] = mm
	mc.Builds++
	return
}

func (mc *MMCache) Len() int {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return len(mc.m)
}

func buildMM(key MMKey, tb *basis.Table) (mm *MMInfo) {
	var modes []int
	switch key.Kind {
	case Edge1D, FaceInterior:
		for m, mode := range tb.Modes {
			if mode.Kind == basis.Interior {
				modes = append(modes, m)
			}
		}
	case Volume:
		modes = make([]int, tb.Nmodes())
		for m := range modes {
			modes[m] = m
		}
	}
	if len(modes) == 0 {
		return &MMInfo{Key: key, CholeskyFactor: &utils.CholeskyFactor{}}
	}
	wt := tb.W
	M := MassMatrix(tb, modes, func(ind int) float64 { return wt[ind] })
	cf, err := utils.NewCholeskyFactor(M, key.L > 3)
	if err != nil {
		panic(fmt.Errorf("mass matrix %v %v L=%d: %w", key.Type, key.Kind, key.L, err))
	}
	return &MMInfo{Key: key, N: len(modes), Modes: modes, CholeskyFactor: cf}
}

// MassMatrix assembles sum_p B[m][p] B[n][p] w(p) over the listed modes
func MassMatrix(tb *basis.Table, modes []int, w func(ind int) float64) (M utils.Matrix) {
	var (
		n  = len(modes)
		wp = make([]float64, tb.Npts)
	)
	for ind := range wp {
		wp[ind] = w(ind)
	}
	M = utils.NewMatrix(n, n)
	for i, mi := range modes {
		bi := tb.B.Row(mi)
		for j := i; j < n; j++ {
			bj := tb.B.Row(modes[j])
			var sum float64
			for ind, wv := range wp {
				sum += bi[ind] * wv * bj[ind]
			}
			M.Set(i, j, sum)
			M.Set(j, i, sum)
		}
	}
	return
}

// GetMMat1D returns the factored 1D edge bubble mass matrix for L modes on q
// Gauss-Lobatto points.
func GetMMat1D(ctx *TransformContext, L, q int) *MMInfo {
	tb := ctx.FaceTable(utils.Line, L, q)
	return ctx.MM.Get(MMKey{Type: utils.Line, Kind: Edge1D, L: L, Q: tb.Q}, tb)
}

// GetMMatFace returns the factored interior mass matrix of a face expansion
func GetMMatFace(ctx *TransformContext, ft utils.ElementType, L, q int) *MMInfo {
	if ft == utils.Line {
		return GetMMat1D(ctx, L, q)
	}
	tb := ctx.FaceTable(ft, L, q)
	return ctx.MM.Get(MMKey{Type: ft, Kind: FaceInterior, L: L, Q: tb.Q}, tb)
}
