package element

import (
	"fmt"
	"sync"

	"github.com/notargets/gohp/basis"
	"github.com/notargets/gohp/utils"
)

type tableKey struct {
	Type utils.ElementType
	L    int
	Q    [3]int
}

// TransformContext carries the state shared by transforms: basis tables,
// mass matrix factorizations and the geometry families, all safe for
// concurrent insertion, plus a scratch arena that belongs to one worker.
type TransformContext struct {
	tables *tableCache
	MM     *MMCache
	Geoms  *GeomCache
	Arena  *Arena
}

type tableCache struct {
	mu sync.RWMutex
	m  map[tableKey]*basis.Table
}

func NewContext() *TransformContext {
	return &TransformContext{
		tables: &tableCache{m: make(map[tableKey]*basis.Table)},
		MM:     NewMMCache(),
		Geoms:  NewGeomCache(),
		Arena:  NewArena(),
	}
}

// Worker returns a context sharing the caches of ctx with a private arena
func (ctx *TransformContext) Worker() *TransformContext {
	return &TransformContext{
		tables: ctx.tables,
		MM:     ctx.MM,
		Geoms:  ctx.Geoms,
		Arena:  NewArena(),
	}
}

// Table returns the tabulated expansion of et, built on first request
func (ctx *TransformContext) Table(et utils.ElementType, L int, Q [3]int) (tb *basis.Table, err error) {
	key := tableKey{et, L, Q}
	ctx.tables.mu.RLock()
	tb, ok := ctx.tables.m[key]
	ctx.tables.mu.RUnlock()
	if ok {
		return
	}
	if tb, err = basis.NewTable(et, L, Q); err != nil {
		return
	}
	ctx.tables.mu.Lock()
	defer ctx.tables.mu.Unlock()
	if existing, ok := ctx.tables.m[key]; ok {
		return existing, nil
	}
	ctx.tables.m[key] = tb
	return
}

// FaceTable returns the table of the face expansion used on faces of an
// element with L modes and quadrature size q along the faces.
func (ctx *TransformContext) FaceTable(ft utils.ElementType, L, q int) *basis.Table {
	Q := [3]int{1, 1, 1}
	for d := 0; d < ft.GetDimension(); d++ {
		Q[d] = q
	}
	tb, err := ctx.Table(ft, L, Q)
	if err != nil {
		panic(fmt.Errorf("face table: %w", err))
	}
	return tb
}
