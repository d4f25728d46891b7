package element

import (
	"fmt"

	"github.com/notargets/gohp/utils"
)

// ArenaRegion is the scratch space of one element type. Allocation is a
// bump of the offset; Reset releases everything at once.
type ArenaRegion struct {
	Name   string
	buffer []float64
	offset int
	// Grows counts how many times the region was replaced by a larger one
	Grows int
}

// Arena manages per element type scratch buffers. A region is grown when a
// larger order is seen, the old buffer is dropped. Regions are not reentrant:
// one transform per element type may use a region at a time, which is why
// every worker owns its own TransformContext and Arena.
type Arena struct {
	regions map[utils.ElementType]*ArenaRegion
}

func NewArena() *Arena {
	return &Arena{regions: make(map[utils.ElementType]*ArenaRegion)}
}

// Region returns the scratch region of et reset and holding at least size values
func (a *Arena) Region(et utils.ElementType, size int) (r *ArenaRegion) {
	var ok bool
	if r, ok = a.regions[et]; !ok {
		r = &ArenaRegion{Name: et.String()}
		a.regions[et] = r
	}
	if len(r.buffer) < size {
		if r.buffer != nil {
			r.Grows++
		}
		r.buffer = make([]float64, size)
	}
	r.offset = 0
	return
}

// Alloc carves n zeroed values from the region
func (r *ArenaRegion) Alloc(n int) (s []float64) {
	if r.offset+n > len(r.buffer) {
		panic(fmt.Errorf("arena region %s exhausted: need %d, have %d of %d",
			r.Name, n, len(r.buffer)-r.offset, len(r.buffer)))
	}
	s = r.buffer[r.offset : r.offset+n : r.offset+n]
	r.offset += n
	for i := range s {
		s[i] = 0
	}
	return
}

func (r *ArenaRegion) Reset() { r.offset = 0 }

func (r *ArenaRegion) Size() int { return len(r.buffer) }

// workspaceSize bounds the scratch needed by one transform of an element with
// Nmodes modes, L modes per direction and quadrature Q.
func workspaceSize(Nmodes, L int, Q [3]int) int {
	var (
		npts = Q[0] * Q[1] * Q[2]
		qmax = max(Q[0], Q[1], Q[2])
	)
	return 2*max(npts, Nmodes) + 3*L*L*qmax + 2*L*qmax*qmax + 4*qmax*qmax*qmax
}
