package boundary

// History is a ring of previous boundary data, most recent first
type History struct {
	ring [][]float64
	head int
	n    int
}

func NewHistory(depth int) *History {
	return &History{ring: make([][]float64, depth)}
}

func (h *History) Depth() int { return len(h.ring) }

func (h *History) Len() int { return h.n }

// Push copies v into the ring, dropping the oldest level when full
func (h *History) Push(v []float64) {
	h.head = (h.head + 1) % len(h.ring)
	if len(h.ring[h.head]) != len(v) {
		h.ring[h.head] = make([]float64, len(v))
	}
	copy(h.ring[h.head], v)
	h.n = min(h.n+1, len(h.ring))
}

// At returns level i, 0 being the most recently pushed
func (h *History) At(i int) []float64 {
	if i < 0 || i >= h.n {
		return nil
	}
	return h.ring[(h.head-i+len(h.ring))%len(h.ring)]
}
