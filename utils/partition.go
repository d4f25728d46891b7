package utils

// Partition splits the element indices [0, K) into contiguous batches, one
// per worker, the batch sizes differing by at most one.
type Partition struct {
	K       int
	Workers int
	Batches [][2]int // [start, end) of each batch
}

func NewPartition(workers, K int) (p *Partition) {
	p = &Partition{
		K:       K,
		Workers: workers,
		Batches: make([][2]int, workers),
	}
	var (
		n     = K / workers
		extra = K % workers
		start int
	)
	for w := range p.Batches {
		size := n
		if w < extra {
			size++
		}
		p.Batches[w] = [2]int{start, start + size}
		start += size
	}
	return
}

func (p *Partition) Range(w int) (kMin, kMax int) {
	return p.Batches[w][0], p.Batches[w][1]
}

func (p *Partition) Size(w int) int { return p.Batches[w][1] - p.Batches[w][0] }

// Owner returns the worker holding element k and its index within the batch,
// -1 when k is out of range.
func (p *Partition) Owner(k int) (w, kLocal int) {
	if k < 0 || k >= p.K {
		return -1, k
	}
	// initial guess, off by at most one batch
	w = min(k*p.Workers/p.K, p.Workers-1)
	for k < p.Batches[w][0] {
		w--
	}
	for k >= p.Batches[w][1] {
		w++
	}
	kLocal = k - p.Batches[w][0]
	return
}
