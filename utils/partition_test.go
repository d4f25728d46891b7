package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartition(t *testing.T) {
	histo := func(K, Np int) (h map[int]int) {
		p := NewPartition(Np, K)
		h = make(map[int]int)
		for w := 0; w < p.Workers; w++ {
			h[p.Size(w)]++
		}
		return
	}
	assert.Equal(t, map[int]int{0: 30, 1: 2}, histo(2, 32))
	assert.Equal(t, map[int]int{1: 32}, histo(32, 32))
	assert.Equal(t, map[int]int{8: 1, 9: 31}, histo(287, 32))
	for K := 1; K < 500; K++ {
		for _, Np := range []int{1, 3, 7} {
			var (
				p     = NewPartition(Np, K)
				total int
				next  int
			)
			for w := 0; w < Np; w++ {
				kMin, kMax := p.Range(w)
				assert.Equal(t, next, kMin)
				next = kMax
				total += p.Size(w)
				assert.LessOrEqual(t, p.Size(w)-p.Size(Np-1), 1)
			}
			assert.Equal(t, K, total)
			for k := 0; k < K; k++ {
				w, kl := p.Owner(k)
				kMin, kMax := p.Range(w)
				assert.True(t, k >= kMin && k < kMax)
				assert.Equal(t, k-kMin, kl)
			}
			w, _ := p.Owner(K)
			assert.Equal(t, -1, w)
		}
	}
}
