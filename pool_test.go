package navgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContourScratchPoolReusesReturned(t *testing.T) {
	p := newContourScratchPool()

	s1 := p.Rent()
	s1.raw = append(s1.raw, 1, 2, 3)
	p.Return(s1)

	s2 := p.Rent()
	assert.Empty(t, s2.raw, "a rented buffer must come back reset even if it's a recycled one")
	assert.Same(t, s1, s2, "the freelist should hand back the most recently returned buffer first")
}

func TestContourScratchPoolGrowsBeyondOneBlock(t *testing.T) {
	p := newContourScratchPool()
	rented := make([]*contourScratch, poolBlockSize+1)
	for i := range rented {
		rented[i] = p.Rent()
	}
	assert.Len(t, p.pools, 2, "renting past one block's capacity must grow a second block")
}
