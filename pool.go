package navgen

// contourScratch holds the two growable int32 vertex buffers
// ContourBuilder needs per region while it traces and simplifies a
// boundary: the raw traced polyline and its simplified form. Keeping
// these as pooled, reusable objects avoids reallocating two slices per
// region on every Builder.Run.
type contourScratch struct {
	raw        []int32
	simplified []int32
	next       *contourScratch
}

// Reset empties both buffers without releasing their backing arrays, so
// the next rent can reuse the capacity built up by earlier runs.
func (s *contourScratch) Reset() {
	s.raw = s.raw[:0]
	s.simplified = s.simplified[:0]
}

// contourScratchPool is a free-list allocator for contourScratch
// buffers, the same rent/return idiom the voxelizer's heightfield uses
// for rcSpan: pool blocks are appended instead of letting individual
// scratch buffers be garbage collected between runs, and Rent favors
// reusing a freed buffer (with its already-grown capacity) over
// allocating a fresh one.
type contourScratchPool struct {
	freelist *contourScratch
	pools    []*[poolBlockSize]contourScratch
}

const poolBlockSize = 64

// newContourScratchPool returns an empty pool. The first Rent call
// allocates the first block lazily.
func newContourScratchPool() *contourScratchPool {
	return &contourScratchPool{}
}

// Rent returns a scratch buffer ready for use, either recycled from the
// freelist or carved out of a newly grown pool block.
func (p *contourScratchPool) Rent() *contourScratch {
	if p.freelist == nil {
		block := new([poolBlockSize]contourScratch)
		p.pools = append(p.pools, block)
		for i := range block {
			block[i].next = p.freelist
			p.freelist = &block[i]
		}
	}
	s := p.freelist
	p.freelist = s.next
	s.next = nil
	s.Reset()
	return s
}

// Return puts s back on the freelist for a future Rent to reuse.
func (p *contourScratchPool) Return(s *contourScratch) {
	if s == nil {
		return
	}
	s.next = p.freelist
	p.freelist = s
}
