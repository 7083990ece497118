package navgen

// edgeHash indexes every directed edge inserted into it, for a growing
// set of polygons, by its endpoint pair, so a candidate merge or
// adjacency lookup for a given edge is O(1) average instead of scanning
// every polygon pair. The bucket is (min(v0,v1) + max(v0,v1)) mod
// edgeHashBuckets, with chaining on collision. Entries are kept in
// parallel arrays and record only the owning polygon index and edge slot.
type edgeHash struct {
	buckets []int32 // head entry index per bucket, or -1
	nextIn  []int32 // next entry index in the same bucket's chain, or -1
	v0, v1  []int32 // edge endpoints for entry i
	poly    []int32 // owning polygon index for entry i
	edge    []int32 // edge slot (0..nvp-1) within the owning polygon for entry i
}

const edgeHashBuckets = 256

func newEdgeHash(capacityHint int) *edgeHash {
	h := &edgeHash{}
	h.buckets = make([]int32, edgeHashBuckets)
	for i := range h.buckets {
		h.buckets[i] = -1
	}
	if capacityHint > 0 {
		h.nextIn = make([]int32, 0, capacityHint)
		h.v0 = make([]int32, 0, capacityHint)
		h.v1 = make([]int32, 0, capacityHint)
		h.poly = make([]int32, 0, capacityHint)
		h.edge = make([]int32, 0, capacityHint)
	}
	return h
}

func edgeBucket(a, b int32) int32 {
	if a > b {
		a, b = b, a
	}
	return (a + b) % edgeHashBuckets
}

// insert records one directed polygon edge (v0->v1) belonging to polygon
// polyIdx at edge slot edgeIdx.
func (h *edgeHash) insert(v0, v1 int32, polyIdx, edgeIdx int32) {
	b := edgeBucket(v0, v1)
	entry := int32(len(h.v0))
	h.v0 = append(h.v0, v0)
	h.v1 = append(h.v1, v1)
	h.poly = append(h.poly, polyIdx)
	h.edge = append(h.edge, edgeIdx)
	h.nextIn = append(h.nextIn, h.buckets[b])
	h.buckets[b] = entry
}

// removeForPoly drops every entry belonging to polyIdx, so its edges are
// no longer offered as matches. The merge loops in polymesh.go do not
// call it; they build a fresh edgeHash on each pass instead.
func (h *edgeHash) removeForPoly(polyIdx int32) {
	for b := range h.buckets {
		prev := int32(-1)
		cur := h.buckets[b]
		for cur != -1 {
			next := h.nextIn[cur]
			if h.poly[cur] == polyIdx {
				if prev == -1 {
					h.buckets[b] = next
				} else {
					h.nextIn[prev] = next
				}
			} else {
				prev = cur
			}
			cur = next
		}
	}
}

// findMatch returns the polygon and edge-slot index of a previously
// inserted edge running v1->v0 (i.e. the reverse of v0->v1, the
// orientation a shared edge has in its other owning polygon), or
// (-1, -1) if none is indexed.
func (h *edgeHash) findMatch(v0, v1 int32) (polyIdx, edgeIdx int32) {
	b := edgeBucket(v0, v1)
	for cur := h.buckets[b]; cur != -1; cur = h.nextIn[cur] {
		if h.v0[cur] == v1 && h.v1[cur] == v0 {
			return h.poly[cur], h.edge[cur]
		}
	}
	return -1, -1
}

// forEachMatch calls fn for every indexed edge running v1->v0, not just
// the first. The merge search and the adjacency pass use findMatch
// instead, since a well-formed mesh has at most one such edge; nothing
// in the package calls forEachMatch.
func (h *edgeHash) forEachMatch(v0, v1 int32, fn func(polyIdx, edgeIdx int32)) {
	b := edgeBucket(v0, v1)
	for cur := h.buckets[b]; cur != -1; cur = h.nextIn[cur] {
		if h.v0[cur] == v1 && h.v1[cur] == v0 {
			fn(h.poly[cur], h.edge[cur])
		}
	}
}
