package navgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEdgeHashFindMatch(t *testing.T) {
	eh := newEdgeHash(8)
	eh.insert(1, 2, 0, 0) // polygon 0's edge 1->2
	eh.insert(5, 9, 1, 3) // unrelated edge elsewhere in the same bucket range

	poly, edge := eh.findMatch(2, 1) // reverse of 1->2
	assert.Equal(t, int32(0), poly)
	assert.Equal(t, int32(0), edge)

	poly, edge = eh.findMatch(1, 2) // same orientation never matches
	assert.Equal(t, int32(-1), poly)
	assert.Equal(t, int32(-1), edge)
}

func TestEdgeHashRemoveForPoly(t *testing.T) {
	eh := newEdgeHash(8)
	eh.insert(1, 2, 0, 0)
	eh.insert(2, 1, 1, 0)

	eh.removeForPoly(1)
	poly, _ := eh.findMatch(1, 2) // reverse of polygon 1's removed edge 2->1
	assert.Equal(t, int32(-1), poly, "entries belonging to a removed polygon must not match")
}

func TestEdgeBucketSymmetric(t *testing.T) {
	assert.Equal(t, edgeBucket(3, 9), edgeBucket(9, 3))
}
