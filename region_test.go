package navgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegionCanMergeWithRegion(t *testing.T) {
	a := newRegion(1)
	a.AreaType = walkableArea
	a.Connections = []int32{2, 3}

	b := newRegion(2)
	b.AreaType = walkableArea

	assert.True(t, a.canMergeWithRegion(b))

	b.AreaType = walkableArea - 1
	assert.False(t, a.canMergeWithRegion(b), "regions of different area types must never merge")
}

func TestRegionCanMergeRejectsMultiConnection(t *testing.T) {
	a := newRegion(1)
	a.AreaType = walkableArea
	a.Connections = []int32{2, 2}

	b := newRegion(2)
	b.AreaType = walkableArea

	assert.False(t, a.canMergeWithRegion(b), "a region connected to another more than once can't merge (would create a non-simple boundary)")
}

func TestRegionAddUniqueFloorRegion(t *testing.T) {
	r := newRegion(1)
	r.addUniqueFloorRegion(5)
	r.addUniqueFloorRegion(5)
	r.addUniqueFloorRegion(6)
	assert.Equal(t, []int32{5, 6}, r.Floors)
}

func TestMergeRegionsSumsSpanCount(t *testing.T) {
	a := newRegion(1)
	a.Connections = []int32{2}
	a.SpanCount = 10

	b := newRegion(2)
	b.Connections = []int32{1}
	b.SpanCount = 4

	ok := mergeRegions(a, b)
	assert.True(t, ok)
	assert.Equal(t, int32(14), a.SpanCount)
	assert.Equal(t, int32(0), b.SpanCount)
}

func TestMergeRegionsFailsWithoutSharedBorder(t *testing.T) {
	a := newRegion(1)
	b := newRegion(2)
	assert.False(t, mergeRegions(a, b))
}

func TestRegionIsConnectedToBorder(t *testing.T) {
	r := newRegion(1)
	assert.False(t, r.isConnectedToBorder())
	r.Connections = []int32{0}
	assert.True(t, r.isConnectedToBorder())
}
