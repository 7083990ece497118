package navgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetGetCon(t *testing.T) {
	var s CompactSpan
	for dir := int32(0); dir < 4; dir++ {
		SetCon(&s, dir, dir+1)
	}
	for dir := int32(0); dir < 4; dir++ {
		assert.Equal(t, dir+1, GetCon(&s, dir))
	}
}

func TestGetConNotConnected(t *testing.T) {
	var s CompactSpan
	SetCon(&s, 0, notConnected)
	assert.Equal(t, notConnected, GetCon(&s, 0))
	assert.Equal(t, int32(0), GetCon(&s, 1))
}

func TestDirOffsets(t *testing.T) {
	assert.Equal(t, int32(-1), GetDirOffsetX(0))
	assert.Equal(t, int32(0), GetDirOffsetY(0))
	assert.Equal(t, int32(1), GetDirOffsetX(2))
	assert.Equal(t, int32(-1), GetDirOffsetY(3))
}
