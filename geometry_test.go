package navgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAreaAndLeftness(t *testing.T) {
	a := []int32{0, 0, 0, 0}
	b := []int32{4, 0, 0, 0}
	c := []int32{0, 0, 4, 0}

	// area2(a, b, c) is +16 here; left holds only for a negative area2.
	assert.False(t, left(a, b, c))
	assert.True(t, left(a, c, b))
	assert.True(t, collinear(a, b, []int32{8, 0, 0, 0}))
}

func TestIntersect(t *testing.T) {
	a := []int32{0, 0, 0, 0}
	b := []int32{4, 0, 4, 0}
	c := []int32{0, 0, 4, 0}
	d := []int32{4, 0, 0, 0}
	assert.True(t, intersect(a, b, c, d))

	e := []int32{10, 0, 10, 0}
	f := []int32{20, 0, 20, 0}
	assert.False(t, intersect(a, b, e, f))
}

func TestCalcAreaOfPolygon2D(t *testing.T) {
	square := []int32{
		0, 0, 0, 0,
		4, 0, 0, 0,
		4, 0, 4, 0,
		0, 0, 4, 0,
	}
	// The +1 rounding in calcAreaOfPolygon2D turns -16 into -15.
	assert.Equal(t, int32(-15), calcAreaOfPolygon2D(square, 4), "this winding (a hole) must read as negative area")

	reversed := []int32{
		0, 0, 0, 0,
		0, 0, 4, 0,
		4, 0, 4, 0,
		4, 0, 0, 0,
	}
	assert.Equal(t, int32(16), calcAreaOfPolygon2D(reversed, 4), "outline winding must read as positive area")
}

func TestDistancePtSeg(t *testing.T) {
	d := distancePtSeg(0, 5, 0, 0, 10, 0)
	assert.Equal(t, float32(25), d)
}
