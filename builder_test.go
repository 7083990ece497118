package navgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		BorderSize:              0,
		Cs:                      1,
		Ch:                      1,
		MaxEdgeLen:              12,
		MaxSimplificationError:  1.3,
		MinRegionArea:           1,
		MergeRegionArea:         1,
		MaxVertsPerPoly:         6,
	}
}

func TestBuilderRunOnFlatField(t *testing.T) {
	chf := newFlatCompactHeightfield(10, 10)
	b := NewBuilder(testConfig())

	res, err := b.Run(chf)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.NotEmpty(t, res.Contours.Conts)
	assert.Greater(t, res.Mesh.NPolys, int32(0))
	assert.NotEqual(t, res.Ctx.RunID.String(), "")

	for i := int32(0); i < res.Mesh.NPolys; i++ {
		nv := countPolyVerts(res.Mesh.Polys[i*res.Mesh.Nvp*2:], res.Mesh.Nvp)
		assert.GreaterOrEqual(t, nv, int32(3))
		assert.LessOrEqual(t, nv, res.Mesh.Nvp)
	}
}

func TestBuilderRunTwiceReusesScratchPool(t *testing.T) {
	chf := newFlatCompactHeightfield(8, 8)
	b := NewBuilder(testConfig())

	res1, err := b.Run(chf)
	require.NoError(t, err)
	res2, err := b.Run(chf)
	require.NoError(t, err)

	assert.NotEqual(t, res1.Ctx.RunID, res2.Ctx.RunID, "each Run gets its own run id")
	assert.Equal(t, res1.Mesh.NPolys, res2.Mesh.NPolys, "the same input must produce the same mesh across runs")
}

func TestBuilderWatershedRequiresDistanceField(t *testing.T) {
	chf := newFlatCompactHeightfield(10, 10)
	chf.Dist = make([]uint16, chf.SpanCount)
	for y := int32(0); y < chf.Height; y++ {
		for x := int32(0); x < chf.Width; x++ {
			d := iMin(iMin(x, chf.Width-1-x), iMin(y, chf.Height-1-y))
			chf.Dist[x+y*chf.Width] = uint16(d * 2)
			if d*2 > int32(chf.MaxDistance) {
				chf.MaxDistance = uint16(d * 2)
			}
		}
	}

	b := NewBuilder(testConfig())
	b.UseWatershedRegions(true)

	res, err := b.Run(chf)
	require.NoError(t, err)
	assert.Greater(t, res.Mesh.NPolys, int32(0))
}
