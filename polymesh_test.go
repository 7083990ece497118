package navgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBuildPolyMeshRemovesBorderVertex exercises spec §4.3 step 4: a
// contour vertex flagged BORDER_VERTEX (the redundant midpoint of a
// straight edge) must be eliminated from the final mesh via
// canRemoveVertex/removeVertex, not just carried through as an extra
// polygon corner.
func TestBuildPolyMeshRemovesBorderVertex(t *testing.T) {
	cont := Contour{
		Verts: []int32{
			0, 0, 0, 0,
			0, 0, 4, 0,
			4, 0, 4, 0,
			4, 0, 0, 0,
			2, 0, 0, borderVertex,
		},
		NVerts: 5,
		Reg:    1,
		Area:   walkableArea,
	}
	cset := &ContourSet{
		Conts: []Contour{cont},
		BMin:  [3]float32{0, 0, 0},
		BMax:  [3]float32{4, 1, 4},
		Cs:    1, Ch: 1,
		Width: 4, Height: 4,
	}

	pb := NewPolyMeshBuilder()
	ctx := NewBuildContext()
	mesh, err := pb.BuildPolyMesh(ctx, cset, 6)
	require.NoError(t, err)
	require.NotNil(t, mesh)

	assert.Equal(t, int32(4), mesh.NVerts, "the redundant collinear vertex must be removed")
	assert.Equal(t, int32(1), mesh.NPolys)
	nv := countPolyVerts(mesh.Polys[:mesh.Nvp*2], mesh.Nvp)
	assert.Equal(t, int32(4), nv, "the surviving polygon must be the plain quad")
}
