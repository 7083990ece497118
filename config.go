package navgen

// Config holds the tunable parameters shared by every stage of the
// pipeline. It is typically populated once from the voxelizer's output
// and then passed unchanged to Builder.Run.
type Config struct {
	// Width and Height are the CompactHeightfield's dimensions along x
	// and z, in voxel units.
	Width, Height int32

	// BorderSize is the width of the non-navigable padding border drawn
	// around the heightfield. [Limit: >= 0] [Units: vx]
	BorderSize int32

	// Cs is the xz-plane cell size and Ch the y-axis cell size, both in
	// world units.
	Cs, Ch float32

	// BMin and BMax are the world-space bounds of the field.
	BMin, BMax [3]float32

	// MaxEdgeLen is the maximum length, in voxels, allowed for a
	// contour edge before it is tessellated. Zero disables tessellation.
	MaxEdgeLen int32

	// MaxSimplificationError is the maximum distance, in voxels, a
	// simplified contour edge may deviate from the raw traced boundary.
	MaxSimplificationError float32

	// MinRegionArea is the minimum span count a region may have before
	// it is discarded (unless connected to the field border).
	MinRegionArea int32

	// MergeRegionArea is the span count at or below which a region is
	// folded into a neighboring region (regions with no edge against
	// region 0 are folded whatever their size).
	MergeRegionArea int32

	// MaxVertsPerPoly bounds how many vertices a merged polygon may
	// have. [Limit: >= 3]
	MaxVertsPerPoly int32

	// ContourFlags selects which contour edges get tessellated; see
	// ContourTessWallEdges / ContourTessAreaEdges.
	ContourFlags int32
}
