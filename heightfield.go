package navgen

// CompactCell points at the run of CompactSpan entries for one (x, z)
// column of the heightfield.
type CompactCell struct {
	Index uint32 // Index of the column's first span in CompactHeightfield.Spans.
	Count uint8  // Number of spans in the column.
}

// CompactSpan is a single run of walkable voxels within a column, along
// with its packed per-direction neighbor connectivity.
type CompactSpan struct {
	Y   uint16 // Lower extent of the span, measured from the field's base.
	Reg uint16 // Region id this span belongs to, or 0 if unassigned.
	Con uint32 // Packed neighbor connection data; see GetCon/SetCon.
	H   uint8  // Height of the span, measured from Y.
}

// CompactHeightfield is the read-only input to RegionBuilder: a dense
// grid of walkable spans with precomputed neighbor connectivity and
// (optionally) border-distance data.
type CompactHeightfield struct {
	Width, Height int32 // Field dimensions along x and z, in voxel units.
	SpanCount     int32 // Total number of spans in Spans.

	WalkableHeight int32 // Minimum floor-to-ceiling clearance used to build the field.
	WalkableClimb  int32 // Maximum traversable ledge height used to build the field.
	BorderSize     int32 // Non-navigable padding border width, in voxel units.

	MaxDistance uint16 // Largest border-distance value present in Dist.
	MaxRegions  uint16 // Number of surviving regions; their ids run 1..MaxRegions (border-strip ids excluded).

	BMin, BMax [3]float32 // World-space bounds.
	Cs, Ch     float32    // Cell size on the xz-plane and along y.

	Cells []CompactCell // One entry per (x, z) column. [Size: Width*Height]
	Spans []CompactSpan // One entry per span. [Size: SpanCount]
	Dist  []uint16      // Border-distance field, if computed. [Size: SpanCount]
	Areas []uint8       // Area id per span. [Size: SpanCount]
}

// dirOffsetX and dirOffsetY give the column offset to apply when moving
// from a span in the given direction (0=-x, 1=+z, 2=+x, 3=-z).
var (
	dirOffsetX = [4]int32{-1, 0, 1, 0}
	dirOffsetY = [4]int32{0, 1, 0, -1}
)

// GetDirOffsetX returns the x offset to apply to move in dir.
func GetDirOffsetX(dir int32) int32 { return dirOffsetX[dir&0x3] }

// GetDirOffsetY returns the z offset to apply to move in dir.
func GetDirOffsetY(dir int32) int32 { return dirOffsetY[dir&0x3] }

// SetCon records the neighbor span index reachable from s in direction
// dir, 6 bits per direction.
func SetCon(s *CompactSpan, dir, i int32) {
	shift := uint32(dir * 6)
	con := s.Con
	s.Con = (con &^ (0x3f << shift)) | (uint32(i&0x3f) << shift)
}

// GetCon returns the neighbor span index reachable from s in direction
// dir, or notConnected if s has no neighbor there.
func GetCon(s *CompactSpan, dir int32) int32 {
	shift := uint32(dir * 6)
	return int32((s.Con >> shift) & 0x3f)
}

func iMin(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func iMax(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

func iAbs(a int32) int32 {
	if a < 0 {
		return -a
	}
	return a
}
