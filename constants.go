package navgen

// Contour build flags controlling which edges get tessellated during
// simplification.
const (
	ContourTessWallEdges int32 = 0x01 // Tessellate solid (impassable) edges.
	ContourTessAreaEdges int32 = 0x02 // Tessellate edges between areas.
)

const (
	// contourRegMask extracts the region id from a contour vertex's packed
	// region field; the field also carries borderVertex/areaBorder flags.
	contourRegMask int32 = 0xffff
	// borderVertex marks a contour vertex produced at a region corner that
	// must eventually be removed from the poly mesh.
	borderVertex int32 = 0x10000
	// areaBorder marks a contour vertex that sits on a boundary between
	// two different area types.
	areaBorder int32 = 0x20000
)

// meshNullIdx marks an unused vertex/polygon slot in poly mesh arrays.
const meshNullIdx uint16 = 0xffff

// multipleRegs is assigned to a merged polygon whose source triangles
// belonged to more than one region.
const multipleRegs uint16 = 0

// nullArea marks a span that is not part of any walkable area.
const nullArea uint8 = 0

// walkableArea is the default (and maximum) area id for a walkable span.
const walkableArea uint8 = 63

// notConnected is returned by GetCon when a span has no neighbor in the
// requested direction.
const notConnected int32 = 0x3f

// borderReg flags a region id produced by paintRectRegion along the
// heightfield's padding border, rather than by the flood/sweep itself.
const borderReg uint16 = 0x8000

// nullNei marks a sweep-span as not yet connected to any neighbour row
// during monotone region building.
const nullNei uint16 = 0xffff

// vertexBucketCount is the number of hash buckets used to deduplicate
// poly mesh vertices found in different contours.
const vertexBucketCount int32 = 1 << 12

// portalFlag marks a poly mesh edge as a tile-border portal; the low
// bits carry which of the 4 heightfield sides the edge runs along.
const portalFlag uint16 = 0x8000
