// Package navgen builds triangulated navigation meshes from a compact
// voxel representation of walkable space.
//
// The pipeline runs in four strictly sequential stages:
//
//	CompactHeightfield -> RegionBuilder -> ContourBuilder -> PolyMeshBuilder
//
// A CompactHeightfield groups walkable voxels into per-column spans with
// precomputed neighbor connectivity. RegionBuilder partitions those spans
// into regions (monotone sweep, whose regions never overlap, or watershed
// flood-fill, which can occasionally produce overlapping regions).
// ContourBuilder traces the boundary of every region into a simplified
// polyline, folding holes into their enclosing outline. PolyMeshBuilder
// triangulates each contour, merges triangles back into larger convex
// polygons, and computes polygon adjacency and portal edges.
//
// Voxelization (turning triangle soup into a Heightfield), the detail
// height mesh, and the downstream pathfinding query structures are out
// of scope for this package.
package navgen
