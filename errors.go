package navgen

import "errors"

// errTooManyPolys is returned by PolyMeshBuilder.BuildPolyMesh when a
// contour set produces more polygons than the mesh's preallocated
// capacity, which can only happen if the contour set wasn't produced by
// ContourBuilder for the same heightfield.
var errTooManyPolys = errors.New("navgen: polygon mesh capacity exceeded")

// errTooManyVerts is returned by PolyMeshBuilder.BuildPolyMesh when the
// contour set's total vertex count would exceed the 16-bit index space
// the mesh's vertex and adjacency slots are packed into.
var errTooManyVerts = errors.New("navgen: vertex count exceeds 16-bit capacity")
