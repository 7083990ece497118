package navgen

import (
	"fmt"

	"github.com/aurelien-rainone/assertgo"
)

// PolyMesh is a mesh of convex polygons with adjacency and per-edge
// portal information, built from a ContourSet. Polys is laid out
// nvp*2 uint16 per polygon: the first nvp entries are vertex indices
// (meshNullIdx padding unused slots), the second nvp are neighbour
// polygon indices (meshNullIdx for a solid/no-neighbour edge, or
// portalFlag|side for a tile-border portal).
type PolyMesh struct {
	Verts    []uint16 // Packed (x, y, z) per vertex. [Size: NVerts*3]
	Polys    []uint16 // Polygon vertex/adjacency data. [Size: MaxPolys*2*Nvp]
	Regs     []uint16 // Region id per polygon. [Size: MaxPolys]
	Areas    []uint8  // Area id per polygon. [Size: MaxPolys]
	NVerts   int32
	NPolys   int32
	MaxPolys int32
	Nvp      int32

	BMin, BMax [3]float32
	Cs, Ch     float32
	BorderSize int32
}

// PolyMeshBuilder triangulates each contour's polygon, merges adjacent
// triangles back into larger convex polygons (up to maxVertsPerPoly
// sides), deduplicates shared vertices across contours, and tags
// shared/portal edges.
type PolyMeshBuilder struct{}

func NewPolyMeshBuilder() *PolyMeshBuilder { return &PolyMeshBuilder{} }

func computeVertexHash(x, y, z int32) int32 {
	const h1, h2, h3 = uint32(0x8da6b343), uint32(0xd8163841), uint32(0xcb1ab31f)
	n := int32(h1*uint32(x) + h2*uint32(y) + h3*uint32(z))
	n &= vertexBucketCount - 1
	if n < 0 {
		n += vertexBucketCount
	}
	return n
}

// addVertex returns the index of (x, y, z) in verts, adding it (with
// +/-2 y tolerance dedup, matching the voxelizer's own climb slack) if
// it isn't already present.
func addVertex(x, y, z uint16, verts []uint16, firstVert, nextVert []int32, nv *int32) int32 {
	bucket := computeVertexHash(int32(x), 0, int32(z))
	i := firstVert[bucket]
	for i != -1 {
		v := verts[i*3:]
		if v[0] == x && (iAbs(int32(v[1])-int32(y)) <= 2) && v[2] == z {
			return i
		}
		i = nextVert[i]
	}

	i = *nv
	*nv++
	verts[i*3] = x
	verts[i*3+1] = y
	verts[i*3+2] = z
	nextVert[i] = firstVert[bucket]
	firstVert[bucket] = i
	return i
}

// earFlag marks an ear-clip candidate index in triangulate's indices
// array; indexVertex masks it back off. Written as the int32 bit
// pattern of 1<<31 rather than the literal 0x80000000, which overflows
// int32's representable range as a signed constant.
const earFlag int32 = -1 << 31
const indexMask int32 = 0x0fffffff

func diagonalie(i, j, n int32, verts []int32, indices []int32) bool {
	d0 := verts[(indices[i]&indexMask)*4:]
	d1 := verts[(indices[j]&indexMask)*4:]

	for k := int32(0); k < n; k++ {
		k1 := nextIdx(k, n)
		if k == i || k1 == i || k == j || k1 == j {
			continue
		}
		p0 := verts[(indices[k]&indexMask)*4:]
		p1 := verts[(indices[k1]&indexMask)*4:]
		if vequal(d0, p0) || vequal(d1, p0) || vequal(d0, p1) || vequal(d1, p1) {
			continue
		}
		if intersect(d0, d1, p0, p1) {
			return false
		}
	}
	return true
}

// diagonal reports whether the diagonal i->j is an internal diagonal of
// the (possibly partially ear-clipped) polygon verts[indices]: it must
// lie inside vertex i's interior cone and cross no other edge.
func diagonal(i, j, n int32, verts []int32, indices []int32) bool {
	pin1 := vertAt(verts, indices, prevIdx(i, n))
	pi := vertAt(verts, indices, i)
	pi1 := vertAt(verts, indices, nextIdx(i, n))
	pj := vertAt(verts, indices, j)

	var inC bool
	if leftOn(pin1, pi, pi1) {
		inC = left(pi, pj, pin1) && left(pj, pi, pi1)
	} else {
		inC = !(leftOn(pi, pj, pi1) && leftOn(pj, pi, pin1))
	}
	return inC && diagonalie(i, j, n, verts, indices)
}

func vertAt(verts []int32, indices []int32, j int32) []int32 {
	return verts[(indices[j]&indexMask)*4:]
}

func diagonalieLoose(i, j, n int32, verts []int32, indices []int32) bool {
	d0 := verts[(indices[i]&indexMask)*4:]
	d1 := verts[(indices[j]&indexMask)*4:]

	for k := int32(0); k < n; k++ {
		k1 := nextIdx(k, n)
		if k == i || k1 == i || k == j || k1 == j {
			continue
		}
		p0 := verts[(indices[k]&indexMask)*4:]
		p1 := verts[(indices[k1]&indexMask)*4:]
		if vequal(d0, p0) || vequal(d1, p0) || vequal(d0, p1) || vequal(d1, p1) {
			continue
		}
		if intersectProp(d0, d1, p0, p1) {
			return false
		}
	}
	return true
}

func inConeLoose(i, n int32, verts []int32, indices []int32, pj []int32) bool {
	pin1 := vertAt(verts, indices, prevIdx(i, n))
	pi := vertAt(verts, indices, i)
	pi1 := vertAt(verts, indices, nextIdx(i, n))
	if leftOn(pin1, pi, pi1) {
		return leftOn(pi, pj, pin1) && leftOn(pj, pi, pi1)
	}
	return !(leftOn(pi, pj, pi1) && leftOn(pj, pi, pin1))
}

func diagonalLoose(i, j, n int32, verts []int32, indices []int32) bool {
	return inConeLoose(i, n, verts, indices, vertAt(verts, indices, j)) && diagonalieLoose(i, j, n, verts, indices)
}

// triangulate ear-clips the simple polygon verts[indices] into triangles
// appended to tris, falling back to the "loose" diagonal tests (which
// tolerate collinear near-misses) if a strict ear can't be found, the
// way degenerate contour output sometimes requires.
func triangulate(n int32, verts []int32, indices []int32, tris *[]int32) int32 {
	ntris := int32(0)

	for i := int32(0); i < n; i++ {
		i1 := nextIdx(i, n)
		i2 := nextIdx(i1, n)
		if diagonal(i, i2, n, verts, indices) {
			indices[i1] |= earFlag
		}
	}

	for n > 3 {
		minLen := int32(-1)
		mini := int32(-1)
		for i := int32(0); i < n; i++ {
			i1 := nextIdx(i, n)
			if indices[i1]&earFlag != 0 {
				p0 := vertAt(verts, indices, i)
				p2 := vertAt(verts, indices, nextIdx(i1, n))
				dx := p2[0] - p0[0]
				dz := p2[2] - p0[2]
				length := dx*dx + dz*dz
				if minLen < 0 || length < minLen {
					minLen = length
					mini = i
				}
			}
		}

		if mini == -1 {
			minLen = -1
			for i := int32(0); i < n; i++ {
				i1 := nextIdx(i, n)
				i2 := nextIdx(i1, n)
				if diagonalLoose(i, i2, n, verts, indices) {
					p0 := vertAt(verts, indices, i)
					p2 := vertAt(verts, indices, nextIdx(i2, n))
					dx := p2[0] - p0[0]
					dz := p2[2] - p0[2]
					length := dx*dx + dz*dz
					if minLen < 0 || length < minLen {
						minLen = length
						mini = i
					}
				}
			}
			if mini == -1 {
				return -ntris
			}
		}

		i := mini
		i1 := nextIdx(i, n)
		i2 := nextIdx(i1, n)

		*tris = append(*tris, indices[i]&indexMask, indices[i1]&indexMask, indices[i2]&indexMask)
		ntris++

		// Remove vertex i1 from the polygon and re-check its neighbours'
		// ear status.
		n--
		for k := i1; k < n; k++ {
			indices[k] = indices[k+1]
		}
		if i1 >= n {
			i1 = 0
		}
		i = prevIdx(i1, n)

		if diagonal(prevIdx(i, n), i1, n, verts, indices) {
			indices[i] |= earFlag
		} else {
			indices[i] &^= earFlag
		}
		if diagonal(i, nextIdx(i1, n), n, verts, indices) {
			indices[i1] |= earFlag
		} else {
			indices[i1] &^= earFlag
		}
	}

	*tris = append(*tris, indices[0]&indexMask, indices[1]&indexMask, indices[2]&indexMask)
	ntris++
	return ntris
}

func countPolyVerts(p []uint16, nvp int32) int32 {
	for i := int32(0); i < nvp; i++ {
		if p[i] == meshNullIdx {
			return i
		}
	}
	return nvp
}

// getPolyMergeValue returns the squared length of the edge shared by
// polygons pa and pb (found via the edge hash rather than a direct
// all-pairs scan) if merging them would still yield a convex polygon of
// at most nvp vertices, or -1 if they can't merge.
func getPolyMergeValue(pa, pb []uint16, verts []uint16, ea, eb int32, nvp int32) (value, eaOut, ebOut int32) {
	na := countPolyVerts(pa, nvp)
	nb := countPolyVerts(pb, nvp)
	if na+nb-2 > nvp {
		return -1, 0, 0
	}

	va := pa[ea]
	vb := pa[(ea+1)%na]
	if va != pb[(eb+1)%nb] || vb != pb[eb] {
		return -1, 0, 0
	}

	vapre := pa[(ea+na-1)%na]
	vacur := va
	vbcur := vb
	vbnext := pb[(eb+2)%nb]

	if !uleftU16(verts, vapre, vacur, vbnext) {
		return -1, 0, 0
	}
	vbpre := pb[(eb+nb-1)%nb]
	vanext := pa[(ea+2)%na]
	if !uleftU16(verts, vbpre, vbcur, vanext) {
		return -1, 0, 0
	}

	dx := int32(verts[va*3]) - int32(verts[vb*3])
	dz := int32(verts[va*3+2]) - int32(verts[vb*3+2])
	return dx*dx + dz*dz, ea, eb
}

func uleftU16(verts []uint16, a, b, c uint16) bool {
	av := []int32{int32(verts[a*3]), 0, int32(verts[a*3+2])}
	bv := []int32{int32(verts[b*3]), 0, int32(verts[b*3+2])}
	cv := []int32{int32(verts[c*3]), 0, int32(verts[c*3+2])}
	return (bv[0]-av[0])*(cv[2]-av[2])-(cv[0]-av[0])*(bv[2]-av[2]) < 0
}

func mergePolyVerts(pa, pb []uint16, ea, eb int32, tmp []uint16, nvp int32) {
	na := countPolyVerts(pa, nvp)
	nb := countPolyVerts(pb, nvp)

	for i := range tmp {
		tmp[i] = meshNullIdx
	}
	n := int32(0)
	for i := int32(0); i < na-1; i++ {
		tmp[n] = pa[(ea+1+i)%na]
		n++
	}
	for i := int32(0); i < nb-1; i++ {
		tmp[n] = pb[(eb+1+i)%nb]
		n++
	}
	copy(pa[:nvp], tmp[:nvp])
}

// buildMeshAdjacency populates the neighbour half of every polygon's
// entry in polys using an edgeHash instead of the naive O(polyCount^2)
// shared-edge scan: each polygon's edges are inserted once, and each
// edge's adjacency is resolved with one hash lookup for its reverse.
func buildMeshAdjacency(polys []uint16, npolys int32, nvp int32) {
	maxEdgeCount := npolys * nvp
	eh := newEdgeHash(int(maxEdgeCount))

	for i := int32(0); i < npolys; i++ {
		p := polys[i*nvp*2:]
		n := countPolyVerts(p, nvp)
		for j := int32(0); j < n; j++ {
			v0 := int32(p[j])
			v1 := int32(p[(j+1)%n])
			eh.insert(v0, v1, i, j)
		}
	}

	for i := int32(0); i < npolys; i++ {
		p := polys[i*nvp*2:]
		n := countPolyVerts(p, nvp)
		for j := int32(0); j < n; j++ {
			v0 := int32(p[j])
			v1 := int32(p[(j+1)%n])
			opoly, oedge := eh.findMatch(v0, v1)
			if opoly != -1 {
				p[nvp+j] = uint16(opoly)
				op := polys[opoly*nvp*2:]
				op[nvp+oedge] = uint16(i)
			} else {
				p[nvp+j] = meshNullIdx
			}
		}
	}
}

// canRemoveVertex reports whether vertex rem can be removed from mesh:
// it counts the edges that would remain in the polygons touching rem
// once rem and its two edges in each are gone, and requires more than
// two. It does not look at nvp, and does not check how many of the
// edges around rem lie on the mesh boundary.
func canRemoveVertex(ctx *BuildContext, mesh *PolyMesh, rem uint16) bool {
	nvp := mesh.Nvp
	numRemainingEdges := int32(0)

	for i := int32(0); i < mesh.NPolys; i++ {
		p := mesh.Polys[i*nvp*2:]
		nv := countPolyVerts(p, nvp)
		numRemoved := int32(0)
		numVerts := int32(0)
		for j := int32(0); j < nv; j++ {
			if p[j] == rem {
				numRemoved++
			}
			numVerts++
		}
		if numRemoved > 0 {
			numRemainingEdges += numVerts - numRemoved - 1
		}
	}
	return numRemainingEdges > 2
}

// removeVertex deletes vertex rem from mesh, shifting higher indices
// down and re-triangulating the single hole left by the polygons that
// touched it, then merges the new triangles with each other (not with
// the mesh's other polygons) using the same hashed merge search
// buildPolyMesh uses, and appends the result.
func removeVertex(ctx *BuildContext, mesh *PolyMesh, rem uint16, maxTris int32) bool {
	nvp := mesh.Nvp

	var edges []int32 // (v0, v1, leftRegOrArea?, unused) tuples forming the hole boundary
	var hole []int32
	var hreg []int32
	var harea []int32

	i := int32(0)
	for i < mesh.NPolys {
		p := mesh.Polys[i*nvp*2:]
		nv := countPolyVerts(p, nvp)
		hasRem := false
		for j := int32(0); j < nv; j++ {
			if p[j] == uint16(rem) {
				hasRem = true
			}
		}
		if hasRem {
			for j := int32(0); j < nv; j++ {
				if p[j] != uint16(rem) {
					k := (j + nv - 1) % nv
					if p[k] != uint16(rem) {
						edges = append(edges, int32(p[k]), int32(p[j]), int32(mesh.Regs[i]), int32(mesh.Areas[i]))
					}
				}
			}
			last := mesh.NPolys - 1
			if i != last {
				copy(mesh.Polys[i*nvp*2:i*nvp*2+nvp*2], mesh.Polys[last*nvp*2:last*nvp*2+nvp*2])
				mesh.Regs[i] = mesh.Regs[last]
				mesh.Areas[i] = mesh.Areas[last]
			}
			mesh.NPolys--
			continue
		}
		i++
	}

	for i := int32(rem); i < mesh.NVerts-1; i++ {
		mesh.Verts[i*3] = mesh.Verts[(i+1)*3]
		mesh.Verts[i*3+1] = mesh.Verts[(i+1)*3+1]
		mesh.Verts[i*3+2] = mesh.Verts[(i+1)*3+2]
	}
	mesh.NVerts--
	for i := range edges {
		if edges[i] > int32(rem) {
			edges[i]--
		}
	}
	for i := int32(0); i < mesh.NPolys; i++ {
		p := mesh.Polys[i*nvp*2:]
		nv := countPolyVerts(p, nvp)
		for j := int32(0); j < nv; j++ {
			if p[j] > rem {
				p[j]--
			}
		}
	}
	if len(edges) == 0 {
		return true
	}

	// Walk the open edge list into an ordered hole boundary, appending to
	// the end or prepending to the start as each segment matches.
	hole = append(hole, edges[0])
	hreg = append(hreg, edges[2])
	harea = append(harea, edges[3])
	for len(edges) > 0 {
		match := false
		for i := 0; i < len(edges); i += 4 {
			ea := edges[i]
			eb := edges[i+1]
			r := edges[i+2]
			a := edges[i+3]
			switch {
			case hole[0] == eb:
				hole = append([]int32{ea}, hole...)
				hreg = append([]int32{r}, hreg...)
				harea = append([]int32{a}, harea...)
			case hole[len(hole)-1] == ea:
				hole = append(hole, eb)
				hreg = append(hreg, r)
				harea = append(harea, a)
			default:
				continue
			}
			edges = append(edges[:i], edges[i+4:]...)
			match = true
			break
		}
		if !match {
			break
		}
	}
	if len(hole) > 0 && hole[len(hole)-1] == hole[0] {
		hole = hole[:len(hole)-1]
		hreg = hreg[:len(hreg)-1]
		harea = harea[:len(harea)-1]
	}

	nhole := int32(len(hole))
	if nhole < 3 {
		return true
	}

	tverts := make([]int32, nhole*4)
	tpoly := make([]int32, nhole)
	for i := int32(0); i < nhole; i++ {
		pi := hole[i]
		tverts[i*4] = int32(mesh.Verts[pi*3])
		tverts[i*4+1] = int32(mesh.Verts[pi*3+1])
		tverts[i*4+2] = int32(mesh.Verts[pi*3+2])
		tpoly[i] = i
	}

	var tris []int32
	ntris := triangulate(nhole, tverts, tpoly, &tris)
	if ntris < 0 {
		ctx.Warningf("removeVertex: triangulation of boundary hole failed")
		ntris = -ntris
	}

	var newPolys []uint16
	var newRegs []uint16
	var newAreas []uint8

	for i := int32(0); i < ntris; i++ {
		t := tris[i*3 : i*3+3]
		if t[0] != t[1] && t[0] != t[2] && t[1] != t[2] {
			poly := make([]uint16, nvp*2)
			for k := range poly {
				poly[k] = meshNullIdx
			}
			poly[0] = uint16(hole[t[0]])
			poly[1] = uint16(hole[t[1]])
			poly[2] = uint16(hole[t[2]])
			newPolys = append(newPolys, poly...)
			// A hole-fill triangle whose three source edges came from
			// more than one region is tagged multipleRegs rather than
			// picked arbitrarily.
			if hreg[t[0]] != hreg[t[1]] || hreg[t[1]] != hreg[t[2]] {
				newRegs = append(newRegs, multipleRegs)
			} else {
				newRegs = append(newRegs, uint16(hreg[t[0]]))
			}
			newAreas = append(newAreas, uint8(harea[t[0]]))
		}
	}
	if len(newPolys) == 0 {
		return true
	}

	numNew := int32(len(newPolys)) / (nvp * 2)

	// Merge the freshly triangulated pieces using the same hashed merge
	// search the top-level builder uses, repeating until nothing more
	// can combine.
	mergeAvailable := true
	for mergeAvailable {
		mergeAvailable = false
		eh := newEdgeHash(int(numNew * nvp))
		for i := int32(0); i < numNew; i++ {
			p := newPolys[i*nvp*2:]
			n := countPolyVerts(p, nvp)
			for j := int32(0); j < n; j++ {
				eh.insert(int32(p[j]), int32(p[(j+1)%n]), i, j)
			}
		}

		bestMergeVal := int32(-1)
		var bestPa, bestPb, bestEa, bestEb int32 = -1, -1, 0, 0

		for i := int32(0); i < numNew; i++ {
			pa := newPolys[i*nvp*2:]
			na := countPolyVerts(pa, nvp)
			for j := int32(0); j < na; j++ {
				opoly, oedge := eh.findMatch(int32(pa[j]), int32(pa[(j+1)%na]))
				if opoly == -1 || opoly <= i {
					continue
				}
				pb := newPolys[opoly*nvp*2:]
				v, ea, eb := getPolyMergeValue(pa, pb, mesh.Verts, j, oedge, nvp)
				if v > bestMergeVal {
					bestMergeVal = v
					bestPa, bestPb = i, opoly
					bestEa, bestEb = ea, eb
				}
			}
		}

		if bestPa != -1 {
			pa := newPolys[bestPa*nvp*2:]
			pb := newPolys[bestPb*nvp*2:]
			tmp := make([]uint16, nvp)
			mergePolyVerts(pa, pb, bestEa, bestEb, tmp, nvp)
			if newRegs[bestPa] != newRegs[bestPb] {
				newRegs[bestPa] = multipleRegs
			}
			last := numNew - 1
			if bestPb != last {
				copy(newPolys[bestPb*nvp*2:bestPb*nvp*2+nvp*2], newPolys[last*nvp*2:last*nvp*2+nvp*2])
				newRegs[bestPb] = newRegs[last]
				newAreas[bestPb] = newAreas[last]
			}
			newPolys = newPolys[:last*nvp*2]
			newRegs = newRegs[:last]
			newAreas = newAreas[:last]
			numNew--
			mergeAvailable = true
		}
	}

	for i := int32(0); i < numNew; i++ {
		if mesh.NPolys >= mesh.MaxPolys {
			break
		}
		p := mesh.Polys[mesh.NPolys*nvp*2:]
		for k := range p[:nvp*2] {
			p[k] = meshNullIdx
		}
		copy(p[:nvp], newPolys[i*nvp*2:i*nvp*2+nvp])
		mesh.Regs[mesh.NPolys] = newRegs[i]
		mesh.Areas[mesh.NPolys] = newAreas[i]
		mesh.NPolys++
	}
	return true
}

// BuildPolyMesh triangulates every contour in cset, merges adjacent
// triangles into convex polygons of up to maxVertsPerPoly sides
// (preferring the longest shared edge, found via the hashed edge index
// rather than an all-pairs scan), deduplicates vertices shared across
// contours, and tags border-touching edges as portals.
func (pb *PolyMeshBuilder) BuildPolyMesh(ctx *BuildContext, cset *ContourSet, maxVertsPerPoly int32) (*PolyMesh, error) {
	assert.True(ctx != nil, "ctx should not be nil")
	ctx.StartTimer(TimerBuildPolyMesh)
	defer ctx.StopTimer(TimerBuildPolyMesh)

	nvp := maxVertsPerPoly

	maxVertices := int32(0)
	maxTris := int32(0)
	maxVertsPerCont := int32(0)
	for i := range cset.Conts {
		n := cset.Conts[i].NVerts
		if n < 3 {
			continue
		}
		maxVertices += n
		maxTris += n - 2
		if n > maxVertsPerCont {
			maxVertsPerCont = n
		}
	}
	if maxVertices >= 0xfffe {
		return nil, errTooManyVerts
	}

	mesh := &PolyMesh{
		Nvp:      nvp,
		MaxPolys: maxTris,
		BMin:     cset.BMin, BMax: cset.BMax,
		Cs: cset.Cs, Ch: cset.Ch,
		BorderSize: cset.BorderSize,
	}
	mesh.Verts = make([]uint16, maxVertices*3)
	mesh.Polys = make([]uint16, maxTris*nvp*2)
	for i := range mesh.Polys {
		mesh.Polys[i] = meshNullIdx
	}
	mesh.Regs = make([]uint16, maxTris)
	mesh.Areas = make([]uint8, maxTris)

	firstVert := make([]int32, vertexBucketCount)
	for i := range firstVert {
		firstVert[i] = -1
	}
	nextVert := make([]int32, maxVertices)
	indices := make([]int32, maxVertsPerCont)
	tris := make([]int32, 0, maxVertsPerCont*3)
	polys := make([]uint16, (maxVertsPerCont+1)*nvp)

	// edgeVertex marks mesh vertices that came from a contour vertex sitting
	// on a region-merge seam rather than a real corner; such vertices are
	// artifacts of per-region contour tracing and are removed below once
	// the full mesh (and so every polygon that might still need one) exists.
	edgeVertex := make([]bool, maxVertices)

	for ci := range cset.Conts {
		cont := &cset.Conts[ci]
		if cont.NVerts < 3 {
			continue
		}

		for i := int32(0); i < cont.NVerts; i++ {
			indices[i] = i
		}

		tris = tris[:0]
		ntris := triangulate(cont.NVerts, cont.Verts, indices[:cont.NVerts], &tris)
		if ntris <= 0 {
			ctx.Warningf("BuildPolyMesh: bad triangulation for contour region %d", cont.Reg)
			ntris = -ntris
		}

		for i := range polys {
			polys[i] = meshNullIdx
		}
		npolys := int32(0)
		for i := int32(0); i < ntris; i++ {
			t := tris[i*3 : i*3+3]
			if t[0] != t[1] && t[0] != t[2] && t[1] != t[2] {
				p := polys[npolys*nvp:]
				p[0] = uint16(t[0])
				p[1] = uint16(t[1])
				p[2] = uint16(t[2])
				npolys++
			}
		}
		if npolys == 0 {
			continue
		}

		if nvp > 3 {
			for {
				eh := newEdgeHash(int(npolys * nvp))
				for i := int32(0); i < npolys; i++ {
					p := polys[i*nvp:]
					n := countPolyVerts(p, nvp)
					for j := int32(0); j < n; j++ {
						eh.insert(int32(p[j]), int32(p[(j+1)%n]), i, j)
					}
				}

				bestMergeVal := int32(-1)
				var bestPa, bestPb, bestEa, bestEb int32 = -1, -1, 0, 0

				for i := int32(0); i < npolys; i++ {
					pa := polys[i*nvp:]
					na := countPolyVerts(pa, nvp)
					for j := int32(0); j < na; j++ {
						opoly, oedge := eh.findMatch(int32(pa[j]), int32(pa[(j+1)%na]))
						if opoly == -1 || opoly <= i {
							continue
						}
						pb := polys[opoly*nvp:]
						v, ea, eb := getPolyMergeValue(pa, pb, contVertsAsU16(cont), j, oedge, nvp)
						if v > bestMergeVal {
							bestMergeVal = v
							bestPa, bestPb = i, opoly
							bestEa, bestEb = ea, eb
						}
					}
				}

				if bestPa == -1 {
					break
				}
				pa := polys[bestPa*nvp:]
				pbuf := polys[bestPb*nvp:]
				tmp := make([]uint16, nvp)
				mergePolyVerts(pa, pbuf, bestEa, bestEb, tmp, nvp)
				last := npolys - 1
				if bestPb != last {
					copy(polys[bestPb*nvp:bestPb*nvp+nvp], polys[last*nvp:last*nvp+nvp])
				}
				npolys--
			}
		}

		for i := int32(0); i < npolys; i++ {
			if mesh.NPolys >= mesh.MaxPolys {
				return nil, errTooManyPolys
			}
			dst := mesh.Polys[mesh.NPolys*nvp*2:]
			src := polys[i*nvp:]
			for j := int32(0); j < nvp; j++ {
				if src[j] == meshNullIdx {
					break
				}
				cv := cont.Verts[src[j]*4:]
				x, y, z := uint16(cv[0]), uint16(cv[1]), uint16(cv[2])
				vi := uint16(addVertex(x, y, z, mesh.Verts, firstVert, nextVert, &mesh.NVerts))
				dst[j] = vi
				if cv[3]&int32(borderVertex) != 0 {
					edgeVertex[vi] = true
				}
			}
			mesh.Regs[mesh.NPolys] = cont.Reg
			mesh.Areas[mesh.NPolys] = cont.Area
			mesh.NPolys++
		}
	}

	for i := int32(0); i < mesh.NVerts; i++ {
		if !edgeVertex[i] {
			continue
		}
		if !canRemoveVertex(ctx, mesh, uint16(i)) {
			continue
		}
		if !removeVertex(ctx, mesh, uint16(i), maxTris) {
			return nil, fmt.Errorf("navgen: removing seam vertex %d: re-triangulation failed", i)
		}
		// removeVertex shifts every vertex index above i down by one,
		// so edgeVertex must shift the same way and i must be revisited.
		copy(edgeVertex[i:], edgeVertex[i+1:])
		i--
	}

	buildMeshAdjacency(mesh.Polys, mesh.NPolys, nvp)
	tagPortalEdges(mesh, cset.Width, cset.Height, cset.BorderSize)

	return mesh, nil
}

// contVertsAsU16 exposes a contour's packed int32 vertex records through
// getPolyMergeValue's uint16-indexed signature; contour coordinates are
// always non-negative so the narrowing is lossless.
func contVertsAsU16(cont *Contour) []uint16 {
	out := make([]uint16, cont.NVerts*3)
	for i := int32(0); i < cont.NVerts; i++ {
		out[i*3] = uint16(cont.Verts[i*4])
		out[i*3+1] = uint16(cont.Verts[i*4+1])
		out[i*3+2] = uint16(cont.Verts[i*4+2])
	}
	return out
}

// tagPortalEdges marks every polygon edge that runs along the tile's
// outer boundary as a portal, encoding which of the four sides it runs
// along in the low bits so a tile stitcher can match it to its neighbour
// tile's corresponding edge.
func tagPortalEdges(mesh *PolyMesh, w, h, borderSize int32) {
	if borderSize <= 0 {
		return
	}
	nvp := mesh.Nvp
	for i := int32(0); i < mesh.NPolys; i++ {
		p := mesh.Polys[i*nvp*2:]
		n := countPolyVerts(p, nvp)
		for j := int32(0); j < n; j++ {
			if p[nvp+j] != meshNullIdx {
				continue
			}
			va := p[j]
			vb := p[(j+1)%n]
			ax, az := int32(mesh.Verts[va*3]), int32(mesh.Verts[va*3+2])
			bx, bz := int32(mesh.Verts[vb*3]), int32(mesh.Verts[vb*3+2])

			switch {
			case ax == 0 && bx == 0:
				p[nvp+j] = portalFlag | 0
			case az == h && bz == h:
				p[nvp+j] = portalFlag | 1
			case ax == w && bx == w:
				p[nvp+j] = portalFlag | 2
			case az == 0 && bz == 0:
				p[nvp+j] = portalFlag | 3
			}
		}
	}
}
