package navgen

import (
	"fmt"
	"sort"

	"github.com/aurelien-rainone/assertgo"
)

// Contour is one traced, simplified region (or area) boundary. Verts
// holds the final polygon as packed (x, y, z, regflags) records; RawVerts
// holds the untouched trace before simplification, kept for diagnostics.
type Contour struct {
	Verts    []int32
	NVerts   int32
	RawVerts []int32
	NRawVerts int32
	Reg      uint16
	Area     uint8
}

// ContourSet is the output of ContourBuilder: one Contour per surviving
// region, in the same coordinate space as the CompactHeightfield it was
// traced from.
type ContourSet struct {
	Conts                []Contour
	BMin, BMax           [3]float32
	Cs, Ch               float32
	Width, Height        int32
	BorderSize           int32
	MaxError             float32
}

// ContourBuilder traces and simplifies region boundaries out of a
// CompactHeightfield that has already been partitioned into regions.
type ContourBuilder struct {
	pool *contourScratchPool
}

// NewContourBuilder returns a ready-to-use ContourBuilder with its own
// scratch-buffer pool.
func NewContourBuilder() *ContourBuilder {
	return &ContourBuilder{pool: newContourScratchPool()}
}

func cornerHeight(x, y, i, dir int32, chf *CompactHeightfield, isBorderVertex *bool) int32 {
	s := &chf.Spans[i]
	ch := int32(s.Y)
	dirp := (dir + 1) & 0x3

	var regs [4]uint32
	regs[0] = uint32(s.Reg) | uint32(chf.Areas[i])<<16

	if GetCon(s, dir) != notConnected {
		ax := x + GetDirOffsetX(dir)
		ay := y + GetDirOffsetY(dir)
		ai := int32(chf.Cells[ax+ay*chf.Width].Index) + GetCon(s, dir)
		as := &chf.Spans[ai]
		ch = iMax(ch, int32(as.Y))
		regs[1] = uint32(as.Reg) | uint32(chf.Areas[ai])<<16

		if GetCon(as, dirp) != notConnected {
			ax2 := ax + GetDirOffsetX(dirp)
			ay2 := ay + GetDirOffsetY(dirp)
			ai2 := int32(chf.Cells[ax2+ay2*chf.Width].Index) + GetCon(as, dirp)
			as2 := &chf.Spans[ai2]
			ch = iMax(ch, int32(as2.Y))
			regs[2] = uint32(as2.Reg) | uint32(chf.Areas[ai2])<<16
		}
	}
	if GetCon(s, dirp) != notConnected {
		ax := x + GetDirOffsetX(dirp)
		ay := y + GetDirOffsetY(dirp)
		ai := int32(chf.Cells[ax+ay*chf.Width].Index) + GetCon(s, dirp)
		as := &chf.Spans[ai]
		ch = iMax(ch, int32(as.Y))
		regs[3] = uint32(as.Reg) | uint32(chf.Areas[ai])<<16

		if GetCon(as, dir) != notConnected {
			ax2 := ax + GetDirOffsetX(dir)
			ay2 := ay + GetDirOffsetY(dir)
			ai2 := int32(chf.Cells[ax2+ay2*chf.Width].Index) + GetCon(as, dir)
			as2 := &chf.Spans[ai2]
			ch = iMax(ch, int32(as2.Y))
			regs[2] = uint32(as2.Reg) | uint32(chf.Areas[ai2])<<16
		}
	}

	// The vertex is a border vertex if there are two same exterior cells in a
	// row, followed by two interior cells, none of them out of bounds.
	for j := 0; j < 4; j++ {
		a, b, c, d := j, (j+1)&0x3, (j+2)&0x3, (j+3)&0x3
		twoSameExts := (regs[a]&regs[b]&uint32(borderReg)) != 0 && regs[a] == regs[b]
		twoInts := ((regs[c] | regs[d]) & uint32(borderReg)) == 0
		intsSameArea := (uint32(regs[c]) >> 16) == (uint32(regs[d]) >> 16)
		noZeros := regs[a] != 0 && regs[b] != 0 && regs[c] != 0 && regs[d] != 0
		if twoSameExts && twoInts && intsSameArea && noZeros {
			*isBorderVertex = true
			break
		}
	}
	return ch
}

func walkContourTrace(x, y, i int32, chf *CompactHeightfield, flags []uint8, points *[]int32) {
	dir := int32(0)
	for (flags[i]>>uint(dir))&1 == 0 {
		dir++
	}
	startDir, starti := dir, i

	s := &chf.Spans[i]
	iter := 0
	for {
		iter++
		if (flags[i]>>uint(dir))&1 != 0 {
			isBorderVertex := false
			isAreaBorder := false
			px, py := x, int32(s.Y)
			pz := y
			switch dir {
			case 0:
				pz++
			case 1:
				px++
				pz++
			case 2:
				px++
			}
			var reg int32
			ss := &chf.Spans[i]
			if GetCon(ss, dir) != notConnected {
				ax := x + GetDirOffsetX(dir)
				ay := y + GetDirOffsetY(dir)
				ai := int32(chf.Cells[ax+ay*chf.Width].Index) + GetCon(ss, dir)
				reg = int32(chf.Spans[ai].Reg)
				if chf.Areas[i] != chf.Areas[ai] {
					isAreaBorder = true
				}
			}
			py = cornerHeight(x, y, i, dir, chf, &isBorderVertex)
			if isBorderVertex {
				reg |= borderVertex
			}
			if isAreaBorder {
				reg |= areaBorder
			}
			*points = append(*points, px, py, pz, reg)

			flags[i] &^= 1 << uint(dir)
			dir = (dir + 1) & 0x3
		} else {
			ni := int32(-1)
			nx := x + GetDirOffsetX(dir)
			ny := y + GetDirOffsetY(dir)
			if GetCon(s, dir) != notConnected {
				ni = int32(chf.Cells[nx+ny*chf.Width].Index) + GetCon(s, dir)
			}
			x, y, i = nx, ny, ni
			s = &chf.Spans[i]
			dir = (dir + 3) & 0x3
		}

		if starti == i && startDir == dir {
			break
		}
		if iter > 40000 {
			break
		}
	}
}

func removeDegenerateSegments(simplified *[]int32) {
	n := int32(len(*simplified)) / 4
	for i := int32(0); i < n; {
		ni := nextIdx(i, n)
		if (*simplified)[i*4] == (*simplified)[ni*4] && (*simplified)[i*4+2] == (*simplified)[ni*4+2] {
			*simplified = append((*simplified)[:ni*4], (*simplified)[ni*4+4:]...)
			n--
		} else {
			i++
		}
	}
}

func simplifyContour(points []int32, simplified *[]int32, maxError float32, maxEdgeLen int32, buildFlags int32) {
	hasConnections := false
	for i := 0; i < len(points); i += 4 {
		if points[i+3]&contourRegMask != 0 {
			hasConnections = true
			break
		}
	}

	if hasConnections {
		n := int32(len(points)) / 4
		for i := int32(0); i < n; i++ {
			ii := nextIdx(i, n)
			differentRegs := (points[i*4+3] & contourRegMask) != (points[ii*4+3] & contourRegMask)
			areaBorders := (points[i*4+3] & int32(areaBorder)) != (points[ii*4+3] & int32(areaBorder))
			if differentRegs || areaBorders {
				*simplified = append(*simplified, points[i*4], points[i*4+1], points[i*4+2], i)
			}
		}
	}

	if len(*simplified) == 0 {
		llx, lly, llz := points[0], points[1], points[2]
		lli := int32(0)
		urx, ury, urz := points[0], points[1], points[2]
		uri := int32(0)
		n := int32(len(points)) / 4
		for i := int32(0); i < n; i++ {
			x, y, z := points[i*4], points[i*4+1], points[i*4+2]
			if x < llx || (x == llx && z < llz) {
				llx, lly, llz, lli = x, y, z, i
			}
			if x > urx || (x == urx && z > urz) {
				urx, ury, urz, uri = x, y, z, i
			}
		}
		*simplified = append(*simplified, llx, lly, llz, lli)
		*simplified = append(*simplified, urx, ury, urz, uri)
	}

	pn := int32(len(points)) / 4
	for i := 0; i < len(*simplified)/4; {
		ii := (i + 1) % (len(*simplified) / 4)

		ax, az := (*simplified)[i*4], (*simplified)[i*4+2]
		ai := (*simplified)[i*4+3]

		bx, bz := (*simplified)[ii*4], (*simplified)[ii*4+2]
		bi := (*simplified)[ii*4+3]

		maxd := float32(-1)
		maxi := int32(-1)

		// Walk the raw points between a and b in lexicographic order of the
		// endpoints, so a shared edge is simplified identically from both sides.
		ci, cinc, endi := nextIdx(ai, pn), int32(1), bi
		if !(bx > ax || (bx == ax && bz > az)) {
			ci, cinc, endi = (bi+pn-1)%pn, pn-1, ai
			ax, bx = bx, ax
			az, bz = bz, az
		}
		for ; ci != endi; ci = (ci + cinc) % pn {
			cx, cz := points[ci*4], points[ci*4+2]
			d := distancePtSeg(cx, cz, ax, az, bx, bz)
			if d > maxd {
				maxd = d
				maxi = ci
			}
		}

		if maxi != -1 && maxd > maxError*maxError {
			n := len(*simplified) / 4
			*simplified = append(*simplified, 0, 0, 0, 0)
			copy((*simplified)[(i+2)*4:], (*simplified)[(i+1)*4:n*4])
			(*simplified)[(i+1)*4] = points[maxi*4]
			(*simplified)[(i+1)*4+1] = points[maxi*4+1]
			(*simplified)[(i+1)*4+2] = points[maxi*4+2]
			(*simplified)[(i+1)*4+3] = maxi
		} else {
			i++
		}
	}

	if maxEdgeLen > 0 {
		for i := 0; i < len(*simplified)/4; {
			ii := (i + 1) % (len(*simplified) / 4)
			ax, az := (*simplified)[i*4], (*simplified)[i*4+2]
			ai := (*simplified)[i*4+3]
			bx, bz := (*simplified)[ii*4], (*simplified)[ii*4+2]
			bi := (*simplified)[ii*4+3]

			maxi := int32(-1)
			ci := nextIdx(ai, pn)
			tess := (buildFlags&ContourTessWallEdges != 0 && points[ci*4+3]&contourRegMask == 0) ||
				(buildFlags&ContourTessAreaEdges != 0 && points[ci*4+3]&areaBorder != 0)
			dx := bx - ax
			dz := bz - az
			if tess && dx*dx+dz*dz > maxEdgeLen*maxEdgeLen {
				n := bi - ai
				if bi <= ai {
					n = bi + pn - ai
				}
				if n > 1 {
					if bx > ax || (bx == ax && bz > az) {
						maxi = (ai + n/2) % pn
					} else {
						maxi = (ai + (n+1)/2) % pn
					}
				}
			}

			if maxi != -1 {
				n := len(*simplified) / 4
				*simplified = append(*simplified, 0, 0, 0, 0)
				copy((*simplified)[(i+2)*4:], (*simplified)[(i+1)*4:n*4])
				(*simplified)[(i+1)*4] = points[maxi*4]
				(*simplified)[(i+1)*4+1] = points[maxi*4+1]
				(*simplified)[(i+1)*4+2] = points[maxi*4+2]
				(*simplified)[(i+1)*4+3] = maxi
			} else {
				i++
			}
		}
	}

	n := len(*simplified) / 4
	for i := 0; i < n; i++ {
		si := (*simplified)[i*4+3]
		x, y, z := points[si*4], points[si*4+1], points[si*4+2]
		var vertexFlags int32
		if points[si*4+3]&int32(borderVertex) != 0 {
			vertexFlags = int32(borderVertex)
		}
		ai := si
		aii := nextIdx(ai, pn)
		r := points[aii*4+3] & (contourRegMask | int32(areaBorder))
		(*simplified)[i*4] = x
		(*simplified)[i*4+1] = y
		(*simplified)[i*4+2] = z
		(*simplified)[i*4+3] = r | vertexFlags
	}
}

func findLeftMostVertex(c *Contour) (minx, minz, leftmost int32) {
	minx, minz, leftmost = c.Verts[0], c.Verts[2], 0
	for i := int32(1); i < c.NVerts; i++ {
		x, z := c.Verts[i*4], c.Verts[i*4+2]
		if x < minx || (x == minx && z < minz) {
			minx, minz, leftmost = x, z, i
		}
	}
	return
}

type contourHole struct {
	contour  *Contour
	minx, minz, leftmost int32
}

type contourRegion struct {
	outline *Contour
	holes   []contourHole
	nholes  int
}

func compareHoles(a, b contourHole) bool {
	if a.minx == b.minx {
		return a.minz < b.minz
	}
	return a.minx < b.minx
}

// potentialDiagonal is one outline-vertex-to-hole-corner bridge candidate,
// ranked by squared XZ distance so the shortest non-crossing bridge wins.
type potentialDiagonal struct {
	vert int32
	dist int32
}

func intersectSegContour(d0, d1 []int32, i, n int32, verts []int32) bool {
	for k := int32(0); k < n; k++ {
		k1 := nextIdx(k, n)
		if i == k || i == k1 {
			continue
		}
		p0 := verts[k*4:]
		p1 := verts[k1*4:]
		if vequal(d0, p0) || vequal(d1, p0) || vequal(d0, p1) || vequal(d1, p1) {
			continue
		}
		if intersect(d0, d1, p0, p1) {
			return true
		}
	}
	return false
}

func mergeContours(ca, cb *Contour, ia, ib int32) {
	maxVerts := ca.NVerts + cb.NVerts + 2
	verts := make([]int32, maxVerts*4)

	var nv int32
	for i := int32(0); i <= ca.NVerts; i++ {
		src := ca.Verts[((ia+i)%ca.NVerts)*4:]
		copy(verts[nv*4:nv*4+4], src[:4])
		nv++
	}
	for i := int32(0); i <= cb.NVerts; i++ {
		src := cb.Verts[((ib+i)%cb.NVerts)*4:]
		copy(verts[nv*4:nv*4+4], src[:4])
		nv++
	}

	ca.Verts = verts[:nv*4]
	ca.NVerts = nv
	cb.Verts = nil
	cb.NVerts = 0
}

// mergeRegionHoles stitches each hole into region's outline. For the
// hole's current candidate corner, every outline vertex whose cone
// (prev, self, next) contains that corner is a potential bridge; those
// candidates are tried shortest-distance-first, accepting the first
// whose diagonal crosses neither the outline nor any remaining hole. If
// every candidate at this corner crosses something, the candidate
// corner rotates to the hole's next vertex and the search repeats.
// Holes are processed leftmost-first so repeated merges can't pick a
// bridge that a later, more-constrained hole needed.
func mergeRegionHoles(ctx *BuildContext, region *contourRegion) {
	sort.Slice(region.holes, func(i, j int) bool {
		return compareHoles(region.holes[i], region.holes[j])
	})

	outline := region.outline
	maxVerts := outline.NVerts
	for i := range region.holes {
		maxVerts += region.holes[i].contour.NVerts
	}
	diags := make([]potentialDiagonal, maxVerts)

	for i := range region.holes {
		hole := region.holes[i].contour
		bestVertex := region.holes[i].leftmost

		index := int32(-1)
		for iter := int32(0); iter < hole.NVerts; iter++ {
			corner := hole.Verts[bestVertex*4:]

			var ndiags int32
			for j := int32(0); j < outline.NVerts; j++ {
				if inCone(j, outline.NVerts, outline.Verts, corner) {
					dx := outline.Verts[j*4] - corner[0]
					dz := outline.Verts[j*4+2] - corner[2]
					diags[ndiags] = potentialDiagonal{vert: j, dist: dx*dx + dz*dz}
					ndiags++
				}
			}
			sort.Slice(diags[:ndiags], func(a, b int) bool { return diags[a].dist < diags[b].dist })

			index = -1
			for j := int32(0); j < ndiags; j++ {
				pt := outline.Verts[diags[j].vert*4:]
				crosses := intersectSegContour(pt, corner, diags[j].vert, outline.NVerts, outline.Verts)
				for k := i; k < len(region.holes) && !crosses; k++ {
					crosses = intersectSegContour(pt, corner, -1, region.holes[k].contour.NVerts, region.holes[k].contour.Verts)
				}
				if !crosses {
					index = diags[j].vert
					break
				}
			}
			if index != -1 {
				break
			}
			bestVertex = nextIdx(bestVertex, hole.NVerts)
		}

		if index == -1 {
			ctx.Warningf("mergeRegionHoles: failed to find merge point for hole")
			continue
		}
		mergeContours(outline, hole, index, bestVertex)
	}
}

// BuildContours traces, simplifies and (where regions split into an
// outline plus nested holes) merges the region boundaries of chf into a
// ContourSet. maxError bounds the simplification distance and
// maxEdgeLen, if non-zero, forces extra tessellation of long straight
// edges; buildFlags is a bitwise-or of ContourTessWallEdges /
// ContourTessAreaEdges.
func (cb *ContourBuilder) BuildContours(ctx *BuildContext, chf *CompactHeightfield, maxError float32, maxEdgeLen int32, buildFlags int32) (*ContourSet, error) {
	assert.True(ctx != nil, "ctx should not be nil")
	ctx.StartTimer(TimerBuildContours)
	defer ctx.StopTimer(TimerBuildContours)

	w, h := chf.Width, chf.Height
	borderSize := chf.BorderSize

	cset := &ContourSet{
		BMin: chf.BMin, BMax: chf.BMax,
		Cs: chf.Cs, Ch: chf.Ch,
		Width: w - borderSize*2, Height: h - borderSize*2,
		BorderSize: borderSize,
		MaxError:   maxError,
	}
	if borderSize > 0 {
		pad := float32(borderSize) * chf.Cs
		cset.BMin[0] += pad
		cset.BMin[2] += pad
		cset.BMax[0] -= pad
		cset.BMax[2] -= pad
	}

	flags := make([]uint8, chf.SpanCount)

	ctx.StartTimer(TimerBuildContoursTrace)
	for y := int32(0); y < h; y++ {
		for x := int32(0); x < w; x++ {
			c := &chf.Cells[x+y*w]
			for i := int32(c.Index); i < int32(c.Index)+int32(c.Count); i++ {
				var res uint8
				s := &chf.Spans[i]
				if s.Reg == 0 || s.Reg&borderReg != 0 {
					flags[i] = 0
					continue
				}
				for dir := int32(0); dir < 4; dir++ {
					var r uint16
					if GetCon(s, dir) != notConnected {
						ax := x + GetDirOffsetX(dir)
						ay := y + GetDirOffsetY(dir)
						ai := int32(chf.Cells[ax+ay*w].Index) + GetCon(s, dir)
						r = chf.Spans[ai].Reg
					}
					if r == s.Reg {
						res |= 1 << uint(dir)
					}
				}
				flags[i] = res ^ 0xf
			}
		}
	}
	ctx.StopTimer(TimerBuildContoursTrace)

	// Rented once and reused (truncated, never reallocated) across every
	// region in this pass; returned to the pool on every exit path below.
	scratch := cb.pool.Rent()
	defer cb.pool.Return(scratch)

	for y := int32(0); y < h; y++ {
		for x := int32(0); x < w; x++ {
			c := &chf.Cells[x+y*w]
			for i := int32(c.Index); i < int32(c.Index)+int32(c.Count); i++ {
				if flags[i] == 0 || flags[i] == 0xf {
					continue
				}
				reg := chf.Spans[i].Reg
				if reg == 0 || reg&borderReg != 0 {
					continue
				}
				area := chf.Areas[i]

				scratch.raw = scratch.raw[:0]
				scratch.simplified = scratch.simplified[:0]

				ctx.StartTimer(TimerBuildContoursTrace)
				walkContourTrace(x, y, i, chf, flags, &scratch.raw)
				ctx.StopTimer(TimerBuildContoursTrace)

				ctx.StartTimer(TimerBuildContoursSimplify)
				simplifyContour(scratch.raw, &scratch.simplified, maxError, maxEdgeLen, buildFlags)
				removeDegenerateSegments(&scratch.simplified)
				ctx.StopTimer(TimerBuildContoursSimplify)

				if len(scratch.simplified)/4 < 3 {
					continue
				}

				cont := Contour{
					Verts:     append([]int32(nil), scratch.simplified...),
					NVerts:    int32(len(scratch.simplified) / 4),
					RawVerts:  append([]int32(nil), scratch.raw...),
					NRawVerts: int32(len(scratch.raw) / 4),
					Reg:       reg,
					Area:      area,
				}
				if borderSize > 0 {
					for j := int32(0); j < cont.NVerts; j++ {
						cont.Verts[j*4] -= borderSize
						cont.Verts[j*4+2] -= borderSize
					}
					for j := int32(0); j < cont.NRawVerts; j++ {
						cont.RawVerts[j*4] -= borderSize
						cont.RawVerts[j*4+2] -= borderSize
					}
				}
				cset.Conts = append(cset.Conts, cont)
			}
		}
	}

	// Merge holes (clockwise-wound contours) into the outline of the
	// region they sit inside, so each region ends up as one polygon.
	regionCount := 0
	for i := range cset.Conts {
		if int(cset.Conts[i].Reg) >= regionCount {
			regionCount = int(cset.Conts[i].Reg) + 1
		}
	}
	regions := make([]contourRegion, regionCount)
	for i := range cset.Conts {
		c := &cset.Conts[i]
		if calcAreaOfPolygon2D(c.Verts, c.NVerts) >= 0 {
			if regions[c.Reg].outline != nil {
				return nil, fmt.Errorf("navgen: region %d has multiple outlines", c.Reg)
			}
			regions[c.Reg].outline = c
		} else {
			minx, minz, leftmost := findLeftMostVertex(c)
			regions[c.Reg].holes = append(regions[c.Reg].holes, contourHole{contour: c, minx: minx, minz: minz, leftmost: leftmost})
		}
	}
	for i := range regions {
		if len(regions[i].holes) == 0 {
			continue
		}
		if regions[i].outline == nil {
			return nil, fmt.Errorf("navgen: region %d has holes but no outline", i)
		}
		mergeRegionHoles(ctx, &regions[i])
	}

	// Drop contours that were merged away (NVerts == 0).
	compact := cset.Conts[:0]
	for i := range cset.Conts {
		if cset.Conts[i].NVerts > 0 {
			compact = append(compact, cset.Conts[i])
		}
	}
	cset.Conts = compact

	return cset, nil
}
