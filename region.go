package navgen

import "github.com/aurelien-rainone/assertgo"

// sweepSpan tracks one in-progress row region during the monotone sweep
// before it has been assigned a final id.
type sweepSpan struct {
	rid uint16 // row-local id
	id  uint16 // final region id
	ns  uint16 // number of samples contributing to nei
	nei uint16 // candidate neighbour region id from the row above
}

// Region accumulates per-region bookkeeping while mergeAndFilterRegions
// walks the heightfield: span count, which regions it borders, and
// which regions it overlaps on the same column (multiple floors).
type Region struct {
	SpanCount        int32
	ID               uint16
	AreaType         uint8
	Remap, Visited   bool
	Overlap          bool
	ConnectsToBorder bool
	Connections      []int32
	Floors           []int32
}

func newRegion(id int) *Region {
	return &Region{ID: uint16(id)}
}

func (reg *Region) removeAdjacentDuplicates() {
	for i := 0; i < len(reg.Connections) && len(reg.Connections) > 1; {
		ni := (i + 1) % len(reg.Connections)
		if reg.Connections[i] == reg.Connections[ni] {
			reg.Connections = append(reg.Connections[:i], reg.Connections[i+1:]...)
		} else {
			i++
		}
	}
}

func (reg *Region) replaceNeighbour(oldID, newID uint16) {
	changed := false
	for i := range reg.Connections {
		if reg.Connections[i] == int32(oldID) {
			reg.Connections[i] = int32(newID)
			changed = true
		}
	}
	for i := range reg.Floors {
		if reg.Floors[i] == int32(oldID) {
			reg.Floors[i] = int32(newID)
		}
	}
	if changed {
		reg.removeAdjacentDuplicates()
	}
}

func (reg *Region) canMergeWithRegion(other *Region) bool {
	if reg.AreaType != other.AreaType {
		return false
	}
	n := 0
	for _, c := range reg.Connections {
		if c == int32(other.ID) {
			n++
		}
	}
	if n > 1 {
		return false
	}
	for _, f := range reg.Floors {
		if f == int32(other.ID) {
			return false
		}
	}
	return true
}

func (reg *Region) addUniqueFloorRegion(n int32) {
	for _, f := range reg.Floors {
		if f == n {
			return
		}
	}
	reg.Floors = append(reg.Floors, n)
}

func mergeRegions(a, b *Region) bool {
	aid, bid := a.ID, b.ID

	acon := append([]int32(nil), a.Connections...)
	bcon := b.Connections

	insa := int32(-1)
	for i, c := range acon {
		if c == int32(bid) {
			insa = int32(i)
			break
		}
	}
	if insa == -1 {
		return false
	}

	insb := int32(-1)
	for i, c := range bcon {
		if c == int32(aid) {
			insb = int32(i)
			break
		}
	}
	if insb == -1 {
		return false
	}

	a.Connections = a.Connections[:0]
	na := int32(len(acon))
	for i := int32(0); i < na-1; i++ {
		a.Connections = append(a.Connections, acon[(insa+1+i)%na])
	}
	nb := int32(len(bcon))
	for i := int32(0); i < nb-1; i++ {
		a.Connections = append(a.Connections, bcon[(insb+1+i)%nb])
	}
	a.removeAdjacentDuplicates()

	for _, f := range b.Floors {
		a.addUniqueFloorRegion(f)
	}
	a.SpanCount += b.SpanCount
	b.SpanCount = 0
	b.Connections = nil
	return true
}

func (reg *Region) isConnectedToBorder() bool {
	for _, c := range reg.Connections {
		if c == 0 {
			return true
		}
	}
	return false
}

func isSolidEdge(chf *CompactHeightfield, srcReg []uint16, x, y, i, dir int32) bool {
	s := &chf.Spans[i]
	var r uint16
	if GetCon(s, dir) != notConnected {
		ax := x + GetDirOffsetX(dir)
		ay := y + GetDirOffsetY(dir)
		ai := int32(chf.Cells[ax+ay*chf.Width].Index) + GetCon(s, dir)
		r = srcReg[ai]
	}
	return r != srcReg[i]
}

// walkContour walks the border of the region containing span i,
// recording the sequence of distinct neighbouring region ids it passes.
func walkContour(x, y, i, dir int32, chf *CompactHeightfield, srcReg []uint16, cont *[]int32) {
	startDir, starti := dir, i

	ss := &chf.Spans[i]
	var curReg uint16
	if GetCon(ss, dir) != notConnected {
		ax := x + GetDirOffsetX(dir)
		ay := y + GetDirOffsetY(dir)
		ai := int32(chf.Cells[ax+ay*chf.Width].Index) + GetCon(ss, dir)
		curReg = srcReg[ai]
	}
	*cont = append(*cont, int32(curReg))

	for iter := int32(1); iter < 39999; iter++ {
		s := &chf.Spans[i]

		if isSolidEdge(chf, srcReg, x, y, i, dir) {
			var r uint16
			if GetCon(s, dir) != notConnected {
				ax := x + GetDirOffsetX(dir)
				ay := y + GetDirOffsetY(dir)
				ai := int32(chf.Cells[ax+ay*chf.Width].Index) + GetCon(s, dir)
				r = srcReg[ai]
			}
			if r != curReg {
				curReg = r
				*cont = append(*cont, int32(curReg))
			}
			dir = (dir + 1) & 0x3 // CW
		} else {
			ni := int32(-1)
			nx := x + GetDirOffsetX(dir)
			ny := y + GetDirOffsetY(dir)
			if GetCon(s, dir) != notConnected {
				ni = int32(chf.Cells[nx+ny*chf.Width].Index) + GetCon(s, dir)
			}
			if ni == -1 {
				return
			}
			x, y, i = nx, ny, ni
			dir = (dir + 3) & 0x3 // CCW
		}
		if starti == i && startDir == dir {
			break
		}
	}

	// Remove adjacent duplicates.
	for j := 0; j < len(*cont); {
		nj := (j + 1) % len(*cont)
		if j != nj && (*cont)[j] == (*cont)[nj] {
			*cont = append((*cont)[:j], (*cont)[j+1:]...)
		} else {
			j++
		}
	}
}

func paintRectRegion(minx, maxx, miny, maxy int32, regID uint16, chf *CompactHeightfield, srcReg []uint16) {
	w := chf.Width
	for y := miny; y < maxy; y++ {
		for x := minx; x < maxx; x++ {
			c := &chf.Cells[x+y*w]
			for i := int32(c.Index); i < int32(c.Index)+int32(c.Count); i++ {
				if chf.Areas[i] != nullArea {
					srcReg[i] = regID
				}
			}
		}
	}
}

// BuildRegionsMonotone partitions the compact heightfield into regions
// using a single top-to-bottom sweep, assigning each row's spans to a
// region by their connection to the row above. It is the default,
// deterministic partitioning strategy: it never produces overlapping
// regions and needs no distance field.
func BuildRegionsMonotone(ctx *BuildContext, chf *CompactHeightfield, borderSize, minRegionArea, mergeRegionArea int32) bool {
	assert.True(ctx != nil, "ctx should not be nil")
	ctx.StartTimer(TimerBuildRegions)
	defer ctx.StopTimer(TimerBuildRegions)

	w, h := chf.Width, chf.Height
	id := uint16(1)

	srcReg := make([]uint16, chf.SpanCount)
	sweeps := make([]sweepSpan, iMax(w, h)+1)

	if borderSize > 0 {
		bw := iMin(w, borderSize)
		bh := iMin(h, borderSize)
		paintRectRegion(0, bw, 0, h, id|borderReg, chf, srcReg)
		id++
		paintRectRegion(w-bw, w, 0, h, id|borderReg, chf, srcReg)
		id++
		paintRectRegion(0, w, 0, bh, id|borderReg, chf, srcReg)
		id++
		paintRectRegion(0, w, h-bh, h, id|borderReg, chf, srcReg)
		id++
		chf.BorderSize = borderSize
	}

	prevCount := make([]int32, 256)

	for y := borderSize; y < h-borderSize; y++ {
		if int(id)+1 > len(prevCount) {
			prevCount = make([]int32, id+1)
		} else {
			for i := range prevCount {
				prevCount[i] = 0
			}
		}
		rid := uint16(1)

		for x := borderSize; x < w-borderSize; x++ {
			c := &chf.Cells[x+y*w]
			for i := int32(c.Index); i < int32(c.Index)+int32(c.Count); i++ {
				s := &chf.Spans[i]
				if chf.Areas[i] == nullArea {
					continue
				}

				previd := uint16(0)
				if GetCon(s, 0) != notConnected {
					ax := x + GetDirOffsetX(0)
					ay := y + GetDirOffsetY(0)
					ai := int32(chf.Cells[ax+ay*w].Index) + GetCon(s, 0)
					if (srcReg[ai]&borderReg) == 0 && chf.Areas[i] == chf.Areas[ai] {
						previd = srcReg[ai]
					}
				}

				if previd == 0 {
					previd = rid
					rid++
					sweeps[previd] = sweepSpan{rid: previd}
				}

				if GetCon(s, 3) != notConnected {
					ax := x + GetDirOffsetX(3)
					ay := y + GetDirOffsetY(3)
					ai := int32(chf.Cells[ax+ay*w].Index) + GetCon(s, 3)
					if srcReg[ai] != 0 && (srcReg[ai]&borderReg) == 0 && chf.Areas[i] == chf.Areas[ai] {
						nr := srcReg[ai]
						if sweeps[previd].nei == 0 || sweeps[previd].nei == nr {
							sweeps[previd].nei = nr
							sweeps[previd].ns++
							prevCount[nr]++
						} else {
							sweeps[previd].nei = nullNei
						}
					}
				}

				srcReg[i] = previd
			}
		}

		for i := uint16(1); i < rid; i++ {
			if sweeps[i].nei != nullNei && sweeps[i].nei != 0 && prevCount[sweeps[i].nei] == int32(sweeps[i].ns) {
				sweeps[i].id = sweeps[i].nei
			} else {
				sweeps[i].id = id
				id++
			}
		}

		for x := borderSize; x < w-borderSize; x++ {
			c := &chf.Cells[x+y*w]
			for i := int32(c.Index); i < int32(c.Index)+int32(c.Count); i++ {
				if srcReg[i] > 0 && srcReg[i] < rid {
					srcReg[i] = sweeps[srcReg[i]].id
				}
			}
		}
	}

	ctx.StartTimer(TimerBuildRegionsFilter)
	var overlaps []int32
	chf.MaxRegions = id
	ok := mergeAndFilterRegions(ctx, minRegionArea, mergeRegionArea, &chf.MaxRegions, chf, srcReg, &overlaps)
	ctx.StopTimer(TimerBuildRegionsFilter)
	if !ok {
		return false
	}

	for i := int32(0); i < chf.SpanCount; i++ {
		chf.Spans[i].Reg = srcReg[i]
	}
	return true
}

// BuildRegions partitions the compact heightfield using watershed
// flood-fill: spans are grown outward from local distance-field maxima
// in decreasing-distance bands, producing tighter-fitting regions than
// the monotone sweep at the cost of needing chf.Dist populated first.
// It can occasionally produce overlapping regions, reported via a
// warning rather than failing the build.
func BuildRegions(ctx *BuildContext, chf *CompactHeightfield, borderSize, minRegionArea, mergeRegionArea int32) bool {
	assert.True(ctx != nil, "ctx should not be nil")
	ctx.StartTimer(TimerBuildRegions)
	defer ctx.StopTimer(TimerBuildRegions)

	w, h := chf.Width, chf.Height

	buf := make([]uint16, chf.SpanCount*4)
	ctx.StartTimer(TimerBuildRegionsWatershed)

	const (
		logNbStacks = 3
		nbStacks    = 1 << logNbStacks
	)

	lvlStacks := make([][]int32, nbStacks)
	for i := range lvlStacks {
		lvlStacks[i] = make([]int32, 0, 1024)
	}
	stack := make([]int32, 0, 1024)

	srcReg := buf[:chf.SpanCount]
	srcDist := buf[chf.SpanCount : chf.SpanCount*2]
	dstReg := buf[chf.SpanCount*2 : chf.SpanCount*3]
	dstDist := buf[chf.SpanCount*3:]

	regionID := uint16(1)
	level := (chf.MaxDistance + 1) &^ 1

	const expandIters = 8

	if borderSize > 0 {
		bw := iMin(w, borderSize)
		bh := iMin(h, borderSize)
		paintRectRegion(0, bw, 0, h, regionID|borderReg, chf, srcReg)
		regionID++
		paintRectRegion(w-bw, w, 0, h, regionID|borderReg, chf, srcReg)
		regionID++
		paintRectRegion(0, w, 0, bh, regionID|borderReg, chf, srcReg)
		regionID++
		paintRectRegion(0, w, h-bh, h, regionID|borderReg, chf, srcReg)
		regionID++
		chf.BorderSize = borderSize
	}

	sID := -1
	for level > 0 {
		if level >= 2 {
			level -= 2
		} else {
			level = 0
		}
		sID = (sID + 1) & (nbStacks - 1)

		if sID == 0 {
			sortCellsByLevel(level, chf, srcReg, nbStacks, lvlStacks, 1)
		} else {
			appendStacks(lvlStacks[sID-1], &lvlStacks[sID], srcReg)
		}

		ctx.StartTimer(TimerBuildRegionsExpand)
		expandRegions(expandIters, level, chf, &srcReg, &srcDist, &dstReg, &dstDist, &lvlStacks[sID], false)
		ctx.StopTimer(TimerBuildRegionsExpand)

		ctx.StartTimer(TimerBuildRegionsFlood)
		for j := 0; j < len(lvlStacks[sID]); j += 3 {
			x, y, i := lvlStacks[sID][j], lvlStacks[sID][j+1], lvlStacks[sID][j+2]
			if i >= 0 && srcReg[i] == 0 {
				if floodRegion(x, y, i, level, regionID, chf, srcReg, srcDist, &stack) {
					if regionID == 0xffff {
						ctx.Errorf("BuildRegions: region id overflow")
						return false
					}
					regionID++
				}
			}
		}
		ctx.StopTimer(TimerBuildRegionsFlood)
	}

	expandRegions(expandIters*8, 0, chf, &srcReg, &srcDist, &dstReg, &dstDist, &stack, true)
	ctx.StopTimer(TimerBuildRegionsWatershed)

	ctx.StartTimer(TimerBuildRegionsFilter)
	var overlaps []int32
	chf.MaxRegions = regionID
	ok := mergeAndFilterRegions(ctx, minRegionArea, mergeRegionArea, &chf.MaxRegions, chf, srcReg, &overlaps)
	if len(overlaps) > 0 {
		ctx.Warningf("BuildRegions: %d overlapping regions", len(overlaps))
	}
	ctx.StopTimer(TimerBuildRegionsFilter)
	if !ok {
		return false
	}

	for i := int32(0); i < chf.SpanCount; i++ {
		chf.Spans[i].Reg = srcReg[i]
	}
	return true
}

func floodRegion(x, y, i int32, level, r uint16, chf *CompactHeightfield, srcReg, srcDist []uint16, stack *[]int32) bool {
	w := chf.Width
	area := chf.Areas[i]

	*stack = (*stack)[:0]
	*stack = append(*stack, x, y, i)
	srcReg[i] = r
	srcDist[i] = 0

	lev := uint16(0)
	if level >= 2 {
		lev = level - 2
	}

	var count int32
	for len(*stack) > 0 {
		n := len(*stack)
		ci, cy, cx := (*stack)[n-1], (*stack)[n-2], (*stack)[n-3]
		*stack = (*stack)[:n-3]

		cs := &chf.Spans[ci]

		var ar uint16
		for dir := int32(0); dir < 4; dir++ {
			if GetCon(cs, dir) == notConnected {
				continue
			}
			ax := cx + GetDirOffsetX(dir)
			ay := cy + GetDirOffsetY(dir)
			ai := int32(chf.Cells[ax+ay*w].Index) + GetCon(cs, dir)
			if chf.Areas[ai] != area {
				continue
			}
			nr := srcReg[ai]
			if nr&borderReg != 0 {
				continue
			}
			if nr != 0 && nr != r {
				ar = nr
				break
			}

			as := &chf.Spans[ai]
			dir2 := (dir + 1) & 0x3
			if GetCon(as, dir2) != notConnected {
				ax2 := ax + GetDirOffsetX(dir2)
				ay2 := ay + GetDirOffsetY(dir2)
				ai2 := int32(chf.Cells[ax2+ay2*w].Index) + GetCon(as, dir2)
				if chf.Areas[ai2] != area {
					continue
				}
				nr2 := srcReg[ai2]
				if nr2 != 0 && nr2 != r {
					ar = nr2
					break
				}
			}
		}
		if ar != 0 {
			srcReg[ci] = 0
			continue
		}
		count++

		for dir := int32(0); dir < 4; dir++ {
			if GetCon(cs, dir) == notConnected {
				continue
			}
			ax := cx + GetDirOffsetX(dir)
			ay := cy + GetDirOffsetY(dir)
			ai := int32(chf.Cells[ax+ay*w].Index) + GetCon(cs, dir)
			if chf.Areas[ai] != area {
				continue
			}
			if chf.Dist[ai] >= lev && srcReg[ai] == 0 {
				srcReg[ai] = r
				srcDist[ai] = 0
				*stack = append(*stack, ax, ay, ai)
			}
		}
	}

	return count > 0
}

func expandRegions(maxIter int, level uint16, chf *CompactHeightfield, srcReg, srcDist, dstReg, dstDist *[]uint16, stack *[]int32, fillStack bool) (swapped bool) {
	w, h := chf.Width, chf.Height

	if fillStack {
		*stack = (*stack)[:0]
		for y := int32(0); y < h; y++ {
			for x := int32(0); x < w; x++ {
				c := &chf.Cells[x+y*w]
				for i := int32(c.Index); i < int32(c.Index)+int32(c.Count); i++ {
					if chf.Dist[i] >= level && (*srcReg)[i] == 0 && chf.Areas[i] != nullArea {
						*stack = append(*stack, x, y, i)
					}
				}
			}
		}
	} else {
		for j := 0; j < len(*stack); j += 3 {
			i := (*stack)[j+2]
			if (*srcReg)[i] != 0 {
				(*stack)[j+2] = -1
			}
		}
	}

	iter := 0
	for len(*stack) > 0 {
		failed := 0

		copy(*dstReg, (*srcReg)[:chf.SpanCount])
		copy(*dstDist, (*srcDist)[:chf.SpanCount])

		for j := 0; j < len(*stack); j += 3 {
			x, y, i := (*stack)[j], (*stack)[j+1], (*stack)[j+2]
			if i < 0 {
				failed++
				continue
			}

			r := (*srcReg)[i]
			d2 := int32(0xffff)
			area := chf.Areas[i]
			s := &chf.Spans[i]
			for dir := int32(0); dir < 4; dir++ {
				if GetCon(s, dir) == notConnected {
					continue
				}
				ax := x + GetDirOffsetX(dir)
				ay := y + GetDirOffsetY(dir)
				ai := int32(chf.Cells[ax+ay*w].Index) + GetCon(s, dir)
				if chf.Areas[ai] != area {
					continue
				}
				if (*srcReg)[ai] > 0 && (*srcReg)[ai]&borderReg == 0 {
					if int32((*srcDist)[ai]+2) < d2 {
						r = (*srcReg)[ai]
						d2 = int32((*srcDist)[ai] + 2)
					}
				}
			}
			if r != 0 {
				(*stack)[j+2] = -1
				(*dstReg)[i] = r
				(*dstDist)[i] = uint16(d2)
			} else {
				failed++
			}
		}

		*srcReg, *dstReg = *dstReg, *srcReg
		*srcDist, *dstDist = *dstDist, *srcDist
		swapped = !swapped

		if failed*3 == len(*stack) {
			break
		}
		if level > 0 {
			iter++
			if iter >= maxIter {
				break
			}
		}
	}
	return swapped
}

func sortCellsByLevel(startLevel uint16, chf *CompactHeightfield, srcReg []uint16, nbStacks uint32, stacks [][]int32, logLevelsPerStack uint16) {
	w, h := chf.Width, chf.Height
	startLevel = startLevel >> logLevelsPerStack

	for j := range stacks {
		stacks[j] = stacks[j][:0]
	}

	for y := int32(0); y < h; y++ {
		for x := int32(0); x < w; x++ {
			c := &chf.Cells[x+y*w]
			for i := int32(c.Index); i < int32(c.Index)+int32(c.Count); i++ {
				if chf.Areas[i] == nullArea || srcReg[i] != 0 {
					continue
				}
				lvl := chf.Dist[i] >> logLevelsPerStack
				sID := int32(startLevel) - int32(lvl)
				if sID < 0 {
					sID = 0
				}
				if uint32(sID) >= nbStacks {
					continue
				}
				stacks[sID] = append(stacks[sID], x, y, i)
			}
		}
	}
}

func appendStacks(srcStack []int32, dstStack *[]int32, srcReg []uint16) {
	for j := 0; j < len(srcStack); j += 3 {
		i := srcStack[j+2]
		if i < 0 || srcReg[i] != 0 {
			continue
		}
		*dstStack = append(*dstStack, srcStack[j], srcStack[j+1], srcStack[j+2])
	}
}

// mergeAndFilterRegions walks region connectivity to discard islands
// smaller than minRegionArea (unless border-connected), folds each region
// of at most mergeRegionSize spans, and each region with no edge against
// region 0, into its smallest mergeable neighbour, then compacts the
// surviving region ids to a dense 1..N range.
func mergeAndFilterRegions(ctx *BuildContext, minRegionArea, mergeRegionSize int32, maxRegionID *uint16, chf *CompactHeightfield, srcReg []uint16, overlaps *[]int32) bool {
	w, h := chf.Width, chf.Height

	nreg := *maxRegionID + 1
	regions := make([]*Region, nreg)
	for i := range regions {
		regions[i] = newRegion(i)
	}

	for y := int32(0); y < h; y++ {
		for x := int32(0); x < w; x++ {
			c := &chf.Cells[x+y*w]
			for i := int32(c.Index); i < int32(c.Index)+int32(c.Count); i++ {
				r := srcReg[i]
				if r == 0 || r >= nreg {
					continue
				}
				reg := regions[r]
				reg.SpanCount++

				for j := int32(c.Index); j < int32(c.Index)+int32(c.Count); j++ {
					if i == j {
						continue
					}
					floorID := srcReg[j]
					if floorID == 0 || floorID >= nreg {
						continue
					}
					if floorID == r {
						reg.Overlap = true
					}
					reg.addUniqueFloorRegion(int32(floorID))
				}

				if len(reg.Connections) > 0 {
					continue
				}

				reg.AreaType = chf.Areas[i]

				ndir := int32(-1)
				for dir := int32(0); dir < 4; dir++ {
					if isSolidEdge(chf, srcReg, x, y, i, dir) {
						ndir = dir
						break
					}
				}
				if ndir != -1 {
					walkContour(x, y, i, ndir, chf, srcReg, &reg.Connections)
				}
			}
		}
	}

	// Ids that no span carries (the unused next id, or the plain indices of
	// the painted border strips) are cleared so they are not renumbered.
	for _, reg := range regions {
		if reg.SpanCount == 0 {
			reg.ID = 0
		}
	}

	// Remove regions below minRegionArea, skipping ones that touch the
	// field border (their true extent beyond the tile can't be known).
	var stack, trace []int32
	for i := uint16(0); i < nreg; i++ {
		reg := regions[i]
		if reg.ID == 0 || reg.ID&borderReg != 0 || reg.SpanCount == 0 || reg.Visited {
			continue
		}

		connectsToBorder := false
		spanCount := int32(0)
		stack = stack[:0]
		trace = trace[:0]

		reg.Visited = true
		stack = append(stack, int32(i))

		for len(stack) > 0 {
			ri := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			creg := regions[ri]
			spanCount += creg.SpanCount
			trace = append(trace, ri)

			for _, conn := range creg.Connections {
				if conn&int32(borderReg) != 0 {
					connectsToBorder = true
					continue
				}
				neireg := regions[conn]
				if neireg.Visited || neireg.ID == 0 || neireg.ID&borderReg != 0 {
					continue
				}
				stack = append(stack, int32(neireg.ID))
				neireg.Visited = true
			}
		}

		if spanCount < minRegionArea && !connectsToBorder {
			for _, ri := range trace {
				regions[ri].SpanCount = 0
				regions[ri].ID = 0
			}
		}
	}

	// Merge small regions, and regions with no edge against region 0, into
	// their smallest mergeable neighbour, repeating until no merge
	// candidate remains.
	for {
		mergeCount := 0
		for i := uint16(0); i < nreg; i++ {
			reg := regions[i]
			if reg.ID == 0 || reg.ID&borderReg != 0 || reg.Overlap || reg.SpanCount == 0 {
				continue
			}
			if reg.SpanCount > mergeRegionSize && reg.isConnectedToBorder() {
				continue
			}

			smallest := int32(0x0fffffff)
			mergeID := reg.ID
			for _, conn := range reg.Connections {
				if conn&int32(borderReg) != 0 {
					continue
				}
				mreg := regions[conn]
				if mreg.ID == 0 || mreg.ID&borderReg != 0 || mreg.Overlap {
					continue
				}
				if mreg.SpanCount < smallest && reg.canMergeWithRegion(mreg) && mreg.canMergeWithRegion(reg) {
					smallest = mreg.SpanCount
					mergeID = mreg.ID
				}
			}
			if mergeID != reg.ID {
				oldID := reg.ID
				target := regions[mergeID]
				if mergeRegions(target, reg) {
					for j := uint16(0); j < nreg; j++ {
						if regions[j].ID == 0 || regions[j].ID&borderReg != 0 {
							continue
						}
						if regions[j].ID == oldID {
							regions[j].ID = mergeID
						}
						regions[j].replaceNeighbour(oldID, mergeID)
					}
					mergeCount++
				}
			}
		}
		if mergeCount == 0 {
			break
		}
	}

	// Compress surviving ids to a dense range.
	for i := range regions {
		regions[i].Remap = regions[i].ID != 0 && regions[i].ID&borderReg == 0
	}
	var regIDGen uint16
	for i := uint16(0); i < nreg; i++ {
		if !regions[i].Remap {
			continue
		}
		oldID := regions[i].ID
		regIDGen++
		newID := regIDGen
		for j := i; j < nreg; j++ {
			if regions[j].ID == oldID {
				regions[j].ID = newID
				regions[j].Remap = false
			}
		}
	}
	*maxRegionID = regIDGen

	for i := int32(0); i < chf.SpanCount; i++ {
		if srcReg[i]&borderReg == 0 {
			srcReg[i] = regions[srcReg[i]].ID
		}
	}

	for _, reg := range regions {
		if reg.Overlap {
			*overlaps = append(*overlaps, int32(reg.ID))
		}
	}
	return true
}
