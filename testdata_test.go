package navgen

// newFlatCompactHeightfield builds a w x h single-layer, fully walkable
// compact heightfield with every cell at height 0 and full 4-directional
// connectivity between in-bounds neighbours. It's the simplest input the
// pipeline can run end to end on, used by the higher-level stage tests.
func newFlatCompactHeightfield(w, h int32) *CompactHeightfield {
	chf := &CompactHeightfield{
		Width:          w,
		Height:         h,
		SpanCount:      w * h,
		WalkableHeight: 2,
		WalkableClimb:  1,
		Cs:             1, Ch: 1,
		BMin: [3]float32{0, 0, 0},
		BMax: [3]float32{float32(w), 1, float32(h)},
	}
	chf.Cells = make([]CompactCell, w*h)
	chf.Spans = make([]CompactSpan, w*h)
	chf.Areas = make([]uint8, w*h)

	for y := int32(0); y < h; y++ {
		for x := int32(0); x < w; x++ {
			idx := x + y*w
			chf.Cells[idx] = CompactCell{Index: uint32(idx), Count: 1}
			chf.Areas[idx] = walkableArea
			s := &chf.Spans[idx]
			s.Y = 0
			s.H = 255
			for dir := int32(0); dir < 4; dir++ {
				nx := x + GetDirOffsetX(dir)
				ny := y + GetDirOffsetY(dir)
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					SetCon(s, dir, notConnected)
					continue
				}
				SetCon(s, dir, 0)
			}
		}
	}
	return chf
}

// newTwoAreaCompactHeightfield builds a w x h flat, fully connected
// compact heightfield split at x == w/2 into two different area labels,
// so RegionBuilder's area-label check splits it into two adjacent
// regions sharing the seam at x == w/2 as a mandatory contour vertex.
func newTwoAreaCompactHeightfield(w, h int32) *CompactHeightfield {
	chf := newFlatCompactHeightfield(w, h)
	for y := int32(0); y < h; y++ {
		for x := w / 2; x < w; x++ {
			chf.Areas[x+y*w] = walkableArea - 1
		}
	}
	return chf
}

// newHoleCompactHeightfield builds a w x h flat compact heightfield with
// a rectangular hole of non-walkable (nullArea) spans carved out of its
// middle, producing one region whose contour has an outline and one
// inner hole. Every cell keeps its span and its geometric connectivity
// (per the spec's data model, area marking never touches connectivity);
// RegionBuilder's area-label check alone keeps the hole's spans out of
// the surrounding region.
func newHoleCompactHeightfield(w, h, holeX0, holeY0, holeX1, holeY1 int32) *CompactHeightfield {
	chf := newFlatCompactHeightfield(w, h)
	for y := holeY0; y < holeY1; y++ {
		for x := holeX0; x < holeX1; x++ {
			chf.Areas[x+y*w] = nullArea
		}
	}
	return chf
}

// newSmallRegionCompactHeightfield builds a w x h flat, fully connected
// compact heightfield whose walkable area is confined to a sizeW x sizeH
// rectangle (sizeW*sizeH total spans), used to exercise minRegionArea
// filtering. When touchesEdge is true the rectangle is placed flush
// against a walkable padding strip of width borderSize left intact
// around the field, so once the pipeline runs with that same BorderSize
// the strip gets painted BORDER_REG and the rectangle's region ends up
// geometrically connected to it; otherwise the whole field outside the
// rectangle (padding strip included) is nullArea, so the region never
// touches the border regardless of BorderSize.
func newSmallRegionCompactHeightfield(w, h, sizeW, sizeH, borderSize int32, touchesEdge bool) *CompactHeightfield {
	chf := newFlatCompactHeightfield(w, h)
	x0, y0 := w/2-sizeW/2, h/2-sizeH/2
	if touchesEdge {
		x0, y0 = borderSize, borderSize
	}
	x1, y1 := x0+sizeW, y0+sizeH
	inStrip := func(x, y int32) bool {
		return touchesEdge && (x < borderSize || x >= w-borderSize || y < borderSize || y >= h-borderSize)
	}
	for y := int32(0); y < h; y++ {
		for x := int32(0); x < w; x++ {
			if (x >= x0 && x < x1 && y >= y0 && y < y1) || inStrip(x, y) {
				continue
			}
			chf.Areas[x+y*w] = nullArea
		}
	}
	return chf
}
