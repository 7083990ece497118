package navgen

// This file collects the 2D integer-geometry primitives shared by
// ContourBuilder and PolyMeshBuilder. All coordinates are xz-plane
// integers packed as (x, y, z, flags) vertex records; these helpers
// only ever look at x (index 0) and z (index 2).

func prevIdx(i, n int32) int32 {
	if i-1 >= 0 {
		return i - 1
	}
	return n - 1
}

func nextIdx(i, n int32) int32 {
	if i+1 < n {
		return i + 1
	}
	return 0
}

// area2 returns twice the signed area of the triangle (a, b, c).
func area2(a, b, c []int32) int32 {
	return (b[0]-a[0])*(c[2]-a[2]) - (c[0]-a[0])*(b[2]-a[2])
}

// xorb is exclusive-or on two bools.
func xorb(x, y bool) bool { return x != y }

// left reports whether c is strictly left of the directed line a->b.
func left(a, b, c []int32) bool { return area2(a, b, c) < 0 }

// leftOn reports whether c is left of or on the directed line a->b.
func leftOn(a, b, c []int32) bool { return area2(a, b, c) <= 0 }

func collinear(a, b, c []int32) bool { return area2(a, b, c) == 0 }

// intersectProp reports whether segments ab and cd intersect at a point
// interior to both.
func intersectProp(a, b, c, d []int32) bool {
	if collinear(a, b, c) || collinear(a, b, d) || collinear(c, d, a) || collinear(c, d, b) {
		return false
	}
	return xorb(left(a, b, c), left(a, b, d)) && xorb(left(c, d, a), left(c, d, b))
}

// between reports whether c, known collinear with a and b, lies on the
// closed segment ab.
func between(a, b, c []int32) bool {
	if !collinear(a, b, c) {
		return false
	}
	if a[0] != b[0] {
		return (a[0] <= c[0] && c[0] <= b[0]) || (a[0] >= c[0] && c[0] >= b[0])
	}
	return (a[2] <= c[2] && c[2] <= b[2]) || (a[2] >= c[2] && c[2] >= b[2])
}

// intersect reports whether ab and cd intersect, properly or improperly.
func intersect(a, b, c, d []int32) bool {
	if intersectProp(a, b, c, d) {
		return true
	}
	return between(a, b, c) || between(a, b, d) || between(c, d, a) || between(c, d, b)
}

// vequal reports whether a and b occupy the same xz cell.
func vequal(a, b []int32) bool {
	return a[0] == b[0] && a[2] == b[2]
}

// inCone reports whether the diagonal from verts[i] to point pj lies in
// the interior cone of vertex i of the n-vertex polygon verts.
func inCone(i, n int32, verts, pj []int32) bool {
	pi := verts[i*4:]
	pi1 := verts[nextIdx(i, n)*4:]
	pin1 := verts[prevIdx(i, n)*4:]

	if leftOn(pin1, pi, pi1) {
		return left(pi, pj, pin1) && left(pj, pi, pi1)
	}
	return !(leftOn(pi, pj, pi1) && leftOn(pj, pi, pin1))
}

// distancePtSeg returns the squared distance from point (x, z) to the
// segment (px, pz)-(qx, qz).
func distancePtSeg(x, z int32, px, pz, qx, qz int32) float32 {
	pqx := float32(qx - px)
	pqz := float32(qz - pz)
	dx := float32(x - px)
	dz := float32(z - pz)
	d := pqx*pqx + pqz*pqz
	t := pqx*dx + pqz*dz
	if d > 0 {
		t /= d
	}
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	dx = float32(px) + t*pqx - float32(x)
	dz = float32(pz) + t*pqz - float32(z)
	return dx*dx + dz*dz
}

// calcAreaOfPolygon2D returns the signed area of the polygon described
// by verts, computed as (twice the area + 1) / 2; a negative result means
// the winding is clockwise (i.e. the polygon is a hole in its region).
func calcAreaOfPolygon2D(verts []int32, nverts int32) int32 {
	var area int32
	j := nverts - 1
	for i := int32(0); i < nverts; i++ {
		vi := verts[i*4:]
		vj := verts[j*4:]
		area += vi[0]*vj[2] - vj[0]*vi[2]
		j = i
	}
	return (area + 1) / 2
}
