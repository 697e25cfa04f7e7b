package geom

import (
	"fmt"
	gomath "math"
	"sort"

	"github.com/Faultbox/bldgltf/pkg/math"
)

// Triangulate splits boundary minus holes into triangles by ear clipping.
// Holes may touch the boundary but must not cross it, and may be given in
// either winding. The triangles share the winding of boundary.
func Triangulate(boundary Polygon, holes []Polygon) ([]Triangle, error) {
	outer := clean(boundary)
	if len(outer) < 3 || outer.Area() < areaEpsilon {
		return nil, ErrDegenerate
	}
	if outer.SelfIntersects() {
		return nil, ErrSelfIntersecting
	}

	clockwise := outer.SignedArea() < 0
	ring := outer
	if clockwise {
		ring = Reverse(outer)
	}

	var touching, inner []Polygon
	for i, h := range holes {
		h = clean(h)
		if len(h) < 3 || h.Area() < areaEpsilon {
			return nil, fmt.Errorf("hole %d: %w", i, ErrDegenerate)
		}
		if h.SelfIntersects() {
			return nil, fmt.Errorf("hole %d: %w", i, ErrSelfIntersecting)
		}
		if !containsRing(ring, h) {
			return nil, fmt.Errorf("hole %d: %w", i, ErrHoleOutside)
		}
		if h.SignedArea() > 0 {
			h = Reverse(h)
		}
		if touchesRing(ring, h) {
			touching = append(touching, h)
		} else {
			inner = append(inner, h)
		}
	}

	for _, h := range touching {
		ring = splice(ring, h)
	}

	// Bridging right to left keeps every bridge visible from its hole.
	sort.SliceStable(inner, func(i, j int) bool { return maxX(inner[i]) > maxX(inner[j]) })
	for i, h := range inner {
		mi := 0
		for k := range h {
			if h[k].X > h[mi].X {
				mi = k
			}
		}
		vi := visibleVertex(ring, h[mi])
		if vi < 0 {
			return nil, fmt.Errorf("hole %d: %w", i, ErrHoleOutside)
		}
		ring = bridge(ring, vi, h, mi)
	}

	tris, err := earClip(ring)
	if err != nil {
		return nil, err
	}
	if clockwise {
		for i := range tris {
			tris[i][1], tris[i][2] = tris[i][2], tris[i][1]
		}
	}
	return tris, nil
}

// containsRing reports whether hole lies inside ring, touching allowed.
func containsRing(ring, hole Polygon) bool {
	notOutside := func(pt math.Vec2) bool {
		return ring.Contains(pt) || ring.OnBoundary(pt)
	}
	for i, v := range hole {
		next := hole[(i+1)%len(hole)]
		if !notOutside(v) || !notOutside(v.Add(next).Scale(0.5)) {
			return false
		}
		for j := range ring {
			if crosses(v, next, ring[j], ring[(j+1)%len(ring)]) {
				return false
			}
		}
	}
	// A hole equal to its boundary leaves nothing to triangulate.
	return hole.Area() < ring.Area()-areaEpsilon
}

func touchesRing(ring, hole Polygon) bool {
	for _, v := range hole {
		if ring.OnBoundary(v) {
			return true
		}
	}
	return false
}

// splice inserts a hole that touches the ring at one of its vertices,
// forming a zero-width cut. The collinear spike this leaves behind is
// removed during ear clipping.
func splice(ring, hole Polygon) Polygon {
	n := len(hole)
	for hi, v := range hole {
		for ri := range ring {
			a, b := ring[ri], ring[(ri+1)%len(ring)]
			first := 0
			switch {
			case coincident(a, v):
				first = 1
			case onSegment(a, b, v) && !coincident(b, v):
				first = 0
			default:
				continue
			}
			out := make(Polygon, 0, len(ring)+n+1)
			out = append(out, ring[:ri+1]...)
			for k := first; k <= n; k++ {
				out = append(out, hole[(hi+k)%n])
			}
			return append(out, ring[ri+1:]...)
		}
	}
	return ring
}

// bridge joins hole into ring through ring[vi] and hole[mi], duplicating
// both endpoints of the bridge.
func bridge(ring Polygon, vi int, hole Polygon, mi int) Polygon {
	n := len(hole)
	out := make(Polygon, 0, len(ring)+n+2)
	out = append(out, ring[:vi+1]...)
	for k := 0; k <= n; k++ {
		out = append(out, hole[(mi+k)%n])
	}
	out = append(out, ring[vi])
	return append(out, ring[vi+1:]...)
}

// visibleVertex finds a ring vertex visible from m by casting a ray
// towards +X and refining the hit against vertices inside the sight triangle.
func visibleVertex(ring Polygon, m math.Vec2) int {
	n := len(ring)
	best := -1
	bestX := gomath.Inf(1)
	hitVertex := false
	for i := 0; i < n; i++ {
		a, b := ring[i], ring[(i+1)%n]
		if gomath.Abs(a.Y-b.Y) < pointEpsilon {
			continue
		}
		if m.Y < gomath.Min(a.Y, b.Y) || m.Y > gomath.Max(a.Y, b.Y) {
			continue
		}
		x := a.X + (m.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
		if x < m.X || x >= bestX {
			continue
		}
		bestX = x
		switch {
		case gomath.Abs(a.Y-m.Y) < pointEpsilon:
			best, hitVertex = i, true
		case gomath.Abs(b.Y-m.Y) < pointEpsilon:
			best, hitVertex = (i+1)%n, true
		default:
			hitVertex = false
			if a.X > b.X {
				best = i
			} else {
				best = (i + 1) % n
			}
		}
	}
	if best < 0 {
		return -1
	}
	if hitVertex {
		return pickSector(ring, best, m)
	}

	hit := math.Vec2{X: bestX, Y: m.Y}
	p := ring[best]
	angle := func(q math.Vec2) float64 {
		return gomath.Atan2(gomath.Abs(q.Y-m.Y), q.X-m.X)
	}
	bestAngle, bestDist := angle(p), m.Distance(p)
	for j, q := range ring {
		if j == best || coincident(q, p) || !inTriangle(m, hit, p, q) {
			continue
		}
		a, d := angle(q), m.Distance(q)
		if a < bestAngle-1e-12 || (gomath.Abs(a-bestAngle) <= 1e-12 && d < bestDist) {
			best, bestAngle, bestDist = j, a, d
		}
	}
	return pickSector(ring, best, m)
}

// pickSector chooses, among ring vertices sharing the position of ring[i],
// the one whose interior angle contains the direction to m. Earlier
// bridges leave such duplicates behind.
func pickSector(ring Polygon, i int, m math.Vec2) int {
	n := len(ring)
	for j, q := range ring {
		if !coincident(q, ring[i]) {
			continue
		}
		prev, next := ring[(j+n-1)%n], ring[(j+1)%n]
		if locallyInside(prev, q, next, m) {
			return j
		}
	}
	return i
}

// locallyInside reports whether b lies within the interior angle at a of a
// counter-clockwise ring.
func locallyInside(prev, a, next, b math.Vec2) bool {
	if orient(prev, a, next) >= 0 {
		return orient(a, next, b) >= 0 && orient(a, prev, b) <= 0
	}
	return orient(a, next, b) >= 0 || orient(a, prev, b) <= 0
}

// inTriangle reports whether p lies inside or on triangle abc, for either winding.
func inTriangle(a, b, c, p math.Vec2) bool {
	d1, d2, d3 := orient(a, b, p), orient(b, c, p), orient(c, a, p)
	neg := d1 < -areaEpsilon || d2 < -areaEpsilon || d3 < -areaEpsilon
	pos := d1 > areaEpsilon || d2 > areaEpsilon || d3 > areaEpsilon
	return !(neg && pos)
}

// earClip triangulates a counter-clockwise, weakly simple ring.
func earClip(pts Polygon) ([]Triangle, error) {
	idx := make([]int, len(pts))
	for i := range idx {
		idx[i] = i
	}
	tris := make([]Triangle, 0, len(pts))

	corner := func(i int) (math.Vec2, math.Vec2, math.Vec2) {
		n := len(idx)
		return pts[idx[(i+n-1)%n]], pts[idx[i]], pts[idx[(i+1)%n]]
	}
	remove := func(i int) {
		idx = append(idx[:i], idx[i+1:]...)
	}

	for len(idx) > 3 {
		removed := false
		// Collinear vertices and spikes enclose no area.
		for i := range idx {
			a, b, c := corner(i)
			if gomath.Abs(orient(a, b, c)) <= areaEpsilon {
				remove(i)
				removed = true
				break
			}
		}
		if removed {
			continue
		}
		for i := range idx {
			a, b, c := corner(i)
			if orient(a, b, c) <= areaEpsilon || !isEar(pts, idx, i, a, b, c) {
				continue
			}
			tris = append(tris, Triangle{a, b, c})
			remove(i)
			removed = true
			break
		}
		if !removed {
			return nil, ErrNoEar
		}
	}

	if len(idx) == 3 {
		a, b, c := corner(1)
		if orient(a, b, c) > areaEpsilon {
			tris = append(tris, Triangle{a, b, c})
		}
	}
	if len(tris) == 0 {
		return nil, ErrDegenerate
	}
	return tris, nil
}

func isEar(pts Polygon, idx []int, i int, a, b, c math.Vec2) bool {
	n := len(idx)
	for k := range idx {
		if k == i || k == (i+n-1)%n || k == (i+1)%n {
			continue
		}
		p := pts[idx[k]]
		if coincident(p, a) || coincident(p, b) || coincident(p, c) {
			continue
		}
		if inTriangle(a, b, c, p) {
			return false
		}
	}
	return true
}

func maxX(p Polygon) float64 {
	m := gomath.Inf(-1)
	for _, v := range p {
		m = gomath.Max(m, v.X)
	}
	return m
}
