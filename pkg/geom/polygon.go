// Package geom aligns planar building surfaces to a local frame and
// triangulates them, cutting sub-surfaces out as holes.
package geom

import (
	"errors"
	gomath "math"

	"github.com/Faultbox/bldgltf/pkg/math"
)

// Geometry errors.
var (
	ErrDegenerate       = errors.New("degenerate polygon")
	ErrSelfIntersecting = errors.New("self-intersecting polygon")
	ErrHoleOutside      = errors.New("hole not contained in boundary")
	ErrNoEar            = errors.New("triangulation stalled: no ear found")
)

const (
	// pointEpsilon is the distance below which two local points coincide.
	pointEpsilon = 1e-6
	// areaEpsilon is the smallest polygon area treated as non-degenerate.
	areaEpsilon = 1e-9
)

// Polygon is a closed ring of points in a local 2D frame. The closing edge
// from the last point back to the first is implicit.
type Polygon []math.Vec2

// Triangle is three points in a local 2D frame.
type Triangle [3]math.Vec2

// Area returns the unsigned area of the triangle.
func (t Triangle) Area() float64 {
	return gomath.Abs(t[1].Sub(t[0]).Cross(t[2].Sub(t[0]))) / 2
}

// Centroid returns the mean of the triangle's points.
func (t Triangle) Centroid() math.Vec2 {
	return t[0].Add(t[1]).Add(t[2]).Scale(1.0 / 3)
}

// SignedArea returns the shoelace area, positive for counter-clockwise rings.
func (p Polygon) SignedArea() float64 {
	var sum float64
	for i := range p {
		a, b := p[i], p[(i+1)%len(p)]
		sum += a.Cross(b)
	}
	return sum / 2
}

// Area returns the unsigned area.
func (p Polygon) Area() float64 {
	return gomath.Abs(p.SignedArea())
}

// Contains reports whether pt lies strictly inside the polygon.
func (p Polygon) Contains(pt math.Vec2) bool {
	if p.OnBoundary(pt) {
		return false
	}
	inside := false
	for i, j := 0, len(p)-1; i < len(p); j, i = i, i+1 {
		a, b := p[i], p[j]
		if (a.Y > pt.Y) != (b.Y > pt.Y) {
			x := a.X + (pt.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			if pt.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// OnBoundary reports whether pt lies on one of the polygon's edges.
func (p Polygon) OnBoundary(pt math.Vec2) bool {
	for i := range p {
		if onSegment(p[i], p[(i+1)%len(p)], pt) {
			return true
		}
	}
	return false
}

// Reverse returns the ring in the opposite winding order.
func Reverse[T any](pts []T) []T {
	out := make([]T, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}

// clean drops consecutive duplicates, including a closing point that repeats the first.
func clean(p Polygon) Polygon {
	out := make(Polygon, 0, len(p))
	for _, pt := range p {
		if len(out) > 0 && coincident(out[len(out)-1], pt) {
			continue
		}
		out = append(out, pt)
	}
	for len(out) > 1 && coincident(out[0], out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	return out
}

// SelfIntersects reports whether any two non-adjacent edges cross.
func (p Polygon) SelfIntersects() bool {
	n := len(p)
	for i := 0; i < n; i++ {
		a1, a2 := p[i], p[(i+1)%n]
		for j := i + 1; j < n; j++ {
			if j == i+1 || (i == 0 && j == n-1) {
				continue
			}
			b1, b2 := p[j], p[(j+1)%n]
			if segmentsIntersect(a1, a2, b1, b2) {
				return true
			}
		}
	}
	return false
}

func coincident(a, b math.Vec2) bool {
	return a.Distance(b) < pointEpsilon
}

func orient(a, b, c math.Vec2) float64 {
	return b.Sub(a).Cross(c.Sub(a))
}

func onSegment(a, b, pt math.Vec2) bool {
	ab := b.Sub(a)
	l := ab.Length()
	if l < pointEpsilon {
		return coincident(a, pt)
	}
	if gomath.Abs(ab.Cross(pt.Sub(a)))/l > pointEpsilon {
		return false
	}
	t := pt.Sub(a).Dot(ab) / (l * l)
	return t >= -pointEpsilon/l && t <= 1+pointEpsilon/l
}

// segmentsIntersect reports a proper crossing of segments a and b, or a
// point of one lying on the interior of the other.
func segmentsIntersect(a1, a2, b1, b2 math.Vec2) bool {
	if crosses(a1, a2, b1, b2) {
		return true
	}
	touches := func(a, b, pt math.Vec2) bool {
		return onSegment(a, b, pt) && !coincident(a, pt) && !coincident(b, pt)
	}
	return touches(b1, b2, a1) || touches(b1, b2, a2) || touches(a1, a2, b1) || touches(a1, a2, b2)
}

// crosses reports a proper crossing only; touching endpoints or collinear
// overlap do not count.
func crosses(a1, a2, b1, b2 math.Vec2) bool {
	d1 := orient(b1, b2, a1)
	d2 := orient(b1, b2, a2)
	d3 := orient(a1, a2, b1)
	d4 := orient(a1, a2, b2)
	return ((d1 > areaEpsilon && d2 < -areaEpsilon) || (d1 < -areaEpsilon && d2 > areaEpsilon)) &&
		((d3 > areaEpsilon && d4 < -areaEpsilon) || (d3 < -areaEpsilon && d4 > areaEpsilon))
}
