package geom

import (
	gomath "math"

	"github.com/Faultbox/bldgltf/pkg/math"
)

// NewellNormal returns the unit normal of a planar polygon, following the
// right-hand rule over the vertex order. It is zero for degenerate input.
func NewellNormal(pts []math.Vec3) math.Vec3 {
	var n math.Vec3
	for i := range pts {
		a, b := pts[i], pts[(i+1)%len(pts)]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	return n.Normalize()
}

// AlignFace returns a rigid transform from a local frame to the polygon's
// frame. Applying its inverse puts the polygon on the z=0 plane with its
// normal along +Z, so the points wind counter-clockwise seen from +Z.
// The local X axis is horizontal unless the polygon itself is horizontal.
func AlignFace(pts []math.Vec3) (math.Mat4, error) {
	if len(pts) < 3 {
		return math.Identity(), ErrDegenerate
	}
	z := NewellNormal(pts)
	if z == (math.Vec3{}) {
		return math.Identity(), ErrDegenerate
	}

	up := math.Vec3{Z: 1}
	var x math.Vec3
	if gomath.Abs(z.Dot(up)) > 0.999 {
		x = math.Vec3{X: 1}
	} else {
		x = up.Cross(z).Normalize()
	}
	y := z.Cross(x).Normalize()
	x = y.Cross(z)

	return math.FromBasis(x, y, z, pts[0]), nil
}

// Flatten maps points through the inverse face transform and drops the
// remaining out-of-plane component.
func Flatten(inverse math.Mat4, pts []math.Vec3) Polygon {
	out := make(Polygon, len(pts))
	for i, p := range pts {
		out[i] = inverse.TransformPoint(p).XY()
	}
	return out
}

// Lift maps a local 2D point back through the face transform.
func Lift(face math.Mat4, p math.Vec2) math.Vec3 {
	return face.TransformPoint(math.Vec3{X: p.X, Y: p.Y})
}
