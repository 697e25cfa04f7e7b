package extras

import (
	gomath "math"

	"github.com/Faultbox/bldgltf/pkg/math"
)

// BoundingBox is the scene extent in building coordinates plus the camera
// look-at target advertised to viewers. The look-at center is always the
// origin.
type BoundingBox struct {
	MinX, MinY, MinZ float64
	MaxX, MaxY, MaxZ float64
	LookAtX          float64
	LookAtY          float64
	LookAtZ          float64
	LookAtR          float64
}

// NewBoundingBox returns the unit box [0,0,0]-[1,1,1].
func NewBoundingBox() BoundingBox {
	b := BoundingBox{MaxX: 1, MaxY: 1, MaxZ: 1}
	b.updateLookAt()
	return b
}

// Extend grows the box to include p.
func (b *BoundingBox) Extend(p math.Vec3) {
	b.MinX = gomath.Min(b.MinX, p.X)
	b.MinY = gomath.Min(b.MinY, p.Y)
	b.MinZ = gomath.Min(b.MinZ, p.Z)
	b.MaxX = gomath.Max(b.MaxX, p.X)
	b.MaxY = gomath.Max(b.MaxY, p.Y)
	b.MaxZ = gomath.Max(b.MaxZ, p.Z)
	b.updateLookAt()
}

// Min returns the lower corner.
func (b BoundingBox) Min() math.Vec3 {
	return math.Vec3{X: b.MinX, Y: b.MinY, Z: b.MinZ}
}

// Max returns the upper corner.
func (b BoundingBox) Max() math.Vec3 {
	return math.Vec3{X: b.MaxX, Y: b.MaxY, Z: b.MaxZ}
}

// look-at radius is the farthest half-corner from the origin
func (b *BoundingBox) updateLookAt() {
	b.LookAtX, b.LookAtY, b.LookAtZ = 0, 0, 0
	r := 0.0
	for _, x := range [2]float64{b.MinX, b.MaxX} {
		for _, y := range [2]float64{b.MinY, b.MaxY} {
			for _, z := range [2]float64{b.MinZ, b.MaxZ} {
				r = gomath.Max(r, math.Vec3{X: x, Y: y, Z: z}.Scale(0.5).Length())
			}
		}
	}
	b.LookAtR = r
}
