package math

import (
	"math"
	"testing"
)

func TestQuatFromAxisAngle(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{Y: 1}, math.Pi/2)

	if math.Abs(q.W-math.Cos(math.Pi/4)) > 1e-12 || math.Abs(q.Y-math.Sin(math.Pi/4)) > 1e-12 {
		t.Errorf("unexpected quaternion %+v", q)
	}
	if q.X != 0 || q.Z != 0 {
		t.Errorf("rotation about Y should not touch X and Z, got %+v", q)
	}
}

func TestQuatRotate(t *testing.T) {
	tests := []struct {
		name  string
		axis  Vec3
		angle float64
		in    Vec3
		want  Vec3
	}{
		{"z up to y up", Vec3{X: 1}, -math.Pi / 2, Vec3{Z: 1}, Vec3{Y: 1}},
		{"y to -z", Vec3{X: 1}, -math.Pi / 2, Vec3{Y: 1}, Vec3{Z: -1}},
		{"quarter turn about z", Vec3{Z: 1}, math.Pi / 2, Vec3{X: 1}, Vec3{Y: 1}},
		{"axis unchanged", Vec3{Z: 1}, 1.2, Vec3{Z: 3}, Vec3{Z: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := QuatFromAxisAngle(tt.axis, tt.angle).Rotate(tt.in)
			if got.Distance(tt.want) > 1e-9 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQuatFloat32(t *testing.T) {
	f := QuatFromAxisAngle(Vec3{X: 1}, -math.Pi/2).Float32()
	if math.Abs(float64(f[0])+math.Sqrt2/2) > 1e-6 || f[1] != 0 || f[2] != 0 || math.Abs(float64(f[3])-math.Sqrt2/2) > 1e-6 {
		t.Errorf("Float32() = %v", f)
	}
}
