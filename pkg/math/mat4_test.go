package math

import (
	"math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	// Off-diagonal should be 0
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	result := m.Mul(Identity())

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestTransformPoint(t *testing.T) {
	m := Translate(10, 20, 30)
	result := m.TransformPoint(Vec3{1, 2, 3})

	expected := Vec3{11, 22, 33}
	if result != expected {
		t.Errorf("TransformPoint: got %v, want %v", result, expected)
	}
}

func TestRotateZ90(t *testing.T) {
	m := RotateZ(math.Pi / 2)
	result := m.TransformPoint(Vec3{1, 0, 0})

	// After 90 degree Z rotation, (1,0,0) should become (0,1,0)
	if math.Abs(result.X) > 1e-9 || math.Abs(result.Y-1) > 1e-9 || math.Abs(result.Z) > 1e-9 {
		t.Errorf("RotateZ 90: got %v, want (0, 1, 0)", result)
	}
}

func TestTransformDirectionIgnoresTranslation(t *testing.T) {
	m := Translate(5, 5, 5).Mul(RotateZ(math.Pi))
	d := m.TransformDirection(Vec3{1, 0, 0})

	if math.Abs(d.X+1) > 1e-9 || math.Abs(d.Y) > 1e-9 || math.Abs(d.Z) > 1e-9 {
		t.Errorf("TransformDirection: got %v, want (-1, 0, 0)", d)
	}
}

func TestFromBasis(t *testing.T) {
	m := FromBasis(Vec3{0, 1, 0}, Vec3{-1, 0, 0}, Vec3{0, 0, 1}, Vec3{1, 2, 3})
	got := m.TransformPoint(Vec3{1, 0, 0})

	if got != (Vec3{1, 3, 3}) {
		t.Errorf("FromBasis: got %v, want (1, 3, 3)", got)
	}
}

func TestInverse(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
	}{
		{"placement", Translate(3, -4, 7).Mul(RotateZ(0.3))},
		{"face frame", FromBasis(Vec3{0, 0, 1}, Vec3{1, 0, 0}, Vec3{0, 1, 0}, Vec3{10, 0, 3})},
		{"needs pivoting", Mat4{0, 1, 0, 0, 1, 0, 0, 0, 0, 0, 2, 0, 1, 2, 3, 1}},
	}
	p := Vec3{1.5, -2, 8}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			back := tt.m.Inverse().TransformPoint(tt.m.TransformPoint(p))
			if back.Distance(p) > 1e-9 {
				t.Errorf("Inverse round trip: got %v, want %v", back, p)
			}
			prod := tt.m.Mul(tt.m.Inverse())
			id := Identity()
			for i := range prod {
				if math.Abs(prod[i]-id[i]) > 1e-9 {
					t.Errorf("M * M^-1 element %d = %v", i, prod[i])
				}
			}
		})
	}
}

func TestInverseSingular(t *testing.T) {
	var zero Mat4
	if zero.Inverse() != Identity() {
		t.Error("singular matrix inverse should be identity")
	}
}
