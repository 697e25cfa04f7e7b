package math

import "math"

// Mat4 is a 4x4 matrix in column-major order.
// Layout: [m0 m4 m8  m12]
//
//	[m1 m5 m9  m13]
//	[m2 m6 m10 m14]
//	[m3 m7 m11 m15]
type Mat4 [16]float64

// Identity returns an identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate returns a translation matrix.
func Translate(x, y, z float64) Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		x, y, z, 1,
	}
}

// RotateZ returns a rotation matrix around the Z axis.
// angle is in radians.
func RotateZ(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)

	return Mat4{
		c, s, 0, 0,
		-s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// FromBasis builds a rigid transform whose columns are the axes x, y, z and
// whose translation is origin. It maps local coordinates into the parent frame.
func FromBasis(x, y, z, origin Vec3) Mat4 {
	return Mat4{
		x.X, x.Y, x.Z, 0,
		y.X, y.Y, y.Z, 0,
		z.X, z.Y, z.Z, 0,
		origin.X, origin.Y, origin.Z, 1,
	}
}

// Mul multiplies this matrix by another (m * other).
func (m Mat4) Mul(other Mat4) Mat4 {
	var result Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			result[col*4+row] =
				m[0*4+row]*other[col*4+0] +
					m[1*4+row]*other[col*4+1] +
					m[2*4+row]*other[col*4+2] +
					m[3*4+row]*other[col*4+3]
		}
	}
	return result
}

// TransformPoint transforms a 3D point by this matrix (assumes w=1).
func (m Mat4) TransformPoint(p Vec3) Vec3 {
	x := m[0]*p.X + m[4]*p.Y + m[8]*p.Z + m[12]
	y := m[1]*p.X + m[5]*p.Y + m[9]*p.Z + m[13]
	z := m[2]*p.X + m[6]*p.Y + m[10]*p.Z + m[14]
	w := m[3]*p.X + m[7]*p.Y + m[11]*p.Z + m[15]
	if w != 0 && w != 1 {
		return Vec3{x / w, y / w, z / w}
	}
	return Vec3{x, y, z}
}

// TransformPoints transforms every point in ps.
func (m Mat4) TransformPoints(ps []Vec3) []Vec3 {
	out := make([]Vec3, len(ps))
	for i, p := range ps {
		out[i] = m.TransformPoint(p)
	}
	return out
}

// TransformDirection transforms a direction vector (ignores translation).
func (m Mat4) TransformDirection(d Vec3) Vec3 {
	return Vec3{
		m[0]*d.X + m[4]*d.Y + m[8]*d.Z,
		m[1]*d.X + m[5]*d.Y + m[9]*d.Z,
		m[2]*d.X + m[6]*d.Y + m[10]*d.Z,
	}
}

// Inverse returns the inverse of the matrix by Gauss-Jordan elimination
// with partial pivoting. A singular matrix yields the identity.
func (m Mat4) Inverse() Mat4 {
	a, inv := m, Identity()

	for col := 0; col < 4; col++ {
		pivot := col
		for row := col + 1; row < 4; row++ {
			if math.Abs(a[col*4+row]) > math.Abs(a[col*4+pivot]) {
				pivot = row
			}
		}
		if math.Abs(a[col*4+pivot]) < 1e-14 {
			return Identity()
		}
		if pivot != col {
			a.swapRows(col, pivot)
			inv.swapRows(col, pivot)
		}

		scale := 1 / a[col*4+col]
		a.scaleRow(col, scale)
		inv.scaleRow(col, scale)

		for row := 0; row < 4; row++ {
			if row == col {
				continue
			}
			f := a[col*4+row]
			if f == 0 {
				continue
			}
			a.addRow(row, col, -f)
			inv.addRow(row, col, -f)
		}
	}
	return inv
}

func (m *Mat4) swapRows(i, j int) {
	for c := 0; c < 4; c++ {
		m[c*4+i], m[c*4+j] = m[c*4+j], m[c*4+i]
	}
}

func (m *Mat4) scaleRow(i int, s float64) {
	for c := 0; c < 4; c++ {
		m[c*4+i] *= s
	}
}

// addRow adds f times row src to row dst.
func (m *Mat4) addRow(dst, src int, f float64) {
	for c := 0; c < 4; c++ {
		m[c*4+dst] += f * m[c*4+src]
	}
}
