package math

func NewQuatIdentity() Quaternion {
	return Quaternion{0, 0, 0, 1.0}
}

func (q Quaternion) Normal() float32 {
	return ksqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
}

func (q Quaternion) Normalize() Quaternion {
	n := q.Normal()
	if n == 0 {
		return NewQuatIdentity()
	}
	return Quaternion{q.X / n, q.Y / n, q.Z / n, q.W / n}
}

func (q Quaternion) Conjugate() Quaternion {
	return Quaternion{-q.X, -q.Y, -q.Z, q.W}
}

// Mul returns the Hamilton product q * r.
func (q Quaternion) Mul(r Quaternion) Quaternion {
	return Quaternion{
		X: q.X*r.W + q.Y*r.Z - q.Z*r.Y + q.W*r.X,
		Y: -q.X*r.Z + q.Y*r.W + q.Z*r.X + q.W*r.Y,
		Z: q.X*r.Y - q.Y*r.X + q.Z*r.W + q.W*r.Z,
		W: -q.X*r.X - q.Y*r.Y - q.Z*r.Z + q.W*r.W,
	}
}

/**
 * @brief Builds the rotation matrix for a unit quaternion, laid out for row
 * vectors so that it composes with the rest of the Mat4 helpers.
 */
func (q Quaternion) ToMat4() Mat4 {
	n := q.Normalize()
	x, y, z, w := n.X, n.Y, n.Z, n.W

	out := NewMat4Identity()
	out.Data[0] = 1.0 - 2.0*(y*y+z*z)
	out.Data[1] = 2.0 * (x*y + z*w)
	out.Data[2] = 2.0 * (x*z - y*w)

	out.Data[4] = 2.0 * (x*y - z*w)
	out.Data[5] = 1.0 - 2.0*(x*x+z*z)
	out.Data[6] = 2.0 * (y*z + x*w)

	out.Data[8] = 2.0 * (x*z + y*w)
	out.Data[9] = 2.0 * (y*z - x*w)
	out.Data[10] = 1.0 - 2.0*(x*x+y*y)
	return out
}

func NewQuatFromAxisAngle(axis Vec3, angle float32, normalize bool) Quaternion {
	a := axis.Normalized()
	halfAngle := 0.5 * angle
	s := ksin(halfAngle)
	c := kcos(halfAngle)
	q := Quaternion{s * a.X, s * a.Y, s * a.Z, c}
	if normalize {
		return q.Normalize()
	}
	return q
}
