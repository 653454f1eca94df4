package math

/**
 * @brief Creates and returns an identity matrix:
 *
 * {
 *   {1, 0, 0, 0},
 *   {0, 1, 0, 0},
 *   {0, 0, 1, 0},
 *   {0, 0, 0, 1}
 * }
 */
func NewMat4Identity() Mat4 {
	return Mat4{Data: [16]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}}
}

/**
 * @brief Returns the result of multiplying m and n. With row vectors,
 * v * (m * n) applies m first and n second.
 */
func (m Mat4) Mul(n Mat4) Mat4 {
	var out Mat4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m.Data[row*4+k] * n.Data[k*4+col]
			}
			out.Data[row*4+col] = sum
		}
	}
	return out
}

/**
 * @brief Creates and returns an orthographic projection matrix. Typically used to
 * render flat or 2D scenes.
 */
func NewMat4Orthographic(left, right, bottom, top, nearClip, farClip float32) Mat4 {
	out := NewMat4Identity()
	lr := 1.0 / (left - right)
	bt := 1.0 / (bottom - top)
	nf := 1.0 / (nearClip - farClip)

	out.Data[0] = -2.0 * lr
	out.Data[5] = -2.0 * bt
	out.Data[10] = 2.0 * nf

	out.Data[12] = (left + right) * lr
	out.Data[13] = (top + bottom) * bt
	out.Data[14] = (farClip + nearClip) * nf
	return out
}

/**
 * @brief Creates and returns a perspective matrix. Typically used to render 3d scenes.
 * The clip-space depth range is [-w, w]; the vertex stage remaps it for Vulkan.
 */
func NewMat4Perspective(fovRadians, aspectRatio, nearClip, farClip float32) Mat4 {
	halfTanFov := ktan(fovRadians * 0.5)
	var out Mat4
	out.Data[0] = 1.0 / (aspectRatio * halfTanFov)
	out.Data[5] = 1.0 / halfTanFov
	out.Data[10] = -((farClip + nearClip) / (farClip - nearClip))
	out.Data[11] = -1.0
	out.Data[14] = -((2.0 * farClip * nearClip) / (farClip - nearClip))
	return out
}

/**
 * @brief Creates and returns a look-at matrix, or a matrix looking
 * at target from the perspective of position.
 */
func NewMat4LookAt(position, target, up Vec3) Mat4 {
	f := target.Sub(position).Normalized()
	x := f.Cross(up).Normalized()
	y := x.Cross(f)

	var out Mat4
	out.Data[0] = x.X
	out.Data[1] = y.X
	out.Data[2] = -f.X
	out.Data[4] = x.Y
	out.Data[5] = y.Y
	out.Data[6] = -f.Y
	out.Data[8] = x.Z
	out.Data[9] = y.Z
	out.Data[10] = -f.Z
	out.Data[12] = -x.Dot(position)
	out.Data[13] = -y.Dot(position)
	out.Data[14] = f.Dot(position)
	out.Data[15] = 1.0
	return out
}

/**
 * @brief Returns a transposed copy of the provided matrix (rows->colums)
 */
func (m Mat4) Transposed() Mat4 {
	var out Mat4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			out.Data[col*4+row] = m.Data[row*4+col]
		}
	}
	return out
}

/**
 * @brief Creates and returns an inverse of the provided matrix. A singular
 * matrix yields ok == false and the identity.
 */
func (m Mat4) Inverse() (Mat4, bool) {
	a := m.Data
	inv := NewMat4Identity().Data

	for col := 0; col < 4; col++ {
		pivot := col
		for row := col + 1; row < 4; row++ {
			if kabs(a[row*4+col]) > kabs(a[pivot*4+col]) {
				pivot = row
			}
		}
		if kabs(a[pivot*4+col]) < K_FLOAT_EPSILON {
			return NewMat4Identity(), false
		}
		if pivot != col {
			for k := 0; k < 4; k++ {
				a[col*4+k], a[pivot*4+k] = a[pivot*4+k], a[col*4+k]
				inv[col*4+k], inv[pivot*4+k] = inv[pivot*4+k], inv[col*4+k]
			}
		}
		p := a[col*4+col]
		for k := 0; k < 4; k++ {
			a[col*4+k] /= p
			inv[col*4+k] /= p
		}
		for row := 0; row < 4; row++ {
			if row == col {
				continue
			}
			f := a[row*4+col]
			if f == 0 {
				continue
			}
			for k := 0; k < 4; k++ {
				a[row*4+k] -= f * a[col*4+k]
				inv[row*4+k] -= f * inv[col*4+k]
			}
		}
	}
	return Mat4{Data: inv}, true
}

// Inversed is Inverse for callers that know the matrix is invertible
// (view and projection matrices).
func (m Mat4) Inversed() Mat4 {
	out, _ := m.Inverse()
	return out
}

func NewMat4Translation(position Vec3) Mat4 {
	out := NewMat4Identity()
	out.Data[12] = position.X
	out.Data[13] = position.Y
	out.Data[14] = position.Z
	return out
}

/**
 * @brief Returns a scale matrix using the provided scale.
 */
func NewMat4Scale(scale Vec3) Mat4 {
	out := NewMat4Identity()
	out.Data[0] = scale.X
	out.Data[5] = scale.Y
	out.Data[10] = scale.Z
	return out
}

func NewMat4EulerX(angleRadians float32) Mat4 {
	out := NewMat4Identity()
	c := kcos(angleRadians)
	s := ksin(angleRadians)
	out.Data[5] = c
	out.Data[6] = s
	out.Data[9] = -s
	out.Data[10] = c
	return out
}

func NewMat4EulerY(angleRadians float32) Mat4 {
	out := NewMat4Identity()
	c := kcos(angleRadians)
	s := ksin(angleRadians)
	out.Data[0] = c
	out.Data[2] = -s
	out.Data[8] = s
	out.Data[10] = c
	return out
}

func NewMat4EulerZ(angleRadians float32) Mat4 {
	out := NewMat4Identity()
	c := kcos(angleRadians)
	s := ksin(angleRadians)
	out.Data[0] = c
	out.Data[1] = s
	out.Data[4] = -s
	out.Data[5] = c
	return out
}

// Translation returns the translation part of the matrix.
func (m Mat4) Translation() Vec3 {
	return Vec3{m.Data[12], m.Data[13], m.Data[14]}
}

/**
 * @brief Returns a forward vector relative to the provided view matrix.
 */
func (m Mat4) Forward() Vec3 {
	return Vec3{-m.Data[2], -m.Data[6], -m.Data[10]}.Normalized()
}

/**
 * @brief Returns a right vector relative to the provided view matrix.
 */
func (m Mat4) Right() Vec3 {
	return Vec3{m.Data[0], m.Data[4], m.Data[8]}.Normalized()
}

/**
 * @brief Returns an up vector relative to the provided view matrix.
 */
func (m Mat4) Up() Vec3 {
	return Vec3{m.Data[1], m.Data[5], m.Data[9]}.Normalized()
}

// Compare reports whether every element of m and n differs by at most tolerance.
func (m Mat4) Compare(n Mat4, tolerance float32) bool {
	for i := range m.Data {
		if kabs(m.Data[i]-n.Data[i]) > tolerance {
			return false
		}
	}
	return true
}
