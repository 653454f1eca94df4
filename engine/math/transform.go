package math

/**
 * @brief Creates and returns a new transform from the provided position,
 * rotation and scale, with no parent.
 */
func TransformFromPositionRotationScale(position Vec3, rotation Quaternion, scale Vec3) *Transform {
	t := &Transform{}
	t.SetPositionRotationScale(position, rotation, scale)
	t.Local = NewMat4Identity()
	return t
}

/**
 * @brief Creates and returns a new transform, using a zero
 * vector for position, identity quaternion for rotation, and
 * a one vector for scale. Also has a nil parent. Marked dirty
 * by default.
 */
func TransformCreate() *Transform {
	return TransformFromPositionRotationScale(NewVec3Zero(), NewQuatIdentity(), NewVec3One())
}

func TransformFromPosition(position Vec3) *Transform {
	return TransformFromPositionRotationScale(position, NewQuatIdentity(), NewVec3One())
}

func TransformFromPositionScale(position, scale Vec3) *Transform {
	return TransformFromPositionRotationScale(position, NewQuatIdentity(), scale)
}

func (t *Transform) SetPosition(position Vec3) {
	t.Position = position
	t.IsDirty = true
}

func (t *Transform) Translate(translation Vec3) {
	t.Position = t.Position.Add(translation)
	t.IsDirty = true
}

func (t *Transform) SetRotation(rotation Quaternion) {
	t.Rotation = rotation
	t.IsDirty = true
}

// Rotate applies rotation after the current one.
func (t *Transform) Rotate(rotation Quaternion) {
	t.Rotation = rotation.Mul(t.Rotation)
	t.IsDirty = true
}

// RotateY applies a rotation of angle radians around the world up axis.
func (t *Transform) RotateY(angle float32) {
	t.Rotate(NewQuatFromAxisAngle(NewVec3Up(), angle, true))
}

func (t *Transform) SetScale(scale Vec3) {
	t.Scale = scale
	t.IsDirty = true
}

func (t *Transform) SetPositionRotationScale(position Vec3, rotation Quaternion, scale Vec3) {
	t.Position = position
	t.Rotation = rotation
	t.Scale = scale
	t.IsDirty = true
}

/**
 * @brief Retrieves the local transformation matrix: scale, then rotation,
 * then translation. Rebuilt only when the transform is dirty.
 */
func (t *Transform) GetLocal() Mat4 {
	if t == nil {
		return NewMat4Identity()
	}
	if t.IsDirty {
		r := t.Rotation.ToMat4()
		tr := r.Mul(NewMat4Translation(t.Position))
		t.Local = NewMat4Scale(t.Scale).Mul(tr)
		t.IsDirty = false
	}
	return t.Local
}

/**
 * @brief Obtains the world matrix of the given transform
 * by examining its parent (if there is one) and multiplying it
 * against the local matrix.
 */
func (t *Transform) GetWorld() Mat4 {
	if t == nil {
		return NewMat4Identity()
	}
	l := t.GetLocal()
	if t.Parent != nil {
		return l.Mul(t.Parent.GetWorld())
	}
	return l
}
