package math

/**
 * @brief Creates and returns a new 2-element vector using the supplied values.
 */
func NewVec2(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

// NewVec2Zero creates and returns a 2-component vector with all components set to 0.0f.
func NewVec2Zero() Vec2 {
	return Vec2{}
}

// NewVec2One creates and returns a 2-component vector with all components set to 1.0f.
func NewVec2One() Vec2 {
	return Vec2{X: 1, Y: 1}
}

// Add adds two vectors and returns a copy of the result.
func (v Vec2) Add(u Vec2) Vec2 {
	return Vec2{v.X + u.X, v.Y + u.Y}
}

// Sub subtracts one vector from another and returns a copy of the result.
func (v Vec2) Sub(u Vec2) Vec2 {
	return Vec2{v.X - u.X, v.Y - u.Y}
}

// MulScalar multiplies every component by a scalar.
func (v Vec2) MulScalar(s float32) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Length returns the length of the provided vector.
func (v Vec2) Length() float32 {
	return ksqrt(v.X*v.X + v.Y*v.Y)
}

/**
 * @brief Creates and returns a new 3-element vector using the supplied values.
 */
func NewVec3(x, y, z float32) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// NewVec3Zero creates and returns a 3-component vector with all components set to 0.0f.
func NewVec3Zero() Vec3 {
	return Vec3{}
}

// NewVec3One creates and returns a 3-component vector with all components set to 1.0f.
func NewVec3One() Vec3 {
	return Vec3{X: 1, Y: 1, Z: 1}
}

// NewVec3Up creates and returns a 3-component vector pointing up (0, 1, 0).
func NewVec3Up() Vec3 {
	return Vec3{Y: 1}
}

// NewVec3Forward creates and returns a 3-component vector pointing forward (0, 0, -1).
func NewVec3Forward() Vec3 {
	return Vec3{Z: -1}
}

// NewVec3Right creates and returns a 3-component vector pointing right (1, 0, 0).
func NewVec3Right() Vec3 {
	return Vec3{X: 1}
}

func (v Vec3) ToVec4(w float32) Vec4 {
	return Vec4{v.X, v.Y, v.Z, w}
}

func (v Vec3) Add(u Vec3) Vec3 {
	return Vec3{v.X + u.X, v.Y + u.Y, v.Z + u.Z}
}

func (v Vec3) Sub(u Vec3) Vec3 {
	return Vec3{v.X - u.X, v.Y - u.Y, v.Z - u.Z}
}

// Mul multiplies component-wise.
func (v Vec3) Mul(u Vec3) Vec3 {
	return Vec3{v.X * u.X, v.Y * u.Y, v.Z * u.Z}
}

func (v Vec3) MulScalar(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

/**
 * @brief Returns the squared length of the provided vector.
 */
func (v Vec3) LengthSquared() float32 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

func (v Vec3) Length() float32 {
	return ksqrt(v.LengthSquared())
}

/**
 * @brief Returns a normalized copy of the supplied vector. A zero vector
 * is returned unchanged.
 */
func (v Vec3) Normalized() Vec3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return Vec3{v.X / l, v.Y / l, v.Z / l}
}

/**
 * @brief Returns the dot product between the provided vectors. Typically used
 * to calculate the difference in direction.
 */
func (v Vec3) Dot(u Vec3) float32 {
	return v.X*u.X + v.Y*u.Y + v.Z*u.Z
}

/**
 * @brief Calculates and returns the cross product of the supplied vectors.
 * The cross product is a new vector which is orthoganal to both provided vectors.
 */
func (v Vec3) Cross(u Vec3) Vec3 {
	return Vec3{
		X: v.Y*u.Z - v.Z*u.Y,
		Y: v.Z*u.X - v.X*u.Z,
		Z: v.X*u.Y - v.Y*u.X,
	}
}

/**
 * @brief Compares all elements of v and u and ensures the difference
 * is less than tolerance.
 */
func (v Vec3) Compare(u Vec3, tolerance float32) bool {
	return kabs(v.X-u.X) <= tolerance &&
		kabs(v.Y-u.Y) <= tolerance &&
		kabs(v.Z-u.Z) <= tolerance
}

// Distance returns the distance between v and u.
func (v Vec3) Distance(u Vec3) float32 {
	return v.Sub(u).Length()
}

/**
 * @brief Transforms v by m, treating v as a row vector with the given w.
 * Use w = 1 for points and w = 0 for directions.
 */
func (v Vec3) Transform(w float32, m Mat4) Vec3 {
	d := m.Data
	return Vec3{
		X: v.X*d[0] + v.Y*d[4] + v.Z*d[8] + w*d[12],
		Y: v.X*d[1] + v.Y*d[5] + v.Z*d[9] + w*d[13],
		Z: v.X*d[2] + v.Y*d[6] + v.Z*d[10] + w*d[14],
	}
}

/**
 * @brief Creates and returns a new 4-element vector using the supplied values.
 */
func NewVec4(x, y, z, w float32) Vec4 {
	return Vec4{X: x, Y: y, Z: z, W: w}
}

func (v Vec4) ToVec3() Vec3 {
	return Vec3{v.X, v.Y, v.Z}
}

func (v Vec4) Add(u Vec4) Vec4 {
	return Vec4{v.X + u.X, v.Y + u.Y, v.Z + u.Z, v.W + u.W}
}

func (v Vec4) MulScalar(s float32) Vec4 {
	return Vec4{v.X * s, v.Y * s, v.Z * s, v.W * s}
}

func (v Vec4) Compare(u Vec4, tolerance float32) bool {
	return kabs(v.X-u.X) <= tolerance &&
		kabs(v.Y-u.Y) <= tolerance &&
		kabs(v.Z-u.Z) <= tolerance &&
		kabs(v.W-u.W) <= tolerance
}
