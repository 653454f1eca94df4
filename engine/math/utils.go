package math

import (
	m "math"

	"golang.org/x/exp/constraints"
)

const (
	/** @brief An approximate representation of PI. */
	K_PI float32 = 3.14159265358979323846
	/** @brief An approximate representation of PI multiplied by 2. */
	K_PI_2 float32 = 2.0 * K_PI
	/** @brief An approximate representation of PI divided by 2. */
	K_HALF_PI float32 = 0.5 * K_PI
	/** @brief An approximate representation of PI divided by 4. */
	K_QUARTER_PI float32 = 0.25 * K_PI
	/** @brief A multiplier used to convert degrees to radians. */
	K_DEG2RAD_MULTIPLIER float32 = K_PI / 180.0
	/** @brief A multiplier used to convert radians to degrees. */
	K_RAD2DEG_MULTIPLIER float32 = 180.0 / K_PI
	/** @brief Smallest positive number where 1.0 + FLOAT_EPSILON != 0 */
	K_FLOAT_EPSILON float32 = 1.192092896e-07
)

func ksin(x float32) float32  { return float32(m.Sin(float64(x))) }
func kcos(x float32) float32  { return float32(m.Cos(float64(x))) }
func ktan(x float32) float32  { return float32(m.Tan(float64(x))) }
func ksqrt(x float32) float32 { return float32(m.Sqrt(float64(x))) }
func kabs(x float32) float32  { return float32(m.Abs(float64(x))) }

// Sin and Cos are float32 wrappers for callers outside the package.
func Sin(x float32) float32 { return ksin(x) }
func Cos(x float32) float32 { return kcos(x) }

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// WrapAngle folds an angle in radians into [0, 2*PI).
func WrapAngle(radians float32) float32 {
	r := float32(m.Mod(float64(radians), float64(K_PI_2)))
	if r < 0 {
		r += K_PI_2
	}
	return r
}

/**
 * @brief Converts provided degrees to radians.
 */
func DegToRad(degrees float32) float32 {
	return degrees * K_DEG2RAD_MULTIPLIER
}

/**
 * @brief Converts provided radians to degrees.
 */
func RadToDeg(radians float32) float32 {
	return radians * K_RAD2DEG_MULTIPLIER
}
