package components

import (
	"fmt"

	"github.com/spaghettifunk/citadel/engine/core"
	"github.com/spaghettifunk/citadel/engine/math"
)

// CameraConfig is the [camera] table of the application configuration. Angles are in degrees.
type CameraConfig struct {
	Target            [3]float32 `toml:"target"`
	Theta             float32    `toml:"theta"`
	Phi               float32    `toml:"phi"`
	Radius            float32    `toml:"radius"`
	MinRadius         float32    `toml:"min_radius"`
	MaxRadius         float32    `toml:"max_radius"`
	OrbitSpeed        float32    `toml:"orbit_speed"`
	RotateSensitivity float32    `toml:"rotate_sensitivity"`
	ZoomStep          float32    `toml:"zoom_step"`
	// World units per pixel of right-button drag.
	DragZoom          float32    `toml:"drag_zoom"`
}

func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		Target:            [3]float32{0, 2, 0},
		Theta:             90,
		Phi:               65,
		Radius:            45,
		MinRadius:         5,
		MaxRadius:         150,
		OrbitSpeed:        6,
		RotateSensitivity: 0.25,
		ZoomStep:          2,
		DragZoom:          0.05,
	}
}

func (c CameraConfig) Validate() error {
	if c.MinRadius <= 0 || c.MaxRadius < c.MinRadius {
		return fmt.Errorf("%w: need 0 < min_radius <= max_radius, got %v/%v", core.ErrInvalidConfig, c.MinRadius, c.MaxRadius)
	}
	if c.Radius < c.MinRadius || c.Radius > c.MaxRadius {
		return fmt.Errorf("%w: radius %v outside [%v, %v]", core.ErrInvalidConfig, c.Radius, c.MinRadius, c.MaxRadius)
	}
	if c.Phi <= 0 || c.Phi >= 180 {
		return fmt.Errorf("%w: phi must be in (0, 180) degrees, got %v", core.ErrInvalidConfig, c.Phi)
	}
	if c.ZoomStep < 0 || c.RotateSensitivity < 0 || c.DragZoom < 0 {
		return fmt.Errorf("%w: zoom_step, rotate_sensitivity and drag_zoom must not be negative", core.ErrInvalidConfig)
	}
	return nil
}

// Keeps the eye off the poles, where the look-at basis degenerates.
const phiMargin float32 = 0.1

/**
 * @brief A camera orbiting a target on a sphere. Theta is the angle around
 * the Y axis, phi the angle down from +Y, both in radians.
 */
type Camera struct {
	Target math.Vec3
	Theta  float32
	Phi    float32
	Radius float32

	MinRadius float32
	MaxRadius float32
	/** @brief Automatic orbit in radians per second. */
	OrbitSpeed float32
	/** @brief Radians per pixel of mouse drag. */
	RotateSensitivity float32
	ZoomStep          float32
	DragZoom          float32

	/** @brief Internal flag used to determine when the view matrix needs to be rebuilt. */
	IsDirty    bool
	position   math.Vec3
	ViewMatrix math.Mat4
}

func NewCamera(config CameraConfig) *Camera {
	c := &Camera{
		Target:            math.NewVec3(config.Target[0], config.Target[1], config.Target[2]),
		Theta:             math.DegToRad(config.Theta),
		Radius:            config.Radius,
		MinRadius:         config.MinRadius,
		MaxRadius:         config.MaxRadius,
		OrbitSpeed:        math.DegToRad(config.OrbitSpeed),
		RotateSensitivity: math.DegToRad(config.RotateSensitivity),
		ZoomStep:          config.ZoomStep,
		DragZoom:          config.DragZoom,
	}
	c.Phi = math.Clamp(math.DegToRad(config.Phi), phiMargin, math.K_PI-phiMargin)
	c.Radius = math.Clamp(c.Radius, c.MinRadius, c.MaxRadius)
	c.IsDirty = true
	return c
}

// Update advances the automatic orbit.
func (c *Camera) Update(deltaTime float64) {
	if c.OrbitSpeed == 0 {
		return
	}
	c.Theta = math.WrapAngle(c.Theta + c.OrbitSpeed*float32(deltaTime))
	c.IsDirty = true
}

// Rotate applies a mouse drag of dx, dy pixels.
func (c *Camera) Rotate(dx, dy float32) {
	c.Theta = math.WrapAngle(c.Theta + dx*c.RotateSensitivity)
	c.Phi = math.Clamp(c.Phi+dy*c.RotateSensitivity, phiMargin, math.K_PI-phiMargin)
	c.IsDirty = true
}

// Zoom moves the eye towards the target for positive steps.
func (c *Camera) Zoom(steps float32) {
	c.Radius = math.Clamp(c.Radius-steps*c.ZoomStep, c.MinRadius, c.MaxRadius)
	c.IsDirty = true
}

// Dolly applies a right-button drag of dx, dy pixels. Moving right or up backs the eye away.
func (c *Camera) Dolly(dx, dy float32) {
	c.Radius = math.Clamp(c.Radius+(dx-dy)*c.DragZoom, c.MinRadius, c.MaxRadius)
	c.IsDirty = true
}

func (c *Camera) GetPosition() math.Vec3 {
	c.rebuild()
	return c.position
}

func (c *Camera) GetView() math.Mat4 {
	c.rebuild()
	return c.ViewMatrix
}

func (c *Camera) rebuild() {
	if !c.IsDirty {
		return
	}
	sinPhi, cosPhi := math.Sin(c.Phi), math.Cos(c.Phi)
	offset := math.NewVec3(
		c.Radius*sinPhi*math.Cos(c.Theta),
		c.Radius*cosPhi,
		c.Radius*sinPhi*math.Sin(c.Theta),
	)
	c.position = c.Target.Add(offset)
	c.ViewMatrix = math.NewMat4LookAt(c.position, c.Target, math.NewVec3Up())
	c.IsDirty = false
}
