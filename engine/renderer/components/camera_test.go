package components

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/citadel/engine/core"
	"github.com/spaghettifunk/citadel/engine/math"
)

func testConfig() CameraConfig {
	c := DefaultCameraConfig()
	c.Target = [3]float32{0, 0, 0}
	c.Theta = 0
	c.Phi = 90
	c.Radius = 10
	c.OrbitSpeed = 0
	return c
}

func TestCameraPosition(t *testing.T) {
	c := NewCamera(testConfig())
	if got := c.GetPosition(); !got.Compare(math.NewVec3(10, 0, 0), 1e-4) {
		t.Errorf("position = %+v, want (10, 0, 0)", got)
	}

	c.Target = math.NewVec3(1, 2, 3)
	c.IsDirty = true
	if got := c.GetPosition(); !got.Compare(math.NewVec3(11, 2, 3), 1e-4) {
		t.Errorf("position with target = %+v, want (11, 2, 3)", got)
	}
}

func TestCameraViewLooksAtTarget(t *testing.T) {
	cfg := testConfig()
	cfg.Target = [3]float32{2, 1, -3}
	cfg.Theta = 30
	cfg.Phi = 60
	c := NewCamera(cfg)

	target := c.Target.Transform(1, c.GetView())
	want := math.NewVec3(0, 0, -c.Radius)
	if !target.Compare(want, 1e-3) {
		t.Errorf("target in view space = %+v, want %+v", target, want)
	}
	eye := c.GetPosition().Transform(1, c.GetView())
	if !eye.Compare(math.NewVec3Zero(), 1e-3) {
		t.Errorf("eye in view space = %+v, want origin", eye)
	}
}

func TestCameraClamps(t *testing.T) {
	c := NewCamera(testConfig())

	c.Rotate(0, 1e6)
	if c.Phi > math.K_PI-phiMargin+1e-6 {
		t.Errorf("phi = %v not clamped below pi", c.Phi)
	}
	c.Rotate(0, -1e6)
	if c.Phi < phiMargin-1e-6 {
		t.Errorf("phi = %v not clamped above 0", c.Phi)
	}

	c.Zoom(1000)
	if c.Radius != c.MinRadius {
		t.Errorf("radius = %v, want min %v", c.Radius, c.MinRadius)
	}
	c.Zoom(-1000)
	if c.Radius != c.MaxRadius {
		t.Errorf("radius = %v, want max %v", c.Radius, c.MaxRadius)
	}
}

func TestCameraDolly(t *testing.T) {
	tests := []struct {
		name   string
		dx, dy float32
		want   float32
	}{
		{"drag right backs away", 20, 0, 11},
		{"drag down moves in", 0, 20, 9},
		{"diagonal cancels", 20, 20, 10},
		{"clamped at min", -1e6, 0, 5},
		{"clamped at max", 1e6, 0, 150},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCamera(testConfig())
			c.Dolly(tt.dx, tt.dy)
			if d := c.Radius - tt.want; d > 1e-4 || d < -1e-4 {
				t.Errorf("radius = %v, want %v", c.Radius, tt.want)
			}
		})
	}
}

func TestCameraUpdateOrbits(t *testing.T) {
	cfg := testConfig()
	cfg.OrbitSpeed = 90
	c := NewCamera(cfg)
	before := c.GetPosition()

	c.Update(1.0)
	if !c.IsDirty {
		t.Fatal("update should dirty the view")
	}
	after := c.GetPosition()
	if !after.Compare(math.NewVec3(0, 0, 10), 1e-3) {
		t.Errorf("after a quarter turn position = %+v, want (0, 0, 10)", after)
	}
	if d0, d1 := before.Distance(c.Target), after.Distance(c.Target); kabs(d0-d1) > 1e-3 {
		t.Errorf("orbit changed the radius: %v -> %v", d0, d1)
	}
}

func TestCameraConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CameraConfig)
		ok     bool
	}{
		{"default", func(*CameraConfig) {}, true},
		{"radius out of range", func(c *CameraConfig) { c.Radius = 1000 }, false},
		{"inverted radii", func(c *CameraConfig) { c.MinRadius, c.MaxRadius = 10, 5 }, false},
		{"phi at pole", func(c *CameraConfig) { c.Phi = 0 }, false},
		{"negative zoom", func(c *CameraConfig) { c.ZoomStep = -1 }, false},
		{"negative drag zoom", func(c *CameraConfig) { c.DragZoom = -0.1 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultCameraConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, core.ErrInvalidConfig) {
				t.Fatalf("want ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func kabs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
