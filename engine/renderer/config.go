package renderer

import (
	"fmt"

	"github.com/spaghettifunk/citadel/engine/core"
	"github.com/spaghettifunk/citadel/engine/frame"
	"github.com/spaghettifunk/citadel/engine/math"
	"github.com/spaghettifunk/citadel/engine/renderer/metadata"
)

// Config is the [renderer] table of the application configuration.
type Config struct {
	FramesInFlight int        `toml:"frames_in_flight"`
	VSync          bool       `toml:"vsync"`
	Wireframe      bool       `toml:"wireframe"`
	CullMode       string     `toml:"cull_mode"`
	ClearColour    [4]float32 `toml:"clear_colour"`
	Validation     bool       `toml:"validation"`
	VertexShader   string     `toml:"vertex_shader"`
	FragmentShader string     `toml:"fragment_shader"`
	FieldOfView    float32    `toml:"field_of_view"`
	NearClip       float32    `toml:"near_clip"`
	FarClip        float32    `toml:"far_clip"`
}

func DefaultConfig() Config {
	return Config{
		FramesInFlight: frame.DefaultFrameCount,
		VSync:          true,
		CullMode:       "back",
		ClearColour:    [4]float32{0.53, 0.71, 0.92, 1.0},
		VertexShader:   "shaders/castle.vert.spv",
		FragmentShader: "shaders/castle.frag.spv",
		FieldOfView:    45.0,
		NearClip:       0.1,
		FarClip:        1000.0,
	}
}

func (c Config) Validate() error {
	if c.FramesInFlight < 1 || c.FramesInFlight > 8 {
		return fmt.Errorf("%w: frames_in_flight must be between 1 and 8, got %d", core.ErrInvalidConfig, c.FramesInFlight)
	}
	if _, err := metadata.ParseFaceCullMode(c.CullMode); err != nil {
		return fmt.Errorf("%w: %w", core.ErrInvalidConfig, err)
	}
	if c.VertexShader == "" || c.FragmentShader == "" {
		return fmt.Errorf("%w: vertex_shader and fragment_shader are required", core.ErrInvalidConfig)
	}
	if c.FieldOfView <= 0 || c.FieldOfView >= 180 {
		return fmt.Errorf("%w: field_of_view must be in (0, 180) degrees, got %v", core.ErrInvalidConfig, c.FieldOfView)
	}
	if c.NearClip <= 0 || c.FarClip <= c.NearClip {
		return fmt.Errorf("%w: need 0 < near_clip < far_clip, got %v/%v", core.ErrInvalidConfig, c.NearClip, c.FarClip)
	}
	return nil
}

// BackendConfig turns the file settings plus loaded shader code into what the backend consumes.
func (c Config) BackendConfig(appName string, width, height uint32, vertexShader, fragmentShader []uint32) (*metadata.RendererBackendConfig, error) {
	cull, err := metadata.ParseFaceCullMode(c.CullMode)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidConfig, err)
	}
	return &metadata.RendererBackendConfig{
		ApplicationName: appName,
		Width:           width,
		Height:          height,
		FramesInFlight:  c.FramesInFlight,
		VSync:           c.VSync,
		Wireframe:       c.Wireframe,
		CullMode:        cull,
		ClearColour:     math.NewVec4(c.ClearColour[0], c.ClearColour[1], c.ClearColour[2], c.ClearColour[3]),
		Validation:      c.Validation,
		VertexShader:    vertexShader,
		FragmentShader:  fragmentShader,
	}, nil
}

// Projection builds the perspective matrix for a framebuffer of the given size.
func (c Config) Projection(width, height uint32) math.Mat4 {
	aspect := float32(1)
	if height > 0 {
		aspect = float32(width) / float32(height)
	}
	return math.NewMat4Perspective(math.DegToRad(c.FieldOfView), aspect, c.NearClip, c.FarClip)
}
