package engine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/citadel/engine/core"
)

func TestDecodeConfigKeepsDefaults(t *testing.T) {
	config, err := DecodeConfig([]byte(`
name = "Test Castle"

[window]
width = 800

[renderer]
vsync = false
clear_colour = [0.1, 0.2, 0.3, 1.0]

[camera]
radius = 30.0
`))
	if err != nil {
		t.Fatal(err)
	}
	def := DefaultConfig()
	if config.Name != "Test Castle" {
		t.Errorf("name = %q", config.Name)
	}
	if config.Window.StartWidth != 800 || config.Window.StartHeight != def.Window.StartHeight {
		t.Errorf("window = %dx%d", config.Window.StartWidth, config.Window.StartHeight)
	}
	if config.Renderer.VSync || config.Renderer.FramesInFlight != def.Renderer.FramesInFlight {
		t.Errorf("renderer = %+v", config.Renderer)
	}
	if config.Renderer.ClearColour != [4]float32{0.1, 0.2, 0.3, 1.0} {
		t.Errorf("clear colour = %v", config.Renderer.ClearColour)
	}
	if config.Camera.Radius != 30 || config.Camera.MaxRadius != def.Camera.MaxRadius {
		t.Errorf("camera = %+v", config.Camera)
	}
}

func TestDecodeConfigRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"syntax", "name = "},
		{"wrong type", "[window]\nwidth = \"wide\""},
		{"empty name", `name = ""`},
		{"zero height", "[window]\nheight = 0"},
		{"too many frames", "[renderer]\nframes_in_flight = 9"},
		{"unknown cull mode", "[renderer]\ncull_mode = \"sideways\""},
		{"clip planes", "[renderer]\nnear_clip = 10.0\nfar_clip = 1.0"},
		{"camera radius", "[camera]\nradius = 1000.0"},
		{"negative metrics", "metrics_interval = -1.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeConfig([]byte(tt.doc))
			if !errors.Is(err, core.ErrInvalidConfig) {
				t.Fatalf("want ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "citadel.toml")
	if err := os.WriteFile(path, []byte("log_level = \"debug\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	config, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if config.LogLevel != "debug" || config.Path != path {
		t.Errorf("config = %+v", config)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: %v", err)
	}
}
