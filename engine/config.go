package engine

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/citadel/engine/core"
	"github.com/spaghettifunk/citadel/engine/renderer"
	"github.com/spaghettifunk/citadel/engine/renderer/components"
)

func DefaultConfig() *ApplicationConfig {
	return &ApplicationConfig{
		Name:            "Citadel",
		LogLevel:        "info",
		AssetsDir:       "assets",
		MetricsInterval: 5,
		Window: WindowConfig{
			StartPosX:   100,
			StartPosY:   100,
			StartWidth:  1280,
			StartHeight: 720,
		},
		Renderer: renderer.DefaultConfig(),
		Camera:   components.DefaultCameraConfig(),
	}
}

// DecodeConfig reads a TOML document over the defaults, so missing keys keep their default value.
func DecodeConfig(data []byte) (*ApplicationConfig, error) {
	config := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(config); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("%w: line %d column %d: %s", core.ErrInvalidConfig, row, col, derr.Error())
		}
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidConfig, err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func LoadConfig(path string) (*ApplicationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	config, err := DecodeConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	config.Path = path
	return config, nil
}

func (c *ApplicationConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", core.ErrInvalidConfig)
	}
	if c.Window.StartWidth == 0 || c.Window.StartHeight == 0 {
		return fmt.Errorf("%w: window size must be positive, got %dx%d", core.ErrInvalidConfig, c.Window.StartWidth, c.Window.StartHeight)
	}
	if c.MetricsInterval < 0 {
		return fmt.Errorf("%w: metrics_interval must not be negative", core.ErrInvalidConfig)
	}
	if err := c.Renderer.Validate(); err != nil {
		return fmt.Errorf("renderer: %w", err)
	}
	if err := c.Camera.Validate(); err != nil {
		return fmt.Errorf("camera: %w", err)
	}
	return nil
}
