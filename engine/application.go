package engine

import (
	"github.com/spaghettifunk/citadel/engine/renderer"
	"github.com/spaghettifunk/citadel/engine/renderer/components"
)

type WindowConfig struct {
	// Window starting position x axis, if applicable.
	StartPosX uint32 `toml:"x"`
	// Window starting position y axis, if applicable.
	StartPosY uint32 `toml:"y"`
	// Window starting width, if applicable.
	StartWidth uint32 `toml:"width"`
	// Window starting height, if applicable.
	StartHeight uint32 `toml:"height"`
}

type ApplicationConfig struct {
	// The application name used in windowing, if applicable.
	Name     string `toml:"name"`
	LogLevel string `toml:"log_level"`
	// Directory watched for asset changes, relative to the working directory.
	AssetsDir string `toml:"assets_dir"`
	// Seconds between metrics log lines. Zero disables them.
	MetricsInterval float64 `toml:"metrics_interval"`

	Window   WindowConfig            `toml:"window"`
	Renderer renderer.Config         `toml:"renderer"`
	Camera   components.CameraConfig `toml:"camera"`

	// Path of the file this configuration was loaded from, if any.
	Path string `toml:"-"`
}
