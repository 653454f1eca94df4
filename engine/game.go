package engine

import (
	"context"

	"github.com/spaghettifunk/citadel/engine/assets"
	"github.com/spaghettifunk/citadel/engine/renderer"
)

/**
 * @brief The application side of the engine. The engine fills in Renderer
 * and Assets before FnInitialize runs. Hooks left nil are skipped.
 */
type Game struct {
	ApplicationConfig *ApplicationConfig
	Renderer          *renderer.Renderer
	Assets            *assets.AssetManager
	State             interface{}

	FnInitialize     Initialize
	FnUpdate         Update
	FnRender         Render
	FnOnResize       OnResize
	FnOnAssetChanged OnAssetChanged
	FnShutdown       Shutdown
}

type Initialize func(ctx context.Context) error
type Update func(deltaTime float64) error
type Render func(ctx context.Context, deltaTime float64) error
type OnResize func(width uint32, height uint32) error

// OnAssetChanged receives asset-root relative paths of files written on disk.
type OnAssetChanged func(ctx context.Context, path string) error
type Shutdown func(ctx context.Context) error
