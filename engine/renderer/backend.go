package renderer

import (
	"context"

	"github.com/spaghettifunk/citadel/engine/frame"
	"github.com/spaghettifunk/citadel/engine/renderer/metadata"
	"github.com/spaghettifunk/citadel/engine/scene"
)

/**
 * @brief The graphics API side of the renderer. Calls arrive from the render
 * loop goroutine only. BeginFrame returns core.ErrSwapchainBooting when the
 * frame has to be skipped (swapchain out of date or window minimised).
 */
type RendererBackend interface {
	Initialize(config *metadata.RendererBackendConfig) error
	Shutdown() error
	Resized(width, height uint32) error

	// FramesInFlight is the number of frame resource slots the backend keeps sync objects for.
	FramesInFlight() int
	// Fences exposes the per-slot fences so the front end can build a timeline over them.
	Fences() frame.SlotFences
	// UniformAlignment is the minimum offset alignment for uniform buffer elements.
	UniformAlignment() uint64

	CreateGeometry(geometry *scene.MeshGeometry) error
	DestroyGeometry(geometry *scene.MeshGeometry)

	CreateFrameResources(objectCount int) ([]*frame.FrameResource, error)
	DestroyFrameResources()

	BeginFrame(ctx context.Context, fr *frame.FrameResource) error
	// SupportsWireframe reports whether DrawRenderItems can draw triangles as lines.
	SupportsWireframe() bool
	DrawRenderItems(fr *frame.FrameResource, items []*scene.RenderItem, wireframe bool) error
	EndFrame(fr *frame.FrameResource) error

	// WaitIdle blocks until the device has finished all submitted work.
	WaitIdle() error
}
