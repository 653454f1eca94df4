package renderer

import (
	"context"
	"errors"
	"fmt"

	"github.com/spaghettifunk/citadel/engine/core"
	"github.com/spaghettifunk/citadel/engine/frame"
	"github.com/spaghettifunk/citadel/engine/renderer/metadata"
	"github.com/spaghettifunk/citadel/engine/scene"
)

var (
	ErrNoScene        = errors.New("no scene loaded")
	ErrSceneOutgrown  = errors.New("scene has more objects than its frame resources")
	ErrNotInitialized = errors.New("renderer not initialized")
)

/**
 * @brief The front end of the renderer. Owns the frame resource ring and
 * drives the backend through one frame at a time.
 */
type Renderer struct {
	backend     RendererBackend
	config      *metadata.RendererBackendConfig
	initialized bool

	scene    *scene.Scene
	ring     *frame.Ring
	timeline *frame.Timeline
	layout   frame.DescriptorLayout

	wireframe bool

	frameNumber uint64
	skipped     uint64
}

func New(backend RendererBackend) *Renderer {
	return &Renderer{backend: backend}
}

func (r *Renderer) Initialize(config *metadata.RendererBackendConfig) error {
	if err := r.backend.Initialize(config); err != nil {
		return fmt.Errorf("renderer backend: %w", err)
	}
	r.config = config
	r.initialized = true
	r.SetWireframe(config.Wireframe)
	core.LogInfo("Renderer initialized with %d frames in flight.", r.backend.FramesInFlight())
	return nil
}

func (r *Renderer) FramesInFlight() int {
	return r.backend.FramesInFlight()
}

// DescriptorLayout is the descriptor arithmetic for the loaded scene.
func (r *Renderer) DescriptorLayout() frame.DescriptorLayout {
	return r.layout
}

// SetWireframe switches triangle fill for the frames that follow and reports
// the mode in effect. Without device support it stays solid.
func (r *Renderer) SetWireframe(on bool) bool {
	if on && !r.backend.SupportsWireframe() {
		core.LogWarn("Wireframe requested but the device cannot draw polygons as lines.")
		on = false
	}
	r.wireframe = on
	return r.wireframe
}

func (r *Renderer) Wireframe() bool {
	return r.wireframe
}

// FrameNumber counts submitted frames.
func (r *Renderer) FrameNumber() uint64 {
	return r.frameNumber
}

/**
 * @brief Uploads the scene's geometry and creates frame resources sized to
 * its object count. A previously loaded scene is unloaded first. On failure
 * nothing of the new scene is left on the backend.
 */
func (r *Renderer) LoadScene(ctx context.Context, s *scene.Scene) error {
	if !r.initialized {
		return ErrNotInitialized
	}
	if s.FrameCount() != r.backend.FramesInFlight() {
		return fmt.Errorf("%w: scene built for %d frames, renderer has %d", core.ErrInvalidConfig, s.FrameCount(), r.backend.FramesInFlight())
	}
	if r.scene != nil {
		if err := r.UnloadScene(ctx); err != nil {
			return err
		}
	}

	var uploaded []*scene.MeshGeometry
	release := func() {
		for _, g := range uploaded {
			r.backend.DestroyGeometry(g)
		}
	}
	for _, g := range s.Geometries() {
		if err := r.backend.CreateGeometry(g); err != nil {
			release()
			return fmt.Errorf("upload geometry '%s': %w", g.Name, err)
		}
		uploaded = append(uploaded, g)
	}

	objectCount := max(s.ObjectCount(), 1)
	resources, err := r.backend.CreateFrameResources(objectCount)
	if err != nil {
		release()
		return fmt.Errorf("create frame resources: %w", err)
	}
	timeline := frame.NewTimeline(r.backend.Fences(), len(resources))
	ring, err := frame.NewRing(resources, timeline)
	if err != nil {
		r.backend.DestroyFrameResources()
		release()
		return err
	}
	r.timeline = timeline
	r.ring = ring
	r.layout = frame.DescriptorLayout{ObjectCount: objectCount, FrameCount: len(resources)}
	r.scene = s
	s.MarkAllDirty()

	core.LogInfo("Scene loaded: %d render items, %d descriptors.", len(s.Items()), r.layout.Total())
	return nil
}

// UnloadScene waits for the GPU and releases the scene's GPU resources.
func (r *Renderer) UnloadScene(ctx context.Context) error {
	if r.scene == nil {
		return nil
	}
	if err := r.ring.Drain(ctx); err != nil {
		return err
	}
	if err := r.backend.WaitIdle(); err != nil {
		return err
	}
	r.backend.DestroyFrameResources()
	for _, g := range r.scene.Geometries() {
		r.backend.DestroyGeometry(g)
	}
	r.scene = nil
	r.ring = nil
	r.timeline = nil
	return nil
}

/**
 * @brief Renders one frame of the loaded scene:
 *   1. move to the next frame resource, waiting on its fence if the GPU is still using it
 *   2. write constants for dirty objects and the pass
 *   3. record one indexed draw per render item and present
 *   4. stamp the frame resource with the fence value of this submission
 * A frame skipped by the backend (swapchain rebuild) is not an error.
 */
func (r *Renderer) DrawFrame(ctx context.Context, s *scene.Scene, pass *frame.PassConstants) error {
	if r.scene == nil || r.scene != s {
		return ErrNoScene
	}
	if s.ObjectCount() > r.layout.ObjectCount {
		return fmt.Errorf("%w: %d > %d", ErrSceneOutgrown, s.ObjectCount(), r.layout.ObjectCount)
	}

	fr, err := r.ring.Advance(ctx)
	if err != nil {
		return err
	}
	if _, err := frame.UpdateObjectConstants(fr, s.Items()); err != nil {
		return err
	}
	if err := frame.UpdatePassConstants(fr, pass); err != nil {
		return err
	}

	if err := r.backend.BeginFrame(ctx, fr); err != nil {
		if errors.Is(err, core.ErrSwapchainBooting) {
			r.skipped++
			return nil
		}
		return fmt.Errorf("begin frame: %w", err)
	}
	if err := r.backend.DrawRenderItems(fr, s.Items(), r.wireframe); err != nil {
		return fmt.Errorf("draw: %w", err)
	}
	if err := r.backend.EndFrame(fr); err != nil {
		return fmt.Errorf("end frame: %w", err)
	}
	fr.Fence = r.timeline.Signal(fr.Index)
	r.frameNumber++
	return nil
}

func (r *Renderer) OnResize(width, height uint32) error {
	if !r.initialized {
		return nil
	}
	return r.backend.Resized(width, height)
}

// WaitIdle blocks until the GPU has finished everything submitted so far.
func (r *Renderer) WaitIdle() error {
	return r.backend.WaitIdle()
}

func (r *Renderer) Shutdown(ctx context.Context) error {
	if !r.initialized {
		return nil
	}
	if err := r.UnloadScene(ctx); err != nil {
		core.LogError("failed to unload scene: %s", err)
	}
	r.initialized = false
	return r.backend.Shutdown()
}
