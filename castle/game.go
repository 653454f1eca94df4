package castle

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spaghettifunk/citadel/engine"
	"github.com/spaghettifunk/citadel/engine/core"
	"github.com/spaghettifunk/citadel/engine/frame"
	"github.com/spaghettifunk/citadel/engine/math"
	"github.com/spaghettifunk/citadel/engine/renderer/components"
	"github.com/spaghettifunk/citadel/engine/scene"
)

// Radians per second when turning the camera with the arrow keys.
const keyboardTurnSpeed = 1.5

type Game struct {
	*engine.Game
}

type gameState struct {
	layout Layout
	scene  *scene.Scene
	camera *components.Camera

	width     uint32
	height    uint32
	totalTime float64

	orbitSpeed  float32
	orbitPaused bool
	wireframe   bool

	listeners []listener
}

type listener struct {
	code core.EventCode
	id   core.ListenerID
}

func NewGame(config *engine.ApplicationConfig, layout Layout) (*Game, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	g := &Game{
		Game: &engine.Game{
			ApplicationConfig: config,
			State:             &gameState{layout: layout},
		},
	}
	g.FnInitialize = g.Initialize
	g.FnUpdate = g.Update
	g.FnRender = g.Render
	g.FnOnResize = g.OnResize
	g.FnOnAssetChanged = g.OnAssetChanged
	g.FnShutdown = g.Shutdown
	return g, nil
}

func (g *Game) state() *gameState {
	return g.State.(*gameState)
}

func (g *Game) Initialize(ctx context.Context) error {
	core.LogInfo("building castle...")
	state := g.state()

	state.camera = components.NewCamera(g.ApplicationConfig.Camera)
	state.orbitSpeed = state.camera.OrbitSpeed
	state.wireframe = g.Renderer.Wireframe()

	s, err := BuildScene(ctx, state.layout, g.Renderer.FramesInFlight())
	if err != nil {
		return err
	}
	if err := g.Renderer.LoadScene(ctx, s); err != nil {
		return err
	}
	state.scene = s

	state.listeners = append(state.listeners,
		listener{core.EVENT_CODE_MOUSE_WHEEL, core.EventRegister(core.EVENT_CODE_MOUSE_WHEEL, g.onWheel)},
		listener{core.EVENT_CODE_KEY_PRESSED, core.EventRegister(core.EVENT_CODE_KEY_PRESSED, g.onKey)},
	)
	return nil
}

func (g *Game) Update(deltaTime float64) error {
	state := g.state()
	dt := float32(deltaTime)

	x, y := core.InputGetMousePosition()
	px, py := core.InputGetPreviousMousePosition()
	dx, dy := float32(x)-float32(px), float32(y)-float32(py)
	switch {
	case core.InputIsButtonDown(core.BUTTON_LEFT):
		if dx != 0 || dy != 0 {
			state.camera.Rotate(dx, dy)
		}
	case core.InputIsButtonDown(core.BUTTON_RIGHT):
		if dx != 0 || dy != 0 {
			state.camera.Dolly(dx, dy)
		}
	default:
		state.camera.Update(deltaTime)
	}

	if core.InputIsKeyDown(core.KEY_LEFT) {
		state.camera.Theta = math.WrapAngle(state.camera.Theta - keyboardTurnSpeed*dt)
		state.camera.IsDirty = true
	}
	if core.InputIsKeyDown(core.KEY_RIGHT) {
		state.camera.Theta = math.WrapAngle(state.camera.Theta + keyboardTurnSpeed*dt)
		state.camera.IsDirty = true
	}
	if core.InputIsKeyDown(core.KEY_UP) {
		state.camera.Zoom(dt * 4)
	}
	if core.InputIsKeyDown(core.KEY_DOWN) {
		state.camera.Zoom(-dt * 4)
	}
	return nil
}

func (g *Game) Render(ctx context.Context, deltaTime float64) error {
	state := g.state()
	if state.width == 0 || state.height == 0 {
		return nil
	}
	state.totalTime += deltaTime

	rc := g.ApplicationConfig.Renderer
	pass := frame.NewPassConstants(
		state.camera.GetView(),
		rc.Projection(state.width, state.height),
		state.camera.GetPosition(),
		state.width, state.height,
		rc.NearClip, rc.FarClip,
	)
	pass.TotalTime = float32(state.totalTime)
	pass.DeltaTime = float32(deltaTime)

	if state.wireframe != g.Renderer.Wireframe() {
		state.wireframe = g.Renderer.SetWireframe(state.wireframe)
	}

	return g.Renderer.DrawFrame(ctx, state.scene, &pass)
}

func (g *Game) OnResize(width uint32, height uint32) error {
	state := g.state()
	state.width = width
	state.height = height
	return nil
}

// OnAssetChanged rebuilds the castle when the configuration file it was loaded from changes.
func (g *Game) OnAssetChanged(ctx context.Context, path string) error {
	if g.ApplicationConfig.Path == "" || !samePath(g.Assets.Path(path), g.ApplicationConfig.Path) {
		return nil
	}
	layout, err := LoadLayout(g.ApplicationConfig.Path)
	if err != nil {
		return err
	}
	return g.Reload(ctx, layout)
}

/**
 * @brief Switches the castle to a new layout. When the shapes are unchanged
 * only the transforms of the existing items are rewritten; anything else
 * rebuilds and re-uploads the whole scene.
 */
func (g *Game) Reload(ctx context.Context, layout Layout) error {
	state := g.state()
	placements, err := Place(layout)
	if err != nil {
		return err
	}

	if SameShape(state.layout, layout) {
		if err := Apply(state.scene, placements); err == nil {
			state.layout = layout
			core.LogInfo("Castle layout reloaded: %d objects moved.", len(placements))
			return nil
		}
	}

	s, err := BuildScene(ctx, layout, g.Renderer.FramesInFlight())
	if err != nil {
		return err
	}
	if err := g.Renderer.LoadScene(ctx, s); err != nil {
		// The old scene was unloaded; put it back so the loop can keep drawing.
		if rerr := g.Renderer.LoadScene(ctx, state.scene); rerr != nil {
			return errors.Join(err, fmt.Errorf("restore previous castle: %w", rerr))
		}
		return err
	}
	state.scene = s
	state.layout = layout
	core.LogInfo("Castle rebuilt: %d objects.", len(placements))
	return nil
}

func (g *Game) Shutdown(ctx context.Context) error {
	state := g.state()
	for _, l := range state.listeners {
		core.EventUnregister(l.code, l.id)
	}
	state.listeners = nil
	if g.Renderer == nil {
		return nil
	}
	return g.Renderer.UnloadScene(ctx)
}

func (g *Game) onWheel(context core.EventContext) bool {
	ev, ok := context.Data.(*core.MouseEvent)
	if !ok {
		return false
	}
	g.state().camera.Zoom(float32(ev.Scroll))
	return true
}

func (g *Game) onKey(context core.EventContext) bool {
	ev, ok := context.Data.(*core.KeyEvent)
	if !ok {
		return false
	}
	state := g.state()
	switch ev.KeyCode {
	case core.KEY_1:
		state.wireframe = !state.wireframe
		return true
	case core.KEY_P:
		state.orbitPaused = !state.orbitPaused
		if state.orbitPaused {
			state.camera.OrbitSpeed = 0
		} else {
			state.camera.OrbitSpeed = state.orbitSpeed
		}
		return true
	case core.KEY_R:
		state.camera = components.NewCamera(g.ApplicationConfig.Camera)
		if state.orbitPaused {
			state.camera.OrbitSpeed = 0
		}
		return true
	}
	return false
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
