package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spaghettifunk/citadel/engine/assets"
	"github.com/spaghettifunk/citadel/engine/core"
	"github.com/spaghettifunk/citadel/engine/platform"
	"github.com/spaghettifunk/citadel/engine/renderer"
	"github.com/spaghettifunk/citadel/engine/renderer/vulkan"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	EngineStageStopped
)

// A long stall (debugger, window drag) must not turn into one huge simulation step.
const maxDeltaTime = 0.25

type registration struct {
	code core.EventCode
	id   core.ListenerID
}

type Engine struct {
	currentStage Stage
	gameInstance *Game
	config       *ApplicationConfig
	isRunning    bool
	isSuspended  bool
	platform     *platform.Platform
	assetManager *assets.AssetManager
	renderer     *renderer.Renderer
	width        uint32
	height       uint32
	clock        *core.Clock
	lastTime     float64

	listeners []registration
}

func New(g *Game) (*Engine, error) {
	if g == nil || g.ApplicationConfig == nil {
		return nil, fmt.Errorf("%w: game and its application config are required", core.ErrInvalidConfig)
	}
	if err := g.ApplicationConfig.Validate(); err != nil {
		return nil, err
	}

	p, err := platform.New()
	if err != nil {
		return nil, err
	}

	am, err := assets.NewAssetManager(assets.DefaultDebounce)
	if err != nil {
		core.LogError("%s", err)
		return nil, err
	}

	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		config:       g.ApplicationConfig,
		clock:        core.NewClock(),
		platform:     p,
		assetManager: am,
		isRunning:    false,
		isSuspended:  false,
		width:        g.ApplicationConfig.Window.StartWidth,
		height:       g.ApplicationConfig.Window.StartHeight,
	}, nil
}

func (e *Engine) Initialize(ctx context.Context) error {
	if e.currentStage != EngineStageUninitialized {
		return fmt.Errorf("engine already initialized")
	}
	e.currentStage = EngineStageInitializing

	if err := core.SetLogLevel(e.config.LogLevel); err != nil {
		return err
	}
	if err := core.InputInitialize(); err != nil {
		return err
	}
	if err := core.MetricsInitialize(); err != nil {
		return err
	}

	// register some events
	e.register(core.EVENT_CODE_APPLICATION_QUIT, e.onEvent)
	e.register(core.EVENT_CODE_KEY_PRESSED, e.onKey)
	e.register(core.EVENT_CODE_RESIZED, e.onResized)

	if err := e.platform.Startup(e.config.Name,
		e.config.Window.StartPosX,
		e.config.Window.StartPosY,
		e.config.Window.StartWidth,
		e.config.Window.StartHeight); err != nil {
		return err
	}
	// HiDPI screens hand out more pixels than the window size asked for.
	e.width, e.height = e.platform.FramebufferSize()

	if err := e.assetManager.Initialize(e.config.AssetsDir); err != nil {
		return err
	}

	vertexShader, err := e.assetManager.LoadShader(e.config.Renderer.VertexShader)
	if err != nil {
		return fmt.Errorf("vertex shader: %w", err)
	}
	fragmentShader, err := e.assetManager.LoadShader(e.config.Renderer.FragmentShader)
	if err != nil {
		return fmt.Errorf("fragment shader: %w", err)
	}
	backendConfig, err := e.config.Renderer.BackendConfig(e.config.Name, e.width, e.height, vertexShader, fragmentShader)
	if err != nil {
		return err
	}

	e.renderer = renderer.New(vulkan.New(e.platform))
	if err := e.renderer.Initialize(backendConfig); err != nil {
		return err
	}

	e.gameInstance.Renderer = e.renderer
	e.gameInstance.Assets = e.assetManager
	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(ctx); err != nil {
			return fmt.Errorf("game initialize: %w", err)
		}
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	core.LogInfo("Engine initialized: %dx%d.", e.width, e.height)
	return nil
}

// Run drives the frame loop until the window closes, a quit event fires or ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine not initialized")
	}
	e.currentStage = EngineStageRunning
	e.isRunning = true

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.ElapsedSeconds()

	var sinceMetrics float64

	for e.isRunning {
		if ctx.Err() != nil {
			break
		}
		e.platform.PumpMessages()
		if e.platform.ShouldClose() {
			break
		}
		if err := e.pollAssetChanges(ctx); err != nil {
			return err
		}

		if e.isSuspended {
			// Nothing to draw to; don't spin.
			time.Sleep(10 * time.Millisecond)
			e.clock.Update()
			e.lastTime = e.clock.ElapsedSeconds()
			continue
		}

		// Update clock and get delta time.
		e.clock.Update()
		currentTime := e.clock.ElapsedSeconds()
		delta := min(currentTime-e.lastTime, maxDeltaTime)

		if e.gameInstance.FnUpdate != nil {
			if err := e.gameInstance.FnUpdate(delta); err != nil {
				core.LogError("Game update failed, shutting down.")
				return fmt.Errorf("game update: %w", err)
			}
		}

		// Call the game's render routine.
		if e.gameInstance.FnRender != nil {
			if err := e.gameInstance.FnRender(ctx, delta); err != nil {
				if errors.Is(err, context.Canceled) {
					break
				}
				core.LogError("Game render failed, shutting down.")
				return fmt.Errorf("game render: %w", err)
			}
		}

		// Input state is copied at the end of the frame so the next one sees what changed.
		if err := core.InputUpdate(delta); err != nil {
			return err
		}

		core.MetricsUpdate(delta)
		sinceMetrics += delta
		if e.config.MetricsInterval > 0 && sinceMetrics >= e.config.MetricsInterval {
			sinceMetrics = 0
			core.LogDebug("FPS: %5.1f (%4.1fms avg), frame %d", core.MetricsFPS(), core.MetricsFrameTime(), e.renderer.FrameNumber())
		}

		e.lastTime = currentTime
	}

	e.isRunning = false
	e.currentStage = EngineStageInitialized
	return nil
}

// pollAssetChanges hands every pending asset change to the game without blocking.
func (e *Engine) pollAssetChanges(ctx context.Context) error {
	for {
		select {
		case path, ok := <-e.assetManager.Changes():
			if !ok {
				return nil
			}
			core.LogDebug("Asset changed: %s", path)
			if e.gameInstance.FnOnAssetChanged == nil {
				continue
			}
			if err := e.gameInstance.FnOnAssetChanged(ctx, path); err != nil {
				// A bad edit must not take the application down.
				core.LogError("failed to apply change of '%s': %s", path, err)
			}
		default:
			return nil
		}
	}
}

func (e *Engine) Shutdown(ctx context.Context) error {
	if e.currentStage == EngineStageStopped || e.currentStage == EngineStageShuttingDown {
		return nil
	}
	e.currentStage = EngineStageShuttingDown
	e.isRunning = false

	var errs []error
	if e.renderer != nil {
		if err := e.renderer.WaitIdle(); err != nil {
			errs = append(errs, err)
		}
	}
	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("game shutdown: %w", err))
		}
	}
	if e.renderer != nil {
		if err := e.renderer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("renderer shutdown: %w", err))
		}
	}
	if err := e.assetManager.Shutdown(); err != nil && !errors.Is(err, assets.ErrClosed) {
		errs = append(errs, err)
	}
	if err := e.platform.Shutdown(); err != nil {
		errs = append(errs, err)
	}

	for _, l := range e.listeners {
		core.EventUnregister(l.code, l.id)
	}
	e.listeners = nil
	if err := core.InputShutdown(); err != nil {
		errs = append(errs, err)
	}

	e.currentStage = EngineStageStopped
	core.LogInfo("Engine shut down.")
	return errors.Join(errs...)
}

func (e *Engine) register(code core.EventCode, fn core.FnOnEvent) {
	e.listeners = append(e.listeners, registration{code: code, id: core.EventRegister(code, fn)})
}

func (e *Engine) onEvent(context core.EventContext) bool {
	switch context.Type {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning = false
		return true
	}
	return false
}

func (e *Engine) onKey(context core.EventContext) bool {
	ev, ok := context.Data.(*core.KeyEvent)
	if !ok {
		return false
	}
	if ev.KeyCode == core.KEY_ESCAPE {
		// NOTE: Technically firing an event to itself, but there may be other listeners.
		core.EventFire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
		return true
	}
	return false
}

func (e *Engine) onResized(context core.EventContext) bool {
	ev, ok := context.Data.(*core.SystemEvent)
	if !ok {
		return false
	}
	// Check if different. If so, trigger a resize event.
	if ev.WindowWidth == e.width && ev.WindowHeight == e.height {
		return false
	}
	e.width = ev.WindowWidth
	e.height = ev.WindowHeight

	core.LogDebug("Window resize: %d, %d", e.width, e.height)

	// Handle minimization
	if e.width == 0 || e.height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return true
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
			core.LogError("game resize: %s", err)
		}
	}
	if err := e.renderer.OnResize(e.width, e.height); err != nil {
		core.LogError("renderer resize: %s", err)
	}
	// Other listeners may want to know about this too.
	return false
}
