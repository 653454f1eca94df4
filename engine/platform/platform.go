package platform

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/citadel/engine/core"
)

var startTime float64 = 0

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

type Platform struct {
	Window *glfw.Window
}

func New() (*Platform, error) {
	return &Platform{
		Window: nil,
	}, nil
}

func (p *Platform) Startup(applicationName string, x uint32, y uint32, width uint32, height uint32) error {
	if err := glfw.Init(); err != nil {
		core.LogError("failed to initialize glfw: %s", err)
		return err
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return fmt.Errorf("glfw reports no Vulkan loader")
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Required for Vulkan.

	window, err := glfw.CreateWindow(int(width), int(height), applicationName, nil, nil)
	if err != nil {
		core.LogError("failed to create window: %s", err)
		glfw.Terminate()
		return err
	}
	p.Window = window

	p.Window.SetKeyCallback(keyCallback)
	p.Window.SetMouseButtonCallback(mouseButtonCallback)
	p.Window.SetCursorPosCallback(cursorPosCallback)
	p.Window.SetScrollCallback(scrollCallback)
	p.Window.SetFramebufferSizeCallback(framebufferSizeCallback)
	p.Window.SetPos(int(x), int(y))
	p.Window.Show()

	startTime = glfw.GetTime()

	return nil
}

func (p *Platform) Shutdown() error {
	if p.Window != nil {
		p.Window.Destroy()
		p.Window = nil
	}
	glfw.Terminate()
	return nil
}

// PumpMessages processes pending window events. Input and resize callbacks run from here.
func (p *Platform) PumpMessages() {
	glfw.PollEvents()
}

func (p *Platform) ShouldClose() bool {
	return p.Window == nil || p.Window.ShouldClose()
}

// FramebufferSize is the drawable size in pixels, which differs from the window size on HiDPI screens.
func (p *Platform) FramebufferSize() (uint32, uint32) {
	w, h := p.Window.GetFramebufferSize()
	return uint32(max(w, 0)), uint32(max(h, 0))
}

// GetAbsoluteTime is the number of seconds since Startup.
func (p *Platform) GetAbsoluteTime() float64 {
	return glfw.GetTime() - startTime
}

func (p *Platform) GetRequiredExtensionNames() []string {
	return p.Window.GetRequiredInstanceExtensions()
}

// CreateWindowSurface returns the raw VkSurfaceKHR for the window.
func (p *Platform) CreateWindowSurface(instance vk.Instance) (uintptr, error) {
	return p.Window.CreateWindowSurface(instance, nil)
}

var keyMap = map[glfw.Key]core.KeyCode{
	glfw.KeyBackspace:  core.KEY_BACKSPACE,
	glfw.KeyTab:        core.KEY_TAB,
	glfw.KeyEnter:      core.KEY_ENTER,
	glfw.KeyLeftShift:  core.KEY_SHIFT,
	glfw.KeyRightShift: core.KEY_SHIFT,
	glfw.KeyEscape:     core.KEY_ESCAPE,
	glfw.KeySpace:      core.KEY_SPACE,
	glfw.KeyLeft:       core.KEY_LEFT,
	glfw.KeyUp:         core.KEY_UP,
	glfw.KeyRight:      core.KEY_RIGHT,
	glfw.KeyDown:       core.KEY_DOWN,
}

// translateKey maps a GLFW key to the engine key code. Letters and digits share ASCII values.
func translateKey(key glfw.Key) (core.KeyCode, bool) {
	if code, ok := keyMap[key]; ok {
		return code, true
	}
	switch {
	case key >= glfw.KeyA && key <= glfw.KeyZ,
		key >= glfw.Key0 && key <= glfw.Key9:
		return core.KeyCode(key), true
	case key >= glfw.KeyF1 && key <= glfw.KeyF12:
		return core.KEY_F1 + core.KeyCode(key-glfw.KeyF1), true
	}
	return 0, false
}

func translateButton(button glfw.MouseButton) (core.Button, bool) {
	switch button {
	case glfw.MouseButtonLeft:
		return core.BUTTON_LEFT, true
	case glfw.MouseButtonRight:
		return core.BUTTON_RIGHT, true
	case glfw.MouseButtonMiddle:
		return core.BUTTON_MIDDLE, true
	}
	return 0, false
}

func keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action == glfw.Repeat {
		return
	}
	code, ok := translateKey(key)
	if !ok {
		return
	}
	if err := core.InputProcessKey(code, action == glfw.Press); err != nil {
		core.LogError("key %d: %s", code, err)
	}
}

func mouseButtonCallback(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	b, ok := translateButton(button)
	if !ok {
		return
	}
	if err := core.InputProcessButton(b, action == glfw.Press); err != nil {
		core.LogError("mouse button %d: %s", b, err)
	}
}

func cursorPosCallback(w *glfw.Window, xpos, ypos float64) {
	if xpos < 0 || ypos < 0 {
		return
	}
	if err := core.InputProcessMouseMove(uint16(xpos), uint16(ypos)); err != nil {
		core.LogError("mouse move: %s", err)
	}
}

func scrollCallback(w *glfw.Window, xoff, yoff float64) {
	var delta int8
	switch {
	case yoff > 0:
		delta = 1
	case yoff < 0:
		delta = -1
	default:
		return
	}
	if err := core.InputProcessMouseWheel(delta); err != nil {
		core.LogError("mouse wheel: %s", err)
	}
}

func framebufferSizeCallback(w *glfw.Window, width, height int) {
	core.EventFire(core.EventContext{
		Type: core.EVENT_CODE_RESIZED,
		Data: &core.SystemEvent{
			WindowWidth:  uint32(max(width, 0)),
			WindowHeight: uint32(max(height, 0)),
		},
	})
}
