package castle

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spaghettifunk/citadel/engine"
	"github.com/spaghettifunk/citadel/engine/assets"
	"github.com/spaghettifunk/citadel/engine/core"
	"github.com/spaghettifunk/citadel/engine/frame"
	"github.com/spaghettifunk/citadel/engine/renderer"
	"github.com/spaghettifunk/citadel/engine/renderer/metadata"
	"github.com/spaghettifunk/citadel/engine/scene"
)

const testFrames = 2

// gpu stands in for the Vulkan backend. It tracks live geometry and lets
// every fence complete as soon as it is waited on.
type gpu struct {
	signaled  []bool
	live      map[uint32]string
	nextID    uint32
	uploads   int
	framesErr error
	wireframe []bool
}

func newGPU() *gpu {
	return &gpu{signaled: make([]bool, testFrames), live: map[uint32]string{}}
}

func (b *gpu) Initialize(*metadata.RendererBackendConfig) error { return nil }
func (b *gpu) Shutdown() error                                  { return nil }
func (b *gpu) Resized(uint32, uint32) error                     { return nil }
func (b *gpu) FramesInFlight() int                              { return testFrames }
func (b *gpu) Fences() frame.SlotFences                         { return b }
func (b *gpu) UniformAlignment() uint64                         { return frame.DefaultConstantBufferAlignment }
func (b *gpu) SupportsWireframe() bool                          { return true }

func (b *gpu) CreateGeometry(g *scene.MeshGeometry) error {
	b.nextID++
	g.InternalID = b.nextID
	b.live[g.InternalID] = g.Name
	b.uploads++
	return nil
}

func (b *gpu) DestroyGeometry(g *scene.MeshGeometry) {
	delete(b.live, g.InternalID)
}

func (b *gpu) CreateFrameResources(objectCount int) ([]*frame.FrameResource, error) {
	if err := b.framesErr; err != nil {
		b.framesErr = nil
		return nil, err
	}
	out := make([]*frame.FrameResource, testFrames)
	for i := range out {
		out[i] = &frame.FrameResource{
			Index:    i,
			ObjectCB: frame.NewHostBuffer(objectCount, frame.ObjectConstantsSize, b.UniformAlignment()),
			PassCB:   frame.NewHostBuffer(1, frame.PassConstantsSize, b.UniformAlignment()),
		}
	}
	return out, nil
}

func (b *gpu) DestroyFrameResources() {}

func (b *gpu) BeginFrame(context.Context, *frame.FrameResource) error { return nil }

func (b *gpu) DrawRenderItems(_ *frame.FrameResource, _ []*scene.RenderItem, wireframe bool) error {
	b.wireframe = append(b.wireframe, wireframe)
	return nil
}

func (b *gpu) EndFrame(fr *frame.FrameResource) error {
	b.signaled[fr.Index] = false
	return nil
}

func (b *gpu) WaitIdle() error {
	for i := range b.signaled {
		b.signaled[i] = true
	}
	return nil
}

func (b *gpu) Signaled(slot int) (bool, error) { return b.signaled[slot], nil }

func (b *gpu) WaitSlot(slot int, _ time.Duration) (bool, error) {
	b.signaled[slot] = true
	return true, nil
}

func startedGame(t *testing.T, config *engine.ApplicationConfig) (*Game, *gpu) {
	t.Helper()
	b := newGPU()
	r := renderer.New(b)
	if err := r.Initialize(&metadata.RendererBackendConfig{FramesInFlight: testFrames}); err != nil {
		t.Fatal(err)
	}
	g, err := NewGame(config, DefaultLayout())
	if err != nil {
		t.Fatal(err)
	}
	g.Renderer = r
	if err := g.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := g.Shutdown(context.Background()); err != nil {
			t.Error(err)
		}
	})
	return g, b
}

func TestReloadMovesItemsWhenShapesMatch(t *testing.T) {
	g, b := startedGame(t, engine.DefaultConfig())
	old := g.state().scene

	l := DefaultLayout()
	l.Rotation = 90
	if err := g.Reload(context.Background(), l); err != nil {
		t.Fatal(err)
	}
	if g.state().scene != old {
		t.Error("a heading change rebuilt the scene")
	}
	if b.uploads != 1 {
		t.Errorf("geometry uploaded %d times, want 1", b.uploads)
	}
	if g.state().layout.Rotation != 90 {
		t.Error("layout not updated")
	}
}

func TestReloadRebuildsOnNewObjectSet(t *testing.T) {
	g, b := startedGame(t, engine.DefaultConfig())
	old := g.state().scene

	l := DefaultLayout()
	l.ButtressCount = DefaultLayout().ButtressCount + 2
	if err := g.Reload(context.Background(), l); err != nil {
		t.Fatal(err)
	}
	s := g.state().scene
	if s == old {
		t.Fatal("scene was not replaced")
	}
	if got, want := len(s.Items()), len(old.Items())+2; got != want {
		t.Errorf("items = %d, want %d", got, want)
	}
	if len(b.live) != 1 {
		t.Errorf("%d geometries on the GPU, want 1", len(b.live))
	}
	if err := g.Renderer.DrawFrame(context.Background(), s, &frame.PassConstants{}); err != nil {
		t.Errorf("draw rebuilt castle: %v", err)
	}
}

func TestReloadRestoresPreviousSceneOnFailure(t *testing.T) {
	ctx := context.Background()
	g, b := startedGame(t, engine.DefaultConfig())
	old := g.state().scene

	b.framesErr = errors.New("out of device memory")
	l := DefaultLayout()
	l.ButtressCount = 1
	if err := g.Reload(ctx, l); !errors.Is(err, b.framesErr) {
		t.Fatalf("got %v", err)
	}
	if g.state().scene != old {
		t.Error("failed rebuild replaced the scene")
	}
	if g.state().layout.ButtressCount != DefaultLayout().ButtressCount {
		t.Error("failed rebuild changed the layout")
	}
	if len(b.live) != 1 {
		t.Errorf("%d geometries on the GPU after restore, want 1", len(b.live))
	}
	if err := g.Renderer.DrawFrame(ctx, old, &frame.PassConstants{}); err != nil {
		t.Errorf("previous castle not drawable: %v", err)
	}
}

func TestOnAssetChangedReloadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "citadel.toml")
	if err := os.WriteFile(path, []byte("[castle]\nbuttress_count = 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	config := engine.DefaultConfig()
	config.Path = path
	g, _ := startedGame(t, config)

	am, err := assets.NewAssetManager(assets.DefaultDebounce)
	if err != nil {
		t.Fatal(err)
	}
	if err := am.Initialize(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = am.Shutdown() })
	g.Assets = am

	ctx := context.Background()
	if err := g.OnAssetChanged(ctx, "other.toml"); err != nil {
		t.Fatal(err)
	}
	if g.state().layout.ButtressCount != DefaultLayout().ButtressCount {
		t.Fatal("unrelated file triggered a reload")
	}
	if err := g.OnAssetChanged(ctx, "citadel.toml"); err != nil {
		t.Fatal(err)
	}
	if g.state().layout.ButtressCount != 5 {
		t.Errorf("buttress_count = %d after reload, want 5", g.state().layout.ButtressCount)
	}
}

func TestWireframeKeyTogglesFill(t *testing.T) {
	ctx := context.Background()
	g, b := startedGame(t, engine.DefaultConfig())
	if err := g.OnResize(800, 600); err != nil {
		t.Fatal(err)
	}
	press := core.EventContext{Type: core.EVENT_CODE_KEY_PRESSED, Data: &core.KeyEvent{KeyCode: core.KEY_1}}

	for _, toggle := range []bool{false, true, false, true} {
		if toggle && !g.onKey(press) {
			t.Fatal("key 1 not handled")
		}
		if err := g.Render(ctx, 0.016); err != nil {
			t.Fatal(err)
		}
	}
	if want := []bool{false, true, true, false}; len(b.wireframe) != len(want) {
		t.Fatalf("frames drawn = %d, want %d", len(b.wireframe), len(want))
	} else {
		for i := range want {
			if b.wireframe[i] != want[i] {
				t.Errorf("frame %d wireframe = %t, want %t", i, b.wireframe[i], want[i])
			}
		}
	}
}
