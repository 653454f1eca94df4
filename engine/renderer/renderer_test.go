package renderer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/spaghettifunk/citadel/engine/core"
	"github.com/spaghettifunk/citadel/engine/frame"
	"github.com/spaghettifunk/citadel/engine/geometry"
	"github.com/spaghettifunk/citadel/engine/math"
	"github.com/spaghettifunk/citadel/engine/renderer/metadata"
	"github.com/spaghettifunk/citadel/engine/scene"
)

// fakeBackend records every call in log and keeps one binary fence per slot.
type fakeBackend struct {
	frames   int
	signaled []bool
	log      []string

	booting   bool
	drawErr   error
	framesErr error
	draws     int

	noWireframe bool
	wireframe   []bool
}

func newFakeBackend(frames int) *fakeBackend {
	return &fakeBackend{frames: frames, signaled: make([]bool, frames)}
}

func (b *fakeBackend) Initialize(*metadata.RendererBackendConfig) error {
	return nil
}

func (b *fakeBackend) Shutdown() error {
	b.log = append(b.log, "shutdown")
	return nil
}

func (b *fakeBackend) Resized(w, h uint32) error {
	b.log = append(b.log, fmt.Sprintf("resize:%dx%d", w, h))
	return nil
}

func (b *fakeBackend) FramesInFlight() int      { return b.frames }
func (b *fakeBackend) Fences() frame.SlotFences { return b }
func (b *fakeBackend) UniformAlignment() uint64 { return frame.DefaultConstantBufferAlignment }

func (b *fakeBackend) CreateGeometry(g *scene.MeshGeometry) error {
	g.InternalID = 7
	b.log = append(b.log, "geometry:"+g.Name)
	return nil
}

func (b *fakeBackend) DestroyGeometry(g *scene.MeshGeometry) {
	b.log = append(b.log, "destroy-geometry:"+g.Name)
}

func (b *fakeBackend) CreateFrameResources(objectCount int) ([]*frame.FrameResource, error) {
	if err := b.framesErr; err != nil {
		b.framesErr = nil
		return nil, err
	}
	out := make([]*frame.FrameResource, b.frames)
	for i := range out {
		out[i] = &frame.FrameResource{
			Index:    i,
			ObjectCB: frame.NewHostBuffer(objectCount, frame.ObjectConstantsSize, b.UniformAlignment()),
			PassCB:   frame.NewHostBuffer(1, frame.PassConstantsSize, b.UniformAlignment()),
		}
	}
	return out, nil
}

func (b *fakeBackend) DestroyFrameResources() { b.log = append(b.log, "destroy-frames") }

func (b *fakeBackend) BeginFrame(_ context.Context, fr *frame.FrameResource) error {
	if b.booting {
		return core.ErrSwapchainBooting
	}
	b.log = append(b.log, fmt.Sprintf("begin:%d", fr.Index))
	return nil
}

func (b *fakeBackend) SupportsWireframe() bool { return !b.noWireframe }

func (b *fakeBackend) DrawRenderItems(fr *frame.FrameResource, items []*scene.RenderItem, wireframe bool) error {
	if b.drawErr != nil {
		return b.drawErr
	}
	b.wireframe = append(b.wireframe, wireframe)
	b.draws += len(items)
	b.log = append(b.log, fmt.Sprintf("draw:%d:%d", fr.Index, len(items)))
	return nil
}

func (b *fakeBackend) EndFrame(fr *frame.FrameResource) error {
	// submission resets the slot's fence
	b.signaled[fr.Index] = false
	b.log = append(b.log, fmt.Sprintf("end:%d", fr.Index))
	return nil
}

func (b *fakeBackend) WaitIdle() error {
	for i := range b.signaled {
		b.signaled[i] = true
	}
	return nil
}

func (b *fakeBackend) Signaled(slot int) (bool, error) { return b.signaled[slot], nil }

// WaitSlot plays the GPU: a blocking wait always lets the slot finish.
func (b *fakeBackend) WaitSlot(slot int, _ time.Duration) (bool, error) {
	b.log = append(b.log, fmt.Sprintf("wait:%d", slot))
	b.signaled[slot] = true
	return true, nil
}

func testScene(t *testing.T, frames int) *scene.Scene {
	t.Helper()
	box, err := geometry.Box(1, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	bld := scene.NewBuilder("shapes")
	if err := bld.AddMesh("box", box); err != nil {
		t.Fatal(err)
	}
	g, err := bld.Build()
	if err != nil {
		t.Fatal(err)
	}
	s, err := scene.NewScene(frames)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.AddGeometry(g); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"a", "b"} {
		if _, err := s.AddItem(name, g, "box", math.NewMat4Identity(), math.NewVec4(1, 1, 1, 1)); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

func loaded(t *testing.T, frames int) (*Renderer, *fakeBackend, *scene.Scene) {
	t.Helper()
	b := newFakeBackend(frames)
	r := New(b)
	if err := r.Initialize(&metadata.RendererBackendConfig{FramesInFlight: frames}); err != nil {
		t.Fatal(err)
	}
	s := testScene(t, frames)
	if err := r.LoadScene(context.Background(), s); err != nil {
		t.Fatal(err)
	}
	b.log = nil
	return r, b, s
}

func TestDrawFrameOrder(t *testing.T) {
	ctx := context.Background()
	r, b, s := loaded(t, 3)
	pass := frame.PassConstants{}

	for i := 0; i < 4; i++ {
		if err := r.DrawFrame(ctx, s, &pass); err != nil {
			t.Fatal(err)
		}
	}
	want := []string{
		"begin:0", "draw:0:2", "end:0",
		"begin:1", "draw:1:2", "end:1",
		"begin:2", "draw:2:2", "end:2",
		// slot 0 comes round again while still in flight
		"wait:0", "begin:0", "draw:0:2", "end:0",
	}
	if fmt.Sprint(b.log) != fmt.Sprint(want) {
		t.Errorf("calls:\n got %v\nwant %v", b.log, want)
	}
	if r.FrameNumber() != 4 {
		t.Errorf("frame number = %d", r.FrameNumber())
	}
	if r.ring.Current().Fence != 4 {
		t.Errorf("fence of last frame resource = %d, want 4", r.ring.Current().Fence)
	}
	for _, ri := range s.Items() {
		if ri.NumFramesDirty != 0 {
			t.Errorf("%s still dirty for %d frames", ri.Name, ri.NumFramesDirty)
		}
	}
}

func TestDrawFrameSkipsWhileBooting(t *testing.T) {
	r, b, s := loaded(t, 2)
	b.booting = true
	if err := r.DrawFrame(context.Background(), s, &frame.PassConstants{}); err != nil {
		t.Fatalf("booting frame should be skipped, got %v", err)
	}
	if b.draws != 0 || r.FrameNumber() != 0 || r.ring.Current().Fence != 0 {
		t.Error("a skipped frame must not draw or take a fence value")
	}
}

func TestDrawFrameErrors(t *testing.T) {
	ctx := context.Background()
	r, b, s := loaded(t, 2)

	b.drawErr = errors.New("device lost")
	if err := r.DrawFrame(ctx, s, &frame.PassConstants{}); !errors.Is(err, b.drawErr) {
		t.Errorf("got %v", err)
	}

	other := testScene(t, 2)
	if err := r.DrawFrame(ctx, other, &frame.PassConstants{}); !errors.Is(err, ErrNoScene) {
		t.Errorf("foreign scene: got %v", err)
	}

	g, _ := s.Geometry("shapes")
	if _, err := s.AddItem("c", g, "box", math.NewMat4Identity(), math.Vec4{}); err != nil {
		t.Fatal(err)
	}
	b.drawErr = nil
	if err := r.DrawFrame(ctx, s, &frame.PassConstants{}); !errors.Is(err, ErrSceneOutgrown) {
		t.Errorf("outgrown: got %v", err)
	}
}

func TestLoadScene(t *testing.T) {
	ctx := context.Background()
	b := newFakeBackend(3)
	r := New(b)
	s := testScene(t, 3)
	if err := r.LoadScene(ctx, s); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("before init: got %v", err)
	}
	_ = r.Initialize(&metadata.RendererBackendConfig{})
	if err := r.LoadScene(ctx, testScene(t, 2)); !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("frame count mismatch: got %v", err)
	}
	if err := r.LoadScene(ctx, s); err != nil {
		t.Fatal(err)
	}
	g, _ := s.Geometry("shapes")
	if g.InternalID != 7 {
		t.Error("geometry was not uploaded")
	}
	if got := r.DescriptorLayout(); got.ObjectCount != 2 || got.FrameCount != 3 || got.Total() != 9 {
		t.Errorf("layout = %+v", got)
	}

	// reloading tears the old scene down first
	b.log = nil
	if err := r.LoadScene(ctx, testScene(t, 3)); err != nil {
		t.Fatal(err)
	}
	want := []string{"destroy-frames", "destroy-geometry:shapes", "geometry:shapes"}
	if fmt.Sprint(b.log) != fmt.Sprint(want) {
		t.Errorf("reload calls = %v", b.log)
	}

	if err := r.Shutdown(ctx); err != nil {
		t.Fatal(err)
	}
	if b.log[len(b.log)-1] != "shutdown" {
		t.Errorf("last call = %s", b.log[len(b.log)-1])
	}
}

func TestLoadSceneFailureReleasesGeometry(t *testing.T) {
	ctx := context.Background()
	r, b, _ := loaded(t, 2)

	b.framesErr = errors.New("out of device memory")
	next := testScene(t, 2)
	if err := r.LoadScene(ctx, next); !errors.Is(err, b.framesErr) {
		t.Fatalf("got %v", err)
	}
	want := []string{"destroy-frames", "destroy-geometry:shapes", "geometry:shapes", "destroy-geometry:shapes"}
	if fmt.Sprint(b.log) != fmt.Sprint(want) {
		t.Errorf("calls = %v, want %v", b.log, want)
	}
	if err := r.DrawFrame(ctx, next, &frame.PassConstants{}); !errors.Is(err, ErrNoScene) {
		t.Errorf("draw after failed load: got %v", err)
	}

	// the next attempt succeeds from a clean state
	b.log = nil
	if err := r.LoadScene(ctx, next); err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(b.log) != fmt.Sprint([]string{"geometry:shapes"}) {
		t.Errorf("retry calls = %v", b.log)
	}
}

func TestWireframeToggle(t *testing.T) {
	ctx := context.Background()
	r, b, s := loaded(t, 2)
	pass := frame.PassConstants{}

	for _, on := range []bool{false, true, true, false} {
		if got := r.SetWireframe(on); got != on {
			t.Fatalf("SetWireframe(%t) = %t", on, got)
		}
		if err := r.DrawFrame(ctx, s, &pass); err != nil {
			t.Fatal(err)
		}
	}
	if want := []bool{false, true, true, false}; fmt.Sprint(b.wireframe) != fmt.Sprint(want) {
		t.Errorf("fill per frame = %v, want %v", b.wireframe, want)
	}

	b.noWireframe = true
	if r.SetWireframe(true) || r.Wireframe() {
		t.Error("wireframe enabled on a device without line fill")
	}

	// the configured mode applies from the first frame
	b2 := newFakeBackend(2)
	r2 := New(b2)
	if err := r2.Initialize(&metadata.RendererBackendConfig{FramesInFlight: 2, Wireframe: true}); err != nil {
		t.Fatal(err)
	}
	if !r2.Wireframe() {
		t.Error("configured wireframe ignored")
	}
}

func TestConfig(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"no frames", func(c *Config) { c.FramesInFlight = 0 }},
		{"bad cull", func(c *Config) { c.CullMode = "sideways" }},
		{"no shader", func(c *Config) { c.VertexShader = "" }},
		{"flat fov", func(c *Config) { c.FieldOfView = 0 }},
		{"inverted clip", func(c *Config) { c.NearClip, c.FarClip = 10, 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.modify(&c)
			if err := c.Validate(); !errors.Is(err, core.ErrInvalidConfig) {
				t.Errorf("got %v", err)
			}
		})
	}

	bc, err := DefaultConfig().BackendConfig("citadel", 800, 600, []uint32{1}, []uint32{2})
	if err != nil {
		t.Fatal(err)
	}
	if bc.CullMode != metadata.FaceCullModeBack || bc.FramesInFlight != 3 || bc.Width != 800 {
		t.Errorf("backend config = %+v", bc)
	}
}
