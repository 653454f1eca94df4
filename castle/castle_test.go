package castle

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spaghettifunk/citadel/engine/core"
	"github.com/spaghettifunk/citadel/engine/math"
)

const tolerance = 1e-4

func placementsByName(t *testing.T, l Layout) map[string]Placement {
	t.Helper()
	ps, err := Place(l)
	if err != nil {
		t.Fatal(err)
	}
	out := make(map[string]Placement, len(ps))
	for _, p := range ps {
		if _, dup := out[p.Name]; dup {
			t.Fatalf("duplicate placement '%s'", p.Name)
		}
		out[p.Name] = p
	}
	return out
}

func TestDefaultLayoutIsValid(t *testing.T) {
	if err := DefaultLayout().Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestLayoutValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(l *Layout)
	}{
		{"zero wall length", func(l *Layout) { l.WallLength = 0 }},
		{"negative tooth", func(l *Layout) { l.ToothSize = -1 }},
		{"gate wider than wall", func(l *Layout) { l.GateGap = 18 }},
		{"gate taller than wall", func(l *Layout) { l.GateHeight = 5 }},
		{"towers below walls", func(l *Layout) { l.TowerHeight = 3 }},
		{"towers overlap", func(l *Layout) { l.TowerRadius = 6 }},
		{"fountain tube too thick", func(l *Layout) { l.FountainTube = 2 }},
		{"fountain outside courtyard", func(l *Layout) { l.FountainRadius = 9 }},
		{"too few slices", func(l *Layout) { l.Slices = 2 }},
		{"negative buttresses", func(l *Layout) { l.ButtressCount = -1 }},
		{"too many buttresses", func(l *Layout) { l.ButtressCount = 100 }},
		{"ground too small", func(l *Layout) { l.GroundSize = 10 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := DefaultLayout()
			tt.mutate(&l)
			if err := l.Validate(); !errors.Is(err, core.ErrInvalidConfig) {
				t.Fatalf("want ErrInvalidConfig, got %v", err)
			}
			if _, err := Place(l); err == nil {
				t.Fatal("Place accepted an invalid layout")
			}
		})
	}
}

func TestLayoutValidateReportsFieldsInOrder(t *testing.T) {
	l := DefaultLayout()
	l.WallLength = 0
	l.ToothSize = 0
	l.GroundSize = -1
	first := l.Validate()
	if first == nil {
		t.Fatal("invalid layout accepted")
	}
	msg := first.Error()
	wall := strings.Index(msg, "wall_length")
	tooth := strings.Index(msg, "tooth_size")
	ground := strings.Index(msg, "ground_size")
	if wall < 0 || tooth < 0 || ground < 0 || !(wall < tooth && tooth < ground) {
		t.Fatalf("fields out of declaration order: %s", msg)
	}
	for i := 0; i < 20; i++ {
		if got := l.Validate().Error(); got != msg {
			t.Fatalf("message changed between runs:\n%s\n%s", msg, got)
		}
	}
}

func TestDecodeLayout(t *testing.T) {
	l, err := DecodeLayout([]byte(`
name = "ignored by the layout"

[window]
width = 640

[castle]
wall_length = 30.0
buttress_count = 5
rotation = 45.0
`))
	if err != nil {
		t.Fatal(err)
	}
	want := DefaultLayout()
	want.WallLength = 30
	want.ButtressCount = 5
	want.Rotation = 45
	if l != want {
		t.Errorf("got %+v\nwant %+v", l, want)
	}

	if _, err := DecodeLayout([]byte("[castle]\ngate_gap = 50.0")); !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("want ErrInvalidConfig, got %v", err)
	}
	if _, err := DecodeLayout([]byte("[castle]\nwall_length = ")); !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("syntax error: want ErrInvalidConfig, got %v", err)
	}
}

func TestLoadLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "citadel.toml")
	if err := os.WriteFile(path, []byte("[castle]\nslices = 8\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	l, err := LoadLayout(path)
	if err != nil {
		t.Fatal(err)
	}
	if l.Slices != 8 {
		t.Errorf("slices = %d", l.Slices)
	}
	if _, err := LoadLayout(filepath.Join(t.TempDir(), "nope.toml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: %v", err)
	}
}

func TestPlaceObjectCounts(t *testing.T) {
	ps := placementsByName(t, DefaultLayout())

	count := func(prefix string) int {
		n := 0
		for name := range ps {
			if strings.HasPrefix(name, prefix) {
				n++
			}
		}
		return n
	}
	// 17 teeth on each full wall between the towers, 7 on each side of the gate.
	tests := []struct {
		prefix string
		want   int
	}{
		{"tooth_back_", 17},
		{"tooth_left_", 17},
		{"tooth_right_", 17},
		{"tooth_front_left_", 7},
		{"tooth_front_right_", 7},
		{"tower_roof_", 4},
		{"finial_", 4},
		{"buttress_", 3},
		{"fountain_", 4},
		{"wall_", 5},
	}
	for _, tt := range tests {
		if got := count(tt.prefix); got != tt.want {
			t.Errorf("%s*: got %d, want %d", tt.prefix, got, tt.want)
		}
	}
	if len(ps) != 98 {
		t.Errorf("total placements = %d, want 98", len(ps))
	}
}

func TestPlacementsUseKnownShapes(t *testing.T) {
	l := DefaultLayout()
	known := map[string]bool{}
	for _, s := range Shapes(l) {
		if known[s.Name] {
			t.Fatalf("duplicate shape '%s'", s.Name)
		}
		known[s.Name] = true
		if _, err := s.Build(); err != nil {
			t.Errorf("shape '%s': %v", s.Name, err)
		}
	}
	used := map[string]bool{}
	for _, p := range placementsByName(t, l) {
		if !known[p.Shape] {
			t.Errorf("placement '%s' uses unknown shape '%s'", p.Name, p.Shape)
		}
		used[p.Shape] = true
	}
	for name := range known {
		if !used[name] {
			t.Errorf("shape '%s' is never placed", name)
		}
	}
}

func TestPlaceGeometry(t *testing.T) {
	l := DefaultLayout()
	ps := placementsByName(t, l)
	half := l.WallLength / 2

	tests := []struct {
		name  string
		item  string
		local math.Vec3
		want  math.Vec3
	}{
		{"tower centred on corner", "tower_ne", math.NewVec3Zero(), math.NewVec3(half, l.TowerHeight/2, -half)},
		{"tower stands on platform", "tower_sw", math.NewVec3(0, -l.TowerHeight/2, 0), math.NewVec3(-half, 0, half)},
		{"roof sits on tower", "tower_roof_se", math.NewVec3(0, -l.RoofHeight/2, 0), math.NewVec3(half, l.TowerHeight, half)},
		{"finial point on roof apex", "finial_nw", math.NewVec3(0, -l.finialBottom(), 0), math.NewVec3(-half, l.TowerHeight+l.RoofHeight, -half)},
		{"back wall runs along x", "wall_back", math.NewVec3(0, 0, half), math.NewVec3(half, l.WallHeight/2, -half)},
		{"front segment ends at gate", "wall_front_right", math.NewVec3(-l.frontSegment()/2, 0, 0), math.NewVec3(l.GateGap/2, l.WallHeight/2, half)},
		{"lintel spans gate top", "gate_lintel", math.NewVec3(0, -(l.WallHeight-l.GateHeight)/2, 0), math.NewVec3(0, l.GateHeight, half)},
		{"platform top at zero", "platform", math.NewVec3(0, l.PlatformHeight/2, 0), math.NewVec3Zero()},
		{"ramp meets platform edge", "ramp", math.NewVec3(0, l.PlatformHeight/2, -l.RampLength/2), math.NewVec3(0, 0, half+l.PlatformMargin)},
		{"ramp foot on ground", "ramp", math.NewVec3(0, -l.PlatformHeight/2, l.RampLength/2), math.NewVec3(0, -l.PlatformHeight, half+l.PlatformMargin+l.RampLength)},
		{"buttress leans on back wall", "buttress_01", math.NewVec3(0, l.buttressHeight()/2, -l.buttressDepth()/2), math.NewVec3(0, l.buttressHeight(), -half-l.WallThickness/2)},
		{"teeth sit on the wall", "tooth_back_08", math.NewVec3(0, -l.ToothSize/2, 0), math.NewVec3(0, l.WallHeight, -half)},
		{"basin rests on platform", "fountain_basin", math.NewVec3Zero(), math.NewVec3(0, l.FountainTube, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := ps[tt.item]
			if !ok {
				t.Fatalf("no placement '%s'", tt.item)
			}
			got := tt.local.Transform(1, p.World)
			if !got.Compare(tt.want, tolerance) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSideTeethFollowTheWall(t *testing.T) {
	l := DefaultLayout()
	ps := placementsByName(t, l)
	for _, name := range []string{"tooth_left_00", "tooth_left_16", "tooth_right_03"} {
		p := ps[name]
		// The tooth's width runs along Z once turned onto a side wall.
		a := math.NewVec3(-l.ToothSize/2, 0, 0).Transform(1, p.World)
		b := math.NewVec3(l.ToothSize/2, 0, 0).Transform(1, p.World)
		if kabs(a.X-b.X) > tolerance || kabs(kabs(a.Z-b.Z)-l.ToothSize) > tolerance {
			t.Errorf("%s: tooth spans %v to %v", name, a, b)
		}
		if kabs(kabs(a.X)-l.WallLength/2) > tolerance {
			t.Errorf("%s: not on a side wall: %v", name, a)
		}
	}
}

func TestPlaceRotation(t *testing.T) {
	l := DefaultLayout()
	l.Rotation = 90
	rotated := placementsByName(t, l)
	straight := placementsByName(t, DefaultLayout())

	for name, p := range straight {
		want := p.World.Translation()
		// A quarter turn about Y with row vectors maps (x, z) to (z, -x).
		want = math.NewVec3(want.Z, want.Y, -want.X)
		got := rotated[name].World.Translation()
		if !got.Compare(want, tolerance) {
			t.Errorf("%s: got %v, want %v", name, got, want)
		}
	}
	if !SameShape(l, DefaultLayout()) {
		t.Error("rotation must not change the shapes")
	}
}

func TestSameShape(t *testing.T) {
	a := DefaultLayout()
	b := DefaultLayout()
	b.WallHeight = 5
	if SameShape(a, b) {
		t.Error("a taller wall is a different shape")
	}
	c := DefaultLayout()
	c.ButtressCount = 7
	if !SameShape(a, c) {
		t.Error("buttress count only changes placements")
	}
}

func TestBuildScene(t *testing.T) {
	l := DefaultLayout()
	s, err := BuildScene(context.Background(), l, 3)
	if err != nil {
		t.Fatal(err)
	}
	ps, _ := Place(l)
	if len(s.Items()) != len(ps) || s.ObjectCount() != len(ps) {
		t.Fatalf("items = %d, objects = %d, want %d", len(s.Items()), s.ObjectCount(), len(ps))
	}
	geos := s.Geometries()
	if len(geos) != 1 || geos[0].Name != GeometryName {
		t.Fatalf("geometries = %v", geos)
	}
	if got := len(geos[0].SubmeshNames()); got != len(Shapes(l)) {
		t.Errorf("submeshes = %d, want %d", got, len(Shapes(l)))
	}

	seen := map[uint32]bool{}
	for _, ri := range s.Items() {
		if ri.NumFramesDirty != 3 {
			t.Errorf("%s: dirty for %d frames, want 3", ri.Name, ri.NumFramesDirty)
		}
		if seen[ri.ObjCBIndex] {
			t.Errorf("%s: slot %d reused", ri.Name, ri.ObjCBIndex)
		}
		seen[ri.ObjCBIndex] = true
		if int(ri.StartIndexLocation+ri.IndexCount) > len(geos[0].Indices) {
			t.Errorf("%s: index range past the buffer", ri.Name)
		}
	}

	if _, err := BuildScene(context.Background(), l, 0); !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("zero frames: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := BuildScene(ctx, l, 3); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled context: %v", err)
	}
}

func TestApply(t *testing.T) {
	s, err := BuildScene(context.Background(), DefaultLayout(), 3)
	if err != nil {
		t.Fatal(err)
	}
	for _, ri := range s.Items() {
		ri.NumFramesDirty = 0
	}

	l := DefaultLayout()
	l.Rotation = 180
	moved, err := Place(l)
	if err != nil {
		t.Fatal(err)
	}
	if err := Apply(s, moved); err != nil {
		t.Fatal(err)
	}
	tower, _ := s.Item("tower_ne")
	if !tower.Dirty() || tower.NumFramesDirty != 3 {
		t.Errorf("moved item dirty for %d frames", tower.NumFramesDirty)
	}
	want := math.NewVec3(-l.WallLength/2, l.TowerHeight/2, l.WallLength/2)
	if got := tower.World.Translation(); !got.Compare(want, tolerance) {
		t.Errorf("tower_ne at %v, want %v", got, want)
	}

	// A different object set is refused without touching the scene.
	fewer := DefaultLayout()
	fewer.ButtressCount = 1
	ps, err := Place(fewer)
	if err != nil {
		t.Fatal(err)
	}
	before := tower.World
	if err := Apply(s, ps); err == nil {
		t.Fatal("Apply accepted a different object set")
	}
	if tower.World != before {
		t.Error("failed Apply modified the scene")
	}
}

func TestNewGameRejectsInvalidLayout(t *testing.T) {
	l := DefaultLayout()
	l.GateGap = l.WallLength
	if _, err := NewGame(nil, l); !errors.Is(err, core.ErrInvalidConfig) {
		t.Fatalf("NewGame error = %v, want ErrInvalidConfig", err)
	}
}

func TestSamePath(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "citadel.toml")
	tests := []struct {
		a, b string
		want bool
	}{
		{cfg, cfg, true},
		{filepath.Join(dir, "shaders", "..", "citadel.toml"), cfg, true},
		{filepath.Join(dir, "other.toml"), cfg, false},
	}
	for _, tt := range tests {
		if got := samePath(tt.a, tt.b); got != tt.want {
			t.Errorf("samePath(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func kabs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
