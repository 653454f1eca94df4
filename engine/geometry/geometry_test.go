package geometry

import (
	"context"
	"errors"
	"testing"

	"github.com/spaghettifunk/citadel/engine/math"
)

// mustBuild returns a checker taking a primitive's results directly, as in mustBuild(t)(Box(1, 1, 1)).
func mustBuild(t *testing.T) func(*MeshData, error) *MeshData {
	return func(m *MeshData, err error) *MeshData {
		t.Helper()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return m
	}
}

func TestPrimitiveCounts(t *testing.T) {
	tests := []struct {
		name              string
		build             func() (*MeshData, error)
		vertices, indices int
	}{
		{"box", func() (*MeshData, error) { return Box(1, 2, 3) }, 24, 36},
		{"sphere", func() (*MeshData, error) { return Sphere(1, 8, 4) }, 29, 144},
		{"cylinder", func() (*MeshData, error) { return Cylinder(1, 1, 2, 8, 2) }, 47, 144},
		{"tapered cylinder", func() (*MeshData, error) { return Cylinder(1, 0.5, 2, 8, 1) }, 38, 96},
		{"cone", func() (*MeshData, error) { return Cone(1, 2, 8) }, 27, 48},
		{"torus", func() (*MeshData, error) { return Torus(2, 0.5, 8, 6) }, 63, 288},
		{"grid", func() (*MeshData, error) { return Grid(4, 4, 3, 5) }, 15, 48},
		{"pyramid", func() (*MeshData, error) { return Pyramid(1, 1) }, 16, 18},
		{"wedge", func() (*MeshData, error) { return Wedge(1, 1, 1) }, 18, 24},
		{"diamond", func() (*MeshData, error) { return Diamond(1, 1, 1, 6) }, 36, 36},
		{"triangular prism", func() (*MeshData, error) { return TriangularPrism(1, 1, 1) }, 18, 24},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mustBuild(t)(tt.build())
			if len(m.Vertices) != tt.vertices {
				t.Errorf("vertices = %d, want %d", len(m.Vertices), tt.vertices)
			}
			if len(m.Indices) != tt.indices {
				t.Errorf("indices = %d, want %d", len(m.Indices), tt.indices)
			}
			checkMesh(t, m)
		})
	}
}

// checkMesh verifies index bounds, unit normals, texture coordinates in
// [0,1] and that every triangle winds counter-clockwise around its normals.
func checkMesh(t *testing.T, m *MeshData) {
	t.Helper()
	if len(m.Indices)%3 != 0 {
		t.Fatalf("index count %d is not a multiple of 3", len(m.Indices))
	}
	for i, idx := range m.Indices {
		if int(idx) >= len(m.Vertices) {
			t.Fatalf("index %d = %d out of range", i, idx)
		}
	}
	for i, v := range m.Vertices {
		if l := v.Normal.Length(); l < 0.999 || l > 1.001 {
			t.Errorf("vertex %d normal length %v", i, l)
		}
		if v.Texcoord.X < 0 || v.Texcoord.X > 1 || v.Texcoord.Y < 0 || v.Texcoord.Y > 1 {
			t.Errorf("vertex %d texcoord %v out of range", i, v.Texcoord)
		}
	}
	for i := 0; i < len(m.Indices); i += 3 {
		a, b, c := m.Vertices[m.Indices[i]], m.Vertices[m.Indices[i+1]], m.Vertices[m.Indices[i+2]]
		face := b.Position.Sub(a.Position).Cross(c.Position.Sub(a.Position))
		if face.Length() == 0 {
			t.Errorf("triangle %d is degenerate", i/3)
			continue
		}
		for _, v := range []math.Vertex3D{a, b, c} {
			if face.Dot(v.Normal) <= 0 {
				t.Errorf("triangle %d winds against its normals", i/3)
				break
			}
		}
	}
}

func TestClosedShapesFaceOutward(t *testing.T) {
	tests := []struct {
		name     string
		build    func() (*MeshData, error)
		interior math.Vec3
	}{
		{"box", func() (*MeshData, error) { return Box(2, 3, 4) }, math.NewVec3Zero()},
		{"sphere", func() (*MeshData, error) { return Sphere(1, 12, 6) }, math.NewVec3Zero()},
		{"cylinder", func() (*MeshData, error) { return Cylinder(1, 0.5, 2, 12, 3) }, math.NewVec3Zero()},
		{"cone", func() (*MeshData, error) { return Cone(1, 2, 12) }, math.NewVec3Zero()},
		{"pyramid", func() (*MeshData, error) { return Pyramid(2, 2) }, math.NewVec3Zero()},
		{"wedge", func() (*MeshData, error) { return Wedge(2, 3, 3) }, math.NewVec3(0, -0.5, -0.5)},
		{"diamond", func() (*MeshData, error) { return Diamond(1, 0.5, 1, 8) }, math.NewVec3Zero()},
		{"triangular prism", func() (*MeshData, error) { return TriangularPrism(2, 2, 2) }, math.NewVec3Zero()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mustBuild(t)(tt.build())
			for i := 0; i < len(m.Indices); i += 3 {
				a := m.Vertices[m.Indices[i]].Position
				b := m.Vertices[m.Indices[i+1]].Position
				c := m.Vertices[m.Indices[i+2]].Position
				face := b.Sub(a).Cross(c.Sub(a))
				centroid := a.Add(b).Add(c).MulScalar(1.0 / 3.0)
				if face.Dot(centroid.Sub(tt.interior)) <= 0 {
					t.Errorf("triangle %d faces inward", i/3)
				}
			}
		})
	}
}

func TestWedgeSlopeRisesTowardBack(t *testing.T) {
	m := mustBuild(t)(Wedge(2, 1, 4))
	// the slope quad comes first
	n := m.Vertices[0].Normal
	if n.Y <= 0 || n.Z <= 0 {
		t.Errorf("slope normal %v should point up and toward +Z", n)
	}
	e := m.Extents()
	if !e.Min.Compare(math.NewVec3(-1, -0.5, -2), 1e-6) || !e.Max.Compare(math.NewVec3(1, 0.5, 2), 1e-6) {
		t.Errorf("extents = %+v", e)
	}
}

func TestConeApex(t *testing.T) {
	m := mustBuild(t)(Cone(1, 3, 16))
	e := m.Extents()
	if e.Max.Y != 1.5 || e.Min.Y != -1.5 {
		t.Errorf("extents y = [%v, %v], want [-1.5, 1.5]", e.Min.Y, e.Max.Y)
	}
}

func TestInvalidParameters(t *testing.T) {
	tests := []struct {
		name  string
		build func() (*MeshData, error)
	}{
		{"zero width box", func() (*MeshData, error) { return Box(0, 1, 1) }},
		{"negative radius sphere", func() (*MeshData, error) { return Sphere(-1, 8, 8) }},
		{"too few slices", func() (*MeshData, error) { return Sphere(1, 2, 8) }},
		{"flat cylinder", func() (*MeshData, error) { return Cylinder(0, 0, 1, 8, 1) }},
		{"fat torus", func() (*MeshData, error) { return Torus(1, 1, 8, 8) }},
		{"single row grid", func() (*MeshData, error) { return Grid(1, 1, 1, 4) }},
		{"diamond without bottom", func() (*MeshData, error) { return Diamond(1, 1, 0, 6) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			if !errors.Is(err, ErrInvalidShape) {
				t.Errorf("got %v, want ErrInvalidShape", err)
			}
		})
	}
}

func TestGenerateKeepsOrder(t *testing.T) {
	specs := []ShapeSpec{
		{Name: "box", Kind: KindBox, Width: 1, Height: 1, Depth: 1},
		{Name: "ball", Kind: KindSphere, Radius: 1, Slices: 8, Stacks: 6},
		{Name: "ground", Kind: KindGrid, Width: 10, Depth: 10, Stacks: 4, Slices: 4},
		{Name: "ring", Kind: KindTorus, Radius: 2, TubeRadius: 0.25, Slices: 12, Stacks: 8},
	}
	out, err := Generate(context.Background(), specs)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(specs) {
		t.Fatalf("got %d meshes", len(out))
	}
	for i, nm := range out {
		if nm.Name != specs[i].Name {
			t.Errorf("mesh %d is %q, want %q", i, nm.Name, specs[i].Name)
		}
		if nm.Mesh == nil || len(nm.Mesh.Indices) == 0 {
			t.Errorf("mesh %q is empty", nm.Name)
		}
	}
}

func TestGenerateFailure(t *testing.T) {
	specs := []ShapeSpec{
		{Name: "ok", Kind: KindBox, Width: 1, Height: 1, Depth: 1},
		{Name: "broken", Kind: KindCone, Radius: 1, Height: 0, Slices: 8},
	}
	if _, err := Generate(context.Background(), specs); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("got %v, want ErrInvalidShape", err)
	}
}

func TestGenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	specs := []ShapeSpec{{Name: "box", Kind: KindBox, Width: 1, Height: 1, Depth: 1}}
	if _, err := Generate(ctx, specs); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}
