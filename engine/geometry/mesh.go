package geometry

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/citadel/engine/math"
)

var ErrInvalidShape = errors.New("invalid shape parameters")

// MeshData is an indexed triangle list. Front faces wind counter-clockwise
// in a right-handed, Y-up frame.
type MeshData struct {
	Vertices []math.Vertex3D
	Indices  []uint32
}

func newMeshData(vertexCap, indexCap int) *MeshData {
	return &MeshData{
		Vertices: make([]math.Vertex3D, 0, vertexCap),
		Indices:  make([]uint32, 0, indexCap),
	}
}

// Extents returns the axis-aligned bounds of the mesh.
func (m *MeshData) Extents() math.Extents3D {
	return math.GeometryExtents(m.Vertices)
}

// TriangleCount is the number of triangles in the index list.
func (m *MeshData) TriangleCount() int {
	return len(m.Indices) / 3
}

func (m *MeshData) base() uint32 {
	return uint32(len(m.Vertices))
}

// addQuad appends a flat quad. a, b, c and d must be counter-clockwise when
// seen from the side the face points to, starting bottom-left.
func (m *MeshData) addQuad(a, b, c, d math.Vec3) {
	normal := b.Sub(a).Cross(d.Sub(a)).Normalized()
	tangent := b.Sub(a).Normalized()
	base := m.base()
	m.Vertices = append(m.Vertices,
		math.Vertex3D{Position: a, Normal: normal, Texcoord: math.NewVec2(0, 1), Tangent: tangent},
		math.Vertex3D{Position: b, Normal: normal, Texcoord: math.NewVec2(1, 1), Tangent: tangent},
		math.Vertex3D{Position: c, Normal: normal, Texcoord: math.NewVec2(1, 0), Tangent: tangent},
		math.Vertex3D{Position: d, Normal: normal, Texcoord: math.NewVec2(0, 0), Tangent: tangent},
	)
	m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
}

// addTri appends a flat triangle wound counter-clockwise.
func (m *MeshData) addTri(a, b, c math.Vec3) {
	normal := b.Sub(a).Cross(c.Sub(a)).Normalized()
	tangent := b.Sub(a).Normalized()
	base := m.base()
	m.Vertices = append(m.Vertices,
		math.Vertex3D{Position: a, Normal: normal, Texcoord: math.NewVec2(0, 1), Tangent: tangent},
		math.Vertex3D{Position: b, Normal: normal, Texcoord: math.NewVec2(1, 1), Tangent: tangent},
		math.Vertex3D{Position: c, Normal: normal, Texcoord: math.NewVec2(0.5, 0), Tangent: tangent},
	)
	m.Indices = append(m.Indices, base, base+1, base+2)
}

func positive(name string, v float32) error {
	if !(v > 0) {
		return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidShape, name, v)
	}
	return nil
}

func atLeast(name string, v, low uint32) error {
	if v < low {
		return fmt.Errorf("%w: %s must be at least %d, got %d", ErrInvalidShape, name, low, v)
	}
	return nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
