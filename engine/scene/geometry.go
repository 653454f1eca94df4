package scene

import (
	"errors"
	"fmt"
	gomath "math"
	"unsafe"

	"github.com/spaghettifunk/citadel/engine/geometry"
	"github.com/spaghettifunk/citadel/engine/math"
)

var (
	ErrDuplicateMesh = errors.New("mesh name already used")
	ErrEmptyMesh     = errors.New("mesh has no vertices or indices")
	ErrUnknownMesh   = errors.New("unknown mesh")
)

/**
 * @brief The slice of a shared vertex/index buffer that holds one shape.
 * Indices are local to the shape; BaseVertexLocation is added to each one
 * when drawing.
 */
type SubmeshGeometry struct {
	IndexCount         uint32
	StartIndexLocation uint32
	BaseVertexLocation int32
	/** @brief The local-space bounds of the shape. */
	Bounds math.Extents3D
}

/**
 * @brief Several shapes packed into one vertex buffer and one index buffer.
 * Immutable once built; render items share it by pointer.
 */
type MeshGeometry struct {
	Name string
	/** @brief Set by the renderer backend once the buffers live on the GPU. */
	InternalID uint32
	/** @brief Incremented every time the backend uploads this geometry. */
	Generation uint16

	Vertices []math.Vertex3D
	Indices  []uint32
	DrawArgs map[string]SubmeshGeometry

	order []string
}

// Submesh looks up the sub-range recorded for a shape.
func (g *MeshGeometry) Submesh(name string) (SubmeshGeometry, bool) {
	s, ok := g.DrawArgs[name]
	return s, ok
}

// SubmeshNames returns the shape names in the order they were packed.
func (g *MeshGeometry) SubmeshNames() []string {
	return append([]string(nil), g.order...)
}

func (g *MeshGeometry) VertexByteStride() uint32 {
	return uint32(unsafe.Sizeof(math.Vertex3D{}))
}

func (g *MeshGeometry) VertexBufferByteSize() uint64 {
	return uint64(len(g.Vertices)) * uint64(g.VertexByteStride())
}

func (g *MeshGeometry) IndexBufferByteSize() uint64 {
	return uint64(len(g.Indices)) * 4
}

// VertexBytes exposes the vertex slice as raw bytes for upload.
func (g *MeshGeometry) VertexBytes() []byte {
	if len(g.Vertices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&g.Vertices[0])), g.VertexBufferByteSize())
}

// IndexBytes exposes the index slice as raw bytes for upload.
func (g *MeshGeometry) IndexBytes() []byte {
	if len(g.Indices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&g.Indices[0])), g.IndexBufferByteSize())
}

// Builder concatenates shapes into one MeshGeometry.
type Builder struct {
	name     string
	vertices []math.Vertex3D
	indices  []uint32
	args     map[string]SubmeshGeometry
	order    []string
}

func NewBuilder(name string) *Builder {
	return &Builder{
		name: name,
		args: make(map[string]SubmeshGeometry),
	}
}

// AddMesh appends a shape and records its sub-range under name.
func (b *Builder) AddMesh(name string, m *geometry.MeshData) error {
	if _, ok := b.args[name]; ok {
		return fmt.Errorf("%w: '%s'", ErrDuplicateMesh, name)
	}
	if m == nil || len(m.Vertices) == 0 || len(m.Indices) == 0 {
		return fmt.Errorf("%w: '%s'", ErrEmptyMesh, name)
	}
	if len(b.vertices)+len(m.Vertices) > gomath.MaxInt32 {
		return fmt.Errorf("mesh '%s' does not fit: %d vertices already packed", name, len(b.vertices))
	}
	b.args[name] = SubmeshGeometry{
		IndexCount:         uint32(len(m.Indices)),
		StartIndexLocation: uint32(len(b.indices)),
		BaseVertexLocation: int32(len(b.vertices)),
		Bounds:             m.Extents(),
	}
	b.order = append(b.order, name)
	b.vertices = append(b.vertices, m.Vertices...)
	b.indices = append(b.indices, m.Indices...)
	return nil
}

// AddMeshes adds a generated batch in order.
func (b *Builder) AddMeshes(meshes []geometry.NamedMesh) error {
	for _, nm := range meshes {
		if err := b.AddMesh(nm.Name, nm.Mesh); err != nil {
			return err
		}
	}
	return nil
}

// Build returns the packed geometry. The builder should not be reused afterwards.
func (b *Builder) Build() (*MeshGeometry, error) {
	if len(b.order) == 0 {
		return nil, fmt.Errorf("%w: geometry '%s' has no shapes", ErrEmptyMesh, b.name)
	}
	return &MeshGeometry{
		Name:     b.name,
		Vertices: b.vertices,
		Indices:  b.indices,
		DrawArgs: b.args,
		order:    b.order,
	}, nil
}
