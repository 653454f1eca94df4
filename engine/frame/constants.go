package frame

import (
	"unsafe"

	"github.com/spaghettifunk/citadel/engine/math"
)

// DefaultConstantBufferAlignment is the largest minUniformBufferOffsetAlignment seen in the wild.
const DefaultConstantBufferAlignment uint64 = 256

/**
 * @brief Per-object shader constants. The field layout matches the std140
 * uniform block in castle.vert.
 */
type ObjectConstants struct {
	World  math.Mat4
	Colour math.Vec4
}

func (oc *ObjectConstants) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(oc)), unsafe.Sizeof(*oc))
}

/**
 * @brief Per-frame shader constants. Every vec3 is followed by a float so the
 * struct keeps the std140 layout without hidden padding.
 */
type PassConstants struct {
	View        math.Mat4
	InvView     math.Mat4
	Proj        math.Mat4
	InvProj     math.Mat4
	ViewProj    math.Mat4
	InvViewProj math.Mat4

	EyePosW math.Vec3
	Pad0    float32

	RenderTargetSize    math.Vec2
	InvRenderTargetSize math.Vec2

	NearZ     float32
	FarZ      float32
	TotalTime float32
	DeltaTime float32

	LightDir math.Vec3
	Pad1     float32

	AmbientLight math.Vec4
}

func (pc *PassConstants) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(pc)), unsafe.Sizeof(*pc))
}

// NewPassConstants fills in the derived matrices from a view and a projection.
func NewPassConstants(view, proj math.Mat4, eye math.Vec3, width, height uint32, nearZ, farZ float32) PassConstants {
	viewProj := view.Mul(proj)
	pc := PassConstants{
		View:             view,
		InvView:          view.Inversed(),
		Proj:             proj,
		InvProj:          proj.Inversed(),
		ViewProj:         viewProj,
		InvViewProj:      viewProj.Inversed(),
		EyePosW:          eye,
		RenderTargetSize: math.NewVec2(float32(width), float32(height)),
		NearZ:            nearZ,
		FarZ:             farZ,
		LightDir:         math.NewVec3(-0.4, -1.0, -0.3).Normalized(),
		AmbientLight:     math.NewVec4(0.25, 0.25, 0.35, 1.0),
	}
	if width > 0 && height > 0 {
		pc.InvRenderTargetSize = math.NewVec2(1.0/float32(width), 1.0/float32(height))
	}
	return pc
}

// AlignConstantBufferSize rounds size up to a multiple of alignment, which
// must be a power of two. Zero alignment leaves size unchanged.
func AlignConstantBufferSize(size, alignment uint64) uint64 {
	if alignment == 0 {
		return size
	}
	return (size + alignment - 1) &^ (alignment - 1)
}

// ObjectConstantsSize and PassConstantsSize are the unpadded element sizes.
var (
	ObjectConstantsSize = uint64(unsafe.Sizeof(ObjectConstants{}))
	PassConstantsSize   = uint64(unsafe.Sizeof(PassConstants{}))
)
