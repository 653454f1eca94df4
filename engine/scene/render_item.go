package scene

import (
	"github.com/google/uuid"

	"github.com/spaghettifunk/citadel/engine/math"
)

type PrimitiveTopology uint8

const (
	TopologyTriangleList PrimitiveTopology = iota
	TopologyLineList
)

// RenderItem is everything needed to issue one draw call for one object.
type RenderItem struct {
	ID   uuid.UUID
	Name string

	World  math.Mat4
	Colour math.Vec4

	// NumFramesDirty counts how many frame resources still hold stale
	// constants for this item. Every frame resource has its own object
	// buffer, so a change has to be written once per frame resource.
	NumFramesDirty int
	// ObjCBIndex is the slot of this item in each object constant buffer.
	ObjCBIndex uint32

	Geo      *MeshGeometry
	Topology PrimitiveTopology

	IndexCount         uint32
	StartIndexLocation uint32
	BaseVertexLocation int32

	numFrames int
}

// SetWorld replaces the world matrix and schedules it for upload to every frame resource.
func (ri *RenderItem) SetWorld(world math.Mat4) {
	ri.World = world
	ri.NumFramesDirty = ri.numFrames
}

// SetColour replaces the colour and schedules it for upload to every frame resource.
func (ri *RenderItem) SetColour(colour math.Vec4) {
	ri.Colour = colour
	ri.NumFramesDirty = ri.numFrames
}

// MarkDirty forces the next numFrames frames to rewrite this item's constants.
func (ri *RenderItem) MarkDirty() {
	ri.NumFramesDirty = ri.numFrames
}

func (ri *RenderItem) Dirty() bool {
	return ri.NumFramesDirty > 0
}
