package scene

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/spaghettifunk/citadel/engine/core"
	"github.com/spaghettifunk/citadel/engine/math"
)

var (
	ErrDuplicateItem = errors.New("render item name already used")
	ErrUnknownItem   = errors.New("unknown render item")
)

/**
 * @brief Owns the render items and the geometry they draw from. Items are
 * drawn in insertion order.
 */
type Scene struct {
	numFrames  int
	pool       *core.IDPool
	items      []*RenderItem
	byName     map[string]*RenderItem
	geometries map[string]*MeshGeometry
}

// NewScene creates a scene whose items stay dirty for numFrames frames after a change.
func NewScene(numFrames int) (*Scene, error) {
	if numFrames < 1 {
		return nil, fmt.Errorf("%w: scene needs at least one frame resource, got %d", core.ErrInvalidConfig, numFrames)
	}
	return &Scene{
		numFrames:  numFrames,
		pool:       core.NewIDPool(),
		byName:     make(map[string]*RenderItem),
		geometries: make(map[string]*MeshGeometry),
	}, nil
}

func (s *Scene) FrameCount() int {
	return s.numFrames
}

func (s *Scene) AddGeometry(g *MeshGeometry) error {
	if _, ok := s.geometries[g.Name]; ok {
		return fmt.Errorf("%w: geometry '%s'", ErrDuplicateMesh, g.Name)
	}
	s.geometries[g.Name] = g
	return nil
}

func (s *Scene) Geometry(name string) (*MeshGeometry, bool) {
	g, ok := s.geometries[name]
	return g, ok
}

func (s *Scene) Geometries() []*MeshGeometry {
	out := make([]*MeshGeometry, 0, len(s.geometries))
	for _, g := range s.geometries {
		out = append(out, g)
	}
	return out
}

/**
 * @brief Creates a render item drawing the named submesh of geo. The item
 * gets the lowest free object constant buffer slot and starts dirty.
 */
func (s *Scene) AddItem(name string, geo *MeshGeometry, submesh string, world math.Mat4, colour math.Vec4) (*RenderItem, error) {
	if _, ok := s.byName[name]; ok {
		return nil, fmt.Errorf("%w: '%s'", ErrDuplicateItem, name)
	}
	if _, ok := s.geometries[geo.Name]; !ok {
		return nil, fmt.Errorf("%w: geometry '%s' was not added to the scene", ErrUnknownMesh, geo.Name)
	}
	args, ok := geo.Submesh(submesh)
	if !ok {
		return nil, fmt.Errorf("%w: '%s' in geometry '%s'", ErrUnknownMesh, submesh, geo.Name)
	}
	ri := &RenderItem{
		ID:                 uuid.New(),
		Name:               name,
		World:              world,
		Colour:             colour,
		NumFramesDirty:     s.numFrames,
		Geo:                geo,
		Topology:           TopologyTriangleList,
		IndexCount:         args.IndexCount,
		StartIndexLocation: args.StartIndexLocation,
		BaseVertexLocation: args.BaseVertexLocation,
		numFrames:          s.numFrames,
	}
	ri.ObjCBIndex = s.pool.Acquire(ri)
	s.items = append(s.items, ri)
	s.byName[name] = ri
	return ri, nil
}

// RemoveItem drops the item and frees its constant buffer slot.
func (s *Scene) RemoveItem(name string) error {
	ri, ok := s.byName[name]
	if !ok {
		return fmt.Errorf("%w: '%s'", ErrUnknownItem, name)
	}
	if err := s.pool.Release(ri.ObjCBIndex); err != nil {
		return err
	}
	delete(s.byName, name)
	for i, it := range s.items {
		if it == ri {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	return nil
}

// Items returns the render items in draw order. The slice must not be modified.
func (s *Scene) Items() []*RenderItem {
	return s.items
}

func (s *Scene) Item(name string) (*RenderItem, bool) {
	ri, ok := s.byName[name]
	return ri, ok
}

func (s *Scene) ItemByID(id uuid.UUID) (*RenderItem, bool) {
	for _, ri := range s.items {
		if ri.ID == id {
			return ri, true
		}
	}
	return nil, false
}

// ObjectCount is the number of object constant buffer slots the scene needs.
func (s *Scene) ObjectCount() int {
	return s.pool.Cap()
}

// MarkAllDirty schedules every item for upload, e.g. after frame resources were recreated.
func (s *Scene) MarkAllDirty() {
	for _, ri := range s.items {
		ri.MarkDirty()
	}
}
