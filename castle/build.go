package castle

import (
	"context"
	"fmt"
	"slices"

	"github.com/spaghettifunk/citadel/engine/core"
	"github.com/spaghettifunk/citadel/engine/geometry"
	"github.com/spaghettifunk/citadel/engine/scene"
)

// GeometryName is the name of the single geometry holding every castle shape.
const GeometryName = "castle"

/**
 * @brief Generates the castle primitives, packs them into one geometry and
 * creates a render item per placement. numFrames must match the renderer's
 * frames in flight.
 */
func BuildScene(ctx context.Context, l Layout, numFrames int) (*scene.Scene, error) {
	placements, err := Place(l)
	if err != nil {
		return nil, err
	}
	meshes, err := geometry.Generate(ctx, Shapes(l))
	if err != nil {
		return nil, fmt.Errorf("generate castle shapes: %w", err)
	}

	b := scene.NewBuilder(GeometryName)
	if err := b.AddMeshes(meshes); err != nil {
		return nil, err
	}
	geo, err := b.Build()
	if err != nil {
		return nil, err
	}

	s, err := scene.NewScene(numFrames)
	if err != nil {
		return nil, err
	}
	if err := s.AddGeometry(geo); err != nil {
		return nil, err
	}
	for _, p := range placements {
		if _, err := s.AddItem(p.Name, geo, p.Shape, p.World, p.Colour); err != nil {
			return nil, fmt.Errorf("place '%s': %w", p.Name, err)
		}
	}
	core.LogInfo("Castle built: %d shapes, %d objects, %d vertices.", len(meshes), len(placements), len(geo.Vertices))
	return s, nil
}

// SameShape reports whether two layouts generate identical meshes, in which
// case a layout change only moves objects around.
func SameShape(a, b Layout) bool {
	return slices.Equal(Shapes(a), Shapes(b))
}

/**
 * @brief Moves the items of s to the given placements. It fails without
 * touching the scene when the set of objects differs, so the caller can fall
 * back to a full rebuild.
 */
func Apply(s *scene.Scene, placements []Placement) error {
	if len(placements) != len(s.Items()) {
		return fmt.Errorf("%w: %d placements for %d items", scene.ErrUnknownItem, len(placements), len(s.Items()))
	}
	items := make([]*scene.RenderItem, len(placements))
	for i, p := range placements {
		ri, ok := s.Item(p.Name)
		if !ok {
			return fmt.Errorf("%w: '%s'", scene.ErrUnknownItem, p.Name)
		}
		items[i] = ri
	}
	for i, p := range placements {
		items[i].SetWorld(p.World)
		items[i].SetColour(p.Colour)
	}
	return nil
}
