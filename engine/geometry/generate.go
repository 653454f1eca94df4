package geometry

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/spaghettifunk/citadel/engine/core"
)

type Kind uint8

const (
	KindBox Kind = iota
	KindSphere
	KindCylinder
	KindCone
	KindTorus
	KindGrid
	KindPyramid
	KindWedge
	KindDiamond
	KindTriangularPrism
)

func (k Kind) String() string {
	switch k {
	case KindBox:
		return "box"
	case KindSphere:
		return "sphere"
	case KindCylinder:
		return "cylinder"
	case KindCone:
		return "cone"
	case KindTorus:
		return "torus"
	case KindGrid:
		return "grid"
	case KindPyramid:
		return "pyramid"
	case KindWedge:
		return "wedge"
	case KindDiamond:
		return "diamond"
	case KindTriangularPrism:
		return "triangular prism"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

/**
 * ShapeSpec describes one primitive to generate. Which fields are read depends on Kind:
 *   box, wedge, triangular prism: Width, Height, Depth
 *   sphere: Radius, Slices, Stacks
 *   cylinder: Radius (bottom), TopRadius, Height, Slices, Stacks
 *   cone: Radius, Height, Slices
 *   torus: Radius (major), TubeRadius (minor), Slices (ring segments), Stacks (tube segments)
 *   grid: Width, Depth, Stacks (rows), Slices (columns)
 *   pyramid: Width (base), Height
 *   diamond: Radius, Height (top), Depth (bottom), Slices
 */
type ShapeSpec struct {
	Name string
	Kind Kind

	Width, Height, Depth          float32
	Radius, TopRadius, TubeRadius float32
	Slices, Stacks                uint32
}

// Build generates the mesh the spec describes.
func (s ShapeSpec) Build() (*MeshData, error) {
	var (
		m   *MeshData
		err error
	)
	switch s.Kind {
	case KindBox:
		m, err = Box(s.Width, s.Height, s.Depth)
	case KindSphere:
		m, err = Sphere(s.Radius, s.Slices, s.Stacks)
	case KindCylinder:
		m, err = Cylinder(s.Radius, s.TopRadius, s.Height, s.Slices, s.Stacks)
	case KindCone:
		m, err = Cone(s.Radius, s.Height, s.Slices)
	case KindTorus:
		m, err = Torus(s.Radius, s.TubeRadius, s.Slices, s.Stacks)
	case KindGrid:
		m, err = Grid(s.Width, s.Depth, s.Stacks, s.Slices)
	case KindPyramid:
		m, err = Pyramid(s.Width, s.Height)
	case KindWedge:
		m, err = Wedge(s.Width, s.Height, s.Depth)
	case KindDiamond:
		m, err = Diamond(s.Radius, s.Height, s.Depth, s.Slices)
	case KindTriangularPrism:
		m, err = TriangularPrism(s.Width, s.Height, s.Depth)
	default:
		err = fmt.Errorf("%w: unknown kind %s", ErrInvalidShape, s.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("shape '%s' (%s): %w", s.Name, s.Kind, err)
	}
	return m, nil
}

// NamedMesh pairs a generated mesh with the name of the spec it came from.
type NamedMesh struct {
	Name string
	Mesh *MeshData
}

// Generate builds every spec concurrently. Results keep the order of specs;
// the first failure cancels the rest.
func Generate(ctx context.Context, specs []ShapeSpec) ([]NamedMesh, error) {
	out := make([]NamedMesh, len(specs))
	g, ctx := errgroup.WithContext(ctx)
	for i, spec := range specs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := spec.Build()
			if err != nil {
				return err
			}
			out[i] = NamedMesh{Name: spec.Name, Mesh: m}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, nm := range out {
		core.LogDebug("generated '%s': %d vertices, %d indices", nm.Name, len(nm.Mesh.Vertices), len(nm.Mesh.Indices))
	}
	return out, nil
}
