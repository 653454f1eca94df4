package castle

import "github.com/spaghettifunk/citadel/engine/geometry"

// Shape names. Each is one submesh of the castle geometry.
const (
	ShapePlatform       = "platform"
	ShapeGround         = "ground"
	ShapeWall           = "wall"
	ShapeWallFront      = "wall_front"
	ShapeLintel         = "lintel"
	ShapeGateRoof       = "gate_roof"
	ShapeGatePost       = "gate_post"
	ShapePostCap        = "post_cap"
	ShapeTooth          = "tooth"
	ShapeTower          = "tower"
	ShapeTowerRoof      = "tower_roof"
	ShapeFinial         = "finial"
	ShapeFountainBasin  = "fountain_basin"
	ShapeFountainColumn = "fountain_column"
	ShapeFountainTop    = "fountain_top"
	ShapeFountainSpout  = "fountain_spout"
	ShapeRamp           = "ramp"
	ShapeButtress       = "buttress"
)

// Proportions of the decorative pieces relative to the base measurements.
func (l Layout) postSize() float32          { return l.WallThickness * 0.8 }
func (l Layout) postHeight() float32        { return l.GateHeight * 0.6 }
func (l Layout) gateRoofHeight() float32    { return l.RoofHeight * 0.5 }
func (l Layout) towerRoofRadius() float32   { return l.TowerRadius * 1.25 }
func (l Layout) finialRadius() float32      { return l.TowerRadius * 0.25 }
func (l Layout) finialTop() float32         { return l.RoofHeight * 0.2 }
func (l Layout) finialBottom() float32      { return l.RoofHeight * 0.1 }
func (l Layout) fountainTopRadius() float32 { return l.FountainTube * 1.5 }
func (l Layout) spoutHeight() float32       { return l.FountainTube * 2 }
func (l Layout) buttressHeight() float32    { return l.WallHeight * 0.75 }
func (l Layout) buttressDepth() float32     { return l.WallHeight * 0.5 }

/**
 * @brief Returns the primitives the layout needs, sized from the measurements
 * so instances only ever need rotation and translation. Scaling in the world
 * matrix would skew the normals.
 */
func Shapes(l Layout) []geometry.ShapeSpec {
	slices := l.Slices
	stacks := max(slices/2, 3)
	return []geometry.ShapeSpec{
		{Name: ShapePlatform, Kind: geometry.KindBox, Width: l.platformSize(), Height: l.PlatformHeight, Depth: l.platformSize()},
		{Name: ShapeGround, Kind: geometry.KindGrid, Width: l.GroundSize, Depth: l.GroundSize, Stacks: slices + 1, Slices: slices + 1},
		{Name: ShapeWall, Kind: geometry.KindBox, Width: l.WallThickness, Height: l.WallHeight, Depth: l.WallLength},
		{Name: ShapeWallFront, Kind: geometry.KindBox, Width: l.frontSegment(), Height: l.WallHeight, Depth: l.WallThickness},
		{Name: ShapeLintel, Kind: geometry.KindBox, Width: l.GateGap, Height: l.WallHeight - l.GateHeight, Depth: l.WallThickness},
		{Name: ShapeGateRoof, Kind: geometry.KindTriangularPrism, Width: l.GateGap + l.WallThickness, Height: l.gateRoofHeight(), Depth: 2 * l.WallThickness},
		{Name: ShapeGatePost, Kind: geometry.KindBox, Width: l.postSize(), Height: l.postHeight(), Depth: l.postSize()},
		{Name: ShapePostCap, Kind: geometry.KindPyramid, Width: l.postSize() * 1.2, Height: l.postSize()},
		{Name: ShapeTooth, Kind: geometry.KindBox, Width: l.ToothSize, Height: l.ToothSize, Depth: l.WallThickness},
		{Name: ShapeTower, Kind: geometry.KindCylinder, Radius: l.TowerRadius, TopRadius: l.TowerRadius, Height: l.TowerHeight, Slices: slices, Stacks: 1},
		{Name: ShapeTowerRoof, Kind: geometry.KindCone, Radius: l.towerRoofRadius(), Height: l.RoofHeight, Slices: slices},
		{Name: ShapeFinial, Kind: geometry.KindDiamond, Radius: l.finialRadius(), Height: l.finialTop(), Depth: l.finialBottom(), Slices: 6},
		{Name: ShapeFountainBasin, Kind: geometry.KindTorus, Radius: l.FountainRadius, TubeRadius: l.FountainTube, Slices: slices, Stacks: stacks},
		{Name: ShapeFountainColumn, Kind: geometry.KindCylinder, Radius: l.FountainTube, TopRadius: l.FountainTube * 0.7, Height: l.FountainColumnHeight, Slices: slices, Stacks: 1},
		{Name: ShapeFountainTop, Kind: geometry.KindSphere, Radius: l.fountainTopRadius(), Slices: slices, Stacks: stacks},
		{Name: ShapeFountainSpout, Kind: geometry.KindCone, Radius: l.FountainTube * 0.6, Height: l.spoutHeight(), Slices: slices},
		{Name: ShapeRamp, Kind: geometry.KindWedge, Width: l.GateGap, Height: l.PlatformHeight, Depth: l.RampLength},
		{Name: ShapeButtress, Kind: geometry.KindWedge, Width: l.WallThickness, Height: l.buttressHeight(), Depth: l.buttressDepth()},
	}
}
