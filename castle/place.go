package castle

import (
	"fmt"

	"github.com/spaghettifunk/citadel/engine/math"
)

// Placement is one object of the castle: which shape to draw, where, and in which colour.
type Placement struct {
	Name   string
	Shape  string
	World  math.Mat4
	Colour math.Vec4
}

var (
	colourStone     = math.NewVec4(0.62, 0.60, 0.56, 1)
	colourDarkStone = math.NewVec4(0.48, 0.46, 0.43, 1)
	colourPlatform  = math.NewVec4(0.55, 0.52, 0.47, 1)
	colourRoof      = math.NewVec4(0.62, 0.18, 0.14, 1)
	colourGold      = math.NewVec4(0.95, 0.78, 0.25, 1)
	colourWater     = math.NewVec4(0.25, 0.50, 0.85, 1)
	colourGrass     = math.NewVec4(0.30, 0.55, 0.25, 1)
	colourWood      = math.NewVec4(0.45, 0.32, 0.20, 1)
)

/**
 * @brief Computes the world transform and colour of every castle object.
 * The platform top is the y = 0 plane; the ground lies PlatformHeight below
 * it. The gate faces +Z.
 */
func Place(l Layout) ([]Placement, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}

	// Every object hangs off one root so the heading turns the castle as a whole.
	root := math.TransformCreate()
	root.RotateY(math.DegToRad(l.Rotation))
	at := func(x, y, z float32) math.Mat4 {
		t := math.TransformFromPosition(math.NewVec3(x, y, z))
		t.Parent = root
		return t.GetWorld()
	}
	// turned rotates about Y first, then translates.
	turned := func(angle, x, y, z float32) math.Mat4 {
		t := math.TransformFromPositionRotationScale(math.NewVec3(x, y, z), math.NewQuatFromAxisAngle(math.NewVec3Up(), angle, true), math.NewVec3One())
		t.Parent = root
		return t.GetWorld()
	}

	var (
		half      = l.WallLength * 0.5
		thick     = l.WallThickness
		wallY     = l.WallHeight * 0.5
		halfGap   = l.GateGap * 0.5
		segment   = l.frontSegment()
		toothY    = l.WallHeight + l.ToothSize*0.5
		frontEdge = half + l.PlatformMargin
	)

	out := []Placement{
		{Name: "ground", Shape: ShapeGround, World: at(0, -l.PlatformHeight, 0), Colour: colourGrass},
		{Name: "platform", Shape: ShapePlatform, World: at(0, -l.PlatformHeight*0.5, 0), Colour: colourPlatform},
		{Name: "ramp", Shape: ShapeRamp, World: at(0, -l.PlatformHeight*0.5, frontEdge+l.RampLength*0.5), Colour: colourWood},

		{Name: "wall_back", Shape: ShapeWall, World: turned(math.K_HALF_PI, 0, wallY, -half), Colour: colourStone},
		{Name: "wall_left", Shape: ShapeWall, World: at(-half, wallY, 0), Colour: colourStone},
		{Name: "wall_right", Shape: ShapeWall, World: at(half, wallY, 0), Colour: colourStone},
		{Name: "wall_front_left", Shape: ShapeWallFront, World: at(-(halfGap + segment*0.5), wallY, half), Colour: colourStone},
		{Name: "wall_front_right", Shape: ShapeWallFront, World: at(halfGap+segment*0.5, wallY, half), Colour: colourStone},

		{Name: "gate_lintel", Shape: ShapeLintel, World: at(0, l.GateHeight+(l.WallHeight-l.GateHeight)*0.5, half), Colour: colourDarkStone},
		{Name: "gate_roof", Shape: ShapeGateRoof, World: at(0, l.WallHeight+l.gateRoofHeight()*0.5, half), Colour: colourRoof},
	}

	// Gate posts flank the top of the ramp.
	postX := halfGap + l.postSize()*0.5
	postZ := frontEdge - l.postSize()*0.5
	capY := l.postHeight() + l.postSize()*0.5
	for _, side := range []struct {
		name string
		sign float32
	}{{"left", -1}, {"right", 1}} {
		out = append(out,
			Placement{Name: "gate_post_" + side.name, Shape: ShapeGatePost, World: at(side.sign*postX, l.postHeight()*0.5, postZ), Colour: colourDarkStone},
			Placement{Name: "post_cap_" + side.name, Shape: ShapePostCap, World: at(side.sign*postX, capY, postZ), Colour: colourGold},
		)
	}

	// Crenellation stops where the towers begin.
	inner := half - l.TowerRadius
	out = append(out, teeth(l, "tooth_back", -inner, inner, func(t float32) math.Mat4 { return at(t, toothY, -half) })...)
	out = append(out, teeth(l, "tooth_left", -inner, inner, func(t float32) math.Mat4 { return turned(math.K_HALF_PI, -half, toothY, t) })...)
	out = append(out, teeth(l, "tooth_right", -inner, inner, func(t float32) math.Mat4 { return turned(math.K_HALF_PI, half, toothY, t) })...)
	out = append(out, teeth(l, "tooth_front_left", -inner, -halfGap, func(t float32) math.Mat4 { return at(t, toothY, half) })...)
	out = append(out, teeth(l, "tooth_front_right", halfGap, inner, func(t float32) math.Mat4 { return at(t, toothY, half) })...)

	for _, corner := range []struct {
		name string
		x, z float32
	}{
		{"nw", -half, -half},
		{"ne", half, -half},
		{"sw", -half, half},
		{"se", half, half},
	} {
		out = append(out,
			Placement{Name: "tower_" + corner.name, Shape: ShapeTower, World: at(corner.x, l.TowerHeight*0.5, corner.z), Colour: colourStone},
			Placement{Name: "tower_roof_" + corner.name, Shape: ShapeTowerRoof, World: at(corner.x, l.TowerHeight+l.RoofHeight*0.5, corner.z), Colour: colourRoof},
			Placement{Name: "finial_" + corner.name, Shape: ShapeFinial, World: at(corner.x, l.TowerHeight+l.RoofHeight+l.finialBottom(), corner.z), Colour: colourGold},
		)
	}

	topR := l.fountainTopRadius()
	out = append(out,
		Placement{Name: "fountain_basin", Shape: ShapeFountainBasin, World: at(0, l.FountainTube, 0), Colour: colourWater},
		Placement{Name: "fountain_column", Shape: ShapeFountainColumn, World: at(0, l.FountainColumnHeight*0.5, 0), Colour: colourStone},
		Placement{Name: "fountain_top", Shape: ShapeFountainTop, World: at(0, l.FountainColumnHeight, 0), Colour: colourWater},
		Placement{Name: "fountain_spout", Shape: ShapeFountainSpout, World: at(0, l.FountainColumnHeight+topR*0.8+l.spoutHeight()*0.5, 0), Colour: colourGold},
	)

	// The wedge slope rises toward -Z; turned half a circle it leans on the back wall.
	step := l.WallLength / float32(l.ButtressCount+1)
	buttressZ := -half - thick*0.5 - l.buttressDepth()*0.5
	for i := 0; i < l.ButtressCount; i++ {
		out = append(out, Placement{
			Name:   fmt.Sprintf("buttress_%02d", i),
			Shape:  ShapeButtress,
			World:  turned(math.K_PI, -half+float32(i+1)*step, l.buttressHeight()*0.5, buttressZ),
			Colour: colourDarkStone,
		})
	}
	return out, nil
}

/**
 * @brief Spaces teeth of ToothSize along [from, to] with one tooth width of
 * gap between them, centring the run in the span.
 */
func teeth(l Layout, prefix string, from, to float32, world func(t float32) math.Mat4) []Placement {
	size := l.ToothSize
	span := to - from
	n := int((span + size) / (2 * size))
	if n < 1 {
		return nil
	}
	used := float32(2*n-1) * size
	first := from + (span-used)*0.5 + size*0.5

	out := make([]Placement, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Placement{
			Name:   fmt.Sprintf("%s_%02d", prefix, i),
			Shape:  ShapeTooth,
			World:  world(first + float32(i)*2*size),
			Colour: colourStone,
		})
	}
	return out
}
