package geometry

import (
	"fmt"

	"github.com/spaghettifunk/citadel/engine/math"
)

// Box creates an axis-aligned box centred on the origin, four vertices per face.
func Box(width, height, depth float32) (*MeshData, error) {
	if err := firstError(positive("width", width), positive("height", height), positive("depth", depth)); err != nil {
		return nil, err
	}
	hw, hh, hd := width*0.5, height*0.5, depth*0.5

	m := newMeshData(24, 36)
	faces := []struct {
		normal, right, up math.Vec3
	}{
		{math.NewVec3(0, 0, hd), math.NewVec3(hw, 0, 0), math.NewVec3(0, hh, 0)},   // front
		{math.NewVec3(0, 0, -hd), math.NewVec3(-hw, 0, 0), math.NewVec3(0, hh, 0)}, // back
		{math.NewVec3(-hw, 0, 0), math.NewVec3(0, 0, hd), math.NewVec3(0, hh, 0)},  // left
		{math.NewVec3(hw, 0, 0), math.NewVec3(0, 0, -hd), math.NewVec3(0, hh, 0)},  // right
		{math.NewVec3(0, hh, 0), math.NewVec3(hw, 0, 0), math.NewVec3(0, 0, -hd)},  // top
		{math.NewVec3(0, -hh, 0), math.NewVec3(hw, 0, 0), math.NewVec3(0, 0, hd)},  // bottom
	}
	for _, f := range faces {
		m.addQuad(
			f.normal.Sub(f.right).Sub(f.up),
			f.normal.Add(f.right).Sub(f.up),
			f.normal.Add(f.right).Add(f.up),
			f.normal.Sub(f.right).Add(f.up),
		)
	}
	return m, nil
}

// Sphere creates a UV sphere: two poles plus stacks-1 rings of slices+1 vertices.
// The seam column is duplicated so texture coordinates wrap cleanly.
func Sphere(radius float32, slices, stacks uint32) (*MeshData, error) {
	if err := firstError(positive("radius", radius), atLeast("slices", slices, 3), atLeast("stacks", stacks, 2)); err != nil {
		return nil, err
	}
	ringSize := slices + 1
	vertexCount := 2 + (stacks-1)*ringSize
	m := newMeshData(int(vertexCount), int(6*slices*(stacks-1)))

	m.Vertices = append(m.Vertices, math.Vertex3D{
		Position: math.NewVec3(0, radius, 0),
		Normal:   math.NewVec3Up(),
		Texcoord: math.NewVec2(0, 0),
		Tangent:  math.NewVec3Right(),
	})
	phiStep := math.K_PI / float32(stacks)
	thetaStep := math.K_PI_2 / float32(slices)
	for i := uint32(1); i < stacks; i++ {
		phi := float32(i) * phiStep
		for j := uint32(0); j <= slices; j++ {
			theta := float32(j) * thetaStep
			n := math.NewVec3(sin(phi)*cos(theta), cos(phi), sin(phi)*sin(theta))
			m.Vertices = append(m.Vertices, math.Vertex3D{
				Position: n.MulScalar(radius),
				Normal:   n,
				Texcoord: math.NewVec2(theta/math.K_PI_2, phi/math.K_PI),
				Tangent:  math.NewVec3(-sin(theta), 0, cos(theta)),
			})
		}
	}
	m.Vertices = append(m.Vertices, math.Vertex3D{
		Position: math.NewVec3(0, -radius, 0),
		Normal:   math.NewVec3(0, -1, 0),
		Texcoord: math.NewVec2(0, 1),
		Tangent:  math.NewVec3Right(),
	})

	ring := func(i, j uint32) uint32 { return 1 + i*ringSize + j }

	// top cap
	for j := uint32(0); j < slices; j++ {
		m.Indices = append(m.Indices, 0, ring(0, j+1), ring(0, j))
	}
	for i := uint32(0); i+1 < stacks-1; i++ {
		for j := uint32(0); j < slices; j++ {
			m.Indices = append(m.Indices,
				ring(i, j), ring(i, j+1), ring(i+1, j+1),
				ring(i, j), ring(i+1, j+1), ring(i+1, j),
			)
		}
	}
	// bottom cap
	south := vertexCount - 1
	last := stacks - 2
	for j := uint32(0); j < slices; j++ {
		m.Indices = append(m.Indices, ring(last, j), ring(last, j+1), south)
	}
	return m, nil
}

// Cylinder creates a (possibly tapered) cylinder centred on the origin along Y.
// A radius of zero on either end drops that cap.
func Cylinder(bottomRadius, topRadius, height float32, slices, stacks uint32) (*MeshData, error) {
	if err := firstError(positive("height", height), atLeast("slices", slices, 3), atLeast("stacks", stacks, 1)); err != nil {
		return nil, err
	}
	if bottomRadius < 0 || topRadius < 0 || (bottomRadius == 0 && topRadius == 0) {
		return nil, fmt.Errorf("%w: cylinder radii %v/%v", ErrInvalidShape, bottomRadius, topRadius)
	}
	ringSize := slices + 1
	m := newMeshData(int((stacks+1)*ringSize+2*(ringSize+1)), int(6*slices*stacks+6*slices))

	stackHeight := height / float32(stacks)
	radiusStep := (topRadius - bottomRadius) / float32(stacks)
	dr := bottomRadius - topRadius
	thetaStep := math.K_PI_2 / float32(slices)
	for i := uint32(0); i <= stacks; i++ {
		y := -0.5*height + float32(i)*stackHeight
		r := bottomRadius + float32(i)*radiusStep
		for j := uint32(0); j <= slices; j++ {
			theta := float32(j) * thetaStep
			c, s := cos(theta), sin(theta)
			tangent := math.NewVec3(-s, 0, c)
			bitangent := math.NewVec3(dr*c, -height, dr*s)
			m.Vertices = append(m.Vertices, math.Vertex3D{
				Position: math.NewVec3(r*c, y, r*s),
				Normal:   tangent.Cross(bitangent).Normalized(),
				Texcoord: math.NewVec2(float32(j)/float32(slices), 1-float32(i)/float32(stacks)),
				Tangent:  tangent,
			})
		}
	}
	for i := uint32(0); i < stacks; i++ {
		for j := uint32(0); j < slices; j++ {
			lo := i*ringSize + j
			hi := (i+1)*ringSize + j
			m.Indices = append(m.Indices,
				hi, hi+1, lo+1,
				hi, lo+1, lo,
			)
		}
	}
	if topRadius > 0 {
		m.addCap(topRadius, 0.5*height, slices, true)
	}
	if bottomRadius > 0 {
		m.addCap(bottomRadius, -0.5*height, slices, false)
	}
	return m, nil
}

// addCap appends a disc facing +Y (top) or -Y at height y.
func (m *MeshData) addCap(radius, y float32, slices uint32, top bool) {
	normal := math.NewVec3(0, -1, 0)
	if top {
		normal = math.NewVec3Up()
	}
	center := m.base()
	m.Vertices = append(m.Vertices, math.Vertex3D{
		Position: math.NewVec3(0, y, 0),
		Normal:   normal,
		Texcoord: math.NewVec2(0.5, 0.5),
		Tangent:  math.NewVec3Right(),
	})
	thetaStep := math.K_PI_2 / float32(slices)
	for j := uint32(0); j <= slices; j++ {
		theta := float32(j) * thetaStep
		c, s := cos(theta), sin(theta)
		m.Vertices = append(m.Vertices, math.Vertex3D{
			Position: math.NewVec3(radius*c, y, radius*s),
			Normal:   normal,
			Texcoord: math.NewVec2(0.5+0.5*c, 0.5+0.5*s),
			Tangent:  math.NewVec3Right(),
		})
	}
	for j := uint32(0); j < slices; j++ {
		a, b := center+1+j, center+2+j
		if top {
			m.Indices = append(m.Indices, center, b, a)
		} else {
			m.Indices = append(m.Indices, center, a, b)
		}
	}
}

// Cone creates a cone centred on the origin with its apex at +height/2 and a
// closed base. Each slice gets its own apex vertex so side normals stay smooth.
func Cone(radius, height float32, slices uint32) (*MeshData, error) {
	if err := firstError(positive("radius", radius), positive("height", height), atLeast("slices", slices, 3)); err != nil {
		return nil, err
	}
	m := newMeshData(int(2*slices+3+slices+1), int(6*slices))

	slant := func(theta float32) math.Vec3 {
		return math.NewVec3(height*cos(theta), radius, height*sin(theta)).Normalized()
	}
	thetaStep := math.K_PI_2 / float32(slices)
	y := -0.5 * height
	for j := uint32(0); j <= slices; j++ {
		theta := float32(j) * thetaStep
		m.Vertices = append(m.Vertices, math.Vertex3D{
			Position: math.NewVec3(radius*cos(theta), y, radius*sin(theta)),
			Normal:   slant(theta),
			Texcoord: math.NewVec2(float32(j)/float32(slices), 1),
			Tangent:  math.NewVec3(-sin(theta), 0, cos(theta)),
		})
	}
	apex := m.base()
	for j := uint32(0); j < slices; j++ {
		theta := (float32(j) + 0.5) * thetaStep
		m.Vertices = append(m.Vertices, math.Vertex3D{
			Position: math.NewVec3(0, 0.5*height, 0),
			Normal:   slant(theta),
			Texcoord: math.NewVec2((float32(j)+0.5)/float32(slices), 0),
			Tangent:  math.NewVec3(-sin(theta), 0, cos(theta)),
		})
	}
	for j := uint32(0); j < slices; j++ {
		m.Indices = append(m.Indices, apex+j, j+1, j)
	}
	m.addCap(radius, y, slices, false)
	return m, nil
}

// Torus creates a ring lying in the XZ plane around the Y axis.
func Torus(majorRadius, minorRadius float32, ringSegments, tubeSegments uint32) (*MeshData, error) {
	if err := firstError(
		positive("major radius", majorRadius),
		positive("minor radius", minorRadius),
		atLeast("ring segments", ringSegments, 3),
		atLeast("tube segments", tubeSegments, 3),
	); err != nil {
		return nil, err
	}
	if minorRadius >= majorRadius {
		return nil, fmt.Errorf("%w: minor radius %v must be smaller than major radius %v", ErrInvalidShape, minorRadius, majorRadius)
	}
	tubeSize := tubeSegments + 1
	m := newMeshData(int((ringSegments+1)*tubeSize), int(6*ringSegments*tubeSegments))

	for j := uint32(0); j <= ringSegments; j++ {
		u := float32(j) / float32(ringSegments) * math.K_PI_2
		cu, su := cos(u), sin(u)
		for i := uint32(0); i <= tubeSegments; i++ {
			v := float32(i) / float32(tubeSegments) * math.K_PI_2
			cv, sv := cos(v), sin(v)
			r := majorRadius + minorRadius*cv
			m.Vertices = append(m.Vertices, math.Vertex3D{
				Position: math.NewVec3(r*cu, minorRadius*sv, r*su),
				Normal:   math.NewVec3(cv*cu, sv, cv*su),
				Texcoord: math.NewVec2(float32(j)/float32(ringSegments), float32(i)/float32(tubeSegments)),
				Tangent:  math.NewVec3(-su, 0, cu),
			})
		}
	}
	for j := uint32(0); j < ringSegments; j++ {
		for i := uint32(0); i < tubeSegments; i++ {
			a := j*tubeSize + i
			b := (j+1)*tubeSize + i
			c := b + 1
			d := a + 1
			m.Indices = append(m.Indices, a, d, c, a, c, b)
		}
	}
	return m, nil
}

// Grid creates an m x n lattice of vertices in the XZ plane facing +Y.
// Rows run along Z, columns along X.
func Grid(width, depth float32, rows, cols uint32) (*MeshData, error) {
	if err := firstError(positive("width", width), positive("depth", depth), atLeast("rows", rows, 2), atLeast("cols", cols, 2)); err != nil {
		return nil, err
	}
	m := newMeshData(int(rows*cols), int((rows-1)*(cols-1)*6))

	dx := width / float32(cols-1)
	dz := depth / float32(rows-1)
	for i := uint32(0); i < rows; i++ {
		z := 0.5*depth - float32(i)*dz
		for j := uint32(0); j < cols; j++ {
			x := -0.5*width + float32(j)*dx
			m.Vertices = append(m.Vertices, math.Vertex3D{
				Position: math.NewVec3(x, 0, z),
				Normal:   math.NewVec3Up(),
				Texcoord: math.NewVec2(float32(j)/float32(cols-1), float32(i)/float32(rows-1)),
				Tangent:  math.NewVec3Right(),
			})
		}
	}
	for i := uint32(0); i+1 < rows; i++ {
		for j := uint32(0); j+1 < cols; j++ {
			a := i*cols + j
			b := a + 1
			d := (i+1)*cols + j
			c := d + 1
			m.Indices = append(m.Indices, a, b, c, a, c, d)
		}
	}
	return m, nil
}

// Pyramid creates a square-based pyramid centred on the origin with flat-shaded sides.
func Pyramid(base, height float32) (*MeshData, error) {
	if err := firstError(positive("base", base), positive("height", height)); err != nil {
		return nil, err
	}
	hb, hh := base*0.5, height*0.5
	m := newMeshData(16, 18)

	apex := math.NewVec3(0, hh, 0)
	sides := []struct{ out, right math.Vec3 }{
		{math.NewVec3(0, 0, hb), math.NewVec3(hb, 0, 0)},
		{math.NewVec3(hb, 0, 0), math.NewVec3(0, 0, -hb)},
		{math.NewVec3(0, 0, -hb), math.NewVec3(-hb, 0, 0)},
		{math.NewVec3(-hb, 0, 0), math.NewVec3(0, 0, hb)},
	}
	down := math.NewVec3(0, -hh, 0)
	for _, s := range sides {
		edge := s.out.Add(down)
		m.addTri(edge.Sub(s.right), edge.Add(s.right), apex)
	}
	m.addQuad(
		math.NewVec3(-hb, -hh, -hb),
		math.NewVec3(hb, -hh, -hb),
		math.NewVec3(hb, -hh, hb),
		math.NewVec3(-hb, -hh, hb),
	)
	return m, nil
}

// Wedge creates a right-triangular prism centred on its bounding box. The
// slope runs from the bottom front edge (+Z) up to the top back edge (-Z).
func Wedge(width, height, depth float32) (*MeshData, error) {
	if err := firstError(positive("width", width), positive("height", height), positive("depth", depth)); err != nil {
		return nil, err
	}
	hw, hh, hd := width*0.5, height*0.5, depth*0.5
	m := newMeshData(18, 24)

	// slope
	m.addQuad(
		math.NewVec3(-hw, -hh, hd),
		math.NewVec3(hw, -hh, hd),
		math.NewVec3(hw, hh, -hd),
		math.NewVec3(-hw, hh, -hd),
	)
	// back
	m.addQuad(
		math.NewVec3(hw, -hh, -hd),
		math.NewVec3(-hw, -hh, -hd),
		math.NewVec3(-hw, hh, -hd),
		math.NewVec3(hw, hh, -hd),
	)
	// bottom
	m.addQuad(
		math.NewVec3(-hw, -hh, -hd),
		math.NewVec3(hw, -hh, -hd),
		math.NewVec3(hw, -hh, hd),
		math.NewVec3(-hw, -hh, hd),
	)
	m.addTri(math.NewVec3(hw, -hh, hd), math.NewVec3(hw, -hh, -hd), math.NewVec3(hw, hh, -hd))
	m.addTri(math.NewVec3(-hw, -hh, -hd), math.NewVec3(-hw, -hh, hd), math.NewVec3(-hw, hh, -hd))
	return m, nil
}

// Diamond creates a flat-shaded bipyramid: a girdle of slices vertices at
// y = 0, an apex at +topHeight and a point at -bottomHeight.
func Diamond(radius, topHeight, bottomHeight float32, slices uint32) (*MeshData, error) {
	if err := firstError(
		positive("radius", radius),
		positive("top height", topHeight),
		positive("bottom height", bottomHeight),
		atLeast("slices", slices, 3),
	); err != nil {
		return nil, err
	}
	m := newMeshData(int(6*slices), int(6*slices))

	top := math.NewVec3(0, topHeight, 0)
	bottom := math.NewVec3(0, -bottomHeight, 0)
	girdle := func(j uint32) math.Vec3 {
		theta := float32(j%slices) / float32(slices) * math.K_PI_2
		return math.NewVec3(radius*cos(theta), 0, radius*sin(theta))
	}
	for j := uint32(0); j < slices; j++ {
		g0, g1 := girdle(j), girdle(j+1)
		m.addTri(top, g1, g0)
		m.addTri(g0, g1, bottom)
	}
	return m, nil
}

// TriangularPrism creates an isosceles triangle in XY extruded along Z, centred on the origin.
func TriangularPrism(width, height, depth float32) (*MeshData, error) {
	if err := firstError(positive("width", width), positive("height", height), positive("depth", depth)); err != nil {
		return nil, err
	}
	hw, hh, hd := width*0.5, height*0.5, depth*0.5
	m := newMeshData(18, 24)

	m.addTri(math.NewVec3(-hw, -hh, hd), math.NewVec3(hw, -hh, hd), math.NewVec3(0, hh, hd))
	m.addTri(math.NewVec3(hw, -hh, -hd), math.NewVec3(-hw, -hh, -hd), math.NewVec3(0, hh, -hd))
	// bottom
	m.addQuad(
		math.NewVec3(-hw, -hh, -hd),
		math.NewVec3(hw, -hh, -hd),
		math.NewVec3(hw, -hh, hd),
		math.NewVec3(-hw, -hh, hd),
	)
	// right slope
	m.addQuad(
		math.NewVec3(hw, -hh, hd),
		math.NewVec3(hw, -hh, -hd),
		math.NewVec3(0, hh, -hd),
		math.NewVec3(0, hh, hd),
	)
	// left slope
	m.addQuad(
		math.NewVec3(-hw, -hh, -hd),
		math.NewVec3(-hw, -hh, hd),
		math.NewVec3(0, hh, hd),
		math.NewVec3(0, hh, -hd),
	)
	return m, nil
}
