package math

import "testing"

const tolerance = 1e-4

func TestMat4Inverse(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
	}{
		{"identity", NewMat4Identity()},
		{"translation", NewMat4Translation(NewVec3(3, -2, 7))},
		{"scale rotate translate", NewMat4Scale(NewVec3(2, 0.5, 4)).Mul(NewMat4EulerY(0.7)).Mul(NewMat4Translation(NewVec3(1, 2, 3)))},
		{"look at", NewMat4LookAt(NewVec3(5, 4, -3), NewVec3Zero(), NewVec3Up())},
		{"perspective", NewMat4Perspective(DegToRad(45), 16.0/9.0, 0.1, 1000)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, ok := tt.m.Inverse()
			if !ok {
				t.Fatalf("expected %s to be invertible", tt.name)
			}
			if got := tt.m.Mul(inv); !got.Compare(NewMat4Identity(), tolerance) {
				t.Errorf("m * inverse(m) = %v, want identity", got.Data)
			}
		})
	}
}

func TestMat4InverseSingular(t *testing.T) {
	if _, ok := NewMat4Scale(NewVec3(1, 0, 1)).Inverse(); ok {
		t.Fatal("expected singular matrix to report !ok")
	}
}

func TestLookAtMovesEyeToOrigin(t *testing.T) {
	eye := NewVec3(10, 5, 10)
	view := NewMat4LookAt(eye, NewVec3Zero(), NewVec3Up())

	if got := eye.Transform(1, view); !got.Compare(NewVec3Zero(), tolerance) {
		t.Errorf("eye in view space = %v, want origin", got)
	}
	// the target ends up straight ahead on -Z
	got := NewVec3Zero().Transform(1, view)
	if !got.Compare(NewVec3(0, 0, -eye.Length()), tolerance) {
		t.Errorf("target in view space = %v", got)
	}
}

func TestQuaternionMatchesEuler(t *testing.T) {
	angles := []float32{0, K_QUARTER_PI, K_HALF_PI, K_PI, -1.2}
	for _, a := range angles {
		q := NewQuatFromAxisAngle(NewVec3Up(), a, true)
		if !q.ToMat4().Compare(NewMat4EulerY(a), tolerance) {
			t.Errorf("angle %v: quaternion matrix differs from euler Y", a)
		}
	}
}

func TestTransformOrder(t *testing.T) {
	tr := TransformFromPositionScale(NewVec3(10, 0, 0), NewVec3(2, 2, 2))
	tr.RotateY(K_HALF_PI)

	// scale first, then rotate +X onto -Z, then translate
	got := NewVec3(1, 0, 0).Transform(1, tr.GetWorld())
	want := NewVec3(10, 0, -2)
	if !got.Compare(want, tolerance) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestTransformParent(t *testing.T) {
	parent := TransformFromPosition(NewVec3(0, 5, 0))
	child := TransformFromPosition(NewVec3(1, 0, 0))
	child.Parent = parent

	got := NewVec3Zero().Transform(1, child.GetWorld())
	if !got.Compare(NewVec3(1, 5, 0), tolerance) {
		t.Errorf("got %v", got)
	}
}

func TestWrapAngle(t *testing.T) {
	tests := []struct {
		in, want float32
	}{
		{0, 0},
		{K_PI, K_PI},
		{K_PI_2 + 1, 1},
		{-1, K_PI_2 - 1},
	}
	for _, tt := range tests {
		if got := WrapAngle(tt.in); kabs(got-tt.want) > tolerance {
			t.Errorf("WrapAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(5, 0, 3); got != 3 {
		t.Errorf("got %d", got)
	}
	if got := Clamp(float32(-1), 0, 1); got != 0 {
		t.Errorf("got %v", got)
	}
}

func TestGeometryExtents(t *testing.T) {
	vs := []Vertex3D{
		{Position: NewVec3(-1, 2, 3)},
		{Position: NewVec3(4, -5, 0)},
	}
	e := GeometryExtents(vs)
	if !e.Min.Compare(NewVec3(-1, -5, 0), 0) || !e.Max.Compare(NewVec3(4, 2, 3), 0) {
		t.Errorf("got %+v", e)
	}
}
