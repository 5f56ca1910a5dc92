package math

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"gonum.org/v1/gonum/mat"
)

const eps = 1e-5

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	// Off-diagonal should be 0
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestNeutralCompositionIsExactIdentity(t *testing.T) {
	got := MulAll(Scale(1, 1, 1), RotateY(0), RotateZ(0), Translate(0, 0, 0))
	if got != Identity() {
		t.Errorf("Scale(1)·RotateY(0)·RotateZ(0)·Translate(0) = %v, want identity", got)
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	result := m.Mul(Identity())

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestMulAllEmpty(t *testing.T) {
	if got := MulAll(); got != Identity() {
		t.Errorf("MulAll() = %v, want identity", got)
	}
}

func TestTranslate(t *testing.T) {
	m := Translate(5, 10, 15)

	// Translation should be in column 4 (indices 12, 13, 14)
	if m[12] != 5 || m[13] != 10 || m[14] != 15 {
		t.Errorf("Translate: got (%f, %f, %f), want (5, 10, 15)", m[12], m[13], m[14])
	}
}

func TestScale(t *testing.T) {
	m := Scale(2, 3, 4)

	if m[0] != 2 || m[5] != 3 || m[10] != 4 {
		t.Errorf("Scale diagonal: got (%f, %f, %f), want (2, 3, 4)", m[0], m[5], m[10])
	}
}

func TestTransformPoint(t *testing.T) {
	got := Translate(10, 20, 30).TransformPoint(V3(1, 2, 3))
	want := V3(11, 22, 33)
	if got != want {
		t.Errorf("TransformPoint: got %v, want %v", got, want)
	}

	got = Scale(2, 2, 2).TransformPoint(V3(1, 2, 3))
	want = V3(2, 4, 6)
	if got != want {
		t.Errorf("TransformPoint with scale: got %v, want %v", got, want)
	}
}

func TestRotationsMatchMathGL(t *testing.T) {
	angles := []float32{0, 0.3, gomath.Pi / 2, -1.7, 3}
	for _, a := range angles {
		assertMatClose(t, "RotateX", RotateX(a), Mat4(mgl32.HomogRotate3DX(a)))
		assertMatClose(t, "RotateY", RotateY(a), Mat4(mgl32.HomogRotate3DY(a)))
		assertMatClose(t, "RotateZ", RotateZ(a), Mat4(mgl32.HomogRotate3DZ(a)))
	}
}

func TestRotateY90(t *testing.T) {
	got := RotateY(gomath.Pi / 2).TransformPoint(V3(1, 0, 0))

	// After 90 degree Y rotation, (1,0,0) should become approximately (0,0,-1)
	if abs(got.X) > 0.001 || abs(got.Y) > 0.001 || abs(got.Z+1) > 0.001 {
		t.Errorf("RotateY 90: got %v, want (0, 0, -1)", got)
	}
}

func TestMulMatchesGonum(t *testing.T) {
	a := MulAll(Translate(1, -2, 0.5), RotateZ(0.4), RotateY(-1.1), Scale(1.5, 1.5, 1.5))
	b, err := Perspective(1.2, 1.6, 0.1, 50)
	if err != nil {
		t.Fatal(err)
	}

	got := b.Mul(a)

	var want mat.Dense
	want.Mul(toDense(b), toDense(a))
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			if d := gomath.Abs(float64(got.At(row, col)) - want.At(row, col)); d > 1e-4 {
				t.Errorf("Mul[%d][%d] = %v, gonum %v", row, col, got.At(row, col), want.At(row, col))
			}
		}
	}
}

func TestMulIsAssociativeButNotCommutative(t *testing.T) {
	a, b, c := Translate(1, 2, 3), RotateZ(0.7), Scale(2, 0.5, 1)

	assertMatClose(t, "(ab)c vs a(bc)", a.Mul(b).Mul(c), a.Mul(b.Mul(c)))

	if a.Mul(b) == b.Mul(a) {
		t.Error("Translate·Rotate should differ from Rotate·Translate")
	}
}

func TestPerspective(t *testing.T) {
	fov := float32(70 * gomath.Pi / 180)
	got, err := Perspective(fov, 16.0/9.0, 0.001, 20)
	if err != nil {
		t.Fatalf("Perspective: %v", err)
	}
	assertMatClose(t, "Perspective", got, Mat4(mgl32.Perspective(fov, 16.0/9.0, 0.001, 20)))

	// Element [11] should be -1 and [15] should be 0 for perspective projection
	if got[11] != -1 || got[15] != 0 {
		t.Errorf("Perspective [11],[15] = %v,%v, want -1,0", got[11], got[15])
	}
}

func TestOrtho(t *testing.T) {
	got, err := Ortho(-4, 4, -3, 3, 0.001, 20)
	if err != nil {
		t.Fatalf("Ortho: %v", err)
	}
	assertMatClose(t, "Ortho", got, Mat4(mgl32.Ortho(-4, 4, -3, 3, 0.001, 20)))
}

func TestProjectionRejectsInvalidParams(t *testing.T) {
	tests := []struct {
		name string
		fn   func() (Mat4, error)
	}{
		{"zero aspect", func() (Mat4, error) { return Perspective(1, 0, 0.1, 10) }},
		{"negative aspect", func() (Mat4, error) { return Perspective(1, -1, 0.1, 10) }},
		{"zero near", func() (Mat4, error) { return Perspective(1, 1, 0, 10) }},
		{"far equals near", func() (Mat4, error) { return Perspective(1, 1, 1, 1) }},
		{"far before near", func() (Mat4, error) { return Perspective(1, 1, 5, 1) }},
		{"NaN aspect", func() (Mat4, error) { return Perspective(1, float32(gomath.NaN()), 0.1, 10) }},
		{"ortho zero width", func() (Mat4, error) { return Ortho(1, 1, -1, 1, 0.1, 10) }},
		{"ortho zero near", func() (Mat4, error) { return Ortho(-1, 1, -1, 1, 0, 10) }},
		{"ortho far before near", func() (Mat4, error) { return Ortho(-1, 1, -1, 1, 2, 1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.fn(); !errors.Is(err, ErrInvalidProjectionParams) {
				t.Errorf("err = %v, want ErrInvalidProjectionParams", err)
			}
		})
	}
}

func TestLookAt(t *testing.T) {
	eye := V3(0, 5, 5)
	target := V3(0, 0, 0)
	up := V3(0, 1, 0)

	m, err := LookAt(eye, target, up)
	if err != nil {
		t.Fatalf("LookAt: %v", err)
	}
	assertMatClose(t, "LookAt", m, Mat4(mgl32.LookAtV(mgl32.Vec3{0, 5, 5}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})))

	// Eye maps to the view space origin.
	if p := m.TransformPoint(eye); p.Length() > eps {
		t.Errorf("eye in view space = %v, want origin", p)
	}

	// Target lies on the negative Z axis at the eye distance.
	p := m.TransformPoint(target)
	dist := eye.Sub(target).Length()
	if abs(p.X) > eps || abs(p.Y) > eps || abs(p.Z+dist) > 1e-4 {
		t.Errorf("target in view space = %v, want (0, 0, %v)", p, -dist)
	}
}

func TestLookAtDegenerate(t *testing.T) {
	if _, err := LookAt(V3(1, 1, 1), V3(1, 1, 1), V3(0, 1, 0)); !errors.Is(err, ErrDegenerateVector) {
		t.Errorf("eye == target: err = %v, want ErrDegenerateVector", err)
	}
	if _, err := LookAt(V3(0, 5, 0), V3(0, 0, 0), V3(0, 1, 0)); !errors.Is(err, ErrDegenerateVector) {
		t.Errorf("forward parallel to up: err = %v, want ErrDegenerateVector", err)
	}
}

func toDense(m Mat4) *mat.Dense {
	d := mat.NewDense(4, 4, nil)
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			d.Set(row, col, float64(m.At(row, col)))
		}
	}
	return d
}

func assertMatClose(t *testing.T, name string, got, want Mat4) {
	t.Helper()
	for i := range got {
		if abs(got[i]-want[i]) > eps {
			t.Errorf("%s element %d: got %v, want %v", name, i, got[i], want[i])
		}
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
