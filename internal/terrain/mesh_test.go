package terrain

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Faultbox/terrainview/internal/heightmap"
)

func field(w, h int, fn func(x, y int) float32) *heightmap.HeightField {
	hf := &heightmap.HeightField{Width: w, Height: h, Samples: make([]float32, w*h)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			hf.Samples[y*w+x] = fn(x, y)
		}
	}
	return hf
}

func ramp(x, y int) float32 {
	return float32(x*10+y) / 100
}

func TestBuildBufferLengths(t *testing.T) {
	sizes := [][2]int{{2, 2}, {3, 2}, {2, 5}, {7, 4}, {16, 16}}
	for _, s := range sizes {
		w, h := s[0], s[1]
		m, err := Build(field(w, h, ramp))
		if err != nil {
			t.Fatalf("Build(%dx%d): %v", w, h, err)
		}
		if got, want := len(m.Solid), 18*(w-1)*(h-1); got != want {
			t.Errorf("%dx%d solid floats = %d, want %d", w, h, got, want)
		}
		if got, want := len(m.Wireframe), 36*(w-1)*(h-1); got != want {
			t.Errorf("%dx%d wireframe floats = %d, want %d", w, h, got, want)
		}
		if m.SolidVertices() != SolidVertexCount(w, h) || m.WireframeVertices() != WireframeVertexCount(w, h) {
			t.Errorf("%dx%d vertex counts disagree with the count helpers", w, h)
		}
	}
}

func TestBuildAllWhite2x2(t *testing.T) {
	m, err := Build(field(2, 2, func(int, int) float32 { return 1 }))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if m.SolidVertices() != 6 {
		t.Fatalf("solid vertices = %d, want 6", m.SolidVertices())
	}

	want := []float32{
		// T1: top-left, bottom-left, top-right
		-1, 1, -1,
		-1, 1, 1,
		1, 1, -1,
		// T2: top-right, bottom-left, bottom-right
		1, 1, -1,
		-1, 1, 1,
		1, 1, 1,
	}
	if diff := cmp.Diff(want, m.Solid); diff != "" {
		t.Errorf("solid mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildWireframeEdgeOrder(t *testing.T) {
	// Distinct heights so every corner is identifiable.
	hf := &heightmap.HeightField{Width: 2, Height: 2, Samples: []float32{0.1, 0.2, 0.3, 0.4}}
	m, err := Build(hf)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	tl := []float32{-1, 0.1, -1}
	tr := []float32{1, 0.2, -1}
	bl := []float32{-1, 0.3, 1}
	br := []float32{1, 0.4, 1}

	var want []float32
	for _, v := range [][]float32{
		tl, bl, bl, tr, tr, tl, // T1 edges
		tr, bl, bl, br, br, tr, // T2 edges
	} {
		want = append(want, v...)
	}
	if diff := cmp.Diff(want, m.Wireframe); diff != "" {
		t.Errorf("wireframe mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildCornersMapToNDC(t *testing.T) {
	for _, s := range [][2]int{{2, 2}, {5, 3}, {3, 9}} {
		w, h := s[0], s[1]
		hf := field(w, h, ramp)
		m, err := Build(hf)
		if err != nil {
			t.Fatal(err)
		}

		// First emitted vertex is the top-left of cell (0,0).
		if got, want := m.Solid[:3], []float32{-1, hf.At(0, 0), -1}; !cmp.Equal(got, want) {
			t.Errorf("%dx%d first vertex = %v, want %v", w, h, got, want)
		}
		// Last emitted vertex is the bottom-right of the last cell.
		n := len(m.Solid)
		if got, want := m.Solid[n-3:], []float32{1, hf.At(w-1, h-1), 1}; !cmp.Equal(got, want) {
			t.Errorf("%dx%d last vertex = %v, want %v", w, h, got, want)
		}
	}
}

func TestBuildStretchesNonSquare(t *testing.T) {
	m, err := Build(field(5, 2, ramp))
	if err != nil {
		t.Fatal(err)
	}
	// Second cell's top-left x is 1/4 of the way across: -0.5.
	x := m.Solid[SolidVerticesPerCell*Stride]
	if x != -0.5 {
		t.Errorf("cell 1 x = %v, want -0.5", x)
	}
	if m.Bounds.Min[0] != -1 || m.Bounds.Max[2] != 1 {
		t.Errorf("bounds = %+v, want x,z spanning [-1,1]", m.Bounds)
	}
}

func TestBuildBounds(t *testing.T) {
	m, err := Build(field(3, 3, ramp))
	if err != nil {
		t.Fatal(err)
	}
	want := Bounds{Min: [3]float32{-1, 0, -1}, Max: [3]float32{1, 0.22, 1}}
	if diff := cmp.Diff(want, m.Bounds); diff != "" {
		t.Errorf("bounds mismatch (-want +got):\n%s", diff)
	}
	if c := m.Bounds.Center(); c[0] != 0 || c[2] != 0 {
		t.Errorf("center = %v, want x=z=0", c)
	}
}

func TestBuildDeterministic(t *testing.T) {
	hf := field(13, 9, func(x, y int) float32 { return float32((x*7+y*3)%11) / 11 })
	a, err := Build(hf)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Build(hf)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(floatBytes(t, a.Solid), floatBytes(t, b.Solid)) ||
		!bytes.Equal(floatBytes(t, a.Wireframe), floatBytes(t, b.Wireframe)) {
		t.Error("identical height fields produced different bytes")
	}
}

func TestBuildRejectsDegenerate(t *testing.T) {
	tests := []struct {
		name string
		hf   *heightmap.HeightField
	}{
		{"nil", nil},
		{"1x1", field(1, 1, ramp)},
		{"1x5", field(1, 5, ramp)},
		{"5x1", field(5, 1, ramp)},
		{"short samples", &heightmap.HeightField{Width: 3, Height: 3, Samples: make([]float32, 8)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Build(tt.hf); !errors.Is(err, ErrDegenerateGeometry) {
				t.Errorf("Build err = %v, want ErrDegenerateGeometry", err)
			}
			if _, err := BuildIndexed(tt.hf); !errors.Is(err, ErrDegenerateGeometry) {
				t.Errorf("BuildIndexed err = %v, want ErrDegenerateGeometry", err)
			}
		})
	}
}

func TestBuildIndexedMatchesFlat(t *testing.T) {
	hf := field(6, 4, ramp)
	flat, err := Build(hf)
	if err != nil {
		t.Fatal(err)
	}
	idx, err := BuildIndexed(hf)
	if err != nil {
		t.Fatal(err)
	}

	if got, want := len(idx.Positions), 6*4*Stride; got != want {
		t.Fatalf("positions = %d floats, want %d", got, want)
	}
	if diff := cmp.Diff(flat.Solid, expand(idx.Positions, idx.Triangles)); diff != "" {
		t.Errorf("expanded triangles differ from flat mesh (-flat +indexed):\n%s", diff)
	}
	if diff := cmp.Diff(flat.Wireframe, expand(idx.Positions, idx.Lines)); diff != "" {
		t.Errorf("expanded lines differ from flat wireframe (-flat +indexed):\n%s", diff)
	}
}

func TestVertexCountHelpers(t *testing.T) {
	if SolidVertexCount(1, 10) != 0 || WireframeVertexCount(10, 0) != 0 {
		t.Error("degenerate grids should report zero vertices")
	}
	if got := SolidVertexCount(4, 3); got != 36 {
		t.Errorf("SolidVertexCount(4,3) = %d, want 36", got)
	}
	if got := WireframeVertexCount(4, 3); got != 72 {
		t.Errorf("WireframeVertexCount(4,3) = %d, want 72", got)
	}
}

func expand(positions []float32, indices []uint32) []float32 {
	out := make([]float32, 0, len(indices)*Stride)
	for _, i := range indices {
		out = append(out, positions[i*Stride:i*Stride+Stride]...)
	}
	return out
}

func floatBytes(t *testing.T, fs []float32) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, fs); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}
