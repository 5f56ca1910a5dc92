package terrain

import (
	"fmt"

	"github.com/Faultbox/terrainview/internal/heightmap"
)

// Build creates the solid and wireframe meshes for a height field.
//
// Every grid cell is split along its top-left to bottom-right diagonal:
// T1 = (topLeft, bottomLeft, topRight), T2 = (topRight, bottomLeft, bottomRight).
// The wireframe carries the three edges of T1 followed by the three edges of T2.
// Output is deterministic; both buffers are allocated at their final size.
func Build(hf *heightmap.HeightField) (*Mesh, error) {
	if err := validate(hf); err != nil {
		return nil, err
	}

	width, height := hf.Width, hf.Height
	m := &Mesh{
		Width:     width,
		Height:    height,
		Solid:     make([]float32, SolidVertexCount(width, height)*Stride),
		Wireframe: make([]float32, WireframeVertexCount(width, height)*Stride),
	}

	lo, hi := hf.Range()
	m.Bounds = Bounds{
		Min: [3]float32{-1, lo, -1},
		Max: [3]float32{1, hi, 1},
	}

	solid := emitter{buf: m.Solid}
	wire := emitter{buf: m.Wireframe}

	for row := 0; row < height-1; row++ {
		z1 := gridToNDC(row, height)
		z2 := gridToNDC(row+1, height)

		for col := 0; col < width-1; col++ {
			x1 := gridToNDC(col, width)
			x2 := gridToNDC(col+1, width)

			topLeft := row*width + col
			topRight := topLeft + 1
			bottomLeft := (row+1)*width + col
			bottomRight := bottomLeft + 1

			tl := [3]float32{x1, hf.Samples[topLeft], z1}
			tr := [3]float32{x2, hf.Samples[topRight], z1}
			bl := [3]float32{x1, hf.Samples[bottomLeft], z2}
			br := [3]float32{x2, hf.Samples[bottomRight], z2}

			// T1 and T2
			solid.put(tl, bl, tr)
			solid.put(tr, bl, br)

			// T1 edges
			wire.put(tl, bl, bl, tr, tr, tl)
			// T2 edges
			wire.put(tr, bl, bl, br, br, tr)
		}
	}

	return m, nil
}

// BuildIndexed creates a shared-vertex variant of the same geometry. Triangles
// and Lines reference Positions in the same order Build emits vertices.
func BuildIndexed(hf *heightmap.HeightField) (*IndexedMesh, error) {
	if err := validate(hf); err != nil {
		return nil, err
	}

	width, height := hf.Width, hf.Height
	m := &IndexedMesh{
		Width:     width,
		Height:    height,
		Positions: make([]float32, 0, width*height*Stride),
		Triangles: make([]uint32, 0, SolidVertexCount(width, height)),
		Lines:     make([]uint32, 0, WireframeVertexCount(width, height)),
	}

	for row := 0; row < height; row++ {
		z := gridToNDC(row, height)
		for col := 0; col < width; col++ {
			m.Positions = append(m.Positions, gridToNDC(col, width), hf.Samples[row*width+col], z)
		}
	}

	for row := 0; row < height-1; row++ {
		for col := 0; col < width-1; col++ {
			tl := uint32(row*width + col)
			tr := tl + 1
			bl := uint32((row+1)*width + col)
			br := bl + 1

			m.Triangles = append(m.Triangles,
				tl, bl, tr,
				tr, bl, br,
			)
			m.Lines = append(m.Lines,
				tl, bl, bl, tr, tr, tl,
				tr, bl, bl, br, br, tr,
			)
		}
	}

	return m, nil
}

// gridToNDC maps index i of n samples onto [-1, 1].
func gridToNDC(i, n int) float32 {
	return (float32(i)/float32(n-1))*2 - 1
}

func validate(hf *heightmap.HeightField) error {
	if hf == nil {
		return fmt.Errorf("nil height field: %w", ErrDegenerateGeometry)
	}
	if hf.Width < 2 || hf.Height < 2 {
		return fmt.Errorf("height field %dx%d needs at least 2x2 samples: %w",
			hf.Width, hf.Height, ErrDegenerateGeometry)
	}
	if len(hf.Samples) != hf.Width*hf.Height {
		return fmt.Errorf("height field %dx%d has %d samples: %w",
			hf.Width, hf.Height, len(hf.Samples), ErrDegenerateGeometry)
	}
	return nil
}

// emitter writes vertices sequentially into a pre-sized buffer.
type emitter struct {
	buf []float32
	n   int
}

func (e *emitter) put(vs ...[3]float32) {
	for _, v := range vs {
		e.buf[e.n] = v[0]
		e.buf[e.n+1] = v[1]
		e.buf[e.n+2] = v[2]
		e.n += Stride
	}
}
