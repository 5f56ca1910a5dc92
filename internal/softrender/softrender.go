// Package softrender rasterizes terrain meshes on the CPU, for snapshots
// without a GPU or window.
package softrender

import (
	"errors"
	"fmt"
	"image"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"

	"github.com/Faultbox/terrainview/internal/frame"
	"github.com/Faultbox/terrainview/internal/terrain"
	"github.com/Faultbox/terrainview/pkg/math"
)

// ErrEmptyMesh is returned when there is nothing to draw.
var ErrEmptyMesh = errors.New("empty mesh")

// Options controls the output image.
type Options struct {
	Width       int
	Height      int
	Supersample int    // render at this multiple, then downscale; <= 1 disables
	Background  string // hex color
	Low         string // hex color at height 0
	High        string // hex color at height 1
}

// DefaultOptions returns an 800x600, 2x supersampled setup.
func DefaultOptions() Options {
	return Options{
		Width:       800,
		Height:      600,
		Supersample: 2,
		Background:  "#333333",
		Low:         "#2e5229",
		High:        "#f2f2f2",
	}
}

// Aspect returns the output width over height.
func (o Options) Aspect() float32 {
	return float32(o.Width) / float32(o.Height)
}

// Render draws the mesh with the same transforms the GPU renderer uses. The
// draw mode in t selects the solid or wireframe buffer.
func Render(mesh *terrain.Mesh, t frame.Transforms, opts Options) (image.Image, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("output size %dx%d must be positive", opts.Width, opts.Height)
	}
	if mesh == nil || len(mesh.Solid) == 0 {
		return nil, ErrEmptyMesh
	}
	ss := opts.Supersample
	if ss < 1 {
		ss = 1
	}

	ctx := fauxgl.NewContext(opts.Width*ss, opts.Height*ss)
	ctx.ClearColorBufferWith(fauxgl.HexColor(opts.Background))
	ctx.Cull = fauxgl.CullNone
	ctx.LineWidth = float64(ss)
	ctx.Shader = &heightShader{
		matrix:      Matrix(t.Projection.Mul(t.ModelView)),
		heightScale: float64(t.HeightScale),
		low:         fauxgl.HexColor(opts.Low),
		high:        fauxgl.HexColor(opts.High),
	}

	switch t.Mode {
	case frame.DrawLines:
		ctx.DrawLines(Lines(mesh.Wireframe))
	default:
		ctx.DrawTriangles(Triangles(mesh.Solid))
	}

	img := ctx.Image()
	if ss > 1 {
		img = resize.Resize(uint(opts.Width), uint(opts.Height), img, resize.Bilinear)
	}
	return img, nil
}

// Matrix converts a column-major Mat4 to a fauxgl matrix.
func Matrix(m math.Mat4) fauxgl.Matrix {
	f := func(row, col int) float64 { return float64(m.At(row, col)) }
	return fauxgl.Matrix{
		X00: f(0, 0), X01: f(0, 1), X02: f(0, 2), X03: f(0, 3),
		X10: f(1, 0), X11: f(1, 1), X12: f(1, 2), X13: f(1, 3),
		X20: f(2, 0), X21: f(2, 1), X22: f(2, 2), X23: f(2, 3),
		X30: f(3, 0), X31: f(3, 1), X32: f(3, 2), X33: f(3, 3),
	}
}

// Triangles converts a flat triangle-list buffer.
func Triangles(vertices []float32) []*fauxgl.Triangle {
	const n = 3 * terrain.Stride
	out := make([]*fauxgl.Triangle, 0, len(vertices)/n)
	for i := 0; i+n <= len(vertices); i += n {
		out = append(out, fauxgl.NewTriangleForPoints(
			point(vertices[i:]),
			point(vertices[i+terrain.Stride:]),
			point(vertices[i+2*terrain.Stride:]),
		))
	}
	return out
}

// Lines converts a flat line-list buffer.
func Lines(vertices []float32) []*fauxgl.Line {
	const n = 2 * terrain.Stride
	out := make([]*fauxgl.Line, 0, len(vertices)/n)
	for i := 0; i+n <= len(vertices); i += n {
		out = append(out, fauxgl.NewLineForPoints(
			point(vertices[i:]),
			point(vertices[i+terrain.Stride:]),
		))
	}
	return out
}

func point(v []float32) fauxgl.Vector {
	return fauxgl.V(float64(v[0]), float64(v[1]), float64(v[2]))
}

// heightShader scales y like the GPU vertex shader and colors by raw height.
type heightShader struct {
	matrix      fauxgl.Matrix
	heightScale float64
	low, high   fauxgl.Color
}

func (s *heightShader) Vertex(v fauxgl.Vertex) fauxgl.Vertex {
	h := v.Position.Y
	v.Color = s.ramp(h)
	p := v.Position
	p.Y *= s.heightScale
	v.Output = s.matrix.MulPositionW(p)
	return v
}

func (s *heightShader) Fragment(v fauxgl.Vertex) fauxgl.Color {
	return v.Color
}

func (s *heightShader) ramp(h float64) fauxgl.Color {
	if h < 0 {
		h = 0
	} else if h > 1 {
		h = 1
	}
	return fauxgl.Color{
		R: s.low.R + (s.high.R-s.low.R)*h,
		G: s.low.G + (s.high.G-s.low.G)*h,
		B: s.low.B + (s.high.B-s.low.B)*h,
		A: 1,
	}
}
