// Package terrain builds renderable vertex buffers from height fields.
package terrain

import "errors"

// ErrDegenerateGeometry is returned when a height field has fewer than two
// samples along either axis and therefore no grid cells.
var ErrDegenerateGeometry = errors.New("degenerate geometry")

// Floats per vertex (x, y, z).
const Stride = 3

// Per grid cell counts.
const (
	TrianglesPerCell         = 2
	SolidVerticesPerCell     = TrianglesPerCell * 3
	SegmentsPerCell          = 6
	WireframeVerticesPerCell = SegmentsPerCell * 2
)

// Mesh is the solid and wireframe geometry generated from one height field.
// Both buffers are flat x,y,z float arrays in grid space: x,z in [-1,1] and
// y the raw height sample.
type Mesh struct {
	Width  int // grid columns
	Height int // grid rows

	// Solid holds triangles, 3 vertices each.
	Solid []float32
	// Wireframe holds line segments, 2 vertices each. Edges shared between
	// triangles are repeated, never indexed.
	Wireframe []float32

	Bounds Bounds
}

// SolidVertices returns the number of vertices in the triangle buffer.
func (m *Mesh) SolidVertices() int {
	return len(m.Solid) / Stride
}

// WireframeVertices returns the number of vertices in the line buffer.
func (m *Mesh) WireframeVertices() int {
	return len(m.Wireframe) / Stride
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Center returns the middle of the box.
func (b Bounds) Center() [3]float32 {
	return [3]float32{
		(b.Min[0] + b.Max[0]) / 2,
		(b.Min[1] + b.Max[1]) / 2,
		(b.Min[2] + b.Max[2]) / 2,
	}
}

// IndexedMesh shares one vertex per grid sample and references them by index.
type IndexedMesh struct {
	Width     int
	Height    int
	Positions []float32 // Width*Height vertices
	Triangles []uint32  // 3 indices per triangle
	Lines     []uint32  // 2 indices per segment
}

// SolidVertexCount returns the triangle-list vertex count for a w×h grid.
func SolidVertexCount(w, h int) int {
	return cells(w, h) * SolidVerticesPerCell
}

// WireframeVertexCount returns the line-list vertex count for a w×h grid.
func WireframeVertexCount(w, h int) int {
	return cells(w, h) * WireframeVerticesPerCell
}

func cells(w, h int) int {
	if w < 2 || h < 2 {
		return 0
	}
	return (w - 1) * (h - 1)
}
