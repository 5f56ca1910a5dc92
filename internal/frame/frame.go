// Package frame composes camera state and slider overrides into the per-frame
// model, view and projection matrices.
package frame

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"

	"github.com/Faultbox/terrainview/internal/camera"
	"github.com/Faultbox/terrainview/pkg/math"
)

// ProjectionMode selects the projection matrix.
type ProjectionMode int

const (
	Perspective ProjectionMode = iota
	Orthographic
)

func (p ProjectionMode) String() string {
	switch p {
	case Orthographic:
		return "orthographic"
	default:
		return "perspective"
	}
}

// ParseProjection accepts "perspective"/"persp" and "orthographic"/"ortho".
func ParseProjection(s string) (ProjectionMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "perspective", "persp", "":
		return Perspective, nil
	case "orthographic", "ortho":
		return Orthographic, nil
	}
	return Perspective, fmt.Errorf("unknown projection %q", s)
}

// DrawMode is the primitive type for the draw call.
type DrawMode int

const (
	DrawTriangles DrawMode = iota
	DrawLines
)

func (d DrawMode) String() string {
	if d == DrawLines {
		return "lines"
	}
	return "triangles"
}

// Sliders are the user-facing overrides layered on top of camera.State.
type Sliders struct {
	RotationYDeg  float32
	RotationZDeg  float32
	ScalePercent  float32
	HeightPercent float32
	Projection    ProjectionMode
	Wireframe     bool
}

// DefaultSliders returns the slider values restored by a reset.
func DefaultSliders() Sliders {
	return Sliders{
		ScalePercent:  100,
		HeightPercent: 50,
		Projection:    Perspective,
	}
}

// Transforms is everything a draw call needs for one frame.
type Transforms struct {
	Model       math.Mat4
	View        math.Mat4
	Projection  math.Mat4
	ModelView   math.Mat4
	HeightScale float32
	Mode        DrawMode
}

// Config holds the fixed viewing parameters.
type Config struct {
	Eye             math.Vec3
	Target          math.Vec3
	FovYDeg         float32
	Near            float32
	Far             float32
	OrthoHalfExtent float32
}

// DefaultConfig returns the stock viewing parameters.
func DefaultConfig() Config {
	return Config{
		Eye:             math.V3(0, 5, 5),
		Target:          math.V3(0, 0, 0),
		FovYDeg:         70,
		Near:            0.001,
		Far:             20,
		OrthoHalfExtent: 3,
	}
}

var worldUp = math.V3(0, 1, 0)

// Composer builds Transforms. It holds no per-frame state.
type Composer struct {
	cfg Config
}

// NewComposer creates a composer.
func NewComposer(cfg Config) *Composer {
	return &Composer{cfg: cfg}
}

// Config returns the viewing parameters.
func (c *Composer) Config() Config {
	return c.cfg
}

// Compose combines camera state and sliders for a viewport of the given
// aspect ratio (width/height).
//
//	Model      = Translate(pan) * RotateZ(pitch) * RotateY(yaw) * Scale(zoom)
//	ModelView  = View * Model
func (c *Composer) Compose(st camera.State, s Sliders, aspect float32) (Transforms, error) {
	yaw := st.OrbitYaw + radians(s.RotationYDeg)
	pitch := st.OrbitPitch + radians(s.RotationZDeg)
	zoom := st.Zoom * s.ScalePercent / 100

	model := math.MulAll(
		math.Translate(st.PanX, st.PanY, 0),
		math.RotateZ(pitch),
		math.RotateY(yaw),
		math.Scale(zoom, zoom, zoom),
	)

	view, err := math.LookAt(c.cfg.Eye, c.cfg.Target, worldUp)
	if err != nil {
		return Transforms{}, fmt.Errorf("compose view: %w", err)
	}

	proj, err := c.projection(s.Projection, aspect)
	if err != nil {
		return Transforms{}, fmt.Errorf("compose %s projection: %w", s.Projection, err)
	}

	mode := DrawTriangles
	if s.Wireframe {
		mode = DrawLines
	}

	return Transforms{
		Model:       model,
		View:        view,
		Projection:  proj,
		ModelView:   view.Mul(model),
		HeightScale: s.HeightPercent / 50,
		Mode:        mode,
	}, nil
}

func (c *Composer) projection(mode ProjectionMode, aspect float32) (math.Mat4, error) {
	if mode == Orthographic {
		if !(aspect > 0) {
			return math.Mat4{}, fmt.Errorf("ortho aspect=%v: %w", aspect, math.ErrInvalidProjectionParams)
		}
		h := c.cfg.OrthoHalfExtent
		return math.Ortho(-h*aspect, h*aspect, -h, h, c.cfg.Near, c.cfg.Far)
	}
	return math.Perspective(radians(c.cfg.FovYDeg), aspect, c.cfg.Near, c.cfg.Far)
}

func radians(deg float32) float32 {
	return deg * math32.Pi / 180
}
