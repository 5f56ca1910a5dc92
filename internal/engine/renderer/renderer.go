// Package renderer draws terrain meshes with OpenGL.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/terrainview/internal/engine/shader"
	"github.com/Faultbox/terrainview/internal/frame"
	"github.com/Faultbox/terrainview/internal/logger"
	"github.com/Faultbox/terrainview/internal/terrain"
)

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	Background [3]float32
}

// DefaultBackground is the clear color.
var DefaultBackground = [3]float32{0.2, 0.2, 0.2}

// Uniform names shared by the terrain shaders.
const (
	uniformModelView   = "uModelView"
	uniformProjection  = "uProjection"
	uniformHeightScale = "uHeightScale"
)

const vertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;

uniform mat4 uModelView;
uniform mat4 uProjection;
uniform float uHeightScale;

out float vHeight;

void main() {
	vHeight = aPos.y;
	gl_Position = uProjection * uModelView * vec4(aPos.x, aPos.y * uHeightScale, aPos.z, 1.0);
}
`

const fragmentShader = `
#version 410 core

in float vHeight;
out vec4 FragColor;

void main() {
	vec3 low = vec3(0.18, 0.32, 0.16);
	vec3 mid = vec3(0.55, 0.48, 0.33);
	vec3 high = vec3(0.95, 0.95, 0.95);
	float h = clamp(vHeight, 0.0, 1.0);
	vec3 c = h < 0.5 ? mix(low, mid, h * 2.0) : mix(mid, high, (h - 0.5) * 2.0);
	FragColor = vec4(c, 1.0);
}
`

// buffer is one VAO/VBO pair holding a flat x,y,z vertex array.
type buffer struct {
	vao   uint32
	vbo   uint32
	count int32
}

func (b *buffer) upload(vertices []float32) {
	if b.vao == 0 {
		gl.GenVertexArrays(1, &b.vao)
		gl.GenBuffers(1, &b.vbo)
	}

	gl.BindVertexArray(b.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	gl.VertexAttribPointer(0, terrain.Stride, gl.FLOAT, false, terrain.Stride*4, nil)
	gl.EnableVertexAttribArray(0)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	b.count = int32(len(vertices) / terrain.Stride)
}

func (b *buffer) release() {
	if b.vao != 0 {
		gl.DeleteVertexArrays(1, &b.vao)
		gl.DeleteBuffers(1, &b.vbo)
		b.vao, b.vbo, b.count = 0, 0, 0
	}
}

// Renderer owns the GPU copies of the current terrain.
type Renderer struct {
	config  Config
	program *shader.Program
	log     *zap.Logger

	solid      buffer
	wireframe  buffer
	generation uint64
}

// New creates a renderer.
// Must be called after the OpenGL context is current.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
		log:    logger.Named("renderer"),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Disable(gl.CULL_FACE)
	bg := cfg.Background
	gl.ClearColor(bg[0], bg[1], bg[2], 1.0)

	var err error
	r.program, err = shader.New(vertexShader, fragmentShader,
		uniformModelView, uniformProjection, uniformHeightScale)
	if err != nil {
		return nil, fmt.Errorf("failed to create terrain shader: %w", err)
	}
	r.log.Debug("terrain shader created", zap.Uint32("program", r.program.ID))

	r.Resize(cfg.Width, cfg.Height)
	return r, nil
}

// Close releases GPU resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	r.solid.release()
	r.wireframe.release()
	if r.program != nil {
		r.program.Delete()
	}
}

// Resize sets the viewport to the drawable size.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized", zap.Int("width", width), zap.Int("height", height))
}

// Size returns the viewport size.
func (r *Renderer) Size() (int, int) {
	return r.config.Width, r.config.Height
}

// Generation returns the generation of the uploaded mesh; 0 means none.
func (r *Renderer) Generation() uint64 {
	return r.generation
}

// Upload copies both meshes to the GPU unless generation is already resident.
func (r *Renderer) Upload(mesh *terrain.Mesh, generation uint64) {
	if mesh == nil || generation == r.generation {
		return
	}
	r.solid.upload(mesh.Solid)
	r.wireframe.upload(mesh.Wireframe)
	r.generation = generation

	r.log.Debug("terrain uploaded",
		zap.Uint64("generation", generation),
		zap.Int32("solid_vertices", r.solid.count),
		zap.Int32("wireframe_vertices", r.wireframe.count),
	)
}

// Begin clears the frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Draw draws the uploaded terrain with one frame's transforms.
func (r *Renderer) Draw(t frame.Transforms) {
	if r.generation == 0 {
		return
	}

	r.program.Use()
	r.program.SetMat4(uniformModelView, t.ModelView)
	r.program.SetMat4(uniformProjection, t.Projection)
	r.program.SetFloat(uniformHeightScale, t.HeightScale)

	b, mode := &r.solid, uint32(gl.TRIANGLES)
	if t.Mode == frame.DrawLines {
		b, mode = &r.wireframe, gl.LINES
	}

	gl.BindVertexArray(b.vao)
	gl.DrawArrays(mode, 0, b.count)
	gl.BindVertexArray(0)
}

// ReadPixels reads the back buffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, w, h
}
