// Package session ties the heightmap pipeline and the camera pipeline together:
// it owns the current mesh, the camera controller and the slider values, and
// produces one Frame per tick.
package session

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/terrainview/internal/camera"
	"github.com/Faultbox/terrainview/internal/frame"
	"github.com/Faultbox/terrainview/internal/heightmap"
	"github.com/Faultbox/terrainview/internal/terrain"
)

// Config configures a Session.
type Config struct {
	Camera    camera.Settings
	View      frame.Config
	Sliders   frame.Sliders // initial values
	Heightmap heightmap.Options
	Logger    *zap.Logger
}

// DefaultConfig returns a config using every package default.
func DefaultConfig() Config {
	return Config{
		Camera:  camera.DefaultSettings(),
		View:    frame.DefaultConfig(),
		Sliders: frame.DefaultSliders(),
	}
}

// Terrain is one loaded height field and the meshes built from it. It is
// never modified after publication.
type Terrain struct {
	Name       string
	Field      *heightmap.HeightField
	Mesh       *terrain.Mesh
	Generation uint64
}

// Frame is the result of one tick.
type Frame struct {
	Transforms frame.Transforms
	Terrain    *Terrain // nil until the first successful load
	Sliders    frame.Sliders
	Camera     camera.State
}

// Session is safe for concurrent Push, Load* and SetSliders calls. Tick must
// be called from a single goroutine.
type Session struct {
	log      *zap.Logger
	hmOpts   heightmap.Options
	composer *frame.Composer
	ctrl     *camera.Controller
	queue    camera.Queue

	loadMu     sync.Mutex // serializes builds so generations publish in order
	current    atomic.Pointer[Terrain]
	generation atomic.Uint64

	mu      sync.Mutex
	sliders frame.Sliders
}

// New creates a session with no terrain loaded.
func New(cfg Config) *Session {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		log:      log,
		hmOpts:   cfg.Heightmap,
		composer: frame.NewComposer(cfg.View),
		ctrl:     camera.NewController(cfg.Camera),
		sliders:  cfg.Sliders,
	}
}

// LoadFile decodes an image file and replaces the current terrain. On error
// the previous terrain stays active.
func (s *Session) LoadFile(path string) (*Terrain, error) {
	start := time.Now()
	hf, format, err := heightmap.Load(path, s.hmOpts)
	if err != nil {
		s.log.Warn("load failed", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	s.log.Debug("image decoded", zap.String("path", path), zap.String("format", format),
		zap.Duration("elapsed", time.Since(start)))
	return s.install(path, hf)
}

// LoadReader decodes an image stream and replaces the current terrain. name
// is used for logging only.
func (s *Session) LoadReader(r io.Reader, name string) (*Terrain, error) {
	hf, format, err := heightmap.Decode(r, s.hmOpts)
	if err != nil {
		s.log.Warn("load failed", zap.String("name", name), zap.Error(err))
		return nil, err
	}
	s.log.Debug("image decoded", zap.String("name", name), zap.String("format", format))
	return s.install(name, hf)
}

// LoadField replaces the current terrain with one built from hf.
func (s *Session) LoadField(name string, hf *heightmap.HeightField) (*Terrain, error) {
	return s.install(name, hf)
}

func (s *Session) install(name string, hf *heightmap.HeightField) (*Terrain, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	start := time.Now()
	mesh, err := terrain.Build(hf)
	if err != nil {
		s.log.Warn("mesh build failed", zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("build terrain from %s: %w", name, err)
	}

	t := &Terrain{
		Name:       name,
		Field:      hf,
		Mesh:       mesh,
		Generation: s.generation.Add(1),
	}
	s.current.Store(t)

	s.log.Info("terrain loaded",
		zap.String("name", name),
		zap.Int("width", hf.Width),
		zap.Int("height", hf.Height),
		zap.Int("triangles", mesh.SolidVertices()/3),
		zap.Uint64("generation", t.Generation),
		zap.Duration("elapsed", time.Since(start)))
	return t, nil
}

// Terrain returns the current terrain, or nil.
func (s *Session) Terrain() *Terrain {
	return s.current.Load()
}

// Mesh returns the current mesh, or nil.
func (s *Session) Mesh() *terrain.Mesh {
	if t := s.current.Load(); t != nil {
		return t.Mesh
	}
	return nil
}

// Field returns the current height field, or nil.
func (s *Session) Field() *heightmap.HeightField {
	if t := s.current.Load(); t != nil {
		return t.Field
	}
	return nil
}

// Generation returns the generation of the current terrain; 0 means none.
func (s *Session) Generation() uint64 {
	if t := s.current.Load(); t != nil {
		return t.Generation
	}
	return 0
}

// Push queues input events for the next tick.
func (s *Session) Push(events ...camera.Event) {
	s.queue.Push(events...)
}

// Sliders returns the current slider values.
func (s *Session) Sliders() frame.Sliders {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sliders
}

// SetSliders replaces the slider values.
func (s *Session) SetSliders(v frame.Sliders) {
	s.mu.Lock()
	s.sliders = v
	s.mu.Unlock()
}

// UpdateSliders applies fn to the slider values atomically and returns the result.
func (s *Session) UpdateSliders(fn func(*frame.Sliders)) frame.Sliders {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.sliders)
	return s.sliders
}

// Reset restores the slider defaults and queues a camera reset, so events
// pushed before the reset are still applied first.
func (s *Session) Reset() {
	s.SetSliders(frame.DefaultSliders())
	s.Push(camera.Event{Type: camera.EventReset})
}

// Camera returns the camera state as of the last tick. Call it from the
// goroutine that calls Tick.
func (s *Session) Camera() camera.State {
	return s.ctrl.State()
}

// Tick drains queued input, applies it in arrival order and composes the
// frame transforms.
func (s *Session) Tick(aspect float32) (Frame, error) {
	if events := s.queue.Drain(); len(events) > 0 {
		s.ctrl.Apply(events...)
	}

	st := s.ctrl.State()
	sl := s.Sliders()
	tr, err := s.composer.Compose(st, sl, aspect)
	if err != nil {
		s.log.Error("compose failed", zap.Float32("aspect", aspect), zap.Error(err))
		return Frame{}, err
	}

	return Frame{
		Transforms: tr,
		Terrain:    s.current.Load(),
		Sliders:    sl,
		Camera:     st,
	}, nil
}
