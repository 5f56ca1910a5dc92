// Package viewer implements the interactive terrain window: it polls input,
// ticks the session and draws each frame.
package viewer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/terrainview/internal/config"
	"github.com/Faultbox/terrainview/internal/engine/input"
	"github.com/Faultbox/terrainview/internal/engine/renderer"
	"github.com/Faultbox/terrainview/internal/engine/window"
	"github.com/Faultbox/terrainview/internal/frame"
	"github.com/Faultbox/terrainview/internal/logger"
	"github.com/Faultbox/terrainview/internal/session"
	"github.com/Faultbox/terrainview/internal/snapshot"
)

// Broadcaster receives every composed frame.
type Broadcaster interface {
	Broadcast(f session.Frame)
}

// Viewer is the interactive application.
type Viewer struct {
	cfg      *config.Config
	session  *session.Session
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	shots    *snapshot.Writer
	remote   Broadcaster
	log      *zap.Logger

	running bool
	title   string

	// The file dialog runs on its own goroutine; the chosen path is
	// loaded on the main thread.
	pendingMu   sync.Mutex
	pendingPath string
	dialogOpen  bool
}

// New creates the window and renderer. remote may be nil.
func New(cfg *config.Config, s *session.Session, remote Broadcaster) (*Viewer, error) {
	v := &Viewer{
		cfg:     cfg,
		session: s,
		remote:  remote,
		shots:   snapshot.NewWriter(cfg.Snapshot.Dir, "terrain"),
		log:     logger.Named("viewer"),
	}

	var err error
	v.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The renderer needs the GL context the window created.
	dw, dh := v.window.DrawableSize()
	v.renderer, err = renderer.New(renderer.Config{
		Width:      dw,
		Height:     dh,
		Background: renderer.DefaultBackground,
	})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	v.input = input.New()
	return v, nil
}

// Run runs the frame loop until the window closes or Escape is pressed.
func (v *Viewer) Run() error {
	v.running = true

	frameCount := 0
	fpsTimer := time.Now()

	v.log.Info("starting frame loop")

	for v.running {
		if v.input.Update() {
			break
		}
		v.handleEvents(v.input.Events())
		v.loadPending()

		f, err := v.session.Tick(v.window.Aspect())
		if err != nil {
			// Compose errors are configuration bugs; skip the frame.
			v.window.SwapBuffers()
			continue
		}

		if f.Terrain != nil {
			v.renderer.Upload(f.Terrain.Mesh, f.Terrain.Generation)
		}
		v.renderer.Begin()
		v.renderer.Draw(f.Transforms)
		v.updateTitle(f)

		if v.remote != nil {
			v.remote.Broadcast(f)
		}

		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.log.Debug("fps", zap.Int("count", frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	v.log.Info("frame loop stopped")
	return nil
}

// Close releases the renderer and window.
func (v *Viewer) Close() {
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}

func (v *Viewer) handleEvents(events []input.Event) {
	v.session.Push(input.CameraEvents(events)...)

	for _, e := range events {
		switch e.Type {
		case input.EventWindowResize:
			v.renderer.Resize(v.window.DrawableSize())
		case input.EventKeyDown:
			if e.Repeat && !Repeatable(e.Key) {
				continue
			}
			var action Action
			v.session.UpdateSliders(func(s *frame.Sliders) {
				action = KeyAction(e.Key, s)
			})
			v.act(action)
		}
	}
}

func (v *Viewer) act(a Action) {
	switch a {
	case ActionQuit:
		v.running = false
	case ActionReset:
		v.session.Reset()
	case ActionOpen:
		v.openDialog()
	case ActionScreenshot:
		v.screenshot()
	}
}

func (v *Viewer) openDialog() {
	v.pendingMu.Lock()
	if v.dialogOpen {
		v.pendingMu.Unlock()
		return
	}
	v.dialogOpen = true
	v.pendingMu.Unlock()

	go func() {
		filename, err := dialog.File().
			Filter("Images", "png", "jpg", "jpeg", "gif", "bmp", "tif", "tiff", "webp").
			Filter("All Files", "*").
			Title("Open Heightmap").
			Load()

		v.pendingMu.Lock()
		defer v.pendingMu.Unlock()
		v.dialogOpen = false
		if err != nil {
			if !errors.Is(err, dialog.ErrCancelled) {
				v.log.Warn("file dialog failed", zap.Error(err))
			}
			return
		}
		v.pendingPath = filename
	}()
}

func (v *Viewer) loadPending() {
	v.pendingMu.Lock()
	path := v.pendingPath
	v.pendingPath = ""
	v.pendingMu.Unlock()

	if path == "" {
		return
	}
	// Errors are logged by the session; the previous terrain stays.
	_, _ = v.session.LoadFile(path)
}

func (v *Viewer) screenshot() {
	pixels, w, h := v.renderer.ReadPixels()
	path, err := v.shots.SavePixels(pixels, w, h)
	if err != nil {
		v.log.Error("screenshot failed", zap.Error(err))
		return
	}
	v.log.Info("screenshot saved", zap.String("path", path))
}

func (v *Viewer) updateTitle(f session.Frame) {
	title := Title(v.cfg.Window.Title, f.Terrain, f.Sliders)
	if title != v.title {
		v.window.SetTitle(title)
		v.title = title
	}
}
