package viewer

import (
	"fmt"
	"path/filepath"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/terrainview/internal/frame"
	"github.com/Faultbox/terrainview/internal/session"
)

// Slider steps and limits for keyboard control.
const (
	rotationStep = 5
	scaleStep    = 10
	heightStep   = 10

	minScale  = 10
	maxScale  = 300
	minHeight = 0
	maxHeight = 100
)

// Action is what a key press asks the viewer to do.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionReset
	ActionOpen
	ActionScreenshot
	ActionSliders // sliders were changed in place
)

// KeyAction maps a key press to an action, adjusting s for slider keys.
func KeyAction(key sdl.Scancode, s *frame.Sliders) Action {
	switch key {
	case sdl.SCANCODE_ESCAPE:
		return ActionQuit
	case sdl.SCANCODE_R:
		return ActionReset
	case sdl.SCANCODE_O:
		return ActionOpen
	case sdl.SCANCODE_F12:
		return ActionScreenshot

	case sdl.SCANCODE_W:
		s.Wireframe = !s.Wireframe
	case sdl.SCANCODE_P:
		if s.Projection == frame.Perspective {
			s.Projection = frame.Orthographic
		} else {
			s.Projection = frame.Perspective
		}
	case sdl.SCANCODE_LEFT:
		s.RotationYDeg = wrapDegrees(s.RotationYDeg - rotationStep)
	case sdl.SCANCODE_RIGHT:
		s.RotationYDeg = wrapDegrees(s.RotationYDeg + rotationStep)
	case sdl.SCANCODE_DOWN:
		s.RotationZDeg = wrapDegrees(s.RotationZDeg - rotationStep)
	case sdl.SCANCODE_UP:
		s.RotationZDeg = wrapDegrees(s.RotationZDeg + rotationStep)
	case sdl.SCANCODE_EQUALS, sdl.SCANCODE_KP_PLUS:
		s.ScalePercent = clamp(s.ScalePercent+scaleStep, minScale, maxScale)
	case sdl.SCANCODE_MINUS, sdl.SCANCODE_KP_MINUS:
		s.ScalePercent = clamp(s.ScalePercent-scaleStep, minScale, maxScale)
	case sdl.SCANCODE_PAGEUP:
		s.HeightPercent = clamp(s.HeightPercent+heightStep, minHeight, maxHeight)
	case sdl.SCANCODE_PAGEDOWN:
		s.HeightPercent = clamp(s.HeightPercent-heightStep, minHeight, maxHeight)
	default:
		return ActionNone
	}
	return ActionSliders
}

// Repeatable reports whether holding key should keep adjusting a slider.
func Repeatable(key sdl.Scancode) bool {
	switch key {
	case sdl.SCANCODE_LEFT, sdl.SCANCODE_RIGHT, sdl.SCANCODE_UP, sdl.SCANCODE_DOWN,
		sdl.SCANCODE_EQUALS, sdl.SCANCODE_KP_PLUS, sdl.SCANCODE_MINUS, sdl.SCANCODE_KP_MINUS,
		sdl.SCANCODE_PAGEUP, sdl.SCANCODE_PAGEDOWN:
		return true
	}
	return false
}

// Title formats the window title from the current state.
func Title(base string, t *session.Terrain, s frame.Sliders) string {
	name := "no image (press O)"
	if t != nil {
		name = fmt.Sprintf("%s %dx%d", filepath.Base(t.Name), t.Field.Width, t.Field.Height)
	}
	return fmt.Sprintf("%s - %s | rotY %.0f rotZ %.0f scale %.0f%% height %.0f%% | %s %s",
		base, name, s.RotationYDeg, s.RotationZDeg, s.ScalePercent, s.HeightPercent,
		s.Projection, boolToMode(s.Wireframe))
}

func boolToMode(wireframe bool) frame.DrawMode {
	if wireframe {
		return frame.DrawLines
	}
	return frame.DrawTriangles
}

// wrapDegrees keeps an angle in (-180, 180].
func wrapDegrees(d float32) float32 {
	for d > 180 {
		d -= 360
	}
	for d <= -180 {
		d += 360
	}
	return d
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
