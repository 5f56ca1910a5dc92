package input

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/terrainview/internal/camera"
)

// CameraEvent converts a pointer event into a camera event. Keyboard, resize
// and quit events report false.
func CameraEvent(e Event) (camera.Event, bool) {
	switch e.Type {
	case EventMouseDown:
		btn, ok := cameraButton(e.Button)
		if !ok {
			return camera.Event{}, false
		}
		return camera.Event{
			Type:   camera.EventDragStart,
			Button: btn,
			X:      float32(e.MouseX),
			Y:      float32(e.MouseY),
		}, true
	case EventMouseMove:
		return camera.Event{Type: camera.EventDragMove, X: float32(e.MouseX), Y: float32(e.MouseY)}, true
	case EventMouseUp:
		return camera.Event{Type: camera.EventDragEnd}, true
	case EventWindowLeave:
		return camera.Event{Type: camera.EventPointerLeave}, true
	case EventMouseWheel:
		// Browser convention: negative deltaY scrolls up.
		return camera.Event{Type: camera.EventWheel, DeltaY: float32(-e.WheelY)}, true
	}
	return camera.Event{}, false
}

// CameraEvents converts every pointer event in order.
func CameraEvents(events []Event) []camera.Event {
	var out []camera.Event
	for _, e := range events {
		if ce, ok := CameraEvent(e); ok {
			out = append(out, ce)
		}
	}
	return out
}

func cameraButton(b uint8) (camera.Button, bool) {
	switch b {
	case sdl.BUTTON_LEFT:
		return camera.ButtonPrimary, true
	case sdl.BUTTON_RIGHT:
		return camera.ButtonSecondary, true
	}
	return 0, false
}
