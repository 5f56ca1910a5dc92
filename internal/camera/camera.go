// Package camera accumulates pointer input into orbit, pan and zoom state.
package camera

// State is the continuous camera state driven by pointer gestures.
type State struct {
	OrbitYaw   float32 // radians
	OrbitPitch float32 // radians
	Zoom       float32 // multiplicative, > 0
	PanX       float32
	PanY       float32
}

// DefaultState returns the state restored by Reset.
func DefaultState() State {
	return State{Zoom: 1.0}
}

// Button identifies the pointer button that started a drag.
type Button int

const (
	ButtonPrimary   Button = 0
	ButtonMiddle    Button = 1
	ButtonSecondary Button = 2
)

// DragMode is what an active drag does.
type DragMode int

const (
	DragNone DragMode = iota
	DragRotate
	DragPan
)

func (m DragMode) String() string {
	switch m {
	case DragRotate:
		return "rotate"
	case DragPan:
		return "pan"
	default:
		return "none"
	}
}

// Settings are the input gains.
type Settings struct {
	RotateSensitivity float32 // radians per pixel
	PanSensitivity    float32 // units per pixel
	ZoomInFactor      float32 // applied when the wheel moves up
	ZoomOutFactor     float32 // applied otherwise
}

// DefaultSettings returns the stock gains.
func DefaultSettings() Settings {
	return Settings{
		RotateSensitivity: 0.01,
		PanSensitivity:    0.01,
		ZoomInFactor:      1.1,
		ZoomOutFactor:     0.9,
	}
}

// Controller owns a State and applies input to it.
// It is not safe for concurrent use; feed it from a single goroutine, or
// through a Queue drained once per frame.
type Controller struct {
	settings Settings
	state    State

	mode    DragMode
	anchorX float32
	anchorY float32
}

// NewController creates a controller at the default state.
func NewController(settings Settings) *Controller {
	return &Controller{
		settings: settings,
		state:    DefaultState(),
	}
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	return c.state
}

// Settings returns the input gains.
func (c *Controller) Settings() Settings {
	return c.settings
}

// Dragging reports whether a drag is active.
func (c *Controller) Dragging() bool {
	return c.mode != DragNone
}

// Mode returns the active drag mode.
func (c *Controller) Mode() DragMode {
	return c.mode
}

// DragStart begins a drag at (x, y). The primary button rotates, the secondary
// button pans. Other buttons are ignored.
func (c *Controller) DragStart(button Button, x, y float32) {
	switch button {
	case ButtonPrimary:
		c.mode = DragRotate
	case ButtonSecondary:
		c.mode = DragPan
	default:
		return
	}
	c.anchorX = x
	c.anchorY = y
}

// DragMove moves the pointer to (x, y). The delta from the previous anchor is
// applied according to the drag mode and the anchor follows the pointer.
func (c *Controller) DragMove(x, y float32) {
	if c.mode == DragNone {
		return
	}
	dx := x - c.anchorX
	dy := y - c.anchorY
	c.anchorX = x
	c.anchorY = y
	c.Drag(dx, dy)
}

// Drag applies a pointer delta to the active drag.
func (c *Controller) Drag(dx, dy float32) {
	switch c.mode {
	case DragRotate:
		c.state.OrbitYaw += dx * c.settings.RotateSensitivity
		c.state.OrbitPitch += dy * c.settings.RotateSensitivity
	case DragPan:
		c.state.PanX += dx * c.settings.PanSensitivity
		c.state.PanY -= dy * c.settings.PanSensitivity
	}
}

// DragEnd ends the active drag, if any.
func (c *Controller) DragEnd() {
	c.mode = DragNone
}

// Wheel zooms in when deltaY is negative and out otherwise. Zoom is
// multiplicative: in then out does not return to the previous value.
func (c *Controller) Wheel(deltaY float32) {
	if deltaY < 0 {
		c.state.Zoom *= c.settings.ZoomInFactor
	} else {
		c.state.Zoom *= c.settings.ZoomOutFactor
	}
}

// Reset restores the default state and ends any drag.
func (c *Controller) Reset() {
	c.state = DefaultState()
	c.mode = DragNone
}
