package camera

import "sync"

// EventType identifies an input event.
type EventType int

const (
	EventDragStart EventType = iota
	EventDragMove
	EventDragEnd
	EventPointerLeave
	EventWheel
	EventReset
)

var eventNames = map[EventType]string{
	EventDragStart:    "drag-start",
	EventDragMove:     "drag-move",
	EventDragEnd:      "drag-end",
	EventPointerLeave: "pointer-leave",
	EventWheel:        "wheel",
	EventReset:        "reset",
}

func (t EventType) String() string {
	if s, ok := eventNames[t]; ok {
		return s
	}
	return "unknown"
}

// ParseEventType maps a wire name such as "drag-move" to its EventType.
func ParseEventType(s string) (EventType, bool) {
	for t, name := range eventNames {
		if name == s {
			return t, true
		}
	}
	return 0, false
}

// Event is one pointer or reset input.
type Event struct {
	Type   EventType
	Button Button  // EventDragStart
	X, Y   float32 // EventDragStart, EventDragMove
	DeltaY float32 // EventWheel
}

// Apply applies events in order.
func (c *Controller) Apply(events ...Event) {
	for _, e := range events {
		switch e.Type {
		case EventDragStart:
			c.DragStart(e.Button, e.X, e.Y)
		case EventDragMove:
			c.DragMove(e.X, e.Y)
		case EventDragEnd, EventPointerLeave:
			c.DragEnd()
		case EventWheel:
			c.Wheel(e.DeltaY)
		case EventReset:
			c.Reset()
		}
	}
}

// Queue is a FIFO of events shared between producers and the frame loop.
type Queue struct {
	mu     sync.Mutex
	events []Event
}

// Push appends events.
func (q *Queue) Push(events ...Event) {
	q.mu.Lock()
	q.events = append(q.events, events...)
	q.mu.Unlock()
}

// Drain removes and returns all pending events in arrival order.
func (q *Queue) Drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return nil
	}
	out := q.events
	q.events = nil
	return out
}

// Len returns the number of pending events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
