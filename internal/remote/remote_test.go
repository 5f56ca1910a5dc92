package remote

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"

	"github.com/Faultbox/terrainview/internal/camera"
	"github.com/Faultbox/terrainview/internal/frame"
	"github.com/Faultbox/terrainview/internal/session"
	"github.com/Faultbox/terrainview/pkg/math"
)

type recorder struct {
	mu     sync.Mutex
	events []camera.Event
}

func (r *recorder) Push(events ...camera.Event) {
	r.mu.Lock()
	r.events = append(r.events, events...)
	r.mu.Unlock()
}

func (r *recorder) snapshot() []camera.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]camera.Event(nil), r.events...)
}

func dial(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(h.Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestInputReachesSink(t *testing.T) {
	rec := &recorder{}
	conn := dial(t, NewHub(rec, nil))

	msgs := []InputMessage{
		{Type: "drag-start", Button: 2, X: 10, Y: 20},
		{Type: "drag-move", X: 12, Y: 25},
		{Type: "bogus"},
		{Type: "pointer-leave"},
		{Type: "wheel", DeltaY: -120},
		{Type: "reset"},
	}
	for _, m := range msgs {
		if err := conn.WriteJSON(m); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	want := []camera.Event{
		{Type: camera.EventDragStart, Button: camera.ButtonSecondary, X: 10, Y: 20},
		{Type: camera.EventDragMove, X: 12, Y: 25},
		{Type: camera.EventPointerLeave},
		{Type: camera.EventWheel, DeltaY: -120},
		{Type: camera.EventReset},
	}
	waitFor(t, "events", func() bool { return len(rec.snapshot()) == len(want) })
	if diff := cmp.Diff(want, rec.snapshot()); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestRemoteDrivesSession(t *testing.T) {
	s := session.New(session.DefaultConfig())
	conn := dial(t, NewHub(s, nil))

	if err := conn.WriteJSON(InputMessage{Type: "wheel", DeltaY: -1}); err != nil {
		t.Fatal(err)
	}

	waitFor(t, "zoom", func() bool {
		f, err := s.Tick(1)
		if err != nil {
			t.Fatal(err)
		}
		return f.Camera.Zoom > 1
	})
}

func TestBroadcast(t *testing.T) {
	h := NewHub(&recorder{}, nil)
	conn := dial(t, h)
	waitFor(t, "client registration", func() bool { return h.Clients() == 1 })

	sl := frame.DefaultSliders()
	sl.Wireframe = true
	sl.HeightPercent = 100
	tr, err := frame.NewComposer(frame.DefaultConfig()).Compose(camera.DefaultState(), sl, 1)
	if err != nil {
		t.Fatal(err)
	}
	h.Broadcast(session.Frame{Transforms: tr, Terrain: &session.Terrain{Generation: 3}})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got FrameMessage
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}

	want := FrameMessage{
		Type:        "frame",
		ModelView:   tr.ModelView.Floats(),
		Projection:  tr.Projection.Floats(),
		HeightScale: 2,
		Mode:        "lines",
		Generation:  3,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("frame message (-want +got):\n%s", diff)
	}
}

func TestClientRemovedOnClose(t *testing.T) {
	h := NewHub(&recorder{}, nil)
	conn := dial(t, h)
	waitFor(t, "client registration", func() bool { return h.Clients() == 1 })

	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()
	waitFor(t, "client removal", func() bool { return h.Clients() == 0 })

	// Broadcasting with no clients is a no-op.
	h.Broadcast(session.Frame{Transforms: frame.Transforms{ModelView: math.Identity()}})
}

func TestNewFrameMessageWithoutTerrain(t *testing.T) {
	msg := NewFrameMessage(session.Frame{})
	if msg.Generation != 0 || msg.Mode != "triangles" {
		t.Errorf("msg = %+v", msg)
	}
}
