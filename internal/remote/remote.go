// Package remote exposes the camera over a websocket: clients send pointer
// events as JSON and receive the frame uniforms after every tick.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Faultbox/terrainview/internal/camera"
	"github.com/Faultbox/terrainview/internal/session"
)

const (
	writeTimeout = 2 * time.Second
	sendBuffer   = 8
)

// Sink receives decoded input events.
type Sink interface {
	Push(events ...camera.Event)
}

// InputMessage is one event sent by a client.
type InputMessage struct {
	Type   string  `json:"type"`
	Button int     `json:"button,omitempty"`
	X      float32 `json:"x,omitempty"`
	Y      float32 `json:"y,omitempty"`
	DeltaY float32 `json:"deltaY,omitempty"`
}

// Event converts the message to a camera event.
func (m InputMessage) Event() (camera.Event, error) {
	typ, ok := camera.ParseEventType(m.Type)
	if !ok {
		return camera.Event{}, fmt.Errorf("unknown event type %q", m.Type)
	}
	return camera.Event{
		Type:   typ,
		Button: camera.Button(m.Button),
		X:      m.X,
		Y:      m.Y,
		DeltaY: m.DeltaY,
	}, nil
}

// FrameMessage is broadcast after each tick.
type FrameMessage struct {
	Type        string      `json:"type"`
	ModelView   [16]float32 `json:"modelView"`
	Projection  [16]float32 `json:"projection"`
	HeightScale float32     `json:"heightScale"`
	Mode        string      `json:"mode"`
	Generation  uint64      `json:"generation"`
}

// NewFrameMessage extracts the uniforms of a frame.
func NewFrameMessage(f session.Frame) FrameMessage {
	msg := FrameMessage{
		Type:        "frame",
		ModelView:   f.Transforms.ModelView.Floats(),
		Projection:  f.Transforms.Projection.Floats(),
		HeightScale: f.Transforms.HeightScale,
		Mode:        f.Transforms.Mode.String(),
	}
	if f.Terrain != nil {
		msg.Generation = f.Terrain.Generation
	}
	return msg
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks connected clients.
type Hub struct {
	sink     Sink
	log      *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// NewHub creates a hub that forwards client input to sink.
func NewHub(sink Sink, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		sink: sink,
		log:  log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Handler returns a mux serving the websocket on /ws.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	return mux
}

// ListenAndServe serves Handler on addr until ctx is cancelled.
func (h *Hub) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: h.Handler()}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	h.log.Info("remote control listening", zap.String("addr", addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		h.closeAll()
		return srv.Shutdown(shutdownCtx)
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// ServeHTTP upgrades the connection and reads input until the client leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.log.Info("remote client connected", zap.String("addr", conn.RemoteAddr().String()))

	go h.writeLoop(c)
	h.readLoop(c)

	h.remove(c)
	h.log.Info("remote client disconnected", zap.String("addr", conn.RemoteAddr().String()))
}

func (h *Hub) readLoop(c *client) {
	for {
		var msg InputMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Debug("websocket read ended", zap.Error(err))
			}
			return
		}
		ev, err := msg.Event()
		if err != nil {
			h.log.Warn("ignoring remote message", zap.Error(err))
			continue
		}
		h.sink.Push(ev)
	}
}

func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()
	for data := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.log.Debug("websocket write failed", zap.Error(err))
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeTimeout))
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends the frame uniforms to every client. Slow clients drop
// frames instead of blocking the caller.
func (h *Hub) Broadcast(f session.Frame) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.clients) == 0 {
		return
	}

	data, err := json.Marshal(NewFrameMessage(f))
	if err != nil {
		h.log.Error("encoding frame", zap.Error(err))
		return
	}
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}
