package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
)

// Envelope frames every message in both directions:
// {"event": "code-update", "data": {...}}
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type Conn struct {
	ID  string // opaque, unique for the connection's lifetime
	ws  *websocket.Conn
	out chan []byte
}

// Accept upgrades HTTP to websocket with the configured origin allowlist
func Accept(w http.ResponseWriter, r *http.Request, origins []string) (*websocket.Conn, error) {
	return websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  origins,
		CompressionMode: websocket.CompressionDisabled,
	})
}

// NewConn wraps a websocket connection and assigns its id
func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{
		ID:  uuid.NewString(),
		ws:  ws,
		out: make(chan []byte, 256),
	}
}

// Send queues one event for delivery. Non-blocking: when the peer is
// too slow to drain its queue the frame is dropped (best-effort).
func (c *Conn) Send(event string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		return
	}
	b, err := json.Marshal(Envelope{Event: event, Data: raw})
	if err != nil {
		return
	}
	select {
	case c.out <- b:
	default: // skip if send buffer is full
	}
}

// Read blocks until it receives a text/binary message
// Returns false if connection is closed
func (c *Conn) Read(ctx context.Context) ([]byte, bool) {
	for {
		typ, data, err := c.ws.Read(ctx)
		if err != nil {
			return nil, false
		}
		if typ == websocket.MessageText || typ == websocket.MessageBinary {
			return data, true
		}
	}
}

// WriteLoop drains the outbound queue in FIFO order and pings the peer
// Exits when ctx is cancelled
func (c *Conn) WriteLoop(ctx context.Context) {
	t := time.NewTicker(20 * time.Second)
	defer t.Stop()

	for {
		select {
		case b := <-c.out:
			_ = c.ws.Write(ctx, websocket.MessageText, b)
		case <-t.C:
			_ = c.ws.Ping(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Close closes the WS connection normally
func (c *Conn) Close() error { return c.ws.Close(websocket.StatusNormalClosure, "bye") }
