package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/innstack/innstack/pkg/format"
	"github.com/innstack/innstack/server/internal/form"
)

const (
	// writeTimeout is the deadline for a single write to a client.
	writeTimeout = 10 * time.Second

	// pongWait is how long to wait for a pong response before treating the
	// connection as dead.
	pongWait = 60 * time.Second

	// pingPeriod controls how often the server sends WebSocket ping frames.
	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// sendBufSize is the per-client outgoing message buffer depth.
	sendBufSize = 16
)

// Frame event names sent to clients.
const (
	EventDisplay = "display"
	EventKeyDown = "keydown"
	EventError   = "error"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Allow all origins — callers should apply CORS at the reverse-proxy level.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message is the JSON envelope of every frame sent to clients.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// KeyDown is the payload of a keydown reply.
type KeyDown struct {
	Allowed bool `json:"allowed"`
}

// Error is the payload of an error frame.
type Error struct {
	Error string `json:"error"`
}

// Hub manages WebSocket client connections. Every connection owns one
// calculator form.
type Hub struct {
	fm        format.Formatting
	obs       form.Observer
	readLimit int64

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// client represents one connected WebSocket client.
type client struct {
	conn *websocket.Conn
	send chan []byte

	// formMu serialises the read loop against RefreshAll.
	formMu sync.Mutex
	form   *form.Form

	sendMu sync.Mutex
	closed bool
}

// New creates a Hub whose forms render through fm. obs may be nil.
func New(fm format.Formatting, obs form.Observer, readLimit int64) *Hub {
	return &Hub{
		fm:        fm,
		obs:       obs,
		readLimit: readLimit,
		clients:   make(map[*client]struct{}),
	}
}

// Run blocks until ctx is cancelled, then closes all active connections.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

// ServeHTTP upgrades the HTTP connection to WebSocket and serves one form.
// The initial display is sent immediately on connect. Blocks until the
// connection closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already written the error response.
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, sendBufSize),
	}
	c.form = form.New(h.fm, form.SinkFunc(func(d form.Display) {
		h.push(c, EventDisplay, d)
	}), h.obs)

	h.register(c)
	defer h.unregister(c)

	c.formMu.Lock()
	c.form.Refresh()
	c.formMu.Unlock()

	go c.writePump()
	h.readPump(c) // blocks until connection closes
}

// Count returns the number of currently connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RefreshAll re-renders every connected form, e.g. after the display
// settings changed.
func (h *Hub) RefreshAll() {
	for _, c := range h.snapshot() {
		c.formMu.Lock()
		c.form.Refresh()
		c.formMu.Unlock()
	}
}

// --- internal ---------------------------------------------------------------

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
}

func (h *Hub) snapshot() []*client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	targets := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	return targets
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	targets := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
		delete(h.clients, c)
	}
	h.mu.Unlock()
	for _, c := range targets {
		c.close()
	}
}

// push encodes one frame and queues it for c. A client whose outgoing
// buffer is full is disconnected.
func (h *Hub) push(c *client, event string, data any) {
	msg, err := json.Marshal(Message{Event: event, Data: data})
	if err != nil {
		slog.Error("ws: encode frame", "event", event, "err", err)
		return
	}
	if !c.enqueue(msg) {
		slog.Warn("ws: client too slow, disconnecting", "remote", c.conn.RemoteAddr().String())
		h.unregister(c)
	}
}

// readPump decodes client events and applies them to the form one at a
// time. Blocks until the connection closes.
func (h *Hub) readPump(c *client) {
	defer c.conn.Close()
	if h.readLimit > 0 {
		c.conn.SetReadLimit(h.readLimit)
	}
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		var ev form.Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			h.push(c, EventError, Error{Error: "invalid event: " + err.Error()})
			continue
		}

		c.formMu.Lock()
		_, allowed, err := c.form.Apply(ev)
		c.formMu.Unlock()

		switch {
		case err != nil:
			h.push(c, EventError, Error{Error: err.Error()})
		case ev.Type == form.EventKeyDown:
			h.push(c, EventKeyDown, KeyDown{Allowed: allowed})
		}
	}
}

// enqueue queues msg unless the client is closed. It reports false when
// the buffer is full.
func (c *client) enqueue(msg []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return true
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// writePump drains the client's send channel and forwards messages to the
// WebSocket connection. It also sends periodic ping frames. Runs in its own
// goroutine per client.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				// Channel was closed (hub is shutting down or client removed).
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
