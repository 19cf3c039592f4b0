// Package realtime fans server events out to browser clients over WebSocket
// and dispatches the frames they send back.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Cleyssonfreitas/coderhouse-aula39/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10
	sendBuffer     = 32
)

// EventError is sent back to a client whose frame could not be handled.
const EventError = "error"

// ErrSlowClient is returned by Client.Send when the client's queue is full.
var ErrSlowClient = errors.New("realtime: client send queue full")

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("realtime: hub closed")

// Frame is the wire format in both directions.
type Frame struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Handler processes the payload of an incoming frame.
type Handler func(ctx context.Context, c *Client, payload json.RawMessage) error

// ConnectHook runs once for every new client before frames are read.
type ConnectHook func(ctx context.Context, c *Client) error

// Hub tracks connected clients. The zero value is not usable; call NewHub.
type Hub struct {
	mu        sync.RWMutex
	clients   map[*Client]struct{}
	handlers  map[string]Handler
	onConnect []ConnectHook
	closed    bool

	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHub creates a hub. Browser origins are checked against allowedOrigins;
// an empty list or "*" accepts any origin.
func NewHub(allowedOrigins []string, logger *slog.Logger) *Hub {
	h := &Hub{
		clients:  make(map[*Client]struct{}),
		handlers: make(map[string]Handler),
		logger:   logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	if len(set) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// Handle registers h for frames named event, replacing any previous handler.
func (h *Hub) Handle(event string, handler Handler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers[event] = handler
}

// OnConnect registers a hook run for each new client.
func (h *Hub) OnConnect(hook ConnectHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onConnect = append(h.onConnect, hook)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish sends event to every connected client. Clients that cannot keep up
// are disconnected; only an unencodable payload or a closed hub is an error.
func (h *Hub) Publish(ctx context.Context, event string, payload any) error {
	msg, err := encodeFrame(event, payload)
	if err != nil {
		return err
	}

	h.mu.RLock()
	if h.closed {
		h.mu.RUnlock()
		return ErrClosed
	}
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.enqueue(msg); err != nil {
			FramesDropped.Inc()
			h.logger.WarnContext(ctx, "dropping slow realtime client",
				slog.String("client_id", c.ID),
				slog.String("event", event),
			)
			h.unregister(c)
		}
	}
	FramesPublished.WithLabelValues(event).Inc()
	return nil
}

// ServeHTTP upgrades the request and serves the connection until the client
// goes away. It blocks for the lifetime of the connection.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written an HTTP error.
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	c := &Client{
		ID:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
	ctx := r.Context()
	l := logger.FromContext(ctx, h.logger).With(slog.String("client_id", c.ID))

	if !h.register(c) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}
	l.DebugContext(ctx, "realtime client connected")

	go c.writePump()

	h.mu.RLock()
	hooks := append([]ConnectHook(nil), h.onConnect...)
	h.mu.RUnlock()
	for _, hook := range hooks {
		if err := hook(ctx, c); err != nil {
			l.WarnContext(ctx, "realtime connect hook failed", slog.String("error", err.Error()))
		}
	}

	h.readPump(ctx, c, l)
	h.unregister(c)
	l.DebugContext(ctx, "realtime client disconnected")
}

// Close disconnects every client and rejects further publishes.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := h.clients
	h.clients = make(map[*Client]struct{})
	h.mu.Unlock()

	for c := range clients {
		c.close()
	}
	ConnectedClients.Set(0)
}

func (h *Hub) register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	ConnectedClients.Set(float64(len(h.clients)))
	return true
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		ConnectedClients.Set(float64(len(h.clients)))
	}
	h.mu.Unlock()
	c.close()
}

func (h *Hub) readPump(ctx context.Context, c *Client, l *slog.Logger) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				l.DebugContext(ctx, "realtime read failed", slog.String("error", err.Error()))
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			_ = c.Send(EventError, map[string]string{"message": "malformed frame"})
			continue
		}

		h.mu.RLock()
		handler, ok := h.handlers[frame.Event]
		h.mu.RUnlock()
		if !ok {
			_ = c.Send(EventError, map[string]string{"message": fmt.Sprintf("unknown event %q", frame.Event)})
			continue
		}
		if err := handler(ctx, c, frame.Payload); err != nil {
			l.InfoContext(ctx, "realtime frame rejected",
				slog.String("event", frame.Event),
				slog.String("error", err.Error()),
			)
			_ = c.Send(EventError, map[string]string{"message": err.Error()})
		}
	}
}

func encodeFrame(event string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", event, err)
	}
	msg, err := json.Marshal(Frame{Event: event, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("encode %s frame: %w", event, err)
	}
	return msg, nil
}
