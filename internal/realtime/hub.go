package realtime

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/roamline/backend/internal/domain"
)

const (
	// writeWait bounds a single frame write so one dead peer cannot stall
	// the write pump.
	writeWait = 10 * time.Second

	// pongWait is how long a connection may stay silent before it is
	// considered lost; pingPeriod must be shorter.
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second

	// maxMessageSize caps inbound frames; clients only ever send small
	// join/leave messages.
	maxMessageSize = 512

	// sendBuffer is the per-connection event queue. Events beyond it are
	// dropped; the client's reconciliation fetch repairs the gap.
	sendBuffer = 16
)

// clientMessage is the only frame shape clients send: a room join or leave.
type clientMessage struct {
	Type   string    `json:"type"`
	TripID uuid.UUID `json:"tripId"`
}

// Hub upgrades HTTP requests to websocket connections and keeps each
// connection's room membership in the registry. Outbound frames are
// JSON-encoded domain.Events.
type Hub struct {
	reg *Registry
	log *slog.Logger

	upgrader websocket.Upgrader
}

// NewHub returns a Hub over the given registry.
// checkOrigin, if non-nil, replaces the upgrader's same-origin check; the
// server passes one derived from its CORS allowlist.
func NewHub(reg *Registry, log *slog.Logger, checkOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		reg: reg,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// ServeHTTP upgrades the request and runs the connection's read and write
// pumps until the peer disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &wsConn{
		hub:  h,
		ws:   ws,
		send: make(chan domain.Event, sendBuffer),
	}

	go c.writePump()
	c.readPump()
}

// wsConn is one live websocket connection. It satisfies Conn so the
// registry and broadcaster can address it.
type wsConn struct {
	hub *Hub
	ws  *websocket.Conn

	mu     sync.Mutex
	closed bool
	send   chan domain.Event
}

// Send enqueues evt for the write pump. If the buffer is full or the
// connection is closing, the event is dropped: delivery is at-most-once and
// the client's periodic re-fetch is the correctness backstop.
func (c *wsConn) Send(evt domain.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- evt:
	default:
	}
}

// readPump consumes join/leave frames until the connection drops, then
// removes the connection from every room it joined.
func (c *wsConn) readPump() {
	defer func() {
		c.hub.reg.Drop(c)
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()
		c.ws.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg clientMessage
		if err := c.ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.hub.log.Debug("websocket read ended", "error", err)
			}
			return
		}

		switch msg.Type {
		case "join-trip":
			c.hub.reg.Join(c, msg.TripID)
		case "leave-trip":
			c.hub.reg.Leave(c, msg.TripID)
		default:
			// Unknown frame types are ignored rather than fatal so older
			// clients can speak a superset protocol.
		}
	}
}

// writePump writes queued events and periodic pings until the send channel
// closes or a write fails.
func (c *wsConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case evt, ok := <-c.send:
			if !ok {
				c.ws.SetWriteDeadline(time.Now().Add(writeWait))
				c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteJSON(evt); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
