package sync

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/roamline/backend/internal/domain"
)

// Feed is a websocket connection to the API's /ws endpoint. It implements
// Room for membership and delivers inbound broadcast events to a callback
// via Listen.
type Feed struct {
	ws *websocket.Conn

	// writeMu serializes Join/Leave frames; gorilla connections permit only
	// one concurrent writer.
	writeMu sync.Mutex
}

// DialFeed connects to the websocket endpoint at wsURL
// (e.g. "ws://localhost:8080/ws").
func DialFeed(ctx context.Context, wsURL string) (*Feed, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", domain.ErrTransport, wsURL, err)
	}
	return &Feed{ws: ws}, nil
}

// Join subscribes this connection to the trip's room.
func (f *Feed) Join(tripID uuid.UUID) error {
	return f.send("join-trip", tripID)
}

// Leave unsubscribes this connection from the trip's room.
func (f *Feed) Leave(tripID uuid.UUID) error {
	return f.send("leave-trip", tripID)
}

func (f *Feed) send(msgType string, tripID uuid.UUID) error {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()
	msg := struct {
		Type   string    `json:"type"`
		TripID uuid.UUID `json:"tripId"`
	}{Type: msgType, TripID: tripID}
	if err := f.ws.WriteJSON(msg); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrTransport, msgType, err)
	}
	return nil
}

// Listen reads broadcast events and hands each to apply until the connection
// closes or fails. Run it in its own goroutine; a typical caller passes the
// agent's Apply method.
func (f *Feed) Listen(apply func(domain.Event)) error {
	for {
		var evt domain.Event
		if err := f.ws.ReadJSON(&evt); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("%w: read: %v", domain.ErrTransport, err)
		}
		apply(evt)
	}
}

// Close closes the underlying websocket connection. Any blocked Listen call
// returns after Close.
func (f *Feed) Close() error {
	return f.ws.Close()
}
