package realtime

import (
	"github.com/google/uuid"

	"github.com/roamline/backend/internal/domain"
)

// Broadcaster fans a committed activity mutation out to every connection in
// the trip's room. Delivery is fire-and-forget: a member whose connection is
// gone or whose buffer is full simply misses the event, and the periodic
// reconciliation fetch brings it back in sync.
type Broadcaster struct {
	reg *Registry
}

// NewBroadcaster returns a Broadcaster over the given registry.
func NewBroadcaster(reg *Registry) *Broadcaster {
	return &Broadcaster{reg: reg}
}

// Publish sends evt to every member of the trip's room, including the
// originator if it happens to be subscribed. Clients apply events
// idempotently, so the duplicate self-apply is harmless, and the mutating
// client refreshes from the store anyway.
func (b *Broadcaster) Publish(tripID uuid.UUID, evt domain.Event) {
	b.PublishExcept(tripID, evt, nil)
}

// PublishExcept sends evt to every member of the trip's room except origin.
// Pass a nil origin to deliver to all members.
func (b *Broadcaster) PublishExcept(tripID uuid.UUID, evt domain.Event, origin Conn) {
	for _, conn := range b.reg.Members(tripID) {
		if conn == origin {
			continue
		}
		conn.Send(evt)
	}
}
