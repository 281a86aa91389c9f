package realtime

import (
	"context"

	"github.com/roamline/backend/internal/domain"
)

// Bus carries committed mutation events from the API layer to the
// connections that should see them. The service layer publishes through this
// interface so that single-node and multi-node deployments wire differently
// without touching business logic.
type Bus interface {
	// Publish hands evt to the broadcast fabric. A returned error means the
	// fabric was unreachable; callers treat publishing as best-effort and
	// must not fail the originating mutation.
	Publish(ctx context.Context, evt domain.Event) error
}

// LocalBus delivers events directly to the in-process broadcaster. Suitable
// for a single API node, and for tests.
type LocalBus struct {
	b *Broadcaster
}

// NewLocalBus returns a Bus that loops events straight back into the given
// broadcaster.
func NewLocalBus(b *Broadcaster) *LocalBus {
	return &LocalBus{b: b}
}

// Publish delivers evt to the local room members synchronously.
func (l *LocalBus) Publish(_ context.Context, evt domain.Event) error {
	l.b.Publish(evt.TripID, evt)
	return nil
}
