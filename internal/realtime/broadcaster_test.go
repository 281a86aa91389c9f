package realtime_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roamline/backend/internal/domain"
	"github.com/roamline/backend/internal/realtime"
)

func addedEvent(tripID uuid.UUID) domain.Event {
	return domain.NewActivityAdded(domain.Activity{
		ID:     uuid.New(),
		TripID: tripID,
		Title:  "Louvre",
	})
}

// ---- Broadcaster tests ----

func TestBroadcaster_DeliversToAllRoomMembers(t *testing.T) {
	reg := realtime.NewRegistry()
	b := realtime.NewBroadcaster(reg)
	trip := uuid.New()
	originator := &recordConn{}
	other := &recordConn{}

	reg.Join(originator, trip)
	reg.Join(other, trip)

	evt := addedEvent(trip)
	b.Publish(trip, evt)

	require.Len(t, originator.events, 1, "originator in the room receives its own event")
	require.Len(t, other.events, 1)
	assert.Equal(t, evt, other.events[0])
}

func TestBroadcaster_DoesNotLeakAcrossRooms(t *testing.T) {
	reg := realtime.NewRegistry()
	b := realtime.NewBroadcaster(reg)
	tripA := uuid.New()
	tripB := uuid.New()
	inA := &recordConn{}
	inB := &recordConn{}

	reg.Join(inA, tripA)
	reg.Join(inB, tripB)

	b.Publish(tripA, addedEvent(tripA))

	assert.Len(t, inA.events, 1)
	assert.Empty(t, inB.events)
}

func TestBroadcaster_EmptyRoomIsNoOp(t *testing.T) {
	reg := realtime.NewRegistry()
	b := realtime.NewBroadcaster(reg)

	b.Publish(uuid.New(), addedEvent(uuid.New()))
}

func TestBroadcaster_PublishExceptSkipsOrigin(t *testing.T) {
	reg := realtime.NewRegistry()
	b := realtime.NewBroadcaster(reg)
	trip := uuid.New()
	origin := &recordConn{}
	other := &recordConn{}

	reg.Join(origin, trip)
	reg.Join(other, trip)

	b.PublishExcept(trip, addedEvent(trip), origin)

	assert.Empty(t, origin.events)
	assert.Len(t, other.events, 1)
}

func TestBroadcaster_DeliveryAfterLeaveStops(t *testing.T) {
	reg := realtime.NewRegistry()
	b := realtime.NewBroadcaster(reg)
	trip := uuid.New()
	conn := &recordConn{}

	reg.Join(conn, trip)
	b.Publish(trip, addedEvent(trip))
	reg.Leave(conn, trip)
	b.Publish(trip, addedEvent(trip))

	assert.Len(t, conn.events, 1)
}
