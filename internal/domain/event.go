package domain

import "github.com/google/uuid"

// EventKind tags a broadcast event with the activity mutation it describes.
type EventKind string

const (
	EventActivityAdded   EventKind = "activity-added"
	EventActivityUpdated EventKind = "activity-updated"
	EventActivityDeleted EventKind = "activity-deleted"
)

// Event is a broadcast message describing one committed activity mutation on
// a trip. Added and updated events carry the full activity record; deleted
// events carry only the identifier. Events are transient: they exist only in
// transit and delivery is at-most-once.
type Event struct {
	Kind       EventKind `json:"kind"`
	TripID     uuid.UUID `json:"trip_id"`
	ActivityID uuid.UUID `json:"activity_id"`
	Activity   *Activity `json:"activity,omitempty"`
}

// NewActivityAdded builds an activity-added event for the given record.
func NewActivityAdded(a Activity) Event {
	return Event{Kind: EventActivityAdded, TripID: a.TripID, ActivityID: a.ID, Activity: &a}
}

// NewActivityUpdated builds an activity-updated event for the given record.
func NewActivityUpdated(a Activity) Event {
	return Event{Kind: EventActivityUpdated, TripID: a.TripID, ActivityID: a.ID, Activity: &a}
}

// NewActivityDeleted builds an activity-deleted event carrying only the
// identifier of the removed activity.
func NewActivityDeleted(tripID, activityID uuid.UUID) Event {
	return Event{Kind: EventActivityDeleted, TripID: tripID, ActivityID: activityID}
}
