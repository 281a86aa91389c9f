package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultActivityColor is applied when a client submits an activity without
// an explicit display color.
const DefaultActivityColor = "#3B82F6"

// Activity is a time-boxed entry on one day of a trip. Start and end times
// are times of day in 24h "HH:MM" form, deliberately not timezone-aware:
// an activity at 10:00 is at 10:00 wherever the trip happens to be.
type Activity struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`

	// Date is the timezone-naive calendar date the activity falls on,
	// held as midnight UTC.
	Date      time.Time `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`

	Location string `json:"location,omitempty"`
	Color    string `json:"color,omitempty"`

	// Creator is a free-form label for who added the activity. There is no
	// account system; clients self-report a display name.
	Creator string `json:"creator,omitempty"`

	// TripID is the owning trip. An activity always belongs to exactly one
	// trip, and that trip's ActivityIDs set references it back.
	TripID uuid.UUID `json:"trip_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ActivityUpdate carries a partial update to an activity. Nil fields are
// left untouched; set fields overwrite (shallow merge).
type ActivityUpdate struct {
	Title     *string
	Date      *time.Time
	StartTime *string
	EndTime   *string
	Location  *string
	Color     *string
}
