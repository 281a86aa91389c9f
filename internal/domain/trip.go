// Package domain contains the core data types for the trip itinerary planner.
// This package has zero external dependencies beyond uuid and is imported by
// every other internal package (repo, service, handler, realtime, sync).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Trip is the top-level aggregate: a named journey to a destination over a
// date range. Activities belong to a trip and are referenced by ID in order;
// hourly notes are stored as a single map on the trip itself.
type Trip struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Destination string    `json:"destination"`

	// StartDate and EndDate are timezone-naive calendar dates, held as
	// midnight UTC. They cross the wire as YYYY-MM-DD and must never be
	// converted to local time.
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`

	// ActivityIDs is the ordered set of activities belonging to this trip.
	// Every referenced activity declares this trip as its owner.
	ActivityIDs []uuid.UUID `json:"activity_ids"`

	// HourlyNotes maps a day-hour key (see NoteKey) to free-text notes.
	// The map is persisted wholesale: the last successful write wins.
	HourlyNotes NotesMap `json:"hourly_notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TripUpdate carries a partial update to a trip. Nil fields are left
// untouched; set fields overwrite (shallow merge).
type TripUpdate struct {
	Name        *string
	Destination *string
	StartDate   *time.Time
	EndDate     *time.Time
}
