package handler

import (
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/roamline/backend/internal/domain"
)

// Wire types. Calendar dates cross the wire as YYYY-MM-DD via
// openapi_types.Date so no timezone conversion can creep in.

// Trip is the wire representation of a trip. Activities is populated only by
// GET /api/trips/{tripID}, which returns the full state a trip view needs in
// one fetch.
type Trip struct {
	ID          uuid.UUID          `json:"id"`
	Name        string             `json:"name"`
	Destination string             `json:"destination"`
	StartDate   openapi_types.Date `json:"start_date"`
	EndDate     openapi_types.Date `json:"end_date"`
	ActivityIDs []uuid.UUID        `json:"activity_ids"`
	HourlyNotes domain.NotesMap    `json:"hourly_notes"`
	Activities  []Activity         `json:"activities,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// Activity is the wire representation of an activity.
type Activity struct {
	ID        uuid.UUID          `json:"id"`
	TripID    uuid.UUID          `json:"trip_id"`
	Title     string             `json:"title"`
	Date      openapi_types.Date `json:"date"`
	StartTime string             `json:"start_time"`
	EndTime   string             `json:"end_time"`
	Location  string             `json:"location,omitempty"`
	Color     string             `json:"color,omitempty"`
	Creator   string             `json:"creator,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// CreateTripRequest is the body of POST /api/trips.
type CreateTripRequest struct {
	Name        string              `json:"name"`
	Destination string              `json:"destination"`
	StartDate   *openapi_types.Date `json:"start_date"`
	EndDate     *openapi_types.Date `json:"end_date"`
}

// UpdateTripRequest is the body of PATCH /api/trips/{tripID}.
// Absent fields are left unchanged.
type UpdateTripRequest struct {
	Name        *string             `json:"name,omitempty"`
	Destination *string             `json:"destination,omitempty"`
	StartDate   *openapi_types.Date `json:"start_date,omitempty"`
	EndDate     *openapi_types.Date `json:"end_date,omitempty"`
}

// ReplaceNotesRequest is the body of PUT /api/trips/{tripID}/notes.
// The map replaces the stored one wholesale.
type ReplaceNotesRequest struct {
	HourlyNotes domain.NotesMap `json:"hourly_notes"`
}

// CreateActivityRequest is the body of POST /api/trips/{tripID}/activities.
type CreateActivityRequest struct {
	Title     string              `json:"title"`
	Date      *openapi_types.Date `json:"date"`
	StartTime string              `json:"start_time"`
	EndTime   string              `json:"end_time"`
	Location  string              `json:"location"`
	Color     string              `json:"color"`
	Creator   string              `json:"creator"`
}

// UpdateActivityRequest is the body of PATCH /…/activities/{activityID}.
// Absent fields are left unchanged.
type UpdateActivityRequest struct {
	Title     *string             `json:"title,omitempty"`
	Date      *openapi_types.Date `json:"date,omitempty"`
	StartTime *string             `json:"start_time,omitempty"`
	EndTime   *string             `json:"end_time,omitempty"`
	Location  *string             `json:"location,omitempty"`
	Color     *string             `json:"color,omitempty"`
}

// --- mapping helpers --------------------------------------------------------

func tripToResponse(t domain.Trip) Trip {
	ids := t.ActivityIDs
	if ids == nil {
		ids = []uuid.UUID{}
	}
	notes := t.HourlyNotes
	if notes == nil {
		notes = domain.NotesMap{}
	}
	return Trip{
		ID:          t.ID,
		Name:        t.Name,
		Destination: t.Destination,
		StartDate:   openapi_types.Date{Time: t.StartDate},
		EndDate:     openapi_types.Date{Time: t.EndDate},
		ActivityIDs: ids,
		HourlyNotes: notes,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func activityToResponse(a domain.Activity) Activity {
	return Activity{
		ID:        a.ID,
		TripID:    a.TripID,
		Title:     a.Title,
		Date:      openapi_types.Date{Time: a.Date},
		StartTime: a.StartTime,
		EndTime:   a.EndTime,
		Location:  a.Location,
		Color:     a.Color,
		Creator:   a.Creator,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
