package handler

import (
	"encoding/json"
	"net/http"

	"github.com/roamline/backend/internal/domain"
)

// ListActivities handles GET /api/trips/{tripID}/activities.
func (s *Server) ListActivities(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripID")
	if !ok {
		return
	}

	activities, err := s.activities.ListByTripID(r.Context(), tripID)
	if err != nil {
		serviceError(w, "activities", err)
		return
	}

	data := make([]Activity, len(activities))
	for i, a := range activities {
		data[i] = activityToResponse(a)
	}
	respond(w, http.StatusOK, data)
}

// CreateActivity handles POST /api/trips/{tripID}/activities. On success the
// new activity has been linked into the trip's activity set and an
// activity-added event broadcast to the trip's room.
func (s *Server) CreateActivity(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripID")
	if !ok {
		return
	}

	var body CreateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	activity := domain.Activity{
		Title:     body.Title,
		StartTime: body.StartTime,
		EndTime:   body.EndTime,
		Location:  body.Location,
		Color:     body.Color,
		Creator:   body.Creator,
	}
	if body.Date != nil {
		activity.Date = body.Date.Time
	}

	created, err := s.activities.Create(r.Context(), tripID, activity)
	if err != nil {
		serviceError(w, "activity", err)
		return
	}
	respond(w, http.StatusCreated, activityToResponse(created))
}

// UpdateActivity handles PATCH /api/trips/{tripID}/activities/{activityID}.
// Only the fields present in the body are changed; other viewers receive an
// activity-updated broadcast.
func (s *Server) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripID")
	if !ok {
		return
	}
	activityID, ok := pathUUID(w, r, "activityID")
	if !ok {
		return
	}

	var body UpdateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	update := domain.ActivityUpdate{
		Title:     body.Title,
		StartTime: body.StartTime,
		EndTime:   body.EndTime,
		Location:  body.Location,
		Color:     body.Color,
	}
	if body.Date != nil {
		update.Date = &body.Date.Time
	}

	updated, err := s.activities.Update(r.Context(), tripID, activityID, update)
	if err != nil {
		serviceError(w, "activity", err)
		return
	}
	respond(w, http.StatusOK, activityToResponse(updated))
}

// DeleteActivity handles DELETE /api/trips/{tripID}/activities/{activityID}.
// Other viewers receive an activity-deleted broadcast carrying the ID.
func (s *Server) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripID")
	if !ok {
		return
	}
	activityID, ok := pathUUID(w, r, "activityID")
	if !ok {
		return
	}

	if err := s.activities.Delete(r.Context(), tripID, activityID); err != nil {
		serviceError(w, "activity", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
