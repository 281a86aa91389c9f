package handler

import (
	"encoding/json"
	"net/http"

	"github.com/roamline/backend/internal/domain"
)

// CreateTrip handles POST /api/trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var body CreateTripRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	trip := domain.Trip{
		Name:        body.Name,
		Destination: body.Destination,
	}
	if body.StartDate != nil {
		trip.StartDate = body.StartDate.Time
	}
	if body.EndDate != nil {
		trip.EndDate = body.EndDate.Time
	}

	created, err := s.trips.Create(r.Context(), trip)
	if err != nil {
		serviceError(w, "trip", err)
		return
	}
	respond(w, http.StatusCreated, tripToResponse(created))
}

// ListTrips handles GET /api/trips.
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := s.trips.List(r.Context())
	if err != nil {
		serviceError(w, "trips", err)
		return
	}

	data := make([]Trip, len(trips))
	for i, t := range trips {
		data[i] = tripToResponse(t)
	}
	respond(w, http.StatusOK, data)
}

// GetTrip handles GET /api/trips/{tripID}. The response embeds the trip's
// full activity records alongside the notes map, so one request returns
// everything a trip view needs — this is the sync agent's reconciliation
// fetch.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "tripID")
	if !ok {
		return
	}

	trip, err := s.trips.GetByID(r.Context(), id)
	if err != nil {
		serviceError(w, "trip", err)
		return
	}

	activities, err := s.activities.ListByTripID(r.Context(), id)
	if err != nil {
		serviceError(w, "activities", err)
		return
	}

	resp := tripToResponse(trip)
	resp.Activities = make([]Activity, len(activities))
	for i, a := range activities {
		resp.Activities[i] = activityToResponse(a)
	}
	respond(w, http.StatusOK, resp)
}

// UpdateTrip handles PATCH /api/trips/{tripID}. Only the fields present in
// the body are changed.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "tripID")
	if !ok {
		return
	}

	var body UpdateTripRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	update := domain.TripUpdate{
		Name:        body.Name,
		Destination: body.Destination,
	}
	if body.StartDate != nil {
		update.StartDate = &body.StartDate.Time
	}
	if body.EndDate != nil {
		update.EndDate = &body.EndDate.Time
	}

	updated, err := s.trips.Update(r.Context(), id, update)
	if err != nil {
		serviceError(w, "trip", err)
		return
	}
	respond(w, http.StatusOK, tripToResponse(updated))
}

// ReplaceNotes handles PUT /api/trips/{tripID}/notes. The submitted map
// replaces the stored one wholesale: the last writer to persist wins.
func (s *Server) ReplaceNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "tripID")
	if !ok {
		return
	}

	var body ReplaceNotesRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	updated, err := s.trips.UpdateNotes(r.Context(), id, body.HourlyNotes)
	if err != nil {
		serviceError(w, "trip", err)
		return
	}
	respond(w, http.StatusOK, tripToResponse(updated))
}

// DeleteTrip handles DELETE /api/trips/{tripID}.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "tripID")
	if !ok {
		return
	}

	if err := s.trips.Delete(r.Context(), id); err != nil {
		serviceError(w, "trip", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
