// Package handler implements the HTTP handlers for the itinerary API.
// All handlers are methods on Server; they are split into domain-specific
// files (trip.go, activity.go, etc.) but share the same struct so they can
// access its dependencies.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/roamline/backend/internal/domain"
)

// TripServicer defines the business operations the trip handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type TripServicer interface {
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	List(ctx context.Context) ([]domain.Trip, error)
	Update(ctx context.Context, id uuid.UUID, update domain.TripUpdate) (domain.Trip, error)
	UpdateNotes(ctx context.Context, id uuid.UUID, notes domain.NotesMap) (domain.Trip, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ActivityServicer defines the business operations the activity handlers
// depend on.
type ActivityServicer interface {
	Create(ctx context.Context, tripID uuid.UUID, activity domain.Activity) (domain.Activity, error)
	ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.Activity, error)
	Update(ctx context.Context, tripID, activityID uuid.UUID, update domain.ActivityUpdate) (domain.Activity, error)
	Delete(ctx context.Context, tripID, activityID uuid.UUID) error
}

// Server holds the handlers' dependencies. The websocket hub is mounted as a
// plain http.Handler so handler tests can substitute a stub.
type Server struct {
	trips      TripServicer
	activities ActivityServicer
	ws         http.Handler
}

// NewServer constructs the Server with all its dependencies.
func NewServer(trips TripServicer, activities ActivityServicer, ws http.Handler) *Server {
	return &Server{trips: trips, activities: activities, ws: ws}
}

// Routes assembles the full routing table.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/api/health", s.GetHealth)

	r.Route("/api/trips", func(r chi.Router) {
		r.Get("/", s.ListTrips)
		r.Post("/", s.CreateTrip)
		r.Route("/{tripID}", func(r chi.Router) {
			r.Get("/", s.GetTrip)
			r.Patch("/", s.UpdateTrip)
			r.Delete("/", s.DeleteTrip)
			r.Put("/notes", s.ReplaceNotes)
			r.Get("/activities", s.ListActivities)
			r.Post("/activities", s.CreateActivity)
			r.Patch("/activities/{activityID}", s.UpdateActivity)
			r.Delete("/activities/{activityID}", s.DeleteActivity)
		})
	})

	if s.ws != nil {
		r.Get("/ws", s.ws.ServeHTTP)
	}

	return r
}

// GetHealth handles GET /api/health.
// It returns HTTP 200 with {"status":"ok"} when the server is running.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

// pathUUID extracts and parses a UUID URL parameter. A second return of
// false means the response has already been written.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid "+name)
		return uuid.UUID{}, false
	}
	return id, true
}
