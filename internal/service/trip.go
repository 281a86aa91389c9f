// Package service contains the business logic for the itinerary API.
// Services validate inputs, enforce business rules, and orchestrate repo
// calls. No SQL lives here — services depend on repo interfaces, not
// implementations.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/roamline/backend/internal/domain"
	"github.com/roamline/backend/internal/repo"
)

// TripService implements business logic for Trip operations.
type TripService struct {
	trips repo.TripRepo
}

// NewTripService constructs a TripService backed by the provided TripRepo.
func NewTripService(trips repo.TripRepo) *TripService {
	return &TripService{trips: trips}
}

// Create validates and persists a new trip.
func (s *TripService) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	if err := validateTrip(trip); err != nil {
		return domain.Trip{}, err
	}
	result, err := s.trips.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns a single trip by ID.
func (s *TripService) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	result, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return result, nil
}

// List returns all trips.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TripService) List(ctx context.Context) ([]domain.Trip, error) {
	trips, err := s.trips.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.List: %w", err)
	}
	if trips == nil {
		return []domain.Trip{}, nil
	}
	return trips, nil
}

// Update applies a partial update to an existing trip: provided fields are
// shallow-merged onto the stored record, then the merged result is
// re-validated and persisted.
func (s *TripService) Update(ctx context.Context, id uuid.UUID, update domain.TripUpdate) (domain.Trip, error) {
	trip, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}

	if update.Name != nil {
		trip.Name = *update.Name
	}
	if update.Destination != nil {
		trip.Destination = *update.Destination
	}
	if update.StartDate != nil {
		trip.StartDate = *update.StartDate
	}
	if update.EndDate != nil {
		trip.EndDate = *update.EndDate
	}

	if err := validateTrip(trip); err != nil {
		return domain.Trip{}, err
	}

	result, err := s.trips.Update(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	return result, nil
}

// UpdateNotes replaces the trip's entire hourly-notes map. The caller's map
// fully overwrites whatever is stored: the last writer to persist wins, and
// keys present only in the stored map are lost. This matches the client's
// save-the-whole-map behavior and is a documented race, not a merge.
func (s *TripService) UpdateNotes(ctx context.Context, id uuid.UUID, notes domain.NotesMap) (domain.Trip, error) {
	if err := notes.Validate(); err != nil {
		return domain.Trip{}, err
	}
	result, err := s.trips.UpdateNotes(ctx, id, notes)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.UpdateNotes: %w", err)
	}
	return result, nil
}

// Delete removes a trip by ID.
func (s *TripService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.trips.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	return nil
}

// validateTrip enforces business rules common to both Create and Update.
//   - Name and destination must be non-empty (whitespace-only is rejected).
//   - Both dates are required; the end date must not be before the start.
func validateTrip(trip domain.Trip) error {
	if strings.TrimSpace(trip.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if strings.TrimSpace(trip.Destination) == "" {
		return fmt.Errorf("%w: destination is required", domain.ErrValidation)
	}
	if trip.StartDate.IsZero() || trip.EndDate.IsZero() {
		return fmt.Errorf("%w: start_date and end_date are required", domain.ErrValidation)
	}
	if trip.EndDate.Before(trip.StartDate) {
		return fmt.Errorf("%w: end_date must not be before start_date", domain.ErrValidation)
	}
	return nil
}
