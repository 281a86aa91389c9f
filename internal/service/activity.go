package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/roamline/backend/internal/domain"
	"github.com/roamline/backend/internal/repo"
)

// EventPublisher hands committed activity mutations to the broadcast fabric.
// Defined here, in the consumer package, so the service can be tested with a
// recording fake and wired to either the local or the Redis-backed bus.
type EventPublisher interface {
	Publish(ctx context.Context, evt domain.Event) error
}

// ActivityService implements business logic for Activity operations.
// It holds the trip repo as well because creating an activity requires
// verifying the parent trip exists and updating the trip's activity set,
// and every committed mutation is published to the trip's room.
type ActivityService struct {
	trips      repo.TripRepo
	activities repo.ActivityRepo
	bus        EventPublisher
	log        *slog.Logger
}

// NewActivityService constructs an ActivityService backed by the provided
// repos and event publisher.
func NewActivityService(trips repo.TripRepo, activities repo.ActivityRepo, bus EventPublisher, log *slog.Logger) *ActivityService {
	return &ActivityService{trips: trips, activities: activities, bus: bus, log: log}
}

// Create validates the activity, verifies the parent trip exists, persists
// the record, links it into the trip's activity set, and broadcasts an
// activity-added event to the trip's room.
func (s *ActivityService) Create(ctx context.Context, tripID uuid.UUID, activity domain.Activity) (domain.Activity, error) {
	if _, err := s.trips.GetByID(ctx, tripID); err != nil {
		return domain.Activity{}, fmt.Errorf("service.ActivityService.Create: %w", err)
	}

	activity.TripID = tripID
	if activity.Color == "" {
		activity.Color = domain.DefaultActivityColor
	}
	if err := validateActivity(activity); err != nil {
		return domain.Activity{}, err
	}

	result, err := s.activities.Create(ctx, activity)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("service.ActivityService.Create: %w", err)
	}

	if err := s.trips.AppendActivity(ctx, tripID, result.ID); err != nil {
		return domain.Activity{}, fmt.Errorf("service.ActivityService.Create: %w", err)
	}

	s.publish(ctx, domain.NewActivityAdded(result))
	return result, nil
}

// ListByTripID returns all activities for a trip in chronological order.
// Always returns a non-nil slice so callers can safely range over it.
func (s *ActivityService) ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.Activity, error) {
	activities, err := s.activities.ListByTripID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ActivityService.ListByTripID: %w", err)
	}
	if activities == nil {
		return []domain.Activity{}, nil
	}
	return activities, nil
}

// Update applies a partial update to an existing activity, persists the
// merged result, and broadcasts an activity-updated event.
func (s *ActivityService) Update(ctx context.Context, tripID, activityID uuid.UUID, update domain.ActivityUpdate) (domain.Activity, error) {
	activity, err := s.activities.GetByID(ctx, tripID, activityID)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("service.ActivityService.Update: %w", err)
	}

	if update.Title != nil {
		activity.Title = *update.Title
	}
	if update.Date != nil {
		activity.Date = *update.Date
	}
	if update.StartTime != nil {
		activity.StartTime = *update.StartTime
	}
	if update.EndTime != nil {
		activity.EndTime = *update.EndTime
	}
	if update.Location != nil {
		activity.Location = *update.Location
	}
	if update.Color != nil {
		activity.Color = *update.Color
	}

	if err := validateActivity(activity); err != nil {
		return domain.Activity{}, err
	}

	result, err := s.activities.Update(ctx, activity)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("service.ActivityService.Update: %w", err)
	}

	s.publish(ctx, domain.NewActivityUpdated(result))
	return result, nil
}

// Delete unlinks the activity from its trip, removes the record, and
// broadcasts an activity-deleted event carrying only the identifier.
func (s *ActivityService) Delete(ctx context.Context, tripID, activityID uuid.UUID) error {
	if _, err := s.activities.GetByID(ctx, tripID, activityID); err != nil {
		return fmt.Errorf("service.ActivityService.Delete: %w", err)
	}

	if err := s.trips.RemoveActivity(ctx, tripID, activityID); err != nil {
		return fmt.Errorf("service.ActivityService.Delete: %w", err)
	}
	if err := s.activities.Delete(ctx, tripID, activityID); err != nil {
		return fmt.Errorf("service.ActivityService.Delete: %w", err)
	}

	s.publish(ctx, domain.NewActivityDeleted(tripID, activityID))
	return nil
}

// publish hands the event to the bus, logging failures instead of
// propagating them. Broadcast delivery is best-effort: viewers that miss an
// event converge on the next reconciliation fetch.
func (s *ActivityService) publish(ctx context.Context, evt domain.Event) {
	if err := s.bus.Publish(ctx, evt); err != nil {
		s.log.Warn("broadcast publish failed",
			"kind", string(evt.Kind),
			"trip_id", evt.TripID,
			"activity_id", evt.ActivityID,
			"error", err,
		)
	}
}

// validateActivity enforces business rules common to both Create and Update.
//   - Title must be non-empty (whitespace-only titles are rejected).
//   - Date is required.
//   - Start and end times must be 24h "HH:MM" times of day.
func validateActivity(activity domain.Activity) error {
	if strings.TrimSpace(activity.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if activity.Date.IsZero() {
		return fmt.Errorf("%w: date is required", domain.ErrValidation)
	}
	if err := validateTimeOfDay("start_time", activity.StartTime); err != nil {
		return err
	}
	if err := validateTimeOfDay("end_time", activity.EndTime); err != nil {
		return err
	}
	return nil
}

func validateTimeOfDay(field, value string) error {
	if _, err := time.Parse("15:04", value); err != nil {
		return fmt.Errorf("%w: %s must be a 24h HH:MM time", domain.ErrValidation, field)
	}
	return nil
}
