package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roamline/backend/internal/domain"
	"github.com/roamline/backend/internal/repo"
	"github.com/roamline/backend/internal/service"
)

// mockActivityRepo is a function-field mock of repo.ActivityRepo.
type mockActivityRepo struct {
	createFn       func(ctx context.Context, activity domain.Activity) (domain.Activity, error)
	getByIDFn      func(ctx context.Context, tripID, activityID uuid.UUID) (domain.Activity, error)
	listByTripIDFn func(ctx context.Context, tripID uuid.UUID) ([]domain.Activity, error)
	updateFn       func(ctx context.Context, activity domain.Activity) (domain.Activity, error)
	deleteFn       func(ctx context.Context, tripID, activityID uuid.UUID) error
}

func (m *mockActivityRepo) Create(ctx context.Context, activity domain.Activity) (domain.Activity, error) {
	return m.createFn(ctx, activity)
}

func (m *mockActivityRepo) GetByID(ctx context.Context, tripID, activityID uuid.UUID) (domain.Activity, error) {
	return m.getByIDFn(ctx, tripID, activityID)
}

func (m *mockActivityRepo) ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.Activity, error) {
	return m.listByTripIDFn(ctx, tripID)
}

func (m *mockActivityRepo) Update(ctx context.Context, activity domain.Activity) (domain.Activity, error) {
	return m.updateFn(ctx, activity)
}

func (m *mockActivityRepo) Delete(ctx context.Context, tripID, activityID uuid.UUID) error {
	return m.deleteFn(ctx, tripID, activityID)
}

var _ repo.ActivityRepo = (*mockActivityRepo)(nil)

// recordBus records published events; publishErr, when set, makes every
// publish fail.
type recordBus struct {
	events     []domain.Event
	publishErr error
}

func (b *recordBus) Publish(ctx context.Context, evt domain.Event) error {
	b.events = append(b.events, evt)
	return b.publishErr
}

var _ service.EventPublisher = (*recordBus)(nil)

// ---- fixtures ----

func validActivity(tripID uuid.UUID) domain.Activity {
	return domain.Activity{
		Title:     "Louvre",
		Date:      time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		StartTime: "10:00",
		EndTime:   "12:00",
		TripID:    tripID,
	}
}

func tripOwner(tripID uuid.UUID) *mockTripRepo {
	return &mockTripRepo{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
			if id != tripID {
				return domain.Trip{}, domain.ErrNotFound
			}
			trip := validTrip()
			trip.ID = tripID
			return trip, nil
		},
		appendActivityFn: func(ctx context.Context, _, _ uuid.UUID) error { return nil },
		removeActivityFn: func(ctx context.Context, _, _ uuid.UUID) error { return nil },
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ---- Create tests ----

func TestActivityService_CreateLinksAndPublishes(t *testing.T) {
	tripID := uuid.New()
	actID := uuid.New()
	var appended uuid.UUID

	trips := tripOwner(tripID)
	trips.appendActivityFn = func(ctx context.Context, _, activityID uuid.UUID) error {
		appended = activityID
		return nil
	}
	activities := &mockActivityRepo{
		createFn: func(ctx context.Context, activity domain.Activity) (domain.Activity, error) {
			activity.ID = actID
			return activity, nil
		},
	}
	bus := &recordBus{}
	svc := service.NewActivityService(trips, activities, bus, testLogger())

	created, err := svc.Create(context.Background(), tripID, validActivity(tripID))
	require.NoError(t, err)

	assert.Equal(t, actID, created.ID)
	assert.Equal(t, actID, appended, "new activity is linked into the trip's set")

	require.Len(t, bus.events, 1)
	evt := bus.events[0]
	assert.Equal(t, domain.EventActivityAdded, evt.Kind)
	assert.Equal(t, tripID, evt.TripID)
	assert.Equal(t, actID, evt.ActivityID)
	require.NotNil(t, evt.Activity, "added events carry the full record")
	assert.Equal(t, "Louvre", evt.Activity.Title)
}

func TestActivityService_CreateAppliesDefaultColor(t *testing.T) {
	tripID := uuid.New()
	activities := &mockActivityRepo{
		createFn: func(ctx context.Context, activity domain.Activity) (domain.Activity, error) {
			return activity, nil
		},
	}
	svc := service.NewActivityService(tripOwner(tripID), activities, &recordBus{}, testLogger())

	created, err := svc.Create(context.Background(), tripID, validActivity(tripID))
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultActivityColor, created.Color)
}

func TestActivityService_CreateKeepsExplicitColor(t *testing.T) {
	tripID := uuid.New()
	activities := &mockActivityRepo{
		createFn: func(ctx context.Context, activity domain.Activity) (domain.Activity, error) {
			return activity, nil
		},
	}
	svc := service.NewActivityService(tripOwner(tripID), activities, &recordBus{}, testLogger())

	act := validActivity(tripID)
	act.Color = "#FF0000"
	created, err := svc.Create(context.Background(), tripID, act)
	require.NoError(t, err)
	assert.Equal(t, "#FF0000", created.Color)
}

func TestActivityService_CreateUnknownTrip(t *testing.T) {
	tripID := uuid.New()
	bus := &recordBus{}
	svc := service.NewActivityService(tripOwner(tripID), &mockActivityRepo{}, bus, testLogger())

	_, err := svc.Create(context.Background(), uuid.New(), validActivity(tripID))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, bus.events, "nothing is broadcast for a failed create")
}

func TestActivityService_CreateValidation(t *testing.T) {
	tripID := uuid.New()
	cases := []struct {
		name   string
		mutate func(*domain.Activity)
	}{
		{"empty title", func(a *domain.Activity) { a.Title = "  " }},
		{"missing date", func(a *domain.Activity) { a.Date = time.Time{} }},
		{"bad start time", func(a *domain.Activity) { a.StartTime = "25:00" }},
		{"bad end time", func(a *domain.Activity) { a.EndTime = "noon" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := service.NewActivityService(tripOwner(tripID), &mockActivityRepo{}, &recordBus{}, testLogger())
			act := validActivity(tripID)
			tc.mutate(&act)

			_, err := svc.Create(context.Background(), tripID, act)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestActivityService_CreateSucceedsWhenPublishFails(t *testing.T) {
	tripID := uuid.New()
	activities := &mockActivityRepo{
		createFn: func(ctx context.Context, activity domain.Activity) (domain.Activity, error) {
			return activity, nil
		},
	}
	bus := &recordBus{publishErr: errors.New("redis down")}
	svc := service.NewActivityService(tripOwner(tripID), activities, bus, testLogger())

	_, err := svc.Create(context.Background(), tripID, validActivity(tripID))
	assert.NoError(t, err, "broadcast is best-effort; the mutation stands")
}

// ---- List tests ----

func TestActivityService_ListReturnsNonNil(t *testing.T) {
	activities := &mockActivityRepo{
		listByTripIDFn: func(ctx context.Context, tripID uuid.UUID) ([]domain.Activity, error) {
			return nil, nil
		},
	}
	svc := service.NewActivityService(&mockTripRepo{}, activities, &recordBus{}, testLogger())

	list, err := svc.ListByTripID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, list)
}

// ---- Update tests ----

func TestActivityService_UpdateMergesAndPublishes(t *testing.T) {
	tripID := uuid.New()
	stored := validActivity(tripID)
	stored.ID = uuid.New()

	activities := &mockActivityRepo{
		getByIDFn: func(ctx context.Context, gotTrip, gotAct uuid.UUID) (domain.Activity, error) {
			assert.Equal(t, tripID, gotTrip)
			assert.Equal(t, stored.ID, gotAct)
			return stored, nil
		},
		updateFn: func(ctx context.Context, activity domain.Activity) (domain.Activity, error) {
			return activity, nil
		},
	}
	bus := &recordBus{}
	svc := service.NewActivityService(tripOwner(tripID), activities, bus, testLogger())

	newStart := "09:30"
	updated, err := svc.Update(context.Background(), tripID, stored.ID, domain.ActivityUpdate{StartTime: &newStart})
	require.NoError(t, err)

	assert.Equal(t, "09:30", updated.StartTime)
	assert.Equal(t, stored.Title, updated.Title, "unset fields keep stored values")

	require.Len(t, bus.events, 1)
	assert.Equal(t, domain.EventActivityUpdated, bus.events[0].Kind)
	require.NotNil(t, bus.events[0].Activity, "updated events carry the full record")
	assert.Equal(t, "09:30", bus.events[0].Activity.StartTime)
}

func TestActivityService_UpdateNotFound(t *testing.T) {
	tripID := uuid.New()
	activities := &mockActivityRepo{
		getByIDFn: func(ctx context.Context, _, _ uuid.UUID) (domain.Activity, error) {
			return domain.Activity{}, domain.ErrNotFound
		},
	}
	bus := &recordBus{}
	svc := service.NewActivityService(tripOwner(tripID), activities, bus, testLogger())

	title := "x"
	_, err := svc.Update(context.Background(), tripID, uuid.New(), domain.ActivityUpdate{Title: &title})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, bus.events)
}

func TestActivityService_UpdateRejectsInvalidMerge(t *testing.T) {
	tripID := uuid.New()
	stored := validActivity(tripID)
	stored.ID = uuid.New()
	activities := &mockActivityRepo{
		getByIDFn: func(ctx context.Context, _, _ uuid.UUID) (domain.Activity, error) {
			return stored, nil
		},
	}
	svc := service.NewActivityService(tripOwner(tripID), activities, &recordBus{}, testLogger())

	bad := "9am"
	_, err := svc.Update(context.Background(), tripID, stored.ID, domain.ActivityUpdate{StartTime: &bad})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ---- Delete tests ----

func TestActivityService_DeleteUnlinksAndPublishesIDOnly(t *testing.T) {
	tripID := uuid.New()
	stored := validActivity(tripID)
	stored.ID = uuid.New()

	var removed, deleted uuid.UUID
	trips := tripOwner(tripID)
	trips.removeActivityFn = func(ctx context.Context, _, activityID uuid.UUID) error {
		removed = activityID
		return nil
	}
	activities := &mockActivityRepo{
		getByIDFn: func(ctx context.Context, _, _ uuid.UUID) (domain.Activity, error) {
			return stored, nil
		},
		deleteFn: func(ctx context.Context, _, activityID uuid.UUID) error {
			deleted = activityID
			return nil
		},
	}
	bus := &recordBus{}
	svc := service.NewActivityService(trips, activities, bus, testLogger())

	require.NoError(t, svc.Delete(context.Background(), tripID, stored.ID))
	assert.Equal(t, stored.ID, removed)
	assert.Equal(t, stored.ID, deleted)

	require.Len(t, bus.events, 1)
	evt := bus.events[0]
	assert.Equal(t, domain.EventActivityDeleted, evt.Kind)
	assert.Equal(t, stored.ID, evt.ActivityID)
	assert.Nil(t, evt.Activity, "deleted events carry only the identifier")
}

func TestActivityService_DeleteNotFound(t *testing.T) {
	tripID := uuid.New()
	activities := &mockActivityRepo{
		getByIDFn: func(ctx context.Context, _, _ uuid.UUID) (domain.Activity, error) {
			return domain.Activity{}, domain.ErrNotFound
		},
	}
	bus := &recordBus{}
	svc := service.NewActivityService(tripOwner(tripID), activities, bus, testLogger())

	err := svc.Delete(context.Background(), tripID, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, bus.events)
}
