package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roamline/backend/internal/domain"
	"github.com/roamline/backend/internal/repo"
)

func seedActivity(t *testing.T, r repo.ActivityRepo, tripID uuid.UUID, title string) domain.Activity {
	t.Helper()

	created, err := r.Create(context.Background(), domain.Activity{
		Title:     title,
		Date:      time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		StartTime: "10:00",
		EndTime:   "12:00",
		Color:     domain.DefaultActivityColor,
		Creator:   "ana",
		TripID:    tripID,
	})
	require.NoError(t, err)
	return created
}

// ---- ActivityRepo integration tests ----

func TestActivityRepo_CreateAndGet(t *testing.T) {
	tx := newTx(t)
	trips := repo.NewTripRepo(tx)
	r := repo.NewActivityRepo(tx)
	trip := seedTrip(t, trips)

	created := seedActivity(t, r, trip.ID, "Louvre")
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := r.GetByID(context.Background(), trip.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Louvre", got.Title)
	assert.Equal(t, "10:00", got.StartTime)
	assert.Equal(t, domain.DefaultActivityColor, got.Color)
	assert.Equal(t, trip.ID, got.TripID)
}

func TestActivityRepo_GetScopedToTrip(t *testing.T) {
	tx := newTx(t)
	trips := repo.NewTripRepo(tx)
	r := repo.NewActivityRepo(tx)
	tripA := seedTrip(t, trips)
	tripB, err := trips.Create(context.Background(), domain.Trip{
		Name:        "Rome",
		Destination: "Rome, Italy",
		StartDate:   time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2025, 9, 5, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	act := seedActivity(t, r, tripA.ID, "Louvre")

	// The same activity ID under a different trip is not found.
	_, err = r.GetByID(context.Background(), tripB.ID, act.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestActivityRepo_ListByTripIDOrdered(t *testing.T) {
	tx := newTx(t)
	trips := repo.NewTripRepo(tx)
	r := repo.NewActivityRepo(tx)
	trip := seedTrip(t, trips)

	late, err := r.Create(context.Background(), domain.Activity{
		Title: "Dinner", TripID: trip.ID,
		Date:      time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		StartTime: "19:00", EndTime: "21:00",
	})
	require.NoError(t, err)
	early, err := r.Create(context.Background(), domain.Activity{
		Title: "Breakfast", TripID: trip.ID,
		Date:      time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		StartTime: "08:00", EndTime: "09:00",
	})
	require.NoError(t, err)
	prevDay, err := r.Create(context.Background(), domain.Activity{
		Title: "Arrival", TripID: trip.ID,
		Date:      time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		StartTime: "22:00", EndTime: "23:00",
	})
	require.NoError(t, err)

	list, err := r.ListByTripID(context.Background(), trip.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, prevDay.ID, list[0].ID)
	assert.Equal(t, early.ID, list[1].ID)
	assert.Equal(t, late.ID, list[2].ID)
}

func TestActivityRepo_ListEmptyTrip(t *testing.T) {
	tx := newTx(t)
	trips := repo.NewTripRepo(tx)
	r := repo.NewActivityRepo(tx)
	trip := seedTrip(t, trips)

	list, err := r.ListByTripID(context.Background(), trip.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestActivityRepo_Update(t *testing.T) {
	tx := newTx(t)
	trips := repo.NewTripRepo(tx)
	r := repo.NewActivityRepo(tx)
	trip := seedTrip(t, trips)
	created := seedActivity(t, r, trip.ID, "Louvre")

	created.Title = "Musée du Louvre"
	created.StartTime = "09:30"
	created.Location = "Rue de Rivoli"

	updated, err := r.Update(context.Background(), created)
	require.NoError(t, err)
	assert.Equal(t, "Musée du Louvre", updated.Title)
	assert.Equal(t, "09:30", updated.StartTime)
	assert.Equal(t, "Rue de Rivoli", updated.Location)
}

func TestActivityRepo_UpdateNotFound(t *testing.T) {
	tx := newTx(t)
	trips := repo.NewTripRepo(tx)
	r := repo.NewActivityRepo(tx)
	trip := seedTrip(t, trips)

	_, err := r.Update(context.Background(), domain.Activity{
		ID: uuid.New(), TripID: trip.ID,
		Title: "ghost", Date: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		StartTime: "10:00", EndTime: "11:00",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestActivityRepo_Delete(t *testing.T) {
	tx := newTx(t)
	trips := repo.NewTripRepo(tx)
	r := repo.NewActivityRepo(tx)
	trip := seedTrip(t, trips)
	created := seedActivity(t, r, trip.ID, "Louvre")

	require.NoError(t, r.Delete(context.Background(), trip.ID, created.ID))

	_, err := r.GetByID(context.Background(), trip.ID, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, r.Delete(context.Background(), trip.ID, created.ID), domain.ErrNotFound)
}
