// Package repo contains all database access logic for the itinerary API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/roamline/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TripRepo defines the persistence operations for Trips.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the service to be unit-tested with a mock.
type TripRepo interface {
	// Create inserts a new trip and returns the persisted record (with
	// DB-generated id, created_at, and updated_at populated).
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves a single trip by its UUID primary key.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// List returns all trips ordered by start_date descending.
	List(ctx context.Context) ([]domain.Trip, error)

	// Update overwrites the mutable scalar fields of an existing trip and
	// returns the updated record. Returns domain.ErrNotFound if no trip with
	// that ID exists.
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// UpdateNotes replaces the trip's entire hourly-notes map and returns the
	// updated record. Last successful write wins; there is no per-key merge.
	UpdateNotes(ctx context.Context, id uuid.UUID, notes domain.NotesMap) (domain.Trip, error)

	// AppendActivity adds activityID to the end of the trip's ordered
	// activity set. Re-appending an ID that is already present moves it to
	// the end rather than duplicating it.
	AppendActivity(ctx context.Context, tripID, activityID uuid.UUID) error

	// RemoveActivity removes activityID from the trip's activity set.
	// Removing an absent ID is a no-op as long as the trip exists.
	RemoveActivity(ctx context.Context, tripID, activityID uuid.UUID) error

	// Delete removes a trip by ID. Returns domain.ErrNotFound if it does not
	// exist. Owned activities are removed by the schema's cascade rule.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripColumns = `id, name, destination, start_date, end_date, activity_ids, hourly_notes, created_at, updated_at`

// Create inserts a new trip row and returns the full persisted record.
func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		INSERT INTO trips (name, destination, start_date, end_date, hourly_notes)
		VALUES (@name, @destination, @start_date, @end_date, @hourly_notes)
		RETURNING ` + tripColumns

	notes, err := notesParam(trip.HourlyNotes)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}

	args := pgx.NamedArgs{
		"name":         trip.Name,
		"destination":  trip.Destination,
		"start_date":   trip.StartDate,
		"end_date":     trip.EndDate,
		"hourly_notes": notes,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a trip by primary key.
func (r *pgTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

// List returns all trips ordered by start_date descending (most recent first).
func (r *pgTripRepo) List(ctx context.Context) ([]domain.Trip, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips ORDER BY start_date DESC`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.List: %w", err)
	}
	defer rows.Close()

	var trips []domain.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TripRepo.List: scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TripRepo.List: rows: %w", err)
	}

	return trips, nil
}

// Update overwrites the scalar fields of a trip and returns the updated record.
// The activity set and notes map have their own dedicated operations.
func (r *pgTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET name        = @name,
		    destination = @destination,
		    start_date  = @start_date,
		    end_date    = @end_date,
		    updated_at  = now()
		WHERE id = @id
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{
		"id":          trip.ID,
		"name":        trip.Name,
		"destination": trip.Destination,
		"start_date":  trip.StartDate,
		"end_date":    trip.EndDate,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", err)
	}
	return result, nil
}

// UpdateNotes replaces the whole hourly-notes map in a single UPDATE, so the
// last writer to commit fully determines the stored map.
func (r *pgTripRepo) UpdateNotes(ctx context.Context, id uuid.UUID, notes domain.NotesMap) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET hourly_notes = @hourly_notes,
		    updated_at   = now()
		WHERE id = @id
		RETURNING ` + tripColumns

	param, err := notesParam(notes)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.UpdateNotes: %w", err)
	}

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "hourly_notes": param})
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.UpdateNotes: %w", err)
	}
	return result, nil
}

// AppendActivity adds activityID to the trip's ordered activity set.
// array_remove before array_append keeps the operation idempotent: an ID can
// appear at most once.
func (r *pgTripRepo) AppendActivity(ctx context.Context, tripID, activityID uuid.UUID) error {
	const q = `
		UPDATE trips
		SET activity_ids = array_append(array_remove(activity_ids, @activity_id), @activity_id),
		    updated_at   = now()
		WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": tripID, "activity_id": activityID})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.AppendActivity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.AppendActivity: %w", domain.ErrNotFound)
	}
	return nil
}

// RemoveActivity removes activityID from the trip's activity set.
func (r *pgTripRepo) RemoveActivity(ctx context.Context, tripID, activityID uuid.UUID) error {
	const q = `
		UPDATE trips
		SET activity_ids = array_remove(activity_ids, @activity_id),
		    updated_at   = now()
		WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": tripID, "activity_id": activityID})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.RemoveActivity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.RemoveActivity: %w", domain.ErrNotFound)
	}
	return nil
}

// Delete removes a trip by primary key.
func (r *pgTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM trips WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan
// helpers to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrip maps a single database row into a domain.Trip.
// It handles the UUID array, jsonb notes, and date conversions.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t         domain.Trip
		id        pgtype.UUID
		startDate pgtype.Date
		endDate   pgtype.Date
		ids       []pgtype.UUID
		notesRaw  []byte
	)

	err := s.Scan(&id, &t.Name, &t.Destination, &startDate, &endDate, &ids, &notesRaw, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.StartDate = startDate.Time
	t.EndDate = endDate.Time

	t.ActivityIDs = make([]uuid.UUID, len(ids))
	for i, aid := range ids {
		t.ActivityIDs[i] = uuid.UUID(aid.Bytes)
	}

	t.HourlyNotes = domain.NotesMap{}
	if len(notesRaw) > 0 {
		if err := json.Unmarshal(notesRaw, &t.HourlyNotes); err != nil {
			return domain.Trip{}, fmt.Errorf("decode hourly_notes: %w", err)
		}
	}

	return t, nil
}

// notesParam marshals a notes map for a jsonb column. A nil map is stored as
// an empty object, never as SQL NULL.
func notesParam(notes domain.NotesMap) ([]byte, error) {
	if notes == nil {
		notes = domain.NotesMap{}
	}
	b, err := json.Marshal(notes)
	if err != nil {
		return nil, fmt.Errorf("encode hourly_notes: %w", err)
	}
	return b, nil
}
