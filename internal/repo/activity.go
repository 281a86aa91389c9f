package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/roamline/backend/internal/domain"
)

// ActivityRepo defines the persistence operations for Activities.
type ActivityRepo interface {
	// Create inserts a new activity and returns the persisted record.
	Create(ctx context.Context, activity domain.Activity) (domain.Activity, error)

	// GetByID retrieves a single activity by ID, scoped to the given trip.
	// Returns domain.ErrNotFound if no such activity exists under that trip.
	GetByID(ctx context.Context, tripID, activityID uuid.UUID) (domain.Activity, error)

	// ListByTripID returns all activities for a trip ordered by date, then
	// start time.
	ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.Activity, error)

	// Update overwrites the mutable fields of an existing activity and
	// returns the updated record. Returns domain.ErrNotFound if no such
	// activity exists under that trip.
	Update(ctx context.Context, activity domain.Activity) (domain.Activity, error)

	// Delete removes an activity by ID, scoped to the given trip.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, tripID, activityID uuid.UUID) error
}

// pgActivityRepo is the Postgres implementation of ActivityRepo.
type pgActivityRepo struct {
	db db
}

// NewActivityRepo constructs an ActivityRepo backed by the provided db connection.
func NewActivityRepo(db db) ActivityRepo {
	return &pgActivityRepo{db: db}
}

const activityColumns = `id, trip_id, title, date, start_time, end_time, location, color, creator, created_at, updated_at`

// Create inserts a new activity row and returns the full persisted record.
func (r *pgActivityRepo) Create(ctx context.Context, activity domain.Activity) (domain.Activity, error) {
	const q = `
		INSERT INTO activities (trip_id, title, date, start_time, end_time, location, color, creator)
		VALUES (@trip_id, @title, @date, @start_time, @end_time, @location, @color, @creator)
		RETURNING ` + activityColumns

	args := pgx.NamedArgs{
		"trip_id":    activity.TripID,
		"title":      activity.Title,
		"date":       activity.Date,
		"start_time": activity.StartTime,
		"end_time":   activity.EndTime,
		"location":   activity.Location,
		"color":      activity.Color,
		"creator":    activity.Creator,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanActivity(row)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("repo.ActivityRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves an activity by primary key, scoped to its trip.
func (r *pgActivityRepo) GetByID(ctx context.Context, tripID, activityID uuid.UUID) (domain.Activity, error) {
	const q = `SELECT ` + activityColumns + ` FROM activities WHERE id = @id AND trip_id = @trip_id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": activityID, "trip_id": tripID})
	result, err := scanActivity(row)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("repo.ActivityRepo.GetByID: %w", err)
	}
	return result, nil
}

// ListByTripID returns all activities for a trip in chronological order.
func (r *pgActivityRepo) ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.Activity, error) {
	const q = `SELECT ` + activityColumns + ` FROM activities WHERE trip_id = @trip_id ORDER BY date, start_time`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.ActivityRepo.ListByTripID: %w", err)
	}
	defer rows.Close()

	var activities []domain.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ActivityRepo.ListByTripID: scan: %w", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ActivityRepo.ListByTripID: rows: %w", err)
	}

	return activities, nil
}

// Update overwrites the mutable fields of an activity and returns the
// updated record.
func (r *pgActivityRepo) Update(ctx context.Context, activity domain.Activity) (domain.Activity, error) {
	const q = `
		UPDATE activities
		SET title      = @title,
		    date       = @date,
		    start_time = @start_time,
		    end_time   = @end_time,
		    location   = @location,
		    color      = @color,
		    updated_at = now()
		WHERE id = @id AND trip_id = @trip_id
		RETURNING ` + activityColumns

	args := pgx.NamedArgs{
		"id":         activity.ID,
		"trip_id":    activity.TripID,
		"title":      activity.Title,
		"date":       activity.Date,
		"start_time": activity.StartTime,
		"end_time":   activity.EndTime,
		"location":   activity.Location,
		"color":      activity.Color,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanActivity(row)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("repo.ActivityRepo.Update: %w", err)
	}
	return result, nil
}

// Delete removes an activity by primary key, scoped to its trip.
func (r *pgActivityRepo) Delete(ctx context.Context, tripID, activityID uuid.UUID) error {
	const q = `DELETE FROM activities WHERE id = @id AND trip_id = @trip_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": activityID, "trip_id": tripID})
	if err != nil {
		return fmt.Errorf("repo.ActivityRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ActivityRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanActivity maps a single database row into a domain.Activity.
func scanActivity(s scanner) (domain.Activity, error) {
	var (
		a      domain.Activity
		id     pgtype.UUID
		tripID pgtype.UUID
		date   pgtype.Date
	)

	err := s.Scan(&id, &tripID, &a.Title, &date, &a.StartTime, &a.EndTime, &a.Location, &a.Color, &a.Creator, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Activity{}, domain.ErrNotFound
		}
		return domain.Activity{}, err
	}

	a.ID = uuid.UUID(id.Bytes)
	a.TripID = uuid.UUID(tripID.Bytes)
	a.Date = date.Time

	return a, nil
}
