// Package repo contains all database access logic for the ride-share API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ridepoolapp/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
//
// Begin is included because series creation writes all of its instances in
// one transaction, and booking/cancellation pair their booking write with
// the trip's seat update the same way; on a pgx.Tx it opens a savepoint, so
// the tests' rollback isolation still holds.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// TripRepo defines the persistence operations for trip instances.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the service to be unit-tested with a mock.
type TripRepo interface {
	// CreateBatch inserts every given trip in a single transaction and
	// returns the persisted records. A recurring series is materialized
	// through this call so a partial failure never leaves it half-written;
	// a one-off trip is simply a batch of one.
	CreateBatch(ctx context.Context, trips []domain.Trip) ([]domain.Trip, error)

	// GetByID retrieves a single trip instance by its primary key.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id string) (domain.Trip, error)

	// Search returns trip instances matching the filter, ordered by
	// departure_date ascending. Collapsing to one entry per series is the
	// caller's job.
	Search(ctx context.Context, f domain.TripFilter) ([]domain.Trip, error)

	// ListByOwner returns every instance owned by the given user, newest
	// departure first, regardless of status or date.
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Trip, error)

	// GetByRecurrenceAndDate finds the one instance of a series on a
	// concrete date. Returns domain.ErrNotFound when that date was never
	// materialized.
	GetByRecurrenceAndDate(ctx context.Context, recurrenceID string, date time.Time) (domain.Trip, error)

	// ListByRecurrenceID returns every instance of a series, departure
	// ascending. Empty (not an error) for unknown series IDs.
	ListByRecurrenceID(ctx context.Context, recurrenceID string) ([]domain.Trip, error)

	// Delete removes a single instance. Returns domain.ErrNotFound if it
	// does not exist.
	Delete(ctx context.Context, id string) error

	// DeleteByRecurrenceID removes every instance of a series in one
	// statement and returns how many rows went away.
	DeleteByRecurrenceID(ctx context.Context, recurrenceID string) (int64, error)

	// UpdateStatus sets the status of a single instance.
	UpdateStatus(ctx context.Context, id string, status domain.TripStatus) error

	// UpdateStatusByRecurrenceID sets the status of every instance of a
	// series in one statement.
	UpdateStatusByRecurrenceID(ctx context.Context, recurrenceID string, status domain.TripStatus) (int64, error)
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

const tripColumns = `id, kind, owner_id, recurrence_id, origin, destination,
	departure_date, departure_time, weekdays, start_date, end_date,
	publish_lead_days, price, seats_offered, seats_remaining, vehicle_model,
	vehicle_color, max_price, contact_name, contact_phone, description,
	status, created_at, updated_at`

// CreateBatch inserts all trips inside one transaction.
func (r *pgTripRepo) CreateBatch(ctx context.Context, trips []domain.Trip) ([]domain.Trip, error) {
	if len(trips) == 0 {
		return []domain.Trip{}, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.CreateBatch: begin: %w", err)
	}
	// Rollback after a successful commit is a no-op.
	defer func() { _ = tx.Rollback(ctx) }()

	const q = `
		INSERT INTO trips (
			id, kind, owner_id, recurrence_id, origin, destination,
			departure_date, departure_time, weekdays, start_date, end_date,
			publish_lead_days, price, seats_offered, seats_remaining,
			vehicle_model, vehicle_color, max_price, contact_name,
			contact_phone, description, status
		) VALUES (
			@id, @kind, @owner_id, @recurrence_id, @origin, @destination,
			@departure_date, @departure_time, @weekdays, @start_date, @end_date,
			@publish_lead_days, @price, @seats_offered, @seats_remaining,
			@vehicle_model, @vehicle_color, @max_price, @contact_name,
			@contact_phone, @description, @status
		)
		RETURNING ` + tripColumns

	out := make([]domain.Trip, 0, len(trips))
	for _, t := range trips {
		args := pgx.NamedArgs{
			"id":                t.ID,
			"kind":              t.Kind,
			"owner_id":          t.OwnerID,
			"recurrence_id":     nullableString(t.RecurrenceID),
			"origin":            t.Origin,
			"destination":       t.Destination,
			"departure_date":    t.DepartureDate,
			"departure_time":    t.DepartureTime,
			"weekdays":          weekdaysOrEmpty(t.Weekdays),
			"start_date":        t.StartDate,
			"end_date":          t.EndDate, // nil becomes NULL
			"publish_lead_days": t.PublishLeadDays,
			"price":             t.Price,
			"seats_offered":     t.SeatsOffered,
			"seats_remaining":   t.SeatsRemaining,
			"vehicle_model":     t.VehicleModel,
			"vehicle_color":     t.VehicleColor,
			"max_price":         t.MaxPrice,
			"contact_name":      t.ContactName,
			"contact_phone":     t.ContactPhone,
			"description":       t.Description,
			"status":            t.Status,
		}

		created, err := scanTrip(tx.QueryRow(ctx, q, args))
		if err != nil {
			return nil, fmt.Errorf("repo.TripRepo.CreateBatch: insert %s: %w", t.ID, err)
		}
		out = append(out, created)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("repo.TripRepo.CreateBatch: commit: %w", err)
	}
	return out, nil
}

// GetByID retrieves a trip instance by primary key.
func (r *pgTripRepo) GetByID(ctx context.Context, id string) (domain.Trip, error) {
	q := `SELECT ` + tripColumns + ` FROM trips WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

// Search returns instances matching the filter, departure_date ascending.
func (r *pgTripRepo) Search(ctx context.Context, f domain.TripFilter) ([]domain.Trip, error) {
	q := `SELECT ` + tripColumns + ` FROM trips WHERE TRUE`
	args := pgx.NamedArgs{}

	if f.Kind != "" {
		q += ` AND kind = @kind`
		args["kind"] = f.Kind
	}
	if f.Origin != "" {
		q += ` AND origin ILIKE @origin`
		args["origin"] = "%" + f.Origin + "%"
	}
	if f.Destination != "" {
		q += ` AND destination ILIKE @destination`
		args["destination"] = "%" + f.Destination + "%"
	}
	if f.DateFrom != nil {
		q += ` AND departure_date >= @date_from`
		args["date_from"] = *f.DateFrom
	}
	if f.Status != "" {
		q += ` AND status = @status`
		args["status"] = f.Status
	}
	q += ` ORDER BY departure_date ASC, departure_time ASC`

	return r.queryTrips(ctx, "Search", q, args)
}

// ListByOwner returns every instance owned by ownerID, newest departure first.
func (r *pgTripRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Trip, error) {
	q := `SELECT ` + tripColumns + ` FROM trips
		WHERE owner_id = @owner_id
		ORDER BY departure_date DESC`

	return r.queryTrips(ctx, "ListByOwner", q, pgx.NamedArgs{"owner_id": ownerID})
}

// GetByRecurrenceAndDate finds the instance of a series on a concrete date.
func (r *pgTripRepo) GetByRecurrenceAndDate(ctx context.Context, recurrenceID string, date time.Time) (domain.Trip, error) {
	q := `SELECT ` + tripColumns + ` FROM trips
		WHERE recurrence_id = @recurrence_id AND departure_date = @departure_date`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"recurrence_id":  recurrenceID,
		"departure_date": date,
	})
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByRecurrenceAndDate: %w", err)
	}
	return result, nil
}

// ListByRecurrenceID returns every instance of a series, departure ascending.
func (r *pgTripRepo) ListByRecurrenceID(ctx context.Context, recurrenceID string) ([]domain.Trip, error) {
	q := `SELECT ` + tripColumns + ` FROM trips
		WHERE recurrence_id = @recurrence_id
		ORDER BY departure_date ASC`

	return r.queryTrips(ctx, "ListByRecurrenceID", q, pgx.NamedArgs{"recurrence_id": recurrenceID})
}

// Delete removes a single instance by primary key.
func (r *pgTripRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM trips WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// DeleteByRecurrenceID removes the whole series in one statement, which
// Postgres applies atomically.
func (r *pgTripRepo) DeleteByRecurrenceID(ctx context.Context, recurrenceID string) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM trips WHERE recurrence_id = @recurrence_id`,
		pgx.NamedArgs{"recurrence_id": recurrenceID})
	if err != nil {
		return 0, fmt.Errorf("repo.TripRepo.DeleteByRecurrenceID: %w", err)
	}
	return tag.RowsAffected(), nil
}

// UpdateStatus sets the status of one instance.
func (r *pgTripRepo) UpdateStatus(ctx context.Context, id string, status domain.TripStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE trips SET status = @status, updated_at = now() WHERE id = @id`,
		pgx.NamedArgs{"id": id, "status": status})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.UpdateStatus: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.UpdateStatus: %w", domain.ErrNotFound)
	}
	return nil
}

// UpdateStatusByRecurrenceID sets the status of every instance in a series.
func (r *pgTripRepo) UpdateStatusByRecurrenceID(ctx context.Context, recurrenceID string, status domain.TripStatus) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE trips SET status = @status, updated_at = now()
		WHERE recurrence_id = @recurrence_id`,
		pgx.NamedArgs{"recurrence_id": recurrenceID, "status": status})
	if err != nil {
		return 0, fmt.Errorf("repo.TripRepo.UpdateStatusByRecurrenceID: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *pgTripRepo) queryTrips(ctx context.Context, op, q string, args pgx.NamedArgs) ([]domain.Trip, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.%s: %w", op, err)
	}
	defer rows.Close()

	var trips []domain.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TripRepo.%s: scan: %w", op, err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TripRepo.%s: rows: %w", op, err)
	}
	return trips, nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanTrip to be
// reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrip maps a single database row into a domain.Trip.
// It handles the nullable recurrence_id and end_date conversions and the
// date-typed columns.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t            domain.Trip
		recurrenceID pgtype.Text
		depDate      pgtype.Date
		startDate    pgtype.Date
		endDate      pgtype.Date
	)

	err := s.Scan(
		&t.ID, &t.Kind, &t.OwnerID, &recurrenceID, &t.Origin, &t.Destination,
		&depDate, &t.DepartureTime, &t.Weekdays, &startDate, &endDate,
		&t.PublishLeadDays, &t.Price, &t.SeatsOffered, &t.SeatsRemaining,
		&t.VehicleModel, &t.VehicleColor, &t.MaxPrice, &t.ContactName,
		&t.ContactPhone, &t.Description, &t.Status, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	if recurrenceID.Valid {
		t.RecurrenceID = recurrenceID.String
	}
	t.DepartureDate = depDate.Time
	t.StartDate = startDate.Time
	if endDate.Valid {
		ed := endDate.Time
		t.EndDate = &ed
	}

	return t, nil
}

// nullableString maps "" to NULL so partial indexes and IS NULL checks work.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// weekdaysOrEmpty keeps the column NOT NULL: nil slices insert as '{}'.
func weekdaysOrEmpty(w []string) []string {
	if w == nil {
		return []string{}
	}
	return w
}
