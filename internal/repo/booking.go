package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ridepoolapp/backend/internal/domain"
)

// BookingRepo defines the persistence operations for bookings. Booking and
// cancelling both touch two tables (the booking row and the trip's remaining
// seats), so those operations run inside a single transaction here rather
// than as separate statements issued by the service layer.
type BookingRepo interface {
	// Book inserts the booking and takes its seats from the trip in one
	// transaction. Returns domain.ErrConflict when fewer seats remain than
	// the booking asks for and domain.ErrNotFound when the trip does not
	// exist; in both cases nothing is written.
	Book(ctx context.Context, b domain.Booking) (domain.Booking, error)

	// GetByID retrieves a booking by primary key.
	// Returns domain.ErrNotFound if no booking with that ID exists.
	GetByID(ctx context.Context, id string) (domain.Booking, error)

	// ListByPassenger returns a passenger's bookings, newest first.
	ListByPassenger(ctx context.Context, passengerID string) ([]domain.Booking, error)

	// ListByTrip returns all bookings on one trip instance, oldest first.
	ListByTrip(ctx context.Context, tripID string) ([]domain.Booking, error)

	// Cancel flips a confirmed booking to cancelled and returns its seats
	// to the trip in the same transaction. Returns domain.ErrNotFound for
	// unknown IDs and domain.ErrConflict when the booking is already
	// cancelled; in both cases nothing is written.
	Cancel(ctx context.Context, id string) error
}

type pgBookingRepo struct {
	db db
}

// NewBookingRepo constructs a BookingRepo backed by the provided db connection.
func NewBookingRepo(db db) BookingRepo {
	return &pgBookingRepo{db: db}
}

const bookingColumns = `id, trip_id, passenger_id, seats, status, created_at`

func (r *pgBookingRepo) Book(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Book: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := takeSeats(ctx, tx, b.TripID, b.Seats); err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Book: %w", err)
	}

	const q = `
		INSERT INTO bookings (id, trip_id, passenger_id, seats, status)
		VALUES (@id, @trip_id, @passenger_id, @seats, @status)
		RETURNING ` + bookingColumns

	args := pgx.NamedArgs{
		"id":           b.ID,
		"trip_id":      b.TripID,
		"passenger_id": b.PassengerID,
		"seats":        b.Seats,
		"status":       b.Status,
	}

	created, err := scanBooking(tx.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Book: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Book: commit: %w", err)
	}
	return created, nil
}

func (r *pgBookingRepo) GetByID(ctx context.Context, id string) (domain.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = @id`

	result, err := scanBooking(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgBookingRepo) ListByPassenger(ctx context.Context, passengerID string) ([]domain.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE passenger_id = @passenger_id
		ORDER BY created_at DESC`

	return r.queryBookings(ctx, "ListByPassenger", q, pgx.NamedArgs{"passenger_id": passengerID})
}

func (r *pgBookingRepo) ListByTrip(ctx context.Context, tripID string) ([]domain.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE trip_id = @trip_id
		ORDER BY created_at ASC`

	return r.queryBookings(ctx, "ListByTrip", q, pgx.NamedArgs{"trip_id": tripID})
}

func (r *pgBookingRepo) Cancel(ctx context.Context, id string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repo.BookingRepo.Cancel: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var (
		tripID string
		seats  int
	)
	err = tx.QueryRow(ctx,
		`UPDATE bookings SET status = @cancelled
		WHERE id = @id AND status = @confirmed
		RETURNING trip_id, seats`,
		pgx.NamedArgs{
			"id":        id,
			"cancelled": domain.BookingStatusCancelled,
			"confirmed": domain.BookingStatusConfirmed,
		}).Scan(&tripID, &seats)
	if errors.Is(err, pgx.ErrNoRows) {
		// Distinguish "no such booking" from "already cancelled",
		// inside the same transaction.
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM bookings WHERE id = @id)`,
			pgx.NamedArgs{"id": id}).Scan(&exists); err != nil {
			return fmt.Errorf("repo.BookingRepo.Cancel: %w", err)
		}
		if !exists {
			return fmt.Errorf("repo.BookingRepo.Cancel: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("repo.BookingRepo.Cancel: %w", domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("repo.BookingRepo.Cancel: %w", err)
	}

	if err := returnSeats(ctx, tx, tripID, seats); err != nil {
		return fmt.Errorf("repo.BookingRepo.Cancel: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repo.BookingRepo.Cancel: commit: %w", err)
	}
	return nil
}

// takeSeats takes n seats from a trip if and only if that many remain.
func takeSeats(ctx context.Context, tx pgx.Tx, tripID string, n int) error {
	tag, err := tx.Exec(ctx,
		`UPDATE trips
		SET seats_remaining = seats_remaining - @n, updated_at = now()
		WHERE id = @id AND seats_remaining >= @n`,
		pgx.NamedArgs{"id": tripID, "n": n})
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Distinguish "no such trip" from "not enough seats".
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM trips WHERE id = @id)`,
			pgx.NamedArgs{"id": tripID}).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.ErrNotFound
		}
		return fmt.Errorf("%w: not enough seats remaining", domain.ErrConflict)
	}
	return nil
}

// returnSeats gives n seats back to a trip, capped at seats_offered.
func returnSeats(ctx context.Context, tx pgx.Tx, tripID string, n int) error {
	tag, err := tx.Exec(ctx,
		`UPDATE trips
		SET seats_remaining = LEAST(seats_remaining + @n, seats_offered),
		    updated_at = now()
		WHERE id = @id`,
		pgx.NamedArgs{"id": tripID, "n": n})
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pgBookingRepo) queryBookings(ctx context.Context, op, q string, args pgx.NamedArgs) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.BookingRepo.%s: %w", op, err)
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.BookingRepo.%s: scan: %w", op, err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.BookingRepo.%s: rows: %w", op, err)
	}
	return bookings, nil
}

func scanBooking(s scanner) (domain.Booking, error) {
	var b domain.Booking
	err := s.Scan(&b.ID, &b.TripID, &b.PassengerID, &b.Seats, &b.Status, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Booking{}, domain.ErrNotFound
		}
		return domain.Booking{}, err
	}
	return b, nil
}
