package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ridepoolapp/backend/internal/domain"
)

// OfferRepo defines the persistence operations for driver offers on requests.
type OfferRepo interface {
	Create(ctx context.Context, o domain.Offer) (domain.Offer, error)

	// GetByID retrieves an offer by primary key.
	// Returns domain.ErrNotFound if no offer with that ID exists.
	GetByID(ctx context.Context, id string) (domain.Offer, error)

	// ListByTrip returns all offers on one request instance, oldest first.
	ListByTrip(ctx context.Context, tripID string) ([]domain.Offer, error)

	// UpdateStatus moves a pending offer to accepted or declined. Returns
	// domain.ErrConflict when the offer is no longer pending.
	UpdateStatus(ctx context.Context, id string, status domain.OfferStatus) error
}

type pgOfferRepo struct {
	db db
}

// NewOfferRepo constructs an OfferRepo backed by the provided db connection.
func NewOfferRepo(db db) OfferRepo {
	return &pgOfferRepo{db: db}
}

const offerColumns = `id, trip_id, driver_id, price, message, status, created_at`

func (r *pgOfferRepo) Create(ctx context.Context, o domain.Offer) (domain.Offer, error) {
	const q = `
		INSERT INTO offers (id, trip_id, driver_id, price, message, status)
		VALUES (@id, @trip_id, @driver_id, @price, @message, @status)
		RETURNING ` + offerColumns

	args := pgx.NamedArgs{
		"id":        o.ID,
		"trip_id":   o.TripID,
		"driver_id": o.DriverID,
		"price":     o.Price,
		"message":   o.Message,
		"status":    o.Status,
	}

	result, err := scanOffer(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Offer{}, fmt.Errorf("repo.OfferRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgOfferRepo) GetByID(ctx context.Context, id string) (domain.Offer, error) {
	q := `SELECT ` + offerColumns + ` FROM offers WHERE id = @id`

	result, err := scanOffer(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Offer{}, fmt.Errorf("repo.OfferRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgOfferRepo) ListByTrip(ctx context.Context, tripID string) ([]domain.Offer, error) {
	q := `SELECT ` + offerColumns + ` FROM offers
		WHERE trip_id = @trip_id
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.OfferRepo.ListByTrip: %w", err)
	}
	defer rows.Close()

	var offers []domain.Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.OfferRepo.ListByTrip: scan: %w", err)
		}
		offers = append(offers, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.OfferRepo.ListByTrip: rows: %w", err)
	}
	return offers, nil
}

func (r *pgOfferRepo) UpdateStatus(ctx context.Context, id string, status domain.OfferStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE offers SET status = @status
		WHERE id = @id AND status = @pending`,
		pgx.NamedArgs{"id": id, "status": status, "pending": domain.OfferStatusPending})
	if err != nil {
		return fmt.Errorf("repo.OfferRepo.UpdateStatus: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return fmt.Errorf("repo.OfferRepo.UpdateStatus: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("repo.OfferRepo.UpdateStatus: %w", domain.ErrConflict)
	}
	return nil
}

func scanOffer(s scanner) (domain.Offer, error) {
	var o domain.Offer
	err := s.Scan(&o.ID, &o.TripID, &o.DriverID, &o.Price, &o.Message, &o.Status, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Offer{}, domain.ErrNotFound
		}
		return domain.Offer{}, err
	}
	return o, nil
}
