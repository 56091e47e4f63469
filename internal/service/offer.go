package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ridepoolapp/backend/internal/domain"
	"github.com/ridepoolapp/backend/internal/recur"
	"github.com/ridepoolapp/backend/internal/repo"
)

// OfferService implements drivers answering passenger trip requests.
type OfferService struct {
	trips  repo.TripRepo
	offers repo.OfferRepo
}

// NewOfferService constructs an OfferService backed by the provided repos.
func NewOfferService(trips repo.TripRepo, offers repo.OfferRepo) *OfferService {
	return &OfferService{trips: trips, offers: offers}
}

// Create records a driver's offer on a request instance.
// Returns domain.ErrValidation when the target is not an active request or
// the driver is answering their own request.
func (s *OfferService) Create(ctx context.Context, tripID, driverID string, price float64, message string) (domain.Offer, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Offer{}, fmt.Errorf("service.OfferService.Create: %w", err)
	}
	if trip.Kind != domain.TripKindRequest {
		return domain.Offer{}, fmt.Errorf("%w: offers can only answer requests", domain.ErrValidation)
	}
	if trip.Status != domain.TripStatusActive {
		return domain.Offer{}, fmt.Errorf("%w: request is not active", domain.ErrValidation)
	}
	if trip.OwnerID == driverID {
		return domain.Offer{}, fmt.Errorf("%w: cannot answer your own request", domain.ErrValidation)
	}
	if price < 0 {
		return domain.Offer{}, fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
	}

	offer := domain.Offer{
		ID:       recur.NewTripID(),
		TripID:   tripID,
		DriverID: driverID,
		Price:    price,
		Message:  strings.TrimSpace(message),
		Status:   domain.OfferStatusPending,
	}
	created, err := s.offers.Create(ctx, offer)
	if err != nil {
		return domain.Offer{}, fmt.Errorf("service.OfferService.Create: %w", err)
	}
	return created, nil
}

// ListByTrip returns all offers on a request. Only the request owner sees
// them. Always returns a non-nil slice.
func (s *OfferService) ListByTrip(ctx context.Context, tripID, requesterID string) ([]domain.Offer, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.OfferService.ListByTrip: %w", err)
	}
	if trip.OwnerID != requesterID {
		return nil, fmt.Errorf("%w: request belongs to another user", domain.ErrValidation)
	}

	offers, err := s.offers.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.OfferService.ListByTrip: %w", err)
	}
	if offers == nil {
		return []domain.Offer{}, nil
	}
	return offers, nil
}

// Accept marks an offer accepted. Only the request owner may settle offers;
// other pending offers on the same request are left untouched — declining
// them is a separate, explicit action.
func (s *OfferService) Accept(ctx context.Context, offerID, requesterID string) error {
	return s.settle(ctx, offerID, requesterID, domain.OfferStatusAccepted)
}

// Decline marks an offer declined. Only the request owner may settle offers.
func (s *OfferService) Decline(ctx context.Context, offerID, requesterID string) error {
	return s.settle(ctx, offerID, requesterID, domain.OfferStatusDeclined)
}

func (s *OfferService) settle(ctx context.Context, offerID, requesterID string, status domain.OfferStatus) error {
	offer, err := s.offers.GetByID(ctx, offerID)
	if err != nil {
		return fmt.Errorf("service.OfferService.settle: %w", err)
	}

	trip, err := s.trips.GetByID(ctx, offer.TripID)
	if err != nil {
		return fmt.Errorf("service.OfferService.settle: %w", err)
	}
	if trip.OwnerID != requesterID {
		return fmt.Errorf("%w: request belongs to another user", domain.ErrValidation)
	}

	if err := s.offers.UpdateStatus(ctx, offerID, status); err != nil {
		return fmt.Errorf("service.OfferService.settle: %w", err)
	}
	return nil
}
