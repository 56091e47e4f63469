// Package service contains the business logic for the ride-share API.
// Services validate inputs, enforce business rules, and orchestrate repo
// calls. No SQL lives here — services depend on repo interfaces, not
// implementations. The recurrence engine (internal/recur) is consumed only
// from this layer.
package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ridepoolapp/backend/internal/domain"
	"github.com/ridepoolapp/backend/internal/recur"
	"github.com/ridepoolapp/backend/internal/repo"
)

// timeOfDayRe matches the "HH:MM" wall-clock layout shared across a series.
var timeOfDayRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// TripService implements business logic for trip and series operations.
type TripService struct {
	trips repo.TripRepo
	now   func() time.Time
}

// NewTripService constructs a TripService backed by the provided TripRepo.
// Pass nil for now to use the wall clock; tests pass a fixed clock.
func NewTripService(trips repo.TripRepo, now func() time.Time) *TripService {
	if now == nil {
		now = time.Now
	}
	return &TripService{trips: trips, now: now}
}

// Create validates and persists a one-off trip or request instance.
// Returns domain.ErrValidation if input violates business rules.
func (s *TripService) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	if err := validateTrip(trip); err != nil {
		return domain.Trip{}, err
	}
	if recur.DateOnly(trip.DepartureDate).Before(recur.DateOnly(s.now())) {
		return domain.Trip{}, fmt.Errorf("%w: departure date is in the past", domain.ErrValidation)
	}

	trip.ID = recur.NewTripID()
	trip.RecurrenceID = ""
	trip.Weekdays = nil
	trip.StartDate = recur.DateOnly(trip.DepartureDate)
	trip.EndDate = nil
	trip.PublishLeadDays = 0
	trip.Status = domain.TripStatusActive
	trip.SeatsRemaining = trip.SeatsOffered

	created, err := s.trips.CreateBatch(ctx, []domain.Trip{trip})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	return created[0], nil
}

// CreateRecurring expands a recurrence definition into concrete instances
// and persists all of them in one atomic batch. The shared fields of trip
// (route, time, pricing, vehicle, contact) are duplicated onto every
// instance; each instance gets its own ID and departure date and they all
// share one freshly minted recurrence ID.
//
// An empty result is a valid outcome, not an error: it means no occurrence
// has reached its publish lead window yet. Re-running this call is the only
// way later occurrences ever materialize — there is no background job.
func (s *TripService) CreateRecurring(ctx context.Context, trip domain.Trip, weekdayNames []string, start time.Time, end *time.Time, leadDays int) ([]domain.Trip, error) {
	if err := validateTrip(trip); err != nil {
		return nil, err
	}
	if leadDays < 0 {
		return nil, fmt.Errorf("%w: publish lead days must not be negative", domain.ErrValidation)
	}
	if end != nil && recur.DateOnly(*end).Before(recur.DateOnly(start)) {
		return nil, fmt.Errorf("%w: end date is before start date", domain.ErrValidation)
	}

	weekdays, err := recur.ParseWeekdays(weekdayNames)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	now := s.now()
	dates := recur.ExpandFrom(weekdays, start, end, leadDays, now)

	recurrenceID := recur.NewRecurrenceID(trip.Origin, trip.Destination, trip.DepartureTime, start)

	instances := make([]domain.Trip, len(dates))
	for i, date := range dates {
		inst := trip
		inst.ID = recur.NewTripID()
		inst.RecurrenceID = recurrenceID
		inst.DepartureDate = date
		inst.Weekdays = weekdays.Names()
		inst.StartDate = recur.DateOnly(start)
		inst.EndDate = end
		inst.PublishLeadDays = leadDays
		inst.Status = domain.TripStatusActive
		inst.SeatsRemaining = inst.SeatsOffered
		instances[i] = inst
	}

	created, err := s.trips.CreateBatch(ctx, instances)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.CreateRecurring: %w", err)
	}
	return created, nil
}

// Search returns one collapsed group per matching series plus one per
// matching one-off instance, paged after collapsing so a series counts as
// a single entry.
//
// This call site pre-filters before collapsing: only active instances with
// a departure at or after today reach CollapseTrips. The owner dashboard
// (ListByOwner) intentionally does not share this filter.
func (s *TripService) Search(ctx context.Context, f domain.TripFilter, p domain.PaginationParams) ([]domain.TripGroup, error) {
	now := s.now()
	today := recur.DateOnly(now)
	f.Status = domain.TripStatusActive
	f.DateFrom = &today

	trips, err := s.trips.Search(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.Search: %w", err)
	}

	return domain.PageOf(domain.CollapseTrips(trips, now), p), nil
}

// ListByOwner returns the owner's dashboard view: every series and one-off
// they published, collapsed, with no status or date pre-filter — past and
// cancelled series stay visible as history.
func (s *TripService) ListByOwner(ctx context.Context, ownerID string) ([]domain.TripGroup, error) {
	trips, err := s.trips.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.ListByOwner: %w", err)
	}

	groups := domain.CollapseTrips(trips, s.now())
	if groups == nil {
		groups = []domain.TripGroup{}
	}
	return groups, nil
}

// GetByID returns a single trip instance.
func (s *TripService) GetByID(ctx context.Context, id string) (domain.Trip, error) {
	trip, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return trip, nil
}

// Delete removes a trip. Deleting any instance of a recurring series removes
// the whole series in one atomic statement; a one-off removes just itself.
// Only the owner may delete.
func (s *TripService) Delete(ctx context.Context, id, requesterID string) error {
	trip, err := s.ownedTrip(ctx, id, requesterID, "Delete")
	if err != nil {
		return err
	}

	if trip.Recurring() {
		if _, err := s.trips.DeleteByRecurrenceID(ctx, trip.RecurrenceID); err != nil {
			return fmt.Errorf("service.TripService.Delete: %w", err)
		}
		return nil
	}
	if err := s.trips.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	return nil
}

// Cancel marks a trip cancelled. Like Delete it is series-aware: cancelling
// one instance of a series cancels every instance sharing its recurrence ID.
func (s *TripService) Cancel(ctx context.Context, id, requesterID string) error {
	trip, err := s.ownedTrip(ctx, id, requesterID, "Cancel")
	if err != nil {
		return err
	}

	if trip.Recurring() {
		if _, err := s.trips.UpdateStatusByRecurrenceID(ctx, trip.RecurrenceID, domain.TripStatusCancelled); err != nil {
			return fmt.Errorf("service.TripService.Cancel: %w", err)
		}
		return nil
	}
	if err := s.trips.UpdateStatus(ctx, id, domain.TripStatusCancelled); err != nil {
		return fmt.Errorf("service.TripService.Cancel: %w", err)
	}
	return nil
}

// ownedTrip loads a trip and verifies the requester owns it.
func (s *TripService) ownedTrip(ctx context.Context, id, requesterID, op string) (domain.Trip, error) {
	trip, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.%s: %w", op, err)
	}
	if trip.OwnerID != requesterID {
		return domain.Trip{}, fmt.Errorf("%w: trip belongs to another user", domain.ErrValidation)
	}
	return trip, nil
}

// validateTrip enforces business rules common to one-off and recurring
// creation.
func validateTrip(trip domain.Trip) error {
	if strings.TrimSpace(trip.Origin) == "" {
		return fmt.Errorf("%w: origin is required", domain.ErrValidation)
	}
	if strings.TrimSpace(trip.Destination) == "" {
		return fmt.Errorf("%w: destination is required", domain.ErrValidation)
	}
	if strings.TrimSpace(trip.OwnerID) == "" {
		return fmt.Errorf("%w: owner is required", domain.ErrValidation)
	}
	if !timeOfDayRe.MatchString(trip.DepartureTime) {
		return fmt.Errorf("%w: departure time must be HH:MM", domain.ErrValidation)
	}

	switch trip.Kind {
	case domain.TripKindOffer:
		if trip.SeatsOffered < 1 {
			return fmt.Errorf("%w: an offer needs at least one seat", domain.ErrValidation)
		}
		if trip.Price < 0 {
			return fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
		}
	case domain.TripKindRequest:
		if trip.MaxPrice < 0 {
			return fmt.Errorf("%w: max price must not be negative", domain.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: kind must be offer or request", domain.ErrValidation)
	}
	return nil
}
