package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ridepoolapp/backend/internal/domain"
	"github.com/ridepoolapp/backend/internal/recur"
	"github.com/ridepoolapp/backend/internal/repo"
)

// BookingService implements seat booking against concrete instances and
// against collapsed series. It holds the trip repo as well because booking
// must locate and mutate the trip being booked.
type BookingService struct {
	trips    repo.TripRepo
	bookings repo.BookingRepo
	now      func() time.Time
}

// NewBookingService constructs a BookingService backed by the provided repos.
// Pass nil for now to use the wall clock; tests pass a fixed clock.
func NewBookingService(trips repo.TripRepo, bookings repo.BookingRepo, now func() time.Time) *BookingService {
	if now == nil {
		now = time.Now
	}
	return &BookingService{trips: trips, bookings: bookings, now: now}
}

// BookTrip reserves seats on one concrete trip instance.
// Returns domain.ErrConflict when fewer seats remain than requested.
func (s *BookingService) BookTrip(ctx context.Context, tripID, passengerID string, seats int) (domain.Booking, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.BookTrip: %w", err)
	}
	return s.book(ctx, trip, passengerID, seats)
}

// BookSeries books the nearest upcoming instance of a recurring series: the
// occurrence resolver picks the date, and the instance materialized on that
// date is the one booked. Returns domain.ErrNotFound when the resolved date
// was never materialized (its publish window had not opened at series
// creation time).
func (s *BookingService) BookSeries(ctx context.Context, recurrenceID, passengerID string, seats int) (domain.Booking, error) {
	instances, err := s.trips.ListByRecurrenceID(ctx, recurrenceID)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.BookSeries: %w", err)
	}
	if len(instances) == 0 {
		return domain.Booking{}, fmt.Errorf("service.BookingService.BookSeries: %w", domain.ErrNotFound)
	}

	rep := instances[0]
	weekdays, err := recur.ParseWeekdays(rep.Weekdays)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.BookSeries: %w: %s", domain.ErrValidation, err)
	}

	next := recur.NextOccurrenceFrom(weekdays, rep.StartDate, s.now())
	trip, err := s.trips.GetByRecurrenceAndDate(ctx, recurrenceID, next)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.BookSeries: occurrence %s: %w",
			recur.FormatISODate(next), err)
	}

	return s.book(ctx, trip, passengerID, seats)
}

// Cancel cancels a passenger's own booking and returns the seats to the trip.
func (s *BookingService) Cancel(ctx context.Context, bookingID, passengerID string) error {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("service.BookingService.Cancel: %w", err)
	}
	if booking.PassengerID != passengerID {
		return fmt.Errorf("%w: booking belongs to another passenger", domain.ErrValidation)
	}

	// The repo flips the booking and returns the seats in one transaction,
	// so a failure here leaves both tables untouched.
	if err := s.bookings.Cancel(ctx, bookingID); err != nil {
		return fmt.Errorf("service.BookingService.Cancel: %w", err)
	}
	return nil
}

// ListByPassenger returns the passenger's bookings, newest first.
// Always returns a non-nil slice so callers can safely range over it.
func (s *BookingService) ListByPassenger(ctx context.Context, passengerID string) ([]domain.Booking, error) {
	bookings, err := s.bookings.ListByPassenger(ctx, passengerID)
	if err != nil {
		return nil, fmt.Errorf("service.BookingService.ListByPassenger: %w", err)
	}
	if bookings == nil {
		return []domain.Booking{}, nil
	}
	return bookings, nil
}

// ListByTrip returns all bookings on a trip instance. Only the trip owner
// may list them.
func (s *BookingService) ListByTrip(ctx context.Context, tripID, requesterID string) ([]domain.Booking, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.BookingService.ListByTrip: %w", err)
	}
	if trip.OwnerID != requesterID {
		return nil, fmt.Errorf("%w: trip belongs to another user", domain.ErrValidation)
	}

	bookings, err := s.bookings.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.BookingService.ListByTrip: %w", err)
	}
	if bookings == nil {
		return []domain.Booking{}, nil
	}
	return bookings, nil
}

// book runs the checks and writes shared by both booking paths.
func (s *BookingService) book(ctx context.Context, trip domain.Trip, passengerID string, seats int) (domain.Booking, error) {
	if seats < 1 {
		return domain.Booking{}, fmt.Errorf("%w: at least one seat is required", domain.ErrValidation)
	}
	if trip.Kind != domain.TripKindOffer {
		return domain.Booking{}, fmt.Errorf("%w: only driver offers can be booked", domain.ErrValidation)
	}
	if trip.Status != domain.TripStatusActive {
		return domain.Booking{}, fmt.Errorf("%w: trip is not active", domain.ErrValidation)
	}
	if trip.OwnerID == passengerID {
		return domain.Booking{}, fmt.Errorf("%w: cannot book your own trip", domain.ErrValidation)
	}

	booking := domain.Booking{
		ID:          recur.NewTripID(),
		TripID:      trip.ID,
		PassengerID: passengerID,
		Seats:       seats,
		Status:      domain.BookingStatusConfirmed,
	}
	// Seat decrement and booking insert happen in one repo transaction, so
	// a failed insert cannot strand capacity.
	created, err := s.bookings.Book(ctx, booking)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService: %w", err)
	}
	return created, nil
}
