// Package handler implements the HTTP handlers for the ride-share API.
// All handlers are methods on Server; they are split into domain-specific
// files (trip.go, booking.go, offer.go) but share the same Server struct
// so they can access its dependencies. Routing is plain chi.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ridepoolapp/backend/internal/domain"
)

// TripServicer defines the business operations the trip handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type TripServicer interface {
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	CreateRecurring(ctx context.Context, trip domain.Trip, weekdayNames []string, start time.Time, end *time.Time, leadDays int) ([]domain.Trip, error)
	Search(ctx context.Context, f domain.TripFilter, p domain.PaginationParams) ([]domain.TripGroup, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.TripGroup, error)
	GetByID(ctx context.Context, id string) (domain.Trip, error)
	Delete(ctx context.Context, id, requesterID string) error
	Cancel(ctx context.Context, id, requesterID string) error
}

// BookingServicer defines the operations the booking handlers depend on.
type BookingServicer interface {
	BookTrip(ctx context.Context, tripID, passengerID string, seats int) (domain.Booking, error)
	BookSeries(ctx context.Context, recurrenceID, passengerID string, seats int) (domain.Booking, error)
	Cancel(ctx context.Context, bookingID, passengerID string) error
	ListByPassenger(ctx context.Context, passengerID string) ([]domain.Booking, error)
	ListByTrip(ctx context.Context, tripID, requesterID string) ([]domain.Booking, error)
}

// OfferServicer defines the operations the offer handlers depend on.
type OfferServicer interface {
	Create(ctx context.Context, tripID, driverID string, price float64, message string) (domain.Offer, error)
	ListByTrip(ctx context.Context, tripID, requesterID string) ([]domain.Offer, error)
	Accept(ctx context.Context, offerID, requesterID string) error
	Decline(ctx context.Context, offerID, requesterID string) error
}

// Server holds the service dependencies for all API endpoints.
// Methods are in domain-specific files but all operate on this struct.
type Server struct {
	trips    TripServicer
	bookings BookingServicer
	offers   OfferServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(trips TripServicer, bookings BookingServicer, offers OfferServicer) *Server {
	return &Server{trips: trips, bookings: bookings, offers: offers}
}

// Routes returns the chi router for the full API surface. Identity must
// already be in the request context (see middleware.NewIdentity), so this
// router can be mounted behind any middleware stack.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)

	r.Route("/trips", func(r chi.Router) {
		r.Post("/", s.CreateTrip)
		r.Get("/", s.SearchTrips)
		r.Route("/{tripID}", func(r chi.Router) {
			r.Get("/", s.GetTrip)
			r.Delete("/", s.DeleteTrip)
			r.Post("/cancel", s.CancelTrip)
			r.Get("/bookings", s.ListTripBookings)
			r.Post("/offers", s.CreateOffer)
			r.Get("/offers", s.ListTripOffers)
		})
	})

	r.Route("/bookings", func(r chi.Router) {
		r.Post("/", s.CreateBooking)
		r.Post("/{bookingID}/cancel", s.CancelBooking)
	})

	r.Route("/offers/{offerID}", func(r chi.Router) {
		r.Post("/accept", s.AcceptOffer)
		r.Post("/decline", s.DeclineOffer)
	})

	r.Route("/me", func(r chi.Router) {
		r.Get("/trips", s.ListMyTrips)
		r.Get("/bookings", s.ListMyBookings)
	})

	return r
}

// GetHealth handles GET /healthz.
// It returns HTTP 200 with {"status":"ok"} when the server is running.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
