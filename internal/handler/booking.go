package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ridepoolapp/backend/internal/domain"
	"github.com/ridepoolapp/backend/internal/middleware"
)

// CreateBooking handles POST /bookings. The body names either a concrete
// trip instance (trip_id) or a recurring series (recurrence_id); booking a
// series lands on its nearest upcoming instance.
func (s *Server) CreateBooking(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		writeUnauthorized(w)
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRequestError(w, "invalid request body")
		return
	}

	switch {
	case req.TripID != "" && req.RecurrenceID != "":
		writeRequestError(w, "trip_id and recurrence_id are mutually exclusive")
		return
	case req.TripID == "" && req.RecurrenceID == "":
		writeRequestError(w, "trip_id or recurrence_id is required")
		return
	}

	var (
		booking domain.Booking
		err     error
	)
	if req.TripID != "" {
		booking, err = s.bookings.BookTrip(r.Context(), req.TripID, userID, req.Seats)
	} else {
		booking, err = s.bookings.BookSeries(r.Context(), req.RecurrenceID, userID, req.Seats)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, bookingToResponse(booking))
}

// CancelBooking handles POST /bookings/{bookingID}/cancel. Cancelling a
// confirmed booking restores the trip's remaining seats.
func (s *Server) CancelBooking(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		writeUnauthorized(w)
		return
	}

	if err := s.bookings.Cancel(r.Context(), chi.URLParam(r, "bookingID"), userID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListMyBookings handles GET /me/bookings.
func (s *Server) ListMyBookings(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		writeUnauthorized(w)
		return
	}

	bookings, err := s.bookings.ListByPassenger(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		resp = append(resp, bookingToResponse(b))
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListTripBookings handles GET /trips/{tripID}/bookings. Only the trip
// owner may see who booked.
func (s *Server) ListTripBookings(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		writeUnauthorized(w)
		return
	}

	bookings, err := s.bookings.ListByTrip(r.Context(), chi.URLParam(r, "tripID"), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		resp = append(resp, bookingToResponse(b))
	}
	writeJSON(w, http.StatusOK, resp)
}
