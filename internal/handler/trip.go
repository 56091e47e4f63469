package handler

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ridepoolapp/backend/internal/domain"
	"github.com/ridepoolapp/backend/internal/middleware"
)

// CreateTrip handles POST /trips. The same body creates a one-off trip or,
// with recurring=true, a whole series; a series responds with every
// published instance so the client can render the expansion immediately.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		writeUnauthorized(w)
		return
	}

	var req createTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRequestError(w, "invalid request body")
		return
	}

	trip := domain.Trip{
		Kind:          domain.TripKind(req.Kind),
		OwnerID:       userID,
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureTime: req.DepartureTime,
		Price:         req.Price,
		MaxPrice:      req.MaxPrice,
		SeatsOffered:  req.Seats,
		VehicleModel:  req.VehicleModel,
		VehicleColor:  req.VehicleColor,
		ContactName:   req.ContactName,
		ContactPhone:  req.ContactPhone,
		Description:   req.Description,
	}

	if req.Recurring {
		if req.StartDate == nil {
			writeRequestError(w, "start_date is required for recurring trips")
			return
		}
		start := localDate(*req.StartDate)
		var end *time.Time
		if req.EndDate != nil {
			e := localDate(*req.EndDate)
			end = &e
		}

		instances, err := s.trips.CreateRecurring(r.Context(), trip, req.Weekdays, start, end, req.PublishLeadDays)
		if err != nil {
			writeError(w, err)
			return
		}

		resp := seriesResponse{Instances: make([]tripResponse, 0, len(instances))}
		if len(instances) > 0 {
			resp.RecurrenceID = instances[0].RecurrenceID
		}
		for _, t := range instances {
			resp.Instances = append(resp.Instances, tripToResponse(t))
		}
		writeJSON(w, http.StatusCreated, resp)
		return
	}

	if req.DepartureDate == nil {
		writeRequestError(w, "departure_date is required")
		return
	}
	trip.DepartureDate = localDate(*req.DepartureDate)

	created, err := s.trips.Create(r.Context(), trip)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tripToResponse(created))
}

// SearchTrips handles GET /trips. Results are collapsed: one entry per
// recurring series plus the standalone instances, paged via page/limit
// query params. The service pins the search to active, future-dated trips,
// so no status or date parameters are accepted here.
func (s *Server) SearchTrips(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := domain.TripFilter{
		Kind:        domain.TripKind(q.Get("kind")),
		Origin:      q.Get("origin"),
		Destination: q.Get("destination"),
	}
	page := domain.NewPaginationParams(queryInt(q, "page"), queryInt(q, "limit"))

	groups, err := s.trips.Search(r.Context(), f, page)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]groupResponse, 0, len(groups))
	for _, g := range groups {
		resp = append(resp, groupToResponse(g))
	}
	writeJSON(w, http.StatusOK, resp)
}

// queryInt parses an optional integer query param; malformed values are
// treated as absent and fall back to the pagination defaults.
func queryInt(q url.Values, key string) *int {
	v := q.Get(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

// GetTrip handles GET /trips/{tripID}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	trip, err := s.trips.GetByID(r.Context(), chi.URLParam(r, "tripID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// DeleteTrip handles DELETE /trips/{tripID}. Deleting any instance of a
// recurring series removes the whole series.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		writeUnauthorized(w)
		return
	}

	if err := s.trips.Delete(r.Context(), chi.URLParam(r, "tripID"), userID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CancelTrip handles POST /trips/{tripID}/cancel. Cancelling any instance
// of a recurring series cancels the whole series.
func (s *Server) CancelTrip(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		writeUnauthorized(w)
		return
	}

	if err := s.trips.Cancel(r.Context(), chi.URLParam(r, "tripID"), userID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListMyTrips handles GET /me/trips: the caller's own trips, collapsed,
// including past and cancelled series.
func (s *Server) ListMyTrips(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		writeUnauthorized(w)
		return
	}

	groups, err := s.trips.ListByOwner(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]groupResponse, 0, len(groups))
	for _, g := range groups {
		resp = append(resp, groupToResponse(g))
	}
	writeJSON(w, http.StatusOK, resp)
}
