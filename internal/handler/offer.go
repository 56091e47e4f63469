package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ridepoolapp/backend/internal/middleware"
)

// CreateOffer handles POST /trips/{tripID}/offers: a driver responding to
// a passenger's trip request with a price.
func (s *Server) CreateOffer(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		writeUnauthorized(w)
		return
	}

	var req createOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRequestError(w, "invalid request body")
		return
	}

	offer, err := s.offers.Create(r.Context(), chi.URLParam(r, "tripID"), userID, req.Price, req.Message)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, offerToResponse(offer))
}

// ListTripOffers handles GET /trips/{tripID}/offers. Only the request
// owner may review the offers made on it.
func (s *Server) ListTripOffers(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		writeUnauthorized(w)
		return
	}

	offers, err := s.offers.ListByTrip(r.Context(), chi.URLParam(r, "tripID"), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]offerResponse, 0, len(offers))
	for _, o := range offers {
		resp = append(resp, offerToResponse(o))
	}
	writeJSON(w, http.StatusOK, resp)
}

// AcceptOffer handles POST /offers/{offerID}/accept.
func (s *Server) AcceptOffer(w http.ResponseWriter, r *http.Request) {
	s.settleOffer(w, r, s.offers.Accept)
}

// DeclineOffer handles POST /offers/{offerID}/decline.
func (s *Server) DeclineOffer(w http.ResponseWriter, r *http.Request) {
	s.settleOffer(w, r, s.offers.Decline)
}

func (s *Server) settleOffer(w http.ResponseWriter, r *http.Request, settle func(ctx context.Context, offerID, requesterID string) error) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		writeUnauthorized(w)
		return
	}

	if err := settle(r.Context(), chi.URLParam(r, "offerID"), userID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
