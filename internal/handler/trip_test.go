package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridepoolapp/backend/internal/domain"
	"github.com/ridepoolapp/backend/internal/handler"
	"github.com/ridepoolapp/backend/internal/middleware"
)

// ---- mock TripServicer -----------------------------------------------------

type mockTripServicer struct {
	create          func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	createRecurring func(ctx context.Context, trip domain.Trip, weekdayNames []string, start time.Time, end *time.Time, leadDays int) ([]domain.Trip, error)
	search          func(ctx context.Context, f domain.TripFilter, p domain.PaginationParams) ([]domain.TripGroup, error)
	listByOwner     func(ctx context.Context, ownerID string) ([]domain.TripGroup, error)
	getByID         func(ctx context.Context, id string) (domain.Trip, error)
	delete          func(ctx context.Context, id, requesterID string) error
	cancel          func(ctx context.Context, id, requesterID string) error
}

func (m *mockTripServicer) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripServicer) CreateRecurring(ctx context.Context, trip domain.Trip, weekdayNames []string, start time.Time, end *time.Time, leadDays int) ([]domain.Trip, error) {
	return m.createRecurring(ctx, trip, weekdayNames, start, end, leadDays)
}
func (m *mockTripServicer) Search(ctx context.Context, f domain.TripFilter, p domain.PaginationParams) ([]domain.TripGroup, error) {
	return m.search(ctx, f, p)
}
func (m *mockTripServicer) ListByOwner(ctx context.Context, ownerID string) ([]domain.TripGroup, error) {
	return m.listByOwner(ctx, ownerID)
}
func (m *mockTripServicer) GetByID(ctx context.Context, id string) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripServicer) Delete(ctx context.Context, id, requesterID string) error {
	return m.delete(ctx, id, requesterID)
}
func (m *mockTripServicer) Cancel(ctx context.Context, id, requesterID string) error {
	return m.cancel(ctx, id, requesterID)
}

// compile-time check: mockTripServicer must satisfy handler.TripServicer.
var _ handler.TripServicer = (*mockTripServicer)(nil)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires Server.Routes behind the identity middleware, the
// same stack the binary mounts, so tests exercise the X-User-ID plumbing.
func newHTTPHandler(trips handler.TripServicer, bookings handler.BookingServicer, offers handler.OfferServicer) http.Handler {
	srv := handler.NewServer(trips, bookings, offers)
	return middleware.NewIdentity()(srv.Routes())
}

func doRequest(t *testing.T, h http.Handler, method, target, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	if userID != "" {
		r.Header.Set("X-User-ID", userID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func tripFixture() domain.Trip {
	return domain.Trip{
		ID:             "T1ABCD-EF012345",
		Kind:           domain.TripKindOffer,
		OwnerID:        "driver-1",
		Origin:         "Lisboa",
		Destination:    "Porto",
		DepartureDate:  time.Date(2025, 6, 6, 0, 0, 0, 0, time.Local),
		DepartureTime:  "08:30",
		Price:          15,
		SeatsOffered:   3,
		SeatsRemaining: 3,
		Status:         domain.TripStatusActive,
		CreatedAt:      time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC),
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

// ---- POST /trips -----------------------------------------------------------

func TestCreateTrip_OneOff(t *testing.T) {
	var got domain.Trip
	svc := &mockTripServicer{
		create: func(_ context.Context, trip domain.Trip) (domain.Trip, error) {
			got = trip
			trip.ID = "T1"
			trip.Status = domain.TripStatusActive
			return trip, nil
		},
	}

	body := `{
		"kind": "offer",
		"origin": "Lisboa",
		"destination": "Porto",
		"departure_date": "2025-06-06",
		"departure_time": "08:30",
		"price": 15,
		"seats": 3
	}`
	rec := doRequest(t, newHTTPHandler(svc, nil, nil), http.MethodPost, "/trips", "driver-1", body)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "driver-1", got.OwnerID)
	assert.Equal(t, domain.TripKindOffer, got.Kind)
	assert.Equal(t, time.Date(2025, 6, 6, 0, 0, 0, 0, time.Local), got.DepartureDate)

	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "T1", resp["id"])
	assert.Equal(t, "2025-06-06", resp["departure_date"])
}

func TestCreateTrip_Recurring(t *testing.T) {
	var gotStart time.Time
	var gotEnd *time.Time
	var gotWeekdays []string
	var gotLead int
	svc := &mockTripServicer{
		createRecurring: func(_ context.Context, trip domain.Trip, weekdayNames []string, start time.Time, end *time.Time, leadDays int) ([]domain.Trip, error) {
			gotStart, gotEnd, gotWeekdays, gotLead = start, end, weekdayNames, leadDays
			first := trip
			first.ID = "T1"
			first.RecurrenceID = "R1"
			first.DepartureDate = start
			second := trip
			second.ID = "T2"
			second.RecurrenceID = "R1"
			second.DepartureDate = start.AddDate(0, 0, 7)
			return []domain.Trip{first, second}, nil
		},
	}

	body := `{
		"kind": "offer",
		"origin": "Lisboa",
		"destination": "Porto",
		"departure_time": "08:30",
		"recurring": true,
		"weekdays": ["monday"],
		"start_date": "2025-06-02",
		"end_date": "2025-06-30",
		"publish_lead_days": 7,
		"price": 15,
		"seats": 3
	}`
	rec := doRequest(t, newHTTPHandler(svc, nil, nil), http.MethodPost, "/trips", "driver-1", body)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.Local), gotStart)
	require.NotNil(t, gotEnd)
	assert.Equal(t, time.Date(2025, 6, 30, 0, 0, 0, 0, time.Local), *gotEnd)
	assert.Equal(t, []string{"monday"}, gotWeekdays)
	assert.Equal(t, 7, gotLead)

	var resp struct {
		RecurrenceID string           `json:"recurrence_id"`
		Instances    []map[string]any `json:"instances"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "R1", resp.RecurrenceID)
	require.Len(t, resp.Instances, 2)
	assert.Equal(t, "2025-06-02", resp.Instances[0]["departure_date"])
	assert.Equal(t, "2025-06-09", resp.Instances[1]["departure_date"])
}

func TestCreateTrip_RecurringMissingStartDate(t *testing.T) {
	rec := doRequest(t, newHTTPHandler(&mockTripServicer{}, nil, nil),
		http.MethodPost, "/trips", "driver-1", `{"kind":"offer","recurring":true}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "validation_error", decodeError(t, rec).Error.Code)
}

func TestCreateTrip_ValidationErrorFromService(t *testing.T) {
	svc := &mockTripServicer{
		create: func(_ context.Context, _ domain.Trip) (domain.Trip, error) {
			return domain.Trip{}, fmt.Errorf("%w: origin is required", domain.ErrValidation)
		},
	}

	body := `{"kind":"offer","departure_date":"2025-06-06"}`
	rec := doRequest(t, newHTTPHandler(svc, nil, nil), http.MethodPost, "/trips", "driver-1", body)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "validation_error", resp.Error.Code)
	assert.Equal(t, "origin is required", resp.Error.Message)
}

func TestCreateTrip_Unauthenticated(t *testing.T) {
	rec := doRequest(t, newHTTPHandler(&mockTripServicer{}, nil, nil),
		http.MethodPost, "/trips", "", `{"kind":"offer"}`)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decodeError(t, rec).Error.Code)
}

// ---- GET /trips ------------------------------------------------------------

func TestSearchTrips(t *testing.T) {
	var gotFilter domain.TripFilter
	var gotPage domain.PaginationParams
	trip := tripFixture()
	svc := &mockTripServicer{
		search: func(_ context.Context, f domain.TripFilter, p domain.PaginationParams) ([]domain.TripGroup, error) {
			gotFilter = f
			gotPage = p
			return []domain.TripGroup{{
				Representative: trip,
				NextTripDate:   trip.DepartureDate,
				InstanceCount:  1,
			}}, nil
		},
	}

	rec := doRequest(t, newHTTPHandler(svc, nil, nil),
		http.MethodGet, "/trips?kind=offer&origin=lis&destination=por&page=2&limit=5", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.TripKindOffer, gotFilter.Kind)
	assert.Equal(t, "lis", gotFilter.Origin)
	assert.Equal(t, "por", gotFilter.Destination)
	assert.Equal(t, domain.PaginationParams{Page: 2, Limit: 5}, gotPage)

	var resp []struct {
		Trip          map[string]any `json:"trip"`
		NextTripDate  string         `json:"next_trip_date"`
		InstanceCount int            `json:"instance_count"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 1)
	assert.Equal(t, trip.ID, resp[0].Trip["id"])
	assert.Equal(t, "2025-06-06", resp[0].NextTripDate)
	assert.Equal(t, 1, resp[0].InstanceCount)
}

func TestSearchTrips_EmptyResultIsArray(t *testing.T) {
	svc := &mockTripServicer{
		search: func(_ context.Context, _ domain.TripFilter, _ domain.PaginationParams) ([]domain.TripGroup, error) {
			return []domain.TripGroup{}, nil
		},
	}

	rec := doRequest(t, newHTTPHandler(svc, nil, nil), http.MethodGet, "/trips", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

// ---- GET /trips/{tripID} ---------------------------------------------------

func TestGetTrip(t *testing.T) {
	trip := tripFixture()
	svc := &mockTripServicer{
		getByID: func(_ context.Context, id string) (domain.Trip, error) {
			require.Equal(t, trip.ID, id)
			return trip, nil
		},
	}

	rec := doRequest(t, newHTTPHandler(svc, nil, nil), http.MethodGet, "/trips/"+trip.ID, "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Lisboa", resp["origin"])
}

func TestGetTrip_NotFound(t *testing.T) {
	svc := &mockTripServicer{
		getByID: func(_ context.Context, _ string) (domain.Trip, error) {
			return domain.Trip{}, domain.ErrNotFound
		},
	}

	rec := doRequest(t, newHTTPHandler(svc, nil, nil), http.MethodGet, "/trips/nope", "", "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Error.Code)
}

// ---- DELETE /trips/{tripID}, POST /trips/{tripID}/cancel --------------------

func TestDeleteTrip(t *testing.T) {
	var gotID, gotRequester string
	svc := &mockTripServicer{
		delete: func(_ context.Context, id, requesterID string) error {
			gotID, gotRequester = id, requesterID
			return nil
		},
	}

	rec := doRequest(t, newHTTPHandler(svc, nil, nil), http.MethodDelete, "/trips/T1", "driver-1", "")

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "T1", gotID)
	assert.Equal(t, "driver-1", gotRequester)
}

func TestCancelTrip_ForeignTrip(t *testing.T) {
	svc := &mockTripServicer{
		cancel: func(_ context.Context, _, _ string) error {
			return fmt.Errorf("%w: trip belongs to another user", domain.ErrValidation)
		},
	}

	rec := doRequest(t, newHTTPHandler(svc, nil, nil), http.MethodPost, "/trips/T1/cancel", "other", "")

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

// ---- GET /me/trips ---------------------------------------------------------

func TestListMyTrips(t *testing.T) {
	trip := tripFixture()
	svc := &mockTripServicer{
		listByOwner: func(_ context.Context, ownerID string) ([]domain.TripGroup, error) {
			require.Equal(t, "driver-1", ownerID)
			return []domain.TripGroup{{Representative: trip, NextTripDate: trip.DepartureDate, InstanceCount: 1}}, nil
		},
	}

	rec := doRequest(t, newHTTPHandler(svc, nil, nil), http.MethodGet, "/me/trips", "driver-1", "")

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestListMyTrips_Unauthenticated(t *testing.T) {
	rec := doRequest(t, newHTTPHandler(&mockTripServicer{}, nil, nil), http.MethodGet, "/me/trips", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ---- GET /healthz ----------------------------------------------------------

func TestGetHealth(t *testing.T) {
	rec := doRequest(t, newHTTPHandler(nil, nil, nil), http.MethodGet, "/healthz", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ok", resp["status"])
}
