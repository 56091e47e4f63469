package handler

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/ridepoolapp/backend/internal/domain"
)

// createTripRequest is the body for POST /trips. One-off and recurring
// creation share it: recurring=true switches the interpretation from a
// single departure_date to a weekday pattern over [start_date, end_date].
type createTripRequest struct {
	Kind          string              `json:"kind"`
	Origin        string              `json:"origin"`
	Destination   string              `json:"destination"`
	DepartureDate *openapi_types.Date `json:"departure_date,omitempty"`
	DepartureTime string              `json:"departure_time"`

	Recurring       bool                `json:"recurring"`
	Weekdays        []string            `json:"weekdays,omitempty"`
	StartDate       *openapi_types.Date `json:"start_date,omitempty"`
	EndDate         *openapi_types.Date `json:"end_date,omitempty"`
	PublishLeadDays int                 `json:"publish_lead_days"`

	Price        float64 `json:"price"`
	MaxPrice     float64 `json:"max_price"`
	Seats        int     `json:"seats"`
	VehicleModel string  `json:"vehicle_model"`
	VehicleColor string  `json:"vehicle_color"`
	ContactName  string  `json:"contact_name"`
	ContactPhone string  `json:"contact_phone"`
	Description  string  `json:"description"`
}

// createBookingRequest is the body for POST /bookings. Exactly one of
// trip_id (book a concrete instance) or recurrence_id (book the nearest
// upcoming instance of a series) must be set.
type createBookingRequest struct {
	TripID       string `json:"trip_id,omitempty"`
	RecurrenceID string `json:"recurrence_id,omitempty"`
	Seats        int    `json:"seats"`
}

// createOfferRequest is the body for POST /trips/{tripID}/offers.
type createOfferRequest struct {
	Price   float64 `json:"price"`
	Message string  `json:"message"`
}

type tripResponse struct {
	ID            string             `json:"id"`
	Kind          string             `json:"kind"`
	OwnerID       string             `json:"owner_id"`
	RecurrenceID  string             `json:"recurrence_id,omitempty"`
	Origin        string             `json:"origin"`
	Destination   string             `json:"destination"`
	DepartureDate openapi_types.Date `json:"departure_date"`
	DepartureTime string             `json:"departure_time"`

	Weekdays        []string            `json:"weekdays,omitempty"`
	StartDate       *openapi_types.Date `json:"start_date,omitempty"`
	EndDate         *openapi_types.Date `json:"end_date,omitempty"`
	PublishLeadDays int                 `json:"publish_lead_days,omitempty"`

	Price          float64 `json:"price"`
	MaxPrice       float64 `json:"max_price"`
	SeatsOffered   int     `json:"seats_offered"`
	SeatsRemaining int     `json:"seats_remaining"`
	VehicleModel   string  `json:"vehicle_model,omitempty"`
	VehicleColor   string  `json:"vehicle_color,omitempty"`
	ContactName    string  `json:"contact_name,omitempty"`
	ContactPhone   string  `json:"contact_phone,omitempty"`
	Description    string  `json:"description,omitempty"`

	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// seriesResponse is returned by POST /trips when recurring=true.
type seriesResponse struct {
	RecurrenceID string         `json:"recurrence_id"`
	Instances    []tripResponse `json:"instances"`
}

// groupResponse is one collapsed entry in a trip listing: a whole recurring
// series or a single one-off instance.
type groupResponse struct {
	Trip          tripResponse       `json:"trip"`
	NextTripDate  openapi_types.Date `json:"next_trip_date"`
	InstanceCount int                `json:"instance_count"`
}

type bookingResponse struct {
	ID          string    `json:"id"`
	TripID      string    `json:"trip_id"`
	PassengerID string    `json:"passenger_id"`
	Seats       int       `json:"seats"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type offerResponse struct {
	ID        string    `json:"id"`
	TripID    string    `json:"trip_id"`
	DriverID  string    `json:"driver_id"`
	Price     float64   `json:"price"`
	Message   string    `json:"message,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// localDate re-anchors a wire date (parsed as UTC midnight by the Date type)
// at local midnight, the calendar-date convention everywhere inside the
// engine and the database mapping.
func localDate(d openapi_types.Date) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.Local)
}

func wireDate(t time.Time) openapi_types.Date {
	return openapi_types.Date{Time: t}
}

func tripToResponse(t domain.Trip) tripResponse {
	resp := tripResponse{
		ID:              t.ID,
		Kind:            string(t.Kind),
		OwnerID:         t.OwnerID,
		RecurrenceID:    t.RecurrenceID,
		Origin:          t.Origin,
		Destination:     t.Destination,
		DepartureDate:   wireDate(t.DepartureDate),
		DepartureTime:   t.DepartureTime,
		Weekdays:        t.Weekdays,
		PublishLeadDays: t.PublishLeadDays,
		Price:           t.Price,
		MaxPrice:        t.MaxPrice,
		SeatsOffered:    t.SeatsOffered,
		SeatsRemaining:  t.SeatsRemaining,
		VehicleModel:    t.VehicleModel,
		VehicleColor:    t.VehicleColor,
		ContactName:     t.ContactName,
		ContactPhone:    t.ContactPhone,
		Description:     t.Description,
		Status:          string(t.Status),
		CreatedAt:       t.CreatedAt,
	}
	if t.Recurring() {
		sd := wireDate(t.StartDate)
		resp.StartDate = &sd
	}
	if t.EndDate != nil {
		ed := wireDate(*t.EndDate)
		resp.EndDate = &ed
	}
	return resp
}

func groupToResponse(g domain.TripGroup) groupResponse {
	return groupResponse{
		Trip:          tripToResponse(g.Representative),
		NextTripDate:  wireDate(g.NextTripDate),
		InstanceCount: g.InstanceCount,
	}
}

func bookingToResponse(b domain.Booking) bookingResponse {
	return bookingResponse{
		ID:          b.ID,
		TripID:      b.TripID,
		PassengerID: b.PassengerID,
		Seats:       b.Seats,
		Status:      string(b.Status),
		CreatedAt:   b.CreatedAt,
	}
}

func offerToResponse(o domain.Offer) offerResponse {
	return offerResponse{
		ID:        o.ID,
		TripID:    o.TripID,
		DriverID:  o.DriverID,
		Price:     o.Price,
		Message:   o.Message,
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt,
	}
}
