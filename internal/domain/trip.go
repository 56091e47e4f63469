// Package domain contains the core data types for the ride-share marketplace.
// This package has no dependencies outside the module and is imported by
// every other internal package (repo, service, handler).
package domain

import "time"

// TripKind distinguishes the two sides of the marketplace.
type TripKind string

const (
	// TripKindOffer is a driver publishing seats on a trip.
	TripKindOffer TripKind = "offer"
	// TripKindRequest is a passenger asking for a trip; drivers respond
	// with offers.
	TripKindRequest TripKind = "request"
)

// TripStatus is the lifecycle state of a single trip instance.
type TripStatus string

const (
	TripStatusActive    TripStatus = "active"
	TripStatusCompleted TripStatus = "completed"
	TripStatusCancelled TripStatus = "cancelled"
)

// Trip is one concrete, dated trip or request instance. Instances belonging
// to a recurring series share a RecurrenceID and carry identical copies of
// the recurrence definition and the shared driver/pricing fields; only
// DepartureDate and SeatsRemaining vary across a series.
type Trip struct {
	ID           string
	Kind         TripKind
	OwnerID      string // driver for offers, passenger for requests
	RecurrenceID string // empty for one-off instances

	Origin        string
	Destination   string
	DepartureDate time.Time // date only, local midnight
	DepartureTime string    // "HH:MM" wall clock, shared across a series

	// Recurrence definition, duplicated onto every instance of a series.
	// Zero values on one-off instances.
	Weekdays        []string
	StartDate       time.Time
	EndDate         *time.Time // nil means open-ended
	PublishLeadDays int

	// Offer-side fields.
	Price          float64
	SeatsOffered   int
	SeatsRemaining int
	VehicleModel   string
	VehicleColor   string

	// Request-side field.
	MaxPrice float64

	ContactName  string
	ContactPhone string
	Description  string

	Status    TripStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Recurring reports whether this instance belongs to a recurring series.
func (t Trip) Recurring() bool {
	return t.RecurrenceID != ""
}

// TripFilter narrows a trip search. Zero values mean "no constraint".
type TripFilter struct {
	Kind        TripKind
	Origin      string // substring match
	Destination string // substring match
	DateFrom    *time.Time
	Status      TripStatus
}
