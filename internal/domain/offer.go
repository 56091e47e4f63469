package domain

import "time"

// OfferStatus is the lifecycle state of a driver's offer on a request.
type OfferStatus string

const (
	OfferStatusPending  OfferStatus = "pending"
	OfferStatusAccepted OfferStatus = "accepted"
	OfferStatusDeclined OfferStatus = "declined"
)

// Offer is a driver's response to a passenger's trip request. Accepting or
// declining an offer is an explicit per-offer action by the request owner;
// accepting one offer does not implicitly decline the others.
type Offer struct {
	ID        string
	TripID    string // the request instance the offer answers
	DriverID  string
	Price     float64
	Message   string
	Status    OfferStatus
	CreatedAt time.Time
}
