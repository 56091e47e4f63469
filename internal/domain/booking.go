package domain

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking reserves seats on one concrete trip instance. Booking against a
// collapsed series is resolved to an instance before a Booking is created,
// so TripID always points at a single dated row.
type Booking struct {
	ID          string
	TripID      string
	PassengerID string
	Seats       int
	Status      BookingStatus
	CreatedAt   time.Time
}
