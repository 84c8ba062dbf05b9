package domain

import "time"

// BookingStatus represents the current status of a booking.
type BookingStatus string

const (
	BookingStatusPending  BookingStatus = "PENDING"
	BookingStatusApproved BookingStatus = "APPROVED"
	BookingStatusRejected BookingStatus = "REJECTED"
	BookingStatusCanceled BookingStatus = "CANCELED"
	BookingStatusRemoved  BookingStatus = "REMOVED"
)

// IsTerminal reports whether the status admits no further transitions.
// APPROVED is not terminal: it may still become CANCELED or REMOVED.
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case BookingStatusRejected, BookingStatusCanceled, BookingStatusRemoved:
		return true
	}
	return false
}

// PaymentMethod represents how an approved booking will be paid.
type PaymentMethod string

const (
	PaymentMethodNone PaymentMethod = "NONE"
	PaymentMethodCash PaymentMethod = "CASH"
	PaymentMethodCard PaymentMethod = "CARD"
)

// PaymentStatus represents the settlement state of a booking's payment.
type PaymentStatus string

const (
	PaymentStatusNone      PaymentStatus = "NONE"
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
)

// Booking represents a passenger's request for seats on a ride.
//
// TransactionID is set only for card payments that have settled; it is the
// idempotency handle for gateway callbacks.
type Booking struct {
	ID                 string
	RideID             string
	PassengerID        string
	SeatsRequested     int
	Status             BookingStatus
	PaymentMethod      PaymentMethod
	PaymentStatus      PaymentStatus
	TransactionID      string
	AmountPaid         float64
	RequestedAt        time.Time
	PaymentCollectedAt time.Time
}
