package repository

import (
	"context"
	"time"

	"highwaylink/internal/domain"
)

// BookingRepository defines the persistence operations for bookings.
//
// Bookings are append-only: rows never leave the table; lifecycle changes
// are status updates so marketplace disputes stay auditable.
type BookingRepository interface {
	// Create persists a new booking.
	Create(ctx context.Context, booking *domain.Booking) error

	// GetByID retrieves a booking by ID.
	GetByID(ctx context.Context, id string) (*domain.Booking, error)

	// GetActiveByRideAndPassenger retrieves the passenger's PENDING or
	// APPROVED booking on the ride, or nil if none exists.
	GetActiveByRideAndPassenger(ctx context.Context, rideID, passengerID string) (*domain.Booking, error)

	// ListByRide retrieves all bookings for a ride, oldest first.
	ListByRide(ctx context.Context, rideID string) ([]*domain.Booking, error)

	// ListByPassenger retrieves all bookings made by a passenger.
	ListByPassenger(ctx context.Context, passengerID string) ([]*domain.Booking, error)

	// ApprovedSeatTotal returns the sum of seats_requested over APPROVED
	// bookings for the ride.
	ApprovedSeatTotal(ctx context.Context, rideID string) (int, error)

	// CountApproved returns the number of APPROVED bookings for the ride.
	CountApproved(ctx context.Context, rideID string) (int, error)

	// UpdateStatus moves a booking from one status to another only if it
	// currently holds the expected status.
	UpdateStatus(ctx context.Context, id string, from, to domain.BookingStatus) (bool, error)

	// ApproveWithReservation moves a PENDING booking to APPROVED, opens
	// its payment record (method NONE, status PENDING) and decrements the
	// ride's seats_available in one transaction, so a crash can never
	// reserve seats without approving the booking or vice versa.
	// ok=false means the booking was not PENDING or fewer than the
	// requested seats remained; nothing is written in that case.
	ApproveWithReservation(ctx context.Context, id, rideID string, seats int) (bool, error)

	// FinishWithRelease moves an APPROVED booking to a terminal status
	// and returns its seats to the ride in one transaction, so a crash
	// can never release seats without terminating the booking or vice
	// versa. ok=false means the booking was not APPROVED or the release
	// would exceed total_seats; nothing is written in that case.
	FinishWithRelease(ctx context.Context, id, rideID string, seats int, to domain.BookingStatus) (bool, error)

	// SetPaymentMethod overwrites the payment method while settlement is
	// not COMPLETED.
	SetPaymentMethod(ctx context.Context, id string, method domain.PaymentMethod) (bool, error)

	// CompletePayment settles a booking's payment: status COMPLETED,
	// amount and collection time recorded, transaction id for card
	// settlements. ok=false if already COMPLETED.
	CompletePayment(ctx context.Context, id, transactionID string, amount float64, collectedAt time.Time) (bool, error)

	// ListPaidByOwner retrieves bookings with COMPLETED payments across
	// all rides owned by the given owner.
	ListPaidByOwner(ctx context.Context, ownerID string) ([]*domain.Booking, error)
}
