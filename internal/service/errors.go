package service

import "errors"

var (
	// ErrDuplicateRequest is returned when a passenger already has a
	// pending or approved booking on the ride.
	ErrDuplicateRequest = errors.New("already requested or booked on this ride")

	// ErrRideNotBookable is returned when the ride cannot accept booking
	// requests (inactive, not scheduled, or the request cannot ever fit).
	ErrRideNotBookable = errors.New("ride is not accepting bookings")

	// ErrSeatsExhausted is returned when an approval asks for more seats
	// than remain. It reflects real scarcity and must not be retried
	// blindly.
	ErrSeatsExhausted = errors.New("not enough seats available")

	// ErrAlreadyTerminal is returned when a booking transition targets a
	// booking that already reached a terminal status. Callers treat it as
	// an idempotent outcome, not a retryable failure.
	ErrAlreadyTerminal = errors.New("booking already in a terminal status")

	// ErrOutsideStartWindow is returned when a ride start is attempted
	// before the scheduled time or more than 15 minutes after it.
	ErrOutsideStartWindow = errors.New("ride can only start within 15 minutes of its scheduled time")

	// ErrOwnerAlreadyDriving is returned when an owner tries to start a
	// second ride while one is in progress.
	ErrOwnerAlreadyDriving = errors.New("owner already has a ride in progress")

	// ErrRequiresMediatedCancellation is returned when canceling a ride
	// that has approved passengers; such cancellations go through an
	// inquiry instead of being resolved by the engine.
	ErrRequiresMediatedCancellation = errors.New("ride has committed passengers; cancellation requires an inquiry")

	// ErrRideNotInProgress is returned when ending a ride that is not
	// in progress.
	ErrRideNotInProgress = errors.New("ride is not in progress")

	// ErrRideNotCancelable is returned when canceling a ride that is in
	// progress, completed, or already canceled.
	ErrRideNotCancelable = errors.New("ride cannot be canceled in current state")

	// ErrRideAlreadyStarted is returned when a booking change is attempted
	// after the ride left SCHEDULED. Seat membership is frozen at start.
	ErrRideAlreadyStarted = errors.New("ride has already started")

	// ErrRideLocked is returned when another approval or start attempt
	// holds the ride or owner lock.
	ErrRideLocked = errors.New("ride is busy, try again")

	// ErrNoApprovedPassengers is returned when starting a ride with no
	// approved bookings.
	ErrNoApprovedPassengers = errors.New("ride has no approved passengers")

	// ErrUnauthorized is returned when the caller's identity or role does
	// not permit the operation.
	ErrUnauthorized = errors.New("caller is not allowed to perform this operation")

	// ErrSeatInvariant is returned when seat accounting would go negative
	// or exceed total seats. It indicates data corruption, never a user
	// mistake, and is refused rather than clamped.
	ErrSeatInvariant = errors.New("seat accounting invariant violated")

	// ErrPaymentMethodNotSet is returned when settling a booking whose
	// payment method does not match the settlement path.
	ErrPaymentMethodNotSet = errors.New("payment method does not match settlement")

	// ErrBookingNotApproved is returned when a payment operation targets
	// a booking that is not APPROVED.
	ErrBookingNotApproved = errors.New("booking is not approved")

	// ErrInvalidRideID is returned when a ride ID is empty.
	ErrInvalidRideID = errors.New("invalid ride id")

	// ErrInvalidBookingID is returned when a booking ID is empty.
	ErrInvalidBookingID = errors.New("invalid booking id")

	// ErrInvalidUserID is returned when a caller or passenger ID is empty.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrInvalidSeats is returned when a seat count is less than one.
	ErrInvalidSeats = errors.New("must request at least 1 seat")

	// ErrInvalidRide is returned when ride creation input is malformed.
	ErrInvalidRide = errors.New("invalid ride details")

	// ErrInvalidPaymentMethod is returned when a payment method is not
	// CASH or CARD.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")

	// ErrInvalidInquiry is returned when inquiry input is malformed.
	ErrInvalidInquiry = errors.New("invalid inquiry details")

	// ErrInquiryResolved is returned when resolving an inquiry twice.
	ErrInquiryResolved = errors.New("inquiry already resolved")
)
