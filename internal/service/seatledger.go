package service

import (
	"context"
	"errors"
	"log"

	"highwaylink/internal/domain"
	"highwaylink/internal/repository"
)

// SeatLedger is the single source of truth for seat arithmetic. Every
// seat mutation passes through it so concurrent approvals on the same
// ride cannot overbook.
//
// Atomicity comes from the repository: bare reserve and release are
// conditional single-statement updates, and the paired booking-plus-seat
// moves run in one transaction. A reserve that would overdraw and a
// release that would overflow both fail with no side effect.
type SeatLedger struct {
	rideRepo    repository.RideRepository
	bookingRepo repository.BookingRepository
}

// NewSeatLedger creates a new SeatLedger.
func NewSeatLedger(rideRepo repository.RideRepository, bookingRepo repository.BookingRepository) *SeatLedger {
	return &SeatLedger{
		rideRepo:    rideRepo,
		bookingRepo: bookingRepo,
	}
}

// Reserve atomically takes seats from the ride. Returns ErrSeatsExhausted
// when fewer than the requested seats remain; nothing is written in that
// case.
func (l *SeatLedger) Reserve(ctx context.Context, rideID string, seats int) error {
	if seats < 1 {
		return ErrInvalidSeats
	}

	ok, err := l.rideRepo.ReserveSeats(ctx, rideID, seats)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	// Distinguish scarcity from a missing ride.
	if _, err := l.rideRepo.GetByID(ctx, rideID); err != nil {
		return err
	}
	return ErrSeatsExhausted
}

// Release returns seats to the ride. A release that would push
// seats_available past total_seats means the ledger and the bookings
// disagree; it is refused and reported as corruption, never clamped.
func (l *SeatLedger) Release(ctx context.Context, rideID string, seats int) error {
	if seats < 1 {
		return ErrInvalidSeats
	}

	ok, err := l.rideRepo.ReleaseSeats(ctx, rideID, seats)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	if _, err := l.rideRepo.GetByID(ctx, rideID); err != nil {
		return err
	}

	log.Printf("SEAT INVARIANT VIOLATION: release of %d seats on ride %s would exceed total seats", seats, rideID)
	return ErrSeatInvariant
}

// ReserveOnApprove approves a pending booking and takes its seats in one
// transaction, so a crash between the two halves cannot leak seats.
// Returns ErrSeatsExhausted, with the booking still PENDING and nothing
// written, when too few seats remain; ErrAlreadyTerminal when the
// booking left PENDING concurrently.
func (l *SeatLedger) ReserveOnApprove(ctx context.Context, rideID string, booking *domain.Booking) error {
	if booking.SeatsRequested < 1 {
		return ErrInvalidSeats
	}

	ok, err := l.bookingRepo.ApproveWithReservation(ctx, booking.ID, rideID, booking.SeatsRequested)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	// The write is refused either because the booking left PENDING
	// concurrently or because too few seats remain.
	current, err := l.bookingRepo.GetByID(ctx, booking.ID)
	if err != nil {
		return err
	}
	if current.Status != domain.BookingStatusPending {
		return ErrAlreadyTerminal
	}
	return ErrSeatsExhausted
}

// ReleaseOnFinish terminates an approved booking and returns its seats in
// one transaction, so a crash between the two halves cannot leak seats.
// The caller has already verified the booking is APPROVED.
func (l *SeatLedger) ReleaseOnFinish(ctx context.Context, rideID string, booking *domain.Booking, to domain.BookingStatus) error {
	if !to.IsTerminal() {
		return errors.New("finish target must be a terminal status")
	}

	ok, err := l.bookingRepo.FinishWithRelease(ctx, booking.ID, rideID, booking.SeatsRequested, to)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	// The write is refused either because the booking left APPROVED
	// concurrently or because the release would overflow.
	current, err := l.bookingRepo.GetByID(ctx, booking.ID)
	if err != nil {
		return err
	}
	if current.Status != domain.BookingStatusApproved {
		return ErrAlreadyTerminal
	}

	log.Printf("SEAT INVARIANT VIOLATION: releasing booking %s (%d seats) on ride %s would exceed total seats", booking.ID, booking.SeatsRequested, rideID)
	return ErrSeatInvariant
}

// Verify recomputes the seat invariant for a ride from its approved
// bookings. Returns ErrSeatInvariant on any mismatch.
func (l *SeatLedger) Verify(ctx context.Context, rideID string) error {
	ride, err := l.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return err
	}

	approved, err := l.bookingRepo.ApprovedSeatTotal(ctx, rideID)
	if err != nil {
		return err
	}

	if ride.SeatsAvailable < 0 || ride.SeatsAvailable > ride.TotalSeats ||
		ride.SeatsAvailable != ride.TotalSeats-approved {
		log.Printf("SEAT INVARIANT VIOLATION: ride %s total=%d available=%d approved=%d", rideID, ride.TotalSeats, ride.SeatsAvailable, approved)
		return ErrSeatInvariant
	}

	return nil
}
