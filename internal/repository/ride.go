package repository

import (
	"context"

	"highwaylink/internal/domain"
)

// RideFilter narrows ride listings. Zero values match everything.
type RideFilter struct {
	Origin        string // substring match, case-insensitive
	Destination   string // substring match, case-insensitive
	Date          string // YYYY-MM-DD, matches the start time's date
	OnlyAvailable bool   // active rides with seats remaining
}

// RideRepository defines the persistence operations for rides.
//
// The seat and status mutators are conditional single-statement updates:
// they report ok=false instead of writing when the guard fails, which is
// what makes concurrent approvals safe without a coarse lock.
type RideRepository interface {
	// Create persists a new ride.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// List retrieves rides matching the filter, newest first.
	List(ctx context.Context, filter RideFilter) ([]*domain.Ride, error)

	// ListByOwner retrieves all rides published by an owner.
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Ride, error)

	// Update updates a ride's mutable fields (origin, destination, start
	// time, seats, price, schedule).
	Update(ctx context.Context, ride *domain.Ride) error

	// ReserveSeats atomically decrements seats_available by seats if at
	// least that many remain. ok=false means insufficient seats; no write
	// happened.
	ReserveSeats(ctx context.Context, id string, seats int) (bool, error)

	// ReleaseSeats atomically increments seats_available by seats if the
	// result does not exceed total_seats. ok=false on an existing ride
	// signals a seat accounting violation; no write happened.
	ReleaseSeats(ctx context.Context, id string, seats int) (bool, error)

	// TransitionStatus moves a ride from one status to another only if it
	// currently holds the expected status.
	TransitionStatus(ctx context.Context, id string, from, to domain.RideStatus) (bool, error)

	// Complete marks an in-progress ride COMPLETED and inactive.
	Complete(ctx context.Context, id string) (bool, error)

	// Deactivate soft-deletes an active ride. ok=false if already inactive.
	Deactivate(ctx context.Context, id string) (bool, error)

	// HasStatusByOwner reports whether the owner has any ride in the given
	// status.
	HasStatusByOwner(ctx context.Context, ownerID string, status domain.RideStatus) (bool, error)
}
