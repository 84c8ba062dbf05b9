package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"highwaylink/internal/domain"
	redisClient "highwaylink/internal/redis"
	"highwaylink/internal/repository"
)

// bookingLockTTL bounds how long an approval or cancellation can hold the
// per-ride lock; expiry covers a crashed holder.
const bookingLockTTL = 5 * time.Second

// BookingCoordinator owns the booking lifecycle. It is the only caller of
// the seat ledger, so every seat mutation is tied to exactly one booking
// transition.
type BookingCoordinator struct {
	bookingRepo  repository.BookingRepository
	rideRepo     repository.RideRepository
	ledger       *SeatLedger
	lockStore    redisClient.LockStoreInterface
	cacheStore   redisClient.CacheStoreInterface
	notification *NotificationService
}

// NewBookingCoordinator creates a new BookingCoordinator.
func NewBookingCoordinator(
	bookingRepo repository.BookingRepository,
	rideRepo repository.RideRepository,
	ledger *SeatLedger,
	lockStore redisClient.LockStoreInterface,
	cacheStore redisClient.CacheStoreInterface,
	notification *NotificationService,
) *BookingCoordinator {
	return &BookingCoordinator{
		bookingRepo:  bookingRepo,
		rideRepo:     rideRepo,
		ledger:       ledger,
		lockStore:    lockStore,
		cacheStore:   cacheStore,
		notification: notification,
	}
}

// Request files a seat request on a ride. The request takes no seats;
// seats move only when the owner approves.
func (c *BookingCoordinator) Request(ctx context.Context, rideID string, passenger domain.Identity, seats int) (*domain.Booking, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if passenger.UserID == "" {
		return nil, ErrInvalidUserID
	}
	if seats < 1 {
		return nil, ErrInvalidSeats
	}

	ride, err := c.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if ride.OwnerID == passenger.UserID {
		return nil, ErrUnauthorized
	}

	// A request that could never fit is refused up front; a request that
	// merely exceeds the current remainder stays PENDING, since seats may
	// free up before the owner decides.
	if !ride.Active || ride.Status != domain.RideStatusScheduled || seats > ride.TotalSeats {
		return nil, ErrRideNotBookable
	}

	existing, err := c.bookingRepo.GetActiveByRideAndPassenger(ctx, rideID, passenger.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateRequest
	}

	booking := &domain.Booking{
		ID:             uuid.New().String(),
		RideID:         rideID,
		PassengerID:    passenger.UserID,
		SeatsRequested: seats,
		Status:         domain.BookingStatusPending,
		PaymentMethod:  domain.PaymentMethodNone,
		PaymentStatus:  domain.PaymentStatusNone,
		RequestedAt:    time.Now(),
	}

	if err := c.bookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}

	if c.notification != nil {
		c.notification.NotifyBookingRequested(ctx, ride, booking)
	}

	return booking, nil
}

// Approve commits seats to a pending booking. Approvals on the same ride
// are serialized by a per-ride lock; the approval and the seat reserve
// commit in one transaction gated on seat availability, so even a lost
// lock cannot overbook.
//
// Approving an already APPROVED booking returns it unchanged.
func (c *BookingCoordinator) Approve(ctx context.Context, bookingID string, caller domain.Identity) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	booking, err := c.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	ride, err := c.rideRepo.GetByID(ctx, booking.RideID)
	if err != nil {
		return nil, err
	}
	if err := c.authorizeOwner(ride, caller); err != nil {
		return nil, err
	}

	if booking.Status == domain.BookingStatusApproved {
		return booking, nil
	}
	if booking.Status.IsTerminal() {
		return nil, ErrAlreadyTerminal
	}

	if !ride.Active || ride.Status != domain.RideStatusScheduled {
		return nil, ErrRideNotBookable
	}

	acquired, err := c.lockStore.AcquireRideLock(ctx, ride.ID, bookingLockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrRideLocked
	}
	defer c.lockStore.ReleaseRideLock(ctx, ride.ID)

	if err := c.ledger.ReserveOnApprove(ctx, ride.ID, booking); err != nil {
		if err == ErrAlreadyTerminal {
			// The booking left PENDING between our read and the write.
			current, rerr := c.bookingRepo.GetByID(ctx, bookingID)
			if rerr != nil {
				return nil, rerr
			}
			if current.Status == domain.BookingStatusApproved {
				return current, nil
			}
		}
		return nil, err
	}

	c.cacheStore.InvalidateRide(ctx, ride.ID)

	approved, err := c.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if c.notification != nil {
		c.notification.NotifyBookingDecision(ctx, ride, approved, true)
	}

	return approved, nil
}

// Reject declines a pending booking. No seats are held by a pending
// booking, so no ledger call is involved.
func (c *BookingCoordinator) Reject(ctx context.Context, bookingID string, caller domain.Identity) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	booking, err := c.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	ride, err := c.rideRepo.GetByID(ctx, booking.RideID)
	if err != nil {
		return nil, err
	}
	if err := c.authorizeOwner(ride, caller); err != nil {
		return nil, err
	}

	ok, err := c.bookingRepo.UpdateStatus(ctx, bookingID, domain.BookingStatusPending, domain.BookingStatusRejected)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAlreadyTerminal
	}

	rejected, err := c.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if c.notification != nil {
		c.notification.NotifyBookingDecision(ctx, ride, rejected, false)
	}

	return rejected, nil
}

// Cancel withdraws the passenger's own booking. Canceling a PENDING
// booking is a plain status flip; canceling an APPROVED one also returns
// its seats, in one transaction.
func (c *BookingCoordinator) Cancel(ctx context.Context, bookingID string, caller domain.Identity) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	booking, err := c.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.PassengerID != caller.UserID && caller.Role != domain.RoleAdmin {
		return nil, ErrUnauthorized
	}

	if booking.Status.IsTerminal() {
		return nil, ErrAlreadyTerminal
	}

	ride, err := c.rideRepo.GetByID(ctx, booking.RideID)
	if err != nil {
		return nil, err
	}

	switch booking.Status {
	case domain.BookingStatusPending:
		ok, err := c.bookingRepo.UpdateStatus(ctx, bookingID, domain.BookingStatusPending, domain.BookingStatusCanceled)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrAlreadyTerminal
		}

	case domain.BookingStatusApproved:
		// Seat membership is frozen once the ride leaves SCHEDULED.
		if ride.Status != domain.RideStatusScheduled {
			return nil, ErrRideAlreadyStarted
		}

		if err := c.finishApproved(ctx, ride, booking, domain.BookingStatusCanceled); err != nil {
			return nil, err
		}

	default:
		return nil, ErrAlreadyTerminal
	}

	canceled, err := c.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if c.notification != nil {
		c.notification.NotifyBookingCanceled(ctx, ride, canceled)
	}

	return canceled, nil
}

// Remove evicts an approved passenger from the ride. Owner only, and only
// while the ride is still SCHEDULED.
func (c *BookingCoordinator) Remove(ctx context.Context, bookingID string, caller domain.Identity) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	booking, err := c.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	ride, err := c.rideRepo.GetByID(ctx, booking.RideID)
	if err != nil {
		return nil, err
	}
	if err := c.authorizeOwner(ride, caller); err != nil {
		return nil, err
	}

	if booking.Status.IsTerminal() {
		return nil, ErrAlreadyTerminal
	}
	if booking.Status != domain.BookingStatusApproved {
		return nil, ErrBookingNotApproved
	}
	if ride.Status != domain.RideStatusScheduled {
		return nil, ErrRideAlreadyStarted
	}

	if err := c.finishApproved(ctx, ride, booking, domain.BookingStatusRemoved); err != nil {
		return nil, err
	}

	removed, err := c.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if c.notification != nil {
		c.notification.NotifyPassengerRemoved(ctx, ride, removed)
	}

	return removed, nil
}

// GetByID retrieves a booking visible to the caller: the passenger, the
// ride owner, or an admin.
func (c *BookingCoordinator) GetByID(ctx context.Context, bookingID string, caller domain.Identity) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	booking, err := c.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.PassengerID == caller.UserID || caller.Role == domain.RoleAdmin {
		return booking, nil
	}

	ride, err := c.rideRepo.GetByID(ctx, booking.RideID)
	if err != nil {
		return nil, err
	}
	if ride.OwnerID != caller.UserID {
		return nil, ErrUnauthorized
	}

	return booking, nil
}

// ListForRide retrieves every booking on a ride for its owner or an admin.
func (c *BookingCoordinator) ListForRide(ctx context.Context, rideID string, caller domain.Identity) ([]*domain.Booking, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	ride, err := c.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if err := c.authorizeOwner(ride, caller); err != nil {
		return nil, err
	}

	return c.bookingRepo.ListByRide(ctx, rideID)
}

// ListMine retrieves the caller's own bookings.
func (c *BookingCoordinator) ListMine(ctx context.Context, caller domain.Identity) ([]*domain.Booking, error) {
	if caller.UserID == "" {
		return nil, ErrInvalidUserID
	}
	return c.bookingRepo.ListByPassenger(ctx, caller.UserID)
}

// finishApproved terminates an approved booking and frees its seats under
// the per-ride lock.
func (c *BookingCoordinator) finishApproved(ctx context.Context, ride *domain.Ride, booking *domain.Booking, to domain.BookingStatus) error {
	acquired, err := c.lockStore.AcquireRideLock(ctx, ride.ID, bookingLockTTL)
	if err != nil {
		return err
	}
	if !acquired {
		return ErrRideLocked
	}
	defer c.lockStore.ReleaseRideLock(ctx, ride.ID)

	if err := c.ledger.ReleaseOnFinish(ctx, ride.ID, booking, to); err != nil {
		return err
	}

	c.cacheStore.InvalidateRide(ctx, ride.ID)
	return nil
}

func (c *BookingCoordinator) authorizeOwner(ride *domain.Ride, caller domain.Identity) error {
	if ride.OwnerID != caller.UserID && caller.Role != domain.RoleAdmin {
		return ErrUnauthorized
	}
	return nil
}
