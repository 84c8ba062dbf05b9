package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"highwaylink/internal/domain"
	redisClient "highwaylink/internal/redis"
	"highwaylink/internal/repository"
)

// startWindow is how long after the scheduled time a ride may still be
// started.
const startWindow = 15 * time.Minute

// startLockTTL bounds the per-owner lock held while checking that the
// owner has no other ride in progress.
const startLockTTL = 5 * time.Second

// CreateRideInput carries the fields for publishing a ride.
type CreateRideInput struct {
	Origin       string
	Destination  string
	StartTime    time.Time
	TotalSeats   int
	PricePerSeat float64
	Schedule     domain.Schedule
}

// UpdateRideInput carries the fields an owner may edit while the ride is
// still SCHEDULED.
type UpdateRideInput struct {
	Origin       string
	Destination  string
	StartTime    time.Time
	TotalSeats   int
	PricePerSeat float64
	Schedule     domain.Schedule
}

// PassengerRide pairs a booking with the ride it is on, for the
// passenger's trips view.
type PassengerRide struct {
	Ride    *domain.Ride
	Booking *domain.Booking
}

// RideLifecycleManager owns the ride state machine: publish, edit, start,
// end, cancel. Booking transitions live in the BookingCoordinator.
type RideLifecycleManager struct {
	rideRepo     repository.RideRepository
	bookingRepo  repository.BookingRepository
	ledger       *SeatLedger
	lockStore    redisClient.LockStoreInterface
	cacheStore   redisClient.CacheStoreInterface
	notification *NotificationService
}

// NewRideLifecycleManager creates a new RideLifecycleManager.
func NewRideLifecycleManager(
	rideRepo repository.RideRepository,
	bookingRepo repository.BookingRepository,
	ledger *SeatLedger,
	lockStore redisClient.LockStoreInterface,
	cacheStore redisClient.CacheStoreInterface,
	notification *NotificationService,
) *RideLifecycleManager {
	return &RideLifecycleManager{
		rideRepo:     rideRepo,
		bookingRepo:  bookingRepo,
		ledger:       ledger,
		lockStore:    lockStore,
		cacheStore:   cacheStore,
		notification: notification,
	}
}

// Create publishes a new ride with all seats available.
func (m *RideLifecycleManager) Create(ctx context.Context, caller domain.Identity, input CreateRideInput) (*domain.Ride, error) {
	if caller.UserID == "" {
		return nil, ErrInvalidUserID
	}
	if input.Origin == "" || input.Destination == "" || input.StartTime.IsZero() {
		return nil, ErrInvalidRide
	}
	if input.TotalSeats < 1 || input.PricePerSeat < 0 {
		return nil, ErrInvalidRide
	}
	if input.StartTime.Before(time.Now()) {
		return nil, ErrInvalidRide
	}

	schedule := input.Schedule
	if schedule == "" {
		schedule = domain.ScheduleOneTime
	}
	switch schedule {
	case domain.ScheduleOneTime, domain.ScheduleDaily, domain.ScheduleWeekly:
	default:
		return nil, ErrInvalidRide
	}

	ride := &domain.Ride{
		ID:             uuid.New().String(),
		OwnerID:        caller.UserID,
		Origin:         input.Origin,
		Destination:    input.Destination,
		StartTime:      input.StartTime,
		TotalSeats:     input.TotalSeats,
		SeatsAvailable: input.TotalSeats,
		PricePerSeat:   input.PricePerSeat,
		Schedule:       schedule,
		Status:         domain.RideStatusScheduled,
		Active:         true,
		CreatedAt:      time.Now(),
	}

	if err := m.rideRepo.Create(ctx, ride); err != nil {
		return nil, err
	}

	return ride, nil
}

// GetByID retrieves a ride, serving from the snapshot cache when fresh.
func (m *RideLifecycleManager) GetByID(ctx context.Context, rideID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	if cached, err := m.cacheStore.GetRide(ctx, rideID); err == nil && cached != nil {
		if ride, ok := rideFromCache(cached); ok {
			return ride, nil
		}
	}

	ride, err := m.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	m.cacheStore.SetRide(ctx, rideToCache(ride))

	return ride, nil
}

// Search lists rides matching the filter.
func (m *RideLifecycleManager) Search(ctx context.Context, filter repository.RideFilter) ([]*domain.Ride, error) {
	return m.rideRepo.List(ctx, filter)
}

// MyOffers lists the rides published by the caller.
func (m *RideLifecycleManager) MyOffers(ctx context.Context, caller domain.Identity) ([]*domain.Ride, error) {
	if caller.UserID == "" {
		return nil, ErrInvalidUserID
	}
	return m.rideRepo.ListByOwner(ctx, caller.UserID)
}

// MyTrips lists the caller's bookings joined with their rides.
func (m *RideLifecycleManager) MyTrips(ctx context.Context, caller domain.Identity) ([]*PassengerRide, error) {
	if caller.UserID == "" {
		return nil, ErrInvalidUserID
	}

	bookings, err := m.bookingRepo.ListByPassenger(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	trips := make([]*PassengerRide, 0, len(bookings))
	for _, booking := range bookings {
		ride, err := m.rideRepo.GetByID(ctx, booking.RideID)
		if err != nil {
			return nil, err
		}
		trips = append(trips, &PassengerRide{Ride: ride, Booking: booking})
	}

	return trips, nil
}

// Update edits a SCHEDULED ride. Shrinking total seats below the seats
// already committed to approved passengers is refused.
func (m *RideLifecycleManager) Update(ctx context.Context, rideID string, caller domain.Identity, input UpdateRideInput) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if input.Origin == "" || input.Destination == "" || input.StartTime.IsZero() {
		return nil, ErrInvalidRide
	}
	if input.TotalSeats < 1 || input.PricePerSeat < 0 {
		return nil, ErrInvalidRide
	}

	ride, err := m.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if err := m.authorizeOwner(ride, caller); err != nil {
		return nil, err
	}
	if !ride.Active || ride.Status != domain.RideStatusScheduled {
		return nil, ErrRideAlreadyStarted
	}

	approved, err := m.bookingRepo.ApprovedSeatTotal(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if input.TotalSeats < approved {
		return nil, ErrInvalidRide
	}

	ride.Origin = input.Origin
	ride.Destination = input.Destination
	ride.StartTime = input.StartTime
	ride.TotalSeats = input.TotalSeats
	ride.SeatsAvailable = input.TotalSeats - approved
	ride.PricePerSeat = input.PricePerSeat
	if input.Schedule != "" {
		ride.Schedule = input.Schedule
	}

	if err := m.rideRepo.Update(ctx, ride); err != nil {
		return nil, err
	}

	m.cacheStore.InvalidateRide(ctx, rideID)

	return ride, nil
}

// Start moves a SCHEDULED ride to IN_PROGRESS. Allowed only within the
// start window, only with at least one approved passenger, and only if
// the owner has no other ride in progress.
//
// Starting an already started ride returns it unchanged.
func (m *RideLifecycleManager) Start(ctx context.Context, rideID string, caller domain.Identity) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	ride, err := m.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.OwnerID != caller.UserID {
		return nil, ErrUnauthorized
	}

	if ride.Status == domain.RideStatusInProgress {
		return ride, nil
	}
	if !ride.Active || ride.Status == domain.RideStatusCompleted {
		return nil, ErrAlreadyTerminal
	}

	now := time.Now()
	if now.Before(ride.StartTime) || now.After(ride.StartTime.Add(startWindow)) {
		return nil, ErrOutsideStartWindow
	}

	acquired, err := m.lockStore.AcquireOwnerLock(ctx, ride.OwnerID, startLockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrRideLocked
	}
	defer m.lockStore.ReleaseOwnerLock(ctx, ride.OwnerID)

	driving, err := m.rideRepo.HasStatusByOwner(ctx, ride.OwnerID, domain.RideStatusInProgress)
	if err != nil {
		return nil, err
	}
	if driving {
		return nil, ErrOwnerAlreadyDriving
	}

	approved, err := m.bookingRepo.CountApproved(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if approved == 0 {
		return nil, ErrNoApprovedPassengers
	}

	ok, err := m.rideRepo.TransitionStatus(ctx, rideID, domain.RideStatusScheduled, domain.RideStatusInProgress)
	if err != nil {
		return nil, err
	}
	if !ok {
		current, err := m.rideRepo.GetByID(ctx, rideID)
		if err != nil {
			return nil, err
		}
		if current.Status == domain.RideStatusInProgress {
			return current, nil
		}
		return nil, ErrAlreadyTerminal
	}

	m.cacheStore.InvalidateRide(ctx, rideID)

	started, err := m.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if m.notification != nil {
		m.notification.NotifyRideStarted(ctx, started, m.approvedPassengerIDs(ctx, rideID))
	}

	return started, nil
}

// End moves an IN_PROGRESS ride to COMPLETED and deactivates it. Ending
// an already completed ride returns it unchanged.
func (m *RideLifecycleManager) End(ctx context.Context, rideID string, caller domain.Identity) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	ride, err := m.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if err := m.authorizeOwner(ride, caller); err != nil {
		return nil, err
	}

	if ride.Status == domain.RideStatusCompleted {
		return ride, nil
	}

	ok, err := m.rideRepo.Complete(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if !ok {
		current, err := m.rideRepo.GetByID(ctx, rideID)
		if err != nil {
			return nil, err
		}
		if current.Status == domain.RideStatusCompleted {
			return current, nil
		}
		return nil, ErrRideNotInProgress
	}

	m.cacheStore.InvalidateRide(ctx, rideID)

	ended, err := m.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if m.notification != nil {
		m.notification.NotifyRideEnded(ctx, ended, m.approvedPassengerIDs(ctx, rideID))
	}

	return ended, nil
}

// Cancel withdraws a SCHEDULED ride. An owner can cancel directly only
// while no passengers are committed; once approvals exist the owner is
// routed to an inquiry, and an admin resolving that inquiry cancels the
// ride here, releasing every approved booking first.
//
// Canceling an already canceled ride returns it unchanged.
func (m *RideLifecycleManager) Cancel(ctx context.Context, rideID string, caller domain.Identity) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	ride, err := m.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if err := m.authorizeOwner(ride, caller); err != nil {
		return nil, err
	}

	// A completed ride is terminal, not canceled, even though it is also
	// inactive.
	if ride.Status != domain.RideStatusScheduled {
		return nil, ErrRideNotCancelable
	}
	if !ride.Active {
		return ride, nil
	}

	approved, err := m.bookingRepo.CountApproved(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if approved > 0 {
		if caller.Role != domain.RoleAdmin {
			return nil, ErrRequiresMediatedCancellation
		}
		if err := m.releaseApproved(ctx, ride); err != nil {
			return nil, err
		}
	}

	ok, err := m.rideRepo.Deactivate(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost to a concurrent cancel; the ride is already inactive.
		return m.rideRepo.GetByID(ctx, rideID)
	}

	m.cacheStore.InvalidateRide(ctx, rideID)

	canceled, err := m.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if m.notification != nil {
		m.notification.NotifyRideCanceled(ctx, canceled, m.canceledPassengerIDs(ctx, rideID))
	}

	return canceled, nil
}

// releaseApproved cancels every approved booking on the ride through the
// ledger, so each release pairs with its booking's terminal write.
func (m *RideLifecycleManager) releaseApproved(ctx context.Context, ride *domain.Ride) error {
	bookings, err := m.bookingRepo.ListByRide(ctx, ride.ID)
	if err != nil {
		return err
	}

	for _, booking := range bookings {
		if booking.Status != domain.BookingStatusApproved {
			continue
		}
		if err := m.ledger.ReleaseOnFinish(ctx, ride.ID, booking, domain.BookingStatusCanceled); err != nil {
			if err == ErrAlreadyTerminal {
				continue
			}
			return err
		}
	}

	return nil
}

func (m *RideLifecycleManager) approvedPassengerIDs(ctx context.Context, rideID string) []string {
	bookings, err := m.bookingRepo.ListByRide(ctx, rideID)
	if err != nil {
		return nil
	}

	var ids []string
	for _, booking := range bookings {
		if booking.Status == domain.BookingStatusApproved {
			ids = append(ids, booking.PassengerID)
		}
	}
	return ids
}

// canceledPassengerIDs covers the admin force-cancel path, where approved
// bookings have just been moved to CANCELED.
func (m *RideLifecycleManager) canceledPassengerIDs(ctx context.Context, rideID string) []string {
	bookings, err := m.bookingRepo.ListByRide(ctx, rideID)
	if err != nil {
		return nil
	}

	var ids []string
	for _, booking := range bookings {
		if booking.Status == domain.BookingStatusApproved || booking.Status == domain.BookingStatusCanceled {
			ids = append(ids, booking.PassengerID)
		}
	}
	return ids
}

func (m *RideLifecycleManager) authorizeOwner(ride *domain.Ride, caller domain.Identity) error {
	if ride.OwnerID != caller.UserID && caller.Role != domain.RoleAdmin {
		return ErrUnauthorized
	}
	return nil
}

func rideToCache(ride *domain.Ride) *redisClient.CachedRide {
	return &redisClient.CachedRide{
		ID:             ride.ID,
		OwnerID:        ride.OwnerID,
		Origin:         ride.Origin,
		Destination:    ride.Destination,
		StartTime:      ride.StartTime.Format(time.RFC3339Nano),
		TotalSeats:     ride.TotalSeats,
		SeatsAvailable: ride.SeatsAvailable,
		PricePerSeat:   ride.PricePerSeat,
		Schedule:       string(ride.Schedule),
		Status:         string(ride.Status),
		Active:         ride.Active,
	}
}

func rideFromCache(cached *redisClient.CachedRide) (*domain.Ride, bool) {
	startTime, err := time.Parse(time.RFC3339Nano, cached.StartTime)
	if err != nil {
		return nil, false
	}

	return &domain.Ride{
		ID:             cached.ID,
		OwnerID:        cached.OwnerID,
		Origin:         cached.Origin,
		Destination:    cached.Destination,
		StartTime:      startTime,
		TotalSeats:     cached.TotalSeats,
		SeatsAvailable: cached.SeatsAvailable,
		PricePerSeat:   cached.PricePerSeat,
		Schedule:       domain.Schedule(cached.Schedule),
		Status:         domain.RideStatus(cached.Status),
		Active:         cached.Active,
	}, true
}
