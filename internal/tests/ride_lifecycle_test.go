package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"highwaylink/internal/domain"
	"highwaylink/internal/repository"
	"highwaylink/internal/service"
)

// ──────────────────────────────────────────────
// RIDE LIFECYCLE
// ──────────────────────────────────────────────

type lifecycleFixture struct {
	rideRepo    *MockRideRepository
	bookingRepo *MockBookingRepository
	lockStore   *MockLockStore
	cacheStore  *MockCacheStore
	ledger      *service.SeatLedger
	lifecycle   *service.RideLifecycleManager
}

func newLifecycleFixture() *lifecycleFixture {
	rideRepo := NewMockRideRepository()
	bookingRepo := NewMockBookingRepository(rideRepo)
	lockStore := NewMockLockStore()
	cacheStore := NewMockCacheStore()
	ledger := service.NewSeatLedger(rideRepo, bookingRepo)

	return &lifecycleFixture{
		rideRepo:    rideRepo,
		bookingRepo: bookingRepo,
		lockStore:   lockStore,
		cacheStore:  cacheStore,
		ledger:      ledger,
		lifecycle:   service.NewRideLifecycleManager(rideRepo, bookingRepo, ledger, lockStore, cacheStore, service.NewNotificationService()),
	}
}

// addStartableRide seeds a ride inside its start window with one approved
// passenger.
func (f *lifecycleFixture) addStartableRide(rideID, ownerID string) {
	ride := newScheduledRide(rideID, ownerID, 4, 3)
	ride.StartTime = time.Now().Add(-5 * time.Minute)
	f.rideRepo.AddRide(ride)
	f.bookingRepo.AddBooking(&domain.Booking{
		ID:             rideID + "-booking",
		RideID:         rideID,
		PassengerID:    "passenger-1",
		SeatsRequested: 1,
		Status:         domain.BookingStatusApproved,
	})
}

func TestRide_CreateStartsFullyAvailable(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()

	ride, err := f.lifecycle.Create(context.Background(), asUser("owner-1"), service.CreateRideInput{
		Origin:       "Seoul",
		Destination:  "Busan",
		StartTime:    time.Now().Add(2 * time.Hour),
		TotalSeats:   4,
		PricePerSeat: 25.0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ride.SeatsAvailable != 4 {
		t.Errorf("expected 4 seats available, got %d", ride.SeatsAvailable)
	}
	if ride.Status != domain.RideStatusScheduled {
		t.Errorf("expected SCHEDULED, got %s", ride.Status)
	}
	if !ride.Active {
		t.Error("expected ride to be active")
	}
	if ride.Schedule != domain.ScheduleOneTime {
		t.Errorf("expected default ONETIME schedule, got %s", ride.Schedule)
	}
}

func TestRide_CreateInThePast(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()

	_, err := f.lifecycle.Create(context.Background(), asUser("owner-1"), service.CreateRideInput{
		Origin:       "Seoul",
		Destination:  "Busan",
		StartTime:    time.Now().Add(-time.Hour),
		TotalSeats:   4,
		PricePerSeat: 25.0,
	})
	if !errors.Is(err, service.ErrInvalidRide) {
		t.Fatalf("expected ErrInvalidRide, got %v", err)
	}
}

func TestRide_StartWithinWindow(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.addStartableRide("ride-1", "owner-1")

	ride, err := f.lifecycle.Start(context.Background(), "ride-1", asUser("owner-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ride.Status != domain.RideStatusInProgress {
		t.Errorf("expected IN_PROGRESS, got %s", ride.Status)
	}
}

func TestRide_StartBeforeScheduledTime(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.addStartableRide("ride-1", "owner-1")
	ride := f.rideRepo.GetRide("ride-1")
	ride.StartTime = time.Now().Add(time.Hour)

	_, err := f.lifecycle.Start(context.Background(), "ride-1", asUser("owner-1"))
	if !errors.Is(err, service.ErrOutsideStartWindow) {
		t.Fatalf("expected ErrOutsideStartWindow, got %v", err)
	}
}

func TestRide_StartJustInsideWindow(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.addStartableRide("ride-1", "owner-1")
	ride := f.rideRepo.GetRide("ride-1")
	ride.StartTime = time.Now().Add(-15*time.Minute + 2*time.Second)

	if _, err := f.lifecycle.Start(context.Background(), "ride-1", asUser("owner-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRide_StartJustAfterWindow(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.addStartableRide("ride-1", "owner-1")
	ride := f.rideRepo.GetRide("ride-1")
	ride.StartTime = time.Now().Add(-15*time.Minute - 2*time.Second)

	_, err := f.lifecycle.Start(context.Background(), "ride-1", asUser("owner-1"))
	if !errors.Is(err, service.ErrOutsideStartWindow) {
		t.Fatalf("expected ErrOutsideStartWindow, got %v", err)
	}
}

func TestRide_StartWithoutApprovedPassengers(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	ride := newScheduledRide("ride-1", "owner-1", 4, 4)
	ride.StartTime = time.Now().Add(-5 * time.Minute)
	f.rideRepo.AddRide(ride)

	_, err := f.lifecycle.Start(context.Background(), "ride-1", asUser("owner-1"))
	if !errors.Is(err, service.ErrNoApprovedPassengers) {
		t.Fatalf("expected ErrNoApprovedPassengers, got %v", err)
	}
}

func TestRide_StartWhileAlreadyDriving(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	inProgress := newScheduledRide("ride-0", "owner-1", 4, 3)
	inProgress.Status = domain.RideStatusInProgress
	f.rideRepo.AddRide(inProgress)
	f.addStartableRide("ride-1", "owner-1")

	_, err := f.lifecycle.Start(context.Background(), "ride-1", asUser("owner-1"))
	if !errors.Is(err, service.ErrOwnerAlreadyDriving) {
		t.Fatalf("expected ErrOwnerAlreadyDriving, got %v", err)
	}
}

func TestRide_StartByNonOwner(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.addStartableRide("ride-1", "owner-1")

	_, err := f.lifecycle.Start(context.Background(), "ride-1", asUser("user-a"))
	if !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestRide_StartIdempotent(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.addStartableRide("ride-1", "owner-1")

	if _, err := f.lifecycle.Start(context.Background(), "ride-1", asUser("owner-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ride, err := f.lifecycle.Start(context.Background(), "ride-1", asUser("owner-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ride.Status != domain.RideStatusInProgress {
		t.Errorf("expected IN_PROGRESS, got %s", ride.Status)
	}
}

func TestRide_EndCompletesAndDeactivates(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	ride := newScheduledRide("ride-1", "owner-1", 4, 3)
	ride.Status = domain.RideStatusInProgress
	f.rideRepo.AddRide(ride)

	ended, err := f.lifecycle.End(context.Background(), "ride-1", asUser("owner-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ended.Status != domain.RideStatusCompleted {
		t.Errorf("expected COMPLETED, got %s", ended.Status)
	}
	if ended.Active {
		t.Error("expected ride to be inactive after completion")
	}
}

func TestRide_EndIdempotent(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	ride := newScheduledRide("ride-1", "owner-1", 4, 3)
	ride.Status = domain.RideStatusInProgress
	f.rideRepo.AddRide(ride)

	if _, err := f.lifecycle.End(context.Background(), "ride-1", asUser("owner-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ended, err := f.lifecycle.End(context.Background(), "ride-1", asUser("owner-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ended.Status != domain.RideStatusCompleted {
		t.Errorf("expected COMPLETED, got %s", ended.Status)
	}
}

func TestRide_EndBeforeStart(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.rideRepo.AddRide(newScheduledRide("ride-1", "owner-1", 4, 4))

	_, err := f.lifecycle.End(context.Background(), "ride-1", asUser("owner-1"))
	if !errors.Is(err, service.ErrRideNotInProgress) {
		t.Fatalf("expected ErrRideNotInProgress, got %v", err)
	}
}

func TestRide_CancelWithoutPassengers(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.rideRepo.AddRide(newScheduledRide("ride-1", "owner-1", 4, 4))

	ride, err := f.lifecycle.Cancel(context.Background(), "ride-1", asUser("owner-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ride.Active {
		t.Error("expected ride to be inactive")
	}

	// Second cancel is a no-op.
	again, err := f.lifecycle.Cancel(context.Background(), "ride-1", asUser("owner-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.Active {
		t.Error("expected ride to stay inactive")
	}
}

func TestRide_CancelWithApprovedRequiresInquiry(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.rideRepo.AddRide(newScheduledRide("ride-1", "owner-1", 4, 3))
	f.bookingRepo.AddBooking(&domain.Booking{
		ID:             "booking-1",
		RideID:         "ride-1",
		PassengerID:    "user-a",
		SeatsRequested: 1,
		Status:         domain.BookingStatusApproved,
	})

	_, err := f.lifecycle.Cancel(context.Background(), "ride-1", asUser("owner-1"))
	if !errors.Is(err, service.ErrRequiresMediatedCancellation) {
		t.Fatalf("expected ErrRequiresMediatedCancellation, got %v", err)
	}

	// Nothing changed on the refused cancel.
	if !f.rideRepo.GetRide("ride-1").Active {
		t.Error("expected ride to stay active")
	}
}

func TestRide_AdminCancelReleasesPassengers(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.rideRepo.AddRide(newScheduledRide("ride-1", "owner-1", 4, 2))
	f.bookingRepo.AddBooking(&domain.Booking{
		ID:             "booking-1",
		RideID:         "ride-1",
		PassengerID:    "user-a",
		SeatsRequested: 2,
		Status:         domain.BookingStatusApproved,
	})

	ride, err := f.lifecycle.Cancel(context.Background(), "ride-1", asAdmin("admin-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ride.Active {
		t.Error("expected ride to be inactive")
	}
	if got := f.bookingRepo.GetBooking("booking-1").Status; got != domain.BookingStatusCanceled {
		t.Errorf("expected booking CANCELED, got %s", got)
	}
	if got := f.rideRepo.GetRide("ride-1").SeatsAvailable; got != 4 {
		t.Errorf("expected 4 seats available, got %d", got)
	}
}

func TestRide_AdminCancelAfterPassengerCancelReleasesOnce(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.rideRepo.AddRide(newScheduledRide("ride-1", "owner-1", 4, 0))
	first := &domain.Booking{
		ID:             "booking-1",
		RideID:         "ride-1",
		PassengerID:    "user-a",
		SeatsRequested: 2,
		Status:         domain.BookingStatusApproved,
	}
	f.bookingRepo.AddBooking(first)
	f.bookingRepo.AddBooking(&domain.Booking{
		ID:             "booking-2",
		RideID:         "ride-1",
		PassengerID:    "user-b",
		SeatsRequested: 2,
		Status:         domain.BookingStatusApproved,
	})

	// The first passenger backs out before the admin resolves the ride.
	if err := f.ledger.ReleaseOnFinish(context.Background(), "ride-1", first, domain.BookingStatusCanceled); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := f.lifecycle.Cancel(context.Background(), "ride-1", asAdmin("admin-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The already-canceled booking must not release its seats again.
	if got := f.rideRepo.GetRide("ride-1").SeatsAvailable; got != 4 {
		t.Errorf("expected 4 seats available, got %d", got)
	}
	if got := f.bookingRepo.GetBooking("booking-2").Status; got != domain.BookingStatusCanceled {
		t.Errorf("expected booking CANCELED, got %s", got)
	}
}

func TestRide_CancelWhileInProgress(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	ride := newScheduledRide("ride-1", "owner-1", 4, 3)
	ride.Status = domain.RideStatusInProgress
	f.rideRepo.AddRide(ride)

	_, err := f.lifecycle.Cancel(context.Background(), "ride-1", asUser("owner-1"))
	if !errors.Is(err, service.ErrRideNotCancelable) {
		t.Fatalf("expected ErrRideNotCancelable, got %v", err)
	}
}

func TestRide_CancelCompletedRide(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	ride := newScheduledRide("ride-1", "owner-1", 4, 3)
	ride.Status = domain.RideStatusCompleted
	ride.Active = false
	f.rideRepo.AddRide(ride)

	// Completion is terminal; unlike a canceled ride, a completed one is
	// refused rather than echoed back.
	_, err := f.lifecycle.Cancel(context.Background(), "ride-1", asUser("owner-1"))
	if !errors.Is(err, service.ErrRideNotCancelable) {
		t.Fatalf("expected ErrRideNotCancelable, got %v", err)
	}
}

func TestRide_UpdateRecomputesAvailableSeats(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.rideRepo.AddRide(newScheduledRide("ride-1", "owner-1", 4, 2))
	f.bookingRepo.AddBooking(&domain.Booking{
		ID:             "booking-1",
		RideID:         "ride-1",
		PassengerID:    "user-a",
		SeatsRequested: 2,
		Status:         domain.BookingStatusApproved,
	})

	ride, err := f.lifecycle.Update(context.Background(), "ride-1", asUser("owner-1"), service.UpdateRideInput{
		Origin:       "Seoul",
		Destination:  "Busan",
		StartTime:    time.Now().Add(3 * time.Hour),
		TotalSeats:   5,
		PricePerSeat: 30.0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ride.SeatsAvailable != 3 {
		t.Errorf("expected 3 seats available, got %d", ride.SeatsAvailable)
	}
}

func TestRide_UpdateCannotShrinkBelowApproved(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.rideRepo.AddRide(newScheduledRide("ride-1", "owner-1", 4, 2))
	f.bookingRepo.AddBooking(&domain.Booking{
		ID:             "booking-1",
		RideID:         "ride-1",
		PassengerID:    "user-a",
		SeatsRequested: 2,
		Status:         domain.BookingStatusApproved,
	})

	_, err := f.lifecycle.Update(context.Background(), "ride-1", asUser("owner-1"), service.UpdateRideInput{
		Origin:       "Seoul",
		Destination:  "Busan",
		StartTime:    time.Now().Add(3 * time.Hour),
		TotalSeats:   1,
		PricePerSeat: 30.0,
	})
	if !errors.Is(err, service.ErrInvalidRide) {
		t.Fatalf("expected ErrInvalidRide, got %v", err)
	}
}

func TestRide_GetByIDUsesSnapshotCache(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.rideRepo.AddRide(newScheduledRide("ride-1", "owner-1", 4, 4))

	if _, err := f.lifecycle.GetByID(context.Background(), "ride-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.cacheStore.SetCallCount != 1 {
		t.Errorf("expected snapshot cached once, got %d", f.cacheStore.SetCallCount)
	}

	// Second read is served from cache even if the row disappears.
	delete(f.rideRepo.rides, "ride-1")
	ride, err := f.lifecycle.GetByID(context.Background(), "ride-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ride.ID != "ride-1" {
		t.Errorf("expected cached ride, got %+v", ride)
	}
}

func TestRide_GetByIDUnknown(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()

	_, err := f.lifecycle.GetByID(context.Background(), "missing")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRide_SearchFilters(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.rideRepo.AddRide(newScheduledRide("ride-1", "owner-1", 4, 4))

	full := newScheduledRide("ride-2", "owner-2", 2, 0)
	f.rideRepo.AddRide(full)

	other := newScheduledRide("ride-3", "owner-3", 4, 4)
	other.Origin = "Incheon"
	f.rideRepo.AddRide(other)

	rides, err := f.lifecycle.Search(context.Background(), repository.RideFilter{Origin: "seo", OnlyAvailable: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rides) != 1 || rides[0].ID != "ride-1" {
		t.Errorf("expected only ride-1, got %d rides", len(rides))
	}
}
