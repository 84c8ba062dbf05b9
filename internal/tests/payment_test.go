package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"highwaylink/internal/domain"
	"highwaylink/internal/service"
)

// ──────────────────────────────────────────────
// PAYMENT TRACKING
// ──────────────────────────────────────────────

type paymentFixture struct {
	rideRepo    *MockRideRepository
	bookingRepo *MockBookingRepository
	tracker     *service.PaymentTracker
	earnings    *service.EarningsService
}

func newPaymentFixture() *paymentFixture {
	rideRepo := NewMockRideRepository()
	bookingRepo := NewMockBookingRepository(rideRepo)

	return &paymentFixture{
		rideRepo:    rideRepo,
		bookingRepo: bookingRepo,
		tracker:     service.NewPaymentTracker(bookingRepo, rideRepo, service.NewMockGateway(), service.NewNotificationService()),
		earnings:    service.NewEarningsService(bookingRepo),
	}
}

// addApprovedBooking seeds a ride and an approved booking on it with an
// open payment record.
func (f *paymentFixture) addApprovedBooking(bookingID, rideID, passengerID string, seats int, method domain.PaymentMethod) {
	if f.rideRepo.GetRide(rideID) == nil {
		f.rideRepo.AddRide(newScheduledRide(rideID, "owner-1", 4, 4-seats))
	}
	f.bookingRepo.AddBooking(&domain.Booking{
		ID:             bookingID,
		RideID:         rideID,
		PassengerID:    passengerID,
		SeatsRequested: seats,
		Status:         domain.BookingStatusApproved,
		PaymentMethod:  method,
		PaymentStatus:  domain.PaymentStatusPending,
	})
}

func TestPayment_SelectMethod(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	f.addApprovedBooking("booking-1", "ride-1", "user-a", 2, domain.PaymentMethodNone)

	booking, err := f.tracker.SelectMethod(context.Background(), "booking-1", asUser("user-a"), domain.PaymentMethodCash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.PaymentMethod != domain.PaymentMethodCash {
		t.Errorf("expected CASH, got %s", booking.PaymentMethod)
	}

	// The method can still change before settlement.
	booking, err = f.tracker.SelectMethod(context.Background(), "booking-1", asUser("user-a"), domain.PaymentMethodCard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.PaymentMethod != domain.PaymentMethodCard {
		t.Errorf("expected CARD, got %s", booking.PaymentMethod)
	}
}

func TestPayment_SelectMethodInvalid(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	f.addApprovedBooking("booking-1", "ride-1", "user-a", 1, domain.PaymentMethodNone)

	_, err := f.tracker.SelectMethod(context.Background(), "booking-1", asUser("user-a"), domain.PaymentMethod("CHECK"))
	if !errors.Is(err, service.ErrInvalidPaymentMethod) {
		t.Fatalf("expected ErrInvalidPaymentMethod, got %v", err)
	}
}

func TestPayment_SelectMethodOnPendingBooking(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	f.rideRepo.AddRide(newScheduledRide("ride-1", "owner-1", 4, 4))
	f.bookingRepo.AddBooking(&domain.Booking{
		ID:          "booking-1",
		RideID:      "ride-1",
		PassengerID: "user-a",
		Status:      domain.BookingStatusPending,
	})

	_, err := f.tracker.SelectMethod(context.Background(), "booking-1", asUser("user-a"), domain.PaymentMethodCash)
	if !errors.Is(err, service.ErrBookingNotApproved) {
		t.Fatalf("expected ErrBookingNotApproved, got %v", err)
	}
}

func TestPayment_SelectMethodByStranger(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	f.addApprovedBooking("booking-1", "ride-1", "user-a", 1, domain.PaymentMethodNone)

	_, err := f.tracker.SelectMethod(context.Background(), "booking-1", asUser("user-b"), domain.PaymentMethodCash)
	if !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestPayment_CashCollected(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	f.addApprovedBooking("booking-1", "ride-1", "user-a", 2, domain.PaymentMethodCash)

	booking, err := f.tracker.ConfirmCashCollected(context.Background(), "booking-1", 50.0, asUser("owner-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.PaymentStatus != domain.PaymentStatusCompleted {
		t.Errorf("expected COMPLETED, got %s", booking.PaymentStatus)
	}
	if booking.AmountPaid != 50.0 {
		t.Errorf("expected 50.0, got %.2f", booking.AmountPaid)
	}
	if booking.PaymentCollectedAt.IsZero() {
		t.Error("expected collection time to be set")
	}
}

func TestPayment_CashCollectedRecordsReportedAmount(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	f.addApprovedBooking("booking-1", "ride-1", "user-a", 2, domain.PaymentMethodCash)

	// The driver settled for less than price times seats; the record
	// keeps what was actually handed over.
	booking, err := f.tracker.ConfirmCashCollected(context.Background(), "booking-1", 40.0, asUser("owner-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.AmountPaid != 40.0 {
		t.Errorf("expected 40.0, got %.2f", booking.AmountPaid)
	}
}

func TestPayment_CashCollectedIdempotent(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	f.addApprovedBooking("booking-1", "ride-1", "user-a", 2, domain.PaymentMethodCash)

	first, err := f.tracker.ConfirmCashCollected(context.Background(), "booking-1", 50.0, asUser("owner-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := f.tracker.ConfirmCashCollected(context.Background(), "booking-1", 30.0, asUser("owner-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !second.PaymentCollectedAt.Equal(first.PaymentCollectedAt) {
		t.Error("expected second confirmation to leave the record unchanged")
	}
	if second.AmountPaid != first.AmountPaid {
		t.Errorf("expected amount unchanged, got %.2f", second.AmountPaid)
	}
}

func TestPayment_CashCollectedWrongMethod(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	f.addApprovedBooking("booking-1", "ride-1", "user-a", 1, domain.PaymentMethodCard)

	_, err := f.tracker.ConfirmCashCollected(context.Background(), "booking-1", 25.0, asUser("owner-1"))
	if !errors.Is(err, service.ErrPaymentMethodNotSet) {
		t.Fatalf("expected ErrPaymentMethodNotSet, got %v", err)
	}
}

func TestPayment_CashCollectedByStranger(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	f.addApprovedBooking("booking-1", "ride-1", "user-a", 1, domain.PaymentMethodCash)

	_, err := f.tracker.ConfirmCashCollected(context.Background(), "booking-1", 25.0, asUser("user-b"))
	if !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestPayment_CardSettlement(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	f.addApprovedBooking("booking-1", "ride-1", "user-a", 2, domain.PaymentMethodCard)

	booking, err := f.tracker.RecordCardSettlement(context.Background(), service.CardSettlementInput{
		BookingID:     "booking-1",
		TransactionID: "txn-100",
		Amount:        50.0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.PaymentStatus != domain.PaymentStatusCompleted {
		t.Errorf("expected COMPLETED, got %s", booking.PaymentStatus)
	}
	if booking.TransactionID != "txn-100" {
		t.Errorf("expected txn-100, got %s", booking.TransactionID)
	}
}

func TestPayment_CardSettlementReplaySameTransaction(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	f.addApprovedBooking("booking-1", "ride-1", "user-a", 2, domain.PaymentMethodCard)

	input := service.CardSettlementInput{
		BookingID:     "booking-1",
		TransactionID: "txn-100",
		Amount:        50.0,
	}
	first, err := f.tracker.RecordCardSettlement(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := f.tracker.RecordCardSettlement(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !second.PaymentCollectedAt.Equal(first.PaymentCollectedAt) {
		t.Error("expected replay to leave the record unchanged")
	}
}

func TestPayment_CardSettlementSecondTransactionRefused(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	f.addApprovedBooking("booking-1", "ride-1", "user-a", 2, domain.PaymentMethodCard)

	if _, err := f.tracker.RecordCardSettlement(context.Background(), service.CardSettlementInput{
		BookingID:     "booking-1",
		TransactionID: "txn-100",
		Amount:        50.0,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := f.tracker.RecordCardSettlement(context.Background(), service.CardSettlementInput{
		BookingID:     "booking-1",
		TransactionID: "txn-200",
		Amount:        50.0,
	})
	if !errors.Is(err, service.ErrAlreadyTerminal) {
		t.Fatalf("expected ErrAlreadyTerminal, got %v", err)
	}
}

func TestPayment_CardSettlementWrongMethod(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	f.addApprovedBooking("booking-1", "ride-1", "user-a", 1, domain.PaymentMethodCash)

	_, err := f.tracker.RecordCardSettlement(context.Background(), service.CardSettlementInput{
		BookingID:     "booking-1",
		TransactionID: "txn-100",
		Amount:        25.0,
	})
	if !errors.Is(err, service.ErrPaymentMethodNotSet) {
		t.Fatalf("expected ErrPaymentMethodNotSet, got %v", err)
	}
}

func TestPayment_MethodFrozenAfterSettlement(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	f.addApprovedBooking("booking-1", "ride-1", "user-a", 1, domain.PaymentMethodCash)

	if _, err := f.tracker.ConfirmCashCollected(context.Background(), "booking-1", 25.0, asUser("owner-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := f.tracker.SelectMethod(context.Background(), "booking-1", asUser("user-a"), domain.PaymentMethodCard)
	if !errors.Is(err, service.ErrAlreadyTerminal) {
		t.Fatalf("expected ErrAlreadyTerminal, got %v", err)
	}
}

// ──────────────────────────────────────────────
// EARNINGS
// ──────────────────────────────────────────────

func TestEarnings_RollupSplitsByMethod(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	f.rideRepo.AddRide(newScheduledRide("ride-1", "owner-1", 4, 1))
	now := time.Now()

	f.bookingRepo.AddBooking(&domain.Booking{
		ID:                 "booking-1",
		RideID:             "ride-1",
		PassengerID:        "user-a",
		SeatsRequested:     2,
		Status:             domain.BookingStatusApproved,
		PaymentMethod:      domain.PaymentMethodCash,
		PaymentStatus:      domain.PaymentStatusCompleted,
		AmountPaid:         50.0,
		PaymentCollectedAt: now,
	})
	f.bookingRepo.AddBooking(&domain.Booking{
		ID:                 "booking-2",
		RideID:             "ride-1",
		PassengerID:        "user-b",
		SeatsRequested:     1,
		Status:             domain.BookingStatusApproved,
		PaymentMethod:      domain.PaymentMethodCard,
		PaymentStatus:      domain.PaymentStatusCompleted,
		TransactionID:      "txn-1",
		AmountPaid:         25.0,
		PaymentCollectedAt: now,
	})
	// Unsettled bookings do not count.
	f.bookingRepo.AddBooking(&domain.Booking{
		ID:             "booking-3",
		RideID:         "ride-1",
		PassengerID:    "user-c",
		SeatsRequested: 1,
		Status:         domain.BookingStatusApproved,
		PaymentMethod:  domain.PaymentMethodCash,
		PaymentStatus:  domain.PaymentStatusPending,
	})

	earnings, err := f.earnings.Total(context.Background(), asUser("owner-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if earnings.Cash != 50.0 || earnings.Card != 25.0 || earnings.Total != 75.0 {
		t.Errorf("unexpected rollup: %+v", earnings)
	}
	if earnings.Count != 2 {
		t.Errorf("expected 2 settled payments, got %d", earnings.Count)
	}
}

func TestEarnings_TodayExcludesEarlierDays(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	f.rideRepo.AddRide(newScheduledRide("ride-1", "owner-1", 4, 2))
	now := time.Now()

	f.bookingRepo.AddBooking(&domain.Booking{
		ID:                 "booking-1",
		RideID:             "ride-1",
		PassengerID:        "user-a",
		SeatsRequested:     1,
		Status:             domain.BookingStatusApproved,
		PaymentMethod:      domain.PaymentMethodCash,
		PaymentStatus:      domain.PaymentStatusCompleted,
		AmountPaid:         25.0,
		PaymentCollectedAt: now,
	})
	f.bookingRepo.AddBooking(&domain.Booking{
		ID:                 "booking-2",
		RideID:             "ride-1",
		PassengerID:        "user-b",
		SeatsRequested:     1,
		Status:             domain.BookingStatusApproved,
		PaymentMethod:      domain.PaymentMethodCash,
		PaymentStatus:      domain.PaymentStatusCompleted,
		AmountPaid:         25.0,
		PaymentCollectedAt: now.Add(-48 * time.Hour),
	})

	earnings, err := f.earnings.Today(context.Background(), asUser("owner-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if earnings.Total != 25.0 || earnings.Count != 1 {
		t.Errorf("expected only today's payment, got %+v", earnings)
	}
}

func TestEarnings_OnlyOwnRides(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	f.rideRepo.AddRide(newScheduledRide("ride-1", "owner-1", 4, 3))
	f.rideRepo.AddRide(newScheduledRide("ride-2", "owner-2", 4, 3))

	f.bookingRepo.AddBooking(&domain.Booking{
		ID:                 "booking-1",
		RideID:             "ride-2",
		PassengerID:        "user-a",
		SeatsRequested:     1,
		Status:             domain.BookingStatusApproved,
		PaymentMethod:      domain.PaymentMethodCash,
		PaymentStatus:      domain.PaymentStatusCompleted,
		AmountPaid:         25.0,
		PaymentCollectedAt: time.Now(),
	})

	earnings, err := f.earnings.Total(context.Background(), asUser("owner-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if earnings.Total != 0 || earnings.Count != 0 {
		t.Errorf("expected no earnings for owner-1, got %+v", earnings)
	}
}
