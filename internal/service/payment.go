package service

import (
	"context"
	"time"

	"highwaylink/internal/domain"
	"highwaylink/internal/repository"
)

// Gateway is the interface for the external card payment gateway. The
// gateway charges the passenger on its own side and calls back with a
// transaction id; Verify confirms the transaction exists there.
type Gateway interface {
	Verify(ctx context.Context, transactionID string) (bool, error)
}

// MockGateway is a mock implementation of Gateway for testing.
type MockGateway struct{}

// NewMockGateway creates a new mock gateway.
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

// Verify simulates gateway-side verification. Always succeeds.
func (g *MockGateway) Verify(ctx context.Context, transactionID string) (bool, error) {
	// Mock implementation: always succeeds.
	return true, nil
}

// PaymentTracker records how each approved booking gets paid. It moves
// payment state on the booking row; it never moves money itself.
type PaymentTracker struct {
	bookingRepo  repository.BookingRepository
	rideRepo     repository.RideRepository
	gateway      Gateway
	notification *NotificationService
}

// NewPaymentTracker creates a new PaymentTracker.
func NewPaymentTracker(
	bookingRepo repository.BookingRepository,
	rideRepo repository.RideRepository,
	gateway Gateway,
	notification *NotificationService,
) *PaymentTracker {
	return &PaymentTracker{
		bookingRepo:  bookingRepo,
		rideRepo:     rideRepo,
		gateway:      gateway,
		notification: notification,
	}
}

// SelectMethod sets or changes how the passenger will pay. The method is
// free to change until settlement completes.
func (t *PaymentTracker) SelectMethod(ctx context.Context, bookingID string, caller domain.Identity, method domain.PaymentMethod) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}
	if method != domain.PaymentMethodCash && method != domain.PaymentMethodCard {
		return nil, ErrInvalidPaymentMethod
	}

	booking, err := t.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.PassengerID != caller.UserID && caller.Role != domain.RoleAdmin {
		return nil, ErrUnauthorized
	}
	if booking.Status != domain.BookingStatusApproved {
		return nil, ErrBookingNotApproved
	}

	ok, err := t.bookingRepo.SetPaymentMethod(ctx, bookingID, method)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAlreadyTerminal
	}

	return t.bookingRepo.GetByID(ctx, bookingID)
}

// ConfirmCashCollected records that the driver received cash for a
// booking. The amount is recorded as the driver reports it, so partial
// or discounted collections are representable. A second confirmation
// returns the booking unchanged.
func (t *PaymentTracker) ConfirmCashCollected(ctx context.Context, bookingID string, amount float64, caller domain.Identity) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	booking, err := t.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	ride, err := t.rideRepo.GetByID(ctx, booking.RideID)
	if err != nil {
		return nil, err
	}
	if ride.OwnerID != caller.UserID && caller.Role != domain.RoleAdmin {
		return nil, ErrUnauthorized
	}

	if booking.PaymentStatus == domain.PaymentStatusCompleted {
		return booking, nil
	}
	if booking.Status != domain.BookingStatusApproved {
		return nil, ErrBookingNotApproved
	}
	if booking.PaymentMethod != domain.PaymentMethodCash {
		return nil, ErrPaymentMethodNotSet
	}

	ok, err := t.bookingRepo.CompletePayment(ctx, bookingID, "", amount, time.Now())
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost to a concurrent confirmation; return whatever settled.
		return t.bookingRepo.GetByID(ctx, bookingID)
	}

	settled, err := t.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if t.notification != nil {
		t.notification.NotifyPaymentConfirmed(ctx, settled)
	}

	return settled, nil
}

// CardSettlementInput carries a gateway settlement callback.
type CardSettlementInput struct {
	BookingID     string
	TransactionID string
	Amount        float64
}

// RecordCardSettlement records a card payment settled on the gateway
// side. The transaction id is the idempotency handle: replaying the same
// settlement returns the booking unchanged, while a second settlement
// with a different transaction id is refused.
func (t *PaymentTracker) RecordCardSettlement(ctx context.Context, input CardSettlementInput) (*domain.Booking, error) {
	if input.BookingID == "" {
		return nil, ErrInvalidBookingID
	}
	if input.TransactionID == "" || input.Amount <= 0 {
		return nil, ErrInvalidPaymentMethod
	}

	booking, err := t.bookingRepo.GetByID(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}

	if booking.PaymentStatus == domain.PaymentStatusCompleted {
		if booking.TransactionID == input.TransactionID {
			return booking, nil
		}
		return nil, ErrAlreadyTerminal
	}

	if booking.Status != domain.BookingStatusApproved {
		return nil, ErrBookingNotApproved
	}
	if booking.PaymentMethod != domain.PaymentMethodCard {
		return nil, ErrPaymentMethodNotSet
	}

	verified, err := t.gateway.Verify(ctx, input.TransactionID)
	if err != nil {
		return nil, err
	}
	if !verified {
		return nil, ErrInvalidPaymentMethod
	}

	ok, err := t.bookingRepo.CompletePayment(ctx, input.BookingID, input.TransactionID, input.Amount, time.Now())
	if err != nil {
		return nil, err
	}
	if !ok {
		current, err := t.bookingRepo.GetByID(ctx, input.BookingID)
		if err != nil {
			return nil, err
		}
		if current.TransactionID == input.TransactionID {
			return current, nil
		}
		return nil, ErrAlreadyTerminal
	}

	settled, err := t.bookingRepo.GetByID(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}

	if t.notification != nil {
		t.notification.NotifyPaymentConfirmed(ctx, settled)
	}

	return settled, nil
}
