package service

import (
	"context"
	"time"

	"highwaylink/internal/domain"
	"highwaylink/internal/repository"
)

// Earnings is an owner's settled income, split by payment method.
type Earnings struct {
	Cash  float64
	Card  float64
	Total float64
	Count int
}

// EarningsService rolls up settled payments for ride owners.
type EarningsService struct {
	bookingRepo repository.BookingRepository
}

// NewEarningsService creates a new EarningsService.
func NewEarningsService(bookingRepo repository.BookingRepository) *EarningsService {
	return &EarningsService{bookingRepo: bookingRepo}
}

// Today rolls up payments collected since local midnight.
func (s *EarningsService) Today(ctx context.Context, caller domain.Identity) (*Earnings, error) {
	if caller.UserID == "" {
		return nil, ErrInvalidUserID
	}

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	return s.rollup(ctx, caller.UserID, midnight)
}

// Total rolls up all payments ever collected.
func (s *EarningsService) Total(ctx context.Context, caller domain.Identity) (*Earnings, error) {
	if caller.UserID == "" {
		return nil, ErrInvalidUserID
	}

	return s.rollup(ctx, caller.UserID, time.Time{})
}

func (s *EarningsService) rollup(ctx context.Context, ownerID string, since time.Time) (*Earnings, error) {
	paid, err := s.bookingRepo.ListPaidByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	earnings := &Earnings{}
	for _, booking := range paid {
		if !since.IsZero() && booking.PaymentCollectedAt.Before(since) {
			continue
		}

		switch booking.PaymentMethod {
		case domain.PaymentMethodCash:
			earnings.Cash += booking.AmountPaid
		case domain.PaymentMethodCard:
			earnings.Card += booking.AmountPaid
		}
		earnings.Total += booking.AmountPaid
		earnings.Count++
	}

	return earnings, nil
}
