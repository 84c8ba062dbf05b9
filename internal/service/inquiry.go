package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"highwaylink/internal/domain"
	"highwaylink/internal/repository"
)

// InquiryService handles support inquiries, including the mediated path
// for canceling a ride with committed passengers.
type InquiryService struct {
	inquiryRepo  repository.InquiryRepository
	rideRepo     repository.RideRepository
	notification *NotificationService
}

// NewInquiryService creates a new InquiryService.
func NewInquiryService(
	inquiryRepo repository.InquiryRepository,
	rideRepo repository.RideRepository,
	notification *NotificationService,
) *InquiryService {
	return &InquiryService{
		inquiryRepo:  inquiryRepo,
		rideRepo:     rideRepo,
		notification: notification,
	}
}

// File creates a new inquiry. Ride cancellation inquiries must reference
// an existing ride owned by the caller.
func (s *InquiryService) File(ctx context.Context, caller domain.Identity, kind domain.InquiryKind, rideID, subject, message string) (*domain.Inquiry, error) {
	if caller.UserID == "" {
		return nil, ErrInvalidUserID
	}
	if subject == "" || message == "" {
		return nil, ErrInvalidInquiry
	}

	switch kind {
	case domain.InquiryKindGeneral:
	case domain.InquiryKindRideCancellation:
		if rideID == "" {
			return nil, ErrInvalidInquiry
		}
		ride, err := s.rideRepo.GetByID(ctx, rideID)
		if err != nil {
			return nil, err
		}
		if ride.OwnerID != caller.UserID {
			return nil, ErrUnauthorized
		}
	default:
		return nil, ErrInvalidInquiry
	}

	inquiry := &domain.Inquiry{
		ID:        uuid.New().String(),
		UserID:    caller.UserID,
		RideID:    rideID,
		Kind:      kind,
		Subject:   subject,
		Message:   message,
		Resolved:  false,
		CreatedAt: time.Now(),
	}

	if err := s.inquiryRepo.Create(ctx, inquiry); err != nil {
		return nil, err
	}

	if s.notification != nil {
		s.notification.NotifyInquiryFiled(ctx, inquiry)
	}

	return inquiry, nil
}

// GetByID retrieves an inquiry for its author or an admin.
func (s *InquiryService) GetByID(ctx context.Context, id string, caller domain.Identity) (*domain.Inquiry, error) {
	if id == "" {
		return nil, ErrInvalidInquiry
	}

	inquiry, err := s.inquiryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inquiry.UserID != caller.UserID && caller.Role != domain.RoleAdmin {
		return nil, ErrUnauthorized
	}

	return inquiry, nil
}

// List retrieves the caller's inquiries, or every inquiry for an admin.
func (s *InquiryService) List(ctx context.Context, caller domain.Identity) ([]*domain.Inquiry, error) {
	if caller.UserID == "" {
		return nil, ErrInvalidUserID
	}

	if caller.Role == domain.RoleAdmin {
		return s.inquiryRepo.ListAll(ctx)
	}
	return s.inquiryRepo.ListByUser(ctx, caller.UserID)
}

// Resolve marks an inquiry handled. Admin only. Resolving a ride
// cancellation inquiry does not cancel the ride by itself; the admin
// cancels the ride explicitly once passengers are dealt with.
func (s *InquiryService) Resolve(ctx context.Context, id string, caller domain.Identity) (*domain.Inquiry, error) {
	if id == "" {
		return nil, ErrInvalidInquiry
	}
	if caller.Role != domain.RoleAdmin {
		return nil, ErrUnauthorized
	}

	ok, err := s.inquiryRepo.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		if _, err := s.inquiryRepo.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrInquiryResolved
	}

	return s.inquiryRepo.GetByID(ctx, id)
}
