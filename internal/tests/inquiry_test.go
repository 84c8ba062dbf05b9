package tests

import (
	"context"
	"errors"
	"testing"

	"highwaylink/internal/domain"
	"highwaylink/internal/service"
)

// ──────────────────────────────────────────────
// INQUIRIES
// ──────────────────────────────────────────────

func newInquiryService() (*service.InquiryService, *MockInquiryRepository, *MockRideRepository) {
	inquiryRepo := NewMockInquiryRepository()
	rideRepo := NewMockRideRepository()
	svc := service.NewInquiryService(inquiryRepo, rideRepo, service.NewNotificationService())
	return svc, inquiryRepo, rideRepo
}

func TestInquiry_FileGeneral(t *testing.T) {
	t.Parallel()

	svc, _, _ := newInquiryService()

	inquiry, err := svc.File(context.Background(), asUser("user-a"), domain.InquiryKindGeneral, "", "Lost item", "Left a bag on the ride")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inquiry.Resolved {
		t.Error("expected inquiry to start unresolved")
	}
}

func TestInquiry_FileRideCancellationRequiresOwnership(t *testing.T) {
	t.Parallel()

	svc, _, rideRepo := newInquiryService()
	rideRepo.AddRide(newScheduledRide("ride-1", "owner-1", 4, 3))

	_, err := svc.File(context.Background(), asUser("user-a"), domain.InquiryKindRideCancellation, "ride-1", "Cancel my ride", "Car broke down")
	if !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	if _, err := svc.File(context.Background(), asUser("owner-1"), domain.InquiryKindRideCancellation, "ride-1", "Cancel my ride", "Car broke down"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestInquiry_ListScopedByRole(t *testing.T) {
	t.Parallel()

	svc, inquiryRepo, _ := newInquiryService()
	inquiryRepo.AddInquiry(&domain.Inquiry{ID: "inq-1", UserID: "user-a", Kind: domain.InquiryKindGeneral})
	inquiryRepo.AddInquiry(&domain.Inquiry{ID: "inq-2", UserID: "user-b", Kind: domain.InquiryKindGeneral})

	mine, err := svc.List(context.Background(), asUser("user-a"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mine) != 1 {
		t.Errorf("expected 1 inquiry for user-a, got %d", len(mine))
	}

	all, err := svc.List(context.Background(), asAdmin("admin-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 inquiries for admin, got %d", len(all))
	}
}

func TestInquiry_ResolveAdminOnly(t *testing.T) {
	t.Parallel()

	svc, inquiryRepo, _ := newInquiryService()
	inquiryRepo.AddInquiry(&domain.Inquiry{ID: "inq-1", UserID: "user-a", Kind: domain.InquiryKindGeneral})

	_, err := svc.Resolve(context.Background(), "inq-1", asUser("user-a"))
	if !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	inquiry, err := svc.Resolve(context.Background(), "inq-1", asAdmin("admin-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !inquiry.Resolved {
		t.Error("expected inquiry to be resolved")
	}
}

func TestInquiry_ResolveTwice(t *testing.T) {
	t.Parallel()

	svc, inquiryRepo, _ := newInquiryService()
	inquiryRepo.AddInquiry(&domain.Inquiry{ID: "inq-1", UserID: "user-a", Kind: domain.InquiryKindGeneral, Resolved: true})

	_, err := svc.Resolve(context.Background(), "inq-1", asAdmin("admin-1"))
	if !errors.Is(err, service.ErrInquiryResolved) {
		t.Fatalf("expected ErrInquiryResolved, got %v", err)
	}
}
