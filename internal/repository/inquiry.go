package repository

import (
	"context"

	"highwaylink/internal/domain"
)

// InquiryRepository defines the persistence operations for inquiries.
type InquiryRepository interface {
	// Create persists a new inquiry.
	Create(ctx context.Context, inquiry *domain.Inquiry) error

	// GetByID retrieves an inquiry by ID.
	GetByID(ctx context.Context, id string) (*domain.Inquiry, error)

	// ListAll retrieves all inquiries, newest first.
	ListAll(ctx context.Context) ([]*domain.Inquiry, error)

	// ListByUser retrieves a user's inquiries, newest first.
	ListByUser(ctx context.Context, userID string) ([]*domain.Inquiry, error)

	// Resolve marks an inquiry resolved. ok=false if already resolved.
	Resolve(ctx context.Context, id string) (bool, error)
}
