package postgres

import (
	"context"
	"database/sql"
	"errors"

	"highwaylink/internal/domain"
	"highwaylink/internal/repository"
)

const inquiryColumns = `id, user_id, ride_id, kind, subject, message, resolved, created_at`

// InquiryRepository is a PostgreSQL implementation of repository.InquiryRepository.
type InquiryRepository struct {
	q Querier
}

// NewInquiryRepository creates a new PostgreSQL inquiry repository.
func NewInquiryRepository(db *sql.DB) *InquiryRepository {
	return &InquiryRepository{q: db}
}

// Create persists a new inquiry.
func (r *InquiryRepository) Create(ctx context.Context, inquiry *domain.Inquiry) error {
	query := `
		INSERT INTO inquiries (` + inquiryColumns + `)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8)
	`

	_, err := r.q.ExecContext(ctx, query,
		inquiry.ID,
		inquiry.UserID,
		inquiry.RideID,
		inquiry.Kind,
		inquiry.Subject,
		inquiry.Message,
		inquiry.Resolved,
		inquiry.CreatedAt,
	)

	return err
}

func scanInquiry(row interface{ Scan(dest ...any) error }) (*domain.Inquiry, error) {
	var inquiry domain.Inquiry
	var rideID sql.NullString

	err := row.Scan(
		&inquiry.ID,
		&inquiry.UserID,
		&rideID,
		&inquiry.Kind,
		&inquiry.Subject,
		&inquiry.Message,
		&inquiry.Resolved,
		&inquiry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if rideID.Valid {
		inquiry.RideID = rideID.String
	}

	return &inquiry, nil
}

// GetByID retrieves an inquiry by ID.
func (r *InquiryRepository) GetByID(ctx context.Context, id string) (*domain.Inquiry, error) {
	query := `SELECT ` + inquiryColumns + ` FROM inquiries WHERE id = $1`

	inquiry, err := scanInquiry(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return inquiry, nil
}

// ListAll retrieves all inquiries, newest first.
func (r *InquiryRepository) ListAll(ctx context.Context) ([]*domain.Inquiry, error) {
	query := `SELECT ` + inquiryColumns + ` FROM inquiries ORDER BY created_at DESC`
	return r.list(ctx, query)
}

// ListByUser retrieves a user's inquiries, newest first.
func (r *InquiryRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Inquiry, error) {
	query := `SELECT ` + inquiryColumns + ` FROM inquiries WHERE user_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

func (r *InquiryRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Inquiry, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var inquiries []*domain.Inquiry
	for rows.Next() {
		inquiry, err := scanInquiry(rows)
		if err != nil {
			return nil, err
		}
		inquiries = append(inquiries, inquiry)
	}
	return inquiries, rows.Err()
}

// Resolve marks an inquiry resolved.
func (r *InquiryRepository) Resolve(ctx context.Context, id string) (bool, error) {
	query := `UPDATE inquiries SET resolved = true WHERE id = $1 AND resolved = false`

	result, err := r.q.ExecContext(ctx, query, id)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}
