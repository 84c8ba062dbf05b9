package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"highwaylink/internal/domain"
	"highwaylink/internal/repository"
)

const rideColumns = `id, owner_id, origin, destination, start_time, total_seats, seats_available, price_per_seat, schedule, status, active, created_at`

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	q Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{q: db}
}

// NewRideRepositoryWithTx creates a ride repository using a transaction.
func NewRideRepositoryWithTx(tx *sql.Tx) *RideRepository {
	return &RideRepository{q: tx}
}

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (` + rideColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.q.ExecContext(ctx, query,
		ride.ID,
		ride.OwnerID,
		ride.Origin,
		ride.Destination,
		ride.StartTime,
		ride.TotalSeats,
		ride.SeatsAvailable,
		ride.PricePerSeat,
		ride.Schedule,
		ride.Status,
		ride.Active,
		ride.CreatedAt,
	)

	return err
}

func scanRide(row interface{ Scan(dest ...any) error }) (*domain.Ride, error) {
	var ride domain.Ride
	err := row.Scan(
		&ride.ID,
		&ride.OwnerID,
		&ride.Origin,
		&ride.Destination,
		&ride.StartTime,
		&ride.TotalSeats,
		&ride.SeatsAvailable,
		&ride.PricePerSeat,
		&ride.Schedule,
		&ride.Status,
		&ride.Active,
		&ride.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ride, nil
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`

	ride, err := scanRide(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return ride, nil
}

// List retrieves rides matching the filter, newest first.
func (r *RideRepository) List(ctx context.Context, filter repository.RideFilter) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE 1=1`
	var args []any

	if filter.Origin != "" {
		args = append(args, "%"+filter.Origin+"%")
		query += ` AND origin ILIKE $` + strconv.Itoa(len(args))
	}
	if filter.Destination != "" {
		args = append(args, "%"+filter.Destination+"%")
		query += ` AND destination ILIKE $` + strconv.Itoa(len(args))
	}
	if filter.Date != "" {
		args = append(args, filter.Date)
		query += ` AND start_time::date = $` + strconv.Itoa(len(args)) + `::date`
	}
	if filter.OnlyAvailable {
		query += ` AND active = true AND status = 'SCHEDULED' AND seats_available > 0`
	}
	query += ` ORDER BY created_at DESC LIMIT 100`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRides(rows)
}

// ListByOwner retrieves all rides published by an owner.
func (r *RideRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE owner_id = $1 ORDER BY created_at DESC`

	rows, err := r.q.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRides(rows)
}

func collectRides(rows *sql.Rows) ([]*domain.Ride, error) {
	var rides []*domain.Ride
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}

// Update updates a ride's mutable fields.
func (r *RideRepository) Update(ctx context.Context, ride *domain.Ride) error {
	query := `
		UPDATE rides
		SET origin = $1, destination = $2, start_time = $3, total_seats = $4,
		    seats_available = $5, price_per_seat = $6, schedule = $7
		WHERE id = $8
	`

	result, err := r.q.ExecContext(ctx, query,
		ride.Origin,
		ride.Destination,
		ride.StartTime,
		ride.TotalSeats,
		ride.SeatsAvailable,
		ride.PricePerSeat,
		ride.Schedule,
		ride.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ReserveSeats atomically decrements seats_available if enough remain.
func (r *RideRepository) ReserveSeats(ctx context.Context, id string, seats int) (bool, error) {
	query := `
		UPDATE rides SET seats_available = seats_available - $2
		WHERE id = $1 AND seats_available >= $2
	`
	return r.execCond(ctx, query, id, seats)
}

// ReleaseSeats atomically increments seats_available without exceeding
// total_seats. The guard is never clamped: a release that would overflow
// reports ok=false so the caller can surface the accounting violation.
func (r *RideRepository) ReleaseSeats(ctx context.Context, id string, seats int) (bool, error) {
	query := `
		UPDATE rides SET seats_available = seats_available + $2
		WHERE id = $1 AND seats_available + $2 <= total_seats
	`
	return r.execCond(ctx, query, id, seats)
}

// TransitionStatus moves a ride between statuses with a compare-and-set.
func (r *RideRepository) TransitionStatus(ctx context.Context, id string, from, to domain.RideStatus) (bool, error) {
	query := `UPDATE rides SET status = $3 WHERE id = $1 AND status = $2`
	return r.execCond(ctx, query, id, from, to)
}

// Complete marks an in-progress ride COMPLETED and inactive.
func (r *RideRepository) Complete(ctx context.Context, id string) (bool, error) {
	query := `UPDATE rides SET status = 'COMPLETED', active = false WHERE id = $1 AND status = 'IN_PROGRESS'`
	return r.execCond(ctx, query, id)
}

// Deactivate soft-deletes an active ride.
func (r *RideRepository) Deactivate(ctx context.Context, id string) (bool, error) {
	query := `UPDATE rides SET active = false WHERE id = $1 AND active = true`
	return r.execCond(ctx, query, id)
}

// HasStatusByOwner reports whether the owner has any ride in the status.
func (r *RideRepository) HasStatusByOwner(ctx context.Context, ownerID string, status domain.RideStatus) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM rides WHERE owner_id = $1 AND status = $2 AND active = true)`

	var exists bool
	if err := r.q.QueryRowContext(ctx, query, ownerID, status).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *RideRepository) execCond(ctx context.Context, query string, args ...any) (bool, error) {
	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}
