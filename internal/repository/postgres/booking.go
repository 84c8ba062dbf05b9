package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"highwaylink/internal/domain"
	"highwaylink/internal/repository"
)

const bookingColumns = `id, ride_id, passenger_id, seats_requested, status, payment_method, payment_status, transaction_id, amount_paid, requested_at, payment_collected_at`

// BookingRepository is a PostgreSQL implementation of repository.BookingRepository.
type BookingRepository struct {
	db *sql.DB
	q  Querier
}

// NewBookingRepository creates a new PostgreSQL booking repository.
func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db, q: db}
}

// NewBookingRepositoryWithTx creates a booking repository using a
// transaction. The transactional composites (ApproveWithReservation,
// FinishWithRelease) are not available on a tx-scoped repository.
func NewBookingRepositoryWithTx(tx *sql.Tx) *BookingRepository {
	return &BookingRepository{q: tx}
}

// Create persists a new booking.
func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	query := `
		INSERT INTO bookings (id, ride_id, passenger_id, seats_requested, status, payment_method, payment_status, requested_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.q.ExecContext(ctx, query,
		booking.ID,
		booking.RideID,
		booking.PassengerID,
		booking.SeatsRequested,
		booking.Status,
		booking.PaymentMethod,
		booking.PaymentStatus,
		booking.RequestedAt,
	)

	return err
}

func scanBooking(row interface{ Scan(dest ...any) error }) (*domain.Booking, error) {
	var booking domain.Booking
	var transactionID sql.NullString
	var amountPaid sql.NullFloat64
	var collectedAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.RideID,
		&booking.PassengerID,
		&booking.SeatsRequested,
		&booking.Status,
		&booking.PaymentMethod,
		&booking.PaymentStatus,
		&transactionID,
		&amountPaid,
		&booking.RequestedAt,
		&collectedAt,
	)
	if err != nil {
		return nil, err
	}

	if transactionID.Valid {
		booking.TransactionID = transactionID.String
	}
	if amountPaid.Valid {
		booking.AmountPaid = amountPaid.Float64
	}
	if collectedAt.Valid {
		booking.PaymentCollectedAt = collectedAt.Time
	}

	return &booking, nil
}

// GetByID retrieves a booking by ID.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return booking, nil
}

// GetActiveByRideAndPassenger retrieves the passenger's non-terminal
// booking on the ride. Returns nil if none exists.
func (r *BookingRepository) GetActiveByRideAndPassenger(ctx context.Context, rideID, passengerID string) (*domain.Booking, error) {
	query := `
		SELECT ` + bookingColumns + ` FROM bookings
		WHERE ride_id = $1 AND passenger_id = $2 AND status IN ('PENDING', 'APPROVED')
	`

	booking, err := scanBooking(r.q.QueryRowContext(ctx, query, rideID, passengerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return booking, nil
}

// ListByRide retrieves all bookings for a ride, oldest first.
func (r *BookingRepository) ListByRide(ctx context.Context, rideID string) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE ride_id = $1 ORDER BY requested_at ASC`

	rows, err := r.q.QueryContext(ctx, query, rideID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectBookings(rows)
}

// ListByPassenger retrieves all bookings made by a passenger.
func (r *BookingRepository) ListByPassenger(ctx context.Context, passengerID string) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE passenger_id = $1 ORDER BY requested_at DESC`

	rows, err := r.q.QueryContext(ctx, query, passengerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectBookings(rows)
}

func collectBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	var bookings []*domain.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

// ApprovedSeatTotal returns the sum of seats over APPROVED bookings.
func (r *BookingRepository) ApprovedSeatTotal(ctx context.Context, rideID string) (int, error) {
	query := `SELECT COALESCE(SUM(seats_requested), 0) FROM bookings WHERE ride_id = $1 AND status = 'APPROVED'`

	var total int
	if err := r.q.QueryRowContext(ctx, query, rideID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// CountApproved returns the number of APPROVED bookings for the ride.
func (r *BookingRepository) CountApproved(ctx context.Context, rideID string) (int, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE ride_id = $1 AND status = 'APPROVED'`

	var count int
	if err := r.q.QueryRowContext(ctx, query, rideID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// UpdateStatus moves a booking between statuses with a compare-and-set.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id string, from, to domain.BookingStatus) (bool, error) {
	query := `UPDATE bookings SET status = $3 WHERE id = $1 AND status = $2`
	return r.execCond(ctx, query, id, from, to)
}

// approve moves a PENDING booking to APPROVED and opens its payment record
// in the same write. Callers get it through ApproveWithReservation, which
// pairs it with the seat decrement.
func (r *BookingRepository) approve(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE bookings
		SET status = 'APPROVED', payment_method = 'NONE', payment_status = 'PENDING'
		WHERE id = $1 AND status = 'PENDING'
	`
	return r.execCond(ctx, query, id)
}

// ApproveWithReservation approves a PENDING booking and takes its seats
// from the ride in one transaction. Either both updates commit or
// neither does; ok=false means the booking was not PENDING or too few
// seats remained, and nothing was written.
func (r *BookingRepository) ApproveWithReservation(ctx context.Context, id, rideID string, seats int) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txBookings := NewBookingRepositoryWithTx(tx)
	ok, err := txBookings.approve(ctx, id)
	if err != nil {
		return false, err
	}
	if !ok {
		_ = tx.Rollback()
		return false, nil
	}

	txRides := NewRideRepositoryWithTx(tx)
	ok, err = txRides.ReserveSeats(ctx, rideID, seats)
	if err != nil {
		return false, err
	}
	if !ok {
		_ = tx.Rollback()
		return false, nil
	}

	if err = tx.Commit(); err != nil {
		return false, err
	}

	return true, nil
}

// FinishWithRelease terminates an APPROVED booking and returns its seats
// to the ride in one transaction. Either both updates commit or neither
// does; ok=false means the booking was not APPROVED or the release would
// overflow total_seats, and nothing was written.
func (r *BookingRepository) FinishWithRelease(ctx context.Context, id, rideID string, seats int, to domain.BookingStatus) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txBookings := NewBookingRepositoryWithTx(tx)
	ok, err := txBookings.UpdateStatus(ctx, id, domain.BookingStatusApproved, to)
	if err != nil {
		return false, err
	}
	if !ok {
		_ = tx.Rollback()
		return false, nil
	}

	txRides := NewRideRepositoryWithTx(tx)
	ok, err = txRides.ReleaseSeats(ctx, rideID, seats)
	if err != nil {
		return false, err
	}
	if !ok {
		_ = tx.Rollback()
		return false, nil
	}

	if err = tx.Commit(); err != nil {
		return false, err
	}

	return true, nil
}

// SetPaymentMethod overwrites the payment method while not settled.
func (r *BookingRepository) SetPaymentMethod(ctx context.Context, id string, method domain.PaymentMethod) (bool, error) {
	query := `
		UPDATE bookings SET payment_method = $2
		WHERE id = $1 AND status = 'APPROVED' AND payment_status <> 'COMPLETED'
	`
	return r.execCond(ctx, query, id, method)
}

// CompletePayment settles a booking's payment once.
func (r *BookingRepository) CompletePayment(ctx context.Context, id, transactionID string, amount float64, collectedAt time.Time) (bool, error) {
	query := `
		UPDATE bookings
		SET payment_status = 'COMPLETED', transaction_id = NULLIF($2, ''), amount_paid = $3, payment_collected_at = $4
		WHERE id = $1 AND payment_status <> 'COMPLETED'
	`
	return r.execCond(ctx, query, id, transactionID, amount, collectedAt)
}

// ListPaidByOwner retrieves COMPLETED-payment bookings on the owner's rides.
func (r *BookingRepository) ListPaidByOwner(ctx context.Context, ownerID string) ([]*domain.Booking, error) {
	query := `
		SELECT b.id, b.ride_id, b.passenger_id, b.seats_requested, b.status, b.payment_method, b.payment_status, b.transaction_id, b.amount_paid, b.requested_at, b.payment_collected_at
		FROM bookings b
		JOIN rides r ON r.id = b.ride_id
		WHERE r.owner_id = $1 AND b.payment_status = 'COMPLETED'
		ORDER BY b.payment_collected_at DESC
	`

	rows, err := r.q.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectBookings(rows)
}

func (r *BookingRepository) execCond(ctx context.Context, query string, args ...any) (bool, error) {
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
