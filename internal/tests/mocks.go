package tests

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"highwaylink/internal/domain"
	"highwaylink/internal/redis"
	"highwaylink/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK RIDE REPOSITORY
// ──────────────────────────────────────────────

// MockRideRepository is a mock implementation of RideRepository. The seat
// and status mutators hold the mutex across check-and-write, matching the
// atomicity of the real conditional UPDATEs.
type MockRideRepository struct {
	mu    sync.RWMutex
	rides map[string]*domain.Ride

	// Counters for verification
	CreateCallCount       int32
	ReserveSeatsCallCount int32
	ReleaseSeatsCallCount int32

	// Error injection
	CreateError  error
	UpdateError  error
	ReserveError error
	ReleaseError error
}

// NewMockRideRepository creates a new mock ride repository.
func NewMockRideRepository() *MockRideRepository {
	return &MockRideRepository{
		rides: make(map[string]*domain.Ride),
	}
}

// AddRide adds a ride to the mock repository.
func (m *MockRideRepository) AddRide(ride *domain.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
}

// GetRide returns a ride for test assertions.
func (m *MockRideRepository) GetRide(id string) *domain.Ride {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rides[id]
}

func (m *MockRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
	return nil
}

func (m *MockRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *ride
	return &copy, nil
}

func (m *MockRideRepository) List(ctx context.Context, filter repository.RideFilter) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Ride, 0, len(m.rides))
	for _, r := range m.rides {
		if filter.Origin != "" && !strings.Contains(strings.ToLower(r.Origin), strings.ToLower(filter.Origin)) {
			continue
		}
		if filter.Destination != "" && !strings.Contains(strings.ToLower(r.Destination), strings.ToLower(filter.Destination)) {
			continue
		}
		if filter.Date != "" && r.StartTime.Format("2006-01-02") != filter.Date {
			continue
		}
		if filter.OnlyAvailable && (!r.Active || r.Status != domain.RideStatusScheduled || r.SeatsAvailable < 1) {
			continue
		}
		copy := *r
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MockRideRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Ride, 0)
	for _, r := range m.rides {
		if r.OwnerID == ownerID {
			copy := *r
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockRideRepository) Update(ctx context.Context, ride *domain.Ride) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rides[ride.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *ride
	m.rides[ride.ID] = &copy
	return nil
}

func (m *MockRideRepository) ReserveSeats(ctx context.Context, id string, seats int) (bool, error) {
	atomic.AddInt32(&m.ReserveSeatsCallCount, 1)
	if m.ReserveError != nil {
		return false, m.ReserveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reserveLocked(id, seats), nil
}

func (m *MockRideRepository) ReleaseSeats(ctx context.Context, id string, seats int) (bool, error) {
	atomic.AddInt32(&m.ReleaseSeatsCallCount, 1)
	if m.ReleaseError != nil {
		return false, m.ReleaseError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.releaseLocked(id, seats), nil
}

func (m *MockRideRepository) TransitionStatus(ctx context.Context, id string, from, to domain.RideStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok || ride.Status != from {
		return false, nil
	}
	ride.Status = to
	return true, nil
}

func (m *MockRideRepository) Complete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok || ride.Status != domain.RideStatusInProgress {
		return false, nil
	}
	ride.Status = domain.RideStatusCompleted
	ride.Active = false
	return true, nil
}

func (m *MockRideRepository) Deactivate(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok || !ride.Active {
		return false, nil
	}
	ride.Active = false
	return true, nil
}

func (m *MockRideRepository) HasStatusByOwner(ctx context.Context, ownerID string, status domain.RideStatus) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.rides {
		if r.OwnerID == ownerID && r.Status == status {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockRideRepository) reserveLocked(id string, seats int) bool {
	ride, ok := m.rides[id]
	if !ok || ride.SeatsAvailable < seats {
		return false
	}
	ride.SeatsAvailable -= seats
	return true
}

func (m *MockRideRepository) releaseLocked(id string, seats int) bool {
	ride, ok := m.rides[id]
	if !ok || ride.SeatsAvailable+seats > ride.TotalSeats {
		return false
	}
	ride.SeatsAvailable += seats
	return true
}

// ──────────────────────────────────────────────
// MOCK BOOKING REPOSITORY
// ──────────────────────────────────────────────

// MockBookingRepository is a mock implementation of BookingRepository. It
// holds a reference to the ride repository so ApproveWithReservation and
// FinishWithRelease cover both sides in one critical section, like the
// real transactions. On refusal or injected error nothing is written,
// matching the transactional rollback.
type MockBookingRepository struct {
	mu       sync.RWMutex
	bookings map[string]*domain.Booking
	order    []string
	rideRepo *MockRideRepository

	// Counters for verification
	CreateCallCount  int32
	ApproveCallCount int32
	FinishCallCount  int32

	// Error injection
	CreateError  error
	ApproveError error
	FinishError  error
}

// NewMockBookingRepository creates a new mock booking repository bound to
// a mock ride repository.
func NewMockBookingRepository(rideRepo *MockRideRepository) *MockBookingRepository {
	return &MockBookingRepository{
		bookings: make(map[string]*domain.Booking),
		rideRepo: rideRepo,
	}
}

// AddBooking adds a booking to the mock repository.
func (m *MockBookingRepository) AddBooking(booking *domain.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[booking.ID] = booking
	m.order = append(m.order, booking.ID)
}

// GetBooking returns a booking for test assertions.
func (m *MockBookingRepository) GetBooking(id string) *domain.Booking {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bookings[id]
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[booking.ID] = booking
	m.order = append(m.order, booking.ID)
	return nil
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	booking, ok := m.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *booking
	return &copy, nil
}

func (m *MockBookingRepository) GetActiveByRideAndPassenger(ctx context.Context, rideID, passengerID string) (*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.bookings {
		if b.RideID == rideID && b.PassengerID == passengerID &&
			(b.Status == domain.BookingStatusPending || b.Status == domain.BookingStatusApproved) {
			copy := *b
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *MockBookingRepository) ListByRide(ctx context.Context, rideID string) ([]*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Booking, 0)
	for _, id := range m.order {
		b := m.bookings[id]
		if b.RideID == rideID {
			copy := *b
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockBookingRepository) ListByPassenger(ctx context.Context, passengerID string) ([]*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Booking, 0)
	for _, id := range m.order {
		b := m.bookings[id]
		if b.PassengerID == passengerID {
			copy := *b
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockBookingRepository) ApprovedSeatTotal(ctx context.Context, rideID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, b := range m.bookings {
		if b.RideID == rideID && b.Status == domain.BookingStatusApproved {
			total += b.SeatsRequested
		}
	}
	return total, nil
}

func (m *MockBookingRepository) CountApproved(ctx context.Context, rideID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, b := range m.bookings {
		if b.RideID == rideID && b.Status == domain.BookingStatusApproved {
			count++
		}
	}
	return count, nil
}

func (m *MockBookingRepository) UpdateStatus(ctx context.Context, id string, from, to domain.BookingStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	booking, ok := m.bookings[id]
	if !ok || booking.Status != from {
		return false, nil
	}
	booking.Status = to
	return true, nil
}

func (m *MockBookingRepository) ApproveWithReservation(ctx context.Context, id, rideID string, seats int) (bool, error) {
	atomic.AddInt32(&m.ApproveCallCount, 1)
	if m.ApproveError != nil {
		return false, m.ApproveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	booking, ok := m.bookings[id]
	if !ok || booking.Status != domain.BookingStatusPending {
		return false, nil
	}

	m.rideRepo.mu.Lock()
	reserved := m.rideRepo.reserveLocked(rideID, seats)
	m.rideRepo.mu.Unlock()
	if !reserved {
		return false, nil
	}

	booking.Status = domain.BookingStatusApproved
	booking.PaymentMethod = domain.PaymentMethodNone
	booking.PaymentStatus = domain.PaymentStatusPending
	return true, nil
}

func (m *MockBookingRepository) FinishWithRelease(ctx context.Context, id, rideID string, seats int, to domain.BookingStatus) (bool, error) {
	atomic.AddInt32(&m.FinishCallCount, 1)
	if m.FinishError != nil {
		return false, m.FinishError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	booking, ok := m.bookings[id]
	if !ok || booking.Status != domain.BookingStatusApproved {
		return false, nil
	}

	m.rideRepo.mu.Lock()
	released := m.rideRepo.releaseLocked(rideID, seats)
	m.rideRepo.mu.Unlock()
	if !released {
		return false, nil
	}

	booking.Status = to
	return true, nil
}

func (m *MockBookingRepository) SetPaymentMethod(ctx context.Context, id string, method domain.PaymentMethod) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	booking, ok := m.bookings[id]
	if !ok || booking.Status != domain.BookingStatusApproved || booking.PaymentStatus == domain.PaymentStatusCompleted {
		return false, nil
	}
	booking.PaymentMethod = method
	return true, nil
}

func (m *MockBookingRepository) CompletePayment(ctx context.Context, id, transactionID string, amount float64, collectedAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	booking, ok := m.bookings[id]
	if !ok || booking.PaymentStatus == domain.PaymentStatusCompleted {
		return false, nil
	}
	booking.PaymentStatus = domain.PaymentStatusCompleted
	booking.TransactionID = transactionID
	booking.AmountPaid = amount
	booking.PaymentCollectedAt = collectedAt
	return true, nil
}

func (m *MockBookingRepository) ListPaidByOwner(ctx context.Context, ownerID string) ([]*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Booking, 0)
	for _, id := range m.order {
		b := m.bookings[id]
		if b.PaymentStatus != domain.PaymentStatusCompleted {
			continue
		}
		ride := m.rideRepo.GetRide(b.RideID)
		if ride == nil || ride.OwnerID != ownerID {
			continue
		}
		copy := *b
		result = append(result, &copy)
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK INQUIRY REPOSITORY
// ──────────────────────────────────────────────

// MockInquiryRepository is a mock implementation of InquiryRepository.
type MockInquiryRepository struct {
	mu        sync.RWMutex
	inquiries map[string]*domain.Inquiry

	CreateCallCount int32
	CreateError     error
}

// NewMockInquiryRepository creates a new mock inquiry repository.
func NewMockInquiryRepository() *MockInquiryRepository {
	return &MockInquiryRepository{
		inquiries: make(map[string]*domain.Inquiry),
	}
}

// AddInquiry adds an inquiry to the mock repository.
func (m *MockInquiryRepository) AddInquiry(inquiry *domain.Inquiry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inquiries[inquiry.ID] = inquiry
}

func (m *MockInquiryRepository) Create(ctx context.Context, inquiry *domain.Inquiry) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inquiries[inquiry.ID] = inquiry
	return nil
}

func (m *MockInquiryRepository) GetByID(ctx context.Context, id string) (*domain.Inquiry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inquiry, ok := m.inquiries[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *inquiry
	return &copy, nil
}

func (m *MockInquiryRepository) ListAll(ctx context.Context) ([]*domain.Inquiry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Inquiry, 0, len(m.inquiries))
	for _, i := range m.inquiries {
		copy := *i
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockInquiryRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Inquiry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Inquiry, 0)
	for _, i := range m.inquiries {
		if i.UserID == userID {
			copy := *i
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockInquiryRepository) Resolve(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inquiry, ok := m.inquiries[id]
	if !ok || inquiry.Resolved {
		return false, nil
	}
	inquiry.Resolved = true
	return true, nil
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is an in-memory implementation of LockStoreInterface with
// SetNX semantics.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]bool

	AcquireRideCallCount  int32
	AcquireOwnerCallCount int32

	AcquireError error
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{locks: make(map[string]bool)}
}

func (m *MockLockStore) AcquireRideLock(ctx context.Context, rideID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireRideCallCount, 1)
	return m.acquire("ride:" + rideID)
}

func (m *MockLockStore) ReleaseRideLock(ctx context.Context, rideID string) error {
	m.release("ride:" + rideID)
	return nil
}

func (m *MockLockStore) AcquireOwnerLock(ctx context.Context, ownerID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireOwnerCallCount, 1)
	return m.acquire("owner:" + ownerID)
}

func (m *MockLockStore) ReleaseOwnerLock(ctx context.Context, ownerID string) error {
	m.release("owner:" + ownerID)
	return nil
}

// HoldRideLock takes the ride lock out of band, to simulate contention.
func (m *MockLockStore) HoldRideLock(rideID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locks["ride:"+rideID] = true
}

func (m *MockLockStore) acquire(key string) (bool, error) {
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[key] {
		return false, nil
	}
	m.locks[key] = true
	return true, nil
}

func (m *MockLockStore) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, key)
}

// ──────────────────────────────────────────────
// MOCK CACHE STORE
// ──────────────────────────────────────────────

// MockCacheStore is an in-memory implementation of CacheStoreInterface.
type MockCacheStore struct {
	mu    sync.RWMutex
	rides map[string]*redis.CachedRide

	SetCallCount        int32
	InvalidateCallCount int32
}

// NewMockCacheStore creates a new mock cache store.
func NewMockCacheStore() *MockCacheStore {
	return &MockCacheStore{rides: make(map[string]*redis.CachedRide)}
}

func (m *MockCacheStore) GetRide(ctx context.Context, rideID string) (*redis.CachedRide, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[rideID]
	if !ok {
		return nil, nil
	}
	copy := *ride
	return &copy, nil
}

func (m *MockCacheStore) SetRide(ctx context.Context, ride *redis.CachedRide) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *ride
	m.rides[ride.ID] = &copy
	return nil
}

func (m *MockCacheStore) InvalidateRide(ctx context.Context, rideID string) error {
	atomic.AddInt32(&m.InvalidateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rides, rideID)
	return nil
}

// Cached returns the cached snapshot for test assertions.
func (m *MockCacheStore) Cached(rideID string) *redis.CachedRide {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rides[rideID]
}

// Ensure mocks implement their interfaces.
var (
	_ repository.RideRepository    = (*MockRideRepository)(nil)
	_ repository.BookingRepository = (*MockBookingRepository)(nil)
	_ repository.InquiryRepository = (*MockInquiryRepository)(nil)
	_ redis.LockStoreInterface     = (*MockLockStore)(nil)
	_ redis.CacheStoreInterface    = (*MockCacheStore)(nil)
)
