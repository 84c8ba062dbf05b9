package domain

import "time"

// RideStatus represents the current status of a ride.
type RideStatus string

const (
	RideStatusScheduled  RideStatus = "SCHEDULED"
	RideStatusInProgress RideStatus = "IN_PROGRESS"
	RideStatusCompleted  RideStatus = "COMPLETED"
)

// Schedule represents the recurrence of a published ride.
type Schedule string

const (
	ScheduleOneTime Schedule = "ONETIME"
	ScheduleDaily   Schedule = "DAILY"
	ScheduleWeekly  Schedule = "WEEKLY"
)

// Ride represents a published seat-sharing offer.
//
// SeatsAvailable must always equal TotalSeats minus the sum of
// SeatsRequested over APPROVED bookings for this ride. It is mutated only
// through the seat ledger.
type Ride struct {
	ID             string
	OwnerID        string
	Origin         string
	Destination    string
	StartTime      time.Time
	TotalSeats     int
	SeatsAvailable int
	PricePerSeat   float64
	Schedule       Schedule
	Status         RideStatus
	Active         bool // false = canceled (soft delete)
	CreatedAt      time.Time
}
