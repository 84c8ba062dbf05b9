package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"highwaylink/internal/domain"
	"highwaylink/internal/repository"
	"highwaylink/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidRideID),
		errors.Is(err, service.ErrInvalidBookingID),
		errors.Is(err, service.ErrInvalidUserID),
		errors.Is(err, service.ErrInvalidSeats),
		errors.Is(err, service.ErrInvalidRide),
		errors.Is(err, service.ErrInvalidPaymentMethod),
		errors.Is(err, service.ErrInvalidInquiry):
		return http.StatusBadRequest

	// Authorization errors
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusForbidden

	// Conflict errors - the request is well formed but the state refuses it
	case errors.Is(err, service.ErrDuplicateRequest),
		errors.Is(err, service.ErrRideNotBookable),
		errors.Is(err, service.ErrSeatsExhausted),
		errors.Is(err, service.ErrAlreadyTerminal),
		errors.Is(err, service.ErrOutsideStartWindow),
		errors.Is(err, service.ErrOwnerAlreadyDriving),
		errors.Is(err, service.ErrRequiresMediatedCancellation),
		errors.Is(err, service.ErrRideNotInProgress),
		errors.Is(err, service.ErrRideNotCancelable),
		errors.Is(err, service.ErrRideAlreadyStarted),
		errors.Is(err, service.ErrNoApprovedPassengers),
		errors.Is(err, service.ErrBookingNotApproved),
		errors.Is(err, service.ErrPaymentMethodNotSet),
		errors.Is(err, service.ErrInquiryResolved):
		return http.StatusConflict

	// Contention - safe to retry
	case errors.Is(err, service.ErrRideLocked):
		return http.StatusServiceUnavailable

	// Default to internal server error; seat invariant violations land
	// here on purpose.
	default:
		return http.StatusInternalServerError
	}
}

// RideResponse is the HTTP representation of a ride.
type RideResponse struct {
	ID             string  `json:"id"`
	OwnerID        string  `json:"owner_id"`
	Origin         string  `json:"origin"`
	Destination    string  `json:"destination"`
	StartTime      string  `json:"start_time"`
	TotalSeats     int     `json:"total_seats"`
	SeatsAvailable int     `json:"seats_available"`
	PricePerSeat   float64 `json:"price_per_seat"`
	Schedule       string  `json:"schedule"`
	Status         string  `json:"status"`
	Active         bool    `json:"active"`
}

func toRideResponse(ride *domain.Ride) RideResponse {
	return RideResponse{
		ID:             ride.ID,
		OwnerID:        ride.OwnerID,
		Origin:         ride.Origin,
		Destination:    ride.Destination,
		StartTime:      ride.StartTime.Format(time.RFC3339),
		TotalSeats:     ride.TotalSeats,
		SeatsAvailable: ride.SeatsAvailable,
		PricePerSeat:   ride.PricePerSeat,
		Schedule:       string(ride.Schedule),
		Status:         string(ride.Status),
		Active:         ride.Active,
	}
}

func toRideResponses(rides []*domain.Ride) []RideResponse {
	out := make([]RideResponse, 0, len(rides))
	for _, ride := range rides {
		out = append(out, toRideResponse(ride))
	}
	return out
}

// BookingResponse is the HTTP representation of a booking.
type BookingResponse struct {
	ID                 string  `json:"id"`
	RideID             string  `json:"ride_id"`
	PassengerID        string  `json:"passenger_id"`
	SeatsRequested     int     `json:"seats_requested"`
	Status             string  `json:"status"`
	PaymentMethod      string  `json:"payment_method"`
	PaymentStatus      string  `json:"payment_status"`
	TransactionID      string  `json:"transaction_id,omitempty"`
	AmountPaid         float64 `json:"amount_paid"`
	RequestedAt        string  `json:"requested_at"`
	PaymentCollectedAt string  `json:"payment_collected_at,omitempty"`
}

func toBookingResponse(booking *domain.Booking) BookingResponse {
	resp := BookingResponse{
		ID:             booking.ID,
		RideID:         booking.RideID,
		PassengerID:    booking.PassengerID,
		SeatsRequested: booking.SeatsRequested,
		Status:         string(booking.Status),
		PaymentMethod:  string(booking.PaymentMethod),
		PaymentStatus:  string(booking.PaymentStatus),
		TransactionID:  booking.TransactionID,
		AmountPaid:     booking.AmountPaid,
		RequestedAt:    booking.RequestedAt.Format(time.RFC3339),
	}
	if !booking.PaymentCollectedAt.IsZero() {
		resp.PaymentCollectedAt = booking.PaymentCollectedAt.Format(time.RFC3339)
	}
	return resp
}

func toBookingResponses(bookings []*domain.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(bookings))
	for _, booking := range bookings {
		out = append(out, toBookingResponse(booking))
	}
	return out
}

// InquiryResponse is the HTTP representation of an inquiry.
type InquiryResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	RideID    string `json:"ride_id,omitempty"`
	Kind      string `json:"kind"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
	Resolved  bool   `json:"resolved"`
	CreatedAt string `json:"created_at"`
}

func toInquiryResponse(inquiry *domain.Inquiry) InquiryResponse {
	return InquiryResponse{
		ID:        inquiry.ID,
		UserID:    inquiry.UserID,
		RideID:    inquiry.RideID,
		Kind:      string(inquiry.Kind),
		Subject:   inquiry.Subject,
		Message:   inquiry.Message,
		Resolved:  inquiry.Resolved,
		CreatedAt: inquiry.CreatedAt.Format(time.RFC3339),
	}
}
