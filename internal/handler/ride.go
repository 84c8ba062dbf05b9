package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"highwaylink/internal/domain"
	"highwaylink/internal/middleware"
	"highwaylink/internal/repository"
	"highwaylink/internal/service"
)

// RideHandler handles HTTP requests for rides.
type RideHandler struct {
	lifecycle *service.RideLifecycleManager
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(lifecycle *service.RideLifecycleManager) *RideHandler {
	return &RideHandler{lifecycle: lifecycle}
}

// CreateRideRequest is the HTTP request body for publishing a ride.
type CreateRideRequest struct {
	Origin       string  `json:"origin"`
	Destination  string  `json:"destination"`
	StartTime    string  `json:"start_time"` // RFC 3339
	TotalSeats   int     `json:"total_seats"`
	PricePerSeat float64 `json:"price_per_seat"`
	Schedule     string  `json:"schedule,omitempty"` // ONETIME, DAILY, WEEKLY
}

// UpdateRideRequest is the HTTP request body for editing a ride.
type UpdateRideRequest struct {
	Origin       string  `json:"origin"`
	Destination  string  `json:"destination"`
	StartTime    string  `json:"start_time"`
	TotalSeats   int     `json:"total_seats"`
	PricePerSeat float64 `json:"price_per_seat"`
	Schedule     string  `json:"schedule,omitempty"`
}

// TripResponse is the HTTP representation of a passenger's trip.
type TripResponse struct {
	Ride    RideResponse    `json:"ride"`
	Booking BookingResponse `json:"booking"`
}

// CreateRide handles POST /v1/rides
func (h *RideHandler) CreateRide(c *gin.Context) {
	var req CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "start_time must be RFC 3339"})
		return
	}

	ride, err := h.lifecycle.Create(c.Request.Context(), middleware.IdentityFrom(c), service.CreateRideInput{
		Origin:       req.Origin,
		Destination:  req.Destination,
		StartTime:    startTime,
		TotalSeats:   req.TotalSeats,
		PricePerSeat: req.PricePerSeat,
		Schedule:     domain.Schedule(req.Schedule),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toRideResponse(ride))
}

// GetRide handles GET /v1/rides/:id
func (h *RideHandler) GetRide(c *gin.Context) {
	ride, err := h.lifecycle.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// ListRides handles GET /v1/rides
func (h *RideHandler) ListRides(c *gin.Context) {
	filter := repository.RideFilter{
		Origin:        c.Query("origin"),
		Destination:   c.Query("destination"),
		Date:          c.Query("date"),
		OnlyAvailable: c.Query("available") == "true",
	}

	rides, err := h.lifecycle.Search(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponses(rides))
}

// MyOffers handles GET /v1/rides/mine
func (h *RideHandler) MyOffers(c *gin.Context) {
	rides, err := h.lifecycle.MyOffers(c.Request.Context(), middleware.IdentityFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponses(rides))
}

// MyTrips handles GET /v1/trips
func (h *RideHandler) MyTrips(c *gin.Context) {
	trips, err := h.lifecycle.MyTrips(c.Request.Context(), middleware.IdentityFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]TripResponse, 0, len(trips))
	for _, trip := range trips {
		out = append(out, TripResponse{
			Ride:    toRideResponse(trip.Ride),
			Booking: toBookingResponse(trip.Booking),
		})
	}

	respondJSON(c, http.StatusOK, out)
}

// UpdateRide handles PUT /v1/rides/:id
func (h *RideHandler) UpdateRide(c *gin.Context) {
	var req UpdateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "start_time must be RFC 3339"})
		return
	}

	ride, err := h.lifecycle.Update(c.Request.Context(), c.Param("id"), middleware.IdentityFrom(c), service.UpdateRideInput{
		Origin:       req.Origin,
		Destination:  req.Destination,
		StartTime:    startTime,
		TotalSeats:   req.TotalSeats,
		PricePerSeat: req.PricePerSeat,
		Schedule:     domain.Schedule(req.Schedule),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// StartRide handles POST /v1/rides/:id/start
func (h *RideHandler) StartRide(c *gin.Context) {
	ride, err := h.lifecycle.Start(c.Request.Context(), c.Param("id"), middleware.IdentityFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// EndRide handles POST /v1/rides/:id/end
func (h *RideHandler) EndRide(c *gin.Context) {
	ride, err := h.lifecycle.End(c.Request.Context(), c.Param("id"), middleware.IdentityFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// CancelRide handles POST /v1/rides/:id/cancel
func (h *RideHandler) CancelRide(c *gin.Context) {
	ride, err := h.lifecycle.Cancel(c.Request.Context(), c.Param("id"), middleware.IdentityFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}
