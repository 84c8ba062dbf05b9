package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"highwaylink/internal/middleware"
	"highwaylink/internal/service"
)

// BookingHandler handles HTTP requests for bookings.
type BookingHandler struct {
	coordinator *service.BookingCoordinator
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(coordinator *service.BookingCoordinator) *BookingHandler {
	return &BookingHandler{coordinator: coordinator}
}

// RequestBookingRequest is the HTTP request body for requesting seats.
type RequestBookingRequest struct {
	Seats int `json:"seats"`
}

// RequestBooking handles POST /v1/rides/:id/bookings
func (h *BookingHandler) RequestBooking(c *gin.Context) {
	var req RequestBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	booking, err := h.coordinator.Request(c.Request.Context(), c.Param("id"), middleware.IdentityFrom(c), req.Seats)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toBookingResponse(booking))
}

// GetBooking handles GET /v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	booking, err := h.coordinator.GetByID(c.Request.Context(), c.Param("id"), middleware.IdentityFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

// ListRideBookings handles GET /v1/rides/:id/bookings
func (h *BookingHandler) ListRideBookings(c *gin.Context) {
	bookings, err := h.coordinator.ListForRide(c.Request.Context(), c.Param("id"), middleware.IdentityFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponses(bookings))
}

// ListMyBookings handles GET /v1/bookings
func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	bookings, err := h.coordinator.ListMine(c.Request.Context(), middleware.IdentityFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponses(bookings))
}

// ApproveBooking handles POST /v1/bookings/:id/approve
func (h *BookingHandler) ApproveBooking(c *gin.Context) {
	booking, err := h.coordinator.Approve(c.Request.Context(), c.Param("id"), middleware.IdentityFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

// RejectBooking handles POST /v1/bookings/:id/reject
func (h *BookingHandler) RejectBooking(c *gin.Context) {
	booking, err := h.coordinator.Reject(c.Request.Context(), c.Param("id"), middleware.IdentityFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

// CancelBooking handles POST /v1/bookings/:id/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	booking, err := h.coordinator.Cancel(c.Request.Context(), c.Param("id"), middleware.IdentityFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

// RemoveBooking handles POST /v1/bookings/:id/remove
func (h *BookingHandler) RemoveBooking(c *gin.Context) {
	booking, err := h.coordinator.Remove(c.Request.Context(), c.Param("id"), middleware.IdentityFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}
