package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"highwaylink/internal/domain"
	"highwaylink/internal/middleware"
	"highwaylink/internal/service"
)

// PaymentHandler handles HTTP requests for payments and earnings.
type PaymentHandler struct {
	tracker  *service.PaymentTracker
	earnings *service.EarningsService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(tracker *service.PaymentTracker, earnings *service.EarningsService) *PaymentHandler {
	return &PaymentHandler{tracker: tracker, earnings: earnings}
}

// SelectPaymentMethodRequest is the HTTP request body for choosing a
// payment method.
type SelectPaymentMethodRequest struct {
	Method string `json:"method"` // CASH, CARD
}

// CashCollectedRequest is the HTTP request body for a driver confirming
// a cash collection. The amount is taken as reported.
type CashCollectedRequest struct {
	Amount float64 `json:"amount"`
}

// CardSettlementRequest is the HTTP request body for a gateway callback.
type CardSettlementRequest struct {
	BookingID     string  `json:"booking_id"`
	TransactionID string  `json:"transaction_id"`
	Amount        float64 `json:"amount"`
}

// EarningsResponse is the HTTP representation of an earnings rollup.
type EarningsResponse struct {
	Cash  float64 `json:"cash"`
	Card  float64 `json:"card"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// SelectPaymentMethod handles POST /v1/bookings/:id/payment-method
func (h *PaymentHandler) SelectPaymentMethod(c *gin.Context) {
	var req SelectPaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	booking, err := h.tracker.SelectMethod(c.Request.Context(), c.Param("id"), middleware.IdentityFrom(c), domain.PaymentMethod(req.Method))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

// ConfirmCashCollected handles POST /v1/bookings/:id/cash-collected
func (h *PaymentHandler) ConfirmCashCollected(c *gin.Context) {
	var req CashCollectedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	booking, err := h.tracker.ConfirmCashCollected(c.Request.Context(), c.Param("id"), req.Amount, middleware.IdentityFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

// CardSettlement handles POST /v1/payments/card-settlement
//
// Called by the payment gateway, authenticated with a shared secret
// header rather than a user token.
func (h *PaymentHandler) CardSettlement(c *gin.Context) {
	var req CardSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	booking, err := h.tracker.RecordCardSettlement(c.Request.Context(), service.CardSettlementInput{
		BookingID:     req.BookingID,
		TransactionID: req.TransactionID,
		Amount:        req.Amount,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

// EarningsToday handles GET /v1/earnings/today
func (h *PaymentHandler) EarningsToday(c *gin.Context) {
	earnings, err := h.earnings.Today(c.Request.Context(), middleware.IdentityFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, EarningsResponse{
		Cash:  earnings.Cash,
		Card:  earnings.Card,
		Total: earnings.Total,
		Count: earnings.Count,
	})
}

// EarningsTotal handles GET /v1/earnings/total
func (h *PaymentHandler) EarningsTotal(c *gin.Context) {
	earnings, err := h.earnings.Total(c.Request.Context(), middleware.IdentityFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, EarningsResponse{
		Cash:  earnings.Cash,
		Card:  earnings.Card,
		Total: earnings.Total,
		Count: earnings.Count,
	})
}
