package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"highwaylink/internal/domain"
	"highwaylink/internal/middleware"
	"highwaylink/internal/service"
)

// InquiryHandler handles HTTP requests for inquiries.
type InquiryHandler struct {
	inquiries *service.InquiryService
}

// NewInquiryHandler creates a new InquiryHandler.
func NewInquiryHandler(inquiries *service.InquiryService) *InquiryHandler {
	return &InquiryHandler{inquiries: inquiries}
}

// FileInquiryRequest is the HTTP request body for filing an inquiry.
type FileInquiryRequest struct {
	Kind    string `json:"kind"` // GENERAL, RIDE_CANCELLATION
	RideID  string `json:"ride_id,omitempty"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// FileInquiry handles POST /v1/inquiries
func (h *InquiryHandler) FileInquiry(c *gin.Context) {
	var req FileInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	kind := domain.InquiryKind(req.Kind)
	if kind == "" {
		kind = domain.InquiryKindGeneral
	}

	inquiry, err := h.inquiries.File(c.Request.Context(), middleware.IdentityFrom(c), kind, req.RideID, req.Subject, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toInquiryResponse(inquiry))
}

// GetInquiry handles GET /v1/inquiries/:id
func (h *InquiryHandler) GetInquiry(c *gin.Context) {
	inquiry, err := h.inquiries.GetByID(c.Request.Context(), c.Param("id"), middleware.IdentityFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toInquiryResponse(inquiry))
}

// ListInquiries handles GET /v1/inquiries
func (h *InquiryHandler) ListInquiries(c *gin.Context) {
	inquiries, err := h.inquiries.List(c.Request.Context(), middleware.IdentityFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]InquiryResponse, 0, len(inquiries))
	for _, inquiry := range inquiries {
		out = append(out, toInquiryResponse(inquiry))
	}

	respondJSON(c, http.StatusOK, out)
}

// ResolveInquiry handles POST /v1/inquiries/:id/resolve
func (h *InquiryHandler) ResolveInquiry(c *gin.Context) {
	inquiry, err := h.inquiries.Resolve(c.Request.Context(), c.Param("id"), middleware.IdentityFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toInquiryResponse(inquiry))
}
