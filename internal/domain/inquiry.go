package domain

import "time"

// InquiryKind classifies a support inquiry.
type InquiryKind string

const (
	InquiryKindGeneral          InquiryKind = "GENERAL"
	InquiryKindRideCancellation InquiryKind = "RIDE_CANCELLATION"
)

// Inquiry is a support ticket. Canceling a ride that already has approved
// passengers is routed through an inquiry rather than resolved by the
// engine automatically.
type Inquiry struct {
	ID        string
	UserID    string
	RideID    string // optional; set for ride cancellation inquiries
	Kind      InquiryKind
	Subject   string
	Message   string
	Resolved  bool
	CreatedAt time.Time
}
