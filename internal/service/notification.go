package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"highwaylink/internal/domain"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationBookingRequested NotificationType = "BOOKING_REQUESTED"
	NotificationBookingApproved  NotificationType = "BOOKING_APPROVED"
	NotificationBookingRejected  NotificationType = "BOOKING_REJECTED"
	NotificationBookingCanceled  NotificationType = "BOOKING_CANCELED"
	NotificationPassengerRemoved NotificationType = "PASSENGER_REMOVED"
	NotificationRideStarted      NotificationType = "RIDE_STARTED"
	NotificationRideEnded        NotificationType = "RIDE_ENDED"
	NotificationRideCanceled     NotificationType = "RIDE_CANCELED"
	NotificationPaymentConfirmed NotificationType = "PAYMENT_CONFIRMED"
	NotificationInquiryFiled     NotificationType = "INQUIRY_FILED"
)

// Notification represents a notification to be delivered.
type Notification struct {
	Type        NotificationType
	RecipientID string
	Title       string
	Message     string
	Data        map[string]interface{}
	CreatedAt   time.Time
}

// NotificationService hands events to the notification collaborator.
// Delivery mechanics (push, email, websockets) live outside this engine;
// this is the seam they plug into.
type NotificationService struct{}

// NewNotificationService creates a new NotificationService.
func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// NotifyBookingRequested notifies the owner about a new booking request.
func (s *NotificationService) NotifyBookingRequested(ctx context.Context, ride *domain.Ride, booking *domain.Booking) error {
	return s.send(ctx, Notification{
		Type:        NotificationBookingRequested,
		RecipientID: ride.OwnerID,
		Title:       "New Booking Request",
		Message:     fmt.Sprintf("New request for %d seat(s) on your ride %s to %s", booking.SeatsRequested, ride.Origin, ride.Destination),
		Data: map[string]interface{}{
			"ride_id":    ride.ID,
			"booking_id": booking.ID,
			"seats":      booking.SeatsRequested,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyBookingDecision notifies the passenger that their request was
// approved or rejected.
func (s *NotificationService) NotifyBookingDecision(ctx context.Context, ride *domain.Ride, booking *domain.Booking, approved bool) error {
	kind := NotificationBookingRejected
	message := fmt.Sprintf("Your request for ride %s to %s has been rejected.", ride.Origin, ride.Destination)
	if approved {
		kind = NotificationBookingApproved
		message = fmt.Sprintf("Your request for ride %s to %s has been accepted!", ride.Origin, ride.Destination)
	}

	return s.send(ctx, Notification{
		Type:        kind,
		RecipientID: booking.PassengerID,
		Title:       "Booking Update",
		Message:     message,
		Data: map[string]interface{}{
			"ride_id":    ride.ID,
			"booking_id": booking.ID,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyBookingCanceled notifies the owner that a passenger withdrew.
func (s *NotificationService) NotifyBookingCanceled(ctx context.Context, ride *domain.Ride, booking *domain.Booking) error {
	return s.send(ctx, Notification{
		Type:        NotificationBookingCanceled,
		RecipientID: ride.OwnerID,
		Title:       "Booking Canceled",
		Message:     "A passenger canceled their booking on your ride",
		Data: map[string]interface{}{
			"ride_id":    ride.ID,
			"booking_id": booking.ID,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyPassengerRemoved notifies a passenger they were removed.
func (s *NotificationService) NotifyPassengerRemoved(ctx context.Context, ride *domain.Ride, booking *domain.Booking) error {
	return s.send(ctx, Notification{
		Type:        NotificationPassengerRemoved,
		RecipientID: booking.PassengerID,
		Title:       "Removed From Ride",
		Message:     fmt.Sprintf("You were removed from the ride %s to %s", ride.Origin, ride.Destination),
		Data: map[string]interface{}{
			"ride_id":    ride.ID,
			"booking_id": booking.ID,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyRideStarted notifies approved passengers that the ride started.
func (s *NotificationService) NotifyRideStarted(ctx context.Context, ride *domain.Ride, passengerIDs []string) error {
	for _, passengerID := range passengerIDs {
		s.send(ctx, Notification{
			Type:        NotificationRideStarted,
			RecipientID: passengerID,
			Title:       "Ride Started",
			Message:     "The ride has started! Please have your payment ready.",
			Data:        map[string]interface{}{"ride_id": ride.ID},
			CreatedAt:   time.Now(),
		})
	}
	return nil
}

// NotifyRideEnded notifies approved passengers that the ride completed.
func (s *NotificationService) NotifyRideEnded(ctx context.Context, ride *domain.Ride, passengerIDs []string) error {
	for _, passengerID := range passengerIDs {
		s.send(ctx, Notification{
			Type:        NotificationRideEnded,
			RecipientID: passengerID,
			Title:       "Ride Completed",
			Message:     "The ride has ended. Thanks for traveling with us.",
			Data:        map[string]interface{}{"ride_id": ride.ID},
			CreatedAt:   time.Now(),
		})
	}
	return nil
}

// NotifyRideCanceled notifies approved passengers about a cancellation.
func (s *NotificationService) NotifyRideCanceled(ctx context.Context, ride *domain.Ride, passengerIDs []string) error {
	for _, passengerID := range passengerIDs {
		s.send(ctx, Notification{
			Type:        NotificationRideCanceled,
			RecipientID: passengerID,
			Title:       "Ride Canceled",
			Message:     "The ride has been canceled by the owner.",
			Data:        map[string]interface{}{"ride_id": ride.ID},
			CreatedAt:   time.Now(),
		})
	}
	return nil
}

// NotifyPaymentConfirmed notifies the passenger their payment settled.
func (s *NotificationService) NotifyPaymentConfirmed(ctx context.Context, booking *domain.Booking) error {
	return s.send(ctx, Notification{
		Type:        NotificationPaymentConfirmed,
		RecipientID: booking.PassengerID,
		Title:       "Payment Confirmed",
		Message:     fmt.Sprintf("Payment of %.2f for your ride has been confirmed.", booking.AmountPaid),
		Data: map[string]interface{}{
			"booking_id": booking.ID,
			"amount":     booking.AmountPaid,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyInquiryFiled notifies admins about a new inquiry.
func (s *NotificationService) NotifyInquiryFiled(ctx context.Context, inquiry *domain.Inquiry) error {
	return s.send(ctx, Notification{
		Type:        NotificationInquiryFiled,
		RecipientID: "admin",
		Title:       "New Inquiry",
		Message:     fmt.Sprintf("New inquiry from user %s: %s", inquiry.UserID, inquiry.Subject),
		Data: map[string]interface{}{
			"inquiry_id": inquiry.ID,
			"kind":       string(inquiry.Kind),
		},
		CreatedAt: time.Now(),
	})
}

// send delivers a notification. Currently logs; a real deployment would
// hand off to the external notification system here.
func (s *NotificationService) send(ctx context.Context, n Notification) error {
	log.Printf("[NOTIFICATION] type=%s recipient=%s title=%q message=%q", n.Type, n.RecipientID, n.Title, n.Message)
	return nil
}
