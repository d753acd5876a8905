package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/domain"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationDriverAssigned NotificationType = "DRIVER_ASSIGNED"
	NotificationTripAccepted   NotificationType = "TRIP_ACCEPTED"
	NotificationTripEnded      NotificationType = "TRIP_ENDED"
	NotificationPaymentSuccess NotificationType = "PAYMENT_SUCCESS"
	NotificationPaymentFailed  NotificationType = "PAYMENT_FAILED"
	NotificationRideCancelled  NotificationType = "RIDE_CANCELLED"
	NotificationRideExpired    NotificationType = "RIDE_EXPIRED"
)

// Notification represents a notification to be sent.
type Notification struct {
	Type        NotificationType
	RecipientID string
	Title       string
	Message     string
	Data        map[string]any
	CreatedAt   time.Time
}

// NotificationService handles notification delivery. Delivery failures never
// fail the operation that triggered them.
type NotificationService struct{}

// NewNotificationService creates a new NotificationService.
func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// NotifyDriverAssigned notifies the rider that a driver has been assigned.
func (s *NotificationService) NotifyDriverAssigned(ctx context.Context, ride *domain.Ride, driver *domain.Driver) error {
	return s.send(ctx, Notification{
		Type:        NotificationDriverAssigned,
		RecipientID: ride.RiderID,
		Title:       "Driver Assigned",
		Message:     fmt.Sprintf("Driver %s has been assigned to your ride", driver.Name),
		Data: map[string]any{
			"ride_id":     ride.ID,
			"driver_id":   driver.ID,
			"driver_name": driver.Name,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyTripAccepted notifies the rider that the driver accepted and a trip
// now exists.
func (s *NotificationService) NotifyTripAccepted(ctx context.Context, trip *domain.Trip, riderID string) error {
	return s.send(ctx, Notification{
		Type:        NotificationTripAccepted,
		RecipientID: riderID,
		Title:       "Trip Accepted",
		Message:     "Your driver is on the way.",
		Data: map[string]any{
			"trip_id": trip.ID,
			"ride_id": trip.RideID,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyTripEnded notifies the rider that the trip has ended.
func (s *NotificationService) NotifyTripEnded(ctx context.Context, trip *domain.Trip, riderID string, fare float64) error {
	return s.send(ctx, Notification{
		Type:        NotificationTripEnded,
		RecipientID: riderID,
		Title:       "Trip Completed",
		Message:     fmt.Sprintf("Your trip has ended. Total fare: $%.2f", fare),
		Data: map[string]any{
			"trip_id":  trip.ID,
			"fare":     fare,
			"ended_at": trip.EndedAt,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyPaymentSuccess notifies the rider of a successful payment.
func (s *NotificationService) NotifyPaymentSuccess(ctx context.Context, payment *domain.Payment) error {
	return s.send(ctx, Notification{
		Type:        NotificationPaymentSuccess,
		RecipientID: payment.TripID,
		Title:       "Payment Successful",
		Message:     fmt.Sprintf("Payment of $%.2f was successful", payment.Amount),
		Data: map[string]any{
			"payment_id": payment.ID,
			"amount":     payment.Amount,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyPaymentFailed notifies the rider of a failed payment.
func (s *NotificationService) NotifyPaymentFailed(ctx context.Context, payment *domain.Payment) error {
	return s.send(ctx, Notification{
		Type:        NotificationPaymentFailed,
		RecipientID: payment.TripID,
		Title:       "Payment Failed",
		Message:     fmt.Sprintf("Payment of $%.2f failed: %s", payment.Amount, payment.FailureReason),
		Data: map[string]any{
			"payment_id": payment.ID,
			"amount":     payment.Amount,
			"reason":     payment.FailureReason,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyRideCancelled notifies the affected party about a cancellation.
func (s *NotificationService) NotifyRideCancelled(ctx context.Context, ride *domain.Ride, reason string) error {
	recipientID := ride.RiderID
	if ride.AssignedDriverID != "" {
		recipientID = ride.AssignedDriverID
	}
	return s.send(ctx, Notification{
		Type:        NotificationRideCancelled,
		RecipientID: recipientID,
		Title:       "Ride Cancelled",
		Message:     "The ride has been cancelled.",
		Data: map[string]any{
			"ride_id": ride.ID,
			"reason":  reason,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyRideExpired notifies the rider that matching gave up.
func (s *NotificationService) NotifyRideExpired(ctx context.Context, ride *domain.Ride) error {
	return s.send(ctx, Notification{
		Type:        NotificationRideExpired,
		RecipientID: ride.RiderID,
		Title:       "No Drivers Available",
		Message:     "We could not find a driver for your ride. Please try again.",
		Data: map[string]any{
			"ride_id": ride.ID,
		},
		CreatedAt: time.Now(),
	})
}

// send delivers a notification. The push/SMS integration is out of scope, so
// delivery is a structured log line.
func (s *NotificationService) send(_ context.Context, notification Notification) error {
	log.Printf("[NOTIFICATION] Type=%s, Recipient=%s, Title=%s, Message=%s",
		notification.Type, notification.RecipientID, notification.Title, notification.Message)
	return nil
}
