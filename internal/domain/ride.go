package domain

import "time"

// RideStatus represents the current status of a ride.
type RideStatus string

const (
	RideStatusRequested      RideStatus = "REQUESTED"
	RideStatusMatching       RideStatus = "MATCHING"
	RideStatusDriverAssigned RideStatus = "DRIVER_ASSIGNED"
	RideStatusCompleted      RideStatus = "COMPLETED"
	RideStatusCancelled      RideStatus = "CANCELLED"
	RideStatusExpired        RideStatus = "EXPIRED"
)

// RideTier represents the service tier requested for a ride.
type RideTier string

const (
	RideTierEconomy RideTier = "ECONOMY"
	RideTierPremium RideTier = "PREMIUM"
	RideTierLuxury  RideTier = "LUXURY"
)

// PaymentMethod represents the payment method for a ride.
type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "CARD"
	PaymentMethodCash   PaymentMethod = "CASH"
	PaymentMethodWallet PaymentMethod = "WALLET"
	PaymentMethodUPI    PaymentMethod = "UPI"
)

// Ride represents a ride request in the system.
//
// AssignedDriverID is unique across live rides: one driver holds at most one
// assignment at a time.
type Ride struct {
	ID               string
	RiderID          string
	PickupLat        float64
	PickupLng        float64
	DropLat          float64
	DropLng          float64
	Tier             RideTier
	PaymentMethod    PaymentMethod
	Status           RideStatus
	SurgeMultiplier  float64 // externally supplied, >= 1.0
	AssignedDriverID string
	AssignedAt       time.Time
	CancelledAt      time.Time
	CancelReason     string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
