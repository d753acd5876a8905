package domain

import "time"

// TripStatus represents the current status of a trip.
type TripStatus string

const (
	TripStatusCreated   TripStatus = "CREATED"
	TripStatusStarted   TripStatus = "STARTED"
	TripStatusPaused    TripStatus = "PAUSED"
	TripStatusEnded     TripStatus = "ENDED"
	TripStatusCancelled TripStatus = "CANCELLED"
)

// Trip represents an accepted ride in progress or completed.
//
// A driver holds at most one trip in {CREATED, STARTED, PAUSED} at any time.
type Trip struct {
	ID          string
	RideID      string
	DriverID    string
	Status      TripStatus
	StartedAt   time.Time // set on CREATED→STARTED
	EndedAt     time.Time // set on →ENDED
	DistanceKm  float64
	DurationSec int64
	BaseFare    float64 // pre-surge subtotal
	TotalFare   float64 // surge-multiplied total
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Receipt is the read-only join over trip, ride, driver and payment produced
// after a trip has ended.
type Receipt struct {
	TripID          string
	RideID          string
	DriverID        string
	DriverName      string
	RiderID         string
	PickupLat       float64
	PickupLng       float64
	DropLat         float64
	DropLng         float64
	Tier            RideTier
	DistanceKm      float64
	DurationSec     int64
	BaseFare        float64
	SurgeMultiplier float64
	TotalFare       float64
	PaymentMethod   PaymentMethod
	PaymentStatus   PaymentStatus
	StartedAt       time.Time
	EndedAt         time.Time
	GeneratedAt     time.Time
}
