package domain

import "time"

// DriverStatus represents the current status of a driver.
type DriverStatus string

const (
	DriverStatusOffline   DriverStatus = "OFFLINE"
	DriverStatusAvailable DriverStatus = "AVAILABLE"
	DriverStatusOnTrip    DriverStatus = "ON_TRIP"
)

// Driver represents a driver in the system.
//
// A driver is present in the geospatial index if and only if its status is
// AVAILABLE; the store row remains authoritative for status.
type Driver struct {
	ID        string
	Name      string
	Phone     string
	Status    DriverStatus
	Rating    float64 // [0.0, 5.0]
	Lat       float64
	Lng       float64
	LocatedAt time.Time // zero when no location has been reported yet
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasLocation reports whether the driver has ever reported a coordinate.
func (d *Driver) HasLocation() bool {
	return !d.LocatedAt.IsZero()
}
