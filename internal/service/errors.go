package service

import "errors"

var (
	// ErrNoDriverAvailable is returned when no candidate driver can be found.
	ErrNoDriverAvailable = errors.New("no driver available")

	// ErrRideNotMatchable is returned when a ride is no longer in MATCHING.
	ErrRideNotMatchable = errors.New("ride not matchable")

	// ErrDriverUnavailable is returned when the candidate driver is not AVAILABLE.
	ErrDriverUnavailable = errors.New("driver unavailable")

	// ErrConcurrentlyAssigned is returned when another assignment won the race.
	ErrConcurrentlyAssigned = errors.New("driver concurrently assigned")

	// ErrDriverNotAssignedToRide is returned when a driver acts on a ride not
	// assigned to them.
	ErrDriverNotAssignedToRide = errors.New("driver not assigned to this ride")

	// ErrInvalidRiderID is returned when rider ID is empty.
	ErrInvalidRiderID = errors.New("invalid rider id")

	// ErrInvalidRideID is returned when ride ID is empty.
	ErrInvalidRideID = errors.New("invalid ride id")

	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidTripID is returned when trip ID is empty.
	ErrInvalidTripID = errors.New("invalid trip id")

	// ErrInvalidPaymentID is returned when payment ID is empty.
	ErrInvalidPaymentID = errors.New("invalid payment id")

	// ErrInvalidPickupLocation is returned when pickup coordinates are out of range.
	ErrInvalidPickupLocation = errors.New("invalid pickup location")

	// ErrInvalidDropLocation is returned when drop coordinates are out of range.
	ErrInvalidDropLocation = errors.New("invalid drop location")

	// ErrInvalidLocation is returned when reported coordinates are out of range.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrInvalidTier is returned when the requested tier is unknown.
	ErrInvalidTier = errors.New("invalid tier")

	// ErrInvalidPaymentMethod is returned when the payment method is unknown.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")

	// ErrInvalidSurgeMultiplier is returned when the surge multiplier is below 1.0.
	ErrInvalidSurgeMultiplier = errors.New("invalid surge multiplier")

	// ErrInvalidDriverName is returned when driver name is empty.
	ErrInvalidDriverName = errors.New("invalid driver name")

	// ErrInvalidDriverPhone is returned when driver phone is empty.
	ErrInvalidDriverPhone = errors.New("invalid driver phone")

	// ErrInvalidDistance is returned when the reported distance is out of range.
	ErrInvalidDistance = errors.New("invalid distance")

	// ErrInvalidDuration is returned when the reported duration is out of range.
	ErrInvalidDuration = errors.New("invalid duration")

	// ErrRideCannotBeCancelled is returned when a ride with an active trip is
	// cancelled through the ride endpoint.
	ErrRideCannotBeCancelled = errors.New("ride cannot be cancelled in current state")

	// ErrTripNotEnded is returned when a payment is requested before the trip ends.
	ErrTripNotEnded = errors.New("trip not ended")

	// ErrReceiptNotAvailable is returned when a receipt is requested before the
	// trip ends. The receipt does not exist yet, so it surfaces as not found.
	ErrReceiptNotAvailable = errors.New("receipt not available")

	// ErrUnauthorizedWebhook is returned when a webhook signature does not verify.
	ErrUnauthorizedWebhook = errors.New("unauthorized webhook")

	// ErrMaxRetriesExceeded is returned when a payment has exhausted its retries.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")

	// ErrDependencyFailure is returned when a downstream dependency call fails.
	ErrDependencyFailure = errors.New("dependency failure")
)

func isValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

func isValidLongitude(lng float64) bool {
	return lng >= -180 && lng <= 180
}
