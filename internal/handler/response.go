package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/repository"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/service"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/statemachine"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	var invalid *statemachine.InvalidTransitionError

	switch {
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrReceiptNotAvailable):
		return http.StatusNotFound

	case errors.As(err, &invalid),
		errors.Is(err, repository.ErrConflict),
		errors.Is(err, service.ErrConcurrentlyAssigned),
		errors.Is(err, service.ErrRideNotMatchable),
		errors.Is(err, service.ErrDriverUnavailable),
		errors.Is(err, service.ErrRideCannotBeCancelled),
		errors.Is(err, service.ErrTripNotEnded):
		return http.StatusConflict

	case errors.Is(err, service.ErrInvalidRiderID),
		errors.Is(err, service.ErrInvalidRideID),
		errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidTripID),
		errors.Is(err, service.ErrInvalidPaymentID),
		errors.Is(err, service.ErrInvalidPickupLocation),
		errors.Is(err, service.ErrInvalidDropLocation),
		errors.Is(err, service.ErrInvalidLocation),
		errors.Is(err, service.ErrInvalidTier),
		errors.Is(err, service.ErrInvalidPaymentMethod),
		errors.Is(err, service.ErrInvalidSurgeMultiplier),
		errors.Is(err, service.ErrInvalidDriverName),
		errors.Is(err, service.ErrInvalidDriverPhone),
		errors.Is(err, service.ErrInvalidDistance),
		errors.Is(err, service.ErrInvalidDuration):
		return http.StatusBadRequest

	case errors.Is(err, service.ErrDriverNotAssignedToRide):
		return http.StatusForbidden

	case errors.Is(err, service.ErrUnauthorizedWebhook):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrMaxRetriesExceeded):
		return http.StatusUnprocessableEntity

	case errors.Is(err, service.ErrNoDriverAvailable):
		return http.StatusServiceUnavailable

	case errors.Is(err, service.ErrDependencyFailure):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}
