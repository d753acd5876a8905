package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/domain"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/service"
)

// TripHandler handles HTTP requests for trips.
type TripHandler struct {
	tripService *service.TripService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService *service.TripService) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// EndTripRequest is the HTTP request body for ending a trip. Omitted fields
// fall back to server-derived values.
type EndTripRequest struct {
	DistanceKm  *float64 `json:"distance_km,omitempty"`
	DurationSec *int64   `json:"duration_sec,omitempty"`
}

// CancelTripRequest is the HTTP request body for cancelling a trip.
type CancelTripRequest struct {
	Reason string `json:"reason,omitempty"`
}

// TripResponse is the HTTP representation of a trip.
type TripResponse struct {
	ID          string  `json:"id"`
	RideID      string  `json:"ride_id"`
	DriverID    string  `json:"driver_id"`
	Status      string  `json:"status"`
	StartedAt   string  `json:"started_at,omitempty"`
	EndedAt     string  `json:"ended_at,omitempty"`
	DistanceKm  float64 `json:"distance_km"`
	DurationSec int64   `json:"duration_sec"`
	BaseFare    float64 `json:"base_fare"`
	TotalFare   float64 `json:"total_fare"`
}

// ReceiptResponse is the HTTP representation of a trip receipt.
type ReceiptResponse struct {
	TripID          string  `json:"trip_id"`
	RideID          string  `json:"ride_id"`
	DriverID        string  `json:"driver_id"`
	DriverName      string  `json:"driver_name"`
	RiderID         string  `json:"rider_id"`
	PickupLat       float64 `json:"pickup_lat"`
	PickupLng       float64 `json:"pickup_lng"`
	DropLat         float64 `json:"drop_lat"`
	DropLng         float64 `json:"drop_lng"`
	Tier            string  `json:"tier"`
	DistanceKm      float64 `json:"distance_km"`
	DurationSec     int64   `json:"duration_sec"`
	BaseFare        float64 `json:"base_fare"`
	SurgeMultiplier float64 `json:"surge_multiplier"`
	TotalFare       float64 `json:"total_fare"`
	PaymentMethod   string  `json:"payment_method"`
	PaymentStatus   string  `json:"payment_status,omitempty"`
	StartedAt       string  `json:"started_at,omitempty"`
	EndedAt         string  `json:"ended_at"`
	GeneratedAt     string  `json:"generated_at"`
}

func tripResponse(trip *domain.Trip) TripResponse {
	resp := TripResponse{
		ID:          trip.ID,
		RideID:      trip.RideID,
		DriverID:    trip.DriverID,
		Status:      string(trip.Status),
		DistanceKm:  trip.DistanceKm,
		DurationSec: trip.DurationSec,
		BaseFare:    trip.BaseFare,
		TotalFare:   trip.TotalFare,
	}
	if !trip.StartedAt.IsZero() {
		resp.StartedAt = trip.StartedAt.Format(time.RFC3339)
	}
	if !trip.EndedAt.IsZero() {
		resp.EndedAt = trip.EndedAt.Format(time.RFC3339)
	}
	return resp
}

// GetTrip handles GET /v1/trips/:id
func (h *TripHandler) GetTrip(c *gin.Context) {
	trip, err := h.tripService.GetTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, tripResponse(trip))
}

// StartTrip handles POST /v1/trips/:id/start
func (h *TripHandler) StartTrip(c *gin.Context) {
	trip, err := h.tripService.StartTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, tripResponse(trip))
}

// PauseTrip handles POST /v1/trips/:id/pause
func (h *TripHandler) PauseTrip(c *gin.Context) {
	trip, err := h.tripService.PauseTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, tripResponse(trip))
}

// EndTrip handles POST /v1/trips/:id/end
func (h *TripHandler) EndTrip(c *gin.Context) {
	var req EndTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	trip, err := h.tripService.EndTrip(c.Request.Context(), service.EndTripRequest{
		TripID:      c.Param("id"),
		DistanceKm:  req.DistanceKm,
		DurationSec: req.DurationSec,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, tripResponse(trip))
}

// CancelTrip handles POST /v1/trips/:id/cancel
func (h *TripHandler) CancelTrip(c *gin.Context) {
	var req CancelTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	trip, err := h.tripService.CancelTrip(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, tripResponse(trip))
}

// GetReceipt handles GET /v1/trips/:id/receipt
func (h *TripHandler) GetReceipt(c *gin.Context) {
	receipt, err := h.tripService.Receipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := ReceiptResponse{
		TripID:          receipt.TripID,
		RideID:          receipt.RideID,
		DriverID:        receipt.DriverID,
		DriverName:      receipt.DriverName,
		RiderID:         receipt.RiderID,
		PickupLat:       receipt.PickupLat,
		PickupLng:       receipt.PickupLng,
		DropLat:         receipt.DropLat,
		DropLng:         receipt.DropLng,
		Tier:            string(receipt.Tier),
		DistanceKm:      receipt.DistanceKm,
		DurationSec:     receipt.DurationSec,
		BaseFare:        receipt.BaseFare,
		SurgeMultiplier: receipt.SurgeMultiplier,
		TotalFare:       receipt.TotalFare,
		PaymentMethod:   string(receipt.PaymentMethod),
		PaymentStatus:   string(receipt.PaymentStatus),
		EndedAt:         receipt.EndedAt.Format(time.RFC3339),
		GeneratedAt:     receipt.GeneratedAt.Format(time.RFC3339),
	}
	if !receipt.StartedAt.IsZero() {
		resp.StartedAt = receipt.StartedAt.Format(time.RFC3339)
	}
	respondJSON(c, http.StatusOK, resp)
}
