package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/domain"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/service"
)

// RideHandler handles HTTP requests for rides.
type RideHandler struct {
	rideService *service.RideService
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(rideService *service.RideService) *RideHandler {
	return &RideHandler{rideService: rideService}
}

// CreateRideRequest is the HTTP request body for creating a ride.
type CreateRideRequest struct {
	RiderID         string  `json:"rider_id"`
	PickupLat       float64 `json:"pickup_lat"`
	PickupLng       float64 `json:"pickup_lng"`
	DropLat         float64 `json:"drop_lat"`
	DropLng         float64 `json:"drop_lng"`
	Tier            string  `json:"tier"`
	PaymentMethod   string  `json:"payment_method,omitempty"` // CASH, CARD, WALLET, UPI
	SurgeMultiplier float64 `json:"surge_multiplier,omitempty"`
}

// CancelRideRequest is the HTTP request body for cancelling a ride.
type CancelRideRequest struct {
	Reason string `json:"reason,omitempty"`
}

// NearbyCandidate is one advisory matching candidate in the intake response.
type NearbyCandidate struct {
	DriverID   string  `json:"driver_id"`
	DistanceKm float64 `json:"distance_km"`
}

// RideResponse is the HTTP representation of a ride.
type RideResponse struct {
	ID               string            `json:"id"`
	RiderID          string            `json:"rider_id"`
	PickupLat        float64           `json:"pickup_lat"`
	PickupLng        float64           `json:"pickup_lng"`
	DropLat          float64           `json:"drop_lat"`
	DropLng          float64           `json:"drop_lng"`
	Tier             string            `json:"tier"`
	PaymentMethod    string            `json:"payment_method"`
	Status           string            `json:"status"`
	SurgeMultiplier  float64           `json:"surge_multiplier"`
	AssignedDriverID string            `json:"assigned_driver_id,omitempty"`
	AssignedAt       string            `json:"assigned_at,omitempty"`
	CancelledAt      string            `json:"cancelled_at,omitempty"`
	CancelReason     string            `json:"cancel_reason,omitempty"`
	CreatedAt        string            `json:"created_at"`
	Candidates       []NearbyCandidate `json:"candidates,omitempty"`
}

func rideResponse(ride *domain.Ride) RideResponse {
	resp := RideResponse{
		ID:              ride.ID,
		RiderID:         ride.RiderID,
		PickupLat:       ride.PickupLat,
		PickupLng:       ride.PickupLng,
		DropLat:         ride.DropLat,
		DropLng:         ride.DropLng,
		Tier:            string(ride.Tier),
		PaymentMethod:   string(ride.PaymentMethod),
		Status:          string(ride.Status),
		SurgeMultiplier: ride.SurgeMultiplier,
		CreatedAt:       ride.CreatedAt.Format(time.RFC3339),
	}
	if ride.AssignedDriverID != "" {
		resp.AssignedDriverID = ride.AssignedDriverID
	}
	if !ride.AssignedAt.IsZero() {
		resp.AssignedAt = ride.AssignedAt.Format(time.RFC3339)
	}
	if !ride.CancelledAt.IsZero() {
		resp.CancelledAt = ride.CancelledAt.Format(time.RFC3339)
		resp.CancelReason = ride.CancelReason
	}
	return resp
}

// CreateRide handles POST /v1/rides
func (h *RideHandler) CreateRide(c *gin.Context) {
	var req CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.rideService.CreateRide(c.Request.Context(), service.CreateRideRequest{
		RiderID:         req.RiderID,
		PickupLat:       req.PickupLat,
		PickupLng:       req.PickupLng,
		DropLat:         req.DropLat,
		DropLng:         req.DropLng,
		Tier:            domain.RideTier(req.Tier),
		PaymentMethod:   domain.PaymentMethod(req.PaymentMethod),
		SurgeMultiplier: req.SurgeMultiplier,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	resp := rideResponse(result.Ride)
	for _, cand := range result.Candidates {
		resp.Candidates = append(resp.Candidates, NearbyCandidate{
			DriverID:   cand.DriverID,
			DistanceKm: cand.DistanceKm,
		})
	}
	respondJSON(c, http.StatusCreated, resp)
}

// GetRide handles GET /v1/rides/:id
func (h *RideHandler) GetRide(c *gin.Context) {
	ride, err := h.rideService.GetRide(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, rideResponse(ride))
}

// ListRides handles GET /v1/rides
func (h *RideHandler) ListRides(c *gin.Context) {
	rides, err := h.rideService.ListRides(c.Request.Context(), domain.RideStatus(c.Query("status")), 100)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]RideResponse, 0, len(rides))
	for _, ride := range rides {
		resp = append(resp, rideResponse(ride))
	}
	respondJSON(c, http.StatusOK, resp)
}

// CancelRide handles POST /v1/rides/:id/cancel
func (h *RideHandler) CancelRide(c *gin.Context) {
	var req CancelRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.rideService.CancelRide(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, rideResponse(ride))
}
