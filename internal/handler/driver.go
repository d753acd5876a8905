package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/domain"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/service"
)

// DriverHandler handles HTTP requests for drivers.
type DriverHandler struct {
	driverService     *service.DriverService
	assignmentService *service.AssignmentService
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(driverService *service.DriverService, assignmentService *service.AssignmentService) *DriverHandler {
	return &DriverHandler{
		driverService:     driverService,
		assignmentService: assignmentService,
	}
}

// CreateDriverRequest is the HTTP request body for registering a driver.
type CreateDriverRequest struct {
	Name  string  `json:"name"`
	Phone string  `json:"phone"`
	Lat   float64 `json:"lat,omitempty"`
	Lng   float64 `json:"lng,omitempty"`
}

// UpdateLocationRequest is the HTTP request body for a position report.
type UpdateLocationRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// UpdateStatusRequest is the HTTP request body for a status change.
type UpdateStatusRequest struct {
	Status string `json:"status"` // OFFLINE or AVAILABLE
}

// AcceptRideRequest is the HTTP request body for a driver accepting a ride.
type AcceptRideRequest struct {
	RideID string `json:"ride_id"`
}

// AcceptRideResponse pairs the created trip with the driver's new state.
type AcceptRideResponse struct {
	Trip   TripResponse   `json:"trip"`
	Driver DriverResponse `json:"driver"`
}

// DriverResponse is the HTTP representation of a driver.
type DriverResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Phone     string  `json:"phone"`
	Status    string  `json:"status"`
	Rating    float64 `json:"rating"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	LocatedAt string  `json:"located_at,omitempty"`
}

func driverResponse(driver *domain.Driver) DriverResponse {
	resp := DriverResponse{
		ID:     driver.ID,
		Name:   driver.Name,
		Phone:  driver.Phone,
		Status: string(driver.Status),
		Rating: driver.Rating,
		Lat:    driver.Lat,
		Lng:    driver.Lng,
	}
	if driver.HasLocation() {
		resp.LocatedAt = driver.LocatedAt.Format(time.RFC3339)
	}
	return resp
}

// CreateDriver handles POST /v1/drivers
func (h *DriverHandler) CreateDriver(c *gin.Context) {
	var req CreateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	driver, err := h.driverService.CreateDriver(c.Request.Context(), service.CreateDriverRequest{
		Name:  req.Name,
		Phone: req.Phone,
		Lat:   req.Lat,
		Lng:   req.Lng,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, driverResponse(driver))
}

// GetDriver handles GET /v1/drivers/:id
func (h *DriverHandler) GetDriver(c *gin.Context) {
	driver, err := h.driverService.GetDriver(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, driverResponse(driver))
}

// ListDrivers handles GET /v1/drivers
func (h *DriverHandler) ListDrivers(c *gin.Context) {
	drivers, err := h.driverService.ListDrivers(c.Request.Context(), domain.DriverStatus(c.Query("status")), 100)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]DriverResponse, 0, len(drivers))
	for _, driver := range drivers {
		resp = append(resp, driverResponse(driver))
	}
	respondJSON(c, http.StatusOK, resp)
}

// UpdateLocation handles PUT /v1/drivers/:id/location
func (h *DriverHandler) UpdateLocation(c *gin.Context) {
	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.driverService.UpdateLocation(c.Request.Context(), c.Param("id"), req.Lat, req.Lng); err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"status": "accepted"})
}

// UpdateStatus handles PUT /v1/drivers/:id/status
func (h *DriverHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	driver, err := h.driverService.UpdateStatus(c.Request.Context(), c.Param("id"), domain.DriverStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, driverResponse(driver))
}

// AcceptRide handles POST /v1/drivers/:id/accept
func (h *DriverHandler) AcceptRide(c *gin.Context) {
	var req AcceptRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	trip, err := h.assignmentService.InitializeTrip(c.Request.Context(), req.RideID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	driver, err := h.driverService.GetDriver(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, AcceptRideResponse{
		Trip:   tripResponse(trip),
		Driver: driverResponse(driver),
	})
}
