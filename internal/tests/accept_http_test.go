package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/handler"
)

// ──────────────────────────────────────────────
// DRIVER ACCEPT OVER HTTP
// ──────────────────────────────────────────────

func TestAcceptRide_ReturnsTripAndDriver(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	env := newTestEnv()
	env.seedAvailableDriver("driver-1", 37.7749, -122.4194)
	env.seedMatchingRide("ride-1", time.Now())
	if _, err := env.assignSvc.Assign(context.Background(), "ride-1", "driver-1"); err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	h := handler.NewDriverHandler(env.driverSvc, env.assignSvc)
	router := gin.New()
	router.POST("/v1/drivers/:id/accept", h.AcceptRide)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/drivers/driver-1/accept", strings.NewReader(`{"ride_id":"ride-1"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp handler.AcceptRideResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.Trip.RideID != "ride-1" || resp.Trip.DriverID != "driver-1" {
		t.Errorf("trip bound to %s/%s, want ride-1/driver-1", resp.Trip.RideID, resp.Trip.DriverID)
	}
	if resp.Trip.Status != "CREATED" {
		t.Errorf("expected trip CREATED, got %s", resp.Trip.Status)
	}
	if resp.Driver.ID != "driver-1" {
		t.Errorf("expected driver-1 in the response, got %q", resp.Driver.ID)
	}
	if resp.Driver.Status != "ON_TRIP" {
		t.Errorf("expected driver ON_TRIP, got %s", resp.Driver.Status)
	}
}
