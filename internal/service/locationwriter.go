package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/repository"
)

// locationUpdate is one pending last-known-position write.
type locationUpdate struct {
	DriverID string
	Lat      float64
	Lng      float64
	At       time.Time
}

// LocationWriter flushes driver positions to the store asynchronously. The
// hot path only updates the geo index; the store write is coalesced here,
// last write per driver wins.
type LocationWriter struct {
	driverRepo repository.DriverRepository
	interval   time.Duration

	mu      sync.Mutex
	pending map[string]locationUpdate
}

// NewLocationWriter creates a new LocationWriter.
func NewLocationWriter(driverRepo repository.DriverRepository, interval time.Duration) *LocationWriter {
	if interval <= 0 {
		interval = time.Second
	}
	return &LocationWriter{
		driverRepo: driverRepo,
		interval:   interval,
		pending:    make(map[string]locationUpdate),
	}
}

// Enqueue records a position for the next flush, replacing any earlier
// pending position for the same driver.
func (w *LocationWriter) Enqueue(driverID string, lat, lng float64, at time.Time) {
	w.mu.Lock()
	w.pending[driverID] = locationUpdate{DriverID: driverID, Lat: lat, Lng: lng, At: at}
	w.mu.Unlock()
}

// Run flushes on the configured interval until the context is cancelled,
// then performs one final flush.
func (w *LocationWriter) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.Flush(context.Background())
			return
		case <-ticker.C:
			w.Flush(ctx)
		}
	}
}

// Flush writes all pending positions. A failed write is logged and dropped;
// the geo index already holds the fresher value.
func (w *LocationWriter) Flush(ctx context.Context) {
	w.mu.Lock()
	batch := w.pending
	w.pending = make(map[string]locationUpdate)
	w.mu.Unlock()

	for _, u := range batch {
		if err := w.driverRepo.UpdateLocation(ctx, u.DriverID, u.Lat, u.Lng, u.At); err != nil {
			log.Printf("[LOCATION] flush failed for driver %s: %v", u.DriverID, err)
		}
	}
}

// PendingCount returns the number of drivers with a queued position.
func (w *LocationWriter) PendingCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}
