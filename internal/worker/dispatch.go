// Package worker holds the background loops: ride dispatch and outbox
// payment processing.
package worker

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/domain"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/repository"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/service"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/statemachine"
)

// Dispatch defaults.
const (
	DefaultDispatchInterval  = 2 * time.Second
	DefaultDispatchBatchSize = 10
	DefaultDispatchSubBatch  = 5
	DefaultMatchTimeout      = 60 * time.Second
	DefaultMaxRideAge        = 5 * time.Minute
)

// DispatchConfig tunes the dispatch loop.
type DispatchConfig struct {
	Interval     time.Duration
	BatchSize    int
	SubBatchSize int
	MatchTimeout time.Duration
	MaxRideAge   time.Duration
}

func (c *DispatchConfig) applyDefaults() {
	if c.Interval <= 0 {
		c.Interval = DefaultDispatchInterval
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultDispatchBatchSize
	}
	if c.SubBatchSize <= 0 {
		c.SubBatchSize = DefaultDispatchSubBatch
	}
	if c.MatchTimeout <= 0 {
		c.MatchTimeout = DefaultMatchTimeout
	}
	if c.MaxRideAge <= 0 {
		c.MaxRideAge = DefaultMaxRideAge
	}
}

// Dispatcher polls MATCHING rides and drives them to assignment or expiry.
type Dispatcher struct {
	rideRepo   repository.RideRepository
	matching   service.MatchingServiceInterface
	assignment *service.AssignmentService
	rides      *service.RideService
	cfg        DispatchConfig
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(
	rideRepo repository.RideRepository,
	matching service.MatchingServiceInterface,
	assignment *service.AssignmentService,
	rides *service.RideService,
	cfg DispatchConfig,
) *Dispatcher {
	cfg.applyDefaults()
	return &Dispatcher{
		rideRepo:   rideRepo,
		matching:   matching,
		assignment: assignment,
		rides:      rides,
		cfg:        cfg,
	}
}

// Run polls until the context is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := d.Tick(ctx); err != nil {
				log.Printf("[DISPATCH] tick failed: %v", err)
			}
		}
	}
}

// Tick runs one dispatch cycle. Rides older than the age cutoff are left to
// operator tooling; within the cutoff, a ride past the match timeout with no
// candidates expires.
func (d *Dispatcher) Tick(ctx context.Context) error {
	now := time.Now()
	rides, err := d.rideRepo.ListMatching(ctx, now.Add(-d.cfg.MaxRideAge), d.cfg.BatchSize)
	if err != nil {
		return err
	}

	for start := 0; start < len(rides); start += d.cfg.SubBatchSize {
		end := start + d.cfg.SubBatchSize
		if end > len(rides) {
			end = len(rides)
		}

		var wg sync.WaitGroup
		for _, ride := range rides[start:end] {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			wg.Add(1)
			go func(ride *domain.Ride) {
				defer wg.Done()
				d.dispatchRide(ctx, ride, now)
			}(ride)
		}
		wg.Wait()
	}
	return nil
}

// dispatchRide tries each candidate in distance order until one assignment
// sticks. Per-candidate losses (went offline, lost a race) move on to the
// next candidate; the ride stays MATCHING when all fail.
func (d *Dispatcher) dispatchRide(ctx context.Context, ride *domain.Ride, now time.Time) {
	candidates, err := d.matching.FindNearby(ctx, ride.PickupLat, ride.PickupLng, ride.Tier)
	if err != nil {
		log.Printf("[DISPATCH] candidate lookup failed for ride %s: %v", ride.ID, err)
		return
	}

	if len(candidates) == 0 {
		if now.Sub(ride.CreatedAt) > d.cfg.MatchTimeout {
			if _, err := d.rides.ExpireRide(ctx, ride.ID); err != nil {
				log.Printf("[DISPATCH] expire failed for ride %s: %v", ride.ID, err)
			}
		}
		return
	}

	for _, candidate := range candidates {
		_, err := d.assignment.Assign(ctx, ride.ID, candidate.DriverID)
		if err == nil {
			return
		}

		var invalid *statemachine.InvalidTransitionError
		switch {
		case errors.Is(err, service.ErrDriverUnavailable),
			errors.Is(err, service.ErrConcurrentlyAssigned),
			errors.Is(err, repository.ErrConflict),
			errors.Is(err, repository.ErrNotFound):
			continue
		case errors.Is(err, service.ErrRideNotMatchable), errors.As(err, &invalid):
			// Another writer moved the ride; nothing left to do.
			return
		default:
			log.Printf("[DISPATCH] assign failed for ride %s driver %s: %v", ride.ID, candidate.DriverID, err)
			return
		}
	}
}
