package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/app"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/config"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/eventbus"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/handler"
	internalRedis "github.com/pijushrbiswas/Ride-Hailing-Application/internal/redis"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/repository/postgres"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/service"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/worker"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/ws"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// New Relic first so the database and Redis clients can be instrumented.
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s", cfg.NewRelic.AppName)
		}
	}

	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	server, workers := wireServer(db, redisClient, nrApp, cfg)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	for _, run := range workers {
		wg.Add(1)
		go func(run func(context.Context)) {
			defer wg.Done()
			run(workerCtx)
		}(run)
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}

	stopWorkers()
	wg.Wait()

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server plus the
// background loops to run alongside it.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) (*http.Server, []func(context.Context)) {
	// Redis stores.
	geoStore := internalRedis.NewGeoStore(redisClient, cfg.Matching.FreshnessTTL)
	cacheStore := internalRedis.NewCacheStore(redisClient)
	idempotencyStore := internalRedis.NewIdempotencyStore(redisClient, cfg.Payment.IdempotencyTTL)
	rateLimitStore := internalRedis.NewRateLimitStore(redisClient)

	// Repositories.
	driverRepo := postgres.NewDriverRepository(db)
	rideRepo := postgres.NewRideRepository(db)
	tripRepo := postgres.NewTripRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)
	txRunner := postgres.NewTxRunner(db)

	// Event fan-out.
	bus := eventbus.New()
	hub := ws.NewHub(bus)

	// Services.
	notificationService := service.NewNotificationService()
	matchingService := service.NewMatchingService(geoStore, cfg.Matching.RadiusKm, cfg.Matching.Limit)
	locationWriter := service.NewLocationWriter(driverRepo, cfg.Matching.LocationFlush)
	rideService := service.NewRideService(rideRepo, tripRepo, txRunner, matchingService, bus, notificationService)
	driverService := service.NewDriverService(driverRepo, txRunner, geoStore, cacheStore, locationWriter, bus)
	assignmentService := service.NewAssignmentService(txRunner, geoStore, cacheStore, bus, notificationService)

	var psp service.PSP
	if cfg.Payment.UseMockPSP {
		psp = service.NewMockPSP()
	} else {
		psp = service.NewHTTPPSP(cfg.Payment.PSPBaseURL, cfg.Payment.PSPTimeout)
	}
	paymentService := service.NewPaymentService(
		paymentRepo, txRunner, psp, bus, notificationService,
		cfg.Payment.WebhookSecret, cfg.Payment.MaxRetries, cfg.Payment.Backoff,
	)
	tripService := service.NewTripService(
		tripRepo, rideRepo, driverRepo, paymentRepo, txRunner,
		geoStore, cacheStore, bus, notificationService, paymentService,
	)

	// Workers.
	dispatcher := worker.NewDispatcher(rideRepo, matchingService, assignmentService, rideService, worker.DispatchConfig{
		Interval:     cfg.Dispatch.Interval,
		BatchSize:    cfg.Dispatch.BatchSize,
		SubBatchSize: cfg.Dispatch.SubBatchSize,
		MatchTimeout: cfg.Dispatch.MatchTimeout,
		MaxRideAge:   cfg.Dispatch.MaxRideAge,
	})
	outboxProcessor := worker.NewOutboxProcessor(outboxRepo, paymentService, cfg.Outbox.Interval, cfg.Outbox.BatchSize)

	// Handlers.
	rideHandler := handler.NewRideHandler(rideService)
	driverHandler := handler.NewDriverHandler(driverService, assignmentService)
	tripHandler := handler.NewTripHandler(tripService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	eventsHandler := handler.NewEventsHandler(hub)

	router := app.NewRouter(app.RouterDeps{
		RideHandler:    rideHandler,
		DriverHandler:  driverHandler,
		TripHandler:    tripHandler,
		PaymentHandler: paymentHandler,
		EventsHandler:  eventsHandler,
		Idempotency:    idempotencyStore,
		RateLimits:     rateLimitStore,
		DB:             db,
		RedisClient:    redisClient,
		NewRelicApp:    nrApp,
		API:            cfg.API,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	workers := []func(context.Context){
		dispatcher.Run,
		outboxProcessor.Run,
		locationWriter.Run,
		hub.Run,
	}
	return server, workers
}
