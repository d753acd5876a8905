package app

import (
	"database/sql"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/config"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/handler"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/middleware"
	internalredis "github.com/pijushrbiswas/Ride-Hailing-Application/internal/redis"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	RideHandler    *handler.RideHandler
	DriverHandler  *handler.DriverHandler
	TripHandler    *handler.TripHandler
	PaymentHandler *handler.PaymentHandler
	EventsHandler  *handler.EventsHandler
	Idempotency    internalredis.IdempotencyStoreInterface
	RateLimits     internalredis.RateLimitStoreInterface
	DB             *sql.DB
	RedisClient    *redis.Client
	NewRelicApp    *newrelic.Application
	API            config.APIConfig
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS())

	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.GET("/health", func(c *gin.Context) {
		status := gin.H{"status": "ok"}
		code := 200
		if err := deps.DB.PingContext(c.Request.Context()); err != nil {
			status["database"] = err.Error()
			code = 503
		}
		if err := deps.RedisClient.Ping(c.Request.Context()).Err(); err != nil {
			status["redis"] = err.Error()
			code = 503
		}
		if code != 200 {
			status["status"] = "degraded"
		}
		c.JSON(code, status)
	})

	// General per-client cap; per-category limiters below draw from their
	// own buckets.
	v1 := router.Group("/v1", middleware.RateLimit(deps.RateLimits, "api", deps.API.GlobalLimit, deps.API.GlobalWindow))
	{
		rides := v1.Group("/rides")
		{
			rides.POST("",
				middleware.Idempotency(deps.Idempotency, "rides"),
				deps.RideHandler.CreateRide)
			rides.GET("", deps.RideHandler.ListRides)
			rides.GET("/:id", deps.RideHandler.GetRide)
			rides.POST("/:id/cancel", deps.RideHandler.CancelRide)
		}

		drivers := v1.Group("/drivers")
		{
			drivers.POST("", middleware.Idempotency(deps.Idempotency, "drivers"), deps.DriverHandler.CreateDriver)
			drivers.GET("", deps.DriverHandler.ListDrivers)
			drivers.GET("/:id", deps.DriverHandler.GetDriver)
			drivers.PUT("/:id/location",
				middleware.RateLimitByParam(deps.RateLimits, "driver_location", "id", deps.API.LocationLimit, deps.API.LocationWindow),
				deps.DriverHandler.UpdateLocation)
			drivers.PUT("/:id/status", deps.DriverHandler.UpdateStatus)
			drivers.POST("/:id/accept", middleware.Idempotency(deps.Idempotency, "accepts"), deps.DriverHandler.AcceptRide)
		}

		trips := v1.Group("/trips")
		{
			trips.GET("/:id", deps.TripHandler.GetTrip)
			trips.POST("/:id/start", deps.TripHandler.StartTrip)
			trips.POST("/:id/pause", deps.TripHandler.PauseTrip)
			trips.POST("/:id/end", middleware.Idempotency(deps.Idempotency, "trip_end"), deps.TripHandler.EndTrip)
			trips.POST("/:id/cancel", deps.TripHandler.CancelTrip)
			trips.GET("/:id/receipt", deps.TripHandler.GetReceipt)
		}

		payments := v1.Group("/payments")
		{
			payments.POST("",
				middleware.RateLimit(deps.RateLimits, "payment_create", deps.API.PaymentLimit, deps.API.PaymentWindow),
				middleware.Idempotency(deps.Idempotency, "payments"),
				deps.PaymentHandler.CreatePayment)
			payments.GET("/:id", deps.PaymentHandler.GetPayment)
			payments.POST("/webhook", deps.PaymentHandler.Webhook)
		}

		v1.GET("/events", deps.EventsHandler.Stream)
	}

	return router
}
