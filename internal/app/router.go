package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"fleetops/internal/handler"
	"fleetops/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	OrderHandler    *handler.OrderHandler
	VehicleHandler  *handler.VehicleHandler
	DispatchHandler *handler.DispatchHandler
	TripHandler     *handler.TripHandler
	TrackingHandler *handler.TrackingHandler
	AlertHandler    *handler.AlertHandler
	GeofenceHandler *handler.GeofenceHandler
	StreamHandler   *handler.StreamHandler
	RedisClient     *redis.Client
	NewRelicApp     *newrelic.Application
	IngestRateLimit float64
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Order routes.
		orders := v1.Group("/orders")
		{
			orders.POST("", deps.OrderHandler.CreateOrder)
			orders.GET("", deps.OrderHandler.GetAll)
			orders.GET("/:id", deps.OrderHandler.GetOrder)
		}

		// Vehicle routes.
		vehicles := v1.Group("/vehicles")
		{
			vehicles.POST("", deps.VehicleHandler.RegisterVehicle)
			vehicles.GET("", deps.VehicleHandler.GetAll)
			vehicles.GET("/nearby", deps.VehicleHandler.GetNearby)
			vehicles.GET("/:id", deps.VehicleHandler.GetVehicle)
			vehicles.PUT("/:id/status", deps.VehicleHandler.UpdateStatus)
		}

		// Dispatch routes.
		dispatch := v1.Group("/dispatch")
		{
			dispatch.POST("/consolidate", deps.DispatchHandler.Consolidate)
			dispatch.POST("/routes", deps.DispatchHandler.CalculateRoute)
		}

		// Trip routes.
		trips := v1.Group("/trips")
		{
			trips.GET("", deps.TripHandler.GetAll)
			trips.GET("/:id", deps.TripHandler.GetTrip)
			trips.POST("/:id/start", deps.TripHandler.StartTrip)
			trips.POST("/:id/complete", deps.TripHandler.CompleteTrip)
		}

		// Tracking routes. Point ingestion is rate limited per client.
		tracking := v1.Group("/tracking")
		{
			tracking.POST("/points", middleware.RateLimitMiddleware(deps.IngestRateLimit), deps.TrackingHandler.IngestPoint)
			tracking.GET("/stats", deps.TrackingHandler.GetFleetStatistics)
			tracking.GET("/vehicles", deps.TrackingHandler.GetActiveVehicles)
			tracking.GET("/vehicles/:id/history", deps.TrackingHandler.GetHistory)
			tracking.GET("/vehicles/:id/statistics", deps.TrackingHandler.GetStatistics)
			tracking.GET("/stream", deps.StreamHandler.Stream)
		}

		// Alert routes.
		alerts := v1.Group("/alerts")
		{
			alerts.GET("", deps.AlertHandler.GetRecent)
			alerts.GET("/unacknowledged", deps.AlertHandler.GetUnacknowledged)
			alerts.POST("/:id/acknowledge", deps.AlertHandler.Acknowledge)
		}

		// Geofence routes.
		geofences := v1.Group("/geofences")
		{
			geofences.POST("", deps.GeofenceHandler.CreateGeofence)
			geofences.GET("", deps.GeofenceHandler.GetAll)
			geofences.DELETE("/:id", deps.GeofenceHandler.DeleteGeofence)
		}
	}

	return router
}
