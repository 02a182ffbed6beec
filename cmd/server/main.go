package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"fleetops/internal/app"
	"fleetops/internal/config"
	"fleetops/internal/handler"
	internalRedis "fleetops/internal/redis"
	"fleetops/internal/repository/postgres"
	"fleetops/internal/restriction"
	"fleetops/internal/service"
)

func main() {
	// Load .env if present, then configuration.
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
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
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Wire dependencies.
	server, scheduler := wireServer(db, redisClient, nrApp, cfg)

	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	defer schedulerCancel()
	scheduler.Start(schedulerCtx)

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	scheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server and the
// tracking scheduler.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) (*http.Server, *service.Scheduler) {
	// Initialize Redis stores.
	locationStore := internalRedis.NewLocationStore(redisClient)
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	// Initialize repositories.
	orderRepo := postgres.NewOrderRepository(db)
	vehicleRepo := postgres.NewVehicleRepository(db)
	tripRepo := postgres.NewTripRepository(db)
	alertRepo := postgres.NewAlertRepository(db)

	// Load the restriction rule table. An empty path selects the embedded
	// defaults.
	table, err := restriction.LoadRules(cfg.Dispatch.RestrictionRulesPath)
	if err != nil {
		log.Fatalf("failed to load restriction rules: %v", err)
	}
	checker := restriction.NewChecker(table)

	// Initialize services.
	broker := service.NewAlertBroker()
	orderService := service.NewOrderService(orderRepo)
	vehicleService := service.NewVehicleService(vehicleRepo, locationStore, cacheStore)
	consolidationService := service.NewConsolidationService(db, cfg.Dispatch, checker, orderRepo, vehicleRepo, tripRepo, lockStore, cacheStore)
	routeService := service.NewRouteService(checker, nil)
	tripService := service.NewTripService(db, tripRepo, orderRepo, cacheStore)
	trackingService := service.NewTrackingService(cfg.Tracking, broker, locationStore, alertRepo)
	scheduler := service.NewScheduler(cfg.Tracking, trackingService, nil)

	// Initialize handlers.
	orderHandler := handler.NewOrderHandler(orderService)
	vehicleHandler := handler.NewVehicleHandler(vehicleService)
	dispatchHandler := handler.NewDispatchHandler(consolidationService, routeService)
	tripHandler := handler.NewTripHandler(tripService)
	trackingHandler := handler.NewTrackingHandler(trackingService)
	alertHandler := handler.NewAlertHandler(trackingService)
	geofenceHandler := handler.NewGeofenceHandler(trackingService)
	streamHandler := handler.NewStreamHandler(broker)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		OrderHandler:    orderHandler,
		VehicleHandler:  vehicleHandler,
		DispatchHandler: dispatchHandler,
		TripHandler:     tripHandler,
		TrackingHandler: trackingHandler,
		AlertHandler:    alertHandler,
		GeofenceHandler: geofenceHandler,
		StreamHandler:   streamHandler,
		RedisClient:     redisClient,
		NewRelicApp:     nrApp,
		IngestRateLimit: cfg.Tracking.IngestRateLimit,
	})

	// Create HTTP server.
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return server, scheduler
}
