package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NewRelic NewRelicConfig
	Dispatch DispatchConfig
	Tracking TrackingConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// DispatchConfig holds order-consolidation tuning. The defaults come from
// operational practice; they are exposed here rather than hard-coded so
// planners can tune them per deployment.
type DispatchConfig struct {
	ConsolidationRadiusKm float64 // Max dropoff spread within one cluster.
	WeightUtilWeight      float64 // Efficiency-score weight for weight utilization.
	VolumeUtilWeight      float64 // Efficiency-score weight for volume utilization.
	FuelRateWeight        float64 // Efficiency-score weight for fuel economy.
	RestrictionRulesPath  string  // Optional override for the embedded rule table.
}

// TrackingConfig holds real-time tracking engine tuning.
type TrackingConfig struct {
	HistoryCap      int           // Tracking points retained per vehicle.
	AlertCap        int           // Alerts retained in the in-memory list.
	StalenessWindow time.Duration // Last-point age beyond which a vehicle is inactive.
	SpeedLimitKmh   float64
	FuelWarnPct     float64
	FuelCriticalPct float64
	EvalInterval    time.Duration // Dwell/staleness evaluation tick.
	IngestInterval  time.Duration // Poll interval for an attached point source.
	IngestRateLimit float64       // Tracking-point requests per second per client.
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "fleetops"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "fleetops-dispatch"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Dispatch: DispatchConfig{
			ConsolidationRadiusKm: getFloatEnv("DISPATCH_CONSOLIDATION_RADIUS_KM", 50),
			WeightUtilWeight:      getFloatEnv("DISPATCH_WEIGHT_UTIL_WEIGHT", 0.4),
			VolumeUtilWeight:      getFloatEnv("DISPATCH_VOLUME_UTIL_WEIGHT", 0.4),
			FuelRateWeight:        getFloatEnv("DISPATCH_FUEL_RATE_WEIGHT", 0.2),
			RestrictionRulesPath:  getEnv("DISPATCH_RESTRICTION_RULES", ""),
		},
		Tracking: TrackingConfig{
			HistoryCap:      getIntEnv("TRACKING_HISTORY_CAP", 500),
			AlertCap:        getIntEnv("TRACKING_ALERT_CAP", 200),
			StalenessWindow: getDurationEnv("TRACKING_STALENESS_WINDOW", 10*time.Minute),
			SpeedLimitKmh:   getFloatEnv("TRACKING_SPEED_LIMIT_KMH", 80),
			FuelWarnPct:     getFloatEnv("TRACKING_FUEL_WARN_PCT", 20),
			FuelCriticalPct: getFloatEnv("TRACKING_FUEL_CRITICAL_PCT", 10),
			EvalInterval:    getDurationEnv("TRACKING_EVAL_INTERVAL", 10*time.Second),
			IngestInterval:  getDurationEnv("TRACKING_INGEST_INTERVAL", 30*time.Second),
			IngestRateLimit: getFloatEnv("TRACKING_INGEST_RATE_LIMIT", 50),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
