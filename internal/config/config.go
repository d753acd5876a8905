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
	Matching MatchingConfig
	Outbox   OutboxConfig
	Payment  PaymentConfig
	API      APIConfig
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

// DispatchConfig holds dispatch worker configuration.
type DispatchConfig struct {
	Interval     time.Duration
	BatchSize    int
	SubBatchSize int
	MatchTimeout time.Duration
	MaxRideAge   time.Duration
}

// MatchingConfig holds candidate search configuration.
type MatchingConfig struct {
	RadiusKm      float64
	Limit         int
	FreshnessTTL  time.Duration
	LocationFlush time.Duration
}

// OutboxConfig holds outbox processor configuration.
type OutboxConfig struct {
	Interval  time.Duration
	BatchSize int
}

// PaymentConfig holds payment pipeline configuration.
type PaymentConfig struct {
	PSPBaseURL     string
	PSPTimeout     time.Duration
	WebhookSecret  string
	MaxRetries     int
	Backoff        []time.Duration
	UseMockPSP     bool
	IdempotencyTTL time.Duration
}

// APIConfig holds rate-limit caps per endpoint category.
type APIConfig struct {
	GlobalLimit    int
	GlobalWindow   time.Duration
	LocationLimit  int
	LocationWindow time.Duration
	PaymentLimit   int
	PaymentWindow  time.Duration
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
			DBName:   getEnv("DB_NAME", "dispatch"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "dispatch-core"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Dispatch: DispatchConfig{
			Interval:     getDurationEnv("DISPATCH_INTERVAL", 2*time.Second),
			BatchSize:    getIntEnv("DISPATCH_BATCH_SIZE", 10),
			SubBatchSize: getIntEnv("DISPATCH_SUB_BATCH_SIZE", 5),
			MatchTimeout: getDurationEnv("DISPATCH_MATCH_TIMEOUT", 60*time.Second),
			MaxRideAge:   getDurationEnv("DISPATCH_MAX_RIDE_AGE", 5*time.Minute),
		},
		Matching: MatchingConfig{
			RadiusKm:      getFloatEnv("MATCH_RADIUS_KM", 5.0),
			Limit:         getIntEnv("MATCH_LIMIT", 5),
			FreshnessTTL:  getDurationEnv("GEO_FRESHNESS_TTL", 60*time.Second),
			LocationFlush: getDurationEnv("LOCATION_FLUSH_INTERVAL", time.Second),
		},
		Outbox: OutboxConfig{
			Interval:  getDurationEnv("OUTBOX_INTERVAL", 5*time.Second),
			BatchSize: getIntEnv("OUTBOX_BATCH_SIZE", 10),
		},
		Payment: PaymentConfig{
			PSPBaseURL:     getEnv("PSP_BASE_URL", "http://localhost:9090"),
			PSPTimeout:     getDurationEnv("PSP_TIMEOUT", 10*time.Second),
			WebhookSecret:  getEnv("PSP_WEBHOOK_SECRET", "dev-secret"),
			MaxRetries:     getIntEnv("PAYMENT_MAX_RETRIES", 3),
			Backoff:        []time.Duration{30 * time.Second, 120 * time.Second, 480 * time.Second},
			UseMockPSP:     getBoolEnv("PSP_USE_MOCK", true),
			IdempotencyTTL: getDurationEnv("IDEMPOTENCY_TTL", 300*time.Second),
		},
		API: APIConfig{
			GlobalLimit:    getIntEnv("RATE_GLOBAL_LIMIT", 100),
			GlobalWindow:   getDurationEnv("RATE_GLOBAL_WINDOW", 15*time.Minute),
			LocationLimit:  getIntEnv("RATE_LOCATION_LIMIT", 120),
			LocationWindow: getDurationEnv("RATE_LOCATION_WINDOW", time.Minute),
			PaymentLimit:   getIntEnv("RATE_PAYMENT_LIMIT", 10),
			PaymentWindow:  getDurationEnv("RATE_PAYMENT_WINDOW", 15*time.Minute),
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
