package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	NATS        NATSConfig
	Provider    ProviderConfig
	Location    LocationConfig
	Enrichment  EnrichmentConfig
	AI          AIConfig
	Pipeline    PipelineConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// DatabaseConfig holds database configuration. The database is optional;
// an empty host disables query-history recording.
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	SSLMode      string
}

// NATSConfig holds event bus configuration. An empty URL disables
// lifecycle events.
type NATSConfig struct {
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
}

// ProviderConfig holds place-data provider configuration
type ProviderConfig struct {
	APIKey   string
	BaseURL  string
	Language string
	Region   string
	Timeout  time.Duration
}

// LocationConfig holds location resolver configuration. SensorLat and
// SensorLng pin the deployment to a fixed position; both zero means no
// sensor is available and the default coordinate is used.
type LocationConfig struct {
	SensorTimeout time.Duration
	MaxStaleness  time.Duration
	CacheTTL      time.Duration
	SensorLat     float64
	SensorLng     float64
	DefaultLat    float64
	DefaultLng    float64
}

// EnrichmentConfig holds enrichment service configuration
type EnrichmentConfig struct {
	CacheTTL     time.Duration
	MaxCacheSize int
	BatchSize    int
	BatchDelay   time.Duration
}

// AIConfig holds analysis endpoint configuration. An empty endpoint
// disables the AI path.
type AIConfig struct {
	Endpoint   string
	Timeout    time.Duration
	MaxRetries int
	BaseDelay  time.Duration
	CacheTTL   time.Duration
}

// PipelineConfig holds pipeline orchestration configuration
type PipelineConfig struct {
	EventsTopic string
}

// Load reads configuration from environment variables
func Load() (Config, error) {
	config := Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", ""),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Database:     getEnv("DB_NAME", "wander"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 5*time.Minute),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
		},
		NATS: NATSConfig{
			URL:            getEnv("NATS_URL", ""),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
		},
		Provider: ProviderConfig{
			APIKey:   getEnv("PROVIDER_API_KEY", ""),
			BaseURL:  getEnv("PROVIDER_BASE_URL", ""),
			Language: getEnv("PROVIDER_LANGUAGE", "es"),
			Region:   getEnv("PROVIDER_REGION", "mx"),
			Timeout:  getEnvAsDuration("PROVIDER_TIMEOUT", 10*time.Second),
		},
		Location: LocationConfig{
			SensorTimeout: getEnvAsDuration("LOCATION_SENSOR_TIMEOUT", 10*time.Second),
			MaxStaleness:  getEnvAsDuration("LOCATION_MAX_STALENESS", 5*time.Minute),
			CacheTTL:      getEnvAsDuration("LOCATION_CACHE_TTL", 30*time.Second),
			SensorLat:     getEnvAsFloat("LOCATION_SENSOR_LAT", 0),
			SensorLng:     getEnvAsFloat("LOCATION_SENSOR_LNG", 0),
			DefaultLat:    getEnvAsFloat("LOCATION_DEFAULT_LAT", 21.1619),
			DefaultLng:    getEnvAsFloat("LOCATION_DEFAULT_LNG", -86.8515),
		},
		Enrichment: EnrichmentConfig{
			CacheTTL:     getEnvAsDuration("ENRICHMENT_CACHE_TTL", 1*time.Hour),
			MaxCacheSize: getEnvAsInt("ENRICHMENT_MAX_CACHE_SIZE", 500),
			BatchSize:    getEnvAsInt("ENRICHMENT_BATCH_SIZE", 10),
			BatchDelay:   getEnvAsDuration("ENRICHMENT_BATCH_DELAY", 1*time.Second),
		},
		AI: AIConfig{
			Endpoint:   getEnv("AI_ENDPOINT", ""),
			Timeout:    getEnvAsDuration("AI_TIMEOUT", 30*time.Second),
			MaxRetries: getEnvAsInt("AI_MAX_RETRIES", 3),
			BaseDelay:  getEnvAsDuration("AI_BASE_DELAY", 1*time.Second),
			CacheTTL:   getEnvAsDuration("AI_CACHE_TTL", 5*time.Minute),
		},
		Pipeline: PipelineConfig{
			EventsTopic: getEnv("PIPELINE_EVENTS_TOPIC", "places.query"),
		},
	}

	return config, validate(config)
}

// validate checks if config is valid
func validate(config Config) error {
	if config.Provider.APIKey == "" && config.Environment != "development" {
		return fmt.Errorf("provider API key must be set in non-development environments")
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
