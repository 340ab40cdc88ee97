package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

type Config struct {
	API  APIConfig
	UI   UIConfig
	Stub StubConfig
	OTLP OTLPConfig
}

// APIConfig locates the products API. An empty BaseURL means no real
// backend is configured and the embedded stub API should be used.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type UIConfig struct {
	PageSize      int
	ToastDuration time.Duration
}

// StubConfig configures the embedded stub API server.
type StubConfig struct {
	Host string
	Port string
}

type OTLPConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
	Environment string
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: getEnv("PRODUCTS_API_URL", ""),
			Timeout: getEnvDuration("PRODUCTS_API_TIMEOUT", 10*time.Second),
		},
		UI: UIConfig{
			PageSize:      getEnvInt("CATALOG_PAGE_SIZE", 5),
			ToastDuration: getEnvDuration("TOAST_DURATION", 3*time.Second),
		},
		Stub: StubConfig{
			Host: getEnv("STUB_HOST", "127.0.0.1"),
			Port: getEnv("STUB_PORT", "3002"),
		},
		OTLP: OTLPConfig{
			Enabled:     getEnvBool("OTEL_EXPORT_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "products-catalog"),
			Environment: getEnv("OTEL_ENVIRONMENT", "development"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		slog.Warn("invalid integer value for environment variable, using default",
			slog.String("key", key),
			slog.String("value", valueStr),
			slog.Int("default", defaultValue))
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		slog.Warn("invalid boolean value for environment variable, using default",
			slog.String("key", key),
			slog.String("value", valueStr),
			slog.Bool("default", defaultValue))
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		slog.Warn("invalid duration value for environment variable, using default",
			slog.String("key", key),
			slog.String("value", valueStr),
			slog.String("default", defaultValue.String()))
		return defaultValue
	}
	return value
}
