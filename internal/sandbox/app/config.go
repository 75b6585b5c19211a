package app

import (
	"os"
	"strconv"
	"time"

	"github.com/aussiebroadwan/storefront/internal/sandbox/service"
	"github.com/aussiebroadwan/storefront/pkg/jwtx"
)

type Config struct {
	Issuer       string        // Optional: issuer claim for tokens (default: storefront-sandbox)
	DatabaseFile string        // Optional: path to SQLite database file (default: ./sandbox.db)
	PepperFile   string        // Optional: path to file containing pepper for password hashing (default: ./pepper)
	AccessTTL    time.Duration // Optional: access token lifetime (default: 5m)
	RefreshTTL   time.Duration // Optional: refresh token lifetime (default: 24h)

	SeedCatalog   bool   // Load the demo catalog into an empty database (default: true)
	ExposeOTP     bool   // Return registration codes in the response body (default: true outside prod)
	CookieSecure  bool   // Mark the refresh cookie Secure (default: true in prod)
	AdminEmail    string // Optional: admin account created on startup
	AdminPassword string // Required with AdminEmail

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	env := getEnvOrDefault("ENV", "dev")
	prod := env == "prod"

	return Config{
		Issuer:       getEnvOrDefault("SANDBOX_ISSUER", service.DefaultIssuer),
		DatabaseFile: getEnvOrDefault("SANDBOX_DATABASE_FILE", "sandbox.db"),
		PepperFile:   getEnvOrDefault("SANDBOX_PEPPER_FILE", "pepper"),
		AccessTTL:    getEnvDurationOrDefault("SANDBOX_ACCESS_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTTL:   getEnvDurationOrDefault("SANDBOX_REFRESH_TTL", jwtx.DefaultRefreshTokenTTL),

		SeedCatalog:   getEnvBoolOrDefault("SANDBOX_SEED_CATALOG", true),
		ExposeOTP:     getEnvBoolOrDefault("SANDBOX_EXPOSE_OTP", !prod),
		CookieSecure:  getEnvBoolOrDefault("SANDBOX_COOKIE_SECURE", prod),
		AdminEmail:    os.Getenv("SANDBOX_ADMIN_EMAIL"),
		AdminPassword: os.Getenv("SANDBOX_ADMIN_PASSWORD"),

		Env:                  env,
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
