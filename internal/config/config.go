// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Storage drivers selected from the DATABASE_URL scheme.
const (
	DriverMongo    = "mongodb"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Identity providers for the user sync.
const (
	ProviderClerk    = "clerk"
	ProviderFirebase = "firebase"
)

var (
	// ErrUnknownDriver indicates DATABASE_URL has an unsupported scheme.
	ErrUnknownDriver = errors.New("unsupported database url scheme")
	// ErrUnknownProvider indicates IDENTITY_PROVIDER is not recognised.
	ErrUnknownProvider = errors.New("unsupported identity provider")
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// Storage. The scheme picks the driver: mongodb://, postgres://, sqlite://.
	DatabaseURL  string `env:"DATABASE_URL,required"`
	DatabaseName string `env:"DATABASE_NAME" envDefault:"infinai"`

	// Cache (Redis). Optional; rate limiting and the cross-instance sync
	// lock are disabled without it.
	RedisURL string `env:"REDIS_URL"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// User sync
	SyncAPISecret     string        `env:"SYNC_API_SECRET"`
	SyncAPISecretHash string        `env:"SYNC_API_SECRET_HASH"`
	SyncSchedule      string        `env:"SYNC_SCHEDULE"`
	SyncPageSize      int           `env:"SYNC_PAGE_SIZE" envDefault:"100"`
	SyncMaxPages      int           `env:"SYNC_MAX_PAGES" envDefault:"50"`
	SyncProviderRPS   float64       `env:"SYNC_PROVIDER_RPS" envDefault:"5"`
	SyncLockTTL       time.Duration `env:"SYNC_LOCK_TTL" envDefault:"5m"`

	// Identity provider
	IdentityProvider        string `env:"IDENTITY_PROVIDER" envDefault:"clerk"`
	ClerkSecretKey          string `env:"CLERK_SECRET_KEY"`
	ClerkPublishableKey     string `env:"CLERK_PUBLISHABLE_KEY"`
	ClerkJWTKey             string `env:"CLERK_JWT_KEY"`
	ClerkFrontendAPI        string `env:"CLERK_FRONTEND_API"`
	FirebaseCredentialsPath string `env:"FIREBASE_CREDENTIALS_PATH"`

	// Static export under a path prefix (GitHub Pages).
	GitHubPages      bool   `env:"GITHUB_PAGES" envDefault:"false"`
	StaticPathPrefix string `env:"STATIC_PATH_PREFIX" envDefault:"/infinai"`

	// Splash
	SplashDuration time.Duration `env:"SPLASH_DURATION" envDefault:"3s"`
	SplashAlways   bool          `env:"SPLASH_ALWAYS" envDefault:"false"`

	// Rate limiting
	RateLimitSubscribeEnabled bool `env:"RATE_LIMIT_SUBSCRIBE_ENABLED" envDefault:"true"`
	RateLimitSubscribeRPS     int  `env:"RATE_LIMIT_SUBSCRIBE_RPS" envDefault:"1"`
	RateLimitSubscribeBurst   int  `env:"RATE_LIMIT_SUBSCRIBE_BURST" envDefault:"5"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 64KB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"65536"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// BasePath returns the path prefix applied to local asset URLs.
// It is empty unless GITHUB_PAGES is set.
func (c *Config) BasePath() string {
	if !c.GitHubPages {
		return ""
	}
	prefix := "/" + strings.Trim(c.StaticPathPrefix, "/")
	if prefix == "/" {
		return ""
	}
	return prefix
}

// StorageDriver returns the driver implied by DATABASE_URL.
func (c *Config) StorageDriver() (string, error) {
	return DriverFor(c.DatabaseURL)
}

// SyncEnabled reports whether the admin sync endpoint can accept any secret.
func (c *Config) SyncEnabled() bool {
	return c.SyncAPISecret != "" || c.SyncAPISecretHash != ""
}

// DriverFor maps a database URL to a storage driver name.
func DriverFor(databaseURL string) (string, error) {
	switch {
	case strings.HasPrefix(databaseURL, "mongodb://"), strings.HasPrefix(databaseURL, "mongodb+srv://"):
		return DriverMongo, nil
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return DriverPostgres, nil
	case strings.HasPrefix(databaseURL, "sqlite://"), strings.HasPrefix(databaseURL, "file:"):
		return DriverSQLite, nil
	default:
		return "", ErrUnknownDriver
	}
}

// Validate checks cross-field constraints env tags cannot express.
func (c *Config) Validate() error {
	if _, err := c.StorageDriver(); err != nil {
		return err
	}
	switch c.IdentityProvider {
	case ProviderClerk, ProviderFirebase:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.IdentityProvider)
	}
	if c.SyncPageSize <= 0 || c.SyncPageSize > 500 {
		return fmt.Errorf("SYNC_PAGE_SIZE must be between 1 and 500")
	}
	if c.SyncMaxPages <= 0 {
		return fmt.Errorf("SYNC_MAX_PAGES must be positive")
	}
	if c.SplashDuration <= 0 {
		return fmt.Errorf("SPLASH_DURATION must be positive")
	}
	return nil
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
