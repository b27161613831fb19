// Package main is the entrypoint for the InfinAI web server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"
	"time"

	"github.com/infinai/infinai/internal/auth"
	"github.com/infinai/infinai/internal/cache"
	"github.com/infinai/infinai/internal/config"
	"github.com/infinai/infinai/internal/content"
	"github.com/infinai/infinai/internal/handler"
	"github.com/infinai/infinai/internal/identity"
	"github.com/infinai/infinai/internal/metrics"
	"github.com/infinai/infinai/internal/middleware"
	"github.com/infinai/infinai/internal/particles"
	"github.com/infinai/infinai/internal/scheduler"
	"github.com/infinai/infinai/internal/server"
	"github.com/infinai/infinai/internal/service"
	"github.com/infinai/infinai/internal/splash"
	"github.com/infinai/infinai/internal/storage"
	"github.com/infinai/infinai/internal/web"
)

// adminRejectDelay pads failed admin authentication.
const adminRejectDelay = 250 * time.Millisecond

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	// The store connects on first use so the pages come up without it.
	store := storage.Lazy(cfg.DatabaseURL, cfg.DatabaseName)
	driver, _ := cfg.StorageDriver()
	logger.Info("storage configured",
		slog.String("driver", driver),
		slog.String("database_url", redactURL(cfg.DatabaseURL)),
	)

	// Redis is optional. Without it the subscribe limiter is off and sync
	// runs are serialized per process only.
	var (
		cacheClient *cache.Cache
		limiter     middleware.IPLimiter
		locker      service.SyncLocker
		cacheHealth handler.HealthChecker
	)
	if cfg.RedisURL != "" {
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			os.Exit(1)
		}
		limiter, locker, cacheHealth = cacheClient, cacheClient, cacheClient
		logger.Info("connected to Redis")
	} else {
		logger.Warn("REDIS_URL not set; rate limiting disabled and sync lock is process-local")
	}

	provider, err := identity.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to initialize identity provider", "provider", cfg.IdentityProvider, "error", err)
		os.Exit(1)
	}

	site, err := content.Default()
	if err != nil {
		logger.Error("failed to load site content", "error", err)
		os.Exit(1)
	}

	renderer, err := web.New(web.Options{
		BasePath:            cfg.BasePath(),
		ClerkPublishableKey: cfg.ClerkPublishableKey,
		ClerkFrontendAPI:    cfg.ClerkFrontendAPI,
	})
	if err != nil {
		logger.Error("failed to parse templates", "error", err)
		os.Exit(1)
	}

	sessions, err := auth.NewSessionVerifier(cfg.ClerkJWTKey, issuerFor(renderer.ClerkHost()))
	if err != nil {
		logger.Error("failed to parse CLERK_JWT_KEY", "error", err)
		os.Exit(1)
	}
	if !sessions.Enabled() {
		logger.Info("CLERK_JWT_KEY not set; pages render signed out")
	}
	if !cfg.SyncEnabled() {
		logger.Warn("SYNC_API_SECRET not set; admin endpoints reject every request")
	}

	// Services
	recorder := metrics.NewInMemory()
	subscriptions := service.NewSubscriptionService(store, recorder)
	userSync := service.NewUserSyncService(store, provider, locker, service.SyncOptions{
		PageSize: cfg.SyncPageSize,
		MaxPages: cfg.SyncMaxPages,
		LockTTL:  cfg.SyncLockTTL,
	}, recorder, logger)
	stats := service.NewStatsService(store, site)

	timing := splash.DefaultTiming()
	timing.Duration = cfg.SplashDuration

	router := handler.NewRouter(handler.RouterConfig{
		Logger: logger,
		Pages: handler.NewPageHandler(renderer, site, handler.PageConfig{
			Timing:       timing,
			AlwaysSplash: cfg.SplashAlways,
			Particles:    particles.DefaultConfig(),
		}, recorder, logger),
		Projects:  handler.NewProjectsHandler(site),
		Subscribe: handler.NewSubscribeHandler(subscriptions, logger),
		Admin:     handler.NewAdminHandler(userSync, stats, logger),
		Health:    handler.NewHealthHandler(store, cacheHealth),
		Metrics:   handler.NewMetricsHandler(recorder),
		Sessions:  sessions,
		AdminAuth: middleware.AdminAuthConfig{
			Logger:      logger,
			Verifier:    auth.NewSecretVerifier(cfg.SyncAPISecret, cfg.SyncAPISecretHash),
			MinDuration: adminRejectDelay,
			OnReject: func(*http.Request, string) {
				recorder.IncSync(metrics.StatusUnauthorized)
			},
		},
		RateLimit: middleware.RateLimitConfig{
			Logger:  logger,
			Limiter: limiter,
			Enabled: cfg.RateLimitSubscribeEnabled,
			Scope:   "subscribe",
			RPS:     cfg.RateLimitSubscribeRPS,
			Burst:   cfg.RateLimitSubscribeBurst,
			OnLimited: func(*http.Request) {
				recorder.IncSubscription(metrics.StatusRateLimited)
			},
		},
		Security: middleware.SecurityConfig{
			IsDevelopment:      cfg.IsDevelopment(),
			IdentityHost:       renderer.ClerkHost(),
			MaxRequestBodySize: cfg.MaxRequestBodySize,
		},
		CORS: middleware.CORSConfig{
			AllowedOrigins: cfg.GetCORSAllowedOrigins(),
			MaxAge:         middleware.DefaultCORSConfig().MaxAge,
		},
		BasePath: cfg.BasePath(),
	})

	srv := server.New(router, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// Registered first, stopped last.
	srv.OnShutdown("store", func(context.Context) error { return store.Close() })
	if cacheClient != nil {
		srv.OnShutdown("redis", func(context.Context) error { return cacheClient.Close() })
	}

	if cfg.SyncSchedule != "" {
		sched, err := scheduler.New(cfg.SyncSchedule, userSync, cfg.SyncLockTTL, logger)
		if err != nil {
			logger.Error("invalid SYNC_SCHEDULE", "error", err)
			os.Exit(1)
		}
		sched.Start()
		srv.OnShutdown("scheduler", sched.Stop)
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"base_url", cfg.BaseURL,
		"base_path", cfg.BasePath(),
		"env", cfg.AppEnv,
		"identity_provider", provider.Name(),
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// issuerFor returns the expected session token issuer for a Clerk host.
func issuerFor(host string) string {
	if host == "" {
		return ""
	}
	return "https://" + host
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
