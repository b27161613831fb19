package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/infinai/infinai/internal/auth"
)

// AdminAuthConfig holds configuration for the admin bearer middleware.
type AdminAuthConfig struct {
	Logger   *slog.Logger
	Verifier *auth.SecretVerifier
	// MinDuration pads every rejection to at least this long so failures
	// do not leak timing. Zero disables padding.
	MinDuration time.Duration
	// OnReject, if set, is called with the reason for every rejection.
	OnReject func(r *http.Request, reason string)
}

// AdminAuth rejects requests whose Authorization header does not carry the
// admin secret. A missing or unconfigured secret rejects everything.
func AdminAuth(cfg AdminAuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reason := ""
			switch {
			case !cfg.Verifier.Configured():
				reason = "secret_not_configured"
			case r.Header.Get("Authorization") == "":
				reason = "missing_header"
			case !cfg.Verifier.VerifyHeader(r.Header.Get("Authorization")):
				reason = "secret_mismatch"
			}

			if reason == "" {
				next.ServeHTTP(w, r)
				return
			}

			cfg.Logger.Warn("admin authentication failed",
				slog.String("reason", reason),
				slog.String("ip", ClientIP(r)),
				slog.String("endpoint", r.Method+" "+r.URL.Path),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			if cfg.OnReject != nil {
				cfg.OnReject(r, reason)
			}
			if elapsed := time.Since(start); elapsed < cfg.MinDuration {
				time.Sleep(cfg.MinDuration - elapsed)
			}
			writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
		})
	}
}
