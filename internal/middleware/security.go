package middleware

import (
	"net/http"
	"strings"
)

// SecurityConfig holds configuration for security headers.
type SecurityConfig struct {
	// IsDevelopment disables HSTS in dev environments.
	IsDevelopment bool
	// IdentityHost is the host serving the sign-in widgets, for example
	// "clerk.example.com". Empty keeps the policy to same-origin only.
	IdentityHost string
	// MaxRequestBodySize is the max allowed request body in bytes.
	MaxRequestBodySize int64
}

// DefaultSecurityConfig returns sensible defaults for production.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		MaxRequestBodySize: 64 << 10,
	}
}

// ContentSecurityPolicy builds the page policy. The identity host may load
// scripts, open frames and receive XHR; inline styles are allowed because
// the widgets inject them.
func ContentSecurityPolicy(identityHost string) string {
	host := strings.TrimPrefix(strings.TrimPrefix(identityHost, "https://"), "http://")
	host = strings.TrimRight(host, "/")

	script := "'self'"
	connect := "'self'"
	frame := "'none'"
	if host != "" {
		script += " https://" + host
		connect += " https://" + host
		frame = "https://" + host + " https://challenges.cloudflare.com"
	}

	return strings.Join([]string{
		"default-src 'self'",
		"script-src " + script,
		"connect-src " + connect,
		"frame-src " + frame,
		"img-src 'self' data: https:",
		"style-src 'self' 'unsafe-inline'",
		"worker-src 'self' blob:",
		"object-src 'none'",
		"base-uri 'self'",
		"form-action 'self'",
		"frame-ancestors 'none'",
	}, "; ")
}

// Security returns a middleware that applies security headers to all
// responses. API responses get a locked down policy and are never cached;
// pages get the site policy.
func Security(cfg SecurityConfig) func(http.Handler) http.Handler {
	pagePolicy := ContentSecurityPolicy(cfg.IdentityHost)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			// Legacy XSS filter off; CSP covers it.
			h.Set("X-XSS-Protection", "0")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=(), usb=()")

			if strings.HasPrefix(r.URL.Path, "/api/") {
				h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
				h.Set("Cache-Control", "no-store")
			} else {
				h.Set("Content-Security-Policy", pagePolicy)
			}

			if !cfg.IsDevelopment {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
			}
			h.Del("Server")

			next.ServeHTTP(w, r)
		})
	}
}

// MaxBodySize returns a middleware that limits request body size.
//
// When the limit is exceeded, the connection is closed and subsequent
// reads return an error.
func MaxBodySize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil && r.ContentLength > maxBytes {
				writeJSONError(w, http.StatusRequestEntityTooLarge, "Request body too large")
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

			next.ServeHTTP(w, r)
		})
	}
}
