package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/infinai/infinai/internal/auth"
)

// Session attaches the member session carried by the session cookie. Bad
// or expired tokens are ignored and the request continues signed out.
func Session(verifier *auth.SessionVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if verifier == nil || !verifier.Enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(auth.SessionCookie)
			if err != nil || c.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := verifier.Verify(c.Value)
			if err != nil {
				if !errors.Is(err, auth.ErrSessionExpired) {
					logger.Debug("session rejected",
						slog.String("error", err.Error()),
						slog.String("request_id", GetRequestID(r.Context())),
					)
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.ContextWithSession(r.Context(), sess)))
		})
	}
}
