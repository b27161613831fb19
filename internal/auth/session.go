package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie is the cookie the identity provider's browser SDK writes
// the short-lived session token into.
const SessionCookie = "__session"

var (
	// ErrSessionInvalid indicates a malformed or badly signed session token.
	ErrSessionInvalid = errors.New("session token is invalid")
	// ErrSessionExpired indicates the session token is past its expiry.
	ErrSessionExpired = errors.New("session token is expired")
	// ErrSessionVerifierDisabled indicates no verification key is configured.
	ErrSessionVerifierDisabled = errors.New("session verifier is not configured")
)

// Session is the signed-in member derived from a verified session token.
type Session struct {
	UserID    string
	SessionID string
	FirstName string
	ExpiresAt time.Time
}

// DisplayName returns the first name, or "Member" when the token carries none.
func (s *Session) DisplayName() string {
	if s == nil || strings.TrimSpace(s.FirstName) == "" {
		return "Member"
	}
	return s.FirstName
}

type sessionClaims struct {
	jwt.RegisteredClaims
	SessionID       string `json:"sid"`
	AuthorizedParty string `json:"azp,omitempty"`
	FirstName       string `json:"first_name,omitempty"`
}

// SessionVerifier verifies RS256 session tokens with a fixed public key.
type SessionVerifier struct {
	key    *rsa.PublicKey
	issuer string
	now    func() time.Time
}

// NewSessionVerifier parses a PEM encoded RSA public key. An empty key
// yields a disabled verifier whose Verify always fails. When issuer is
// set, tokens must carry it as "iss".
func NewSessionVerifier(pemKey, issuer string) (*SessionVerifier, error) {
	v := &SessionVerifier{issuer: strings.TrimRight(strings.TrimSpace(issuer), "/"), now: time.Now}
	pemKey = strings.TrimSpace(pemKey)
	if pemKey == "" {
		return v, nil
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pemKey))
	if err != nil {
		return nil, fmt.Errorf("parse session public key: %w", err)
	}
	v.key = key
	return v, nil
}

// Enabled reports whether a verification key is configured.
func (v *SessionVerifier) Enabled() bool {
	return v != nil && v.key != nil
}

// Verify validates token and returns the session it carries.
func (v *SessionVerifier) Verify(token string) (*Session, error) {
	if !v.Enabled() {
		return nil, ErrSessionVerifierDisabled
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrSessionInvalid
	}

	var claims sessionClaims
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(5 * time.Second),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrSessionInvalid, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrSessionInvalid)
	}

	return &Session{
		UserID:    claims.Subject,
		SessionID: claims.SessionID,
		FirstName: claims.FirstName,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}, nil
}
