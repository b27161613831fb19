package auth

import (
	"crypto/subtle"
	"strings"
)

// SecretVerifier checks admin bearer tokens against a configured secret,
// given either in plaintext or as an Argon2id hash.
type SecretVerifier struct {
	secret string
	hash   string
}

// NewSecretVerifier returns a verifier for secret or hash. The hash wins
// when both are set.
func NewSecretVerifier(secret, hash string) *SecretVerifier {
	return &SecretVerifier{secret: secret, hash: hash}
}

// Configured reports whether any secret is set. An unconfigured verifier
// rejects every token.
func (v *SecretVerifier) Configured() bool {
	return v != nil && (v.secret != "" || v.hash != "")
}

// Verify reports whether token matches the configured secret.
func (v *SecretVerifier) Verify(token string) bool {
	if !v.Configured() || token == "" {
		return false
	}
	if v.hash != "" {
		ok, err := VerifyPassword(token, v.hash)
		return err == nil && ok
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(v.secret)) == 1
}

// VerifyHeader checks a raw Authorization header value.
func (v *SecretVerifier) VerifyHeader(header string) bool {
	token, ok := BearerToken(header)
	if !ok {
		return false
	}
	return v.Verify(token)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header value.
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", false
	}
	return token, true
}
