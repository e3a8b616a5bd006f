package accounts

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/louisbranch/agencysite/internal/platform/errors"
)

const (
	// DefaultSessionTTL is the lifetime of a login session.
	DefaultSessionTTL = 7 * 24 * time.Hour
	sessionIssuer     = "agencysite"
)

// ErrInvalidSession reports a missing, expired or tampered session token.
var ErrInvalidSession = apperrors.EK(apperrors.KindUnauthorized, "error.session_invalid", "invalid session")

// SessionConfig configures session token signing.
type SessionConfig struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

// Sessions issues and verifies HS256 session tokens.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// sessionClaims is the internal claims type used for JWT parsing.
type sessionClaims struct {
	jwt.RegisteredClaims
}

// NewSessions validates cfg and builds a token codec.
func NewSessions(cfg SessionConfig) (*Sessions, error) {
	if len(cfg.Secret) < 16 {
		return nil, fmt.Errorf("session secret must be at least 16 bytes")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultSessionTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Sessions{secret: cfg.Secret, ttl: cfg.TTL, now: cfg.Now}, nil
}

// TTL returns the session lifetime.
func (s *Sessions) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for email.
func (s *Sessions) Issue(email string) (string, time.Time, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", time.Time{}, fmt.Errorf("session subject is required")
	}
	now := s.now().UTC()
	expires := now.Add(s.ttl)
	claims := sessionClaims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    sessionIssuer,
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return signed, expires, nil
}

// Parse verifies token and returns the session email.
func (s *Sessions) Parse(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrInvalidSession
	}
	var parsed sessionClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apperrors.Wrap(apperrors.KindUnauthorized, "session expired", ErrInvalidSession)
		}
		return "", ErrInvalidSession
	}
	if parsed.Subject == "" {
		return "", ErrInvalidSession
	}
	return parsed.Subject, nil
}
