package jwtutil

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Signer issues and verifies HS256 session tokens.
type Signer struct {
	cfg Config
	now func() time.Time
}

func NewSigner(cfg Config) *Signer {
	if cfg.ClockSkew == 0 {
		cfg.ClockSkew = DefaultClockSkew
	}
	return &Signer{cfg: cfg, now: time.Now}
}

// SignSession returns a token naming sessionID that expires after ttl.
func (s *Signer) SignSession(sessionID string, ttl time.Duration) (string, error) {
	claims := NewSessionClaims(sessionID, s.now(), ttl)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.cfg.Secret)
}

// ParseSession verifies signature, issuer and expiry, returning the session
// id and the token's expiry.
func (s *Signer) ParseSession(tokenStr string) (string, time.Time, error) {
	parser := jwt.NewParser(
		jwt.WithLeeway(s.cfg.ClockSkew),
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	token, err := parser.ParseWithClaims(tokenStr, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.cfg.Secret, nil
	})
	if err != nil {
		return "", time.Time{}, err
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.ID == "" || claims.ExpiresAt == nil {
		return "", time.Time{}, ErrInvalidToken
	}
	return claims.ID, claims.ExpiresAt.Time, nil
}
