package jwtutil

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "bookshelf"

// SessionClaims carries the session id in the standard jti claim.
type SessionClaims struct {
	jwt.RegisteredClaims
}

func NewSessionClaims(sessionID string, now time.Time, ttl time.Duration) SessionClaims {
	return SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}
