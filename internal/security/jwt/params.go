package jwtutil

import "time"

type Config struct {
	Secret    []byte
	ClockSkew time.Duration
}

// DefaultClockSkew is the leeway applied to exp/iat checks.
const DefaultClockSkew = 60 * time.Second
