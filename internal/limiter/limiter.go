// Package limiter throttles login attempts per (username, client IP) to slow
// down credential stuffing. Failed attempts accumulate in a sliding window;
// crossing the threshold places a temporary block.
package limiter

import (
	"context"
	"crypto/sha256"
	"time"
)

// Limiter controls login attempts and temporary lockouts.
type Limiter interface {
	// Allow reports whether login is currently allowed and optional retry-after.
	Allow(ctx context.Context, username string, ipHash []byte) (bool, time.Duration, error)
	// Success resets counters after a successful login.
	Success(ctx context.Context, username string, ipHash []byte) error
	// Failure records a failed attempt; returns true when it triggered a block.
	Failure(ctx context.Context, username string, ipHash []byte) (bool, time.Duration, error)
}

// HashIP returns a stable hash for an IP string so raw addresses are never
// persisted in the limiter table.
func HashIP(ip string) []byte {
	h := sha256.Sum256([]byte(ip))
	return h[:]
}

// Noop is a pass-through limiter for tests and setups without throttling.
type Noop struct{}

func (Noop) Allow(context.Context, string, []byte) (bool, time.Duration, error) {
	return true, 0, nil
}
func (Noop) Success(context.Context, string, []byte) error { return nil }
func (Noop) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	return false, 0, nil
}
