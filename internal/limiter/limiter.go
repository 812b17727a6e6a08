// Package limiter defines interfaces and implementations for PIN-attempt rate limiting.
package limiter

import (
	"context"
	"time"
)

// Limiter controls PIN verification attempts and temporary lockouts.
// The slow KDF throttles a single attempt; the limiter bounds the total
// attempt count per (user, ip).
type Limiter interface {
	// Allow reports whether a PIN attempt is currently allowed and optional retry-after.
	Allow(ctx context.Context, userID string, ipHash []byte) (bool, time.Duration, error)
	// Success resets counters after a successful verification.
	Success(ctx context.Context, userID string, ipHash []byte) error
	// Failure records a failed attempt; may place a temporary block.
	Failure(ctx context.Context, userID string, ipHash []byte) (bool, time.Duration, error)
}
