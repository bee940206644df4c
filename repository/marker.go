package repository

import (
	"context"
	"time"
)

// RunMarkerRepository records that a periodic job already ran for a given key
// so that several replicas do not repeat it.
type RunMarkerRepository interface {
	// Claim marks key for ttl and reports whether this caller won the claim.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}
