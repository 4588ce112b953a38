package lcd

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// Default LCD request budget per chain.
const (
	defaultRequestsPerSecond = 5
	defaultBurst             = 10
)

// RateLimiter holds one token bucket per chain ID. Clients for the same
// chain share a bucket even when they point at different LCD URLs.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
}

// NewRateLimiter allows ratePerSecond LCD requests per chain, with bursts up
// to burst.
func NewRateLimiter(ratePerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*rate.Limiter),
		limit:   rate.Limit(ratePerSecond),
		burst:   burst,
	}
}

// DefaultRateLimiter returns a limiter with the default per-chain budget.
func DefaultRateLimiter() *RateLimiter {
	return NewRateLimiter(defaultRequestsPerSecond, defaultBurst)
}

// Allow takes a token for chainID if one is available now.
func (r *RateLimiter) Allow(chainID string) bool {
	return r.bucket(chainID).Allow()
}

// Wait blocks until chainID has a token. It fails at once when ctx would
// expire before the token becomes available.
func (r *RateLimiter) Wait(ctx context.Context, chainID string) error {
	if err := r.bucket(chainID).Wait(ctx); err != nil {
		return fmt.Errorf("rate limit for %s: %w", chainID, err)
	}
	return nil
}

func (r *RateLimiter) bucket(chainID string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.buckets[chainID]
	if !ok {
		b = rate.NewLimiter(r.limit, r.burst)
		r.buckets[chainID] = b
	}
	return b
}
