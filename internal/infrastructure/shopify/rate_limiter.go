package shopify

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// RateLimiter paces Admin API calls per shop so a single merchant cannot
// exhaust the REST leaky bucket.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
	logger   zerolog.Logger
}

// NewRateLimiter creates a limiter allowing perSecond requests per shop
func NewRateLimiter(perSecond float64, burst int, logger zerolog.Logger) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(perSecond),
		burst:    burst,
		logger:   logger,
	}
}

// Wait blocks until a request for the shop is allowed or ctx is done
func (r *RateLimiter) Wait(ctx context.Context, shop string) error {
	limiter := r.limiterFor(shop)
	if !limiter.Allow() {
		r.logger.Debug().Str("shop", shop).Msg("Throttling Shopify API call")
		return limiter.Wait(ctx)
	}
	return nil
}

func (r *RateLimiter) limiterFor(shop string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	limiter, ok := r.limiters[shop]
	if !ok {
		limiter = rate.NewLimiter(r.limit, r.burst)
		r.limiters[shop] = limiter
	}
	return limiter
}
