package middleware

import (
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/pwannenmacher/criteria-settings/internal/config"
	"github.com/pwannenmacher/criteria-settings/internal/metrics"
)

// RateLimiter applies a per-client token bucket. Buckets live in a bounded
// LRU and expire after a few idle windows.
type RateLimiter struct {
	enabled  bool
	limit    rate.Limit
	burst    int
	visitors *lru.LRU[string, *rate.Limiter]
	metrics  *metrics.Metrics
}

// NewRateLimiter creates a new rate limiter. m may be nil.
func NewRateLimiter(cfg *config.RateLimitConfig, m *metrics.Metrics) *RateLimiter {
	size := cfg.MaxVisitors
	if size <= 0 {
		size = 10000
	}
	window := cfg.Duration
	if window <= 0 {
		window = time.Minute
	}
	requests := cfg.Requests
	if requests <= 0 {
		requests = 1
	}

	return &RateLimiter{
		enabled:  cfg.Enabled,
		limit:    rate.Every(window / time.Duration(requests)),
		burst:    requests,
		visitors: lru.NewLRU[string, *rate.Limiter](size, nil, 3*window),
		metrics:  m,
	}
}

// Limit rate limits requests based on the client IP address
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.enabled {
			next.ServeHTTP(w, r)
			return
		}

		if !rl.visitor(ClientIP(r)).Allow() {
			if rl.metrics != nil {
				rl.metrics.RateLimitedTotal.WithLabelValues(r.Method).Inc()
			}
			w.Header().Set("Retry-After", "1")
			respondWithError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) visitor(ip string) *rate.Limiter {
	if limiter, ok := rl.visitors.Get(ip); ok {
		return limiter
	}
	limiter := rate.NewLimiter(rl.limit, rl.burst)
	// a concurrent request for the same ip may race here; the loser's bucket is dropped
	rl.visitors.Add(ip, limiter)
	return limiter
}
