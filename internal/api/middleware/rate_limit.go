package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	apiContext "grievance/internal/api/context"
	"grievance/internal/pkg/errors"
	"grievance/internal/platform/config"
)

const (
	LimitAnalyze  = "analyze"
	LimitAPIRead  = "api_read"
	LimitAPIWrite = "api_write"
)

const idleTTL = 10 * time.Minute

type bucket struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter keeps one token bucket per caller and limit type. Limits are
// requests per minute with a burst of the full minute.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limits  map[string]int
	now     func() time.Time
}

func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*bucket),
		limits: map[string]int{
			LimitAnalyze:  cfg.AnalyzePerMinute,
			LimitAPIRead:  cfg.APIReadPerMinute,
			LimitAPIWrite: cfg.APIWritePerMinute,
		},
		now: time.Now,
	}
}

// Run evicts idle buckets until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(idleTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.evict()
		}
	}
}

func (rl *RateLimiter) evict() {
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, b := range rl.buckets {
		if now.Sub(b.lastAccess) > idleTTL {
			delete(rl.buckets, key)
		}
	}
}

func (rl *RateLimiter) Allow(key, limitType string) bool {
	limit, ok := rl.limits[limitType]
	if !ok || limit <= 0 {
		return true
	}

	now := rl.now()
	rl.mu.Lock()
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Limit(float64(limit)/60.0), limit)}
		rl.buckets[key] = b
	}
	b.lastAccess = now
	rl.mu.Unlock()

	return b.limiter.AllowN(now, 1)
}

// Limit keys registered callers by user id and everyone else by address.
func (rl *RateLimiter) Limit(limitType string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			var key string
			if actor, ok := apiContext.ActorFrom(r.Context()); ok {
				key = fmt.Sprintf("user:%s:%s", actor.UserID, limitType)
			} else {
				key = fmt.Sprintf("ip:%s:%s", clientIP(r), limitType)
			}

			if !rl.Allow(key, limitType) {
				w.Header().Set("Retry-After", "60")
				errors.WriteError(w, http.StatusTooManyRequests, errors.ErrCodeRateLimitExceeded, "Rate limit exceeded", nil)
				return
			}

			next(w, r)
		}
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
