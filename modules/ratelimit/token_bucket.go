package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// TokenBucketLimiter keeps one rate.Limiter per key in memory. Buckets start
// full with Burst tokens and refill at Rate tokens per second.
type TokenBucketLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	config   Config
	now      func() time.Time
}

// NewTokenBucketLimiter creates an in-memory limiter.
func NewTokenBucketLimiter(config Config) *TokenBucketLimiter {
	return &TokenBucketLimiter{
		limiters: make(map[string]*rate.Limiter),
		config:   config,
		now:      time.Now,
	}
}

// Allow takes one token from the bucket for key. A denied call does not
// consume anything.
func (l *TokenBucketLimiter) Allow(_ context.Context, key string) (*Result, error) {
	now := l.now()
	limiter := l.limiterFor(key)

	r := limiter.ReserveN(now, 1)
	if !r.OK() {
		return &Result{Allowed: false}, nil
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return &Result{Allowed: false, RetryAfter: delay}, nil
	}
	return &Result{Allowed: true, Remaining: int(limiter.TokensAt(now))}, nil
}

// Forget drops the bucket for key.
func (l *TokenBucketLimiter) Forget(_ context.Context, key string) {
	l.mu.Lock()
	delete(l.limiters, key)
	l.mu.Unlock()
}

func (l *TokenBucketLimiter) limiterFor(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(l.config.Rate), l.config.Burst)
		l.limiters[key] = limiter
	}
	return limiter
}
