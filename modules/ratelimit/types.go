// Package ratelimit throttles chat messages per connection, backed by Redis
// when it is configured and by an in-process token bucket otherwise.
package ratelimit

import (
	"context"
	"time"
)

// Config holds rate limiting configuration.
type Config struct {
	// Rate is the sustained number of messages allowed per second.
	Rate int
	// Burst is the number of messages allowed back to back.
	Burst int
	// KeyPrefix is the prefix for all rate limit keys in Redis.
	KeyPrefix string
}

// DefaultConfig returns 10 messages per second with bursts of 20.
func DefaultConfig() Config {
	return Config{
		Rate:      10,
		Burst:     20,
		KeyPrefix: "chat:ratelimit:",
	}
}

// Window is the sliding window that admits Burst messages at Rate.
func (c Config) Window() time.Duration {
	if c.Rate <= 0 {
		return time.Second
	}
	return time.Duration(c.Burst) * time.Second / time.Duration(c.Rate)
}

// Result represents the outcome of a rate limit check.
type Result struct {
	Allowed   bool
	Remaining int
	// RetryAfter is only set when the request was denied.
	RetryAfter time.Duration
}

// Limiter decides whether the holder of key may send another message.
type Limiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
	// Forget drops any state kept for key.
	Forget(ctx context.Context, key string)
}
