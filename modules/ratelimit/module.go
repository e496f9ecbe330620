package ratelimit

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/redis/go-redis/v9"
)

// ErrNotStarted is returned by Allow before the module has started.
var ErrNotStarted = errors.New("rate limiter not started")

// Module provides message rate limiting as a mono module. With a Redis URL
// it uses the shared sliding window limiter, otherwise a local token bucket.
type Module struct {
	redisURL string
	config   Config
	client   *redis.Client
	limiter  Limiter
	logger   types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
	_ Limiter                    = (*Module)(nil)
)

// NewModule creates a new rate limiting module. An empty redisURL selects
// the in-memory limiter.
func NewModule(redisURL string, config Config, logger types.Logger) *Module {
	return &Module{
		redisURL: redisURL,
		config:   config,
		logger:   logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "rate-limiter"
}

// Start connects to Redis when configured.
func (m *Module) Start(ctx context.Context) error {
	if m.redisURL == "" {
		m.limiter = NewTokenBucketLimiter(m.config)
		m.logger.Info("Rate limiter started", "backend", "memory", "rate", m.config.Rate, "burst", m.config.Burst)
		return nil
	}

	opts, err := redis.ParseURL(m.redisURL)
	if err != nil {
		return fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	m.client = redis.NewClient(opts)
	if err := m.client.Ping(ctx).Err(); err != nil {
		_ = m.client.Close()
		m.client = nil
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	m.limiter = NewSlidingWindowLimiter(m.client, m.config)
	m.logger.Info("Rate limiter started", "backend", "redis", "addr", opts.Addr, "rate", m.config.Rate, "burst", m.config.Burst)
	return nil
}

// Stop closes the Redis connection.
func (m *Module) Stop(_ context.Context) error {
	if m.client != nil {
		if err := m.client.Close(); err != nil {
			m.logger.Error("Error closing Redis connection", "error", err)
		}
	}
	m.logger.Info("Rate limiter stopped")
	return nil
}

// Health reports whether the backing store is reachable.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if m.limiter == nil {
		return mono.HealthStatus{Healthy: false, Message: "not started"}
	}
	if m.client == nil {
		return mono.HealthStatus{Healthy: true, Message: "operational", Details: map[string]any{"backend": "memory"}}
	}
	if err := m.client.Ping(ctx).Err(); err != nil {
		return mono.HealthStatus{Healthy: false, Message: err.Error(), Details: map[string]any{"backend": "redis"}}
	}
	return mono.HealthStatus{Healthy: true, Message: "operational", Details: map[string]any{"backend": "redis"}}
}

// Allow delegates to the active limiter.
func (m *Module) Allow(ctx context.Context, key string) (*Result, error) {
	if m.limiter == nil {
		return nil, ErrNotStarted
	}
	return m.limiter.Allow(ctx, key)
}

// Forget delegates to the active limiter.
func (m *Module) Forget(ctx context.Context, key string) {
	if m.limiter != nil {
		m.limiter.Forget(ctx, key)
	}
}
