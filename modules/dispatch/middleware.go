package dispatch

import (
	"context"

	"github.com/go-monolith/mono/pkg/types"

	"github.com/example/chatroom-playground/modules/hub"
	"github.com/example/chatroom-playground/modules/ratelimit"
)

// MsgRateLimited is sent when a connection exceeds its message budget.
const MsgRateLimited = "[System] Rate limit exceeded, please slow down"

// RateLimit throttles the listed message types per connection. Limiter
// errors let the message through.
func RateLimit(limiter ratelimit.Limiter, registry *hub.Registry, logger types.Logger, msgTypes ...string) Middleware {
	limited := make(map[string]bool, len(msgTypes))
	for _, t := range msgTypes {
		limited[t] = true
	}

	return func(msgType string, next HandlerFunc) HandlerFunc {
		if !limited[msgType] {
			return next
		}
		return func(ctx context.Context, req *Request) error {
			res, err := limiter.Allow(ctx, req.Conn.ID())
			if err != nil {
				logger.Warn("Rate limiter unavailable, allowing message", "connectionID", req.Conn.ID(), "error", err)
				return next(ctx, req)
			}
			if !res.Allowed {
				logger.Debug("Rate limit exceeded", "connectionID", req.Conn.ID(), "userID", req.Identity, "retryAfter", res.RetryAfter)
				registry.SendTo(req.Conn, MsgRateLimited)
				return nil
			}
			return next(ctx, req)
		}
	}
}
