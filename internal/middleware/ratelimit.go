package middleware

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/avello/routeway/internal/observability"
	"github.com/avello/routeway/internal/router"
	"github.com/avello/routeway/internal/util"
)

// DefaultClientTTL is how long an idle per-client limiter entry survives
// before cleanup reclaims it.
const DefaultClientTTL = 10 * time.Minute

// clientEntry holds a per-client limiter and its last access time.
type clientEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter provides token-bucket rate limiting, either globally or
// per client address.
type RateLimiter struct {
	limiter   *rate.Limiter
	perClient bool
	clients   map[string]*clientEntry
	mu        sync.Mutex
	rps       int
	burst     int
	clientTTL time.Duration
	logger    observability.Logger
	lastSweep time.Time
}

// RateLimiterOption is a functional option for configuring the rate
// limiter.
type RateLimiterOption func(*RateLimiter)

// WithRateLimiterLogger sets the logger for the rate limiter.
func WithRateLimiterLogger(logger observability.Logger) RateLimiterOption {
	return func(rl *RateLimiter) {
		rl.logger = logger
	}
}

// WithClientTTL overrides the idle TTL for per-client entries.
func WithClientTTL(ttl time.Duration) RateLimiterOption {
	return func(rl *RateLimiter) {
		rl.clientTTL = ttl
	}
}

// NewRateLimiter creates a rate limiter allowing rps requests per second
// with the given burst. When perClient is true each remote address gets
// its own bucket.
func NewRateLimiter(rps, burst int, perClient bool, opts ...RateLimiterOption) *RateLimiter {
	rl := &RateLimiter{
		limiter:   rate.NewLimiter(rate.Limit(rps), burst),
		perClient: perClient,
		clients:   make(map[string]*clientEntry),
		rps:       rps,
		burst:     burst,
		clientTTL: DefaultClientTTL,
		logger:    observability.NopLogger(),
		lastSweep: time.Now(),
	}

	for _, opt := range opts {
		opt(rl)
	}

	return rl
}

// Allow reports whether a request from the given client may proceed.
func (rl *RateLimiter) Allow(client string) bool {
	if !rl.perClient {
		return rl.limiter.Allow()
	}
	return rl.clientLimiter(client).Allow()
}

// clientLimiter returns (creating if needed) the limiter for one client,
// sweeping idle entries opportunistically so the map stays bounded
// without a background goroutine.
func (rl *RateLimiter) clientLimiter(client string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastSweep) > rl.clientTTL {
		for addr, entry := range rl.clients {
			if now.Sub(entry.lastAccess) > rl.clientTTL {
				delete(rl.clients, addr)
			}
		}
		rl.lastSweep = now
	}

	entry, ok := rl.clients[client]
	if !ok {
		entry = &clientEntry{
			limiter: rate.NewLimiter(rate.Limit(rl.rps), rl.burst),
		}
		rl.clients[client] = entry
	}
	entry.lastAccess = now
	return entry.limiter
}

// Middleware returns a middleware enforcing this rate limiter. Rejected
// requests fail with a RateLimitError, which maps to HTTP 429.
func (rl *RateLimiter) Middleware() router.Middleware {
	return router.MiddlewareFunc(func(next router.Responder) router.Responder {
		return router.ResponderFunc(func(ctx context.Context, req *router.Request) (*router.Response, error) {
			if !rl.Allow(req.RemoteAddr) {
				rl.logger.Warn("rate limit exceeded",
					observability.String("client", req.RemoteAddr),
					observability.String("path", req.Path),
				)
				return nil, util.NewRateLimitError(rl.rps, time.Second)
			}
			return next.Respond(ctx, req)
		})
	})
}
