package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/avello/routeway/internal/observability"
	"github.com/avello/routeway/internal/router"
	"github.com/avello/routeway/internal/util"
)

// CircuitBreaker wraps gobreaker.CircuitBreaker for use as responder
// middleware.
type CircuitBreaker struct {
	cb     *gobreaker.CircuitBreaker
	logger observability.Logger
}

// CircuitBreakerOption is a functional option for configuring the
// circuit breaker.
type CircuitBreakerOption func(*CircuitBreaker)

// WithCircuitBreakerLogger sets the logger for the circuit breaker.
func WithCircuitBreakerLogger(logger observability.Logger) CircuitBreakerOption {
	return func(cb *CircuitBreaker) {
		cb.logger = logger
	}
}

// NewCircuitBreaker creates a circuit breaker that trips when at least
// threshold requests have been observed in the current interval and at
// least half of them failed.
func NewCircuitBreaker(
	name string,
	threshold uint32,
	timeout time.Duration,
	opts ...CircuitBreakerOption,
) *CircuitBreaker {
	cb := &CircuitBreaker{
		logger: observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(cb)
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: threshold,
		Interval:    timeout,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= threshold && failureRatio >= 0.5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			cb.logger.Info("circuit breaker state change",
				observability.String("name", name),
				observability.String("from", from.String()),
				observability.String("to", to.String()),
			)
		},
	}

	cb.cb = gobreaker.NewCircuitBreaker(settings)
	return cb
}

// Middleware returns a middleware routing each request through the
// breaker. Responses with 5xx statuses count as failures; an open
// circuit fails fast with a CircuitOpenError, which maps to HTTP 503.
func (cb *CircuitBreaker) Middleware() router.Middleware {
	return router.MiddlewareFunc(func(next router.Responder) router.Responder {
		return router.ResponderFunc(func(ctx context.Context, req *router.Request) (*router.Response, error) {
			result, err := cb.cb.Execute(func() (interface{}, error) {
				resp, err := next.Respond(ctx, req)
				if err != nil {
					return resp, err
				}
				if resp.Status >= http.StatusInternalServerError {
					return resp, util.NewStatusError(resp.Status, "upstream failure")
				}
				return resp, nil
			})

			if err != nil {
				if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
					return nil, util.NewCircuitOpenError(cb.cb.Name(), cb.cb.State().String())
				}

				// A 5xx response travels back unchanged; the breaker
				// only needed the synthetic error for its counters.
				var statusErr *util.StatusError
				if errors.As(err, &statusErr) {
					if resp, ok := result.(*router.Response); ok && resp != nil {
						return resp, nil
					}
				}
				return nil, err
			}

			return result.(*router.Response), nil
		})
	})
}
