package router

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/avello/routeway/internal/observability"
)

// CachedRoute pairs a route declaration with its fully composed
// responder chain. The chain is built exactly once, at registration
// time, and is immutable afterwards: it is safe to invoke from any
// number of concurrent requests.
type CachedRoute struct {
	Route     Route
	segments  []Segment
	responder Responder
}

// Responder returns the route's composed middleware+handler chain.
func (c *CachedRoute) Responder() Responder {
	return c.responder
}

// Option configures a Router at construction time.
type Option func(*Router)

// WithCaseInsensitive makes literal path segments compare
// case-insensitively. The option covers the entire matcher, not
// individual routes.
func WithCaseInsensitive() Option {
	return func(r *Router) {
		r.caseInsensitive = true
	}
}

// WithMetrics sets the metrics recorder. Defaults to a no-op recorder,
// which skips metric emission entirely.
func WithMetrics(recorder observability.Recorder) Option {
	return func(r *Router) {
		r.metrics = recorder
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger observability.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// WithMiddleware sets middleware applied to every registered route,
// outside any per-route middleware.
func WithMiddleware(middleware ...Middleware) Option {
	return func(r *Router) {
		r.middleware = middleware
	}
}

// Router registers routes and dispatches requests to them.
//
// Registration must complete, single-threaded, before the first call to
// Dispatch; the trie is never mutated afterwards, so dispatch needs no
// locking. Dynamic route registration or removal is not supported.
type Router struct {
	trie            *Trie
	middleware      []Middleware
	metrics         observability.Recorder
	logger          observability.Logger
	caseInsensitive bool
}

// New creates a router.
func New(opts ...Option) *Router {
	r := &Router{
		metrics: observability.NopRecorder{},
		logger:  observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(r)
	}

	r.trie = NewTrie(r.caseInsensitive)
	return r
}

// Register normalizes and registers the given routes, composing each
// route's responder chain and synthesizing HEAD companions for eligible
// GET routes. Duplicate keys follow last-write-wins, except that an
// explicitly declared HEAD route always beats a synthesized one.
func (r *Router) Register(routes ...Route) error {
	type entry struct {
		route    Route
		segments []Segment
	}

	entries := make([]entry, 0, len(routes))
	explicitHead := make(map[string]bool)

	for _, route := range routes {
		route.Method = strings.ToUpper(route.Method)
		segments := ParsePattern(route.Path)
		if err := validateRoute(route, segments); err != nil {
			return err
		}

		entries = append(entries, entry{route: route, segments: segments})
		if route.Method == http.MethodHead {
			explicitHead[r.routeKey(segments)] = true
		}
	}

	for _, e := range entries {
		if err := r.register(e.route, e.segments); err != nil {
			return err
		}
	}

	// HEAD synthesis runs after all declared routes are known so that an
	// explicit HEAD registration wins regardless of declaration order.
	for _, e := range entries {
		if e.route.Method != http.MethodGet {
			continue
		}
		if !allLiteral(e.segments) {
			continue
		}
		if explicitHead[r.routeKey(e.segments)] {
			continue
		}

		head := Route{
			Method:     http.MethodHead,
			Path:       e.route.Path,
			Handler:    emptyResponder(),
			Middleware: e.route.Middleware,
		}
		if err := r.register(head, e.segments); err != nil {
			return err
		}
	}

	return nil
}

// register composes the chain for one route and inserts it into the
// trie.
func (r *Router) register(route Route, segments []Segment) error {
	middleware := make([]Middleware, 0, len(r.middleware)+len(route.Middleware))
	middleware = append(middleware, r.middleware...)
	middleware = append(middleware, route.Middleware...)

	cached := &CachedRoute{
		Route:     route,
		segments:  segments,
		responder: Chain(route.Handler, middleware...),
	}
	if err := r.trie.Register(route.Method, segments, cached); err != nil {
		return fmt.Errorf("route %s %q: %w: %v", route.Method, route.Path, errInvalidRoute, err)
	}

	r.logger.Debug("route registered",
		observability.String("method", route.Method),
		observability.String("path", route.Path),
	)
	return nil
}

// validateRoute rejects declarations the trie cannot represent.
func validateRoute(route Route, segments []Segment) error {
	if route.Method == "" {
		return fmt.Errorf("route %q: %w: empty method", route.Path, errInvalidRoute)
	}
	if route.Handler == nil {
		return fmt.Errorf("route %s %q: %w: nil handler", route.Method, route.Path, errInvalidRoute)
	}

	for i, seg := range segments {
		if seg.Kind == SegmentCatchAll && i != len(segments)-1 {
			return fmt.Errorf("route %s %q: %w: catch-all must be the final segment",
				route.Method, route.Path, errInvalidRoute)
		}
		if seg.Kind == SegmentParam && seg.Value == "" {
			return fmt.Errorf("route %s %q: %w: parameter segment needs a name",
				route.Method, route.Path, errInvalidRoute)
		}
	}

	return nil
}

var errInvalidRoute = fmt.Errorf("invalid route")

// routeKey builds a comparable key for a normalized segment sequence,
// used only to detect explicit HEAD declarations during registration.
func (r *Router) routeKey(segments []Segment) string {
	parts := make([]string, len(segments))
	for i, seg := range segments {
		switch seg.Kind {
		case SegmentParam:
			parts[i] = ":" + seg.Value
		case SegmentCatchAll:
			parts[i] = "*" + seg.Value
		default:
			if r.caseInsensitive {
				parts[i] = strings.ToLower(seg.Value)
			} else {
				parts[i] = seg.Value
			}
		}
	}
	return strings.Join(parts, "/")
}

// emptyResponder answers 200 with an empty body. It backs synthesized
// HEAD routes, which must not execute the GET handler's logic.
func emptyResponder() Responder {
	return ResponderFunc(func(_ context.Context, _ *Request) (*Response, error) {
		return NewResponse(http.StatusOK), nil
	})
}
