package router

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/avello/routeway/internal/observability"
	"github.com/avello/routeway/internal/util"
)

// Dispatch resolves a request to a cached route, invokes its composed
// responder chain, and records metrics before returning. It is the
// single runtime entry point of the router and is safe for concurrent
// use.
//
// HEAD requests first try an exact HEAD match (explicit route or
// synthesized empty responder). When none exists the GET chain runs
// as-is, full response body included; the transport strips the body at
// the wire. That is the intended fallback for parameterized paths,
// which have no synthetic HEAD variant.
//
// Errors are never swallowed: metrics are recorded first, then the
// error is returned to the transport. Converting errors into responses
// is the job of an error-handling middleware placed early in the chain;
// dispatch itself is only the last-resort safety net.
func (r *Router) Dispatch(ctx context.Context, req *Request) (*Response, error) {
	start := time.Now()
	parts := splitPath(req.Path)

	cached := r.resolve(req.Method, parts, req)

	var resp *Response
	var err error
	if cached != nil {
		req.route = cached
		// Carry the matched template in the context so loggers and spans
		// downstream can tag by route without reaching into the request.
		ctx = util.ContextWithRoute(ctx, cached.Route.Path)
		resp, err = cached.responder.Respond(ctx, req)
		if resp == nil && err == nil {
			err = errResponderNoResponse
		}
	} else {
		resp, err = r.notFound(req)
	}

	status := statusOf(resp, err)
	method, path := metricLabels(req.Method, cached)
	r.metrics.RecordRequest(method, path, status, time.Since(start))

	if err != nil {
		if errors.Is(err, util.ErrRouteNotFound) {
			r.logger.Debug("route not found",
				observability.String("method", req.Method),
				observability.String("path", req.Path),
			)
		} else {
			r.logger.Error("request chain failed",
				observability.String("method", req.Method),
				observability.String("path", req.Path),
				observability.Int("status", status),
				observability.Error(err),
			)
		}
		return nil, err
	}

	return resp, nil
}

// resolve queries the trie, applying the HEAD-to-GET fallback.
func (r *Router) resolve(method string, parts []string, req *Request) *CachedRoute {
	if method == http.MethodHead {
		if cached := r.trie.Lookup(http.MethodHead, parts, req); cached != nil {
			return cached
		}
		return r.trie.Lookup(http.MethodGet, parts, req)
	}
	return r.trie.Lookup(method, parts, req)
}

// notFound is the fallback responder for unmatched requests. It always
// fails with a route-not-found error; the 404 response itself comes
// from error-handling middleware or, absent one, from the transport.
func (r *Router) notFound(req *Request) (*Response, error) {
	return nil, util.NewRouteNotFoundError(req.Method, req.Path)
}

// statusOf derives the metrics status from a chain outcome.
func statusOf(resp *Response, err error) int {
	if err != nil {
		return util.HTTPStatus(err)
	}
	return resp.Status
}

// metricLabels returns the method and path template to tag metrics
// with. A matched request contributes its own method and the route's
// declared template (a HEAD request served by the GET fallback still
// counts as HEAD), bounding cardinality to the number of registered
// routes; unmatched requests contribute empty labels, which the recorder
// replaces with fixed sentinels instead of the raw path.
func metricLabels(requestMethod string, cached *CachedRoute) (method, path string) {
	if cached == nil {
		return "", ""
	}
	return requestMethod, cached.Route.Path
}

// errResponderNoResponse guards against a responder returning neither a
// response nor an error.
var errResponderNoResponse = errors.New("responder returned no response and no error")
