package router

import "context"

// Responder is the capability at the heart of dispatch: given a request,
// produce a response or fail. Handlers and fully composed middleware
// chains are both Responders. Implementations must be safe for
// concurrent use; any per-request state belongs on the Request.
type Responder interface {
	Respond(ctx context.Context, req *Request) (*Response, error)
}

// ResponderFunc adapts a function to the Responder interface.
type ResponderFunc func(ctx context.Context, req *Request) (*Response, error)

// Respond implements Responder.
func (f ResponderFunc) Respond(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// Middleware wraps a downstream Responder, producing a new Responder. A
// middleware is free to short-circuit (respond or fail without invoking
// downstream) or to post-process the downstream result.
type Middleware interface {
	Wrap(next Responder) Responder
}

// MiddlewareFunc adapts a function to the Middleware interface.
type MiddlewareFunc func(next Responder) Responder

// Wrap implements Middleware.
func (f MiddlewareFunc) Wrap(next Responder) Responder {
	return f(next)
}

// Chain composes middleware around a terminal responder. The first
// middleware is outermost: it sees the request first and the response
// last. Composition happens once, at registration time; the returned
// Responder is immutable and never recomposed per request.
func Chain(handler Responder, middleware ...Middleware) Responder {
	responder := handler
	for i := len(middleware) - 1; i >= 0; i-- {
		responder = middleware[i].Wrap(responder)
	}
	return responder
}
