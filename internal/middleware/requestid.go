package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/avello/routeway/internal/router"
	"github.com/avello/routeway/internal/util"
)

// RequestID returns a middleware that assigns each request an ID,
// honoring one supplied by the client in the X-Request-ID header. The ID
// travels down the chain in the context and back to the client on the
// response.
func RequestID() router.Middleware {
	return RequestIDWithGenerator(func() string {
		return uuid.New().String()
	})
}

// RequestIDWithGenerator returns a RequestID middleware that uses a
// custom ID generator.
func RequestIDWithGenerator(generator func() string) router.Middleware {
	return router.MiddlewareFunc(func(next router.Responder) router.Responder {
		return router.ResponderFunc(func(ctx context.Context, req *router.Request) (*router.Response, error) {
			requestID := req.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = generator()
			}

			ctx = util.ContextWithRequestID(ctx, requestID)

			resp, err := next.Respond(ctx, req)
			if resp != nil {
				resp.Header.Set(RequestIDHeader, requestID)
			}
			return resp, err
		})
	})
}
