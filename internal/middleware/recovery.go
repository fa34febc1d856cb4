package middleware

import (
	"context"
	"net/http"
	"runtime/debug"

	"github.com/avello/routeway/internal/observability"
	"github.com/avello/routeway/internal/router"
)

// Recovery returns a middleware that recovers from panics anywhere
// downstream, logs the panic with its stack, and answers 500 instead of
// letting the panic tear down the serving goroutine.
func Recovery(logger observability.Logger) router.Middleware {
	return router.MiddlewareFunc(func(next router.Responder) router.Responder {
		return router.ResponderFunc(func(ctx context.Context, req *router.Request) (resp *router.Response, err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("panic recovered",
						observability.String("method", req.Method),
						observability.String("path", req.Path),
						observability.Any("error", r),
						observability.String("stack", string(debug.Stack())),
					)

					resp = errorResponse(http.StatusInternalServerError, "internal server error")
					err = nil
				}
			}()

			return next.Respond(ctx, req)
		})
	})
}
