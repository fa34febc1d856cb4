package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/avello/routeway/internal/observability"
	"github.com/avello/routeway/internal/router"
	"github.com/avello/routeway/internal/util"
)

// Logging returns a middleware that logs every request after the
// downstream chain completes. Successful requests log at info;
// route-not-found failures are benign and log at debug; everything else
// logs at error.
func Logging(logger observability.Logger) router.Middleware {
	return router.MiddlewareFunc(func(next router.Responder) router.Responder {
		return router.ResponderFunc(func(ctx context.Context, req *router.Request) (*router.Response, error) {
			start := time.Now()
			ctx = util.ContextWithStartTime(ctx, start)

			resp, err := next.Respond(ctx, req)
			duration := time.Since(start)

			fields := []observability.Field{
				observability.String("method", req.Method),
				observability.String("path", req.Path),
				observability.Duration("duration", duration),
				observability.String("remote_addr", req.RemoteAddr),
				observability.String("request_id", util.RequestIDFromContext(ctx)),
			}

			switch {
			case err == nil:
				logger.Info("request", append(fields,
					observability.Int("status", resp.Status),
					observability.Int("size", len(resp.Body)),
				)...)
			case errors.Is(err, util.ErrRouteNotFound):
				logger.Debug("request", append(fields,
					observability.Int("status", util.HTTPStatus(err)),
				)...)
			default:
				logger.Error("request", append(fields,
					observability.Int("status", util.HTTPStatus(err)),
					observability.Error(err),
				)...)
			}

			return resp, err
		})
	})
}
