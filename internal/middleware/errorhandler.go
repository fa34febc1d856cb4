package middleware

import (
	"context"
	"errors"

	"github.com/avello/routeway/internal/observability"
	"github.com/avello/routeway/internal/router"
	"github.com/avello/routeway/internal/util"
)

// ErrorHandler returns a middleware that converts chain failures into
// JSON error responses. It is the primary error-to-response mechanism
// and belongs early in each chain (outermost after Recovery); without it
// errors propagate out of dispatch for the transport to handle.
//
// The response status comes from util.HTTPStatus: route-not-found maps
// to 404, aborts keep their chosen status, anything unknown becomes 500.
func ErrorHandler(logger observability.Logger) router.Middleware {
	return router.MiddlewareFunc(func(next router.Responder) router.Responder {
		return router.ResponderFunc(func(ctx context.Context, req *router.Request) (*router.Response, error) {
			resp, err := next.Respond(ctx, req)
			if err == nil {
				return resp, nil
			}

			status := util.HTTPStatus(err)

			if errors.Is(err, util.ErrRouteNotFound) {
				logger.Debug("route not found",
					observability.String("method", req.Method),
					observability.String("path", req.Path),
				)
			} else if util.IsServerError(err) {
				logger.Error("request failed",
					observability.String("method", req.Method),
					observability.String("path", req.Path),
					observability.Int("status", status),
					observability.Error(err),
				)
			}

			// Never echo internal error details on 5xx responses.
			message := statusText(status)
			if util.IsClientError(err) {
				message = err.Error()
			}

			return errorResponse(status, message), nil
		})
	})
}
