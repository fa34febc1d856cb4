package middleware

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/avello/routeway/internal/observability"
	"github.com/avello/routeway/internal/router"
	"github.com/avello/routeway/internal/util"
)

// Tracing returns a middleware that opens a span around the downstream
// chain. The span records the matched route template rather than the raw
// path, mirroring the metrics cardinality policy.
func Tracing(tracer *observability.Tracer) router.Middleware {
	return router.MiddlewareFunc(func(next router.Responder) router.Responder {
		return router.ResponderFunc(func(ctx context.Context, req *router.Request) (*router.Response, error) {
			ctx, span := tracer.Start(ctx, "http.dispatch "+req.Method,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.request.method", req.Method),
				),
			)
			defer span.End()

			resp, err := next.Respond(ctx, req)

			if route := req.Route(); route != nil {
				span.SetAttributes(attribute.String("http.route", route.Route.Path))
			}

			status := util.HTTPStatus(err)
			if err == nil {
				status = resp.Status
			}
			span.SetAttributes(attribute.Int("http.response.status_code", status))

			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}

			return resp, err
		})
	})
}
