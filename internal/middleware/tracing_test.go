package middleware

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/avello/routeway/internal/observability"
	"github.com/avello/routeway/internal/router"
)

func newTestTracer(t *testing.T, enabled bool) *observability.Tracer {
	t.Helper()

	tracer, err := observability.NewTracer(observability.TracerConfig{
		ServiceName:  "middleware-test",
		SamplingRate: 1.0,
		Enabled:      enabled,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = tracer.Shutdown(context.Background())
	})

	return tracer
}

func TestTracingPassthrough(t *testing.T) {
	tracer := newTestTracer(t, false)
	chain := Tracing(tracer).Wrap(okResponder("ok"))

	resp, err := chain.Respond(context.Background(), router.NewRequest(http.MethodGet, "/"))
	require.NoError(t, err)
	assert.Equal(t, "ok", string(resp.Body))
}

func TestTracingPropagatesSpanContext(t *testing.T) {
	tracer := newTestTracer(t, true)

	var spanCtx trace.SpanContext
	probe := router.ResponderFunc(func(ctx context.Context, req *router.Request) (*router.Response, error) {
		spanCtx = trace.SpanFromContext(ctx).SpanContext()
		return router.NewResponse(http.StatusOK), nil
	})

	chain := Tracing(tracer).Wrap(probe)

	_, err := chain.Respond(context.Background(), router.NewRequest(http.MethodGet, "/users/42"))
	require.NoError(t, err)
	assert.True(t, spanCtx.IsValid())
	assert.True(t, spanCtx.IsSampled())
}

func TestTracingPropagatesErrors(t *testing.T) {
	tracer := newTestTracer(t, true)
	chain := Tracing(tracer).Wrap(failingResponder())

	resp, err := chain.Respond(context.Background(), router.NewRequest(http.MethodGet, "/"))
	assert.ErrorIs(t, err, errBoom)
	assert.Nil(t, resp)
}
