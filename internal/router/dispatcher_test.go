package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avello/routeway/internal/observability"
	"github.com/avello/routeway/internal/util"
)

// recordedRequest is one observation captured by captureRecorder.
type recordedRequest struct {
	method   string
	path     string
	status   int
	duration time.Duration
}

// captureRecorder records metric emissions for assertions.
type captureRecorder struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (c *captureRecorder) RecordRequest(method, path string, status int, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, recordedRequest{
		method:   method,
		path:     path,
		status:   status,
		duration: duration,
	})
}

func (c *captureRecorder) all() []recordedRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]recordedRequest, len(c.requests))
	copy(out, c.requests)
	return out
}

func TestDispatchParameterizedRoute(t *testing.T) {
	t.Parallel()

	recorder := &captureRecorder{}
	r := New(WithMetrics(recorder))
	require.NoError(t, r.Register(
		NewRoute(http.MethodGet, "/widgets/:id", ResponderFunc(
			func(_ context.Context, req *Request) (*Response, error) {
				return TextResponse(http.StatusOK, req.Param("id")), nil
			})),
	))

	resp, err := r.Dispatch(context.Background(), NewRequest(http.MethodGet, "/widgets/7"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Contains(t, string(resp.Body), "7")

	requests := recorder.all()
	require.Len(t, requests, 1)

	// Metrics carry the declared template, not the literal request path.
	assert.Equal(t, http.MethodGet, requests[0].method)
	assert.Equal(t, "/widgets/:id", requests[0].path)
	assert.Equal(t, http.StatusOK, requests[0].status)
}

func TestDispatchNotFound(t *testing.T) {
	t.Parallel()

	recorder := &captureRecorder{}
	r := New(WithMetrics(recorder))
	require.NoError(t, r.Register(
		NewRoute(http.MethodGet, "/known", okHandler("known", nil)),
	))

	resp, err := r.Dispatch(context.Background(), NewRequest(http.MethodGet, "/nonexistent"))
	assert.Nil(t, resp)
	require.Error(t, err)
	assert.True(t, errors.Is(err, util.ErrRouteNotFound))
	assert.Equal(t, http.StatusNotFound, util.HTTPStatus(err))

	requests := recorder.all()
	require.Len(t, requests, 1)

	// Unmatched requests never leak the raw path into metrics: the
	// dispatcher emits empty labels for the recorder to replace with
	// its sentinels.
	assert.Equal(t, "", requests[0].method)
	assert.Equal(t, "", requests[0].path)
	assert.Equal(t, http.StatusNotFound, requests[0].status)
}

func TestDispatchNotFoundSentinelLabels(t *testing.T) {
	t.Parallel()

	// End to end with the real Prometheus recorder: the counter series
	// uses the sentinel labels, not the requested path.
	metrics := observability.NewMetrics("dispatchtest")
	r := New(WithMetrics(metrics))
	require.NoError(t, r.Register(
		NewRoute(http.MethodGet, "/known", okHandler("known", nil)),
	))

	_, err := r.Dispatch(context.Background(), NewRequest(http.MethodGet, "/nonexistent"))
	require.Error(t, err)

	rec := newMetricsSnapshot(t, metrics)
	assert.Contains(t, rec, fmt.Sprintf(
		`dispatchtest_requests_total{method=%q,path=%q,status="404"} 1`,
		observability.UndefinedMethod, observability.UndefinedPath,
	))
	assert.NotContains(t, rec, "/nonexistent")
}

func TestDispatchUncaughtErrorRecords500AndReraises(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	recorder := &captureRecorder{}
	r := New(WithMetrics(recorder))
	require.NoError(t, r.Register(
		NewRoute(http.MethodGet, "/explode", ResponderFunc(
			func(context.Context, *Request) (*Response, error) {
				return nil, boom
			})),
	))

	resp, err := r.Dispatch(context.Background(), NewRequest(http.MethodGet, "/explode"))
	assert.Nil(t, resp)
	require.ErrorIs(t, err, boom)

	requests := recorder.all()
	require.Len(t, requests, 1)
	assert.Equal(t, http.StatusInternalServerError, requests[0].status)
	assert.Equal(t, "/explode", requests[0].path)
}

func TestDispatchErrorConvertedByMiddleware(t *testing.T) {
	t.Parallel()

	recorder := &captureRecorder{}
	convert := MiddlewareFunc(func(next Responder) Responder {
		return ResponderFunc(func(ctx context.Context, req *Request) (*Response, error) {
			resp, err := next.Respond(ctx, req)
			if err != nil {
				return TextResponse(util.HTTPStatus(err), err.Error()), nil
			}
			return resp, nil
		})
	})

	r := New(WithMetrics(recorder), WithMiddleware(convert))
	require.NoError(t, r.Register(
		NewRoute(http.MethodGet, "/explode", ResponderFunc(
			func(context.Context, *Request) (*Response, error) {
				return nil, errors.New("boom")
			})),
	))

	resp, err := r.Dispatch(context.Background(), NewRequest(http.MethodGet, "/explode"))
	require.NoError(t, err, "converted errors must not propagate")
	assert.Equal(t, http.StatusInternalServerError, resp.Status)

	requests := recorder.all()
	require.Len(t, requests, 1)
	assert.Equal(t, http.StatusInternalServerError, requests[0].status)
}

func TestDispatchHEADScenarios(t *testing.T) {
	t.Parallel()

	var healthCalls, widgetCalls int
	r := New()
	require.NoError(t, r.Register(
		NewRoute(http.MethodGet, "/health", okHandler("healthy", &healthCalls)),
		NewRoute(http.MethodGet, "/widgets/:id", ResponderFunc(
			func(_ context.Context, req *Request) (*Response, error) {
				widgetCalls++
				return TextResponse(http.StatusOK, req.Param("id")), nil
			})),
	))

	t.Run("literal GET gets empty HEAD", func(t *testing.T) {
		resp, err := r.Dispatch(context.Background(), NewRequest(http.MethodHead, "/health"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.Status)
		assert.Empty(t, resp.Body)
		assert.Zero(t, healthCalls)
	})

	t.Run("parameterized GET answers HEAD in full", func(t *testing.T) {
		resp, err := r.Dispatch(context.Background(), NewRequest(http.MethodHead, "/widgets/7"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.Status)
		assert.Equal(t, "7", string(resp.Body))
		assert.Equal(t, 1, widgetCalls)
	})

	t.Run("HEAD and GET agree for parameterized routes", func(t *testing.T) {
		getResp, err := r.Dispatch(context.Background(), NewRequest(http.MethodGet, "/widgets/7"))
		require.NoError(t, err)
		headResp, err := r.Dispatch(context.Background(), NewRequest(http.MethodHead, "/widgets/7"))
		require.NoError(t, err)
		assert.Equal(t, getResp.Status, headResp.Status)
		assert.Equal(t, getResp.Body, headResp.Body)
	})
}

func TestDispatchAttachesRouteTemplateToContext(t *testing.T) {
	t.Parallel()

	var seen string
	r := New()
	require.NoError(t, r.Register(
		NewRoute(http.MethodGet, "/users/:id", ResponderFunc(
			func(ctx context.Context, req *Request) (*Response, error) {
				seen = util.RouteFromContext(ctx)
				return NewResponse(http.StatusOK), nil
			})),
	))

	_, err := r.Dispatch(context.Background(), NewRequest(http.MethodGet, "/users/42"))
	require.NoError(t, err)
	assert.Equal(t, "/users/:id", seen)
}

func TestDispatchHEADFallbackMetricLabels(t *testing.T) {
	t.Parallel()

	recorder := &captureRecorder{}
	r := New(WithMetrics(recorder))
	require.NoError(t, r.Register(
		NewRoute(http.MethodGet, "/widgets/:id", ResponderFunc(
			func(_ context.Context, req *Request) (*Response, error) {
				return TextResponse(http.StatusOK, req.Param("id")), nil
			})),
	))

	_, err := r.Dispatch(context.Background(), NewRequest(http.MethodHead, "/widgets/7"))
	require.NoError(t, err)

	// A HEAD request served through the GET fallback still counts as
	// HEAD, tagged with the serving route's template.
	requests := recorder.all()
	require.Len(t, requests, 1)
	assert.Equal(t, http.MethodHead, requests[0].method)
	assert.Equal(t, "/widgets/:id", requests[0].path)
}

func TestDispatchIdempotentRouting(t *testing.T) {
	t.Parallel()

	r := New()
	require.NoError(t, r.Register(
		NewRoute(http.MethodGet, "/users/:id", ResponderFunc(
			func(_ context.Context, req *Request) (*Response, error) {
				return TextResponse(http.StatusOK, req.Param("id")), nil
			})),
	))

	// Repeated identical requests route identically: no matcher
	// mutation happens after registration.
	for i := 0; i < 50; i++ {
		req := NewRequest(http.MethodGet, "/users/42")
		resp, err := r.Dispatch(context.Background(), req)
		require.NoError(t, err)
		require.Equal(t, "42", string(resp.Body))
		require.Equal(t, "/users/:id", req.Route().Route.Path)
	}
}

func TestDispatchConcurrentParamIsolation(t *testing.T) {
	t.Parallel()

	r := New()
	require.NoError(t, r.Register(
		NewRoute(http.MethodGet, "/users/:id", ResponderFunc(
			func(_ context.Context, req *Request) (*Response, error) {
				return TextResponse(http.StatusOK, req.Param("id")), nil
			})),
	))

	const workers = 64
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("user-%d", i)
			for j := 0; j < 100; j++ {
				req := NewRequest(http.MethodGet, "/users/"+id)
				resp, err := r.Dispatch(context.Background(), req)
				if err != nil {
					errs <- err
					return
				}
				if string(resp.Body) != id {
					errs <- fmt.Errorf("binding leaked across requests: want %s, got %s", id, resp.Body)
					return
				}
			}
		}(i)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
