package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avello/routeway/internal/router"
)

func newTestRouter(t *testing.T, routes ...router.Route) *router.Router {
	t.Helper()

	r := router.New()
	require.NoError(t, r.Register(routes...))
	return r
}

func echoParamHandler(name string) router.Responder {
	return router.ResponderFunc(func(ctx context.Context, req *router.Request) (*router.Response, error) {
		return router.TextResponse(http.StatusOK, req.Param(name)), nil
	})
}

func TestHandlerServesMatchedRoute(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t,
		router.NewRoute(http.MethodGet, "/users/:id", echoParamHandler("id")),
	)
	handler := NewHandler(r, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/42", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", rec.Body.String())
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestHandlerNotFound(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)
	handler := NewHandler(r, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerStripsHEADBody(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t,
		router.NewRoute(http.MethodGet, "/docs", router.ResponderFunc(
			func(ctx context.Context, req *router.Request) (*router.Response, error) {
				return router.TextResponse(http.StatusOK, "the documentation"), nil
			},
		)),
	)
	handler := NewHandler(r, nil)

	// HEAD falls back to the GET chain; whatever body that chain
	// produced must not reach the wire.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/docs", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestHandlerPassesRequestBody(t *testing.T) {
	t.Parallel()

	var received []byte
	r := newTestRouter(t,
		router.NewRoute(http.MethodPost, "/ingest", router.ResponderFunc(
			func(ctx context.Context, req *router.Request) (*router.Response, error) {
				received = req.Body
				return router.NewResponse(http.StatusAccepted), nil
			},
		)),
	)
	handler := NewHandler(r, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(
		http.MethodPost, "/ingest", strings.NewReader(`{"k":"v"}`)))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, `{"k":"v"}`, string(received))
}

func TestHandlerUncaughtErrorBecomesPlain500(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t,
		router.NewRoute(http.MethodGet, "/broken", router.ResponderFunc(
			func(ctx context.Context, req *router.Request) (*router.Response, error) {
				return nil, assert.AnError
			},
		)),
	)
	handler := NewHandler(r, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/broken", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, http.StatusText(http.StatusInternalServerError)+"\n", rec.Body.String())
}

func TestHandlerCopiesResponseHeaders(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t,
		router.NewRoute(http.MethodGet, "/custom", router.ResponderFunc(
			func(ctx context.Context, req *router.Request) (*router.Response, error) {
				resp := router.NewResponse(http.StatusOK)
				resp.Header.Set("X-Custom", "yes")
				resp.Header.Add("X-Multi", "a")
				resp.Header.Add("X-Multi", "b")
				return resp, nil
			},
		)),
	)
	handler := NewHandler(r, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/custom", nil))

	assert.Equal(t, "yes", rec.Header().Get("X-Custom"))
	assert.Equal(t, []string{"a", "b"}, rec.Header().Values("X-Multi"))
}
