package middleware

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avello/routeway/internal/observability"
	"github.com/avello/routeway/internal/router"
	"github.com/avello/routeway/internal/util"
)

func TestErrorHandlerConvertsRouteNotFound(t *testing.T) {
	t.Parallel()

	inner := router.ResponderFunc(func(context.Context, *router.Request) (*router.Response, error) {
		return nil, util.NewRouteNotFoundError(http.MethodGet, "/missing")
	})

	chain := ErrorHandler(observability.NopLogger()).Wrap(inner)
	resp, err := chain.Respond(context.Background(), router.NewRequest(http.MethodGet, "/missing"))

	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.Equal(t, contentTypeJSON, resp.Header.Get("Content-Type"))
	assert.Contains(t, string(resp.Body), "no route found for GET /missing")
}

func TestErrorHandlerHidesInternalDetails(t *testing.T) {
	t.Parallel()

	chain := ErrorHandler(observability.NopLogger()).Wrap(failingResponder())
	resp, err := chain.Respond(context.Background(), router.NewRequest(http.MethodGet, "/x"))

	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	assert.NotContains(t, string(resp.Body), "boom")
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, string(resp.Body))
}

func TestErrorHandlerKeepsAbortStatus(t *testing.T) {
	t.Parallel()

	inner := router.ResponderFunc(func(context.Context, *router.Request) (*router.Response, error) {
		return nil, util.NewStatusError(http.StatusConflict, "already exists")
	})

	chain := ErrorHandler(observability.NopLogger()).Wrap(inner)
	resp, err := chain.Respond(context.Background(), router.NewRequest(http.MethodPost, "/x"))

	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.Status)
	assert.Contains(t, string(resp.Body), "already exists")
}

func TestErrorHandlerPassthrough(t *testing.T) {
	t.Parallel()

	chain := ErrorHandler(observability.NopLogger()).Wrap(okResponder("untouched"))
	resp, err := chain.Respond(context.Background(), router.NewRequest(http.MethodGet, "/x"))

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "untouched", string(resp.Body))
}
