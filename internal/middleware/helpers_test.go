package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/avello/routeway/internal/router"
)

var errBoom = errors.New("boom")

// okResponder answers 200 with the given body.
func okResponder(body string) router.Responder {
	return router.ResponderFunc(func(context.Context, *router.Request) (*router.Response, error) {
		return router.TextResponse(http.StatusOK, body), nil
	})
}

// failingResponder always fails with errBoom.
func failingResponder() router.Responder {
	return router.ResponderFunc(func(context.Context, *router.Request) (*router.Response, error) {
		return nil, errBoom
	})
}

// statusResponder answers with a fixed status and empty body.
func statusResponder(status int) router.Responder {
	return router.ResponderFunc(func(context.Context, *router.Request) (*router.Response, error) {
		return router.NewResponse(status), nil
	})
}

// panickingResponder panics with the given value.
func panickingResponder(v any) router.Responder {
	return router.ResponderFunc(func(context.Context, *router.Request) (*router.Response, error) {
		panic(v)
	})
}
