package server

import (
	"io"
	"net/http"

	"github.com/avello/routeway/internal/observability"
	"github.com/avello/routeway/internal/router"
	"github.com/avello/routeway/internal/util"
)

// maxRequestBodySize bounds how much of a request body is read into
// memory before dispatch.
const maxRequestBodySize = 10 << 20

// Handler adapts net/http requests to the routing engine.
type Handler struct {
	router *router.Router
	logger observability.Logger
}

// NewHandler creates a transport handler for the given router.
func NewHandler(r *router.Router, logger observability.Logger) *Handler {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Handler{router: r, logger: logger}
}

// ServeHTTP implements http.Handler. Chain errors reaching this point
// were already recorded by the dispatcher; they surface to the client as
// a plain 500 unless a middleware converted them into a response first.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req := router.NewRequest(r.Method, r.URL.Path)
	req.Header = r.Header
	req.RemoteAddr = r.RemoteAddr

	if r.Body != nil {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
		if err != nil {
			h.logger.Warn("failed to read request body",
				observability.String("method", r.Method),
				observability.String("path", r.URL.Path),
				observability.Error(err),
			)
			http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge),
				http.StatusRequestEntityTooLarge)
			return
		}
		req.Body = body
	}

	resp, err := h.router.Dispatch(r.Context(), req)
	if err != nil {
		status := util.HTTPStatus(err)
		http.Error(w, http.StatusText(status), status)
		return
	}

	writeResponse(w, r.Method, resp)
}

// writeResponse serializes a structured response onto the wire. HEAD
// responses keep their headers and status but never carry a body.
func writeResponse(w http.ResponseWriter, method string, resp *router.Response) {
	header := w.Header()
	for key, values := range resp.Header {
		for _, value := range values {
			header.Add(key, value)
		}
	}

	w.WriteHeader(resp.Status)

	if method == http.MethodHead {
		return
	}
	if len(resp.Body) > 0 {
		_, _ = w.Write(resp.Body)
	}
}
