package middleware

import (
	"fmt"
	"net/http"

	"github.com/avello/routeway/internal/router"
)

// Header and content-type constants shared across middleware.
const (
	// RequestIDHeader is the header name for request ID.
	RequestIDHeader = "X-Request-ID"

	contentTypeJSON = "application/json"
)

// errorResponse builds the standard JSON error body used by middleware
// that answer on behalf of the chain.
func errorResponse(status int, message string) *router.Response {
	resp := router.NewResponse(status)
	resp.Header.Set("Content-Type", contentTypeJSON)
	resp.Body = []byte(fmt.Sprintf(`{"error":%q}`, message))
	return resp
}

// statusText returns the canonical reason phrase for a status code,
// falling back to a generic message.
func statusText(status int) string {
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "request failed"
}
