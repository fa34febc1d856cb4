package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/avello/routeway/internal/observability"
)

// newMetricsSnapshot scrapes the metrics endpoint and returns the
// exposition text for assertions.
func newMetricsSnapshot(t *testing.T, m *observability.Metrics) string {
	t.Helper()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)
	return rec.Body.String()
}
