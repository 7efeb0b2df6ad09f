package monitoring

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestMonitorStatus(t *testing.T) {
	m := NewMonitor(zap.NewNop())
	assert.True(t, m.IsHealthy())
	assert.Equal(t, "No runs yet", m.GetStatusSummary())

	m.RecordSuccess("fetched 12 papers, email sent", time.Second)
	assert.True(t, m.IsHealthy())
	assert.Contains(t, m.GetStatusSummary(), "fetched 12 papers")

	m.RecordPartialFailure(errors.New("email not delivered"), time.Second)
	assert.True(t, m.IsHealthy(), "partial failures keep the service healthy")

	m.RecordCriticalFailure(errors.New("arXiv unreachable"), time.Second)
	assert.False(t, m.IsHealthy())
	assert.True(t, strings.HasPrefix(m.GetStatusSummary(), "Last run failed"))
}

func TestHealthHandlers(t *testing.T) {
	m := NewMonitor(zap.NewNop())
	h := NewHealthServer(m, 0, zap.NewNop())

	rec := httptest.NewRecorder()
	h.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK - No runs yet", rec.Body.String())

	m.RecordCriticalFailure(errors.New("boom"), time.Millisecond)

	rec = httptest.NewRecorder()
	h.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	h.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "boom")
}
