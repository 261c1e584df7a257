package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordTransition(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordTransition("trip_invoice", "draft", "confirmed")
	m.RecordTransition("trip_invoice", "draft", "confirmed")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.transitions.WithLabelValues("trip_invoice", "draft", "confirmed")))
}

func TestObservePayrollCountsFailures(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObservePayroll("generate", 10*time.Millisecond, nil)
	m.ObservePayroll("generate", 10*time.Millisecond, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.payrollFailures.WithLabelValues("generate")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.payrollDuration))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordTransition("a", "b", "c")
		m.ObservePayroll("generate", time.Second, nil)
	})
	assert.Nil(t, New(nil))
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New(prometheus.NewRegistry())

	engine := gin.New()
	engine.Use(m.Middleware())
	engine.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	engine.GET("/metrics", gin.WrapH(m.Handler()))

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/7", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/items/:id", "204")))

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}
