package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors. A nil *Metrics is a valid no-op.
type Metrics struct {
	transitions     *prometheus.CounterVec
	payrollDuration *prometheus.HistogramVec
	payrollFailures *prometheus.CounterVec
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	gatherer        prometheus.Gatherer
}

// New registers the collectors on reg. A nil registry yields no-op metrics.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		return nil
	}
	m := &Metrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lifecycle_transitions_total",
			Help: "Committed status transitions by entity.",
		}, []string{"entity", "from", "to"}),
		payrollDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "payroll_operation_duration_seconds",
			Help:    "Duration of payroll period operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		payrollFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payroll_operation_failures_total",
			Help: "Failed payroll period operations.",
		}, []string{"operation"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		gatherer: reg,
	}
	reg.MustRegister(m.transitions, m.payrollDuration, m.payrollFailures, m.requests, m.requestDuration)
	return m
}

func (m *Metrics) RecordTransition(entity, from, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(entity, from, to).Inc()
}

func (m *Metrics) ObservePayroll(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.payrollDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		m.payrollFailures.WithLabelValues(operation).Inc()
	}
}

// Middleware counts requests by matched route so path ids do not explode label cardinality.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
