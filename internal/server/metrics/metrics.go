// Package metrics exports prometheus metrics of the HTTP API and of the
// account and image workflows.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	AccountWritesTotal   *prometheus.CounterVec
	LoginsTotal          *prometheus.CounterVec
	ImageProcessDuration *prometheus.HistogramVec
}

// New registers every metric on a fresh registry together with the Go and
// process collectors.
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route"},
		),
		HTTPRequestsInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),
		AccountWritesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "account_writes_total",
				Help:      "Account writes by action and result",
			},
			[]string{"action", "result"},
		),
		LoginsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "logins_total",
				Help:      "Token requests by result",
			},
			[]string{"result"},
		),
		ImageProcessDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "image_process_duration_seconds",
				Help:      "Profile picture post-processing duration in seconds",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"result"},
		),
	}
}

// Middleware records count, latency and in-flight requests. Routes are
// labelled by their pattern, unmatched ones as "unmatched".
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) RecordAccountWrite(action string, err error) {
	m.AccountWritesTotal.WithLabelValues(action, result(err)).Inc()
}

func (m *Metrics) RecordLogin(err error) {
	m.LoginsTotal.WithLabelValues(result(err)).Inc()
}

// ImageProcessor decorates an image processor with a duration histogram.
type ImageProcessor struct {
	Next interface {
		Process(ctx context.Context, name string) error
	}
	Metrics *Metrics
}

func (p ImageProcessor) Process(ctx context.Context, name string) error {
	start := time.Now()
	err := p.Next.Process(ctx, name)
	p.Metrics.ImageProcessDuration.WithLabelValues(result(err)).Observe(time.Since(start).Seconds())
	return err
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
