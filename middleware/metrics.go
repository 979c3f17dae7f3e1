package middleware

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/stratahttp/strata"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Registerer defaults to prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
	// Namespace prefixes the metric names.
	Namespace string
}

// Metrics records a request counter by method and status, and a request
// duration histogram by method.
type Metrics[C strata.Context] struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates and registers the metrics middleware. Registration
// panics on metric name collisions, which only happens at startup.
func NewMetrics[C strata.Context](cfg MetricsConfig) *Metrics[C] {
	reg := cfg.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics[C]{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed, by method and status.",
		}, []string{"method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds, by method.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

// Handle implements the middleware contract.
func (m *Metrics[C]) Handle(ctx C, next strata.HandlerFunc[C]) (strata.Response, error) {
	method := ctx.Request().Method
	start := time.Now()

	res, err := next(ctx)
	if err != nil {
		m.record(method, statusFromError(err), time.Since(start))
		return nil, err
	}

	return observe(res, func(status int, _ int64) {
		m.record(method, status, time.Since(start))
	}), nil
}

func (m *Metrics[C]) record(method string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method).Observe(elapsed.Seconds())
}
