package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics instruments the callback surface. The bot exposes only a
// handful of routes, so requests are partitioned by route and status alone.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

// NewHTTPMetrics registers the HTTP collectors under the given namespace.
// Re-registration reuses the existing collector so test setups can construct
// the middleware more than once against the default registerer.
func NewHTTPMetrics(reg prometheus.Registerer, namespace string) (*HTTPMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "squad"
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route and status code.",
	}, []string{"route", "status"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds by route and status code.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "status"})

	inFlight := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "in_flight_requests",
		Help:      "HTTP requests currently being served.",
	})

	if err := register(reg, requests, &requests); err != nil {
		return nil, err
	}
	if err := register(reg, duration, &duration); err != nil {
		return nil, err
	}
	if err := register(reg, inFlight, &inFlight); err != nil {
		return nil, err
	}

	return &HTTPMetrics{requests: requests, duration: duration, inFlight: inFlight}, nil
}

// register adds a collector, adopting the already-registered instance when
// one exists. out must point at a variable of the collector's concrete type.
func register[C prometheus.Collector](reg prometheus.Registerer, collector C, out *C) error {
	err := reg.Register(collector)
	if err == nil {
		return nil
	}
	if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
		if existing, ok := already.ExistingCollector.(C); ok {
			*out = existing
			return nil
		}
	}
	return err
}

// Handler records request counts, latency, and in-flight load.
func (m *HTTPMetrics) Handler() gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		start := time.Now()
		m.inFlight.Inc()
		defer m.inFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := strconv.Itoa(c.Writer.Status())

		m.requests.WithLabelValues(route, status).Inc()
		m.duration.WithLabelValues(route, status).Observe(time.Since(start).Seconds())
	}
}
