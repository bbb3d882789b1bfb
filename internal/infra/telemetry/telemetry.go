package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the collectors the core instruments.
type Metrics struct {
	LoginRequests    prometheus.Counter
	LoginCompletions *prometheus.CounterVec
	ProverLatency    prometheus.Histogram
	ToolCalls        *prometheus.CounterVec
	ConversationSize prometheus.Gauge
}

// NewMetrics constructs and registers the core collectors.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "squad"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		LoginRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_requests_total",
			Help:      "Total number of login URLs issued.",
		}),
		LoginCompletions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_completions_total",
			Help:      "Total number of login completions partitioned by outcome.",
		}, []string{"outcome"}),
		ProverLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prover_request_seconds",
			Help:      "Latency of proving-service round trips.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30},
		}),
		ToolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Total number of LLM tool dispatches partitioned by tool.",
		}, []string{"tool"}),
		ConversationSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "conversation_cache_entries",
			Help:      "Number of live conversation continuation entries.",
		}),
	}

	reg.MustRegister(m.LoginRequests, m.LoginCompletions, m.ProverLatency, m.ToolCalls, m.ConversationSize)
	return m
}
