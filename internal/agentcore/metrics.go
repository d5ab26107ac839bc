package agentcore

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the per-iteration and per-tool-call counters an Agent
// reports while running its loop. A nil *Metrics disables all recording.
type Metrics struct {
	LLMRequestDuration    *prometheus.HistogramVec
	LLMRequestCounter     *prometheus.CounterVec
	LLMTokensUsed         *prometheus.CounterVec
	ToolExecutionDuration *prometheus.HistogramVec
	ToolExecutionCounter  *prometheus.CounterVec
}

// NewMetrics registers the agent loop's counters and histograms with reg.
// Pass prometheus.NewRegistry() (or prometheus.DefaultRegisterer wrapped in
// a *prometheus.Registry) once per process.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LLMRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "conduit",
			Subsystem: "agent",
			Name:      "llm_request_duration_seconds",
			Help:      "Latency of provider chat calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider", "model"}),
		LLMRequestCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "conduit",
			Subsystem: "agent",
			Name:      "llm_requests_total",
			Help:      "Provider chat calls by outcome.",
		}, []string{"provider", "model", "status"}),
		LLMTokensUsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "conduit",
			Subsystem: "agent",
			Name:      "llm_tokens_total",
			Help:      "Tokens consumed by provider calls, by kind.",
		}, []string{"provider", "model", "kind"}),
		ToolExecutionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "conduit",
			Subsystem: "agent",
			Name:      "tool_execution_duration_seconds",
			Help:      "Latency of tool registry dispatches.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),
		ToolExecutionCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "conduit",
			Subsystem: "agent",
			Name:      "tool_executions_total",
			Help:      "Tool registry dispatches by outcome.",
		}, []string{"tool", "status"}),
	}
	reg.MustRegister(
		m.LLMRequestDuration,
		m.LLMRequestCounter,
		m.LLMTokensUsed,
		m.ToolExecutionDuration,
		m.ToolExecutionCounter,
	)
	return m
}
