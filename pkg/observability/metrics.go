// Package observability exposes prometheus instrumentation for resolution
// runs.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the collectors the orchestrator reports into. Each set is
// backed by its own registry so embedders can mount it where they like.
type Metrics struct {
	Registry *prometheus.Registry

	Resolutions     *prometheus.CounterVec
	StepsExecuted   *prometheus.CounterVec
	SubprocessRuns  *prometheus.CounterVec
	ChainLength     prometheus.Histogram
	ResolveDuration prometheus.Histogram
}

// NewMetrics creates a metric set backed by a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		Resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stateline",
			Name:      "resolutions_total",
			Help:      "Resolution attempts by outcome (ready, stuck, failed, canceled, partial).",
		}, []string{"outcome"}),
		StepsExecuted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stateline",
			Name:      "steps_executed_total",
			Help:      "Prerequisite steps executed in session, by platform.",
		}, []string{"platform"}),
		SubprocessRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stateline",
			Name:      "subprocess_runs_total",
			Help:      "Cross-platform test runner spawns, by platform and result.",
		}, []string{"platform", "result"}),
		ChainLength: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "stateline",
			Name:      "chain_length",
			Help:      "Length of resolved prerequisite chains.",
			Buckets:   prometheus.LinearBuckets(1, 2, 10),
		}),
		ResolveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "stateline",
			Name:      "resolve_duration_seconds",
			Help:      "Wall time of full resolution runs.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.Resolutions, m.StepsExecuted, m.SubprocessRuns, m.ChainLength, m.ResolveDuration)
	return m
}
