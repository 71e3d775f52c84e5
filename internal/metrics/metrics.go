// Package metrics exposes Prometheus instrumentation for the
// synchronization layer. Metrics are package globals registered via
// promauto, so instrumented call sites need no wiring.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns the scrape handler for the default registry, mounted
// at /metrics when a listen address is configured.
func Handler() http.Handler {
	return promhttp.Handler()
}

var (
	// AdapterOps counts engine-adapter mutations, labeled by operation
	// (add, delete, clear) and source category. Failed operations are
	// counted separately so drift windows are visible.
	AdapterOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repgraph_adapter_ops_total",
			Help: "Total engine adapter mutations applied",
		},
		[]string{"op", "category"},
	)

	// AdapterErrors counts failed adapter calls by operation.
	AdapterErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repgraph_adapter_errors_total",
			Help: "Total engine adapter calls that returned an error",
		},
		[]string{"op"},
	)

	// ScoreQueries counts score-view reads.
	ScoreQueries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "repgraph_score_queries_total",
			Help: "Total score queries served",
		},
	)

	// RebuildRuns counts rebuild invocations by outcome
	// (ok, interrupted, error).
	RebuildRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repgraph_rebuild_runs_total",
			Help: "Total rebuild runs by outcome",
		},
		[]string{"outcome"},
	)

	// GraphEdges tracks the current edge count per category as
	// reported by the engine after a rebuild or status scan.
	GraphEdges = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "repgraph_graph_edges",
			Help: "Current graph edge count per source category",
		},
		[]string{"category"},
	)
)
