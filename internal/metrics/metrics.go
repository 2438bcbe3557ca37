// Package metrics provides Prometheus metrics for report runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal tracks outbound GraphQL requests
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fleetreport",
			Subsystem: "http_client",
			Name:      "requests_total",
			Help:      "Total number of outbound GraphQL requests",
		},
		[]string{"customer", "status_code"},
	)

	// HTTPRequestDuration tracks outbound GraphQL request duration
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fleetreport",
			Subsystem: "http_client",
			Name:      "request_duration_seconds",
			Help:      "Duration of outbound GraphQL requests in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"customer"},
	)

	// CustomersTotal tracks per-customer outcomes of a run
	CustomersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fleetreport",
			Subsystem: "run",
			Name:      "customers_total",
			Help:      "Customers processed by outcome (ok, fetch_failed, no_data)",
		},
		[]string{"variant", "outcome"},
	)

	// RowsProjected tracks rows emitted by the projector
	RowsProjected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fleetreport",
			Subsystem: "projector",
			Name:      "rows_total",
			Help:      "Rows emitted by the projector",
		},
		[]string{"customer", "variant"},
	)

	// EventsSkipped tracks events dropped because of unreadable timestamps
	EventsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fleetreport",
			Subsystem: "projector",
			Name:      "events_skipped_total",
			Help:      "Events skipped because their start time could not be parsed",
		},
		[]string{"customer", "variant"},
	)
)

// WriteTextfile dumps the default registry in the node_exporter textfile
// format. An empty path is a no-op.
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
