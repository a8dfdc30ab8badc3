// Package metrics registers the chain runtime's prometheus instruments
// (spec.md §4.E expanded: "the chain runtime ... publish a small set of
// counters/gauges").
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the instruments one Runtime publishes. Each chain gets its
// own Metrics instance labeled by chain id so a single process relaying
// between many chains doesn't collide on series.
type Metrics struct {
	BlocksProcessed prometheus.Counter
	MailboxDepth    prometheus.Gauge
	QueryErrors     prometheus.Counter
	SubmitTotal     prometheus.Counter
	SubmitFailures  prometheus.Counter
}

// New creates and registers a Metrics set for the given chain id against
// reg. Passing a fresh prometheus.Registry (rather than the global default)
// keeps per-chain instances from colliding during tests.
func New(reg prometheus.Registerer, chainID string) *Metrics {
	labels := prometheus.Labels{"chain_id": chainID}

	m := &Metrics{
		BlocksProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "ibc_relayer",
			Subsystem:   "chain",
			Name:        "blocks_processed_total",
			Help:        "Blocks whose events this runtime has decoded.",
			ConstLabels: labels,
		}),
		MailboxDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "ibc_relayer",
			Subsystem:   "chain",
			Name:        "mailbox_depth",
			Help:        "Pending requests queued in the runtime's mailbox.",
			ConstLabels: labels,
		}),
		QueryErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "ibc_relayer",
			Subsystem:   "chain",
			Name:        "query_errors_total",
			Help:        "Driver query calls that returned an error.",
			ConstLabels: labels,
		}),
		SubmitTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "ibc_relayer",
			Subsystem:   "chain",
			Name:        "submit_total",
			Help:        "Transaction submissions attempted.",
			ConstLabels: labels,
		}),
		SubmitFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "ibc_relayer",
			Subsystem:   "chain",
			Name:        "submit_failures_total",
			Help:        "Transaction submissions that did not succeed.",
			ConstLabels: labels,
		}),
	}

	reg.MustRegister(m.BlocksProcessed, m.MailboxDepth, m.QueryErrors, m.SubmitTotal, m.SubmitFailures)

	return m
}
