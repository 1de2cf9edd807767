// Package metrics exposes the ledger's Prometheus instruments.
package metrics

import (
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

const namespace = "groupledger"

// Metrics groups every instrument the server records.
type Metrics struct {
	rpcs             *prometheus.CounterVec
	rpcDuration      *prometheus.HistogramVec
	recomputes       *prometheus.CounterVec
	recomputeSeconds prometheus.Histogram
	mutations        *prometheus.CounterVec
	paymentsTotal    prometheus.Counter
	outstanding      *prometheus.GaugeVec
}

// New registers the instruments with reg. Pass prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		rpcs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "RPCs handled, by procedure and result code.",
		}, []string{"procedure", "code"}),
		rpcDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC latency by procedure.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		recomputes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recomputes_total",
			Help:      "Full balance recomputations, by trigger.",
		}, []string{"trigger"}),
		recomputeSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recompute_duration_seconds",
			Help:      "Time spent recomputing one group.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		mutations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_mutations_total",
			Help:      "Committed ledger mutations, by operation.",
		}, []string{"operation"}),
		paymentsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_amount_total",
			Help:      "Sum of recorded payment amounts.",
		}),
		outstanding: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "group_outstanding_total",
			Help:      "Cached outstanding total per group.",
		}, []string{"group_id"}),
	}
}

// ObserveRPC records one finished RPC.
func (m *Metrics) ObserveRPC(procedure string, code connect.Code, ok bool, took time.Duration) {
	label := "ok"
	if !ok {
		label = code.String()
	}
	m.rpcs.WithLabelValues(procedure, label).Inc()
	m.rpcDuration.WithLabelValues(procedure).Observe(took.Seconds())
}

// ObserveRecompute records one full recompute.
func (m *Metrics) ObserveRecompute(trigger string, took time.Duration) {
	m.recomputes.WithLabelValues(trigger).Inc()
	m.recomputeSeconds.Observe(took.Seconds())
}

// Mutation counts a committed ledger change.
func (m *Metrics) Mutation(operation string) {
	m.mutations.WithLabelValues(operation).Inc()
}

// Payment adds a recorded payment to the running sum.
func (m *Metrics) Payment(amount decimal.Decimal) {
	m.paymentsTotal.Add(amount.InexactFloat64())
}

// SetOutstanding publishes a group's cached total.
func (m *Metrics) SetOutstanding(groupID string, total decimal.Decimal) {
	m.outstanding.WithLabelValues(groupID).Set(total.InexactFloat64())
}

// ForgetGroup drops a deleted group's series.
func (m *Metrics) ForgetGroup(groupID string) {
	m.outstanding.DeleteLabelValues(groupID)
}
