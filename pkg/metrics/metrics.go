package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TransactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentrywaf_transactions_total",
			Help: "Total number of transactions by final intervention action",
		},
		[]string{"action"},
	)

	TransactionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sentrywaf_transaction_duration_seconds",
			Help:    "Time from transaction_started to transaction_finished",
			Buckets: prometheus.DefBuckets,
		},
	)

	PhaseDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sentrywaf_phase_duration_seconds",
			Help:    "Time taken to run all rules in a phase",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"phase"},
	)

	RulesMatchedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentrywaf_rules_matched_total",
			Help: "Total number of rules whose pattern matched, by phase",
		},
		[]string{"phase"},
	)

	ActionsExecutedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentrywaf_actions_executed_total",
			Help: "Total number of action executions by action name and outcome",
		},
		[]string{"action", "outcome"},
	)

	DPIFieldsTotal = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sentrywaf_dpi_fields_per_transaction",
			Help:    "Number of fields bound in a transaction's DPI at close",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	EventsEmittedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sentrywaf_events_emitted_total",
			Help: "Total number of log events pushed to the sink",
		},
	)

	KVOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentrywaf_kv_operations_total",
			Help: "Total number of KV store operations by backend and outcome",
		},
		[]string{"backend", "op", "outcome"},
	)

	KVOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sentrywaf_kv_operation_duration_seconds",
			Help:    "KV store operation latency by backend and op",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "op"},
	)

	CollectionsPopulatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentrywaf_collections_populated_total",
			Help: "Total number of collection populate calls by outcome",
		},
		[]string{"collection", "outcome"},
	)

	BlockModeGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sentrywaf_active_block_mode",
			Help: "Count of in-flight transactions currently at each block mode",
		},
		[]string{"mode"},
	)
)

func init() {
	prometheus.MustRegister(TransactionsTotal)
	prometheus.MustRegister(TransactionDuration)
	prometheus.MustRegister(PhaseDuration)
	prometheus.MustRegister(RulesMatchedTotal)
	prometheus.MustRegister(ActionsExecutedTotal)
	prometheus.MustRegister(DPIFieldsTotal)
	prometheus.MustRegister(EventsEmittedTotal)
	prometheus.MustRegister(KVOperationsTotal)
	prometheus.MustRegister(KVOperationDuration)
	prometheus.MustRegister(CollectionsPopulatedTotal)
	prometheus.MustRegister(BlockModeGauge)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
