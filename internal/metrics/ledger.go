package metrics

import "github.com/prometheus/client_golang/prometheus"

// Ledger Prometheus metrics.
var (
	LedgerBalance = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "runway",
			Name:      "ledger_balance_tokens",
			Help:      "Current token balance",
		},
	)

	LedgerTransactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "runway",
			Name:      "ledger_transactions_total",
			Help:      "Applied ledger transactions",
		},
		[]string{"kind"}, // "earn" / "spend"
	)

	LedgerTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "runway",
			Name:      "ledger_tokens_total",
			Help:      "Tokens moved by applied transactions",
		},
		[]string{"kind"},
	)

	LedgerRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "runway",
			Name:      "ledger_rejections_total",
			Help:      "Rejected ledger operations",
		},
		[]string{"op", "reason"}, // reason: insufficient / duplicate_step / invalid
	)

	LedgerPersistErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "runway",
			Name:      "ledger_persist_errors_total",
			Help:      "Failed writes of the ledger record",
		},
	)

	ToastsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "runway",
			Name:      "toasts_total",
			Help:      "Toasts raised by ledger mutations",
		},
		[]string{"kind"},
	)
)

var ledgerMetricsRegistered bool

// RegisterLedgerMetrics registers Prometheus ledger metrics. Must be called once from main.
func RegisterLedgerMetrics() {
	if ledgerMetricsRegistered {
		return
	}
	prometheus.MustRegister(LedgerBalance)
	prometheus.MustRegister(LedgerTransactionsTotal)
	prometheus.MustRegister(LedgerTokensTotal)
	prometheus.MustRegister(LedgerRejectionsTotal)
	prometheus.MustRegister(LedgerPersistErrorsTotal)
	prometheus.MustRegister(ToastsTotal)
	ledgerMetricsRegistered = true
}
