// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ledger metrics
	DepositsTotal    *prometheus.CounterVec
	WithdrawalsTotal *prometheus.CounterVec
	DepositorCount   prometheus.Gauge
	LockedTotalUsdc  prometheus.Gauge

	// Crank metrics
	FeesClaimedTotal     prometheus.Counter
	QuoteClaimedLamports prometheus.Counter
	ClaimFailures        *prometheus.CounterVec
	PagesProcessed       prometheus.Counter
	PayoutsTransferred   prometheus.Counter
	PayoutLamportsTotal  prometheus.Counter
	DustCarriedLamports  prometheus.Counter
	DaysClosed           prometheus.Counter
	DayState             prometheus.Gauge
	DailyDistributed     prometheus.Gauge
	CarryOverLamports    prometheus.Gauge

	// Vault metrics
	BaseVaultBalance  prometheus.Gauge
	QuoteVaultBalance prometheus.Gauge

	// Latency metrics
	RPCCallLatency  *prometheus.HistogramVec
	DBQueryDuration *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "star_fee_distribution"
	}

	return &Metrics{
		DepositsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "deposits_total",
			Help:      "Total number of deposits by asset",
		}, []string{"asset"}),
		WithdrawalsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "withdrawals_total",
			Help:      "Total number of withdrawals by asset",
		}, []string{"asset"}),
		DepositorCount: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "depositor_count",
			Help:      "Number of distinct depositors",
		}),
		LockedTotalUsdc: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "locked_total_usdc",
			Help:      "Current total locked quote balance across all depositors",
		}),

		FeesClaimedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crank",
			Name:      "fees_claimed_total",
			Help:      "Total number of successful fee claims",
		}),
		QuoteClaimedLamports: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crank",
			Name:      "quote_claimed_lamports_total",
			Help:      "Total quote lamports claimed from the position",
		}),
		ClaimFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crank",
			Name:      "claim_failures_total",
			Help:      "Total number of failed fee claims by reason",
		}, []string{"reason"}),
		PagesProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crank",
			Name:      "pages_processed_total",
			Help:      "Total number of accepted crank pages",
		}),
		PayoutsTransferred: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crank",
			Name:      "payouts_transferred_total",
			Help:      "Total number of nonzero investor payouts transferred",
		}),
		PayoutLamportsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crank",
			Name:      "payout_lamports_total",
			Help:      "Total quote lamports transferred to investors",
		}),
		DustCarriedLamports: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crank",
			Name:      "dust_carried_lamports_total",
			Help:      "Total lamports withheld as dust or cap shortfall",
		}),
		DaysClosed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crank",
			Name:      "days_closed_total",
			Help:      "Total number of distribution days closed",
		}),
		DayState: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "crank",
			Name:      "day_state",
			Help:      "Current day state (0=not started, 1=in progress, 2=closed)",
		}),
		DailyDistributed: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "crank",
			Name:      "daily_distributed_lamports",
			Help:      "Quote lamports distributed in the active day",
		}),
		CarryOverLamports: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "crank",
			Name:      "carry_over_lamports",
			Help:      "Accumulated dust and cap shortfall rolling across days",
		}),

		BaseVaultBalance: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "vault",
			Name:      "base_balance_lamports",
			Help:      "Base vault balance (nonzero indicates a quote-only violation)",
		}),
		QuoteVaultBalance: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "vault",
			Name:      "quote_balance_lamports",
			Help:      "Quote vault balance awaiting distribution",
		}),

		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordDeposit increments the deposit counter for each asset moved.
func RecordDeposit(solAmount, usdcAmount uint64) {
	if solAmount > 0 {
		DefaultMetrics.DepositsTotal.WithLabelValues("sol").Inc()
	}
	if usdcAmount > 0 {
		DefaultMetrics.DepositsTotal.WithLabelValues("usdc").Inc()
	}
}

// RecordWithdrawal increments the withdrawal counter for each asset moved.
func RecordWithdrawal(solAmount, usdcAmount uint64) {
	if solAmount > 0 {
		DefaultMetrics.WithdrawalsTotal.WithLabelValues("sol").Inc()
	}
	if usdcAmount > 0 {
		DefaultMetrics.WithdrawalsTotal.WithLabelValues("usdc").Inc()
	}
}

// UpdateLedgerGauges refreshes the depositor count and locked total gauges.
func UpdateLedgerGauges(depositorCount uint32, lockedTotalUsdc uint64) {
	DefaultMetrics.DepositorCount.Set(float64(depositorCount))
	DefaultMetrics.LockedTotalUsdc.Set(float64(lockedTotalUsdc))
}

// RecordClaim records a successful fee claim.
func RecordClaim(quoteClaimed uint64) {
	DefaultMetrics.FeesClaimedTotal.Inc()
	DefaultMetrics.QuoteClaimedLamports.Add(float64(quoteClaimed))
}

// RecordClaimFailure records a failed fee claim.
func RecordClaimFailure(reason string) {
	DefaultMetrics.ClaimFailures.WithLabelValues(reason).Inc()
}

// RecordPage records an accepted crank page.
func RecordPage() {
	DefaultMetrics.PagesProcessed.Inc()
}

// RecordPayout records an investor payout; dust covers withheld amounts.
func RecordPayout(transferred, dust uint64) {
	if transferred > 0 {
		DefaultMetrics.PayoutsTransferred.Inc()
		DefaultMetrics.PayoutLamportsTotal.Add(float64(transferred))
	}
	if dust > 0 {
		DefaultMetrics.DustCarriedLamports.Add(float64(dust))
	}
}

// RecordDayClosed records a day close.
func RecordDayClosed() {
	DefaultMetrics.DaysClosed.Inc()
}

// UpdateCrankGauges refreshes the day state gauges.
func UpdateCrankGauges(dayState uint8, dailyDistributed, carryOver uint64) {
	DefaultMetrics.DayState.Set(float64(dayState))
	DefaultMetrics.DailyDistributed.Set(float64(dailyDistributed))
	DefaultMetrics.CarryOverLamports.Set(float64(carryOver))
}

// UpdateVaultGauges refreshes the vault balance gauges.
func UpdateVaultGauges(baseBalance, quoteBalance uint64) {
	DefaultMetrics.BaseVaultBalance.Set(float64(baseBalance))
	DefaultMetrics.QuoteVaultBalance.Set(float64(quoteBalance))
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// RecordDBQuery records database query duration.
func RecordDBQuery(database, operation string, seconds float64) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
}
