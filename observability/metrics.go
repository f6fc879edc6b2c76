package observability

import (
	"math"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type ledgerMetrics struct {
	ops     *prometheus.CounterVec
	latency *prometheus.HistogramVec
	supply  *prometheus.GaugeVec
	claims  *prometheus.CounterVec
}

var (
	ledgerMetricsOnce sync.Once
	ledgerRegistry    *ledgerMetrics
)

// Ledger returns the lazily-initialised metrics registry recording executor
// operations, token supply and daily claims.
func Ledger() *ledgerMetrics {
	ledgerMetricsOnce.Do(func() {
		ledgerRegistry = &ledgerMetrics{
			ops: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "milkchain",
				Name:      "ops_total",
				Help:      "Total state operations segmented by operation and outcome.",
			}, []string{"op", "outcome"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "milkchain",
				Name:      "op_duration_seconds",
				Help:      "Latency distribution for state operations including commit.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"op"}),
			supply: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: "milkchain",
				Subsystem: "token",
				Name:      "total_supply",
				Help:      "Latest committed total supply per token in whole units.",
			}, []string{"token"}),
			claims: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "milkchain",
				Subsystem: "factory",
				Name:      "claims_total",
				Help:      "Successful daily claims segmented by rarity tier.",
			}, []string{"tier"}),
		}
		prometheus.MustRegister(
			ledgerRegistry.ops,
			ledgerRegistry.latency,
			ledgerRegistry.supply,
			ledgerRegistry.claims,
		)
	})
	return ledgerRegistry
}

// ObserveOp records the outcome and latency of an executor operation.
func (m *ledgerMetrics) ObserveOp(op string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	op = normalizeLabel(op)
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.ops.WithLabelValues(op, outcome).Inc()
	m.latency.WithLabelValues(op).Observe(duration.Seconds())
}

// SetSupply publishes the committed supply of a token scaled down by its
// decimals.
func (m *ledgerMetrics) SetSupply(token string, total *big.Int, decimals uint8) {
	if m == nil || total == nil {
		return
	}
	m.supply.WithLabelValues(strings.ToUpper(normalizeLabel(token))).Set(scaleAmount(total, decimals))
}

// RecordClaim increments the claim counter for the rolled tier.
func (m *ledgerMetrics) RecordClaim(tier string) {
	if m == nil {
		return
	}
	m.claims.WithLabelValues(normalizeLabel(tier)).Inc()
}

func normalizeLabel(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "unknown"
	}
	return trimmed
}

func scaleAmount(amount *big.Int, decimals uint8) float64 {
	if amount == nil {
		return 0
	}
	value, _ := new(big.Float).SetInt(amount).Float64()
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return 0
	}
	return value / math.Pow10(int(decimals))
}
