// Package metrics exposes Prometheus instrumentation for the protocol
// engine. All methods are nil-receiver safe so components can run without a
// registry wired.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics aggregates the engine's operation counters and accumulator gauges,
// labelled by vault address.
type Metrics struct {
	enters        *prometheus.CounterVec
	exits         *prometheus.CounterVec
	claims        *prometheus.CounterVec
	feesCollected *prometheus.CounterVec
	yieldPerToken *prometheus.GaugeVec
}

// New registers the engine collectors with the provided registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		enters: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "timeless",
			Subsystem: "gate",
			Name:      "enters_total",
			Help:      "Vault enters splitting principal into claim-token pairs.",
		}, []string{"vault"}),
		exits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "timeless",
			Subsystem: "gate",
			Name:      "exits_total",
			Help:      "Claim-token burns redeeming principal.",
		}, []string{"vault"}),
		claims: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "timeless",
			Subsystem: "gate",
			Name:      "yield_claims_total",
			Help:      "Yield claim settlements, including compounding re-entries.",
		}, []string{"vault"}),
		feesCollected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "timeless",
			Subsystem: "gate",
			Name:      "fees_collected_units",
			Help:      "Protocol fees taken from yield claims, in underlying base units.",
		}, []string{"vault"}),
		yieldPerToken: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "timeless",
			Subsystem: "gate",
			Name:      "yield_per_token",
			Help:      "Cumulative yield-per-token accumulator, descaled to underlying units.",
		}, []string{"vault"}),
	}
	if reg != nil {
		reg.MustRegister(m.enters, m.exits, m.claims, m.feesCollected, m.yieldPerToken)
	}
	return m
}

func (m *Metrics) RecordEnter(vault string) {
	if m == nil {
		return
	}
	m.enters.WithLabelValues(vault).Inc()
}

func (m *Metrics) RecordExit(vault string) {
	if m == nil {
		return
	}
	m.exits.WithLabelValues(vault).Inc()
}

func (m *Metrics) RecordClaim(vault string) {
	if m == nil {
		return
	}
	m.claims.WithLabelValues(vault).Inc()
}

func (m *Metrics) AddFeeCollected(vault string, units float64) {
	if m == nil {
		return
	}
	m.feesCollected.WithLabelValues(vault).Add(units)
}

func (m *Metrics) SetYieldPerToken(vault string, value float64) {
	if m == nil {
		return
	}
	m.yieldPerToken.WithLabelValues(vault).Set(value)
}
