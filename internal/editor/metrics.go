package editor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	opInstall = "install"
	opRecover = "recover"

	outcomeOK       = "ok"
	outcomeRejected = "rejected"
	outcomeFailed   = "failed"
)

// Metrics counts editor operations. A nil *Metrics records nothing.
type Metrics struct {
	edits      *prometheus.CounterVec // by operation and outcome
	mismatches prometheus.Counter     // recoveries whose line held another frequency
}

// NewMetrics creates the editor metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		edits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scatter_edits_total",
				Help: "Scatter edits by operation (install, recover) and outcome (ok, rejected, failed)",
			},
			[]string{"op", "outcome"},
		),
		mismatches: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "scatter_recovery_mismatch_total",
				Help: "Recoveries whose source line held a different frequency than requested",
			},
		),
	}
}

func (m *Metrics) edit(op, outcome string) {
	if m == nil {
		return
	}
	m.edits.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) mismatch() {
	if m == nil {
		return
	}
	m.mismatches.Inc()
}
