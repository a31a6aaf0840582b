package gateway

import (
	"github.com/prometheus/client_golang/prometheus"

	"pmic-go/errcode"
)

// Metrics counts register transactions per chip.
type Metrics struct {
	Transactions *prometheus.CounterVec
}

// NewMetrics builds the collectors and registers them on reg. A nil reg
// leaves them unregistered, which is what tests and one-shot tools want.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Transactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pmic_register_transactions_total",
				Help: "Number of PMIC register transactions by chip, operation and result",
			},
			[]string{"chip", "op", "result"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Transactions)
	}
	return m
}

func (m *Metrics) observe(chip, op string, err error) {
	if m == nil {
		return
	}
	m.Transactions.WithLabelValues(chip, op, string(errcode.Of(err))).Inc()
}
