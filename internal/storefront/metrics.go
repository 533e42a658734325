package storefront

import (
	"github.com/prometheus/client_golang/prometheus"

	"Livora/internal/cart"
)

type Metrics struct {
	CartActions *prometheus.CounterVec
	Checkouts   *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CartActions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "livora",
				Subsystem: "storefront",
				Name:      "cart_actions_total",
				Help:      "Cart actions by kind and outcome",
			},
			[]string{"action", "outcome"},
		),
		Checkouts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "livora",
				Subsystem: "storefront",
				Name:      "checkouts_total",
				Help:      "Checkout attempts by result",
			},
			[]string{"result"},
		),
	}

	reg.MustRegister(m.CartActions, m.Checkouts)
	return m
}

func (m *Metrics) cartAction(kind cart.ActionKind, changed bool, err error) {
	if m == nil {
		return
	}
	outcome := "noop"
	switch {
	case err != nil:
		outcome = "error"
	case changed:
		outcome = "changed"
	}
	m.CartActions.WithLabelValues(kind.String(), outcome).Inc()
}

func (m *Metrics) checkout(redirected bool) {
	if m == nil {
		return
	}
	result := "empty_cart"
	if redirected {
		result = "redirected"
	}
	m.Checkouts.WithLabelValues(result).Inc()
}
