package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	Quotes       *prometheus.CounterVec
	RateRefresh  *prometheus.CounterVec
	ExchangeRate prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Quotes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pricing",
			Name:      "quotes_total",
			Help:      "Landed price quotes computed, by platform.",
		}, []string{"platform"}),
		RateRefresh: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pricing",
			Name:      "rate_refresh_total",
			Help:      "Exchange rate refresh attempts, by result.",
		}, []string{"result"}),
		ExchangeRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pricing",
			Name:      "exchange_rate",
			Help:      "JPY to KRW rate currently used for quotes.",
		}),
	}
	reg.MustRegister(m.Quotes, m.RateRefresh, m.ExchangeRate)
	return m
}

// Nop returns metrics registered on a throwaway registry.
func Nop() *Metrics {
	return New(prometheus.NewRegistry())
}
