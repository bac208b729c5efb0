package progression

import "github.com/prometheus/client_golang/prometheus"

var (
	ActivationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directmail_client_offer_activations_total",
			Help: "Chain advancement attempts by outcome (activated, reissued).",
		},
		[]string{"outcome"},
	)

	PrintsIssuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "directmail_offer_prints_issued_total",
		Help: "Offer prints issued by chain advancement and offer letters.",
	})
)

func init() {
	prometheus.MustRegister(ActivationsTotal, PrintsIssuedTotal)
}
