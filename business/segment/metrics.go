package segment

import "github.com/prometheus/client_golang/prometheus"

var (
	SegmentsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directmail_segments_created_total",
			Help: "Key code segments created, by kind (known, unknown, filter).",
		},
		[]string{"kind"},
	)

	ClientsEnrolledTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "directmail_clients_enrolled_total",
		Help: "Clients enrolled into segments by filter rules.",
	})

	ClientsExtractedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "directmail_clients_extracted_total",
		Help: "Segment memberships turned into client offers and prints.",
	})
)

func init() {
	prometheus.MustRegister(SegmentsCreatedTotal, ClientsEnrolledTotal, ClientsExtractedTotal)
}
