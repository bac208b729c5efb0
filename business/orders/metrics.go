package orders

import "github.com/prometheus/client_golang/prometheus"

var (
	OrdersPlacedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directmail_orders_placed_total",
			Help: "Orders placed, by path (selected, not_selected).",
		},
		[]string{"path"},
	)

	OrdersDeletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "directmail_orders_deleted_total",
		Help: "Orders deleted together with their compensations.",
	})
)

func init() {
	prometheus.MustRegister(OrdersPlacedTotal, OrdersDeletedTotal)
}
