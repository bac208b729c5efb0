package prints

import "github.com/prometheus/client_golang/prometheus"

var PrintsExportedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "directmail_prints_exported_total",
		Help: "Prints handed to a printer file, by outcome (exported, skipped).",
	},
	[]string{"outcome"},
)

func init() {
	prometheus.MustRegister(PrintsExportedTotal)
}
