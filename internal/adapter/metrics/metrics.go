package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pscheid92/allin/internal/platform/version"
)

const namespace = "allin"

// NewRegistry creates a registry with runtime and process collectors and the
// constant allin_build_info series.
func NewRegistry() *prometheus.Registry {
	info := version.Get()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_info",
			Help:      "Build information of the running binary.",
			ConstLabels: prometheus.Labels{
				"version":    info.Version,
				"commit":     info.Commit,
				"go_version": info.GoVersion,
			},
		}, func() float64 { return 1 }),
	)
	return reg
}

// RegisterStoreInfo exposes which post store backend the process writes to.
func RegisterStoreInfo(reg prometheus.Registerer, backend string) {
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "store_info",
		Help:        "Configured post store backend.",
		ConstLabels: prometheus.Labels{"backend": backend},
	}, func() float64 { return 1 }))
}

// Handler serves the registry. Collection errors are logged into the
// response instead of failing the scrape.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		Registry:      reg,
		ErrorHandling: promhttp.ContinueOnError,
	})
}
