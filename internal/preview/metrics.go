package preview

import (
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	promcollect "github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics holds the per-server Prometheus registry so two preview
// servers in one process (tests) do not collide on registration.
type metrics struct {
	registry *prom.Registry

	rebuildsTotal       prom.Counter
	rebuildsFailedTotal prom.Counter
	rebuildSeconds      prom.Histogram
	docsRendered        prom.Gauge
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prom.NewRegistry(),
		rebuildsTotal: prom.NewCounter(prom.CounterOpts{
			Namespace: "margay", Name: "preview_rebuilds_total",
			Help: "Rebuilds triggered by file changes or schedule",
		}),
		rebuildsFailedTotal: prom.NewCounter(prom.CounterOpts{
			Namespace: "margay", Name: "preview_rebuilds_failed_total",
			Help: "Rebuilds that returned an error",
		}),
		rebuildSeconds: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "margay", Name: "preview_rebuild_duration_seconds",
			Help:    "Wall time of one rebuild",
			Buckets: prom.DefBuckets,
		}),
		docsRendered: prom.NewGauge(prom.GaugeOpts{
			Namespace: "margay", Name: "preview_last_build_documents",
			Help: "Documents written by the most recent rebuild",
		}),
	}
	m.registry.MustRegister(m.rebuildsTotal, m.rebuildsFailedTotal, m.rebuildSeconds, m.docsRendered)
	m.registry.MustRegister(promcollect.NewGoCollector())
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
