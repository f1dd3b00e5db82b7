package checker

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the availability checker.
type Metrics struct {
	Registry          *prometheus.Registry
	ChecksTotal       *prometheus.CounterVec
	FetchDuration     prometheus.Histogram
	Products          *prometheus.GaugeVec
	TilesDroppedTotal *prometheus.CounterVec
	ReportsSentTotal  prometheus.Counter
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	checks := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "availability_checks_total",
			Help: "Total catalog checks by outcome.",
		},
		[]string{"outcome"},
	)
	fetchDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "availability_fetch_duration_seconds",
			Help:    "Catalog page fetch latency.",
			Buckets: prometheus.DefBuckets,
		},
	)
	products := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "availability_products",
			Help: "Products seen in the last successful check, by state.",
		},
		[]string{"state"},
	)
	tilesDropped := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "availability_tiles_dropped_total",
			Help: "Catalog tiles dropped during parsing, by reason.",
		},
		[]string{"reason"},
	)
	reportsSent := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "availability_reports_sent_total",
			Help: "Total reports delivered to subscribers.",
		},
	)

	registry.MustRegister(checks, fetchDuration, products, tilesDropped, reportsSent)

	return &Metrics{
		Registry:          registry,
		ChecksTotal:       checks,
		FetchDuration:     fetchDuration,
		Products:          products,
		TilesDroppedTotal: tilesDropped,
		ReportsSentTotal:  reportsSent,
	}
}

// IncCheck increments the checks counter for an outcome label.
func (m *Metrics) IncCheck(outcome string) {
	if m == nil {
		return
	}
	m.ChecksTotal.WithLabelValues(outcome).Inc()
}

// ObserveFetch records a catalog fetch duration.
func (m *Metrics) ObserveFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
}

// SetProducts records the partition sizes of the last check.
func (m *Metrics) SetProducts(inStock, outOfStock int) {
	if m == nil {
		return
	}
	m.Products.WithLabelValues("in_stock").Set(float64(inStock))
	m.Products.WithLabelValues("out_of_stock").Set(float64(outOfStock))
}

// AddDropped counts tiles dropped during parsing for a reason label.
func (m *Metrics) AddDropped(reason string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.TilesDroppedTotal.WithLabelValues(reason).Add(float64(n))
}

// IncReportSent increments the delivered-reports counter.
func (m *Metrics) IncReportSent() {
	if m == nil {
		return
	}
	m.ReportsSentTotal.Inc()
}
