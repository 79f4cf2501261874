package selector

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains the prometheus metrics for the selector. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	Selections     *prometheus.CounterVec
	QuotaResets    prometheus.Counter
	ImagesReset    prometheus.Counter
	SelectDuration prometheus.Histogram
	Candidates     prometheus.Histogram
	CatalogImages  prometheus.Gauge
	Reloads        prometheus.Counter
}

// NewMetrics creates and registers all selector metrics
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Selections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "imagerotate_selections_total",
				Help: "Total number of image selections by result",
			},
			[]string{"result"},
		),

		QuotaResets: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "imagerotate_quota_resets_total",
				Help: "Number of times exhausted quotas were reset",
			},
		),

		ImagesReset: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "imagerotate_images_reset_total",
				Help: "Number of image quotas restored by resets",
			},
		),

		SelectDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "imagerotate_select_duration_seconds",
				Help:    "Time spent selecting an image in seconds",
				Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
			},
		),

		Candidates: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "imagerotate_candidates",
				Help:    "Number of candidate images per selection",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
		),

		CatalogImages: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "imagerotate_catalog_images",
				Help: "Number of images in the current catalog",
			},
		),

		Reloads: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "imagerotate_catalog_reloads_total",
				Help: "Number of times the catalog was replaced",
			},
		),
	}

	reg.MustRegister(
		m.Selections,
		m.QuotaResets,
		m.ImagesReset,
		m.SelectDuration,
		m.Candidates,
		m.CatalogImages,
		m.Reloads,
	)

	return m
}

func (m *Metrics) trackSelection(result selectionResult, seconds float64) {
	if m == nil {
		return
	}
	m.Selections.WithLabelValues(string(result)).Inc()
	m.SelectDuration.Observe(seconds)
}

func (m *Metrics) trackReset(images int) {
	if m == nil {
		return
	}
	m.QuotaResets.Inc()
	m.ImagesReset.Add(float64(images))
}

func (m *Metrics) observeCandidates(n int) {
	if m == nil {
		return
	}
	m.Candidates.Observe(float64(n))
}

func (m *Metrics) setCatalogSize(n int, reload bool) {
	if m == nil {
		return
	}
	m.CatalogImages.Set(float64(n))
	if reload {
		m.Reloads.Inc()
	}
}
