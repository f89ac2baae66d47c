package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the pipeline and the query layer.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Cache lookups by cache name and result (hit|miss)
	CacheLookups *prometheus.CounterVec

	// Computations actually executed behind a cache miss
	CacheComputations *prometheus.CounterVec

	// Filter call latency, including cache lookups
	FilterLatency prometheus.Histogram

	// Rows in the loaded panel
	PanelRows prometheus.Gauge

	// Pipeline stage durations by stage
	StageDuration *prometheus.HistogramVec

	// Cells filled by the imputation engine by pass
	CellsImputed *prometheus.CounterVec
}

// New registers every metric on reg. Pass prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "heartpanel_cache_lookups_total",
			Help: "Cache lookups by cache and result",
		}, []string{"cache", "result"}),

		CacheComputations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "heartpanel_cache_computations_total",
			Help: "Computations executed on cache misses",
		}, []string{"cache"}),

		FilterLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "heartpanel_filter_duration_seconds",
			Help:    "Duration of filter queries including cache lookups",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),

		PanelRows: f.NewGauge(prometheus.GaugeOpts{
			Name: "heartpanel_panel_rows",
			Help: "Rows in the loaded canonical panel",
		}),

		StageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "heartpanel_pipeline_stage_duration_seconds",
			Help:    "Duration of ETL pipeline stages",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"stage"}),

		CellsImputed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "heartpanel_cells_imputed_total",
			Help: "Cells filled by the imputation engine by pass",
		}, []string{"pass"}), // pass: "spline", "blend", "mode", "carry"
	}
}

// ObserveCacheLookup records a hit or miss on a named cache.
func (m *Metrics) ObserveCacheLookup(cache string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(cache, result).Inc()
}

// IncrementComputation records one executed computation.
func (m *Metrics) IncrementComputation(cache string) {
	if m != nil {
		m.CacheComputations.WithLabelValues(cache).Inc()
	}
}

// ObserveFilterLatency records the duration of a filter call.
func (m *Metrics) ObserveFilterLatency(d time.Duration) {
	if m != nil {
		m.FilterLatency.Observe(d.Seconds())
	}
}

// SetPanelRows records the size of the loaded panel.
func (m *Metrics) SetPanelRows(n int) {
	if m != nil {
		m.PanelRows.Set(float64(n))
	}
}

// ObserveStage records a pipeline stage duration.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m != nil {
		m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
	}
}

// AddImputed records cells filled by one imputation pass.
func (m *Metrics) AddImputed(pass string, n int) {
	if m != nil && n > 0 {
		m.CellsImputed.WithLabelValues(pass).Add(float64(n))
	}
}
