package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"enforcement-insights-go/internal/types"
)

// Metrics provides observability for loading, view building and export.
type Metrics struct {
	// View payloads built, by view
	ViewsBuilt *prometheus.CounterVec

	// Time spent filtering and aggregating for a view
	AggregateLatency *prometheus.HistogramVec

	// Exports rendered by view and format
	ExportsRendered *prometheus.CounterVec

	RecordsLoaded prometheus.Gauge
	RowsDropped   prometheus.Gauge
}

// New registers every collector on reg. A nil reg leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ViewsBuilt: f.NewCounterVec(prometheus.CounterOpts{
			Name: "enforcement_views_built_total",
			Help: "Total view payloads built by view",
		}, []string{"view"}),

		AggregateLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "enforcement_aggregate_duration_seconds",
			Help:    "Duration of filter and aggregation work per view",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		}, []string{"view"}),

		ExportsRendered: f.NewCounterVec(prometheus.CounterOpts{
			Name: "enforcement_exports_rendered_total",
			Help: "Total chart exports rendered by view and format",
		}, []string{"view", "format"}),

		RecordsLoaded: f.NewGauge(prometheus.GaugeOpts{
			Name: "enforcement_records_loaded",
			Help: "Records held in memory after the last load",
		}),

		RowsDropped: f.NewGauge(prometheus.GaugeOpts{
			Name: "enforcement_rows_dropped",
			Help: "Source rows dropped for an invalid YEAR at the last load",
		}),
	}
}

// ObserveView counts a built view and records how long it took since start.
func (m *Metrics) ObserveView(view string, start time.Time) {
	if m != nil {
		m.ViewsBuilt.WithLabelValues(view).Inc()
		m.AggregateLatency.WithLabelValues(view).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) IncrementExport(view, format string) {
	if m != nil {
		m.ExportsRendered.WithLabelValues(view, format).Inc()
	}
}

func (m *Metrics) SetLoadStats(stats types.LoadStats) {
	if m != nil {
		m.RecordsLoaded.Set(float64(stats.Loaded))
		m.RowsDropped.Set(float64(stats.DroppedYear))
	}
}
