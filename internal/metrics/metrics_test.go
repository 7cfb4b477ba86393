package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enforcement-insights-go/internal/types"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.SetLoadStats(types.LoadStats{Rows: 10, Loaded: 8, DroppedYear: 2})
	m.ObserveView("treemap", time.Now())
	m.ObserveView("treemap", time.Now())
	m.IncrementExport("treemap", "png")

	assert.Equal(t, 8.0, testutil.ToFloat64(m.RecordsLoaded))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RowsDropped))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ViewsBuilt.WithLabelValues("treemap")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExportsRendered.WithLabelValues("treemap", "png")))

	n, err := testutil.GatherAndCount(reg, "enforcement_aggregate_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveView("x", time.Now())
		m.IncrementExport("x", "svg")
		m.SetLoadStats(types.LoadStats{})
	})
}
