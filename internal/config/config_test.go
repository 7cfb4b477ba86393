package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DATASET_PATH", "GEO_PATH", "DEFAULT_METRIC", "FETCH_TIMEOUT_SEC", "EXPORT_SCALE"} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "data/police_enforcement_2024_fines.csv", cfg.DatasetPath)
	assert.Equal(t, "data/australia_states.json", cfg.GeoPath)
	assert.Equal(t, "speed_fines", cfg.DefaultMetric)
	assert.Equal(t, 12*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 2, cfg.ExportScale)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATASET_PATH", "/srv/fines.xlsx")
	t.Setenv("DEFAULT_METRIC", "unlicensed_driving")
	t.Setenv("FETCH_TIMEOUT_SEC", "30")
	t.Setenv("EXPORT_SCALE", "-1")

	cfg := FromEnv()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "/srv/fines.xlsx", cfg.DatasetPath)
	assert.Equal(t, "unlicensed_driving", cfg.DefaultMetric)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 2, cfg.ExportScale, "non-positive scale falls back to the default")
}
