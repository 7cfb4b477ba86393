package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures process level settings. main loads .env before calling FromEnv.
type Config struct {
	Addr          string
	DatasetPath   string
	GeoPath       string
	DefaultMetric string
	FetchTimeout  time.Duration
	ExportScale   int
}

func FromEnv() Config {
	return Config{
		Addr:          ":" + envOr("PORT", "8080"),
		DatasetPath:   envOr("DATASET_PATH", "data/police_enforcement_2024_fines.csv"),
		GeoPath:       envOr("GEO_PATH", "data/australia_states.json"),
		DefaultMetric: envOr("DEFAULT_METRIC", "speed_fines"),
		FetchTimeout:  time.Duration(envInt("FETCH_TIMEOUT_SEC", 12)) * time.Second,
		ExportScale:   envInt("EXPORT_SCALE", 2),
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// envInt falls back to def when the variable is unset, malformed or not positive.
func envInt(k string, def int) int {
	v, err := strconv.Atoi(os.Getenv(k))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
