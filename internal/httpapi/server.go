package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/paulmach/orb/geojson"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"enforcement-insights-go/internal/dataset"
	"enforcement-insights-go/internal/export"
	"enforcement-insights-go/internal/geo"
	"enforcement-insights-go/internal/logger"
	"enforcement-insights-go/internal/metrics"
	"enforcement-insights-go/internal/types"
	"enforcement-insights-go/internal/views"
)

// Deps is everything the server reads. Records are never modified after load.
type Deps struct {
	Log           *logger.Logger
	Records       []types.EnforcementRecord
	Summary       dataset.Summary
	Geo           *geojson.FeatureCollection // nil when the geography failed to load
	GeoPath       string
	DefaultMetric string
	Export        export.Options
	Metrics       *metrics.Metrics
	Gatherer      prometheus.Gatherer
}

type Server struct {
	Deps

	known       map[string]bool
	mu          sync.Mutex
	choropleths map[string]*cached[*views.Choropleth]
	treemaps    map[string]*cached[*views.Treemap]
}

// cached holds one lazily built view; concurrent callers share the build.
type cached[T any] struct {
	once sync.Once
	v    T
}

func New(d Deps) *Server {
	if d.Log == nil {
		d.Log = logger.New()
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.NewRegistry()
	}
	if d.Export.Width == 0 {
		d.Export = export.DefaultOptions()
	}
	known := make(map[string]bool, len(d.Summary.Metrics))
	for _, m := range d.Summary.Metrics {
		known[m] = true
	}
	return &Server{
		Deps:        d,
		known:       known,
		choropleths: map[string]*cached[*views.Choropleth]{},
		treemaps:    map[string]*cached[*views.Treemap]{},
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLog)

	r.Get("/healthz", s.handleHealth)
	r.Get("/dataset/summary", s.handleSummary)
	r.Get("/geo", s.handleGeo)
	r.Route("/views", func(r chi.Router) {
		r.Get("/offence-comparison", s.handleOffenceComparison)
		r.Get("/offence-scatter", s.handleOffenceScatter)
		r.Get("/temporal-trend", s.handleTemporalTrend)
		r.Get("/monthly-trend", s.handleMonthlyTrend)
		r.Get("/age-severity", s.handleAgeSeverity)
		r.Get("/jurisdiction-consistency", s.handleJurisdictionConsistency)
		r.Get("/detection-method", s.handleDetectionMethod)
	})
	r.Get("/export/{view}/{format}", s.handleExport)
	r.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	return r
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Request-ID") == "" {
			r.Header.Set("X-Request-ID", middleware.GetReqID(r.Context()))
		}
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.Log.WithRequest(r).WithFields(map[string]interface{}{
			"status":      ww.Status(),
			"bytes":       ww.BytesWritten(),
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("request served")
	})
}

func (s *Server) metric(r *http.Request) string {
	if m := strings.TrimSpace(r.URL.Query().Get("metric")); m != "" {
		return m
	}
	return s.DefaultMetric
}

// choropleth builds a metric's choropleth once; later requests reuse it.
// Only metrics present in the dataset are cached, so arbitrary query values
// cannot grow the cache.
func (s *Server) choropleth(metric string) *views.Choropleth {
	if !s.known[metric] {
		return views.NewChoropleth(s.Records, metric, s.Geo)
	}
	s.mu.Lock()
	c, ok := s.choropleths[metric]
	if !ok {
		c = &cached[*views.Choropleth]{}
		s.choropleths[metric] = c
	}
	s.mu.Unlock()
	c.once.Do(func() { c.v = views.NewChoropleth(s.Records, metric, s.Geo) })
	return c.v
}

func (s *Server) treemap(metric string) *views.Treemap {
	if !s.known[metric] {
		return views.NewTreemap(s.Records, metric)
	}
	s.mu.Lock()
	t, ok := s.treemaps[metric]
	if !ok {
		t = &cached[*views.Treemap]{}
		s.treemaps[metric] = t
	}
	s.mu.Unlock()
	t.once.Do(func() { t.v = views.NewTreemap(s.Records, metric) })
	return t.v
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "ok",
		"records":       len(s.Records),
		"geo_available": s.Geo != nil,
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Summary)
}

// handleGeo serves the geography file as loaded by the client map.
func (s *Server) handleGeo(w http.ResponseWriter, r *http.Request) {
	if s.Geo == nil || s.GeoPath == "" {
		writeError(w, http.StatusServiceUnavailable, geo.UnavailableMessage)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	http.ServeFile(w, r, s.GeoPath)
}

func (s *Server) handleOffenceComparison(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	list := metricList(r)
	rows := views.OffenceComparison(s.Records, list...)
	s.Metrics.ObserveView("offence-comparison", start)
	writeJSON(w, http.StatusOK, map[string]interface{}{"metrics": list, "rows": rows})
}

func (s *Server) handleOffenceScatter(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ref := strings.TrimSpace(r.URL.Query().Get("reference"))
	if ref == "" {
		ref = s.DefaultMetric
	}
	out := views.OffenceScatter(s.Records, ref)
	s.Metrics.ObserveView("offence-scatter", start)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTemporalTrend(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	metric := s.metric(r)
	points := views.YearlyTrend(s.Records, metric)
	s.Metrics.ObserveView("temporal-trend", start)
	writeJSON(w, http.StatusOK, map[string]interface{}{"metric": metric, "points": points})
}

func (s *Server) handleMonthlyTrend(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	metric := s.metric(r)
	points, skipped := views.MonthlyTrend(s.Records, metric)
	s.Metrics.ObserveView("monthly-trend", start)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"metric":          metric,
		"points":          points,
		"skipped_no_date": skipped,
	})
}

func (s *Server) handleAgeSeverity(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	frame := s.choropleth(s.metric(r)).Frame(r.URL.Query().Get("age"))
	s.Metrics.ObserveView("age-severity", start)
	writeJSON(w, http.StatusOK, frame)
}

func (s *Server) handleJurisdictionConsistency(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	frame := s.treemap(s.metric(r)).Frame(r.URL.Query().Get("year"))
	s.Metrics.ObserveView("jurisdiction-consistency", start)
	writeJSON(w, http.StatusOK, frame)
}

func (s *Server) handleDetectionMethod(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	out := views.DetectionMethod(s.Records, s.metric(r))
	s.Metrics.ObserveView("detection-method", start)
	writeJSON(w, http.StatusOK, out)
}

func metricList(r *http.Request) []string {
	q := r.URL.Query().Get("metrics")
	if q == "" {
		return views.DefaultMetricOrder
	}
	var out []string
	for _, p := range strings.Split(q, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
