package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"enforcement-insights-go/internal/config"
	"enforcement-insights-go/internal/dataset"
	"enforcement-insights-go/internal/export"
	"enforcement-insights-go/internal/geo"
	"enforcement-insights-go/internal/httpapi"
	"enforcement-insights-go/internal/logger"
	"enforcement-insights-go/internal/metrics"
)

func main() {
	_ = godotenv.Load() // loads .env

	log := logger.New()
	cfg := config.FromEnv()
	log.WithField("addr", cfg.Addr).Info("starting service")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithField("dataset_path", cfg.DatasetPath).Info("loading dataset")
	records, stats, err := dataset.Load(ctx, cfg.DatasetPath, cfg.FetchTimeout)
	if err != nil {
		log.WithError(err).Fatal("failed to load dataset")
	}
	summary := dataset.Summarize(records, stats)

	// the map views degrade to a placeholder without geography
	fc, err := geo.Load(cfg.GeoPath)
	if err != nil {
		log.WithError(err).WithField("geo_path", cfg.GeoPath).Warn("geography unavailable")
	} else {
		log.WithField("features", len(fc.Features)).Info("geography loaded")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)
	m.SetLoadStats(stats)

	exportOpts := export.DefaultOptions()
	exportOpts.Scale = cfg.ExportScale

	api := httpapi.New(httpapi.Deps{
		Log:           log,
		Records:       records,
		Summary:       summary,
		Geo:           fc,
		GeoPath:       cfg.GeoPath,
		DefaultMetric: cfg.DefaultMetric,
		Export:        exportOpts,
		Metrics:       m,
		Gatherer:      reg,
	})

	warmCtx, cancelWarm := context.WithTimeout(ctx, 30*time.Second)
	if err := api.Warm(warmCtx, summary.Metrics); err != nil {
		log.WithError(err).Warn("serving with cold views")
	}
	cancelWarm()

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      api.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	go func() {
		log.WithField("addr", cfg.Addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server terminated")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown failed")
	}
}
