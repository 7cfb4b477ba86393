package httpapi

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"enforcement-insights-go/internal/aggregator"
	"enforcement-insights-go/internal/export"
	"enforcement-insights-go/internal/views"
)

type renderFunc func(s *Server, r *http.Request, w io.Writer, f export.Format) error

// exporters maps a view name to the static chart it exports.
var exporters = map[string]renderFunc{
	"offence-comparison":       exportOffenceComparison,
	"temporal-trend":           exportTemporalTrend,
	"yearly-stack":             exportYearlyStack,
	"monthly-trend":            exportMonthlyTrend,
	"age-severity":             exportAgeSeverity,
	"jurisdiction-consistency": exportJurisdictionConsistency,
	"detection-method":         exportDetectionMethod,
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	view := chi.URLParam(r, "view")
	reqLog := s.Log.WithRequest(r).WithField("handler", "export").WithField("view", view)

	render, ok := exporters[view]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown view %q", view))
		return
	}
	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := render(s, r, &buf, format); err != nil {
		if errors.Is(err, export.ErrNoData) {
			writeError(w, http.StatusNotFound, "nothing to export for this selection")
			return
		}
		reqLog.WithError(err).Error("export failed")
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	s.Metrics.IncrementExport(view, string(format))
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(view, format)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		reqLog.WithError(err).Warn("failed to write export")
	}
}

func exportOffenceComparison(s *Server, r *http.Request, w io.Writer, f export.Format) error {
	var bars []export.Bar
	for _, row := range views.OffenceComparison(s.Records, metricList(r)...) {
		bars = append(bars,
			export.Bar{Label: row.Offence + " arrests", Value: row.ArrestsPerFine},
			export.Bar{Label: row.Offence + " charges", Value: row.ChargesPerFine},
		)
	}
	return export.Bars(w, f, "Arrests and charges per fine", bars, s.Export)
}

func exportTemporalTrend(s *Server, r *http.Request, w io.Writer, f export.Format) error {
	metric := s.metric(r)
	points := views.YearlyTrend(s.Records, metric)
	xs := make([]float64, len(points))
	fines := export.Series{Name: "Fines per 1000", Values: make([]float64, len(points))}
	severe := export.Series{Name: "Arrests + charges per 1000", Values: make([]float64, len(points))}
	for i, p := range points {
		xs[i] = float64(p.Year)
		fines.Values[i] = p.FinesPer1000
		severe.Values[i] = p.SeverePer1000
	}
	return export.Trend(w, f, metric+" outcomes per 1000", xs, []export.Series{fines, severe}, s.Export)
}

// exportYearlyStack draws fines and severe outcomes side by side per year.
// Stacked bars are normalised to full height, which would hide the totals.
func exportYearlyStack(s *Server, r *http.Request, w io.Writer, f export.Format) error {
	metric := s.metric(r)
	var bars []export.Bar
	for _, p := range views.YearlyTrend(s.Records, metric) {
		year := strconv.Itoa(p.Year)
		bars = append(bars,
			export.Bar{Label: year + " fines", Value: p.FinesThousands},
			export.Bar{Label: year + " severe", Value: p.SevereThousands},
		)
	}
	return export.Bars(w, f, metric+" outcomes by year (thousands)", bars, s.Export)
}

func exportMonthlyTrend(s *Server, r *http.Request, w io.Writer, f export.Format) error {
	metric := s.metric(r)
	points, _ := views.MonthlyTrend(s.Records, metric)
	xs := make([]float64, len(points))
	fines := export.Series{Name: "Fines", Values: make([]float64, len(points))}
	severe := export.Series{Name: "Arrests + charges", Values: make([]float64, len(points))}
	for i, p := range points {
		xs[i] = float64(p.Date.Year()) + float64(p.Date.Month()-1)/12
		fines.Values[i] = p.Fines
		severe.Values[i] = p.Severe
	}
	return export.Trend(w, f, metric+" by month", xs, []export.Series{fines, severe}, s.Export)
}

func exportAgeSeverity(s *Server, r *http.Request, w io.Writer, f export.Format) error {
	metric := s.metric(r)
	frame := s.choropleth(metric).Frame(r.URL.Query().Get("age"))
	if frame.MapError != "" {
		return export.ErrNoData
	}
	var bars []export.Bar
	for _, fv := range frame.Features {
		if fv.NoData {
			continue
		}
		bars = append(bars, export.Bar{Label: fv.Label, Value: fv.SevereRatio * 100})
	}
	return export.Bars(w, f, fmt.Sprintf("%s severe share of national (%%), %s", metric, frame.AgeGroup), bars, s.Export)
}

func exportJurisdictionConsistency(s *Server, r *http.Request, w io.Writer, f export.Format) error {
	metric := s.metric(r)
	frame := s.treemap(metric).Frame(r.URL.Query().Get("year"))
	bars := make([]export.Bar, 0, len(frame.Root.Children))
	for _, leaf := range frame.Root.Children {
		bars = append(bars, export.Bar{Label: leaf.Name, Value: leaf.Value})
	}
	return export.Bars(w, f, fmt.Sprintf("%s outcomes by jurisdiction, %s", metric, frame.Year), bars, s.Export)
}

func exportDetectionMethod(s *Server, r *http.Request, w io.Writer, f export.Format) error {
	metric := s.metric(r)
	sk := views.DetectionMethod(s.Records, metric)
	stacks := []export.Stack{{Name: aggregator.CameraBased}, {Name: aggregator.PoliceIssued}}
	for _, l := range sk.Links {
		stacks[l.Source].Parts = append(stacks[l.Source].Parts, export.Bar{Label: sk.Nodes[l.Target].Name, Value: l.Value})
	}
	return export.Stacked(w, f, metric+" outcomes by detection method", stacks, s.Export)
}
