// Package views shapes aggregated enforcement data into the payloads each
// chart draws. Views hold no rendering state; the browser owns the drawing.
package views

import (
	"enforcement-insights-go/internal/aggregator"
	"enforcement-insights-go/internal/types"
)

// DefaultMetricOrder is the display order of the offence comparison.
var DefaultMetricOrder = []string{"speed_fines", "non_wearing_seatbelts", "unlicensed_driving"}

type OffenceRow struct {
	Offence        string  `json:"offence"`
	Fines          float64 `json:"fines"`
	Arrests        float64 `json:"arrests"`
	Charges        float64 `json:"charges"`
	ArrestsPerFine float64 `json:"arrests_per_fine"`
	ChargesPerFine float64 `json:"charges_per_fine"`
}

func offenceRow(b aggregator.Bucket) OffenceRow {
	return OffenceRow{
		Offence:        b.Key.First,
		Fines:          b.Fines,
		Arrests:        b.Arrests,
		Charges:        b.Charges,
		ArrestsPerFine: b.ArrestsPerFine,
		ChargesPerFine: b.ChargesPerFine,
	}
}

// OffenceComparison returns arrests and charges per fine for each metric.
// With metrics given, only those appear, in that order; otherwise every
// metric appears in order of first occurrence.
func OffenceComparison(records []types.EnforcementRecord, metrics ...string) []OffenceRow {
	b := aggregator.Aggregate(records, aggregator.ByMetric, aggregator.SumAll)
	if len(metrics) == 0 {
		out := make([]OffenceRow, 0, b.Len())
		for _, bk := range b.All() {
			out = append(out, offenceRow(bk))
		}
		return out
	}
	out := make([]OffenceRow, 0, len(metrics))
	for _, m := range metrics {
		if bk, ok := b.Get(aggregator.K(m)); ok {
			out = append(out, offenceRow(bk))
		}
	}
	return out
}

type ScatterPoint struct {
	Offence string  `json:"offence"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Fines   float64 `json:"fines"`
	Arrests float64 `json:"arrests"`
	Charges float64 `json:"charges"`
}

// Scatter places each non-reference metric against the reference metric.
// X and Y are fines; Found is false when the reference has no rows.
type Scatter struct {
	Reference string         `json:"reference"`
	Found     bool           `json:"found"`
	Points    []ScatterPoint `json:"points"`
}

func OffenceScatter(records []types.EnforcementRecord, reference string) Scatter {
	b := aggregator.Aggregate(records, aggregator.ByMetric, aggregator.SumAll)
	ref, found := b.Get(aggregator.K(reference))
	out := Scatter{Reference: reference, Found: found, Points: []ScatterPoint{}}
	for _, bk := range b.All() {
		if bk.Key.First == reference {
			continue
		}
		out.Points = append(out.Points, ScatterPoint{
			Offence: bk.Key.First,
			X:       ref.Fines,
			Y:       bk.Fines,
			Fines:   bk.Fines,
			Arrests: bk.Arrests,
			Charges: bk.Charges,
		})
	}
	return out
}
