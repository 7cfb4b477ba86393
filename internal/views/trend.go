package views

import (
	"sort"
	"strconv"
	"time"

	"enforcement-insights-go/internal/aggregator"
	"enforcement-insights-go/internal/types"
)

// YearPoint carries one year of a metric in raw, per-1000 and thousands form.
type YearPoint struct {
	Year            int     `json:"year"`
	Fines           float64 `json:"fines"`
	Severe          float64 `json:"severe"`
	FinesPer1000    float64 `json:"fines_per_1000"`
	SeverePer1000   float64 `json:"severe_per_1000"`
	FinesThousands  float64 `json:"fines_thousands"`
	SevereThousands float64 `json:"severe_thousands"`
}

// YearlyTrend returns one point per year, ascending. Per-1000 values divide
// by the year's total outcomes, or by 1 when there were none.
func YearlyTrend(records []types.EnforcementRecord, metric string) []YearPoint {
	b := aggregator.Rollup(records, aggregator.Filter{Metric: metric}, aggregator.ByYear)
	out := make([]YearPoint, 0, b.Len())
	for _, bk := range b.All() {
		year, err := strconv.Atoi(bk.Key.First)
		if err != nil {
			continue
		}
		denom := bk.Total()
		if denom == 0 {
			denom = 1
		}
		out = append(out, YearPoint{
			Year:            year,
			Fines:           bk.Fines,
			Severe:          bk.Severe(),
			FinesPer1000:    bk.Fines / denom * 1000,
			SeverePer1000:   bk.Severe() / denom * 1000,
			FinesThousands:  bk.Fines / 1000,
			SevereThousands: bk.Severe() / 1000,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

type MonthPoint struct {
	Month  string    `json:"month"`
	Date   time.Time `json:"date"`
	Fines  float64   `json:"fines"`
	Severe float64   `json:"severe"`
}

// MonthlyTrend buckets a metric by START_DATE month. Records without a date
// are left out; the second value is how many.
func MonthlyTrend(records []types.EnforcementRecord, metric string) ([]MonthPoint, int) {
	b := aggregator.Rollup(records, aggregator.Filter{Metric: metric}, aggregator.ByMonth)
	out := make([]MonthPoint, 0, b.Len())
	for _, bk := range b.All() {
		d, err := time.Parse("2006-01", bk.Key.First)
		if err != nil {
			continue
		}
		out = append(out, MonthPoint{Month: bk.Key.First, Date: d, Fines: bk.Fines, Severe: bk.Severe()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, b.Skipped()
}
