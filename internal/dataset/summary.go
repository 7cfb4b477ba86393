package dataset

import (
	"github.com/davecgh/go-spew/spew"

	"enforcement-insights-go/internal/aggregator"
	"enforcement-insights-go/internal/logger"
	"enforcement-insights-go/internal/types"
)

type Summary struct {
	TotalRecords        int            `json:"total_records"`
	SourceRows          int            `json:"source_rows"`
	DroppedRows         int            `json:"dropped_rows"`
	Metrics             []string       `json:"metrics"`
	Years               []int          `json:"years"`
	Jurisdictions       []string       `json:"jurisdictions"`
	AgeGroups           []string       `json:"age_groups"`
	ByMetric            map[string]int `json:"by_metric"`
	WithStartDate       int            `json:"with_start_date"`
	WithDetectionMethod int            `json:"with_detection_method"`
}

// Summarize produces the compact overview served at /dataset/summary.
func Summarize(records []types.EnforcementRecord, stats types.LoadStats) Summary {
	log := logger.New().Component("dataset.summary")

	byMetric := map[string]int{}
	for _, b := range aggregator.Aggregate(records, aggregator.ByMetric, aggregator.SumAll).All() {
		byMetric[b.Key.First] = b.Count
	}
	s := Summary{
		TotalRecords:  len(records),
		SourceRows:    stats.Rows,
		DroppedRows:   stats.DroppedYear,
		Metrics:       aggregator.DistinctMetrics(records),
		Years:         aggregator.DistinctYears(records),
		Jurisdictions: aggregator.DistinctJurisdictions(records),
		AgeGroups:     aggregator.DistinctAgeGroups(records),
		ByMetric:      byMetric,
	}
	for _, r := range records {
		if r.HasStartDate() {
			s.WithStartDate++
		}
		if r.DetectionMethod != "" {
			s.WithDetectionMethod++
		}
	}

	log.WithFields(map[string]interface{}{
		"total_records": s.TotalRecords,
		"dropped_rows":  s.DroppedRows,
		"metrics":       len(s.Metrics),
		"jurisdictions": len(s.Jurisdictions),
	}).Info("dataset summarization complete")
	log.Debug("summary ", spew.Sdump(s))
	return s
}
