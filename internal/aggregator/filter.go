package aggregator

import (
	"sort"
	"strconv"
	"strings"

	"enforcement-insights-go/internal/types"
)

// Selector sentinels that bypass a filter dimension.
const (
	AllAges  = "All ages"
	AllYears = "All years"
	// Average bypasses the year filter and switches the reducer to mean.
	Average = "Average"
)

// Filter is the selector state for one view. It is a value: every selector
// change builds a new Filter through the With* methods.
type Filter struct {
	Metric   string `json:"metric,omitempty"`
	Year     string `json:"year,omitempty"`
	AgeGroup string `json:"age_group,omitempty"`
}

func (f Filter) WithMetric(metric string) Filter {
	f.Metric = metric
	return f
}

func (f Filter) WithYear(year string) Filter {
	f.Year = year
	return f
}

func (f Filter) WithAgeGroup(age string) Filter {
	f.AgeGroup = age
	return f
}

func (f Filter) Match(r types.EnforcementRecord) bool {
	if f.Metric != "" && r.Metric != f.Metric {
		return false
	}
	if f.AgeGroup != "" && f.AgeGroup != AllAges && r.AgeGroup != f.AgeGroup {
		return false
	}
	switch f.Year {
	case "", AllYears, Average:
	default:
		y, err := strconv.Atoi(strings.TrimSpace(f.Year))
		if err != nil || r.Year != y {
			return false
		}
	}
	return true
}

// Apply returns the matching records in input order.
func (f Filter) Apply(records []types.EnforcementRecord) []types.EnforcementRecord {
	out := make([]types.EnforcementRecord, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

func (f Filter) Reduction() Reduction {
	if f.Year == Average {
		return MeanAll
	}
	return SumAll
}

// Rollup filters, then aggregates with the reducer the filter implies.
func Rollup(records []types.EnforcementRecord, f Filter, keyFn KeyFunc) *Buckets {
	return Aggregate(f.Apply(records), keyFn, f.Reduction())
}

func DistinctYears(records []types.EnforcementRecord) []int {
	seen := map[int]bool{}
	var out []int
	for _, r := range records {
		if !seen[r.Year] {
			seen[r.Year] = true
			out = append(out, r.Year)
		}
	}
	sort.Ints(out)
	return out
}

func distinct(records []types.EnforcementRecord, field func(types.EnforcementRecord) string) []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range records {
		v := field(r)
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func DistinctMetrics(records []types.EnforcementRecord) []string {
	return distinct(records, func(r types.EnforcementRecord) string { return r.Metric })
}

func DistinctJurisdictions(records []types.EnforcementRecord) []string {
	return distinct(records, func(r types.EnforcementRecord) string { return r.Jurisdiction })
}

func DistinctAgeGroups(records []types.EnforcementRecord) []string {
	return distinct(records, func(r types.EnforcementRecord) string { return r.AgeGroup })
}
