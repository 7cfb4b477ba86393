package views

import (
	"math"
	"sort"
	"strconv"

	"enforcement-insights-go/internal/actionable"
	"enforcement-insights-go/internal/aggregator"
	"enforcement-insights-go/internal/types"
)

type TreemapLeaf struct {
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Fines      float64 `json:"fines"`
	Arrests    float64 `json:"arrests"`
	Charges    float64 `json:"charges"`
	FinesRatio float64 `json:"fines_ratio"`
}

type TreemapRoot struct {
	Name     string        `json:"name"`
	Children []TreemapLeaf `json:"children"`
}

type TreemapFrame struct {
	Metric      string                `json:"metric"`
	Year        string                `json:"year"`
	YearOptions []string              `json:"year_options"`
	Root        TreemapRoot           `json:"root"`
	MinRatio    float64               `json:"min_ratio"`
	MaxRatio    float64               `json:"max_ratio"`
	Callout     actionable.ActionCard `json:"callout"`
}

// Treemap sizes jurisdictions by total outcomes and colours them by fines share.
type Treemap struct {
	metric  string
	rows    []types.EnforcementRecord
	options []string
}

func NewTreemap(records []types.EnforcementRecord, metric string) *Treemap {
	rows := aggregator.Filter{Metric: metric}.Apply(records)
	opts := []string{aggregator.Average, aggregator.AllYears}
	for _, y := range aggregator.DistinctYears(rows) {
		opts = append(opts, strconv.Itoa(y))
	}
	return &Treemap{metric: metric, rows: rows, options: opts}
}

func (t *Treemap) YearOptions() []string {
	return append([]string(nil), t.options...)
}

// Frame builds the hierarchy for a year, "All years" or "Average". Average
// reduces with the mean and rounds the displayed counts; the leaf value keeps
// the unrounded sum.
func (t *Treemap) Frame(year string) TreemapFrame {
	if year == "" {
		year = aggregator.Average
	}
	f := aggregator.Filter{Metric: t.metric, Year: year}
	b := aggregator.Rollup(t.rows, f, aggregator.ByJurisdiction)

	leaves := make([]TreemapLeaf, 0, b.Len())
	for _, bk := range b.All() {
		leaf := TreemapLeaf{
			Name:       bk.Key.First,
			Value:      bk.Total(),
			Fines:      bk.Fines,
			Arrests:    bk.Arrests,
			Charges:    bk.Charges,
			FinesRatio: bk.FinesShare,
		}
		if year == aggregator.Average {
			leaf.Fines = math.Round(leaf.Fines)
			leaf.Arrests = math.Round(leaf.Arrests)
			leaf.Charges = math.Round(leaf.Charges)
		}
		leaves = append(leaves, leaf)
	}
	sort.SliceStable(leaves, func(i, j int) bool { return leaves[i].Value > leaves[j].Value })

	frame := TreemapFrame{
		Metric:      t.metric,
		Year:        year,
		YearOptions: t.YearOptions(),
		Root:        TreemapRoot{Name: "root", Children: leaves},
		MaxRatio:    1,
		Callout:     actionable.Generate(b),
	}
	if len(leaves) > 0 {
		frame.MinRatio, frame.MaxRatio = leaves[0].FinesRatio, leaves[0].FinesRatio
		for _, l := range leaves[1:] {
			frame.MinRatio = math.Min(frame.MinRatio, l.FinesRatio)
			frame.MaxRatio = math.Max(frame.MaxRatio, l.FinesRatio)
		}
	}
	return frame
}
