package views

import (
	"github.com/paulmach/orb/geojson"

	"enforcement-insights-go/internal/actionable"
	"enforcement-insights-go/internal/aggregator"
	"enforcement-insights-go/internal/geo"
	"enforcement-insights-go/internal/resolver"
	"enforcement-insights-go/internal/types"
)

// minMaxRatio keeps the colour scale's upper bound above zero.
const minMaxRatio = 0.01

// Choropleth holds one metric's jurisdiction rollups per age group and its
// own annotated copy of the geography. Build once, read many.
type Choropleth struct {
	metric    string
	ageGroups []string
	byAge     map[string]*aggregator.Buckets
	fc        *geojson.FeatureCollection
	matches   []geo.Match
}

// NewChoropleth rolls the metric up by jurisdiction for every age group and
// matches fc's features against the jurisdictions present. A nil fc yields
// frames carrying MapError.
func NewChoropleth(records []types.EnforcementRecord, metric string, fc *geojson.FeatureCollection) *Choropleth {
	f := aggregator.Filter{Metric: metric}
	rows := f.Apply(records)

	c := &Choropleth{
		metric:    metric,
		ageGroups: append([]string{aggregator.AllAges}, aggregator.DistinctAgeGroups(rows)...),
		byAge:     map[string]*aggregator.Buckets{},
	}
	for _, age := range c.ageGroups {
		c.byAge[age] = aggregator.Rollup(rows, f.WithAgeGroup(age), aggregator.ByJurisdiction)
	}
	if fc != nil {
		var known []string
		for _, k := range c.byAge[aggregator.AllAges].Keys() {
			known = append(known, k.First)
		}
		c.fc = geo.Clone(fc)
		c.matches = geo.Annotate(c.fc, resolver.New(known))
	}
	return c
}

// AgeGroups lists the selector options, "All ages" first.
func (c *Choropleth) AgeGroups() []string {
	return append([]string(nil), c.ageGroups...)
}

type FeatureValues struct {
	geo.Match
	Fines       float64 `json:"fines"`
	Arrests     float64 `json:"arrests"`
	Charges     float64 `json:"charges"`
	SevereCount float64 `json:"severe_count"`
	TotalLocal  float64 `json:"total_local"`
	SevereRatio float64 `json:"severe_ratio"`
	FinesPct    float64 `json:"fines_pct"`
	ArrestsPct  float64 `json:"arrests_pct"`
	ChargesPct  float64 `json:"charges_pct"`
	NoData      bool    `json:"no_data"`
}

type ChoroplethFrame struct {
	Metric        string                `json:"metric"`
	AgeGroup      string                `json:"age_group"`
	AgeGroups     []string              `json:"age_groups"`
	NationalTotal float64               `json:"national_total"`
	MaxRatio      float64               `json:"max_ratio"`
	Features      []FeatureValues       `json:"features"`
	Callout       actionable.ActionCard `json:"callout"`
	MapError      string                `json:"map_error,omitempty"`
}

// Frame computes the values drawn for one age group. Colour is the
// jurisdiction's severe outcomes as a share of the national total.
func (c *Choropleth) Frame(age string) ChoroplethFrame {
	if age == "" {
		age = aggregator.AllAges
	}
	frame := ChoroplethFrame{
		Metric:    c.metric,
		AgeGroup:  age,
		AgeGroups: c.AgeGroups(),
		Features:  []FeatureValues{},
	}
	if c.fc == nil {
		frame.MapError = geo.UnavailableMessage
		return frame
	}

	b := c.byAge[age]
	national := totalOf(b)
	if national == 0 && age != aggregator.AllAges {
		national = totalOf(c.byAge[aggregator.AllAges])
	}
	if national < 1 {
		national = 1
	}
	frame.NationalTotal = national

	for _, m := range c.matches {
		fv := FeatureValues{Match: m}
		if m.Matched && b != nil {
			if bk, ok := b.Get(aggregator.K(m.Key)); ok {
				fv.Fines, fv.Arrests, fv.Charges = bk.Fines, bk.Arrests, bk.Charges
			}
		}
		fv.SevereCount = fv.Arrests + fv.Charges
		fv.TotalLocal = fv.Fines + fv.SevereCount
		fv.SevereRatio = fv.SevereCount / national
		fv.FinesPct = aggregator.Ratio(fv.Fines, fv.TotalLocal) * 100
		fv.ArrestsPct = aggregator.Ratio(fv.Arrests, fv.TotalLocal) * 100
		fv.ChargesPct = aggregator.Ratio(fv.Charges, fv.TotalLocal) * 100
		fv.NoData = !m.Matched || fv.TotalLocal == 0
		if fv.SevereRatio > frame.MaxRatio {
			frame.MaxRatio = fv.SevereRatio
		}
		frame.Features = append(frame.Features, fv)
	}
	if frame.MaxRatio == 0 {
		frame.MaxRatio = minMaxRatio
	}
	frame.Callout = actionable.Generate(b)
	return frame
}

func totalOf(b *aggregator.Buckets) float64 {
	if b == nil {
		return 0
	}
	return b.Totals().Total()
}
