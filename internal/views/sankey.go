package views

import (
	"enforcement-insights-go/internal/aggregator"
	"enforcement-insights-go/internal/types"
)

// Sankey node names, sources first.
var sankeyNodes = []string{aggregator.CameraBased, aggregator.PoliceIssued, "Fines", "Arrests", "Charges"}

type SankeyNode struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type SankeyLink struct {
	Source        int     `json:"source"`
	Target        int     `json:"target"`
	Value         float64 `json:"value"`
	ShareOfSource float64 `json:"share_of_source"`
}

type Sankey struct {
	Metric string       `json:"metric"`
	Nodes  []SankeyNode `json:"nodes"`
	Links  []SankeyLink `json:"links"`
}

// DetectionMethod flows a metric's outcomes from detection bucket to outcome.
// Records whose method fits neither bucket are left out, as are empty links.
func DetectionMethod(records []types.EnforcementRecord, metric string) Sankey {
	b := aggregator.Rollup(records, aggregator.Filter{Metric: metric}, aggregator.ByDetectionMethod)

	out := Sankey{Metric: metric, Nodes: make([]SankeyNode, len(sankeyNodes)), Links: []SankeyLink{}}
	for i, n := range sankeyNodes {
		out.Nodes[i].Name = n
	}
	for src, name := range sankeyNodes[:2] {
		bk, ok := b.Get(aggregator.K(name))
		if !ok {
			continue
		}
		for i, v := range []float64{bk.Fines, bk.Arrests, bk.Charges} {
			if v <= 0 {
				continue
			}
			out.Links = append(out.Links, SankeyLink{
				Source:        src,
				Target:        2 + i,
				Value:         v,
				ShareOfSource: aggregator.Ratio(v, bk.Total()),
			})
			out.Nodes[src].Value += v
			out.Nodes[2+i].Value += v
		}
	}
	return out
}
