package actionable

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"enforcement-insights-go/internal/aggregator"
)

// SevereThreshold is the severe-outcome share above which a callout asks for follow-up.
const SevereThreshold = 0.35

type ActionCard struct {
	Insight string `json:"insight"`
	Action  string `json:"action"`
	Impact  string `json:"impact"`
}

// Generate picks the bucket with the highest severe-outcome share.
func Generate(b *aggregator.Buckets) ActionCard {
	worst := ""
	highest := 0.0
	var severe float64
	if b != nil {
		for _, v := range b.All() {
			if v.SevereShare > highest {
				highest = v.SevereShare
				worst = v.Key.String()
				severe = v.Severe()
			}
		}
	}
	p := message.NewPrinter(language.English)
	if highest >= SevereThreshold && worst != "" {
		return ActionCard{
			Insight: p.Sprintf("High severe-outcome share in %s (%.0f%%)", worst, highest*100),
			Action:  "Review detection methods and age groups driving arrests and charges here",
			Impact:  p.Sprintf("%d arrests and charges in the selection", int64(severe)),
		}
	}
	if worst != "" {
		return ActionCard{
			Insight: p.Sprintf("Highest severe-outcome share: %s (%.1f%%)", worst, highest*100),
			Action:  "Monitor; fines dominate outcomes",
			Impact:  "Low immediate intervention",
		}
	}
	return ActionCard{
		Insight: "No arrests or charges in this selection",
		Action:  "Pick another year, age group or metric",
		Impact:  "Nothing to compare",
	}
}
