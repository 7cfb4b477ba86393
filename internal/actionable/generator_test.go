package actionable

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"enforcement-insights-go/internal/aggregator"
	"enforcement-insights-go/internal/types"
)

func buckets(records ...types.EnforcementRecord) *aggregator.Buckets {
	return aggregator.Aggregate(records, aggregator.ByJurisdiction, aggregator.SumAll)
}

func TestGenerate_HighSevereShare(t *testing.T) {
	b := buckets(
		types.EnforcementRecord{Jurisdiction: "NSW", Fines: 900, Arrests: 50, Charges: 50},
		types.EnforcementRecord{Jurisdiction: "NT", Fines: 1000, Arrests: 600, Charges: 600},
	)

	card := Generate(b)

	assert.Equal(t, "High severe-outcome share in NT (55%)", card.Insight)
	assert.Equal(t, "1,200 arrests and charges in the selection", card.Impact)
}

func TestGenerate_BelowThreshold(t *testing.T) {
	card := Generate(buckets(types.EnforcementRecord{Jurisdiction: "VIC", Fines: 90, Arrests: 10}))

	assert.Equal(t, "Highest severe-outcome share: VIC (10.0%)", card.Insight)
}

func TestGenerate_NoSevereOutcomes(t *testing.T) {
	assert.Equal(t, "Nothing to compare", Generate(buckets(types.EnforcementRecord{Jurisdiction: "WA", Fines: 3})).Impact)
	assert.Equal(t, "Nothing to compare", Generate(nil).Impact)
}
