package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	records, stats, err := Parse(rows)
	require.NoError(t, err)

	s := Summarize(records, stats)

	assert.Equal(t, 3, s.TotalRecords)
	assert.Equal(t, 4, s.SourceRows)
	assert.Equal(t, 1, s.DroppedRows)
	assert.Equal(t, []int{2023, 2024}, s.Years)
	assert.Equal(t, []string{"speed_fines", "unlicensed_driving"}, s.Metrics)
	assert.Equal(t, []string{"NSW", "VIC"}, s.Jurisdictions)
	assert.Equal(t, []string{"17-25", "26-39", "Unknown"}, s.AgeGroups)
	assert.Equal(t, map[string]int{"speed_fines": 2, "unlicensed_driving": 1}, s.ByMetric)
	assert.Equal(t, 2, s.WithStartDate)
	assert.Equal(t, 2, s.WithDetectionMethod)
}
