package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/occlab/nocmatch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResults() []*core.MatchResult {
	return []*core.MatchResult{
		{
			Entity: &core.Entity{
				Code:         "1111",
				Title:        "Financial auditors",
				Description:  "Examine and analyze records.",
				Duties:       []string{"Examine records", "Prepare reports"},
				ReferenceURL: "https://example.org/1111",
			},
			OverallScore:  0.8,
			DutyScore:     0.75,
			CombinedScore: 0.77,
			MatchedDuties: []core.MatchedDuty{
				{Duty: "Examine records", Score: 0.9, Segment: "Review financial records"},
			},
			Keywords: []string{"review", "financial", "records"},
		},
		{
			Entity: &core.Entity{
				Code:        "2222",
				Title:       "Cooks",
				Description: "Prepare meals.",
			},
			OverallScore:  0.1,
			CombinedScore: 0.04,
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, testResults()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{"1", "1111", "Financial auditors", "0.7700", "0.8000", "0.7500", "1", "https://example.org/1111"}, rows[1])
	assert.Equal(t, []string{"2", "2222", "Cooks", "0.0400", "0.1000", "0.0000", "0", ""}, rows[2])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, testResults()))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)

	first := decoded[0]
	assert.Equal(t, float64(1), first["rank"])
	assert.Equal(t, "1111", first["code"])
	assert.Equal(t, "Financial auditors", first["title"])
	assert.InDelta(t, 0.77, first["combined_score"].(float64), 1e-6)

	duties, ok := first["matched_duties"].([]any)
	require.True(t, ok)
	require.Len(t, duties, 1)
	duty := duties[0].(map[string]any)
	assert.Equal(t, "Examine records", duty["duty"])
	assert.Equal(t, "Review financial records", duty["matched_segment"])
	assert.InDelta(t, 0.9, duty["score"].(float64), 1e-6)

	second := decoded[1]
	assert.Equal(t, "2222", second["code"])
	assert.NotContains(t, second, "url")

	empty, ok := second["matched_duties"].([]any)
	require.True(t, ok)
	assert.Empty(t, empty)
}

func TestWriteJSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	assert.JSONEq(t, "[]", buf.String())
}
