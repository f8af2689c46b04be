package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBiasReport_SeverityQueries(t *testing.T) {
	report := &BiasReport{
		TotalCandidates: 10,
		Flags: []BiasFlag{
			{Severity: SeverityWarning, Category: CategoryVariance, Message: "wide range"},
			{Severity: SeverityCritical, Category: CategoryMissingData, Message: "no emails"},
			{Severity: SeverityWarning, Category: CategoryConsistency, Message: "duplicates"},
		},
	}

	assert.True(t, report.HasCriticalFlags())
	assert.True(t, report.HasWarnings())
	assert.Len(t, report.FlagsBySeverity(SeverityWarning), 2)
	assert.Empty(t, report.FlagsBySeverity(SeverityInfo))
}

func TestBiasReport_MarshalIncludesDerivedBooleans(t *testing.T) {
	report := &BiasReport{
		TotalCandidates: 2,
		Flags:           []BiasFlag{{Severity: SeverityCritical, Category: CategoryMissingData, Message: "x"}},
		Summary:         "Analyzed 2 candidates.",
	}

	data, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, true, decoded["has_critical_flags"])
	assert.Equal(t, false, decoded["has_warnings"])
	assert.Contains(t, decoded, "flags")
}

func TestBiasReport_EmptyFlagsMarshalAsArray(t *testing.T) {
	report := &BiasReport{TotalCandidates: 0, Flags: []BiasFlag{}, Summary: "No candidates to analyze."}

	data, err := json.Marshal(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"flags":[]`)
}
