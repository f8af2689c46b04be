package schemas

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-screener/internal/types"
)

func TestValidateCandidates_ValidBatch(t *testing.T) {
	document := []byte(`[
		{
			"id": "cand-1",
			"name": "Ada Lovelace",
			"email": "ada@example.com",
			"skills": ["Python", "Go"],
			"experience_years": 6,
			"education": [{"degree": "Master of Science", "year": 2015}]
		},
		{"name": "Sparse Candidate"}
	]`)

	assert.NoError(t, ValidateCandidates(document))
}

func TestValidateCandidates_RejectsWrongTypes(t *testing.T) {
	document := []byte(`[{"name": "Bad", "skills": "Python", "experience_years": -2}]`)

	err := ValidateCandidates(document)
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.GreaterOrEqual(t, len(validationErr.Errors), 2, "Both the skills type and the negative years should be reported")
}

func TestValidateCandidates_RejectsEducationWithoutDegree(t *testing.T) {
	document := []byte(`[{"name": "Bad", "education": [{"year": 2020}]}]`)

	var validationErr *ValidationError
	assert.ErrorAs(t, ValidateCandidates(document), &validationErr)
}

func TestValidateCandidates_RejectsNonArray(t *testing.T) {
	assert.Error(t, ValidateCandidates([]byte(`{"name": "Not a batch"}`)))
}

func TestValidateBiasReport_GeneratedReportConforms(t *testing.T) {
	report := &types.BiasReport{
		TotalCandidates: 2,
		Flags: []types.BiasFlag{{
			Severity:           types.SeverityWarning,
			Category:           types.CategoryMissingData,
			Message:            "something is off",
			AffectedCandidates: []string{"Ada"},
			Recommendation:     "look closer",
			Details:            map[string]any{"missing_rate": 0.5},
		}},
		Summary: "Analyzed 2 candidates.",
	}

	data, err := json.Marshal(report)
	require.NoError(t, err)

	assert.NoError(t, ValidateBiasReport(data))
}

func TestValidateBiasReport_EmptyReportConforms(t *testing.T) {
	report := &types.BiasReport{
		TotalCandidates: 0,
		Flags:           []types.BiasFlag{},
		Summary:         "No candidates to analyze.",
	}

	data, err := json.Marshal(report)
	require.NoError(t, err)

	assert.NoError(t, ValidateBiasReport(data))
}

func TestValidateBiasReport_RejectsUnknownSeverity(t *testing.T) {
	document := []byte(`{
		"total_candidates": 1,
		"flags": [{"severity": "catastrophic", "category": "pattern", "message": "m"}],
		"summary": "s"
	}`)

	var validationErr *ValidationError
	assert.ErrorAs(t, ValidateBiasReport(document), &validationErr)
}
