package db

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-screener/internal/types"
)

// Unit tests cover the JSON persistence shapes; database operations are
// exercised by the integration tests.

func TestBreakdownPersistenceRoundTrip(t *testing.T) {
	years := 4.0
	breakdown := types.ScoreBreakdown{
		SkillMatchScore:         0.5,
		ExperienceScore:         0.8,
		EducationScore:          1.0,
		SemanticSimilarityScore: 0.61,
		FinalScore:              0.7,
		MatchedSkills:           []string{"Python"},
		MissingSkills:           []string{"go"},
		ExperienceYears:         &years,
	}

	// Same transform SaveResult and scanResults apply around the JSONB column.
	data, err := json.Marshal(breakdown.FlatRecord())
	require.NoError(t, err)

	var record map[string]any
	require.NoError(t, json.Unmarshal(data, &record))
	decoded := types.BreakdownFromFlatRecord(record)

	assert.Equal(t, breakdown, *decoded)
}

func TestExplanationPersistenceRoundTrip(t *testing.T) {
	explanation := &types.MatchExplanation{
		Summary:        "Solid fit.",
		TopReasons:     []string{"a", "b", "c"},
		Recommendation: types.TierGoodMatch,
	}

	data, err := json.Marshal(explanation)
	require.NoError(t, err)

	var decoded types.MatchExplanation
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, *explanation, decoded)
}
