package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBreakdown() *ScoreBreakdown {
	return &ScoreBreakdown{
		SkillMatchScore:         0.75,
		ExperienceScore:         1.2,
		EducationScore:          1.0,
		SemanticSimilarityScore: 0.42,
		FinalScore:              0.83,
		MatchedSkills:           []string{"Python", "SQL"},
		MissingSkills:           []string{"go"},
		ExperienceYears:         floatPtr(6),
		RequiredExperience:      floatPtr(4),
		HasRequiredDegree:       true,
	}
}

func TestFlatRecord_RoundTripPreservesEveryField(t *testing.T) {
	original := sampleBreakdown()

	restored := BreakdownFromFlatRecord(original.FlatRecord())

	assert.Equal(t, original, restored)
}

func TestFlatRecord_RoundTripSurvivesJSON(t *testing.T) {
	original := sampleBreakdown()

	data, err := json.Marshal(original.FlatRecord())
	require.NoError(t, err)

	var record map[string]any
	require.NoError(t, json.Unmarshal(data, &record))

	restored := BreakdownFromFlatRecord(record)
	assert.Equal(t, original, restored)
}

func TestFlatRecord_OmitsUnsetOptionalFields(t *testing.T) {
	b := &ScoreBreakdown{FinalScore: 0.5}

	record := b.FlatRecord()
	assert.NotContains(t, record, "experience_years")
	assert.NotContains(t, record, "required_experience")

	restored := BreakdownFromFlatRecord(record)
	assert.Nil(t, restored.ExperienceYears)
	assert.Nil(t, restored.RequiredExperience)
}

func TestBreakdownFromFlatRecord_IgnoresUnknownKeys(t *testing.T) {
	restored := BreakdownFromFlatRecord(map[string]any{
		"final_score": 0.9,
		"deprecated":  "ignored",
	})

	assert.Equal(t, 0.9, restored.FinalScore)
	assert.Nil(t, restored.MatchedSkills)
}

func TestFlatRecord_CopiesSkillSlices(t *testing.T) {
	b := sampleBreakdown()
	record := b.FlatRecord()

	record["matched_skills"].([]string)[0] = "mutated"

	assert.Equal(t, "Python", b.MatchedSkills[0], "the record must not alias the breakdown's slices")
}
