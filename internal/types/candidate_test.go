package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func TestDisplayName_FallsBackToUnknown(t *testing.T) {
	c := &CandidateProfile{Name: "  "}
	assert.Equal(t, "Unknown", c.DisplayName())

	c.Name = "Grace Hopper"
	assert.Equal(t, "Grace Hopper", c.DisplayName())
}

func TestCanonicalText_FixedFieldOrder(t *testing.T) {
	c := &CandidateProfile{
		Name:            "Ada",
		Summary:         "Systems engineer",
		Skills:          []string{"Go", "SQL"},
		ExperienceYears: floatPtr(6.5),
		Education:       []Education{{Degree: "BSc"}, {Degree: "MSc"}},
	}

	text := c.CanonicalText()
	assert.Equal(t,
		"Name: Ada | Summary: Systems engineer | Skills: Go, SQL | Experience: 6.5 years | Education: BSc | Education: MSc",
		text, "field order must be stable so embeddings are reproducible")
}

func TestCanonicalText_SkipsEmptyFields(t *testing.T) {
	c := &CandidateProfile{Skills: []string{"Python"}}
	assert.Equal(t, "Skills: Python", c.CanonicalText())

	empty := &CandidateProfile{}
	assert.Empty(t, empty.CanonicalText())
}

func TestCandidateProfile_UnmarshalPartialJSON(t *testing.T) {
	data := []byte(`{"name": "Bob", "experience_years": 3, "education": [{"degree": "BA", "year": 2019}]}`)

	var c CandidateProfile
	require.NoError(t, json.Unmarshal(data, &c))

	assert.Equal(t, "Bob", c.Name)
	require.NotNil(t, c.ExperienceYears)
	assert.Equal(t, 3.0, *c.ExperienceYears)
	require.Len(t, c.Education, 1)
	assert.Equal(t, 2019, c.Education[0].Year)
	assert.Nil(t, c.Skills, "absent skills stay nil rather than empty")
}
