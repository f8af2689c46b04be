package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ExplainPrompt(t *testing.T) {
	prompt, err := Get("explain.json", "match_explanation")

	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.CandidateName}}")
	assert.Contains(t, prompt, "Top 3 Reasons")
}

func TestGet_UnknownKey(t *testing.T) {
	_, err := Get("explain.json", "nope")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "prompt key")
}

func TestGet_UnknownFile(t *testing.T) {
	_, err := Get("missing.json", "match_explanation")

	assert.Error(t, err)
}

func TestFormat_ReplacesPlaceholders(t *testing.T) {
	result := Format("Candidate: {{.Name}}, Score: {{.Score}}", map[string]string{
		"Name":  "Alice",
		"Score": "85%",
	})

	assert.Equal(t, "Candidate: Alice, Score: 85%", result)
}

func TestFormat_LeavesUnknownPlaceholders(t *testing.T) {
	result := Format("{{.Known}} and {{.Unknown}}", map[string]string{"Known": "yes"})

	assert.Equal(t, "yes and {{.Unknown}}", result)
}
