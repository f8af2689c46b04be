package vocab

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSkills_EmbeddedDefaults(t *testing.T) {
	v, err := LoadSkills()
	require.NoError(t, err)
	assert.NotEmpty(t, v.Version)
	assert.NotEmpty(t, v.Skills)
}

func TestLoadDegrees_EmbeddedDefaults(t *testing.T) {
	d, err := LoadDegrees()
	require.NoError(t, err)
	assert.NotEmpty(t, d.Levels)
	assert.Greater(t, d.Levels["doctorate"], d.Levels["bachelor"],
		"the scale must be ordinal")
}

func TestFindIn_MatchesCaseInsensitively(t *testing.T) {
	v := &SkillVocabulary{Skills: []string{"python", "sql", "go"}}

	found := v.FindIn("We need PYTHON and Sql experience")

	assert.Equal(t, []string{"Python", "Sql"}, found, "matches keep vocabulary order and are title-cased")
}

func TestFindIn_NoMatches(t *testing.T) {
	v := &SkillVocabulary{Skills: []string{"rust"}}
	assert.Empty(t, v.FindIn("accountant position"))
}

func TestResolve_PicksHighestLevel(t *testing.T) {
	d := &DegreeScale{Levels: map[string]float64{"bachelor": 4, "master": 5, "doctorate": 6}}

	assert.Equal(t, 6.0, d.Resolve("PhD preferred, doctorate in CS with a bachelor minimum"))
	assert.Equal(t, 4.0, d.Resolve("Bachelor of Arts"))
	assert.Equal(t, 0.0, d.Resolve("no formal education"))
	assert.Equal(t, 0.0, d.Resolve("   "))
}

func TestLoadSkillsFile_Valid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skills.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version": "custom-1", "skills": ["cobol"]}`), 0o644))

	v, err := LoadSkillsFile(path)
	require.NoError(t, err)
	assert.Equal(t, "custom-1", v.Version)
	assert.Equal(t, []string{"cobol"}, v.Skills)
}

func TestLoadSkillsFile_RejectsEmptyVocabulary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skills.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version": "empty", "skills": []}`), 0o644))

	_, err := LoadSkillsFile(path)
	assert.ErrorContains(t, err, "contains no skills")
}

func TestLoadDegreesFile_MissingFile(t *testing.T) {
	_, err := LoadDegreesFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorContains(t, err, "failed to read degree scale")
}
