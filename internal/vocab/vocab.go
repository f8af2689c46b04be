// Package vocab provides the versioned skill and degree vocabularies used
// by requirement derivation and scoring. Default vocabularies are embedded
// at compile time; both can also be loaded from external files so the
// matching vocabulary can evolve without touching scoring logic.
package vocab

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

//go:embed *.json
var vocabFiles embed.FS

// SkillVocabulary is the fixed list of skill tokens recognized in free text.
type SkillVocabulary struct {
	Version string   `json:"version"`
	Skills  []string `json:"skills"`
}

// DegreeScale maps degree tokens to their position on the ordinal degree
// scale (certificate < diploma < associate < bachelor < master <= mba < doctorate).
type DegreeScale struct {
	Version string             `json:"version"`
	Levels  map[string]float64 `json:"levels"`
}

var (
	loadOnce      sync.Once
	loadErr       error
	defaultSkills *SkillVocabulary
	defaultScale  *DegreeScale
)

func loadDefaults() {
	defaultSkills, loadErr = parseSkills(mustRead("skills.json"))
	if loadErr != nil {
		return
	}
	defaultScale, loadErr = parseDegrees(mustRead("degrees.json"))
}

func mustRead(name string) []byte {
	data, err := vocabFiles.ReadFile(name)
	if err != nil {
		// Embedded files are part of the build; a read failure is a packaging bug.
		panic(fmt.Sprintf("vocab: missing embedded file %s: %v", name, err))
	}
	return data
}

// LoadSkills returns the embedded default skill vocabulary.
func LoadSkills() (*SkillVocabulary, error) {
	loadOnce.Do(loadDefaults)
	return defaultSkills, loadErr
}

// LoadDegrees returns the embedded default degree scale.
func LoadDegrees() (*DegreeScale, error) {
	loadOnce.Do(loadDefaults)
	return defaultScale, loadErr
}

// LoadSkillsFile loads a skill vocabulary from an external JSON file.
func LoadSkillsFile(path string) (*SkillVocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read skill vocabulary %s: %w", path, err)
	}
	return parseSkills(data)
}

// LoadDegreesFile loads a degree scale from an external JSON file.
func LoadDegreesFile(path string) (*DegreeScale, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read degree scale %s: %w", path, err)
	}
	return parseDegrees(data)
}

func parseSkills(data []byte) (*SkillVocabulary, error) {
	var v SkillVocabulary
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to parse skill vocabulary: %w", err)
	}
	if len(v.Skills) == 0 {
		return nil, fmt.Errorf("skill vocabulary %q contains no skills", v.Version)
	}
	return &v, nil
}

func parseDegrees(data []byte) (*DegreeScale, error) {
	var d DegreeScale
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse degree scale: %w", err)
	}
	if len(d.Levels) == 0 {
		return nil, fmt.Errorf("degree scale %q contains no levels", d.Version)
	}
	return &d, nil
}

// FindIn returns the vocabulary skills mentioned in text, title-cased for
// display. Matching is case-insensitive substring containment, preserving
// the vocabulary order so derivation is deterministic.
func (v *SkillVocabulary) FindIn(text string) []string {
	textLower := strings.ToLower(text)

	var found []string
	for _, skill := range v.Skills {
		if strings.Contains(textLower, skill) {
			found = append(found, strings.Title(skill)) //nolint:staticcheck // vocabulary tokens are plain ASCII
		}
	}
	return found
}

// Resolve returns the highest degree level whose token appears in text,
// or 0 when no token matches.
func (d *DegreeScale) Resolve(text string) float64 {
	textLower := strings.ToLower(strings.TrimSpace(text))
	if textLower == "" {
		return 0
	}

	level := 0.0
	for token, rank := range d.Levels {
		if strings.Contains(textLower, token) && rank > level {
			level = rank
		}
	}
	return level
}
