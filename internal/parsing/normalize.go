// Package parsing derives structured job requirements from free job text.
package parsing

import "strings"

// NormalizeSkill lowercases and trims a skill token for comparison.
// Returns "" for blank input.
func NormalizeSkill(skill string) string {
	return strings.ToLower(strings.TrimSpace(skill))
}

// NormalizeSkills normalizes a list of skill tokens into a set, dropping
// blanks and duplicates.
func NormalizeSkills(skills []string) map[string]bool {
	set := make(map[string]bool, len(skills))
	for _, skill := range skills {
		normalized := NormalizeSkill(skill)
		if normalized != "" {
			set[normalized] = true
		}
	}
	return set
}
