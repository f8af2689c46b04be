package scoring

import (
	"github.com/jonathan/resume-screener/internal/parsing"
	"github.com/jonathan/resume-screener/internal/types"
	"github.com/jonathan/resume-screener/internal/vocab"
)

// experienceBonusCap bounds the overachievement bonus: a candidate far past
// the requirement scores at most 1.2 on the experience component.
const experienceBonusCap = 0.2

// SkillScore computes the skill overlap between candidate skills and
// required skills. Comparison is case-insensitive and whitespace-trimmed.
// Returns the score in [0, 1], the matched skills in the candidate's
// original casing, and the missing requirement tokens (normalized).
//
// No required skills means full credit: the absence of a requirement is not
// a gap.
func SkillScore(candidateSkills, requiredSkills []string) (float64, []string, []string) {
	required := parsing.NormalizeSkills(requiredSkills)
	if len(required) == 0 {
		return 1.0, nil, nil
	}

	candidate := parsing.NormalizeSkills(candidateSkills)

	matchedSet := make(map[string]bool)
	for skill := range candidate {
		if required[skill] {
			matchedSet[skill] = true
		}
	}

	// Preserve the candidate's original casing for display, candidate order.
	var matched []string
	seen := make(map[string]bool)
	for _, skill := range candidateSkills {
		normalized := parsing.NormalizeSkill(skill)
		if matchedSet[normalized] && !seen[normalized] {
			matched = append(matched, skill)
			seen[normalized] = true
		}
	}

	// Missing list follows the requirement order for determinism.
	var missing []string
	seenMissing := make(map[string]bool)
	for _, skill := range requiredSkills {
		normalized := parsing.NormalizeSkill(skill)
		if normalized == "" || matchedSet[normalized] || seenMissing[normalized] {
			continue
		}
		missing = append(missing, normalized)
		seenMissing[normalized] = true
	}

	return float64(len(matchedSet)) / float64(len(required)), matched, missing
}

// ExperienceScore computes the experience component. With no requirement
// the score is 1.0; with no candidate data it is 0.0. Meeting the bar
// scores 1.0 plus a bonus of min(excess/required, 0.2); falling short
// scores linearly from 0 at zero experience to 1.0 at the bar.
func ExperienceScore(candidateYears, requiredYears *float64) float64 {
	if requiredYears == nil || *requiredYears == 0 {
		return 1.0
	}
	if candidateYears == nil {
		return 0.0
	}

	candidate, required := *candidateYears, *requiredYears
	if candidate >= required {
		bonus := (candidate - required) / required
		if bonus > experienceBonusCap {
			bonus = experienceBonusCap
		}
		return 1.0 + bonus
	}
	return candidate / required
}

// EducationScore computes the binary education component: 1.0 when any of
// the candidate's degrees resolves to a level at or above the required
// degree on the ordinal scale, 0.0 otherwise. No requirement scores 1.0.
func EducationScore(education []types.Education, requiredDegree string, scale *vocab.DegreeScale) float64 {
	if requiredDegree == "" {
		return 1.0
	}
	if len(education) == 0 {
		return 0.0
	}

	requiredLevel := scale.Resolve(requiredDegree)
	for _, edu := range education {
		level := scale.Resolve(edu.Degree)
		if level > 0 && level >= requiredLevel {
			return 1.0
		}
	}
	return 0.0
}
