package explain

import (
	"fmt"

	"github.com/jonathan/resume-screener/internal/types"
)

// Tier thresholds for the deterministic recommendation.
const (
	strongMatchThreshold   = 0.8
	goodMatchThreshold     = 0.6
	moderateMatchThreshold = 0.4
)

// Fallback builds an explanation from the score breakdown alone. It needs
// no network and is fully deterministic, so every candidate gets an
// explanation even when the LLM path is down.
func Fallback(candidate *types.CandidateProfile, breakdown *types.ScoreBreakdown) *types.MatchExplanation {
	name := candidate.DisplayName()

	var recommendation, summary string
	switch {
	case breakdown.FinalScore >= strongMatchThreshold:
		recommendation = types.TierStrongMatch
		summary = fmt.Sprintf("%s shows strong alignment with the position requirements.", name)
	case breakdown.FinalScore >= goodMatchThreshold:
		recommendation = types.TierGoodMatch
		summary = fmt.Sprintf("%s demonstrates good fit for the position with some areas for improvement.", name)
	case breakdown.FinalScore >= moderateMatchThreshold:
		recommendation = types.TierModerateMatch
		summary = fmt.Sprintf("%s has moderate alignment with some gaps in key requirements.", name)
	default:
		recommendation = types.TierWeakMatch
		summary = fmt.Sprintf("%s does not align well with the core position requirements.", name)
	}

	educationLine := "Education: Does not meet requirements"
	if breakdown.HasRequiredDegree {
		educationLine = "Education: Meets requirements"
	}

	return &types.MatchExplanation{
		Summary: summary,
		TopReasons: []string{
			fmt.Sprintf("Skills match: %d matched, %d missing",
				len(breakdown.MatchedSkills), len(breakdown.MissingSkills)),
			fmt.Sprintf("Experience: %s years (required: %s)",
				formatYears(breakdown.ExperienceYears, "unknown"),
				formatYears(breakdown.RequiredExperience, "none")),
			educationLine,
		},
		Recommendation: recommendation,
	}
}
