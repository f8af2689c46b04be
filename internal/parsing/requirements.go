package parsing

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jonathan/resume-screener/internal/types"
	"github.com/jonathan/resume-screener/internal/vocab"
)

// experiencePatterns match common phrasings of experience requirements,
// e.g. "5+ years of experience" or "minimum of 3 years".
var experiencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+)\+?\s*years?\s+(?:of\s+)?experience`),
	regexp.MustCompile(`experience[:\s]+(\d+)\+?\s*years?`),
	regexp.MustCompile(`minimum\s+(?:of\s+)?(\d+)\+?\s*years?`),
	regexp.MustCompile(`at\s+least\s+(\d+)\+?\s*years?`),
}

// degreeKeywords groups degree tokens by the canonical requirement name.
// Order matters: the highest level is checked first so "PhD or Master's"
// resolves to the stricter requirement.
var degreeKeywords = []struct {
	degree   string
	keywords []string
}{
	{"Phd", []string{"phd", "ph.d", "doctorate", "doctoral"}},
	{"Master", []string{"master", "masters", "ms", "m.s", "ma", "m.a", "mba"}},
	{"Bachelor", []string{"bachelor", "bachelors", "bs", "b.s", "ba", "b.a"}},
}

// DeriveRequirement extracts the structured job requirement from job text.
// The result is a pure function of the text and the vocabulary version, so
// a requirement derived once can be shared across a whole batch.
func DeriveRequirement(jobText string, skills *vocab.SkillVocabulary) types.JobRequirement {
	return types.JobRequirement{
		Skills:          skills.FindIn(jobText),
		ExperienceYears: ExtractRequiredExperience(jobText),
		Degree:          ExtractRequiredDegree(jobText),
	}
}

// ExtractRequiredExperience extracts the required years of experience from
// job text, or nil if no requirement is stated.
func ExtractRequiredExperience(text string) *float64 {
	textLower := strings.ToLower(text)

	for _, pattern := range experiencePatterns {
		match := pattern.FindStringSubmatch(textLower)
		if len(match) < 2 {
			continue
		}
		years, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			continue
		}
		return &years
	}
	return nil
}

// ExtractRequiredDegree extracts a required degree token ("Phd", "Master",
// "Bachelor") from job text, or "" when no degree is marked as required.
func ExtractRequiredDegree(text string) string {
	textLower := strings.ToLower(text)

	for _, group := range degreeKeywords {
		for _, keyword := range group.keywords {
			if !strings.Contains(textLower, keyword) {
				continue
			}
			// Only treat the mention as a requirement when the surrounding
			// text marks it as one.
			contextPatterns := []string{
				`require[ds]?.*` + regexp.QuoteMeta(keyword),
				regexp.QuoteMeta(keyword) + `.*require[ds]?`,
				`must have.*` + regexp.QuoteMeta(keyword),
				regexp.QuoteMeta(keyword) + `.*degree`,
			}
			for _, pattern := range contextPatterns {
				if regexp.MustCompile(pattern).MatchString(textLower) {
					return group.degree
				}
			}
		}
	}
	return ""
}
