package explain

import (
	"regexp"
	"strings"

	"github.com/jonathan/resume-screener/internal/types"
)

const (
	reasonCount       = 3
	placeholderReason = "Additional analysis needed"

	defaultSummary        = "Unable to generate summary."
	defaultRecommendation = "Unable to determine"
)

var (
	summaryPattern        = regexp.MustCompile(`(?s)Summary:\s*(.+?)\s*Top 3 Reasons:`)
	reasonsPattern        = regexp.MustCompile(`(?s)Top 3 Reasons:\s*(.+?)\s*Recommendation:`)
	recommendationPattern = regexp.MustCompile(`(?s)Recommendation:\s*(.+?)\s*$`)
	numberedPrefix        = regexp.MustCompile(`^(?:\d+\.|-)\s*`)
)

// parseExplanation extracts the three response sections from the model
// output. Missing sections fall back to placeholders; the reasons list is
// always exactly three entries.
func parseExplanation(content string) *types.MatchExplanation {
	content = strings.TrimSpace(content)

	summary := defaultSummary
	if m := summaryPattern.FindStringSubmatch(content); m != nil {
		summary = strings.TrimSpace(m[1])
	}

	var reasons []string
	if m := reasonsPattern.FindStringSubmatch(content); m != nil {
		for _, line := range strings.Split(m[1], "\n") {
			line = strings.TrimSpace(line)
			if line == "" || !numberedPrefix.MatchString(line) {
				continue
			}
			if reason := strings.TrimSpace(numberedPrefix.ReplaceAllString(line, "")); reason != "" {
				reasons = append(reasons, reason)
			}
		}
	}
	for len(reasons) < reasonCount {
		reasons = append(reasons, placeholderReason)
	}
	reasons = reasons[:reasonCount]

	recommendation := defaultRecommendation
	if m := recommendationPattern.FindStringSubmatch(content); m != nil {
		recommendation = strings.TrimSpace(m[1])
	}

	return &types.MatchExplanation{
		Summary:        summary,
		TopReasons:     reasons,
		Recommendation: recommendation,
	}
}
