// Package audit inspects a screening cohort for statistical and
// data-quality anomalies that could make the ranking unfair: missing
// fields, extreme distributions, clustered scores, duplicate submissions.
// It never infers protected attributes; every check works on the parsed
// resume data and scores alone.
package audit

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/types"
)

// Default detection thresholds.
const (
	DefaultMissingFieldThreshold = 0.3
	DefaultVarianceThreshold     = 0.7
	DefaultScoreSpreadThreshold  = 0.6

	criticalMissingRate     = 0.5
	educationSkewRate       = 0.8
	nearPerfectScore        = 0.99
	nearPerfectShareRate    = 0.3
	emailDomainRate         = 0.7
	lowSkillAverage         = 3.0
	minCohortForPatterns    = 5
	minCohortForSkills      = 3
	minBreakdownsForScoring = 3
)

// criticalFields are the resume fields whose absence skews evaluation most.
var criticalFields = []string{"name", "email", "skills", "experience_years"}

// keyFields is the wider field set used for the parsing-completeness check.
var keyFields = []string{"name", "email", "phone", "skills", "experience_years", "education"}

// commonEmailDomains are consumer providers excluded from the
// domain-concentration check.
var commonEmailDomains = map[string]bool{
	"gmail.com":   true,
	"yahoo.com":   true,
	"hotmail.com": true,
	"outlook.com": true,
}

// Options configures detection thresholds. Zero values use the defaults.
type Options struct {
	// MissingFieldThreshold is the fraction of candidates missing a field
	// at which the cohort is flagged.
	MissingFieldThreshold float64
	// VarianceThreshold is the coefficient-of-variation bound for the
	// experience distribution.
	VarianceThreshold float64
	// ScoreSpreadThreshold is the minimum final-score spread below which
	// scores count as clustered.
	ScoreSpreadThreshold float64
	Logger               *zap.Logger
}

// Detector runs the cohort checks. Instances are stateless and safe for
// concurrent use.
type Detector struct {
	missingFieldThreshold float64
	varianceThreshold     float64
	scoreSpreadThreshold  float64
	logger                *zap.Logger
}

// New builds a Detector with the given thresholds.
func New(opts Options) *Detector {
	d := &Detector{
		missingFieldThreshold: opts.MissingFieldThreshold,
		varianceThreshold:     opts.VarianceThreshold,
		scoreSpreadThreshold:  opts.ScoreSpreadThreshold,
		logger:                opts.Logger,
	}
	if d.missingFieldThreshold <= 0 {
		d.missingFieldThreshold = DefaultMissingFieldThreshold
	}
	if d.varianceThreshold <= 0 {
		d.varianceThreshold = DefaultVarianceThreshold
	}
	if d.scoreSpreadThreshold <= 0 {
		d.scoreSpreadThreshold = DefaultScoreSpreadThreshold
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	return d
}

// GenerateReport runs every check over the cohort. Breakdowns are optional;
// when present they must be index-aligned with candidates. An empty cohort
// yields an empty report, not an error.
func (d *Detector) GenerateReport(candidates []*types.CandidateProfile, breakdowns []*types.ScoreBreakdown) *types.BiasReport {
	if len(candidates) == 0 {
		return &types.BiasReport{
			TotalCandidates: 0,
			Flags:           []types.BiasFlag{},
			Summary:         "No candidates to analyze.",
		}
	}

	// Non-nil so an empty report still serializes with a flags array.
	flags := []types.BiasFlag{}
	flags = append(flags, d.checkMissingFields(candidates)...)
	flags = append(flags, d.checkExperienceVariance(candidates)...)
	flags = append(flags, d.checkEducationPatterns(candidates)...)
	flags = append(flags, d.checkSkillDiversity(candidates)...)
	if len(breakdowns) > 0 {
		flags = append(flags, d.checkScoringPatterns(candidates, breakdowns)...)
	}
	flags = append(flags, d.checkParsingQuality(candidates)...)
	flags = append(flags, d.checkDataConsistency(candidates)...)

	report := &types.BiasReport{
		TotalCandidates: len(candidates),
		Flags:           flags,
		Summary:         buildSummary(len(candidates), flags),
	}
	d.logger.Debug("bias report generated",
		zap.Int("candidates", report.TotalCandidates),
		zap.Int("flags", len(report.Flags)))
	return report
}

func fieldMissing(c *types.CandidateProfile, field string) bool {
	switch field {
	case "name":
		return strings.TrimSpace(c.Name) == ""
	case "email":
		return strings.TrimSpace(c.Email) == ""
	case "phone":
		return strings.TrimSpace(c.Phone) == ""
	case "skills":
		return len(c.Skills) == 0
	case "experience_years":
		// Zero years is valid for entry-level roles; only nil is missing.
		return c.ExperienceYears == nil
	case "education":
		return len(c.Education) == 0
	}
	return false
}

func (d *Detector) checkMissingFields(candidates []*types.CandidateProfile) []types.BiasFlag {
	var flags []types.BiasFlag

	for _, field := range criticalFields {
		var missing []string
		for _, c := range candidates {
			if fieldMissing(c, field) {
				missing = append(missing, c.DisplayName())
			}
		}
		if len(missing) == 0 {
			continue
		}

		rate := float64(len(missing)) / float64(len(candidates))
		if rate < d.missingFieldThreshold {
			continue
		}

		severity := types.SeverityWarning
		if rate >= criticalMissingRate {
			severity = types.SeverityCritical
		}
		flags = append(flags, types.BiasFlag{
			Severity:           severity,
			Category:           types.CategoryMissingData,
			Message:            fmt.Sprintf("High rate of missing '%s' field (%.1f%% of candidates)", field, rate*100),
			AffectedCandidates: missing,
			Recommendation:     fmt.Sprintf("Review resume parsing for '%s' extraction. Missing data may lead to unfair evaluation.", field),
			Details: map[string]any{
				"field":         field,
				"missing_count": len(missing),
				"missing_rate":  rate,
			},
		})
	}
	return flags
}

func (d *Detector) checkExperienceVariance(candidates []*types.CandidateProfile) []types.BiasFlag {
	var years []float64
	for _, c := range candidates {
		if c.ExperienceYears != nil {
			years = append(years, *c.ExperienceYears)
		}
	}
	if len(years) < 2 {
		return nil
	}

	meanExp := mean(years)
	if meanExp == 0 {
		return nil
	}

	stdevExp := stdev(years)
	cv := stdevExp / meanExp
	if cv <= d.varianceThreshold {
		return nil
	}

	minExp, maxExp := minMax(years)
	return []types.BiasFlag{{
		Severity:           types.SeverityWarning,
		Category:           types.CategoryVariance,
		Message:            fmt.Sprintf("Extreme variance in experience distribution (CV=%.2f)", cv),
		AffectedCandidates: []string{},
		Recommendation:     "Review if job requirements are clearly defined. Large experience spread may indicate unclear requirements or over-broad candidate pool.",
		Details: map[string]any{
			"mean_experience":          round(meanExp, 1),
			"std_dev":                  round(stdevExp, 1),
			"coefficient_of_variation": round(cv, 2),
			"min_experience":           minExp,
			"max_experience":           maxExp,
			"range":                    maxExp - minExp,
		},
	}}
}

// educationLevel buckets a candidate's highest degree into a coarse level
// for distribution analysis.
func educationLevel(education []types.Education) string {
	if len(education) == 0 {
		return "none"
	}

	var degrees []string
	for _, e := range education {
		degrees = append(degrees, strings.ToLower(e.Degree))
	}
	containsAny := func(tokens ...string) bool {
		for _, d := range degrees {
			for _, token := range tokens {
				if strings.Contains(d, token) {
					return true
				}
			}
		}
		return false
	}

	switch {
	case containsAny("phd", "doctorate"):
		return "phd"
	case containsAny("master", "mba", "ms", "ma"):
		return "master"
	case containsAny("bachelor", "bs", "ba"):
		return "bachelor"
	case containsAny("associate"):
		return "associate"
	default:
		return "other"
	}
}

func (d *Detector) checkEducationPatterns(candidates []*types.CandidateProfile) []types.BiasFlag {
	var flags []types.BiasFlag

	levels := make([]string, 0, len(candidates))
	var noEducation []string
	for _, c := range candidates {
		level := educationLevel(c.Education)
		levels = append(levels, level)
		if level == "none" {
			noEducation = append(noEducation, c.DisplayName())
		}
	}

	missingRate := float64(len(noEducation)) / float64(len(candidates))
	if missingRate >= d.missingFieldThreshold {
		flags = append(flags, types.BiasFlag{
			Severity:           types.SeverityWarning,
			Category:           types.CategoryMissingData,
			Message:            fmt.Sprintf("High rate of missing education data (%d/%d candidates)", len(noEducation), len(candidates)),
			AffectedCandidates: noEducation,
			Recommendation:     "Verify if education requirements are clearly stated. Missing education data may disadvantage qualified candidates.",
			Details: map[string]any{
				"missing_count": len(noEducation),
				"missing_rate":  missingRate,
			},
		})
	}

	counts := make(map[string]int)
	for _, level := range levels {
		counts[level]++
	}
	dominantLevel, dominantCount := mostCommon(counts)

	if len(candidates) >= minCohortForPatterns &&
		float64(dominantCount)/float64(len(levels)) > educationSkewRate {
		flags = append(flags, types.BiasFlag{
			Severity:           types.SeverityInfo,
			Category:           types.CategoryPattern,
			Message:            fmt.Sprintf("Education distribution heavily skewed toward %s level (%d/%d candidates)", dominantLevel, dominantCount, len(candidates)),
			AffectedCandidates: []string{},
			Recommendation:     "Review if job requirements may be excluding qualified candidates with different education backgrounds.",
			Details: map[string]any{
				"dominant_level":      dominantLevel,
				"dominant_count":      dominantCount,
				"dominant_percentage": float64(dominantCount) / float64(len(candidates)),
				"distribution":        counts,
			},
		})
	}

	return flags
}

func (d *Detector) checkSkillDiversity(candidates []*types.CandidateProfile) []types.BiasFlag {
	uniqueSkills := make(map[string]bool)
	var skillCounts []float64
	for _, c := range candidates {
		for _, skill := range c.Skills {
			uniqueSkills[skill] = true
		}
		skillCounts = append(skillCounts, float64(len(c.Skills)))
	}

	if len(uniqueSkills) == 0 {
		affected := make([]string, 0, len(candidates))
		for _, c := range candidates {
			affected = append(affected, c.DisplayName())
		}
		return []types.BiasFlag{{
			Severity:           types.SeverityCritical,
			Category:           types.CategoryMissingData,
			Message:            "No skills extracted from any candidate",
			AffectedCandidates: affected,
			Recommendation:     "Critical: Review resume parsing. Skills are essential for evaluation.",
			Details: map[string]any{
				"total_unique_skills": 0,
				"candidates_affected": len(candidates),
			},
		}}
	}

	avgSkills := mean(skillCounts)
	if avgSkills >= lowSkillAverage || len(candidates) < minCohortForSkills {
		return nil
	}

	var lowSkill []string
	for _, c := range candidates {
		if float64(len(c.Skills)) < lowSkillAverage {
			lowSkill = append(lowSkill, c.DisplayName())
		}
	}
	return []types.BiasFlag{{
		Severity:           types.SeverityWarning,
		Category:           types.CategoryMissingData,
		Message:            fmt.Sprintf("Low skill extraction rate (avg %.1f skills per candidate)", avgSkills),
		AffectedCandidates: lowSkill,
		Recommendation:     "Review resume parsing quality. Low skill counts may indicate parsing issues or overly strict extraction.",
		Details: map[string]any{
			"avg_skills_per_candidate":   round(avgSkills, 1),
			"total_unique_skills":        len(uniqueSkills),
			"candidates_with_few_skills": len(lowSkill),
		},
	}}
}

func (d *Detector) checkScoringPatterns(candidates []*types.CandidateProfile, breakdowns []*types.ScoreBreakdown) []types.BiasFlag {
	if len(breakdowns) < minBreakdownsForScoring {
		return nil
	}

	var flags []types.BiasFlag

	scores := make([]float64, 0, len(breakdowns))
	for _, b := range breakdowns {
		scores = append(scores, b.FinalScore)
	}
	minScore, maxScore := minMax(scores)
	spread := maxScore - minScore

	if spread < d.scoreSpreadThreshold && len(candidates) >= minCohortForPatterns {
		flags = append(flags, types.BiasFlag{
			Severity:           types.SeverityWarning,
			Category:           types.CategoryPattern,
			Message:            fmt.Sprintf("Scores clustered in narrow range (spread: %.1f%%)", spread*100),
			AffectedCandidates: []string{},
			Recommendation:     "Review scoring methodology. Narrow score distribution may indicate system is not differentiating candidates effectively.",
			Details: map[string]any{
				"score_range": round(spread, 3),
				"min_score":   round(minScore, 3),
				"max_score":   round(maxScore, 3),
				"mean_score":  round(mean(scores), 3),
			},
		})
	}

	var nearPerfect []string
	for i, b := range breakdowns {
		if b.FinalScore >= nearPerfectScore && i < len(candidates) {
			nearPerfect = append(nearPerfect, candidates[i].DisplayName())
		}
	}
	if float64(len(nearPerfect)) > float64(len(candidates))*nearPerfectShareRate {
		flags = append(flags, types.BiasFlag{
			Severity:           types.SeverityInfo,
			Category:           types.CategoryPattern,
			Message:            fmt.Sprintf("Unusually high rate of near-perfect scores (%d/%d)", len(nearPerfect), len(candidates)),
			AffectedCandidates: nearPerfect,
			Recommendation:     "Verify scoring is differentiating candidates. Very high scores may indicate overly lenient criteria.",
			Details: map[string]any{
				"perfect_score_count": len(nearPerfect),
				"perfect_score_rate":  float64(len(nearPerfect)) / float64(len(candidates)),
			},
		})
	}

	return flags
}

func (d *Detector) checkParsingQuality(candidates []*types.CandidateProfile) []types.BiasFlag {
	var incomplete []string
	for _, c := range candidates {
		present := 0
		for _, field := range keyFields {
			if !fieldMissing(c, field) {
				present++
			}
		}
		if float64(present) < float64(len(keyFields))/2 {
			incomplete = append(incomplete, c.DisplayName())
		}
	}
	if len(incomplete) == 0 {
		return nil
	}

	return []types.BiasFlag{{
		Severity:           types.SeverityWarning,
		Category:           types.CategoryParsingQuality,
		Message:            fmt.Sprintf("%d candidates have incomplete data (< 50%% key fields)", len(incomplete)),
		AffectedCandidates: incomplete,
		Recommendation:     "Review resume formats and parsing logic. Incomplete parsing may unfairly disadvantage candidates.",
		Details: map[string]any{
			"incomplete_count": len(incomplete),
			"incomplete_rate":  float64(len(incomplete)) / float64(len(candidates)),
		},
	}}
}

func (d *Detector) checkDataConsistency(candidates []*types.CandidateProfile) []types.BiasFlag {
	var flags []types.BiasFlag

	nameCounts := make(map[string]int)
	for _, c := range candidates {
		name := strings.ToLower(strings.TrimSpace(c.Name))
		if name != "" {
			nameCounts[name]++
		}
	}
	duplicates := make(map[string]any)
	var duplicateNames []string
	for name, count := range nameCounts {
		if count > 1 {
			duplicates[name] = count
			duplicateNames = append(duplicateNames, name)
		}
	}
	sort.Strings(duplicateNames)

	if len(duplicates) > 0 {
		flags = append(flags, types.BiasFlag{
			Severity:           types.SeverityWarning,
			Category:           types.CategoryConsistency,
			Message:            fmt.Sprintf("Potential duplicate candidates detected (%d names appear multiple times)", len(duplicates)),
			AffectedCandidates: duplicateNames,
			Recommendation:     "Review for duplicate submissions. Multiple entries for same candidate may skew statistics.",
			Details: map[string]any{
				"duplicates": duplicates,
			},
		})
	}

	domainCounts := make(map[string]int)
	emailCount := 0
	for _, c := range candidates {
		email := strings.ToLower(strings.TrimSpace(c.Email))
		if email == "" {
			continue
		}
		emailCount++
		domain := ""
		if at := strings.LastIndex(email, "@"); at >= 0 {
			domain = email[at+1:]
		}
		domainCounts[domain]++
	}

	if emailCount > 0 {
		domain, count := mostCommon(domainCounts)
		if !commonEmailDomains[domain] &&
			float64(count)/float64(emailCount) > emailDomainRate &&
			len(candidates) >= minCohortForPatterns {
			flags = append(flags, types.BiasFlag{
				Severity:           types.SeverityInfo,
				Category:           types.CategoryPattern,
				Message:            fmt.Sprintf("Email addresses concentrated in one domain (%s: %d/%d)", domain, count, emailCount),
				AffectedCandidates: []string{},
				Recommendation:     "This may be normal for internal referrals, but verify candidate pool diversity.",
				Details: map[string]any{
					"dominant_domain": domain,
					"domain_count":    count,
					"domain_rate":     float64(count) / float64(emailCount),
				},
			})
		}
	}

	return flags
}

// mostCommon returns the key with the highest count, breaking ties by the
// lexicographically smallest key so reports are reproducible.
func mostCommon(counts map[string]int) (string, int) {
	best, bestCount := "", 0
	for key, count := range counts {
		if count > bestCount || (count == bestCount && key < best) {
			best, bestCount = key, count
		}
	}
	return best, bestCount
}

func buildSummary(total int, flags []types.BiasFlag) string {
	if len(flags) == 0 {
		return fmt.Sprintf("No bias concerns detected across %d candidates.", total)
	}

	critical, warning, info := 0, 0, 0
	for _, f := range flags {
		switch f.Severity {
		case types.SeverityCritical:
			critical++
		case types.SeverityWarning:
			warning++
		case types.SeverityInfo:
			info++
		}
	}

	parts := []string{fmt.Sprintf("Analyzed %d candidates.", total)}
	if critical > 0 {
		parts = append(parts, fmt.Sprintf("%d critical issue(s) found.", critical))
	}
	if warning > 0 {
		parts = append(parts, fmt.Sprintf("%d warning(s) identified.", warning))
	}
	if info > 0 {
		parts = append(parts, fmt.Sprintf("%d informational notice(s).", info))
	}
	parts = append(parts, "Review flags below for details and recommendations.")
	return strings.Join(parts, " ")
}
