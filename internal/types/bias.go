package types

import "encoding/json"

// Severity levels for bias flags.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
)

// Flag categories.
const (
	CategoryMissingData    = "missing_data"
	CategoryVariance       = "variance"
	CategoryPattern        = "pattern"
	CategoryParsingQuality = "parsing_quality"
	CategoryConsistency    = "consistency"
)

// BiasFlag describes a single statistical or data-quality anomaly detected
// across a cohort.
type BiasFlag struct {
	Severity           string         `json:"severity"`
	Category           string         `json:"category"`
	Message            string         `json:"message"`
	AffectedCandidates []string       `json:"affected_candidates"`
	Recommendation     string         `json:"recommendation"`
	Details            map[string]any `json:"details"`
}

// BiasReport aggregates the flags detected for one screening batch.
// Reports are created once per batch and read-only afterward.
type BiasReport struct {
	TotalCandidates int        `json:"total_candidates"`
	Flags           []BiasFlag `json:"flags"`
	Summary         string     `json:"summary"`
}

// HasCriticalFlags reports whether any flag has critical severity.
func (r *BiasReport) HasCriticalFlags() bool {
	for _, flag := range r.Flags {
		if flag.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// HasWarnings reports whether any flag has warning severity.
func (r *BiasReport) HasWarnings() bool {
	for _, flag := range r.Flags {
		if flag.Severity == SeverityWarning {
			return true
		}
	}
	return false
}

// FlagsBySeverity returns all flags of the given severity.
func (r *BiasReport) FlagsBySeverity(severity string) []BiasFlag {
	var flags []BiasFlag
	for _, flag := range r.Flags {
		if flag.Severity == severity {
			flags = append(flags, flag)
		}
	}
	return flags
}

// MarshalJSON serializes the report with the derived severity booleans
// included, matching the export contract consumed downstream.
func (r *BiasReport) MarshalJSON() ([]byte, error) {
	type alias BiasReport
	return json.Marshal(struct {
		*alias
		HasCriticalFlags bool `json:"has_critical_flags"`
		HasWarnings      bool `json:"has_warnings"`
	}{
		alias:            (*alias)(r),
		HasCriticalFlags: r.HasCriticalFlags(),
		HasWarnings:      r.HasWarnings(),
	})
}
