package types

// ScoreBreakdown holds the four component scores and the weighted final
// score for one (candidate, job) pair. A breakdown is created once by the
// scorer and never mutated afterward.
//
// ExperienceScore can exceed 1.0 (up to 1.2) as a bounded bonus for
// candidates who exceed the experience requirement, so FinalScore is not
// clamped to 1.0 either.
type ScoreBreakdown struct {
	SkillMatchScore         float64 `json:"skill_match_score"`
	ExperienceScore         float64 `json:"experience_score"`
	EducationScore          float64 `json:"education_score"`
	SemanticSimilarityScore float64 `json:"semantic_similarity_score"`
	FinalScore              float64 `json:"final_score"`

	MatchedSkills      []string `json:"matched_skills"`
	MissingSkills      []string `json:"missing_skills"`
	ExperienceYears    *float64 `json:"experience_years,omitempty"`
	RequiredExperience *float64 `json:"required_experience,omitempty"`
	HasRequiredDegree  bool     `json:"has_required_degree"`
}

// FlatRecord flattens the breakdown into a key/value record for the
// persistence sink and the explanation collaborator.
func (b *ScoreBreakdown) FlatRecord() map[string]any {
	record := map[string]any{
		"skill_match_score":         b.SkillMatchScore,
		"experience_score":          b.ExperienceScore,
		"education_score":           b.EducationScore,
		"semantic_similarity_score": b.SemanticSimilarityScore,
		"final_score":               b.FinalScore,
		"matched_skills":            append([]string(nil), b.MatchedSkills...),
		"missing_skills":            append([]string(nil), b.MissingSkills...),
		"has_required_degree":       b.HasRequiredDegree,
	}
	if b.ExperienceYears != nil {
		record["experience_years"] = *b.ExperienceYears
	}
	if b.RequiredExperience != nil {
		record["required_experience"] = *b.RequiredExperience
	}
	return record
}

// BreakdownFromFlatRecord reconstructs a ScoreBreakdown from a flat record
// produced by FlatRecord. Unknown keys are ignored; missing optional keys
// stay nil.
func BreakdownFromFlatRecord(record map[string]any) *ScoreBreakdown {
	b := &ScoreBreakdown{}

	b.SkillMatchScore = floatValue(record, "skill_match_score")
	b.ExperienceScore = floatValue(record, "experience_score")
	b.EducationScore = floatValue(record, "education_score")
	b.SemanticSimilarityScore = floatValue(record, "semantic_similarity_score")
	b.FinalScore = floatValue(record, "final_score")
	b.MatchedSkills = stringSliceValue(record, "matched_skills")
	b.MissingSkills = stringSliceValue(record, "missing_skills")

	if v, ok := record["has_required_degree"].(bool); ok {
		b.HasRequiredDegree = v
	}
	if v, ok := record["experience_years"]; ok {
		if f, ok := toFloat(v); ok {
			b.ExperienceYears = &f
		}
	}
	if v, ok := record["required_experience"]; ok {
		if f, ok := toFloat(v); ok {
			b.RequiredExperience = &f
		}
	}

	return b
}

func floatValue(record map[string]any, key string) float64 {
	if v, ok := record[key]; ok {
		if f, ok := toFloat(v); ok {
			return f
		}
	}
	return 0
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func stringSliceValue(record map[string]any, key string) []string {
	switch v := record[key].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		// JSON round-trips decode string slices as []any.
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
