// Package types defines the data structures shared across the screening pipeline.
package types

import (
	"fmt"
	"strings"
)

// Education represents a single education entry extracted from a resume.
type Education struct {
	Degree string `json:"degree"`
	Year   int    `json:"year,omitempty"`
}

// CandidateProfile holds the structured fields extracted from one resume.
// Profiles are created by the extraction stage and treated as immutable by
// the scoring and auditing components.
type CandidateProfile struct {
	ID              string      `json:"id,omitempty"`
	Name            string      `json:"name,omitempty"`
	Email           string      `json:"email,omitempty"`
	Phone           string      `json:"phone,omitempty"`
	Skills          []string    `json:"skills,omitempty"`
	ExperienceYears *float64    `json:"experience_years,omitempty"`
	Education       []Education `json:"education,omitempty"`
	Summary         string      `json:"summary,omitempty"`
}

// DisplayName returns the candidate name, or "Unknown" when missing.
func (c *CandidateProfile) DisplayName() string {
	if strings.TrimSpace(c.Name) == "" {
		return "Unknown"
	}
	return c.Name
}

// CanonicalText builds the searchable text for a candidate in a fixed field
// order so that embeddings are reproducible across runs.
func (c *CandidateProfile) CanonicalText() string {
	var parts []string

	if c.Name != "" {
		parts = append(parts, "Name: "+c.Name)
	}
	if c.Summary != "" {
		parts = append(parts, "Summary: "+c.Summary)
	}
	if len(c.Skills) > 0 {
		parts = append(parts, "Skills: "+strings.Join(c.Skills, ", "))
	}
	if c.ExperienceYears != nil {
		parts = append(parts, fmt.Sprintf("Experience: %g years", *c.ExperienceYears))
	}
	for _, edu := range c.Education {
		parts = append(parts, "Education: "+edu.Degree)
	}

	return strings.Join(parts, " | ")
}

// JobRequirement holds the structured expectations derived from a job
// description. Derivation is a pure function of the job text, so a
// requirement built once can be reused for every candidate in a batch.
type JobRequirement struct {
	Skills          []string `json:"skills,omitempty"`
	ExperienceYears *float64 `json:"experience_years,omitempty"`
	Degree          string   `json:"degree,omitempty"`
}
