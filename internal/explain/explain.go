// Package explain produces recruiter-readable match explanations. The
// primary path asks an LLM for a structured assessment; a deterministic
// fallback built from the score breakdown alone covers LLM outages so a
// screening run always yields an explanation.
package explain

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/llm"
	"github.com/jonathan/resume-screener/internal/prompts"
	"github.com/jonathan/resume-screener/internal/types"
)

// jobTextLimit bounds how much of the job description goes into the prompt.
const jobTextLimit = 500

// Explainer generates a match explanation for one scored candidate.
type Explainer interface {
	Explain(ctx context.Context, candidate *types.CandidateProfile, jobText string, breakdown *types.ScoreBreakdown) (*types.MatchExplanation, error)
}

// LLMExplainer asks the configured LLM for the explanation using a few-shot
// recruiter prompt.
type LLMExplainer struct {
	client llm.Client
	tier   llm.ModelTier
	logger *zap.Logger
}

// NewLLM builds an LLMExplainer on top of an LLM client.
func NewLLM(client llm.Client, logger *zap.Logger) *LLMExplainer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMExplainer{
		client: client,
		tier:   llm.TierStandard,
		logger: logger,
	}
}

// Explain generates the explanation. The LLM response is parsed into the
// summary / reasons / recommendation sections; a malformed section degrades
// to a placeholder rather than failing the call.
func (e *LLMExplainer) Explain(ctx context.Context, candidate *types.CandidateProfile, jobText string, breakdown *types.ScoreBreakdown) (*types.MatchExplanation, error) {
	template, err := prompts.Get("explain.json", "match_explanation")
	if err != nil {
		return nil, fmt.Errorf("failed to load explanation prompt: %w", err)
	}

	prompt := prompts.Format(template, promptData(candidate, jobText, breakdown))

	content, err := e.client.GenerateContent(ctx, prompt, e.tier)
	if err != nil {
		return nil, fmt.Errorf("failed to generate explanation: %w", err)
	}

	explanation := parseExplanation(content)
	e.logger.Debug("explanation generated",
		zap.String("candidate", candidate.DisplayName()),
		zap.String("recommendation", explanation.Recommendation))
	return explanation, nil
}

func promptData(candidate *types.CandidateProfile, jobText string, breakdown *types.ScoreBreakdown) map[string]string {
	var degrees []string
	for _, edu := range candidate.Education {
		degrees = append(degrees, edu.Degree)
	}

	return map[string]string{
		"CandidateName":  candidate.DisplayName(),
		"Skills":         joinOr(candidate.Skills, "Not specified"),
		"Experience":     formatYears(candidate.ExperienceYears, "Not specified"),
		"Education":      joinOr(degrees, "Not specified"),
		"JobDescription": truncate(jobText, jobTextLimit),
		"FinalScore":     fmt.Sprintf("%.0f%%", breakdown.FinalScore*100),
		"MatchedSkills":  joinOr(breakdown.MatchedSkills, "None"),
		"MissingSkills":  joinOr(breakdown.MissingSkills, "None"),
	}
}

func joinOr(values []string, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	return strings.Join(values, ", ")
}

func formatYears(years *float64, fallback string) string {
	if years == nil {
		return fallback
	}
	return fmt.Sprintf("%g", *years)
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
