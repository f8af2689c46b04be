// Package scoring ranks candidates against a job description using four
// weighted signals: skill overlap, experience fit, education fit, and
// semantic similarity between resume and job text.
package scoring

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-screener/internal/parsing"
	"github.com/jonathan/resume-screener/internal/types"
	"github.com/jonathan/resume-screener/internal/vocab"
)

// Default component weights. They sum to 1.0, so a candidate meeting every
// requirement exactly lands at a final score of 1.0.
const (
	DefaultSkillWeight      = 0.35
	DefaultExperienceWeight = 0.25
	DefaultEducationWeight  = 0.15
	DefaultSemanticWeight   = 0.25
)

const (
	weightTolerance         = 1e-9
	defaultBatchConcurrency = 4
)

// Weights holds the per-component weights of the final score.
type Weights struct {
	Skill      float64 `json:"skill"`
	Experience float64 `json:"experience"`
	Education  float64 `json:"education"`
	Semantic   float64 `json:"semantic"`
}

// DefaultWeights returns the standard component weights.
func DefaultWeights() Weights {
	return Weights{
		Skill:      DefaultSkillWeight,
		Experience: DefaultExperienceWeight,
		Education:  DefaultEducationWeight,
		Semantic:   DefaultSemanticWeight,
	}
}

func (w Weights) total() float64 {
	return w.Skill + w.Experience + w.Education + w.Semantic
}

// ConfigError reports a weight configuration whose components do not sum
// to 1.0.
type ConfigError struct {
	Total float64
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("score weights must sum to 1.0, got %.6f", e.Total)
}

// Comparer is the similarity capability the scorer depends on. A nil
// Comparer degrades the semantic signal to lexical overlap.
type Comparer interface {
	Compare(ctx context.Context, textA, textB string) (float64, error)
}

// Options configures a Scorer. The zero value uses default weights, the
// embedded vocabularies, no similarity index, and a no-op logger.
type Options struct {
	// Weights overrides the default component weights.
	Weights *Weights
	// Index supplies the semantic similarity signal. Nil means lexical
	// fallback for every candidate.
	Index Comparer
	// Skills overrides the embedded skill vocabulary.
	Skills *vocab.SkillVocabulary
	// Degrees overrides the embedded degree scale.
	Degrees *vocab.DegreeScale
	// Concurrency bounds batch fan-out. Zero means the default.
	Concurrency int
	Logger      *zap.Logger
}

// Scorer scores candidates against job requirements. Instances are safe
// for concurrent use.
type Scorer struct {
	weights     Weights
	index       Comparer
	skills      *vocab.SkillVocabulary
	degrees     *vocab.DegreeScale
	concurrency int
	logger      *zap.Logger
}

// New builds a Scorer, validating that the configured weights sum to 1.0
// within floating-point tolerance.
func New(opts Options) (*Scorer, error) {
	weights := DefaultWeights()
	if opts.Weights != nil {
		weights = *opts.Weights
	}
	if total := weights.total(); math.Abs(total-1.0) > weightTolerance {
		return nil, &ConfigError{Total: total}
	}

	skills := opts.Skills
	if skills == nil {
		var err error
		skills, err = vocab.LoadSkills()
		if err != nil {
			return nil, fmt.Errorf("failed to load skill vocabulary: %w", err)
		}
	}

	degrees := opts.Degrees
	if degrees == nil {
		var err error
		degrees, err = vocab.LoadDegrees()
		if err != nil {
			return nil, fmt.Errorf("failed to load degree scale: %w", err)
		}
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = defaultBatchConcurrency
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scorer{
		weights:     weights,
		index:       opts.Index,
		skills:      skills,
		degrees:     degrees,
		concurrency: concurrency,
		logger:      logger,
	}, nil
}

// ResolveRequirement fills the blank fields of req by deriving them from
// the job text. Explicitly provided fields win over derived ones.
func (s *Scorer) ResolveRequirement(jobText string, req types.JobRequirement) types.JobRequirement {
	derived := parsing.DeriveRequirement(jobText, s.skills)
	if req.Skills == nil {
		req.Skills = derived.Skills
	}
	if req.ExperienceYears == nil {
		req.ExperienceYears = derived.ExperienceYears
	}
	if req.Degree == "" {
		req.Degree = derived.Degree
	}
	return req
}

// Score evaluates one candidate against the job. Requirement fields left
// blank are derived from jobText. The final score is the weighted sum of
// the four components and may exceed 1.0 when the experience bonus applies.
func (s *Scorer) Score(ctx context.Context, candidate *types.CandidateProfile, jobText string, req types.JobRequirement) *types.ScoreBreakdown {
	return s.score(ctx, candidate, jobText, s.ResolveRequirement(jobText, req))
}

func (s *Scorer) score(ctx context.Context, candidate *types.CandidateProfile, jobText string, req types.JobRequirement) *types.ScoreBreakdown {
	skillScore, matched, missing := SkillScore(candidate.Skills, req.Skills)
	experienceScore := ExperienceScore(candidate.ExperienceYears, req.ExperienceYears)
	educationScore := EducationScore(candidate.Education, req.Degree, s.degrees)
	semanticScore := s.semanticScore(ctx, candidate, jobText)

	final := s.weights.Skill*skillScore +
		s.weights.Experience*experienceScore +
		s.weights.Education*educationScore +
		s.weights.Semantic*semanticScore

	return &types.ScoreBreakdown{
		SkillMatchScore:         skillScore,
		ExperienceScore:         experienceScore,
		EducationScore:          educationScore,
		SemanticSimilarityScore: semanticScore,
		FinalScore:              final,
		MatchedSkills:           matched,
		MissingSkills:           missing,
		ExperienceYears:         candidate.ExperienceYears,
		RequiredExperience:      req.ExperienceYears,
		HasRequiredDegree:       educationScore > 0,
	}
}

func (s *Scorer) semanticScore(ctx context.Context, candidate *types.CandidateProfile, jobText string) float64 {
	candidateText := candidate.CanonicalText()
	if s.index == nil {
		return LexicalSimilarity(candidateText, jobText)
	}

	score, err := s.index.Compare(ctx, candidateText, jobText)
	if err != nil {
		s.logger.Warn("semantic comparison failed, using lexical overlap",
			zap.String("candidate_id", candidate.ID),
			zap.Error(err))
		return LexicalSimilarity(candidateText, jobText)
	}
	return score
}

// BatchScore scores a cohort concurrently and returns it sorted by final
// score, highest first. Ties keep the input order. The requirement is
// resolved once and shared across the batch. The only error is context
// cancellation.
func (s *Scorer) BatchScore(ctx context.Context, candidates []*types.CandidateProfile, jobText string, req types.JobRequirement) ([]types.ScoredCandidate, error) {
	req = s.ResolveRequirement(jobText, req)

	results := make([]types.ScoredCandidate, len(candidates))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, candidate := range candidates {
		i, candidate := i, candidate
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = types.ScoredCandidate{
				Candidate: candidate,
				Breakdown: s.score(ctx, candidate, jobText, req),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch scoring aborted: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Breakdown.FinalScore > results[j].Breakdown.FinalScore
	})
	return results, nil
}
