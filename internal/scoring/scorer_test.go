package scoring

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-screener/internal/types"
)

type stubComparer struct {
	score float64
	err   error
}

func (s stubComparer) Compare(_ context.Context, _, _ string) (float64, error) {
	return s.score, s.err
}

func TestNew_DefaultWeights(t *testing.T) {
	scorer, err := New(Options{})

	require.NoError(t, err)
	assert.Equal(t, DefaultWeights(), scorer.weights)
}

func TestNew_RejectsWeightsNotSummingToOne(t *testing.T) {
	_, err := New(Options{
		Weights: &Weights{Skill: 0.5, Experience: 0.5, Education: 0.5, Semantic: 0.5},
	})

	require.Error(t, err)
	var configErr *ConfigError
	require.ErrorAs(t, err, &configErr)
	assert.InDelta(t, 2.0, configErr.Total, 1e-9)
}

func TestNew_AcceptsWeightsWithinTolerance(t *testing.T) {
	_, err := New(Options{
		Weights: &Weights{Skill: 0.1, Experience: 0.2, Education: 0.3, Semantic: 0.4},
	})

	assert.NoError(t, err, "Float addition noise must not reject valid weights")
}

func TestScore_FinalScoreCanExceedOne(t *testing.T) {
	scorer, err := New(Options{Index: stubComparer{score: 1.0}})
	require.NoError(t, err)

	candidate := &types.CandidateProfile{
		ID:              "cand-1",
		Name:            "Ada Lovelace",
		Skills:          []string{"Python", "Go"},
		ExperienceYears: floatPtr(8),
		Education:       []types.Education{{Degree: "Master of Science"}},
	}
	req := types.JobRequirement{
		Skills:          []string{"python", "go"},
		ExperienceYears: floatPtr(5),
		Degree:          "Bachelor",
	}

	breakdown := scorer.Score(context.Background(), candidate, "backend engineer", req)

	assert.Equal(t, 1.2, breakdown.ExperienceScore, "Experience bonus applies")
	assert.Greater(t, breakdown.FinalScore, 1.0, "Weighted sum is not clamped to 1.0")
	assert.InDelta(t, 1.05, breakdown.FinalScore, 1e-9)
	assert.True(t, breakdown.HasRequiredDegree)
}

func TestScore_LexicalFallbackOnCompareFailure(t *testing.T) {
	failing := stubComparer{err: errors.New("embedding service down")}
	scorer, err := New(Options{Index: failing})
	require.NoError(t, err)

	candidate := &types.CandidateProfile{
		ID:      "cand-1",
		Name:    "Grace",
		Summary: "python developer",
	}

	breakdown := scorer.Score(context.Background(), candidate, "python developer wanted", types.JobRequirement{})

	assert.Greater(t, breakdown.SemanticSimilarityScore, 0.0, "Fallback overlap should find shared tokens")
	assert.LessOrEqual(t, breakdown.SemanticSimilarityScore, 1.0)
}

func TestScore_NilIndexUsesLexicalSimilarity(t *testing.T) {
	scorer, err := New(Options{})
	require.NoError(t, err)

	candidate := &types.CandidateProfile{ID: "cand-1", Name: "Sam", Summary: "warehouse logistics"}
	breakdown := scorer.Score(context.Background(), candidate, "", types.JobRequirement{})

	assert.Equal(t, 0.5, breakdown.SemanticSimilarityScore, "Empty job text yields the neutral fallback")
}

func TestResolveRequirement_OverridesWin(t *testing.T) {
	scorer, err := New(Options{})
	require.NoError(t, err)

	jobText := "Requires a PhD and 5+ years of experience with Python and Kubernetes"
	explicit := types.JobRequirement{
		Skills:          []string{"Rust"},
		ExperienceYears: floatPtr(2),
		Degree:          "Bachelor",
	}

	resolved := scorer.ResolveRequirement(jobText, explicit)

	assert.Equal(t, []string{"Rust"}, resolved.Skills)
	assert.Equal(t, 2.0, *resolved.ExperienceYears)
	assert.Equal(t, "Bachelor", resolved.Degree)
}

func TestResolveRequirement_DerivesMissingFields(t *testing.T) {
	scorer, err := New(Options{})
	require.NoError(t, err)

	jobText := "Requires a Bachelor degree and at least 3 years of experience with Python"
	resolved := scorer.ResolveRequirement(jobText, types.JobRequirement{})

	require.NotNil(t, resolved.ExperienceYears)
	assert.Equal(t, 3.0, *resolved.ExperienceYears)
	assert.Equal(t, "Bachelor", resolved.Degree)
	assert.Contains(t, resolved.Skills, "Python")
}

func TestBatchScore_SortedDescending(t *testing.T) {
	scorer, err := New(Options{Index: stubComparer{score: 0.5}})
	require.NoError(t, err)

	candidates := []*types.CandidateProfile{
		{ID: "weak", Name: "Weak", Skills: []string{"Excel"}},
		{ID: "strong", Name: "Strong", Skills: []string{"Python", "Go"}, ExperienceYears: floatPtr(6)},
		{ID: "middle", Name: "Middle", Skills: []string{"Python"}, ExperienceYears: floatPtr(2)},
	}
	req := types.JobRequirement{Skills: []string{"python", "go"}, ExperienceYears: floatPtr(4)}

	results, err := scorer.BatchScore(context.Background(), candidates, "backend engineer", req)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "strong", results[0].Candidate.ID)
	assert.Equal(t, "middle", results[1].Candidate.ID)
	assert.Equal(t, "weak", results[2].Candidate.ID)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Breakdown.FinalScore, results[i].Breakdown.FinalScore)
	}
}

func TestBatchScore_StableTieOrder(t *testing.T) {
	scorer, err := New(Options{Index: stubComparer{score: 0.5}, Concurrency: 2})
	require.NoError(t, err)

	var candidates []*types.CandidateProfile
	for i := 0; i < 6; i++ {
		candidates = append(candidates, &types.CandidateProfile{
			ID:     fmt.Sprintf("cand-%d", i),
			Name:   "Twin",
			Skills: []string{"Python"},
		})
	}

	results, err := scorer.BatchScore(context.Background(), candidates, "python role", types.JobRequirement{Skills: []string{"python"}})
	require.NoError(t, err)
	require.Len(t, results, 6)

	for i, r := range results {
		assert.Equal(t, fmt.Sprintf("cand-%d", i), r.Candidate.ID, "Equal scores keep submission order")
	}
}

func TestBatchScore_EmptyCohort(t *testing.T) {
	scorer, err := New(Options{})
	require.NoError(t, err)

	results, err := scorer.BatchScore(context.Background(), nil, "any role", types.JobRequirement{})

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestBatchScore_CancelledContext(t *testing.T) {
	scorer, err := New(Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = scorer.BatchScore(ctx, []*types.CandidateProfile{{ID: "cand-1"}}, "role", types.JobRequirement{})
	assert.ErrorIs(t, err, context.Canceled)
}
