package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-screener/internal/similarity"
	"github.com/jonathan/resume-screener/internal/types"
)

func floatPtr(v float64) *float64 { return &v }

func testCandidates() []*types.CandidateProfile {
	return []*types.CandidateProfile{
		{
			Name:            "Ada Lovelace",
			Email:           "ada@example.com",
			Skills:          []string{"Python", "Go", "SQL"},
			ExperienceYears: floatPtr(6),
			Education:       []types.Education{{Degree: "Master of Science"}},
			Summary:         "Backend engineer with distributed systems focus",
		},
		{
			Name:            "Joe Junior",
			Email:           "joe@example.com",
			Skills:          []string{"Excel"},
			ExperienceYears: floatPtr(1),
		},
	}
}

const testJobText = "Backend engineer. Requires a Bachelor degree, 3+ years of experience, Python and SQL."

func TestScreen_EndToEndWithoutExternalServices(t *testing.T) {
	var events []ProgressEvent
	result, err := Screen(context.Background(), RunOptions{
		JobText:    testJobText,
		JobID:      "job-1",
		Candidates: testCandidates(),
		OnProgress: func(e ProgressEvent) { events = append(events, e) },
	})

	require.NoError(t, err)
	assert.Equal(t, similarity.BackendMemory, result.Backend, "No service URL or index path resolves to the in-memory tier")

	require.Len(t, result.Ranked, 2)
	assert.Equal(t, "Ada Lovelace", result.Ranked[0].Candidate.Name, "Stronger candidate ranks first")
	assert.Greater(t, result.Ranked[0].Breakdown.FinalScore, result.Ranked[1].Breakdown.FinalScore)

	require.NotNil(t, result.Report)
	assert.Equal(t, 2, result.Report.TotalCandidates)

	require.Len(t, result.Results, 2)
	assert.Nil(t, result.Results[0].Explanation, "Explanations are opt-in")
	assert.Equal(t, 0, result.SavedCount)

	var steps []string
	for _, e := range events {
		steps = append(steps, e.Step)
	}
	assert.Equal(t, []string{StepLoad, StepScore, StepAudit}, steps)
}

func TestScreen_DerivesRequirementFromJobText(t *testing.T) {
	result, err := Screen(context.Background(), RunOptions{
		JobText:    testJobText,
		Candidates: testCandidates(),
	})

	require.NoError(t, err)
	require.NotNil(t, result.Requirement.ExperienceYears)
	assert.Equal(t, 3.0, *result.Requirement.ExperienceYears)
	assert.Equal(t, "Bachelor", result.Requirement.Degree)
	assert.Contains(t, result.Requirement.Skills, "Python")
}

func TestScreen_AssignsCandidateIDs(t *testing.T) {
	candidates := testCandidates()
	result, err := Screen(context.Background(), RunOptions{
		JobText:    testJobText,
		Candidates: candidates,
	})

	require.NoError(t, err)
	for _, r := range result.Results {
		assert.NotEmpty(t, r.CandidateID)
	}
}

func TestScreen_FallbackExplanationsWithoutLLM(t *testing.T) {
	result, err := Screen(context.Background(), RunOptions{
		JobText:    testJobText,
		Candidates: testCandidates(),
		Explain:    true,
	})

	require.NoError(t, err)
	for _, r := range result.Results {
		require.NotNil(t, r.Explanation, "Explain without an API key uses the deterministic fallback")
		assert.Len(t, r.Explanation.TopReasons, 3)
	}
}

type stubExplainer struct {
	err   error
	calls int
}

func (s *stubExplainer) Explain(_ context.Context, c *types.CandidateProfile, _ string, _ *types.ScoreBreakdown) (*types.MatchExplanation, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &types.MatchExplanation{
		Summary:        "stubbed for " + c.DisplayName(),
		TopReasons:     []string{"a", "b", "c"},
		Recommendation: types.TierGoodMatch,
	}, nil
}

func TestScreen_UsesInjectedExplainer(t *testing.T) {
	stub := &stubExplainer{}
	result, err := Screen(context.Background(), RunOptions{
		JobText:    testJobText,
		Candidates: testCandidates(),
		Explain:    true,
		Explainer:  stub,
	})

	require.NoError(t, err)
	assert.Equal(t, 2, stub.calls)
	assert.Contains(t, result.Results[0].Explanation.Summary, "stubbed for")
}

func TestScreen_ExplainerFailureDegradesPerRecord(t *testing.T) {
	stub := &stubExplainer{err: errors.New("model overloaded")}
	result, err := Screen(context.Background(), RunOptions{
		JobText:    testJobText,
		Candidates: testCandidates(),
		Explain:    true,
		Explainer:  stub,
	})

	require.NoError(t, err, "A failing explainer must not abort the run")
	for _, r := range result.Results {
		require.NotNil(t, r.Explanation)
		assert.NotEmpty(t, r.Explanation.Recommendation)
	}
}

func TestScreen_LoadsInputsFromFiles(t *testing.T) {
	dir := t.TempDir()
	jobPath := filepath.Join(dir, "job.txt")
	candidatesPath := filepath.Join(dir, "candidates.json")
	require.NoError(t, os.WriteFile(jobPath, []byte(testJobText), 0o644))
	require.NoError(t, os.WriteFile(candidatesPath, []byte(`[
		{"name": "Ada", "skills": ["Python", "SQL"], "experience_years": 4},
		{"name": "Bob", "skills": ["Java"]}
	]`), 0o644))

	result, err := Screen(context.Background(), RunOptions{
		JobPath:        jobPath,
		CandidatesPath: candidatesPath,
	})

	require.NoError(t, err)
	assert.Len(t, result.Ranked, 2)
	assert.Equal(t, "Ada", result.Ranked[0].Candidate.Name)
}

func TestScreen_RejectsInvalidCandidatesFile(t *testing.T) {
	dir := t.TempDir()
	candidatesPath := filepath.Join(dir, "candidates.json")
	require.NoError(t, os.WriteFile(candidatesPath, []byte(`[{"name": "Bad", "skills": "oops"}]`), 0o644))

	_, err := Screen(context.Background(), RunOptions{
		JobText:        testJobText,
		CandidatesPath: candidatesPath,
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid candidates file")
}

func TestScreen_MissingInputs(t *testing.T) {
	_, err := Screen(context.Background(), RunOptions{Candidates: testCandidates()})
	assert.ErrorContains(t, err, "no job description")

	_, err = Screen(context.Background(), RunOptions{JobText: testJobText})
	assert.ErrorContains(t, err, "no candidates")
}

func TestScreen_LocalIndexBackend(t *testing.T) {
	dir := t.TempDir()
	result, err := Screen(context.Background(), RunOptions{
		JobText:    testJobText,
		Candidates: testCandidates(),
		IndexPath:  filepath.Join(dir, "vectors.db"),
	})

	require.NoError(t, err)
	assert.Equal(t, similarity.BackendLocal, result.Backend)
}
