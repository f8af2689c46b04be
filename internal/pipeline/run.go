// Package pipeline provides the high-level orchestration for a screening
// run: load inputs, score the cohort, audit it, explain the matches, and
// persist the results.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/audit"
	"github.com/jonathan/resume-screener/internal/db"
	"github.com/jonathan/resume-screener/internal/explain"
	"github.com/jonathan/resume-screener/internal/llm"
	"github.com/jonathan/resume-screener/internal/observability"
	"github.com/jonathan/resume-screener/internal/schemas"
	"github.com/jonathan/resume-screener/internal/scoring"
	"github.com/jonathan/resume-screener/internal/similarity"
	"github.com/jonathan/resume-screener/internal/types"
	"github.com/jonathan/resume-screener/internal/vocab"
)

// Pipeline step and category names reported through progress events.
const (
	StepLoad    = "load"
	StepScore   = "score"
	StepAudit   = "audit"
	StepExplain = "explain"
	StepPersist = "persist"

	CategoryScreening   = "screening"
	CategoryPersistence = "persistence"
)

// ProgressEvent represents a progress update during a screening run.
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs.
type ProgressCallback func(event ProgressEvent)

// RunOptions holds configuration for one screening run. Inputs may be
// injected directly (JobText, Candidates) or loaded from paths.
type RunOptions struct {
	JobPath string
	JobText string // direct injection, wins over JobPath

	CandidatesPath string
	Candidates     []*types.CandidateProfile // direct injection, wins over CandidatesPath

	JobID       string
	Requirement types.JobRequirement // explicit overrides; blanks are derived from job text

	Weights     *scoring.Weights
	Concurrency int

	MissingFieldThreshold float64
	VarianceThreshold     float64
	ScoreSpreadThreshold  float64

	VectorServiceURL    string
	VectorServiceAPIKey string
	IndexPath           string

	SkillsFile  string
	DegreesFile string

	APIKey  string
	Explain bool
	// Explainer overrides the LLM explainer (tests). Nil builds one from
	// APIKey when Explain is set.
	Explainer explain.Explainer

	DatabaseURL string
	Verbose     bool
	Logger      *zap.Logger
	OnProgress  ProgressCallback
}

// Result is the outcome of one screening run.
type Result struct {
	JobID       string                   `json:"job_id"`
	Requirement types.JobRequirement     `json:"requirement"`
	Ranked      []types.ScoredCandidate  `json:"ranked"`
	Report      *types.BiasReport        `json:"report"`
	Results     []*types.ScreeningResult `json:"results"`
	Backend     similarity.BackendKind   `json:"backend"`
	SavedCount  int                      `json:"saved_count"`
}

func emitProgress(opts *RunOptions, step, category, message string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{
			Step:     step,
			Category: category,
			Message:  message,
			Content:  content,
		})
	}
}

// Screen runs the full screening pipeline. Scoring failures abort the run;
// explanation and persistence failures degrade per record so one outage
// cannot lose the whole batch.
func Screen(ctx context.Context, opts RunOptions) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	printer := observability.NewPrinter(os.Stdout)

	jobText, candidates, err := loadInputs(&opts)
	if err != nil {
		return nil, err
	}
	emitProgress(&opts, StepLoad, CategoryScreening,
		fmt.Sprintf("Loaded %d candidates", len(candidates)), nil)

	skills, degrees, err := loadVocabularies(&opts)
	if err != nil {
		return nil, err
	}

	// One LLM client serves both remote embeddings and explanations.
	var client llm.Client
	if opts.APIKey != "" {
		client, err = llm.NewClient(ctx, llm.DefaultConfig(), opts.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
		}
		defer func() { _ = client.Close() }()
	}

	var embedder similarity.Embedder
	if client != nil {
		embedder = similarity.NewGeminiEmbedder(client)
	} else {
		embedder = similarity.NewHashingEmbedder(0)
	}
	index := similarity.New(ctx, embedder, similarity.Options{
		ServiceURL:    opts.VectorServiceURL,
		ServiceAPIKey: opts.VectorServiceAPIKey,
		IndexPath:     opts.IndexPath,
		Logger:        logger,
	})

	scorer, err := scoring.New(scoring.Options{
		Weights:     opts.Weights,
		Index:       index,
		Skills:      skills,
		Degrees:     degrees,
		Concurrency: opts.Concurrency,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build scorer: %w", err)
	}

	requirement := scorer.ResolveRequirement(jobText, opts.Requirement)
	if opts.Verbose {
		printer.PrintRequirement(&requirement)
	}

	ranked, err := scorer.BatchScore(ctx, candidates, jobText, requirement)
	if err != nil {
		return nil, fmt.Errorf("scoring failed: %w", err)
	}
	if opts.Verbose {
		printer.PrintRanking(ranked)
	}
	emitProgress(&opts, StepScore, CategoryScreening,
		fmt.Sprintf("Scored %d candidates", len(ranked)), nil)

	report := runAudit(&opts, ranked, logger)
	if opts.Verbose {
		printer.PrintBiasReport(report)
	}
	emitProgress(&opts, StepAudit, CategoryScreening, report.Summary, report)

	results := buildResults(ctx, &opts, client, jobText, ranked, logger)

	saved := 0
	if opts.DatabaseURL != "" {
		saved = persistResults(ctx, &opts, results, logger)
	}

	return &Result{
		JobID:       opts.JobID,
		Requirement: requirement,
		Ranked:      ranked,
		Report:      report,
		Results:     results,
		Backend:     index.Backend(),
		SavedCount:  saved,
	}, nil
}

func loadInputs(opts *RunOptions) (string, []*types.CandidateProfile, error) {
	jobText := opts.JobText
	if jobText == "" && opts.JobPath != "" {
		data, err := os.ReadFile(opts.JobPath)
		if err != nil {
			return "", nil, fmt.Errorf("failed to read job description %s: %w", opts.JobPath, err)
		}
		jobText = string(data)
	}
	if jobText == "" {
		return "", nil, fmt.Errorf("no job description provided")
	}

	candidates := opts.Candidates
	if candidates == nil && opts.CandidatesPath != "" {
		data, err := os.ReadFile(opts.CandidatesPath)
		if err != nil {
			return "", nil, fmt.Errorf("failed to read candidates %s: %w", opts.CandidatesPath, err)
		}
		if err := schemas.ValidateCandidates(data); err != nil {
			return "", nil, fmt.Errorf("invalid candidates file %s: %w", opts.CandidatesPath, err)
		}
		if err := json.Unmarshal(data, &candidates); err != nil {
			return "", nil, fmt.Errorf("failed to parse candidates %s: %w", opts.CandidatesPath, err)
		}
	}
	if len(candidates) == 0 {
		return "", nil, fmt.Errorf("no candidates provided")
	}

	// Stable IDs so downstream records can be traced back.
	for _, c := range candidates {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
	}
	return jobText, candidates, nil
}

func loadVocabularies(opts *RunOptions) (*vocab.SkillVocabulary, *vocab.DegreeScale, error) {
	var (
		skills  *vocab.SkillVocabulary
		degrees *vocab.DegreeScale
		err     error
	)
	if opts.SkillsFile != "" {
		skills, err = vocab.LoadSkillsFile(opts.SkillsFile)
		if err != nil {
			return nil, nil, err
		}
	}
	if opts.DegreesFile != "" {
		degrees, err = vocab.LoadDegreesFile(opts.DegreesFile)
		if err != nil {
			return nil, nil, err
		}
	}
	return skills, degrees, nil
}

func runAudit(opts *RunOptions, ranked []types.ScoredCandidate, logger *zap.Logger) *types.BiasReport {
	candidates := make([]*types.CandidateProfile, len(ranked))
	breakdowns := make([]*types.ScoreBreakdown, len(ranked))
	for i, sc := range ranked {
		candidates[i] = sc.Candidate
		breakdowns[i] = sc.Breakdown
	}

	detector := audit.New(audit.Options{
		MissingFieldThreshold: opts.MissingFieldThreshold,
		VarianceThreshold:     opts.VarianceThreshold,
		ScoreSpreadThreshold:  opts.ScoreSpreadThreshold,
		Logger:                logger,
	})
	return detector.GenerateReport(candidates, breakdowns)
}

// buildResults assembles the persistence records and, when requested,
// attaches an explanation per candidate. The LLM path degrades per record
// to the deterministic fallback.
func buildResults(ctx context.Context, opts *RunOptions, client llm.Client, jobText string, ranked []types.ScoredCandidate, logger *zap.Logger) []*types.ScreeningResult {
	explainer := opts.Explainer
	if explainer == nil && opts.Explain && client != nil {
		explainer = explain.NewLLM(client, logger)
	}

	results := make([]*types.ScreeningResult, 0, len(ranked))
	explained := 0
	for _, sc := range ranked {
		result := &types.ScreeningResult{
			JobID:          opts.JobID,
			CandidateID:    sc.Candidate.ID,
			CandidateName:  sc.Candidate.DisplayName(),
			CandidateEmail: sc.Candidate.Email,
			Breakdown:      *sc.Breakdown,
		}

		if opts.Explain {
			result.Explanation = explainCandidate(ctx, explainer, sc, jobText, logger)
			explained++
		}
		results = append(results, result)
	}

	if opts.Explain {
		emitProgress(opts, StepExplain, CategoryScreening,
			fmt.Sprintf("Explained %d candidates", explained), nil)
	}
	return results
}

func explainCandidate(ctx context.Context, explainer explain.Explainer, sc types.ScoredCandidate, jobText string, logger *zap.Logger) *types.MatchExplanation {
	if explainer != nil {
		explanation, err := explainer.Explain(ctx, sc.Candidate, jobText, sc.Breakdown)
		if err == nil {
			return explanation
		}
		logger.Warn("explanation fell back to deterministic summary",
			zap.String("candidate", sc.Candidate.DisplayName()),
			zap.Error(err))
	}
	return explain.Fallback(sc.Candidate, sc.Breakdown)
}

// persistResults saves what it can. A connection failure skips persistence
// entirely; a per-record failure is logged inside SaveResults.
func persistResults(ctx context.Context, opts *RunOptions, results []*types.ScreeningResult, logger *zap.Logger) int {
	database, err := db.Connect(ctx, opts.DatabaseURL, logger)
	if err != nil {
		logger.Warn("continuing without database persistence", zap.Error(err))
		return 0
	}
	defer database.Close()

	saved := database.SaveResults(ctx, results)
	emitProgress(opts, StepPersist, CategoryPersistence,
		fmt.Sprintf("Persisted %d of %d results", len(saved), len(results)), nil)
	return len(saved)
}
