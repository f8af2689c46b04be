package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-screener/internal/config"
	"github.com/jonathan/resume-screener/internal/logger"
	"github.com/jonathan/resume-screener/internal/pipeline"
	"github.com/jonathan/resume-screener/internal/scoring"
)

var screenCommand = &cobra.Command{
	Use:   "screen",
	Short: "Score and rank candidates against a job description",
	Long: `Scores each candidate in the batch against the job description, ranks
the cohort, and runs a bias audit over the results. With --explain, each
result carries a generated match explanation; with --db-url, results are
persisted to PostgreSQL.

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values.`,
	RunE: runScreenCmd,
}

var (
	screenConfigPath   string
	screenJob          string
	screenCandidates   string
	screenJobID        string
	screenSkillW       float64
	screenExperienceW  float64
	screenEducationW   float64
	screenSemanticW    float64
	screenMissingThr   float64
	screenVarianceThr  float64
	screenSpreadThr    float64
	screenVectorURL    string
	screenVectorAPIKey string
	screenIndexPath    string
	screenSkillsFile   string
	screenDegreesFile  string
	screenAPIKey       string
	screenDatabaseURL  string
	screenExplain      bool
	screenConcurrency  int
	screenOutput       string
	screenVerbose      bool
	screenJSONLogs     bool
)

func init() {
	// Config file flag (processed first)
	screenCommand.Flags().StringVar(&screenConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	screenCommand.Flags().StringVarP(&screenJob, "job", "j", "", "Path to job description text file")
	screenCommand.Flags().StringVarP(&screenCandidates, "candidates", "c", "", "Path to candidates JSON file")
	screenCommand.Flags().StringVar(&screenJobID, "job-id", "", "Identifier stored with persisted results (optional)")

	screenCommand.Flags().Float64Var(&screenSkillW, "skill-weight", 0, "Skill match weight (all four weights must be set together)")
	screenCommand.Flags().Float64Var(&screenExperienceW, "experience-weight", 0, "Experience weight")
	screenCommand.Flags().Float64Var(&screenEducationW, "education-weight", 0, "Education weight")
	screenCommand.Flags().Float64Var(&screenSemanticW, "semantic-weight", 0, "Semantic similarity weight")

	screenCommand.Flags().Float64Var(&screenMissingThr, "missing-field-threshold", 0, "Missing-field rate that triggers an audit flag")
	screenCommand.Flags().Float64Var(&screenVarianceThr, "variance-threshold", 0, "Experience coefficient of variation that triggers an audit flag")
	screenCommand.Flags().Float64Var(&screenSpreadThr, "score-spread-threshold", 0, "Score spread below which clustering is flagged")

	screenCommand.Flags().StringVar(&screenVectorURL, "vector-url", "", "Remote vector service URL (optional)")
	screenCommand.Flags().StringVar(&screenVectorAPIKey, "vector-api-key", "", "Remote vector service API key (optional)")
	screenCommand.Flags().StringVar(&screenIndexPath, "index-path", "", "SQLite file for the local vector index (optional)")

	screenCommand.Flags().StringVar(&screenSkillsFile, "skills-file", "", "JSON file overriding the built-in skill vocabulary")
	screenCommand.Flags().StringVar(&screenDegreesFile, "degrees-file", "", "JSON file overriding the built-in degree scale")

	screenCommand.Flags().BoolVar(&screenExplain, "explain", false, "Generate a match explanation per candidate")
	screenCommand.Flags().IntVar(&screenConcurrency, "concurrency", 0, "Parallel scoring workers (0 uses the default)")
	screenCommand.Flags().StringVarP(&screenOutput, "output", "o", "", "Write the full result JSON to this file instead of stdout")
	screenCommand.Flags().BoolVarP(&screenVerbose, "verbose", "v", false, "Print detailed progress information")
	screenCommand.Flags().BoolVar(&screenJSONLogs, "json-logs", false, "Emit structured JSON logs instead of console logs")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	screenCommand.Flags().StringVar(&screenAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	// Database URL for result persistence
	screenCommand.Flags().StringVar(&screenDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(screenCommand)
}

func runScreenCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	// Step 1: Load config file if provided
	var cfg config.Config
	if screenConfigPath != "" {
		loadedCfg, err := config.LoadConfig(screenConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if err := loadedCfg.Validate(); err != nil {
			return err
		}

		cfg = *loadedCfg
		if screenVerbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", screenConfigPath)
		}
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("job") {
		cfg.Job = screenJob
	}
	if cmd.Flags().Changed("candidates") {
		cfg.Candidates = screenCandidates
	}
	if cmd.Flags().Changed("skill-weight") {
		cfg.SkillWeight = screenSkillW
	}
	if cmd.Flags().Changed("experience-weight") {
		cfg.ExperienceWeight = screenExperienceW
	}
	if cmd.Flags().Changed("education-weight") {
		cfg.EducationWeight = screenEducationW
	}
	if cmd.Flags().Changed("semantic-weight") {
		cfg.SemanticWeight = screenSemanticW
	}
	if cmd.Flags().Changed("missing-field-threshold") {
		cfg.MissingFieldThreshold = screenMissingThr
	}
	if cmd.Flags().Changed("variance-threshold") {
		cfg.VarianceThreshold = screenVarianceThr
	}
	if cmd.Flags().Changed("score-spread-threshold") {
		cfg.ScoreSpreadThreshold = screenSpreadThr
	}
	if cmd.Flags().Changed("vector-url") {
		cfg.VectorServiceURL = screenVectorURL
	}
	if cmd.Flags().Changed("vector-api-key") {
		cfg.VectorServiceAPIKey = screenVectorAPIKey
	}
	if cmd.Flags().Changed("index-path") {
		cfg.IndexPath = screenIndexPath
	}
	if cmd.Flags().Changed("skills-file") {
		cfg.SkillsFile = screenSkillsFile
	}
	if cmd.Flags().Changed("degrees-file") {
		cfg.DegreesFile = screenDegreesFile
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = screenAPIKey
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = screenDatabaseURL
	}
	if cmd.Flags().Changed("explain") {
		cfg.Explain = screenExplain
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency = screenConcurrency
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = screenVerbose
	}
	if cmd.Flags().Changed("json-logs") {
		cfg.JSONLogs = screenJSONLogs
	}

	// Step 3: Validate required fields
	if cfg.Job == "" {
		return fmt.Errorf("--job must be provided (via flag or config)")
	}
	if cfg.Candidates == "" {
		return fmt.Errorf("--candidates must be provided (via flag or config)")
	}

	// Step 4: API key and database URL fall back to the environment
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	log, err := logger.New(cfg.JSONLogs, cfg.Verbose)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	opts := pipeline.RunOptions{
		JobPath:               cfg.Job,
		CandidatesPath:        cfg.Candidates,
		JobID:                 screenJobID,
		Concurrency:           cfg.Concurrency,
		MissingFieldThreshold: cfg.MissingFieldThreshold,
		VarianceThreshold:     cfg.VarianceThreshold,
		ScoreSpreadThreshold:  cfg.ScoreSpreadThreshold,
		VectorServiceURL:      cfg.VectorServiceURL,
		VectorServiceAPIKey:   cfg.VectorServiceAPIKey,
		IndexPath:             cfg.IndexPath,
		SkillsFile:            cfg.SkillsFile,
		DegreesFile:           cfg.DegreesFile,
		APIKey:                cfg.APIKey,
		Explain:               cfg.Explain,
		DatabaseURL:           cfg.DatabaseURL,
		Verbose:               cfg.Verbose,
		Logger:                log,
	}
	if cfg.HasWeightOverrides() {
		opts.Weights = &scoring.Weights{
			Skill:      cfg.SkillWeight,
			Experience: cfg.ExperienceWeight,
			Education:  cfg.EducationWeight,
			Semantic:   cfg.SemanticWeight,
		}
	}

	result, err := pipeline.Screen(ctx, opts)
	if err != nil {
		return err
	}

	return writeResult(result, screenOutput)
}

func writeResult(result *pipeline.Result, outputPath string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, data, 0o644); err != nil {
			return fmt.Errorf("failed to write result to %s: %w", outputPath, err)
		}
		return nil
	}

	_, err = fmt.Fprintln(os.Stdout, string(data))
	return err
}
