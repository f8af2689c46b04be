package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-screener/internal/audit"
	"github.com/jonathan/resume-screener/internal/logger"
	"github.com/jonathan/resume-screener/internal/observability"
	"github.com/jonathan/resume-screener/internal/schemas"
	"github.com/jonathan/resume-screener/internal/types"
)

var auditCommand = &cobra.Command{
	Use:   "audit",
	Short: "Run the bias and data-quality audit on a candidate batch",
	Long: `Analyzes a candidates JSON file for systematic data problems that would
skew a screening run: missing critical fields, skewed experience or
education distributions, duplicate entries, and sourcing concentration.
No scoring happens; the report is written to stdout as JSON.`,
	RunE: runAuditCmd,
}

var (
	auditCandidates  string
	auditMissingThr  float64
	auditVarianceThr float64
	auditSpreadThr   float64
	auditVerbose     bool
	auditJSONLogs    bool
)

func init() {
	auditCommand.Flags().StringVarP(&auditCandidates, "candidates", "c", "", "Path to candidates JSON file (required)")
	auditCommand.Flags().Float64Var(&auditMissingThr, "missing-field-threshold", 0, "Missing-field rate that triggers a flag")
	auditCommand.Flags().Float64Var(&auditVarianceThr, "variance-threshold", 0, "Experience coefficient of variation that triggers a flag")
	auditCommand.Flags().Float64Var(&auditSpreadThr, "score-spread-threshold", 0, "Score spread below which clustering is flagged")
	auditCommand.Flags().BoolVarP(&auditVerbose, "verbose", "v", false, "Print a formatted report in addition to the JSON")
	auditCommand.Flags().BoolVar(&auditJSONLogs, "json-logs", false, "Emit structured JSON logs instead of console logs")

	_ = auditCommand.MarkFlagRequired("candidates")

	rootCmd.AddCommand(auditCommand)
}

func runAuditCmd(_ *cobra.Command, _ []string) error {
	log, err := logger.New(auditJSONLogs, auditVerbose)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	data, err := os.ReadFile(auditCandidates)
	if err != nil {
		return fmt.Errorf("failed to read candidates %s: %w", auditCandidates, err)
	}
	if err := schemas.ValidateCandidates(data); err != nil {
		return fmt.Errorf("invalid candidates file %s: %w", auditCandidates, err)
	}

	var candidates []*types.CandidateProfile
	if err := json.Unmarshal(data, &candidates); err != nil {
		return fmt.Errorf("failed to parse candidates %s: %w", auditCandidates, err)
	}

	detector := audit.New(audit.Options{
		MissingFieldThreshold: auditMissingThr,
		VarianceThreshold:     auditVarianceThr,
		ScoreSpreadThreshold:  auditSpreadThr,
		Logger:                log,
	})
	report := detector.GenerateReport(candidates, nil)

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := schemas.ValidateBiasReport(out); err != nil {
		return fmt.Errorf("generated report failed validation: %w", err)
	}

	if auditVerbose {
		observability.NewPrinter(os.Stderr).PrintBiasReport(report)
	}

	_, err = fmt.Fprintln(os.Stdout, string(out))
	return err
}
