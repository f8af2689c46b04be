// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// Config is the CLI configuration loadable from a JSON file. All fields are
// optional; missing values use defaults or come from CLI flags.
type Config struct {
	// Inputs
	Job        string `json:"job,omitempty"`        // Path to job description text file
	Candidates string `json:"candidates,omitempty"` // Path to candidates JSON file

	// Scoring weights. Zero values fall back to the scorer defaults.
	SkillWeight      float64 `json:"skill_weight,omitempty" validate:"gte=0,lte=1"`
	ExperienceWeight float64 `json:"experience_weight,omitempty" validate:"gte=0,lte=1"`
	EducationWeight  float64 `json:"education_weight,omitempty" validate:"gte=0,lte=1"`
	SemanticWeight   float64 `json:"semantic_weight,omitempty" validate:"gte=0,lte=1"`

	// Audit thresholds. Zero values fall back to the detector defaults.
	MissingFieldThreshold float64 `json:"missing_field_threshold,omitempty" validate:"gte=0,lte=1"`
	VarianceThreshold     float64 `json:"variance_threshold,omitempty" validate:"gte=0"`
	ScoreSpreadThreshold  float64 `json:"score_spread_threshold,omitempty" validate:"gte=0,lte=1"`

	// Similarity backend
	VectorServiceURL    string `json:"vector_service_url,omitempty" validate:"omitempty,url"`
	VectorServiceAPIKey string `json:"vector_service_api_key,omitempty"`
	IndexPath           string `json:"index_path,omitempty"` // sqlite file for the local tier

	// Vocabularies (external overrides for the embedded defaults)
	SkillsFile  string `json:"skills_file,omitempty"`
	DegreesFile string `json:"degrees_file,omitempty"`

	// Behavior
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	Explain     bool   `json:"explain,omitempty"`      // Generate LLM explanations
	Concurrency int    `json:"concurrency,omitempty" validate:"gte=0"`
	Verbose     bool   `json:"verbose,omitempty"`
	JSONLogs    bool   `json:"json_logs,omitempty"`
}

// LoadConfig loads configuration from a JSON file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return &cfg, nil
}

// Validate checks value ranges and that referenced files exist. Required
// fields are not checked here; flag validation after merging handles those.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	for name, path := range map[string]string{
		"job":          c.Job,
		"candidates":   c.Candidates,
		"skills_file":  c.SkillsFile,
		"degrees_file": c.DegreesFile,
	} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("config error: '%s' file not found: %s", name, path)
		}
	}
	return nil
}

// MergeWithDefaults returns a copy of c with zero-valued fields filled from
// defaults. Config file values act as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	stringFields := []struct {
		dst *string
		def string
	}{
		{&result.Job, defaults.Job},
		{&result.Candidates, defaults.Candidates},
		{&result.VectorServiceURL, defaults.VectorServiceURL},
		{&result.VectorServiceAPIKey, defaults.VectorServiceAPIKey},
		{&result.IndexPath, defaults.IndexPath},
		{&result.SkillsFile, defaults.SkillsFile},
		{&result.DegreesFile, defaults.DegreesFile},
		{&result.APIKey, defaults.APIKey},
		{&result.DatabaseURL, defaults.DatabaseURL},
	}
	for _, f := range stringFields {
		if *f.dst == "" {
			*f.dst = f.def
		}
	}

	floatFields := []struct {
		dst *float64
		def float64
	}{
		{&result.SkillWeight, defaults.SkillWeight},
		{&result.ExperienceWeight, defaults.ExperienceWeight},
		{&result.EducationWeight, defaults.EducationWeight},
		{&result.SemanticWeight, defaults.SemanticWeight},
		{&result.MissingFieldThreshold, defaults.MissingFieldThreshold},
		{&result.VarianceThreshold, defaults.VarianceThreshold},
		{&result.ScoreSpreadThreshold, defaults.ScoreSpreadThreshold},
	}
	for _, f := range floatFields {
		if *f.dst == 0 {
			*f.dst = f.def
		}
	}

	if result.Concurrency == 0 {
		result.Concurrency = defaults.Concurrency
	}
	result.Explain = result.Explain || defaults.Explain
	result.Verbose = result.Verbose || defaults.Verbose
	result.JSONLogs = result.JSONLogs || defaults.JSONLogs

	return result
}

// HasWeightOverrides reports whether any scoring weight is set. Weights are
// all-or-nothing: a partial set would silently break the sum-to-one rule.
func (c *Config) HasWeightOverrides() bool {
	return c.SkillWeight != 0 || c.ExperienceWeight != 0 ||
		c.EducationWeight != 0 || c.SemanticWeight != 0
}
