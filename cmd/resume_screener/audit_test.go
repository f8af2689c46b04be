package main

import (
	"encoding/json"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditCommand_RequiresCandidates(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "audit")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "candidates")
}

func TestAuditCommand_ReportsMissingFields(t *testing.T) {
	binaryPath := getBinaryPath(t)

	tmpDir := t.TempDir()
	candidatesFile := writeTestFile(t, tmpDir, "candidates.json", `[
		{"name": "Ada", "skills": ["Python"], "experience_years": 5},
		{"name": "Bob", "skills": ["Java"], "experience_years": 2},
		{"name": "Cleo", "skills": ["Go"], "experience_years": 4},
		{"name": "Dan", "skills": ["Rust"], "experience_years": 3}
	]`)

	cmd := exec.Command(binaryPath, "audit", "--candidates", candidatesFile)
	output, err := cmd.Output()
	require.NoError(t, err, "audit should succeed: %s", string(output))

	var report struct {
		TotalCandidates int `json:"total_candidates"`
		Flags           []struct {
			Severity string `json:"severity"`
			Category string `json:"category"`
			Message  string `json:"message"`
		} `json:"flags"`
		Summary string `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(output, &report))

	assert.Equal(t, 4, report.TotalCandidates)
	// Every candidate is missing an email address.
	found := false
	for _, f := range report.Flags {
		if f.Category == "missing_data" {
			found = true
		}
	}
	assert.True(t, found, "a cohort without emails should raise a missing-data flag")
}

func TestAuditCommand_RejectsMalformedFile(t *testing.T) {
	binaryPath := getBinaryPath(t)

	tmpDir := t.TempDir()
	candidatesFile := writeTestFile(t, tmpDir, "candidates.json", `{"not": "an array"}`)

	cmd := exec.Command(binaryPath, "audit", "--candidates", candidatesFile)
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "invalid candidates file")
}
