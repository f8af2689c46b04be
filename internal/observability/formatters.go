// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-screener/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintRequirement outputs the derived job requirement.
func (p *Printer) PrintRequirement(req *types.JobRequirement) {
	if req == nil {
		return
	}

	var sb strings.Builder

	if len(req.Skills) > 0 {
		sb.WriteString("Required skills:\n")
		count := min(len(req.Skills), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", req.Skills[i]))
		}
		if len(req.Skills) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(req.Skills)-maxItemsToShow))
		}
	} else {
		sb.WriteString("Required skills: none stated\n")
	}

	if req.ExperienceYears != nil {
		sb.WriteString(fmt.Sprintf("Experience: %g+ years\n", *req.ExperienceYears))
	} else {
		sb.WriteString("Experience: not stated\n")
	}

	if req.Degree != "" {
		sb.WriteString(fmt.Sprintf("Degree:     %s", req.Degree))
	} else {
		sb.WriteString("Degree:     not stated")
	}

	p.printBox("JOB REQUIREMENT", sb.String())
}

// PrintRanking outputs the scored cohort, best first.
func (p *Printer) PrintRanking(ranked []types.ScoredCandidate) {
	if len(ranked) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Candidates scored: %d\n\n", len(ranked)))

	count := min(len(ranked), maxItemsToShow)
	for i := 0; i < count; i++ {
		sc := ranked[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, sc.Candidate.DisplayName()))
		sb.WriteString(fmt.Sprintf("    Score: %.2f\n", sc.Breakdown.FinalScore))
		if len(sc.Breakdown.MatchedSkills) > 0 {
			skills := strings.Join(sc.Breakdown.MatchedSkills, ", ")
			if len(skills) > 40 {
				skills = skills[:37] + "..."
			}
			sb.WriteString(fmt.Sprintf("    Skills: %s\n", skills))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(ranked) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more candidates", len(ranked)-maxItemsToShow))
	}

	p.printBox("RANKED CANDIDATES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintScoreBreakdown outputs the component scores for one candidate.
func (p *Printer) PrintScoreBreakdown(name string, b *types.ScoreBreakdown) {
	if b == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Candidate: %s\n\n", name))
	sb.WriteString(fmt.Sprintf("Skill match:   %.2f\n", b.SkillMatchScore))
	sb.WriteString(fmt.Sprintf("Experience:    %.2f\n", b.ExperienceScore))
	sb.WriteString(fmt.Sprintf("Education:     %.2f\n", b.EducationScore))
	sb.WriteString(fmt.Sprintf("Semantic:      %.2f\n", b.SemanticSimilarityScore))
	sb.WriteString(fmt.Sprintf("Final score:   %.2f\n", b.FinalScore))
	if len(b.MissingSkills) > 0 {
		sb.WriteString(fmt.Sprintf("\nMissing: %s", strings.Join(b.MissingSkills, ", ")))
	}

	p.printBox("SCORE BREAKDOWN", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintBiasReport outputs the audit flags grouped by severity.
func (p *Printer) PrintBiasReport(report *types.BiasReport) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(report.Summary + "\n")

	for _, severity := range []string{types.SeverityCritical, types.SeverityWarning, types.SeverityInfo} {
		flags := report.FlagsBySeverity(severity)
		if len(flags) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n%s:\n", strings.ToUpper(severity)))
		for _, flag := range flags {
			sb.WriteString(fmt.Sprintf("  • %s\n", flag.Message))
		}
	}

	p.printBox("BIAS AUDIT", strings.TrimSuffix(sb.String(), "\n"))
}
