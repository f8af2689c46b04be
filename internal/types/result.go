package types

import (
	"time"

	"github.com/google/uuid"
)

// ScreeningResult is the persistence record for one (job, candidate,
// breakdown, explanation) tuple.
type ScreeningResult struct {
	ID             uuid.UUID         `json:"id"`
	JobID          string            `json:"job_id"`
	CandidateID    string            `json:"candidate_id"`
	CandidateName  string            `json:"candidate_name"`
	CandidateEmail string            `json:"candidate_email,omitempty"`
	Breakdown      ScoreBreakdown    `json:"breakdown"`
	Explanation    *MatchExplanation `json:"explanation,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

// ScoredCandidate pairs a candidate with its score breakdown. Batch scoring
// returns these ordered by FinalScore descending.
type ScoredCandidate struct {
	Candidate *CandidateProfile `json:"candidate"`
	Breakdown *ScoreBreakdown   `json:"breakdown"`
}
