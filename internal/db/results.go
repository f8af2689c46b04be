package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/types"
)

// final_score is a denormalized copy of breakdown.final_score kept for
// indexed range queries; reads take the full breakdown JSON instead.
const resultColumns = `id, job_id, candidate_id, candidate_name,
	COALESCE(candidate_email, ''), breakdown, explanation, created_at`

// SaveResult inserts one screening result. The generated ID and creation
// timestamp are written back into result.
func (db *DB) SaveResult(ctx context.Context, result *types.ScreeningResult) error {
	breakdownJSON, err := json.Marshal(result.Breakdown.FlatRecord())
	if err != nil {
		return fmt.Errorf("failed to marshal breakdown: %w", err)
	}

	var explanationJSON []byte
	if result.Explanation != nil {
		explanationJSON, err = json.Marshal(result.Explanation)
		if err != nil {
			return fmt.Errorf("failed to marshal explanation: %w", err)
		}
	}

	err = db.pool.QueryRow(ctx,
		`INSERT INTO screening_results
		 (job_id, candidate_id, candidate_name, candidate_email, final_score, breakdown, explanation)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		result.JobID, result.CandidateID, result.CandidateName, result.CandidateEmail,
		result.Breakdown.FinalScore, breakdownJSON, explanationJSON,
	).Scan(&result.ID, &result.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save result for %s: %w", result.CandidateName, err)
	}
	return nil
}

// SaveResults inserts a batch, one record at a time. A failing record is
// logged and skipped so one bad row cannot sink the rest of the batch. The
// returned slice holds the results that were persisted.
func (db *DB) SaveResults(ctx context.Context, results []*types.ScreeningResult) []*types.ScreeningResult {
	saved := make([]*types.ScreeningResult, 0, len(results))
	for _, result := range results {
		if err := db.SaveResult(ctx, result); err != nil {
			db.logger.Warn("skipping unsaved screening result",
				zap.String("candidate", result.CandidateName),
				zap.Error(err))
			continue
		}
		saved = append(saved, result)
	}
	return saved
}

// ListRecent returns results ordered newest first.
func (db *DB) ListRecent(ctx context.Context, limit, offset int) ([]*types.ScreeningResult, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+resultColumns+`
		 FROM screening_results
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent results: %w", err)
	}
	return scanResults(rows)
}

// ListByCandidate returns every result recorded for a candidate name,
// newest first.
func (db *DB) ListByCandidate(ctx context.Context, candidateName string) ([]*types.ScreeningResult, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+resultColumns+`
		 FROM screening_results
		 WHERE candidate_name = $1
		 ORDER BY created_at DESC`,
		candidateName,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list results for %s: %w", candidateName, err)
	}
	return scanResults(rows)
}

// ListByScoreRange returns results with final scores in [minScore, maxScore],
// best first.
func (db *DB) ListByScoreRange(ctx context.Context, minScore, maxScore float64) ([]*types.ScreeningResult, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+resultColumns+`
		 FROM screening_results
		 WHERE final_score >= $1 AND final_score <= $2
		 ORDER BY final_score DESC`,
		minScore, maxScore,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list results by score: %w", err)
	}
	return scanResults(rows)
}

// Stats summarizes the stored results using the match-tier boundaries.
type Stats struct {
	TotalResults    int     `json:"total_results"`
	AverageScore    float64 `json:"average_score"`
	StrongMatches   int     `json:"strong_matches"`
	GoodMatches     int     `json:"good_matches"`
	ModerateMatches int     `json:"moderate_matches"`
	WeakMatches     int     `json:"weak_matches"`
}

// Statistics aggregates stored results into per-tier counts.
func (db *DB) Statistics(ctx context.Context) (*Stats, error) {
	var s Stats
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COALESCE(AVG(final_score), 0),
		        COUNT(*) FILTER (WHERE final_score >= 0.8),
		        COUNT(*) FILTER (WHERE final_score >= 0.6 AND final_score < 0.8),
		        COUNT(*) FILTER (WHERE final_score >= 0.4 AND final_score < 0.6),
		        COUNT(*) FILTER (WHERE final_score < 0.4)
		 FROM screening_results`,
	).Scan(&s.TotalResults, &s.AverageScore, &s.StrongMatches, &s.GoodMatches,
		&s.ModerateMatches, &s.WeakMatches)
	if err != nil {
		return nil, fmt.Errorf("failed to compute statistics: %w", err)
	}
	return &s, nil
}

// DeleteResult removes one result by ID. Deleting a missing ID is not an
// error.
func (db *DB) DeleteResult(ctx context.Context, id string) error {
	if _, err := db.pool.Exec(ctx, `DELETE FROM screening_results WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete result %s: %w", id, err)
	}
	return nil
}

// ClearOldResults deletes results older than the retention window and
// returns how many were removed.
func (db *DB) ClearOldResults(ctx context.Context, retention time.Duration) (int64, error) {
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM screening_results WHERE created_at < $1`,
		time.Now().UTC().Add(-retention),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to clear old results: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanResults(rows pgx.Rows) ([]*types.ScreeningResult, error) {
	defer rows.Close()

	var results []*types.ScreeningResult
	for rows.Next() {
		var (
			result          types.ScreeningResult
			breakdownJSON   []byte
			explanationJSON []byte
		)
		err := rows.Scan(&result.ID, &result.JobID, &result.CandidateID,
			&result.CandidateName, &result.CandidateEmail,
			&breakdownJSON, &explanationJSON, &result.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}

		var record map[string]any
		if err := json.Unmarshal(breakdownJSON, &record); err != nil {
			return nil, fmt.Errorf("corrupt breakdown for %s: %w", result.CandidateName, err)
		}
		result.Breakdown = *types.BreakdownFromFlatRecord(record)
		if len(explanationJSON) > 0 {
			result.Explanation = &types.MatchExplanation{}
			if err := json.Unmarshal(explanationJSON, result.Explanation); err != nil {
				return nil, fmt.Errorf("corrupt explanation for %s: %w", result.CandidateName, err)
			}
		}
		results = append(results, &result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read results: %w", err)
	}
	return results, nil
}
