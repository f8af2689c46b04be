package similarity

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	_ "modernc.org/sqlite" // pure-Go sqlite driver
)

// localStore is the on-disk fallback backend: vectors live in a sqlite
// table and similarity is computed in process. Targeted deletion works,
// unlike typical flat ANN indexes.
type localStore struct {
	db *sql.DB
}

func newLocalStore(ctx context.Context, path string) (*localStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open local index %s: %w", path, err)
	}

	_, err = db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS vectors (
		id TEXT PRIMARY KEY,
		vector BLOB NOT NULL,
		metadata TEXT
	)`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create vectors table: %w", err)
	}

	return &localStore{db: db}, nil
}

func (s *localStore) kind() BackendKind { return BackendLocal }

func (s *localStore) upsert(ctx context.Context, id string, vector []float32, metadata map[string]string) error {
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO vectors (id, vector, metadata) VALUES (?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET vector = excluded.vector, metadata = excluded.metadata`,
		id, encodeVector(vector), string(metaJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert vector %s: %w", id, err)
	}
	return nil
}

func (s *localStore) search(ctx context.Context, vector []float32, k int) ([]Match, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, vector, metadata FROM vectors`)
	if err != nil {
		return nil, fmt.Errorf("failed to scan vectors: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var id string
		var blob []byte
		var metaJSON sql.NullString
		if err := rows.Scan(&id, &blob, &metaJSON); err != nil {
			return nil, fmt.Errorf("failed to scan vector row: %w", err)
		}

		stored, err := decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("corrupt vector %s: %w", id, err)
		}

		var metadata map[string]string
		if metaJSON.Valid && metaJSON.String != "" {
			_ = json.Unmarshal([]byte(metaJSON.String), &metadata)
		}

		// Distance-derived score: identical vectors score 1.0, decreasing
		// toward 0 with L2 distance.
		matches = append(matches, Match{
			ID:       id,
			Score:    1.0 / (1.0 + l2Distance(vector, stored)),
			Metadata: metadata,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vectors: %w", err)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score == matches[j].Score {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func (s *localStore) delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM vectors WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete vector %s: %w", id, err)
	}
	return nil
}

func (s *localStore) clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM vectors`); err != nil {
		return fmt.Errorf("failed to clear vectors: %w", err)
	}
	return nil
}

func encodeVector(vector []float32) []byte {
	buf := make([]byte, 4*len(vector))
	for i, v := range vector {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("vector blob length %d is not a multiple of 4", len(blob))
	}
	vector := make([]float32, len(blob)/4)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vector, nil
}

func l2Distance(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
