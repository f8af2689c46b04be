package similarity

import (
	"context"
	"sort"
	"sync"
)

// memoryStore is the final fallback backend: a linear-scan map of vectors.
// It is always available and supports every operation.
type memoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	vector   []float32
	metadata map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{entries: make(map[string]memoryEntry)}
}

func (s *memoryStore) kind() BackendKind { return BackendMemory }

func (s *memoryStore) upsert(_ context.Context, id string, vector []float32, metadata map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = memoryEntry{vector: vector, metadata: metadata}
	return nil
}

func (s *memoryStore) search(_ context.Context, vector []float32, k int) ([]Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]Match, 0, len(s.entries))
	for id, entry := range s.entries {
		matches = append(matches, Match{
			ID:       id,
			Score:    Cosine(vector, entry.vector),
			Metadata: entry.metadata,
		})
	}

	// Tie-break on ID: map iteration order must not leak into results.
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

func (s *memoryStore) delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

func (s *memoryStore) clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]memoryEntry)
	return nil
}
