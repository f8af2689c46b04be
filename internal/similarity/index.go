// Package similarity provides text embeddings and nearest-neighbor search
// over a tiered vector backend: a remote managed vector service, a local
// sqlite-backed index, and a pure in-memory store as the final fallback.
package similarity

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"go.uber.org/zap"
)

// BackendKind identifies which storage tier an Index resolved to.
type BackendKind string

// Backend tiers in selection priority order.
const (
	BackendRemote BackendKind = "remote"
	BackendLocal  BackendKind = "local"
	BackendMemory BackendKind = "memory"
)

// ErrDeleteUnsupported is returned by Delete when the selected backend
// cannot remove individual entries.
var ErrDeleteUnsupported = errors.New("backend does not support targeted deletion")

// Match is one nearest-neighbor search result. Score is a descending
// ranking score in roughly [0, 1]; its exact derivation depends on the
// backend but results are always comparable within one response.
type Match struct {
	ID       string            `json:"id"`
	Score    float64           `json:"score"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// store is the contract shared by the three backend tiers.
type store interface {
	kind() BackendKind
	upsert(ctx context.Context, id string, vector []float32, metadata map[string]string) error
	search(ctx context.Context, vector []float32, k int) ([]Match, error)
	delete(ctx context.Context, id string) error
	clear(ctx context.Context) error
}

// Options configures backend selection for an Index.
type Options struct {
	// ServiceURL is the base URL of the remote vector service. Empty
	// disables the remote tier.
	ServiceURL string
	// ServiceAPIKey authenticates against the remote service.
	ServiceAPIKey string
	// IndexPath is the sqlite file for the local tier. Empty disables it.
	IndexPath string
	// HTTPClient overrides the remote tier's HTTP client (tests).
	HTTPClient *http.Client
	// Logger receives backend fallback and degradation events.
	Logger *zap.Logger
}

// Index embeds text and answers nearest-neighbor and pairwise-similarity
// queries. The backend is resolved once at construction and never changes
// for the life of the instance: a failed tier is not retried mid-session.
type Index struct {
	embedder Embedder
	store    store
	logger   *zap.Logger

	// mu serializes mutating calls; reads are safe against each backend.
	mu sync.Mutex
}

// New resolves the backend in priority order (remote, local, memory) and
// returns an Index bound to the first tier that initializes. It never
// fails: the in-memory store is always available.
func New(ctx context.Context, embedder Embedder, opts Options) *Index {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ix := &Index{embedder: embedder, logger: logger}

	if opts.ServiceURL != "" {
		remote, err := newRemoteStore(ctx, opts.ServiceURL, opts.ServiceAPIKey, opts.HTTPClient)
		if err == nil {
			logger.Info("similarity index using remote vector service", zap.String("url", opts.ServiceURL))
			ix.store = remote
			return ix
		}
		logger.Warn("remote vector service unavailable, falling back to local index", zap.Error(err))
	}

	if opts.IndexPath != "" {
		local, err := newLocalStore(ctx, opts.IndexPath)
		if err == nil {
			logger.Info("similarity index using local sqlite store", zap.String("path", opts.IndexPath))
			ix.store = local
			return ix
		}
		logger.Warn("local vector index unavailable, falling back to in-memory store", zap.Error(err))
	}

	logger.Info("similarity index using in-memory store")
	ix.store = newMemoryStore()
	return ix
}

// Backend reports which tier the index resolved to at construction.
func (ix *Index) Backend() BackendKind {
	return ix.store.kind()
}

// Embed generates the embedding for text.
func (ix *Index) Embed(ctx context.Context, text string) ([]float32, error) {
	return ix.embedder.Embed(ctx, text)
}

// Upsert writes or overwrites an entry. Backend errors are logged, never
// propagated: the return value reports success.
func (ix *Index) Upsert(ctx context.Context, id, text string, metadata map[string]string) bool {
	vector, err := ix.embedder.Embed(ctx, text)
	if err != nil {
		ix.logger.Warn("upsert skipped: embedding failed", zap.String("id", id), zap.Error(err))
		return false
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	if err := ix.store.upsert(ctx, id, vector, metadata); err != nil {
		ix.logger.Warn("upsert failed", zap.String("id", id), zap.Error(err))
		return false
	}
	return true
}

// Search returns up to k entries nearest to the query text, ordered by
// descending score. Runtime failures return an empty result so a store
// outage degrades ranking quality without aborting a batch.
func (ix *Index) Search(ctx context.Context, query string, k int) []Match {
	if k <= 0 {
		return nil
	}

	vector, err := ix.embedder.Embed(ctx, query)
	if err != nil {
		ix.logger.Warn("search skipped: embedding failed", zap.Error(err))
		return nil
	}

	matches, err := ix.store.search(ctx, vector, k)
	if err != nil {
		ix.logger.Warn("search failed", zap.Error(err))
		return nil
	}
	return matches
}

// Compare returns the cosine similarity of two texts in [0, 1]. This is
// always computed in process from two embeddings, independent of the
// backing store.
func (ix *Index) Compare(ctx context.Context, textA, textB string) (float64, error) {
	vecA, err := ix.embedder.Embed(ctx, textA)
	if err != nil {
		return 0, err
	}
	vecB, err := ix.embedder.Embed(ctx, textB)
	if err != nil {
		return 0, err
	}
	return Cosine(vecA, vecB), nil
}

// Delete removes a single entry. Backends that cannot delete individual
// entries return ErrDeleteUnsupported rather than silently ignoring the
// call.
func (ix *Index) Delete(ctx context.Context, id string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.store.delete(ctx, id)
}

// Clear removes every entry from the selected backend.
func (ix *Index) Clear(ctx context.Context) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.store.clear(ctx)
}
