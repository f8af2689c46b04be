package similarity

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"regexp"
	"strings"

	"github.com/jonathan/resume-screener/internal/llm"
)

// Embedder turns free text into a fixed-dimensional vector. Embeddings are
// deterministic for a fixed model/version: the same text always yields the
// same vector within one process.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// geminiEmbeddingDimension is the output size of the text-embedding-004 model.
const geminiEmbeddingDimension = 768

// GeminiEmbedder produces embeddings through the Gemini embedding API.
type GeminiEmbedder struct {
	client llm.Client
}

// NewGeminiEmbedder wraps an LLM client as an Embedder.
func NewGeminiEmbedder(client llm.Client) *GeminiEmbedder {
	return &GeminiEmbedder{client: client}
}

// Embed generates an embedding via the remote model.
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.client.EmbedText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("remote embedding failed: %w", err)
	}
	return vec, nil
}

// Dimension returns the embedding dimension.
func (e *GeminiEmbedder) Dimension() int {
	return geminiEmbeddingDimension
}

// defaultHashingDimension keeps hashed vectors small; collisions average
// out over realistic resume/job text lengths.
const defaultHashingDimension = 256

var tokenPattern = regexp.MustCompile(`\b\w+\b`)

// HashingEmbedder is the always-available in-process embedder: each token
// is hashed into a bucket with an alternating sign and the resulting
// bag-of-words vector is L2-normalized. No model download, no network,
// fully deterministic.
type HashingEmbedder struct {
	dimension int
}

// NewHashingEmbedder creates a hashing embedder with the given dimension.
// A non-positive dimension selects the default.
func NewHashingEmbedder(dimension int) *HashingEmbedder {
	if dimension <= 0 {
		dimension = defaultHashingDimension
	}
	return &HashingEmbedder{dimension: dimension}
}

// Embed hashes the tokenized text into a normalized vector.
func (e *HashingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dimension)

	for _, token := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		h := fnv.New64a()
		_, _ = h.Write([]byte(token))
		sum := h.Sum64()

		bucket := int(sum % uint64(e.dimension))
		// Use one hash bit as the sign so common tokens do not all pile
		// into the positive orthant.
		if sum&(1<<63) != 0 {
			vec[bucket]--
		} else {
			vec[bucket]++
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}

	return vec, nil
}

// Dimension returns the embedding dimension.
func (e *HashingEmbedder) Dimension() int {
	return e.dimension
}

// Cosine computes the cosine similarity of two vectors, clamped to [0, 1].
// Mismatched or zero vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	similarity := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if similarity < 0 {
		return 0
	}
	if similarity > 1 {
		return 1
	}
	return similarity
}
