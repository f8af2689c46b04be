package similarity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const remoteRequestTimeout = 30 * time.Second

// remoteStore talks to a managed vector service over its JSON HTTP API.
type remoteStore struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func newRemoteStore(ctx context.Context, baseURL, apiKey string, client *http.Client) (*remoteStore, error) {
	if client == nil {
		client = &http.Client{Timeout: remoteRequestTimeout}
	}
	s := &remoteStore{baseURL: baseURL, apiKey: apiKey, http: client}

	// Reachability check: the backend is only selected when the service
	// answers, otherwise initialization cascades to the next tier.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("invalid vector service URL %s: %w", baseURL, err)
	}
	s.authorize(req)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vector service unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vector service health check: status %d", resp.StatusCode)
	}

	return s, nil
}

func (s *remoteStore) kind() BackendKind { return BackendRemote }

func (s *remoteStore) authorize(req *http.Request) {
	if s.apiKey != "" {
		req.Header.Set("Api-Key", s.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")
}

func (s *remoteStore) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	s.authorize(req)

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("vector service %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return &statusError{path: path, code: resp.StatusCode, body: string(b)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("vector service %s: decode response: %w", path, err)
		}
	}
	return nil
}

func (s *remoteStore) upsert(ctx context.Context, id string, vector []float32, metadata map[string]string) error {
	body := map[string]any{
		"id":     id,
		"values": vector,
	}
	if len(metadata) > 0 {
		body["metadata"] = metadata
	}
	return s.post(ctx, "/vectors/upsert", body, nil)
}

// remoteQueryResponse is the service's nearest-neighbor response shape.
type remoteQueryResponse struct {
	Matches []struct {
		ID       string            `json:"id"`
		Score    float64           `json:"score"`
		Metadata map[string]string `json:"metadata,omitempty"`
	} `json:"matches"`
}

func (s *remoteStore) search(ctx context.Context, vector []float32, k int) ([]Match, error) {
	var resp remoteQueryResponse
	err := s.post(ctx, "/vectors/query", map[string]any{
		"values": vector,
		"top_k":  k,
	}, &resp)
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		matches = append(matches, Match{ID: m.ID, Score: m.Score, Metadata: m.Metadata})
	}
	return matches, nil
}

// statusError carries the HTTP status of a failed service call.
type statusError struct {
	path string
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("vector service %s: status %d: %s", e.path, e.code, e.body)
}

func (s *remoteStore) delete(ctx context.Context, id string) error {
	err := s.post(ctx, "/vectors/delete", map[string]any{"ids": []string{id}}, nil)

	// Some managed services expose no targeted deletion; surface the named
	// limitation instead of a generic transport error.
	var se *statusError
	if errors.As(err, &se) && se.code == http.StatusNotImplemented {
		return ErrDeleteUnsupported
	}
	return err
}

func (s *remoteStore) clear(ctx context.Context) error {
	return s.post(ctx, "/vectors/clear", map[string]any{"delete_all": true}, nil)
}
