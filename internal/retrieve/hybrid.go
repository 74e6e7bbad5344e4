package retrieve

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/complyco/copilot/internal/cache"
	"github.com/complyco/copilot/internal/model"
)

// HybridClient talks to the optional hybrid search sidecar. Every failure
// mode (timeout, refused connection, malformed body) surfaces as an error to
// the engine, which silently falls back to local scoring.
type HybridClient struct {
	baseURL    string
	httpClient *http.Client
	cache      cache.Cache // nil disables response caching
	cacheTTL   time.Duration
}

// NewHybridClient creates a client for the sidecar at cfg.BaseURL.
// Returns nil when no sidecar is configured.
func NewHybridClient(cfg model.SearchConfig, responseCache cache.Cache) *HybridClient {
	if cfg.BaseURL == "" {
		return nil
	}
	timeout := cfg.Timeout
	if timeout <= 0 || timeout > 2*time.Second {
		timeout = 2 * time.Second
	}
	return &HybridClient{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		cache:      responseCache,
		cacheTTL:   cfg.CacheTTL,
	}
}

type retrieveRequest struct {
	Query string `json:"query"`
	K     int    `json:"k"`
}

type retrieveResponse struct {
	Results []struct {
		Text     string         `json:"text"`
		Score    float64        `json:"score"`
		Metadata map[string]any `json:"metadata,omitempty"`
	} `json:"results"`
}

// Retrieve asks the sidecar for the topK texts matching query
func (c *HybridClient) Retrieve(ctx context.Context, query string, topK int) ([]Hit, error) {
	cacheKey := cache.QueryKey(fmt.Sprintf("retrieve:%s:%d", query, topK))
	if c.cache != nil {
		if data, ok := c.cache.Get(cacheKey); ok {
			var hits []Hit
			if err := json.Unmarshal(data, &hits); err == nil {
				return hits, nil
			}
		}
	}

	body, err := json.Marshal(retrieveRequest{Query: query, K: topK})
	if err != nil {
		return nil, fmt.Errorf("marshal retrieve request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/retrieve", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create retrieve request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hybrid search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hybrid search: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read hybrid response: %w", err)
	}

	var parsed retrieveResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("decode hybrid response: %w", err)
	}

	hits := make([]Hit, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if r.Text == "" || r.Score <= 0 {
			continue
		}
		hits = append(hits, Hit{Text: r.Text, Score: r.Score})
	}
	if len(hits) > topK {
		hits = hits[:topK]
	}

	if c.cache != nil && len(hits) > 0 {
		if encoded, err := json.Marshal(hits); err == nil {
			_ = c.cache.Set(cacheKey, encoded, c.cacheTTL)
		}
	}
	return hits, nil
}
