package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/complyco/copilot/internal/model"
)

// Fetcher downloads remote rule documents politely: robots.txt is honored,
// requests are rate-limited per host, and bodies are size-capped.
type Fetcher struct {
	httpClient *http.Client
	robots     *robotsChecker
	limiter    *hostLimiter
	userAgent  string
	maxBody    int64
}

// NewFetcher creates a fetcher from the ingestion config
func NewFetcher(cfg model.IngestConfig) *Fetcher {
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 2_000_000
	}
	return &Fetcher{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		robots:     newRobotsChecker(cfg.UserAgent, 10*time.Second),
		limiter:    newHostLimiter(cfg.RequestsPerSecond, cfg.Burst),
		userAgent:  cfg.UserAgent,
		maxBody:    maxBody,
	}
}

// Fetch downloads one rule source. A robots.txt disallow is an error so the
// caller can log which source was skipped.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	allowed, crawlDelay, err := f.robots.canFetch(ctx, rawURL)
	if err != nil {
		return "", fmt.Errorf("robots check: %w", err)
	}
	if !allowed {
		return "", fmt.Errorf("disallowed by robots.txt: %s", rawURL)
	}

	if err := f.limiter.wait(ctx, rawURL, crawlDelay); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch rule source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch rule source: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody))
	if err != nil {
		return "", fmt.Errorf("read rule source: %w", err)
	}
	return string(data), nil
}
