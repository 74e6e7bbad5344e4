package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/complyco/copilot/internal/model"
	"github.com/complyco/copilot/internal/rulestore"
)

func testConfig() model.IngestConfig {
	return model.IngestConfig{
		Interval:          10 * time.Millisecond,
		RequestsPerSecond: 100,
		Burst:             10,
		UserAgent:         "copilot-test",
	}
}

func TestWatcher_StartIsIdempotent(t *testing.T) {
	store := rulestore.New()
	w := NewWatcher(testConfig(), t.TempDir(), store)

	w.Start()
	w.Start()
	w.Stop()

	// A second Stop on a stopped watcher must not panic or hang
	w.Stop()
}

func TestWatcher_StopBeforeStartIsSafe(t *testing.T) {
	w := NewWatcher(testConfig(), t.TempDir(), rulestore.New())
	w.Stop()
}

func TestWatcher_ScanPicksUpNewFiles(t *testing.T) {
	dir := t.TempDir()
	store := rulestore.New()
	w := NewWatcher(testConfig(), dir, store)

	if err := os.WriteFile(filepath.Join(dir, "gdpr.md"), []byte("GDPR consent rules"), 0644); err != nil {
		t.Fatal(err)
	}

	w.scanDir()
	if store.Len() != 1 {
		t.Fatalf("expected 1 rule after scan, got %d", store.Len())
	}

	// Unchanged files are not re-ingested
	w.scanDir()
	if store.Len() != 1 {
		t.Errorf("expected unchanged file to be skipped, got %d rules", store.Len())
	}
}

func TestWatcher_IgnoresUnknownExtensions(t *testing.T) {
	dir := t.TempDir()
	store := rulestore.New()
	w := NewWatcher(testConfig(), dir, store)

	os.WriteFile(filepath.Join(dir, "notes.docx"), []byte("binary"), 0644)
	os.WriteFile(filepath.Join(dir, "rules.txt"), []byte("VAT reporting rules"), 0644)

	w.scanDir()
	if store.Len() != 1 {
		t.Errorf("expected only .txt ingested, got %d rules", store.Len())
	}
}

func TestWatcher_BackgroundLoopIngests(t *testing.T) {
	dir := t.TempDir()
	store := rulestore.New()
	w := NewWatcher(testConfig(), dir, store)

	if err := os.WriteFile(filepath.Join(dir, "ccpa.txt"), []byte("CCPA opt-out rules"), 0644); err != nil {
		t.Fatal(err)
	}

	w.Start()
	defer w.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for store.Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if store.Len() != 1 {
		t.Errorf("expected background loop to ingest the file, got %d rules", store.Len())
	}
}

func TestWatcher_RemoteSourceFetchedOnce(t *testing.T) {
	fetches := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		fetches++
		w.Write([]byte("Remote GDPR guidance text"))
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.RemoteSources = []string{server.URL + "/rules"}

	store := rulestore.New()
	w := NewWatcher(cfg, t.TempDir(), store)

	w.fetchRemote(context.Background())
	w.fetchRemote(context.Background())

	if fetches != 1 {
		t.Errorf("expected remote source fetched once, got %d fetches", fetches)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 remote rule, got %d", store.Len())
	}
}

func TestFetcher_HonorsRobotsDisallow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.Write([]byte("User-agent: *\nDisallow: /private/"))
			return
		}
		w.Write([]byte("public rule text"))
	}))
	defer server.Close()

	f := NewFetcher(testConfig())

	if _, err := f.Fetch(context.Background(), server.URL+"/private/rules"); err == nil {
		t.Error("expected disallowed path to error")
	}

	content, err := f.Fetch(context.Background(), server.URL+"/public/rules")
	if err != nil {
		t.Fatalf("allowed path failed: %v", err)
	}
	if !strings.Contains(content, "public rule text") {
		t.Errorf("unexpected content: %q", content)
	}
}

func TestFetcher_CapsBodySize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(strings.Repeat("x", 5000)))
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.MaxBodyBytes = 1000
	f := NewFetcher(cfg)

	content, err := f.Fetch(context.Background(), server.URL+"/rules")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(content) != 1000 {
		t.Errorf("expected body capped at 1000 bytes, got %d", len(content))
	}
}
