// Package ingest keeps the rule corpus topped up in the background: it
// tails the local rule directory for new documents and pulls configured
// remote sources, politely.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/complyco/copilot/internal/model"
	"github.com/complyco/copilot/internal/rulestore"
)

// Watcher periodically scans the rule directory and remote sources,
// appending anything new to the store. Start is idempotent: a running
// watcher is never doubled.
type Watcher struct {
	cfg     model.IngestConfig
	dir     string
	store   *rulestore.Store
	fetcher *Fetcher

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}

	// Local files are keyed by path+modtime; remote sources by URL once
	// fetched successfully. The store is append-only, so re-adding is the
	// one thing the watcher must guard against.
	seenFiles   map[string]time.Time
	seenSources map[string]bool
}

// NewWatcher creates a watcher over the given rule directory
func NewWatcher(cfg model.IngestConfig, dir string, store *rulestore.Store) *Watcher {
	return &Watcher{
		cfg:         cfg,
		dir:         dir,
		store:       store,
		fetcher:     NewFetcher(cfg),
		seenFiles:   make(map[string]time.Time),
		seenSources: make(map[string]bool),
	}
}

// Start launches the background loop. Calling Start on a running watcher
// is a no-op.
func (w *Watcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return
	}
	w.started = true

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})

	go w.loop(ctx)
}

// Stop halts the loop and waits for it to exit. Safe to call on a watcher
// that was never started.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	w.started = false
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	cancel()
	<-done
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)

	interval := w.cfg.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	// One pass up front so a fresh start does not wait a full interval
	w.scan(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.scan(ctx)
		}
	}
}

// scan runs one ingestion pass: local directory first, then remote sources
func (w *Watcher) scan(ctx context.Context) {
	w.scanDir()
	w.fetchRemote(ctx)
}

func (w *Watcher) scanDir() {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to scan rules dir: %v\n", err)
		}
		return
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".md", ".txt", ".html", ".htm":
		default:
			continue
		}

		path := filepath.Join(w.dir, e.Name())
		info, err := e.Info()
		if err != nil {
			continue
		}

		w.mu.Lock()
		seen, ok := w.seenFiles[path]
		w.mu.Unlock()
		if ok && seen.Equal(info.ModTime()) {
			continue
		}

		if err := w.store.AddFromFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to ingest %s: %v\n", path, err)
			continue
		}

		w.mu.Lock()
		w.seenFiles[path] = info.ModTime()
		w.mu.Unlock()
	}
}

func (w *Watcher) fetchRemote(ctx context.Context) {
	for _, src := range w.cfg.RemoteSources {
		if ctx.Err() != nil {
			return
		}

		w.mu.Lock()
		fetched := w.seenSources[src]
		w.mu.Unlock()
		if fetched {
			continue
		}

		content, err := w.fetcher.Fetch(ctx, src)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to fetch rule source %s: %v\n", src, err)
			continue
		}

		w.store.AddContent(content)

		w.mu.Lock()
		w.seenSources[src] = true
		w.mu.Unlock()
	}
}
