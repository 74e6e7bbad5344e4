// Package rulestore holds the in-memory corpus of regulatory rule text.
// The store is append-only for the lifetime of the process: rule texts are
// never mutated or deleted once added, which keeps concurrent readers cheap.
package rulestore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// Store is an append-only collection of rule texts. It tolerates concurrent
// appends from upload handlers while query paths iterate a snapshot.
type Store struct {
	mu    sync.RWMutex
	rules []string
}

// New creates an empty store
func New() *Store {
	return &Store{}
}

// Add appends a rule text to the store. Empty texts are ignored.
func (s *Store) Add(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	s.mu.Lock()
	s.rules = append(s.rules, text)
	s.mu.Unlock()
}

// AddFromFile reads a file and appends its textual content. Markup files are
// reduced to visible text; content that still looks binary after that is
// dropped without error, since uploads can be arbitrary documents.
func (s *Store) AddFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read rule file: %w", err)
	}
	s.AddContent(string(data))
	return nil
}

// AddContent appends raw content of unknown shape: markup is reduced to
// visible text, binary-looking content is dropped. Used for uploads and
// remote fetches where the payload type is not known in advance.
func (s *Store) AddContent(content string) {
	text := content
	if looksLikeMarkup(text) {
		text = extractVisibleText(text)
	}
	if !utf8.ValidString(text) || looksBinary(text) {
		// Last attempt: the document may embed markup despite a binary
		// wrapper (exported word processors do this).
		if extracted := extractVisibleText(content); utf8.ValidString(extracted) && !looksBinary(extracted) {
			s.Add(extracted)
		}
		return
	}

	s.Add(text)
}

// LoadDir scans a seed directory and appends every readable .md/.txt/.html
// file, in name order. Missing directories are not an error: a fresh
// deployment starts with an empty corpus.
func (s *Store) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read rules dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".md", ".txt", ".html", ".htm":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	loaded := 0
	for _, name := range names {
		if err := s.AddFromFile(filepath.Join(dir, name)); err == nil {
			loaded++
		}
	}
	return loaded, nil
}

// All returns a snapshot of every stored rule text, in insertion order.
func (s *Store) All() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.rules))
	copy(out, s.rules)
	return out
}

// Len returns the number of stored rule texts
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rules)
}

// looksLikeMarkup is a cheap sniff for HTML/XML documents
func looksLikeMarkup(text string) bool {
	trimmed := strings.TrimSpace(text)
	return strings.HasPrefix(trimmed, "<") && strings.Contains(trimmed, ">")
}

// looksBinary reports whether the text contains enough control bytes to be
// treated as a non-text document
func looksBinary(text string) bool {
	if text == "" {
		return true
	}
	control := 0
	for _, r := range text {
		if r == 0 || (r < 0x20 && r != '\n' && r != '\r' && r != '\t') {
			control++
		}
	}
	return control*100 > len(text) // >1% control characters
}

// extractVisibleText parses markup and returns the concatenated text nodes,
// skipping script/style subtrees
func extractVisibleText(content string) string {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return ""
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.TrimSpace(buf.String())
}
