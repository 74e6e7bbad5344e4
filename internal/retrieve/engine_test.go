package retrieve

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/complyco/copilot/internal/model"
	"github.com/complyco/copilot/internal/rulestore"
)

func seededStore() *rulestore.Store {
	store := rulestore.New()
	store.Add("GDPR requires a data controller and a data processor agreement for personal data processing.")
	store.Add("Employment contracts must provide termination notice of at least 30 days.")
	store.Add("Withholding tax and VAT obligations apply to cross-border service payments. Tax reporting is mandatory.")
	store.Add("General commercial terms with no regulatory content.")
	return store
}

func TestEngine_Search_OrderedAndBounded(t *testing.T) {
	engine := NewEngine(seededStore(), nil)

	hits := engine.Search(context.Background(), "tax withholding vat", 2)

	if len(hits) > 2 {
		t.Fatalf("expected at most 2 hits, got %d", len(hits))
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Score > hits[i-1].Score {
			t.Errorf("hits not in descending score order: %v", hits)
		}
	}
	if len(hits) == 0 || !strings.Contains(hits[0].Text, "Withholding tax") {
		t.Errorf("expected the tax rule as top hit, got %v", hits)
	}
}

func TestEngine_Search_ExcludesZeroScores(t *testing.T) {
	engine := NewEngine(seededStore(), nil)

	hits := engine.Search(context.Background(), "quantum entanglement", 10)
	if len(hits) != 0 {
		t.Errorf("expected no hits for an unrelated query, got %v", hits)
	}
}

func TestEngine_Search_ShortTokensIgnored(t *testing.T) {
	engine := NewEngine(seededStore(), nil)

	// "of" and "a" are below the token length floor; only "termination" scores.
	hits := engine.Search(context.Background(), "of a termination", 10)
	if len(hits) != 1 {
		t.Fatalf("expected exactly 1 hit, got %d", len(hits))
	}
	if !strings.Contains(hits[0].Text, "termination notice") {
		t.Errorf("unexpected hit: %q", hits[0].Text)
	}
}

func TestEngine_SearchCategory(t *testing.T) {
	engine := NewEngine(seededStore(), nil)

	hits := engine.SearchCategory(context.Background(), "privacy", 3)
	if len(hits) == 0 {
		t.Fatal("expected privacy hits")
	}
	if !strings.Contains(hits[0].Text, "GDPR") {
		t.Errorf("expected GDPR rule as top privacy hit, got %q", hits[0].Text)
	}

	if hits := engine.SearchCategory(context.Background(), "astrology", 3); hits != nil {
		t.Errorf("expected no hits for an unknown category, got %v", hits)
	}
}

func TestEngine_Search_TieBreakKeepsInsertionOrder(t *testing.T) {
	store := rulestore.New()
	store.Add("first rule about withholding")
	store.Add("second rule about withholding")
	engine := NewEngine(store, nil)

	hits := engine.Search(context.Background(), "withholding", 5)
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if !strings.HasPrefix(hits[0].Text, "first") {
		t.Errorf("tie break should keep insertion order, got %q first", hits[0].Text)
	}
}

func TestEngine_HybridFallsBackOnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	hybrid := NewHybridClient(model.SearchConfig{BaseURL: srv.URL, Timeout: time.Second}, nil)
	engine := NewEngine(seededStore(), hybrid)

	hits := engine.Search(context.Background(), "termination notice", 3)
	if len(hits) == 0 {
		t.Fatal("expected local fallback hits when the sidecar errors")
	}
}

func TestEngine_HybridFallsBackOnMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json at all"))
	}))
	defer srv.Close()

	hybrid := NewHybridClient(model.SearchConfig{BaseURL: srv.URL, Timeout: time.Second}, nil)
	engine := NewEngine(seededStore(), hybrid)

	hits := engine.Search(context.Background(), "gdpr controller", 3)
	if len(hits) == 0 {
		t.Fatal("expected local fallback hits when the sidecar returns garbage")
	}
}

func TestEngine_HybridResultsPreferred(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[{"text":"sidecar rule text","score":4.2}]}`))
	}))
	defer srv.Close()

	hybrid := NewHybridClient(model.SearchConfig{BaseURL: srv.URL, Timeout: time.Second}, nil)
	engine := NewEngine(seededStore(), hybrid)

	hits := engine.Search(context.Background(), "gdpr", 3)
	if len(hits) != 1 || hits[0].Text != "sidecar rule text" {
		t.Fatalf("expected the sidecar result to win, got %v", hits)
	}
}

func TestExtractContext_PhrasePreferred(t *testing.T) {
	text := strings.Repeat("filler content here. ", 30) +
		"The data controller must obtain explicit consent before processing. " +
		strings.Repeat("trailing content. ", 30)

	snippet := ExtractContext(text, "explicit consent")

	if !strings.Contains(snippet, highlightMarker+"explicit consent"+highlightMarker) {
		t.Errorf("expected the phrase to be highlighted, got %q", snippet)
	}
	if len(snippet) > contextBefore+contextAfter+len("explicit consent")+20 {
		t.Errorf("snippet too long: %d chars", len(snippet))
	}
	if !strings.HasPrefix(snippet, "...") || !strings.HasSuffix(snippet, "...") {
		t.Errorf("expected truncation markers on both sides, got %q", snippet)
	}
}

func TestExtractContext_WordFallbackEarliestPosition(t *testing.T) {
	text := "Intro text. The termination clause is here. Later the notice clause appears."

	snippet := ExtractContext(text, "notice termination")

	// Both words match; the earlier "termination" anchors the window.
	if !strings.Contains(snippet, highlightMarker+"termination"+highlightMarker) {
		t.Errorf("expected termination highlighted, got %q", snippet)
	}
	if !strings.Contains(snippet, highlightMarker+"notice"+highlightMarker) {
		t.Errorf("expected notice highlighted, got %q", snippet)
	}
}

func TestExtractContext_NoMatchReturnsBoundedHead(t *testing.T) {
	text := strings.Repeat("abcdefghij ", 100)
	snippet := ExtractContext(text, "zzz")
	if len(snippet) > contextBefore+contextAfter+3 {
		t.Errorf("expected bounded head, got %d chars", len(snippet))
	}
}

func TestExtractContext_NoHighlightInsideWords(t *testing.T) {
	snippet := ExtractContext("The taxonomy of tax law.", "tax")
	if strings.Contains(snippet, highlightMarker+"tax"+highlightMarker+"onomy") {
		t.Errorf("highlighted a partial word: %q", snippet)
	}
	if !strings.Contains(snippet, highlightMarker+"tax"+highlightMarker+" law") {
		t.Errorf("expected whole-word highlight, got %q", snippet)
	}
}
