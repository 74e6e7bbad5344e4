package rulegen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/complyco/copilot/internal/model"
)

func TestAnthropicProvider_RequiresAPIKey(t *testing.T) {
	if _, err := NewAnthropicProvider(model.LLMConfig{}); err == nil {
		t.Error("expected error without API key")
	}
}

func TestAnthropicProvider_GenerateRules(t *testing.T) {
	var gotVersion, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotVersion = r.Header.Get("anthropic-version")
		gotKey = r.Header.Get("x-api-key")

		resp := map[string]any{
			"content": []map[string]string{
				{"type": "text", "text": `{"rules": [{"id": "eu_custom", "title": "Custom", "risk_level": "HIGH", "category": "privacy"}]}`},
			},
			"model": "claude-3-5-sonnet-20241022",
			"usage": map[string]int{"input_tokens": 100, "output_tokens": 50},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, err := NewAnthropicProvider(model.LLMConfig{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := provider.GenerateRules(context.Background(), Request{Region: "EU", Domain: "contract"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotKey != "test-key" || gotVersion == "" {
		t.Errorf("auth headers not set: key=%q version=%q", gotKey, gotVersion)
	}
	if len(resp.Rules) != 1 || resp.Rules[0].ID != "eu_custom" {
		t.Errorf("rules not parsed: %+v", resp.Rules)
	}
	if resp.TokensUsed != 150 {
		t.Errorf("expected 150 tokens, got %d", resp.TokensUsed)
	}
}

func TestAnthropicProvider_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"type": "error",
			"error": map[string]string{
				"type":    "authentication_error",
				"message": "invalid api key",
			},
		})
	}))
	defer server.Close()

	provider, err := NewAnthropicProvider(model.LLMConfig{APIKey: "bad-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := provider.GenerateRules(context.Background(), Request{Region: "EU"}); err == nil {
		t.Error("expected error on 401 response")
	}
}
