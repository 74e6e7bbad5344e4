package rulegen

import (
	"fmt"
	"strings"

	"github.com/complyco/copilot/internal/model"
)

// NewProvider creates a rule-generation provider based on configuration.
// An empty provider name disables generation; callers then rely on the
// static fallback rules.
func NewProvider(config model.LLMConfig) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown rule provider: %s (supported: openai, anthropic)", config.Provider)
	}
}
