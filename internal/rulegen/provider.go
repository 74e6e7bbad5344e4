// Package rulegen generates region- and domain-specific compliance rules
// with an LLM provider, falling back to a static built-in set when no
// provider is configured or the call fails.
package rulegen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/complyco/copilot/internal/model"
)

// Provider defines the interface for rule-generation backends
type Provider interface {
	// Name returns the provider name
	Name() string

	// GenerateRules produces candidate compliance rules for a region/domain
	GenerateRules(ctx context.Context, req Request) (*Response, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Request contains the input for rule generation
type Request struct {
	// Region is the jurisdiction the rules should target (EU, US, IN, UK)
	Region string

	// Domain describes the document type (e.g. "supply chain contract")
	Domain string

	// FieldNames gives the provider context on what the document contains
	FieldNames []string

	// Model overrides the configured model for this request
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// Response contains the generated rule set
type Response struct {
	Rules      []model.RuleDescriptor
	Model      string
	TokensUsed int
}

// BuildPrompt constructs the rule-generation prompt. The response format is
// pinned to JSON so parseRules can read it back.
func BuildPrompt(req Request) string {
	fieldContext := "(none extracted)"
	if len(req.FieldNames) > 0 {
		names := req.FieldNames
		if len(names) > 10 {
			names = names[:10]
		}
		fieldContext = strings.Join(names, ", ")
	}

	return fmt.Sprintf(`You are a comprehensive compliance expert. Generate a COMPREHENSIVE list of compliance rules for:
- Region: %s
- Domain: %s
- Document Fields: %s

Generate 15-25 specific compliance rules that would apply to this type of document in this region.
Cover ALL major compliance categories: privacy, labor, tax, contract, data protection, employment, termination, notice periods, jurisdiction, force majeure, etc.

Each rule should include:
1. Rule ID (short identifier)
2. Rule Title (descriptive name)
3. Rule Description (what the rule requires)
4. Compliance Check (how to verify compliance)
5. Risk Level (HIGH/MEDIUM/LOW)
6. Category (privacy/labor/tax/contract/etc.)

Format as JSON with this structure:
{
  "rules": [
    {
      "id": "rule_id",
      "title": "Rule Title",
      "description": "Detailed rule description",
      "compliance_check": "How to check compliance",
      "risk_level": "HIGH/MEDIUM/LOW",
      "category": "category_name"
    }
  ]
}

Respond with the JSON object only. Make sure to cover both general compliance and %s-specific requirements for %s documents.`,
		req.Region, req.Domain, fieldContext, req.Region, req.Domain)
}

// parseRules extracts the rule list from a model response. Models sometimes
// wrap JSON in markdown fences or prose; everything outside the outermost
// object is discarded.
func parseRules(content string) ([]model.RuleDescriptor, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var parsed struct {
		Rules []model.RuleDescriptor `json:"rules"`
	}
	if err := json.Unmarshal([]byte(content[start:end+1]), &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal rules: %w", err)
	}
	if len(parsed.Rules) == 0 {
		return nil, fmt.Errorf("response contained no rules")
	}

	for i := range parsed.Rules {
		parsed.Rules[i].RiskLevel = normalizeRisk(parsed.Rules[i].RiskLevel)
	}
	return parsed.Rules, nil
}

// normalizeRisk coerces free-form model output onto the three known levels
func normalizeRisk(level model.RiskLevel) model.RiskLevel {
	switch model.RiskLevel(strings.ToUpper(string(level))) {
	case model.RiskHigh:
		return model.RiskHigh
	case model.RiskLow:
		return model.RiskLow
	default:
		return model.RiskMedium
	}
}
