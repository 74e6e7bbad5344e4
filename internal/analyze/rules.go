package analyze

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RuleConfig is a hand-authored compliance rule: keyword vocabulary plus the
// indicator lists the semantic scorer matches against field text. Loaded at
// process start and immutable afterwards.
type RuleConfig struct {
	Description        string   `yaml:"description"`
	Keywords           []string `yaml:"keywords"`
	RiskIndicators     []string `yaml:"risk_indicators"`
	PositiveIndicators []string `yaml:"positive_indicators"`
	Regions            []string `yaml:"regions"`
}

// RuleSet maps category -> rule name -> config
type RuleSet map[string]map[string]RuleConfig

// categories is the fixed evaluation order
var categories = []string{"privacy", "labor", "tax"}

// builtinRules is the default rule library. The indicator lists are the core
// business logic: a field flags HIGH when it hits a risk indicator with no
// positive indicator, MEDIUM on mixed signals or missing positives.
func builtinRules() RuleSet {
	return RuleSet{
		"privacy": {
			"gdpr_requirements": {
				Description:        "GDPR compliance requirements (EU only)",
				Keywords:           []string{"controller", "processor", "consent", "data subject", "personal data", "gdpr"},
				RiskIndicators:     []string{"unlimited", "unrestricted", "no consent", "no purpose limitation"},
				PositiveIndicators: []string{"explicit consent", "purpose limitation", "data minimization"},
				Regions:            []string{"EU", "UK"},
			},
			"ccpa_requirements": {
				Description:        "CCPA compliance requirements (US only)",
				Keywords:           []string{"consumer rights", "opt-out", "data collection", "third party", "ccpa"},
				RiskIndicators:     []string{"no opt-out", "unlimited sharing", "no disclosure"},
				PositiveIndicators: []string{"consumer rights", "opt-out mechanism", "data collection notice"},
				Regions:            []string{"US"},
			},
			"indian_privacy_requirements": {
				Description:        "Indian privacy law requirements (India only)",
				Keywords:           []string{"personal data", "data protection", "consent", "indian privacy"},
				RiskIndicators:     []string{"no consent", "unlimited use", "no data protection"},
				PositiveIndicators: []string{"explicit consent", "data protection measures", "privacy notice"},
				Regions:            []string{"IN"},
			},
		},
		"labor": {
			"eu_labor_requirements": {
				Description:        "EU labor law requirements (EU only)",
				Keywords:           []string{"notice period", "termination", "employment", "working hours", "eu labor"},
				RiskIndicators:     []string{"no notice", "insufficient notice", "immediate termination"},
				PositiveIndicators: []string{"adequate notice", "statutory minimum", "reasonable period"},
				Regions:            []string{"EU", "UK"},
			},
			"us_labor_requirements": {
				Description:        "US labor law requirements (US only)",
				Keywords:           []string{"notice period", "termination", "employment", "working hours", "us labor"},
				RiskIndicators:     []string{"no notice", "insufficient notice", "immediate termination"},
				PositiveIndicators: []string{"adequate notice", "statutory minimum", "reasonable period"},
				Regions:            []string{"US"},
			},
			"indian_labor_requirements": {
				Description:        "Indian labor law requirements (India only)",
				Keywords:           []string{"notice period", "termination", "employment", "working hours", "indian labor"},
				RiskIndicators:     []string{"no notice", "insufficient notice", "immediate termination"},
				PositiveIndicators: []string{"adequate notice", "statutory minimum", "reasonable period"},
				Regions:            []string{"IN"},
			},
		},
		"tax": {
			"eu_tax_requirements": {
				Description:        "EU tax requirements (VAT) (EU only)",
				Keywords:           []string{"vat", "tax", "reporting", "compliance", "eu tax"},
				RiskIndicators:     []string{"no vat", "incorrect rates", "no reporting"},
				PositiveIndicators: []string{"proper vat", "correct rates", "timely reporting"},
				Regions:            []string{"EU", "UK"},
			},
			"us_tax_requirements": {
				Description:        "US tax withholding requirements (US only)",
				Keywords:           []string{"withholding", "tax", "reporting", "compliance", "us tax"},
				RiskIndicators:     []string{"no withholding", "incorrect rates", "no reporting"},
				PositiveIndicators: []string{"proper withholding", "correct rates", "timely reporting"},
				Regions:            []string{"US"},
			},
			"indian_tax_requirements": {
				Description:        "Indian tax requirements (GST) (India only)",
				Keywords:           []string{"gst", "tax", "reporting", "compliance", "indian tax"},
				RiskIndicators:     []string{"no gst", "incorrect rates", "no reporting"},
				PositiveIndicators: []string{"proper gst", "correct rates", "timely reporting"},
				Regions:            []string{"IN"},
			},
		},
	}
}

// LoadRuleSet reads a YAML rule library and merges it over the built-in
// rules. Categories and rule names in the file replace or extend the
// defaults; nothing is removed.
func LoadRuleSet(path string) (RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule set: %w", err)
	}

	var overrides RuleSet
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse rule set: %w", err)
	}

	merged := builtinRules()
	for category, rules := range overrides {
		if merged[category] == nil {
			merged[category] = make(map[string]RuleConfig)
		}
		for name, cfg := range rules {
			merged[category][name] = cfg
		}
	}
	return merged, nil
}
