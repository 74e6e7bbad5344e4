// Package analyze evaluates extracted contract fields against the region
// scoped rule library and emits deduplicated compliance flags.
package analyze

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/complyco/copilot/internal/model"
	"github.com/complyco/copilot/internal/region"
)

// ruleLibraryFile labels rule-side evidence on emitted flags
const ruleLibraryFile = "rule_library"

// Analyzer runs the per-field compliance check
type Analyzer struct {
	rules  RuleSet
	filter *region.Filter
}

// NewAnalyzer creates an analyzer with the built-in rule library
func NewAnalyzer(filter *region.Filter) *Analyzer {
	return &Analyzer{rules: builtinRules(), filter: filter}
}

// NewAnalyzerWithRules creates an analyzer with a custom rule library
// (typically LoadRuleSet output)
func NewAnalyzerWithRules(filter *region.Filter, rules RuleSet) *Analyzer {
	return &Analyzer{rules: rules, filter: filter}
}

// Check evaluates every field against each region-relevant rule exactly once
// and returns the flagged outcomes. The invariant: one (field, category,
// rule) combination never yields two flags within a single call.
//
// A malformed field never aborts the batch; it is skipped and the remaining
// fields complete.
func (a *Analyzer) Check(ctx context.Context, fields []model.ContractField, reg string) []model.ComplianceFlag {
	var flags []model.ComplianceFlag
	processed := make(map[string]struct{})

	for _, category := range categories {
		rules, ok := a.rules[category]
		if !ok {
			continue
		}

		regionRules := filterRulesByRegion(rules, reg)
		if len(regionRules) == 0 {
			continue
		}

		// Retrieval gate: skip the category entirely when no rule text for
		// this region can back a finding.
		ruleHits := a.filter.RulesFor(ctx, category, reg, 3)
		if len(ruleHits) == 0 {
			continue
		}

		ruleNames := sortedNames(regionRules)
		for _, field := range fields {
			if field.Name == "" || strings.TrimSpace(field.Value) == "" {
				continue // malformed extraction artifact
			}
			fieldText := strings.ToLower(field.Name + " " + field.Value)

			for _, ruleName := range ruleNames {
				key := field.Name + "-" + category + "-" + ruleName
				if _, seen := processed[key]; seen {
					continue
				}
				processed[key] = struct{}{}

				outcome := scoreIndicators(fieldText, regionRules[ruleName])
				if !outcome.Flagged {
					continue
				}

				flags = append(flags, model.ComplianceFlag{
					ID:               fmt.Sprintf("%s-%s-%s", category, field.Name, ruleName),
					Category:         category,
					Region:           reg,
					RiskLevel:        outcome.Risk,
					Rationale:        outcome.Explanation,
					ContractEvidence: field.Evidence,
					RuleEvidence:     model.Evidence{File: ruleLibraryFile, Section: ruleName},
				})
			}
		}
	}

	return flags
}

// indicatorOutcome is the result of scoring one field against one rule
type indicatorOutcome struct {
	Flagged     bool
	Risk        model.RiskLevel
	Explanation string
}

// scoreIndicators applies the indicator decision table:
//
//	risk found, no positive      -> HIGH, flagged
//	risk found, positive found   -> MEDIUM, flagged (mixed signals)
//	none found, positives absent -> MEDIUM, flagged (missing positives)
//	no risk, positive found      -> compliant, not flagged
func scoreIndicators(fieldText string, cfg RuleConfig) indicatorOutcome {
	riskFound := matchIndicators(fieldText, cfg.RiskIndicators)
	positiveFound := matchIndicators(fieldText, cfg.PositiveIndicators)

	switch {
	case len(riskFound) > 0 && len(positiveFound) == 0:
		return indicatorOutcome{
			Flagged: true,
			Risk:    model.RiskHigh,
			Explanation: fmt.Sprintf("Risk indicators found: %s. Missing positive indicators.",
				strings.Join(riskFound, ", ")),
		}
	case len(riskFound) > 0 && len(positiveFound) > 0:
		return indicatorOutcome{
			Flagged: true,
			Risk:    model.RiskMedium,
			Explanation: fmt.Sprintf("Mixed signals: risk indicators (%s) but also positive indicators (%s)",
				strings.Join(riskFound, ", "), strings.Join(positiveFound, ", ")),
		}
	case len(positiveFound) == 0 && len(cfg.PositiveIndicators) > 0:
		return indicatorOutcome{
			Flagged: true,
			Risk:    model.RiskMedium,
			Explanation: fmt.Sprintf("Missing positive compliance indicators: %s",
				strings.Join(cfg.PositiveIndicators, ", ")),
		}
	default:
		return indicatorOutcome{
			Flagged: false,
			Risk:    model.RiskLow,
			Explanation: fmt.Sprintf("Good compliance indicators found: %s",
				strings.Join(positiveFound, ", ")),
		}
	}
}

// matchIndicators returns the indicators textually present in the field text
// (case-insensitive substring, the indicators being lowercase phrases)
func matchIndicators(fieldText string, indicators []string) []string {
	var found []string
	for _, ind := range indicators {
		if ind == "" {
			continue
		}
		if strings.Contains(fieldText, strings.ToLower(ind)) {
			found = append(found, ind)
		}
	}
	return found
}

// filterRulesByRegion keeps rules whose Regions list contains the region.
// Rules without a Regions restriction apply everywhere.
func filterRulesByRegion(rules map[string]RuleConfig, reg string) map[string]RuleConfig {
	regUpper := strings.ToUpper(reg)
	out := make(map[string]RuleConfig)
	for name, cfg := range rules {
		if len(cfg.Regions) == 0 {
			out[name] = cfg
			continue
		}
		for _, r := range cfg.Regions {
			if strings.ToUpper(r) == regUpper {
				out[name] = cfg
				break
			}
		}
	}
	return out
}

func sortedNames(rules map[string]RuleConfig) []string {
	names := make([]string, 0, len(rules))
	for name := range rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
