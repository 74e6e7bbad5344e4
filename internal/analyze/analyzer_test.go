package analyze

import (
	"context"
	"strings"
	"testing"

	"github.com/complyco/copilot/internal/model"
	"github.com/complyco/copilot/internal/region"
	"github.com/complyco/copilot/internal/retrieve"
	"github.com/complyco/copilot/internal/rulestore"
)

func euFilter() *region.Filter {
	store := rulestore.New()
	store.Add("GDPR requires the data controller and processor to document personal data processing in the EU.")
	store.Add("EU employment law: termination requires a notice period meeting the statutory minimum.")
	store.Add("EU tax directive: VAT reporting obligations apply to European suppliers.")
	return region.NewFilter(retrieve.NewEngine(store, nil))
}

func field(name, value string) model.ContractField {
	return model.ContractField{
		Name:  name,
		Value: value,
		Evidence: model.Evidence{
			File: "contract.pdf",
			Page: 1,
		},
	}
}

func TestScoreIndicators_DecisionTable(t *testing.T) {
	cfg := RuleConfig{
		RiskIndicators:     []string{"unlimited"},
		PositiveIndicators: []string{"explicit consent"},
	}

	cases := []struct {
		name    string
		value   string
		flagged bool
		risk    model.RiskLevel
	}{
		{"risk only", "unlimited use of data", true, model.RiskHigh},
		{"mixed signals", "unlimited use with explicit consent", true, model.RiskMedium},
		{"compliant", "explicit consent only", false, model.RiskLow},
		{"neither present", "standard terms apply", true, model.RiskMedium},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			outcome := scoreIndicators(strings.ToLower("data_processing "+tc.value), cfg)
			if outcome.Flagged != tc.flagged {
				t.Errorf("flagged = %v, want %v", outcome.Flagged, tc.flagged)
			}
			if outcome.Risk != tc.risk {
				t.Errorf("risk = %s, want %s", outcome.Risk, tc.risk)
			}
		})
	}
}

func TestScoreIndicators_NoPositiveListConfigured(t *testing.T) {
	cfg := RuleConfig{RiskIndicators: []string{"unlimited"}}

	// With an empty positive list, absence of positives alone is not a
	// finding.
	outcome := scoreIndicators("clause standard terms", cfg)
	if outcome.Flagged {
		t.Errorf("expected no flag when the positive list is empty and no risk matched, got %+v", outcome)
	}
}

func TestScoreIndicators_RationaleNamesIndicators(t *testing.T) {
	cfg := RuleConfig{
		RiskIndicators:     []string{"no consent", "unlimited use"},
		PositiveIndicators: []string{"privacy notice"},
	}

	outcome := scoreIndicators("data clause with no consent and unlimited use of records", cfg)
	if !strings.Contains(outcome.Explanation, "no consent") || !strings.Contains(outcome.Explanation, "unlimited use") {
		t.Errorf("rationale must name the triggering indicators, got %q", outcome.Explanation)
	}
}

func TestCheck_EmitsFlagsForEURegion(t *testing.T) {
	analyzer := NewAnalyzer(euFilter())

	fields := []model.ContractField{
		field("data_processing", "unlimited use of personal data with no consent"),
	}

	flags := analyzer.Check(context.Background(), fields, "EU")
	if len(flags) == 0 {
		t.Fatal("expected at least one flag")
	}

	var found bool
	for _, f := range flags {
		if f.ID == "privacy-data_processing-gdpr_requirements" {
			found = true
			if f.RiskLevel != model.RiskHigh {
				t.Errorf("expected HIGH risk, got %s", f.RiskLevel)
			}
			if f.Region != "EU" {
				t.Errorf("expected region EU, got %s", f.Region)
			}
			if f.ContractEvidence.File != "contract.pdf" {
				t.Errorf("contract evidence not carried through: %+v", f.ContractEvidence)
			}
			if f.RuleEvidence.Section != "gdpr_requirements" {
				t.Errorf("rule evidence should name the rule, got %+v", f.RuleEvidence)
			}
		}
	}
	if !found {
		t.Errorf("expected a gdpr_requirements flag, got ids: %v", flagIDs(flags))
	}
}

func TestCheck_DedupInvariant(t *testing.T) {
	analyzer := NewAnalyzer(euFilter())

	// The same field appearing twice (duplicate extraction) must not double
	// any (field, category, rule) combination.
	f := field("data_processing", "unlimited use of personal data")
	flags := analyzer.Check(context.Background(), []model.ContractField{f, f}, "EU")

	seen := make(map[string]int)
	for _, fl := range flags {
		seen[fl.ID]++
	}
	for id, n := range seen {
		if n > 1 {
			t.Errorf("flag id %q emitted %d times in one pass", id, n)
		}
	}
}

func TestCheck_DuplicateRuleTextsDoNotDuplicateFlags(t *testing.T) {
	store := rulestore.New()
	text := "GDPR requires controllers to document personal data processing in the EU."
	store.Add(text)
	store.Add(text) // the store never dedupes, the analyzer must
	analyzer := NewAnalyzer(region.NewFilter(retrieve.NewEngine(store, nil)))

	fields := []model.ContractField{field("data_processing", "unlimited use of personal data")}

	flags := analyzer.Check(context.Background(), fields, "EU")
	seen := make(map[string]bool)
	for _, fl := range flags {
		if seen[fl.ID] {
			t.Errorf("duplicate rule text instance duplicated flag %q", fl.ID)
		}
		seen[fl.ID] = true
	}
}

func TestCheck_SkipsMalformedFields(t *testing.T) {
	analyzer := NewAnalyzer(euFilter())

	fields := []model.ContractField{
		{Name: "", Value: "orphan value"},
		{Name: "empty_value", Value: "   "},
		field("data_processing", "unlimited use of personal data"),
	}

	flags := analyzer.Check(context.Background(), fields, "EU")
	if len(flags) == 0 {
		t.Fatal("well-formed field should still produce flags")
	}
	for _, f := range flags {
		if strings.Contains(f.ID, "empty_value") || strings.HasSuffix(f.ID, "--") {
			t.Errorf("malformed field leaked into flags: %q", f.ID)
		}
	}
}

func TestCheck_NoFlagsWithoutRegionalRuleText(t *testing.T) {
	// Corpus has only US texts; an EU check finds nothing retrievable, so
	// every category is skipped.
	store := rulestore.New()
	store.Add("CCPA data collection disclosures for California consumers in the US.")
	analyzer := NewAnalyzer(region.NewFilter(retrieve.NewEngine(store, nil)))

	flags := analyzer.Check(context.Background(), []model.ContractField{
		field("data_processing", "unlimited use of personal data"),
	}, "EU")

	if len(flags) != 0 {
		t.Errorf("expected no flags without EU rule text, got %v", flagIDs(flags))
	}
}

func TestCheck_RegionScopedRules(t *testing.T) {
	analyzer := NewAnalyzer(euFilter())

	fields := []model.ContractField{field("data_processing", "unlimited sharing with no opt-out")}

	flags := analyzer.Check(context.Background(), fields, "EU")
	for _, f := range flags {
		if strings.Contains(f.ID, "ccpa_requirements") {
			t.Errorf("US-only rule evaluated for EU region: %q", f.ID)
		}
	}
}

func flagIDs(flags []model.ComplianceFlag) []string {
	ids := make([]string, len(flags))
	for i, f := range flags {
		ids[i] = f.ID
	}
	return ids
}
