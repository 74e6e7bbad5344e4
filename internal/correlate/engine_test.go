package correlate

import (
	"strings"
	"testing"

	"github.com/complyco/copilot/internal/model"
)

func cf(name, value string) model.ContractField {
	return model.ContractField{Name: name, Value: value, Evidence: model.Evidence{File: "contract.pdf"}}
}

func byType(correlations []model.RiskCorrelation, typ string) []model.RiskCorrelation {
	var out []model.RiskCorrelation
	for _, c := range correlations {
		if c.Type == typ {
			out = append(out, c)
		}
	}
	return out
}

func TestAnalyze_TemporalConflict(t *testing.T) {
	engine := NewEngine()

	fields := []model.ContractField{
		cf("termination_notice", "30 days"),
		cf("notice_period", "immediate"),
	}

	correlations := engine.Analyze(fields, "EU")
	temporal := byType(correlations, "temporal_conflict")
	if len(temporal) != 1 {
		t.Fatalf("expected exactly one temporal_conflict, got %d", len(temporal))
	}

	c := temporal[0]
	if c.RiskLevel != model.RiskMedium {
		t.Errorf("expected MEDIUM, got %s", c.RiskLevel)
	}
	if c.Confidence != temporalConfidence {
		t.Errorf("expected confidence %v, got %v", temporalConfidence, c.Confidence)
	}
	if len(c.Fields) != 2 {
		t.Errorf("expected both notice fields listed, got %v", c.Fields)
	}
}

func TestAnalyze_TemporalRequiresTwoNoticeFields(t *testing.T) {
	engine := NewEngine()

	fields := []model.ContractField{
		cf("termination_notice", "30 days"),
		cf("renewal_terms", "auto renewal each year"),
	}

	if temporal := byType(engine.Analyze(fields, "EU"), "temporal_conflict"); len(temporal) != 0 {
		t.Errorf("one notice field must not conflict with itself, got %v", temporal)
	}
}

func TestAnalyze_TemporalCleansMarkup(t *testing.T) {
	engine := NewEngine()

	raw := "<p>Notice of <a href=\"#\">termination</a>\n\n  must be   given</p> " + strings.Repeat("within thirty days ", 30)
	fields := []model.ContractField{
		cf("termination_notice", raw),
		cf("notice_period", "60 days"),
	}

	temporal := byType(engine.Analyze(fields, "EU"), "temporal_conflict")
	if len(temporal) != 1 {
		t.Fatalf("expected one temporal_conflict, got %d", len(temporal))
	}

	value := temporal[0].Fields[0].Value
	if strings.Contains(value, "<") {
		t.Errorf("markup not stripped: %q", value)
	}
	if strings.Contains(value, "  ") || strings.Contains(value, "\n") {
		t.Errorf("whitespace not collapsed: %q", value)
	}
	if len(value) > excerptMaxLen+3 {
		t.Errorf("value not truncated: %d chars", len(value))
	}
}

func TestAnalyze_JurisdictionConflict(t *testing.T) {
	engine := NewEngine()

	fields := []model.ContractField{
		cf("governing_law", "Germany"),
		cf("jurisdiction", "California"),
	}

	conflicts := byType(engine.Analyze(fields, "EU"), "jurisdiction_conflict")
	if len(conflicts) != 1 {
		t.Fatalf("expected exactly one jurisdiction_conflict, got %d", len(conflicts))
	}

	c := conflicts[0]
	if c.RiskLevel != model.RiskHigh {
		t.Errorf("expected HIGH, got %s", c.RiskLevel)
	}
	if c.Confidence != jurisdictionConfidence {
		t.Errorf("expected confidence %v, got %v", jurisdictionConfidence, c.Confidence)
	}
	if len(c.Jurisdictions) != 2 {
		t.Errorf("expected two distinct jurisdictions, got %v", c.Jurisdictions)
	}
}

func TestAnalyze_SameJurisdictionNoConflict(t *testing.T) {
	engine := NewEngine()

	fields := []model.ContractField{
		cf("governing_law", "Germany"),
		cf("jurisdiction", "Germany"),
	}

	if conflicts := byType(engine.Analyze(fields, "EU"), "jurisdiction_conflict"); len(conflicts) != 0 {
		t.Errorf("identical jurisdiction values must not conflict, got %v", conflicts)
	}
}

func TestAnalyze_JurisdictionWordBoundary(t *testing.T) {
	engine := NewEngine()

	// "Australia" contains "us" as a substring; it is not a known token.
	fields := []model.ContractField{
		cf("governing_law", "Australia"),
		cf("jurisdiction", "Austria"),
	}

	if conflicts := byType(engine.Analyze(fields, "EU"), "jurisdiction_conflict"); len(conflicts) != 0 {
		t.Errorf("unknown jurisdictions must not be collected, got %v", conflicts)
	}
}

func TestAnalyze_PatternCorrelation(t *testing.T) {
	engine := NewEngine()

	fields := []model.ContractField{
		cf("liability_limitation", "unlimited liability with uncapped penalty exposure"),
		cf("payment_terms", "payment within 30 days"),
	}

	financial := byType(engine.Analyze(fields, "US"), "financial_risk")
	if len(financial) != 1 {
		t.Fatalf("expected one financial_risk correlation, got %d", len(financial))
	}

	c := financial[0]
	// Three indicator hits (unlimited, uncapped, penalty) exceed the HIGH
	// threshold.
	if c.RiskLevel != model.RiskHigh {
		t.Errorf("expected HIGH with 3 indicator hits, got %s", c.RiskLevel)
	}
	want := confidenceBase + 3*confidencePerHit
	if c.Confidence != want {
		t.Errorf("expected confidence %v, got %v", want, c.Confidence)
	}
	if c.MatchingCount != 2 {
		t.Errorf("expected 2 matching fields, got %d", c.MatchingCount)
	}
}

func TestAnalyze_PatternConfidenceCapped(t *testing.T) {
	engine := NewEngine()

	// Five indicator hits would push base+0.5 over the cap.
	fields := []model.ContractField{
		cf("liability", "unlimited uncapped excessive penalty"),
		cf("indemnification", "unlimited exposure"),
	}

	financial := byType(engine.Analyze(fields, "US"), "financial_risk")
	if len(financial) != 1 {
		t.Fatalf("expected one financial_risk correlation, got %d", len(financial))
	}
	if financial[0].Confidence > confidenceCap {
		t.Errorf("confidence exceeded cap: %v", financial[0].Confidence)
	}
}

func TestAnalyze_PatternWithoutIndicatorsIsSilent(t *testing.T) {
	engine := NewEngine()

	fields := []model.ContractField{
		cf("supplier_agreement", "supplier delivers widgets quarterly"),
	}

	if sup := byType(engine.Analyze(fields, "US"), "supplier_risk"); len(sup) != 0 {
		t.Errorf("pattern match without indicators must not correlate, got %v", sup)
	}
}

func TestSummarize_Empty(t *testing.T) {
	engine := NewEngine()

	summary := engine.Summarize(nil)
	if summary.OverallRisk != model.RiskLow {
		t.Errorf("expected LOW, got %s", summary.OverallRisk)
	}
	if summary.Total != 0 {
		t.Errorf("expected 0 correlations, got %d", summary.Total)
	}
	if len(summary.Recommendations) == 0 {
		t.Error("recommendations must be non-empty even with no correlations")
	}
}

func TestSummarize_Counts(t *testing.T) {
	engine := NewEngine()

	summary := engine.Summarize([]model.RiskCorrelation{
		{Type: "a", RiskLevel: model.RiskHigh},
		{Type: "b", RiskLevel: model.RiskMedium},
		{Type: "c", RiskLevel: model.RiskMedium},
	})

	if summary.OverallRisk != model.RiskHigh {
		t.Errorf("expected HIGH overall, got %s", summary.OverallRisk)
	}
	if summary.HighCount != 1 || summary.MediumCount != 2 {
		t.Errorf("expected 1 high / 2 medium, got %d/%d", summary.HighCount, summary.MediumCount)
	}
	if summary.Total != 3 {
		t.Errorf("expected total 3, got %d", summary.Total)
	}
	if len(summary.Recommendations) != 2 {
		t.Errorf("expected both recommendations, got %v", summary.Recommendations)
	}
}
