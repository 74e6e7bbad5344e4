package analyze

import (
	"testing"

	"github.com/complyco/copilot/internal/model"
)

func TestScreenTables_FlagsComplianceMatrix(t *testing.T) {
	tables := []model.Table{
		{
			ID:      "compliance_matrix",
			Headers: []string{"Requirement", "Status", "Evidence"},
			Rows: [][]string{
				{"Data Processing Lawful Basis", "Compliant", "Article 6(1)(b)"},
				{"Cross-border Transfer", "non-compliant", "SCCs missing"},
			},
		},
	}

	findings := ScreenTables(tables)
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}

	f := findings[0]
	if len(f.Issues) < 2 {
		t.Errorf("expected header and cell issues, got %v", f.Issues)
	}
	if f.RiskLevel != model.RiskMedium && f.RiskLevel != model.RiskHigh {
		t.Errorf("expected MEDIUM or higher, got %s", f.RiskLevel)
	}
}

func TestScreenTables_ManyIssuesEscalateToHigh(t *testing.T) {
	tables := []model.Table{
		{
			ID:      "penalties",
			Headers: []string{"Requirement", "Status", "Penalty"},
			Rows: [][]string{
				{"Reporting", "violation", "fine of 2% revenue"},
			},
		},
	}

	findings := ScreenTables(tables)
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	if findings[0].RiskLevel != model.RiskHigh {
		t.Errorf("expected HIGH with >2 issues, got %s (issues: %v)", findings[0].RiskLevel, findings[0].Issues)
	}
}

func TestScreenTables_CleanTableOmitted(t *testing.T) {
	tables := []model.Table{
		{
			ID:      "pricing",
			Headers: []string{"Item", "Price"},
			Rows:    [][]string{{"Widget", "10 EUR"}},
		},
	}

	if findings := ScreenTables(tables); len(findings) != 0 {
		t.Errorf("expected clean table to be omitted, got %v", findings)
	}
}
