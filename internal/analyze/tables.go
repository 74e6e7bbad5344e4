package analyze

import (
	"fmt"
	"strings"

	"github.com/complyco/copilot/internal/model"
)

// Header and cell vocabularies for table screening. Compliance matrices and
// penalty schedules hide findings that field extraction misses.
var (
	complianceHeaders = []string{"compliance", "requirement", "status", "deadline", "penalty"}
	riskCellTerms     = []string{"non-compliant", "violation", "penalty", "fine"}
)

// TableFinding is the screening result for one extracted table
type TableFinding struct {
	Table     model.Table     `json:"table"`
	Issues    []string        `json:"issues"`
	RiskLevel model.RiskLevel `json:"risk_level"`
}

// ScreenTables scans extracted tables for compliance-related headers and
// risk-bearing cells. Tables without issues are omitted from the result.
func ScreenTables(tables []model.Table) []TableFinding {
	var findings []TableFinding
	for _, table := range tables {
		issues := screenTable(table)
		if len(issues) == 0 {
			continue
		}
		findings = append(findings, TableFinding{
			Table:     table,
			Issues:    issues,
			RiskLevel: tableRisk(len(issues)),
		})
	}
	return findings
}

func screenTable(table model.Table) []string {
	var issues []string

	for _, header := range table.Headers {
		lower := strings.ToLower(header)
		for _, term := range complianceHeaders {
			if strings.Contains(lower, term) {
				issues = append(issues, fmt.Sprintf("Compliance-related table column: %s", header))
				break
			}
		}
	}

	for _, row := range table.Rows {
		for _, cell := range row {
			lower := strings.ToLower(cell)
			for _, term := range riskCellTerms {
				if strings.Contains(lower, term) {
					issues = append(issues, fmt.Sprintf("Risk indicator in table cell: %s", cell))
					break
				}
			}
		}
	}

	return issues
}

func tableRisk(issueCount int) model.RiskLevel {
	switch {
	case issueCount > 2:
		return model.RiskHigh
	case issueCount > 0:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}
