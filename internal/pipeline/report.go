package pipeline

import (
	"github.com/complyco/copilot/internal/analyze"
	"github.com/complyco/copilot/internal/model"
)

// Report is the full outcome of analyzing one contract: extracted fields,
// the rule set consulted, per-field flags, table findings and the
// cross-field risk summary.
type Report struct {
	File   string `json:"file"`
	Region string `json:"region"`
	Domain string `json:"domain"`

	Fields        []model.ContractField  `json:"fields"`
	Rules         []model.RuleDescriptor `json:"rules"`
	Flags         []model.ComplianceFlag `json:"flags"`
	TableFindings []analyze.TableFinding `json:"table_findings,omitempty"`
	RiskSummary   model.RiskSummary      `json:"risk_summary"`

	// Degraded-mode markers: placeholder extraction or static rule set
	ExtractionFallback bool `json:"extraction_fallback,omitempty"`
	RulesFallback      bool `json:"rules_fallback,omitempty"`
}

// BatchResult pairs one contract path with its report or failure
type BatchResult struct {
	Path   string  `json:"path"`
	Report *Report `json:"report,omitempty"`
	Err    error   `json:"-"`
}
