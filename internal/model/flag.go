package model

// RiskLevel classifies the severity of a finding
type RiskLevel string

const (
	RiskHigh   RiskLevel = "HIGH"
	RiskMedium RiskLevel = "MEDIUM"
	RiskLow    RiskLevel = "LOW"
)

// ComplianceFlag is a single field-level compliance concern. The id is
// deterministic ({category}-{field}-{rule}, or ai-risk-{type} for
// correlation-sourced flags) so a field+category+rule combination can never
// produce two flags within one analysis pass.
type ComplianceFlag struct {
	ID               string    `json:"id"`
	Category         string    `json:"category"` // privacy | labor | tax | risk_analysis
	Region           string    `json:"region"`   // EU | US | IN | UK
	RiskLevel        RiskLevel `json:"risk_level"`
	Rationale        string    `json:"rationale"`
	ContractEvidence Evidence  `json:"contract_evidence"`
	RuleEvidence     Evidence  `json:"rule_evidence"`
}

// IndicatorHit records where a configured risk indicator matched a field.
type IndicatorHit struct {
	Indicator string   `json:"indicator"`
	Field     string   `json:"field"`
	Value     string   `json:"value"`
	Evidence  Evidence `json:"evidence"`
}

// FieldExcerpt is a cleaned, bounded view of a field value attached to a
// correlation (upstream extraction can return raw markup).
type FieldExcerpt struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// RiskCorrelation is a cross-field risk pattern. Unlike a ComplianceFlag it
// is never anchored to a single field: it only exists because several fields
// line up in a suspicious way.
type RiskCorrelation struct {
	Type          string         `json:"correlation_type"`
	Description   string         `json:"description"`
	RiskLevel     RiskLevel      `json:"risk_level"`
	Confidence    float64        `json:"confidence"` // [0,1]
	Region        string         `json:"region"`
	MatchingCount int            `json:"matching_fields,omitempty"`
	Indicators    []IndicatorHit `json:"risk_indicators,omitempty"`
	Fields        []FieldExcerpt `json:"fields,omitempty"`
	Jurisdictions []string       `json:"jurisdictions,omitempty"`
}

// RiskSummary aggregates a set of correlations into an overall reading.
type RiskSummary struct {
	OverallRisk     RiskLevel         `json:"overall_risk"`
	Total           int               `json:"total_correlations"`
	HighCount       int               `json:"high_risk_count"`
	MediumCount     int               `json:"medium_risk_count"`
	Recommendations []string          `json:"recommendations"`
	Correlations    []RiskCorrelation `json:"correlations,omitempty"`
}

// RuleDescriptor is a candidate compliance rule produced by the
// rule-generation collaborator (or its static fallback).
type RuleDescriptor struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	ComplianceCheck string    `json:"compliance_check"`
	RiskLevel       RiskLevel `json:"risk_level"`
	Category        string    `json:"category"`
	SearchRelevant  bool      `json:"search_relevant,omitempty"`
	SearchScore     float64   `json:"search_score,omitempty"`
}
