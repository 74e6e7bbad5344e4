// Package correlate scans the full field set for cross-cutting risk
// patterns: configured keyword correlations, conflicting notice periods, and
// multi-jurisdiction clauses. A correlation is never attributable to a
// single field, which is what separates it from a compliance flag.
package correlate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/complyco/copilot/internal/model"
)

// Heuristic constants carried over from the original tuning. Not derived;
// do not "fix" them.
const (
	highIndicatorThreshold = 2   // more than this many indicator hits -> HIGH
	confidenceBase         = 0.5 // pattern confidence floor
	confidencePerHit       = 0.1 // added per indicator hit
	confidenceCap          = 0.9
	temporalConfidence     = 0.7
	jurisdictionConfidence = 0.8
)

// correlationRule drives the pattern analysis: patterns select candidate
// fields, indicators grade them
type correlationRule struct {
	description string
	patterns    []string
	indicators  []string
}

var correlationRules = map[string]correlationRule{
	"supplier_risk": {
		description: "Detect supplier-related risks across documents",
		patterns:    []string{"supplier", "vendor", "third-party", "subcontractor"},
		indicators:  []string{"adverse media", "sanctions", "litigation"},
	},
	"jurisdiction_conflict": {
		description: "Identify conflicting jurisdiction requirements",
		patterns:    []string{"governing law", "jurisdiction", "applicable law"},
		indicators:  []string{"conflict", "contradiction", "incompatible"},
	},
	"data_flow_risk": {
		description: "Track data flow risks across documents",
		patterns:    []string{"data transfer", "personal data", "cross-border"},
		indicators:  []string{"gdpr", "ccpa", "privacy", "consent"},
	},
	"financial_risk": {
		description: "Correlate financial risks across documents",
		patterns:    []string{"payment", "liability", "indemnification", "insurance"},
		indicators:  []string{"unlimited", "uncapped", "excessive", "penalty"},
	},
}

// Field-name/value vocabularies for the temporal and jurisdiction analyses
var (
	temporalTerms     = []string{"notice", "termination", "renewal", "expiry"}
	noticeNameTerms   = []string{"notice", "termination"}
	jurisdictionNames = []string{"jurisdiction", "governing", "law", "legal"}
	jurisdictionToken = []string{"eu", "us", "uk", "germany", "france", "california", "new york"}
)

// Engine runs the cross-document risk analyses
type Engine struct{}

// NewEngine creates a correlation engine
func NewEngine() *Engine {
	return &Engine{}
}

// Analyze runs the three independent analyses over the full field set and
// concatenates their results: pattern correlations (in rule-name order),
// then temporal, then jurisdiction.
func (e *Engine) Analyze(fields []model.ContractField, region string) []model.RiskCorrelation {
	var out []model.RiskCorrelation

	names := make([]string, 0, len(correlationRules))
	for name := range correlationRules {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if c := analyzePattern(fields, name, correlationRules[name], region); c != nil {
			out = append(out, *c)
		}
	}

	out = append(out, analyzeTemporal(fields, region)...)
	out = append(out, analyzeJurisdictions(fields, region)...)

	return out
}

// analyzePattern applies one correlation rule: patterns select fields,
// indicator hits across the selected fields grade the correlation
func analyzePattern(fields []model.ContractField, name string, rule correlationRule, region string) *model.RiskCorrelation {
	var matching []model.ContractField
	for _, f := range fields {
		text := strings.ToLower(f.Name + " " + f.Value)
		for _, p := range rule.patterns {
			if strings.Contains(text, p) {
				matching = append(matching, f)
				break
			}
		}
	}
	if len(matching) == 0 {
		return nil
	}

	var hits []model.IndicatorHit
	for _, f := range matching {
		text := strings.ToLower(f.Name + " " + f.Value)
		for _, ind := range rule.indicators {
			if strings.Contains(text, ind) {
				hits = append(hits, model.IndicatorHit{
					Indicator: ind,
					Field:     f.Name,
					Value:     f.Value,
					Evidence:  f.Evidence,
				})
			}
		}
	}
	if len(hits) == 0 {
		return nil
	}

	risk := model.RiskMedium
	if len(hits) > highIndicatorThreshold {
		risk = model.RiskHigh
	}

	confidence := confidenceBase + confidencePerHit*float64(len(hits))
	if confidence > confidenceCap {
		confidence = confidenceCap
	}

	return &model.RiskCorrelation{
		Type:          name,
		Description:   rule.description,
		RiskLevel:     risk,
		Confidence:    confidence,
		Region:        region,
		MatchingCount: len(matching),
		Indicators:    hits,
	}
}

// analyzeTemporal looks for conflicting notice periods. Two or more
// notice/termination-named fields among the time-sensitive set yield one
// temporal_conflict.
func analyzeTemporal(fields []model.ContractField, region string) []model.RiskCorrelation {
	var timeSensitive []model.ContractField
	for _, f := range fields {
		text := strings.ToLower(f.Name + " " + f.Value)
		for _, term := range temporalTerms {
			if strings.Contains(text, term) {
				timeSensitive = append(timeSensitive, f)
				break
			}
		}
	}
	if len(timeSensitive) < 2 {
		return nil
	}

	var noticeFields []model.ContractField
	for _, f := range timeSensitive {
		name := strings.ToLower(f.Name)
		for _, term := range noticeNameTerms {
			if strings.Contains(name, term) {
				noticeFields = append(noticeFields, f)
				break
			}
		}
	}
	if len(noticeFields) < 2 {
		return nil
	}

	excerpts := make([]model.FieldExcerpt, len(noticeFields))
	for i, f := range noticeFields {
		excerpts[i] = model.FieldExcerpt{Name: f.Name, Value: cleanFieldValue(f.Value)}
	}

	return []model.RiskCorrelation{{
		Type:        "temporal_conflict",
		Description: "Conflicting notice periods found across documents",
		RiskLevel:   model.RiskMedium,
		Confidence:  temporalConfidence,
		Region:      region,
		Fields:      excerpts,
	}}
}

// analyzeJurisdictions flags documents naming more than one jurisdiction in
// law-related fields
func analyzeJurisdictions(fields []model.ContractField, region string) []model.RiskCorrelation {
	var lawFields []model.ContractField
	for _, f := range fields {
		name := strings.ToLower(f.Name)
		for _, term := range jurisdictionNames {
			if strings.Contains(name, term) {
				lawFields = append(lawFields, f)
				break
			}
		}
	}
	if len(lawFields) < 2 {
		return nil
	}

	distinct := make(map[string]struct{})
	for _, f := range lawFields {
		value := strings.ToLower(f.Value)
		for _, token := range jurisdictionToken {
			if containsWord(value, token) {
				distinct[f.Value] = struct{}{}
				break
			}
		}
	}
	if len(distinct) < 2 {
		return nil
	}

	jurisdictions := make([]string, 0, len(distinct))
	for v := range distinct {
		jurisdictions = append(jurisdictions, v)
	}
	sort.Strings(jurisdictions)

	return []model.RiskCorrelation{{
		Type:          "jurisdiction_conflict",
		Description:   "Multiple jurisdictions found - potential legal conflicts",
		RiskLevel:     model.RiskHigh,
		Confidence:    jurisdictionConfidence,
		Region:        region,
		Jurisdictions: jurisdictions,
	}}
}

// Summarize aggregates correlations into an overall risk reading with
// deterministic recommendations. An empty input still yields a non-empty
// recommendation list.
func (e *Engine) Summarize(correlations []model.RiskCorrelation) model.RiskSummary {
	if len(correlations) == 0 {
		return model.RiskSummary{
			OverallRisk:     model.RiskLow,
			Recommendations: []string{"No significant risk correlations found"},
		}
	}

	high, medium := 0, 0
	for _, c := range correlations {
		switch c.RiskLevel {
		case model.RiskHigh:
			high++
		case model.RiskMedium:
			medium++
		}
	}

	overall := model.RiskLow
	switch {
	case high > 0:
		overall = model.RiskHigh
	case medium > 0:
		overall = model.RiskMedium
	}

	var recommendations []string
	if high > 0 {
		recommendations = append(recommendations, "Immediate review required for high-risk correlations")
	}
	if medium > 0 {
		recommendations = append(recommendations, "Consider reviewing medium-risk correlations")
	}
	if len(recommendations) == 0 {
		recommendations = append(recommendations,
			fmt.Sprintf("%d low-risk correlations found; no action required", len(correlations)))
	}

	return model.RiskSummary{
		OverallRisk:     overall,
		Total:           len(correlations),
		HighCount:       high,
		MediumCount:     medium,
		Recommendations: recommendations,
		Correlations:    correlations,
	}
}
