package rulegen

import "github.com/complyco/copilot/internal/model"

// Static rule sets served when no provider is configured or a generation
// call fails. Curated per region; regions without a curated set (including
// UK) get the EU rules, the strictest baseline.
var fallbackRules = map[string][]model.RuleDescriptor{
	"EU": {
		{
			ID:              "eu_gdpr_consent",
			Title:           "GDPR Consent Requirements",
			Description:     "Explicit consent must be obtained for data processing",
			ComplianceCheck: "Check for explicit consent clauses",
			RiskLevel:       model.RiskHigh,
			Category:        "privacy",
		},
		{
			ID:              "eu_data_minimization",
			Title:           "Data Minimization Principle",
			Description:     "Only collect data necessary for the purpose",
			ComplianceCheck: "Verify data collection is limited to purpose",
			RiskLevel:       model.RiskMedium,
			Category:        "privacy",
		},
		{
			ID:              "eu_employment_notice",
			Title:           "EU Employment Notice Periods",
			Description:     "Adequate notice periods for employment termination",
			ComplianceCheck: "Check for proper notice period clauses",
			RiskLevel:       model.RiskHigh,
			Category:        "labor",
		},
		{
			ID:              "eu_working_hours",
			Title:           "Working Time Directive",
			Description:     "Compliance with EU working time regulations",
			ComplianceCheck: "Verify working hours compliance",
			RiskLevel:       model.RiskMedium,
			Category:        "labor",
		},
		{
			ID:              "eu_vat_compliance",
			Title:           "VAT Compliance",
			Description:     "Proper VAT handling and reporting",
			ComplianceCheck: "Check for VAT compliance clauses",
			RiskLevel:       model.RiskHigh,
			Category:        "tax",
		},
		{
			ID:              "eu_jurisdiction",
			Title:           "Jurisdiction and Governing Law",
			Description:     "Clear jurisdiction and governing law clauses",
			ComplianceCheck: "Verify jurisdiction clauses",
			RiskLevel:       model.RiskMedium,
			Category:        "contract",
		},
		{
			ID:              "eu_force_majeure",
			Title:           "Force Majeure Clauses",
			Description:     "Proper force majeure provisions",
			ComplianceCheck: "Check for force majeure clauses",
			RiskLevel:       model.RiskMedium,
			Category:        "contract",
		},
	},
	"US": {
		{
			ID:              "us_ccpa_privacy",
			Title:           "CCPA Privacy Rights",
			Description:     "California Consumer Privacy Act compliance",
			ComplianceCheck: "Check for CCPA compliance clauses",
			RiskLevel:       model.RiskHigh,
			Category:        "privacy",
		},
		{
			ID:              "us_labor_notice",
			Title:           "Employment Notice Requirements",
			Description:     "Proper notice periods for employment changes",
			ComplianceCheck: "Verify notice period clauses",
			RiskLevel:       model.RiskMedium,
			Category:        "labor",
		},
		{
			ID:              "us_tax_withholding",
			Title:           "Tax Withholding Requirements",
			Description:     "Proper tax withholding and reporting",
			ComplianceCheck: "Check for tax withholding clauses",
			RiskLevel:       model.RiskHigh,
			Category:        "tax",
		},
		{
			ID:              "us_employment_law",
			Title:           "Federal Employment Law",
			Description:     "Compliance with federal employment regulations",
			ComplianceCheck: "Verify employment law compliance",
			RiskLevel:       model.RiskHigh,
			Category:        "labor",
		},
		{
			ID:              "us_jurisdiction",
			Title:           "Jurisdiction and Governing Law",
			Description:     "Clear jurisdiction and governing law clauses",
			ComplianceCheck: "Verify jurisdiction clauses",
			RiskLevel:       model.RiskMedium,
			Category:        "contract",
		},
		{
			ID:              "us_liability",
			Title:           "Liability and Indemnification",
			Description:     "Proper liability and indemnification clauses",
			ComplianceCheck: "Check for liability clauses",
			RiskLevel:       model.RiskMedium,
			Category:        "contract",
		},
	},
	"IN": {
		{
			ID:              "in_dpdp_consent",
			Title:           "DPDP Act Consent",
			Description:     "Digital Personal Data Protection Act compliance",
			ComplianceCheck: "Check for DPDP consent mechanisms",
			RiskLevel:       model.RiskHigh,
			Category:        "privacy",
		},
		{
			ID:              "in_labor_law",
			Title:           "Indian Labor Law Compliance",
			Description:     "Industrial Disputes Act and related laws",
			ComplianceCheck: "Verify labor law compliance clauses",
			RiskLevel:       model.RiskMedium,
			Category:        "labor",
		},
		{
			ID:              "in_gst_compliance",
			Title:           "GST Compliance",
			Description:     "Goods and Services Tax compliance",
			ComplianceCheck: "Check for GST compliance clauses",
			RiskLevel:       model.RiskHigh,
			Category:        "tax",
		},
		{
			ID:              "in_employment_notice",
			Title:           "Employment Notice Periods",
			Description:     "Proper notice periods as per Indian law",
			ComplianceCheck: "Verify notice period clauses",
			RiskLevel:       model.RiskMedium,
			Category:        "labor",
		},
		{
			ID:              "in_jurisdiction",
			Title:           "Jurisdiction and Governing Law",
			Description:     "Clear jurisdiction and governing law clauses",
			ComplianceCheck: "Verify jurisdiction clauses",
			RiskLevel:       model.RiskMedium,
			Category:        "contract",
		},
	},
}

// FallbackRules returns the static rule set for a region. The returned
// slice is a copy; callers may annotate it freely.
func FallbackRules(region string) []model.RuleDescriptor {
	rules, ok := fallbackRules[region]
	if !ok {
		rules = fallbackRules["EU"]
	}
	out := make([]model.RuleDescriptor, len(rules))
	copy(out, rules)
	return out
}
