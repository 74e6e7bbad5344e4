// Package pipeline orchestrates one full document review: extraction, rule
// generation, per-field compliance checks, table screening and cross-field
// risk correlation, merged into a single report.
package pipeline

import (
	"context"
	"fmt"
	"sort"

	"github.com/complyco/copilot/internal/analyze"
	"github.com/complyco/copilot/internal/correlate"
	"github.com/complyco/copilot/internal/extract"
	"github.com/complyco/copilot/internal/model"
	"github.com/complyco/copilot/internal/retrieve"
	"github.com/complyco/copilot/internal/rulegen"
	"github.com/complyco/copilot/internal/worker"
)

// relevantRuleCount is how many generated rules get marked search-relevant
const relevantRuleCount = 5

// Pipeline wires the review stages together
type Pipeline struct {
	extractor  *extract.Client
	generator  *rulegen.Generator
	analyzer   *analyze.Analyzer
	engine     *retrieve.Engine
	correlator *correlate.Engine
	pool       *worker.Pool
}

// New creates a pipeline. The worker count bounds batch analysis
// concurrency.
func New(extractor *extract.Client, generator *rulegen.Generator, analyzer *analyze.Analyzer, engine *retrieve.Engine, workers int) *Pipeline {
	return &Pipeline{
		extractor:  extractor,
		generator:  generator,
		analyzer:   analyzer,
		engine:     engine,
		correlator: correlate.NewEngine(),
		pool:       worker.NewPool(workers),
	}
}

// AnalyzeDocument runs the full review for one contract. Collaborator
// failures degrade (placeholder fields, fallback rules) rather than abort;
// the report marks which degraded paths were taken.
func (p *Pipeline) AnalyzeDocument(ctx context.Context, path, region, domain string) (*Report, error) {
	if path == "" {
		return nil, fmt.Errorf("no contract path given")
	}
	if domain == "" {
		domain = "contract"
	}

	fields, extractionFallback := p.extractor.Fields(ctx, path)
	tables, _ := p.extractor.Tables(ctx, path)

	names := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.Name != "" {
			names = append(names, f.Name)
		}
	}

	rules, rulesFallback := p.generator.Rules(ctx, region, domain, names)
	rules = p.rankRules(ctx, rules)

	flags := p.analyzer.Check(ctx, fields, region)

	correlations := p.correlator.Analyze(fields, region)
	flags = append(flags, CorrelationFlags(correlations, region)...)

	return &Report{
		File:               path,
		Region:             region,
		Domain:             domain,
		Fields:             fields,
		Rules:              rules,
		Flags:              flags,
		TableFindings:      analyze.ScreenTables(tables),
		RiskSummary:        p.correlator.Summarize(correlations),
		ExtractionFallback: extractionFallback,
		RulesFallback:      rulesFallback,
	}, nil
}

// Check runs only the per-field compliance stage, without rule generation
// or correlation. Backs the lightweight check endpoint.
func (p *Pipeline) Check(ctx context.Context, path, region string) ([]model.ComplianceFlag, []model.ContractField, error) {
	if path == "" {
		return nil, nil, fmt.Errorf("no contract path given")
	}
	fields, _ := p.extractor.Fields(ctx, path)
	return p.analyzer.Check(ctx, fields, region), fields, nil
}

// AnalyzeBatch reviews several contracts concurrently. Results come back in
// input order; one failing document never stops the rest.
func (p *Pipeline) AnalyzeBatch(ctx context.Context, paths []string, region, domain string) []BatchResult {
	results := make([]BatchResult, len(paths))

	p.pool.Run(ctx, len(paths), func(ctx context.Context, i int) {
		report, err := p.AnalyzeDocument(ctx, paths[i], region, domain)
		results[i] = BatchResult{Path: paths[i], Report: report, Err: err}
	})

	for i := range results {
		if results[i].Path == "" {
			results[i] = BatchResult{Path: paths[i], Err: ctx.Err()}
		}
	}
	return results
}

// rankRules scores each generated rule against the rule corpus and sorts by
// relevance; the top few are marked search-relevant for the UI to surface
// first.
func (p *Pipeline) rankRules(ctx context.Context, rules []model.RuleDescriptor) []model.RuleDescriptor {
	for i := range rules {
		query := rules[i].Title + " " + rules[i].Description
		if hits := p.engine.Search(ctx, query, 1); len(hits) > 0 {
			rules[i].SearchScore = hits[0].Score
		}
	}

	sort.SliceStable(rules, func(a, b int) bool {
		return rules[a].SearchScore > rules[b].SearchScore
	})

	for i := range rules {
		rules[i].SearchRelevant = i < relevantRuleCount && rules[i].SearchScore > 0
	}
	return rules
}

// CorrelationFlags projects correlations into the flag list so a single
// consumer sees field findings and cross-field findings side by side. The
// ai-risk- prefix keeps the ids disjoint from per-field flag ids.
func CorrelationFlags(correlations []model.RiskCorrelation, region string) []model.ComplianceFlag {
	flags := make([]model.ComplianceFlag, 0, len(correlations))
	for _, c := range correlations {
		flags = append(flags, model.ComplianceFlag{
			ID:        "ai-risk-" + c.Type,
			Category:  "risk_analysis",
			Region:    region,
			RiskLevel: c.RiskLevel,
			Rationale: c.Description,
		})
	}
	return flags
}
