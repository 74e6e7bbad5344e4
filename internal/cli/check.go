package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/complyco/copilot/internal/model"
	"github.com/spf13/cobra"
)

var (
	checkRegion     string
	checkDomain     string
	checkRulesDir   string
	checkRuleConfig string
	checkOutJSON    string
	checkTimeout    time.Duration
	checkFlagsOnly  bool
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <contract>",
	Short: "Analyze a single contract for compliance concerns",
	Long: `Check runs the full review for one contract: field extraction,
region-scoped rule retrieval, per-field compliance flags, table screening
and cross-field risk correlation.

Example:
  copilot check contract.pdf
  copilot check contract.pdf --region US --domain "supply agreement"
  copilot check contract.pdf --flags-only --json flags.json`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkRegion, "region", "EU", "target jurisdiction (EU, US, IN, UK)")
	checkCmd.Flags().StringVar(&checkDomain, "domain", "contract", "document domain for rule generation")
	checkCmd.Flags().StringVar(&checkRulesDir, "rules-dir", "rules/seed", "rule document directory")
	checkCmd.Flags().StringVar(&checkRuleConfig, "rule-config", "", "YAML file overriding the built-in analyzer rule tables")
	checkCmd.Flags().StringVar(&checkOutJSON, "json", "", "write the report to a file instead of stdout")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 2*time.Minute, "overall check timeout")
	checkCmd.Flags().BoolVar(&checkFlagsOnly, "flags-only", false, "emit only the flag list, skipping rule generation")
}

func runCheck(cmd *cobra.Command, args []string) error {
	path := args[0]
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("contract not found: %s", path)
	}

	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	cfg := model.DefaultConfig()
	cfg.Dirs.Rules = checkRulesDir
	cfg.Output.Verbose = verbose

	c, err := buildCore(cfg, checkRuleConfig, 1)
	if err != nil {
		return err
	}

	var out any
	if checkFlagsOnly {
		flags, _, err := c.pipe.Check(ctx, path, checkRegion)
		if err != nil {
			return fmt.Errorf("check failed: %w", err)
		}
		out = flags
	} else {
		report, err := c.pipe.AnalyzeDocument(ctx, path, checkRegion, checkDomain)
		if err != nil {
			return fmt.Errorf("check failed: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Extracted %d fields\n", len(report.Fields))
			fmt.Fprintf(os.Stderr, "✓ Consulted %d rules\n", len(report.Rules))
			fmt.Fprintf(os.Stderr, "✓ Raised %d flags (overall risk: %s)\n", len(report.Flags), report.RiskSummary.OverallRisk)
			if report.ExtractionFallback {
				fmt.Fprintf(os.Stderr, "! Extraction service unavailable; placeholder fields used\n")
			}
			if report.RulesFallback {
				fmt.Fprintf(os.Stderr, "! Rule generation unavailable; static rule set used\n")
			}
		}
		out = report
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	if checkOutJSON != "" {
		if err := os.WriteFile(checkOutJSON, data, 0644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Report written to %s\n", checkOutJSON)
		return nil
	}

	fmt.Println(string(data))
	return nil
}
