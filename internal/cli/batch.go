package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/complyco/copilot/internal/model"
	"github.com/spf13/cobra"
)

var (
	batchRegion    string
	batchDomain    string
	batchRulesDir  string
	batchOutputDir string
	batchWorkers   int
	batchTimeout   time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Analyze every contract in a directory in parallel",
	Long: `Batch reviews all documents in a directory concurrently and writes
one JSON report per contract to the output directory.

Example:
  copilot batch ./contracts
  copilot batch ./contracts --region US --workers 8 --output-dir ./reports`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&batchRegion, "region", "EU", "target jurisdiction (EU, US, IN, UK)")
	batchCmd.Flags().StringVar(&batchDomain, "domain", "contract", "document domain for rule generation")
	batchCmd.Flags().StringVar(&batchRulesDir, "rules-dir", "rules/seed", "rule document directory")
	batchCmd.Flags().StringVar(&batchOutputDir, "output-dir", "./copilot-reports", "output directory for reports")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
}

func runBatch(cmd *cobra.Command, args []string) error {
	dir := args[0]

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read contract directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return fmt.Errorf("no contracts in %s", dir)
	}

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg := model.DefaultConfig()
	cfg.Dirs.Rules = batchRulesDir
	cfg.Output.Verbose = verbose

	c, err := buildCore(cfg, "", batchWorkers)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(batchOutputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Reviewing %d contracts with %d workers...\n", len(paths), batchWorkers)

	results := c.pipe.AnalyzeBatch(ctx, paths, batchRegion, batchDomain)

	success, failure := 0, 0
	for _, r := range results {
		if r.Err != nil {
			failure++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", r.Path, r.Err)
			continue
		}

		name := strings.TrimSuffix(filepath.Base(r.Path), filepath.Ext(r.Path)) + ".json"
		outPath := filepath.Join(batchOutputDir, name)

		data, err := json.MarshalIndent(r.Report, "", "  ")
		if err != nil {
			failure++
			fmt.Fprintf(os.Stderr, "✗ %s: encode report: %v\n", r.Path, err)
			continue
		}
		if err := os.WriteFile(outPath, data, 0644); err != nil {
			failure++
			fmt.Fprintf(os.Stderr, "✗ %s: write report: %v\n", r.Path, err)
			continue
		}

		success++
		fmt.Fprintf(os.Stderr, "✓ %s (%d flags, overall risk %s)\n",
			r.Path, len(r.Report.Flags), r.Report.RiskSummary.OverallRisk)
	}

	fmt.Fprintf(os.Stderr, "\nBatch complete: %d succeeded, %d failed, reports in %s\n",
		success, failure, batchOutputDir)
	return nil
}
