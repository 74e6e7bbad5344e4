package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/complyco/copilot/internal/ingest"
	"github.com/complyco/copilot/internal/model"
	"github.com/complyco/copilot/internal/server"
	"github.com/spf13/cobra"
)

var (
	serveAddr       string
	serveRulesDir   string
	serveContracts  string
	serveSearchURL  string
	serveExtractURL string
	serveProvider   string
	serveModel      string
	serveRuleConfig string
	serveWorkers    int
	ingestEnabled   bool
	ingestInterval  time.Duration
	ingestSources   []string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the compliance review API server",
	Long: `Serve starts the HTTP API: rule and contract uploads, per-field
compliance checks, full document analysis, flag explanations and risk
summaries.

The background ingestion watcher keeps the rule corpus current while the
server runs, tailing the rule directory and any configured remote sources.

Example:
  copilot serve
  copilot serve --addr :9000 --rules-dir ./rules --ingest
  copilot serve --search-url http://localhost:8100 --llm-provider openai`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8000", "listen address")
	serveCmd.Flags().StringVar(&serveRulesDir, "rules-dir", "rules/seed", "rule document directory")
	serveCmd.Flags().StringVar(&serveContracts, "contracts-dir", "contracts/sample", "contract upload directory")
	serveCmd.Flags().StringVar(&serveSearchURL, "search-url", "", "hybrid search sidecar base URL (empty disables)")
	serveCmd.Flags().StringVar(&serveExtractURL, "extract-url", "", "extraction service base URL (empty uses placeholders)")
	serveCmd.Flags().StringVar(&serveProvider, "llm-provider", "", "rule generation provider (openai, anthropic; empty uses static rules)")
	serveCmd.Flags().StringVar(&serveModel, "llm-model", "", "rule generation model name")
	serveCmd.Flags().StringVar(&serveRuleConfig, "rule-config", "", "YAML file overriding the built-in analyzer rule tables")
	serveCmd.Flags().IntVar(&serveWorkers, "workers", runtime.NumCPU(), "batch analysis concurrency")
	serveCmd.Flags().BoolVar(&ingestEnabled, "ingest", false, "enable background rule ingestion")
	serveCmd.Flags().DurationVar(&ingestInterval, "ingest-interval", 30*time.Second, "ingestion scan interval")
	serveCmd.Flags().StringSliceVar(&ingestSources, "ingest-source", nil, "remote rule source URL (repeatable)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := model.DefaultConfig()
	cfg.HTTP.Addr = serveAddr
	cfg.Dirs.Rules = serveRulesDir
	cfg.Dirs.Contracts = serveContracts
	cfg.Search.BaseURL = serveSearchURL
	cfg.Extract.BaseURL = serveExtractURL
	cfg.LLM.Provider = serveProvider
	cfg.LLM.Model = serveModel
	cfg.Ingest.Enabled = ingestEnabled
	cfg.Ingest.Interval = ingestInterval
	cfg.Ingest.RemoteSources = ingestSources
	cfg.Output.Verbose = verbose

	if err := resolveAPIKey(cfg); err != nil {
		return err
	}

	c, err := buildCore(cfg, serveRuleConfig, serveWorkers)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Ingest.Enabled {
		watcher := ingest.NewWatcher(cfg.Ingest, cfg.Dirs.Rules, c.store)
		watcher.Start()
		defer watcher.Stop()
	}

	srv := server.New(*cfg, c.store, c.engine, c.extractor, c.pipe)

	fmt.Fprintf(os.Stderr, "Listening on %s (%d rule documents loaded)\n", cfg.HTTP.Addr, c.store.Len())
	return srv.ListenAndServe(ctx)
}
