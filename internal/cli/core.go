package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/complyco/copilot/internal/analyze"
	"github.com/complyco/copilot/internal/cache"
	"github.com/complyco/copilot/internal/extract"
	"github.com/complyco/copilot/internal/model"
	"github.com/complyco/copilot/internal/pipeline"
	"github.com/complyco/copilot/internal/region"
	"github.com/complyco/copilot/internal/retrieve"
	"github.com/complyco/copilot/internal/rulegen"
	"github.com/complyco/copilot/internal/rulestore"
)

// core bundles the wired review components shared by the serve, check and
// batch commands
type core struct {
	store     *rulestore.Store
	engine    *retrieve.Engine
	extractor *extract.Client
	pipe      *pipeline.Pipeline
}

// buildCore wires the store, retrieval, analyzer and pipeline from config.
// ruleConfigPath optionally overrides the built-in analyzer rule tables.
func buildCore(cfg *model.Config, ruleConfigPath string, workers int) (*core, error) {
	store := rulestore.New()
	loaded, err := store.LoadDir(cfg.Dirs.Rules)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load rule directory: %v\n", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Loaded %d rule documents from %s\n", loaded, cfg.Dirs.Rules)
	}

	searchCache := cache.NewMemoryCache(cfg.Search.CacheTTL, 2*cfg.Search.CacheTTL)
	engine := retrieve.NewEngine(store, retrieve.NewHybridClient(cfg.Search, searchCache))
	filter := region.NewFilter(engine)

	analyzer := analyze.NewAnalyzer(filter)
	if ruleConfigPath != "" {
		rules, err := analyze.LoadRuleSet(ruleConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load rule config: %w", err)
		}
		analyzer = analyze.NewAnalyzerWithRules(filter, rules)
	}

	provider, err := rulegen.NewProvider(cfg.LLM)
	if err != nil {
		return nil, err
	}

	var ruleCache cache.Cache
	if home, err := os.UserHomeDir(); err == nil {
		ruleCache = cache.NewDiskCache(filepath.Join(home, ".copilot", "cache", "rules"), cfg.LLM.CacheTTL)
	}
	generator := rulegen.NewGenerator(provider, ruleCache, cfg.LLM.CacheTTL)

	extractor := extract.NewClient(cfg.Extract)

	return &core{
		store:     store,
		engine:    engine,
		extractor: extractor,
		pipe:      pipeline.New(extractor, generator, analyzer, engine, workers),
	}, nil
}

// resolveAPIKey pulls the provider API key from the environment when the
// config carries none
func resolveAPIKey(cfg *model.Config) error {
	if cfg.LLM.Provider == "" || cfg.LLM.APIKey != "" {
		return nil
	}

	switch cfg.LLM.Provider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	}
	return nil
}
