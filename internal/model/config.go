package model

import "time"

// Config is the full application configuration
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Dirs    DirsConfig    `yaml:"dirs"`
	Search  SearchConfig  `yaml:"search"`
	Extract ExtractConfig `yaml:"extract"`
	LLM     LLMConfig     `yaml:"llm"`
	Ingest  IngestConfig  `yaml:"ingest"`
	Output  OutputConfig  `yaml:"output"`
}

// HTTPConfig configures the API server
type HTTPConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DirsConfig points at the watched rule and contract directories
type DirsConfig struct {
	Rules     string `yaml:"rules"`
	Contracts string `yaml:"contracts"`
}

// SearchConfig configures the optional hybrid search sidecar.
// The sidecar is best-effort: on any failure retrieval falls back to the
// in-process keyword scorer.
type SearchConfig struct {
	BaseURL  string        `yaml:"base_url"` // empty disables the sidecar tier
	Timeout  time.Duration `yaml:"timeout"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
	TopK     int           `yaml:"top_k"`
}

// ExtractConfig configures the document extraction service
type ExtractConfig struct {
	BaseURL string        `yaml:"base_url"` // empty forces the placeholder fallback
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

// LLMConfig configures the rule-generation provider
type LLMConfig struct {
	Provider  string        `yaml:"provider"` // openai, anthropic, "" (fallback rules only)
	Model     string        `yaml:"model"`
	APIKey    string        `yaml:"api_key"`
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	MaxTokens int           `yaml:"max_tokens"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`
}

// IngestConfig configures the background ingestion watcher
type IngestConfig struct {
	Enabled           bool          `yaml:"enabled"`
	Interval          time.Duration `yaml:"interval"`
	RemoteSources     []string      `yaml:"remote_sources"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	UserAgent         string        `yaml:"user_agent"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes"`
}

// OutputConfig controls diagnostics
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Addr:         ":8000",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Dirs: DirsConfig{
			Rules:     "rules/seed",
			Contracts: "contracts/sample",
		},
		Search: SearchConfig{
			Timeout:  2 * time.Second,
			CacheTTL: 5 * time.Minute,
			TopK:     3,
		},
		Extract: ExtractConfig{
			Timeout: 30 * time.Second,
		},
		LLM: LLMConfig{
			Timeout:   30 * time.Second,
			MaxTokens: 2000,
			CacheTTL:  time.Hour,
		},
		Ingest: IngestConfig{
			Interval:          30 * time.Second,
			RequestsPerSecond: 1,
			Burst:             2,
			UserAgent:         "Copilot/0.1 (+https://github.com/complyco/copilot)",
			MaxBodyBytes:      2_000_000,
		},
	}
}
