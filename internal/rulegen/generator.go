package rulegen

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/complyco/copilot/internal/cache"
	"github.com/complyco/copilot/internal/model"
)

// Generator wraps a provider with caching and the static fallback. Rules
// for a region/domain pair are cached so repeated document checks do not
// re-spend tokens; the cache survives restarts when backed by disk.
type Generator struct {
	provider Provider
	cache    cache.Cache
	ttl      time.Duration
}

// NewGenerator creates a generator. Both provider and cache may be nil:
// a nil provider always serves fallback rules, a nil cache disables caching.
func NewGenerator(provider Provider, c cache.Cache, ttl time.Duration) *Generator {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Generator{provider: provider, cache: c, ttl: ttl}
}

// ProviderName reports the active provider, or "fallback" when none is
// configured
func (g *Generator) ProviderName() string {
	if g.provider == nil {
		return "fallback"
	}
	return g.provider.Name()
}

// Rules returns compliance rules for the region/domain pair. The second
// return reports whether the static fallback was served. Rules never fails:
// any provider error degrades to the fallback set.
func (g *Generator) Rules(ctx context.Context, region, domain string, fieldNames []string) ([]model.RuleDescriptor, bool) {
	key := cache.QueryKey(fmt.Sprintf("rules:%s:%s", region, domain))

	if g.cache != nil {
		if data, ok := g.cache.Get(key); ok {
			var rules []model.RuleDescriptor
			if err := json.Unmarshal(data, &rules); err == nil && len(rules) > 0 {
				return rules, false
			}
		}
	}

	if g.provider == nil {
		return FallbackRules(region), true
	}

	resp, err := g.provider.GenerateRules(ctx, Request{
		Region:     region,
		Domain:     domain,
		FieldNames: fieldNames,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: rule generation failed, using fallback rules: %v\n", err)
		return FallbackRules(region), true
	}

	if g.cache != nil {
		if data, err := json.Marshal(resp.Rules); err == nil {
			if err := g.cache.Set(key, data, g.ttl); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to cache generated rules: %v\n", err)
			}
		}
	}

	return resp.Rules, false
}
