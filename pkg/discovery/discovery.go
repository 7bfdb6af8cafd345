// Package discovery is the public entry point of the API discovery agent:
// it resolves a company name to a documentation page, extracts endpoint
// records from it, and returns the assembled result for export.
package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/GerritSt/API-discovery-agent/internal/ailookup"
	"github.com/GerritSt/API-discovery-agent/internal/cache"
	"github.com/GerritSt/API-discovery-agent/internal/errors"
	"github.com/GerritSt/API-discovery-agent/internal/extractor"
	"github.com/GerritSt/API-discovery-agent/internal/httpclient"
	"github.com/GerritSt/API-discovery-agent/internal/locator"
	"github.com/GerritSt/API-discovery-agent/internal/logger"
	"github.com/GerritSt/API-discovery-agent/internal/metrics"
	"github.com/GerritSt/API-discovery-agent/internal/ratelimit"
)

// ErrNotFound is returned when no documentation could be located for a
// company. It is the pipeline's only terminal failure.
var ErrNotFound = errors.ErrNotFound

// IsNotFound reports whether err is the terminal not-found failure.
func IsNotFound(err error) bool {
	return errors.IsNotFound(err)
}

// NormalizeCompany returns the canonical form of a company name used as the
// cache key and in candidate URLs.
func NormalizeCompany(company string) string {
	return locator.NormalizeCompany(company)
}

// Agent runs the discovery pipeline: locate, extract, assemble.
type Agent struct {
	config    *Config
	log       *logger.Logger
	client    *httpclient.Client
	locator   *locator.Locator
	extractor *extractor.Extractor
	ai        *ailookup.Client
	store     *cache.Store
	collector *metrics.Collector
}

// New creates an Agent from options.
func New(opts ...Option) (*Agent, error) {
	a := &Agent{
		config: DefaultConfig(),
	}

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}

	if err := a.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if a.log == nil {
		level := logger.InfoLevel
		if a.config.Debug {
			level = logger.DebugLevel
		} else if a.config.Verbose {
			level = logger.DebugLevel
		}
		a.log = logger.New(logger.Config{
			Level:  level,
			Pretty: true,
		})
	}

	a.collector = metrics.New()

	a.client = httpclient.New(httpclient.Config{
		Timeout:             a.config.Timeout,
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     10,
		UserAgent:           a.config.UserAgent,
		Headers:             a.config.CustomHeaders,
		SkipTLSVerify:       a.config.SkipTLSVerify,
	})

	locatorOpts := []locator.Option{
		locator.WithLimiter(ratelimit.NewLimiter(
			a.config.RateLimit.RequestsPerSecond,
			a.config.RateLimit.Burst,
		)),
		locator.WithProbeFilter(cache.NewProbeDeduplicator(1000)),
		locator.WithMetrics(a.collector),
	}

	if a.config.AI.Enabled {
		aiOpts := []ailookup.Option{
			ailookup.WithRetryConfig(aiRetryConfig(a.config.AI.MaxRetries)),
		}
		if a.config.AI.Model != "" {
			aiOpts = append(aiOpts, ailookup.WithModel(a.config.AI.Model))
		}
		if a.config.AI.BaseURL != "" {
			aiOpts = append(aiOpts, ailookup.WithBaseURL(a.config.AI.BaseURL))
		}

		ai, err := ailookup.New(a.config.AI.APIKey, a.log, aiOpts...)
		if err != nil {
			return nil, err
		}
		a.ai = ai
		locatorOpts = append(locatorOpts, locator.WithSuggester(ai))
	}

	a.locator = locator.New(a.client, a.log, locatorOpts...)
	a.extractor = extractor.New(a.log)

	if a.config.Cache.Enabled {
		store, err := cache.Open(a.config.Cache.Path, a.config.Cache.TTL)
		if err != nil {
			return nil, fmt.Errorf("failed to open result cache: %w", err)
		}
		a.store = store
	}

	return a, nil
}

// Discover runs the full pipeline for one company. A located page with zero
// extractable endpoints is a success; only total location failure returns
// ErrNotFound.
func (a *Agent) Discover(ctx context.Context, company string) (*Result, error) {
	start := time.Now()
	probesBefore := a.collector.Snapshot().ProbesTotal
	log := a.log.WithCompany(company)

	cacheKey := locator.NormalizeCompany(company)
	if cached := a.fromCache(cacheKey); cached != nil {
		log.Info("Serving result from cache")
		return cached, nil
	}

	page, err := a.locator.Locate(ctx, company)
	if err != nil {
		return nil, err
	}

	records := a.extractor.Extract(page.HTML)
	for _, r := range records {
		a.collector.RecordEndpoints(string(r.Source), 1)
	}
	log.Infof("Extracted %d endpoints", len(records))

	result := &Result{
		RunID:              uuid.NewString(),
		Company:            company,
		DocumentationURL:   page.SourceURL,
		DocumentationTitle: page.Title,
		Endpoints:          toEndpoints(records),
		GeneratedAt:        time.Now(),
	}

	if a.config.AI.Enrich && a.ai != nil {
		a.enrich(ctx, result)
	}

	result.Duration = time.Since(start)
	result.Stats = a.buildStats(result, probesBefore)

	a.toCache(cacheKey, result)

	return result, nil
}

// DiscoverAll runs the pipeline sequentially for several companies. A
// company that fails with ErrNotFound yields a nil slot; other errors abort.
func (a *Agent) DiscoverAll(ctx context.Context, companies []string) ([]*Result, error) {
	results := make([]*Result, len(companies))
	for i, company := range companies {
		result, err := a.Discover(ctx, company)
		if err != nil {
			if errors.IsNotFound(err) {
				a.log.WithCompany(company).Warn("No documentation found, continuing batch")
				continue
			}
			return results, err
		}
		results[i] = result
	}
	return results, nil
}

// enrich appends AI-reported endpoints after the extracted ones, deduped on
// the same identity key. The AI never contributes inside the core pipeline.
func (a *Agent) enrich(ctx context.Context, result *Result) {
	log := a.log.WithCompany(result.Company)

	aiResult, err := a.ai.SearchCompanyAPI(ctx, result.Company)
	if err != nil {
		log.WithError(err).Warn("AI enrichment failed, keeping extracted endpoints")
		return
	}
	if !aiResult.HasAPI {
		return
	}

	seen := make(map[string]struct{}, len(result.Endpoints))
	for _, ep := range result.Endpoints {
		seen[identityKey(ep.Method, ep.Path)] = struct{}{}
	}

	added := 0
	for _, ep := range aiResult.Endpoints {
		rec := extractor.NewAIRecord(ep.Method, ep.Path, ep.Description)
		if rec == nil {
			continue
		}
		key := identityKey(rec.Method, rec.Path)
		if _, dup := seen[key]; dup {
			a.collector.RecordDuplicate()
			continue
		}
		seen[key] = struct{}{}
		result.Endpoints = append(result.Endpoints, toEndpoint(*rec))
		added++
	}

	if added > 0 {
		result.Stats.AIAssisted = true
		log.Infof("AI enrichment added %d endpoints", added)
	}
}

// fromCache returns a cached result, or nil.
func (a *Agent) fromCache(key string) *Result {
	if a.store == nil || key == "" {
		return nil
	}

	data, _, ok, err := a.store.Get(key)
	if err != nil || !ok {
		return nil
	}

	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}
	result.FromCache = true
	return &result
}

// toCache stores a result, best effort.
func (a *Agent) toCache(key string, result *Result) {
	if a.store == nil || key == "" {
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := a.store.Put(key, data); err != nil {
		a.log.WithError(err).Warn("Failed to cache result")
	}
}

// buildStats assembles per-run statistics. Probe counts are taken as a delta
// so a batch run reports per-company numbers, not cumulative ones.
func (a *Agent) buildStats(result *Result, probesBefore int64) Stats {
	snap := a.collector.Snapshot()

	byStrategy := make(map[string]int)
	for _, ep := range result.Endpoints {
		byStrategy[ep.Source]++
	}

	return Stats{
		ProbesAttempted: int(snap.ProbesTotal - probesBefore),
		EndpointsFound:  len(result.Endpoints),
		ByStrategy:      byStrategy,
		AIAssisted:      result.Stats.AIAssisted,
	}
}

// Metrics returns a snapshot of pipeline metrics for display.
func (a *Agent) Metrics() metrics.Snapshot {
	return a.collector.Snapshot()
}

// Close releases the HTTP client and cache resources.
func (a *Agent) Close() error {
	a.client.Close()
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

// Config returns the agent's configuration.
func (a *Agent) Config() *Config {
	return a.config
}

func aiRetryConfig(maxRetries int) errors.RetryConfig {
	cfg := errors.DefaultRetryConfig()
	if maxRetries >= 0 {
		cfg.MaxRetries = maxRetries
	}
	return cfg
}

func identityKey(method, path string) string {
	return method + " " + path
}

func toEndpoints(records []extractor.Record) []Endpoint {
	endpoints := make([]Endpoint, 0, len(records))
	for _, r := range records {
		endpoints = append(endpoints, toEndpoint(r))
	}
	return endpoints
}

func toEndpoint(r extractor.Record) Endpoint {
	return Endpoint{
		Method:       r.Method,
		Path:         r.Path,
		FullEndpoint: r.FullEndpoint,
		Description:  r.Description,
		Source:       string(r.Source),
	}
}
