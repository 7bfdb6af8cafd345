package discovery

import (
	"time"

	"github.com/GerritSt/API-discovery-agent/internal/logger"
)

// Option is a functional option for configuring the Agent.
type Option func(*Agent) error

// WithConfig replaces the whole configuration.
func WithConfig(config *Config) Option {
	return func(a *Agent) error {
		if config != nil {
			a.config = config
		}
		return nil
	}
}

// WithTimeout sets the candidate probe timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(a *Agent) error {
		a.config.Timeout = timeout
		return nil
	}
}

// WithUserAgent sets the User-Agent header for probes.
func WithUserAgent(ua string) Option {
	return func(a *Agent) error {
		a.config.UserAgent = ua
		return nil
	}
}

// WithRateLimit sets the probe rate limiting configuration.
func WithRateLimit(rps float64, burst int) Option {
	return func(a *Agent) error {
		a.config.RateLimit.RequestsPerSecond = rps
		a.config.RateLimit.Burst = burst
		return nil
	}
}

// WithAILookup enables the AI-assisted fallback with the given key.
func WithAILookup(apiKey string) Option {
	return func(a *Agent) error {
		a.config.AI.Enabled = true
		a.config.AI.APIKey = apiKey
		return nil
	}
}

// WithAIEnrichment additionally appends AI-reported endpoints to results.
func WithAIEnrichment(enrich bool) Option {
	return func(a *Agent) error {
		a.config.AI.Enrich = enrich
		return nil
	}
}

// WithCache enables the persistent result cache at path.
func WithCache(path string, ttl time.Duration) Option {
	return func(a *Agent) error {
		a.config.Cache.Enabled = true
		if path != "" {
			a.config.Cache.Path = path
		}
		if ttl > 0 {
			a.config.Cache.TTL = ttl
		}
		return nil
	}
}

// WithLogger sets the logger used by the pipeline.
func WithLogger(log *logger.Logger) Option {
	return func(a *Agent) error {
		if log != nil {
			a.log = log
		}
		return nil
	}
}

// WithVerbose enables verbose logging.
func WithVerbose(verbose bool) Option {
	return func(a *Agent) error {
		a.config.Verbose = verbose
		return nil
	}
}
