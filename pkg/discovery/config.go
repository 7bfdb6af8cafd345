package discovery

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all discovery agent configuration.
type Config struct {
	// Request timeout for candidate probes
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// User agent sent with probes
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// Skip TLS certificate verification
	SkipTLSVerify bool `json:"skip_tls_verify" yaml:"skip_tls_verify"`

	// Custom headers to include in all requests
	CustomHeaders map[string]string `json:"custom_headers" yaml:"custom_headers"`

	// Rate limiting for probes
	RateLimit RateLimitConfig `json:"rate_limit" yaml:"rate_limit"`

	// AI-assisted lookup
	AI AIConfig `json:"ai" yaml:"ai"`

	// Result caching
	Cache CacheConfig `json:"cache" yaml:"cache"`

	// Output configuration
	Output OutputConfig `json:"output" yaml:"output"`

	// Verbose logging
	Verbose bool `json:"verbose" yaml:"verbose"`

	// Debug mode
	Debug bool `json:"debug" yaml:"debug"`
}

// RateLimitConfig throttles outbound probes.
type RateLimitConfig struct {
	RequestsPerSecond float64       `json:"requests_per_second" yaml:"requests_per_second"`
	Burst             int           `json:"burst" yaml:"burst"`
	DomainDelay       time.Duration `json:"domain_delay" yaml:"domain_delay"`
}

// AIConfig configures the OpenRouter-backed lookup.
type AIConfig struct {
	// Enabled turns on the AI fallback when candidate URLs are exhausted
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Enrich appends AI-reported endpoints to the extracted list
	Enrich bool `json:"enrich" yaml:"enrich"`

	// APIKey is read from the environment, never from config files
	APIKey string `json:"-" yaml:"-"`

	// Model identifier on OpenRouter
	Model string `json:"model" yaml:"model"`

	// BaseURL overrides the OpenRouter API root
	BaseURL string `json:"base_url" yaml:"base_url"`

	// MaxRetries for the completion request
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// CacheConfig configures the persistent result cache.
type CacheConfig struct {
	Enabled bool          `json:"enabled" yaml:"enabled"`
	Path    string        `json:"path" yaml:"path"`
	TTL     time.Duration `json:"ttl" yaml:"ttl"`
}

// OutputConfig configures result export.
type OutputConfig struct {
	// Format is "xlsx" or "json"
	Format string `json:"format" yaml:"format"`

	// FilePath is the output file (auto-generated when empty)
	FilePath string `json:"file_path" yaml:"file_path"`

	// Pretty-print JSON output
	Pretty bool `json:"pretty" yaml:"pretty"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Timeout:   10 * time.Second,
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 5,
			Burst:             2,
			DomainDelay:       0,
		},
		AI: AIConfig{
			Enabled:    false,
			Enrich:     false,
			Model:      "deepseek/deepseek-chat-v3.1:free",
			MaxRetries: 2,
		},
		Cache: CacheConfig{
			Enabled: false,
			Path:    ".apidisc/cache.db",
			TTL:     24 * time.Hour,
		},
		Output: OutputConfig{
			Format: "xlsx",
			Pretty: true,
		},
	}
}

// LoadFromFile loads configuration from a file (YAML or JSON).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()

	// Try YAML first, then JSON
	if err := yaml.Unmarshal(data, config); err != nil {
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	return config, nil
}

// SaveToFile saves configuration to a file.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".json") {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = yaml.Marshal(c)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	if c.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("rate limit must be positive")
	}

	if c.AI.Enabled && c.AI.APIKey == "" {
		return fmt.Errorf("AI lookup enabled but no API key set (OPENROUTER_API_KEY)")
	}

	switch c.Output.Format {
	case "", "xlsx", "json":
	default:
		return fmt.Errorf("unknown output format %q (want xlsx or json)", c.Output.Format)
	}

	return nil
}

// Clone creates a deep copy of the configuration. All nested sections are
// value types; only the headers map needs copying.
func (c *Config) Clone() *Config {
	clone := *c
	if c.CustomHeaders != nil {
		clone.CustomHeaders = make(map[string]string, len(c.CustomHeaders))
		for k, v := range c.CustomHeaders {
			clone.CustomHeaders[k] = v
		}
	}
	return &clone
}
