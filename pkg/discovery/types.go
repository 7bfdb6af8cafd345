package discovery

import (
	"time"
)

// Endpoint is a single discovered API endpoint.
type Endpoint struct {
	Method       string `json:"method"`
	Path         string `json:"path"`
	FullEndpoint string `json:"full_endpoint"`
	Description  string `json:"description,omitempty"`
	Source       string `json:"source_strategy"`
}

// Result is the artifact of one discovery run, handed to exporters as-is.
type Result struct {
	RunID              string     `json:"run_id"`
	Company            string     `json:"company"`
	DocumentationURL   string     `json:"documentation_url,omitempty"`
	DocumentationTitle string     `json:"documentation_title,omitempty"`
	Endpoints          []Endpoint `json:"endpoints"`
	GeneratedAt        time.Time  `json:"generated_at"`
	Duration           time.Duration `json:"duration"`
	FromCache          bool       `json:"from_cache,omitempty"`
	Stats              Stats      `json:"stats"`
}

// Stats summarizes how a run went.
type Stats struct {
	ProbesAttempted int            `json:"probes_attempted"`
	EndpointsFound  int            `json:"endpoints_found"`
	ByStrategy      map[string]int `json:"by_strategy,omitempty"`
	AIAssisted      bool           `json:"ai_assisted,omitempty"`
}
