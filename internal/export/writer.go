// Package export renders discovery results to files.
package export

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/GerritSt/API-discovery-agent/pkg/discovery"
)

// Writer defines the interface for result writers.
type Writer interface {
	// WriteResult writes one discovery result
	WriteResult(result *discovery.Result) error

	// Close finalizes and closes the output
	Close() error
}

// Config holds export configuration.
type Config struct {
	Format   string
	Pretty   bool
	FilePath string
}

// NewWriter creates a writer for the configured format. The zero format
// defaults to Excel, matching the primary deliverable of a discovery run.
func NewWriter(config Config) (Writer, error) {
	switch config.Format {
	case "json":
		return NewJSONFileWriter(config.FilePath, config.Pretty)
	case "", "xlsx":
		return NewExcelWriter(config.FilePath), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", config.Format)
	}
}

// ValidateTarget rejects a fixed output path that several results would
// silently overwrite. The Excel writer saves one workbook per result, so a
// fixed path only fits a single company; the JSON writer streams every result
// into one file.
func ValidateTarget(config Config, results int) error {
	if config.FilePath == "" || results <= 1 || config.Format == "json" {
		return nil
	}
	return fmt.Errorf("output path %q fits a single company; drop the fixed path or use the json format for %d companies", config.FilePath, results)
}

var unsafeFilenameChars = regexp.MustCompile(`[^\w\-]+`)

// DefaultFilename builds the conventional output filename for a company,
// e.g. "Stripe_API_Documentation_20260823_150405.xlsx".
func DefaultFilename(company, ext string) string {
	name := unsafeFilenameChars.ReplaceAllString(strings.TrimSpace(company), "_")
	if name == "" {
		name = "company"
	}
	return fmt.Sprintf("%s_API_Documentation_%s.%s",
		name, time.Now().Format("20060102_150405"), ext)
}
