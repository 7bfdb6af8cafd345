package extractor

import "strings"

// Strategy identifies which extraction heuristic produced a record.
type Strategy string

const (
	// StrategyCodeBlock scans pre/code text for "METHOD /path" lines.
	StrategyCodeBlock Strategy = "code_block"
	// StrategyTable scans table rows pairing a method cell with a path cell.
	StrategyTable Strategy = "table"
	// StrategyHeadingLink scans headings and links for method+path tokens.
	StrategyHeadingLink Strategy = "heading_link"
	// StrategyLooseText scans raw visible text for method+path patterns.
	StrategyLooseText Strategy = "loose_text"
	// StrategyAI marks records reported by the AI lookup, appended after
	// extraction and never produced inside the core pipeline.
	StrategyAI Strategy = "ai"
)

// maxDescriptionLen caps descriptions pulled from surrounding markup.
const maxDescriptionLen = 200

// Record is a single extracted API endpoint.
type Record struct {
	Method       string   `json:"method"`
	Path         string   `json:"path"`
	FullEndpoint string   `json:"full_endpoint"`
	Description  string   `json:"description,omitempty"`
	Source       Strategy `json:"source_strategy"`
}

// Key returns the identity key used for de-duplication: method is compared
// case-insensitively, path exactly.
func (r Record) Key() string {
	return strings.ToUpper(r.Method) + " " + r.Path
}

// newRecord builds a Record with normalized method and derived full endpoint.
func newRecord(method, path, description string, source Strategy) Record {
	method = strings.ToUpper(strings.TrimSpace(method))
	path = strings.TrimSpace(path)
	return Record{
		Method:       method,
		Path:         path,
		FullEndpoint: method + " " + path,
		Description:  truncate(description, maxDescriptionLen),
		Source:       source,
	}
}

// NewAIRecord builds a Record for an AI-reported endpoint, or nil when the
// method or path does not pass the same validation applied to extracted ones.
func NewAIRecord(method, path, description string) *Record {
	method = strings.TrimSpace(method)
	path = strings.TrimSpace(path)
	if !isHTTPMethod(method) || !isPathToken(path) {
		return nil
	}
	r := newRecord(method, path, description, StrategyAI)
	return &r
}

var httpMethods = map[string]bool{
	"GET":     true,
	"POST":    true,
	"PUT":     true,
	"PATCH":   true,
	"DELETE":  true,
	"HEAD":    true,
	"OPTIONS": true,
}

// isHTTPMethod reports whether token is a known HTTP method, ignoring case.
func isHTTPMethod(token string) bool {
	return httpMethods[strings.ToUpper(strings.TrimSpace(token))]
}

// isPathToken reports whether token is an acceptable endpoint path: it must
// start with "/" and contain no whitespace.
func isPathToken(token string) bool {
	if !strings.HasPrefix(token, "/") {
		return false
	}
	return !strings.ContainsAny(token, " \t\n\r")
}

// truncate limits s to n characters, collapsing surrounding whitespace.
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > n {
		return s[:n]
	}
	return s
}
