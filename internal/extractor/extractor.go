// Package extractor turns a documentation page into structured endpoint
// records. Four independent strategies run over one parsed document; their
// results are merged in strategy-priority order and de-duplicated keeping the
// first occurrence, so higher-confidence strategies win ties.
package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/GerritSt/API-discovery-agent/internal/logger"
)

// strategyFunc is one side-effect-free heuristic over the parsed document.
type strategyFunc func(doc *goquery.Document) []Record

// Extractor extracts endpoint records from HTML documentation.
type Extractor struct {
	log        *logger.Logger
	strategies []struct {
		name Strategy
		fn   strategyFunc
	}
}

// New creates an extractor with the full strategy chain in priority order.
func New(log *logger.Logger) *Extractor {
	if log == nil {
		log = logger.Global()
	}
	e := &Extractor{log: log.WithComponent("extractor")}
	e.strategies = []struct {
		name Strategy
		fn   strategyFunc
	}{
		{StrategyCodeBlock, extractFromCodeBlocks},
		{StrategyTable, extractFromTables},
		{StrategyHeadingLink, extractFromHeadingsAndLinks},
		{StrategyLooseText, extractFromLooseText},
	}
	return e
}

// Extract runs every strategy over the document and returns the merged,
// de-duplicated record list. Extraction never fails: malformed markup yields
// whatever was parseable, and an empty slice is a valid outcome.
func (e *Extractor) Extract(htmlContent string) []Record {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		// goquery's parser is lenient; this only happens on reader errors.
		e.log.WithError(err).Warn("Document could not be parsed")
		return []Record{}
	}

	merged := make([]Record, 0, 32)
	seen := make(map[string]struct{})

	for _, s := range e.strategies {
		records := s.fn(doc)
		e.log.ExtractionEvent(string(s.name), len(records))

		for _, r := range records {
			key := r.Key()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, r)
		}
	}

	return merged
}
