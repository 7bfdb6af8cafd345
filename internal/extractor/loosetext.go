package extractor

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"
)

// looseTextPattern catches endpoint mentions in running prose, e.g.
// "send a POST: /v1/charges to create a charge". Lowest confidence; it exists
// to pick up documentation that escaped the structural strategies.
var looseTextPattern = regexp.MustCompile(`(?i)\b(GET|POST|PUT|PATCH|DELETE|HEAD|OPTIONS)\b\s*[:\-]?\s*(/[^\s,;]+)`)

// extractFromLooseText scans the page's visible text for method+path pairs.
func extractFromLooseText(doc *goquery.Document) []Record {
	// Work on a clone so stripping script/style does not mutate the shared
	// document other strategies read.
	clone := goquery.CloneDocument(doc)
	clone.Find("script, style").Remove()
	text := clone.Text()

	records := make([]Record, 0)
	for _, m := range looseTextPattern.FindAllStringSubmatch(text, -1) {
		if !isPathToken(m[2]) {
			continue
		}
		records = append(records, newRecord(m[1], m[2], "", StrategyLooseText))
	}

	return records
}
