package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// headingPathPattern matches an optional method token followed by an
// API-looking path (/api/... or /vN/...) inside heading or link text. The
// association between method and path here is textual, not structural, which
// is why this strategy ranks below code blocks and tables.
var headingPathPattern = regexp.MustCompile(`(?i)(?:\b(GET|POST|PUT|PATCH|DELETE|HEAD|OPTIONS)\b)?\s*((?:/api|/v\d+)[\w\-/{}:.]*)`)

// extractFromHeadingsAndLinks scans heading elements and hyperlinks for
// embedded endpoint references. A path with no method token defaults to GET.
func extractFromHeadingsAndLinks(doc *goquery.Document) []Record {
	records := make([]Record, 0)

	doc.Find("h1, h2, h3, h4, h5, h6, a").Each(func(_ int, tag *goquery.Selection) {
		texts := []string{tag.Text()}
		if href, ok := tag.Attr("href"); ok {
			texts = append(texts, href)
		}

		for _, text := range texts {
			for _, m := range headingPathPattern.FindAllStringSubmatch(text, -1) {
				method, path := m[1], m[2]
				if method == "" {
					method = "GET"
				}
				if !isPathToken(path) {
					continue
				}
				records = append(records, newRecord(method, path, strings.TrimSpace(tag.Text()), StrategyHeadingLink))
			}
		}
	})

	return records
}
