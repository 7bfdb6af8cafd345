package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// tablePathPattern matches a cell that is exactly an endpoint path, with
// optional {param} placeholders.
var tablePathPattern = regexp.MustCompile(`^/[\w\-/{}:.]*$`)

// extractFromTables scans table rows for a method cell paired with a path
// cell. A row qualifies when one cell's text is exactly an HTTP method token
// and another cell's text looks like a path; the remaining non-empty cells
// are joined to form the description.
func extractFromTables(doc *goquery.Document) []Record {
	records := make([]Record, 0)

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td, th")
			if cells.Length() < 2 {
				return
			}

			var method, path string
			var rest []string

			cells.Each(func(_ int, cell *goquery.Selection) {
				text := strings.TrimSpace(cell.Text())
				switch {
				case method == "" && isHTTPMethod(text):
					method = text
				case path == "" && tablePathPattern.MatchString(text):
					path = text
				case text != "":
					rest = append(rest, text)
				}
			})

			if method == "" || path == "" {
				return
			}

			records = append(records, newRecord(method, path, strings.Join(rest, " "), StrategyTable))
		})
	})

	return records
}
