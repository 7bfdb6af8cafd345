package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// methodPathPattern matches "METHOD /path" inside code samples. Paths follow
// the usual documentation shape: segments, dashes, {param} placeholders and
// :param markers.
var methodPathPattern = regexp.MustCompile(`(?i)\b(GET|POST|PUT|PATCH|DELETE|HEAD|OPTIONS)\s+(/[\w\-/{}:.]*)`)

// extractFromCodeBlocks scans pre/code blocks for literal endpoint lines.
// Code samples are the most direct signal a docs page offers, so this
// strategy runs first.
func extractFromCodeBlocks(doc *goquery.Document) []Record {
	records := make([]Record, 0)

	doc.Find("pre, code").Each(func(_ int, block *goquery.Selection) {
		text := block.Text()
		matches := methodPathPattern.FindAllStringSubmatch(text, -1)
		if len(matches) == 0 {
			return
		}

		description := describeBlock(block)
		for _, m := range matches {
			if !isPathToken(m[2]) {
				continue
			}
			records = append(records, newRecord(m[1], m[2], description, StrategyCodeBlock))
		}
	})

	return records
}

// describeBlock derives a description from the markup around a code block:
// the nearest preceding heading if one exists, otherwise the parent's text.
func describeBlock(block *goquery.Selection) string {
	if heading := block.PrevAllFiltered("h1, h2, h3, h4, h5, h6").First(); heading.Length() > 0 {
		return strings.TrimSpace(heading.Text())
	}
	parent := block.Parent()
	if parent.Length() == 0 {
		return ""
	}
	text := strings.TrimSpace(parent.Text())
	// A parent that is just the code block itself adds nothing.
	if text == strings.TrimSpace(block.Text()) {
		return ""
	}
	return text
}
