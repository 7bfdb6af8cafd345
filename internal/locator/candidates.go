package locator

import (
	"fmt"
	"strings"
	"unicode"
)

// candidateTemplates holds the guessed documentation URL patterns in priority
// order. Order matters: the search stops at the first reachable candidate.
var candidateTemplates = []string{
	"https://api.%s.com",
	"https://developer.%s.com",
	"https://docs.%s.com",
	"https://%s.com/api",
	"https://%s.com/docs",
	"https://%s.com/developers",
	"https://www.%s.com/api",
}

// NormalizeCompany lowercases the company name and strips everything that is
// not a letter or digit, so "Acme Corp." becomes "acmecorp".
func NormalizeCompany(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Candidates returns the candidate documentation URLs for a company name, in
// the fixed priority order.
func Candidates(company string) []string {
	normalized := NormalizeCompany(company)
	if normalized == "" {
		return nil
	}

	urls := make([]string, 0, len(candidateTemplates))
	for _, tmpl := range candidateTemplates {
		urls = append(urls, fmt.Sprintf(tmpl, normalized))
	}
	return urls
}
