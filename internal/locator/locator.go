// Package locator resolves a company name to a reachable documentation page.
package locator

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/GerritSt/API-discovery-agent/internal/errors"
	"github.com/GerritSt/API-discovery-agent/internal/httpclient"
	"github.com/GerritSt/API-discovery-agent/internal/logger"
	"github.com/GerritSt/API-discovery-agent/internal/metrics"
	"github.com/GerritSt/API-discovery-agent/internal/ratelimit"
)

// apiKeywords are the terms whose presence marks a fetched page as
// documentation rather than an unrelated landing page.
var apiKeywords = []string{"api", "endpoint", "rest", "graphql", "documentation"}

// DocumentationPage is a located documentation page. It is owned by the
// pipeline invocation that produced it and never persisted.
type DocumentationPage struct {
	SourceURL string
	HTML      string
	Title     string
	FetchedAt time.Time
}

// URLSuggester is the optional AI-assisted fallback: given a company name it
// suggests a documentation root URL. The suggestion is untrusted and is
// re-validated with the same probe as pattern-generated candidates.
type URLSuggester interface {
	SuggestDocURL(ctx context.Context, company string) (string, error)
}

// ProbeFilter skips candidate URLs that already failed a probe, for batch
// runs where companies can share hosting. Successful URLs are never filtered;
// a later search for the same company must still reach them.
type ProbeFilter interface {
	HasSeen(url string) bool
	Add(url string)
}

// CandidateSource generates the candidate URLs probed for a company.
type CandidateSource func(company string) []string

// Locator probes candidate URLs for a company's API documentation.
type Locator struct {
	client     *httpclient.Client
	limiter    *ratelimit.Limiter
	suggester  URLSuggester
	filter     ProbeFilter
	collector  *metrics.Collector
	candidates CandidateSource
	log        *logger.Logger
}

// Option configures a Locator.
type Option func(*Locator)

// WithSuggester enables the AI-assisted fallback.
func WithSuggester(s URLSuggester) Option {
	return func(l *Locator) { l.suggester = s }
}

// WithProbeFilter installs a probe deduplication filter.
func WithProbeFilter(f ProbeFilter) Option {
	return func(l *Locator) { l.filter = f }
}

// WithLimiter installs a rate limiter for probes.
func WithLimiter(lim *ratelimit.Limiter) Option {
	return func(l *Locator) { l.limiter = lim }
}

// WithMetrics installs a metrics collector.
func WithMetrics(c *metrics.Collector) Option {
	return func(l *Locator) { l.collector = c }
}

// WithCandidateSource replaces the default pattern-based candidate generator.
func WithCandidateSource(fn CandidateSource) Option {
	return func(l *Locator) { l.candidates = fn }
}

// New creates a Locator.
func New(client *httpclient.Client, log *logger.Logger, opts ...Option) *Locator {
	if log == nil {
		log = logger.Global()
	}
	l := &Locator{
		client:     client,
		candidates: Candidates,
		log:        log.WithComponent("locator"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Locate resolves a company name to its documentation page. Candidates are
// probed in priority order; the first success short-circuits the search.
// Per-candidate network failures are swallowed. When every candidate fails
// and the AI fallback (if configured) yields nothing usable, Locate returns
// errors.ErrNotFound.
func (l *Locator) Locate(ctx context.Context, company string) (*DocumentationPage, error) {
	log := l.log.WithCompany(company)
	log.Info("Searching for API documentation")

	for _, candidate := range l.candidates(company) {
		if ctx.Err() != nil {
			return nil, errors.NewCancelledError(candidate, "locate")
		}

		if l.filter != nil && l.filter.HasSeen(candidate) {
			log.WithURL(candidate).Debug("Candidate already failed, skipping")
			continue
		}

		page, ok := l.probe(ctx, candidate)
		if ok {
			log.WithURL(candidate).Info("Found API documentation")
			return page, nil
		}
	}

	if l.suggester != nil {
		if l.collector != nil {
			l.collector.RecordAILookup()
		}
		if page, ok := l.locateViaSuggestion(ctx, company); ok {
			return page, nil
		}
	}

	log.Warn("Could not find API documentation")
	return nil, errors.ErrNotFound
}

// probe fetches one candidate and decides whether it is usable documentation.
// Failures are logged at debug level and swallowed; the search moves on. Only
// failed candidates enter the filter, so a repeat search for the same company
// still reaches its known-good URL.
func (l *Locator) probe(ctx context.Context, candidate string) (*DocumentationPage, bool) {
	if l.limiter != nil {
		if err := l.limiter.WaitDomain(ctx, hostOf(candidate)); err != nil {
			return nil, false
		}
	}

	result, err := l.client.Get(ctx, candidate)
	if result != nil {
		l.log.ProbeEvent(candidate, result.StatusCode, result.Duration)
		if l.collector != nil {
			l.collector.RecordProbe(result.StatusCode, result.Duration, err != nil)
		}
	}
	if err != nil {
		// A cancelled probe says nothing about the candidate itself.
		if ctx.Err() == nil {
			l.markFailed(candidate)
		}
		l.log.WithURL(candidate).WithError(err).Debug("Candidate unreachable")
		return nil, false
	}

	if !result.IsSuccess() || !result.IsHTML() || result.HTML == "" {
		l.markFailed(candidate)
		return nil, false
	}

	if !looksLikeDocumentation(result.HTML) {
		l.markFailed(candidate)
		l.log.WithURL(candidate).Debug("Page reachable but not documentation")
		return nil, false
	}

	if l.collector != nil {
		l.collector.RecordPageLocated()
	}

	return &DocumentationPage{
		SourceURL: candidate,
		HTML:      result.HTML,
		Title:     result.Title,
		FetchedAt: time.Now(),
	}, true
}

// locateViaSuggestion asks the AI fallback for a documentation URL and
// validates it like any other candidate.
func (l *Locator) locateViaSuggestion(ctx context.Context, company string) (*DocumentationPage, bool) {
	log := l.log.WithCompany(company)
	log.Info("Candidates exhausted, trying AI-assisted lookup")

	suggested, err := l.suggester.SuggestDocURL(ctx, company)
	if err != nil {
		log.WithError(err).Warn("AI lookup failed")
		return nil, false
	}

	suggested = strings.TrimSpace(suggested)
	if !isProbeableURL(suggested) {
		log.WithField("suggestion", suggested).Warn("AI lookup returned unusable URL")
		return nil, false
	}

	page, ok := l.probe(ctx, suggested)
	if ok {
		log.WithURL(suggested).Info("AI-suggested documentation validated")
	}
	return page, ok
}

// markFailed records a candidate that failed its probe.
func (l *Locator) markFailed(candidate string) {
	if l.filter != nil {
		l.filter.Add(candidate)
	}
}

// looksLikeDocumentation checks the page text for API-related keywords.
func looksLikeDocumentation(htmlContent string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return false
	}

	text := strings.ToLower(doc.Text())
	for _, keyword := range apiKeywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// isProbeableURL accepts only absolute http(s) URLs with a host.
func isProbeableURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Host
}
