package locator

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/GerritSt/API-discovery-agent/internal/cache"
	"github.com/GerritSt/API-discovery-agent/internal/errors"
	"github.com/GerritSt/API-discovery-agent/internal/httpclient"
)

const docsBody = `<html><head><title>Test API Docs</title></head>
<body><h1>API Documentation</h1><pre>GET /v1/things</pre></body></html>`

const landingBody = `<html><head><title>Welcome</title></head>
<body><h1>We sell shoes</h1></body></html>`

func newTestClient() *httpclient.Client {
	cfg := httpclient.DefaultConfig()
	cfg.Timeout = 5 * time.Second
	return httpclient.New(cfg)
}

func fixedCandidates(urls ...string) CandidateSource {
	return func(string) []string { return urls }
}

func TestLocateFirstSuccessShortCircuits(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		switch r.URL.Path {
		case "/docs":
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, docsBody)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := newTestClient()
	defer client.Close()

	l := New(client, nil, WithCandidateSource(fixedCandidates(
		server.URL+"/missing",
		server.URL+"/docs",
		server.URL+"/never-reached",
	)))

	page, err := l.Locate(context.Background(), "testco")
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}

	if page.SourceURL != server.URL+"/docs" {
		t.Errorf("got source URL %q, want %q", page.SourceURL, server.URL+"/docs")
	}
	if page.Title != "Test API Docs" {
		t.Errorf("got title %q, want %q", page.Title, "Test API Docs")
	}
	if n := atomic.LoadInt32(&hits); n != 2 {
		t.Errorf("server hit %d times, want 2 (search must stop at first success)", n)
	}
}

func TestLocateExhaustedReturnsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := newTestClient()
	defer client.Close()

	l := New(client, nil, WithCandidateSource(fixedCandidates(
		server.URL+"/a",
		server.URL+"/b",
	)))

	_, err := l.Locate(context.Background(), "testco")
	if !errors.IsNotFound(err) {
		t.Errorf("got error %v, want ErrNotFound", err)
	}
}

func TestLocateRejectsNonDocumentationPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, landingBody)
	}))
	defer server.Close()

	client := newTestClient()
	defer client.Close()

	l := New(client, nil, WithCandidateSource(fixedCandidates(server.URL+"/")))

	_, err := l.Locate(context.Background(), "testco")
	if !errors.IsNotFound(err) {
		t.Errorf("got error %v, want ErrNotFound for a page without API keywords", err)
	}
}

func TestLocateRejectsNonHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		fmt.Fprint(w, "%PDF-1.4 api documentation")
	}))
	defer server.Close()

	client := newTestClient()
	defer client.Close()

	l := New(client, nil, WithCandidateSource(fixedCandidates(server.URL+"/")))

	_, err := l.Locate(context.Background(), "testco")
	if !errors.IsNotFound(err) {
		t.Errorf("got error %v, want ErrNotFound for non-HTML content", err)
	}
}

type stubSuggester struct {
	url string
	err error
}

func (s *stubSuggester) SuggestDocURL(ctx context.Context, company string) (string, error) {
	return s.url, s.err
}

func TestLocateAIFallbackValidated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/hidden-docs" {
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, docsBody)
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := newTestClient()
	defer client.Close()

	l := New(client, nil,
		WithCandidateSource(fixedCandidates(server.URL+"/nope")),
		WithSuggester(&stubSuggester{url: server.URL + "/hidden-docs"}),
	)

	page, err := l.Locate(context.Background(), "testco")
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if page.SourceURL != server.URL+"/hidden-docs" {
		t.Errorf("got source URL %q, want AI-suggested URL", page.SourceURL)
	}
}

func TestLocateAIFallbackBadSuggestion(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	client := newTestClient()
	defer client.Close()

	tests := []struct {
		name      string
		suggester URLSuggester
	}{
		{"suggester error", &stubSuggester{err: fmt.Errorf("model unavailable")}},
		{"relative url", &stubSuggester{url: "/not-absolute"}},
		{"empty url", &stubSuggester{url: ""}},
		{"unreachable url", &stubSuggester{url: server.URL + "/gone"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(client, nil,
				WithCandidateSource(fixedCandidates(server.URL+"/nope")),
				WithSuggester(tt.suggester),
			)

			_, err := l.Locate(context.Background(), "testco")
			if !errors.IsNotFound(err) {
				t.Errorf("got error %v, want ErrNotFound", err)
			}
		})
	}
}

type recordingFilter struct {
	seen map[string]bool
}

func (f *recordingFilter) HasSeen(url string) bool { return f.seen[url] }
func (f *recordingFilter) Add(url string)          { f.seen[url] = true }

func TestLocateSkipsFilteredCandidates(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := newTestClient()
	defer client.Close()

	filter := &recordingFilter{seen: map[string]bool{server.URL + "/a": true}}
	l := New(client, nil,
		WithCandidateSource(fixedCandidates(server.URL+"/a", server.URL+"/b")),
		WithProbeFilter(filter),
	)

	l.Locate(context.Background(), "testco")

	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("server hit %d times, want 1 (filtered candidate must be skipped)", n)
	}
	if !filter.seen[server.URL+"/b"] {
		t.Error("failed candidate was not recorded in the filter")
	}
}

func TestLocateFilterRecordsOnlyFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/docs" {
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, docsBody)
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := newTestClient()
	defer client.Close()

	filter := &recordingFilter{seen: map[string]bool{}}
	l := New(client, nil,
		WithCandidateSource(fixedCandidates(server.URL+"/missing", server.URL+"/docs")),
		WithProbeFilter(filter),
	)

	if _, err := l.Locate(context.Background(), "testco"); err != nil {
		t.Fatalf("Locate failed: %v", err)
	}

	if !filter.seen[server.URL+"/missing"] {
		t.Error("failed candidate was not recorded in the filter")
	}
	if filter.seen[server.URL+"/docs"] {
		t.Error("successful candidate was recorded in the filter; a later run would skip it")
	}
}

func TestLocateRepeatSameCompany(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, docsBody)
	}))
	defer server.Close()

	client := newTestClient()
	defer client.Close()

	// Same filter the agent installs for batch runs.
	l := New(client, nil,
		WithCandidateSource(fixedCandidates(server.URL+"/docs")),
		WithProbeFilter(cache.NewProbeDeduplicator(1000)),
	)

	for run := 1; run <= 2; run++ {
		page, err := l.Locate(context.Background(), "testco")
		if err != nil {
			t.Fatalf("Locate run %d failed: %v", run, err)
		}
		if page.SourceURL != server.URL+"/docs" {
			t.Errorf("run %d: got source URL %q, want %q", run, page.SourceURL, server.URL+"/docs")
		}
	}
}

func TestLocateCancelledContext(t *testing.T) {
	client := newTestClient()
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := New(client, nil, WithCandidateSource(fixedCandidates("http://127.0.0.1:1/x")))

	_, err := l.Locate(ctx, "testco")
	if err == nil {
		t.Fatal("Locate succeeded with cancelled context")
	}
	if errors.GetErrorType(err) != errors.Cancelled {
		t.Errorf("got error type %v, want Cancelled", errors.GetErrorType(err))
	}
}

func TestLooksLikeDocumentation(t *testing.T) {
	tests := []struct {
		name string
		html string
		want bool
	}{
		{"api keyword", "<p>Our API is great</p>", true},
		{"endpoint keyword", "<p>List of endpoints</p>", true},
		{"graphql keyword", "<p>GraphQL schema</p>", true},
		{"no keywords", "<p>We sell shoes</p>", false},
		{"keyword in title", "<title>REST reference</title>", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := looksLikeDocumentation(tt.html); got != tt.want {
				t.Errorf("looksLikeDocumentation = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsProbeableURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://docs.example.com", true},
		{"http://docs.example.com/api", true},
		{"ftp://example.com", false},
		{"/relative/path", false},
		{"", false},
		{"not a url at all", false},
	}

	for _, tt := range tests {
		if got := isProbeableURL(tt.url); got != tt.want {
			t.Errorf("isProbeableURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}
