// Package httpclient provides the HTTP client used to probe candidate
// documentation URLs and fetch pages.
package httpclient

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/GerritSt/API-discovery-agent/internal/errors"
)

// Client is a tuned HTTP client for documentation fetching.
type Client struct {
	client    *http.Client
	userAgent string
	headers   map[string]string
}

// Config holds configuration for the HTTP client.
type Config struct {
	Timeout             time.Duration
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	MaxConnsPerHost     int
	UserAgent           string
	Headers             map[string]string
	SkipTLSVerify       bool
}

// DefaultConfig returns defaults matching a single-company discovery run.
func DefaultConfig() Config {
	return Config{
		Timeout:             10 * time.Second,
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     10,
		UserAgent:           "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		SkipTLSVerify:       false,
	}
}

// New creates a new HTTP client.
func New(config Config) *Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          config.MaxIdleConns,
		MaxIdleConnsPerHost:   config.MaxIdleConnsPerHost,
		MaxConnsPerHost:       config.MaxConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: config.SkipTLSVerify,
		},
	}

	return &Client{
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		userAgent: config.UserAgent,
		headers:   config.Headers,
	}
}

// FetchResult contains the result of fetching a candidate URL.
type FetchResult struct {
	URL         string
	FinalURL    string
	StatusCode  int
	ContentType string
	HTML        string
	Title       string
	Duration    time.Duration
}

// IsHTML reports whether the response looked like an HTML or text document.
func (r *FetchResult) IsHTML() bool {
	return strings.Contains(r.ContentType, "text/html") ||
		strings.Contains(r.ContentType, "application/xhtml") ||
		strings.Contains(r.ContentType, "text/plain")
}

// IsSuccess reports whether the response status was 2xx.
func (r *FetchResult) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Get performs an HTTP GET request and reads the body if it is HTML-like.
func (c *Client) Get(ctx context.Context, targetURL string) (*FetchResult, error) {
	start := time.Now()
	result := &FetchResult{URL: targetURL}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return result, errors.New(errors.Parse, targetURL, "request_creation", "failed to create request", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Connection", "keep-alive")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return result, errors.Categorize(err, targetURL)
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode
	result.FinalURL = resp.Request.URL.String()
	result.ContentType = resp.Header.Get("Content-Type")
	result.Duration = time.Since(start)

	if httpErr := errors.CategorizeHTTPStatus(resp.StatusCode, targetURL); httpErr != nil {
		return result, httpErr
	}

	if !result.IsHTML() {
		return result, nil
	}

	// Read body with limit (5MB max)
	body, err := io.ReadAll(io.LimitReader(resp.Body, 5*1024*1024))
	if err != nil {
		return result, errors.NewNetworkError(targetURL, "body_read", err)
	}
	result.HTML = string(body)
	result.Title = extractTitle(result.HTML)
	result.Duration = time.Since(start)

	return result, nil
}

// Head performs an HTTP HEAD request, returning status and content type.
func (c *Client) Head(ctx context.Context, targetURL string) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, targetURL, nil)
	if err != nil {
		return 0, "", errors.New(errors.Parse, targetURL, "request_creation", "failed to create request", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, "", errors.Categorize(err, targetURL)
	}
	resp.Body.Close()

	return resp.StatusCode, resp.Header.Get("Content-Type"), nil
}

// extractTitle pulls the <title> text out of an HTML document. A page that
// fails to parse simply has no title.
func extractTitle(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}

	var title string
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if title != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil {
				title = strings.TrimSpace(n.FirstChild.Data)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)

	return title
}

// Close closes idle connections.
func (c *Client) Close() {
	c.client.CloseIdleConnections()
}
