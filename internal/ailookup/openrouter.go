// Package ailookup asks an OpenRouter-hosted model where a company's API
// documentation lives and what its main endpoints are. The model's answer is
// untrusted input: URLs it suggests are re-validated by the locator, and
// endpoint lists it reports are tagged and merged after extraction, never
// inside the core pipeline.
package ailookup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kaptinlin/jsonrepair"
	"github.com/ysmood/gson"

	"github.com/GerritSt/API-discovery-agent/internal/errors"
	"github.com/GerritSt/API-discovery-agent/internal/logger"
)

const (
	defaultBaseURL = "https://openrouter.ai/api/v1"
	defaultModel   = "deepseek/deepseek-chat-v3.1:free"

	completionsEndpoint = "/chat/completions"
)

// CompanyAPI is the structured answer the model is asked to produce.
type CompanyAPI struct {
	CompanyName      string         `json:"company_name"`
	HasAPI           bool           `json:"has_api"`
	APIType          string         `json:"api_type"`
	BaseURL          string         `json:"base_url"`
	DocumentationURL string         `json:"documentation_url"`
	Endpoints        []EndpointInfo `json:"endpoints"`
}

// EndpointInfo is one endpoint as reported by the model.
type EndpointInfo struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

// Client calls the OpenRouter chat-completions API.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	retrier *errors.Retrier
	log     *logger.Logger
}

// Option configures the client.
type Option func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithModel overrides the model identifier.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) { c.client = client }
}

// WithRetryConfig sets the retry policy for completion requests.
func WithRetryConfig(cfg errors.RetryConfig) Option {
	return func(c *Client) { c.retrier = errors.NewRetrier(cfg) }
}

// New creates a client. The API key is required; everything else defaults.
func New(apiKey string, log *logger.Logger, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("ailookup: API key is not set")
	}
	if log == nil {
		log = logger.Global()
	}

	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		model:   defaultModel,
		client:  &http.Client{Timeout: 60 * time.Second},
		retrier: errors.NewRetrier(errors.NoRetryConfig()),
		log:     log.WithComponent("ailookup"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const systemPrompt = "You are an expert at finding API documentation. " +
	"Provide accurate, current URLs. Respond only with valid JSON."

func userPrompt(company string) string {
	return fmt.Sprintf(`Find the actual API endpoints for %[1]s's public API. I need:
1. Does the company have a public API? (Yes/No)
2. The URL of the public API documentation
3. A list of the main API endpoints with their HTTP methods, paths, and descriptions
4. API type (REST, GraphQL, SOAP, etc.)
5. Base URL for the API

Respond ONLY with valid JSON in this exact format:
{
    "company_name": "%[1]s",
    "has_api": true,
    "api_type": "REST",
    "base_url": "https://api.example.com/v1",
    "documentation_url": "https://docs.example.com/api",
    "endpoints": [
        {"method": "GET", "path": "/users", "description": "Retrieve list of users"},
        {"method": "POST", "path": "/users", "description": "Create a new user"}
    ]
}

Provide at least 10-15 of the most important/commonly used endpoints if available.
If no public API exists, set has_api to false and use empty strings/arrays.`, company)
}

// SearchCompanyAPI asks the model about a company's public API.
func (c *Client) SearchCompanyAPI(ctx context.Context, company string) (*CompanyAPI, error) {
	log := c.log.WithCompany(company)
	log.Info("Querying model for API information")

	var content string
	retryResult := c.retrier.Do(ctx, "ai_lookup", c.baseURL, func(ctx context.Context) error {
		var err error
		content, err = c.complete(ctx, company)
		return err
	})
	if !retryResult.Success {
		return nil, retryResult.LastError
	}

	result, err := decodeCompanyAPI(content)
	if err != nil {
		return nil, errors.NewParseError(c.baseURL, "ai_response_decode", err)
	}
	if result.CompanyName == "" {
		result.CompanyName = company
	}

	log.WithField("endpoints", len(result.Endpoints)).Info("Model answered")
	return result, nil
}

// SuggestDocURL implements the locator's URLSuggester: it returns the model's
// best guess for the documentation root.
func (c *Client) SuggestDocURL(ctx context.Context, company string) (string, error) {
	result, err := c.SearchCompanyAPI(ctx, company)
	if err != nil {
		return "", err
	}
	if !result.HasAPI {
		return "", fmt.Errorf("ailookup: model reports no public API for %q", company)
	}
	if result.DocumentationURL != "" {
		return result.DocumentationURL, nil
	}
	return result.BaseURL, nil
}

// complete performs one chat-completions round trip and returns the raw
// message content.
func (c *Client) complete(ctx context.Context, company string) (string, error) {
	reqBody, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt(company)},
		},
	})
	if err != nil {
		return "", err
	}

	url := c.baseURL + completionsEndpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("HTTP-Referer", "https://github.com/GerritSt/API-discovery-agent")
	req.Header.Set("X-Title", "API Discovery Agent")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", errors.Categorize(err, url)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2*1024*1024))
	if err != nil {
		return "", errors.NewNetworkError(url, "body_read", err)
	}

	if httpErr := errors.CategorizeHTTPStatus(resp.StatusCode, url); httpErr != nil {
		return "", httpErr
	}

	content := gson.NewFrom(string(body)).Get("choices.0.message.content").Str()
	if content == "" {
		return "", fmt.Errorf("ailookup: empty completion from %s", c.model)
	}

	return content, nil
}

// decodeCompanyAPI turns the model's message into a CompanyAPI. Models wrap
// JSON in markdown fences and produce slightly broken JSON often enough that
// both are handled here.
func decodeCompanyAPI(content string) (*CompanyAPI, error) {
	content = stripFences(content)

	var result CompanyAPI
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(content)
		if repairErr != nil {
			return nil, fmt.Errorf("unmarshal failed (%w) and repair failed (%v)", err, repairErr)
		}
		if err := json.Unmarshal([]byte(repaired), &result); err != nil {
			return nil, fmt.Errorf("unmarshal of repaired JSON failed: %w", err)
		}
	}
	return &result, nil
}

// stripFences removes a surrounding ```json ... ``` (or plain ```) block.
func stripFences(content string) string {
	content = strings.TrimSpace(content)

	if idx := strings.Index(content, "```json"); idx != -1 {
		content = content[idx+len("```json"):]
	} else if idx := strings.Index(content, "```"); idx != -1 {
		content = content[idx+len("```"):]
	} else {
		return content
	}

	if end := strings.Index(content, "```"); end != -1 {
		content = content[:end]
	}
	return strings.TrimSpace(content)
}
