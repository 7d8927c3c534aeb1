package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/domain"
)

// DefaultBaseURL is the NewsAPI v2 endpoint.
const DefaultBaseURL = "https://newsapi.org"

// article is one item from the everything response.
type article struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Author      string    `json:"author"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	URLToImage  string    `json:"urlToImage"`
	PublishedAt time.Time `json:"publishedAt"`
	Content     string    `json:"content"`
}

// everythingResponse is the /v2/everything payload. Error responses
// carry status "error" with a machine-readable code.
type everythingResponse struct {
	Status       string    `json:"status"`
	Code         string    `json:"code"`
	Message      string    `json:"message"`
	TotalResults int       `json:"totalResults"`
	Articles     []article `json:"articles"`
}

// Client is a minimal NewsAPI client authenticating via the X-Api-Key
// header.
type Client struct {
	http    *http.Client
	apiKey  string
	baseURL string
}

// NewClient creates a NewsAPI client.
func NewClient(apiKey string, timeout time.Duration) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
	}
}

// Everything queries the /v2/everything endpoint.
func (c *Client) Everything(ctx context.Context, opts domain.FetchOptions) (*everythingResponse, error) {
	q := url.Values{}
	q.Set("q", opts.Query)
	q.Set("pageSize", strconv.Itoa(opts.MaxResults))
	q.Set("sortBy", "publishedAt")
	if opts.Language != "" {
		q.Set("language", opts.Language)
	}
	if !opts.Since.IsZero() {
		q.Set("from", opts.Since.UTC().Format(time.RFC3339))
	}
	if !opts.Until.IsZero() {
		q.Set("to", opts.Until.UTC().Format(time.RFC3339))
	}
	if domains := opts.Filters["domains"]; domains != "" {
		q.Set("domains", domains)
	}
	return c.get(ctx, "/v2/everything?"+q.Encode())
}

// TopHeadline fetches a single headline. The cheapest real call the
// API offers, used for health probes.
func (c *Client) TopHeadline(ctx context.Context) (*everythingResponse, error) {
	return c.get(ctx, "/v2/top-headlines?pageSize=1&language=en")
}

func (c *Client) get(ctx context.Context, path string) (*everythingResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, domain.NewSourceError(domain.SourceNews, domain.ErrConfig, "build request", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, domain.NewSourceError(domain.SourceNews, domain.ErrNetwork, "request failed", err)
	}
	defer resp.Body.Close()

	var out everythingResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, domain.NewSourceError(domain.SourceNews, domain.ErrAPI,
			fmt.Sprintf("decode response (HTTP %d)", resp.StatusCode), err)
	}

	if resp.StatusCode != http.StatusOK || out.Status == "error" {
		return nil, classify(resp.StatusCode, out.Code, out.Message)
	}
	return &out, nil
}

// classify maps a NewsAPI error response to a SourceError. The API's
// own code string is more precise than the HTTP status.
func classify(status int, code, message string) error {
	msg := fmt.Sprintf("%s: %s (HTTP %d)", code, message, status)

	switch code {
	case "apiKeyInvalid", "apiKeyDisabled", "apiKeyExhausted", "apiKeyMissing":
		return domain.NewSourceError(domain.SourceNews, domain.ErrAuth, msg, nil)
	case "rateLimited":
		return domain.NewSourceError(domain.SourceNews, domain.ErrRateLimit, msg, nil)
	case "parametersMissing", "parameterInvalid", "sourcesTooMany":
		return domain.NewSourceError(domain.SourceNews, domain.ErrValidation, msg, nil)
	}

	switch status {
	case http.StatusUnauthorized:
		return domain.NewSourceError(domain.SourceNews, domain.ErrAuth, msg, nil)
	case http.StatusTooManyRequests:
		return domain.NewSourceError(domain.SourceNews, domain.ErrRateLimit, msg, nil)
	case http.StatusBadRequest:
		return domain.NewSourceError(domain.SourceNews, domain.ErrValidation, msg, nil)
	default:
		return domain.NewSourceError(domain.SourceNews, domain.ErrAPI, msg, nil)
	}
}
