package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/domain"
)

// DefaultBaseURL is the Twitter API v2 endpoint.
const DefaultBaseURL = "https://api.twitter.com"

const (
	headerRateRemaining = "x-rate-limit-remaining"
	headerRateReset     = "x-rate-limit-reset"
)

// tweet is one item from the recent-search response.
type tweet struct {
	ID            string    `json:"id"`
	Text          string    `json:"text"`
	CreatedAt     time.Time `json:"created_at"`
	AuthorID      string    `json:"author_id"`
	Lang          string    `json:"lang"`
	PublicMetrics struct {
		RetweetCount    int64 `json:"retweet_count"`
		ReplyCount      int64 `json:"reply_count"`
		LikeCount       int64 `json:"like_count"`
		QuoteCount      int64 `json:"quote_count"`
		ImpressionCount int64 `json:"impression_count"`
	} `json:"public_metrics"`
}

// user is one expanded author object.
type user struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Name          string `json:"name"`
	Verified      bool   `json:"verified"`
	PublicMetrics struct {
		FollowersCount int64 `json:"followers_count"`
		FollowingCount int64 `json:"following_count"`
	} `json:"public_metrics"`
}

// searchResponse is the recent-search endpoint payload.
type searchResponse struct {
	Data     []tweet `json:"data"`
	Includes struct {
		Users []user `json:"users"`
	} `json:"includes"`
	Meta struct {
		ResultCount int    `json:"result_count"`
		NextToken   string `json:"next_token"`
	} `json:"meta"`
	Errors []struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

// Client is a minimal Twitter API v2 search client.
type Client struct {
	http    *http.Client
	baseURL string

	mu sync.Mutex
	// rateRemaining is the last quota the API reported, -1 when unknown.
	rateRemaining int
}

// NewClient creates a client authenticated with an app-only bearer token.
func NewClient(token string, timeout time.Duration) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	hc := oauth2.NewClient(context.Background(), ts)
	hc.Timeout = timeout
	return &Client{
		http:          hc,
		baseURL:       DefaultBaseURL,
		rateRemaining: -1,
	}
}

// SearchRecent queries the recent-search endpoint.
func (c *Client) SearchRecent(ctx context.Context, opts domain.FetchOptions, pageToken string) (*searchResponse, error) {
	q := url.Values{}
	q.Set("query", opts.Query)
	q.Set("max_results", strconv.Itoa(boundResults(opts.MaxResults)))
	q.Set("tweet.fields", "created_at,public_metrics,lang,author_id")
	q.Set("expansions", "author_id")
	q.Set("user.fields", "username,name,verified,public_metrics")
	if !opts.Since.IsZero() {
		q.Set("start_time", opts.Since.UTC().Format(time.RFC3339))
	}
	if !opts.Until.IsZero() {
		q.Set("end_time", opts.Until.UTC().Format(time.RFC3339))
	}
	if pageToken != "" {
		q.Set("next_token", pageToken)
	}

	var out searchResponse
	if err := c.get(ctx, "/2/tweets/search/recent?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// get performs one GET and decodes the response, classifying failures.
func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return domain.NewSourceError(domain.SourceTwitter, domain.ErrConfig, "build request", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.NewSourceError(domain.SourceTwitter, domain.ErrNetwork, "request failed", err)
	}
	defer resp.Body.Close()

	if remaining := resp.Header.Get(headerRateRemaining); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			c.mu.Lock()
			c.rateRemaining = val
			c.mu.Unlock()
		}
	}

	if resp.StatusCode != http.StatusOK {
		return c.classifyStatus(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.NewSourceError(domain.SourceTwitter, domain.ErrAPI, "decode response", err)
	}
	return nil
}

// classifyStatus maps an error response to a SourceError.
func (c *Client) classifyStatus(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(body))

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.NewSourceError(domain.SourceTwitter, domain.ErrAuth, msg, nil)
	case http.StatusTooManyRequests:
		se := domain.NewSourceError(domain.SourceTwitter, domain.ErrRateLimit, msg, nil)
		// x-rate-limit-reset is a Unix timestamp.
		if reset := resp.Header.Get(headerRateReset); reset != "" {
			if ts, err := strconv.ParseInt(reset, 10, 64); err == nil {
				if until := time.Until(time.Unix(ts, 0)); until > 0 {
					se.RetryAfter = until
				}
			}
		}
		return se
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return domain.NewSourceError(domain.SourceTwitter, domain.ErrValidation, msg, nil)
	default:
		return domain.NewSourceError(domain.SourceTwitter, domain.ErrAPI, msg, nil)
	}
}

// RateRemaining returns the provider-reported remaining quota, -1 when
// no response has carried the header yet.
func (c *Client) RateRemaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rateRemaining
}

// boundResults clamps to the API's accepted max_results range.
func boundResults(n int) int {
	if n < minResultsFloor {
		return minResultsFloor
	}
	if n > MaxResultsCeiling {
		return MaxResultsCeiling
	}
	return n
}
