package github

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/domain"
	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/ports/driven"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Connector fetches signals from the GitHub issue search API. Issues and
// pull request threads mentioning the query terms are high-intent
// developer signals; reactions and comment counts stand in for
// engagement.
type Connector struct {
	mu      sync.Mutex
	cfg     domain.ConnectorConfig
	gh      *gh.Client
	limiter *RateLimiter
	closed  bool

	lastHealthy time.Time
}

// New creates a GitHub connector from its configuration.
func New(cfg domain.ConnectorConfig) (*Connector, error) {
	cfg = Defaults().Merge(cfg)
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return &Connector{
		cfg:     cfg,
		gh:      newAPIClient(cfg),
		limiter: NewRateLimiter(),
	}, nil
}

// newAPIClient builds an authenticated go-github client.
func newAPIClient(cfg domain.ConnectorConfig) *gh.Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Credential(CredentialToken)})
	hc := oauth2.NewClient(context.Background(), ts)
	hc.Timeout = cfg.Timeout
	return gh.NewClient(hc)
}

// Source returns the provider tag this connector serves.
func (c *Connector) Source() domain.SourceType {
	return domain.SourceGitHub
}

// ValidateConfig checks required credentials.
func (c *Connector) ValidateConfig() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return validateConfig(c.cfg)
}

// FetchSignals searches issues matching the options and maps each to a
// Signal.
func (c *Connector) FetchSignals(ctx context.Context, opts domain.FetchOptions) (*domain.FetchResult, error) {
	client, err := c.snapshot()
	if err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, domain.NewSourceError(domain.SourceGitHub, domain.ErrValidation, err.Error(), nil)
	}
	opts = opts.Clamp(MaxResultsCeiling)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, domain.NewSourceError(domain.SourceGitHub, domain.ErrTimeout, "rate limit wait", err)
	}

	start := time.Now()
	searchOpts := &gh.SearchOptions{
		Sort:        "created",
		Order:       "desc",
		ListOptions: gh.ListOptions{PerPage: opts.MaxResults},
	}

	found, resp, err := client.Search.Issues(ctx, buildQuery(opts), searchOpts)
	if resp != nil {
		c.limiter.UpdateFromResponse(resp.Response)
	}
	if err != nil {
		return nil, wrapError(err)
	}

	result := &domain.FetchResult{TotalFound: found.GetTotal()}
	ingested := time.Now().UTC()

	for _, issue := range found.Issues {
		signal, err := mapIssue(issue, ingested)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, domain.FetchError{
				ItemID:  strconv.FormatInt(issue.GetID(), 10),
				Message: err.Error(),
				At:      time.Now(),
			})
			continue
		}
		result.Signals = append(result.Signals, *signal)
		result.Processed++
	}

	result.Duration = time.Since(start)
	return result, nil
}

// buildQuery composes the search expression, bounding the date range
// with search qualifiers when requested.
func buildQuery(opts domain.FetchOptions) string {
	q := opts.Query
	if !opts.Since.IsZero() {
		q += " created:>=" + opts.Since.UTC().Format("2006-01-02")
	}
	if !opts.Until.IsZero() {
		q += " created:<=" + opts.Until.UTC().Format("2006-01-02")
	}
	if lang := opts.Filters["repo_language"]; lang != "" {
		q += " language:" + lang
	}
	return q
}

// mapIssue converts one search hit into a Signal.
func mapIssue(issue *gh.Issue, ingested time.Time) (*domain.Signal, error) {
	if issue.GetID() == 0 {
		return nil, fmt.Errorf("issue without id")
	}
	if issue.CreatedAt == nil {
		return nil, fmt.Errorf("issue %d missing created_at", issue.GetID())
	}

	content := issue.GetTitle()
	if body := issue.GetBody(); body != "" {
		content += "\n\n" + body
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("issue %d has no text content", issue.GetID())
	}

	author := domain.Author{
		ID:     strconv.FormatInt(issue.GetUser().GetID(), 10),
		Handle: issue.GetUser().GetLogin(),
	}
	author.InfluenceScore = domain.ComputeInfluence(author)

	engagement := domain.Engagement{
		Likes:    int64(issue.GetReactions().GetTotalCount()),
		Comments: int64(issue.GetComments()),
	}
	engagement.ViralityScore = domain.ComputeVirality(engagement)

	signal := &domain.Signal{
		Source:           domain.SourceGitHub,
		PlatformID:       strconv.FormatInt(issue.GetID(), 10),
		OriginalURL:      issue.GetHTMLURL(),
		CreatedAt:        issue.GetCreatedAt().UTC(),
		IngestedAt:       ingested,
		ContentText:      content,
		Title:            issue.GetTitle(),
		Author:           author,
		Engagement:       engagement,
		ProcessingStatus: domain.StatusPending,
		SchemaVersion:    domain.SchemaVersion,
	}
	signal.ID = signal.DedupID()
	return signal, nil
}

// wrapError converts go-github errors to SourceErrors.
func wrapError(err error) error {
	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) {
		se := domain.NewSourceError(domain.SourceGitHub, domain.ErrRateLimit, "search quota exhausted", err)
		if until := time.Until(rateErr.Rate.Reset.Time); until > 0 {
			se.RetryAfter = until
		}
		return se
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		se := domain.NewSourceError(domain.SourceGitHub, domain.ErrRateLimit, "secondary rate limit", err)
		if abuseErr.RetryAfter != nil {
			se.RetryAfter = *abuseErr.RetryAfter
		}
		return se
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		msg := fmt.Sprintf("HTTP %d: %s", ghErr.Response.StatusCode, ghErr.Message)
		switch ghErr.Response.StatusCode {
		case 401, 403:
			return domain.NewSourceError(domain.SourceGitHub, domain.ErrAuth, msg, err)
		case 404:
			return domain.NewSourceError(domain.SourceGitHub, domain.ErrNotFoundKind, msg, err)
		case 422:
			return domain.NewSourceError(domain.SourceGitHub, domain.ErrValidation, msg, err)
		default:
			return domain.NewSourceError(domain.SourceGitHub, domain.ErrAPI, msg, err)
		}
	}

	return domain.NewSourceError(domain.SourceGitHub, domain.ErrNetwork, "request failed", err)
}

// HealthCheck queries the rate-limit endpoint, which is free and does
// not count against any quota.
func (c *Connector) HealthCheck(ctx context.Context) domain.ConnectorHealth {
	health := domain.ConnectorHealth{
		Source:             domain.SourceGitHub,
		RateLimitRemaining: -1,
	}

	client, err := c.snapshot()
	if err != nil {
		health.Message = err.Error()
		return health
	}

	start := time.Now()
	limits, _, err := client.RateLimit.Get(ctx)
	health.Latency = time.Since(start)

	if err != nil {
		health.Message = wrapError(err).Error()
		return health
	}

	if search := limits.GetSearch(); search != nil {
		health.RateLimitRemaining = search.Remaining
	}
	health.IsHealthy = true
	c.mu.Lock()
	c.lastHealthy = time.Now()
	health.LastSuccessfulCheck = c.lastHealthy
	c.mu.Unlock()
	return health
}

// UpdateConfig applies a partial configuration update.
func (c *Connector) UpdateConfig(partial domain.ConnectorConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return domain.ErrConnectorClosed
	}
	merged := c.cfg.Merge(partial)
	if err := validateConfig(merged); err != nil {
		return err
	}
	c.cfg = merged
	c.gh = newAPIClient(merged)
	return nil
}

// Close releases resources.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return domain.ErrConnectorClosed
	}
	c.closed = true
	return nil
}

func (c *Connector) snapshot() (*gh.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, domain.ErrConnectorClosed
	}
	return c.gh, nil
}
