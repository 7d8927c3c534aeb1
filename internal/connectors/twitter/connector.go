package twitter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/domain"
	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/ports/driven"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Connector fetches signals from the Twitter API v2 recent-search
// endpoint. Safe for concurrent FetchSignals calls.
type Connector struct {
	mu     sync.Mutex
	cfg    domain.ConnectorConfig
	client *Client
	closed bool

	lastHealthy time.Time
}

// New creates a Twitter connector from its configuration.
func New(cfg domain.ConnectorConfig) (*Connector, error) {
	cfg = Defaults().Merge(cfg)
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return &Connector{
		cfg:    cfg,
		client: NewClient(cfg.Credential(CredentialBearerToken), cfg.Timeout),
	}, nil
}

// Source returns the provider tag this connector serves.
func (c *Connector) Source() domain.SourceType {
	return domain.SourceTwitter
}

// ValidateConfig checks required credentials and parameter bounds.
func (c *Connector) ValidateConfig() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return validateConfig(c.cfg)
}

// FetchSignals queries recent tweets matching the options and maps each
// to a Signal. Per-tweet mapping failures are collected in the result.
func (c *Connector) FetchSignals(ctx context.Context, opts domain.FetchOptions) (*domain.FetchResult, error) {
	client, err := c.snapshot()
	if err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, domain.NewSourceError(domain.SourceTwitter, domain.ErrValidation, err.Error(), nil)
	}
	opts = opts.Clamp(MaxResultsCeiling)

	start := time.Now()
	resp, err := client.SearchRecent(ctx, opts, "")
	if err != nil {
		return nil, err
	}

	users := make(map[string]user, len(resp.Includes.Users))
	for _, u := range resp.Includes.Users {
		users[u.ID] = u
	}

	result := &domain.FetchResult{
		TotalFound:    resp.Meta.ResultCount,
		NextPageToken: resp.Meta.NextToken,
	}
	ingested := time.Now().UTC()

	for _, tw := range resp.Data {
		signal, err := mapTweet(tw, users, ingested, opts.Language)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, domain.FetchError{
				ItemID:  tw.ID,
				Message: err.Error(),
				At:      time.Now(),
			})
			continue
		}
		if signal == nil {
			// Filtered out, not a failure.
			continue
		}
		result.Signals = append(result.Signals, *signal)
		result.Processed++
	}

	result.Duration = time.Since(start)
	return result, nil
}

// mapTweet converts one tweet plus its expanded author into a Signal.
// Returns (nil, nil) when the tweet is filtered out by language.
func mapTweet(tw tweet, users map[string]user, ingested time.Time, language string) (*domain.Signal, error) {
	if tw.ID == "" {
		return nil, fmt.Errorf("tweet without id")
	}
	if tw.CreatedAt.IsZero() {
		return nil, fmt.Errorf("tweet %s missing created_at", tw.ID)
	}
	if language != "" && tw.Lang != "" && tw.Lang != language {
		return nil, nil
	}

	author := domain.Author{ID: tw.AuthorID}
	if u, ok := users[tw.AuthorID]; ok {
		author.Handle = "@" + u.Username
		author.DisplayName = u.Name
		author.Verified = u.Verified
		author.Followers = u.PublicMetrics.FollowersCount
		author.Following = u.PublicMetrics.FollowingCount
	}
	author.InfluenceScore = domain.ComputeInfluence(author)

	engagement := domain.Engagement{
		Likes:    tw.PublicMetrics.LikeCount,
		Shares:   tw.PublicMetrics.RetweetCount + tw.PublicMetrics.QuoteCount,
		Comments: tw.PublicMetrics.ReplyCount,
		Views:    tw.PublicMetrics.ImpressionCount,
	}
	engagement.EngagementRate = domain.ComputeEngagementRate(engagement)
	engagement.ViralityScore = domain.ComputeVirality(engagement)

	signal := &domain.Signal{
		Source:           domain.SourceTwitter,
		PlatformID:       tw.ID,
		OriginalURL:      fmt.Sprintf("https://twitter.com/i/web/status/%s", tw.ID),
		CreatedAt:        tw.CreatedAt.UTC(),
		IngestedAt:       ingested,
		ContentText:      tw.Text,
		Author:           author,
		Engagement:       engagement,
		RawMetadata:      map[string]any{"lang": tw.Lang},
		ProcessingStatus: domain.StatusPending,
		SchemaVersion:    domain.SchemaVersion,
	}
	signal.ID = signal.DedupID()
	return signal, nil
}

// HealthCheck performs a minimal recent-search call to assert live
// connectivity. Failures are captured in the returned structure.
func (c *Connector) HealthCheck(ctx context.Context) domain.ConnectorHealth {
	health := domain.ConnectorHealth{
		Source:             domain.SourceTwitter,
		RateLimitRemaining: -1,
	}

	client, err := c.snapshot()
	if err != nil {
		health.Message = err.Error()
		return health
	}

	start := time.Now()
	_, err = client.SearchRecent(ctx, domain.FetchOptions{Query: "a", MaxResults: minResultsFloor}, "")
	health.Latency = time.Since(start)
	health.RateLimitRemaining = client.RateRemaining()

	if err != nil {
		health.Message = err.Error()
		return health
	}

	health.IsHealthy = true
	c.mu.Lock()
	c.lastHealthy = time.Now()
	health.LastSuccessfulCheck = c.lastHealthy
	c.mu.Unlock()
	return health
}

// UpdateConfig applies a partial configuration update. The merged config
// is validated before the swap.
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
	c.client = NewClient(merged.Credential(CredentialBearerToken), merged.Timeout)
	return nil
}

// Close releases resources. Further calls fail with ErrConnectorClosed.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return domain.ErrConnectorClosed
	}
	c.closed = true
	return nil
}

// snapshot returns the current client, failing when closed.
func (c *Connector) snapshot() (*Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, domain.ErrConnectorClosed
	}
	return c.client, nil
}
