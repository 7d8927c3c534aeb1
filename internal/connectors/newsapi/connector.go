package newsapi

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

// Connector fetches signals from the NewsAPI everything endpoint.
// News articles carry no engagement counters; those fields stay zero and
// influence comes from the publication acting as the author.
type Connector struct {
	mu     sync.Mutex
	cfg    domain.ConnectorConfig
	client *Client
	closed bool

	lastHealthy time.Time
}

// New creates a NewsAPI connector from its configuration.
func New(cfg domain.ConnectorConfig) (*Connector, error) {
	cfg = Defaults().Merge(cfg)
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return &Connector{
		cfg:    cfg,
		client: NewClient(cfg.Credential(CredentialAPIKey), cfg.Timeout),
	}, nil
}

// Source returns the provider tag this connector serves.
func (c *Connector) Source() domain.SourceType {
	return domain.SourceNews
}

// ValidateConfig checks required credentials.
func (c *Connector) ValidateConfig() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return validateConfig(c.cfg)
}

// FetchSignals queries articles matching the options and maps each to a
// Signal.
func (c *Connector) FetchSignals(ctx context.Context, opts domain.FetchOptions) (*domain.FetchResult, error) {
	client, err := c.snapshot()
	if err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, domain.NewSourceError(domain.SourceNews, domain.ErrValidation, err.Error(), nil)
	}
	opts = opts.Clamp(MaxResultsCeiling)

	start := time.Now()
	resp, err := client.Everything(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &domain.FetchResult{TotalFound: resp.TotalResults}
	ingested := time.Now().UTC()

	for _, a := range resp.Articles {
		signal, err := mapArticle(a, ingested)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, domain.FetchError{
				ItemID:  a.URL,
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

// mapArticle converts one article into a Signal. Articles have no stable
// platform id; the canonical URL identifies them.
func mapArticle(a article, ingested time.Time) (*domain.Signal, error) {
	if a.URL == "" {
		return nil, fmt.Errorf("article without url")
	}
	if a.PublishedAt.IsZero() {
		return nil, fmt.Errorf("article %s missing publishedAt", a.URL)
	}

	content := a.Content
	if content == "" {
		content = a.Description
	}
	if content == "" {
		content = a.Title
	}
	if content == "" {
		return nil, fmt.Errorf("article %s has no text content", a.URL)
	}

	author := domain.Author{
		Handle:      a.Author,
		DisplayName: a.Source.Name,
	}
	if author.DisplayName == "" {
		author.DisplayName = a.Author
	}

	signal := &domain.Signal{
		Source:           domain.SourceNews,
		OriginalURL:      a.URL,
		CreatedAt:        a.PublishedAt.UTC(),
		IngestedAt:       ingested,
		ContentText:      content,
		Title:            a.Title,
		Description:      a.Description,
		Author:           author,
		ProcessingStatus: domain.StatusPending,
		SchemaVersion:    domain.SchemaVersion,
	}
	if a.URLToImage != "" {
		signal.MediaURLs = []string{a.URLToImage}
	}
	signal.ID = signal.DedupID()
	return signal, nil
}

// HealthCheck fetches a single top headline to assert live connectivity.
func (c *Connector) HealthCheck(ctx context.Context) domain.ConnectorHealth {
	health := domain.ConnectorHealth{
		Source:             domain.SourceNews,
		RateLimitRemaining: -1,
	}

	client, err := c.snapshot()
	if err != nil {
		health.Message = err.Error()
		return health
	}

	start := time.Now()
	_, err = client.TopHeadline(ctx)
	health.Latency = time.Since(start)

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
	c.client = NewClient(merged.Credential(CredentialAPIKey), merged.Timeout)
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

func (c *Connector) snapshot() (*Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, domain.ErrConnectorClosed
	}
	return c.client, nil
}
