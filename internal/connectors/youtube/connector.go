package youtube

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/domain"
	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/ports/driven"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Connector fetches signals from the YouTube Data API v3. A video's
// description stands in for transcript text until caption retrieval is
// wired; the content is still searchable and scorable.
type Connector struct {
	mu     sync.Mutex
	cfg    domain.ConnectorConfig
	svc    *yt.Service
	closed bool

	lastHealthy time.Time

	// endpoint overrides the API base URL in tests.
	endpoint string
}

// New creates a YouTube connector from its configuration.
func New(cfg domain.ConnectorConfig) (*Connector, error) {
	cfg = Defaults().Merge(cfg)
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	c := &Connector{cfg: cfg}
	svc, err := c.newService(cfg)
	if err != nil {
		return nil, fmt.Errorf("youtube service: %w", err)
	}
	c.svc = svc
	return c, nil
}

func (c *Connector) newService(cfg domain.ConnectorConfig) (*yt.Service, error) {
	opts := []option.ClientOption{option.WithAPIKey(cfg.Credential(CredentialAPIKey))}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}
	return yt.NewService(context.Background(), opts...)
}

// Source returns the provider tag this connector serves.
func (c *Connector) Source() domain.SourceType {
	return domain.SourceYouTube
}

// ValidateConfig checks required credentials.
func (c *Connector) ValidateConfig() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return validateConfig(c.cfg)
}

// FetchSignals searches videos matching the options, fetches their
// statistics, and maps each to a Signal.
func (c *Connector) FetchSignals(ctx context.Context, opts domain.FetchOptions) (*domain.FetchResult, error) {
	svc, err := c.snapshot()
	if err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, domain.NewSourceError(domain.SourceYouTube, domain.ErrValidation, err.Error(), nil)
	}
	opts = opts.Clamp(MaxResultsCeiling)

	start := time.Now()

	call := svc.Search.List([]string{"id", "snippet"}).
		Context(ctx).
		Q(opts.Query).
		Type("video").
		Order("date").
		MaxResults(int64(opts.MaxResults))
	if !opts.Since.IsZero() {
		call = call.PublishedAfter(opts.Since.UTC().Format(time.RFC3339))
	}
	if !opts.Until.IsZero() {
		call = call.PublishedBefore(opts.Until.UTC().Format(time.RFC3339))
	}
	if opts.Language != "" {
		call = call.RelevanceLanguage(opts.Language)
	}

	searchRes, err := call.Do()
	if err != nil {
		return nil, wrapError(err)
	}

	result := &domain.FetchResult{
		NextPageToken: searchRes.NextPageToken,
	}
	if searchRes.PageInfo != nil {
		result.TotalFound = int(searchRes.PageInfo.TotalResults)
	}

	ids := make([]string, 0, len(searchRes.Items))
	for _, item := range searchRes.Items {
		if item.Id != nil && item.Id.VideoId != "" {
			ids = append(ids, item.Id.VideoId)
		}
	}

	stats, err := c.fetchStatistics(ctx, svc, ids)
	if err != nil {
		// Statistics are enrichment; mapping proceeds without them.
		stats = nil
	}

	ingested := time.Now().UTC()
	for _, item := range searchRes.Items {
		signal, err := mapVideo(item, stats, ingested)
		if err != nil {
			result.Failed++
			itemID := ""
			if item.Id != nil {
				itemID = item.Id.VideoId
			}
			result.Errors = append(result.Errors, domain.FetchError{
				ItemID:  itemID,
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

// fetchStatistics loads per-video counters for a batch of ids.
func (c *Connector) fetchStatistics(ctx context.Context, svc *yt.Service, ids []string) (map[string]*yt.VideoStatistics, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	res, err := svc.Videos.List([]string{"statistics"}).Context(ctx).Id(ids...).Do()
	if err != nil {
		return nil, wrapError(err)
	}

	out := make(map[string]*yt.VideoStatistics, len(res.Items))
	for _, v := range res.Items {
		out[v.Id] = v.Statistics
	}
	return out, nil
}

// mapVideo converts one search hit plus its statistics into a Signal.
func mapVideo(item *yt.SearchResult, stats map[string]*yt.VideoStatistics, ingested time.Time) (*domain.Signal, error) {
	if item.Id == nil || item.Id.VideoId == "" {
		return nil, fmt.Errorf("search hit without video id")
	}
	if item.Snippet == nil {
		return nil, fmt.Errorf("video %s missing snippet", item.Id.VideoId)
	}

	createdAt, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
	if err != nil {
		return nil, fmt.Errorf("video %s invalid publishedAt: %w", item.Id.VideoId, err)
	}

	// Description as transcript placeholder.
	content := item.Snippet.Title
	if item.Snippet.Description != "" {
		content += "\n\n" + item.Snippet.Description
	}

	author := domain.Author{
		ID:          item.Snippet.ChannelId,
		DisplayName: item.Snippet.ChannelTitle,
	}
	author.InfluenceScore = domain.ComputeInfluence(author)

	var engagement domain.Engagement
	if s := stats[item.Id.VideoId]; s != nil {
		engagement.Likes = int64(s.LikeCount)
		engagement.Comments = int64(s.CommentCount)
		engagement.Views = int64(s.ViewCount)
	}
	engagement.EngagementRate = domain.ComputeEngagementRate(engagement)
	engagement.ViralityScore = domain.ComputeVirality(engagement)

	signal := &domain.Signal{
		Source:           domain.SourceYouTube,
		PlatformID:       item.Id.VideoId,
		OriginalURL:      "https://www.youtube.com/watch?v=" + item.Id.VideoId,
		CreatedAt:        createdAt.UTC(),
		IngestedAt:       ingested,
		ContentText:      content,
		Title:            item.Snippet.Title,
		Description:      item.Snippet.Description,
		Author:           author,
		Engagement:       engagement,
		ProcessingStatus: domain.StatusPending,
		SchemaVersion:    domain.SchemaVersion,
	}
	if item.Snippet.Thumbnails != nil && item.Snippet.Thumbnails.High != nil {
		signal.MediaURLs = []string{item.Snippet.Thumbnails.High.Url}
	}
	signal.ID = signal.DedupID()
	return signal, nil
}

// wrapError converts googleapi errors to SourceErrors.
func wrapError(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return domain.NewSourceError(domain.SourceYouTube, domain.ErrNetwork, "request failed", err)
	}

	msg := fmt.Sprintf("HTTP %d: %s", apiErr.Code, apiErr.Message)
	for _, item := range apiErr.Errors {
		switch item.Reason {
		case "quotaExceeded", "rateLimitExceeded", "dailyLimitExceeded", "userRateLimitExceeded":
			return domain.NewSourceError(domain.SourceYouTube, domain.ErrRateLimit, msg, err)
		}
	}

	switch apiErr.Code {
	case 401, 403:
		return domain.NewSourceError(domain.SourceYouTube, domain.ErrAuth, msg, err)
	case 400:
		return domain.NewSourceError(domain.SourceYouTube, domain.ErrValidation, msg, err)
	case 429:
		return domain.NewSourceError(domain.SourceYouTube, domain.ErrRateLimit, msg, err)
	default:
		return domain.NewSourceError(domain.SourceYouTube, domain.ErrAPI, msg, err)
	}
}

// HealthCheck lists video categories, the cheapest real quota-counted
// call the API offers (1 unit versus 100 for a search).
func (c *Connector) HealthCheck(ctx context.Context) domain.ConnectorHealth {
	health := domain.ConnectorHealth{
		Source:             domain.SourceYouTube,
		RateLimitRemaining: -1,
	}

	svc, err := c.snapshot()
	if err != nil {
		health.Message = err.Error()
		return health
	}

	start := time.Now()
	_, err = svc.VideoCategories.List([]string{"snippet"}).Context(ctx).RegionCode("US").Do()
	health.Latency = time.Since(start)

	if err != nil {
		health.Message = wrapError(err).Error()
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
	svc, err := c.newService(merged)
	if err != nil {
		return fmt.Errorf("youtube service: %w", err)
	}
	c.cfg = merged
	c.svc = svc
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

func (c *Connector) snapshot() (*yt.Service, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, domain.ErrConnectorClosed
	}
	return c.svc, nil
}
