package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// SchemaVersion is the current Signal schema version, stored on every
// record for forward compatibility.
const SchemaVersion = "1.0"

// SourceType identifies an external content provider.
type SourceType string

const (
	SourceTwitter SourceType = "TWITTER"
	SourceNews    SourceType = "NEWS"
	SourceGitHub  SourceType = "GITHUB"
	SourceYouTube SourceType = "YOUTUBE"
)

// AllSourceTypes returns every known provider tag.
func AllSourceTypes() []SourceType {
	return []SourceType{SourceTwitter, SourceNews, SourceGitHub, SourceYouTube}
}

// ParseSourceType parses a provider tag, case-insensitively.
func ParseSourceType(s string) (SourceType, error) {
	st := SourceType(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AllSourceTypes() {
		if st == known {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSource, s)
}

// ProcessingStatus tracks a signal's position in the enrichment pipeline.
type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "pending"
	StatusProcessing ProcessingStatus = "processing"
	StatusCompleted  ProcessingStatus = "completed"
	StatusError      ProcessingStatus = "error"
)

// Author describes the actor behind a signal.
type Author struct {
	// ID is the provider-assigned account identifier.
	ID string

	// Handle is the account handle (e.g., "@acme").
	Handle string

	// DisplayName is the human-readable name.
	DisplayName string

	// Verified indicates provider-verified status.
	Verified bool

	// Followers is the follower count at collection time.
	Followers int64

	// Following is the following count at collection time.
	Following int64

	// InfluenceScore is a derived 0-100 score, see ComputeInfluence.
	InfluenceScore float64
}

// Engagement holds interaction counts and derived engagement metrics.
type Engagement struct {
	Likes    int64
	Shares   int64
	Comments int64
	Views    int64

	// EngagementRate is interactions per view, 0-100. See ComputeEngagementRate.
	EngagementRate float64

	// ViralityScore is a derived 0-100 spread score. See ComputeVirality.
	ViralityScore float64
}

// Signal is the canonical normalized unit of collected content.
// A Signal is immutable once persisted except for ProcessingStatus and
// refreshed engagement counters, which the store may merge-upsert in place.
type Signal struct {
	// ID is assigned by the store from DedupID. Never random: re-ingesting
	// identical upstream content maps to the same record.
	ID string

	// Source is the provider this signal came from.
	Source SourceType

	// PlatformID is the provider-native item identifier, when one exists.
	PlatformID string

	// OriginalURL is the canonical upstream link.
	OriginalURL string

	// CreatedAt is the upstream publication timestamp.
	CreatedAt time.Time

	// IngestedAt is when this process collected the item.
	IngestedAt time.Time

	// ContentText is the unified text consumed by downstream NLP.
	// For non-text media this is a transcript or caption placeholder.
	ContentText string

	// Title is an optional headline.
	Title string

	// Description is an optional summary.
	Description string

	// MediaURLs lists attached media locations.
	MediaURLs []string

	// Author is the actor behind the content.
	Author Author

	// Engagement holds interaction counts.
	Engagement Engagement

	// RawMetadata preserves the untouched provider payload for reprocessing.
	RawMetadata map[string]any

	// ProcessingStatus tracks downstream enrichment progress.
	ProcessingStatus ProcessingStatus

	// SchemaVersion is the schema version this record was written with.
	SchemaVersion string
}

// DedupID derives the deterministic content identifier used for idempotent
// upsert: sha256 over source, platform id (or original URL when the provider
// has no stable id), and the upstream timestamp.
func (s *Signal) DedupID() string {
	key := s.PlatformID
	if key == "" {
		key = s.OriginalURL
	}
	h := sha256.Sum256(fmt.Appendf(nil, "%s|%s|%d", s.Source, key, s.CreatedAt.UTC().Unix()))
	return hex.EncodeToString(h[:])
}

// Validate checks the minimal shape every connector must produce.
func (s *Signal) Validate() error {
	if s.Source == "" {
		return fmt.Errorf("%w: signal source is empty", ErrInvalidInput)
	}
	if s.PlatformID == "" && s.OriginalURL == "" {
		return fmt.Errorf("%w: signal needs a platform id or original url", ErrInvalidInput)
	}
	if s.ContentText == "" {
		return fmt.Errorf("%w: signal content text is empty", ErrInvalidInput)
	}
	return nil
}

// ComputeInfluence derives a 0-100 author influence score from audience
// size and verification. The scale is logarithmic so nano and mega
// accounts remain comparable.
func ComputeInfluence(a Author) float64 {
	score := 0.0
	// ~10 points per order of magnitude of followers, capped at 80.
	followers := a.Followers
	for followers >= 10 && score < 80 {
		followers /= 10
		score += 10
	}
	if a.Verified {
		score += 15
	}
	// Healthy follower/following ratio adds up to 5.
	if a.Following > 0 && a.Followers > a.Following*2 {
		score += 5
	}
	if score > 100 {
		score = 100
	}
	return score
}

// ComputeEngagementRate derives interactions-per-view as a 0-100 percentage.
// Returns 0 when view counts are unavailable.
func ComputeEngagementRate(e Engagement) float64 {
	if e.Views <= 0 {
		return 0
	}
	rate := float64(e.Likes+e.Shares+e.Comments) / float64(e.Views) * 100
	if rate > 100 {
		rate = 100
	}
	return rate
}

// ComputeVirality derives a 0-100 spread score weighted towards shares,
// the strongest amplification action.
func ComputeVirality(e Engagement) float64 {
	weighted := float64(e.Shares)*3 + float64(e.Comments)*2 + float64(e.Likes)
	score := 0.0
	for weighted >= 10 && score < 100 {
		weighted /= 10
		score += 20
	}
	return score
}
