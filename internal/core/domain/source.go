package domain

import (
	"fmt"
	"time"
)

// ConnectorConfig holds the injected per-connector settings.
// Credentials and limits come from the configuration surface; the engine
// consumes them but does not own their format.
type ConnectorConfig struct {
	// Credentials holds provider secrets (bearer token, API key).
	Credentials map[string]string

	// MaxResults is the default per-fetch item cap. Providers clamp this
	// to their own hard ceiling.
	MaxResults int

	// RateLimitPerMinute bounds calls to the provider per minute.
	RateLimitPerMinute int

	// Timeout bounds a single fetch call.
	Timeout time.Duration

	// Extra carries provider-specific settings (language, endpoints).
	Extra map[string]string
}

// Credential returns a named credential or empty string.
func (c ConnectorConfig) Credential(key string) string {
	return c.Credentials[key]
}

// Merge overlays non-zero fields of other onto a copy of c.
// Used by UpdateConfig to apply partial updates.
func (c ConnectorConfig) Merge(other ConnectorConfig) ConnectorConfig {
	out := c
	if len(other.Credentials) > 0 {
		merged := make(map[string]string, len(c.Credentials)+len(other.Credentials))
		for k, v := range c.Credentials {
			merged[k] = v
		}
		for k, v := range other.Credentials {
			merged[k] = v
		}
		out.Credentials = merged
	}
	if other.MaxResults > 0 {
		out.MaxResults = other.MaxResults
	}
	if other.RateLimitPerMinute > 0 {
		out.RateLimitPerMinute = other.RateLimitPerMinute
	}
	if other.Timeout > 0 {
		out.Timeout = other.Timeout
	}
	if len(other.Extra) > 0 {
		merged := make(map[string]string, len(c.Extra)+len(other.Extra))
		for k, v := range c.Extra {
			merged[k] = v
		}
		for k, v := range other.Extra {
			merged[k] = v
		}
		out.Extra = merged
	}
	return out
}

// FetchOptions parameterizes one connector fetch.
type FetchOptions struct {
	// Query is the search expression. Required, non-empty.
	Query string

	// MaxResults caps returned items. Must be positive; providers clamp
	// it to their own ceiling.
	MaxResults int

	// Since restricts results to items published after this time.
	Since time.Time

	// Until restricts results to items published before this time.
	Until time.Time

	// Language is an optional BCP-47 language filter.
	Language string

	// Filters carries provider-specific filter settings.
	Filters map[string]string
}

// Validate checks the options every connector requires.
func (o FetchOptions) Validate() error {
	if o.Query == "" {
		return fmt.Errorf("%w: query is required", ErrInvalidInput)
	}
	if o.MaxResults <= 0 {
		return fmt.Errorf("%w: max results must be positive", ErrInvalidInput)
	}
	return nil
}

// Clamp returns a copy with MaxResults bounded by the provider ceiling.
func (o FetchOptions) Clamp(ceiling int) FetchOptions {
	if o.MaxResults > ceiling {
		o.MaxResults = ceiling
	}
	return o
}

// FetchError records one per-item mapping failure inside a fetch.
// Mapping failures never abort the fetch; they are collected here while
// successfully mapped items are still returned.
type FetchError struct {
	ItemID  string
	Message string
	At      time.Time
}

// FetchResult is the outcome of one connector fetch operation.
type FetchResult struct {
	Signals    []Signal
	TotalFound int
	Processed  int
	Failed     int
	Duration   time.Duration
	Errors     []FetchError

	// NextPageToken continues pagination when the provider supports it.
	NextPageToken string
}

// ConnectorHealth is the result of a connector health probe.
// Probes never fail with an error; failures are captured here.
type ConnectorHealth struct {
	Source    SourceType
	IsHealthy bool
	Message   string
	Latency   time.Duration

	// LastSuccessfulCheck is when the connector last probed healthy.
	LastSuccessfulCheck time.Time

	// RateLimitRemaining is the provider-reported remaining quota,
	// -1 when the provider does not report one.
	RateLimitRemaining int
}
