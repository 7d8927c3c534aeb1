package twitter

import (
	"fmt"
	"time"

	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/domain"
)

const (
	// CredentialBearerToken is the credentials key for the API v2
	// app-only bearer token.
	CredentialBearerToken = "bearer_token"

	// MaxResultsCeiling is the recent-search per-request hard cap.
	MaxResultsCeiling = 100

	// minResultsFloor is the API's minimum max_results value.
	minResultsFloor = 10

	// DefaultTimeout bounds a single API call.
	DefaultTimeout = 15 * time.Second

	// DefaultRateLimitPerMinute matches the recent-search app quota of
	// 450 requests per 15 minutes.
	DefaultRateLimitPerMinute = 30
)

// Defaults returns the connector's default configuration. Credentials
// are always injected by the caller.
func Defaults() domain.ConnectorConfig {
	return domain.ConnectorConfig{
		MaxResults:         50,
		RateLimitPerMinute: DefaultRateLimitPerMinute,
		Timeout:            DefaultTimeout,
	}
}

// validateConfig checks required credentials and parameter bounds.
func validateConfig(cfg domain.ConnectorConfig) error {
	if cfg.Credential(CredentialBearerToken) == "" {
		return fmt.Errorf("%w: twitter: missing %s credential",
			domain.ErrInvalidInput, CredentialBearerToken)
	}
	if cfg.MaxResults < 0 {
		return fmt.Errorf("%w: twitter: negative max results", domain.ErrInvalidInput)
	}
	return nil
}
