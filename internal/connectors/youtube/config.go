package youtube

import (
	"fmt"
	"time"

	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/domain"
)

const (
	// CredentialAPIKey is the credentials key for the Data API v3 key.
	CredentialAPIKey = "api_key"

	// MaxResultsCeiling is the search endpoint per-request hard cap.
	MaxResultsCeiling = 50

	// DefaultTimeout bounds a single API call.
	DefaultTimeout = 20 * time.Second

	// DefaultRateLimitPerMinute keeps the 100-unit search cost inside
	// the 10k daily quota when scheduled continuously.
	DefaultRateLimitPerMinute = 4
)

// Defaults returns the connector's default configuration.
func Defaults() domain.ConnectorConfig {
	return domain.ConnectorConfig{
		MaxResults:         25,
		RateLimitPerMinute: DefaultRateLimitPerMinute,
		Timeout:            DefaultTimeout,
	}
}

func validateConfig(cfg domain.ConnectorConfig) error {
	if cfg.Credential(CredentialAPIKey) == "" {
		return fmt.Errorf("%w: youtube: missing %s credential",
			domain.ErrInvalidInput, CredentialAPIKey)
	}
	return nil
}
