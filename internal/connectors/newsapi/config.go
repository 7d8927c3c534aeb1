package newsapi

import (
	"fmt"
	"time"

	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/domain"
)

const (
	// CredentialAPIKey is the credentials key for the NewsAPI key.
	CredentialAPIKey = "api_key"

	// MaxResultsCeiling is the everything-endpoint pageSize hard cap.
	MaxResultsCeiling = 100

	// DefaultTimeout bounds a single API call.
	DefaultTimeout = 15 * time.Second

	// DefaultRateLimitPerMinute stays well under the developer-tier
	// daily quota when scheduled hourly.
	DefaultRateLimitPerMinute = 10
)

// Defaults returns the connector's default configuration.
func Defaults() domain.ConnectorConfig {
	return domain.ConnectorConfig{
		MaxResults:         50,
		RateLimitPerMinute: DefaultRateLimitPerMinute,
		Timeout:            DefaultTimeout,
	}
}

func validateConfig(cfg domain.ConnectorConfig) error {
	if cfg.Credential(CredentialAPIKey) == "" {
		return fmt.Errorf("%w: newsapi: missing %s credential",
			domain.ErrInvalidInput, CredentialAPIKey)
	}
	return nil
}
