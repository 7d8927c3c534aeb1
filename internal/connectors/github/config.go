package github

import (
	"fmt"
	"time"

	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/domain"
)

const (
	// CredentialToken is the credentials key for the access token
	// (PAT or OAuth token).
	CredentialToken = "token"

	// MaxResultsCeiling is the search API per-page hard cap.
	MaxResultsCeiling = 100

	// DefaultTimeout bounds a single API call.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimitPerMinute matches the authenticated search API
	// quota of 30 requests per minute.
	DefaultRateLimitPerMinute = 30
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
	if cfg.Credential(CredentialToken) == "" {
		return fmt.Errorf("%w: github: missing %s credential",
			domain.ErrInvalidInput, CredentialToken)
	}
	return nil
}
