package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/domain"
)

func TestConnectorConfigReturnsDefaultsWhenUnset(t *testing.T) {
	store := NewConfigStore()
	defaults := domain.ConnectorConfig{MaxResults: 25, Timeout: 10 * time.Second}

	cfg := store.ConnectorConfig(domain.SourceTwitter, defaults)
	assert.Equal(t, defaults, cfg)
}

func TestConnectorConfigMergesOverDefaults(t *testing.T) {
	store := NewConfigStore()
	store.SetConnectorConfig(domain.SourceTwitter, domain.ConnectorConfig{
		Credentials: map[string]string{"bearer_token": "tok"},
		MaxResults:  50,
	})

	cfg := store.ConnectorConfig(domain.SourceTwitter,
		domain.ConnectorConfig{MaxResults: 25, Timeout: 10 * time.Second})
	assert.Equal(t, 50, cfg.MaxResults)
	assert.Equal(t, 10*time.Second, cfg.Timeout, "unset fields keep defaults")
	assert.Equal(t, "tok", cfg.Credential("bearer_token"))
}

func TestSetConnectorConfigNotifiesSubscribers(t *testing.T) {
	store := NewConfigStore()
	notified := 0
	store.Subscribe(func() { notified++ })

	store.SetConnectorConfig(domain.SourceNews, domain.ConnectorConfig{MaxResults: 10})
	assert.Equal(t, 1, notified)
}

func TestSchedulerConfigDefaultsAndOverride(t *testing.T) {
	store := NewConfigStore()
	assert.True(t, store.SchedulerConfig().Enabled)
	assert.NotEmpty(t, store.SchedulerConfig().Tasks)

	store.SetSchedulerConfig(domain.SchedulerConfig{Enabled: false})
	assert.False(t, store.SchedulerConfig().Enabled)
	assert.NoError(t, store.Close())
}
