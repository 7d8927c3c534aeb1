package memory

import (
	"sync"

	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/domain"
	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore is an in-memory implementation of driven.ConfigStore.
// Values are set programmatically; SetConnectorConfig notifies
// subscribers the way a file reload would.
type ConfigStore struct {
	mu        sync.RWMutex
	conns     map[domain.SourceType]domain.ConnectorConfig
	scheduler domain.SchedulerConfig
	subs      []func()
}

// NewConfigStore creates an empty in-memory config store with the
// default scheduler catalogue.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{
		conns:     make(map[domain.SourceType]domain.ConnectorConfig),
		scheduler: domain.DefaultSchedulerConfig(),
	}
}

// ConnectorConfig returns the configured settings for a source merged
// over the given defaults, or the defaults alone when unset.
func (s *ConfigStore) ConnectorConfig(source domain.SourceType, defaults domain.ConnectorConfig) domain.ConnectorConfig {
	s.mu.RLock()
	cfg, ok := s.conns[source]
	s.mu.RUnlock()
	if !ok {
		return defaults
	}
	return defaults.Merge(cfg)
}

// SetConnectorConfig stores settings for a source and notifies subscribers.
func (s *ConfigStore) SetConnectorConfig(source domain.SourceType, cfg domain.ConnectorConfig) {
	s.mu.Lock()
	s.conns[source] = cfg
	subs := make([]func(), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

// SchedulerConfig returns the task catalogue.
func (s *ConfigStore) SchedulerConfig() domain.SchedulerConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scheduler
}

// SetSchedulerConfig replaces the task catalogue.
func (s *ConfigStore) SetSchedulerConfig(cfg domain.SchedulerConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduler = cfg
}

// Subscribe registers a change callback.
func (s *ConfigStore) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Close is a no-op for the in-memory store.
func (s *ConfigStore) Close() error {
	return nil
}
