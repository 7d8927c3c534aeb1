package driven

import (
	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/domain"
)

// ConfigStore exposes the injected configuration surface: provider
// credentials, per-connector limits and scheduler task definitions.
// The engine consumes these values but does not own their format.
type ConfigStore interface {
	// ConnectorConfig returns the configured settings for a source,
	// or the given defaults when the source is not configured.
	ConnectorConfig(source domain.SourceType, defaults domain.ConnectorConfig) domain.ConnectorConfig

	// SchedulerConfig returns the task catalogue.
	SchedulerConfig() domain.SchedulerConfig

	// Subscribe registers a callback invoked after the backing file
	// changes and has been reloaded. Optional: implementations without
	// change detection may ignore the callback.
	Subscribe(fn func())

	// Close stops any background watching.
	Close() error
}
