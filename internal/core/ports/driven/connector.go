package driven

import (
	"context"

	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/domain"
)

// Connector fetches signals from one external content source.
// Each provider (twitter, newsapi, github, youtube) implements this
// interface so the orchestrator never branches on source type.
//
// Connector instances are cached in the registry and shared across
// concurrent cycles: implementations must be safe for concurrent
// FetchSignals calls and must not keep cycle-scoped mutable state.
type Connector interface {
	// Source returns the provider tag this connector serves.
	Source() domain.SourceType

	// FetchSignals fetches items matching the options and maps each to a
	// Signal. Per-item mapping failures become FetchResult.Errors entries
	// while successfully mapped items are still returned; only
	// whole-operation failures (auth, network, rate limit) return an
	// error, classified as a domain.SourceError.
	FetchSignals(ctx context.Context, opts domain.FetchOptions) (*domain.FetchResult, error)

	// ValidateConfig checks required credentials and parameter bounds.
	// Pure: performs no I/O.
	ValidateConfig() error

	// HealthCheck performs the cheapest possible real call to the
	// provider to assert live connectivity. Never returns an error;
	// failures are captured in the returned structure.
	HealthCheck(ctx context.Context) domain.ConnectorHealth

	// UpdateConfig applies a partial configuration update. The merged
	// config is validated before the swap; an invalid result is rejected
	// and the previous config stays in effect.
	UpdateConfig(partial domain.ConnectorConfig) error

	// Close releases resources. Further calls fail with ErrConnectorClosed.
	Close() error
}

// ConnectorBuilder constructs a connector from its configuration.
type ConnectorBuilder func(cfg domain.ConnectorConfig) (Connector, error)

// ConnectorRegistration is a static catalogue entry binding a source type
// to a constructible connector. Created at process start, read-only after.
type ConnectorRegistration struct {
	// Source is the provider tag this registration serves.
	Source domain.SourceType

	// Build constructs the connector.
	Build ConnectorBuilder

	// Enabled gates instantiation; disabled sources fail GetConnector.
	Enabled bool

	// Defaults is the configuration used for first creation.
	Defaults domain.ConnectorConfig
}

// ConnectorFactory builds connectors from the registration catalogue.
type ConnectorFactory interface {
	// Register adds a registration. Re-registering a source overrides the
	// previous entry and is logged as a warning.
	Register(reg ConnectorRegistration)

	// Create builds a fresh connector for the source with its defaults.
	// Returns domain.ErrUnknownSource or domain.ErrSourceDisabled.
	Create(source domain.SourceType) (Connector, error)

	// Registration returns the catalogue entry for a source.
	Registration(source domain.SourceType) (*ConnectorRegistration, error)

	// SupportedSources returns all registered source types.
	SupportedSources() []domain.SourceType
}
