package driving

import (
	"context"

	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/domain"
	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/ports/driven"
)

// ConnectorRegistry is the single source of truth mapping source
// identifiers to live, shared connector instances.
type ConnectorRegistry interface {
	// Register adds or overrides a catalogue entry.
	Register(reg driven.ConnectorRegistration)

	// GetConnector returns the cached instance for a source, building it
	// on first use. forceNew bypasses and replaces the cache entry.
	GetConnector(source domain.SourceType, forceNew bool) (driven.Connector, error)

	// GetMultipleConnectors resolves several sources best-effort. With
	// continueOnError false, the first failure aborts and the returned
	// error aggregates everything seen so far.
	GetMultipleConnectors(sources []domain.SourceType, continueOnError bool) (map[domain.SourceType]driven.Connector, error)

	// FetchFromAllSources fans a fetch out across enabled connectors,
	// in parallel by default (each wrapped in a timeout) or sequentially.
	FetchFromAllSources(ctx context.Context, opts domain.BatchFetchOptions) *domain.BatchFetchResult

	// HealthCheckAll probes every enabled connector concurrently.
	HealthCheckAll(ctx context.Context) map[domain.SourceType]domain.ConnectorHealth

	// Sources lists every registered source and its enabled flag.
	Sources() map[domain.SourceType]bool

	// CloseAll shuts down and evicts every cached connector.
	CloseAll() error
}
