package cli

import (
	"context"
	"time"

	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/domain"
	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/ports/driven"
	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/ports/driving"
)

// stubOrchestrator implements driving.Orchestrator for command tests.
type stubOrchestrator struct {
	initErr     error
	cycleResult *domain.IngestionResult
	batchResult *domain.BatchIngestionResult
	health      driving.OverallHealth
	history     []domain.ExecutionRecord
	report      string

	cycleCalls []domain.SourceType
}

func (s *stubOrchestrator) Initialize(context.Context) error { return s.initErr }

func (s *stubOrchestrator) RunIngestionCycle(_ context.Context, source domain.SourceType, query string, _ domain.CycleOptions) *domain.IngestionResult {
	s.cycleCalls = append(s.cycleCalls, source)
	if s.cycleResult != nil {
		return s.cycleResult
	}
	return &domain.IngestionResult{
		Source:       source,
		Query:        query,
		SignalsFound: 3,
		SignalsSaved: 3,
		Duration:     20 * time.Millisecond,
		Success:      true,
	}
}

func (s *stubOrchestrator) RunBatchIngestion(context.Context, []domain.CycleConfig) *domain.BatchIngestionResult {
	if s.batchResult != nil {
		return s.batchResult
	}
	return &domain.BatchIngestionResult{}
}

func (s *stubOrchestrator) HealthCheck(context.Context) driving.OverallHealth { return s.health }

func (s *stubOrchestrator) GetHealthStats() domain.HealthSnapshot { return domain.HealthSnapshot{} }

func (s *stubOrchestrator) GetHealthMetrics() domain.HealthMetrics { return domain.HealthMetrics{} }

func (s *stubOrchestrator) GetExecutionHistory(limit int) []domain.ExecutionRecord {
	if limit < len(s.history) {
		return s.history[:limit]
	}
	return s.history
}

func (s *stubOrchestrator) GenerateSystemReport() string { return s.report }

func (s *stubOrchestrator) Shutdown(context.Context) error { return nil }

// stubRegistry implements driving.ConnectorRegistry for command tests.
type stubRegistry struct {
	sources map[domain.SourceType]bool
	probes  map[domain.SourceType]domain.ConnectorHealth
}

func (s *stubRegistry) Register(driven.ConnectorRegistration) {}

func (s *stubRegistry) GetConnector(domain.SourceType, bool) (driven.Connector, error) {
	return nil, domain.ErrUnknownSource
}

func (s *stubRegistry) GetMultipleConnectors([]domain.SourceType, bool) (map[domain.SourceType]driven.Connector, error) {
	return nil, nil
}

func (s *stubRegistry) FetchFromAllSources(context.Context, domain.BatchFetchOptions) *domain.BatchFetchResult {
	return &domain.BatchFetchResult{}
}

func (s *stubRegistry) HealthCheckAll(context.Context) map[domain.SourceType]domain.ConnectorHealth {
	return s.probes
}

func (s *stubRegistry) Sources() map[domain.SourceType]bool { return s.sources }
func (s *stubRegistry) CloseAll() error                     { return nil }

// withServices swaps in stub services for one test.
func withServices(orch driving.Orchestrator, reg driving.ConnectorRegistry) func() {
	prevOrch, prevReg := orchestrator, registry
	orchestrator, registry = orch, reg
	return func() {
		orchestrator, registry = prevOrch, prevReg
	}
}
