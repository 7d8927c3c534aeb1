package driving

import (
	"context"

	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/domain"
)

// OverallHealth is the orchestrator's aggregate health verdict.
type OverallHealth struct {
	Healthy bool
	Store   bool
	Monitor domain.HealthStatus
	Message string
}

// Orchestrator coordinates fetch, persist and health reporting.
// It is the only component allowed to call the registry, the store and
// the health monitor together.
type Orchestrator interface {
	// Initialize prepares the orchestrator. Idempotent: returns
	// immediately when already initialized.
	Initialize(ctx context.Context) error

	// RunIngestionCycle runs one fetch-then-persist cycle for a single
	// source/query pair. Expected failures (unknown source, fetch
	// rejection, save failures) come back inside the result, never as a
	// bare error; the returned error is reserved for context cancellation.
	RunIngestionCycle(ctx context.Context, source domain.SourceType, query string, opts domain.CycleOptions) *domain.IngestionResult

	// RunBatchIngestion launches one cycle per config concurrently.
	// One source's failure never cancels the others.
	RunBatchIngestion(ctx context.Context, configs []domain.CycleConfig) *domain.BatchIngestionResult

	// HealthCheck aggregates store connectivity and monitor liveness.
	HealthCheck(ctx context.Context) OverallHealth

	// GetHealthStats returns the monitor's cumulative snapshot.
	GetHealthStats() domain.HealthSnapshot

	// GetHealthMetrics returns derived metrics, computed on demand.
	GetHealthMetrics() domain.HealthMetrics

	// GetExecutionHistory returns up to limit most recent runs.
	GetExecutionHistory(limit int) []domain.ExecutionRecord

	// GenerateSystemReport renders a human-readable operational report.
	GenerateSystemReport() string

	// Shutdown emits a final report and releases cached connectors.
	Shutdown(ctx context.Context) error
}
