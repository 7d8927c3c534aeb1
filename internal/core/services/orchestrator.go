package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/domain"
	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/ports/driven"
	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/ports/driving"
	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/logger"
)

// DefaultMaxResults is the per-cycle fetch cap when the caller names none.
const DefaultMaxResults = 50

// Ensure IngestionOrchestrator implements the interface.
var _ driving.Orchestrator = (*IngestionOrchestrator)(nil)

// IngestionOrchestrator coordinates fetch, persist and health reporting.
// It is the only component that calls the registry, the store and the
// health monitor together, and it owns the cycle protocol:
//
//  1. StartRun before any I/O.
//  2. Resolve the connector; failure is a fetch-step error.
//  3. Fetch, rate-limited per provider with backoff on rate-limit errors.
//  4. Upsert each signal; per-item failures are counted, strict mode
//     aborts on the first one. Upserts already issued when a strict
//     cycle aborts stay committed; there is no compensating rollback
//     (the idempotent store makes a retried cycle converge).
//  5. EndRun with the saved count.
type IngestionOrchestrator struct {
	registry driving.ConnectorRegistry
	store    driven.SignalStore
	monitor  *HealthMonitor
	limiters *LimiterSet
	log      zerolog.Logger

	mu          sync.Mutex
	initialized bool
}

// NewIngestionOrchestrator wires the orchestrator's collaborators.
// Services are dependency-injected, constructed once at process start.
func NewIngestionOrchestrator(
	registry driving.ConnectorRegistry,
	store driven.SignalStore,
	monitor *HealthMonitor,
	limiters *LimiterSet,
) *IngestionOrchestrator {
	if limiters == nil {
		limiters = NewLimiterSet(nil)
	}
	return &IngestionOrchestrator{
		registry: registry,
		store:    store,
		monitor:  monitor,
		limiters: limiters,
		log:      logger.With("orchestrator"),
	}
}

// Initialize probes the store once. Idempotent: returns immediately when
// already initialized.
func (o *IngestionOrchestrator) Initialize(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.initialized {
		return nil
	}
	if err := o.store.HealthCheck(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	o.initialized = true
	o.log.Info().Msg("orchestrator initialized")
	return nil
}

// RunIngestionCycle runs one fetch-then-persist cycle. Expected failures
// come back inside the result; nothing escapes as a panic or bare error.
func (o *IngestionOrchestrator) RunIngestionCycle(
	ctx context.Context,
	source domain.SourceType,
	query string,
	opts domain.CycleOptions,
) *domain.IngestionResult {
	start := time.Now()
	result := &domain.IngestionResult{Source: source, Query: query}

	// StartRun precedes any I/O for this cycle.
	o.monitor.StartRun(source)

	conn, err := o.registry.GetConnector(source, false)
	if err != nil {
		return o.failCycle(result, start, domain.StepFetch, err)
	}

	fetchRes, err := o.fetchWithRetry(ctx, conn, source, query, opts)
	if err != nil {
		return o.failCycle(result, start, domain.StepFetch, err)
	}

	result.SignalsFound = len(fetchRes.Signals)

	for i := range fetchRes.Signals {
		signal := &fetchRes.Signals[i]
		if _, err := o.store.Upsert(ctx, signal); err != nil {
			if !opts.ContinueOnError {
				// Strict mode: first save failure aborts the batch.
				result.SignalsFailed++
				return o.failCycle(result, start, domain.StepSave, err)
			}
			result.SignalsFailed++
			result.Errors = append(result.Errors, domain.CycleError{
				Step:    domain.StepSave,
				Message: err.Error(),
				At:      time.Now(),
			})
			o.log.Warn().Str("source", string(source)).Err(err).Msg("signal save failed")
			continue
		}
		result.SignalsSaved++
	}

	if err := o.monitor.EndRun(result.SignalsSaved); err != nil {
		o.log.Warn().Err(err).Msg("closing run record")
	}

	result.Duration = time.Since(start)
	result.Success = true
	o.log.Info().
		Str("source", string(source)).
		Str("query", query).
		Int("found", result.SignalsFound).
		Int("saved", result.SignalsSaved).
		Int("failed", result.SignalsFailed).
		Dur("duration", result.Duration).
		Msg("ingestion cycle complete")
	return result
}

// fetchWithRetry acquires the provider's rate budget, fetches, and backs
// off exponentially on rate-limit errors up to MaxFetchAttempts.
func (o *IngestionOrchestrator) fetchWithRetry(
	ctx context.Context,
	conn driven.Connector,
	source domain.SourceType,
	query string,
	opts domain.CycleOptions,
) (*domain.FetchResult, error) {
	fetchOpts := domain.FetchOptions{
		Query:      query,
		MaxResults: opts.MaxResults,
		Since:      opts.Since,
		Until:      opts.Until,
		Language:   opts.Language,
		Filters:    opts.Filters,
	}
	if fetchOpts.MaxResults <= 0 {
		fetchOpts.MaxResults = DefaultMaxResults
	}

	limiter := o.limiters.For(source)

	var lastErr error
	for attempt := 0; attempt < MaxFetchAttempts; attempt++ {
		if err := limiter.Acquire(ctx); err != nil {
			return nil, domain.NewSourceError(source, domain.ErrTimeout, "rate limit wait cancelled", err)
		}

		res, err := conn.FetchSignals(ctx, fetchOpts)
		if err == nil {
			return res, nil
		}
		lastErr = err

		se, ok := domain.AsSourceError(err)
		if !ok || se.Kind != domain.ErrRateLimit {
			return nil, err
		}

		// Rate limited: honour the provider hint, else exponential backoff.
		delay := Backoff(attempt)
		if se.RetryAfter > 0 && se.RetryAfter < BackoffCap {
			delay = se.RetryAfter
		}
		o.log.Warn().
			Str("source", string(source)).
			Int("attempt", attempt+1).
			Dur("backoff", delay).
			Msg("rate limited, backing off")
		if err := sleepCtx(ctx, delay); err != nil {
			return nil, domain.NewSourceError(source, domain.ErrTimeout, "backoff cancelled", err)
		}
	}
	return nil, lastErr
}

// failCycle records the failure to the monitor and finalizes the result.
// EndRun is never called on this path.
func (o *IngestionOrchestrator) failCycle(
	result *domain.IngestionResult,
	start time.Time,
	step domain.CycleStep,
	err error,
) *domain.IngestionResult {
	o.monitor.RecordError(err)
	result.Errors = append(result.Errors, domain.CycleError{
		Step:    step,
		Message: err.Error(),
		At:      time.Now(),
	})
	result.Duration = time.Since(start)
	result.Success = false
	o.log.Error().
		Str("source", string(result.Source)).
		Str("step", string(step)).
		Err(err).
		Msg("ingestion cycle failed")
	return result
}

// RunBatchIngestion launches one cycle per config concurrently. Each
// cycle reports to the health monitor independently and one source's
// failure never cancels the others.
func (o *IngestionOrchestrator) RunBatchIngestion(
	ctx context.Context,
	configs []domain.CycleConfig,
) *domain.BatchIngestionResult {
	start := time.Now()
	out := &domain.BatchIngestionResult{
		Results: make([]domain.IngestionResult, len(configs)),
	}

	var wg sync.WaitGroup
	for i, cfg := range configs {
		wg.Add(1)
		go func(i int, cfg domain.CycleConfig) {
			defer wg.Done()
			res := o.RunIngestionCycle(ctx, cfg.Source, cfg.Query, cfg.Options)
			out.Results[i] = *res
		}(i, cfg)
	}
	wg.Wait()

	for i := range out.Results {
		res := &out.Results[i]
		out.TotalFound += res.SignalsFound
		out.TotalSaved += res.SignalsSaved
		out.TotalFailed += res.SignalsFailed
		if res.Success {
			out.SucceededRuns++
		} else {
			out.FailedRuns++
		}
	}
	out.Duration = time.Since(start)
	return out
}

// HealthCheck aggregates store connectivity and monitor liveness into
// one overall verdict.
func (o *IngestionOrchestrator) HealthCheck(ctx context.Context) driving.OverallHealth {
	health := driving.OverallHealth{Store: true}

	if err := o.store.HealthCheck(ctx); err != nil {
		health.Store = false
		health.Message = fmt.Sprintf("store: %v", err)
	}
	health.Monitor = o.monitor.Metrics().Health
	health.Healthy = health.Store && health.Monitor != domain.HealthCritical
	if health.Healthy && health.Message == "" {
		health.Message = "all systems operational"
	}
	return health
}

// GetHealthStats returns the monitor's cumulative snapshot.
func (o *IngestionOrchestrator) GetHealthStats() domain.HealthSnapshot {
	return o.monitor.Snapshot()
}

// GetHealthMetrics returns derived metrics, computed on demand.
func (o *IngestionOrchestrator) GetHealthMetrics() domain.HealthMetrics {
	return o.monitor.Metrics()
}

// GetExecutionHistory returns up to limit most recent runs.
func (o *IngestionOrchestrator) GetExecutionHistory(limit int) []domain.ExecutionRecord {
	return o.monitor.History(limit)
}

// GenerateSystemReport renders a human-readable operational report.
func (o *IngestionOrchestrator) GenerateSystemReport() string {
	snap := o.monitor.Snapshot()
	metrics := o.monitor.Metrics()

	var b strings.Builder
	b.WriteString("=== Signal Ingestion Report ===\n")
	fmt.Fprintf(&b, "Status:            %s\n", snap.Status)
	fmt.Fprintf(&b, "Health:            %s\n", metrics.Health)
	fmt.Fprintf(&b, "Total executions:  %d\n", snap.TotalExecutions)
	fmt.Fprintf(&b, "Successful:        %d\n", snap.SuccessfulExecutions)
	fmt.Fprintf(&b, "Errors:            %d\n", snap.ErrorsCount)
	fmt.Fprintf(&b, "Signals collected: %d\n", snap.TotalSignalsCollected)
	fmt.Fprintf(&b, "Success rate:      %.1f%%\n", metrics.SuccessRate)
	fmt.Fprintf(&b, "Signals/minute:    %.2f\n", metrics.SignalsPerMinute)
	fmt.Fprintf(&b, "Errors/hour:       %.0f\n", metrics.ErrorsPerHour)
	fmt.Fprintf(&b, "Avg run duration:  %s\n", snap.AvgRunDuration)
	if !snap.LastSuccessfulRun.IsZero() {
		fmt.Fprintf(&b, "Last success:      %s\n", snap.LastSuccessfulRun.Format(time.RFC3339))
	}
	if snap.LastError != "" {
		fmt.Fprintf(&b, "Last error:        %s (%s)\n", snap.LastError, snap.LastErrorTime.Format(time.RFC3339))
	}
	return b.String()
}

// Shutdown emits a final report and releases all cached connectors.
func (o *IngestionOrchestrator) Shutdown(_ context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.initialized {
		return nil
	}
	o.log.Info().Msg("shutting down")
	for _, line := range strings.Split(strings.TrimRight(o.GenerateSystemReport(), "\n"), "\n") {
		o.log.Info().Msg(line)
	}
	o.initialized = false
	return o.registry.CloseAll()
}
