package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/domain"
	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/ports/driven"
	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/ports/driving"
	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/logger"
)

// DefaultConnectorTimeout bounds one connector fetch in parallel fan-out.
const DefaultConnectorTimeout = 60 * time.Second

// Ensure ConnectorRegistry implements the interface.
var _ driving.ConnectorRegistry = (*ConnectorRegistry)(nil)

// ConnectorRegistry is the single source of truth mapping a source
// identifier to a live, shared connector instance. Instances are cached
// and reused across concurrent cycles.
type ConnectorRegistry struct {
	factory driven.ConnectorFactory
	log     zerolog.Logger

	mu    sync.Mutex
	cache map[domain.SourceType]driven.Connector
}

// NewConnectorRegistry creates a registry over a factory catalogue.
func NewConnectorRegistry(factory driven.ConnectorFactory) *ConnectorRegistry {
	return &ConnectorRegistry{
		factory: factory,
		log:     logger.With("registry"),
		cache:   make(map[domain.SourceType]driven.Connector),
	}
}

// Register adds or overrides a catalogue entry.
func (r *ConnectorRegistry) Register(reg driven.ConnectorRegistration) {
	r.factory.Register(reg)
}

// GetConnector returns the cached instance for a source, building and
// caching it on first use. A cache hit still consults the catalogue, so
// disabling a source evicts its live instance instead of serving it
// forever. forceNew closes and replaces any cached instance.
func (r *ConnectorRegistry) GetConnector(source domain.SourceType, forceNew bool) (driven.Connector, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.cache[source]; ok {
		if !forceNew {
			if reg, err := r.factory.Registration(source); err == nil && reg.Enabled {
				return old, nil
			}
			// Disabled or unregistered since the instance was built.
		}
		if err := old.Close(); err != nil {
			r.log.Warn().Str("source", string(source)).Err(err).Msg("closing stale connector")
		}
		delete(r.cache, source)
	}

	conn, err := r.factory.Create(source)
	if err != nil {
		return nil, err
	}
	r.cache[source] = conn
	return conn, nil
}

// GetMultipleConnectors resolves several sources best-effort. With
// continueOnError false the first failure aborts, aggregating every
// error seen so far into the returned error.
func (r *ConnectorRegistry) GetMultipleConnectors(
	sources []domain.SourceType,
	continueOnError bool,
) (map[domain.SourceType]driven.Connector, error) {
	out := make(map[domain.SourceType]driven.Connector, len(sources))
	var errs []error

	for _, source := range sources {
		conn, err := r.GetConnector(source, false)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", source, err))
			if !continueOnError {
				return out, fmt.Errorf("connector creation aborted: %w", errors.Join(errs...))
			}
			continue
		}
		out[source] = conn
	}

	if len(errs) > 0 && len(out) == 0 {
		return out, errors.Join(errs...)
	}
	return out, nil
}

// enabledSources resolves the fan-out target list.
func (r *ConnectorRegistry) enabledSources(requested []domain.SourceType) []domain.SourceType {
	if len(requested) > 0 {
		return requested
	}
	var out []domain.SourceType
	for _, source := range r.factory.SupportedSources() {
		reg, err := r.factory.Registration(source)
		if err == nil && reg.Enabled {
			out = append(out, source)
		}
	}
	return out
}

// fetchOutcome carries one source's fan-out result.
type fetchOutcome struct {
	source domain.SourceType
	result *domain.FetchResult
	err    error
}

// FetchFromAllSources fans a fetch out across all (or a subset of)
// enabled connectors. Parallel fan-out is the default: each connector
// call is wrapped in a timeout so slow or failed connectors never block
// fast ones, and a timed-out call is abandoned rather than forcibly
// aborted. FailFast cancels the remaining fetches after the first
// failure; otherwise failures are collected per source.
func (r *ConnectorRegistry) FetchFromAllSources(
	ctx context.Context,
	opts domain.BatchFetchOptions,
) *domain.BatchFetchResult {
	start := time.Now()
	out := &domain.BatchFetchResult{
		Results: make(map[domain.SourceType]*domain.FetchResult),
		Errors:  make(map[domain.SourceType]error),
	}

	sources := r.enabledSources(opts.Sources)
	timeout := opts.TimeoutPerConnector
	if timeout <= 0 {
		timeout = DefaultConnectorTimeout
	}

	if opts.Sequential {
		for _, source := range sources {
			oc := r.fetchOne(ctx, source, opts.Options, timeout)
			r.collect(out, oc)
			if oc.err != nil && opts.FailFast {
				break
			}
		}
	} else {
		fctx, cancel := context.WithCancel(ctx)
		defer cancel()

		outcomes := make(chan fetchOutcome, len(sources))
		for _, source := range sources {
			go func(source domain.SourceType) {
				outcomes <- r.fetchOne(fctx, source, opts.Options, timeout)
			}(source)
		}
		for range sources {
			oc := <-outcomes
			r.collect(out, oc)
			if oc.err != nil && opts.FailFast {
				// In-flight fetches settle as cancellation failures.
				cancel()
			}
		}
	}

	out.Duration = time.Since(start)
	return out
}

// fetchOne runs a single connector fetch under a timeout. The fetch
// goroutine writes to a buffered channel so a late result after timeout
// is simply discarded.
func (r *ConnectorRegistry) fetchOne(
	ctx context.Context,
	source domain.SourceType,
	opts domain.FetchOptions,
	timeout time.Duration,
) fetchOutcome {
	conn, err := r.GetConnector(source, false)
	if err != nil {
		return fetchOutcome{source: source, err: err}
	}

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan fetchOutcome, 1)
	go func() {
		res, ferr := conn.FetchSignals(cctx, opts)
		done <- fetchOutcome{source: source, result: res, err: ferr}
	}()

	select {
	case oc := <-done:
		return oc
	case <-cctx.Done():
		return fetchOutcome{
			source: source,
			err: domain.NewSourceError(source, domain.ErrTimeout,
				fmt.Sprintf("fetch exceeded %s", timeout), cctx.Err()),
		}
	}
}

// collect folds one outcome into the batch result.
func (r *ConnectorRegistry) collect(out *domain.BatchFetchResult, oc fetchOutcome) {
	if oc.err != nil {
		r.log.Warn().Str("source", string(oc.source)).Err(oc.err).Msg("source fetch failed")
		out.Errors[oc.source] = oc.err
		out.Failed = append(out.Failed, oc.source)
		return
	}
	out.Results[oc.source] = oc.result
	out.Succeeded = append(out.Succeeded, oc.source)
	out.Signals = append(out.Signals, oc.result.Signals...)
	out.TotalFound += oc.result.TotalFound
}

// HealthCheckAll probes every enabled connector concurrently. A probe
// that panics or cannot be built becomes an unhealthy result rather than
// propagating.
func (r *ConnectorRegistry) HealthCheckAll(ctx context.Context) map[domain.SourceType]domain.ConnectorHealth {
	sources := r.enabledSources(nil)
	results := make(map[domain.SourceType]domain.ConnectorHealth, len(sources))

	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, source := range sources {
		wg.Add(1)
		go func(source domain.SourceType) {
			defer wg.Done()
			health := r.probe(ctx, source)
			mu.Lock()
			results[source] = health
			mu.Unlock()
		}(source)
	}
	wg.Wait()
	return results
}

func (r *ConnectorRegistry) probe(ctx context.Context, source domain.SourceType) (health domain.ConnectorHealth) {
	defer func() {
		if rec := recover(); rec != nil {
			health = domain.ConnectorHealth{
				Source:             source,
				IsHealthy:          false,
				Message:            fmt.Sprintf("health check panicked: %v", rec),
				RateLimitRemaining: -1,
			}
		}
	}()

	conn, err := r.GetConnector(source, false)
	if err != nil {
		return domain.ConnectorHealth{
			Source:             source,
			IsHealthy:          false,
			Message:            err.Error(),
			RateLimitRemaining: -1,
		}
	}
	return conn.HealthCheck(ctx)
}

// Sources lists every registered source and whether it is enabled.
func (r *ConnectorRegistry) Sources() map[domain.SourceType]bool {
	out := make(map[domain.SourceType]bool)
	for _, source := range r.factory.SupportedSources() {
		reg, err := r.factory.Registration(source)
		if err != nil {
			continue
		}
		out[source] = reg.Enabled
	}
	return out
}

// CloseAll shuts down and evicts every cached connector.
func (r *ConnectorRegistry) CloseAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for source, conn := range r.cache {
		if err := conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", source, err))
		}
		delete(r.cache, source)
	}
	return errors.Join(errs...)
}
