package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/domain"
	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/ports/driven"
)

// mockConnector is a scriptable connector for service tests.
type mockConnector struct {
	mu         sync.Mutex
	source     domain.SourceType
	fetchFn    func(ctx context.Context, opts domain.FetchOptions) (*domain.FetchResult, error)
	healthFn   func(ctx context.Context) domain.ConnectorHealth
	fetchCalls int
	closed     bool
}

func (m *mockConnector) Source() domain.SourceType { return m.source }

func (m *mockConnector) FetchSignals(ctx context.Context, opts domain.FetchOptions) (*domain.FetchResult, error) {
	m.mu.Lock()
	m.fetchCalls++
	fn := m.fetchFn
	m.mu.Unlock()
	if fn == nil {
		return &domain.FetchResult{}, nil
	}
	return fn(ctx, opts)
}

func (m *mockConnector) ValidateConfig() error { return nil }

func (m *mockConnector) HealthCheck(ctx context.Context) domain.ConnectorHealth {
	m.mu.Lock()
	fn := m.healthFn
	m.mu.Unlock()
	if fn == nil {
		return domain.ConnectorHealth{Source: m.source, IsHealthy: true}
	}
	return fn(ctx)
}

func (m *mockConnector) UpdateConfig(partial domain.ConnectorConfig) error { return nil }

func (m *mockConnector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return domain.ErrConnectorClosed
	}
	m.closed = true
	return nil
}

func (m *mockConnector) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetchCalls
}

// mockFactory is an in-memory registration catalogue.
type mockFactory struct {
	mu          sync.Mutex
	regs        map[domain.SourceType]driven.ConnectorRegistration
	createCalls int
}

func newMockFactory() *mockFactory {
	return &mockFactory{regs: make(map[domain.SourceType]driven.ConnectorRegistration)}
}

func (f *mockFactory) Register(reg driven.ConnectorRegistration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.regs[reg.Source] = reg
}

func (f *mockFactory) Create(source domain.SourceType) (driven.Connector, error) {
	f.mu.Lock()
	reg, ok := f.regs[source]
	f.createCalls++
	f.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownSource, source)
	}
	if !reg.Enabled {
		return nil, fmt.Errorf("%w: %s", domain.ErrSourceDisabled, source)
	}
	return reg.Build(reg.Defaults)
}

func (f *mockFactory) Registration(source domain.SourceType) (*driven.ConnectorRegistration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reg, ok := f.regs[source]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownSource, source)
	}
	return &reg, nil
}

func (f *mockFactory) SupportedSources() []domain.SourceType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.SourceType, 0, len(f.regs))
	for source := range f.regs {
		out = append(out, source)
	}
	return out
}

// registerStatic wires a source to a fixed connector instance.
func (f *mockFactory) registerStatic(source domain.SourceType, conn driven.Connector, enabled bool) {
	f.Register(driven.ConnectorRegistration{
		Source:  source,
		Enabled: enabled,
		Build: func(domain.ConnectorConfig) (driven.Connector, error) {
			return conn, nil
		},
	})
}

// mockStore is an in-memory SignalStore with scriptable failures.
type mockStore struct {
	mu        sync.Mutex
	signals   map[string]domain.Signal
	upsertErr func(signal *domain.Signal) error
	healthErr error
}

func newMockStore() *mockStore {
	return &mockStore{signals: make(map[string]domain.Signal)}
}

func (s *mockStore) Upsert(ctx context.Context, signal *domain.Signal) (driven.UpsertOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		if err := s.upsertErr(signal); err != nil {
			return driven.UpsertOutcome{}, err
		}
	}
	id := signal.DedupID()
	_, existed := s.signals[id]
	stored := *signal
	stored.ID = id
	s.signals[id] = stored
	return driven.UpsertOutcome{ID: id, Created: !existed}, nil
}

func (s *mockStore) Get(ctx context.Context, id string) (*domain.Signal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	signal, ok := s.signals[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &signal, nil
}

func (s *mockStore) Count(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.signals)), nil
}

func (s *mockStore) HealthCheck(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.healthErr
}

func (s *mockStore) Close() error { return nil }

// makeSignals builds n distinct valid signals for a source.
func makeSignals(source domain.SourceType, n int) []domain.Signal {
	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	out := make([]domain.Signal, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.Signal{
			Source:      source,
			PlatformID:  fmt.Sprintf("item-%d", i),
			OriginalURL: fmt.Sprintf("https://example.com/%d", i),
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
			ContentText: fmt.Sprintf("signal body %d", i),
		})
	}
	return out
}
