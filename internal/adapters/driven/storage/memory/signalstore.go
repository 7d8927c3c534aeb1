// Package memory provides in-memory implementations of driven ports,
// used in tests and for ephemeral runs where persistence is unwanted.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/domain"
	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/ports/driven"
)

// Ensure SignalStore implements the interface.
var _ driven.SignalStore = (*SignalStore)(nil)

// SignalStore is an in-memory implementation of driven.SignalStore.
// It applies the same merge-on-conflict semantics as the SQLite store.
type SignalStore struct {
	mu      sync.RWMutex
	signals map[string]domain.Signal
	closed  bool
}

// NewSignalStore creates a new in-memory signal store.
func NewSignalStore() *SignalStore {
	return &SignalStore{
		signals: make(map[string]domain.Signal),
	}
}

// Upsert inserts or merge-updates a signal keyed by its DedupID.
func (s *SignalStore) Upsert(_ context.Context, signal *domain.Signal) (driven.UpsertOutcome, error) {
	if err := signal.Validate(); err != nil {
		return driven.UpsertOutcome{}, err
	}

	id := signal.ID
	if id == "" {
		id = signal.DedupID()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return driven.UpsertOutcome{}, domain.ErrStoreUnavailable
	}

	existing, ok := s.signals[id]
	if !ok {
		stored := *signal
		stored.ID = id
		if stored.IngestedAt.IsZero() {
			stored.IngestedAt = time.Now().UTC()
		}
		s.signals[id] = stored
		return driven.UpsertOutcome{ID: id, Created: true}, nil
	}

	// Merge path: only status, engagement and the ingestion timestamp move.
	existing.ProcessingStatus = signal.ProcessingStatus
	existing.Engagement = signal.Engagement
	existing.IngestedAt = signal.IngestedAt
	if existing.IngestedAt.IsZero() {
		existing.IngestedAt = time.Now().UTC()
	}
	s.signals[id] = existing
	return driven.UpsertOutcome{ID: id, Created: false}, nil
}

// Get returns a signal by id.
func (s *SignalStore) Get(_ context.Context, id string) (*domain.Signal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, domain.ErrStoreUnavailable
	}
	signal, ok := s.signals[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &signal, nil
}

// ListBySource returns up to limit signals for a source, newest first.
func (s *SignalStore) ListBySource(_ context.Context, source domain.SourceType, limit int) ([]domain.Signal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, domain.ErrStoreUnavailable
	}

	var signals []domain.Signal //nolint:prealloc // filtered below
	for _, signal := range s.signals {
		if signal.Source == source {
			signals = append(signals, signal)
		}
	}
	sort.Slice(signals, func(i, j int) bool {
		return signals[i].CreatedAt.After(signals[j].CreatedAt)
	})
	if limit > 0 && len(signals) > limit {
		signals = signals[:limit]
	}
	return signals, nil
}

// Count returns the number of stored signals.
func (s *SignalStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, domain.ErrStoreUnavailable
	}
	return int64(len(s.signals)), nil
}

// HealthCheck verifies the store is open.
func (s *SignalStore) HealthCheck(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return domain.ErrStoreUnavailable
	}
	return nil
}

// Close marks the store closed. Further calls fail.
func (s *SignalStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
