package driven

import (
	"context"

	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/domain"
)

// UpsertOutcome reports the effect of one idempotent upsert.
type UpsertOutcome struct {
	// ID is the deterministic signal identifier the store assigned.
	ID string

	// Created is true for a new row, false for an update of an
	// existing record (the dedup path).
	Created bool
}

// SignalStore persists signals idempotently. The store derives each
// record's identity from Signal.DedupID, so re-ingesting identical
// upstream content updates in place instead of duplicating.
//
// On update, only ProcessingStatus, engagement counters and IngestedAt
// are merged; everything else on a persisted signal is immutable.
type SignalStore interface {
	// Upsert inserts or merge-updates a signal keyed by its DedupID.
	Upsert(ctx context.Context, signal *domain.Signal) (UpsertOutcome, error)

	// Get returns a signal by id, or domain.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.Signal, error)

	// Count returns the number of stored signals.
	Count(ctx context.Context) (int64, error)

	// HealthCheck verifies store connectivity.
	HealthCheck(ctx context.Context) error

	// Close releases the underlying resources.
	Close() error
}
