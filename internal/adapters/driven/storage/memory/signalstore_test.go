package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/domain"
)

func newSignal(platformID string) *domain.Signal {
	s := &domain.Signal{
		Source:           domain.SourceGitHub,
		PlatformID:       platformID,
		OriginalURL:      "https://github.com/acme/crm/issues/" + platformID,
		CreatedAt:        time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
		ContentText:      "Need webhook support for lead capture",
		ProcessingStatus: domain.StatusPending,
		SchemaVersion:    domain.SchemaVersion,
	}
	s.ID = s.DedupID()
	return s
}

func TestSignalStoreUpsertAndGet(t *testing.T) {
	store := NewSignalStore()
	ctx := context.Background()

	outcome, err := store.Upsert(ctx, newSignal("42"))
	require.NoError(t, err)
	assert.True(t, outcome.Created)

	got, err := store.Get(ctx, outcome.ID)
	require.NoError(t, err)
	assert.Equal(t, "42", got.PlatformID)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSignalStoreMergesOnReplay(t *testing.T) {
	store := NewSignalStore()
	ctx := context.Background()

	_, err := store.Upsert(ctx, newSignal("42"))
	require.NoError(t, err)

	replay := newSignal("42")
	replay.Engagement.Comments = 7
	replay.ProcessingStatus = domain.StatusCompleted
	replay.ContentText = "edited upstream"

	outcome, err := store.Upsert(ctx, replay)
	require.NoError(t, err)
	assert.False(t, outcome.Created)

	got, err := store.Get(ctx, outcome.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.Engagement.Comments)
	assert.Equal(t, domain.StatusCompleted, got.ProcessingStatus)
	assert.Equal(t, "Need webhook support for lead capture", got.ContentText,
		"first write wins for content")
}

func TestSignalStoreValidation(t *testing.T) {
	store := NewSignalStore()

	bad := newSignal("42")
	bad.ContentText = ""
	_, err := store.Upsert(context.Background(), bad)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSignalStoreListBySource(t *testing.T) {
	store := NewSignalStore()
	ctx := context.Background()

	for i, id := range []string{"1", "2", "3"} {
		s := newSignal(id)
		s.CreatedAt = s.CreatedAt.Add(time.Duration(i) * time.Minute)
		s.ID = s.DedupID()
		_, err := store.Upsert(ctx, s)
		require.NoError(t, err)
	}

	signals, err := store.ListBySource(ctx, domain.SourceGitHub, 2)
	require.NoError(t, err)
	require.Len(t, signals, 2)
	assert.Equal(t, "3", signals[0].PlatformID)

	none, err := store.ListBySource(ctx, domain.SourceNews, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSignalStoreClose(t *testing.T) {
	store := NewSignalStore()
	require.NoError(t, store.Close())

	assert.ErrorIs(t, store.HealthCheck(context.Background()), domain.ErrStoreUnavailable)
	_, err := store.Upsert(context.Background(), newSignal("42"))
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}
