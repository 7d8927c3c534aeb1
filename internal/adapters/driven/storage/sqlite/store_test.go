package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func testSignal(platformID string) *domain.Signal {
	s := &domain.Signal{
		Source:      domain.SourceTwitter,
		PlatformID:  platformID,
		OriginalURL: "https://x.com/acme/status/" + platformID,
		CreatedAt:   time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
		IngestedAt:  time.Date(2026, 3, 14, 12, 5, 0, 0, time.UTC),
		ContentText: "Looking for a CRM that handles inbound leads",
		Title:       "",
		MediaURLs:   []string{"https://pbs.example/img.png"},
		Author: domain.Author{
			ID:          "u-1",
			Handle:      "@acme",
			DisplayName: "Acme Inc",
			Followers:   5000,
		},
		Engagement: domain.Engagement{
			Likes:    10,
			Shares:   3,
			Comments: 2,
			Views:    900,
		},
		RawMetadata:      map[string]any{"lang": "en"},
		ProcessingStatus: domain.StatusPending,
		SchemaVersion:    domain.SchemaVersion,
	}
	s.ID = s.DedupID()
	return s
}

func TestNewStoreCreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, "signals.db"), store.Path())
	_, err = os.Stat(store.Path())
	assert.NoError(t, err)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening runs migrate again against the same file.
	store, err = NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestUpsertAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	signal := testSignal("1001")
	outcome, err := store.Upsert(ctx, signal)
	require.NoError(t, err)
	assert.True(t, outcome.Created)
	assert.Equal(t, signal.DedupID(), outcome.ID)

	got, err := store.Get(ctx, outcome.ID)
	require.NoError(t, err)
	assert.Equal(t, signal.Source, got.Source)
	assert.Equal(t, signal.PlatformID, got.PlatformID)
	assert.Equal(t, signal.OriginalURL, got.OriginalURL)
	assert.Equal(t, signal.ContentText, got.ContentText)
	assert.Equal(t, signal.MediaURLs, got.MediaURLs)
	assert.Equal(t, signal.Author.Handle, got.Author.Handle)
	assert.Equal(t, signal.Engagement.Likes, got.Engagement.Likes)
	assert.Equal(t, "en", got.RawMetadata["lang"])
	assert.Equal(t, domain.StatusPending, got.ProcessingStatus)
	assert.True(t, signal.CreatedAt.Equal(got.CreatedAt))
}

func TestUpsertDeduplicates(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first := testSignal("1001")
	outcome, err := store.Upsert(ctx, first)
	require.NoError(t, err)
	assert.True(t, outcome.Created)

	// Same upstream item seen again with fresher engagement.
	second := testSignal("1001")
	second.Engagement.Likes = 50
	second.Engagement.Views = 4000
	second.ProcessingStatus = domain.StatusCompleted
	second.ContentText = "mutated text must not overwrite"
	second.ID = second.DedupID()

	outcome, err = store.Upsert(ctx, second)
	require.NoError(t, err)
	assert.False(t, outcome.Created, "replay is an update, not a new row")

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	got, err := store.Get(ctx, outcome.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), got.Engagement.Likes)
	assert.Equal(t, domain.StatusCompleted, got.ProcessingStatus)
	assert.Equal(t, first.ContentText, got.ContentText, "content is immutable after first write")
}

func TestUpsertAssignsDedupID(t *testing.T) {
	store := setupTestStore(t)

	signal := testSignal("1001")
	signal.ID = ""
	outcome, err := store.Upsert(context.Background(), signal)
	require.NoError(t, err)
	assert.Equal(t, signal.DedupID(), outcome.ID)
}

func TestUpsertRejectsInvalidSignal(t *testing.T) {
	store := setupTestStore(t)

	signal := testSignal("1001")
	signal.ContentText = ""
	_, err := store.Upsert(context.Background(), signal)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListBySource(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for i, id := range []string{"1001", "1002", "1003"} {
		signal := testSignal(id)
		signal.CreatedAt = signal.CreatedAt.Add(time.Duration(i) * time.Hour)
		signal.ID = signal.DedupID()
		_, err := store.Upsert(ctx, signal)
		require.NoError(t, err)
	}
	other := testSignal("x")
	other.Source = domain.SourceGitHub
	other.ID = other.DedupID()
	_, err := store.Upsert(ctx, other)
	require.NoError(t, err)

	signals, err := store.ListBySource(ctx, domain.SourceTwitter, 2)
	require.NoError(t, err)
	require.Len(t, signals, 2)
	assert.Equal(t, "1003", signals[0].PlatformID, "newest first")
	assert.Equal(t, "1002", signals[1].PlatformID)
}

func TestHealthCheck(t *testing.T) {
	store := setupTestStore(t)
	assert.NoError(t, store.HealthCheck(context.Background()))
}

func TestHealthCheckAfterClose(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	assert.ErrorIs(t, store.HealthCheck(context.Background()), domain.ErrStoreUnavailable)
}
