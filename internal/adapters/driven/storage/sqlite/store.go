package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/domain"
	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.SignalStore = (*Store)(nil)

// Store is a SQLite-backed signal store. Records are keyed by the
// signal's deterministic content hash, so the same upstream item never
// lands twice: the second write merges status, engagement counters and
// the ingestion timestamp into the existing row.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.leadboost/data/signals.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".leadboost", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "signals.db")

	// WAL mode so ingestion cycles and readers don't block each other.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// Upsert inserts or merge-updates a signal keyed by its deterministic
// content hash. On conflict only ProcessingStatus, the engagement
// counters and IngestedAt change; everything else stays as first written.
func (s *Store) Upsert(ctx context.Context, signal *domain.Signal) (driven.UpsertOutcome, error) {
	if err := signal.Validate(); err != nil {
		return driven.UpsertOutcome{}, err
	}

	id := signal.ID
	if id == "" {
		id = signal.DedupID()
	}

	mediaJSON, err := json.Marshal(signal.MediaURLs)
	if err != nil {
		return driven.UpsertOutcome{}, fmt.Errorf("marshalling media urls: %w", err)
	}
	authorJSON, err := json.Marshal(signal.Author)
	if err != nil {
		return driven.UpsertOutcome{}, fmt.Errorf("marshalling author: %w", err)
	}
	metadataJSON, err := json.Marshal(signal.RawMetadata)
	if err != nil {
		return driven.UpsertOutcome{}, fmt.Errorf("marshalling raw metadata: %w", err)
	}

	ingestedAt := signal.IngestedAt
	if ingestedAt.IsZero() {
		ingestedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return driven.UpsertOutcome{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var exists bool
	row := tx.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM signals WHERE id = ?)", id)
	if err := row.Scan(&exists); err != nil {
		return driven.UpsertOutcome{}, fmt.Errorf("checking signal existence: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO signals (
			id, source, platform_id, original_url, created_at, ingested_at,
			content_text, title, description, media_urls, author,
			likes, shares, comments, views, engagement_rate, virality_score,
			raw_metadata, processing_status, schema_version
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			ingested_at = excluded.ingested_at,
			likes = excluded.likes,
			shares = excluded.shares,
			comments = excluded.comments,
			views = excluded.views,
			engagement_rate = excluded.engagement_rate,
			virality_score = excluded.virality_score,
			processing_status = excluded.processing_status
	`, id, signal.Source, signal.PlatformID, signal.OriginalURL,
		signal.CreatedAt.UTC(), ingestedAt.UTC(),
		signal.ContentText, signal.Title, signal.Description,
		string(mediaJSON), string(authorJSON),
		signal.Engagement.Likes, signal.Engagement.Shares,
		signal.Engagement.Comments, signal.Engagement.Views,
		signal.Engagement.EngagementRate, signal.Engagement.ViralityScore,
		string(metadataJSON), signal.ProcessingStatus, signal.SchemaVersion)
	if err != nil {
		return driven.UpsertOutcome{}, fmt.Errorf("upserting signal: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return driven.UpsertOutcome{}, fmt.Errorf("committing upsert: %w", err)
	}

	return driven.UpsertOutcome{ID: id, Created: !exists}, nil
}

// Get retrieves a signal by id.
func (s *Store) Get(ctx context.Context, id string) (*domain.Signal, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, source, platform_id, original_url, created_at, ingested_at,
			content_text, title, description, media_urls, author,
			likes, shares, comments, views, engagement_rate, virality_score,
			raw_metadata, processing_status, schema_version
		FROM signals WHERE id = ?
	`, id)

	signal, err := scanSignal(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return signal, nil
}

// ListBySource returns up to limit signals for a source, newest first.
func (s *Store) ListBySource(ctx context.Context, source domain.SourceType, limit int) ([]domain.Signal, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, platform_id, original_url, created_at, ingested_at,
			content_text, title, description, media_urls, author,
			likes, shares, comments, views, engagement_rate, virality_score,
			raw_metadata, processing_status, schema_version
		FROM signals WHERE source = ?
		ORDER BY created_at DESC LIMIT ?
	`, source, limit)
	if err != nil {
		return nil, fmt.Errorf("querying signals: %w", err)
	}
	defer rows.Close()

	var signals []domain.Signal //nolint:prealloc // size unknown from query
	for rows.Next() {
		signal, err := scanSignal(rows)
		if err != nil {
			return nil, err
		}
		signals = append(signals, *signal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating signals: %w", err)
	}
	return signals, nil
}

// Count returns the number of stored signals.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	row := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM signals")
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("counting signals: %w", err)
	}
	return count, nil
}

// HealthCheck verifies database connectivity.
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// scanner abstracts sql.Row and sql.Rows for scanSignal.
type scanner interface {
	Scan(dest ...any) error
}

func scanSignal(row scanner) (*domain.Signal, error) {
	var signal domain.Signal
	var mediaJSON, authorJSON, metadataJSON string
	var createdAt, ingestedAt sql.NullTime

	err := row.Scan(&signal.ID, &signal.Source, &signal.PlatformID, &signal.OriginalURL,
		&createdAt, &ingestedAt,
		&signal.ContentText, &signal.Title, &signal.Description,
		&mediaJSON, &authorJSON,
		&signal.Engagement.Likes, &signal.Engagement.Shares,
		&signal.Engagement.Comments, &signal.Engagement.Views,
		&signal.Engagement.EngagementRate, &signal.Engagement.ViralityScore,
		&metadataJSON, &signal.ProcessingStatus, &signal.SchemaVersion)
	if err != nil {
		return nil, err
	}

	if createdAt.Valid {
		signal.CreatedAt = createdAt.Time.UTC()
	}
	if ingestedAt.Valid {
		signal.IngestedAt = ingestedAt.Time.UTC()
	}
	if err := json.Unmarshal([]byte(mediaJSON), &signal.MediaURLs); err != nil {
		return nil, fmt.Errorf("unmarshaling media urls: %w", err)
	}
	if err := json.Unmarshal([]byte(authorJSON), &signal.Author); err != nil {
		return nil, fmt.Errorf("unmarshaling author: %w", err)
	}
	if err := json.Unmarshal([]byte(metadataJSON), &signal.RawMetadata); err != nil {
		return nil, fmt.Errorf("unmarshaling raw metadata: %w", err)
	}
	return &signal, nil
}
