// Package storage persists the ids of already-reported items in a small
// SQLite table with TTL-based pruning.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"RedditScout/internal/domain"
	"RedditScout/internal/ports"
)

const seenTable = "seen_items"

// SQLiteStore implements the seen-store port. The schema is a single
// append/prune-only table: (id TEXT PRIMARY KEY, first_seen_at DATETIME).
// Rows are never updated in place.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ ports.SeenStore = (*SQLiteStore)(nil)

// Open opens (or creates) the store at path. Any failure to open or
// prepare the file falls back to an in-memory store: losing dedupe
// history only causes re-notification, which beats crashing the run.
func Open(path string, logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.Default()
	}

	store, err := open(path)
	if err != nil {
		logger.Warn("seen store unusable, falling back to empty in-memory store",
			"path", path, "error", err)
		store, err = open(":memory:")
		if err != nil {
			// In-memory open only fails if the driver itself is broken.
			panic(fmt.Sprintf("storage: in-memory fallback failed: %v", err))
		}
	}
	store.logger = logger
	return store
}

func open(path string) (*SQLiteStore, error) {
	connStr := path
	if path == ":memory:" {
		// Shared cache so every pooled connection sees the same database.
		connStr = "file::memory:?cache=shared"
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY,
		first_seen_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_seen_first_seen ON %s(first_seen_at);
	`, seenTable, seenTable)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Exists reports whether the id was already delivered.
func (s *SQLiteStore) Exists(ctx context.Context, id string) (bool, error) {
	query, args, err := sq.Select("1").
		From(seenTable).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists query: %w", err)
	}

	var one int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query exists: %w", err)
	}
	return true, nil
}

// MarkSeen records the id with its first-seen time. Idempotent: marking
// an already-seen id keeps the original timestamp.
func (s *SQLiteStore) MarkSeen(ctx context.Context, id string, at time.Time) error {
	query, args, err := sq.Insert(seenTable).
		Columns("id", "first_seen_at").
		Values(id, at.UTC()).
		Suffix("ON CONFLICT(id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark seen %s: %w", id, err)
	}
	return nil
}

// Prune deletes records older than the TTL and returns the count
// removed. Space is reclaimed when anything was deleted.
func (s *SQLiteStore) Prune(ctx context.Context, now time.Time, ttl time.Duration) (int, error) {
	cutoff := now.Add(-ttl).UTC()

	query, args, err := sq.Delete(seenTable).
		Where(sq.Lt{"first_seen_at": cutoff}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build prune query: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("prune: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune rows affected: %w", err)
	}

	if removed > 0 {
		if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
			s.logger.Warn("vacuum after prune failed", "error", err)
		}
	}
	return int(removed), nil
}

// Stats counts total rows and those first seen within the window back
// from now.
func (s *SQLiteStore) Stats(ctx context.Context, now time.Time, window time.Duration) (domain.StoreStats, error) {
	var stats domain.StoreStats

	totalQuery, _, err := sq.Select("COUNT(*)").From(seenTable).ToSql()
	if err != nil {
		return stats, fmt.Errorf("build total query: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, totalQuery).Scan(&stats.Total); err != nil {
		return stats, fmt.Errorf("count total: %w", err)
	}

	cutoff := now.Add(-window).UTC()
	recentQuery, args, err := sq.Select("COUNT(*)").
		From(seenTable).
		Where(sq.GtOrEq{"first_seen_at": cutoff}).
		ToSql()
	if err != nil {
		return stats, fmt.Errorf("build recent query: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, recentQuery, args...).Scan(&stats.Recent); err != nil {
		return stats, fmt.Errorf("count recent: %w", err)
	}

	return stats, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
