// internal/store/sqlite.go
//
// SQLite-backed accept history.
// Responsibilities:
//   - Opening the database with safe defaults (WAL, busy timeout).
//   - Applying embedded migrations from sql/*.sql (idempotent, recorded in
//     _migrations).
//   - Recording accepted guesses tagged with the process run id.
//
// Every process run gets its own run id and only ever reads its own rows:
// the history is an audit trail, the game itself always starts fresh.

package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/robalobadob/wordchain/internal/game"
)

//go:embed sql/*.sql
var migrations embed.FS

type sqliteStore struct {
	db    *sql.DB
	runID string
}

// OpenSQLite opens (and creates if missing) the history database at dsn and
// applies migrations. runID tags every row written by this process.
func OpenSQLite(dsn, runID string, logger zerolog.Logger) (Store, error) {
	db, err := openDB(dsn)
	if err != nil {
		return nil, err
	}
	if err := migrate(db, logger); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &sqliteStore{db: db, runID: runID}, nil
}

// openDB ensures the parent directory exists for file DSNs and configures
// busy timeout and WAL journaling.
func openDB(dsn string) (*sql.DB, error) {
	if dsn != ":memory:" {
		dir := filepath.Dir(dsn)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("mkdir %s: %w", dir, err)
			}
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	return db, nil
}

// migrate applies embedded migrations in lexical order, each in its own
// transaction, skipping those already recorded in _migrations.
func migrate(db *sql.DB, logger zerolog.Logger) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	files, err := fs.Glob(migrations, "sql/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := db.QueryRow(`SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			logger.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		sqlBytes, err := migrations.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(sqlBytes)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.Exec(`INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		logger.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

// Record inserts an accepted guess. Replays of the same (run, seq) are ignored.
func (s *sqliteStore) Record(ctx context.Context, e game.Entry) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO accepted_words
            (run_id, seq, word, previous, origin, accepted_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		s.runID, e.Seq, e.Word, e.Previous, e.Origin, e.AcceptedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// Recent returns this run's newest entries first.
func (s *sqliteStore) Recent(ctx context.Context, limit int) ([]game.Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT seq, word, previous, origin, accepted_at
        FROM accepted_words
        WHERE run_id=?
        ORDER BY seq DESC
        LIMIT ?`, s.runID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]game.Entry, 0, limit)
	for rows.Next() {
		var (
			e  game.Entry
			at string
		)
		if err := rows.Scan(&e.Seq, &e.Word, &e.Previous, &e.Origin, &at); err != nil {
			return nil, err
		}
		e.AcceptedAt, _ = time.Parse(time.RFC3339Nano, at)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *sqliteStore) Close() error { return s.db.Close() }
