// Package store persists game snapshots in SQLite so games survive a
// restart. Only the current position is kept, never the move list.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/chessrules/chess-server/internal/model"
	_ "github.com/mattn/go-sqlite3"
)

// Record is one stored game.
type Record struct {
	ID        string
	FEN       string
	Status    string
	Resolve   string
	WhiteID   string
	BlackID   string
	// Version orders snapshots of one game; Save never replaces a newer one.
	Version   int64
	UpdatedAt time.Time
}

type Store struct {
	db *sql.DB
}

const schema = `CREATE TABLE IF NOT EXISTS games (
	id         TEXT PRIMARY KEY,
	fen        TEXT NOT NULL,
	status     TEXT NOT NULL,
	resolve    TEXT NOT NULL DEFAULT '',
	white_id   TEXT NOT NULL DEFAULT '',
	black_id   TEXT NOT NULL DEFAULT '',
	version    INTEGER NOT NULL DEFAULT 0,
	updated_at INTEGER NOT NULL
)`

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// SQLite serialises writers anyway; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create games table: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts the record, or replaces the stored one unless that has a
// higher version. Snapshots saved out of order are dropped silently.
func (s *Store) Save(ctx context.Context, rec Record) error {
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO games (id, fen, status, resolve, white_id, black_id, version, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			fen = excluded.fen,
			status = excluded.status,
			resolve = excluded.resolve,
			white_id = excluded.white_id,
			black_id = excluded.black_id,
			version = excluded.version,
			updated_at = excluded.updated_at
		WHERE excluded.version >= games.version`,
		rec.ID, rec.FEN, rec.Status, rec.Resolve, rec.WhiteID, rec.BlackID, rec.Version, rec.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("save game %s: %w", rec.ID, err)
	}
	return nil
}

// Load returns model.ErrGameNotFound when no record has the id.
func (s *Store) Load(ctx context.Context, id string) (Record, error) {
	var (
		rec     Record
		updated int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, fen, status, resolve, white_id, black_id, version, updated_at
		FROM games WHERE id = ?`, id).
		Scan(&rec.ID, &rec.FEN, &rec.Status, &rec.Resolve, &rec.WhiteID, &rec.BlackID, &rec.Version, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("load game %s: %w", id, model.ErrGameNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("load game %s: %w", id, err)
	}
	rec.UpdatedAt = time.UnixMilli(updated)
	return rec, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete game %s: %w", id, err)
	}
	return nil
}
