// Package sqlite persists world snapshots in a SQLite file using the pure-Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/cory-johannsen/tinymud/internal/game/db"
	"github.com/cory-johannsen/tinymud/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS objects (
	ref         INTEGER PRIMARY KEY,
	name        TEXT    NOT NULL,
	description TEXT    NOT NULL DEFAULT '',
	location    INTEGER NOT NULL,
	contents    INTEGER NOT NULL,
	exits       INTEGER NOT NULL,
	next_ref    INTEGER NOT NULL,
	lock_key    INTEGER NOT NULL,
	fail        TEXT    NOT NULL DEFAULT '',
	succ        TEXT    NOT NULL DEFAULT '',
	ofail       TEXT    NOT NULL DEFAULT '',
	osucc       TEXT    NOT NULL DEFAULT '',
	owner       INTEGER NOT NULL,
	pennies     INTEGER NOT NULL DEFAULT 0,
	flags       INTEGER NOT NULL
)`

const selectObjects = `
SELECT ref, name, description, location, contents, exits, next_ref, lock_key,
       fail, succ, ofail, osucc, owner, pennies, flags
FROM objects ORDER BY ref`

const upsertObject = `
INSERT OR REPLACE INTO objects
	(ref, name, description, location, contents, exits, next_ref, lock_key,
	 fail, succ, ofail, osucc, owner, pennies, flags)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Store is a storage.Store backed by a SQLite database.
type Store struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// Open opens or creates the SQLite file at path, sets WAL mode and creates
// the objects table.
//
// Postcondition: Returns an open Store or a non-nil error.
func Open(ctx context.Context, path string, logger *zap.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: creating %s: %w", dir, err)
		}
	}
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening %s: %w", path, err)
	}
	// One connection keeps the single-writer file free of SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)
	for _, stmt := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000", schema} {
		if _, err := sqlDB.ExecContext(ctx, stmt); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("sqlite: initialising %s: %w", path, err)
		}
	}
	return &Store{db: sqlDB, path: path, logger: logger}, nil
}

// Path returns the filesystem path of the SQLite database.
func (s *Store) Path() string { return s.path }

// Load reads the saved world, or returns storage.ErrEmpty.
func (s *Store) Load(ctx context.Context) (*db.Database, error) {
	rows, err := s.db.QueryContext(ctx, selectObjects)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying objects: %w", err)
	}
	defer rows.Close()

	var recs []storage.Record
	for rows.Next() {
		var r storage.Record
		o := &r.Object
		if err := rows.Scan(&r.Ref, &o.Name, &o.Description, &o.Location, &o.Contents,
			&o.Exits, &o.Next, &o.Key, &o.Fail, &o.Succ, &o.OFail, &o.OSucc,
			&o.Owner, &o.Pennies, &o.Flags); err != nil {
			return nil, fmt.Errorf("sqlite: scanning object: %w", err)
		}
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: reading objects: %w", err)
	}
	d, err := storage.Assemble(recs)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("world loaded", zap.String("path", s.path), zap.Int("objects", d.Len()))
	return d, nil
}

// Save replaces the stored world with d in a single transaction.
func (s *Store) Save(ctx context.Context, d *db.Database) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, upsertObject)
	if err != nil {
		return fmt.Errorf("sqlite: prepare: %w", err)
	}
	defer stmt.Close()

	for ref, o := range d.All() {
		if _, err = stmt.ExecContext(ctx, int(ref), o.Name, o.Description,
			int(o.Location), int(o.Contents), int(o.Exits), int(o.Next), int(o.Key),
			o.Fail, o.Succ, o.OFail, o.OSucc, int(o.Owner), o.Pennies, int(o.Flags)); err != nil {
			return fmt.Errorf("sqlite: saving object %s: %w", ref, err)
		}
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM objects WHERE ref >= ?`, d.Len()); err != nil {
		return fmt.Errorf("sqlite: trimming objects: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	s.logger.Debug("world saved", zap.String("path", s.path), zap.Int("objects", d.Len()))
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
