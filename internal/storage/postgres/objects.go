package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tinymud/internal/game/db"
	"github.com/cory-johannsen/tinymud/internal/storage"
)

const upsertObject = `
	INSERT INTO objects
		(ref, name, description, location, contents, exits, next_ref, lock_key,
		 fail, succ, ofail, osucc, owner, pennies, flags)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	ON CONFLICT (ref) DO UPDATE SET
		name = EXCLUDED.name, description = EXCLUDED.description,
		location = EXCLUDED.location, contents = EXCLUDED.contents,
		exits = EXCLUDED.exits, next_ref = EXCLUDED.next_ref,
		lock_key = EXCLUDED.lock_key, fail = EXCLUDED.fail, succ = EXCLUDED.succ,
		ofail = EXCLUDED.ofail, osucc = EXCLUDED.osucc, owner = EXCLUDED.owner,
		pennies = EXCLUDED.pennies, flags = EXCLUDED.flags,
		updated_at = NOW()`

// Load reads every object row, or returns storage.ErrEmpty.
func (s *ObjectStore) Load(ctx context.Context) (*db.Database, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT ref, name, description, location, contents, exits, next_ref, lock_key,
		       fail, succ, ofail, osucc, owner, pennies, flags
		FROM objects ORDER BY ref`)
	if err != nil {
		return nil, fmt.Errorf("querying objects: %w", err)
	}
	recs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (storage.Record, error) {
		var (
			r                                           storage.Record
			ref, loc, contents, exits, next, key, owner int
			pennies, flags                              int
		)
		o := &r.Object
		err := row.Scan(&ref, &o.Name, &o.Description, &loc, &contents, &exits, &next, &key,
			&o.Fail, &o.Succ, &o.OFail, &o.OSucc, &owner, &pennies, &flags)
		r.Ref = db.Ref(ref)
		o.Location, o.Contents, o.Exits, o.Next = db.Ref(loc), db.Ref(contents), db.Ref(exits), db.Ref(next)
		o.Key, o.Owner = db.Ref(key), db.Ref(owner)
		o.Pennies, o.Flags = pennies, db.Flags(flags)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning objects: %w", err)
	}
	d, err := storage.Assemble(recs)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("world loaded", zap.Int("objects", d.Len()))
	return d, nil
}

// Save upserts every object and deletes rows past the end of d, all in one
// transaction.
//
// Postcondition: The table mirrors d, or is unchanged on error.
func (s *ObjectStore) Save(ctx context.Context, d *db.Database) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning save: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for ref, o := range d.All() {
		batch.Queue(upsertObject, int(ref), o.Name, o.Description,
			int(o.Location), int(o.Contents), int(o.Exits), int(o.Next), int(o.Key),
			o.Fail, o.Succ, o.OFail, o.OSucc, int(o.Owner), o.Pennies, int(o.Flags))
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upserting objects: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM objects WHERE ref >= $1`, d.Len()); err != nil {
		return fmt.Errorf("trimming objects: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing save: %w", err)
	}
	s.logger.Debug("world saved", zap.Int("objects", d.Len()))
	return nil
}
