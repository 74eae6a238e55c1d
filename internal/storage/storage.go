// Package storage persists world snapshots. Drivers live in subpackages;
// drivers.Open selects one from configuration.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/cory-johannsen/tinymud/internal/game/db"
)

var (
	// ErrEmpty is returned by Load when no world has been saved yet.
	ErrEmpty = errors.New("storage: no saved world")
	// ErrUnknownDriver is returned for an unrecognised storage driver name.
	ErrUnknownDriver = errors.New("storage: unknown driver")
)

// Store saves and restores whole-world snapshots.
//
// Save replaces the stored world atomically: a failed Save leaves the
// previous snapshot intact.
type Store interface {
	Load(ctx context.Context) (*db.Database, error)
	Save(ctx context.Context, d *db.Database) error
	Close() error
}

// Record is one persisted object.
type Record struct {
	Ref    db.Ref
	Object db.Object
}

// Records flattens d into one record per object, in ref order.
func Records(d *db.Database) []Record {
	out := make([]Record, 0, d.Len())
	for ref, o := range d.All() {
		out = append(out, Record{Ref: ref, Object: *o})
	}
	return out
}

// Assemble rebuilds a Database from records in any order.
//
// Postcondition: Returns ErrEmpty for no records, an error if the refs are
// not exactly 0..n-1, or the Database.
func Assemble(recs []Record) (*db.Database, error) {
	if len(recs) == 0 {
		return nil, ErrEmpty
	}
	sorted := make([]Record, len(recs))
	copy(sorted, recs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Ref < sorted[j].Ref })

	d := db.NewDatabase()
	for i, r := range sorted {
		if r.Ref != db.Ref(i) {
			return nil, fmt.Errorf("storage: object refs not dense: found %s at position %d", r.Ref, i)
		}
		obj := r.Object
		d.Add(&obj)
	}
	return d, nil
}
