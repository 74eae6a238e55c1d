// Package world loads the bootstrap world: a YAML description of every
// object, validated and linked into a db.Database.
package world

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cory-johannsen/tinymud/internal/game/db"
)

// ErrEmptyWorld is returned for a world file without objects.
var ErrEmptyWorld = errors.New("world has no objects")

// Definition is a parsed world file before linking.
type Definition struct {
	Name    string
	Objects []ObjectDef
}

// ObjectDef describes one object. Fields that do not apply to the object's
// kind must be db.Nothing.
type ObjectDef struct {
	ID          db.Ref
	Kind        db.Kind
	Name        string
	Description string
	Flags       db.Flags
	Owner       db.Ref
	Key         db.Ref
	Fail        string
	Succ        string
	OFail       string
	OSucc       string
	Pennies     int

	// Dropto applies to rooms and may be db.Home.
	Dropto db.Ref
	// Location applies to players and things.
	Location db.Ref
	// Home applies to players and things.
	Home db.Ref
	// Source applies to exits: the room whose exit list holds the exit, or
	// the player or thing carrying it.
	Source db.Ref
	// Destination applies to exits and may be db.Home.
	Destination db.Ref
}

// Validate checks every object definition and reports all violations.
//
// Postcondition: Returns nil if valid, or an error joining every violation.
func (w *Definition) Validate() error {
	if len(w.Objects) == 0 {
		return ErrEmptyWorld
	}

	var errs []error
	ids := make([]int, 0, len(w.Objects))
	seen := make(map[db.Ref]bool, len(w.Objects))
	for _, o := range w.Objects {
		if seen[o.ID] {
			errs = append(errs, fmt.Errorf("object %s: duplicate id", o.ID))
		}
		seen[o.ID] = true
		ids = append(ids, int(o.ID))
	}
	sort.Ints(ids)
	for i, id := range ids {
		if id != i {
			errs = append(errs, fmt.Errorf("object ids must be dense from #0: missing #%d", i))
			break
		}
	}

	kindOf := make(map[db.Ref]db.Kind, len(w.Objects))
	for _, o := range w.Objects {
		kindOf[o.ID] = o.Kind
	}
	n := db.Ref(len(w.Objects))
	inRange := func(r db.Ref) bool { return r >= 0 && r < n }
	isKind := func(r db.Ref, kinds ...db.Kind) bool {
		k, ok := kindOf[r]
		if !ok {
			return false
		}
		for _, want := range kinds {
			if k == want {
				return true
			}
		}
		return false
	}
	check := func(o ObjectDef, field string, ok bool) {
		if !ok {
			errs = append(errs, fmt.Errorf("object %s (%s): invalid %s", o.ID, o.Name, field))
		}
	}
	unset := func(o ObjectDef, field string, r db.Ref) {
		if r != db.Nothing {
			errs = append(errs, fmt.Errorf("object %s (%s): %s does not apply to a %s", o.ID, o.Name, field, o.Kind))
		}
	}

	for _, o := range w.Objects {
		check(o, "name", o.Name != "")
		check(o, "pennies", o.Pennies >= 0)
		check(o, "owner", o.Owner == db.Nothing || isKind(o.Owner, db.KindPlayer))
		check(o, "key", o.Key == db.Nothing || inRange(o.Key))

		switch o.Kind {
		case db.KindRoom:
			check(o, "dropto", o.Dropto == db.Nothing || o.Dropto == db.Home || isKind(o.Dropto, db.KindRoom))
			unset(o, "location", o.Location)
			unset(o, "home", o.Home)
			unset(o, "source", o.Source)
			unset(o, "destination", o.Destination)
		case db.KindPlayer, db.KindThing:
			check(o, "home", isKind(o.Home, db.KindRoom))
			check(o, "location", o.Location == db.Nothing || isKind(o.Location, db.KindRoom, db.KindPlayer, db.KindThing))
			check(o, "location", o.Location != o.ID)
			unset(o, "dropto", o.Dropto)
			unset(o, "source", o.Source)
			unset(o, "destination", o.Destination)
		case db.KindExit:
			check(o, "source", isKind(o.Source, db.KindRoom, db.KindPlayer, db.KindThing))
			check(o, "destination", o.Destination == db.Nothing || o.Destination == db.Home || isKind(o.Destination, db.KindRoom))
			if isKind(o.Source, db.KindPlayer, db.KindThing) && o.Destination != db.Nothing {
				errs = append(errs, fmt.Errorf("object %s (%s): a carried exit must be unlinked", o.ID, o.Name))
			}
			unset(o, "dropto", o.Dropto)
			unset(o, "location", o.Location)
			unset(o, "home", o.Home)
		default:
			errs = append(errs, fmt.Errorf("object %s (%s): unknown kind %d", o.ID, o.Name, o.Kind))
		}
	}
	if len(errs) == 0 {
		errs = append(errs, containmentCycles(w.Objects)...)
	}
	return errors.Join(errs...)
}

// containmentCycles reports objects whose location chain loops back on itself.
//
// Precondition: ids are dense and every location is in range.
func containmentCycles(objs []ObjectDef) []error {
	loc := make([]db.Ref, len(objs))
	for _, o := range objs {
		loc[o.ID] = db.Nothing
		if o.Kind == db.KindPlayer || o.Kind == db.KindThing {
			loc[o.ID] = o.Location
		}
	}
	var errs []error
	for _, o := range objs {
		at := loc[o.ID]
		for steps := 0; at != db.Nothing; steps++ {
			if at == o.ID || steps > len(objs) {
				errs = append(errs, fmt.Errorf("object %s (%s): contained in itself", o.ID, o.Name))
				break
			}
			at = loc[at]
		}
	}
	return errs
}

// Build validates the definition and links it into a Database. Every chain
// lists its members in file order.
//
// Postcondition: Returns a Database satisfying the containment invariant, or
// a non-nil error.
func (w *Definition) Build() (*db.Database, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	defs := make([]ObjectDef, len(w.Objects))
	copy(defs, w.Objects)
	sort.SliceStable(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })

	d := db.NewDatabase()
	for _, o := range defs {
		obj := db.NewObject(o.Name, o.Kind)
		obj.Description = o.Description
		obj.Flags |= o.Flags &^ db.TypeMask
		obj.Owner = o.Owner
		obj.Key = o.Key
		obj.Fail = o.Fail
		obj.Succ = o.Succ
		obj.OFail = o.OFail
		obj.OSucc = o.OSucc
		obj.Pennies = o.Pennies
		switch o.Kind {
		case db.KindRoom:
			obj.Location = o.Dropto
		case db.KindPlayer, db.KindThing:
			obj.Exits = o.Home
		case db.KindExit:
			obj.Location = o.Destination
		}
		d.Add(obj)
	}

	// Prepending in reverse file order leaves each chain in file order.
	for i := len(w.Objects) - 1; i >= 0; i-- {
		o := w.Objects[i]
		switch o.Kind {
		case db.KindPlayer, db.KindThing:
			if o.Location != db.Nothing {
				d.MoveTo(o.ID, o.Location)
			}
		case db.KindExit:
			e := d.Get(o.ID)
			src := d.Get(o.Source)
			if src.Kind() == db.KindRoom {
				e.Next = src.Exits
				src.Exits = o.ID
			} else {
				e.Next = src.Contents
				src.Contents = o.ID
				e.Location = o.Source
			}
		}
	}

	if errs := d.CheckContainment(); len(errs) > 0 {
		return nil, fmt.Errorf("linking world: %w", errors.Join(errs...))
	}
	return d, nil
}
