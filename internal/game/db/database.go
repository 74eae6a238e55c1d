package db

import (
	"fmt"
	"iter"
)

// Database is the arena holding every object, indexed by Ref.
//
// Database performs no locking. Callers serialize access (see gameserver.Game).
type Database struct {
	objects []*Object
}

// NewDatabase creates an empty Database.
func NewDatabase() *Database {
	return &Database{}
}

// Len returns the number of objects; valid refs are [0, Len()).
func (d *Database) Len() int {
	return len(d.objects)
}

// Valid reports whether ref names an object in the arena.
func (d *Database) Valid(ref Ref) bool {
	return ref >= 0 && int(ref) < len(d.objects)
}

// Get returns the object for ref.
//
// Precondition: Valid(ref). Panics otherwise.
func (d *Database) Get(ref Ref) *Object {
	if !d.Valid(ref) {
		panic(fmt.Sprintf("db: Get(%s) out of range [0,%d)", ref, len(d.objects)))
	}
	return d.objects[ref]
}

// Put replaces the object stored at ref.
//
// Precondition: Valid(ref) and obj is non-nil.
func (d *Database) Put(ref Ref, obj *Object) {
	if !d.Valid(ref) {
		panic(fmt.Sprintf("db: Put(%s) out of range [0,%d)", ref, len(d.objects)))
	}
	d.objects[ref] = obj
}

// Add appends obj to the arena and returns its new Ref.
func (d *Database) Add(obj *Object) Ref {
	d.objects = append(d.objects, obj)
	return Ref(len(d.objects) - 1)
}

// Clone returns a deep copy of the database suitable for persisting outside
// the command lock.
func (d *Database) Clone() *Database {
	out := &Database{objects: make([]*Object, len(d.objects))}
	for i, o := range d.objects {
		cp := *o
		out.objects[i] = &cp
	}
	return out
}

// All iterates every object in ref order.
func (d *Database) All() iter.Seq2[Ref, *Object] {
	return func(yield func(Ref, *Object) bool) {
		for i, o := range d.objects {
			if !yield(Ref(i), o) {
				return
			}
		}
	}
}

// Kind returns the kind of ref.
func (d *Database) Kind(ref Ref) Kind { return d.Get(ref).Kind() }

// IsRoom reports whether ref is a room.
func (d *Database) IsRoom(ref Ref) bool { return d.Kind(ref) == KindRoom }

// IsThing reports whether ref is a thing.
func (d *Database) IsThing(ref Ref) bool { return d.Kind(ref) == KindThing }

// IsExit reports whether ref is an exit.
func (d *Database) IsExit(ref Ref) bool { return d.Kind(ref) == KindExit }

// IsPlayer reports whether ref is a player.
func (d *Database) IsPlayer(ref Ref) bool { return d.Kind(ref) == KindPlayer }

// IsDark reports whether ref has the DARK flag.
func (d *Database) IsDark(ref Ref) bool { return d.Get(ref).Has(Dark) }

// IsSticky reports whether ref has the STICKY flag.
func (d *Database) IsSticky(ref Ref) bool { return d.Get(ref).Has(Sticky) }

// IsTemple reports whether ref has the TEMPLE flag.
func (d *Database) IsTemple(ref Ref) bool { return d.Get(ref).Has(Temple) }

// IsWizard reports whether ref has the WIZARD flag.
func (d *Database) IsWizard(ref Ref) bool { return d.Get(ref).Has(Wizard) }

// IsLinkOK reports whether ref has the LINK_OK flag.
func (d *Database) IsLinkOK(ref Ref) bool { return d.Get(ref).Has(LinkOK) }

// IsAntilock reports whether ref has the ANTILOCK flag.
func (d *Database) IsAntilock(ref Ref) bool { return d.Get(ref).Has(Antilock) }

// Name returns the object's name, or the ref string for invalid refs.
func (d *Database) Name(ref Ref) string {
	if !d.Valid(ref) {
		return ref.String()
	}
	return d.Get(ref).Name
}
