// Package db provides the in-memory object store: object references, kinds,
// flags, and the arena holding every object in the world.
package db

import "fmt"

// Ref is an object reference: an index into the Database arena.
type Ref int

// Sentinel references.
const (
	// Nothing means "no object" or "no container".
	Nothing Ref = -1
	// Ambiguous is a resolver result meaning more than one candidate matched.
	Ambiguous Ref = -2
	// Home is a move destination meaning "the mover's own home".
	Home Ref = -3
)

// String renders the reference the way players type it.
func (r Ref) String() string {
	switch r {
	case Nothing:
		return "*NOTHING*"
	case Ambiguous:
		return "*AMBIGUOUS*"
	case Home:
		return "*HOME*"
	default:
		return fmt.Sprintf("#%d", int(r))
	}
}

// Kind is the type tag stored in the low bits of an object's flags.
type Kind int

// Object kinds. Exactly one applies to every object.
const (
	KindRoom   Kind = 0x0
	KindThing  Kind = 0x1
	KindExit   Kind = 0x2
	KindPlayer Kind = 0x3
)

// TypeMask selects the Kind bits from Flags.
const TypeMask Flags = 0x3

// String returns the lowercase kind name used in world files and logs.
func (k Kind) String() string {
	switch k {
	case KindRoom:
		return "room"
	case KindThing:
		return "thing"
	case KindExit:
		return "exit"
	case KindPlayer:
		return "player"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of Kind.String.
//
// Postcondition: Returns (kind, true) for a known name, or (0, false).
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "room":
		return KindRoom, true
	case "thing":
		return KindThing, true
	case "exit":
		return KindExit, true
	case "player":
		return KindPlayer, true
	default:
		return 0, false
	}
}

// Flags is the object attribute bitset. The low two bits hold the Kind.
type Flags int

// Attribute flag bits, independent of the kind.
const (
	Antilock Flags = 0x8
	Wizard   Flags = 0x10
	LinkOK   Flags = 0x20
	Dark     Flags = 0x40
	Temple   Flags = 0x80
	Sticky   Flags = 0x100
	Builder  Flags = 0x200
)

var flagNames = []struct {
	bit  Flags
	name string
}{
	{Antilock, "antilock"},
	{Wizard, "wizard"},
	{LinkOK, "link_ok"},
	{Dark, "dark"},
	{Temple, "temple"},
	{Sticky, "sticky"},
	{Builder, "builder"},
}

// ParseFlag returns the bit for a flag name as written in world files.
func ParseFlag(s string) (Flags, bool) {
	for _, fn := range flagNames {
		if fn.name == s {
			return fn.bit, true
		}
	}
	return 0, false
}

// Names lists the attribute flags set in f, excluding the kind bits.
func (f Flags) Names() []string {
	var out []string
	for _, fn := range flagNames {
		if f&fn.bit != 0 {
			out = append(out, fn.name)
		}
	}
	return out
}

// Object is a single record in the object store.
//
// Exits is dual-purpose: for rooms it heads the chain of exits anchored in the
// room; for players and things it is the home. Next links the object to its
// sibling in whichever chain currently holds it and is meaningful only while
// the object is contained.
type Object struct {
	Name        string
	Description string
	Location    Ref
	Contents    Ref
	Exits       Ref
	Next        Ref
	Key         Ref
	Fail        string
	Succ        string
	OFail       string
	OSucc       string
	Owner       Ref
	Pennies     int
	Flags       Flags
}

// NewObject returns an unlinked object of the given kind with every reference
// set to Nothing.
func NewObject(name string, kind Kind) *Object {
	return &Object{
		Name:     name,
		Location: Nothing,
		Contents: Nothing,
		Exits:    Nothing,
		Next:     Nothing,
		Key:      Nothing,
		Owner:    Nothing,
		Flags:    Flags(kind),
	}
}

// Kind returns the object's type tag.
func (o *Object) Kind() Kind {
	return Kind(o.Flags & TypeMask)
}

// Has reports whether every bit in f is set on the object.
func (o *Object) Has(f Flags) bool {
	return o.Flags&f == f
}

// Set sets or clears the bits in f.
func (o *Object) Set(f Flags, on bool) {
	if on {
		o.Flags |= f
	} else {
		o.Flags &^= f
	}
}
