package db

import (
	"fmt"
	"iter"
)

// Enum iterates a chain starting at first, following Next links.
//
// The walk stops after Len() steps so a corrupted, cyclic chain cannot hang
// the caller.
func (d *Database) Enum(first Ref) iter.Seq[Ref] {
	return func(yield func(Ref) bool) {
		for steps := 0; first != Nothing && steps <= d.Len(); steps++ {
			next := d.Get(first).Next
			if !yield(first) {
				return
			}
			first = next
		}
	}
}

// Member reports whether what appears in the chain starting at first.
func (d *Database) Member(what, first Ref) bool {
	for r := range d.Enum(first) {
		if r == what {
			return true
		}
	}
	return false
}

// RemoveFirst unlinks the first occurrence of what from the chain starting at
// first and returns the new head. The removed object's Next is left as is.
func (d *Database) RemoveFirst(first, what Ref) Ref {
	if first == what {
		return d.Get(first).Next
	}
	for prev := range d.Enum(first) {
		p := d.Get(prev)
		if p.Next == what {
			p.Next = d.Get(what).Next
			return first
		}
	}
	return first
}

// Reverse reverses the chain starting at list in place and returns the new head.
func (d *Database) Reverse(list Ref) Ref {
	head := Nothing
	for list != Nothing {
		o := d.Get(list)
		rest := o.Next
		o.Next = head
		head = list
		list = rest
	}
	return head
}

// MoveTo unconditionally relocates what into where, keeping every contents
// chain consistent with the Location fields.
//
// where may be Nothing (detach) or Home (what's own home). A Home move for an
// object without a home detaches it. MoveTo sends no notifications and checks
// no permissions.
func (d *Database) MoveTo(what, where Ref) {
	obj := d.Get(what)

	if loc := obj.Location; loc != Nothing {
		l := d.Get(loc)
		l.Contents = d.RemoveFirst(l.Contents, what)
	}

	if where == Home {
		where = obj.Exits
	}
	if where == Nothing {
		obj.Location = Nothing
		return
	}

	dest := d.Get(where)
	obj.Next = dest.Contents
	dest.Contents = what
	obj.Location = where
}

// CheckContainment verifies that every contents chain holds exactly the
// objects whose Location names that container, and that each such object
// appears in exactly one chain. Rooms and exits anchored in a room's exit
// chain are exempt: their Location is a dropto or destination, not a
// container.
//
// Postcondition: Returns nil when consistent, or one error per violation.
func (d *Database) CheckContainment() []error {
	var errs []error

	anchored := make(map[Ref]bool)
	for ref, o := range d.All() {
		if o.Kind() != KindRoom {
			continue
		}
		for e := range d.Enum(o.Exits) {
			if !d.IsExit(e) {
				errs = append(errs, fmt.Errorf("room %s: exit chain holds non-exit %s", ref, e))
			}
			anchored[e] = true
		}
	}

	seen := make(map[Ref]Ref)
	for ref, o := range d.All() {
		for c := range d.Enum(o.Contents) {
			if prev, dup := seen[c]; dup {
				errs = append(errs, fmt.Errorf("%s appears in contents of both %s and %s", c, prev, ref))
				continue
			}
			seen[c] = ref
			if loc := d.Get(c).Location; loc != ref {
				errs = append(errs, fmt.Errorf("%s is in contents of %s but location is %s", c, ref, loc))
			}
		}
	}

	for ref, o := range d.All() {
		if o.Location == Nothing || anchored[ref] || o.Kind() == KindRoom {
			continue
		}
		if !d.Valid(o.Location) {
			errs = append(errs, fmt.Errorf("%s: location %s out of range", ref, o.Location))
			continue
		}
		if _, ok := seen[ref]; !ok {
			errs = append(errs, fmt.Errorf("%s: location is %s but missing from its contents", ref, o.Location))
		}
	}
	return errs
}
