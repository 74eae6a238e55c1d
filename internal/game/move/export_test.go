package move

import "github.com/cory-johannsen/tinymud/internal/game/db"

// MaybeDropto exposes maybeDropto to tests.
func (m *Mover) MaybeDropto(loc, dropto db.Ref) { m.maybeDropto(loc, dropto) }

// SendContents exposes sendContents to tests.
func (m *Mover) SendContents(loc, dest db.Ref) { m.sendContents(loc, dest) }
