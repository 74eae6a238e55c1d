// Package look renders what a player sees on arriving in a room.
package look

import (
	"github.com/cory-johannsen/tinymud/internal/game/db"
	"github.com/cory-johannsen/tinymud/internal/game/message"
	"github.com/cory-johannsen/tinymud/internal/game/notify"
	"github.com/cory-johannsen/tinymud/internal/game/predicates"
)

// Looker presents rooms to players.
type Looker struct {
	db       *db.Database
	preds    *predicates.Predicates
	notifier *notify.Notifier
}

// NewLooker creates a Looker.
//
// Precondition: all arguments must be non-nil.
func NewLooker(d *db.Database, preds *predicates.Predicates, notifier *notify.Notifier) *Looker {
	return &Looker{db: d, preds: preds, notifier: notifier}
}

// Unparse renders thing's name for player, with its "#n" when player
// controls it or could link to it.
func (l *Looker) Unparse(player, thing db.Ref) string {
	if !l.db.Valid(thing) {
		return thing.String()
	}
	if l.preds.Controls(player, thing) || l.preds.CanLinkTo(player, thing) {
		return l.notifier.Catalog().Format(message.NameWithRef, l.db.Name(thing), thing.String())
	}
	return l.db.Name(thing)
}

// LookRoom sends player the room's name, its description, its lock messages
// and the visible contents.
func (l *Looker) LookRoom(player, loc db.Ref) {
	l.notifier.Notify(player, l.Unparse(player, loc))
	if desc := l.db.Get(loc).Description; desc != "" {
		l.notifier.Notify(player, desc)
	}
	l.preds.CanDoit(player, loc, message.None)
	l.LookContents(player, loc)
}

// LookContents lists what player can see in loc under a "Contents:" header.
// Nothing is sent when nothing is visible.
func (l *Looker) LookContents(player, loc db.Ref) {
	canSeeLoc := !l.db.IsDark(loc) || l.preds.Controls(player, loc)

	var visible []db.Ref
	for thing := range l.db.Enum(l.db.Get(loc).Contents) {
		if l.preds.CanSee(player, thing, canSeeLoc) {
			visible = append(visible, thing)
		}
	}
	if len(visible) == 0 {
		return
	}
	l.notifier.Send(player, message.Contents)
	for _, thing := range visible {
		l.notifier.Notify(player, l.Unparse(player, thing))
	}
}

// LookAt shows player a single object. Rooms get the full room view.
func (l *Looker) LookAt(player, thing db.Ref) {
	if l.db.IsRoom(thing) {
		l.LookRoom(player, thing)
		return
	}
	l.notifier.Notify(player, l.Unparse(player, thing))
	if desc := l.db.Get(thing).Description; desc != "" {
		l.notifier.Notify(player, desc)
	} else {
		l.notifier.Send(player, message.NothingSpecial)
	}
}

// Inventory lists what player carries, then the balance.
func (l *Looker) Inventory(player db.Ref) {
	first := l.db.Get(player).Contents
	if first == db.Nothing {
		l.notifier.Send(player, message.CarryingNothing)
	} else {
		l.notifier.Send(player, message.Carrying)
		for thing := range l.db.Enum(first) {
			l.notifier.Notify(player, l.Unparse(player, thing))
		}
	}
	l.Score(player)
}

// Score tells player their balance.
func (l *Looker) Score(player db.Ref) {
	pennies := l.db.Get(player).Pennies
	if pennies == 1 {
		l.notifier.Send(player, message.ScorePenny, pennies)
		return
	}
	l.notifier.Send(player, message.ScorePennies, pennies)
}
