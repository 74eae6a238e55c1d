// Package predicates answers ownership, lock and visibility questions about
// objects in the world.
package predicates

import (
	"github.com/cory-johannsen/tinymud/internal/game/db"
	"github.com/cory-johannsen/tinymud/internal/game/message"
	"github.com/cory-johannsen/tinymud/internal/game/notify"
)

// Predicates evaluates permissions against a Database.
type Predicates struct {
	db       *db.Database
	notifier *notify.Notifier
}

// New creates a Predicates.
//
// Precondition: d and notifier must be non-nil.
func New(d *db.Database, notifier *notify.Notifier) *Predicates {
	return &Predicates{db: d, notifier: notifier}
}

// Controls reports whether who may modify what: what must be a valid object
// and who must be a wizard or its owner.
func (p *Predicates) Controls(who, what db.Ref) bool {
	if !p.db.Valid(what) || !p.db.Valid(who) {
		return false
	}
	return p.db.IsWizard(who) || p.db.Get(what).Owner == who
}

// CouldDoit evaluates thing's lock for player without side effects.
//
// A non-room with no location can never be used. An unlocked thing always
// passes. Otherwise the lock passes when player is the key or carries it,
// inverted by ANTILOCK.
func (p *Predicates) CouldDoit(player, thing db.Ref) bool {
	t := p.db.Get(thing)
	if t.Kind() != db.KindRoom && t.Location == db.Nothing {
		return false
	}
	if t.Key == db.Nothing {
		return true
	}
	status := player == t.Key || p.db.Member(t.Key, p.db.Get(player).Contents)
	if p.db.IsAntilock(thing) {
		return !status
	}
	return status
}

// CanDoit evaluates thing's lock for player and emits the matching messages.
//
// On failure player sees thing's Fail text, or defaultFail when Fail is empty
// and defaultFail is not message.None; the room sees "<player> <OFail>". On
// success player sees Succ and the room sees "<player> <OSucc>", each only
// when set.
//
// Postcondition: Returns false without any message when player has no location.
func (p *Predicates) CanDoit(player, thing db.Ref, defaultFail message.Key) bool {
	loc := p.db.Get(player).Location
	if loc == db.Nothing {
		return false
	}
	t := p.db.Get(thing)
	name := p.db.Name(player)
	room := p.db.Get(loc).Contents

	if !p.CouldDoit(player, thing) {
		switch {
		case t.Fail != "":
			p.notifier.Notify(player, t.Fail)
		case defaultFail != message.None:
			p.notifier.Send(player, defaultFail)
		}
		if t.OFail != "" {
			p.notifier.SendExcept(room, player, message.OtherAction, name, t.OFail)
		}
		return false
	}

	if t.Succ != "" {
		p.notifier.Notify(player, t.Succ)
	}
	if t.OSucc != "" {
		p.notifier.SendExcept(room, player, message.OtherAction, name, t.OSucc)
	}
	return true
}

// CanLinkTo reports whether who may link an exit or home to where: where must
// be a room that who controls or that is LINK_OK.
func (p *Predicates) CanLinkTo(who, where db.Ref) bool {
	if !p.db.Valid(where) || !p.db.IsRoom(where) {
		return false
	}
	return p.Controls(who, where) || p.db.IsLinkOK(where)
}

// CanSee reports whether player sees thing in a contents listing. Players
// never list themselves and exits are never listed. When the location itself
// is visible a thing shows unless it is DARK and not controlled; otherwise
// only controlled things show.
func (p *Predicates) CanSee(player, thing db.Ref, canSeeLoc bool) bool {
	if player == thing || p.db.IsExit(thing) {
		return false
	}
	if canSeeLoc {
		return !p.db.IsDark(thing) || p.Controls(player, thing)
	}
	return p.Controls(player, thing)
}
