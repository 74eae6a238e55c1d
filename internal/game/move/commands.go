package move

import (
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tinymud/internal/game/db"
	"github.com/cory-johannsen/tinymud/internal/game/match"
	"github.com/cory-johannsen/tinymud/internal/game/message"
)

// HomeCommand is the direction that sends a player home.
const HomeCommand = "home"

func isHome(direction string) bool {
	return strings.EqualFold(direction, HomeCommand)
}

// CanMove reports whether direction names "home" or an exit from the
// player's room. Locks are not consulted.
func (m *Mover) CanMove(player db.Ref, direction string) bool {
	if isHome(direction) {
		return true
	}
	return m.matcher.Begin(player, direction, db.KindExit).Exit().LastResult().Status != match.NotFound
}

// DoMove moves player through the exit named by direction, or home.
func (m *Mover) DoMove(player db.Ref, direction string) {
	if isHome(direction) {
		if loc := m.db.Get(player).Location; loc != db.Nothing {
			m.notifier.SendExcept(m.db.Get(loc).Contents, player, message.GoesHome, m.db.Name(player))
		}
		for range 3 {
			m.notifier.Send(player, message.NoPlaceLikeHome)
		}
		m.notifier.Send(player, message.WakeUpHome)
		m.SendHome(player)
		return
	}

	r := m.matcher.BeginCheckKeys(player, direction, db.KindExit).Exit().Result()
	switch r.Status {
	case match.NotFound:
		m.notifier.Send(player, message.BadDirection)
	case match.Ambiguous:
		m.notifier.Send(player, message.WhichWay)
	default:
		if m.preds.CanDoit(player, r.Ref, message.BadDirection) {
			m.EnterRoom(player, m.db.Get(r.Ref).Location)
		}
	}
}

// DoGet picks up the thing or unlinked exit named by what. Wizards may name
// any object with "#n".
func (m *Mover) DoGet(player db.Ref, what string) {
	mt := m.matcher.BeginCheckKeys(player, what, db.KindThing).Neighbor().Exit()
	if m.db.IsWizard(player) {
		mt.Absolute()
	}
	r := mt.NoisyResult()
	if !r.Ok() {
		return
	}
	thing := r.Ref
	t := m.db.Get(thing)

	if t.Location == player {
		m.notifier.Send(player, message.AlreadyHaveIt)
		return
	}

	switch t.Kind() {
	case db.KindThing:
		if m.preds.CanDoit(player, thing, message.CantPickUp) {
			m.MoveTo(thing, player)
			m.notifier.Send(player, message.Taken)
		}
	case db.KindExit:
		m.getExit(player, thing)
	default:
		m.notifier.Send(player, message.CantTake)
	}
}

// getExit moves an unlinked exit from the room's exit chain into player's
// contents. Exits live in the exit chain, so this splices directly instead
// of going through MoveTo.
func (m *Mover) getExit(player, exit db.Ref) {
	e := m.db.Get(exit)
	switch {
	case !m.preds.Controls(player, exit):
		m.notifier.Send(player, message.CantPickUp)
		return
	case e.Location != db.Nothing:
		m.notifier.Send(player, message.NoGetLinkedExit)
		return
	}

	loc := m.db.Get(player).Location
	if loc == db.Nothing {
		return
	}
	room := m.db.Get(loc)
	if !m.db.Member(exit, room.Exits) {
		m.notifier.Send(player, message.NoGetExitElsewhere)
		return
	}

	p := m.db.Get(player)
	room.Exits = m.db.RemoveFirst(room.Exits, exit)
	e.Next = p.Contents
	p.Contents = exit
	e.Location = player
	m.logger.Debug("exit taken",
		zap.Stringer("exit", exit),
		zap.Stringer("from", loc),
		zap.Stringer("player", player),
	)
	m.notifier.Send(player, message.ExitTaken)
}

// DoDrop puts down the possession named by name. In priority order: exits
// are anchored in the room, TEMPLE rooms consume the thing for a reward,
// STICKY things go home, a non-STICKY room's dropto receives the thing, and
// otherwise the thing lands in the room.
func (m *Mover) DoDrop(player db.Ref, name string) {
	loc := m.db.Get(player).Location
	if loc == db.Nothing {
		return
	}

	r := m.matcher.Begin(player, name, db.KindThing).Possession().Result()
	switch r.Status {
	case match.NotFound:
		m.notifier.Send(player, message.DontHaveIt)
		return
	case match.Ambiguous:
		m.notifier.Send(player, message.Which)
		return
	}
	thing := r.Ref
	t := m.db.Get(thing)
	room := m.db.Get(loc)

	switch {
	case t.Location != player:
		m.logger.Warn("possession match outside inventory",
			zap.Stringer("player", player),
			zap.Stringer("thing", thing),
			zap.Stringer("location", t.Location),
		)
		m.notifier.Send(player, message.CantDropThat)

	case t.Kind() == db.KindExit:
		if !m.preds.Controls(player, loc) {
			m.notifier.Send(player, message.NoDropExitHere)
			return
		}
		m.MoveTo(thing, db.Nothing)
		t.Next = room.Exits
		room.Exits = thing
		m.notifier.Send(player, message.ExitDropped)

	case m.db.IsTemple(loc):
		m.sacrifice(player, thing, loc)

	case m.db.IsSticky(thing):
		m.SendHome(thing)
		m.notifier.Send(player, message.Dropped)

	case room.Location != db.Nothing && !m.db.IsSticky(loc):
		m.MoveTo(thing, room.Location)
		m.notifier.Send(player, message.Dropped)

	default:
		m.MoveTo(thing, loc)
		m.notifier.Send(player, message.Dropped)
		m.notifier.SendExcept(room.Contents, player, message.DroppedThing, m.db.Name(player), t.Name)
	}
}

// sacrifice sends thing home from a TEMPLE room and pays player for it
// unless player controls it.
func (m *Mover) sacrifice(player, thing, loc db.Ref) {
	m.SendHome(thing)

	thingName := m.db.Name(thing)
	m.notifier.Send(player, message.ConsumedInFlame, thingName)
	m.notifier.SendExcept(m.db.Get(loc).Contents, player, message.Sacrifices, m.db.Name(player), thingName)

	if m.preds.Controls(player, thing) {
		return
	}

	p := m.db.Get(player)
	reward := m.db.Get(thing).Pennies
	switch {
	case reward < 1 || p.Pennies > m.cfg.MaxPennies:
		reward = 1
	case reward > m.cfg.MaxObjectEndowment:
		reward = m.cfg.MaxObjectEndowment
	}
	p.Pennies += reward
	m.logger.Info("sacrifice rewarded",
		zap.Stringer("player", player),
		zap.Stringer("thing", thing),
		zap.Int("reward", reward),
		zap.Int("balance", p.Pennies),
	)

	if reward == 1 {
		m.notifier.Send(player, message.ReceivedPenny, reward)
	} else {
		m.notifier.Send(player, message.ReceivedPennies, reward)
	}
}
