// Package move relocates objects between containers and implements the
// player commands built on relocation: moving through exits, going home,
// picking things up and dropping them.
//
// Every contents chain stays consistent with the Location fields of its
// members across every operation here. The package performs no locking;
// callers serialize access to the Database.
package move

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/tinymud/internal/game/db"
	"github.com/cory-johannsen/tinymud/internal/game/dice"
	"github.com/cory-johannsen/tinymud/internal/game/look"
	"github.com/cory-johannsen/tinymud/internal/game/match"
	"github.com/cory-johannsen/tinymud/internal/game/message"
	"github.com/cory-johannsen/tinymud/internal/game/notify"
	"github.com/cory-johannsen/tinymud/internal/game/predicates"
)

// Config holds the penny economy constants.
type Config struct {
	// PennyRate is the 1-in-N chance of finding a penny on entering a room.
	PennyRate int
	// MaxPennies is the balance above which no pennies are found and
	// sacrifices pay a single penny.
	MaxPennies int
	// MaxObjectEndowment caps the reward for a single sacrifice.
	MaxObjectEndowment int
}

// DefaultConfig returns the classic economy constants.
func DefaultConfig() Config {
	return Config{PennyRate: 10, MaxPennies: 10000, MaxObjectEndowment: 100}
}

// Mover owns every relocation of objects in a Database.
type Mover struct {
	db       *db.Database
	preds    *predicates.Predicates
	notifier *notify.Notifier
	matcher  *match.Matcher
	looker   *look.Looker
	rng      dice.Source
	cfg      Config
	logger   *zap.Logger
}

// NewMover creates a Mover.
//
// Precondition: all pointer arguments must be non-nil; cfg.PennyRate must be > 0.
func NewMover(
	d *db.Database,
	preds *predicates.Predicates,
	notifier *notify.Notifier,
	matcher *match.Matcher,
	looker *look.Looker,
	rng dice.Source,
	cfg Config,
	logger *zap.Logger,
) *Mover {
	if cfg.PennyRate <= 0 {
		panic("move.NewMover: PennyRate must be > 0")
	}
	return &Mover{
		db:       d,
		preds:    preds,
		notifier: notifier,
		matcher:  matcher,
		looker:   looker,
		rng:      rng,
		cfg:      cfg,
		logger:   logger,
	}
}

// MoveTo unconditionally relocates what into where. where may be db.Nothing
// or db.Home.
func (m *Mover) MoveTo(what, where db.Ref) {
	from := m.db.Get(what).Location
	m.db.MoveTo(what, where)
	m.logger.Debug("moved",
		zap.Stringer("what", what),
		zap.Stringer("from", from),
		zap.Stringer("to", m.db.Get(what).Location),
	)
}

// EnterRoom moves player into loc with departure and arrival notices, then
// shows the room and rolls for a penny.
//
// When loc is the player's current location nothing moves and nobody else
// is told, but the look and the penny roll still happen. A STICKY room the
// player leaves flushes its contents through its dropto.
func (m *Mover) EnterRoom(player, loc db.Ref) {
	p := m.db.Get(player)
	if loc == db.Home {
		loc = p.Exits
	}
	if loc == db.Nothing {
		m.logger.Warn("enter room without destination", zap.Stringer("player", player))
		m.notifier.Send(player, message.BadDirection)
		return
	}
	name := p.Name
	old := p.Location

	if loc != old {
		if old != db.Nothing && !m.db.IsDark(old) && !m.db.IsDark(player) {
			m.notifier.SendExcept(m.db.Get(old).Contents, player, message.PlayerLeft, name)
		}

		m.MoveTo(player, loc)

		if old != db.Nothing && m.db.IsSticky(old) {
			if dropto := m.db.Get(old).Location; dropto != db.Nothing {
				m.maybeDropto(old, dropto)
			}
		}

		if !m.db.IsDark(loc) && !m.db.IsDark(player) {
			m.notifier.SendExcept(m.db.Get(loc).Contents, player, message.PlayerArrived, name)
		}
	}

	m.looker.LookRoom(player, loc)

	givePenny := dice.OneIn(m.rng, m.cfg.PennyRate)
	if givePenny && !m.preds.Controls(player, loc) && p.Pennies <= m.cfg.MaxPennies {
		m.notifier.Send(player, message.FoundAPenny)
		p.Pennies++
		m.logger.Info("penny found",
			zap.Stringer("player", player),
			zap.Stringer("room", loc),
			zap.Int("balance", p.Pennies),
		)
	}
}

// SendHome returns thing to its home. A player's possessions go home first
// so they are waiting when the player arrives. Rooms and exits are
// unaffected.
func (m *Mover) SendHome(thing db.Ref) {
	switch m.db.Kind(thing) {
	case db.KindPlayer:
		m.sendContents(thing, db.Home)
		m.EnterRoom(thing, m.db.Get(thing).Exits)
	case db.KindThing:
		m.MoveTo(thing, m.db.Get(thing).Exits)
	}
}

// maybeDropto flushes loc's things to dropto unless a player is present.
func (m *Mover) maybeDropto(loc, dropto db.Ref) {
	if loc == dropto {
		return
	}
	for thing := range m.db.Enum(m.db.Get(loc).Contents) {
		if m.db.IsPlayer(thing) {
			return
		}
	}
	m.sendContents(loc, dropto)
}

// sendContents sends every thing in loc to dest, or home when the thing is
// STICKY. Everything else stays in loc in its existing order.
func (m *Mover) sendContents(loc, dest db.Ref) {
	l := m.db.Get(loc)
	first := l.Contents
	l.Contents = db.Nothing

	// Blast locations first so nothing is transiently owned by loc while its
	// chain is being rebuilt.
	for ref := range m.db.Enum(first) {
		m.db.Get(ref).Location = db.Nothing
	}

	for first != db.Nothing {
		rest := m.db.Get(first).Next
		switch {
		case !m.db.IsThing(first):
			m.MoveTo(first, loc)
		case m.db.IsSticky(first):
			m.MoveTo(first, db.Home)
		default:
			m.MoveTo(first, dest)
		}
		first = rest
	}

	l.Contents = m.db.Reverse(l.Contents)
}
