// Package gameserver wires the world engine into a running server: the Game
// facade serializing every command, periodic checkpoints, and the local
// console.
package gameserver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tinymud/internal/game/command"
	"github.com/cory-johannsen/tinymud/internal/game/db"
	"github.com/cory-johannsen/tinymud/internal/game/dice"
	"github.com/cory-johannsen/tinymud/internal/game/look"
	"github.com/cory-johannsen/tinymud/internal/game/match"
	"github.com/cory-johannsen/tinymud/internal/game/message"
	"github.com/cory-johannsen/tinymud/internal/game/move"
	"github.com/cory-johannsen/tinymud/internal/game/notify"
	"github.com/cory-johannsen/tinymud/internal/game/predicates"
	"github.com/cory-johannsen/tinymud/internal/storage"
)

// ErrNotPlayer is returned when a ref that is not a player tries to act.
var ErrNotPlayer = errors.New("not a player")

// Game owns the Database and runs one command at a time against it.
//
// Invariant: every read or write of the Database happens under mu.
type Game struct {
	mu         sync.Mutex
	db         *db.Database
	dispatcher *command.Dispatcher
	looker     *look.Looker
	store      storage.Store
	logger     *zap.Logger
}

// NewGame wires the engine around d. Text for players goes to transport.
//
// Precondition: all arguments must be non-nil; cfg.PennyRate must be > 0.
func NewGame(
	d *db.Database,
	catalog *message.Catalog,
	transport notify.Transport,
	store storage.Store,
	rng dice.Source,
	cfg move.Config,
	logger *zap.Logger,
) *Game {
	notifier := notify.NewNotifier(d, catalog, transport)
	preds := predicates.New(d, notifier)
	matcher := match.NewMatcher(d, preds, notifier, rng)
	looker := look.NewLooker(d, preds, notifier)
	mover := move.NewMover(d, preds, notifier, matcher, looker, rng, cfg, logger.Named("move"))
	dispatcher := command.NewDispatcher(d, command.DefaultRegistry(), mover, matcher, looker, notifier, logger.Named("command"))

	return &Game{
		db:         d,
		dispatcher: dispatcher,
		looker:     looker,
		store:      store,
		logger:     logger,
	}
}

func (g *Game) checkPlayer(player db.Ref) error {
	if !g.db.Valid(player) || !g.db.IsPlayer(player) {
		return fmt.Errorf("%s: %w", player, ErrNotPlayer)
	}
	return nil
}

// PlayerName returns the name of player.
func (g *Game) PlayerName(player db.Ref) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkPlayer(player); err != nil {
		return "", err
	}
	return g.db.Get(player).Name, nil
}

// Connect shows player their surroundings, as on login.
func (g *Game) Connect(player db.Ref) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkPlayer(player); err != nil {
		return err
	}
	if loc := g.db.Get(player).Location; loc != db.Nothing {
		g.looker.LookRoom(player, loc)
	}
	return nil
}

// Execute runs one input line for player.
//
// Postcondition: Returns true when the player asked to quit. Lines from refs
// that are not players are logged and ignored.
func (g *Game) Execute(player db.Ref, line string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkPlayer(player); err != nil {
		g.logger.Warn("ignoring command", zap.Stringer("player", player), zap.Error(err))
		return false
	}
	return g.dispatcher.Dispatch(player, line)
}

// Snapshot returns a deep copy of the world taken under the command lock.
func (g *Game) Snapshot() *db.Database {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.db.Clone()
}

// Checkpoint saves a snapshot to the store. Commands keep running while the
// snapshot is written.
func (g *Game) Checkpoint(ctx context.Context) error {
	start := time.Now()
	snap := g.Snapshot()
	if errs := snap.CheckContainment(); len(errs) > 0 {
		g.logger.Warn("saving world with containment violations",
			zap.Int("violations", len(errs)),
			zap.Error(errors.Join(errs...)),
		)
	}
	if err := g.store.Save(ctx, snap); err != nil {
		return fmt.Errorf("checkpoint: %w", err)
	}
	g.logger.Info("checkpoint saved",
		zap.Int("objects", snap.Len()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}
