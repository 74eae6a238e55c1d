package command

import (
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tinymud/internal/game/db"
	"github.com/cory-johannsen/tinymud/internal/game/look"
	"github.com/cory-johannsen/tinymud/internal/game/match"
	"github.com/cory-johannsen/tinymud/internal/game/message"
	"github.com/cory-johannsen/tinymud/internal/game/move"
	"github.com/cory-johannsen/tinymud/internal/game/notify"
)

// Dispatcher turns input lines into world operations.
type Dispatcher struct {
	db       *db.Database
	registry *Registry
	mover    *move.Mover
	matcher  *match.Matcher
	looker   *look.Looker
	notifier *notify.Notifier
	logger   *zap.Logger
}

// NewDispatcher creates a Dispatcher.
//
// Precondition: all arguments must be non-nil.
func NewDispatcher(
	d *db.Database,
	registry *Registry,
	mover *move.Mover,
	matcher *match.Matcher,
	looker *look.Looker,
	notifier *notify.Notifier,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		db:       d,
		registry: registry,
		mover:    mover,
		matcher:  matcher,
		looker:   looker,
		notifier: notifier,
		logger:   logger,
	}
}

// Dispatch runs one input line for player. A line that names an exit (or
// "home") moves the player before any command word is considered.
//
// Postcondition: Returns true when the player asked to quit.
func (d *Dispatcher) Dispatch(player db.Ref, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	if d.mover.CanMove(player, line) {
		d.mover.DoMove(player, line)
		return false
	}

	pr := Parse(line)
	cmd, ok := d.registry.Resolve(pr.Command)
	if !ok {
		d.logger.Debug("unknown command",
			zap.Stringer("player", player),
			zap.String("command", pr.Command),
		)
		d.notifier.Send(player, message.Huh)
		return false
	}

	switch cmd.Handler {
	case HandlerMove:
		d.mover.DoMove(player, pr.RawArgs)
	case HandlerHome:
		d.mover.DoMove(player, move.HomeCommand)
	case HandlerGet:
		d.mover.DoGet(player, pr.RawArgs)
	case HandlerDrop:
		d.mover.DoDrop(player, pr.RawArgs)
	case HandlerLook:
		d.look(player, pr.RawArgs)
	case HandlerInventory:
		d.looker.Inventory(player)
	case HandlerScore:
		d.looker.Score(player)
	case HandlerHelp:
		d.help(player)
	case HandlerQuit:
		return true
	default:
		d.logger.Warn("command without handler branch", zap.String("command", cmd.Name), zap.String("handler", cmd.Handler))
		d.notifier.Send(player, message.Huh)
	}
	return false
}

func (d *Dispatcher) look(player db.Ref, name string) {
	if name == "" {
		if loc := d.db.Get(player).Location; loc != db.Nothing {
			d.looker.LookRoom(player, loc)
		}
		return
	}
	r := d.matcher.Begin(player, name, match.NoType).Everything().NoisyResult()
	if r.Ok() {
		d.looker.LookAt(player, r.Ref)
	}
}

// helpCategories orders the sections of the help listing.
var helpCategories = []struct {
	name  string
	label string
}{
	{CategoryMovement, "Movement"},
	{CategoryWorld, "World"},
	{CategorySystem, "System"},
}

func (d *Dispatcher) help(player db.Ref) {
	byCategory := d.registry.CommandsByCategory()
	for _, cat := range helpCategories {
		cmds := byCategory[cat.name]
		if len(cmds) == 0 {
			continue
		}
		d.notifier.Send(player, message.HelpCategory, cat.label)
		for _, cmd := range cmds {
			synopsis := cmd.Name
			if cmd.Usage != "" {
				synopsis += " " + cmd.Usage
			}
			d.notifier.Send(player, message.HelpLine, synopsis, cmd.Help)
		}
	}
}
