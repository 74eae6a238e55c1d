package command_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/tinymud/internal/game/command"
	"github.com/cory-johannsen/tinymud/internal/game/db"
	"github.com/cory-johannsen/tinymud/internal/game/dice"
	"github.com/cory-johannsen/tinymud/internal/game/look"
	"github.com/cory-johannsen/tinymud/internal/game/match"
	"github.com/cory-johannsen/tinymud/internal/game/message"
	"github.com/cory-johannsen/tinymud/internal/game/move"
	"github.com/cory-johannsen/tinymud/internal/game/notify"
	"github.com/cory-johannsen/tinymud/internal/game/predicates"
)

type fixture struct {
	d      *db.Database
	rec    *notify.Recorder
	disp   *command.Dispatcher
	limbo  db.Ref
	hall   db.Ref
	bob    db.Ref
	cheese db.Ref
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	d := db.NewDatabase()
	limbo := d.Add(db.NewObject("Limbo", db.KindRoom))
	hall := d.Add(db.NewObject("Hall", db.KindRoom))
	bob := d.Add(db.NewObject("bob", db.KindPlayer))
	d.Get(bob).Exits = limbo
	d.MoveTo(bob, limbo)
	cheese := d.Add(db.NewObject("cheese", db.KindThing))
	d.Get(cheese).Exits = limbo
	d.MoveTo(cheese, limbo)

	north := d.Add(db.NewObject("north;n", db.KindExit))
	d.Get(north).Location = hall
	d.Get(limbo).Exits = north

	rec := notify.NewRecorder()
	rng := dice.NewSequence(1)
	logger := zaptest.NewLogger(t)
	n := notify.NewNotifier(d, message.Default(), rec)
	preds := predicates.New(d, n)
	matcher := match.NewMatcher(d, preds, n, rng)
	looker := look.NewLooker(d, preds, n)
	mover := move.NewMover(d, preds, n, matcher, looker, rng, move.DefaultConfig(), logger)
	disp := command.NewDispatcher(d, command.DefaultRegistry(), mover, matcher, looker, n, logger)

	return &fixture{d: d, rec: rec, disp: disp, limbo: limbo, hall: hall, bob: bob, cheese: cheese}
}

func TestDispatch_ExitNameMoves(t *testing.T) {
	f := newFixture(t)
	assert.False(t, f.disp.Dispatch(f.bob, "N"))
	assert.Equal(t, f.hall, f.d.Get(f.bob).Location)
}

func TestDispatch_GoCommand(t *testing.T) {
	f := newFixture(t)
	f.disp.Dispatch(f.bob, "go north")
	assert.Equal(t, f.hall, f.d.Get(f.bob).Location)

	f.rec.Reset()
	f.disp.Dispatch(f.bob, "go west")
	assert.Equal(t, []string{"You can't go that way."}, f.rec.For(f.bob))
}

func TestDispatch_HomeWord(t *testing.T) {
	f := newFixture(t)
	f.d.MoveTo(f.bob, f.hall)
	f.disp.Dispatch(f.bob, "home")
	assert.Equal(t, f.limbo, f.d.Get(f.bob).Location)
}

func TestDispatch_GetAndDrop(t *testing.T) {
	f := newFixture(t)
	f.disp.Dispatch(f.bob, "take cheese")
	assert.Equal(t, f.bob, f.d.Get(f.cheese).Location)

	f.disp.Dispatch(f.bob, "drop cheese")
	assert.Equal(t, f.limbo, f.d.Get(f.cheese).Location)
	assert.Equal(t, []string{"Taken.", "Dropped."}, f.rec.For(f.bob))
}

func TestDispatch_Look(t *testing.T) {
	f := newFixture(t)
	f.disp.Dispatch(f.bob, "l")
	assert.Equal(t, []string{"Limbo", "Contents:", "cheese"}, f.rec.For(f.bob))

	f.rec.Reset()
	f.disp.Dispatch(f.bob, "look cheese")
	assert.Equal(t, []string{"cheese", "You see nothing special."}, f.rec.For(f.bob))

	f.rec.Reset()
	f.disp.Dispatch(f.bob, "look unicorn")
	assert.Equal(t, []string{"I don't see that here."}, f.rec.For(f.bob))
}

func TestDispatch_InventoryAndScore(t *testing.T) {
	f := newFixture(t)
	f.disp.Dispatch(f.bob, "i")
	f.disp.Dispatch(f.bob, "score")
	assert.Equal(t, []string{"You aren't carrying anything.", "You have 0 pennies.", "You have 0 pennies."}, f.rec.For(f.bob))
}

func TestDispatch_HelpGroupsCommandsByCategory(t *testing.T) {
	f := newFixture(t)
	f.disp.Dispatch(f.bob, "help")

	lines := f.rec.For(f.bob)
	assert.Len(t, lines, len(command.BuiltinCommands())+3)
	assert.Equal(t, "Movement:", lines[0])
	assert.Equal(t, "  go <direction> Go through an exit", lines[1])
	assert.Equal(t, "  home           Go home, leaving your possessions behind", lines[2])
	assert.Equal(t, "World:", lines[3])
	assert.Equal(t, "System:", lines[9])
	assert.Equal(t, "  quit           Disconnect from the game", lines[len(lines)-1])
}

func TestDispatch_UnknownAndBlank(t *testing.T) {
	f := newFixture(t)
	assert.False(t, f.disp.Dispatch(f.bob, "   "))
	assert.False(t, f.disp.Dispatch(f.bob, "dance wildly"))
	assert.Equal(t, []string{`Huh?  (Type "help" for help.)`}, f.rec.For(f.bob))
}

func TestDispatch_Quit(t *testing.T) {
	f := newFixture(t)
	assert.True(t, f.disp.Dispatch(f.bob, "QUIT"))
}
