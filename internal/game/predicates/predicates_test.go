package predicates_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cory-johannsen/tinymud/internal/game/db"
	"github.com/cory-johannsen/tinymud/internal/game/message"
	"github.com/cory-johannsen/tinymud/internal/game/notify"
	"github.com/cory-johannsen/tinymud/internal/game/predicates"
)

type fixture struct {
	d      *db.Database
	rec    *notify.Recorder
	p      *predicates.Predicates
	limbo  db.Ref
	wizard db.Ref
	bob    db.Ref
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	d := db.NewDatabase()
	limbo := d.Add(db.NewObject("Limbo", db.KindRoom))
	wizard := d.Add(db.NewObject("Wizard", db.KindPlayer))
	bob := d.Add(db.NewObject("bob", db.KindPlayer))
	d.Get(wizard).Set(db.Wizard, true)
	d.Get(wizard).Owner = wizard
	d.Get(bob).Owner = bob
	d.Get(limbo).Owner = wizard
	d.MoveTo(wizard, limbo)
	d.MoveTo(bob, limbo)

	rec := notify.NewRecorder()
	n := notify.NewNotifier(d, message.Default(), rec)
	return &fixture{d: d, rec: rec, p: predicates.New(d, n), limbo: limbo, wizard: wizard, bob: bob}
}

func TestControls(t *testing.T) {
	f := newFixture(t)
	thing := f.d.Add(db.NewObject("rock", db.KindThing))
	f.d.Get(thing).Owner = f.bob

	assert.True(t, f.p.Controls(f.wizard, thing))
	assert.True(t, f.p.Controls(f.bob, thing))
	assert.False(t, f.p.Controls(f.bob, f.limbo))
	assert.False(t, f.p.Controls(f.wizard, db.Nothing))
	assert.False(t, f.p.Controls(f.wizard, db.Ref(f.d.Len())))
}

func TestCanLinkTo(t *testing.T) {
	f := newFixture(t)
	assert.False(t, f.p.CanLinkTo(f.wizard, db.Nothing))
	assert.False(t, f.p.CanLinkTo(f.wizard, db.Ref(f.d.Len())))
	assert.False(t, f.p.CanLinkTo(f.wizard, f.bob), "non-room")
	assert.True(t, f.p.CanLinkTo(f.wizard, f.limbo))
	assert.False(t, f.p.CanLinkTo(f.bob, f.limbo))

	f.d.Get(f.limbo).Set(db.LinkOK, true)
	assert.True(t, f.p.CanLinkTo(f.bob, f.limbo))
}

func TestCouldDoit(t *testing.T) {
	f := newFixture(t)
	thing := f.d.Add(db.NewObject("box", db.KindThing))
	assert.False(t, f.p.CouldDoit(f.wizard, thing), "non-room nowhere")

	f.d.MoveTo(thing, f.limbo)
	assert.True(t, f.p.CouldDoit(f.wizard, thing), "unlocked")

	f.d.Get(thing).Key = f.wizard
	assert.True(t, f.p.CouldDoit(f.wizard, thing))
	assert.False(t, f.p.CouldDoit(f.bob, thing))

	f.d.Get(thing).Set(db.Antilock, true)
	assert.False(t, f.p.CouldDoit(f.wizard, thing))
	assert.True(t, f.p.CouldDoit(f.bob, thing))

	key := f.d.Add(db.NewObject("key", db.KindThing))
	f.d.MoveTo(key, f.bob)
	f.d.Get(thing).Key = key
	f.d.Get(thing).Set(db.Antilock, false)
	assert.True(t, f.p.CouldDoit(f.bob, thing), "carrying the key")
	assert.False(t, f.p.CouldDoit(f.wizard, thing))
}

func TestCanDoit_NoLocation(t *testing.T) {
	f := newFixture(t)
	f.d.MoveTo(f.wizard, db.Nothing)
	assert.False(t, f.p.CanDoit(f.wizard, f.limbo, message.BadDirection))
	assert.Empty(t, f.rec.All())
}

func TestCanDoit_FailureMessages(t *testing.T) {
	f := newFixture(t)
	box := f.d.Add(db.NewObject("box", db.KindThing))
	f.d.MoveTo(box, f.limbo)
	f.d.Get(box).Key = f.bob
	f.d.Get(box).Fail = "Sandwich"

	assert.False(t, f.p.CanDoit(f.wizard, box, message.CantPickUp))
	assert.Equal(t, []string{"Sandwich"}, f.rec.For(f.wizard))

	f.rec.Reset()
	f.d.Get(box).Fail = ""
	f.d.Get(box).OFail = "fails eating sandwich"
	assert.False(t, f.p.CanDoit(f.wizard, box, message.CantPickUp))
	assert.Equal(t, []string{"You can't pick that up."}, f.rec.For(f.wizard))
	assert.Equal(t, []string{"Wizard fails eating sandwich"}, f.rec.For(f.bob))

	f.rec.Reset()
	f.d.Get(box).OFail = ""
	assert.False(t, f.p.CanDoit(f.wizard, box, message.None))
	assert.Empty(t, f.rec.All())
}

func TestCanDoit_SuccessMessages(t *testing.T) {
	f := newFixture(t)
	box := f.d.Add(db.NewObject("box", db.KindThing))
	f.d.MoveTo(box, f.limbo)
	f.d.Get(box).Succ = "Eat sandwich"
	f.d.Get(box).OSucc = "eats sandwich"

	assert.True(t, f.p.CanDoit(f.wizard, box, message.CantPickUp))
	assert.Equal(t, []string{"Eat sandwich"}, f.rec.For(f.wizard))
	assert.Equal(t, []string{"Wizard eats sandwich"}, f.rec.For(f.bob))
}

func TestCanSee(t *testing.T) {
	f := newFixture(t)
	exit := f.d.Add(db.NewObject("out", db.KindExit))
	rock := f.d.Add(db.NewObject("rock", db.KindThing))
	f.d.Get(rock).Owner = f.wizard

	assert.False(t, f.p.CanSee(f.bob, f.bob, true))
	assert.False(t, f.p.CanSee(f.bob, exit, true))
	assert.True(t, f.p.CanSee(f.bob, rock, true))

	f.d.Get(rock).Set(db.Dark, true)
	assert.False(t, f.p.CanSee(f.bob, rock, true))
	assert.True(t, f.p.CanSee(f.wizard, rock, true))
	assert.False(t, f.p.CanSee(f.bob, rock, false))
	assert.True(t, f.p.CanSee(f.wizard, rock, false))
}
