package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tinymud/internal/game/db"
)

func sampleWorld() *db.Database {
	d := db.NewDatabase()
	room := d.Add(db.NewObject("Limbo", db.KindRoom))
	wiz := d.Add(db.NewObject("Wizard", db.KindPlayer))
	d.Get(wiz).Exits = room
	d.Get(wiz).Flags |= db.Wizard
	d.Get(wiz).Pennies = 42
	d.MoveTo(wiz, room)
	return d
}

func TestAssemble_RoundTrip(t *testing.T) {
	d := sampleWorld()
	got, err := Assemble(Records(d))
	require.NoError(t, err)
	require.Equal(t, d.Len(), got.Len())
	for ref, o := range d.All() {
		assert.Equal(t, *o, *got.Get(ref))
	}
}

func TestAssemble_AnyOrder(t *testing.T) {
	recs := Records(sampleWorld())
	recs[0], recs[1] = recs[1], recs[0]
	got, err := Assemble(recs)
	require.NoError(t, err)
	assert.Equal(t, "Limbo", got.Get(0).Name)
}

func TestAssemble_Empty(t *testing.T) {
	_, err := Assemble(nil)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestAssemble_Sparse(t *testing.T) {
	recs := Records(sampleWorld())
	recs[1].Ref = 5
	_, err := Assemble(recs)
	assert.ErrorContains(t, err, "not dense")
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, ErrEmpty)

	d := sampleWorld()
	require.NoError(t, s.Save(ctx, d))
	d.Get(0).Name = "changed after save"

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Limbo", got.Get(0).Name)
	assert.Equal(t, 1, s.Saves())
	assert.NoError(t, s.Close())
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewMemoryStore()
	assert.Error(t, s.Save(ctx, sampleWorld()))
	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPropertyAssembleInvertsRecords(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := db.NewDatabase()
		n := rapid.IntRange(1, 20).Draw(t, "n")
		for i := range n {
			o := db.NewObject(rapid.StringMatching(`[a-z]{1,8}`).Draw(t, "name"), db.KindThing)
			o.Pennies = rapid.IntRange(0, 1000).Draw(t, "pennies")
			o.Next = db.Ref(rapid.IntRange(-1, i).Draw(t, "next"))
			d.Add(o)
		}
		recs := Records(d)
		perm := rapid.Permutation(recs).Draw(t, "perm")
		got, err := Assemble(perm)
		if err != nil {
			t.Fatalf("assemble: %v", err)
		}
		for ref, o := range d.All() {
			if *got.Get(ref) != *o {
				t.Fatalf("object %s differs after reassembly", ref)
			}
		}
	})
}
