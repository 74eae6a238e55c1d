package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/tinymud/internal/config"
	"github.com/cory-johannsen/tinymud/internal/game/db"
	"github.com/cory-johannsen/tinymud/internal/storage"
	"github.com/cory-johannsen/tinymud/internal/storage/postgres"
	"github.com/cory-johannsen/tinymud/internal/testutil"
)

func sampleWorld() *db.Database {
	d := db.NewDatabase()
	limbo := d.Add(db.NewObject("Limbo", db.KindRoom))
	wiz := d.Add(db.NewObject("Wizard", db.KindPlayer))
	plaza := d.Add(db.NewObject("Plaza", db.KindRoom))
	exit := d.Add(db.NewObject("north;n", db.KindExit))

	d.Get(limbo).Exits = exit
	d.Get(exit).Location = plaza
	d.Get(plaza).Location = db.Home
	d.Get(plaza).Flags |= db.Sticky
	d.Get(wiz).Exits = limbo
	d.Get(wiz).Flags |= db.Wizard
	d.Get(wiz).Pennies = 150
	d.MoveTo(wiz, limbo)
	return d
}

func TestObjectStore(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	ctx := context.Background()

	s, err := postgres.Open(ctx, pc.Config, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Ready(ctx, time.Second))

	_, err = s.Load(ctx)
	assert.ErrorIs(t, err, storage.ErrEmpty)

	d := sampleWorld()
	require.NoError(t, s.Save(ctx, d))
	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, d.Len(), got.Len())
	for ref, o := range d.All() {
		assert.Equal(t, *o, *got.Get(ref), "object %s", ref)
	}

	d.Get(1).Pennies = 7
	d.Add(db.NewObject("extra", db.KindThing))
	require.NoError(t, s.Save(ctx, d))

	smaller := sampleWorld()
	require.NoError(t, s.Save(ctx, smaller))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, smaller.Len(), got.Len(), "rows past the end are deleted")
	assert.Equal(t, 150, got.Get(1).Pennies, "rows are overwritten")
}

func TestOpen_UnreachableDatabase(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping connection timeout test in -short mode")
	}
	cfg := config.DatabaseConfig{
		Host:            "127.0.0.1",
		Port:            1,
		User:            "nobody",
		Password:        "nothing",
		Name:            "missing",
		SSLMode:         "disable",
		MaxConns:        1,
		MaxConnLifetime: time.Minute,
	}

	s, err := postgres.Open(context.Background(), cfg, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Nil(t, s)
	assert.Contains(t, err.Error(), "database not ready")
}
