package world

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tinymud/internal/game/db"
)

const validWorldYAML = `
world:
  name: "Test World"
  objects:
    - id: 0
      kind: room
      name: Limbo
      description: "A featureless void."
      owner: 1
    - id: 1
      kind: player
      name: Wizard
      flags: [wizard]
      location: 0
      home: "#0"
      owner: 1
      pennies: 50
    - id: 2
      kind: room
      name: Plaza
      flags: [sticky, temple]
      dropto: 0
      owner: 1
    - id: 3
      kind: thing
      name: rock
      location: 0
      home: 0
      owner: 1
    - id: 4
      kind: thing
      name: lamp
      location: 1
      home: 2
      owner: 1
      key: 3
      fail: "It is bolted down."
    - id: 5
      kind: exit
      name: "out;o"
      source: 0
      destination: 2
      owner: 1
    - id: 6
      kind: exit
      name: back
      source: 2
      destination: home
      owner: 1
    - id: 7
      kind: exit
      name: portable
      source: 1
      owner: 1
`

func chain(d *db.Database, first db.Ref) []db.Ref {
	return slices.Collect(d.Enum(first))
}

func TestLoadBytes_Valid(t *testing.T) {
	d, err := LoadBytes([]byte(validWorldYAML))
	require.NoError(t, err)
	require.Equal(t, 8, d.Len())

	assert.Equal(t, []db.Ref{1, 3}, chain(d, d.Get(0).Contents))
	assert.Equal(t, []db.Ref{4, 7}, chain(d, d.Get(1).Contents))
	assert.Equal(t, []db.Ref{5}, chain(d, d.Get(0).Exits))
	assert.Equal(t, []db.Ref{6}, chain(d, d.Get(2).Exits))

	wiz := d.Get(1)
	assert.True(t, wiz.Has(db.Wizard))
	assert.Equal(t, db.KindPlayer, wiz.Kind())
	assert.Equal(t, db.Ref(0), wiz.Exits, "player home")
	assert.Equal(t, 50, wiz.Pennies)

	plaza := d.Get(2)
	assert.True(t, plaza.Has(db.Sticky|db.Temple))
	assert.Equal(t, db.Ref(0), plaza.Location, "dropto")

	lamp := d.Get(4)
	assert.Equal(t, db.Ref(3), lamp.Key)
	assert.Equal(t, "It is bolted down.", lamp.Fail)
	assert.Equal(t, db.Ref(1), lamp.Location)

	assert.Equal(t, db.Ref(2), d.Get(5).Location, "exit destination")
	assert.Equal(t, db.Home, d.Get(6).Location)
	assert.Equal(t, db.Ref(1), d.Get(7).Location, "carried exit")
	assert.Equal(t, db.Nothing, d.Get(0).Location, "omitted dropto")

	assert.Empty(t, d.CheckContainment())
}

func TestLoadBytes_ObjectsMayAppearOutOfIDOrder(t *testing.T) {
	data := `
world:
  objects:
    - {id: 2, kind: thing, name: b, location: 0, home: 0}
    - {id: 0, kind: room, name: r}
    - {id: 1, kind: thing, name: a, location: 0, home: 0}
`
	d, err := LoadBytes([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, "r", d.Get(0).Name)
	assert.Equal(t, []db.Ref{2, 1}, chain(d, d.Get(0).Contents), "chain follows file order")
}

func TestLoadBytes_Errors(t *testing.T) {
	tests := []struct {
		name    string
		objects string
		wantErr string
	}{
		{"unknown kind", `- {id: 0, kind: castle, name: x}`, "unknown kind"},
		{"unknown flag", `- {id: 0, kind: room, name: x, flags: [shiny]}`, "unknown flag"},
		{"bad ref", `- {id: 0, kind: room, name: x, dropto: "#zz"}`, "invalid object reference"},
		{"missing name", `- {id: 0, kind: room}`, "invalid name"},
		{"sparse ids", `- {id: 1, kind: room, name: x}`, "dense"},
		{"duplicate ids", "- {id: 0, kind: room, name: x}\n    - {id: 0, kind: room, name: y}", "duplicate id"},
		{"home not a room", "- {id: 0, kind: room, name: r}\n    - {id: 1, kind: thing, name: t, home: 1}", "invalid home"},
		{"missing home", "- {id: 0, kind: room, name: r}\n    - {id: 1, kind: thing, name: t, location: 0}", "invalid home"},
		{"location out of range", "- {id: 0, kind: room, name: r}\n    - {id: 1, kind: thing, name: t, home: 0, location: 9}", "invalid location"},
		{"dropto on a thing", "- {id: 0, kind: room, name: r}\n    - {id: 1, kind: thing, name: t, home: 0, dropto: 0}", "does not apply"},
		{"location on a room", "- {id: 0, kind: room, name: r, location: 0}", "does not apply"},
		{"exit without source", "- {id: 0, kind: room, name: r}\n    - {id: 1, kind: exit, name: e, destination: 0}", "invalid source"},
		{"exit to a thing", "- {id: 0, kind: room, name: r}\n    - {id: 1, kind: thing, name: t, home: 0}\n    - {id: 2, kind: exit, name: e, source: 0, destination: 1}", "invalid destination"},
		{"linked carried exit", "- {id: 0, kind: room, name: r}\n    - {id: 1, kind: thing, name: t, home: 0}\n    - {id: 2, kind: exit, name: e, source: 1, destination: 0}", "must be unlinked"},
		{"owner not a player", "- {id: 0, kind: room, name: r, owner: 0}", "invalid owner"},
		{"negative pennies", "- {id: 0, kind: room, name: r, pennies: -1}", "invalid pennies"},
		{"containment cycle", "- {id: 0, kind: room, name: r}\n    - {id: 1, kind: thing, name: a, home: 0, location: 2}\n    - {id: 2, kind: thing, name: b, home: 0, location: 1}", "contained in itself"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := "world:\n  objects:\n    " + tt.objects + "\n"
			_, err := LoadBytes([]byte(data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadBytes_ReportsEveryViolation(t *testing.T) {
	data := `
world:
  objects:
    - {id: 0, kind: room}
    - {id: 1, kind: thing, name: t}
`
	_, err := LoadBytes([]byte(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid name")
	assert.Contains(t, err.Error(), "invalid home")
}

func TestLoadBytes_Empty(t *testing.T) {
	_, err := LoadBytes([]byte("world:\n  name: nothing here\n"))
	assert.ErrorIs(t, err, ErrEmptyWorld)
}

func TestLoadBytes_MalformedYAML(t *testing.T) {
	_, err := LoadBytes([]byte("world: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing world YAML")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validWorldYAML), 0o644))

	d, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Limbo", d.Get(0).Name)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseBytes_KeepsName(t *testing.T) {
	def, err := ParseBytes([]byte(validWorldYAML))
	require.NoError(t, err)
	assert.Equal(t, "Test World", def.Name)
	assert.Len(t, def.Objects, 8)
}

func TestParseRef(t *testing.T) {
	tests := []struct {
		in      string
		want    db.Ref
		wantErr bool
	}{
		{"0", 0, false},
		{"#12", 12, false},
		{" 7 ", 7, false},
		{"home", db.Home, false},
		{"HOME", db.Home, false},
		{"nothing", db.Nothing, false},
		{"-4", 0, true},
		{"#", 0, true},
		{"kitchen", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseRef(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefinitionBuild_RejectsInvalid(t *testing.T) {
	def := &Definition{Objects: []ObjectDef{{
		ID: 0, Kind: db.Kind(9), Name: "odd",
		Owner: db.Nothing, Key: db.Nothing, Dropto: db.Nothing,
		Location: db.Nothing, Home: db.Nothing, Source: db.Nothing, Destination: db.Nothing,
	}}}
	_, err := def.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown kind")
}

// Any world of rooms and things placed in random rooms loads, stays
// consistent, and keeps each contents chain in file order.
func TestPropertyBuildPreservesFileOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		nRooms := rapid.IntRange(1, 4).Draw(t, "rooms")
		nThings := rapid.IntRange(0, 10).Draw(t, "things")

		var b strings.Builder
		b.WriteString("world:\n  objects:\n")
		for i := range nRooms {
			fmt.Fprintf(&b, "    - {id: %d, kind: room, name: r%d}\n", i, i)
		}
		ids := make([]int, nThings)
		for i := range ids {
			ids[i] = nRooms + i
		}
		ids = rapid.Permutation(ids).Draw(t, "order")

		want := make(map[db.Ref][]db.Ref)
		for _, id := range ids {
			loc := rapid.IntRange(0, nRooms-1).Draw(t, "loc")
			fmt.Fprintf(&b, "    - {id: %d, kind: thing, name: t%d, location: %d, home: 0}\n", id, id, loc)
			want[db.Ref(loc)] = append(want[db.Ref(loc)], db.Ref(id))
		}

		d, err := LoadBytes([]byte(b.String()))
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		for r := range nRooms {
			got := chain(d, d.Get(db.Ref(r)).Contents)
			if !slices.Equal(got, want[db.Ref(r)]) {
				t.Fatalf("room %d contents %v, want %v", r, got, want[db.Ref(r)])
			}
		}
		if errs := d.CheckContainment(); len(errs) > 0 {
			t.Fatalf("containment: %v", errs)
		}
	})
}

func TestLoadFile_BundledWorld(t *testing.T) {
	d, err := LoadFile(filepath.Join("..", "..", "..", "content", "world.yaml"))
	require.NoError(t, err)

	const square, wizard, cellarExit, blueprint = db.Ref(2), db.Ref(1), db.Ref(12), db.Ref(18)
	assert.True(t, d.IsWizard(wizard))
	assert.Equal(t, []db.Ref{7, 8, 10, 12}, slices.Collect(d.Enum(d.Get(square).Exits)))
	assert.Equal(t, []db.Ref{13, 19}, slices.Collect(d.Enum(d.Get(square).Contents)))
	assert.Equal(t, []db.Ref{16, blueprint}, slices.Collect(d.Enum(d.Get(wizard).Contents)))
	assert.Equal(t, db.Ref(13), d.Get(cellarExit).Key)
	assert.Equal(t, wizard, d.Get(blueprint).Location)
	assert.Equal(t, square, d.Get(4).Location, "lost and found drops to the square")
	assert.Empty(t, d.CheckContainment())
}
