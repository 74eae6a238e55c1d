package gameserver

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/tinymud/internal/game/db"
	"github.com/cory-johannsen/tinymud/internal/game/dice"
	"github.com/cory-johannsen/tinymud/internal/game/message"
	"github.com/cory-johannsen/tinymud/internal/game/move"
	"github.com/cory-johannsen/tinymud/internal/game/session"
	"github.com/cory-johannsen/tinymud/internal/game/world"
	"github.com/cory-johannsen/tinymud/internal/storage"
)

func newConsoleGame(t *testing.T) (*Game, *session.Manager) {
	t.Helper()
	d, err := world.LoadBytes([]byte(testWorldYAML))
	require.NoError(t, err)
	logger := zaptest.NewLogger(t)
	sessions := session.NewManager(256, logger)
	g := NewGame(d, message.Default(), sessions, storage.NewMemoryStore(), dice.NewSequence(1), move.DefaultConfig(), logger)
	return g, sessions
}

func TestConsoleService_RunsCommandsUntilQuit(t *testing.T) {
	g, sessions := newConsoleGame(t)
	var out bytes.Buffer
	in := strings.NewReader("north\nget nothing-here\nquit\nsouth\n")
	svc := NewConsoleService(g, sessions, bob, in, &out, zaptest.NewLogger(t))

	require.NoError(t, svc.Start())

	text := out.String()
	assert.True(t, strings.HasPrefix(text, "Limbo\n"), "connect shows the room first, got %q", text)
	assert.Contains(t, text, "Hall\n")
	assert.Contains(t, text, message.Default().Format(message.DontSeeThat))
	assert.Equal(t, hall, g.Snapshot().Get(bob).Location, "lines after quit are not run")
	assert.Equal(t, 0, sessions.Count())
}

func TestConsoleService_EndOfInput(t *testing.T) {
	g, sessions := newConsoleGame(t)
	var out bytes.Buffer
	svc := NewConsoleService(g, sessions, bob, strings.NewReader("look"), &out, zaptest.NewLogger(t))

	require.NoError(t, svc.Start())
	assert.Equal(t, 2, strings.Count(out.String(), "Limbo\n"))
}

func TestConsoleService_Stop(t *testing.T) {
	g, sessions := newConsoleGame(t)
	r, w := io.Pipe()
	defer w.Close()
	svc := NewConsoleService(g, sessions, bob, r, io.Discard, zaptest.NewLogger(t))

	done := make(chan error, 1)
	go func() { done <- svc.Start() }()
	require.Eventually(t, func() bool { return sessions.Count() == 1 }, 2*time.Second, time.Millisecond)

	svc.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("console did not stop")
	}
	assert.Equal(t, 0, sessions.Count())
}

func TestConsoleService_NotAPlayer(t *testing.T) {
	g, sessions := newConsoleGame(t)
	svc := NewConsoleService(g, sessions, db.Ref(2), strings.NewReader(""), io.Discard, zaptest.NewLogger(t))

	assert.ErrorIs(t, svc.Start(), ErrNotPlayer)
	assert.Equal(t, 0, sessions.Count())
}
