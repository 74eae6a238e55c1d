package gameserver

import (
	"bufio"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tinymud/internal/game/db"
	"github.com/cory-johannsen/tinymud/internal/game/session"
)

// ConsoleService drives one player from a line-oriented reader, writing the
// player's output to w. It is a local development surface, not a network
// listener.
type ConsoleService struct {
	game     *Game
	sessions *session.Manager
	player   db.Ref
	in       io.Reader
	out      io.Writer
	logger   *zap.Logger

	stop     chan struct{}
	stopOnce sync.Once
}

// NewConsoleService creates a console bound to player.
//
// Precondition: all arguments must be non-nil.
func NewConsoleService(game *Game, sessions *session.Manager, player db.Ref, r io.Reader, w io.Writer, logger *zap.Logger) *ConsoleService {
	return &ConsoleService{
		game:     game,
		sessions: sessions,
		player:   player,
		in:       r,
		out:      w,
		logger:   logger,
		stop:     make(chan struct{}),
	}
}

// Start connects the player and executes input lines until "quit", end of
// input, or Stop.
//
// Postcondition: The player's session is disconnected and its output flushed.
func (c *ConsoleService) Start() error {
	name, err := c.game.PlayerName(c.player)
	if err != nil {
		return fmt.Errorf("console: %w", err)
	}
	sess, err := c.sessions.Connect(c.player, name)
	if err != nil {
		return fmt.Errorf("console: %w", err)
	}

	flushed := make(chan struct{})
	go func() {
		defer close(flushed)
		for line := range sess.Outbox.Lines() {
			fmt.Fprintln(c.out, line)
		}
	}()
	defer func() {
		_ = c.sessions.Disconnect(c.player)
		<-flushed
	}()

	if err := c.game.Connect(c.player); err != nil {
		return fmt.Errorf("console: %w", err)
	}

	// Releases the reader goroutine once the loop below returns.
	defer c.Stop()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-c.stop:
				return
			}
		}
		readErr <- scanner.Err()
		close(lines)
	}()

	for {
		select {
		case <-c.stop:
			return nil
		case line, ok := <-lines:
			if !ok {
				c.logger.Info("console input closed", zap.Stringer("player", c.player))
				return <-readErr
			}
			if c.game.Execute(c.player, line) {
				c.logger.Info("console player quit", zap.Stringer("player", c.player))
				return nil
			}
		}
	}
}

// Stop ends the console. A read already blocked on the reader is abandoned.
func (c *ConsoleService) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}
