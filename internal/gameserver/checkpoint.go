package gameserver

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// finalCheckpointTimeout bounds the save made when the service stops.
const finalCheckpointTimeout = 30 * time.Second

// CheckpointService saves the world every interval and once more on Stop.
//
// Invariant: at most one checkpoint runs at a time.
type CheckpointService struct {
	game     *Game
	interval time.Duration
	logger   *zap.Logger

	stop     chan struct{}
	stopOnce sync.Once
}

// NewCheckpointService returns a service checkpointing game every interval.
// An interval of zero disables periodic checkpoints; the final one still runs.
//
// Precondition: interval must be >= 0.
func NewCheckpointService(game *Game, interval time.Duration, logger *zap.Logger) *CheckpointService {
	if interval < 0 {
		panic("gameserver.NewCheckpointService: interval must be >= 0")
	}
	return &CheckpointService{
		game:     game,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
	}
}

// Start runs the checkpoint loop until Stop.
//
// Postcondition: A final checkpoint has been attempted; its error is returned.
func (c *CheckpointService) Start() error {
	var tick <-chan time.Time
	if c.interval > 0 {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	for {
		select {
		case <-c.stop:
			cancel()
			final, done := context.WithTimeout(context.Background(), finalCheckpointTimeout)
			defer done()
			return c.game.Checkpoint(final)
		case <-tick:
			if err := c.game.Checkpoint(ctx); err != nil {
				c.logger.Error("periodic checkpoint failed", zap.Error(err))
			}
		}
	}
}

// Stop ends the loop. Safe to call more than once.
func (c *CheckpointService) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}
