// Package main provides the TinyMUD server binary: it restores or bootstraps
// the world, serializes commands through the game, checkpoints to storage,
// and optionally drives one player from the local console.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tinymud/internal/config"
	"github.com/cory-johannsen/tinymud/internal/game/db"
	"github.com/cory-johannsen/tinymud/internal/game/dice"
	"github.com/cory-johannsen/tinymud/internal/game/message"
	"github.com/cory-johannsen/tinymud/internal/game/move"
	"github.com/cory-johannsen/tinymud/internal/game/session"
	"github.com/cory-johannsen/tinymud/internal/gameserver"
	"github.com/cory-johannsen/tinymud/internal/observability"
	"github.com/cory-johannsen/tinymud/internal/server"
	"github.com/cory-johannsen/tinymud/internal/storage/drivers"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	console := flag.Bool("console", false, "drive the console player from stdin (overrides server.console)")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *console {
		cfg.Server.Console = true
	}

	logger, err := observability.NewLogger(cfg.Logging, cfg.Server.Name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting game server",
		zap.String("storage", cfg.Storage.Driver),
		zap.Duration("checkpoint_interval", cfg.Server.CheckpointInterval),
	)

	storeStart := time.Now()
	store, err := drivers.Open(ctx, cfg.Storage, cfg.Database, logger.Named("storage"))
	if err != nil {
		logger.Fatal("opening storage", zap.Error(err))
	}
	logger.Info("storage opened", zap.Duration("elapsed", time.Since(storeStart)))

	d, err := gameserver.LoadWorld(ctx, store, cfg.World.BootstrapFile, logger)
	if err != nil {
		logger.Fatal("loading world", zap.Error(err))
	}

	catalog := message.Default()
	if cfg.World.MessagesFile != "" {
		catalog, err = message.LoadCatalog(cfg.World.MessagesFile)
		if err != nil {
			logger.Fatal("loading message catalog", zap.Error(err))
		}
	}

	var src dice.Source = dice.NewCryptoSource()
	if cfg.World.RandomSeed != 0 {
		src = dice.NewSeededSource(cfg.World.RandomSeed)
		logger.Info("using seeded random source", zap.Uint64("seed", cfg.World.RandomSeed))
	}
	rng := dice.NewLoggedSource(src, logger.Named("dice"))

	sessions := session.NewManager(session.DefaultBufferSize, logger.Named("session"))
	game := gameserver.NewGame(d, catalog, sessions, store, rng, move.Config{
		PennyRate:          cfg.World.PennyRate,
		MaxPennies:         cfg.World.MaxPennies,
		MaxObjectEndowment: cfg.World.MaxObjectEndowment,
	}, logger)

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("checkpoint", gameserver.NewCheckpointService(game, cfg.Server.CheckpointInterval, logger.Named("checkpoint")))
	if cfg.Server.Console {
		player := db.Ref(cfg.Server.ConsolePlayer)
		lifecycle.Add("console", gameserver.NewConsoleService(game, sessions, player, os.Stdin, os.Stdout, logger.Named("console")))
	}

	logger.Info("game server ready",
		zap.Int("objects", d.Len()),
		zap.Strings("services", lifecycle.Names()),
		zap.Duration("startup", time.Since(start)),
	)

	runErr := lifecycle.Run(ctx)
	if err := store.Close(); err != nil {
		logger.Error("closing storage", zap.Error(err))
	}
	if runErr != nil {
		logger.Error("server stopped with error", zap.Error(runErr))
		_ = logger.Sync()
		os.Exit(1)
	}
}
