// Package drivers opens the storage.Store named by configuration.
package drivers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tinymud/internal/config"
	"github.com/cory-johannsen/tinymud/internal/storage"
	"github.com/cory-johannsen/tinymud/internal/storage/bolt"
	"github.com/cory-johannsen/tinymud/internal/storage/postgres"
	"github.com/cory-johannsen/tinymud/internal/storage/sqlite"
)

// Open returns the Store selected by storage.driver.
//
// Postcondition: Returns an open Store, or an error wrapping
// storage.ErrUnknownDriver for an unrecognised driver.
func Open(ctx context.Context, storageCfg config.StorageConfig, dbCfg config.DatabaseConfig, logger *zap.Logger) (storage.Store, error) {
	logger = logger.With(zap.String("driver", storageCfg.Driver))
	switch storageCfg.Driver {
	case config.DriverMemory:
		logger.Warn("memory storage: the world is lost on exit")
		return storage.NewMemoryStore(), nil
	case config.DriverBolt:
		s, err := bolt.Open(storageCfg.BoltPath, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverSQLite:
		s, err := sqlite.Open(ctx, storageCfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverPostgres:
		s, err := postgres.Open(ctx, dbCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("opening postgres storage: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w %q", storage.ErrUnknownDriver, storageCfg.Driver)
	}
}
