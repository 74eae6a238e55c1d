package gameserver

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tinymud/internal/game/db"
	"github.com/cory-johannsen/tinymud/internal/game/world"
	"github.com/cory-johannsen/tinymud/internal/storage"
)

// LoadWorld returns the saved world, or on first start the world in
// bootstrapFile, which is saved immediately.
//
// Postcondition: Returns a Database or a non-nil error.
func LoadWorld(ctx context.Context, store storage.Store, bootstrapFile string, logger *zap.Logger) (*db.Database, error) {
	d, err := store.Load(ctx)
	switch {
	case err == nil:
		logger.Info("world restored from storage", zap.Int("objects", d.Len()))
		if errs := d.CheckContainment(); len(errs) > 0 {
			logger.Warn("restored world has containment violations", zap.Error(errors.Join(errs...)))
		}
		return d, nil
	case !errors.Is(err, storage.ErrEmpty):
		return nil, fmt.Errorf("loading world: %w", err)
	}

	d, err = world.LoadFile(bootstrapFile)
	if err != nil {
		return nil, fmt.Errorf("bootstrapping world: %w", err)
	}
	if err := store.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("saving bootstrapped world: %w", err)
	}
	logger.Info("world bootstrapped",
		zap.String("file", bootstrapFile),
		zap.Int("objects", d.Len()),
	)
	return d, nil
}
