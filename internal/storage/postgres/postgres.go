// Package postgres persists the world in PostgreSQL using pgx v5, one row per
// object in the objects table created by the migrations/ directory.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tinymud/internal/config"
)

// DefaultReadyTimeout bounds the readiness check Open runs before returning.
const DefaultReadyTimeout = 5 * time.Second

// ObjectStore is a storage.Store keeping one row per object in the objects
// table. It owns its connection pool.
type ObjectStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// Open connects to the database described by cfg and waits until it answers.
//
// Precondition: the objects migration must have been applied (cmd/migrate).
// Postcondition: Returns a ready ObjectStore or a non-nil error; no pool is
// leaked on error.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*ObjectStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	s := &ObjectStore{pool: pool, logger: logger}
	if err := s.Ready(ctx, DefaultReadyTimeout); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("postgres storage ready",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Name),
		zap.Int32("max_conns", cfg.MaxConns),
	)
	return s, nil
}

// Ready reports whether the database answers a ping within timeout.
//
// Precondition: the store must not be closed.
func (s *ObjectStore) Ready(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}
	return nil
}

// Close releases the pool. The store is unusable afterwards.
func (s *ObjectStore) Close() error {
	s.pool.Close()
	s.logger.Debug("postgres pool closed")
	return nil
}
