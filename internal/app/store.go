// Package app wires configuration, storage, capabilities and transports into a runnable server.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/and161185/minuteminds/internal/config"
	"github.com/and161185/minuteminds/internal/limiter"
	"github.com/and161185/minuteminds/internal/migrate"
	"github.com/and161185/minuteminds/internal/repository"
	"github.com/and161185/minuteminds/internal/repository/memory"
	"github.com/and161185/minuteminds/internal/repository/postgres"
)

// Storage is an opened store together with the login limiter living next to it.
type Storage struct {
	Store   repository.Store
	Limiter limiter.Limiter
	close   func()
}

// Close releases the underlying connections.
func (s *Storage) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStorage opens the configured store. For postgres it applies pending
// migrations before connecting the pool.
func OpenStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Storage, error) {
	policy := limiter.Policy{Window: cfg.Limiter.Window, MaxFails: cfg.Limiter.MaxFails, BlockFor: cfg.Limiter.BlockFor}
	switch cfg.Store.Type {
	case "memory":
		log.Warn("using in-memory store; data is lost on restart")
		return &Storage{Store: memory.NewStore(memory.New()), Limiter: limiter.NewMemory(policy)}, nil
	case "postgres":
		if err := migrate.Up(ctx, cfg.Store.DSN, log); err != nil {
			return nil, fmt.Errorf("migrate up: %w", err)
		}
		db, err := postgres.New(ctx, cfg.Store.DSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return &Storage{
			Store:   postgres.NewStore(db),
			Limiter: limiter.NewPG(db.Pool, policy),
			close:   db.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Store.Type)
	}
}
