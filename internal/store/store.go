// Package store opens the activity repository selected by configuration.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"example.com/carbon/internal/config"
	"example.com/carbon/internal/domain"
	"example.com/carbon/internal/persistence/memory"
	"example.com/carbon/internal/persistence/postgres"
)

// Store bundles a repository with the resources that back it.
type Store struct {
	Repository domain.ActivityRepository
	Pool       *pgxpool.Pool
}

// Close releases the connection pool, if any.
func (s *Store) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

// Open connects to the configured backend. Postgres schemas are migrated when
// cfg.AutoMigrate is set.
func Open(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*Store, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn().Msg("using in-memory store; activities are lost on restart")
		return &Store{Repository: memory.NewRepository()}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if cfg.AutoMigrate {
		applied, err := postgres.Migrate(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		logger.Info().Strs("applied", applied).Msg("schema up to date")
	}

	return &Store{Repository: postgres.NewRepository(pool), Pool: pool}, nil
}
