// Package store opens the repositories selected by configuration.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/freeeve/hexboard/internal/config"
	"github.com/freeeve/hexboard/internal/repository"
	"github.com/freeeve/hexboard/internal/repository/memory"
	"github.com/freeeve/hexboard/internal/repository/postgres"
	redisrepo "github.com/freeeve/hexboard/internal/repository/redis"
	"github.com/freeeve/hexboard/internal/repository/sqlite"
)

// Stores bundles the repositories a BoardService needs. Cache is nil when
// no Redis URL is configured.
type Stores struct {
	Games  repository.GameRepository
	Events repository.EventRepository
	Cache  repository.BoardCache

	closers []func() error
}

// Open connects the backend named by cfg.StorageType and, if configured, Redis.
func Open(ctx context.Context, cfg *config.Config) (*Stores, error) {
	s := &Stores{}
	switch cfg.StorageType {
	case config.StoragePostgres:
		db, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		s.Games = postgres.NewGameRepo(db)
		s.Events = postgres.NewEventRepo(db)
		s.closers = append(s.closers, closeSQL(db))
	case config.StorageSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		s.Games = sqlite.NewGameRepo(db)
		s.Events = sqlite.NewEventRepo(db)
		s.closers = append(s.closers, closeGorm(db))
	case config.StorageMemory:
		s.Games = memory.NewGameRepo()
		s.Events = memory.NewEventRepo()
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.StorageType)
	}

	if cfg.RedisURL != "" {
		rc, err := redisrepo.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.Cache = rc
		s.closers = append(s.closers, rc.Close)
	}

	log.Info().
		Str("storage", cfg.StorageType).
		Bool("cache", s.Cache != nil).
		Msg("Storage opened")
	return s, nil
}

// Close releases every opened connection.
func (s *Stores) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	s.closers = nil
	return errors.Join(errs...)
}

func closeSQL(db *sql.DB) func() error { return db.Close }

func closeGorm(db *gorm.DB) func() error {
	return func() error { return sqlite.Close(db) }
}
