// Package bootstrap opens the configured store and cache and builds the
// engine services shared by the HTTP server and the CLI.
package bootstrap

import (
	"directMail/business"
	"directMail/business/chain"
	"directMail/business/orders"
	"directMail/business/prints"
	"directMail/business/progression"
	"directMail/business/segment"
	"directMail/domain"
	psqlRepo "directMail/internal/repository/postgres"
	redisRepo "directMail/internal/repository/redis"
	"directMail/pkg/config"
	"directMail/pkg/database/postgres"
	"directMail/pkg/database/sqlite"
	"directMail/pkg/logger"
)

type Deps struct {
	Store  business.Store
	Cache  chain.GraphCache
	closes []func() error
}

// Open connects the storage backend selected by cfg.Storage and the redis
// chain cache when enabled. Postgres migrations run first when
// DB_AUTO_MIGRATE is set; a sqlite schema is created from the models.
func Open(cfg *config.Config) (*Deps, error) {
	deps := &Deps{}

	switch cfg.Storage {
	case config.StorageSQLite:
		if cfg.Database.SQLitePath == sqlite.MemoryPath {
			logger.Warn("using in-memory sqlite storage, data is lost on exit")
		}
		db, err := sqlite.InitSQLite(cfg.Database.SQLitePath, domain.Models()...)
		if err != nil {
			return nil, err
		}
		deps.Store = psqlRepo.NewStore(db)
		deps.closes = append(deps.closes, func() error { return sqlite.CloseSQLite(db) })
	default:
		if cfg.Database.AutoMigrate {
			if err := postgres.MigrateUp(cfg); err != nil {
				return nil, err
			}
		}
		db, err := postgres.InitPostgres(cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("Database connected successfully")
		deps.Store = psqlRepo.NewStore(db)
		deps.closes = append(deps.closes, func() error { return postgres.ClosePostgres(db) })
	}

	if cfg.Redis.Enabled {
		cache, err := redisRepo.OpenChainCache(cfg)
		if err != nil {
			deps.Close()
			return nil, err
		}
		deps.Cache = cache
		deps.closes = append(deps.closes, cache.Close)
	}

	return deps, nil
}

func (d *Deps) Close() {
	for i := len(d.closes) - 1; i >= 0; i-- {
		if err := d.closes[i](); err != nil {
			logger.Error("failed to close dependency", "error", err)
		}
	}
}

type Engine struct {
	Chains      *chain.ChainService
	Segments    *segment.SegmentService
	Progression *progression.ProgressionService
	Orders      *orders.OrdersService
	Prints      *prints.PrintsService
}

// NewEngine wires the engine services on one store. A nil clock means wall time.
func NewEngine(store business.Store, cache chain.GraphCache, clock business.Clock) Engine {
	chains := chain.NewChainService(store, cache)
	segments := segment.NewSegmentService(store)
	prog := progression.NewProgressionService(store, chains, segments, clock)
	return Engine{
		Chains:      chains,
		Segments:    segments,
		Progression: prog,
		Orders:      orders.NewOrdersService(store, chains, prog, clock),
		Prints:      prints.NewPrintsService(store, clock),
	}
}

