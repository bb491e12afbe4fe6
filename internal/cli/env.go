package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"quizdesk/internal/app"
	"quizdesk/internal/config"
	"quizdesk/internal/infra/memory"
	"quizdesk/internal/infra/postgres"
	infraredis "quizdesk/internal/infra/redis"
	"quizdesk/internal/infra/sqlite"
	"quizdesk/internal/logger"
)

// env bundles the wired stores a command needs. Construction mirrors the
// configured backends: sqlite by default, postgres or memory as alternatives,
// with an optional redis cache in front of the results store.
type env struct {
	cfg     config.Config
	log     *zap.Logger
	creds   app.CredentialRepository
	results app.ResultRepository
	closers []func()
}

func openEnv(ctx context.Context, configPath string) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	e := &env{
		cfg: cfg,
		log: logger.New(cfg.Log.Level, cfg.Log.File),
	}

	switch cfg.Database.Driver {
	case "sqlite":
		store, err := sqlite.Open(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		e.creds, e.results = store, store
		e.closers = append(e.closers, func() { _ = store.Close() })
	case "postgres":
		if err := migrateDatabase(ctx, cfg); err != nil {
			return nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		store := postgres.NewStore(pool)
		e.creds, e.results = store, store
		e.closers = append(e.closers, pool.Close)
	case "memory":
		e.creds = memory.NewCredentialStore()
		e.results = memory.NewResultsStore()
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}

	cacheTTL := config.TTLDuration(cfg.Report.CacheTTL, 0)
	if cfg.Redis.Addr != "" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if cacheTTL == 0 {
			cacheTTL = config.TTLDuration(cfg.Redis.TTL, time.Minute)
		}
		e.results = infraredis.NewResultsCache(client, e.results, cacheTTL)
		e.closers = append(e.closers, func() { _ = client.Close() })
	} else if cacheTTL > 0 {
		e.results = memory.NewResultsCache(e.results, cacheTTL)
	}

	return e, nil
}

func (e *env) close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
	_ = e.log.Sync()
}
