package app

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"

	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/config"
	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/db"
	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/logger"
	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/redis"
	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/session"
	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/store"
)

type infra struct {
	identities store.Store
	sessions   session.Store
	cleanup    func() error
}

// setupInfra connects the credential and session backends. Without a
// DATABASE_DSN the process falls back to in-memory stores, which only
// suits local development: state dies with the process.
func setupInfra(ctx context.Context, cfg config.Config) (*infra, error) {
	if cfg.DatabaseDSN == "" {
		logger.Warn("no DATABASE_DSN configured, using in-memory stores", nil)
		return &infra{
			identities: store.NewMemory(),
			sessions:   session.NewMemoryStore(),
			cleanup:    func() error { return nil },
		}, nil
	}

	sqlDB, err := sql.Open("postgres", cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx, sqlDB); err != nil {
		return nil, err
	}

	logger.Info("database ready", nil)

	redisClient, err := redis.New(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		return nil, err
	}

	logger.Info("redis ready", nil)

	return &infra{
		identities: store.NewPostgres(sqlDB, cfg.StoreTimeout),
		sessions:   session.NewRedisStore(redisClient.Client),
		cleanup:    sqlDB.Close,
	}, nil
}
