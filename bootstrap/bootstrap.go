// Package bootstrap opens the process resources shared by the API server and the CLI.
package bootstrap

import (
	"context"
	"errors"
	"time"

	"ecoblock-backend/internal/application/prediction"
	"ecoblock-backend/internal/config"
	"ecoblock-backend/internal/infrastructure/database"
	"ecoblock-backend/internal/interfaces/router"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var ErrNoDatabase = errors.New("DATABASE_URL is not set")

// Resources are the connections opened from config. Rdb is nil when REDIS_URL is empty.
type Resources struct {
	DB      *gorm.DB
	Dialect database.Dialect
	Rdb     *redis.Client
}

// Open connects to the database (migrating when enabled) and, if configured, Redis.
func Open(ctx context.Context, cfg *config.Config) (*Resources, error) {
	if cfg.DatabaseURL == "" {
		return nil, ErrNoDatabase
	}
	db, dialect, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	res := &Resources{DB: db, Dialect: dialect}
	if cfg.MigrateOnStart {
		if err := database.Migrate(db, dialect); err != nil {
			res.Close()
			return nil, err
		}
	}
	log.Info().Str("dialect", string(dialect)).Msg("database connected")

	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			res.Close()
			return nil, err
		}
		rdb := redis.NewClient(opt)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			rdb.Close()
			res.Close()
			return nil, err
		}
		res.Rdb = rdb
		log.Info().Msg("redis connected")
	}
	return res, nil
}

// Close releases every opened connection.
func (r *Resources) Close() {
	if r.Rdb != nil {
		_ = r.Rdb.Close()
	}
	if sqlDB, err := r.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// New opens resources, loads the usage model and builds the Fiber app.
func New(ctx context.Context, cfg *config.Config) (*fiber.App, *Resources, error) {
	res, err := Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	app := router.NewApp(router.Deps{
		Context:   ctx,
		Config:    cfg,
		DB:        res.DB,
		Rdb:       res.Rdb,
		Predictor: prediction.Load(cfg.ModelPath),
	})
	return app, res, nil
}
