// Package infrastructure provides core service initialization for application startup.
// It assembles the shared dependencies (logging, persistence, blob storage, outbound HTTP)
// that domain systems require.
package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/courier-sign/internal/config"
	"github.com/JaimeStill/courier-sign/internal/requests"
	"github.com/JaimeStill/courier-sign/pkg/database"
	"github.com/JaimeStill/courier-sign/pkg/lifecycle"
	"github.com/JaimeStill/courier-sign/pkg/logging"
	"github.com/JaimeStill/courier-sign/pkg/storage"
	"github.com/redis/go-redis/v9"
)

// Infrastructure holds the core systems required by all domain modules.
// Database is set only for the postgres store backend and Redis only for the redis backend.
type Infrastructure struct {
	Lifecycle  *lifecycle.Coordinator
	Logger     *slog.Logger
	Database   database.System
	Redis      *redis.Client
	Storage    storage.System
	HTTPClient *http.Client

	redisPrefix string
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := logging.New(&cfg.Logging)

	infra := &Infrastructure{
		Lifecycle:   lc,
		Logger:      logger,
		HTTPClient:  &http.Client{},
		redisPrefix: cfg.Store.Redis.Prefix,
	}

	switch cfg.Store.Backend {
	case config.StorePostgres:
		db, err := database.New(&cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
		infra.Database = db
	case config.StoreRedis:
		infra.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
		})
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}
	infra.Storage = store

	return infra, nil
}

// Start initializes all infrastructure systems and registers them with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if i.Database != nil {
		if err := i.Database.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}
		if err := requests.Migrate(i.Database.Connection()); err != nil {
			return fmt.Errorf("database migration failed: %w", err)
		}
	}

	if i.Redis != nil {
		if err := i.startRedis(); err != nil {
			return fmt.Errorf("redis start failed: %w", err)
		}
	}

	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	return nil
}

// RequestStore returns the signing request store for the configured backend.
func (i *Infrastructure) RequestStore() requests.Store {
	switch {
	case i.Database != nil:
		return requests.NewPostgresStore(i.Database.Connection())
	case i.Redis != nil:
		return requests.NewRedisStore(i.Redis, i.redisPrefix)
	default:
		return requests.NewMemoryStore()
	}
}

func (i *Infrastructure) startRedis() error {
	logger := i.Logger.With("system", "redis")
	logger.Info("starting redis", "addr", i.Redis.Options().Addr)

	ctx, cancel := context.WithTimeout(i.Lifecycle.Context(), i.Redis.Options().DialTimeout)
	defer cancel()

	if err := i.Redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}

	i.Lifecycle.OnShutdown(func() {
		<-i.Lifecycle.Context().Done()
		if err := i.Redis.Close(); err != nil {
			logger.Error("redis close failed", "error", err)
			return
		}
		logger.Info("redis connection closed")
	})

	return nil
}
