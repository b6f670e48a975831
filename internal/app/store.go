package app

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/statusboard/internal/config"
	"github.com/MrSnakeDoc/statusboard/internal/connect"
	"github.com/MrSnakeDoc/statusboard/internal/logger"
	"github.com/MrSnakeDoc/statusboard/internal/store"
	"github.com/MrSnakeDoc/statusboard/internal/store/memory"
	"github.com/MrSnakeDoc/statusboard/internal/store/postgres"
	redisstore "github.com/MrSnakeDoc/statusboard/internal/store/redis"
	"github.com/MrSnakeDoc/statusboard/internal/store/sqlite"
)

func retryPolicy(cfg *config.Config) connect.Policy {
	return connect.Policy{
		ConnectTimeout: cfg.ConnectTimeout,
		RetryInterval:  cfg.RetryInterval,
		MaxWait:        cfg.MaxWait,
		PingTimeout:    cfg.PingTimeout,
		WarnThreshold:  cfg.WarnThreshold,
	}
}

// OpenStore opens the configured engine, waiting for network engines to
// answer and applying SQL migrations.
func OpenStore(ctx context.Context, cfg *config.Config, log logger.Logger) (store.Store, error) {
	log = log.With(logger.String("engine", cfg.Store))

	switch cfg.Store {
	case config.StoreMemory:
		log.Warn("using in-memory store, data is lost on restart")
		return memory.New(), nil

	case config.StoreSQLite:
		log.Infof("Opening SQLite database at %s", cfg.SQLitePath)
		s, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return s, nil

	case config.StorePostgres:
		s, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		log.Infof("Connecting to Postgres at %s", s.Target())
		if err := connect.WithRetry(ctx, "postgres", s.Target(), retryPolicy(cfg), log, s.Ping); err != nil {
			_ = s.Close()
			return nil, err
		}
		results, err := s.Migrate(ctx)
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("migrate postgres store: %w", err)
		}
		for _, r := range results {
			log.Info("migration applied",
				logger.Int64("version", r.Version),
				logger.String("source", r.Source),
				logger.String("duration", r.Duration))
		}
		return s, nil

	case config.StoreRedis:
		log.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := connect.Redis(ctx, connect.RedisOptions{
			Addr:         cfg.RedisAddr,
			User:         cfg.RedisUser,
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			DialTimeout:  cfg.RedisDT,
			ReadTimeout:  cfg.RedisRT,
			WriteTimeout: cfg.RedisWT,
			PoolSize:     cfg.RedisPoolSize,
			Retry:        retryPolicy(cfg),
		}, log)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return redisstore.NewStore(client, redisstore.Options{
			Prefix:       cfg.RedisPrefix,
			MaxTxRetries: cfg.RedisTxRetries,
		}), nil
	}

	return nil, fmt.Errorf("unknown store engine %q", cfg.Store)
}
