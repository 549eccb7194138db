package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/volunteer-bridge/backend/config"
	"github.com/volunteer-bridge/backend/internal/notifications"
	"github.com/volunteer-bridge/backend/pkg/database"
	"github.com/volunteer-bridge/backend/pkg/queue"
	"github.com/volunteer-bridge/backend/pkg/redis"
)

// env holds the connections a command needs. Close releases them.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	pool   *pgxpool.Pool
	rdb    *redis.Client
}

func connect(ctx context.Context, withRedis bool) (*env, error) {
	logger := newLogger()
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), database.PoolOptions{
		MaxConns:        2,
		MaxConnLifetime: time.Duration(cfg.Database.MaxConnLifetime) * time.Minute,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	e := &env{cfg: cfg, logger: logger, pool: pool}
	if withRedis {
		rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		e.rdb = rdb
	}
	return e, nil
}

func (e *env) Close() {
	if e.rdb != nil {
		_ = e.rdb.Close()
	}
	e.pool.Close()
	_ = e.logger.Sync()
}

// notifier returns the notification service that persists and enqueues deliveries.
func (e *env) notifier() *notifications.Service {
	return notifications.NewService(notifications.NewRepository(e.pool), queue.NewQueue(e.rdb.Client, e.logger), e.logger)
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	logger, _ := config.Build()
	return logger
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
