package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dhima/client-service/internal/logging"
	"github.com/dhima/client-service/internal/storage"
	"github.com/dhima/client-service/pkg/config"
	"go.uber.org/zap"
)

// ErrDatabaseURLRequired is returned when DATABASE_URL is not configured.
var ErrDatabaseURLRequired = errors.New("DATABASE_URL is required")

// PoolConfig builds the storage configuration for the primary pool.
func PoolConfig(cfg config.App) (storage.Config, error) {
	if cfg.DatabaseURL == "" {
		return storage.Config{}, ErrDatabaseURLRequired
	}
	poolCfg, err := storage.ConfigFromDSN(cfg.DatabaseURL)
	if err != nil {
		return storage.Config{}, err
	}
	poolCfg.Name = cfg.DBPoolName
	poolCfg.Debug = cfg.DBDebug
	poolCfg.SessionConfig = cfg.DBSessionConfig
	poolCfg.MaxOpenConns = cfg.DBMaxOpenConns
	poolCfg.MaxIdleConns = cfg.DBMaxIdleConns
	poolCfg.ConnMaxLifetime = cfg.DBConnLifetime
	poolCfg.TransactionTimeout = cfg.DBTxTimeout
	return poolCfg, nil
}

// ConnectDatabase registers the primary pool and pings it, retrying with
// exponential backoff while MySQL comes up.
func ConnectDatabase(ctx context.Context, cfg config.App, registry *storage.Registry, logger logging.Logger) (*storage.MySQLClient, error) {
	poolCfg, err := PoolConfig(cfg)
	if err != nil {
		return nil, err
	}
	pool, err := registry.GetInstance(poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open database pool: %w", err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxElapsedTime = 30 * time.Second

	ping := func() error { return pool.Ping(ctx) }
	notify := func(err error, wait time.Duration) {
		logger.Warn("database not reachable, retrying",
			zap.String("pool", pool.Name()),
			zap.Duration("retry_in", wait),
			zap.Error(err),
		)
	}
	if err := backoff.RetryNotify(ping, backoff.WithContext(policy, ctx), notify); err != nil {
		_ = registry.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	logger.Info("connected to database", zap.String("pool", pool.Name()))
	return pool, nil
}
