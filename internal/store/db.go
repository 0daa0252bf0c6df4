package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kiranshivaraju/contractlens/internal/config"
)

const applicationName = "contractlens"

// Connect opens a pgx pool sized from cfg and verifies it with a ping.
// Idle connections are capped at the pool size so a misconfigured
// DB_MAX_IDLE_CONNS cannot make pgxpool reject the config.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	maxConns, minConns := poolSize(cfg.MaxOpenConns, cfg.MaxIdleConns)
	poolCfg.MaxConns = maxConns
	poolCfg.MinConns = minConns
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	if _, ok := poolCfg.ConnConfig.RuntimeParams["application_name"]; !ok {
		poolCfg.ConnConfig.RuntimeParams["application_name"] = applicationName
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("database connected",
		"max_conns", maxConns,
		"min_conns", minConns,
	)
	return pool, nil
}

func poolSize(maxOpen, maxIdle int) (int32, int32) {
	if maxOpen < 1 {
		maxOpen = 1
	}
	if maxIdle < 0 {
		maxIdle = 0
	}
	if maxIdle > maxOpen {
		maxIdle = maxOpen
	}
	return int32(maxOpen), int32(maxIdle)
}
