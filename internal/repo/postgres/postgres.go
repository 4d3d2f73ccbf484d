package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultConnectTimeout = 20 * time.Second

// PoolConfig — параметры пула соединений.
type PoolConfig struct {
	DSN            string
	MaxConns       int32
	ConnectTimeout time.Duration // сколько ждать доступности БД при старте
}

// NewPool — создаёт пул соединений к Postgres на базе DSN.
// Ping повторяется с экспоненциальной паузой, пока не истечёт ConnectTimeout:
// при совместном старте с docker-compose база поднимается не сразу.
func NewPool(ctx context.Context, cfg PoolConfig) (*pgxpool.Pool, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}

	// Жизненный цикл соединений.
	pcfg.MaxConnLifetime = time.Hour
	pcfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 200 * time.Millisecond
	eb.Multiplier = 2
	eb.MaxInterval = timeout / 4
	eb.MaxElapsedTime = timeout

	if err := backoff.Retry(func() error { return pool.Ping(ctx) }, backoff.WithContext(eb, ctx)); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	return pool, nil
}
