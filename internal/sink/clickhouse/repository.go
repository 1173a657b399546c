// Package clickhouse stores settled blocks in ClickHouse tables created by
// the migrations in migrations/clickhouse.
package clickhouse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/network"
)

type Repository struct {
	conn    Conn
	metrics Metrics
	coin    string
	network string
}

func NewRepository(dsn string, coin network.Coin, net network.Network, metrics Metrics) (*Repository, error) {
	if dsn == "" {
		return nil, errors.New("clickhouse dsn is required")
	}

	options, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse clickhouse dsn: %w", err)
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("open clickhouse connection: %w", err)
	}

	return &Repository{
		conn:    driverConn{conn: conn},
		metrics: metrics,
		coin:    string(coin),
		network: string(net),
	}, nil
}

// Ping checks the connection.
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.conn.Ping(ctx); err != nil {
		return fmt.Errorf("ping clickhouse: %w", err)
	}
	return nil
}

// Close closes the connection.
func (r *Repository) Close() error {
	return r.conn.Close()
}

// insert appends every item to one batch and sends it.
func insert[T any](ctx context.Context, r *Repository, operation, query string, items []T, row func(T) []any) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe(operation, len(items), err, start)
	}()

	if len(items) == 0 {
		return nil
	}

	batch, err := r.conn.PrepareBatch(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare %s batch: %w", operation, err)
	}

	for _, item := range items {
		if err = batch.Append(row(item)...); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("append %s row: %w", operation, err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	return nil
}

type driverConn struct {
	conn driver.Conn
}

func (c driverConn) PrepareBatch(ctx context.Context, query string) (Batch, error) {
	batch, err := c.conn.PrepareBatch(ctx, query)
	if err != nil {
		return nil, err
	}
	return batch, nil
}

func (c driverConn) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := c.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (c driverConn) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

func (c driverConn) Close() error {
	return c.conn.Close()
}
