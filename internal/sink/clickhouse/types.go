package clickhouse

import (
	"context"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/sink"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Metrics interface {
		Observe(operation string, rows int, err error, started time.Time)
	}

	// Conn is the part of the ClickHouse driver the repository uses.
	Conn interface {
		PrepareBatch(ctx context.Context, query string) (Batch, error)
		Query(ctx context.Context, query string, args ...any) (Rows, error)
		Ping(ctx context.Context) error
		Close() error
	}
	Batch interface {
		Append(v ...any) error
		Send() error
		Abort() error
	}
	Rows interface {
		Next() bool
		Scan(dest ...any) error
		Err() error
		Close() error
	}

	BlockRepository interface {
		InsertBlocks(ctx context.Context, blocks []sink.Block) error
		InsertTransactions(ctx context.Context, txs []sink.Transaction) error
		InsertTransactionInputs(ctx context.Context, inputs []sink.TransactionInput) error
		InsertTransactionOutputs(ctx context.Context, outputs []sink.TransactionOutput) error
		MaxBlockHeight(ctx context.Context) (uint64, bool, error)
		Close() error
	}
)
