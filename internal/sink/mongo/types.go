package mongo

import "context"

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Store interface {
		Ping(ctx context.Context) error
		EnsureIndexes(ctx context.Context) error
		UpsertBlocks(ctx context.Context, blocks []BlockDoc) error
		UpsertTransactions(ctx context.Context, txs []TransactionDoc) error
		Close(ctx context.Context) error
	}
)
