package clickhouse

import (
	"context"

	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/sink"
)

const insertTransactionsQuery = `
INSERT INTO transactions (
	coin,
	network,
	txid,
	wtxid,
	block_height,
	block_hash,
	timestamp,
	position,
	size,
	vsize,
	version,
	locktime,
	input_count,
	output_count,
	is_coinbase,
	has_witness
) VALUES`

// InsertTransactions stores transaction rows in ClickHouse.
func (r *Repository) InsertTransactions(ctx context.Context, txs []sink.Transaction) error {
	return insert(ctx, r, "insert_transactions", insertTransactionsQuery, txs, func(tx sink.Transaction) []any {
		return []any{
			r.coin,
			r.network,
			tx.TxID,
			tx.WTxID,
			tx.BlockHeight,
			tx.BlockHash,
			tx.Timestamp,
			tx.Position,
			tx.Size,
			tx.VSize,
			tx.Version,
			tx.LockTime,
			tx.InputCount,
			tx.OutputCount,
			tx.IsCoinbase,
			tx.HasWitness,
		}
	})
}
