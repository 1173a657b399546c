package clickhouse

import (
	"context"

	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/sink"
)

const insertTransactionOutputsQuery = `
INSERT INTO transaction_outputs (
	coin,
	network,
	block_height,
	block_timestamp,
	txid,
	output_index,
	value,
	script_type,
	script_hex,
	script_asm,
	addresses,
	pubkey_count
) VALUES`

// InsertTransactionOutputs stores transaction outputs in ClickHouse.
func (r *Repository) InsertTransactionOutputs(ctx context.Context, outputs []sink.TransactionOutput) error {
	return insert(ctx, r, "insert_transaction_outputs", insertTransactionOutputsQuery, outputs, func(out sink.TransactionOutput) []any {
		addresses := out.Addresses
		if addresses == nil {
			addresses = []string{}
		}
		return []any{
			r.coin,
			r.network,
			out.BlockHeight,
			out.BlockTime,
			out.TxID,
			out.Index,
			out.Value,
			out.ScriptType,
			out.ScriptHex,
			out.ScriptAsm,
			addresses,
			out.PubKeyCount,
		}
	})
}
