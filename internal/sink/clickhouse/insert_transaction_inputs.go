package clickhouse

import (
	"context"

	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/sink"
)

const insertTransactionInputsQuery = `
INSERT INTO transaction_inputs (
	coin,
	network,
	block_height,
	block_timestamp,
	txid,
	input_index,
	prev_txid,
	prev_vout,
	sequence,
	is_coinbase,
	script_sig_hex,
	script_sig_asm,
	witness
) VALUES`

// InsertTransactionInputs stores transaction inputs in ClickHouse.
func (r *Repository) InsertTransactionInputs(ctx context.Context, inputs []sink.TransactionInput) error {
	return insert(ctx, r, "insert_transaction_inputs", insertTransactionInputsQuery, inputs, func(in sink.TransactionInput) []any {
		witness := in.Witness
		if witness == nil {
			witness = []string{}
		}
		return []any{
			r.coin,
			r.network,
			in.BlockHeight,
			in.BlockTime,
			in.TxID,
			in.Index,
			in.PrevTxID,
			in.PrevVout,
			in.Sequence,
			in.IsCoinbase,
			in.ScriptSigHex,
			in.ScriptSigAsm,
			witness,
		}
	})
}
