package mongo

import (
	"fmt"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/sink"
	"github.com/goodnatureofminers/blockinsight7000-blockparser/pkg/safe"
)

// BlockDoc is a document of the blocks collection, keyed by block hash.
type BlockDoc struct {
	ID         string    `bson:"_id"`
	Height     int64     `bson:"height"`
	PrevHash   string    `bson:"prev_hash"`
	Timestamp  time.Time `bson:"timestamp"`
	Version    int32     `bson:"version"`
	MerkleRoot string    `bson:"merkle_root"`
	Bits       int64     `bson:"bits"`
	Nonce      int64     `bson:"nonce"`
	Difficulty float64   `bson:"difficulty"`
	Size       int64     `bson:"size"`
	TxCount    int64     `bson:"tx_count"`
}

// TransactionDoc is a document of the transactions collection, keyed by txid.
// Inputs and outputs are embedded.
type TransactionDoc struct {
	ID          string      `bson:"_id"`
	WTxID       string      `bson:"wtxid"`
	BlockHeight int64       `bson:"block_height"`
	BlockHash   string      `bson:"block_hash"`
	Timestamp   time.Time   `bson:"timestamp"`
	Position    int64       `bson:"position"`
	Size        int64       `bson:"size"`
	VSize       int64       `bson:"vsize"`
	Version     int32       `bson:"version"`
	LockTime    int64       `bson:"locktime"`
	IsCoinbase  bool        `bson:"is_coinbase"`
	Inputs      []InputDoc  `bson:"inputs"`
	Outputs     []OutputDoc `bson:"outputs"`
}

type InputDoc struct {
	PrevTxID  string   `bson:"prev_txid"`
	PrevVout  int64    `bson:"prev_vout"`
	Sequence  int64    `bson:"sequence"`
	ScriptSig string   `bson:"script_sig"`
	Witness   []string `bson:"witness,omitempty"`
}

type OutputDoc struct {
	Value       int64  `bson:"value"`
	ScriptType  string `bson:"script_type"`
	Address     string `bson:"address,omitempty"`
	PubKeyCount int64  `bson:"pubkey_count,omitempty"`
	Script      string `bson:"script"`
}

// documents converts rows into one block document and its transactions.
func documents(rows sink.Rows) (BlockDoc, []TransactionDoc, error) {
	b := rows.Block
	height, err := safe.Int64(b.Height)
	if err != nil {
		return BlockDoc{}, nil, fmt.Errorf("block height: %w", err)
	}
	block := BlockDoc{
		ID:         b.Hash,
		Height:     height,
		PrevHash:   b.PrevHash,
		Timestamp:  b.Timestamp,
		Version:    b.Version,
		MerkleRoot: b.MerkleRoot,
		Bits:       int64(b.Bits),
		Nonce:      int64(b.Nonce),
		Difficulty: b.Difficulty,
		Size:       int64(b.Size),
		TxCount:    int64(b.TXCount),
	}

	txs := make([]TransactionDoc, len(rows.Txs))
	byID := make(map[string]*TransactionDoc, len(rows.Txs))
	for i, tx := range rows.Txs {
		txs[i] = TransactionDoc{
			ID:          tx.TxID,
			WTxID:       tx.WTxID,
			BlockHeight: height,
			BlockHash:   tx.BlockHash,
			Timestamp:   tx.Timestamp,
			Position:    int64(tx.Position),
			Size:        int64(tx.Size),
			VSize:       int64(tx.VSize),
			Version:     tx.Version,
			LockTime:    int64(tx.LockTime),
			IsCoinbase:  tx.IsCoinbase,
			Inputs:      make([]InputDoc, 0, tx.InputCount),
			Outputs:     make([]OutputDoc, 0, tx.OutputCount),
		}
		byID[tx.TxID] = &txs[i]
	}
	for _, in := range rows.Inputs {
		doc := byID[in.TxID]
		doc.Inputs = append(doc.Inputs, InputDoc{
			PrevTxID:  in.PrevTxID,
			PrevVout:  int64(in.PrevVout),
			Sequence:  int64(in.Sequence),
			ScriptSig: in.ScriptSigHex,
			Witness:   in.Witness,
		})
	}
	for _, out := range rows.Outputs {
		doc := byID[out.TxID]
		value, err := safe.Int64(out.Value)
		if err != nil {
			return BlockDoc{}, nil, fmt.Errorf("output %s:%d value: %w", out.TxID, out.Index, err)
		}
		o := OutputDoc{
			Value:       value,
			ScriptType:  out.ScriptType,
			PubKeyCount: int64(out.PubKeyCount),
			Script:      out.ScriptHex,
		}
		if len(out.Addresses) > 0 {
			o.Address = out.Addresses[0]
		}
		doc.Outputs = append(doc.Outputs, o)
	}
	return block, txs, nil
}
