package sink

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/model"
	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/script"
	"github.com/goodnatureofminers/blockinsight7000-blockparser/pkg/safe"
)

// difficulty 1 target of the bitcoin main network.
var diffOneTarget = blockchain.CompactToBig(0x1d00ffff)

// Block is a settled block flattened for export.
type Block struct {
	Height     uint64
	Hash       string
	PrevHash   string
	Timestamp  time.Time
	Version    int32
	MerkleRoot string
	Bits       uint32
	Nonce      uint32
	Difficulty float64
	Size       uint32
	TXCount    uint32
}

// Transaction is one transaction of a settled block.
type Transaction struct {
	TxID        string
	WTxID       string
	BlockHeight uint64
	BlockHash   string
	Timestamp   time.Time
	Position    uint32
	Size        uint32
	VSize       uint32
	Version     int32
	LockTime    uint32
	InputCount  uint32
	OutputCount uint32
	IsCoinbase  bool
	HasWitness  bool
}

// TransactionInput is one input of a transaction.
type TransactionInput struct {
	BlockHeight  uint64
	BlockTime    time.Time
	TxID         string
	Index        uint32
	PrevTxID     string
	PrevVout     uint32
	Sequence     uint32
	IsCoinbase   bool
	ScriptSigHex string
	ScriptSigAsm string
	Witness      []string
}

// TransactionOutput is one output of a transaction.
type TransactionOutput struct {
	BlockHeight uint64
	BlockTime   time.Time
	TxID        string
	Index       uint32
	Value       uint64
	ScriptType  string
	ScriptHex   string
	ScriptAsm   string
	Addresses   []string
	PubKeyCount uint32
}

// Rows groups a block with its transactions, inputs and outputs.
type Rows struct {
	Block   Block
	Txs     []Transaction
	Inputs  []TransactionInput
	Outputs []TransactionOutput
}

// Builder turns decoded blocks into Rows for one network.
type Builder struct {
	interp *script.Interpreter
	disasm bool
}

// NewBuilder returns a Builder deriving addresses with params. disasm enables
// the script assembly columns.
func NewBuilder(params *chaincfg.Params, disasm bool) *Builder {
	return &Builder{interp: script.NewInterpreter(params), disasm: disasm}
}

// Build flattens block settled at height.
func (b *Builder) Build(height uint64, block *model.DecodedBlock) (Rows, error) {
	hdr := block.Header
	blockTime := hdr.Time()
	blockHash := block.Hash().String()

	size, err := safe.Uint32(block.Size)
	if err != nil {
		return Rows{}, fmt.Errorf("block %d size overflow: %w", height, err)
	}
	txCount, err := safe.Uint32(len(block.Transactions))
	if err != nil {
		return Rows{}, fmt.Errorf("block %d tx count overflow: %w", height, err)
	}

	rows := Rows{
		Block: Block{
			Height:     height,
			Hash:       blockHash,
			PrevHash:   hdr.PrevHash.String(),
			Timestamp:  blockTime,
			Version:    hdr.Version,
			MerkleRoot: hdr.MerkleRoot.String(),
			Bits:       hdr.Bits,
			Nonce:      hdr.Nonce,
			Difficulty: Difficulty(hdr.Bits),
			Size:       size,
			TXCount:    txCount,
		},
		Txs: make([]Transaction, 0, len(block.Transactions)),
	}

	for pos, tx := range block.Transactions {
		txid := tx.TxID().String()
		row, err := b.transaction(tx)
		if err != nil {
			return Rows{}, fmt.Errorf("block %d tx %s: %w", height, txid, err)
		}
		row.TxID = txid
		row.BlockHeight = height
		row.BlockHash = blockHash
		row.Timestamp = blockTime
		row.Position = uint32(pos)
		rows.Txs = append(rows.Txs, row)

		for idx := range tx.Inputs {
			rows.Inputs = append(rows.Inputs, b.input(height, blockTime, txid, uint32(idx), &tx.Inputs[idx]))
		}
		for idx := range tx.Outputs {
			rows.Outputs = append(rows.Outputs, b.output(height, blockTime, txid, uint32(idx), &tx.Outputs[idx]))
		}
	}
	return rows, nil
}

func (b *Builder) transaction(tx *model.Transaction) (Transaction, error) {
	size, err := safe.Uint32(tx.Size())
	if err != nil {
		return Transaction{}, fmt.Errorf("size overflow: %w", err)
	}
	vsize, err := safe.Uint32(tx.VSize())
	if err != nil {
		return Transaction{}, fmt.Errorf("vsize overflow: %w", err)
	}
	inputs, err := safe.Uint32(len(tx.Inputs))
	if err != nil {
		return Transaction{}, fmt.Errorf("input count overflow: %w", err)
	}
	outputs, err := safe.Uint32(len(tx.Outputs))
	if err != nil {
		return Transaction{}, fmt.Errorf("output count overflow: %w", err)
	}
	return Transaction{
		WTxID:       tx.WTxID().String(),
		Size:        size,
		VSize:       vsize,
		Version:     tx.Version,
		LockTime:    tx.LockTime,
		InputCount:  inputs,
		OutputCount: outputs,
		IsCoinbase:  tx.IsCoinbase(),
		HasWitness:  tx.HasWitness,
	}, nil
}

func (b *Builder) input(height uint64, blockTime time.Time, txid string, idx uint32, in *model.TxInput) TransactionInput {
	row := TransactionInput{
		BlockHeight:  height,
		BlockTime:    blockTime,
		TxID:         txid,
		Index:        idx,
		PrevTxID:     in.PrevTxID.String(),
		PrevVout:     in.PrevIndex,
		Sequence:     in.Sequence,
		IsCoinbase:   in.IsCoinbase(),
		ScriptSigHex: hex.EncodeToString(in.ScriptSig),
	}
	if b.disasm && !row.IsCoinbase {
		row.ScriptSigAsm = Disasm(in.ScriptSig)
	}
	if len(in.Witness) > 0 {
		row.Witness = make([]string, len(in.Witness))
		for i, item := range in.Witness {
			row.Witness[i] = hex.EncodeToString(item)
		}
	}
	return row
}

func (b *Builder) output(height uint64, blockTime time.Time, txid string, idx uint32, out *model.TxOutput) TransactionOutput {
	addr := b.interp.Derive(out.ScriptPubKey)
	row := TransactionOutput{
		BlockHeight: height,
		BlockTime:   blockTime,
		TxID:        txid,
		Index:       idx,
		Value:       out.Value,
		ScriptType:  string(addr.Kind),
		ScriptHex:   hex.EncodeToString(out.ScriptPubKey),
		PubKeyCount: uint32(addr.PubKeyCount),
	}
	if addr.HasAddress() {
		row.Addresses = []string{addr.Encoded}
	}
	if b.disasm {
		row.ScriptAsm = Disasm(out.ScriptPubKey)
	}
	return row
}

// Disasm renders a script in assembly form. Unparsable tails are marked
// "[error]" instead of failing.
func Disasm(s []byte) string {
	asm, _ := txscript.DisasmString(s)
	return asm
}

// Difficulty converts compact bits into the difficulty relative to the main
// network's minimum target.
func Difficulty(bits uint32) float64 {
	target := blockchain.CompactToBig(bits)
	if target.Sign() <= 0 {
		return 0
	}
	d, _ := new(big.Rat).SetFrac(diffOneTarget, target).Float64()
	return d
}
