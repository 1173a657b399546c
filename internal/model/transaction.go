package model

import (
	"math"
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

const (
	// WitnessMarker and WitnessFlag follow the version of a segwit transaction.
	WitnessMarker = 0x00
	WitnessFlag   = 0x01

	witnessScaleFactor = 4
)

// TxInput spends a previous output.
type TxInput struct {
	PrevTxID  chainhash.Hash
	PrevIndex uint32
	ScriptSig []byte
	Sequence  uint32
	Witness   [][]byte
}

// IsCoinbase reports whether the input is the coinbase input of a block.
func (in *TxInput) IsCoinbase() bool {
	return in.PrevIndex == math.MaxUint32 && in.PrevTxID == chainhash.Hash{}
}

// TxOutput carries value to a locking script.
type TxOutput struct {
	Value        uint64
	ScriptPubKey []byte
}

// Transaction is a decoded transaction. Scripts and witness items may alias the
// buffer the transaction was decoded from.
type Transaction struct {
	Version    int32
	Inputs     []TxInput
	Outputs    []TxOutput
	LockTime   uint32
	HasWitness bool

	idOnce  sync.Once
	txid    chainhash.Hash
	wtxOnce sync.Once
	wtxid   chainhash.Hash
}

// SetTxID stores a txid computed while decoding.
func (tx *Transaction) SetTxID(id chainhash.Hash) {
	tx.idOnce.Do(func() {
		tx.txid = id
	})
}

// TxID returns the double hash of the non-witness serialization.
func (tx *Transaction) TxID() chainhash.Hash {
	tx.idOnce.Do(func() {
		tx.txid = chainhash.DoubleHashH(tx.SerializeNoWitness())
	})
	return tx.txid
}

// WTxID returns the double hash of the full serialization. It equals TxID for
// transactions without witness data.
func (tx *Transaction) WTxID() chainhash.Hash {
	if !tx.HasWitness {
		return tx.TxID()
	}
	tx.wtxOnce.Do(func() {
		tx.wtxid = chainhash.DoubleHashH(tx.Serialize())
	})
	return tx.wtxid
}

// IsCoinbase reports whether the transaction is a coinbase transaction.
func (tx *Transaction) IsCoinbase() bool {
	return len(tx.Inputs) == 1 && tx.Inputs[0].IsCoinbase()
}

// Serialize returns the full wire form, including witness data when present.
func (tx *Transaction) Serialize() []byte {
	return tx.AppendTo(make([]byte, 0, tx.Size()), tx.HasWitness)
}

// SerializeNoWitness returns the legacy wire form used for the txid.
func (tx *Transaction) SerializeNoWitness() []byte {
	return tx.AppendTo(make([]byte, 0, tx.baseSize()), false)
}

// AppendTo appends the transaction to buf.
func (tx *Transaction) AppendTo(buf []byte, witness bool) []byte {
	buf = appendUint32(buf, uint32(tx.Version))
	if witness {
		buf = append(buf, WitnessMarker, WitnessFlag)
	}
	buf = AppendCompactSize(buf, uint64(len(tx.Inputs)))
	for i := range tx.Inputs {
		in := &tx.Inputs[i]
		buf = append(buf, in.PrevTxID[:]...)
		buf = appendUint32(buf, in.PrevIndex)
		buf = AppendCompactSize(buf, uint64(len(in.ScriptSig)))
		buf = append(buf, in.ScriptSig...)
		buf = appendUint32(buf, in.Sequence)
	}
	buf = AppendCompactSize(buf, uint64(len(tx.Outputs)))
	for i := range tx.Outputs {
		out := &tx.Outputs[i]
		buf = appendUint64(buf, out.Value)
		buf = AppendCompactSize(buf, uint64(len(out.ScriptPubKey)))
		buf = append(buf, out.ScriptPubKey...)
	}
	if witness {
		for i := range tx.Inputs {
			stack := tx.Inputs[i].Witness
			buf = AppendCompactSize(buf, uint64(len(stack)))
			for _, item := range stack {
				buf = AppendCompactSize(buf, uint64(len(item)))
				buf = append(buf, item...)
			}
		}
	}
	return appendUint32(buf, tx.LockTime)
}

// Size is the serialized size in bytes including witness data.
func (tx *Transaction) Size() int {
	if !tx.HasWitness {
		return tx.baseSize()
	}
	n := tx.baseSize() + 2
	for i := range tx.Inputs {
		stack := tx.Inputs[i].Witness
		n += CompactSizeLen(uint64(len(stack)))
		for _, item := range stack {
			n += CompactSizeLen(uint64(len(item))) + len(item)
		}
	}
	return n
}

// VSize is the virtual size: weight divided by four, rounded up.
func (tx *Transaction) VSize() int {
	weight := tx.baseSize()*(witnessScaleFactor-1) + tx.Size()
	return (weight + witnessScaleFactor - 1) / witnessScaleFactor
}

func (tx *Transaction) baseSize() int {
	n := 8 + CompactSizeLen(uint64(len(tx.Inputs))) + CompactSizeLen(uint64(len(tx.Outputs)))
	for i := range tx.Inputs {
		l := len(tx.Inputs[i].ScriptSig)
		n += 32 + 4 + CompactSizeLen(uint64(l)) + l + 4
	}
	for i := range tx.Outputs {
		l := len(tx.Outputs[i].ScriptPubKey)
		n += 8 + CompactSizeLen(uint64(l)) + l
	}
	return n
}

// CompactSizeLen returns the encoded length of v as a CompactSize integer.
func CompactSizeLen(v uint64) int {
	switch {
	case v < 0xfd:
		return 1
	case v <= math.MaxUint16:
		return 3
	case v <= math.MaxUint32:
		return 5
	default:
		return 9
	}
}

// AppendCompactSize appends v in the canonical CompactSize encoding.
func AppendCompactSize(buf []byte, v uint64) []byte {
	switch {
	case v < 0xfd:
		return append(buf, byte(v))
	case v <= math.MaxUint16:
		return append(buf, 0xfd, byte(v), byte(v>>8))
	case v <= math.MaxUint32:
		return appendUint32(append(buf, 0xfe), uint32(v))
	default:
		return appendUint64(append(buf, 0xff), v)
	}
}

func appendUint64(buf []byte, v uint64) []byte {
	return appendUint32(appendUint32(buf, uint32(v)), uint32(v>>32))
}
