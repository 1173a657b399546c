// Package model defines the block and transaction types produced by the block-file decoder.
package model

import (
	"sync"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// HeaderSize is the serialized size of a block header.
const HeaderSize = 80

// RawRecord is a framed payload cut out of a block container file.
type RawRecord struct {
	File        string
	Offset      int64
	Length      uint32
	Bytes       []byte
	SourceOrder uint64
}

// BlockHeader is the fixed 80-byte block header.
type BlockHeader struct {
	Version    int32
	PrevHash   chainhash.Hash
	MerkleRoot chainhash.Hash
	Timestamp  uint32
	Bits       uint32
	Nonce      uint32

	// raw holds the serialized header when it was decoded from a buffer so the
	// hash does not need a re-serialization.
	raw      []byte
	hashOnce sync.Once
	hash     chainhash.Hash
}

// NewBlockHeader builds a header from its fields.
func NewBlockHeader(version int32, prev, merkle chainhash.Hash, timestamp, bits, nonce uint32) *BlockHeader {
	return &BlockHeader{
		Version:    version,
		PrevHash:   prev,
		MerkleRoot: merkle,
		Timestamp:  timestamp,
		Bits:       bits,
		Nonce:      nonce,
	}
}

// SetRaw attaches the serialized form the header was decoded from.
func (h *BlockHeader) SetRaw(raw []byte) {
	h.raw = raw
}

// Hash returns the double-SHA256 of the serialized header. It is computed once.
func (h *BlockHeader) Hash() chainhash.Hash {
	h.hashOnce.Do(func() {
		raw := h.raw
		if len(raw) != HeaderSize {
			raw = h.Serialize()
		}
		h.hash = chainhash.DoubleHashH(raw)
	})
	return h.hash
}

// Time returns the header timestamp in UTC.
func (h *BlockHeader) Time() time.Time {
	return time.Unix(int64(h.Timestamp), 0).UTC()
}

// IsGenesis reports whether the header has no parent.
func (h *BlockHeader) IsGenesis() bool {
	return h.PrevHash == chainhash.Hash{}
}

// Serialize writes the header in wire order.
func (h *BlockHeader) Serialize() []byte {
	buf := make([]byte, 0, HeaderSize)
	buf = appendUint32(buf, uint32(h.Version))
	buf = append(buf, h.PrevHash[:]...)
	buf = append(buf, h.MerkleRoot[:]...)
	buf = appendUint32(buf, h.Timestamp)
	buf = appendUint32(buf, h.Bits)
	buf = appendUint32(buf, h.Nonce)
	return buf
}

// DecodedBlock is a block decoded from one RawRecord.
type DecodedBlock struct {
	Header       *BlockHeader
	Transactions []*Transaction
	Size         int
	SourceOrder  uint64
	File         string
	Offset       int64
}

// Hash is a shortcut for Header.Hash.
func (b *DecodedBlock) Hash() chainhash.Hash {
	return b.Header.Hash()
}

// Checkpoint is the last settled position of a run, used to resume the next one.
type Checkpoint struct {
	Height uint64
	Hash   chainhash.Hash
}

// IsZero reports whether the checkpoint is unset.
func (c Checkpoint) IsZero() bool {
	return c.Height == 0 && c.Hash == chainhash.Hash{}
}

func appendUint32(buf []byte, v uint32) []byte {
	return append(buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}
