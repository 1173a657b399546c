// Package blocktest builds synthetic block chains and container files for tests.
package blocktest

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/codec"
	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/model"
)

const (
	// EasyBits is the regtest proof-of-work limit: the lowest work per block.
	EasyBits uint32 = 0x207fffff
	// HardBits carries far more work per block than EasyBits.
	HardBits uint32 = 0x1d00ffff
)

// Magic is the mainnet container-file marker.
var Magic = [4]byte{0xf9, 0xbe, 0xb4, 0xd9}

// NewBlock returns a block with a single coinbase transaction. salt makes
// otherwise identical blocks distinct.
func NewBlock(prev chainhash.Hash, bits, salt uint32) *model.DecodedBlock {
	var tag [8]byte
	binary.LittleEndian.PutUint32(tag[:4], salt)
	binary.LittleEndian.PutUint32(tag[4:], bits)

	pkh := make([]byte, 20)
	copy(pkh, tag[:])
	script := append([]byte{0x76, 0xa9, 0x14}, pkh...)
	script = append(script, 0x88, 0xac)

	coinbase := &model.Transaction{
		Version: 1,
		Inputs: []model.TxInput{{
			PrevIndex: math.MaxUint32,
			ScriptSig: append([]byte{0x08}, tag[:]...),
			Sequence:  math.MaxUint32,
		}},
		Outputs: []model.TxOutput{{Value: 50_0000_0000, ScriptPubKey: script}},
	}
	merkle := coinbase.TxID()

	return &model.DecodedBlock{
		Header:       model.NewBlockHeader(1, prev, merkle, 1_600_000_000+salt, bits, salt),
		Transactions: []*model.Transaction{coinbase},
	}
}

// Genesis returns a parentless block.
func Genesis(bits uint32) *model.DecodedBlock {
	return NewBlock(chainhash.Hash{}, bits, 0)
}

// Extend appends n blocks on top of parent. Salts start at salt so two
// branches built from the same parent differ.
func Extend(parent *model.DecodedBlock, n int, bits, salt uint32) []*model.DecodedBlock {
	blocks := make([]*model.DecodedBlock, 0, n)
	prev := parent.Hash()
	for i := 0; i < n; i++ {
		b := NewBlock(prev, bits, salt+uint32(i)+1)
		blocks = append(blocks, b)
		prev = b.Hash()
	}
	return blocks
}

// Chain returns a genesis block followed by n descendants.
func Chain(n int, bits uint32) []*model.DecodedBlock {
	genesis := Genesis(bits)
	return append([]*model.DecodedBlock{genesis}, Extend(genesis, n, bits, 0)...)
}

// Roundtrip re-decodes a block from its serialized form, as the decode stage would.
func Roundtrip(t testing.TB, b *model.DecodedBlock) *model.DecodedBlock {
	t.Helper()
	out, err := codec.DecodeBlock(codec.EncodeBlock(b))
	if err != nil {
		t.Fatalf("decode synthetic block: %v", err)
	}
	return out
}

// Reverse returns blocks in reverse order.
func Reverse(blocks []*model.DecodedBlock) []*model.DecodedBlock {
	out := make([]*model.DecodedBlock, len(blocks))
	for i, b := range blocks {
		out[len(blocks)-1-i] = b
	}
	return out
}

// FileContents frames blocks as a container file. gap bytes of garbage
// (without any magic marker) are written before every record.
func FileContents(blocks []*model.DecodedBlock, gap []byte) []byte {
	var buf []byte
	for _, b := range blocks {
		buf = append(buf, gap...)
		buf = append(buf, codec.EncodeRecord(Magic, codec.EncodeBlock(b))...)
	}
	return buf
}

// WriteFile writes a container file named name into dir and returns its path.
func WriteFile(t testing.TB, dir, name string, contents []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, contents, 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
