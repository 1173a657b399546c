package codec

import "github.com/goodnatureofminers/blockinsight7000-blockparser/internal/model"

// EncodeHeader serializes a block header.
func EncodeHeader(h *model.BlockHeader) []byte {
	return h.Serialize()
}

// EncodeTransaction serializes a transaction, keeping the segwit layout when
// the transaction was decoded with one.
func EncodeTransaction(tx *model.Transaction) []byte {
	return tx.Serialize()
}

// EncodeBlock serializes a block payload.
func EncodeBlock(b *model.DecodedBlock) []byte {
	size := model.HeaderSize + model.CompactSizeLen(uint64(len(b.Transactions)))
	for _, tx := range b.Transactions {
		size += tx.Size()
	}
	buf := make([]byte, 0, size)
	buf = append(buf, b.Header.Serialize()...)
	buf = PutCompactSize(buf, uint64(len(b.Transactions)))
	for _, tx := range b.Transactions {
		buf = tx.AppendTo(buf, tx.HasWitness)
	}
	return buf
}

// EncodeRecord frames a block payload the way the node stores it in a
// container file: magic, little-endian length, payload.
func EncodeRecord(magic [4]byte, payload []byte) []byte {
	buf := make([]byte, 0, 8+len(payload))
	buf = append(buf, magic[:]...)
	n := uint32(len(payload))
	buf = append(buf, byte(n), byte(n>>8), byte(n>>16), byte(n>>24))
	return append(buf, payload...)
}
