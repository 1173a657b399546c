package clickhouse

import (
	"context"

	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/sink"
)

const insertBlocksQuery = `
INSERT INTO blocks (
	coin,
	network,
	height,
	hash,
	prev_hash,
	timestamp,
	version,
	merkleroot,
	bits,
	nonce,
	difficulty,
	size,
	tx_count
) VALUES`

// InsertBlocks stores block rows in ClickHouse.
func (r *Repository) InsertBlocks(ctx context.Context, blocks []sink.Block) error {
	return insert(ctx, r, "insert_blocks", insertBlocksQuery, blocks, func(b sink.Block) []any {
		return []any{
			r.coin,
			r.network,
			b.Height,
			b.Hash,
			b.PrevHash,
			b.Timestamp,
			b.Version,
			b.MerkleRoot,
			b.Bits,
			b.Nonce,
			b.Difficulty,
			b.Size,
			b.TXCount,
		}
	})
}
