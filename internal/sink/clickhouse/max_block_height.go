package clickhouse

import (
	"context"
	"fmt"
	"time"
)

const maxBlockHeightQuery = `
SELECT coalesce(max(height), toUInt64(0)) AS max_height, count() AS blocks
FROM blocks
WHERE coin = ? AND network = ?`

// MaxBlockHeight returns the highest stored block height. ok is false when no
// block of the coin and network is stored.
func (r *Repository) MaxBlockHeight(ctx context.Context) (height uint64, ok bool, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("max_block_height", 1, err, start)
	}()

	rows, err := r.conn.Query(ctx, maxBlockHeightQuery, r.coin, r.network)
	if err != nil {
		return 0, false, fmt.Errorf("query max block height: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	if !rows.Next() {
		return 0, false, fmt.Errorf("max block height not found")
	}

	var count uint64
	if err = rows.Scan(&height, &count); err != nil {
		return 0, false, fmt.Errorf("scan max block height: %w", err)
	}
	if err = rows.Err(); err != nil {
		return 0, false, fmt.Errorf("iterate max block height: %w", err)
	}

	return height, count > 0, nil
}
