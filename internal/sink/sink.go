// Package sink defines how settled blocks leave the parser and the flat row
// model shared by the export adapters.
package sink

import (
	"context"
	"sync"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/model"
)

// Sink receives the canonical chain in height order.
//
// OnBlockSettled is called exactly once per settled block with strictly
// increasing, contiguous heights. OnComplete is called once when the run ends
// cleanly. Any returned error stops the run.
type Sink interface {
	OnStart(ctx context.Context, params *chaincfg.Params, startHeight uint64) error
	OnBlockSettled(ctx context.Context, height uint64, block *model.DecodedBlock) error
	OnDecodeError(ctx context.Context, raw []byte, reason error) error
	OnComplete(ctx context.Context, lastHeight uint64) error
	// Checkpoint returns the last block the sink has durably handled.
	Checkpoint() (model.Checkpoint, bool)
}

// Tracker keeps the last durably handled block of a sink. It is safe for
// concurrent use.
type Tracker struct {
	mu sync.Mutex
	cp model.Checkpoint
	ok bool
}

// Advance records height and hash as handled.
func (t *Tracker) Advance(height uint64, hash chainhash.Hash) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cp = model.Checkpoint{Height: height, Hash: hash}
	t.ok = true
}

// Checkpoint returns the last recorded block.
func (t *Tracker) Checkpoint() (model.Checkpoint, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cp, t.ok
}
