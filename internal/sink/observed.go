package sink

import (
	"context"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/model"
)

// Observed decorates a Sink with call metrics.
type Observed struct {
	next    Sink
	metrics Metrics
}

// NewObserved wraps next.
func NewObserved(next Sink, metrics Metrics) *Observed {
	return &Observed{next: next, metrics: metrics}
}

func (o *Observed) OnStart(ctx context.Context, params *chaincfg.Params, startHeight uint64) (err error) {
	started := time.Now()
	defer func() {
		o.metrics.Observe("on_start", err, started)
	}()
	return o.next.OnStart(ctx, params, startHeight)
}

func (o *Observed) OnBlockSettled(ctx context.Context, height uint64, block *model.DecodedBlock) (err error) {
	started := time.Now()
	defer func() {
		o.metrics.Observe("on_block_settled", err, started)
	}()
	return o.next.OnBlockSettled(ctx, height, block)
}

func (o *Observed) OnDecodeError(ctx context.Context, raw []byte, reason error) (err error) {
	started := time.Now()
	defer func() {
		o.metrics.Observe("on_decode_error", err, started)
	}()
	return o.next.OnDecodeError(ctx, raw, reason)
}

func (o *Observed) OnComplete(ctx context.Context, lastHeight uint64) (err error) {
	started := time.Now()
	defer func() {
		o.metrics.Observe("on_complete", err, started)
	}()
	return o.next.OnComplete(ctx, lastHeight)
}

func (o *Observed) Checkpoint() (model.Checkpoint, bool) {
	return o.next.Checkpoint()
}
