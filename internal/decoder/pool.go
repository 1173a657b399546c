// Package decoder decodes framed block records in parallel.
package decoder

import (
	"context"
	"runtime"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/codec"
	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/model"
	"github.com/goodnatureofminers/blockinsight7000-blockparser/pkg/chflow"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Failure is a record that could not be decoded.
type Failure struct {
	Record model.RawRecord
	Err    error
}

// Result carries either a decoded block or a failure.
type Result struct {
	Block   *model.DecodedBlock
	Failure *Failure
}

// Pool runs codec.DecodeBlock on a fixed number of goroutines. Results are
// published in completion order.
type Pool struct {
	workers int
	metrics Metrics
	logger  *zap.Logger
}

// New creates a Pool. workers <= 0 means one worker per CPU.
func New(logger *zap.Logger, workers int, metrics Metrics) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{
		workers: workers,
		metrics: metrics,
		logger:  logger.Named("decoder"),
	}
}

// Workers returns the degree of parallelism.
func (p *Pool) Workers() int {
	return p.workers
}

// Run decodes records from in until it is closed, then closes out. Failures
// are published too. It returns early only when ctx ends.
func (p *Pool) Run(ctx context.Context, in <-chan model.RawRecord, out chan<- Result) error {
	defer close(out)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < p.workers; i++ {
		g.Go(func() error {
			for {
				rec, ok := chflow.Receive(ctx, in)
				if !ok {
					return ctx.Err()
				}
				if !chflow.Send(ctx, out, p.decode(rec)) {
					return ctx.Err()
				}
			}
		})
	}
	return g.Wait()
}

func (p *Pool) decode(rec model.RawRecord) Result {
	started := time.Now()
	block, err := codec.DecodeBlock(rec.Bytes)
	if p.metrics != nil {
		p.metrics.ObserveDecode(err, len(rec.Bytes), started)
	}
	if err != nil {
		p.logger.Debug("record not decoded",
			zap.String("file", rec.File),
			zap.Int64("offset", rec.Offset),
			zap.Uint32("length", rec.Length),
			zap.Error(err),
		)
		return Result{Failure: &Failure{Record: rec, Err: err}}
	}

	block.SourceOrder = rec.SourceOrder
	block.File = rec.File
	block.Offset = rec.Offset
	return Result{Block: block}
}
