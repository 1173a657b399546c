// Package pipeline runs the scan, decode and link stages over a set of block
// files and hands the settled chain to a sink.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/blockfile"
	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/decoder"
	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/linker"
	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/model"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultScanWorkers = 2

type Config struct {
	Files  []string
	Params *chaincfg.Params
	Scan   blockfile.Options
	// ScanWorkers is the number of files read at once.
	ScanWorkers int
	// DecodeWorkers <= 0 means one per CPU.
	DecodeWorkers int
	Linker        linker.Config
	// RawBuffer and DecodedBuffer size the channels between stages. Zero
	// means twice the decode workers.
	RawBuffer     int
	DecodedBuffer int
}

// Metrics groups the per-stage collectors. Nil members are skipped.
type Metrics struct {
	Files   blockfile.Metrics
	Decoder decoder.Metrics
	Linker  linker.Metrics
}

type Pipeline struct {
	cfg        Config
	sink       Sink
	store      CheckpointStore
	metrics    Metrics
	onFileDone blockfile.FileDone
	logger     *zap.Logger
}

// New creates a Pipeline. store may be nil when checkpoints are not kept.
// onFileDone is called after each file, for progress reporting.
func New(cfg Config, sink Sink, store CheckpointStore, metrics Metrics, onFileDone blockfile.FileDone, logger *zap.Logger) (*Pipeline, error) {
	if sink == nil {
		return nil, errors.New("pipeline sink is required")
	}
	if cfg.Params == nil {
		return nil, errors.New("pipeline chain params are required")
	}
	if cfg.ScanWorkers <= 0 {
		cfg.ScanWorkers = defaultScanWorkers
	}
	return &Pipeline{
		cfg:        cfg,
		sink:       sink,
		store:      store,
		metrics:    metrics,
		onFileDone: onFileDone,
		logger:     logger.Named("pipeline"),
	}, nil
}

func (p *Pipeline) startHeight() uint64 {
	if p.cfg.Linker.Resume.IsZero() {
		return 0
	}
	return p.cfg.Linker.Resume.Height + 1
}

// Run processes all files. Canceling ctx stops the scanners; records already
// read are still decoded and linked, the sink is completed and its
// checkpoint saved. A sink error or a resume mismatch fails the run without
// completing the sink. Files that could not be read are returned joined once
// everything else is done.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	started := time.Now()
	summary := Summary{}

	// the stages outlive ctx so they can drain after an operator cancel
	runCtx := context.WithoutCancel(ctx)

	if err := p.sink.OnStart(runCtx, p.cfg.Params, p.startHeight()); err != nil {
		return summary, fmt.Errorf("start sink: %w", err)
	}

	pool := decoder.New(p.logger, p.cfg.DecodeWorkers, p.metrics.Decoder)
	buffer := 2 * pool.Workers()
	rawBuffer, decodedBuffer := p.cfg.RawBuffer, p.cfg.DecodedBuffer
	if rawBuffer <= 0 {
		rawBuffer = buffer
	}
	if decodedBuffer <= 0 {
		decodedBuffer = buffer
	}

	var (
		raw     = make(chan model.RawRecord, rawBuffer)
		decoded = make(chan decoder.Result, decodedBuffer)
		scanner = blockfile.NewMultiScanner(p.logger, p.cfg.Scan, p.cfg.ScanWorkers, p.metrics.Files, p.onFileDone)
		lk      = linker.New(p.cfg.Linker, p.sink, p.metrics.Linker, p.logger)
	)

	p.logger.Info("pipeline started",
		zap.Int("files", len(p.cfg.Files)),
		zap.Int("scan_workers", p.cfg.ScanWorkers),
		zap.Int("decode_workers", pool.Workers()),
		zap.Uint64("margin", p.cfg.Linker.Margin),
		zap.Uint64("start_height", p.startHeight()),
	)

	g, gctx := errgroup.WithContext(runCtx)
	scanCtx, stopScan := context.WithCancel(gctx)
	defer stopScan()
	stopOnCancel := context.AfterFunc(ctx, stopScan)
	defer stopOnCancel()
	if ctx.Err() != nil {
		stopScan()
	}

	g.Go(func() error {
		defer close(raw)
		report, err := scanner.Scan(scanCtx, p.cfg.Files, raw)
		summary.Scan = report
		if err != nil && gctx.Err() == nil {
			p.logger.Info("scan stopped early", zap.Error(err))
		}
		return nil
	})

	g.Go(func() error {
		return pool.Run(gctx, raw, decoded)
	})

	g.Go(func() error {
		for res := range decoded {
			if res.Failure != nil {
				lk.RecordFailure()
				if err := p.sink.OnDecodeError(gctx, res.Failure.Record.Bytes, res.Failure.Err); err != nil {
					return fmt.Errorf("report decode error: %w", err)
				}
				continue
			}
			if lk.Done() {
				continue
			}
			if err := lk.Ingest(gctx, res.Block); err != nil {
				return err
			}
			if lk.Done() {
				p.logger.Info("end height settled, stopping scan", zap.Uint64("end_height", p.cfg.Linker.EndHeight))
				stopScan()
			}
		}
		return nil
	})

	err := g.Wait()
	summary.Canceled = ctx.Err() != nil
	if err != nil {
		summary.Linker = lk.Report()
		summary.Elapsed = time.Since(started)
		return p.fail(runCtx, summary, err)
	}

	if summary.Canceled || lk.Done() {
		summary.Linker = lk.Report()
	} else {
		report, err := lk.Finish(runCtx)
		summary.Linker = report
		if err != nil {
			summary.Elapsed = time.Since(started)
			return p.fail(runCtx, summary, err)
		}
	}

	lastHeight := summary.Linker.Checkpoint.Height
	if !summary.Linker.HasSettled && p.startHeight() > 0 {
		lastHeight = p.startHeight() - 1
	}
	if err := p.sink.OnComplete(runCtx, lastHeight); err != nil {
		summary.Elapsed = time.Since(started)
		return p.fail(runCtx, summary, fmt.Errorf("complete sink: %w", err))
	}

	saved, err := p.saveCheckpoint(runCtx)
	summary.Saved = saved
	summary.Elapsed = time.Since(started)
	if err != nil {
		return summary, err
	}

	p.logger.Info("pipeline finished", summary.Fields()...)
	if summary.Scan.FileErrors != nil {
		return summary, fmt.Errorf("read block files: %w", summary.Scan.FileErrors)
	}
	return summary, nil
}

// fail keeps whatever the sink has made durable before returning err.
func (p *Pipeline) fail(ctx context.Context, summary Summary, err error) (Summary, error) {
	saved, saveErr := p.saveCheckpoint(ctx)
	summary.Saved = saved
	p.logger.Error("pipeline failed", append(summary.Fields(), zap.Error(err))...)
	return summary, multierr.Append(err, saveErr)
}

func (p *Pipeline) saveCheckpoint(ctx context.Context) (bool, error) {
	if p.store == nil {
		return false, nil
	}
	cp, ok := p.sink.Checkpoint()
	if !ok {
		return false, nil
	}
	if err := p.store.Save(ctx, cp); err != nil {
		return false, fmt.Errorf("save checkpoint: %w", err)
	}
	p.logger.Info("checkpoint saved", zap.Uint64("height", cp.Height), zap.Stringer("hash", cp.Hash))
	return true, nil
}
