package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/blockfile"
	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/checkpoint"
	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/linker"
	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/metrics"
	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/model"
	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/network"
	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/nodeindex"
	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/pipeline"
	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/sink"
	"go.uber.org/zap"
)

type checkpointStore interface {
	Load(ctx context.Context) (model.Checkpoint, error)
	Save(ctx context.Context, cp model.Checkpoint) error
	Close() error
}

func run(ctx context.Context, opts options, name string, factory sinkFactory, logger *zap.Logger) error {
	if opts.MetricsAddr != "" {
		startMetricsServer(ctx, opts.MetricsAddr, logger)
	}

	params, err := network.Params(opts.Coin, opts.Network)
	if err != nil {
		return err
	}
	files, err := blockfile.ListFiles(opts.BlocksDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no block files in %s", opts.BlocksDir)
	}
	if opts.ReverseFiles {
		slices.Reverse(files)
	}
	xorKey, err := blockfile.LoadXORKey(opts.BlocksDir)
	if err != nil {
		return err
	}
	if !xorKey.IsZero() {
		logger.Info("block files are obfuscated", zap.String("key_file", blockfile.XORKeyFile))
	}

	store, err := openCheckpointStore(ctx, opts)
	if err != nil {
		return err
	}
	var pipelineStore pipeline.CheckpointStore
	if store != nil {
		pipelineStore = store
		defer func() {
			if err := store.Close(); err != nil {
				logger.Warn("close checkpoint store", zap.Error(err))
			}
		}()
	}

	resume, err := resolveStart(ctx, opts, store, logger)
	if err != nil {
		return err
	}
	tieBreak, err := linker.ParseTieBreak(opts.TieBreak)
	if err != nil {
		return err
	}

	s, err := factory(ctx, logger)
	if err != nil {
		return err
	}
	observed := sink.NewObserved(s, metrics.NewSink(name, opts.Coin, opts.Network))

	var onFileDone blockfile.FileDone
	if opts.Progress {
		bar := newProgressBar(len(files))
		onFileDone = func(string, blockfile.Stats, error) {
			_ = bar.Add(1)
		}
		defer func() {
			_ = bar.Finish()
		}()
	}

	p, err := pipeline.New(pipeline.Config{
		Files:         files,
		Params:        params,
		Scan:          blockfile.Options{Magic: network.Magic(params), XORKey: xorKey},
		ScanWorkers:   opts.ScanWorkers,
		DecodeWorkers: opts.Workers,
		Linker: linker.Config{
			Margin:          opts.Margin,
			TieBreak:        tieBreak,
			FlushOnComplete: opts.FlushTip,
			Resume:          resume,
			GenesisHash:     params.GenesisHash,
			EndHeight:       opts.EndHeight,
		},
	}, observed, pipelineStore, pipeline.Metrics{
		Files:   metrics.NewBlockFiles(opts.Coin, opts.Network),
		Decoder: metrics.NewDecoder(opts.Coin, opts.Network),
		Linker:  metrics.NewLinker(opts.Coin, opts.Network),
	}, onFileDone, logger)
	if err != nil {
		return err
	}

	summary, err := p.Run(ctx)
	if summary.Canceled {
		logger.Warn("run interrupted before the end of the block files",
			zap.Bool("checkpoint_saved", summary.Saved),
		)
	}
	return err
}

func openCheckpointStore(ctx context.Context, opts options) (checkpointStore, error) {
	switch {
	case opts.CheckpointRedisAddr != "":
		store, err := checkpoint.NewRedisStore(ctx, opts.CheckpointRedisAddr, opts.CheckpointRedisUser,
			opts.CheckpointRedisPass, opts.CheckpointRedisDB, opts.Coin, opts.Network)
		if err != nil {
			return nil, fmt.Errorf("open redis checkpoint store: %w", err)
		}
		return store, nil
	case opts.CheckpointFile != "":
		return checkpoint.NewFileStore(opts.CheckpointFile, opts.Coin, opts.Network), nil
	default:
		return nil, nil
	}
}

// resolveStart picks the block the run continues after. --start-height wins
// over a stored checkpoint; with neither the run starts at genesis.
func resolveStart(ctx context.Context, opts options, store checkpointStore, logger *zap.Logger) (model.Checkpoint, error) {
	if opts.StartHeight > 0 {
		dir := opts.IndexDir
		if dir == "" {
			dir = filepath.Join(opts.BlocksDir, "index")
		}
		idx, err := nodeindex.Open(dir, logger)
		if err != nil {
			return model.Checkpoint{}, err
		}
		defer idx.Close()

		tip, err := idx.Lookup(ctx, nodeindex.Latest())
		if err != nil {
			return model.Checkpoint{}, fmt.Errorf("look up index tip: %w", err)
		}
		logger.Info("node index tip", zap.Uint64("height", tip.Height), zap.Stringer("hash", tip.Hash))

		cp, err := idx.Lookup(ctx, nodeindex.AtHeight(opts.StartHeight-1))
		if err != nil {
			return model.Checkpoint{}, fmt.Errorf("look up start height %d: %w", opts.StartHeight, err)
		}
		logger.Info("starting after node index block", zap.Uint64("height", cp.Height), zap.Stringer("hash", cp.Hash))
		return cp, nil
	}

	if store == nil {
		return model.Checkpoint{}, nil
	}
	cp, err := store.Load(ctx)
	if errors.Is(err, checkpoint.ErrNoCheckpointFound) {
		logger.Info("no checkpoint stored, starting at genesis")
		return model.Checkpoint{}, nil
	}
	if err != nil {
		return model.Checkpoint{}, fmt.Errorf("load checkpoint: %w", err)
	}
	logger.Info("resuming from checkpoint", zap.Uint64("height", cp.Height), zap.Stringer("hash", cp.Hash))
	return cp, nil
}
