package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/model"
	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/sink"
	"github.com/goodnatureofminers/blockinsight7000-blockparser/pkg/batcher"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	defaultBatchSize     = 200
	defaultFlushInterval = 5 * time.Second
	closeTimeout         = 10 * time.Second
)

type Config struct {
	BatchSize     int           `validate:"gte=0"`
	FlushInterval time.Duration `validate:"gte=0"`
}

type pendingBlock struct {
	block  BlockDoc
	txs    []TransactionDoc
	height uint64
	hash   chainhash.Hash
}

var _ sink.Sink = (*Sink)(nil)

// Sink upserts settled blocks into MongoDB in batches.
type Sink struct {
	sink.Tracker

	store   Store
	cfg     Config
	logger  *zap.Logger
	builder *sink.Builder
	batcher *batcher.Batcher[pendingBlock]
}

func NewSink(store Store, cfg Config, logger *zap.Logger) *Sink {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = defaultFlushInterval
	}
	s := &Sink{store: store, cfg: cfg, logger: logger.Named("mongo_sink")}
	s.batcher = batcher.New[pendingBlock](s.logger.Named("blockBatcher"), s.flush, cfg.BatchSize, cfg.FlushInterval, 0)
	return s
}

func (s *Sink) OnStart(ctx context.Context, params *chaincfg.Params, startHeight uint64) error {
	if err := s.store.Ping(ctx); err != nil {
		return err
	}
	if err := s.store.EnsureIndexes(ctx); err != nil {
		return err
	}
	s.builder = sink.NewBuilder(params, false)
	s.batcher.Start(ctx)
	s.logger.Info("mongo sink started", zap.String("network", params.Name), zap.Uint64("start_height", startHeight))
	return nil
}

func (s *Sink) OnBlockSettled(ctx context.Context, height uint64, block *model.DecodedBlock) error {
	rows, err := s.builder.Build(height, block)
	if err != nil {
		return err
	}
	doc, txs, err := documents(rows)
	if err != nil {
		return fmt.Errorf("build documents for block %d: %w", height, err)
	}
	if err := s.batcher.Add(ctx, pendingBlock{block: doc, txs: txs, height: height, hash: block.Hash()}); err != nil {
		return fmt.Errorf("queue block %d: %w", height, err)
	}
	return nil
}

func (s *Sink) OnDecodeError(_ context.Context, raw []byte, reason error) error {
	s.logger.Warn("undecodable block record not stored", zap.Int("bytes", len(raw)), zap.Error(reason))
	return nil
}

func (s *Sink) OnComplete(ctx context.Context, lastHeight uint64) error {
	err := s.batcher.Stop()
	s.logger.Info("mongo sink complete", zap.Uint64("last_height", lastHeight), zap.Error(err))

	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
	defer cancel()
	return multierr.Append(err, s.store.Close(closeCtx))
}

// flush writes transactions before their blocks.
func (s *Sink) flush(ctx context.Context, items []pendingBlock) error {
	blocks := make([]BlockDoc, 0, len(items))
	var txs []TransactionDoc
	for _, item := range items {
		blocks = append(blocks, item.block)
		txs = append(txs, item.txs...)
	}
	if err := s.store.UpsertTransactions(ctx, txs); err != nil {
		return err
	}
	if err := s.store.UpsertBlocks(ctx, blocks); err != nil {
		return err
	}
	last := items[len(items)-1]
	s.Advance(last.height, last.hash)
	return nil
}
