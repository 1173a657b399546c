package clickhouse

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
	defaultBatchSize     = 500
	defaultFlushInterval = 5 * time.Second
	defaultFlushRPS      = 20
	inputFlushThreshold  = 200_000
)

// Config tunes the batching of the ClickHouse sink.
type Config struct {
	BatchSize     int           `validate:"gte=0"`
	FlushInterval time.Duration `validate:"gte=0"`
	FlushRPS      int           `validate:"gte=0"`
	Disasm        bool
}

func (c Config) withDefaults() Config {
	if c.BatchSize == 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.FlushInterval == 0 {
		c.FlushInterval = defaultFlushInterval
	}
	if c.FlushRPS == 0 {
		c.FlushRPS = defaultFlushRPS
	}
	return c
}

type pendingBlock struct {
	rows sink.Rows
	hash chainhash.Hash
}

var _ sink.Sink = (*Sink)(nil)

// Sink writes settled blocks to ClickHouse in batches. Its checkpoint only
// advances after a batch has been stored.
type Sink struct {
	sink.Tracker

	repo    BlockRepository
	cfg     Config
	logger  *zap.Logger
	builder *sink.Builder
	batcher *batcher.Batcher[pendingBlock]
	skipped int
}

func NewSink(repo BlockRepository, cfg Config, logger *zap.Logger) *Sink {
	s := &Sink{
		repo:   repo,
		cfg:    cfg.withDefaults(),
		logger: logger.Named("clickhouse_sink"),
	}
	s.batcher = batcher.New[pendingBlock](
		s.logger.Named("blockBatcher"),
		s.flush,
		s.cfg.BatchSize,
		s.cfg.FlushInterval,
		s.cfg.FlushRPS,
	)
	return s
}

func (s *Sink) OnStart(ctx context.Context, params *chaincfg.Params, startHeight uint64) error {
	s.builder = sink.NewBuilder(params, s.cfg.Disasm)

	stored, ok, err := s.repo.MaxBlockHeight(ctx)
	if err != nil {
		return fmt.Errorf("read stored height: %w", err)
	}
	if ok && stored >= startHeight {
		s.logger.Warn("run overlaps stored blocks, rows will be replaced",
			zap.Uint64("stored_height", stored),
			zap.Uint64("start_height", startHeight),
		)
	}

	s.batcher.Start(ctx)
	s.logger.Info("clickhouse sink started",
		zap.String("network", params.Name),
		zap.Uint64("start_height", startHeight),
		zap.Int("batch_size", s.cfg.BatchSize),
	)
	return nil
}

func (s *Sink) OnBlockSettled(ctx context.Context, height uint64, block *model.DecodedBlock) error {
	rows, err := s.builder.Build(height, block)
	if err != nil {
		return err
	}
	if err := s.batcher.Add(ctx, pendingBlock{rows: rows, hash: block.Hash()}); err != nil {
		return fmt.Errorf("queue block %d: %w", height, err)
	}
	return nil
}

func (s *Sink) OnDecodeError(_ context.Context, raw []byte, reason error) error {
	s.skipped++
	s.logger.Warn("undecodable block record not stored", zap.Int("bytes", len(raw)), zap.Error(reason))
	return nil
}

func (s *Sink) OnComplete(_ context.Context, lastHeight uint64) error {
	err := s.batcher.Stop()
	cp, ok := s.Checkpoint()
	s.logger.Info("clickhouse sink complete",
		zap.Uint64("last_height", lastHeight),
		zap.Bool("stored_any", ok),
		zap.Uint64("stored_height", cp.Height),
		zap.Int("undecodable_records", s.skipped),
		zap.Error(err),
	)
	return multierr.Append(err, s.repo.Close())
}

// flush stores one batch. Block rows go last so a stored block always has all
// of its transactions.
func (s *Sink) flush(ctx context.Context, items []pendingBlock) error {
	var (
		blocks  = make([]sink.Block, 0, len(items))
		txs     []sink.Transaction
		inputs  []sink.TransactionInput
		outputs []sink.TransactionOutput
	)
	for _, item := range items {
		blocks = append(blocks, item.rows.Block)
		txs = append(txs, item.rows.Txs...)
		outputs = append(outputs, item.rows.Outputs...)
		inputs = append(inputs, item.rows.Inputs...)
		if len(inputs) >= inputFlushThreshold {
			if err := s.repo.InsertTransactionInputs(ctx, inputs); err != nil {
				return err
			}
			s.logger.Debug("InsertTransactionInputs", zap.Int("count", len(inputs)))
			inputs = inputs[:0]
		}
	}

	if err := s.repo.InsertTransactions(ctx, txs); err != nil {
		return err
	}
	if err := s.repo.InsertTransactionInputs(ctx, inputs); err != nil {
		return err
	}
	if err := s.repo.InsertTransactionOutputs(ctx, outputs); err != nil {
		return err
	}
	if err := s.repo.InsertBlocks(ctx, blocks); err != nil {
		return err
	}

	last := items[len(items)-1]
	s.Advance(last.rows.Block.Height, last.hash)
	return nil
}
