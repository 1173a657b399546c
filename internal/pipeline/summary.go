package pipeline

import (
	"time"

	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/blockfile"
	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/linker"
	"go.uber.org/zap"
)

// Summary is what a run absorbed and produced.
type Summary struct {
	Scan   blockfile.Report
	Linker linker.Report
	// Canceled is set when the run stopped on ctx before the input ended.
	Canceled bool
	// Saved is set when the sink checkpoint was written to the store.
	Saved   bool
	Elapsed time.Duration
}

// Fields renders the summary as log fields.
func (s Summary) Fields() []zap.Field {
	fields := []zap.Field{
		zap.Int("files", s.Scan.Files),
		zap.Int("failed_files", s.Scan.FailedFiles),
		zap.Uint64("records", s.Scan.Records),
		zap.Uint64("framing_errors", s.Scan.FramingErrors),
		zap.Uint64("skipped_bytes", s.Scan.SkippedBytes),
		zap.Uint64("decode_failures", s.Linker.DecodeFailures),
		zap.Uint64("duplicates", s.Linker.Duplicates),
		zap.Uint64("stale", s.Linker.Stale),
		zap.Uint64("pruned", s.Linker.Pruned),
		zap.Uint64("extra_roots", s.Linker.ExtraRoots),
		zap.Uint64("before_checkpoint", s.Linker.BeforeCheckpoint),
		zap.Uint64("reorgs", s.Linker.Reorgs),
		zap.Uint64("settled", s.Linker.Settled),
		zap.Uint64("tip_height", s.Linker.TipHeight),
		zap.Int("unsettled", s.Linker.Unsettled),
		zap.Int("orphan_blocks", s.Linker.OrphanBlocks),
		zap.Int("fragments", len(s.Linker.Fragments)),
		zap.Bool("canceled", s.Canceled),
		zap.Duration("elapsed", s.Elapsed),
	}
	if s.Linker.HasSettled {
		fields = append(fields,
			zap.Uint64("last_height", s.Linker.Checkpoint.Height),
			zap.Stringer("last_hash", s.Linker.Checkpoint.Hash),
		)
	}
	return fields
}
