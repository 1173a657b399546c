package blockfile

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/model"
	"github.com/goodnatureofminers/blockinsight7000-blockparser/pkg/chflow"
	"github.com/goodnatureofminers/blockinsight7000-blockparser/pkg/workerpool"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// FileDone is called after a file has been scanned, successfully or not.
type FileDone func(path string, stats Stats, err error)

// Report summarizes a Scan call.
type Report struct {
	Stats
	Files       int
	FailedFiles int
	// FileErrors joins the *FileError of every file that could not be read.
	FileErrors error
}

// MultiScanner frames many container files concurrently. Records from all
// files share one SourceOrder sequence.
type MultiScanner struct {
	logger  *zap.Logger
	opts    Options
	workers int
	metrics Metrics
	order   atomic.Uint64
	onDone  FileDone
}

// NewMultiScanner creates a MultiScanner reading up to workers files at once.
func NewMultiScanner(logger *zap.Logger, opts Options, workers int, metrics Metrics, onDone FileDone) *MultiScanner {
	return &MultiScanner{
		logger:  logger.Named("blockfile"),
		opts:    opts,
		workers: workers,
		metrics: metrics,
		onDone:  onDone,
	}
}

// Scan sends the records of files to out in per-file order. A file that
// cannot be read is reported in Report.FileErrors and the others continue.
// The returned error is only set when ctx ends first.
func (m *MultiScanner) Scan(ctx context.Context, files []string, out chan<- model.RawRecord) (Report, error) {
	var (
		mu     sync.Mutex
		report = Report{Files: len(files)}
	)

	err := workerpool.Each(ctx, m.workers, files, func(ctx context.Context, path string) error {
		started := time.Now()
		stats, err := m.scanFile(ctx, path, out)
		if m.metrics != nil {
			m.metrics.ObserveFile(err, stats.Records, stats.FramingErrors, stats.SkippedBytes, started)
		}

		mu.Lock()
		report.Stats.Add(stats)
		mu.Unlock()

		if m.onDone != nil {
			m.onDone(path, stats, err)
		}
		if err != nil && !errors.Is(err, ctx.Err()) {
			m.logger.Warn("block file skipped",
				zap.String("file", path),
				zap.Uint64("records", stats.Records),
				zap.Error(err),
			)
		}
		return err
	})

	if ctxErr := ctx.Err(); ctxErr != nil {
		return report, ctxErr
	}
	if err != nil {
		report.FileErrors = err
		report.FailedFiles = countFileErrors(err)
	}
	return report, nil
}

func (m *MultiScanner) scanFile(ctx context.Context, path string, out chan<- model.RawRecord) (Stats, error) {
	s, err := Open(path, m.opts)
	if err != nil {
		return Stats{}, err
	}
	defer s.Close()
	s.order = &m.order

	for {
		rec, err := s.Next()
		if errors.Is(err, io.EOF) {
			m.logger.Debug("block file scanned",
				zap.String("file", path),
				zap.Uint64("records", s.stats.Records),
				zap.Uint64("framing_errors", s.stats.FramingErrors),
				zap.Uint64("skipped_bytes", s.stats.SkippedBytes),
			)
			return s.Stats(), nil
		}
		if err != nil {
			return s.Stats(), err
		}
		if !chflow.Send(ctx, out, rec) {
			return s.Stats(), ctx.Err()
		}
	}
}

func countFileErrors(err error) int {
	n := 0
	for _, e := range multierr.Errors(err) {
		var fe *FileError
		if errors.As(e, &fe) {
			n++
		}
	}
	return n
}
