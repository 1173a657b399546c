package metrics

import (
	"time"

	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/network"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	blockFilesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "block_files",
		Name:      "files_total",
		Help:      "Count of scanned container files.",
	}, []string{"coin", "network", "status"})

	blockFilesDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "block_files",
		Name:      "file_duration_seconds",
		Help:      "Duration of scanning one container file.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"coin", "network", "status"})

	blockFilesRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "block_files",
		Name:      "records_total",
		Help:      "Count of framed records cut out of container files.",
	}, []string{"coin", "network"})

	blockFilesFramingErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "block_files",
		Name:      "framing_errors_total",
		Help:      "Count of bad markers or lengths recovered by resynchronization.",
	}, []string{"coin", "network"})

	blockFilesSkippedBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "block_files",
		Name:      "skipped_bytes_total",
		Help:      "Bytes skipped while searching for the next marker.",
	}, []string{"coin", "network"})
)

// BlockFiles tracks container file scanning.
type BlockFiles struct {
	labels
}

// NewBlockFiles constructs a BlockFiles collector.
func NewBlockFiles(coin network.Coin, net network.Network) *BlockFiles {
	return &BlockFiles{labels: newLabels(coin, net)}
}

// ObserveFile records the outcome of scanning one file.
func (m BlockFiles) ObserveFile(err error, records, framingErrors, skippedBytes uint64, started time.Time) {
	s := status(err)
	blockFilesTotal.WithLabelValues(m.coin, m.network, s).Inc()
	blockFilesDuration.WithLabelValues(m.coin, m.network, s).Observe(time.Since(started).Seconds())
	blockFilesRecords.WithLabelValues(m.coin, m.network).Add(float64(records))
	blockFilesFramingErrors.WithLabelValues(m.coin, m.network).Add(float64(framingErrors))
	blockFilesSkippedBytes.WithLabelValues(m.coin, m.network).Add(float64(skippedBytes))
}
