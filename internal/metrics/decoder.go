package metrics

import (
	"time"

	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/network"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	decoderBlocksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "decoder",
		Name:      "blocks_total",
		Help:      "Count of decoded records.",
	}, []string{"coin", "network", "status"})

	decoderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "decoder",
		Name:      "decode_duration_seconds",
		Help:      "Duration of decoding one block.",
		Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
	}, []string{"coin", "network", "status"})

	decoderBlockSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "decoder",
		Name:      "block_size_bytes",
		Help:      "Size of decoded block payloads.",
		Buckets:   prometheus.ExponentialBuckets(256, 4, 9), // 256B..16MiB
	}, []string{"coin", "network"})
)

// Decoder tracks the decode worker pool.
type Decoder struct {
	labels
}

// NewDecoder constructs a Decoder collector.
func NewDecoder(coin network.Coin, net network.Network) *Decoder {
	return &Decoder{labels: newLabels(coin, net)}
}

// ObserveDecode records one decode attempt.
func (m Decoder) ObserveDecode(err error, size int, started time.Time) {
	s := status(err)
	decoderBlocksTotal.WithLabelValues(m.coin, m.network, s).Inc()
	decoderDuration.WithLabelValues(m.coin, m.network, s).Observe(time.Since(started).Seconds())
	if err == nil {
		decoderBlockSize.WithLabelValues(m.coin, m.network).Observe(float64(size))
	}
}
