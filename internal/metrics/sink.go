package metrics

import (
	"time"

	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/network"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sinkOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sink",
		Name:      "operations_total",
		Help:      "Count of sink callbacks.",
	}, []string{"sink", "operation", "coin", "network", "status"})
	sinkOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "sink",
		Name:      "operation_duration_seconds",
		Help:      "Duration of sink callbacks.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"sink", "operation", "coin", "network", "status"})
)

// Sink tracks calls into an export sink or a checkpoint store.
type Sink struct {
	labels
	name string
}

// NewSink constructs a Sink collector for the sink called name.
func NewSink(name string, coin network.Coin, net network.Network) *Sink {
	if name == "" {
		name = "unknown"
	}
	return &Sink{labels: newLabels(coin, net), name: name}
}

// Observe records one callback.
func (m Sink) Observe(operation string, err error, started time.Time) {
	s := status(err)
	sinkOperationsTotal.WithLabelValues(m.name, operation, m.coin, m.network, s).Inc()
	sinkOperationDuration.WithLabelValues(m.name, operation, m.coin, m.network, s).Observe(time.Since(started).Seconds())
}
