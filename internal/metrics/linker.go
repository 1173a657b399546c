package metrics

import (
	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/network"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	linkerSettledHeight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "linker",
		Name:      "settled_height",
		Help:      "Height of the last settled block.",
	}, []string{"coin", "network"})

	linkerTipHeight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "linker",
		Name:      "tip_height",
		Help:      "Height of the best known tip.",
	}, []string{"coin", "network"})

	linkerSettledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "linker",
		Name:      "settled_total",
		Help:      "Count of settled blocks.",
	}, []string{"coin", "network"})

	linkerEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "linker",
		Name:      "events_total",
		Help:      "Count of absorbed linker events by kind.",
	}, []string{"coin", "network", "event"})

	linkerPending = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "linker",
		Name:      "pending_blocks",
		Help:      "Blocks held by the linker by state.",
	}, []string{"coin", "network", "state"})
)

// Linker tracks chain linking progress.
type Linker struct {
	labels
}

// NewLinker constructs a Linker collector.
func NewLinker(coin network.Coin, net network.Network) *Linker {
	return &Linker{labels: newLabels(coin, net)}
}

// ObserveSettled records a settled block.
func (m Linker) ObserveSettled(height uint64) {
	linkerSettledTotal.WithLabelValues(m.coin, m.network).Inc()
	linkerSettledHeight.WithLabelValues(m.coin, m.network).Set(float64(height))
}

// ObserveTip records a new best tip.
func (m Linker) ObserveTip(height uint64) {
	linkerTipHeight.WithLabelValues(m.coin, m.network).Set(float64(height))
}

// ObserveEvent counts an absorbed event such as a duplicate or a stale block.
func (m Linker) ObserveEvent(event string) {
	linkerEventsTotal.WithLabelValues(m.coin, m.network, event).Inc()
}

// ObservePending records how many blocks wait as orphans and linked nodes.
func (m Linker) ObservePending(orphans, linked int) {
	linkerPending.WithLabelValues(m.coin, m.network, "orphan").Set(float64(orphans))
	linkerPending.WithLabelValues(m.coin, m.network, "linked").Set(float64(linked))
}
