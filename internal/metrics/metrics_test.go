package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func delta(t *testing.T, collector prometheus.Collector, observe func()) float64 {
	t.Helper()

	before := testutil.ToFloat64(collector)
	observe()
	after := testutil.ToFloat64(collector)
	return after - before
}

func TestBlockFilesRecords(t *testing.T) {
	m := NewBlockFiles("", "")
	start := time.Now().Add(-time.Second)

	if inc := delta(t, blockFilesTotal.WithLabelValues("unknown", "unknown", "success"), func() {
		m.ObserveFile(nil, 3, 1, 10, start)
	}); inc != 1 {
		t.Fatalf("expected file counter increment, got %v", inc)
	}

	if inc := delta(t, blockFilesSkippedBytes.WithLabelValues("unknown", "unknown"), func() {
		m.ObserveFile(errors.New("read"), 0, 0, 64, start)
	}); inc != 64 {
		t.Fatalf("expected skipped bytes to grow by 64, got %v", inc)
	}
}

func TestDecoderRecords(t *testing.T) {
	m := NewDecoder("btc", "regtest")
	start := time.Now()

	if inc := delta(t, decoderBlocksTotal.WithLabelValues("btc", "regtest", "error"), func() {
		m.ObserveDecode(errors.New("malformed"), 0, start)
	}); inc != 1 {
		t.Fatalf("expected decode error increment, got %v", inc)
	}

	m.ObserveDecode(nil, 285, start)
}

func TestLinkerRecords(t *testing.T) {
	m := NewLinker("btc", "mainnet")

	if inc := delta(t, linkerEventsTotal.WithLabelValues("btc", "mainnet", "duplicate"), func() {
		m.ObserveEvent("duplicate")
	}); inc != 1 {
		t.Fatalf("expected duplicate event increment, got %v", inc)
	}

	m.ObserveSettled(14)
	if got := testutil.ToFloat64(linkerSettledHeight.WithLabelValues("btc", "mainnet")); got != 14 {
		t.Fatalf("expected settled height 14, got %v", got)
	}

	m.ObserveTip(20)
	m.ObservePending(2, 6)
	if got := testutil.ToFloat64(linkerPending.WithLabelValues("btc", "mainnet", "linked")); got != 6 {
		t.Fatalf("expected 6 linked blocks, got %v", got)
	}
}

func TestClickhouseRepositoryRecords(t *testing.T) {
	m := NewClickhouseRepository("ltc", "mainnet")
	start := time.Now().Add(-200 * time.Millisecond)

	if inc := delta(t, clickhouseRepositoryRows.WithLabelValues("insert_blocks", "ltc", "mainnet"), func() {
		m.Observe("insert_blocks", 5, nil, start)
	}); inc != 5 {
		t.Fatalf("expected 5 rows, got %v", inc)
	}

	if inc := delta(t, clickhouseRepositoryRequestsTotal.WithLabelValues("insert_blocks", "ltc", "mainnet", "error"), func() {
		m.Observe("insert_blocks", 5, errors.New("oops"), start)
	}); inc != 1 {
		t.Fatalf("expected error increment, got %v", inc)
	}
}

func TestSinkRecords(t *testing.T) {
	m := NewSink("", "btc", "testnet")

	if inc := delta(t, sinkOperationsTotal.WithLabelValues("unknown", "settle", "btc", "testnet", "success"), func() {
		m.Observe("settle", nil, time.Now())
	}); inc != 1 {
		t.Fatalf("expected sink counter increment, got %v", inc)
	}
}
