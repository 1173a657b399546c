// Package simplestats aggregates chain statistics and prints them when the
// run completes.
package simplestats

import (
	"context"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/model"
	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/script"
	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/sink"
	"go.uber.org/zap"
)

// Stats is the aggregate over all settled blocks.
type Stats struct {
	FirstHeight   uint64
	LastHeight    uint64
	Blocks        uint64
	Transactions  uint64
	Inputs        uint64
	Outputs       uint64
	SegwitTxs     uint64
	TotalValue    uint64
	BytesTotal    uint64
	DecodeErrors  uint64
	OutputKinds   map[script.AddressKind]uint64
	BareMultisig  uint64
	LargestTx     string
	LargestTxSize int
	MostOutputsTx string
	MostOutputs   int
	FirstTime     time.Time
	LastTime      time.Time
}

var _ sink.Sink = (*Collector)(nil)

// Collector is the simplestats Sink.
type Collector struct {
	sink.Tracker

	out    io.Writer
	logger *zap.Logger
	interp *script.Interpreter
	stats  Stats
}

// New returns a Collector printing its report to out.
func New(out io.Writer, logger *zap.Logger) *Collector {
	return &Collector{
		out:    out,
		logger: logger.Named("simplestats"),
		stats:  Stats{OutputKinds: make(map[script.AddressKind]uint64)},
	}
}

func (c *Collector) OnStart(_ context.Context, params *chaincfg.Params, startHeight uint64) error {
	c.interp = script.NewInterpreter(params)
	c.stats.FirstHeight = startHeight
	return nil
}

func (c *Collector) OnBlockSettled(_ context.Context, height uint64, block *model.DecodedBlock) error {
	st := &c.stats
	if st.Blocks == 0 {
		st.FirstHeight = height
		st.FirstTime = block.Header.Time()
	}
	st.Blocks++
	st.LastHeight = height
	st.LastTime = block.Header.Time()
	st.BytesTotal += uint64(block.Size)

	for _, tx := range block.Transactions {
		st.Transactions++
		st.Inputs += uint64(len(tx.Inputs))
		st.Outputs += uint64(len(tx.Outputs))
		if tx.HasWitness {
			st.SegwitTxs++
		}
		if size := tx.Size(); size > st.LargestTxSize {
			st.LargestTxSize = size
			st.LargestTx = tx.TxID().String()
		}
		if n := len(tx.Outputs); n > st.MostOutputs {
			st.MostOutputs = n
			st.MostOutputsTx = tx.TxID().String()
		}
		for i := range tx.Outputs {
			out := &tx.Outputs[i]
			st.TotalValue += out.Value
			addr := c.interp.Derive(out.ScriptPubKey)
			st.OutputKinds[addr.Kind]++
			if addr.IsBareMultisig() {
				st.BareMultisig++
			}
		}
	}
	c.Advance(height, block.Hash())
	return nil
}

func (c *Collector) OnDecodeError(context.Context, []byte, error) error {
	c.stats.DecodeErrors++
	return nil
}

func (c *Collector) OnComplete(_ context.Context, lastHeight uint64) error {
	c.logger.Info("statistics collected",
		zap.Uint64("blocks", c.stats.Blocks),
		zap.Uint64("transactions", c.stats.Transactions),
		zap.Uint64("last_height", lastHeight),
	)
	return c.Report(c.out)
}

// Stats returns the aggregate so far.
func (c *Collector) Stats() Stats {
	return c.stats
}

// Report writes a human readable summary to w.
func (c *Collector) Report(w io.Writer) error {
	st := c.stats
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	rows := [][2]string{
		{"Heights", fmt.Sprintf("%d - %d", st.FirstHeight, st.LastHeight)},
		{"Blocks", fmt.Sprint(st.Blocks)},
		{"Transactions", fmt.Sprint(st.Transactions)},
		{"Inputs", fmt.Sprint(st.Inputs)},
		{"Outputs", fmt.Sprint(st.Outputs)},
		{"Segwit transactions", fmt.Sprint(st.SegwitTxs)},
		{"Total output value", btcutil.Amount(int64(st.TotalValue)).String()},
		{"Block bytes", fmt.Sprint(st.BytesTotal)},
		{"Undecodable records", fmt.Sprint(st.DecodeErrors)},
		{"Bare multisig outputs", fmt.Sprint(st.BareMultisig)},
	}
	if st.Blocks > 0 {
		rows = append(rows,
			[2]string{"Time span", fmt.Sprintf("%s - %s", st.FirstTime.Format(time.RFC3339), st.LastTime.Format(time.RFC3339))},
			[2]string{"Largest transaction", fmt.Sprintf("%s (%d bytes)", st.LargestTx, st.LargestTxSize)},
			[2]string{"Most outputs", fmt.Sprintf("%s (%d outputs)", st.MostOutputsTx, st.MostOutputs)},
		)
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(tw, "%s:\t%s\n", r[0], r[1]); err != nil {
			return err
		}
	}

	kinds := make([]script.AddressKind, 0, len(st.OutputKinds))
	for k := range st.OutputKinds {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool {
		if st.OutputKinds[kinds[i]] != st.OutputKinds[kinds[j]] {
			return st.OutputKinds[kinds[i]] > st.OutputKinds[kinds[j]]
		}
		return kinds[i] < kinds[j]
	})
	if len(kinds) > 0 {
		if _, err := fmt.Fprintln(tw, "Output kinds:"); err != nil {
			return err
		}
	}
	for _, k := range kinds {
		n := st.OutputKinds[k]
		if _, err := fmt.Fprintf(tw, "  %s\t%d\t%.2f%%\n", k, n, 100*float64(n)/float64(st.Outputs)); err != nil {
			return err
		}
	}
	return tw.Flush()
}
