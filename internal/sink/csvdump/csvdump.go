// Package csvdump writes the canonical chain as ';' separated csv files:
// blocks, transactions, tx_in and tx_out. Files carry a .tmp suffix until the
// run completes and are then renamed to <name>-<start>-<end>.csv.
package csvdump

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/model"
	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/sink"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Leading columns follow the classic csvdump layout; the rest are appended.
var (
	blocksHeader = []string{"hash", "height", "version", "size", "prev_hash", "merkle_root", "timestamp", "bits", "nonce", "difficulty", "tx_count"}
	txHeader     = []string{"txid", "block_hash", "version", "locktime", "wtxid", "block_height", "position", "size", "vsize", "input_count", "output_count", "is_coinbase", "has_witness"}
	txInHeader   = []string{"txid", "prev_txid", "prev_vout", "script_sig", "sequence", "input_index", "witness"}
	txOutHeader  = []string{"txid", "output_index", "value", "script_pubkey", "address", "script_type", "pubkey_count"}
)

// Config selects the output directory and format.
type Config struct {
	Dir      string `validate:"required"`
	Compress bool
	// Header writes a column name row at the top of every file.
	Header bool
}

var _ sink.Sink = (*Dumper)(nil)

// Dumper is the csv Sink.
type Dumper struct {
	sink.Tracker

	cfg     Config
	logger  *zap.Logger
	builder *sink.Builder

	blocks, txs, txIn, txOut *table

	start   uint64
	last    uint64
	lastH   chainhash.Hash
	written bool
	files   []string
}

func New(cfg Config, logger *zap.Logger) *Dumper {
	return &Dumper{cfg: cfg, logger: logger.Named("csvdump")}
}

func (d *Dumper) OnStart(_ context.Context, params *chaincfg.Params, startHeight uint64) error {
	if err := os.MkdirAll(d.cfg.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	d.builder = sink.NewBuilder(params, false)
	d.start = startHeight

	var err error
	if d.blocks, err = openTable(d.cfg.Dir, "blocks", d.cfg.Compress, d.header(blocksHeader)); err != nil {
		return err
	}
	if d.txs, err = openTable(d.cfg.Dir, "transactions", d.cfg.Compress, d.header(txHeader)); err != nil {
		return err
	}
	if d.txIn, err = openTable(d.cfg.Dir, "tx_in", d.cfg.Compress, d.header(txInHeader)); err != nil {
		return err
	}
	if d.txOut, err = openTable(d.cfg.Dir, "tx_out", d.cfg.Compress, d.header(txOutHeader)); err != nil {
		return err
	}

	d.logger.Info("writing csv files",
		zap.String("dir", d.cfg.Dir),
		zap.Bool("zstd", d.cfg.Compress),
		zap.Uint64("start_height", startHeight),
	)
	return nil
}

func (d *Dumper) OnBlockSettled(_ context.Context, height uint64, block *model.DecodedBlock) error {
	rows, err := d.builder.Build(height, block)
	if err != nil {
		return err
	}

	b := rows.Block
	if err := d.blocks.write([]string{
		b.Hash, u64(b.Height), i64(int64(b.Version)), u32(b.Size), b.PrevHash, b.MerkleRoot,
		i64(b.Timestamp.Unix()), u32(b.Bits), u32(b.Nonce),
		strconv.FormatFloat(b.Difficulty, 'f', -1, 64), u32(b.TXCount),
	}); err != nil {
		return err
	}
	for _, tx := range rows.Txs {
		if err := d.txs.write([]string{
			tx.TxID, b.Hash, i64(int64(tx.Version)), u32(tx.LockTime),
			tx.WTxID, u64(tx.BlockHeight), u32(tx.Position), u32(tx.Size), u32(tx.VSize),
			u32(tx.InputCount), u32(tx.OutputCount),
			strconv.FormatBool(tx.IsCoinbase), strconv.FormatBool(tx.HasWitness),
		}); err != nil {
			return err
		}
	}
	for _, in := range rows.Inputs {
		if err := d.txIn.write([]string{
			in.TxID, in.PrevTxID, u32(in.PrevVout), in.ScriptSigHex, u32(in.Sequence),
			u32(in.Index), strings.Join(in.Witness, ","),
		}); err != nil {
			return err
		}
	}
	for _, out := range rows.Outputs {
		if err := d.txOut.write([]string{
			out.TxID, u32(out.Index), u64(out.Value), out.ScriptHex,
			strings.Join(out.Addresses, ","), out.ScriptType, u32(out.PubKeyCount),
		}); err != nil {
			return err
		}
	}

	d.last, d.lastH, d.written = height, block.Hash(), true
	return nil
}

func (d *Dumper) OnDecodeError(_ context.Context, raw []byte, reason error) error {
	d.logger.Warn("undecodable block record not written", zap.Int("bytes", len(raw)), zap.Error(reason))
	return nil
}

// OnComplete closes the files and renames them to their final names. Without
// any written block the temporary files are removed.
func (d *Dumper) OnComplete(_ context.Context, lastHeight uint64) error {
	tables := d.tables()
	if len(tables) == 0 {
		return errors.New("csvdump was not started")
	}

	var err error
	for _, t := range tables {
		err = multierr.Append(err, t.close())
	}
	if err != nil || !d.written {
		for _, t := range tables {
			err = multierr.Append(err, t.discard())
		}
		if err == nil {
			d.logger.Info("no blocks written, csv files removed", zap.Uint64("last_height", lastHeight))
		}
		return err
	}

	for _, t := range tables {
		path, commitErr := t.commit(d.start, d.last)
		if commitErr != nil {
			err = multierr.Append(err, commitErr)
			continue
		}
		d.files = append(d.files, path)
		d.logger.Info("csv file written", zap.String("file", path), zap.Uint64("rows", t.rows))
	}
	if err != nil {
		return err
	}
	d.Advance(d.last, d.lastH)
	return nil
}

// Files returns the paths written by OnComplete.
func (d *Dumper) Files() []string {
	return d.files
}

func (d *Dumper) header(columns []string) []string {
	if !d.cfg.Header {
		return nil
	}
	return columns
}

func (d *Dumper) tables() []*table {
	var out []*table
	for _, t := range []*table{d.blocks, d.txs, d.txIn, d.txOut} {
		if t != nil {
			out = append(out, t)
		}
	}
	return out
}

func u64(v uint64) string { return strconv.FormatUint(v, 10) }
func u32(v uint32) string { return strconv.FormatUint(uint64(v), 10) }
func i64(v int64) string  { return strconv.FormatInt(v, 10) }
