// Package nodeindex reads the node's block index database (blocks/index) to
// find the block hash at a height. The database is opened read-only.
package nodeindex

import (
	"context"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/codec"
	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/model"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
	"go.uber.org/zap"
)

// block index status bits
const (
	statusHaveData  = 8
	statusHaveUndo  = 16
	statusFailed    = 32
	statusFailedDep = 64
)

const blockPrefix = 'b'

// ctxCheckEvery is how many index entries are read between context checks.
const ctxCheckEvery = 4096

var (
	ErrEmptyIndex     = errors.New("block index has no usable entries")
	ErrHeightNotFound = errors.New("height not in best chain of block index")
	ErrBrokenIndex    = errors.New("block index chain is broken")
)

// Target selects the block Lookup resolves.
type Target struct {
	Height uint64
	Latest bool
}

// Latest targets the tip of the index.
func Latest() Target {
	return Target{Latest: true}
}

// AtHeight targets the best-chain block at height.
func AtHeight(height uint64) Target {
	return Target{Height: height}
}

// Entry is one decoded block index record.
type Entry struct {
	Hash    chainhash.Hash
	Height  uint64
	Status  uint64
	TxCount uint64
	File    uint64
	Header  *model.BlockHeader
}

// HasData reports whether the block is stored in a block file and was not
// marked invalid.
func (e Entry) HasData() bool {
	return e.Status&statusHaveData != 0 && e.Status&(statusFailed|statusFailedDep) == 0
}

type Index struct {
	db     *leveldb.DB
	logger *zap.Logger
}

// Open opens the index database at dir without taking write access.
func Open(dir string, logger *zap.Logger) (*Index, error) {
	db, err := leveldb.OpenFile(dir, &opt.Options{
		ReadOnly:       true,
		ErrorIfMissing: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open block index %s: %w", dir, err)
	}
	return &Index{db: db, logger: logger.Named("nodeindex")}, nil
}

func (i *Index) Close() error {
	return i.db.Close()
}

// Lookup returns the hash and height of the target block. The best chain is
// the one ending at the highest block with data; ties keep the first entry
// in key order.
func (i *Index) Lookup(ctx context.Context, target Target) (model.Checkpoint, error) {
	entries, tip, err := i.load(ctx)
	if err != nil {
		return model.Checkpoint{}, err
	}
	if tip == nil {
		return model.Checkpoint{}, ErrEmptyIndex
	}

	i.logger.Debug("block index loaded",
		zap.Int("entries", len(entries)),
		zap.Uint64("tip_height", tip.Height),
		zap.Stringer("tip_hash", tip.Hash),
	)

	if target.Latest {
		return model.Checkpoint{Height: tip.Height, Hash: tip.Hash}, nil
	}
	if target.Height > tip.Height {
		return model.Checkpoint{}, fmt.Errorf("%w: %d above tip %d", ErrHeightNotFound, target.Height, tip.Height)
	}

	cur := tip
	for cur.Height > target.Height {
		parent, ok := entries[cur.Header.PrevHash]
		if !ok || parent.Height+1 != cur.Height {
			return model.Checkpoint{}, fmt.Errorf("%w: parent of %s at height %d", ErrBrokenIndex, cur.Hash, cur.Height)
		}
		cur = parent
	}
	return model.Checkpoint{Height: cur.Height, Hash: cur.Hash}, nil
}

func (i *Index) load(ctx context.Context) (map[chainhash.Hash]*Entry, *Entry, error) {
	iter := i.db.NewIterator(util.BytesPrefix([]byte{blockPrefix}), nil)
	defer iter.Release()

	var (
		entries = make(map[chainhash.Hash]*Entry)
		tip     *Entry
		n       int
	)
	for iter.Next() {
		n++
		if n%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
		}

		key := iter.Key()
		if len(key) != 1+chainhash.HashSize {
			continue
		}
		e, err := DecodeEntry(append([]byte(nil), iter.Value()...))
		if err != nil {
			return nil, nil, fmt.Errorf("block index entry %x: %w", key[1:], err)
		}
		copy(e.Hash[:], key[1:])
		entries[e.Hash] = e

		if e.HasData() && (tip == nil || e.Height > tip.Height) {
			tip = e
		}
	}
	if err := iter.Error(); err != nil {
		return nil, nil, fmt.Errorf("iterate block index: %w", err)
	}
	return entries, tip, nil
}

// DecodeEntry decodes a block index value: client version, height, status,
// tx count, then file and positions depending on status, then the header.
func DecodeEntry(buf []byte) (*Entry, error) {
	c := codec.NewCursor(buf)
	e := &Entry{}

	if _, err := c.VarInt(); err != nil {
		return nil, fmt.Errorf("version: %w", err)
	}
	var err error
	if e.Height, err = c.VarInt(); err != nil {
		return nil, fmt.Errorf("height: %w", err)
	}
	if e.Status, err = c.VarInt(); err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	if e.TxCount, err = c.VarInt(); err != nil {
		return nil, fmt.Errorf("tx count: %w", err)
	}
	if e.Status&(statusHaveData|statusHaveUndo) != 0 {
		if e.File, err = c.VarInt(); err != nil {
			return nil, fmt.Errorf("file: %w", err)
		}
	}
	if e.Status&statusHaveData != 0 {
		if _, err = c.VarInt(); err != nil {
			return nil, fmt.Errorf("data pos: %w", err)
		}
	}
	if e.Status&statusHaveUndo != 0 {
		if _, err = c.VarInt(); err != nil {
			return nil, fmt.Errorf("undo pos: %w", err)
		}
	}

	raw, err := c.Bytes(model.HeaderSize)
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	if e.Header, err = codec.DecodeHeader(raw); err != nil {
		return nil, err
	}
	return e, nil
}
