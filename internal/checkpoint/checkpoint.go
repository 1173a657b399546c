// Package checkpoint persists the last settled block of a run so the next run
// can resume after it.
package checkpoint

import (
	"errors"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/bytedance/sonic"
	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/model"
	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/network"
)

// ErrNoCheckpointFound is returned by Load when nothing was saved yet.
var ErrNoCheckpointFound = errors.New("no checkpoint found")

// ErrWrongChain is returned by Load when the stored checkpoint belongs to
// another coin or network.
var ErrWrongChain = errors.New("checkpoint belongs to another chain")

type record struct {
	Coin      string    `json:"coin"`
	Network   string    `json:"network"`
	Height    uint64    `json:"height"`
	Hash      string    `json:"hash"`
	UpdatedAt time.Time `json:"updated_at"`
}

type chain struct {
	coin    network.Coin
	network network.Network
}

func (c chain) encode(cp model.Checkpoint, now time.Time) ([]byte, error) {
	data, err := sonic.Marshal(record{
		Coin:      string(c.coin),
		Network:   string(c.network),
		Height:    cp.Height,
		Hash:      cp.Hash.String(),
		UpdatedAt: now.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("encode checkpoint: %w", err)
	}
	return data, nil
}

func (c chain) decode(data []byte) (model.Checkpoint, error) {
	var rec record
	if err := sonic.Unmarshal(data, &rec); err != nil {
		return model.Checkpoint{}, fmt.Errorf("decode checkpoint: %w", err)
	}
	if rec.Coin != string(c.coin) || rec.Network != string(c.network) {
		return model.Checkpoint{}, fmt.Errorf("%w: stored %s/%s, want %s/%s", ErrWrongChain, rec.Coin, rec.Network, c.coin, c.network)
	}
	hash, err := chainhash.NewHashFromStr(rec.Hash)
	if err != nil {
		return model.Checkpoint{}, fmt.Errorf("decode checkpoint hash: %w", err)
	}
	return model.Checkpoint{Height: rec.Height, Hash: *hash}, nil
}
