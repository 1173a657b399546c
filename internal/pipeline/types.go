package pipeline

import (
	"context"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Sink interface {
		OnStart(ctx context.Context, params *chaincfg.Params, startHeight uint64) error
		OnBlockSettled(ctx context.Context, height uint64, block *model.DecodedBlock) error
		OnDecodeError(ctx context.Context, raw []byte, reason error) error
		OnComplete(ctx context.Context, lastHeight uint64) error
		Checkpoint() (model.Checkpoint, bool)
	}
	CheckpointStore interface {
		Save(ctx context.Context, cp model.Checkpoint) error
	}
)
