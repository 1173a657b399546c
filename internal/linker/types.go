package linker

import (
	"context"

	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Settler interface {
		OnBlockSettled(ctx context.Context, height uint64, block *model.DecodedBlock) error
	}
	Metrics interface {
		ObserveSettled(height uint64)
		ObserveTip(height uint64)
		ObserveEvent(event string)
		ObservePending(orphans, linked int)
	}
)
