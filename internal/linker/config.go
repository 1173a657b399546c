package linker

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/model"
)

// DefaultMargin is the number of blocks a block must be buried under the best
// tip before it is settled.
const DefaultMargin = 6

// DefaultHistoryWindow is the number of retired block hashes kept to
// recognize duplicates and forks off settled or dead blocks.
const DefaultHistoryWindow = 1 << 14

// TieBreak decides between two tips with equal cumulative work.
type TieBreak string

const (
	// FirstSeen keeps the tip that was linked first.
	FirstSeen TieBreak = "first-seen"
	// LowestHash prefers the tip with the numerically lowest hash, so the
	// outcome does not depend on arrival order.
	LowestHash TieBreak = "lowest-hash"
)

// ParseTieBreak validates a tie-break name.
func ParseTieBreak(s string) (TieBreak, error) {
	switch TieBreak(s) {
	case FirstSeen, LowestHash:
		return TieBreak(s), nil
	case "":
		return FirstSeen, nil
	default:
		return "", fmt.Errorf("unknown tie-break %q", s)
	}
}

// Config tunes the linker.
type Config struct {
	// Margin is the settle depth: a block is settled once tip.height-height >= Margin.
	Margin   uint64
	TieBreak TieBreak
	// FlushOnComplete settles the unsettled canonical tail when input ends.
	FlushOnComplete bool
	// Resume continues after a previous run. The zero value starts at genesis.
	Resume model.Checkpoint
	// GenesisHash, when set, is the only parentless block accepted as root.
	GenesisHash *chainhash.Hash
	// EndHeight stops settling after this height. Zero means no limit.
	EndHeight uint64
	// HistoryWindow bounds the retired hashes remembered after settling.
	// Zero means DefaultHistoryWindow.
	HistoryWindow int
}

// DefaultConfig returns the defaults used by the command line.
func DefaultConfig() Config {
	return Config{Margin: DefaultMargin, TieBreak: FirstSeen}
}
