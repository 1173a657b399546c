// Package linker rebuilds the canonical chain from blocks that arrive in any
// order and settles them once they are buried deep enough.
package linker

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/model"
	"go.uber.org/zap"
)

var (
	// ErrOrphanTimeout marks blocks whose parent never showed up. It is a
	// completeness warning, not a failure.
	ErrOrphanTimeout = errors.New("orphan parent never seen")
	// ErrResumeMismatch means the checkpoint block is not in the scanned files.
	ErrResumeMismatch = errors.New("checkpoint block not found in block files")
)

// Event names passed to Metrics.ObserveEvent.
const (
	EventDuplicate     = "duplicate"
	EventStale         = "stale"
	EventPruned        = "pruned"
	EventExtraRoot     = "extra_root"
	EventHistory       = "before_checkpoint"
	EventDecodeFailure = "decode_failure"
	EventReorg         = "reorg"
)

type deadReason uint8

const (
	deadStale deadReason = iota + 1
	deadHistory
)

type deadEntry struct {
	reason deadReason
	parent chainhash.Hash
}

type node struct {
	hash     chainhash.Hash
	parent   chainhash.Hash
	block    *model.DecodedBlock
	height   uint64
	work     *big.Int
	children []chainhash.Hash
}

// Stats counts what the linker absorbed.
type Stats struct {
	Ingested         uint64
	Settled          uint64
	Duplicates       uint64
	DecodeFailures   uint64
	Stale            uint64
	Pruned           uint64
	ExtraRoots       uint64
	BeforeCheckpoint uint64
	Reorgs           uint64
}

// Fragment is a set of orphans hanging off a parent that never appeared.
type Fragment struct {
	MissingParent chainhash.Hash
	Blocks        int
}

// Report is returned by Finish.
type Report struct {
	Stats
	Checkpoint   model.Checkpoint
	HasSettled   bool
	TipHeight    uint64
	Unsettled    int
	OrphanBlocks int
	Fragments    []Fragment
}

// Linker is the single-goroutine chain index. It is not safe for concurrent use.
type Linker struct {
	cfg     Config
	settler Settler
	metrics Metrics
	logger  *zap.Logger

	// nodes holds linked blocks that are not settled yet.
	nodes map[chainhash.Hash]*node
	// orphans holds blocks waiting for their parent, keyed by the parent hash.
	orphans     map[chainhash.Hash][]*model.DecodedBlock
	orphanIndex map[chainhash.Hash]chainhash.Hash
	// dead holds unlinkable blocks until a grandchild has been buried
	// through them. Retired entries move to recent.
	dead map[chainhash.Hash]deadEntry
	// recent remembers settled blocks below base and retired dead blocks.
	recent *window

	// base is the last settled block. Its block reference is dropped.
	base       *node
	hasRoot    bool
	resumeSeen bool
	tip        *node
	stats      Stats
}

// New creates a Linker that hands settled blocks to settler.
func New(cfg Config, settler Settler, metrics Metrics, logger *zap.Logger) *Linker {
	if cfg.TieBreak == "" {
		cfg.TieBreak = FirstSeen
	}
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = DefaultHistoryWindow
	}
	l := &Linker{
		cfg:         cfg,
		settler:     settler,
		metrics:     metrics,
		logger:      logger.Named("linker"),
		nodes:       make(map[chainhash.Hash]*node),
		orphans:     make(map[chainhash.Hash][]*model.DecodedBlock),
		orphanIndex: make(map[chainhash.Hash]chainhash.Hash),
		dead:        make(map[chainhash.Hash]deadEntry),
		recent:      newWindow(cfg.HistoryWindow),
	}
	if !cfg.Resume.IsZero() {
		l.base = &node{hash: cfg.Resume.Hash, height: cfg.Resume.Height, work: new(big.Int)}
		l.hasRoot = true
	}
	return l
}

func (l *Linker) resuming() bool {
	return !l.cfg.Resume.IsZero()
}

// Checkpoint returns the last settled block.
func (l *Linker) Checkpoint() (model.Checkpoint, bool) {
	if l.base == nil {
		return model.Checkpoint{}, false
	}
	return model.Checkpoint{Height: l.base.height, Hash: l.base.hash}, true
}

// Stats returns the counters so far.
func (l *Linker) Stats() Stats {
	return l.stats
}

// Done reports whether EndHeight has been settled.
func (l *Linker) Done() bool {
	return l.cfg.EndHeight > 0 && l.base != nil && l.base.height >= l.cfg.EndHeight
}

// RecordFailure counts a record the decoder could not decode.
func (l *Linker) RecordFailure() {
	l.stats.DecodeFailures++
	l.observeEvent(EventDecodeFailure)
}

// Ingest adds a decoded block. Blocks that become settled are handed to the
// settler before Ingest returns; a settler error is returned as is.
func (l *Linker) Ingest(ctx context.Context, b *model.DecodedBlock) error {
	l.stats.Ingested++
	h := b.Hash()

	if l.resuming() && h == l.cfg.Resume.Hash {
		l.resumeSeen = true
		return nil
	}
	if l.known(h) {
		l.stats.Duplicates++
		l.observeEvent(EventDuplicate)
		return nil
	}

	prevTip := l.tip
	parent := b.Header.PrevHash
	switch {
	case b.Header.IsGenesis():
		l.ingestRoot(h, b)
	case l.nodes[parent] != nil:
		l.link(h, b, l.nodes[parent])
	case l.base != nil && parent == l.base.hash:
		l.link(h, b, l.base)
	case l.isSettled(parent):
		// Forks off settled history can never become canonical.
		l.bury(h, parent, deadStale)
	case l.deadReason(parent) != 0:
		l.bury(h, parent, l.deadReason(parent))
	default:
		l.orphans[parent] = append(l.orphans[parent], b)
		l.orphanIndex[h] = parent
	}

	if l.metrics != nil {
		l.metrics.ObservePending(len(l.orphanIndex), len(l.nodes))
	}
	if l.tip == prevTip {
		return nil
	}
	l.onNewTip(prevTip)
	target, ok := l.settleTarget()
	if !ok {
		return nil
	}
	return l.settle(ctx, target)
}

func (l *Linker) known(h chainhash.Hash) bool {
	if _, ok := l.nodes[h]; ok {
		return true
	}
	if _, ok := l.orphanIndex[h]; ok {
		return true
	}
	return l.isSettled(h) || l.deadReason(h) != 0
}

func (l *Linker) isSettled(h chainhash.Hash) bool {
	if l.base != nil && l.base.hash == h {
		return true
	}
	reason, ok := l.recent.lookup(h)
	return ok && reason == 0
}

// deadReason returns zero for blocks that are not known to be dead.
func (l *Linker) deadReason(h chainhash.Hash) deadReason {
	if e, ok := l.dead[h]; ok {
		return e.reason
	}
	reason, _ := l.recent.lookup(h)
	return reason
}

func (l *Linker) ingestRoot(h chainhash.Hash, b *model.DecodedBlock) {
	switch {
	case l.resuming():
		// The chain below the checkpoint was exported by an earlier run.
		l.bury(h, b.Header.PrevHash, deadHistory)
	case l.hasRoot, l.cfg.GenesisHash != nil && *l.cfg.GenesisHash != h:
		l.stats.ExtraRoots++
		l.observeEvent(EventExtraRoot)
		l.logger.Warn("parentless block ignored", zap.Stringer("hash", h))
		l.bury(h, b.Header.PrevHash, deadStale)
	default:
		l.hasRoot = true
		n := &node{hash: h, block: b, height: 0, work: blockchain.CalcWork(b.Header.Bits)}
		l.nodes[h] = n
		l.considerTip(n)
		l.promote(h)
	}
}

func (l *Linker) link(h chainhash.Hash, b *model.DecodedBlock, parent *node) {
	l.attach(h, b, parent)
	l.promote(h)
}

func (l *Linker) attach(h chainhash.Hash, b *model.DecodedBlock, parent *node) {
	n := &node{
		hash:   h,
		parent: parent.hash,
		block:  b,
		height: parent.height + 1,
		work:   new(big.Int).Add(parent.work, blockchain.CalcWork(b.Header.Bits)),
	}
	l.nodes[h] = n
	parent.children = append(parent.children, h)
	l.considerTip(n)
}

// promote resolves the orphans waiting on h, and transitively their own.
func (l *Linker) promote(h chainhash.Hash) {
	queue := []chainhash.Hash{h}
	for len(queue) > 0 {
		parentHash := queue[0]
		queue = queue[1:]

		waiting := l.orphans[parentHash]
		if len(waiting) == 0 {
			continue
		}
		delete(l.orphans, parentHash)

		parent := l.nodes[parentHash]
		if parent == nil && l.base != nil && l.base.hash == parentHash {
			parent = l.base
		}
		reason := l.deadReason(parentHash)
		for _, child := range waiting {
			ch := child.Hash()
			delete(l.orphanIndex, ch)
			switch {
			case parent != nil:
				l.attach(ch, child, parent)
			case reason != 0:
				l.markDead(ch, parentHash, reason)
			default:
				l.orphans[parentHash] = append(l.orphans[parentHash], child)
				l.orphanIndex[ch] = parentHash
				continue
			}
			queue = append(queue, ch)
		}
	}
}

// bury marks h dead and everything already waiting on it.
func (l *Linker) bury(h, parent chainhash.Hash, reason deadReason) {
	l.markDead(h, parent, reason)
	l.promote(h)
}

func (l *Linker) markDead(h, parent chainhash.Hash, reason deadReason) {
	l.setDead(h, parent, reason)
	switch reason {
	case deadHistory:
		l.stats.BeforeCheckpoint++
		l.observeEvent(EventHistory)
	default:
		l.stats.Stale++
		l.observeEvent(EventStale)
	}
}

func (l *Linker) setDead(h, parent chainhash.Hash, reason deadReason) {
	l.dead[h] = deadEntry{reason: reason, parent: parent}
	// Once h is dead below its parent, only late siblings of the parent can
	// still refer to the grandparent.
	if p, ok := l.dead[parent]; ok {
		l.retire(p.parent)
	}
}

func (l *Linker) retire(h chainhash.Hash) {
	e, ok := l.dead[h]
	if !ok {
		return
	}
	delete(l.dead, h)
	l.recent.add(h, e.reason)
}

func (l *Linker) considerTip(n *node) {
	if l.tip == nil {
		l.tip = n
		return
	}
	switch n.work.Cmp(l.tip.work) {
	case 1:
		l.tip = n
	case 0:
		if l.cfg.TieBreak == LowestHash && hashLess(n.hash, l.tip.hash) {
			l.tip = n
		}
	}
}

// hashLess compares hashes as the 256-bit numbers proof of work is measured on.
func hashLess(a, b chainhash.Hash) bool {
	return blockchain.HashToBig(&a).Cmp(blockchain.HashToBig(&b)) < 0
}

func (l *Linker) onNewTip(prev *node) {
	if l.metrics != nil {
		l.metrics.ObserveTip(l.tip.height)
	}
	if prev == nil || l.isSettled(prev.hash) || l.isAncestor(prev.hash, l.tip) {
		return
	}
	l.stats.Reorgs++
	l.observeEvent(EventReorg)
	l.logger.Debug("best tip moved to another branch",
		zap.Stringer("old_tip", prev.hash),
		zap.Uint64("old_height", prev.height),
		zap.Stringer("new_tip", l.tip.hash),
		zap.Uint64("new_height", l.tip.height),
	)
}

func (l *Linker) isAncestor(h chainhash.Hash, n *node) bool {
	for n != nil {
		if n.hash == h {
			return true
		}
		n = l.nodes[n.parent]
	}
	return false
}

func (l *Linker) nextHeight() uint64 {
	if l.base == nil {
		return 0
	}
	return l.base.height + 1
}

// settleTarget is the highest height that is buried deep enough under the tip.
// It returns false when nothing can be settled.
func (l *Linker) settleTarget() (uint64, bool) {
	if l.tip == nil || l.tip.height < l.cfg.Margin {
		return 0, false
	}
	return l.tip.height - l.cfg.Margin, true
}

// settle emits the canonical blocks from the next unsettled height through target.
func (l *Linker) settle(ctx context.Context, target uint64) error {
	if l.cfg.EndHeight > 0 && target > l.cfg.EndHeight {
		target = l.cfg.EndHeight
	}
	next := l.nextHeight()
	if target < next {
		return nil
	}

	// Canonical nodes from the tip down to the next unsettled height.
	var path []*node
	for n := l.tip; n != nil && n.height >= next; n = l.nodes[n.parent] {
		if n.height <= target {
			path = append(path, n)
		}
	}
	if len(path) == 0 || path[len(path)-1].height != next {
		return fmt.Errorf("canonical path broken below height %d", next)
	}

	for i := len(path) - 1; i >= 0; i-- {
		n := path[i]
		if err := l.settler.OnBlockSettled(ctx, n.height, n.block); err != nil {
			return fmt.Errorf("settle block %d %s: %w", n.height, n.hash, err)
		}
		l.settleNode(n)
	}
	return nil
}

func (l *Linker) settleNode(n *node) {
	if l.base != nil {
		for _, sibling := range l.base.children {
			if sibling != n.hash {
				l.prune(sibling)
			}
		}
	}

	delete(l.nodes, n.hash)
	if l.base != nil {
		l.recent.add(l.base.hash, 0)
	}
	n.block = nil
	l.base = n
	l.stats.Settled++
	if l.metrics != nil {
		l.metrics.ObserveSettled(n.height)
	}
}

// prune drops a linked branch that lost against a settled block.
func (l *Linker) prune(h chainhash.Hash) {
	stack := []chainhash.Hash{h}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n, ok := l.nodes[cur]
		if !ok {
			continue
		}
		delete(l.nodes, cur)
		l.setDead(cur, n.parent, deadStale)
		l.stats.Pruned++
		l.observeEvent(EventPruned)
		stack = append(stack, n.children...)
		l.promote(cur)
	}
}

// Report returns the counters and positions so far without finishing the run.
func (l *Linker) Report() Report {
	return l.report()
}

// Finish closes the run. With FlushOnComplete the whole canonical tail is
// settled. Blocks still waiting for a parent are reported as fragments. In a
// resumed run it fails with ErrResumeMismatch when the checkpoint block was
// never seen.
func (l *Linker) Finish(ctx context.Context) (Report, error) {
	if l.cfg.FlushOnComplete && l.tip != nil {
		if err := l.settle(ctx, l.tip.height); err != nil {
			return l.report(), err
		}
	}

	report := l.report()
	for _, f := range report.Fragments {
		l.logger.Warn("unresolved fragment",
			zap.Stringer("missing_parent", f.MissingParent),
			zap.Int("blocks", f.Blocks),
			zap.Error(ErrOrphanTimeout),
		)
	}

	if l.resuming() && !l.resumeSeen {
		return report, fmt.Errorf("%w: height %d hash %s", ErrResumeMismatch, l.cfg.Resume.Height, l.cfg.Resume.Hash)
	}
	return report, nil
}

func (l *Linker) report() Report {
	r := Report{
		Stats:        l.stats,
		Unsettled:    len(l.nodes),
		OrphanBlocks: len(l.orphanIndex),
		Fragments:    l.fragments(),
	}
	r.Checkpoint, r.HasSettled = l.Checkpoint()
	if l.tip != nil {
		r.TipHeight = l.tip.height
	}
	return r
}

// fragments groups the orphans by the missing block at their root.
func (l *Linker) fragments() []Fragment {
	var out []Fragment
	for parent := range l.orphans {
		if _, isOrphan := l.orphanIndex[parent]; isOrphan {
			continue
		}
		count := 0
		queue := []chainhash.Hash{parent}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, child := range l.orphans[cur] {
				count++
				queue = append(queue, child.Hash())
			}
		}
		out = append(out, Fragment{MissingParent: parent, Blocks: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Blocks != out[j].Blocks {
			return out[i].Blocks > out[j].Blocks
		}
		return hashLess(out[i].MissingParent, out[j].MissingParent)
	})
	return out
}

func (l *Linker) observeEvent(event string) {
	if l.metrics != nil {
		l.metrics.ObserveEvent(event)
	}
}
