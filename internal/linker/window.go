package linker

import "github.com/btcsuite/btcd/chaincfg/chainhash"

// window remembers the last limit hashes added, oldest evicted first.
type window struct {
	limit int
	ring  []chainhash.Hash
	next  int
	state map[chainhash.Hash]deadReason
}

func newWindow(limit int) *window {
	return &window{
		limit: limit,
		state: make(map[chainhash.Hash]deadReason),
	}
}

// add records h. A zero reason marks a settled block.
func (w *window) add(h chainhash.Hash, reason deadReason) {
	if _, ok := w.state[h]; ok {
		w.state[h] = reason
		return
	}
	if len(w.ring) < w.limit {
		w.ring = append(w.ring, h)
	} else {
		delete(w.state, w.ring[w.next])
		w.ring[w.next] = h
		w.next = (w.next + 1) % w.limit
	}
	w.state[h] = reason
}

func (w *window) lookup(h chainhash.Hash) (deadReason, bool) {
	reason, ok := w.state[h]
	return reason, ok
}

func (w *window) len() int {
	return len(w.state)
}
