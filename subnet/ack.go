package subnet

import (
	"sync"

	"github.com/bits-and-blooms/bitset"
)

// ackTracker records, per peer, which shards of the in-flight value
// that peer has already acknowledged, so a [Publisher] can stop
// retransmitting shards a peer already has. This mirrors the
// peer-has-bitset bookkeeping an outgoing broadcast keeps per
// connected peer, collapsed here to a single in-flight value instead
// of a whole session's worth of chunks.
type ackTracker struct {
	total int

	mu   sync.Mutex
	have map[peerID]*bitset.BitSet
}

// peerID identifies a peer connection for ack bookkeeping purposes.
type peerID string

func newAckTracker(total int) *ackTracker {
	return &ackTracker{
		total: total,
		have:  make(map[peerID]*bitset.BitSet),
	}
}

// reset clears every peer's acknowledgement bitset and records the
// shard count a peer must acknowledge to be complete, at the start of
// a new value's retransmission round.
func (a *ackTracker) reset(total int) {
	a.mu.Lock()
	a.total = total
	a.have = make(map[peerID]*bitset.BitSet)
	a.mu.Unlock()
}

// ack records that peer has acknowledged shard idx.
func (a *ackTracker) ack(peer peerID, idx int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	bs, ok := a.have[peer]
	if !ok {
		bs = bitset.MustNew(uint(a.total))
		a.have[peer] = bs
	}
	bs.Set(uint(idx))
}

// needs reports which of the given candidate shard indices peer has
// not yet acknowledged, in the order the candidates were given.
func (a *ackTracker) needs(peer peerID, candidates []int) []int {
	a.mu.Lock()
	defer a.mu.Unlock()

	bs := a.have[peer]
	if bs == nil {
		return candidates
	}

	out := make([]int, 0, len(candidates))
	for _, idx := range candidates {
		if !bs.Test(uint(idx)) {
			out = append(out, idx)
		}
	}
	return out
}

// complete reports whether peer has acknowledged every shard index in
// [0, total).
func (a *ackTracker) complete(peer peerID) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	bs := a.have[peer]
	return bs != nil && int(bs.Count()) >= a.total
}

// forget drops a peer's bookkeeping, once its value has either been
// fully acknowledged or abandoned.
func (a *ackTracker) forget(peer peerID) {
	a.mu.Lock()
	delete(a.have, peer)
	a.mu.Unlock()
}
