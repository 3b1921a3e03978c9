package subnet

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/klauspost/reedsolomon"
)

// Codec marshals and unmarshals the values a [Publisher]/[Receiver]
// pair carries across the network. Callers supply one in their
// [PublisherConfig] and [ReceiverConfig]; there is no default because
// there is no single right answer for arbitrary T.
type Codec[T any] interface {
	Marshal(T) ([]byte, error)
	Unmarshal([]byte) (T, error)
}

// shardSet is one value's erasure-coded representation: nData data
// shards plus nParity parity shards, any nData of which reconstruct
// the original payload.
type shardSet struct {
	nData, nParity int
	shardSize      int
	shards         [][]byte
}

// encodeShards splits and erasure-codes payload into a shardSet sized
// according to parityRatio, matching the split-then-encode sequence a
// Reed-Solomon origination pipeline always follows: Split first so
// every shard is the same length, then Encode to fill in the parity
// shards from the data shards.
func encodeShards(payload []byte, parityRatio float64) (shardSet, error) {
	if len(payload) == 0 {
		return shardSet{}, EmptyPayloadError{}
	}

	nData := (len(payload) + maxShardPayload - 1) / maxShardPayload
	if nData < 1 {
		nData = 1
	}
	nParity := int(parityRatio * float64(nData))
	if nParity < 1 {
		nParity = 1
	}

	enc, err := reedsolomon.New(nData, nParity, reedsolomon.WithAutoGoroutines(maxShardPayload))
	if err != nil {
		return shardSet{}, EncodeError{Op: "building reed-solomon encoder", Cause: err}
	}

	shards, err := enc.Split(payload)
	if err != nil {
		return shardSet{}, EncodeError{Op: "splitting payload into shards", Cause: err}
	}
	if err := enc.Encode(shards); err != nil {
		return shardSet{}, EncodeError{Op: "erasure-coding shards", Cause: err}
	}

	return shardSet{
		nData:     nData,
		nParity:   nParity,
		shardSize: len(shards[0]),
		shards:    shards,
	}, nil
}

// maxShardPayload bounds how much of a value's payload lands in a
// single shard, keeping each shard's datagram within a conservative
// QUIC datagram size.
const maxShardPayload = 1100

// shardReassembler accumulates shards for one in-flight value and
// reconstructs the original payload once enough of them have arrived.
type shardReassembler struct {
	msgID          uint32
	nData, nParity int
	shardSize      int
	originalLen    int

	have   *bitset.BitSet
	shards [][]byte
}

func newShardReassembler(msgID uint32, nData, nParity, shardSize, originalLen int) *shardReassembler {
	return &shardReassembler{
		msgID:       msgID,
		nData:       nData,
		nParity:     nParity,
		shardSize:   shardSize,
		originalLen: originalLen,
		have:        bitset.MustNew(uint(nData + nParity)),
		shards:      make([][]byte, nData+nParity),
	}
}

// addShard records shard idx, reporting whether enough shards are now
// present to reconstruct the payload.
func (r *shardReassembler) addShard(idx int, shard []byte) bool {
	if idx < 0 || idx >= len(r.shards) || r.have.Test(uint(idx)) {
		return r.readyToReconstruct()
	}
	r.shards[idx] = shard
	r.have.Set(uint(idx))
	return r.readyToReconstruct()
}

func (r *shardReassembler) readyToReconstruct() bool {
	return r.have.Count() >= uint(r.nData)
}

// reconstruct rebuilds the original payload once readyToReconstruct
// reports true.
func (r *shardReassembler) reconstruct() ([]byte, error) {
	enc, err := reedsolomon.New(r.nData, r.nParity, reedsolomon.WithAutoGoroutines(r.shardSize))
	if err != nil {
		return nil, ReassemblyError{MsgID: r.msgID, Op: "building reed-solomon decoder", Cause: err}
	}

	if err := enc.ReconstructData(r.shards); err != nil {
		return nil, ReassemblyError{MsgID: r.msgID, Op: "reconstructing shards", Cause: err}
	}

	out := make([]byte, 0, r.nData*r.shardSize)
	for i := 0; i < r.nData; i++ {
		out = append(out, r.shards[i]...)
	}
	if len(out) > r.originalLen {
		out = out[:r.originalLen]
	}
	return out, nil
}
