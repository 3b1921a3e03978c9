package subnet

import (
	"errors"
	"testing"

	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/require"
)

type failingMarshalCodec struct{}

func (failingMarshalCodec) Marshal(int) ([]byte, error)   { return nil, errors.New("boom") }
func (failingMarshalCodec) Unmarshal([]byte) (int, error) { return 0, nil }

func TestPublisher_onNextSkipsBroadcastWhenMarshalFails(t *testing.T) {
	t.Parallel()

	p := &Publisher[int]{
		log:   slogt.New(t),
		cfg:   PublisherConfig[int]{Codec: failingMarshalCodec{}, ParityRatio: 1},
		peers: make(map[peerID]*peerConn),
		acks:  newAckTracker(0),
	}

	require.NotPanics(t, func() { p.OnNext(42) })
}

func TestPublisher_onNextWithNoPeersDoesNotError(t *testing.T) {
	t.Parallel()

	p := &Publisher[[]byte]{
		log:   slogt.New(t),
		cfg:   PublisherConfig[[]byte]{Codec: noopCodec{}, ParityRatio: 1},
		peers: make(map[peerID]*peerConn),
		acks:  newAckTracker(0),
	}

	require.NotPanics(t, func() { p.OnNext([]byte("hello")) })
}

func TestPublisher_onErrorAndOnCompletedWithNoPeersDoNotPanic(t *testing.T) {
	t.Parallel()

	p := &Publisher[[]byte]{
		log:   slogt.New(t),
		cfg:   PublisherConfig[[]byte]{Codec: noopCodec{}, ParityRatio: 1},
		peers: make(map[peerID]*peerConn),
		acks:  newAckTracker(0),
	}

	require.NotPanics(t, func() { p.OnError(errors.New("boom")) })
	require.NotPanics(t, func() { p.OnCompleted() })
}
