package subnet

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAckTracker_needsExcludesAcknowledgedShards(t *testing.T) {
	t.Parallel()

	a := newAckTracker(4)
	const peer peerID = "peer-a"

	require.Equal(t, []int{0, 1, 2, 3}, a.needs(peer, []int{0, 1, 2, 3}))

	a.ack(peer, 1)
	a.ack(peer, 3)

	require.Equal(t, []int{0, 2}, a.needs(peer, []int{0, 1, 2, 3}))
}

func TestAckTracker_completeOnceEveryShardIsAcked(t *testing.T) {
	t.Parallel()

	a := newAckTracker(2)
	const peer peerID = "peer-a"

	require.False(t, a.complete(peer))

	a.ack(peer, 0)
	require.False(t, a.complete(peer))

	a.ack(peer, 1)
	require.True(t, a.complete(peer))
}

func TestAckTracker_peersAreTrackedIndependently(t *testing.T) {
	t.Parallel()

	a := newAckTracker(2)
	a.ack("peer-a", 0)
	a.ack("peer-a", 1)

	require.True(t, a.complete("peer-a"))
	require.False(t, a.complete("peer-b"))
}

func TestAckTracker_resetClearsBookkeepingForNewRound(t *testing.T) {
	t.Parallel()

	a := newAckTracker(2)
	a.ack("peer-a", 0)
	a.ack("peer-a", 1)
	require.True(t, a.complete("peer-a"))

	a.reset(3)

	require.False(t, a.complete("peer-a"))
	require.Equal(t, []int{0, 1, 2}, a.needs("peer-a", []int{0, 1, 2}))
}

func TestAckTracker_forgetDropsBookkeeping(t *testing.T) {
	t.Parallel()

	a := newAckTracker(1)
	a.ack("peer-a", 0)
	require.True(t, a.complete("peer-a"))

	a.forget("peer-a")
	require.False(t, a.complete("peer-a"))
}
