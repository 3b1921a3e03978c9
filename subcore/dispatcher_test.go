package subcore_test

import (
	"errors"
	"testing"

	"github.com/castline/subject/sublife"
	"github.com/castline/subject/subcore"
	"github.com/stretchr/testify/require"
)

// fakeReceiver is a minimal subcore.Receiver[T] used to exercise the
// dispatcher without depending on the subject package.
type fakeReceiver[T any] struct {
	lifetime *sublife.Subscription

	nexts      []T
	err        error
	completed  bool
	errorCount int
	completeN  int
}

func newFakeReceiver[T any]() *fakeReceiver[T] {
	return &fakeReceiver[T]{lifetime: sublife.New()}
}

func (r *fakeReceiver[T]) OnNext(v T)      { r.nexts = append(r.nexts, v) }
func (r *fakeReceiver[T]) OnError(e error) { r.err = e; r.errorCount++ }
func (r *fakeReceiver[T]) OnCompleted()    { r.completed = true; r.completeN++ }
func (r *fakeReceiver[T]) IsSubscribed() bool {
	return r.lifetime.IsSubscribed()
}

func TestDispatcher_castsToAllAttachedObservers(t *testing.T) {
	t.Parallel()

	d := subcore.NewDispatcher[int](nil)
	a := newFakeReceiver[int]()
	b := newFakeReceiver[int]()

	d.Add(d.ID(), a)
	d.Add(d.ID(), b)

	d.OnNext(1)
	d.OnNext(2)

	require.Equal(t, []int{1, 2}, a.nexts)
	require.Equal(t, []int{1, 2}, b.nexts)
}

func TestDispatcher_lateObserverMissesEarlierValues(t *testing.T) {
	t.Parallel()

	d := subcore.NewDispatcher[int](nil)
	a := newFakeReceiver[int]()
	d.Add(d.ID(), a)

	d.OnNext(1)

	b := newFakeReceiver[int]()
	d.Add(d.ID(), b)

	d.OnNext(2)

	require.Equal(t, []int{1, 2}, a.nexts)
	require.Equal(t, []int{2}, b.nexts)
}

func TestDispatcher_completedIsTerminalAndReplayedToLateObservers(t *testing.T) {
	t.Parallel()

	d := subcore.NewDispatcher[int](nil)
	a := newFakeReceiver[int]()
	d.Add(d.ID(), a)

	d.OnCompleted()
	require.True(t, a.completed)

	// Repeated terminal calls are no-ops.
	d.OnCompleted()
	require.Equal(t, 1, a.completeN)

	// A late observer receives the terminal signal synchronously, and
	// no values.
	late := newFakeReceiver[int]()
	d.Add(d.ID(), late)
	require.True(t, late.completed)
	require.Empty(t, late.nexts)

	d.OnNext(99)
	require.Empty(t, a.nexts)
	require.Empty(t, late.nexts)
}

func TestDispatcher_erroredStoresAndReplaysTheSameError(t *testing.T) {
	t.Parallel()

	d := subcore.NewDispatcher[int](nil)
	a := newFakeReceiver[int]()
	d.Add(d.ID(), a)

	boom := errors.New("boom")
	d.OnError(boom)
	require.Equal(t, boom, a.err)

	// Once errored, OnCompleted must not override the terminal mode.
	d.OnCompleted()

	late := newFakeReceiver[int]()
	d.Add(d.ID(), late)
	require.Equal(t, boom, late.err)
	require.False(t, late.completed)
}

func TestDispatcher_terminalUnsubscribesTheSharedLifetime(t *testing.T) {
	t.Parallel()

	lifetime := sublife.New()
	d := subcore.NewDispatcher[int](lifetime)

	require.True(t, lifetime.IsSubscribed())
	d.OnCompleted()
	require.False(t, lifetime.IsSubscribed())
}

func TestDispatcher_unsubscribedObserverIsSkippedAtDispatchNotEdited(t *testing.T) {
	t.Parallel()

	d := subcore.NewDispatcher[int](nil)
	a := newFakeReceiver[int]()
	b := newFakeReceiver[int]()
	d.Add(d.ID(), a)
	d.Add(d.ID(), b)

	a.lifetime.Unsubscribe()

	d.OnNext(1)
	require.Empty(t, a.nexts)
	require.Equal(t, []int{1}, b.nexts)
	require.True(t, d.HasObservers())
}

func TestDispatcher_addOfAlreadyUnsubscribedObserverIsIgnored(t *testing.T) {
	t.Parallel()

	d := subcore.NewDispatcher[int](nil)
	a := newFakeReceiver[int]()
	a.lifetime.Unsubscribe()

	d.Add(d.ID(), a)

	require.False(t, d.HasObservers())
}

func TestDispatcher_hasObserversReflectsMembership(t *testing.T) {
	t.Parallel()

	d := subcore.NewDispatcher[int](nil)
	require.False(t, d.HasObservers())

	a := newFakeReceiver[int]()
	d.Add(d.ID(), a)
	require.True(t, d.HasObservers())
}

func TestDispatcher_generationIsStrictlyMonotonic(t *testing.T) {
	t.Parallel()

	d := subcore.NewDispatcher[int](nil)

	// No exported generation getter; observe monotonicity indirectly by
	// checking the hot path refreshes after every membership change,
	// which only happens if the generation actually advanced.
	a := newFakeReceiver[int]()
	d.Add(d.ID(), a)
	d.OnNext(1)

	b := newFakeReceiver[int]()
	d.Add(d.ID(), b)
	d.OnNext(2)

	require.Equal(t, []int{1, 2}, a.nexts)
	require.Equal(t, []int{2}, b.nexts)
}
