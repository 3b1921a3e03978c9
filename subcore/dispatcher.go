package subcore

import (
	"sync"
	"sync/atomic"

	"github.com/castline/subject/sublife"
)

// state is the Multicast State: the one-shot mode transition, the
// stored terminal error, the shared lifetime, and the lock that
// serializes every membership transition (admission, error,
// completion). It deliberately does not hold a reference to the
// current snapshot: that's what keeps a [Dispatcher] from forming a
// reference cycle with the snapshots it publishes, the same role the
// spec's "Binder" indirection plays against manual refcounting. Go's
// garbage collector makes the cycle harmless anyway, but keeping the
// separation matches the spec's component boundary and keeps state
// mutation and membership mutation reviewable independently.
type state[T any] struct {
	mu       sync.Mutex
	mode     Mode
	err      error
	lifetime *sublife.Subscription

	// generation is incremented under mu on every admission and on
	// termination. Dispatcher.OnNext loads it without the lock to
	// decide whether its hot-path snapshot is stale.
	generation atomic.Uint64
}

// Dispatcher is the multicast core: it is both the dispatcher's input
// subscriber's sink and the thing new observers are admitted through.
type Dispatcher[T any] struct {
	id TraceID

	st *state[T]

	// completer is the canonical snapshot; only ever read or written
	// under st.mu.
	completer *snapshot[T]

	// hotGeneration/hotSnapshot are the hot-path view used by OnNext,
	// which reads them without the lock. They are written only under
	// st.mu: by OnNext when it refreshes a stale view, and (hotSnapshot)
	// by OnError/OnCompleted when they clear it. The contract requires a
	// single producer to call OnNext/OnError/OnCompleted without
	// overlap; under that contract the unlocked reads do not race with
	// those writes.
	hotGeneration uint64
	hotSnapshot   *snapshot[T]
}

// NewDispatcher returns a Dispatcher in Casting mode, bound to
// lifetime. If lifetime is nil, a fresh [sublife.Subscription] is
// allocated.
func NewDispatcher[T any](lifetime *sublife.Subscription) *Dispatcher[T] {
	if lifetime == nil {
		lifetime = sublife.New()
	}
	return &Dispatcher[T]{
		id: NextTraceID(),
		st: &state[T]{
			mode:     Casting,
			lifetime: lifetime,
		},
	}
}

// ID returns the dispatcher's trace identity.
func (d *Dispatcher[T]) ID() TraceID {
	return d.id
}

// Lifetime returns the dispatcher's shared composite subscription.
func (d *Dispatcher[T]) Lifetime() *sublife.Subscription {
	return d.st.lifetime
}

// HasObservers reports whether the canonical snapshot exists and is
// non-empty.
func (d *Dispatcher[T]) HasObservers() bool {
	d.st.mu.Lock()
	defer d.st.mu.Unlock()
	return d.completer != nil && len(d.completer.observers) > 0
}

// Add admits o into the multicast. origin is only used for trace
// correlation; it carries no behavior.
//
//   - In Casting mode, if o is still subscribed, a new snapshot is
//     published containing the previous snapshot's surviving observers
//     plus o, and the generation counter is bumped.
//   - In Completed mode, o.OnCompleted() is invoked synchronously,
//     outside the lock.
//   - In Errored mode, o.OnError(err) is invoked synchronously with the
//     stored terminal error, outside the lock.
func (d *Dispatcher[T]) Add(origin TraceID, o Receiver[T]) {
	_ = origin // correlation only; no effect on dispatch.

	d.st.mu.Lock()
	switch d.st.mode {
	case Casting:
		if o.IsSubscribed() {
			d.completer = withAdded(d.completer, o)
			d.st.generation.Add(1)
		}
		d.st.mu.Unlock()

	case Completed:
		d.st.mu.Unlock()
		o.OnCompleted()

	case Errored:
		err := d.st.err
		d.st.mu.Unlock()
		o.OnError(err)
	}
}

// OnNext is the hot path. It acquires st.mu only when the generation
// counter shows the canonical snapshot has changed since the last
// call; otherwise it fans out to the cached hot-path snapshot without
// locking.
func (d *Dispatcher[T]) OnNext(v T) {
	if d.hotGeneration != d.st.generation.Load() {
		d.st.mu.Lock()
		d.hotSnapshot = d.completer
		d.hotGeneration = d.st.generation.Load()
		d.st.mu.Unlock()
	}

	snap := d.hotSnapshot
	if snap == nil || len(snap.observers) == 0 {
		return
	}
	for _, o := range snap.observers {
		if o.IsSubscribed() {
			o.OnNext(v)
		}
	}
}

// OnError is the one-shot error terminal. A second call, or a call
// after OnCompleted, is a no-op.
func (d *Dispatcher[T]) OnError(err error) {
	d.st.mu.Lock()
	if d.st.mode != Casting {
		d.st.mu.Unlock()
		return
	}
	d.st.mode = Errored
	d.st.err = err
	lifetime := d.st.lifetime
	captured := d.completer
	d.completer = nil
	d.hotSnapshot = nil
	d.st.generation.Add(1)
	d.st.mu.Unlock()

	if captured != nil {
		for _, o := range captured.observers {
			if o.IsSubscribed() {
				o.OnError(err)
			}
		}
	}
	lifetime.Unsubscribe()
}

// OnCompleted is the one-shot completion terminal. A second call, or a
// call after OnError, is a no-op.
func (d *Dispatcher[T]) OnCompleted() {
	d.st.mu.Lock()
	if d.st.mode != Casting {
		d.st.mu.Unlock()
		return
	}
	d.st.mode = Completed
	lifetime := d.st.lifetime
	captured := d.completer
	d.completer = nil
	d.hotSnapshot = nil
	d.st.generation.Add(1)
	d.st.mu.Unlock()

	if captured != nil {
		for _, o := range captured.observers {
			if o.IsSubscribed() {
				o.OnCompleted()
			}
		}
	}
	lifetime.Unsubscribe()
}
