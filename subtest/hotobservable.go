package subtest

import (
	"sync"

	"github.com/castline/subject"
	"github.com/castline/subject/sublife"
)

// ScriptedEvent is one entry in a [HotObservable]'s script: a
// notification to replay at a given virtual timestamp.
type ScriptedEvent[T any] struct {
	At   Timestamp
	Kind Kind
	Val  T
	Err  error
}

// Next is a convenience constructor for a scripted OnNext event.
func Next[T any](at Timestamp, v T) ScriptedEvent[T] {
	return ScriptedEvent[T]{At: at, Kind: KindNext, Val: v}
}

// Error is a convenience constructor for a scripted OnError event.
func Error[T any](at Timestamp, err error) ScriptedEvent[T] {
	return ScriptedEvent[T]{At: at, Kind: KindError, Err: err}
}

// Completed is a convenience constructor for a scripted OnCompleted
// event.
func Completed[T any](at Timestamp) ScriptedEvent[T] {
	return ScriptedEvent[T]{At: at, Kind: KindCompleted}
}

// Interval is the half-open [Start, End) virtual-time window during
// which one observer was attached to a [HotObservable]. End is -1 for
// an observer that is still attached.
type Interval struct {
	Start Timestamp
	End   Timestamp
}

// StillSubscribed is the sentinel End value for an Interval whose
// observer has not yet unsubscribed.
const StillSubscribed Timestamp = -1

// HotObservable replays a scripted event list against its subscribers
// starting from whenever the scheduler's clock is when it is
// constructed, regardless of when any particular observer subscribes
// to it — matching a "hot" source. Every Subscribe call is recorded as
// a subscription Interval, closed out when the given Subscriber's
// lifetime unsubscribes.
type HotObservable[T any] struct {
	sched *Scheduler
	subj  *subject.Subject[T]

	mu            sync.Mutex
	subscriptions []*Interval
}

// NewHotObservable schedules every event in script against sched and
// returns the resulting HotObservable.
func NewHotObservable[T any](sched *Scheduler, script []ScriptedEvent[T]) *HotObservable[T] {
	h := &HotObservable[T]{
		sched: sched,
		subj:  subject.New[T](),
	}

	in := h.subj.GetSubscriber()
	for _, e := range script {
		e := e
		sched.ScheduleAbsolute(e.At, func() {
			switch e.Kind {
			case KindNext:
				in.OnNext(e.Val)
			case KindError:
				in.OnError(e.Err)
			case KindCompleted:
				in.OnCompleted()
			}
		})
	}

	return h
}

// Subscribe attaches sub to the underlying Subject and records the
// resulting subscription interval.
func (h *HotObservable[T]) Subscribe(sub subject.Subscriber[T]) {
	iv := &Interval{Start: h.sched.Now(), End: StillSubscribed}

	h.mu.Lock()
	h.subscriptions = append(h.subscriptions, iv)
	h.mu.Unlock()

	sub.Lifetime().Add(sublife.Func(func() {
		h.mu.Lock()
		iv.End = h.sched.Now()
		h.mu.Unlock()
	}))

	h.subj.GetObservable()(sub)
}

// Subscriptions returns a copy of every subscription interval recorded
// so far.
func (h *HotObservable[T]) Subscriptions() []Interval {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Interval, len(h.subscriptions))
	for i, iv := range h.subscriptions {
		out[i] = *iv
	}
	return out
}
