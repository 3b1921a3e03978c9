package subtest

import "sync"

// Kind tags which notification a [Record] holds.
type Kind int

const (
	KindNext Kind = iota
	KindError
	KindCompleted
)

// Record is one timestamped notification observed by a [Recorder].
type Record[T any] struct {
	At   Timestamp
	Kind Kind
	Val  T
	Err  error
}

// Recorder is an Observer that timestamps every notification it
// receives against a Scheduler's virtual clock, for later comparison
// against an expected message list.
type Recorder[T any] struct {
	sched *Scheduler

	mu      sync.Mutex
	records []Record[T]
}

// NewRecorder returns a Recorder that timestamps against sched.
func NewRecorder[T any](sched *Scheduler) *Recorder[T] {
	return &Recorder[T]{sched: sched}
}

func (r *Recorder[T]) append(rec Record[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

// OnNext implements [subject.Observer].
func (r *Recorder[T]) OnNext(v T) {
	r.append(Record[T]{At: r.sched.Now(), Kind: KindNext, Val: v})
}

// OnError implements [subject.Observer].
func (r *Recorder[T]) OnError(err error) {
	r.append(Record[T]{At: r.sched.Now(), Kind: KindError, Err: err})
}

// OnCompleted implements [subject.Observer].
func (r *Recorder[T]) OnCompleted() {
	r.append(Record[T]{At: r.sched.Now(), Kind: KindCompleted})
}

// Messages returns a copy of every notification recorded so far, in
// the order received.
func (r *Recorder[T]) Messages() []Record[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record[T], len(r.records))
	copy(out, r.records)
	return out
}
