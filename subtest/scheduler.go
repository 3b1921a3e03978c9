package subtest

import (
	"container/heap"
	"sync"
)

// Timestamp is a virtual clock tick. It has no relation to wall time.
type Timestamp int64

// Scheduler runs scheduled actions in virtual-timestamp order, exactly
// once each, advancing its own notion of "now" to each action's
// timestamp before running it. It is not safe for concurrent calls to
// AdvanceTo; ScheduleAbsolute may be called from inside a running
// action (to schedule follow-up work) or from another goroutine.
type Scheduler struct {
	mu   sync.Mutex
	now  Timestamp
	seq  uint64
	heap actionHeap
}

type scheduledAction struct {
	at  Timestamp
	seq uint64
	fn  func()
}

type actionHeap []scheduledAction

func (h actionHeap) Len() int { return len(h) }
func (h actionHeap) Less(i, j int) bool {
	if h[i].at != h[j].at {
		return h[i].at < h[j].at
	}
	return h[i].seq < h[j].seq
}
func (h actionHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *actionHeap) Push(x any)        { *h = append(*h, x.(scheduledAction)) }
func (h *actionHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// NewScheduler returns a Scheduler with its virtual clock at zero.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Now returns the scheduler's current virtual timestamp.
func (s *Scheduler) Now() Timestamp {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// ScheduleAbsolute runs fn when the scheduler's clock reaches at.
// Actions scheduled for the same timestamp run in the order they were
// scheduled.
func (s *Scheduler) ScheduleAbsolute(at Timestamp, fn func()) {
	s.mu.Lock()
	s.seq++
	heap.Push(&s.heap, scheduledAction{at: at, seq: s.seq, fn: fn})
	s.mu.Unlock()
}

// AdvanceTo runs every pending action whose timestamp is at most
// horizon, in timestamp order, then leaves the clock at horizon even
// if no action ran exactly there.
func (s *Scheduler) AdvanceTo(horizon Timestamp) {
	for {
		s.mu.Lock()
		if s.heap.Len() == 0 || s.heap[0].at > horizon {
			s.mu.Unlock()
			break
		}
		act := heap.Pop(&s.heap).(scheduledAction)
		s.now = act.at
		s.mu.Unlock()

		act.fn()
	}

	s.mu.Lock()
	if horizon > s.now {
		s.now = horizon
	}
	s.mu.Unlock()
}
