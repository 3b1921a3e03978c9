package sublife

import "sync"

// Unsubscriber is anything that can be torn down once.
// Implementations must be safe to call Unsubscribe on more than once.
type Unsubscriber interface {
	Unsubscribe()
}

// Subscription is a composite, idempotent teardown handle.
//
// Children are expected to be pointer-typed (*Subscription, or the
// value returned by [Func]) so that [*Subscription.Remove] can compare
// them for identity; value types that happen to be uncomparable would
// panic if ever passed to Remove.
type Subscription struct {
	mu           sync.Mutex
	unsubscribed bool
	children     []Unsubscriber
}

// New returns a Subscription that is subscribed.
func New() *Subscription {
	return &Subscription{}
}

// Func adapts a plain teardown function into an Unsubscriber.
// The function runs at most once, even if Unsubscribe is called
// concurrently or more than once.
func Func(fn func()) Unsubscriber {
	return &funcSubscription{fn: fn}
}

type funcSubscription struct {
	once sync.Once
	fn   func()
}

func (f *funcSubscription) Unsubscribe() {
	f.once.Do(f.fn)
}

// IsSubscribed reports whether Unsubscribe has not yet been called.
func (s *Subscription) IsSubscribed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.unsubscribed
}

// Add attaches child to s.
//
// If s is already unsubscribed, child is torn down immediately and is
// never recorded as a child of s.
func (s *Subscription) Add(child Unsubscriber) {
	s.mu.Lock()
	if s.unsubscribed {
		s.mu.Unlock()
		child.Unsubscribe()
		return
	}
	s.children = append(s.children, child)
	s.mu.Unlock()
}

// Remove detaches child from s without unsubscribing it.
// It is a no-op if child is not currently attached.
func (s *Subscription) Remove(child Unsubscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.children {
		if c == child {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}

// Unsubscribe marks s as no longer subscribed and unsubscribes every
// child exactly once. Calling Unsubscribe more than once is a no-op
// after the first call.
func (s *Subscription) Unsubscribe() {
	s.mu.Lock()
	if s.unsubscribed {
		s.mu.Unlock()
		return
	}
	s.unsubscribed = true
	children := s.children
	s.children = nil
	s.mu.Unlock()

	for _, c := range children {
		c.Unsubscribe()
	}
}
