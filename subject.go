package subject

import (
	"github.com/castline/subject/sublife"
	"github.com/castline/subject/subcore"
)

// Subject is a dual-role object that is both sink and source: values
// sent to [Subject.GetSubscriber] are broadcast to every Observer
// currently attached through [Subject.GetObservable].
type Subject[T any] struct {
	dispatcher *subcore.Dispatcher[T]
}

// New returns a Subject with a freshly allocated composite lifetime.
func New[T any]() *Subject[T] {
	return NewWithLifetime[T](sublife.New())
}

// NewWithLifetime returns a Subject that adopts the given composite
// lifetime rather than allocating its own.
func NewWithLifetime[T any](lifetime *sublife.Subscription) *Subject[T] {
	return &Subject[T]{dispatcher: subcore.NewDispatcher[T](lifetime)}
}

// dispatcherSink adapts a Dispatcher into the Observer interface so it
// can back the Subject's input Subscriber.
type dispatcherSink[T any] struct {
	d *subcore.Dispatcher[T]
}

func (s dispatcherSink[T]) OnNext(v T)      { s.d.OnNext(v) }
func (s dispatcherSink[T]) OnError(e error) { s.d.OnError(e) }
func (s dispatcherSink[T]) OnCompleted()    { s.d.OnCompleted() }

// GetSubscriber returns the push side: a Subscriber whose lifetime is
// the Subject's shared composite lifetime, and whose delivery methods
// feed directly into the multicast dispatcher.
func (s *Subject[T]) GetSubscriber() Subscriber[T] {
	return NewSubscriber[T](s.dispatcher.Lifetime(), dispatcherSink[T]{d: s.dispatcher})
}

// GetObservable returns the pull side: an Observable that, on each
// call, performs an independent admission of the given Subscriber
// through the dispatcher. The returned Observable holds a strong
// reference to the dispatcher, keeping it alive for as long as any
// consumer holds the Observable.
func (s *Subject[T]) GetObservable() Observable[T] {
	d := s.dispatcher
	origin := d.ID()
	return func(sub Subscriber[T]) {
		d.Add(origin, sub)
	}
}

// HasObservers reports whether at least one Subscriber is currently
// attached.
func (s *Subject[T]) HasObservers() bool {
	return s.dispatcher.HasObservers()
}
