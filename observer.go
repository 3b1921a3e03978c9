package subject

import (
	"github.com/castline/subject/sublife"
)

// Observer is the three-method sink protocol a [Subscriber] delivers
// into.
type Observer[T any] interface {
	OnNext(v T)
	OnError(err error)
	OnCompleted()
}

// Subscriber pairs an [Observer] with its subscription lifetime and an
// identity tag, matching the capability set [subject/subcore.Receiver]
// requires. Delivery to the wrapped Observer is always gated on the
// lifetime's subscribed state.
type Subscriber[T any] struct {
	lifetime *sublife.Subscription
	observer Observer[T]
}

// NewSubscriber returns a Subscriber wrapping observer, bound to
// lifetime. If lifetime is nil, a fresh [sublife.Subscription] is
// allocated.
func NewSubscriber[T any](lifetime *sublife.Subscription, observer Observer[T]) Subscriber[T] {
	if lifetime == nil {
		lifetime = sublife.New()
	}
	return Subscriber[T]{lifetime: lifetime, observer: observer}
}

// Lifetime returns the Subscriber's subscription lifetime.
func (s Subscriber[T]) Lifetime() *sublife.Subscription {
	return s.lifetime
}

// IsSubscribed reports whether the Subscriber's lifetime is still
// subscribed.
func (s Subscriber[T]) IsSubscribed() bool {
	return s.lifetime.IsSubscribed()
}

// OnNext delivers v to the wrapped Observer if still subscribed.
func (s Subscriber[T]) OnNext(v T) {
	if s.IsSubscribed() {
		s.observer.OnNext(v)
	}
}

// OnError delivers err to the wrapped Observer if still subscribed.
func (s Subscriber[T]) OnError(err error) {
	if s.IsSubscribed() {
		s.observer.OnError(err)
	}
}

// OnCompleted delivers completion to the wrapped Observer if still
// subscribed.
func (s Subscriber[T]) OnCompleted() {
	if s.IsSubscribed() {
		s.observer.OnCompleted()
	}
}

// Observable is multi-subscribe: each call attaches a fresh Subscriber
// through an independent admission.
type Observable[T any] func(Subscriber[T])
