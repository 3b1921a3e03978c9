// Package subject implements a reactive Subject: a hub that is
// simultaneously a sink for values, reachable through
// [Subject.GetSubscriber], and a multicast source, reachable through
// [Subject.GetObservable]. Every downstream observer that subscribes
// while the Subject is casting values is admitted into an ongoing
// fan-out; an observer that subscribes after the Subject has
// terminated receives the terminal signal immediately instead.
//
// The multicast core lives in [subject/subcore]; the composite
// subscription lifetime lives in [subject/sublife]. This package wires
// both together behind the Subject/Subscriber/Observable vocabulary.
package subject
