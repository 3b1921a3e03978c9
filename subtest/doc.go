// Package subtest provides the virtual-time test harness consumed by
// this module's own tests and by any external operator test suite
// built against [subject.Subject]: a [Scheduler] that runs scheduled
// actions in virtual-timestamp order, a [Recorder] that timestamps
// every notification it receives, and a [HotObservable] that replays a
// scripted event list through a Subject while recording the
// subscription interval of every observer that attaches to it.
package subtest
