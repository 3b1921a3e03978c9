// Package subcore implements the multicast dispatcher at the heart of
// a Subject: it admits observers while values are flowing, terminates
// the stream exactly once with completion or error, and replays that
// terminal signal to any observer that attaches late.
//
// The dispatch path for values is free of mutex acquisition once the
// set of attached observers has stopped changing; a generation counter
// is the only signal that tells a subsequent value dispatch it must
// reacquire the lock and refresh its view of the membership.
package subcore
