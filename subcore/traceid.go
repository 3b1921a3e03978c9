package subcore

import "sync/atomic"

// TraceID identifies a dispatcher or an admission for correlation in
// logs; it carries no other semantics.
type TraceID uint64

var traceCounter atomic.Uint64

// NextTraceID returns a process-wide unique, monotonically increasing
// TraceID.
func NextTraceID() TraceID {
	return TraceID(traceCounter.Add(1))
}
