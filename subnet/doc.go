// Package subnet bridges a [subject.Subject]'s observable side onto
// the network: a [Publisher] erasure-codes each value a local Subject
// emits into shards and fans them out to peers over QUIC datagrams,
// and a [Receiver] reassembles those shards back into values and
// republishes them into a local Subject for in-process consumers.
//
// Shards travel unreliably over QUIC datagrams; a peer's per-shard
// acks (one shard index each) travel back over a reliable
// unidirectional stream, so a Publisher
// knows when it can stop retransmitting a given value's shards to that
// peer. A second reliable stream, opened in the other direction,
// carries the Publisher's terminal OnError/OnCompleted notification
// once its source Subject ends. Every shard is signed with the
// sending side's TLS certificate so a Receiver can reject shards from
// an unauthenticated origin.
package subnet
