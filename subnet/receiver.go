package subnet

import (
	"context"
	"crypto/x509"
	"encoding/binary"
	"io"
	"log/slog"
	"sync"

	"github.com/castline/subject"
	"github.com/castline/subject/sublife"
	"github.com/quic-go/quic-go"
	"go.uber.org/automaxprocs/maxprocs"
)

// Receiver accepts QUIC connections from publishers, verifies and
// reassembles the shards it receives over datagrams, and republishes
// reconstructed values into a local Subject for in-process consumers.
type Receiver[T any] struct {
	log *slog.Logger
	cfg ReceiverConfig[T]

	lifetime *sublife.Subscription
	subject  *subject.Subject[T]

	listener *quic.Listener
}

// NewReceiver returns a Receiver bound to the given UDP socket. Call
// Serve to begin accepting connections.
func NewReceiver[T any](log *slog.Logger, cfg ReceiverConfig[T]) (*Receiver[T], error) {
	cfg.validate()

	tuneGOMAXPROCSOnce.Do(func() {
		if _, err := maxprocs.Set(maxprocs.Logger(func(string, ...any) {})); err != nil {
			log.Warn("failed to tune GOMAXPROCS", "err", err)
		}
	})

	transport := &quic.Transport{Conn: cfg.UDPConn}
	listener, err := transport.Listen(cfg.TLS, cfg.QUIC)
	if err != nil {
		return nil, err
	}

	return &Receiver[T]{
		log:      log,
		cfg:      cfg,
		lifetime: sublife.New(),
		subject:  subject.New[T](),
		listener: listener,
	}, nil
}

// Observable returns the pull side of the Receiver's local Subject:
// in-process consumers subscribe here to receive reconstructed
// values.
func (r *Receiver[T]) Observable() subject.Observable[T] {
	return r.subject.GetObservable()
}

// Serve accepts connections until ctx is cancelled (it then returns
// nil) or accepting a connection fails (it then returns that error),
// reassembling shards from each into values published to the local
// Subject.
func (r *Receiver[T]) Serve(ctx context.Context) error {
	defer r.lifetime.Unsubscribe()

	for {
		conn, err := r.listener.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		go r.handleConn(ctx, conn)
	}
}

func (r *Receiver[T]) handleConn(ctx context.Context, conn *quic.Conn) {
	peerCert := leafOf(conn)
	id := peerID(conn.RemoteAddr().String())

	ackStream, err := conn.OpenUniStreamSync(ctx)
	if err != nil {
		r.log.Warn("failed to open ack stream", "peer", id, "err", err)
		return
	}
	defer ackStream.Close()

	go func() {
		termStream, err := conn.AcceptUniStream(ctx)
		if err != nil {
			r.log.Warn("failed to accept terminal stream", "peer", id, "err", err)
			return
		}
		r.drainTerminal(id, termStream)
	}()

	var mu sync.Mutex
	reassemblers := make(map[uint32]*shardReassembler)

	for {
		datagram, err := conn.ReceiveDatagram(ctx)
		if err != nil {
			return
		}

		frame, err := parseShardFrame(datagram, peerCert)
		if err != nil {
			r.log.Warn("dropping shard frame", "peer", id, "err", err)
			continue
		}

		mu.Lock()
		reasm, ok := reassemblers[frame.msgID]
		if !ok {
			reasm = newShardReassembler(frame.msgID, frame.nData, frame.nParity, len(frame.payload), frame.origLen)
			reassemblers[frame.msgID] = reasm
		}
		ready := reasm.addShard(frame.shardIdx, frame.payload)
		if ready {
			delete(reassemblers, frame.msgID)
		}
		mu.Unlock()

		r.ackShard(ackStream, frame.shardIdx)

		if !ready {
			continue
		}

		payload, err := reasm.reconstruct()
		if err != nil {
			r.log.Warn("failed to reconstruct value", "peer", id, "err", err)
			continue
		}

		v, err := r.cfg.Codec.Unmarshal(payload)
		if err != nil {
			r.log.Warn("failed to unmarshal reconstructed value", "peer", id, "err", err)
			continue
		}

		r.subject.GetSubscriber().OnNext(v)
	}
}

// drainTerminal reads the peer's single terminal-event frame and
// propagates it to the Receiver's local Subject. The Publisher writes
// exactly one frame to this stream and closes it, since a Subject
// only terminates once.
func (r *Receiver[T]) drainTerminal(id peerID, stream *quic.ReceiveStream) {
	buf, err := io.ReadAll(stream)
	if err != nil || len(buf) == 0 {
		return
	}

	completed, termErr, err := decodeTerminalFrame(buf)
	if err != nil {
		r.log.Warn("dropping malformed terminal frame", "peer", id, "err", err)
		return
	}

	if completed {
		r.subject.GetSubscriber().OnCompleted()
	} else {
		r.subject.GetSubscriber().OnError(termErr)
	}
}

func (r *Receiver[T]) ackShard(stream *quic.SendStream, shardIdx int) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], uint16(shardIdx))
	if _, err := stream.Write(buf[:]); err != nil {
		r.log.Debug("failed to send shard ack", "err", err)
	}
}

func leafOf(conn *quic.Conn) *x509.Certificate {
	state := tlsStateOf(conn)
	if len(state.PeerCertificates) == 0 {
		return nil
	}
	return state.PeerCertificates[0]
}
