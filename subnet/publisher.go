package subnet

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/castline/subject"
	"github.com/quic-go/quic-go"
	"go.uber.org/automaxprocs/maxprocs"
	"golang.org/x/sync/errgroup"
)

var tuneGOMAXPROCSOnce sync.Once

// tuneGOMAXPROCS applies the container-aware CPU quota once per
// process, logging what it changed. Erasure coding and the per-peer
// fan-out below are CPU-bound enough that running with a GOMAXPROCS
// inherited from the host rather than the container's cgroup quota
// would over-schedule.
func tuneGOMAXPROCS(log *slog.Logger) {
	tuneGOMAXPROCSOnce.Do(func() {
		if _, err := maxprocs.Set(maxprocs.Logger(func(f string, args ...any) {
			log.Info("adjusted GOMAXPROCS", "detail", fmt.Sprintf(f, args...))
		})); err != nil {
			log.Warn("failed to tune GOMAXPROCS", "err", err)
		}
	})
}

const (
	maxShardRetransmits = 3
	shardRetransmitWait = 50 * time.Millisecond
)

// peerConn bundles the QUIC connection to one peer with the reliable
// uni-stream the Publisher uses to carry that peer's terminal
// notification.
type peerConn struct {
	conn wireConn
	term *quic.SendStream
}

// Publisher subscribes to a local Subject and erasure-codes every
// value it observes out to a set of connected peers over QUIC
// datagrams.
type Publisher[T any] struct {
	log *slog.Logger
	cfg PublisherConfig[T]

	transport *quic.Transport
	nextMsgID atomic.Uint32

	mu    sync.Mutex
	peers map[peerID]*peerConn
	acks  *ackTracker
}

// NewPublisher returns a Publisher bound to the given UDP socket.
func NewPublisher[T any](log *slog.Logger, cfg PublisherConfig[T]) *Publisher[T] {
	cfg.validate()
	tuneGOMAXPROCS(log)

	return &Publisher[T]{
		log:       log,
		cfg:       cfg,
		transport: &quic.Transport{Conn: cfg.UDPConn},
		peers:     make(map[peerID]*peerConn),
		acks:      newAckTracker(0),
	}
}

// Dial opens a connection to a peer and registers it for future
// broadcasts. The returned peerID is the value passed to shard acks
// received from that peer.
func (p *Publisher[T]) Dial(ctx context.Context, addr *net.UDPAddr) (peerID, error) {
	conn, err := p.transport.Dial(ctx, addr, p.cfg.TLS, p.cfg.QUIC)
	if err != nil {
		return "", err
	}

	term, err := conn.OpenUniStreamSync(ctx)
	if err != nil {
		return "", err
	}

	id := peerID(addr.String())
	p.mu.Lock()
	p.peers[id] = &peerConn{conn: conn, term: term}
	p.mu.Unlock()

	go p.drainAcks(ctx, id, conn)

	return id, nil
}

// Subscribe attaches the Publisher as an Observer of observable, so
// every value it emits gets broadcast.
func (p *Publisher[T]) Subscribe(observable subject.Observable[T]) {
	observable(subject.NewSubscriber[T](nil, p))
}

// OnNext implements [subject.Observer]: it erasure-codes v and fans
// the resulting shards out to every connected peer concurrently,
// retransmitting any shard a peer has not yet acknowledged.
func (p *Publisher[T]) OnNext(v T) {
	payload, err := p.cfg.Codec.Marshal(v)
	if err != nil {
		p.log.Warn("failed to marshal value for broadcast", "err", err)
		return
	}

	set, err := encodeShards(payload, p.cfg.ParityRatio)
	if err != nil {
		p.log.Warn("failed to erasure-code value for broadcast", "err", err)
		return
	}

	p.mu.Lock()
	peers := make(map[peerID]*peerConn, len(p.peers))
	for id, pc := range p.peers {
		peers[id] = pc
	}
	p.mu.Unlock()

	msgID := p.nextMsgID.Add(1)
	p.acks.reset(len(set.shards))

	var eg errgroup.Group
	for id, pc := range peers {
		id, pc := id, pc
		eg.Go(func() error {
			return p.sendShardsTo(pc.conn, id, msgID, set, len(payload))
		})
	}
	if err := eg.Wait(); err != nil {
		p.log.Warn("failed to broadcast to one or more peers", "err", err)
	}
}

// OnError implements [subject.Observer]: it notifies every connected
// peer that the source Subject errored, over each peer's reliable
// terminal stream.
func (p *Publisher[T]) OnError(err error) {
	p.broadcastTerminal(encodeTerminalFrame(err))
}

// OnCompleted implements [subject.Observer]: it notifies every
// connected peer that the source Subject completed.
func (p *Publisher[T]) OnCompleted() {
	p.broadcastTerminal(encodeTerminalFrame(nil))
}

func (p *Publisher[T]) broadcastTerminal(frame []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for id, pc := range p.peers {
		if pc.term == nil {
			continue
		}
		if _, err := pc.term.Write(frame); err != nil {
			p.log.Warn("failed to send terminal notification", "peer", id, "err", err)
			continue
		}
		if err := pc.term.Close(); err != nil {
			p.log.Debug("failed to close terminal stream", "peer", id, "err", err)
		}
	}
}

// sendShardsTo sends set's shards to conn, retransmitting shards the
// peer has not yet acknowledged up to maxShardRetransmits times.
func (p *Publisher[T]) sendShardsTo(conn wireConn, id peerID, msgID uint32, set shardSet, originalLen int) error {
	cert, err := leafCertOf(p.cfg.TLS)
	if err != nil {
		return err
	}

	all := make([]int, len(set.shards))
	for i := range all {
		all[i] = i
	}
	pending := all

	for attempt := 0; attempt <= maxShardRetransmits; attempt++ {
		for _, idx := range pending {
			frame, err := buildShardFrame(msgID, uint16(idx), uint16(set.nData), uint16(set.nParity), uint32(originalLen), set.shards[idx], cert)
			if err != nil {
				return err
			}
			if err := conn.SendDatagram(frame); err != nil {
				return err
			}
		}

		if attempt == maxShardRetransmits || p.acks.complete(id) {
			break
		}
		time.Sleep(shardRetransmitWait)
		pending = p.acks.needs(id, all)
		if len(pending) == 0 {
			break
		}
	}

	p.acks.forget(id)
	return nil
}

// drainAcks reads the peer's ack stream and records each acked shard
// index in the Publisher's ackTracker.
func (p *Publisher[T]) drainAcks(ctx context.Context, id peerID, conn wireConn) {
	stream, err := conn.AcceptUniStream(ctx)
	if err != nil {
		p.log.Warn("failed to accept ack stream", "peer", id, "err", err)
		return
	}

	buf := make([]byte, 2)
	for {
		if _, err := stream.Read(buf); err != nil {
			return
		}
		p.acks.ack(id, int(binary.BigEndian.Uint16(buf)))
	}
}
