package subnet

import (
	"crypto/tls"
	"errors"
	"net"

	"github.com/quic-go/quic-go"
)

// PublisherConfig is the configuration for a [Publisher].
type PublisherConfig[T any] struct {
	UDPConn *net.UDPConn
	QUIC    *quic.Config

	// The base TLS configuration to use for outgoing connections.
	TLS *tls.Config

	// Codec marshals values emitted by the local Subject into bytes
	// before they are shard-encoded.
	Codec Codec[T]

	// ParityRatio is the ratio of parity shards to data shards used
	// when erasure-coding each published value. A ratio of 1.0 means
	// as many parity shards as data shards.
	ParityRatio float64
}

// ReceiverConfig is the configuration for a [Receiver].
type ReceiverConfig[T any] struct {
	UDPConn *net.UDPConn
	QUIC    *quic.Config

	// The base TLS configuration to use for incoming connections.
	// Client certificates are required, since every shard must be
	// attributable to a peer for signature verification.
	TLS *tls.Config

	Codec Codec[T]
}

// validate panics if there are any illegal settings in the
// configuration.
func (c PublisherConfig[T]) validate() {
	var panicErrs error

	if c.UDPConn == nil {
		panicErrs = errors.Join(panicErrs, errors.New("PublisherConfig.UDPConn may not be nil"))
	}
	if c.TLS == nil {
		panicErrs = errors.Join(panicErrs, errors.New("PublisherConfig.TLS may not be nil"))
	}
	if c.Codec == nil {
		panicErrs = errors.Join(panicErrs, errors.New("PublisherConfig.Codec may not be nil"))
	}
	if c.ParityRatio <= 0 {
		panicErrs = errors.Join(panicErrs, errors.New("PublisherConfig.ParityRatio must be positive"))
	}

	if panicErrs != nil {
		panic(panicErrs)
	}
}

// validate panics if there are any illegal settings in the
// configuration.
func (c ReceiverConfig[T]) validate() {
	var panicErrs error

	if c.UDPConn == nil {
		panicErrs = errors.Join(panicErrs, errors.New("ReceiverConfig.UDPConn may not be nil"))
	}
	if c.TLS == nil {
		panicErrs = errors.Join(panicErrs, errors.New("ReceiverConfig.TLS may not be nil"))
	}
	if c.TLS != nil && c.TLS.ClientAuth != tls.RequireAndVerifyClientCert {
		panicErrs = errors.Join(panicErrs, errors.New(
			"client certificates are required; set ReceiverConfig.TLS.ClientAuth = tls.RequireAndVerifyClientCert",
		))
	}
	if c.Codec == nil {
		panicErrs = errors.Join(panicErrs, errors.New("ReceiverConfig.Codec may not be nil"))
	}

	if panicErrs != nil {
		panic(panicErrs)
	}
}
