package subnet

import (
	"context"
	"crypto/tls"

	"github.com/quic-go/quic-go"
)

// wireConn is the subset of [*quic.Conn] this package needs: unreliable
// datagrams for shards, plus reliable unidirectional streams for
// per-shard acks and the terminal notification. Mirrors the narrowed connection interfaces the rest of this
// codebase's corpus defines instead of passing the full *quic.Conn
// around.
type wireConn interface {
	SendDatagram([]byte) error
	ReceiveDatagram(context.Context) ([]byte, error)

	OpenUniStreamSync(context.Context) (*quic.SendStream, error)
	AcceptUniStream(context.Context) (*quic.ReceiveStream, error)

	ConnectionState() quic.ConnectionState

	CloseWithError(quic.ApplicationErrorCode, string) error
}

var _ wireConn = (*quic.Conn)(nil)

func tlsStateOf(c wireConn) tls.ConnectionState {
	return c.ConnectionState().TLS
}
