package subnet

import (
	"crypto/tls"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

type noopCodec struct{}

func (noopCodec) Marshal(v []byte) ([]byte, error)   { return v, nil }
func (noopCodec) Unmarshal(b []byte) ([]byte, error) { return b, nil }

func TestPublisherConfig_validatePanicsOnMissingFields(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		PublisherConfig[[]byte]{}.validate()
	})
}

func TestPublisherConfig_validateAcceptsCompleteConfig(t *testing.T) {
	t.Parallel()

	cfg := PublisherConfig[[]byte]{
		UDPConn:     &net.UDPConn{},
		TLS:         &tls.Config{},
		Codec:       noopCodec{},
		ParityRatio: 0.5,
	}

	require.NotPanics(t, func() { cfg.validate() })
}

func TestReceiverConfig_validateRequiresClientCertEnforcement(t *testing.T) {
	t.Parallel()

	cfg := ReceiverConfig[[]byte]{
		UDPConn: &net.UDPConn{},
		TLS:     &tls.Config{ClientAuth: tls.NoClientCert},
		Codec:   noopCodec{},
	}

	require.Panics(t, func() { cfg.validate() })
}

func TestReceiverConfig_validateAcceptsCompleteConfig(t *testing.T) {
	t.Parallel()

	cfg := ReceiverConfig[[]byte]{
		UDPConn: &net.UDPConn{},
		TLS:     &tls.Config{ClientAuth: tls.RequireAndVerifyClientCert},
		Codec:   noopCodec{},
	}

	require.NotPanics(t, func() { cfg.validate() })
}
