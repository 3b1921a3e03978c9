package substest

import (
	"crypto/ed25519"
	cryptorand "crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math/big"
	"net"
	"time"
)

// CA is a minimal certificate authority for issuing leaf certificates
// in tests, adapted down from the teacher's dca/dcatest package to the
// single key type (Ed25519) this module's tests need — standard
// library only, no third-party certificate tooling is involved in
// generating a throwaway test CA.
type CA struct {
	Cert    *x509.Certificate
	PrivKey ed25519.PrivateKey

	prevSerial int64
}

// GenerateCA generates a new Ed25519 CA valid for one hour, long
// enough for any test in this module.
func GenerateCA() (*CA, error) {
	pub, priv, err := ed25519.GenerateKey(cryptorand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ed25519 key: %w", err)
	}

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			Organization: []string{"subnet test CA"},
			CommonName:   "subnet test CA root",
		},
		NotBefore: time.Now().Add(-15 * time.Second),
		NotAfter:  time.Now().Add(time.Hour),
		KeyUsage:  x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage: []x509.ExtKeyUsage{
			x509.ExtKeyUsageServerAuth,
			x509.ExtKeyUsageClientAuth,
		},
		BasicConstraintsValid: true,
		IsCA:                  true,
		MaxPathLen:            1,
	}

	der, err := x509.CreateCertificate(cryptorand.Reader, template, template, pub, priv)
	if err != nil {
		return nil, fmt.Errorf("failed to create CA certificate: %w", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("failed to parse CA certificate: %w", err)
	}

	return &CA{Cert: cert, PrivKey: priv, prevSerial: 1}, nil
}

// CreateLeafCert issues a leaf certificate signed by ca for the given
// DNS names (127.0.0.1 is always included as an IP SAN), ready to
// drop into a [tls.Config.Certificates] slice.
func (ca *CA) CreateLeafCert(dnsNames ...string) (tls.Certificate, error) {
	pub, priv, err := ed25519.GenerateKey(cryptorand.Reader)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to generate ed25519 key: %w", err)
	}

	ca.prevSerial++

	template := &x509.Certificate{
		SerialNumber: big.NewInt(ca.prevSerial),
		Subject: pkix.Name{
			Organization: []string{"subnet test leaf"},
			CommonName:   dnsNames[0],
		},
		NotBefore: time.Now().Add(-15 * time.Second),
		NotAfter:  time.Now().Add(time.Hour),
		KeyUsage:  x509.KeyUsageDigitalSignature,
		ExtKeyUsage: []x509.ExtKeyUsage{
			x509.ExtKeyUsageServerAuth,
			x509.ExtKeyUsageClientAuth,
		},
		DNSNames: dnsNames,
		// Tests dial 127.0.0.1 directly; without this SAN, the
		// handshake fails with "x509: cannot validate certificate for
		// 127.0.0.1 because it doesn't contain any IP SANs."
		IPAddresses:           []net.IP{net.IPv4(127, 0, 0, 1)},
		BasicConstraintsValid: true,
	}

	der, err := x509.CreateCertificate(cryptorand.Reader, template, ca.Cert, pub, ca.PrivKey)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to create leaf certificate: %w", err)
	}
	leaf, err := x509.ParseCertificate(der)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to parse leaf certificate: %w", err)
	}

	return tls.Certificate{
		Certificate: [][]byte{der},
		PrivateKey:  priv,
		Leaf:        leaf,
	}, nil
}

// TrustPool returns an [x509.CertPool] containing ca, suitable for a
// peer's [tls.Config.RootCAs]/[tls.Config.ClientCAs].
func (ca *CA) TrustPool() *x509.CertPool {
	pool := x509.NewCertPool()
	pool.AddCert(ca.Cert)
	return pool
}
