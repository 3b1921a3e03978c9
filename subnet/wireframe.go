package subnet

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	cryptorand "crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/binary"
	"fmt"
)

// shardFrame header layout, all big-endian:
//
//	msgID     uint32
//	shardIdx  uint16
//	nData     uint16
//	nParity   uint16
//	origLen   uint32
//	sigLen    uint16
//	signature [sigLen]byte
//	payload   [...]byte
const shardFrameHeaderLen = 4 + 2 + 2 + 2 + 4 + 2

// buildShardFrame signs payload with cert's private key and encodes it
// into a shard datagram.
//
// Ed25519 keys sign the raw payload per their own contract; every
// other key type (RSA, ECDSA) signs a SHA-256 digest of it through the
// crypto.Signer interface cert.PrivateKey already implements — unlike
// a certificate authority, this codec has no need to match the
// certificate's own chain signature algorithm.
func buildShardFrame(msgID uint32, shardIdx, nData, nParity uint16, origLen uint32, payload []byte, cert tls.Certificate) ([]byte, error) {
	sig, err := signFramePayload(payload, cert)
	if err != nil {
		return nil, err
	}

	out := make([]byte, shardFrameHeaderLen+len(sig)+len(payload))

	binary.BigEndian.PutUint32(out[0:4], msgID)
	binary.BigEndian.PutUint16(out[4:6], shardIdx)
	binary.BigEndian.PutUint16(out[6:8], nData)
	binary.BigEndian.PutUint16(out[8:10], nParity)
	binary.BigEndian.PutUint32(out[10:14], origLen)
	binary.BigEndian.PutUint16(out[14:16], uint16(len(sig)))

	copy(out[shardFrameHeaderLen:], sig)
	copy(out[shardFrameHeaderLen+len(sig):], payload)

	return out, nil
}

type decodedShardFrame struct {
	msgID                    uint32
	shardIdx, nData, nParity int
	origLen                  int
	sig, payload             []byte
}

// parseShardFrame decodes frame's header, signature, and payload. If
// peerCert is non-nil, the signature is verified against it before
// the frame is returned.
func parseShardFrame(frame []byte, peerCert *x509.Certificate) (decodedShardFrame, error) {
	if len(frame) < shardFrameHeaderLen {
		return decodedShardFrame{}, ShardFrameError{Reason: "shorter than header"}
	}

	d := decodedShardFrame{
		msgID:    binary.BigEndian.Uint32(frame[0:4]),
		shardIdx: int(binary.BigEndian.Uint16(frame[4:6])),
		nData:    int(binary.BigEndian.Uint16(frame[6:8])),
		nParity:  int(binary.BigEndian.Uint16(frame[8:10])),
		origLen:  int(binary.BigEndian.Uint32(frame[10:14])),
	}
	sigLen := int(binary.BigEndian.Uint16(frame[14:16]))

	rest := frame[shardFrameHeaderLen:]
	if len(rest) < sigLen {
		return decodedShardFrame{}, ShardFrameError{Reason: "shorter than declared signature length"}
	}
	d.sig, d.payload = rest[:sigLen], rest[sigLen:]

	if peerCert != nil {
		if err := verifyFramePayload(d.payload, peerCert, d.sig); err != nil {
			return decodedShardFrame{}, err
		}
	}

	return d, nil
}

func signFramePayload(payload []byte, cert tls.Certificate) ([]byte, error) {
	if cert.Leaf == nil {
		leaf, err := x509.ParseCertificate(cert.Certificate[0])
		if err != nil {
			return nil, err
		}
		cert.Leaf = leaf
	}

	if k, ok := cert.PrivateKey.(ed25519.PrivateKey); ok {
		return ed25519.Sign(k, payload), nil
	}

	signer, ok := cert.PrivateKey.(crypto.Signer)
	if !ok {
		return nil, UnsupportedKeyError{KeyType: fmt.Sprintf("%T", cert.PrivateKey)}
	}
	digest := sha256.Sum256(payload)
	return signer.Sign(cryptorand.Reader, digest[:], crypto.SHA256)
}

func verifyFramePayload(payload []byte, cert *x509.Certificate, sig []byte) error {
	if k, ok := cert.PublicKey.(ed25519.PublicKey); ok {
		if !ed25519.Verify(k, payload, sig) {
			return SignatureError{Peer: cert.Subject.String(), Algorithm: "ed25519"}
		}
		return nil
	}

	digest := sha256.Sum256(payload)
	switch k := cert.PublicKey.(type) {
	case *rsa.PublicKey:
		if rsa.VerifyPKCS1v15(k, crypto.SHA256, digest[:], sig) != nil {
			return SignatureError{Peer: cert.Subject.String(), Algorithm: "rsa"}
		}
		return nil
	case *ecdsa.PublicKey:
		if !ecdsa.VerifyASN1(k, digest[:], sig) {
			return SignatureError{Peer: cert.Subject.String(), Algorithm: "ecdsa"}
		}
		return nil
	default:
		return UnsupportedKeyError{KeyType: fmt.Sprintf("%T", cert.PublicKey)}
	}
}

// leafCertOf returns the first leaf certificate in cfg, parsing its
// leaf from the DER chain if it hasn't already been populated.
func leafCertOf(cfg *tls.Config) (tls.Certificate, error) {
	if len(cfg.Certificates) == 0 {
		return tls.Certificate{}, NoCertificateError{}
	}
	cert := cfg.Certificates[0]
	if cert.Leaf == nil {
		leaf, err := x509.ParseCertificate(cert.Certificate[0])
		if err != nil {
			return tls.Certificate{}, err
		}
		cert.Leaf = leaf
	}
	return cert, nil
}
