package subnet

import "fmt"

// EmptyPayloadError is returned from a Publisher's attempt to encode a
// zero-length marshaled value into shards.
type EmptyPayloadError struct{}

func (e EmptyPayloadError) Error() string {
	return "subnet: cannot encode empty payload"
}

// EncodeError is returned when building a Reed-Solomon encoder,
// splitting a payload into shards, or erasure-coding the parity
// shards fails.
type EncodeError struct {
	Op    string
	Cause error
}

func (e EncodeError) Error() string {
	return fmt.Sprintf("subnet: %s: %v", e.Op, e.Cause)
}

func (e EncodeError) Unwrap() error { return e.Cause }

// ReassemblyError is returned when a received value's shards cannot
// be reconstructed into its original payload.
type ReassemblyError struct {
	MsgID uint32
	Op    string
	Cause error
}

func (e ReassemblyError) Error() string {
	return fmt.Sprintf("subnet: reassembling message %d: %s: %v", e.MsgID, e.Op, e.Cause)
}

func (e ReassemblyError) Unwrap() error { return e.Cause }

// ShardFrameError is returned when a received shard frame is too
// short to contain its declared header or signature.
type ShardFrameError struct {
	Reason string
}

func (e ShardFrameError) Error() string {
	return "subnet: malformed shard frame: " + e.Reason
}

// UnsupportedKeyError is returned when a TLS certificate's private or
// public key type has no shard-signing or verification support.
type UnsupportedKeyError struct {
	KeyType string
}

func (e UnsupportedKeyError) Error() string {
	return "subnet: unsupported key type for shard signing: " + e.KeyType
}

// NoCertificateError is returned when a Publisher's TLS config has no
// certificate to sign shards with.
type NoCertificateError struct{}

func (e NoCertificateError) Error() string {
	return "subnet: TLS config has no certificates to sign with"
}

// SignatureError is returned when a shard frame's signature fails
// verification against the presenting peer's certificate.
type SignatureError struct {
	Peer      string
	Algorithm string
}

func (e SignatureError) Error() string {
	return fmt.Sprintf("subnet: invalid %s shard signature from peer %s", e.Algorithm, e.Peer)
}

// TerminalFrameError is returned when a received terminal-event frame
// (carrying a Publisher's OnError/OnCompleted notification) cannot be
// decoded.
type TerminalFrameError struct {
	Reason string
}

func (e TerminalFrameError) Error() string {
	return "subnet: malformed terminal frame: " + e.Reason
}
