package subnet

import "errors"

// Terminal frames notify a Receiver that the Publisher's source
// Subject has reached OnError or OnCompleted, over the reliable
// control stream opened alongside the datagram transport — mirroring
// breathcast's split between an unreliable steady-state channel and a
// reliable channel for the event that ends the broadcast.
const (
	terminalOpCompleted byte = 1
	terminalOpErrored   byte = 2
)

// encodeTerminalFrame encodes a Publisher's terminal notification. A
// nil err encodes OnCompleted; any other err encodes OnError with its
// message.
func encodeTerminalFrame(err error) []byte {
	if err == nil {
		return []byte{terminalOpCompleted}
	}

	msg := err.Error()
	out := make([]byte, 1+len(msg))
	out[0] = terminalOpErrored
	copy(out[1:], msg)
	return out
}

// decodeTerminalFrame reports whether frame encodes OnCompleted, and
// if not, the error it carries for OnError.
func decodeTerminalFrame(frame []byte) (completed bool, terminalErr error, err error) {
	if len(frame) == 0 {
		return false, nil, TerminalFrameError{Reason: "empty"}
	}

	switch frame[0] {
	case terminalOpCompleted:
		return true, nil, nil
	case terminalOpErrored:
		return false, errors.New(string(frame[1:])), nil
	default:
		return false, nil, TerminalFrameError{Reason: "unrecognized opcode"}
	}
}
