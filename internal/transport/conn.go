package transport

import (
	"errors"
	"io"
)

// MaxFrameSize bounds the payload of a single frame.
const MaxFrameSize = 16 << 20

var (
	ErrFrameTooLarge         = errors.New("frame too large")
	ErrUnexpectedMessageType = errors.New("unexpected message type")
)

// Conn carries whole frames in both directions. WriteFrame is safe for
// concurrent use; ReadFrame must only be called from one goroutine.
//
// ReadFrame returns io.EOF when the peer closed cleanly between frames and
// io.ErrUnexpectedEOF when it vanished mid-frame.
type Conn interface {
	ReadFrame() ([]byte, error)
	WriteFrame([]byte) error
	RemoteAddr() string
	io.Closer
}
