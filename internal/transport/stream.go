package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
)

const headerSize = 4

type streamConn struct {
	rwc    io.ReadWriteCloser
	remote string

	wmu sync.Mutex
	hdr [headerSize]byte
}

// NewStreamConn frames rwc with a 4 byte big endian length prefix.
func NewStreamConn(rwc io.ReadWriteCloser, remote string) Conn {
	return &streamConn{rwc: rwc, remote: remote}
}

// NewNetConn wraps a net.Conn, taking the remote address from it.
func NewNetConn(conn net.Conn) Conn {
	return NewStreamConn(conn, conn.RemoteAddr().String())
}

func (c *streamConn) ReadFrame() ([]byte, error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(c.rwc, hdr[:]); err != nil {
		return nil, err
	}

	n := binary.BigEndian.Uint32(hdr[:])
	if n > MaxFrameSize {
		return nil, fmt.Errorf("reading frame of %d bytes: %w", n, ErrFrameTooLarge)
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(c.rwc, buf); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return buf, nil
}

func (c *streamConn) WriteFrame(p []byte) error {
	if len(p) > MaxFrameSize {
		return fmt.Errorf("writing frame of %d bytes: %w", len(p), ErrFrameTooLarge)
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()

	binary.BigEndian.PutUint32(c.hdr[:], uint32(len(p)))
	if _, err := c.rwc.Write(c.hdr[:]); err != nil {
		return err
	}
	_, err := c.rwc.Write(p)
	return err
}

func (c *streamConn) RemoteAddr() string {
	return c.remote
}

func (c *streamConn) Close() error {
	return c.rwc.Close()
}
