package protocol

import "fmt"

// FrameReader yields one encoded message per call.
type FrameReader interface {
	ReadFrame() ([]byte, error)
}

// FrameWriter sends one encoded message per call.
type FrameWriter interface {
	WriteFrame([]byte) error
}

// ReadClient reads and decodes the next client message.
func (c Codec) ReadClient(r FrameReader) (ClientMessage, error) {
	frame, err := r.ReadFrame()
	if err != nil {
		return nil, err
	}
	return c.DecodeClient(frame)
}

// ReadServer reads and decodes the next server message.
func (c Codec) ReadServer(r FrameReader) (ServerMessage, error) {
	frame, err := r.ReadFrame()
	if err != nil {
		return nil, err
	}
	return c.DecodeServer(frame)
}

// WriteClient encodes msg and sends it as one frame.
func (c Codec) WriteClient(w FrameWriter, msg ClientMessage) error {
	data, err := c.EncodeClient(msg)
	if err != nil {
		return err
	}
	if err := w.WriteFrame(data); err != nil {
		return fmt.Errorf("sending %s: %w", KindName(msg), err)
	}
	return nil
}

// WriteServer encodes msg and sends it as one frame.
func (c Codec) WriteServer(w FrameWriter, msg ServerMessage) error {
	data, err := c.EncodeServer(msg)
	if err != nil {
		return err
	}
	if err := w.WriteFrame(data); err != nil {
		return fmt.Errorf("sending %s: %w", KindName(msg), err)
	}
	return nil
}
