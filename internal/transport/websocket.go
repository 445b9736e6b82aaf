package transport

import (
	"fmt"
	"io"
	"sync"

	"github.com/gorilla/websocket"
)

type wsConn struct {
	ws  *websocket.Conn
	wmu sync.Mutex
}

// NewWebSocketConn carries one frame per binary websocket message.
func NewWebSocketConn(ws *websocket.Conn) Conn {
	ws.SetReadLimit(MaxFrameSize)
	return &wsConn{ws: ws}
}

func (c *wsConn) ReadFrame() ([]byte, error) {
	mt, data, err := c.ws.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return nil, io.EOF
		}
		if err == websocket.ErrReadLimit {
			return nil, fmt.Errorf("reading websocket message: %w", ErrFrameTooLarge)
		}
		return nil, err
	}
	if mt != websocket.BinaryMessage {
		return nil, fmt.Errorf("websocket message type %d: %w", mt, ErrUnexpectedMessageType)
	}
	return data, nil
}

func (c *wsConn) WriteFrame(p []byte) error {
	if len(p) > MaxFrameSize {
		return fmt.Errorf("writing frame of %d bytes: %w", len(p), ErrFrameTooLarge)
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()

	return c.ws.WriteMessage(websocket.BinaryMessage, p)
}

func (c *wsConn) RemoteAddr() string {
	return c.ws.RemoteAddr().String()
}

func (c *wsConn) Close() error {
	c.wmu.Lock()
	_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.wmu.Unlock()
	return c.ws.Close()
}
