package client

import (
	"fmt"

	"github.com/pixil98/castlemaker/internal/game"
	"github.com/pixil98/castlemaker/internal/protocol"
	"github.com/pixil98/castlemaker/internal/transport"
)

// Client speaks the binary protocol over an established connection. One
// goroutine may call Next while others send; Close may be called at any time.
type Client struct {
	conn  transport.Conn
	codec protocol.Codec
}

func New(conn transport.Conn) *Client {
	return &Client{conn: conn}
}

// Handshake joins the game as name and returns the first snapshot.
func (c *Client) Handshake(name string) (game.World, error) {
	if err := c.codec.WriteClient(c.conn, protocol.Handshake{Name: name, Version: protocol.ProtocolVersion}); err != nil {
		return game.World{}, err
	}
	return c.Next()
}

// Move asks the server to move this client's player. The resulting snapshot
// is read with Next.
func (c *Client) Move(dir game.Dir) error {
	return c.codec.WriteClient(c.conn, protocol.MoveDir{Dir: dir})
}

// Noop asks for a fresh snapshot.
func (c *Client) Noop() error {
	return c.codec.WriteClient(c.conn, protocol.ClientNoop{})
}

// Next blocks until the server sends a world snapshot.
func (c *Client) Next() (game.World, error) {
	for {
		msg, err := c.codec.ReadServer(c.conn)
		if err != nil {
			return game.World{}, err
		}

		switch m := msg.(type) {
		case protocol.SendWorld:
			return m.World, nil
		case protocol.ServerNoop:
			continue
		default:
			return game.World{}, fmt.Errorf("%w: unexpected %s", protocol.ErrProtocolViolation, protocol.KindName(msg))
		}
	}
}

func (c *Client) Close() error {
	return c.conn.Close()
}
