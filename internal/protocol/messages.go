package protocol

import "github.com/pixil98/castlemaker/internal/game"

const (
	// ProtocolVersion must match between client and server handshakes.
	ProtocolVersion uint16 = 1

	// DefaultPort is the TCP port the server listens on by default.
	DefaultPort = 4335

	// SSHChannelType is the ssh channel clients open to speak the protocol.
	SSHChannelType = "castlemaker"
)

type kind uint8

const (
	kindHandshake kind = iota + 1
	kindMoveDir
	kindClientNoop
	kindSendWorld
	kindServerNoop
)

// ClientMessage is a message sent from a client to the server.
type ClientMessage interface {
	clientKind() kind
}

// ServerMessage is a message sent from the server to a client.
type ServerMessage interface {
	serverKind() kind
}

// Handshake opens a session. It must be the first message a client sends.
type Handshake struct {
	Name    string `msgpack:"name"`
	Version uint16 `msgpack:"version"`
}

// MoveDir asks the server to move the client's player one cell.
type MoveDir struct {
	Dir game.Dir `msgpack:"dir"`
}

// ClientNoop asks for a fresh snapshot without changing anything.
type ClientNoop struct{}

// SendWorld carries a full world snapshot.
type SendWorld struct {
	World game.World `msgpack:"world"`
}

// ServerNoop carries nothing.
type ServerNoop struct{}

func (Handshake) clientKind() kind  { return kindHandshake }
func (MoveDir) clientKind() kind    { return kindMoveDir }
func (ClientNoop) clientKind() kind { return kindClientNoop }
func (SendWorld) serverKind() kind  { return kindSendWorld }
func (ServerNoop) serverKind() kind { return kindServerNoop }

// KindName names a message for logs and errors.
func KindName(msg any) string {
	switch msg.(type) {
	case Handshake, *Handshake:
		return "handshake"
	case MoveDir, *MoveDir:
		return "move_dir"
	case ClientNoop, *ClientNoop, ServerNoop, *ServerNoop:
		return "noop"
	case SendWorld, *SendWorld:
		return "send_world"
	default:
		return "unknown"
	}
}
