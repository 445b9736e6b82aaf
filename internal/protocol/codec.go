package protocol

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/klauspost/compress/s2"
	"github.com/vmihailenco/msgpack/v5"
)

var (
	// ErrDecode marks truncated, corrupt or structurally invalid input.
	ErrDecode = errors.New("decode fault")

	// ErrProtocolViolation marks a well formed message that is not allowed
	// in the current session state.
	ErrProtocolViolation = errors.New("protocol violation")
)

// DefaultMaxDecodedSize caps the decompressed size of one message.
const DefaultMaxDecodedSize = 64 << 20

// Codec turns messages into compressed msgpack payloads and back. The zero
// value is ready to use. Encoding is deterministic.
type Codec struct {
	MaxDecodedSize int
}

type envelope struct {
	_msgpack struct{} `msgpack:",as_array"`
	Kind     kind
	Body     msgpack.RawMessage
}

// EncodeClient serializes a client message.
func (c Codec) EncodeClient(msg ClientMessage) ([]byte, error) {
	if msg == nil {
		return nil, fmt.Errorf("encoding nil client message")
	}
	return c.encode(msg.clientKind(), msg)
}

// EncodeServer serializes a server message.
func (c Codec) EncodeServer(msg ServerMessage) ([]byte, error) {
	if msg == nil {
		return nil, fmt.Errorf("encoding nil server message")
	}
	return c.encode(msg.serverKind(), msg)
}

// DecodeClient parses a client message. Any failure matches ErrDecode.
func (c Codec) DecodeClient(data []byte) (ClientMessage, error) {
	env, err := c.open(data)
	if err != nil {
		return nil, err
	}

	switch env.Kind {
	case kindHandshake:
		var m Handshake
		if err := unmarshalBody(env.Body, &m); err != nil {
			return nil, err
		}
		return m, nil

	case kindMoveDir:
		var m MoveDir
		if err := unmarshalBody(env.Body, &m); err != nil {
			return nil, err
		}
		if !m.Dir.Valid() {
			return nil, decodeError("move_dir", fmt.Errorf("unknown direction %d", m.Dir))
		}
		return m, nil

	case kindClientNoop:
		var m ClientNoop
		if err := unmarshalBody(env.Body, &m); err != nil {
			return nil, err
		}
		return m, nil

	default:
		return nil, decodeError("envelope", fmt.Errorf("unknown client message kind %d", env.Kind))
	}
}

// DecodeServer parses a server message. Any failure matches ErrDecode.
func (c Codec) DecodeServer(data []byte) (ServerMessage, error) {
	env, err := c.open(data)
	if err != nil {
		return nil, err
	}

	switch env.Kind {
	case kindSendWorld:
		var m SendWorld
		if err := unmarshalBody(env.Body, &m); err != nil {
			return nil, err
		}
		if err := m.World.Validate(); err != nil {
			return nil, decodeError("send_world", err)
		}
		return m, nil

	case kindServerNoop:
		var m ServerNoop
		if err := unmarshalBody(env.Body, &m); err != nil {
			return nil, err
		}
		return m, nil

	default:
		return nil, decodeError("envelope", fmt.Errorf("unknown server message kind %d", env.Kind))
	}
}

func (c Codec) encode(k kind, body any) ([]byte, error) {
	raw, err := msgpack.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", KindName(body), err)
	}

	packed, err := msgpack.Marshal(&envelope{Kind: k, Body: raw})
	if err != nil {
		return nil, fmt.Errorf("marshalling envelope: %w", err)
	}

	return s2.Encode(nil, packed), nil
}

func (c Codec) open(data []byte) (envelope, error) {
	var env envelope

	n, err := s2.DecodedLen(data)
	if err != nil {
		return env, decodeError("decompressing", err)
	}
	if n > c.maxDecodedSize() {
		return env, decodeError("decompressing", fmt.Errorf("decoded size %d exceeds %d", n, c.maxDecodedSize()))
	}

	raw, err := s2.Decode(nil, data)
	if err != nil {
		return env, decodeError("decompressing", err)
	}

	r := bytes.NewReader(raw)
	if err := msgpack.NewDecoder(r).Decode(&env); err != nil {
		return env, decodeError("envelope", err)
	}
	if r.Len() != 0 {
		return env, decodeError("envelope", fmt.Errorf("%d trailing bytes", r.Len()))
	}
	if len(env.Body) == 0 {
		return env, decodeError("envelope", fmt.Errorf("missing body"))
	}
	return env, nil
}

func (c Codec) maxDecodedSize() int {
	if c.MaxDecodedSize > 0 {
		return c.MaxDecodedSize
	}
	return DefaultMaxDecodedSize
}

func unmarshalBody(body []byte, v any) error {
	if err := msgpack.Unmarshal(body, v); err != nil {
		return decodeError(KindName(v), err)
	}
	return nil
}

func decodeError(stage string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDecode, stage, err)
}
