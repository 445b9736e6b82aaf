package game

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// EventKind describes what happened to a player.
type EventKind uint8

const (
	EventJoined EventKind = iota
	EventMoved
	EventLeft
)

func (k EventKind) String() string {
	switch k {
	case EventJoined:
		return "joined"
	case EventMoved:
		return "moved"
	case EventLeft:
		return "left"
	default:
		return fmt.Sprintf("EventKind(%d)", uint8(k))
	}
}

// WorldEvent announces a committed change to the world.
type WorldEvent struct {
	Kind     EventKind `msgpack:"kind"`
	PlayerID PlayerID  `msgpack:"player"`
	Loc      MapLoc    `msgpack:"loc"`
}

// Marshal encodes the event for the wire.
func (e WorldEvent) Marshal() ([]byte, error) {
	return msgpack.Marshal(&e)
}

// UnmarshalWorldEvent decodes an event produced by WorldEvent.Marshal.
func UnmarshalWorldEvent(data []byte) (WorldEvent, error) {
	var e WorldEvent
	if err := msgpack.Unmarshal(data, &e); err != nil {
		return WorldEvent{}, fmt.Errorf("decoding world event: %w", err)
	}
	return e, nil
}

// Publisher receives an event after every committed mutation.
type Publisher interface {
	PublishWorldEvent(WorldEvent) error
}

// MapSubject is the subject events for a map are published on.
func MapSubject(id MapID) string {
	return fmt.Sprintf("castlemaker.map.%d", id)
}
