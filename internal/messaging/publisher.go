package messaging

import (
	"fmt"

	"github.com/pixil98/castlemaker/internal/game"
)

// NatsPublisher announces world events on the subject of the map they
// happened on.
type NatsPublisher struct {
	server *NatsServer
}

func NewNatsPublisher(server *NatsServer) *NatsPublisher {
	return &NatsPublisher{server: server}
}

func (p *NatsPublisher) PublishWorldEvent(ev game.WorldEvent) error {
	data, err := ev.Marshal()
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", ev.Kind, err)
	}
	return p.server.Publish(game.MapSubject(ev.Loc.MapID), data)
}
