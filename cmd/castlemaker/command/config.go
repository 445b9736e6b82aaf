package command

import (
	"fmt"
	"time"

	"github.com/pixil98/castlemaker/internal/logging"
	"github.com/pixil98/go-errors"
)

type Config struct {
	TickInterval   string           `json:"tick_interval"`
	MaxConnections int              `json:"max_connections"`
	Listeners      []ListenerConfig `json:"listeners"`
	Nats           NatsConfig       `json:"nats"`
	Log            logging.Config   `json:"log"`
	World          WorldConfig      `json:"world"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if c.TickInterval != "" {
		d, err := time.ParseDuration(c.TickInterval)
		if err != nil {
			el.Add(fmt.Errorf("parsing tick_interval: %w", err))
		} else if d < time.Second {
			el.Add(fmt.Errorf("tick_interval must be at least 1 second"))
		}
	}

	if c.MaxConnections < 0 {
		el.Add(fmt.Errorf("max_connections must not be negative"))
	}

	ports := map[uint16]int{}
	for i, l := range c.Listeners {
		if err := l.validate(); err != nil {
			el.Add(fmt.Errorf("listener %d: %w", i, err))
		}
		if j, dup := ports[l.Port]; dup {
			el.Add(fmt.Errorf("listener %d: port %d already used by listener %d", i, l.Port, j))
		}
		ports[l.Port] = i
	}

	if err := c.Nats.validate(); err != nil {
		el.Add(fmt.Errorf("nats: %w", err))
	}
	if err := c.Log.Validate(); err != nil {
		el.Add(fmt.Errorf("log: %w", err))
	}
	if err := c.World.validate(); err != nil {
		el.Add(fmt.Errorf("world: %w", err))
	}

	return el.Err()
}

func (c *Config) tickInterval() time.Duration {
	d, err := time.ParseDuration(c.TickInterval)
	if err != nil {
		return 0
	}
	return d
}
