package command

import (
	"fmt"
	"log/slog"

	"github.com/pixil98/castlemaker/internal/driver"
	"github.com/pixil98/castlemaker/internal/game"
	"github.com/pixil98/castlemaker/internal/listener"
	"github.com/pixil98/castlemaker/internal/messaging"
	"github.com/pixil98/castlemaker/internal/session"
	"github.com/pixil98/go-service"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	cfg.Log.Install()

	workers := service.WorkerList{}

	var stateOpts []game.WorldStateOpt
	handlerOpts := []session.HandlerOpt{
		session.WithSpawnPoints(cfg.World.spawnLocs()...),
	}

	// Live updates ride on the embedded event bus
	if cfg.Nats.Enabled {
		ns, err := cfg.Nats.buildNatsServer()
		if err != nil {
			return nil, fmt.Errorf("creating nats server: %w", err)
		}
		stateOpts = append(stateOpts, game.WithPublisher(messaging.NewNatsPublisher(ns)))
		handlerOpts = append(handlerOpts, session.WithSubscriber(ns))
		workers["nats"] = ns
	}

	initial, err := cfg.World.buildWorld(true)
	if err != nil {
		return nil, fmt.Errorf("building world: %w", err)
	}
	world := game.NewWorldState(initial, stateOpts...)
	sessions := session.NewManager(session.WithIdleTimeout(cfg.World.idleTimeout()))
	handler := session.NewHandler(world, append(handlerOpts, session.WithManager(sessions))...)
	cm := listener.NewConnectionManager(handler, listener.WithMaxConnections(cfg.MaxConnections))

	// Create Listeners
	lcs := cfg.Listeners
	if len(lcs) == 0 {
		lcs = defaultListeners()
	}
	listeners := make(service.WorkerList, len(lcs))
	for i, l := range lcs {
		listener, err := l.BuildListener(cm)
		if err != nil {
			return nil, fmt.Errorf("creating listener %d: %w", i, err)
		}
		listeners[fmt.Sprintf("listener-%d-%s", i, l.Protocol)] = listener
	}

	// Setup the driver
	workers["driver"] = driver.NewDriver([]driver.Manager{
		world,
		sessions,
	}, driver.WithTickLength(cfg.tickInterval()))
	workers["listeners"] = &listeners

	slog.Info("workers built", "listeners", len(listeners), "nats", cfg.Nats.Enabled)

	return workers, nil
}
