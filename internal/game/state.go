package game

import (
	"context"
	"log/slog"

	"github.com/sasha-s/go-deadlock"
)

// WorldState is the single source of truth for the shared world. Reads take
// the shared lock and mutations take the exclusive lock; nothing else may
// touch the World it guards.
type WorldState struct {
	mu        deadlock.RWMutex
	world     World
	publisher Publisher
}

type WorldStateOpt func(*WorldState)

// WithPublisher announces every committed mutation to p.
func WithPublisher(p Publisher) WorldStateOpt {
	return func(w *WorldState) {
		w.publisher = p
	}
}

// NewWorldState takes ownership of world.
func NewWorldState(world World, opts ...WorldStateOpt) *WorldState {
	ws := &WorldState{world: world}
	for _, opt := range opts {
		opt(ws)
	}
	return ws
}

// Snapshot returns a deep copy of the world. The lock is released before the
// copy is handed back, so callers can encode it at leisure.
func (w *WorldState) Snapshot() World {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.world.Clone()
}

// View runs fn with shared access. fn must not retain or modify the world.
func (w *WorldState) View(fn func(*World)) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	fn(&w.world)
}

// PlayerCount returns the number of live players.
func (w *WorldState) PlayerCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.world.Players.Len()
}

// AddPlayer places a new player at loc, see World.AddPlayer.
func (w *WorldState) AddPlayer(name string, loc MapLoc) (PlayerID, bool) {
	w.mu.Lock()
	id, ok := w.world.AddPlayer(name, loc)
	w.mu.Unlock()

	if ok {
		w.publish(WorldEvent{Kind: EventJoined, PlayerID: id, Loc: loc})
	}
	return id, ok
}

// MovePlayer moves a player one cell, see World.MovePlayer.
func (w *WorldState) MovePlayer(id PlayerID, dir Dir) error {
	w.mu.Lock()
	loc, err := w.world.MovePlayer(id, dir)
	w.mu.Unlock()

	if err != nil {
		return err
	}
	w.publish(WorldEvent{Kind: EventMoved, PlayerID: id, Loc: loc})
	return nil
}

// RemovePlayer deletes a player and its entity.
func (w *WorldState) RemovePlayer(id PlayerID) error {
	w.mu.Lock()
	var loc MapLoc
	p, err := w.world.RemovePlayer(id)
	if err == nil {
		loc.MapID = p.MapID
	}
	w.mu.Unlock()

	if err != nil {
		return err
	}
	w.publish(WorldEvent{Kind: EventLeft, PlayerID: id, Loc: loc})
	return nil
}

// Tick reports world status. It satisfies driver.Manager.
func (w *WorldState) Tick(ctx context.Context) error {
	w.mu.RLock()
	maps, players := w.world.Maps.Len(), w.world.Players.Len()
	w.mu.RUnlock()

	slog.DebugContext(ctx, "world status", "maps", maps, "players", players)
	return nil
}

func (w *WorldState) publish(ev WorldEvent) {
	if w.publisher == nil {
		return
	}
	if err := w.publisher.PublishWorldEvent(ev); err != nil {
		slog.Warn("publishing world event", "kind", ev.Kind, "player", ev.PlayerID, "error", err)
	}
}
