package game

import (
	"fmt"

	"github.com/pixil98/castlemaker/internal/idmap"
)

// World is the complete game state: every map and every player. World itself
// does no locking; shared access goes through WorldState.
type World struct {
	Maps    idmap.CounterMap[MapID, *Map]      `msgpack:"maps"`
	Players idmap.CounterMap[PlayerID, Player] `msgpack:"players"`
}

// NewWorld creates a world holding a single width x height map.
func NewWorld(width, height uint16) World {
	var w World
	w.Maps.Push(NewMap(width, height))
	return w
}

// NewDefaultWorld creates a world with one DefaultWidth x DefaultHeight map.
func NewDefaultWorld() World {
	return NewWorld(DefaultWidth, DefaultHeight)
}

// Map returns the map with the given id.
func (w *World) Map(id MapID) (*Map, bool) {
	return w.Maps.Get(id)
}

// Player returns the player with the given id.
func (w *World) Player(id PlayerID) (Player, bool) {
	return w.Players.Get(id)
}

// PlayerEntity resolves a player to the entity it controls.
func (w *World) PlayerEntity(id PlayerID) (Entity, error) {
	p, ok := w.Players.Get(id)
	if !ok {
		return Entity{}, ErrPlayerNotFound
	}
	m, ok := w.Maps.Get(p.MapID)
	if !ok {
		return Entity{}, fmt.Errorf("player %d: %w", id, ErrMapNotFound)
	}
	e, ok := m.Entity(p.EntityID)
	if !ok {
		return Entity{}, fmt.Errorf("player %d: %w", id, ErrEntityNotFound)
	}
	return e, nil
}

// AddPlayer places a new player entity at loc. When the map refuses the
// placement no player is created and ok is false.
func (w *World) AddPlayer(name string, loc MapLoc) (PlayerID, bool) {
	m, ok := w.Maps.Get(loc.MapID)
	if !ok {
		return 0, false
	}

	entityId, ok := m.PlaceEntity(loc.Pos, PlayerGlyph)
	if !ok {
		return 0, false
	}

	return w.Players.Push(Player{
		Name:     name,
		MapID:    loc.MapID,
		EntityID: entityId,
	}), true
}

// MovePlayer moves the player's entity one cell in dir and returns where it
// ended up.
func (w *World) MovePlayer(id PlayerID, dir Dir) (MapLoc, error) {
	p, ok := w.Players.Get(id)
	if !ok {
		return MapLoc{}, ErrPlayerNotFound
	}
	m, ok := w.Maps.Get(p.MapID)
	if !ok {
		return MapLoc{}, fmt.Errorf("player %d: %w", id, ErrMapNotFound)
	}
	if !m.MoveEntity(p.EntityID, dir) {
		return MapLoc{}, fmt.Errorf("player %d: %w", id, ErrEntityNotFound)
	}

	e, _ := m.Entity(p.EntityID)
	return MapLoc{MapID: p.MapID, Pos: e.Pos}, nil
}

// RemovePlayer deletes the player and the entity it controls.
func (w *World) RemovePlayer(id PlayerID) (Player, error) {
	p, ok := w.Players.Get(id)
	if !ok {
		return Player{}, ErrPlayerNotFound
	}

	if m, ok := w.Maps.Get(p.MapID); ok {
		m.RemoveEntity(p.EntityID)
	}
	w.Players.Delete(id)
	return p, nil
}

// Clone returns a fully independent copy of the world.
func (w *World) Clone() World {
	return World{
		Maps:    w.Maps.Clone((*Map).Clone),
		Players: w.Players.Clone(nil),
	}
}

// Validate checks the invariants a decoded world must satisfy: every map is
// well formed and every player resolves to a live entity.
func (w *World) Validate() error {
	for id, m := range w.Maps.All() {
		if m == nil {
			return fmt.Errorf("map %d: missing", id)
		}
		if err := m.Validate(); err != nil {
			return fmt.Errorf("map %d: %w", id, err)
		}
	}
	for id := range w.Players.All() {
		if _, err := w.PlayerEntity(id); err != nil {
			return err
		}
	}
	return nil
}
