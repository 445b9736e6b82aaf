package game

import "github.com/pixil98/castlemaker/internal/stats"

// PlayerGlyph is drawn for every player-controlled entity.
const PlayerGlyph byte = 'P'

// Entity is an occupant of a map. It is owned by the map that allocated it.
type Entity struct {
	Pos   Pos         `msgpack:"pos"`
	Glyph byte        `msgpack:"glyph"`
	Sheet stats.Sheet `msgpack:"sheet"`
}

// NewEntity creates an entity with the default character sheet.
func NewEntity(pos Pos, glyph byte) Entity {
	return Entity{
		Pos:   pos,
		Glyph: glyph,
		Sheet: stats.DefaultSheet(),
	}
}

// Player binds a connected client to its entity. It refers to the entity but
// does not own it.
type Player struct {
	Name     string   `msgpack:"name"`
	MapID    MapID    `msgpack:"map"`
	EntityID EntityID `msgpack:"entity"`
}
