package game

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pixil98/castlemaker/internal/idmap"
)

const (
	DefaultWidth  = 20
	DefaultHeight = 12
)

// Map is a fixed size tile grid and the entities placed on it.
type Map struct {
	Width    uint16                             `msgpack:"w"`
	Height   uint16                             `msgpack:"h"`
	Tiles    []Tile                             `msgpack:"tiles"`
	Entities idmap.CounterMap[EntityID, Entity] `msgpack:"entities"`
}

// NewMap builds a width x height map walled in on every border cell with
// ground everywhere else.
func NewMap(width, height uint16) *Map {
	tiles := make([]Tile, int(width)*int(height))
	for y := uint16(0); y < height; y++ {
		for x := uint16(0); x < width; x++ {
			if x == 0 || y == 0 || x == width-1 || y == height-1 {
				tiles[int(y)*int(width)+int(x)] = Wall()
			} else {
				tiles[int(y)*int(width)+int(x)] = Ground()
			}
		}
	}

	return &Map{
		Width:  width,
		Height: height,
		Tiles:  tiles,
	}
}

// InBounds reports whether pos lies on the grid.
func (m *Map) InBounds(pos Pos) bool {
	return pos.X < m.Width && pos.Y < m.Height
}

// Tile returns the tile at pos.
func (m *Map) Tile(pos Pos) (Tile, bool) {
	if !m.InBounds(pos) {
		return Tile{}, false
	}
	return m.Tiles[int(pos.Y)*int(m.Width)+int(pos.X)], true
}

// Entity returns the entity with the given id.
func (m *Map) Entity(id EntityID) (Entity, bool) {
	return m.Entities.Get(id)
}

// EntityAt returns the entity standing on pos. When several entities share a
// cell the lowest id wins.
func (m *Map) EntityAt(pos Pos) (EntityID, bool) {
	for _, id := range m.Entities.Keys() {
		e, _ := m.Entities.Get(id)
		if e.Pos == pos {
			return id, true
		}
	}
	return 0, false
}

// PlaceEntity allocates a new entity on pos. Placement is refused unless pos
// is an unoccupied ground tile; a refusal is an ordinary outcome.
func (m *Map) PlaceEntity(pos Pos, glyph byte) (EntityID, bool) {
	tile, ok := m.Tile(pos)
	if !ok || tile.Kind != TileGround {
		return 0, false
	}
	if _, occupied := m.EntityAt(pos); occupied {
		return 0, false
	}

	return m.Entities.Push(NewEntity(pos, glyph)), true
}

// MoveEntity shifts the entity one cell in dir. The destination is not
// checked for bounds, walls or other occupants.
func (m *Map) MoveEntity(id EntityID, dir Dir) bool {
	e, ok := m.Entities.Get(id)
	if !ok {
		return false
	}

	e.Pos = e.Pos.Step(dir)
	return m.Entities.Set(id, e)
}

// RemoveEntity deletes the entity. Its id is never reissued.
func (m *Map) RemoveEntity(id EntityID) bool {
	return m.Entities.Delete(id)
}

// Render draws the map one row per line, entity glyphs over tile glyphs.
func (m *Map) Render() string {
	glyphs := make(map[Pos]byte, m.Entities.Len())
	for _, id := range m.Entities.Keys() {
		e, _ := m.Entities.Get(id)
		if _, taken := glyphs[e.Pos]; !taken {
			glyphs[e.Pos] = e.Glyph
		}
	}

	var sb strings.Builder
	sb.Grow((int(m.Width) + 1) * int(m.Height))
	for y := uint16(0); y < m.Height; y++ {
		for x := uint16(0); x < m.Width; x++ {
			pos := At(x, y)
			if g, ok := glyphs[pos]; ok {
				sb.WriteByte(g)
				continue
			}
			t, _ := m.Tile(pos)
			sb.WriteByte(t.Glyph())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (m *Map) String() string {
	return m.Render()
}

// Clone returns a deep copy.
func (m *Map) Clone() *Map {
	return &Map{
		Width:    m.Width,
		Height:   m.Height,
		Tiles:    slices.Clone(m.Tiles),
		Entities: m.Entities.Clone(nil),
	}
}

// Validate checks the structural invariants a decoded map must satisfy.
func (m *Map) Validate() error {
	if int(m.Width)*int(m.Height) != len(m.Tiles) {
		return fmt.Errorf("%dx%d map has %d tiles", m.Width, m.Height, len(m.Tiles))
	}
	for i, t := range m.Tiles {
		if !t.valid() {
			return fmt.Errorf("tile %d has unknown kind %d", i, t.Kind)
		}
	}
	return nil
}
