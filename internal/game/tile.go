package game

import "fmt"

type MapID uint64
type EntityID uint64
type PlayerID uint64

// Pos is a cell coordinate inside one map.
type Pos struct {
	_msgpack struct{} `msgpack:",as_array"`
	X        uint16
	Y        uint16
}

// At builds a Pos.
func At(x, y uint16) Pos {
	return Pos{X: x, Y: y}
}

// Step returns the neighbouring cell in dir. Coordinates wrap on overflow.
func (p Pos) Step(dir Dir) Pos {
	switch dir {
	case DirUp:
		p.Y--
	case DirDown:
		p.Y++
	case DirLeft:
		p.X--
	case DirRight:
		p.X++
	}
	return p
}

func (p Pos) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// MapLoc addresses a cell anywhere in the world.
type MapLoc struct {
	_msgpack struct{} `msgpack:",as_array"`
	MapID    MapID
	Pos      Pos
}

// Loc builds a MapLoc.
func Loc(mapId MapID, x, y uint16) MapLoc {
	return MapLoc{MapID: mapId, Pos: At(x, y)}
}

func (l MapLoc) String() string {
	return fmt.Sprintf("map %d %s", l.MapID, l.Pos)
}

// Dir is a movement direction.
type Dir uint8

const (
	DirUp Dir = iota
	DirDown
	DirLeft
	DirRight
)

// Valid reports whether d is one of the four directions.
func (d Dir) Valid() bool {
	return d <= DirRight
}

func (d Dir) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return fmt.Sprintf("Dir(%d)", uint8(d))
	}
}

// ParseDir accepts direction names, compass aliases and their first letters.
func ParseDir(s string) (Dir, bool) {
	switch s {
	case "up", "u", "north", "n":
		return DirUp, true
	case "down", "d", "south", "s":
		return DirDown, true
	case "left", "l", "west", "w":
		return DirLeft, true
	case "right", "r", "east", "e":
		return DirRight, true
	default:
		return 0, false
	}
}

// TileKind discriminates Tile.
type TileKind uint8

const (
	TileGround TileKind = iota
	TileWall
	TileLink
	TileDoor
)

// Tile is one grid cell. Link is only meaningful for TileLink and Open only
// for TileDoor.
type Tile struct {
	_msgpack struct{} `msgpack:",as_array"`
	Kind     TileKind
	Link     MapLoc
	Open     bool
}

func Ground() Tile { return Tile{Kind: TileGround} }
func Wall() Tile   { return Tile{Kind: TileWall} }

// Link is a portal to another map location.
func Link(to MapLoc) Tile { return Tile{Kind: TileLink, Link: to} }

// Door is a door that is either open or closed.
func Door(open bool) Tile { return Tile{Kind: TileDoor, Open: open} }

// Glyph is the character used to draw the tile.
func (t Tile) Glyph() byte {
	switch t.Kind {
	case TileGround:
		return '.'
	case TileWall:
		return '#'
	case TileLink:
		return 'L'
	case TileDoor:
		if t.Open {
			return 'I'
		}
		return 'D'
	default:
		return '?'
	}
}

func (t Tile) valid() bool {
	return t.Kind <= TileDoor
}
