package game

import (
	"fmt"
	"math"
	"strings"

	"github.com/pixil98/go-errors"
)

// Layout is the stored form of a map's terrain: one string per row, one tile
// glyph per cell. Border cells must be walls and every 'L' cell needs a
// matching entry in Links.
type Layout struct {
	Rows  []string     `json:"rows"`
	Links []LayoutLink `json:"links,omitempty"`
}

// LayoutLink gives the destination of the link tile at X,Y.
type LayoutLink struct {
	X     uint16 `json:"x"`
	Y     uint16 `json:"y"`
	ToMap MapID  `json:"to_map"`
	ToX   uint16 `json:"to_x"`
	ToY   uint16 `json:"to_y"`
}

func (l LayoutLink) to() MapLoc {
	return Loc(l.ToMap, l.ToX, l.ToY)
}

func tileForGlyph(g byte) (Tile, bool) {
	switch g {
	case '.':
		return Ground(), true
	case '#':
		return Wall(), true
	case 'D':
		return Door(false), true
	case 'I':
		return Door(true), true
	case 'L':
		return Link(MapLoc{}), true
	default:
		return Tile{}, false
	}
}

func (l *Layout) Validate() error {
	if l == nil || len(l.Rows) == 0 {
		return fmt.Errorf("layout has no rows")
	}

	el := errors.NewErrorList()

	width := len(l.Rows[0])
	if width == 0 {
		el.Add(fmt.Errorf("layout rows are empty"))
	}
	if width > math.MaxUint16 || len(l.Rows) > math.MaxUint16 {
		el.Add(fmt.Errorf("layout is larger than %dx%d", math.MaxUint16, math.MaxUint16))
	}

	links := map[Pos]int{}
	for _, link := range l.Links {
		links[At(link.X, link.Y)]++
	}

	for y, row := range l.Rows {
		if len(row) != width {
			el.Add(fmt.Errorf("row %d is %d wide, expected %d", y, len(row), width))
			continue
		}
		for x := 0; x < len(row); x++ {
			if _, ok := tileForGlyph(row[x]); !ok {
				el.Add(fmt.Errorf("unknown glyph %q at (%d,%d)", row[x], x, y))
				continue
			}
			if (x == 0 || y == 0 || x == width-1 || y == len(l.Rows)-1) && row[x] != '#' {
				el.Add(fmt.Errorf("border cell (%d,%d) is %q, expected '#'", x, y, row[x]))
				continue
			}
			if row[x] == 'L' && links[At(uint16(x), uint16(y))] != 1 {
				el.Add(fmt.Errorf("link at (%d,%d) needs exactly one destination", x, y))
			}
		}
	}

	for _, link := range l.Links {
		if int(link.Y) >= len(l.Rows) || int(link.X) >= width || l.Rows[link.Y][link.X] != 'L' {
			el.Add(fmt.Errorf("link destination given for (%d,%d) which is not a link tile", link.X, link.Y))
		}
	}

	return el.Err()
}

// Build validates the layout and turns it into an empty map.
func (l *Layout) Build() (*Map, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}

	width, height := uint16(len(l.Rows[0])), uint16(len(l.Rows))
	m := &Map{
		Width:  width,
		Height: height,
		Tiles:  make([]Tile, 0, int(width)*int(height)),
	}
	for _, row := range l.Rows {
		for x := 0; x < len(row); x++ {
			t, _ := tileForGlyph(row[x])
			m.Tiles = append(m.Tiles, t)
		}
	}
	for _, link := range l.Links {
		m.Tiles[int(link.Y)*int(width)+int(link.X)] = Link(link.to())
	}

	return m, nil
}

// LayoutOf captures the terrain of m, ignoring entities.
func LayoutOf(m *Map) *Layout {
	l := &Layout{Rows: make([]string, 0, m.Height)}

	var sb strings.Builder
	for y := uint16(0); y < m.Height; y++ {
		sb.Reset()
		for x := uint16(0); x < m.Width; x++ {
			t, _ := m.Tile(At(x, y))
			sb.WriteByte(t.Glyph())
			if t.Kind == TileLink {
				l.Links = append(l.Links, LayoutLink{
					X:     x,
					Y:     y,
					ToMap: t.Link.MapID,
					ToX:   t.Link.Pos.X,
					ToY:   t.Link.Pos.Y,
				})
			}
		}
		l.Rows = append(l.Rows, sb.String())
	}

	return l
}

// CheckLinks reports link tiles whose destination is not a cell of some map
// in the world.
func (w *World) CheckLinks() error {
	el := errors.NewErrorList()
	for id, m := range w.Maps.All() {
		for i, t := range m.Tiles {
			if t.Kind != TileLink {
				continue
			}
			dest, ok := w.Maps.Get(t.Link.MapID)
			if !ok || !dest.InBounds(t.Link.Pos) {
				x, y := i%int(m.Width), i/int(m.Width)
				el.Add(fmt.Errorf("map %d (%d,%d): link to %s leads nowhere", id, x, y, t.Link))
			}
		}
	}
	return el.Err()
}
