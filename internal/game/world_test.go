package game

import (
	"errors"
	"strings"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestNewDefaultWorld(t *testing.T) {
	w := NewDefaultWorld()

	testutil.AssertEqual(t, "map count", w.Maps.Len(), 1)
	testutil.AssertEqual(t, "player count", w.Players.Len(), 0)

	m, ok := w.Map(0)
	testutil.AssertEqual(t, "map 0 exists", ok, true)
	testutil.AssertEqual(t, "width", m.Width, uint16(DefaultWidth))
	testutil.AssertEqual(t, "height", m.Height, uint16(DefaultHeight))
}

func TestWorld_AddPlayer(t *testing.T) {
	tests := map[string]struct {
		loc   MapLoc
		expOk bool
	}{
		"valid ground": {loc: Loc(0, 2, 3), expOk: true},
		"wall":         {loc: Loc(0, 0, 0), expOk: false},
		"out of bounds": {
			loc:   Loc(0, 200, 3),
			expOk: false,
		},
		"unknown map": {loc: Loc(7, 2, 3), expOk: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			w := NewDefaultWorld()

			id, ok := w.AddPlayer("Lolz", tt.loc)
			testutil.AssertEqual(t, "added", ok, tt.expOk)

			if !tt.expOk {
				testutil.AssertEqual(t, "player count", w.Players.Len(), 0)
				return
			}

			p, found := w.Player(id)
			testutil.AssertEqual(t, "player found", found, true)
			testutil.AssertEqual(t, "name", p.Name, "Lolz")
			testutil.AssertEqual(t, "map", p.MapID, tt.loc.MapID)

			e, err := w.PlayerEntity(id)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "entity pos", e.Pos, tt.loc.Pos)
		})
	}
}

func TestWorld_AddPlayerOccupied(t *testing.T) {
	w := NewDefaultWorld()

	first, ok := w.AddPlayer("One", Loc(0, 2, 3))
	testutil.AssertEqual(t, "first", ok, true)
	_, ok = w.AddPlayer("Two", Loc(0, 2, 3))
	testutil.AssertEqual(t, "second", ok, false)

	second, ok := w.AddPlayer("Two", Loc(0, 3, 3))
	testutil.AssertEqual(t, "elsewhere", ok, true)
	if second <= first {
		t.Errorf("player id %d not greater than %d", second, first)
	}
}

func TestWorld_RenderScenario(t *testing.T) {
	w := NewDefaultWorld()
	if _, ok := w.AddPlayer("Lolz", Loc(0, 2, 3)); !ok {
		t.Fatal("expected player to be added")
	}

	m, _ := w.Map(0)
	rows := strings.Split(strings.TrimSuffix(m.Render(), "\n"), "\n")
	testutil.AssertEqual(t, "row count", len(rows), 12)

	for y, row := range rows {
		testutil.AssertEqual(t, "row width", len(row), 20)
		for x := 0; x < len(row); x++ {
			var exp byte
			switch {
			case x == 2 && y == 3:
				exp = 'P'
			case x == 0 || y == 0 || x == 19 || y == 11:
				exp = '#'
			default:
				exp = '.'
			}
			if row[x] != exp {
				t.Errorf("cell %d,%d = %q, expected %q", x, y, row[x], exp)
			}
		}
	}
}

func TestWorld_MovePlayer(t *testing.T) {
	w := NewDefaultWorld()
	id, _ := w.AddPlayer("Lolz", Loc(0, 2, 3))

	loc, err := w.MovePlayer(id, DirRight)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "loc", loc, Loc(0, 3, 3))

	_, err = w.MovePlayer(id+1, DirRight)
	if !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("error = %v, expected %v", err, ErrPlayerNotFound)
	}
}

func TestWorld_RemovePlayer(t *testing.T) {
	w := NewDefaultWorld()
	id, _ := w.AddPlayer("Lolz", Loc(0, 2, 3))

	p, err := w.RemovePlayer(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "removed name", p.Name, "Lolz")
	testutil.AssertEqual(t, "player count", w.Players.Len(), 0)

	m, _ := w.Map(0)
	testutil.AssertEqual(t, "entity count", m.Entities.Len(), 0)

	_, err = w.RemovePlayer(id)
	if !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("error = %v, expected %v", err, ErrPlayerNotFound)
	}

	// The spawn is free again but ids move on.
	next, ok := w.AddPlayer("Again", Loc(0, 2, 3))
	testutil.AssertEqual(t, "respawn", ok, true)
	if next == id {
		t.Errorf("player id %d was reused", id)
	}
}

func TestWorld_Clone(t *testing.T) {
	w := NewDefaultWorld()
	id, _ := w.AddPlayer("Lolz", Loc(0, 2, 3))

	snap := w.Clone()
	if _, err := w.MovePlayer(id, DirDown); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w.AddPlayer("Other", Loc(0, 8, 8))

	e, err := snap.PlayerEntity(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "snapshot pos", e.Pos, At(2, 3))
	testutil.AssertEqual(t, "snapshot players", snap.Players.Len(), 1)
}

func TestWorld_Validate(t *testing.T) {
	w := NewDefaultWorld()
	id, _ := w.AddPlayer("Lolz", Loc(0, 2, 3))
	if err := w.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, _ := w.Player(id)
	p.EntityID = 40
	w.Players.Set(id, p)
	if err := w.Validate(); !errors.Is(err, ErrEntityNotFound) {
		t.Errorf("error = %v, expected %v", err, ErrEntityNotFound)
	}
}
