package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/pixil98/castlemaker/internal/display"
	"github.com/pixil98/castlemaker/internal/game"
	"github.com/pixil98/castlemaker/internal/stats"
)

const nameTries = 3

var helpText = display.Wrap(`Commands:
up (u, north, n), down (d, south, s), left (l, west, w) and right (r, east, e) move you one cell. Nothing stops you walking through walls.
look draws the map around you and who lists everyone online.
sheet shows your character sheet and roll rolls your damage and saving throws.
help shows this text and quit leaves the game.
`)

var (
	lookTemplate = display.MustParse("look", `{{ .Map }}You are at {{ .Loc.Pos }} on map {{ .Loc.MapID }}.
{{- with .Others }}
Also here: {{ join ", " . }}.
{{- end }}
`)

	whoTemplate = display.MustParse("who", `{{ len . }} {{ ternary "player" "players" (eq (len .) 1) }} online:
{{ range . }}  {{ printf "%-16s" .Name }} {{ .Loc }}
{{ end }}`)

	sheetTemplate = display.MustParse("sheet", `{{ .Name }}, level {{ .Sheet.Level }} ({{ .Sheet.Experience }} xp)
{{ range .Attrs }}{{ .Attr | toString | upper }} {{ printf "%2d" .Score }} ({{ printf "%+d" .Bonus }})
{{ end -}}
Attack +{{ .Sheet.Attack }}  Damage {{ .Sheet.DamageRoll }}{{ printf "%+d" .Sheet.DamageBonus }}
AC {{ .Sheet.ArmorClass }}  flat-footed {{ .Sheet.FlatFooted }}  touch {{ .Sheet.Touch }}  size {{ .Sheet.Size }}
Saves: fort +{{ .Sheet.BaseSaves.Fortitude }}  ref +{{ .Sheet.BaseSaves.Reflex }}  will +{{ .Sheet.BaseSaves.Will }}
`)
)

type lookData struct {
	Map    string
	Loc    game.MapLoc
	Others []string
}

type whoEntry struct {
	Name string
	Loc  game.MapLoc
}

type attrLine struct {
	Attr  stats.Attribute
	Score uint8
	Bonus int
}

type sheetData struct {
	Name  string
	Sheet stats.Sheet
	Attrs []attrLine
}

// ServeText runs a line based session for terminal clients. rw is closed on
// return when it implements io.Closer.
func (h *Handler) ServeText(ctx context.Context, rw io.ReadWriter, remote string) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	sid := h.sessions.register(remote, "text", cancel)
	defer h.sessions.unregister(sid)

	if c, ok := rw.(io.Closer); ok {
		stop := context.AfterFunc(ctx, func() { _ = c.Close() })
		defer stop()
		defer c.Close()
	}

	return exitError(ctx, h.serveText(ctx, sid, newLineConn(rw)))
}

func (h *Handler) serveText(ctx context.Context, sid uuid.UUID, lc *lineConn) error {
	if err := lc.write("Welcome to castlemaker.\n"); err != nil {
		return err
	}

	raw, err := lc.prompt("By what name are you known? ", withMaxTries(nameTries), withValidator(
		func(s string) (bool, string) {
			if _, err := NormalizeName(s); err != nil {
				return false, fmt.Sprintf("Names are 1 to %d letters or digits.\n", MaxNameLength)
			}
			return true, ""
		},
	))
	if err != nil {
		return err
	}
	name, _ := NormalizeName(raw)

	id, _, err := h.join(ctx, sid, name)
	if errors.Is(err, ErrNoSpawn) {
		_ = lc.write("There is no room for you right now. Try again later.\n")
		return err
	}
	if err != nil {
		return err
	}
	defer h.leave(ctx, id)

	if err := lc.printf("Hello, %s.\n", name); err != nil {
		return err
	}
	if err := h.look(lc, id); err != nil {
		return err
	}

	for {
		if err := lc.write("> "); err != nil {
			return err
		}
		line, err := lc.readLine()
		if err != nil {
			return err
		}
		h.sessions.touch(sid)

		quit, err := h.exec(lc, id, line)
		if err != nil || quit {
			return err
		}
	}
}

func (h *Handler) exec(lc *lineConn, id game.PlayerID, line string) (bool, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return false, nil
	}

	if dir, ok := game.ParseDir(fields[0]); ok {
		if err := h.world.MovePlayer(id, dir); err != nil {
			return false, fmt.Errorf("moving player %d: %w", id, err)
		}
		return false, h.look(lc, id)
	}

	switch fields[0] {
	case "look":
		return false, h.look(lc, id)
	case "who":
		return false, h.who(lc)
	case "sheet":
		return false, h.sheet(lc, id)
	case "roll":
		return false, h.roll(lc, id)
	case "help":
		return false, lc.write(helpText)
	case "quit":
		return true, lc.write("Farewell.\n")
	default:
		return false, lc.printf("Unknown command %q. Type 'help' for a list of commands.\n", fields[0])
	}
}

func (h *Handler) look(lc *lineConn, id game.PlayerID) error {
	var data lookData
	var err error
	h.world.View(func(w *game.World) {
		p, ok := w.Player(id)
		if !ok {
			err = game.ErrPlayerNotFound
			return
		}
		var e game.Entity
		if e, err = w.PlayerEntity(id); err != nil {
			return
		}
		m, _ := w.Map(p.MapID)

		data.Map = m.Render()
		data.Loc = game.MapLoc{MapID: p.MapID, Pos: e.Pos}
		for _, other := range w.Players.Keys() {
			op, _ := w.Player(other)
			if other != id && op.MapID == p.MapID {
				data.Others = append(data.Others, op.Name)
			}
		}
	})
	if err != nil {
		return fmt.Errorf("looking for player %d: %w", id, err)
	}

	out, err := lookTemplate.Expand(data)
	if err != nil {
		return err
	}
	return lc.write(out)
}

func (h *Handler) who(lc *lineConn) error {
	var entries []whoEntry
	h.world.View(func(w *game.World) {
		for _, id := range w.Players.Keys() {
			p, _ := w.Player(id)
			e, err := w.PlayerEntity(id)
			if err != nil {
				continue
			}
			entries = append(entries, whoEntry{Name: p.Name, Loc: game.MapLoc{MapID: p.MapID, Pos: e.Pos}})
		}
	})

	out, err := whoTemplate.Expand(entries)
	if err != nil {
		return err
	}
	return lc.write(out)
}

func (h *Handler) playerSheet(id game.PlayerID) (string, stats.Sheet, error) {
	var name string
	var sheet stats.Sheet
	var err error
	h.world.View(func(w *game.World) {
		p, ok := w.Player(id)
		if !ok {
			err = game.ErrPlayerNotFound
			return
		}
		var e game.Entity
		if e, err = w.PlayerEntity(id); err != nil {
			return
		}
		name, sheet = p.Name, e.Sheet
	})
	return name, sheet, err
}

func (h *Handler) sheet(lc *lineConn, id game.PlayerID) error {
	name, sheet, err := h.playerSheet(id)
	if err != nil {
		return fmt.Errorf("reading sheet for player %d: %w", id, err)
	}

	data := sheetData{Name: name, Sheet: sheet}
	for _, attr := range stats.AllAttributes {
		score := sheet.Attributes.Score(attr)
		data.Attrs = append(data.Attrs, attrLine{Attr: attr, Score: score, Bonus: stats.Bonus(score)})
	}

	out, err := sheetTemplate.Expand(data)
	if err != nil {
		return err
	}
	return lc.write(out)
}

func (h *Handler) roll(lc *lineConn, id game.PlayerID) error {
	_, sheet, err := h.playerSheet(id)
	if err != nil {
		return fmt.Errorf("reading sheet for player %d: %w", id, err)
	}

	return lc.printf("Damage %s%+d: %d. Saves: fort %d, ref %d, will %d.\n",
		sheet.DamageRoll, sheet.DamageBonus(), sheet.Damage(h.roller),
		sheet.Roll(stats.Fortitude, h.roller, 0),
		sheet.Roll(stats.Reflex, h.roller, 0),
		sheet.Roll(stats.Will, h.roller, 0),
	)
}
