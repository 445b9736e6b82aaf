package main

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/pixil98/castlemaker/internal/game"
)

func formatPlayers(w game.World) string {
	var sb strings.Builder
	for _, id := range w.Players.Keys() {
		p, _ := w.Player(id)
		fmt.Fprintf(&sb, "id %d: %s\n", id, p.Name)
	}
	return sb.String()
}

func formatMap(w game.World, id game.MapID) string {
	m, ok := w.Map(id)
	if !ok {
		return fmt.Sprintf("map %d missing\n", id)
	}
	return m.Render()
}

// formatWorld lists the players, then draws map 0.
func formatWorld(w game.World) string {
	return formatPlayers(w) + formatMap(w, 0)
}

func keyDir(ev *tcell.EventKey) (game.Dir, bool) {
	switch ev.Key() {
	case tcell.KeyUp:
		return game.DirUp, true
	case tcell.KeyDown:
		return game.DirDown, true
	case tcell.KeyLeft:
		return game.DirLeft, true
	case tcell.KeyRight:
		return game.DirRight, true
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'w', 'W':
			return game.DirUp, true
		case 's', 'S':
			return game.DirDown, true
		case 'a', 'A':
			return game.DirLeft, true
		case 'd', 'D':
			return game.DirRight, true
		}
	}
	return 0, false
}

func isQuit(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q' || ev.Rune() == 'Q'
	}
	return false
}
