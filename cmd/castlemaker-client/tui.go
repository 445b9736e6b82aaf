package main

import (
	"github.com/gdamore/tcell/v2"
	"github.com/pixil98/castlemaker/internal/client"
	"github.com/pixil98/castlemaker/internal/game"
	"github.com/rivo/tview"
)

func runTUI(c *client.Client, first game.World) error {
	app := tview.NewApplication()

	mapView := tview.NewTextView()
	mapView.SetBorder(true).SetTitle(" castlemaker ")

	players := tview.NewTextView()
	players.SetBorder(true).SetTitle(" players ")

	status := tview.NewTextView().SetText("arrows or WASD move, q quits")

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(tview.NewFlex().
			AddItem(mapView, 0, 3, false).
			AddItem(players, 24, 0, false), 0, 1, false).
		AddItem(status, 1, 0, false)

	render := func(w game.World) {
		mapView.SetText(formatMap(w, 0))
		players.SetText(formatPlayers(w))
	}
	render(first)

	go func() {
		for {
			w, err := c.Next()
			if err != nil {
				app.QueueUpdateDraw(func() {
					status.SetText("disconnected: " + err.Error() + " (q quits)")
				})
				return
			}
			app.QueueUpdateDraw(func() { render(w) })
		}
	}()

	app.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		if isQuit(ev) {
			app.Stop()
			return nil
		}
		if dir, ok := keyDir(ev); ok {
			if err := c.Move(dir); err != nil {
				status.SetText("move failed: " + err.Error())
			}
			return nil
		}
		return ev
	})

	return app.SetRoot(layout, true).Run()
}
