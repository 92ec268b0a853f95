//go:build gui

package main

import (
	"context"

	"vallet/gui"
	"vallet/uistate"
)

// runGUI gives the calling goroutine to fyne and serves from OnReady.
func runGUI(a *app) error {
	errc := make(chan error, 1)
	var g *gui.App
	g = gui.NewApp(gui.Callbacks{
		OnReady: func() {
			errc <- a.serve(func(ctx context.Context) error {
				<-ctx.Done()
				return nil
			})
			g.Quit()
		},
		OnShow:   a.show,
		OnEscape: func() { a.post(uistate.Escape()) },
		OnAdmin:  func() { a.post(uistate.OpenAdmin()) },
		OnRecord: a.toggle,
		OnQuit:   a.quit,
	})
	a.view = g
	if err := g.Run(); err != nil {
		return err
	}
	a.quit()
	return <-errc
}
