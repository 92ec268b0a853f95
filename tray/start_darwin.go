//go:build darwin

package tray

import (
	"fyne.io/systray"
	"golang.design/x/hotkey/mainthread"
)

// Start installs the tray on the main thread and returns once it is running.
func Start(m Menu) {
	start, _ := systray.RunWithExternalLoop(onReady(m), func() {})
	done := make(chan struct{})
	mainthread.Call(func() {
		start()
		close(done)
	})
	<-done
}
