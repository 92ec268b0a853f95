//go:build !darwin

package tray

import "fyne.io/systray"

// Start runs the tray loop on its own locked thread.
func Start(m Menu) {
	go systray.Run(onReady(m), func() {})
}
