// Package gui is the fyne window host, built with -tags gui. The size table
// is available in every build.
package gui

import "vallet/uistate"

// PixelSize is the window size for a named size variant on goos.
func PixelSize(s uistate.Size, goos string) (width, height float32) {
	switch s {
	case uistate.SizeLauncherExpanded:
		return 720, 480
	case uistate.SizeAdmin:
		if goos == "windows" {
			return 1280, 900
		}
		return 1280, 800
	case uistate.SizeRecording:
		return 280, 80
	default:
		return 720, 150
	}
}
